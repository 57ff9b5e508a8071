package mock

import (
	"context"
	"fmt"
	"time"

	"github.com/azeasycpa/askcpa/internal/models"
)

// Store is an in-memory QuestionRepo + UsageRepo for tests. Error fields let
// tests inject failures per operation.
type Store struct {
	Questions map[string]*models.Question
	Usage     map[string]*models.EmailUsage

	SubmitErr error
	GetErr    error
	UpdateErr error
	ListErr   error
	UsageErr  error

	order []string
	seq   int
}

func NewStore() *Store {
	return &Store{
		Questions: map[string]*models.Question{},
		Usage:     map[string]*models.EmailUsage{},
	}
}

func (s *Store) SubmitQuestion(ctx context.Context, q *models.Question) error {
	if s.SubmitErr != nil {
		return s.SubmitErr
	}

	s.seq++
	ts := time.Now().UTC().UnixMilli()
	q.ID = fmt.Sprintf("q-%d", s.seq)
	if q.Status == "" {
		q.Status = models.StatusPending
	}
	q.Created = ts
	q.Updated = ts

	cp := *q
	s.Questions[q.ID] = &cp
	s.order = append(s.order, q.ID)

	if u, ok := s.Usage[q.UserEmail]; ok {
		u.QuestionCount++
		u.LastQuestionAt = ts
	} else {
		s.Usage[q.UserEmail] = &models.EmailUsage{Email: q.UserEmail, QuestionCount: 1, LastQuestionAt: ts}
	}

	return nil
}

func (s *Store) GetQuestion(ctx context.Context, id string) (*models.Question, error) {
	if s.GetErr != nil {
		return nil, s.GetErr
	}
	q, ok := s.Questions[id]
	if !ok {
		return nil, nil
	}

	cp := *q
	return &cp, nil
}

func (s *Store) UpdateStatus(ctx context.Context, id, status string) error {
	if s.UpdateErr != nil {
		return s.UpdateErr
	}
	if q, ok := s.Questions[id]; ok {
		q.Status = status
		q.Updated = time.Now().UTC().UnixMilli()
	}
	return nil
}

func (s *Store) SetAnswer(ctx context.Context, id, response string) error {
	if s.UpdateErr != nil {
		return s.UpdateErr
	}
	if q, ok := s.Questions[id]; ok {
		r := response
		q.CPAResponse = &r
		q.Status = models.StatusAnswered
		q.Updated = time.Now().UTC().UnixMilli()
	}
	return nil
}

func (s *Store) SetAIResponse(ctx context.Context, id, draft string) error {
	if s.UpdateErr != nil {
		return s.UpdateErr
	}
	if q, ok := s.Questions[id]; ok {
		d := draft
		q.AIResponse = &d
		q.Updated = time.Now().UTC().UnixMilli()
	}
	return nil
}

func (s *Store) ListQuestions(ctx context.Context, status string, limit, offset int) ([]models.Question, error) {
	if s.ListErr != nil {
		return nil, s.ListErr
	}

	var out []models.Question
	// newest first: reverse insertion order
	for i := len(s.order) - 1; i >= 0; i-- {
		q := s.Questions[s.order[i]]
		if status != "" && q.Status != status {
			continue
		}
		out = append(out, *q)
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}

	return out, nil
}

func (s *Store) CountQuestions(ctx context.Context, status string) (int64, error) {
	if s.ListErr != nil {
		return 0, s.ListErr
	}

	var total int64
	for _, q := range s.Questions {
		if status == "" || q.Status == status {
			total++
		}
	}

	return total, nil
}

func (s *Store) ListByEmail(ctx context.Context, email string) ([]models.Question, error) {
	if s.ListErr != nil {
		return nil, s.ListErr
	}

	var out []models.Question
	for i := len(s.order) - 1; i >= 0; i-- {
		q := s.Questions[s.order[i]]
		if q.UserEmail == email {
			out = append(out, *q)
		}
	}

	return out, nil
}

func (s *Store) RecordSubmission(ctx context.Context, email string) error {
	if s.UsageErr != nil {
		return s.UsageErr
	}

	ts := time.Now().UTC().UnixMilli()
	if u, ok := s.Usage[email]; ok {
		u.QuestionCount++
		u.LastQuestionAt = ts
	} else {
		s.Usage[email] = &models.EmailUsage{Email: email, QuestionCount: 1, LastQuestionAt: ts}
	}

	return nil
}

func (s *Store) GetUsage(ctx context.Context, email string) (*models.EmailUsage, error) {
	if s.UsageErr != nil {
		return nil, s.UsageErr
	}
	u, ok := s.Usage[email]
	if !ok {
		return nil, nil
	}

	cp := *u
	return &cp, nil
}
