package lifecycle

import (
	"context"
	"strings"

	"log/slog"

	"github.com/azeasycpa/askcpa/internal/models"
	"github.com/azeasycpa/askcpa/pkg/repository"
)

// Job type names dispatched by the engine at transition boundaries. The
// handlers live in internal/jobs.
const (
	JobQuestionReceived  = "email.question_received"
	JobAnswerNotify      = "email.answer_notification"
	JobAdminNotify       = "email.admin_notification"
	JobDraftResponse     = "ai.draft_response"
	notificationPriority = 100
	notificationAttempts = 3
)

// Enqueuer dispatches background work after a state transition commits.
// Implemented by the jobs worker pool.
type Enqueuer interface {
	Enqueue(ctx context.Context, typ string, payload any, priority, maxAttempts int) (int64, error)
}

// Store is the record-store surface the engine needs.
type Store interface {
	repository.QuestionRepo
	repository.UsageRepo
}

// Engine governs question state transitions (pending -> reviewed -> answered)
// and dispatches notification side effects. Transitions never return a
// question to pending and never delete one; re-answering an answered question
// overwrites the response and keeps the status.
type Engine struct {
	store      Store
	queue      Enqueuer
	adminEmail string
	draft      bool
	logger     *slog.Logger
}

func NewEngine(store Store, queue Enqueuer, adminEmail string, draftEnabled bool, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{store: store, queue: queue, adminEmail: adminEmail, draft: draftEnabled, logger: logger}
}

// Submit validates the input, then inserts the question and upserts the
// submitter's usage counter in a single store transaction. Notifications are
// dispatched best-effort after the commit; enqueue failures are logged and
// never fail the submission.
func (e *Engine) Submit(ctx context.Context, email, question string) (*models.Question, error) {
	if err := ValidateSubmission(ctx, email, question); err != nil {
		return nil, err
	}

	q := &models.Question{
		UserEmail:    email,
		QuestionText: question,
		Status:       models.StatusPending,
	}
	if err := e.store.SubmitQuestion(ctx, q); err != nil {
		return nil, newError(ErrorPersistence, "submit question", err)
	}

	e.notify(ctx, JobQuestionReceived, map[string]any{
		"to":          email,
		"question_id": q.ID,
		"question":    question,
	})
	if e.adminEmail != "" {
		e.notify(ctx, JobAdminNotify, map[string]any{
			"to":          e.adminEmail,
			"question_id": q.ID,
			"question":    question,
			"email":       email,
		})
	}
	if e.draft {
		e.notify(ctx, JobDraftResponse, map[string]any{"question_id": q.ID})
	}

	return q, nil
}

// MarkReviewed moves a pending question to reviewed. Calling it on a reviewed
// question is a no-op; an answered question keeps its status (no downgrade).
func (e *Engine) MarkReviewed(ctx context.Context, id string) (*models.Question, error) {
	q, err := e.store.GetQuestion(ctx, id)
	if err != nil {
		return nil, newError(ErrorPersistence, "load question", err)
	}
	if q == nil {
		return nil, newError(ErrorNotFound, "question not found", nil)
	}
	if q.Status != models.StatusPending {
		return q, nil
	}

	if err := e.store.UpdateStatus(ctx, id, models.StatusReviewed); err != nil {
		return nil, newError(ErrorPersistence, "mark reviewed", err)
	}

	return e.reload(ctx, id)
}

// Answer records the CPA response and moves the question to answered. Valid
// from pending, reviewed and answered (re-answer overwrites the response).
// The answer notification is dispatched best-effort after the commit.
func (e *Engine) Answer(ctx context.Context, id, response string) (*models.Question, error) {
	response = strings.TrimSpace(response)
	if response == "" {
		return nil, newError(ErrorValidation, "response must not be empty", nil)
	}

	q, err := e.store.GetQuestion(ctx, id)
	if err != nil {
		return nil, newError(ErrorPersistence, "load question", err)
	}
	if q == nil {
		return nil, newError(ErrorNotFound, "question not found", nil)
	}

	if err := e.store.SetAnswer(ctx, id, response); err != nil {
		return nil, newError(ErrorPersistence, "store answer", err)
	}

	e.notify(ctx, JobAnswerNotify, map[string]any{
		"to":       q.UserEmail,
		"question": q.QuestionText,
		"answer":   response,
	})

	return e.reload(ctx, id)
}

// ListAll returns questions ordered by creation time descending, optionally
// filtered by exact status, plus the total count for that filter.
func (e *Engine) ListAll(ctx context.Context, status string, limit, offset int) ([]models.Question, int64, error) {
	switch status {
	case "", models.StatusPending, models.StatusReviewed, models.StatusAnswered:
	default:
		return nil, 0, newError(ErrorValidation, "unknown status filter", nil)
	}

	items, err := e.store.ListQuestions(ctx, status, limit, offset)
	if err != nil {
		return nil, 0, newError(ErrorPersistence, "list questions", err)
	}
	total, err := e.store.CountQuestions(ctx, status)
	if err != nil {
		return nil, 0, newError(ErrorPersistence, "count questions", err)
	}
	if items == nil {
		items = []models.Question{}
	}

	return items, total, nil
}

// FindByEmail returns the submitter's questions, newest first. No matches is
// a normal empty result, not an error.
func (e *Engine) FindByEmail(ctx context.Context, email string) ([]models.Question, error) {
	items, err := e.store.ListByEmail(ctx, email)
	if err != nil {
		return nil, newError(ErrorPersistence, "find by email", err)
	}
	if items == nil {
		items = []models.Question{}
	}

	return items, nil
}

// Usage returns the submission counter for an email, nil when none exists.
func (e *Engine) Usage(ctx context.Context, email string) (*models.EmailUsage, error) {
	u, err := e.store.GetUsage(ctx, email)
	if err != nil {
		return nil, newError(ErrorPersistence, "load usage", err)
	}

	return u, nil
}

func (e *Engine) reload(ctx context.Context, id string) (*models.Question, error) {
	q, err := e.store.GetQuestion(ctx, id)
	if err != nil {
		return nil, newError(ErrorPersistence, "reload question", err)
	}
	if q == nil {
		return nil, newError(ErrorNotFound, "question not found", nil)
	}

	return q, nil
}

func (e *Engine) notify(ctx context.Context, typ string, payload map[string]any) {
	if e.queue == nil {
		return
	}
	if _, err := e.queue.Enqueue(ctx, typ, payload, notificationPriority, notificationAttempts); err != nil {
		// the transition already committed; losing a notification must not
		// fail the request
		e.logger.Warn("enqueue job failed", "type", typ, "err", err)
	}
}
