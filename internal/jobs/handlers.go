package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/azeasycpa/askcpa/internal/lifecycle"
	"github.com/azeasycpa/askcpa/internal/mailer"
	"github.com/azeasycpa/askcpa/internal/models"
	"github.com/azeasycpa/askcpa/pkg/repository"
)

// Mailer is the notification sink the email handlers deliver through.
type Mailer interface {
	Send(ctx context.Context, to string, tmpl mailer.Template, data mailer.Data) error
}

// Drafter generates an AI draft answer for a question.
type Drafter interface {
	Draft(ctx context.Context, question string) (string, error)
}

type emailPayload struct {
	To         string `json:"to"`
	QuestionID string `json:"question_id,omitempty"`
	Question   string `json:"question"`
	Answer     string `json:"answer,omitempty"`
	Email      string `json:"email,omitempty"`
}

type draftPayload struct {
	QuestionID string `json:"question_id"`
}

// NewHandlers wires the job-type handler map used by the worker pool. The
// drafter may be nil; the draft handler is then omitted so draft jobs
// dead-letter out with "no handler".
func NewHandlers(m Mailer, d Drafter, questions repository.QuestionRepo) map[string]Handler {
	handlers := map[string]Handler{
		lifecycle.JobQuestionReceived: emailHandler(m, mailer.TemplateQuestionReceived),
		lifecycle.JobAnswerNotify:     emailHandler(m, mailer.TemplateAnswerNotification),
		lifecycle.JobAdminNotify:      emailHandler(m, mailer.TemplateAdminNotification),
	}
	if d != nil {
		handlers[lifecycle.JobDraftResponse] = draftHandler(d, questions)
	}
	return handlers
}

func emailHandler(m Mailer, tmpl mailer.Template) Handler {
	return func(ctx context.Context, j *models.BackgroundJob) error {
		var p emailPayload
		if err := json.Unmarshal(j.Payload, &p); err != nil {
			return fmt.Errorf("decode email payload: %w", err)
		}
		if p.To == "" {
			return fmt.Errorf("email payload missing recipient")
		}

		data := mailer.Data{Question: p.Question, Answer: p.Answer, Email: p.Email}
		if err := m.Send(ctx, p.To, tmpl, data); err != nil {
			return fmt.Errorf("send %s: %w", tmpl, err)
		}

		return nil
	}
}

func draftHandler(d Drafter, questions repository.QuestionRepo) Handler {
	return func(ctx context.Context, j *models.BackgroundJob) error {
		var p draftPayload
		if err := json.Unmarshal(j.Payload, &p); err != nil {
			return fmt.Errorf("decode draft payload: %w", err)
		}

		q, err := questions.GetQuestion(ctx, p.QuestionID)
		if err != nil {
			return fmt.Errorf("load question %s: %w", p.QuestionID, err)
		}
		if q == nil || q.Status == models.StatusAnswered {
			// nothing to draft for
			return nil
		}

		draft, err := d.Draft(ctx, q.QuestionText)
		if err != nil {
			return fmt.Errorf("generate draft: %w", err)
		}

		if err := questions.SetAIResponse(ctx, q.ID, draft); err != nil {
			return fmt.Errorf("store draft: %w", err)
		}

		return nil
	}
}
