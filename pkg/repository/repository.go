package repository

import (
	"context"

	"github.com/azeasycpa/askcpa/internal/models"
)

// Repository interfaces for domain entities. These are the public contracts
// consumers should depend on; concrete implementations live under internal/.

type QuestionRepo interface {
	// SubmitQuestion inserts the question and upserts the submitter's usage
	// row in a single transaction. The question's ID, Created and Updated
	// fields are filled in on success.
	SubmitQuestion(ctx context.Context, q *models.Question) error
	// GetQuestion returns (nil, nil) when no question has the given id.
	GetQuestion(ctx context.Context, id string) (*models.Question, error)
	UpdateStatus(ctx context.Context, id, status string) error
	SetAnswer(ctx context.Context, id, response string) error
	SetAIResponse(ctx context.Context, id, draft string) error
	ListQuestions(ctx context.Context, status string, limit, offset int) ([]models.Question, error)
	CountQuestions(ctx context.Context, status string) (int64, error)
	ListByEmail(ctx context.Context, email string) ([]models.Question, error)
}

type UsageRepo interface {
	// RecordSubmission atomically increments the per-email counter, creating
	// the row with count 1 when absent.
	RecordSubmission(ctx context.Context, email string) error
	// GetUsage returns (nil, nil) when the email has never submitted.
	GetUsage(ctx context.Context, email string) (*models.EmailUsage, error)
}

type JobRepo interface {
	Enqueue(ctx context.Context, j *models.BackgroundJob) (int64, error)
	FetchNext(ctx context.Context) (*models.BackgroundJob, error)
	UpdateJob(ctx context.Context, j *models.BackgroundJob) error
	MoveToDeadLetter(ctx context.Context, j *models.BackgroundJob) error
}
