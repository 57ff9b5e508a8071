package lifecycle_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/azeasycpa/askcpa/internal/lifecycle"
	"github.com/azeasycpa/askcpa/internal/models"
	"github.com/azeasycpa/askcpa/pkg/repository/mock"
)

type queuedJob struct {
	typ     string
	payload map[string]any
}

type stubQueue struct {
	jobs []queuedJob
	err  error
}

func (s *stubQueue) Enqueue(ctx context.Context, typ string, payload any, priority, maxAttempts int) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	m, _ := payload.(map[string]any)
	s.jobs = append(s.jobs, queuedJob{typ: typ, payload: m})
	return int64(len(s.jobs)), nil
}

func (s *stubQueue) byType(typ string) []queuedJob {
	var out []queuedJob
	for _, j := range s.jobs {
		if j.typ == typ {
			out = append(out, j)
		}
	}
	return out
}

const validQuestion = "How do I record a refund in QuickBooks?"

func newEngine(t *testing.T) (*lifecycle.Engine, *mock.Store, *stubQueue) {
	t.Helper()
	store := mock.NewStore()
	queue := &stubQueue{}
	return lifecycle.NewEngine(store, queue, "cpa@azeasycpa.com", false, nil), store, queue
}

func TestSubmit_CreatesPendingQuestion(t *testing.T) {
	ctx := context.Background()
	engine, store, queue := newEngine(t)

	q, err := engine.Submit(ctx, "a@x.com", validQuestion)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if q.ID == "" {
		t.Fatalf("expected assigned id")
	}
	if q.Status != models.StatusPending {
		t.Fatalf("expected pending, got %q", q.Status)
	}
	if q.CPAResponse != nil {
		t.Fatalf("expected nil cpa_response on a new question")
	}

	u, err := store.GetUsage(ctx, "a@x.com")
	if err != nil || u == nil {
		t.Fatalf("GetUsage: %v %v", u, err)
	}
	if u.QuestionCount != 1 {
		t.Fatalf("expected question_count 1, got %d", u.QuestionCount)
	}

	if got := queue.byType(lifecycle.JobQuestionReceived); len(got) != 1 {
		t.Fatalf("expected 1 question-received job, got %d", len(got))
	} else if got[0].payload["to"] != "a@x.com" {
		t.Fatalf("question-received to wrong recipient: %v", got[0].payload["to"])
	}
	if got := queue.byType(lifecycle.JobAdminNotify); len(got) != 1 {
		t.Fatalf("expected 1 admin-notification job, got %d", len(got))
	} else if got[0].payload["to"] != "cpa@azeasycpa.com" {
		t.Fatalf("admin notification to wrong recipient: %v", got[0].payload["to"])
	}
}

func TestSubmit_SecondSubmissionIncrementsUsage(t *testing.T) {
	ctx := context.Background()
	engine, store, _ := newEngine(t)

	if _, err := engine.Submit(ctx, "a@x.com", validQuestion); err != nil {
		t.Fatalf("first Submit: %v", err)
	}
	first, _ := store.GetUsage(ctx, "a@x.com")

	if _, err := engine.Submit(ctx, "a@x.com", "Can I deduct my home office expenses this year?"); err != nil {
		t.Fatalf("second Submit: %v", err)
	}
	second, _ := store.GetUsage(ctx, "a@x.com")

	if second.QuestionCount != 2 {
		t.Fatalf("expected question_count 2, got %d", second.QuestionCount)
	}
	if second.LastQuestionAt < first.LastQuestionAt {
		t.Fatalf("last_question_at went backwards")
	}
}

func TestSubmit_RejectsInvalidInput(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name     string
		email    string
		question string
	}{
		{"question too short", "a@x.com", "too short"},
		{"question too long", "a@x.com", strings.Repeat("a", 501)},
		{"bad email", "not-an-email", validQuestion},
		{"email without domain dot", "a@x", validQuestion},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			engine, store, queue := newEngine(t)

			_, err := engine.Submit(ctx, tc.email, tc.question)
			if err == nil {
				t.Fatalf("expected validation error")
			}
			if code := lifecycle.CodeOf(err); code != lifecycle.ErrorValidation {
				t.Fatalf("expected VALIDATION, got %s", code)
			}
			if len(store.Questions) != 0 {
				t.Fatalf("no question must be written on validation failure")
			}
			if len(store.Usage) != 0 {
				t.Fatalf("no usage row must be written on validation failure")
			}
			if len(queue.jobs) != 0 {
				t.Fatalf("no jobs must be enqueued on validation failure")
			}
		})
	}
}

func TestSubmit_BoundaryLengthsAccepted(t *testing.T) {
	ctx := context.Background()
	engine, _, _ := newEngine(t)

	for _, q := range []string{strings.Repeat("a", 10), strings.Repeat("a", 500)} {
		if _, err := engine.Submit(ctx, "a@x.com", q); err != nil {
			t.Fatalf("Submit(%d chars): %v", len(q), err)
		}
	}
}

func TestSubmit_StoreFailure(t *testing.T) {
	ctx := context.Background()
	engine, store, queue := newEngine(t)
	store.SubmitErr = errors.New("disk full")

	_, err := engine.Submit(ctx, "a@x.com", validQuestion)
	if err == nil {
		t.Fatalf("expected error")
	}
	if code := lifecycle.CodeOf(err); code != lifecycle.ErrorPersistence {
		t.Fatalf("expected PERSISTENCE, got %s", code)
	}
	if len(queue.jobs) != 0 {
		t.Fatalf("no jobs must be enqueued when the store write fails")
	}
}

func TestSubmit_EnqueueFailureDoesNotFailSubmit(t *testing.T) {
	ctx := context.Background()
	store := mock.NewStore()
	queue := &stubQueue{err: errors.New("queue down")}
	engine := lifecycle.NewEngine(store, queue, "cpa@azeasycpa.com", false, nil)

	q, err := engine.Submit(ctx, "a@x.com", validQuestion)
	if err != nil {
		t.Fatalf("Submit must succeed when only the enqueue fails: %v", err)
	}
	if q.Status != models.StatusPending {
		t.Fatalf("expected pending, got %q", q.Status)
	}
}

func TestSubmit_DraftJobEnqueuedWhenEnabled(t *testing.T) {
	ctx := context.Background()
	store := mock.NewStore()
	queue := &stubQueue{}
	engine := lifecycle.NewEngine(store, queue, "", true, nil)

	q, err := engine.Submit(ctx, "a@x.com", validQuestion)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	got := queue.byType(lifecycle.JobDraftResponse)
	if len(got) != 1 {
		t.Fatalf("expected 1 draft job, got %d", len(got))
	}
	if got[0].payload["question_id"] != q.ID {
		t.Fatalf("draft job for wrong question: %v", got[0].payload["question_id"])
	}
}

func TestMarkReviewed_Transitions(t *testing.T) {
	ctx := context.Background()
	engine, _, _ := newEngine(t)

	q, err := engine.Submit(ctx, "a@x.com", validQuestion)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	r1, err := engine.MarkReviewed(ctx, q.ID)
	if err != nil {
		t.Fatalf("MarkReviewed: %v", err)
	}
	if r1.Status != models.StatusReviewed {
		t.Fatalf("expected reviewed, got %q", r1.Status)
	}

	// idempotent on a reviewed question
	r2, err := engine.MarkReviewed(ctx, q.ID)
	if err != nil {
		t.Fatalf("MarkReviewed again: %v", err)
	}
	if r2.Status != models.StatusReviewed {
		t.Fatalf("expected reviewed to stay, got %q", r2.Status)
	}
}

func TestMarkReviewed_NeverDowngradesAnswered(t *testing.T) {
	ctx := context.Background()
	engine, _, _ := newEngine(t)

	q, _ := engine.Submit(ctx, "a@x.com", validQuestion)
	if _, err := engine.Answer(ctx, q.ID, "Record it as a credit memo."); err != nil {
		t.Fatalf("Answer: %v", err)
	}

	r, err := engine.MarkReviewed(ctx, q.ID)
	if err != nil {
		t.Fatalf("MarkReviewed: %v", err)
	}
	if r.Status != models.StatusAnswered {
		t.Fatalf("answered question must keep its status, got %q", r.Status)
	}
}

func TestMarkReviewed_NotFound(t *testing.T) {
	ctx := context.Background()
	engine, store, _ := newEngine(t)

	_, err := engine.MarkReviewed(ctx, "missing")
	if err == nil {
		t.Fatalf("expected error")
	}
	if code := lifecycle.CodeOf(err); code != lifecycle.ErrorNotFound {
		t.Fatalf("expected NOT_FOUND, got %s", code)
	}
	if len(store.Questions) != 0 {
		t.Fatalf("no store mutation must occur")
	}
}

func TestAnswer_SetsResponseAndNotifies(t *testing.T) {
	ctx := context.Background()
	engine, _, queue := newEngine(t)

	q, _ := engine.Submit(ctx, "a@x.com", validQuestion)

	got, err := engine.Answer(ctx, q.ID, "Record it as a credit memo.")
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if got.Status != models.StatusAnswered {
		t.Fatalf("expected answered, got %q", got.Status)
	}
	if got.CPAResponse == nil || *got.CPAResponse != "Record it as a credit memo." {
		t.Fatalf("unexpected cpa_response: %v", got.CPAResponse)
	}

	jobs := queue.byType(lifecycle.JobAnswerNotify)
	if len(jobs) != 1 {
		t.Fatalf("expected 1 answer-notification job, got %d", len(jobs))
	}
	if jobs[0].payload["to"] != "a@x.com" {
		t.Fatalf("answer notification to wrong recipient: %v", jobs[0].payload["to"])
	}
}

func TestAnswer_ReAnswerOverwrites(t *testing.T) {
	ctx := context.Background()
	engine, _, _ := newEngine(t)

	q, _ := engine.Submit(ctx, "a@x.com", validQuestion)
	if _, err := engine.Answer(ctx, q.ID, "First answer."); err != nil {
		t.Fatalf("first Answer: %v", err)
	}

	got, err := engine.Answer(ctx, q.ID, "Second, better answer.")
	if err != nil {
		t.Fatalf("re-Answer: %v", err)
	}
	if got.Status != models.StatusAnswered {
		t.Fatalf("expected answered, got %q", got.Status)
	}
	if got.CPAResponse == nil || *got.CPAResponse != "Second, better answer." {
		t.Fatalf("re-answer must overwrite, got %v", got.CPAResponse)
	}
}

func TestAnswer_RejectsEmptyResponse(t *testing.T) {
	ctx := context.Background()
	engine, _, _ := newEngine(t)

	q, _ := engine.Submit(ctx, "a@x.com", validQuestion)

	_, err := engine.Answer(ctx, q.ID, "   \n\t ")
	if err == nil {
		t.Fatalf("expected error")
	}
	if code := lifecycle.CodeOf(err); code != lifecycle.ErrorValidation {
		t.Fatalf("expected VALIDATION, got %s", code)
	}
}

func TestAnswer_NotFound(t *testing.T) {
	ctx := context.Background()
	engine, _, _ := newEngine(t)

	_, err := engine.Answer(ctx, "missing", "Some answer.")
	if code := lifecycle.CodeOf(err); code != lifecycle.ErrorNotFound {
		t.Fatalf("expected NOT_FOUND, got %v (%s)", err, code)
	}
}

func TestFindByEmail(t *testing.T) {
	ctx := context.Background()
	engine, _, _ := newEngine(t)

	q, _ := engine.Submit(ctx, "a@x.com", validQuestion)
	_, _ = engine.Submit(ctx, "b@y.com", "What mileage rate applies for 2026 travel?")
	if _, err := engine.Answer(ctx, q.ID, "Record it as a credit memo."); err != nil {
		t.Fatalf("Answer: %v", err)
	}

	got, err := engine.FindByEmail(ctx, "a@x.com")
	if err != nil {
		t.Fatalf("FindByEmail: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 question for a@x.com, got %d", len(got))
	}
	if got[0].Status != models.StatusAnswered || got[0].CPAResponse == nil {
		t.Fatalf("expected the answered question, got %+v", got[0])
	}

	// no matches is an empty result, not an error
	empty, err := engine.FindByEmail(ctx, "nobody@z.com")
	if err != nil {
		t.Fatalf("FindByEmail(no matches): %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Fatalf("expected empty slice, got %v", empty)
	}
}

func TestListAll_FilterAndOrder(t *testing.T) {
	ctx := context.Background()
	engine, _, _ := newEngine(t)

	q1, _ := engine.Submit(ctx, "a@x.com", validQuestion)
	q2, _ := engine.Submit(ctx, "b@y.com", "What mileage rate applies for 2026 travel?")
	if _, err := engine.MarkReviewed(ctx, q2.ID); err != nil {
		t.Fatalf("MarkReviewed: %v", err)
	}

	all, total, err := engine.ListAll(ctx, "", 50, 0)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if total != 2 || len(all) != 2 {
		t.Fatalf("expected 2 questions, got total=%d len=%d", total, len(all))
	}
	// newest first
	if all[0].ID != q2.ID || all[1].ID != q1.ID {
		t.Fatalf("expected created-descending order, got %s then %s", all[0].ID, all[1].ID)
	}

	pending, total, err := engine.ListAll(ctx, models.StatusPending, 50, 0)
	if err != nil {
		t.Fatalf("ListAll(pending): %v", err)
	}
	if total != 1 || len(pending) != 1 || pending[0].ID != q1.ID {
		t.Fatalf("unexpected pending filter result: total=%d %v", total, pending)
	}

	if _, _, err := engine.ListAll(ctx, "bogus", 50, 0); lifecycle.CodeOf(err) != lifecycle.ErrorValidation {
		t.Fatalf("expected VALIDATION for unknown status filter, got %v", err)
	}
}

func TestUsage_NilWhenUnknown(t *testing.T) {
	ctx := context.Background()
	engine, _, _ := newEngine(t)

	u, err := engine.Usage(ctx, "nobody@z.com")
	if err != nil {
		t.Fatalf("Usage: %v", err)
	}
	if u != nil {
		t.Fatalf("expected nil usage for unknown email, got %+v", u)
	}
}
