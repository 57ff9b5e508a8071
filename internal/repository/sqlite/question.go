package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/azeasycpa/askcpa/internal/models"
	"github.com/google/uuid"
)

const questionColumns = `id, user_email, question_text, status, cpa_response, ai_response, category, created, updated`

// SubmitQuestion inserts the question and the submitter's usage row in one
// transaction so a store failure cannot leave the two collections out of sync.
func (r *SQLiteRepo) SubmitQuestion(ctx context.Context, q *models.Question) error {
	if q == nil {
		return fmt.Errorf("question is nil")
	}

	tx, err := r.conn.GetConn().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin submit tx: %w", err)
	}

	ts := now()
	q.ID = uuid.NewString()
	if q.Status == "" {
		q.Status = models.StatusPending
	}
	q.Created = ts
	q.Updated = ts

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO questions (id, user_email, question_text, status, cpa_response, ai_response, category, created, updated) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		q.ID, q.UserEmail, q.QuestionText, q.Status, q.CPAResponse, q.AIResponse, q.Category, q.Created, q.Updated); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("insert question: %w", err)
	}

	if _, err := tx.ExecContext(ctx, upsertUsageSQL, q.UserEmail, ts); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("upsert email usage: %w", err)
	}

	return tx.Commit()
}

func (r *SQLiteRepo) GetQuestion(ctx context.Context, id string) (*models.Question, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+questionColumns+` FROM questions WHERE id = ?`, id)
	q, err := scanQuestion(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}

	return q, nil
}

func (r *SQLiteRepo) UpdateStatus(ctx context.Context, id, status string) error {
	_, err := r.conn.Exec(ctx, `UPDATE questions SET status = ?, updated = ? WHERE id = ?`, status, now(), id)
	return err
}

func (r *SQLiteRepo) SetAnswer(ctx context.Context, id, response string) error {
	_, err := r.conn.Exec(ctx, `UPDATE questions SET cpa_response = ?, status = ?, updated = ? WHERE id = ?`, response, models.StatusAnswered, now(), id)
	return err
}

func (r *SQLiteRepo) SetAIResponse(ctx context.Context, id, draft string) error {
	_, err := r.conn.Exec(ctx, `UPDATE questions SET ai_response = ?, updated = ? WHERE id = ?`, draft, now(), id)
	return err
}

func (r *SQLiteRepo) ListQuestions(ctx context.Context, status string, limit, offset int) ([]models.Question, error) {
	query := `SELECT ` + questionColumns + ` FROM questions`
	args := []any{}
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := r.conn.QueryRows(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectQuestions(rows)
}

func (r *SQLiteRepo) CountQuestions(ctx context.Context, status string) (int64, error) {
	query := `SELECT COUNT(1) FROM questions`
	args := []any{}
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}

	var total int64
	if err := r.conn.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}

	return total, nil
}

func (r *SQLiteRepo) ListByEmail(ctx context.Context, email string) ([]models.Question, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT `+questionColumns+` FROM questions WHERE user_email = ? ORDER BY created DESC`, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectQuestions(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQuestion(row rowScanner) (*models.Question, error) {
	var q models.Question
	var cpa, ai, cat sql.NullString
	if err := row.Scan(&q.ID, &q.UserEmail, &q.QuestionText, &q.Status, &cpa, &ai, &cat, &q.Created, &q.Updated); err != nil {
		return nil, err
	}

	if cpa.Valid {
		q.CPAResponse = &cpa.String
	}
	if ai.Valid {
		q.AIResponse = &ai.String
	}
	if cat.Valid {
		q.Category = &cat.String
	}

	return &q, nil
}

func collectQuestions(rows *sql.Rows) ([]models.Question, error) {
	var out []models.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *q)
	}

	return out, rows.Err()
}
