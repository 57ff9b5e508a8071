package sqlite

import (
	"context"
	"database/sql"

	"github.com/azeasycpa/askcpa/internal/models"
)

// Single-statement upsert so concurrent submissions from the same email cannot
// lose an increment to a read-then-write race.
const upsertUsageSQL = `INSERT INTO email_usage (email, question_count, last_question_at) VALUES (?, 1, ?)
ON CONFLICT(email) DO UPDATE SET question_count = question_count + 1, last_question_at = excluded.last_question_at`

func (r *SQLiteRepo) RecordSubmission(ctx context.Context, email string) error {
	_, err := r.conn.Exec(ctx, upsertUsageSQL, email, now())
	return err
}

func (r *SQLiteRepo) GetUsage(ctx context.Context, email string) (*models.EmailUsage, error) {
	row := r.conn.QueryRow(ctx, `SELECT email, question_count, last_question_at FROM email_usage WHERE email = ?`, email)
	var u models.EmailUsage
	if err := row.Scan(&u.Email, &u.QuestionCount, &u.LastQuestionAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}

	return &u, nil
}
