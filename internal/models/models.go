package models

import (
	"encoding/json"
	"time"
)

// Question status values. A question starts pending and never returns to it.
const (
	StatusPending  = "pending"
	StatusReviewed = "reviewed"
	StatusAnswered = "answered"
)

type Question struct {
	ID           string  `json:"id" db:"id"`
	UserEmail    string  `json:"user_email" db:"user_email"`
	QuestionText string  `json:"question_text" db:"question_text"`
	Status       string  `json:"status" db:"status"`
	CPAResponse  *string `json:"cpa_response,omitempty" db:"cpa_response"`
	AIResponse   *string `json:"ai_response,omitempty" db:"ai_response"`
	Category     *string `json:"category,omitempty" db:"category"`
	Created      int64   `json:"created" db:"created"`
	Updated      int64   `json:"updated" db:"updated"`
}

type EmailUsage struct {
	Email          string `json:"email" db:"email"`
	QuestionCount  int64  `json:"question_count" db:"question_count"`
	LastQuestionAt int64  `json:"last_question_at" db:"last_question_at"`
}

type BackgroundJob struct {
	ID          int64           `json:"id"`
	Type        string          `json:"type"`
	Payload     json.RawMessage `json:"payload"`
	Status      string          `json:"status"`
	Attempts    int             `json:"attempts"`
	MaxAttempts int             `json:"max_attempts"`
	Priority    int             `json:"priority"`
	ScheduledAt time.Time       `json:"scheduled_at"`
	NextTryAt   *time.Time      `json:"next_try_at,omitempty"`
	LastError   string          `json:"last_error,omitempty"`
	Created     time.Time       `json:"created"`
	Updated     time.Time       `json:"updated"`
}
