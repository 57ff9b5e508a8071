// Package draft generates AI draft answers for submitted questions. Drafts
// land in the question's ai_response column for the CPA to consult; they are
// never shown on the public surface and never change question status.
package draft

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/azeasycpa/askcpa/internal/config"
	"github.com/ollama/ollama/api"
)

type Engine struct {
	api *api.Client
	cfg config.DraftConfig
}

// NewEngine creates a draft engine against a local Ollama instance.
func NewEngine(cfg config.DraftConfig, httpClient *http.Client) (*Engine, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("draft model is required")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	u, err := url.ParseRequestURI(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}

	return &Engine{api: api.NewClient(u, httpClient), cfg: cfg}, nil
}

// BuildPrompt renders the instruction given to the model for one question.
func BuildPrompt(question string) string {
	return fmt.Sprintf(`You are assisting a certified public accountant. Write a short draft answer to the client question below. Be factual and conservative; flag anything that needs the CPA's judgment.

Question: %s

Draft answer:`, question)
}

// Draft asks the model for a draft answer and returns the trimmed text.
func (e *Engine) Draft(ctx context.Context, question string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	stream := false
	req := &api.GenerateRequest{Model: e.cfg.Model, Prompt: BuildPrompt(question), Stream: &stream}

	var sb strings.Builder
	err := e.api.Generate(ctx, req, func(r api.GenerateResponse) error {
		sb.WriteString(r.Response)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("generate draft: %w", err)
	}

	out := strings.TrimSpace(sb.String())
	if out == "" {
		return "", fmt.Errorf("model returned empty draft")
	}

	return out, nil
}
