package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"sync/atomic"
	"time"

	"log/slog"

	"github.com/azeasycpa/askcpa/internal/config"
)

var ErrCircuitOpen = errors.New("mailer circuit open")

// ErrNotConfigured signals a missing API key. Checked lazily on the first
// send so the service can start without outbound email configured.
var ErrNotConfigured = errors.New("mailer api key not configured")

// Client sends transactional mail through the SendGrid v3 API and adds
// retries, per-attempt timeout, and a circuit breaker.
type Client struct {
	cfg    config.MailerConfig
	client *http.Client

	// simple circuit breaker state
	failures  int32
	openUntil int64 // unix nano
	closed    int32 // atomic flag for Close()
}

// NewClient creates a new mailer client wrapper.
func NewClient(cfg config.MailerConfig, httpClient *http.Client) (*Client, error) {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	if _, err := url.ParseRequestURI(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}

	c := &Client{cfg: cfg, client: httpClient}
	logger.Info("mailer: NewClient created", slog.String("base_url", cfg.BaseURL), slog.Duration("timeout", cfg.Timeout))
	return c, nil
}

// package-level logger for the mailer; can be replaced by callers
var logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))

// SetLogger sets the logger used by the mailer package. Passing nil is a no-op.
func SetLogger(l *slog.Logger) {
	if l != nil {
		logger = l
	}
}

func (c *Client) isCircuitOpen() bool {
	if atomic.LoadInt32(&c.failures) < int32(c.cfg.CircuitFailureThreshold) {
		return false
	}

	if time.Now().UnixNano() < atomic.LoadInt64(&c.openUntil) {
		return true
	}

	// attempt half-open: reset failures and allow a request
	atomic.StoreInt32(&c.failures, 0)
	return false
}

func (c *Client) recordFailure() {
	v := atomic.AddInt32(&c.failures, 1)
	if v >= int32(c.cfg.CircuitFailureThreshold) {
		atomic.StoreInt64(&c.openUntil, time.Now().Add(c.cfg.CircuitReset).UnixNano())
	}
}

// Close releases any resources held by the client. Close is idempotent and
// safe to call multiple times.
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	if !atomic.CompareAndSwapInt32(&c.closed, 0, 1) {
		return nil
	}
	if c.client != nil && c.client.Transport != nil {
		if tr, ok := c.client.Transport.(interface{ CloseIdleConnections() }); ok {
			tr.CloseIdleConnections()
		}
	}
	return nil
}

type sendRequest struct {
	Personalizations []personalization `json:"personalizations"`
	From             emailAddr         `json:"from"`
	Subject          string            `json:"subject"`
	Content          []content         `json:"content"`
}

type personalization struct {
	To []emailAddr `json:"to"`
}

type emailAddr struct {
	Email string `json:"email"`
}

type content struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Send delivers one templated message. It retries transient failures with
// linear backoff and returns the last error when all attempts fail.
func (c *Client) Send(ctx context.Context, to string, tmpl Template, data Data) error {
	if c.cfg.APIKey == "" {
		return fmt.Errorf("%w: set ASKCPA_SENDGRID_API_KEY", ErrNotConfigured)
	}
	if c.isCircuitOpen() {
		return ErrCircuitOpen
	}

	subject, text, html, err := Render(tmpl, data)
	if err != nil {
		return err
	}

	body, err := json.Marshal(sendRequest{
		Personalizations: []personalization{{To: []emailAddr{{Email: to}}}},
		From:             emailAddr{Email: c.cfg.FromEmail},
		Subject:          subject,
		Content: []content{
			{Type: "text/plain", Value: text},
			{Type: "text/html", Value: html},
		},
	})
	if err != nil {
		return fmt.Errorf("encode mail request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.cfg.Retries; attempt++ {
		start := time.Now()
		lastErr = c.post(ctx, body)
		if lastErr == nil {
			atomic.StoreInt32(&c.failures, 0)
			logger.Info("mail sent",
				slog.String("template", string(tmpl)),
				slog.Int64("latency_ms", time.Since(start).Milliseconds()),
			)
			return nil
		}

		c.recordFailure()
		time.Sleep(c.cfg.Backoff * time.Duration(attempt+1))
		if c.isCircuitOpen() {
			return ErrCircuitOpen
		}
	}

	return fmt.Errorf("send failed after retries: %w", lastErr)
}

func (c *Client) post(ctx context.Context, body []byte) error {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	u, err := url.Parse(c.cfg.BaseURL)
	if err != nil {
		return err
	}
	u = u.ResolveReference(&url.URL{Path: "/v3/mail/send"})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("mail endpoint returned status %d: %s", resp.StatusCode, detail)
	}

	return nil
}
