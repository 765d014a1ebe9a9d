// Package executor runs one logical catalog operation against an ordered
// list of candidate endpoints.
//
// Candidates are tried strictly sequentially. A later candidate is never
// attempted while an earlier one might still succeed server-side, because
// most write operations are not idempotent and a parallel fan-out could
// create the same entity twice. Transport failures are retried on the same
// candidate with linear backoff; auth rejections abort the whole loop; a
// 2xx response whose body is not a valid success envelope counts as a
// failure for that candidate.
package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Avinash9608/Furniture-sub006/internal/catalog"
	"github.com/Avinash9608/Furniture-sub006/internal/logging"
	"github.com/Avinash9608/Furniture-sub006/internal/metrics"
)

// Config controls per-attempt timeout and the retry budget.
type Config struct {
	// AttemptTimeout bounds a single request attempt.
	AttemptTimeout time.Duration
	// MaxAttempts is the attempt budget per candidate. Only transport
	// failures consume extra attempts; server-side failures move to the
	// next candidate immediately.
	MaxAttempts int
	// BackoffBase is the linear backoff unit between same-candidate
	// retries: attempt n waits n*BackoffBase.
	BackoffBase time.Duration
}

func (c Config) withDefaults() Config {
	if c.AttemptTimeout <= 0 {
		c.AttemptTimeout = 15 * time.Second
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.BackoffBase <= 0 {
		c.BackoffBase = 250 * time.Millisecond
	}
	return c
}

// RequestSpec describes the request to issue against each candidate. Body
// is held as bytes so the same request can be replayed across attempts.
type RequestSpec struct {
	Method      string
	ContentType string
	Header      http.Header
	Body        []byte
}

// Response is a structurally valid success: a 2xx status whose body carried
// a {"success":true} envelope. Data is the envelope payload.
type Response struct {
	StatusCode int
	Data       json.RawMessage
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// AggregateError carries every attempt made during one exhausted Execute
// call, for diagnostics.
type AggregateError struct {
	Operation    string
	Attempts     []catalog.RequestAttempt
	Unauthorized bool
}

// Error summarizes the failed operation.
func (e *AggregateError) Error() string {
	if e.Unauthorized {
		return fmt.Sprintf("operation %s: unauthorized after %d attempt(s)", e.Operation, len(e.Attempts))
	}
	last := ""
	if n := len(e.Attempts); n > 0 {
		last = e.Attempts[n-1].Err
	}
	return fmt.Sprintf("operation %s: all candidates exhausted after %d attempt(s): %s", e.Operation, len(e.Attempts), last)
}

// Unwrap lets callers match auth failures with errors.Is.
func (e *AggregateError) Unwrap() error {
	if e.Unauthorized {
		return catalog.ErrUnauthorized
	}
	return nil
}

// Executor issues requests through one shared HTTP client.
type Executor struct {
	client *http.Client
	cfg    Config
	logger *zap.Logger
}

// New constructs an Executor. A nil client falls back to a client with the
// configured attempt timeout; the per-attempt context bounds each request
// either way.
func New(client *http.Client, cfg Config, logger *zap.Logger) *Executor {
	cfg = cfg.withDefaults()
	if client == nil {
		client = &http.Client{Timeout: cfg.AttemptTimeout}
	}
	return &Executor{
		client: client,
		cfg:    cfg,
		logger: logging.Or(logger),
	}
}

// Execute tries candidates in order and returns the first structurally
// valid success. On exhaustion it returns an *AggregateError holding every
// attempt record. The loop never issues more than len(candidates) *
// MaxAttempts requests.
func (e *Executor) Execute(ctx context.Context, operation string, candidates []string, spec RequestSpec) (Response, error) {
	if len(candidates) == 0 {
		return Response{}, fmt.Errorf("operation %s: %w", operation, catalog.ErrNoCandidates)
	}

	agg := &AggregateError{Operation: operation}

candidateLoop:
	for _, candidate := range candidates {
		for attempt := 1; ; attempt++ {
			started := time.Now()
			resp, outcome, attemptErr := e.attempt(ctx, candidate, spec)
			metrics.ObserveAttempt(operation, string(outcome), time.Since(started))

			if outcome == catalog.OutcomeSuccess {
				e.logger.Debug("request succeeded",
					zap.String("operation", operation),
					zap.String("endpoint", candidate),
					zap.Int("attempt", attempt),
				)
				return resp, nil
			}

			agg.Attempts = append(agg.Attempts, catalog.RequestAttempt{
				Endpoint:   candidate,
				StartedAt:  started,
				Outcome:    outcome,
				StatusCode: resp.StatusCode,
				Err:        attemptErr.Error(),
			})

			if outcome == catalog.OutcomeAuthError {
				// Auth failures are not candidate-specific; trying the
				// remaining candidates cannot help.
				agg.Unauthorized = true
				e.logger.Warn("auth rejected, aborting candidate loop",
					zap.String("operation", operation),
					zap.String("endpoint", candidate),
				)
				return Response{}, agg
			}

			if outcome == catalog.OutcomeNetworkError && attempt < e.cfg.MaxAttempts && ctx.Err() == nil {
				wait := time.Duration(attempt) * e.cfg.BackoffBase
				e.logger.Debug("transport failure, retrying candidate",
					zap.String("operation", operation),
					zap.String("endpoint", candidate),
					zap.Int("attempt", attempt),
					zap.Duration("backoff", wait),
					zap.Error(attemptErr),
				)
				if err := sleep(ctx, wait); err != nil {
					return Response{}, agg
				}
				continue
			}

			e.logger.Warn("candidate abandoned",
				zap.String("operation", operation),
				zap.String("endpoint", candidate),
				zap.String("outcome", string(outcome)),
				zap.Error(attemptErr),
			)
			metrics.ObserveFallback(operation)
			if ctx.Err() != nil {
				break candidateLoop
			}
			continue candidateLoop
		}
	}

	e.logger.Error("all candidates exhausted",
		zap.String("operation", operation),
		zap.Int("attempts", len(agg.Attempts)),
	)
	return Response{}, agg
}

func (e *Executor) attempt(ctx context.Context, url string, spec RequestSpec) (Response, catalog.AttemptOutcome, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, e.cfg.AttemptTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, spec.Method, url, bytes.NewReader(spec.Body))
	if err != nil {
		return Response{}, catalog.OutcomeNetworkError, fmt.Errorf("build request: %w", err)
	}
	for key, values := range spec.Header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	if spec.ContentType != "" {
		req.Header.Set("Content-Type", spec.ContentType)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return Response{}, catalog.OutcomeNetworkError, fmt.Errorf("do request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{StatusCode: resp.StatusCode}, catalog.OutcomeNetworkError, fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return Response{StatusCode: resp.StatusCode}, catalog.OutcomeAuthError,
			fmt.Errorf("status %d: %s", resp.StatusCode, serverMessage(body))
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return Response{StatusCode: resp.StatusCode}, catalog.OutcomeServerError,
			fmt.Errorf("status %d: %s", resp.StatusCode, serverMessage(body))
	}

	// A 2xx status alone is not evidence of success: misrouted requests
	// regularly land on handlers that answer 200 with an HTML shell or an
	// error envelope.
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return Response{StatusCode: resp.StatusCode}, catalog.OutcomeServerError,
			fmt.Errorf("2xx body is not a success envelope: %w", err)
	}
	if !env.Success {
		msg := env.Message
		if msg == "" {
			msg = "envelope success flag absent or false"
		}
		return Response{StatusCode: resp.StatusCode}, catalog.OutcomeServerError,
			fmt.Errorf("2xx without success envelope: %s", msg)
	}

	return Response{StatusCode: resp.StatusCode, Data: env.Data}, catalog.OutcomeSuccess, nil
}

// serverMessage extracts a human-readable message from an error body, which
// may be a {"success":false,"message":...} envelope, plain text, or empty.
func serverMessage(body []byte) string {
	var env envelope
	if err := json.Unmarshal(body, &env); err == nil && env.Message != "" {
		return env.Message
	}
	text := strings.TrimSpace(string(body))
	if text == "" {
		return "empty body"
	}
	if len(text) > 200 {
		text = text[:200]
	}
	return text
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
