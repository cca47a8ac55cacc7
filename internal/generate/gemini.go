package generate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/lucasnoah/puzzlefactory/internal/config"
	"github.com/lucasnoah/puzzlefactory/internal/pipeline"
)

// modelsAPI is the slice of *genai.Models the generator uses.
type modelsAPI interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// RetryPolicy controls collaborator-level retries.
type RetryPolicy struct {
	Attempts     int
	InitialDelay time.Duration
	Multiplier   float64
	StatusCodes  []int
}

// PolicyFromConfig builds a RetryPolicy from the generation config section.
func PolicyFromConfig(cfg config.Generation) RetryPolicy {
	return RetryPolicy{
		Attempts:     cfg.RetryAttempts,
		InitialDelay: cfg.InitialDelayDuration(),
		Multiplier:   cfg.Multiplier,
		StatusCodes:  cfg.RetryStatusCodes,
	}
}

func (p RetryPolicy) retryable(code int) bool {
	for _, c := range p.StatusCodes {
		if c == code {
			return true
		}
	}
	return false
}

// Gemini invokes a Gemini model through google.golang.org/genai.
type Gemini struct {
	models      modelsAPI
	model       string
	temperature float32
	timeout     time.Duration
	policy      RetryPolicy
	newBackOff  func() backoff.BackOff
	onAttempt   func(err error)
	logger      *zap.Logger
}

// Option configures a Gemini generator.
type Option func(*Gemini)

// WithLogger sets the logger used for retry notices.
func WithLogger(l *zap.Logger) Option {
	return func(g *Gemini) { g.logger = l }
}

// WithAttemptHook registers a callback invoked after every attempt with
// its error (nil on success).
func WithAttemptHook(fn func(err error)) Option {
	return func(g *Gemini) { g.onAttempt = fn }
}

// WithBackOff replaces the delay schedule between attempts. The attempt
// limit from the policy still applies.
func WithBackOff(fn func() backoff.BackOff) Option {
	return func(g *Gemini) { g.newBackOff = fn }
}

// withModels injects a fake models API.
func withModels(m modelsAPI) Option {
	return func(g *Gemini) { g.models = m }
}

// NewGemini creates a Gemini generator. The API key comes from the config
// (GOOGLE_API_KEY is applied there).
func NewGemini(ctx context.Context, cfg config.Generation, opts ...Option) (*Gemini, error) {
	g := &Gemini{
		model:       cfg.Model,
		temperature: float32(cfg.Temperature),
		timeout:     cfg.TimeoutDuration(),
		policy:      PolicyFromConfig(cfg),
		logger:      zap.NewNop(),
	}
	g.newBackOff = g.exponential
	for _, opt := range opts {
		opt(g)
	}

	if g.models == nil {
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("gemini API key is required")
		}
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  cfg.APIKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, fmt.Errorf("create genai client: %w", err)
		}
		g.models = client.Models
	}
	return g, nil
}

// Name identifies the backend in logs and metrics.
func (g *Gemini) Name() string {
	return "gemini:" + g.model
}

func (g *Gemini) exponential() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = g.policy.InitialDelay
	b.Multiplier = g.policy.Multiplier
	b.RandomizationFactor = 0.1
	b.MaxElapsedTime = 0
	return b
}

// Invoke sends the prompt and parses the JSON response into named outputs.
// Only responses with a status code in the retry policy are retried.
func (g *Gemini) Invoke(ctx context.Context, prompt string, pc *pipeline.Context) (Output, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		Temperature:      genai.Ptr(g.temperature),
	}

	attempts := max(1, g.policy.Attempts)
	bo := backoff.WithContext(backoff.WithMaxRetries(g.newBackOff(), uint64(attempts-1)), ctx)

	var text string
	attempt := 0
	op := func() error {
		attempt++
		resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(prompt), cfg)
		if err == nil {
			text = strings.TrimSpace(resp.Text())
			if text == "" {
				err = ErrEmptyResponse
			}
		}
		if g.onAttempt != nil {
			g.onAttempt(err)
		}
		if err == nil {
			return nil
		}
		if code, ok := statusCode(err); ok && g.policy.retryable(code) {
			return err
		}
		return backoff.Permanent(err)
	}

	notify := func(err error, wait time.Duration) {
		fields := []zap.Field{
			zap.String("model", g.model),
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(err),
		}
		if pc != nil {
			fields = append(fields, zap.String("run_id", pc.RunID))
		}
		g.logger.Warn("generation attempt failed, retrying", fields...)
	}

	if err := backoff.RetryNotify(op, bo, notify); err != nil {
		return Output{}, fmt.Errorf("gemini generate (%d attempt(s)): %w", attempt, err)
	}
	return ParseOutput(text), nil
}

// statusCode extracts the HTTP status from a genai API error.
func statusCode(err error) (int, bool) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code, true
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return apiErrPtr.Code, true
	}
	return 0, false
}
