// Package extractor turns skip-candidate blocks into a validated skip schema
// by prompting an LLM.
package extractor

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/skiplogic/internal/config"
	"github.com/sells-group/skiplogic/internal/rules"
	"github.com/sells-group/skiplogic/pkg/anthropic"
)

// Extractor converts LLM input built from question blocks into a skip schema.
type Extractor interface {
	Extract(ctx context.Context, blocksText string) (*Result, error)
}

// Result is a parsed extraction with the raw response it came from.
type Result struct {
	Schema *rules.SkipSchema
	Raw    string
	Model  string
	Usage  anthropic.TokenUsage
}

// SchemaError means the model answered but the answer is not a valid skip
// schema. Raw holds the unparsed response.
type SchemaError struct {
	Raw string
	Err error
}

func (e *SchemaError) Error() string {
	return "extractor: response does not match skip schema: " + e.Err.Error()
}

func (e *SchemaError) Unwrap() error { return e.Err }

// RawHook receives every raw response before it is parsed.
type RawHook func(ctx context.Context, raw string) error

// Option configures a provider.
type Option func(*options)

type options struct {
	limiter *rate.Limiter
	rawHook RawHook
}

// WithLimiter paces calls through a shared limiter.
func WithLimiter(l *rate.Limiter) Option {
	return func(o *options) { o.limiter = l }
}

// WithRawHook registers a callback that sees the raw response before parsing.
// A hook error aborts the extraction.
func WithRawHook(h RawHook) Option {
	return func(o *options) { o.rawHook = h }
}

func buildOptions(opts []Option) options {
	o := options{limiter: rate.NewLimiter(rate.Inf, 1)}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// NewLimiter returns a limiter allowing requestsPerMinute calls; zero or
// negative means unlimited.
func NewLimiter(requestsPerMinute int) *rate.Limiter {
	if requestsPerMinute <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), 1)
}

// New builds the configured provider.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (Extractor, error) {
	opts = append([]Option{WithLimiter(NewLimiter(cfg.Extractor.RequestsPerMinute))}, opts...)
	switch cfg.Extractor.Provider {
	case "anthropic", "":
		if cfg.Anthropic.Key == "" {
			return nil, eris.New("extractor: anthropic provider requires anthropic.key")
		}
		client := anthropic.NewClient(cfg.Anthropic.Key)
		return NewAnthropic(client, cfg.Anthropic.Model, cfg.Extractor.MaxTokens, opts...), nil
	case "gemini":
		if cfg.Gemini.Key == "" {
			return nil, eris.New("extractor: gemini provider requires gemini.key")
		}
		return NewGeminiFromKey(ctx, cfg.Gemini.Key, cfg.Gemini.Model, cfg.Extractor.MaxTokens, opts...)
	default:
		return nil, eris.Errorf("extractor: unknown provider %q", cfg.Extractor.Provider)
	}
}

// saveRaw hands raw to the hook, if any.
func (o options) saveRaw(ctx context.Context, raw string) error {
	if o.rawHook == nil {
		return nil
	}
	return eris.Wrap(o.rawHook(ctx, raw), "extractor: raw hook")
}

// finish runs the raw hook and parses the response.
func (o options) finish(ctx context.Context, raw, model string, usage anthropic.TokenUsage) (*Result, error) {
	if err := o.saveRaw(ctx, raw); err != nil {
		return nil, err
	}

	schema, err := rules.ParseSkipSchema([]byte(CleanJSON(raw)))
	if err != nil {
		return nil, &SchemaError{Raw: raw, Err: err}
	}

	zap.L().Info("extractor: schema parsed",
		zap.String("model", model),
		zap.Int("groups", len(schema.Groups)),
	)
	return &Result{Schema: schema, Raw: raw, Model: model, Usage: usage}, nil
}

func (o options) wait(ctx context.Context) error {
	if err := o.limiter.Wait(ctx); err != nil {
		return eris.Wrap(err, "extractor: rate limit wait")
	}
	return nil
}

// CleanJSON strips markdown code fences and any prose around the outermost
// JSON object.
func CleanJSON(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}

	return strings.TrimSpace(text)
}
