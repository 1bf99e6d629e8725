package engine

import (
	"io"
	"log/slog"
	"time"

	"github.com/goliatone/go-formcheck/pkg/layout/expr"
	"github.com/goliatone/go-formcheck/pkg/metrics"
	"github.com/goliatone/go-formcheck/pkg/rules"
	"github.com/goliatone/go-formcheck/pkg/schemavalidator"
)

// Option customises the engine configuration.
type Option func(*Engine)

// WithCache injects the validator cache shared by every run. The host owns
// it; engines built without one get a private, empty cache.
func WithCache(cache *schemavalidator.Cache) Option {
	return func(e *Engine) {
		e.cache = cache
	}
}

// WithTexts sets the message resolver used by every pass.
func WithTexts(texts rules.Texts) Option {
	return func(e *Engine) {
		e.texts = texts
	}
}

// WithLogger sets the structured logger. The default discards output.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithMetrics records run and pass metrics on collector.
func WithMetrics(collector *metrics.Collector) Option {
	return func(e *Engine) {
		e.metrics = collector
	}
}

// WithSchemaOptions tunes the schema pass.
func WithSchemaOptions(opts rules.SchemaOptions) Option {
	return func(e *Engine) {
		e.schemaOpts = opts
	}
}

// WithClock overrides the time source used for `today` date constraints.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithEvaluator overrides the evaluator for component `hidden` rules.
func WithEvaluator(evaluator *expr.Evaluator) Option {
	return func(e *Engine) {
		e.evaluator = evaluator
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
