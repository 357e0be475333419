package framex

import (
	"io"
	"log/slog"
)

// Options holds shared configuration for the engine, ingestor, and session.
type Options struct {
	logger       *slog.Logger
	evaluator    FormulaEvaluator
	sourceColumn string
}

func defaultOptions() *Options {
	return &Options{
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		evaluator:    NewFormulaEvaluator(),
		sourceColumn: "_source_file",
	}
}

// Option configures the engine, ingestor, or session.
type Option func(*Options)

// WithLogger sets a structured logger. By default logs are discarded.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithEvaluator sets a custom formula evaluator.
func WithEvaluator(ev FormulaEvaluator) Option {
	return func(o *Options) {
		if ev != nil {
			o.evaluator = ev
		}
	}
}

// WithSourceColumn sets the name of the provenance column appended during
// ingestion (default: "_source_file").
func WithSourceColumn(name string) Option {
	return func(o *Options) {
		if name != "" {
			o.sourceColumn = name
		}
	}
}
