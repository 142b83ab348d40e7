package harness

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/patchbind/internal/loader"
	"github.com/roach88/patchbind/internal/patch"
	"github.com/roach88/patchbind/internal/samples"
)

// Harness compiles scenarios and evaluates their assertions.
type Harness struct {
	logger  *slog.Logger
	metrics *patch.Metrics
}

// Option configures a Harness.
type Option func(*Harness)

// WithLogger sets the logger handed to the compiler. The default discards.
func WithLogger(l *slog.Logger) Option {
	return func(h *Harness) { h.logger = l }
}

// WithMetrics records every scenario pass in m.
func WithMetrics(m *patch.Metrics) Option {
	return func(h *Harness) { h.metrics = m }
}

// New creates a Harness.
func New(opts ...Option) *Harness {
	h := &Harness{}
	for _, opt := range opts {
		opt(h)
	}
	if h.logger == nil {
		h.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return h
}

// Run executes a scenario with a default Harness.
func Run(s *Scenario) (*Result, error) {
	return New().Run(s)
}

// Run loads the scenario's patch, compiles it and evaluates every
// assertion. A patch the compiler rejects is a normal outcome; an error is
// returned only when the scenario cannot be executed at all.
func (h *Harness) Run(s *Scenario) (*Result, error) {
	if s == nil {
		return nil, fmt.Errorf("scenario is nil")
	}

	cfg := s.Env.Config()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	mode, err := patch.ParseMode(cfg.Mode)
	if err != nil {
		return nil, err
	}
	manifest := &samples.Manifest{Samples: s.Env.Samples}
	table, err := manifest.SilentTable()
	if err != nil {
		return nil, fmt.Errorf("building sample table: %w", err)
	}

	p, err := loader.Load(s.Patch)
	if err != nil {
		return nil, fmt.Errorf("loading patch: %w", err)
	}

	opts := []patch.Option{patch.WithMode(mode), patch.WithLogger(h.logger)}
	if h.metrics != nil {
		opts = append(opts, patch.WithMetrics(h.metrics))
	}
	res, compileErr := patch.New(opts...).Compile(p, cfg.Context(table))

	result := NewResult()
	switch {
	case compileErr == nil:
		result.record(res)
	default:
		var ce *patch.CompileError
		if !errors.As(compileErr, &ce) {
			return nil, compileErr
		}
		result.recordRejected(p, ce)
	}

	h.logger.Debug("scenario compiled",
		"scenario", s.Name,
		"compiled", result.Compiled,
		"failures", len(result.Failures),
	)

	for i, a := range s.Assertions {
		if err := evaluate(result, a); err != nil {
			result.AddError(fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return result, nil
}
