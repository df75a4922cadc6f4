// Package engine exposes the consumer-facing operation set over the
// orchestrator, shadow manager, and quality gate.
package engine

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/zen-systems/insightgate/pkg/gate"
	"github.com/zen-systems/insightgate/pkg/insight"
	"github.com/zen-systems/insightgate/pkg/orchestrator"
	"github.com/zen-systems/insightgate/pkg/shadow"
)

// Engine is the single entry point external callers use. A caller-level
// timeout wraps every generate, compete, and guarantee call; cancellation
// is terminal for that call.
type Engine struct {
	orch    *orchestrator.Orchestrator
	gate    *gate.Gate
	shadow  *shadow.Manager
	timeout time.Duration
	log     *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithShadow attaches a shadow-mode competition manager.
func WithShadow(m *shadow.Manager) Option {
	return func(e *Engine) {
		e.shadow = m
	}
}

// WithTimeout sets the caller-level deadline per operation.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		e.timeout = d
	}
}

// WithLogger sets the engine's logger.
func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) {
		e.log = log
	}
}

// New creates an engine over the orchestrator and quality gate.
func New(orch *orchestrator.Orchestrator, g *gate.Gate, opts ...Option) *Engine {
	e := &Engine{
		orch:    orch,
		gate:    g,
		timeout: 30 * time.Second,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SetStrategy switches the active generation strategy.
func (e *Engine) SetStrategy(name string) error {
	s, err := orchestrator.ParseStrategy(name)
	if err != nil {
		return err
	}
	return e.orch.SetStrategy(s)
}

// GenerateInsight produces insight text for the given context and numbers.
// While shadow mode is active the request runs as a competition and the
// winner's text is returned.
func (e *Engine) GenerateInsight(ctx context.Context, contextLabel string, focus, realm int, extras map[string]string) (string, error) {
	res, err := e.GenerateStructuredInsight(ctx, contextLabel, focus, realm, extras)
	if err != nil {
		return "", err
	}
	return res.Text, nil
}

// GenerateStructuredInsight produces a structured insight with source,
// confidence, and latency populated.
func (e *Engine) GenerateStructuredInsight(ctx context.Context, contextLabel string, focus, realm int, extras map[string]string) (*insight.Insight, error) {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	req := insight.NewRequest(contextLabel, focus, realm)
	for k, v := range extras {
		req = req.WithExtra(k, v)
	}

	if e.shadow != nil && e.shadow.Active() {
		res, err := e.shadow.Compete(ctx, req)
		if err == nil {
			return res.Displayed, nil
		}
		e.log.Warn("shadow competition failed, using orchestrator path", zap.Error(err))
	}

	return e.orch.GenerateStructured(ctx, req)
}

// GetAvailableStrategies lists every registered strategy.
func (e *Engine) GetAvailableStrategies() []orchestrator.Strategy {
	return e.orch.AvailableStrategies()
}

// GetPerformanceReport renders the ledger dump.
func (e *Engine) GetPerformanceReport() string {
	return e.orch.PerformanceReport()
}

// GenerateGuaranteedInsight runs the quality gate's bounded loop and
// returns text with its score.
func (e *Engine) GenerateGuaranteedInsight(ctx context.Context, focus, realm int, persona insight.Persona, contextLabel string) (string, float64, error) {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()
	return e.gate.Guarantee(ctx, focus, realm, persona, contextLabel)
}

// GetDiagnostics returns operator-facing state across all managers.
func (e *Engine) GetDiagnostics() map[string]string {
	diag := e.orch.Diagnostics()
	if e.shadow != nil {
		if e.shadow.Active() {
			diag["shadow_state"] = "active"
			diag["shadow_phase"] = string(e.shadow.Phase())
		} else {
			diag["shadow_state"] = "inactive"
		}
	}
	return diag
}

func (e *Engine) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, e.timeout)
}
