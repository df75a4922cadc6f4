// Package orchestrator maps strategies to providers, executes generation
// calls, and walks the one-step fallback chain on failure.
package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/zen-systems/insightgate/pkg/content"
	"github.com/zen-systems/insightgate/pkg/insight"
	"github.com/zen-systems/insightgate/pkg/ledger"
	"github.com/zen-systems/insightgate/pkg/provider"
)

// Event notifies subscribers of orchestrator state changes.
type Event struct {
	Strategy Strategy
	Provider string
}

// Orchestrator holds the provider registry and executes generation with
// metrics recording and one-shot fallback to the template provider.
type Orchestrator struct {
	ledger   *ledger.Ledger
	fallback provider.Provider
	router   *content.Router
	log      *zap.Logger

	mu          sync.RWMutex
	providers   map[Strategy]provider.Provider
	strategy    Strategy
	active      string
	subscribers []func(Event)

	fallbackCalls atomic.Int64
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the orchestrator's logger.
func WithLogger(log *zap.Logger) Option {
	return func(o *Orchestrator) {
		o.log = log
	}
}

// WithRouter attaches the content router for diagnostics reporting.
func WithRouter(r *content.Router) Option {
	return func(o *Orchestrator) {
		o.router = r
	}
}

// New creates an orchestrator. The fallback provider must always be
// available; it is the terminal step of every fallback chain and is never
// itself subject to further fallback.
func New(l *ledger.Ledger, fallback provider.Provider, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		ledger:    l,
		fallback:  fallback,
		log:       zap.NewNop(),
		providers: make(map[Strategy]provider.Provider),
		strategy:  StrategyAutomatic,
	}
	for _, opt := range opts {
		opt(o)
	}
	o.providers[StrategyTemplate] = fallback
	return o
}

// Register binds a strategy to a provider. A strategy may share a
// provider with another strategy.
func (o *Orchestrator) Register(s Strategy, p provider.Provider) {
	o.mu.Lock()
	o.providers[s] = p
	o.mu.Unlock()
}

// Subscribe adds a callback invoked on strategy changes.
func (o *Orchestrator) Subscribe(fn func(Event)) {
	o.mu.Lock()
	o.subscribers = append(o.subscribers, fn)
	o.mu.Unlock()
}

// SetStrategy switches the active strategy and eagerly resolves the
// active provider's name for observability.
func (o *Orchestrator) SetStrategy(s Strategy) error {
	if _, err := ParseStrategy(string(s)); err != nil {
		return err
	}

	resolveCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	p, err := o.resolve(resolveCtx, s)

	o.mu.Lock()
	o.strategy = s
	if err == nil {
		o.active = p.Name()
	} else {
		o.active = ""
	}
	subscribers := make([]func(Event), len(o.subscribers))
	copy(subscribers, o.subscribers)
	event := Event{Strategy: s, Provider: o.active}
	o.mu.Unlock()

	for _, fn := range subscribers {
		fn(event)
	}

	o.log.Info("strategy changed",
		zap.String("strategy", string(s)),
		zap.String("provider", event.Provider),
	)
	return nil
}

// Strategy returns the active strategy.
func (o *Orchestrator) Strategy() Strategy {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.strategy
}

// ActiveProvider returns the most recently resolved provider name.
func (o *Orchestrator) ActiveProvider() string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.active
}

// AvailableStrategies returns every strategy with a registered provider,
// in priority order. Automatic is always present.
func (o *Orchestrator) AvailableStrategies() []Strategy {
	o.mu.RLock()
	defer o.mu.RUnlock()

	out := []Strategy{StrategyAutomatic}
	for _, s := range knownStrategies {
		if s == StrategyAutomatic {
			continue
		}
		if _, ok := o.providers[s]; ok {
			out = append(out, s)
		}
	}
	return out
}

// resolve maps a strategy to a provider. Automatic resolution prefers the
// live-content provider when available, then the hybrid provider, then
// the template fallback. The order is fixed; ledger metrics never
// influence it.
func (o *Orchestrator) resolve(ctx context.Context, s Strategy) (provider.Provider, error) {
	o.mu.RLock()
	contentProvider := o.providers[StrategyContent]
	hybridProvider := o.providers[StrategyHybrid]
	registered, ok := o.providers[s]
	o.mu.RUnlock()

	if s == StrategyAutomatic {
		if contentProvider != nil && contentProvider.Available(ctx) {
			return contentProvider, nil
		}
		if hybridProvider != nil && hybridProvider.Available(ctx) {
			return hybridProvider, nil
		}
		return o.fallback, nil
	}

	if !ok {
		return nil, fmt.Errorf("%w: %s", insight.ErrProviderUnavailable, s)
	}
	return registered, nil
}

// Generate produces insight text for the active strategy. The primary
// attempt always completes before any fallback begins, and the ledger
// reflects every attempt before Generate returns.
func (o *Orchestrator) Generate(ctx context.Context, req insight.Request) (string, error) {
	text, _, err := o.generate(ctx, req, func(ctx context.Context, p provider.Provider) (string, *insight.Insight, error) {
		text, err := p.Generate(ctx, req)
		return text, nil, err
	})
	return text, err
}

// GenerateStructured produces a structured insight for the active
// strategy, annotating fallback use in metadata.
func (o *Orchestrator) GenerateStructured(ctx context.Context, req insight.Request) (*insight.Insight, error) {
	_, out, err := o.generate(ctx, req, func(ctx context.Context, p provider.Provider) (string, *insight.Insight, error) {
		res, err := p.GenerateStructured(ctx, req)
		if err != nil {
			return "", nil, err
		}
		return res.Text, res, nil
	})
	return out, err
}

type generateFunc func(ctx context.Context, p provider.Provider) (string, *insight.Insight, error)

func (o *Orchestrator) generate(ctx context.Context, req insight.Request, call generateFunc) (string, *insight.Insight, error) {
	strategy := o.Strategy()
	primary, err := o.resolve(ctx, strategy)
	if err != nil {
		return "", nil, err
	}

	start := time.Now()
	text, structured, primaryErr := call(ctx, primary)
	latency := time.Since(start)
	o.ledger.Record(primary.Name(), latency, primaryErr == nil)

	if primaryErr == nil {
		return text, structured, nil
	}

	// Caller-level cancellation is terminal; no fallback is attempted.
	if ctx.Err() != nil {
		return "", nil, fmt.Errorf("generation timed out: %w", ctx.Err())
	}

	o.log.Warn("primary provider failed, invoking fallback",
		zap.String("provider", primary.Name()),
		zap.String("strategy", string(strategy)),
		zap.Error(primaryErr),
	)

	// Exactly one fallback attempt, and never for the fallback provider
	// itself; this keeps the chain finite.
	if primary.Name() == o.fallback.Name() {
		return "", nil, primaryErr
	}

	o.fallbackCalls.Add(1)
	fbStart := time.Now()
	fbText, fbStructured, fbErr := call(ctx, o.fallback)
	o.ledger.Record(o.fallback.Name(), time.Since(fbStart), fbErr == nil)

	if fbErr != nil {
		// Fallback failure never masks the original error.
		return "", nil, primaryErr
	}

	if fbStructured != nil {
		fbStructured = fbStructured.WithMetadata("fallback_used", "true")
	}
	return fbText, fbStructured, nil
}

// PerformanceReport renders the ledger's human-readable dump.
func (o *Orchestrator) PerformanceReport() string {
	return o.ledger.Report()
}

// Diagnostics returns operator-facing state: manifest load state, bundle
// hash prefix, fallback counts, and the active strategy.
func (o *Orchestrator) Diagnostics() map[string]string {
	diag := map[string]string{
		"strategy":           string(o.Strategy()),
		"active_provider":    o.ActiveProvider(),
		"provider_fallbacks": fmt.Sprintf("%d", o.fallbackCalls.Load()),
		"manifest_loaded":    "false",
	}

	if o.router != nil {
		diag["content_fallbacks"] = fmt.Sprintf("%d", o.router.FallbackCount())
		if m := o.router.Manifest(); m != nil {
			diag["manifest_loaded"] = "true"
			diag["manifest_version"] = m.Version
			diag["bundle_hash"] = m.HashPrefix()
			if missing := m.MissingCoverage(); len(missing) > 0 {
				diag["missing_numbers"] = fmt.Sprintf("%v", missing)
			}
		}
	}
	return diag
}
