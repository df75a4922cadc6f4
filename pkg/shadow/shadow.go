// Package shadow races the content-backed provider against the
// model-backed provider for the same request and publishes comparative
// results without blocking the primary path beyond a bounded ceiling.
package shadow

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/zen-systems/insightgate/pkg/gate"
	"github.com/zen-systems/insightgate/pkg/insight"
	"github.com/zen-systems/insightgate/pkg/provider"
)

// Phase labels the competition mode while the manager is active.
type Phase string

const (
	// PhaseShadow runs comparisons for evaluation only.
	PhaseShadow Phase = "shadow"

	// PhaseLive runs comparisons whose winner is served to users.
	PhaseLive Phase = "live"
)

// Side tags in competition results.
const (
	SideContent = "content"
	SideModel   = "model"
)

// Attempt statuses.
const (
	StatusOK      = "ok"
	StatusTimeout = "timeout"
	StatusError   = "error"
)

// ErrInactive is returned by Compete when shadow mode is not active.
var ErrInactive = errors.New("shadow mode inactive")

// Attempt is one side's outcome in a competition.
type Attempt struct {
	Provider string
	Insight  *insight.Insight
	Score    float64
	Status   string
	Err      error
	Latency  time.Duration
}

// Result pairs the two attempts with the winner and the displayed insight.
type Result struct {
	ContentSide Attempt
	ModelSide   Attempt
	Winner      string
	Phase       Phase
	Displayed   *insight.Insight
}

// Manager is the shadow-mode state machine: inactive, or active with a
// phase. Activation requires the model provider to pass one bounded
// readiness probe.
type Manager struct {
	content provider.Provider
	model   provider.Provider
	scorer  gate.Scorer
	log     *zap.Logger

	probeWait    time.Duration
	probeTimeout time.Duration
	ceiling      time.Duration

	mu     sync.Mutex
	active bool
	phase  Phase
}

// Option configures a Manager.
type Option func(*Manager)

// WithCeiling sets the timeout applied to the slower side.
func WithCeiling(d time.Duration) Option {
	return func(m *Manager) {
		m.ceiling = d
	}
}

// WithProbeWait sets the fixed wait before the activation probe.
func WithProbeWait(d time.Duration) Option {
	return func(m *Manager) {
		m.probeWait = d
	}
}

// WithProbeTimeout bounds the activation probe itself.
func WithProbeTimeout(d time.Duration) Option {
	return func(m *Manager) {
		m.probeTimeout = d
	}
}

// WithLogger sets the manager's logger.
func WithLogger(log *zap.Logger) Option {
	return func(m *Manager) {
		m.log = log
	}
}

// NewManager creates an inactive competition manager.
func NewManager(content, model provider.Provider, scorer gate.Scorer, opts ...Option) *Manager {
	m := &Manager{
		content:      content,
		model:        model,
		scorer:       scorer,
		log:          zap.NewNop(),
		probeWait:    2 * time.Second,
		probeTimeout: 2 * time.Second,
		ceiling:      3 * time.Second,
		phase:        PhaseShadow,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Activate transitions inactive to active(shadow) when the model provider
// reports ready within the probe window: a fixed wait, then one readiness
// check, with no retry loop. Activating while already active is a no-op
// and does not restart in-flight competitions.
func (m *Manager) Activate(ctx context.Context) bool {
	m.mu.Lock()
	if m.active {
		m.mu.Unlock()
		return true
	}
	m.mu.Unlock()

	select {
	case <-time.After(m.probeWait):
	case <-ctx.Done():
		return false
	}

	probeCtx, cancel := context.WithTimeout(ctx, m.probeTimeout)
	defer cancel()
	if !m.model.Available(probeCtx) {
		m.log.Info("shadow mode not activated, model provider not ready")
		return false
	}

	m.mu.Lock()
	m.active = true
	m.phase = PhaseShadow
	m.mu.Unlock()

	m.log.Info("shadow mode activated", zap.String("phase", string(PhaseShadow)))
	return true
}

// Deactivate returns the manager to the inactive state.
func (m *Manager) Deactivate() {
	m.mu.Lock()
	m.active = false
	m.mu.Unlock()
}

// Active reports whether the manager is active.
func (m *Manager) Active() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

// Phase returns the current competition phase.
func (m *Manager) Phase() Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phase
}

// SetPhase switches between shadow and live competition.
func (m *Manager) SetPhase(p Phase) {
	m.mu.Lock()
	m.phase = p
	m.mu.Unlock()
}

type sideOutcome struct {
	side    string
	ins     *insight.Insight
	err     error
	latency time.Duration
}

// Compete runs both providers concurrently for the request. Both sides
// start atomically and may run to completion; a side that exceeds the
// ceiling is marked timed out and ignored, not cancelled. The winner is
// the higher-scoring side, with ties broken in favor of curated content.
func (m *Manager) Compete(ctx context.Context, req insight.Request) (*Result, error) {
	if !m.Active() {
		return nil, ErrInactive
	}
	phase := m.Phase()

	ch := make(chan sideOutcome, 2)
	run := func(side string, p provider.Provider) {
		start := time.Now()
		ins, err := p.GenerateStructured(ctx, req)
		ch <- sideOutcome{side: side, ins: ins, err: err, latency: time.Since(start)}
	}
	go run(SideContent, m.content)
	go run(SideModel, m.model)

	contentAtt := Attempt{Provider: m.content.Name(), Status: StatusTimeout}
	modelAtt := Attempt{Provider: m.model.Name(), Status: StatusTimeout}

	timer := time.NewTimer(m.ceiling)
	defer timer.Stop()

	for received := 0; received < 2; {
		select {
		case out := <-ch:
			att := Attempt{
				Provider: m.byName(out.side).Name(),
				Insight:  out.ins,
				Err:      out.err,
				Latency:  out.latency,
				Status:   StatusOK,
			}
			if out.err != nil {
				att.Status = StatusError
			}
			if out.side == SideContent {
				contentAtt = att
			} else {
				modelAtt = att
			}
			received++
		case <-timer.C:
			received = 2
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if contentAtt.Insight != nil {
		contentAtt.Score = m.scorer.Score(ctx, req, contentAtt.Insight.Text)
	}
	if modelAtt.Insight != nil {
		modelAtt.Score = m.scorer.Score(ctx, req, modelAtt.Insight.Text)
	}

	winner, winning := pickWinner(contentAtt, modelAtt)
	if winning == nil {
		return nil, insight.NewGenerationError("shadow", "both competition sides failed",
			errors.Join(contentAtt.Err, modelAtt.Err))
	}

	displayed := winning.Insight.
		WithMetadata("winner", winner).
		WithMetadata("phase", string(phase))

	m.log.Debug("shadow competition decided",
		zap.String("winner", winner),
		zap.Float64("content_score", contentAtt.Score),
		zap.Float64("model_score", modelAtt.Score),
		zap.String("content_status", contentAtt.Status),
		zap.String("model_status", modelAtt.Status),
	)

	return &Result{
		ContentSide: contentAtt,
		ModelSide:   modelAtt,
		Winner:      winner,
		Phase:       phase,
		Displayed:   displayed,
	}, nil
}

func (m *Manager) byName(side string) provider.Provider {
	if side == SideContent {
		return m.content
	}
	return m.model
}

// pickWinner ranks the two attempts. A sole survivor wins by default;
// when both produced output the higher score wins and ties go to the
// content side, which carries lower operational risk.
func pickWinner(contentAtt, modelAtt Attempt) (string, *Attempt) {
	contentOK := contentAtt.Status == StatusOK && contentAtt.Insight != nil
	modelOK := modelAtt.Status == StatusOK && modelAtt.Insight != nil

	switch {
	case contentOK && modelOK:
		if modelAtt.Score > contentAtt.Score {
			return SideModel, &modelAtt
		}
		return SideContent, &contentAtt
	case contentOK:
		return SideContent, &contentAtt
	case modelOK:
		return SideModel, &modelAtt
	default:
		return "", nil
	}
}
