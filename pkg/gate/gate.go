package gate

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/zen-systems/insightgate/pkg/insight"
)

// Generator produces one candidate insight. The orchestrator's generation
// entry points satisfy this shape.
type Generator func(ctx context.Context, req insight.Request) (*insight.Insight, error)

// Gate enforces a minimum-quality guarantee: it scores candidates and
// drives a bounded alternate-strategy retry loop, degrading to the best
// candidate seen rather than failing the caller. At-most-N-then-degrade,
// never at-least-once-until-success.
type Gate struct {
	primary     Generator
	alternates  []Generator
	scorer      Scorer
	threshold   float64
	maxAttempts int
	floorScore  float64
	log         *zap.Logger
}

// Option configures a Gate.
type Option func(*Gate)

// WithThreshold sets the acceptance threshold.
func WithThreshold(t float64) Option {
	return func(g *Gate) {
		g.threshold = t
	}
}

// WithMaxAttempts bounds the total number of generation attempts.
func WithMaxAttempts(n int) Option {
	return func(g *Gate) {
		if n > 0 {
			g.maxAttempts = n
		}
	}
}

// WithLogger sets the gate's logger.
func WithLogger(log *zap.Logger) Option {
	return func(g *Gate) {
		g.log = log
	}
}

// New creates a gate over a primary generation path and alternate paths
// tried in rotation when candidates fall below threshold.
func New(primary Generator, alternates []Generator, scorer Scorer, opts ...Option) *Gate {
	g := &Gate{
		primary:     primary,
		alternates:  alternates,
		scorer:      scorer,
		threshold:   0.7,
		maxAttempts: 3,
		floorScore:  0.4,
		log:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Guarantee returns insight text meeting the threshold, or the best
// candidate seen with a conservative floor score when no attempt clears
// it. It returns an error only when every attempt failed to produce text,
// or on caller-level cancellation.
func (g *Gate) Guarantee(ctx context.Context, focus, realm int, persona insight.Persona, contextLabel string) (string, float64, error) {
	req := insight.NewRequest(contextLabel, focus, realm)
	if persona != "" {
		req = req.WithExtra("persona", string(persona))
	}

	result, score, err := g.GuaranteeRequest(ctx, req)
	if err != nil {
		return "", 0, err
	}
	return result.Text, score, nil
}

// GuaranteeRequest runs the bounded quality loop for a prepared request.
func (g *Gate) GuaranteeRequest(ctx context.Context, req insight.Request) (*insight.Insight, float64, error) {
	generators := append([]Generator{g.primary}, g.alternates...)

	var best *insight.Insight
	var bestScore float64
	var lastErr error

	for attempt := 0; attempt < g.maxAttempts; attempt++ {
		if ctx.Err() != nil {
			return nil, 0, fmt.Errorf("quality guarantee cancelled: %w", ctx.Err())
		}

		gen := generators[attempt%len(generators)]
		candidate, err := gen(ctx, req)
		if err != nil {
			lastErr = err
			g.log.Debug("quality gate attempt failed",
				zap.Int("attempt", attempt+1),
				zap.Error(err),
			)
			continue
		}

		score := g.scorer.Score(ctx, req, candidate.Text)
		if score >= g.threshold {
			return candidate.WithMetadata("quality_score", fmt.Sprintf("%.2f", score)), score, nil
		}

		g.log.Debug("candidate below quality threshold",
			zap.Int("attempt", attempt+1),
			zap.Float64("score", score),
			zap.Float64("threshold", g.threshold),
		)

		if best == nil || score > bestScore {
			best = candidate
			bestScore = score
		}
	}

	if best != nil {
		// Degrade to the best candidate with a conservative score; the
		// consuming UI has no graceful empty state.
		return best.WithMetadata("quality_degraded", "true"), g.floorScore, nil
	}

	return nil, 0, insight.NewGenerationError("gate", "all quality attempts failed", lastErr)
}
