// Package gate scores generated insights and enforces a minimum-quality
// guarantee through a bounded retry loop.
package gate

import (
	"context"
	"strconv"
	"strings"

	"github.com/zen-systems/insightgate/pkg/insight"
)

// Scorer assigns a quality score in [0,1] to generated text. Rubric
// internals are content concerns; the orchestration core only depends on
// the score and the threshold.
type Scorer interface {
	Score(ctx context.Context, req insight.Request, text string) float64
}

// Heuristic scores text on length, numeric grounding, and the absence of
// placeholder artifacts.
type Heuristic struct{}

// NewHeuristic creates the default scorer.
func NewHeuristic() *Heuristic {
	return &Heuristic{}
}

// Score evaluates text against the fixed rubric.
func (h *Heuristic) Score(_ context.Context, req insight.Request, text string) float64 {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0
	}

	score := 0.5

	switch length := len(trimmed); {
	case length < 40:
		score -= 0.2
	case length <= 600:
		score += 0.15
	default:
		score -= 0.1
	}

	if strings.Contains(trimmed, strconv.Itoa(req.Focus)) {
		score += 0.15
	}
	if strings.Contains(trimmed, strconv.Itoa(req.Realm)) {
		score += 0.15
	}

	for _, marker := range []string{"{{", "}}", "TODO", "lorem ipsum", "[insert"} {
		if strings.Contains(strings.ToLower(trimmed), strings.ToLower(marker)) {
			score -= 0.3
			break
		}
	}

	return clamp(score)
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
