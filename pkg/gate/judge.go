package gate

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/zen-systems/insightgate/pkg/insight"
	"github.com/zen-systems/insightgate/pkg/provider"
)

// Judge scores text with a model and degrades to the heuristic rubric
// when the model is unreachable or returns garbage.
type Judge struct {
	client   provider.ModelClient
	fallback Scorer
	timeout  time.Duration
	log      *zap.Logger
}

// NewJudge creates a model-backed scorer.
func NewJudge(client provider.ModelClient, log *zap.Logger) *Judge {
	if log == nil {
		log = zap.NewNop()
	}
	return &Judge{
		client:   client,
		fallback: NewHeuristic(),
		timeout:  5 * time.Second,
		log:      log,
	}
}

// Score asks the model to grade the text from 0 to 100.
func (j *Judge) Score(ctx context.Context, req insight.Request, text string) float64 {
	if j.client == nil {
		return j.fallback.Score(ctx, req, text)
	}

	judgeCtx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	prompt := fmt.Sprintf(
		"Grade the following spiritual insight from 0 to 100 for tone, specificity, and numerological consistency "+
			"with focus number %d and realm number %d. Reply with only the number.\n\n%s",
		req.Focus, req.Realm, text)

	reply, err := j.client.Complete(judgeCtx, prompt)
	if err != nil {
		j.log.Debug("judge model unavailable, using heuristic score", zap.Error(err))
		return j.fallback.Score(ctx, req, text)
	}

	grade, ok := parseGrade(reply)
	if !ok {
		j.log.Debug("judge reply unparseable, using heuristic score", zap.String("reply", reply))
		return j.fallback.Score(ctx, req, text)
	}
	return clamp(grade / 100)
}

func parseGrade(reply string) (float64, bool) {
	for _, field := range strings.Fields(reply) {
		field = strings.Trim(field, ".,:%")
		if n, err := strconv.Atoi(field); err == nil && n >= 0 && n <= 100 {
			return float64(n), true
		}
	}
	return 0, false
}
