package orchestrator

import "fmt"

// Strategy names the policy governing provider selection.
type Strategy string

const (
	// StrategyAutomatic resolves to the richest available provider using
	// a fixed priority order: content, then hybrid, then template.
	StrategyAutomatic Strategy = "automatic"

	// StrategyContent forces the primary live-content provider.
	StrategyContent Strategy = "content"

	// StrategyHybrid forces the hybrid-blend provider.
	StrategyHybrid Strategy = "hybrid"

	// StrategyTemplate forces the deterministic template provider.
	StrategyTemplate Strategy = "template"

	// StrategyStub forces the basic stub provider.
	StrategyStub Strategy = "stub"

	// StrategyRemote forces the model-backed provider. Reserved for
	// hosts that configure a model endpoint.
	StrategyRemote Strategy = "remote"
)

// knownStrategies lists every strategy in automatic-priority order for
// the ones automatic may select, then the explicit-only strategies.
var knownStrategies = []Strategy{
	StrategyAutomatic,
	StrategyContent,
	StrategyHybrid,
	StrategyTemplate,
	StrategyStub,
	StrategyRemote,
}

// ParseStrategy validates a strategy name.
func ParseStrategy(s string) (Strategy, error) {
	for _, known := range knownStrategies {
		if Strategy(s) == known {
			return known, nil
		}
	}
	return "", fmt.Errorf("unknown strategy %q", s)
}
