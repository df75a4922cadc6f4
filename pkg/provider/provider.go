// Package provider defines the inference-provider contract and the
// concrete backends that satisfy it.
package provider

import (
	"context"

	"github.com/zen-systems/insightgate/pkg/insight"
)

// Provider is one concrete way to produce an insight. Implementations are
// stateless from the orchestrator's point of view, safe for concurrent
// calls, and never fail for merely low-quality output; quality is judged
// by the gate, not the provider.
type Provider interface {
	// Name returns the provider's stable identifier.
	Name() string

	// Available reports whether the provider can serve requests. This may
	// involve a bounded readiness check, e.g. a network probe.
	Available(ctx context.Context) bool

	// Generate produces insight text for the request.
	Generate(ctx context.Context, req insight.Request) (string, error)

	// GenerateStructured produces a structured insight with source,
	// confidence, and latency populated.
	GenerateStructured(ctx context.Context, req insight.Request) (*insight.Insight, error)
}
