package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/zen-systems/insightgate/pkg/insight"
)

// StubName is the identifier of the minimal deterministic provider.
const StubName = "stub"

// Stub produces minimal deterministic insight text. It backs the
// basic-stub strategy and exists so fully offline hosts still get output.
type Stub struct{}

// NewStub creates the stub provider.
func NewStub() *Stub {
	return &Stub{}
}

// Name returns the provider identifier.
func (s *Stub) Name() string {
	return StubName
}

// Available always reports true.
func (s *Stub) Available(_ context.Context) bool {
	return true
}

// Generate returns a short fixed-form sentence for the request.
func (s *Stub) Generate(_ context.Context, req insight.Request) (string, error) {
	return fmt.Sprintf("Focus %d meets realm %d: a day to act on what %s asks of you.",
		req.Focus, req.Realm, Archetype(req.Focus)), nil
}

// GenerateStructured wraps the stub text with a modest fixed confidence.
func (s *Stub) GenerateStructured(ctx context.Context, req insight.Request) (*insight.Insight, error) {
	start := time.Now()
	text, err := s.Generate(ctx, req)
	if err != nil {
		return nil, err
	}
	return insight.New(text, s.Name(), 0.5, time.Since(start)), nil
}
