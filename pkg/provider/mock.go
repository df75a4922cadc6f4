package provider

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/zen-systems/insightgate/pkg/insight"
)

// Mock returns scripted responses for tests. It supports failure
// injection, availability toggling, and artificial delay.
type Mock struct {
	MockName   string
	Text       string
	Confidence float64
	Err        error
	Unready    bool
	Delay      time.Duration

	calls atomic.Int64
}

// NewMock creates a mock provider with a default response.
func NewMock(name string) *Mock {
	return &Mock{
		MockName:   name,
		Text:       "mock insight from " + name,
		Confidence: 0.8,
	}
}

// Name returns the mock's configured identifier.
func (m *Mock) Name() string {
	return m.MockName
}

// Available reports the configured readiness.
func (m *Mock) Available(_ context.Context) bool {
	return !m.Unready
}

// Calls returns how many generation calls the mock has served.
func (m *Mock) Calls() int64 {
	return m.calls.Load()
}

// Generate returns the scripted text or error after the configured delay.
func (m *Mock) Generate(ctx context.Context, _ insight.Request) (string, error) {
	m.calls.Add(1)
	if m.Delay > 0 {
		select {
		case <-time.After(m.Delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if m.Err != nil {
		return "", m.Err
	}
	return m.Text, nil
}

// GenerateStructured wraps the scripted text in a structured insight.
func (m *Mock) GenerateStructured(ctx context.Context, req insight.Request) (*insight.Insight, error) {
	start := time.Now()
	text, err := m.Generate(ctx, req)
	if err != nil {
		return nil, err
	}
	return insight.New(text, m.Name(), m.Confidence, time.Since(start)), nil
}
