package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zen-systems/insightgate/pkg/gate"
	"github.com/zen-systems/insightgate/pkg/insight"
	"github.com/zen-systems/insightgate/pkg/ledger"
	"github.com/zen-systems/insightgate/pkg/orchestrator"
	"github.com/zen-systems/insightgate/pkg/provider"
	"github.com/zen-systems/insightgate/pkg/shadow"
)

type passScorer struct{}

func (passScorer) Score(_ context.Context, _ insight.Request, _ string) float64 {
	return 0.9
}

func newEngine(t *testing.T, opts ...Option) (*Engine, *provider.Mock) {
	t.Helper()

	fallback := provider.NewMock("template")
	fallback.Text = "template insight"

	led := ledger.New()
	orch := orchestrator.New(led, fallback)

	contentProv := provider.NewMock("content")
	contentProv.Text = "content insight for 3 and 7"
	orch.Register(orchestrator.StrategyContent, contentProv)
	require.NoError(t, orch.SetStrategy(orchestrator.StrategyContent))

	g := gate.New(orch.GenerateStructured, []gate.Generator{fallback.GenerateStructured}, passScorer{})
	return New(orch, g, opts...), contentProv
}

func TestGenerateInsight(t *testing.T) {
	e, _ := newEngine(t)

	text, err := e.GenerateInsight(context.Background(), "daily", 3, 7, nil)
	require.NoError(t, err)
	assert.Equal(t, "content insight for 3 and 7", text)
}

func TestGenerateStructuredInsightCarriesExtras(t *testing.T) {
	e, _ := newEngine(t)

	ins, err := e.GenerateStructuredInsight(context.Background(), "daily", 3, 7,
		map[string]string{"persona": "oracle"})
	require.NoError(t, err)
	assert.Equal(t, "content", ins.Source.Provider)
	assert.NotZero(t, ins.Confidence)
}

func TestSetStrategy(t *testing.T) {
	e, contentProv := newEngine(t)

	require.NoError(t, e.SetStrategy("template"))
	before := contentProv.Calls()

	text, err := e.GenerateInsight(context.Background(), "daily", 3, 7, nil)
	require.NoError(t, err)
	assert.Equal(t, "template insight", text)
	assert.Equal(t, before, contentProv.Calls())
}

func TestSetStrategyRejectsUnknown(t *testing.T) {
	e, _ := newEngine(t)
	assert.Error(t, e.SetStrategy("clairvoyant"))
}

func TestShadowCompetitionServesWinner(t *testing.T) {
	contentSide := provider.NewMock("content")
	contentSide.Text = "content side"
	modelSide := provider.NewMock("remote")
	modelSide.Text = "model side"

	mgr := shadow.NewManager(contentSide, modelSide, passScorer{},
		shadow.WithProbeWait(time.Millisecond))
	require.True(t, mgr.Activate(context.Background()))

	e, _ := newEngine(t, WithShadow(mgr))

	ins, err := e.GenerateStructuredInsight(context.Background(), "daily", 3, 7, nil)
	require.NoError(t, err)
	assert.Equal(t, shadow.SideContent, ins.Metadata["winner"], "equal scores promote the content side")
}

func TestShadowFailureFallsThroughToOrchestrator(t *testing.T) {
	contentSide := provider.NewMock("content")
	contentSide.Err = errors.New("content down")
	modelSide := provider.NewMock("remote")
	modelSide.Err = errors.New("model down")

	mgr := shadow.NewManager(contentSide, modelSide, passScorer{},
		shadow.WithProbeWait(time.Millisecond))
	require.True(t, mgr.Activate(context.Background()))

	e, _ := newEngine(t, WithShadow(mgr))

	text, err := e.GenerateInsight(context.Background(), "daily", 3, 7, nil)
	require.NoError(t, err)
	assert.Equal(t, "content insight for 3 and 7", text)
}

func TestInactiveShadowIsBypassed(t *testing.T) {
	mgr := shadow.NewManager(provider.NewMock("content"), provider.NewMock("remote"), passScorer{})

	e, contentProv := newEngine(t, WithShadow(mgr))

	_, err := e.GenerateInsight(context.Background(), "daily", 3, 7, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 1, contentProv.Calls())
}

func TestGenerateGuaranteedInsight(t *testing.T) {
	e, _ := newEngine(t)

	text, score, err := e.GenerateGuaranteedInsight(context.Background(), 3, 7, insight.PersonaOracle, "daily")
	require.NoError(t, err)
	assert.Equal(t, "content insight for 3 and 7", text)
	assert.Equal(t, 0.9, score)
}

func TestEngineTimeout(t *testing.T) {
	e, contentProv := newEngine(t, WithTimeout(10*time.Millisecond))
	contentProv.Delay = 200 * time.Millisecond

	_, err := e.GenerateInsight(context.Background(), "daily", 3, 7, nil)
	require.Error(t, err)
}

func TestGetDiagnostics(t *testing.T) {
	mgr := shadow.NewManager(provider.NewMock("content"), provider.NewMock("remote"), passScorer{},
		shadow.WithProbeWait(time.Millisecond))

	e, _ := newEngine(t, WithShadow(mgr))

	diag := e.GetDiagnostics()
	assert.Equal(t, "inactive", diag["shadow_state"])
	assert.Equal(t, "content", diag["strategy"])

	require.True(t, mgr.Activate(context.Background()))
	diag = e.GetDiagnostics()
	assert.Equal(t, "active", diag["shadow_state"])
	assert.Equal(t, string(shadow.PhaseShadow), diag["shadow_phase"])
}

func TestGetAvailableStrategies(t *testing.T) {
	e, _ := newEngine(t)
	strategies := e.GetAvailableStrategies()
	assert.Contains(t, strategies, orchestrator.StrategyAutomatic)
	assert.Contains(t, strategies, orchestrator.StrategyContent)
	assert.Contains(t, strategies, orchestrator.StrategyTemplate)
}

func TestGetPerformanceReport(t *testing.T) {
	e, _ := newEngine(t)

	_, err := e.GenerateInsight(context.Background(), "daily", 3, 7, nil)
	require.NoError(t, err)

	report := e.GetPerformanceReport()
	assert.Contains(t, report, "content")
}
