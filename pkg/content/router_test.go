package content

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zen-systems/insightgate/pkg/insight"
)

const testManifest = `{
  "version": "1.0.0",
  "generated": "2026-01-01T00:00:00Z",
  "bundleHash": "abcdef1234567890",
  "fallbackStrategy": %q,
  "domains": {
    "numbers": {
      "rich": "rich/{id}.json",
      "behavioral": {
        "lifePath": "behavioral/lifePath_{id}.json",
        "expression": "behavioral/expression_{id}.json",
        "soulUrge": "behavioral/soulUrge_{id}.json"
      },
      "personas": {
        "oracle": "personas/oracle_{id}.json",
        "psychologist": "personas/psychologist_{id}.json",
        "mindfulnesscoach": "personas/mindfulnesscoach_{id}.json",
        "numerologyscholar": "personas/numerologyscholar_{id}.json",
        "philosopher": "personas/philosopher_{id}.json"
      }
    }
  },
  "validation": {"requiredCoverage": ["1", "2", "3"], "missingNumbers": []},
  "statistics": {"behavioralFiles": 3, "richFiles": 1, "totalSizeKb": 12.5}
}`

// writeBundle lays out a minimal content bundle in a temp dir.
func writeBundle(t *testing.T, fallbackStrategy string) string {
	t.Helper()
	dir := t.TempDir()

	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "manifest.json"),
		[]byte(fmt.Sprintf(testManifest, fallbackStrategy)), 0o644))

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "behavioral"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "rich"), 0o755))

	behavioral := `{"number": 3, "context": "lifePath", "insights": [
		{"text": "Your voice opens doors today.", "intensity": 0.8},
		{"text": "Expression is your compass.", "intensity": 0.6}
	]}`
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "behavioral", "lifePath_03.json"), []byte(behavioral), 0o644))

	rich := `{"number": 3, "archetype": "The Communicator", "keywords": ["voice", "joy"], "meaning": "creative expression"}`
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "rich", "3.json"), []byte(rich), 0o644))

	return dir
}

func stubTemplate(domain, category string, key int, persona insight.Persona) string {
	return fmt.Sprintf("template fallback for %s/%s %d", domain, category, key)
}

func TestFormatKey(t *testing.T) {
	tests := []struct {
		name     string
		kind     Kind
		key      int
		expected string
	}{
		{name: "behavioral pads single digit", kind: KindBehavioral, key: 3, expected: "03"},
		{name: "rich leaves key unpadded", kind: KindRich, key: 3, expected: "3"},
		{name: "behavioral master 11 verbatim", kind: KindBehavioral, key: 11, expected: "11"},
		{name: "rich master 11 verbatim", kind: KindRich, key: 11, expected: "11"},
		{name: "behavioral master 44 verbatim", kind: KindBehavioral, key: 44, expected: "44"},
		{name: "rich master 33 verbatim", kind: KindRich, key: 33, expected: "33"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatKey(tt.kind, tt.key))
		})
	}
}

func TestResolveBehavioral(t *testing.T) {
	r := NewRouter(writeBundle(t, "behavioral_then_template"))

	payload, err := r.Resolve("numbers", KindBehavioral, CategoryLifePath, 3, "")
	require.NoError(t, err)
	assert.False(t, payload.Fallback)
	assert.Equal(t, "03", payload.Key)

	doc, err := payload.Behavioral()
	require.NoError(t, err)
	assert.Equal(t, 3, doc.Number)
	assert.Len(t, doc.Insights, 2)
}

func TestResolveRich(t *testing.T) {
	r := NewRouter(writeBundle(t, "behavioral_then_template"))

	payload, err := r.Resolve("numbers", KindRich, "", 3, "")
	require.NoError(t, err)

	doc, err := payload.Rich()
	require.NoError(t, err)
	assert.Equal(t, "The Communicator", doc.Archetype)
}

func TestResolveMissingBehavioralFallsBackToTemplate(t *testing.T) {
	r := NewRouter(writeBundle(t, "behavioral_then_template"), WithTemplateFallback(stubTemplate))

	payload, err := r.Resolve("numbers", KindBehavioral, CategoryLifePath, 7, "")
	require.NoError(t, err)
	assert.True(t, payload.Fallback)
	assert.Equal(t, "template fallback for numbers/lifePath 7", payload.Text)
	assert.Equal(t, int64(1), r.FallbackCount())
}

func TestResolveStrictModeReturnsNotFound(t *testing.T) {
	// fallbackStrategy = strict: missing content yields not-found, no
	// template substitution even when a generator is wired.
	r := NewRouter(writeBundle(t, "strict"), WithTemplateFallback(stubTemplate))

	_, err := r.Resolve("numbers", KindBehavioral, CategoryLifePath, 7, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, insight.ErrContentNotFound)
	assert.Equal(t, int64(0), r.FallbackCount())
}

func TestResolveRichHasNoFallback(t *testing.T) {
	r := NewRouter(writeBundle(t, "behavioral_then_template"), WithTemplateFallback(stubTemplate))

	_, err := r.Resolve("numbers", KindRich, "", 9, "")
	assert.ErrorIs(t, err, insight.ErrContentNotFound)
}

func TestResolveUnknownPersona(t *testing.T) {
	r := NewRouter(writeBundle(t, "behavioral_then_template"), WithTemplateFallback(stubTemplate))

	_, err := r.Resolve("numbers", KindBehavioral, CategoryLifePath, 3, "trickster")
	require.Error(t, err)
	assert.ErrorIs(t, err, insight.ErrUnknownPersona)
	assert.NotErrorIs(t, err, insight.ErrContentNotFound)
}

func TestRouterWithoutManifestNeverFailsHard(t *testing.T) {
	// An empty directory has no manifest; every lookup degrades to
	// fallback or not-found.
	r := NewRouter(t.TempDir(), WithTemplateFallback(stubTemplate))
	require.Nil(t, r.Manifest())

	payload, err := r.Resolve("numbers", KindBehavioral, CategoryLifePath, 5, "")
	require.NoError(t, err)
	assert.True(t, payload.Fallback)

	_, err = r.Resolve("numbers", KindRich, "", 5, "")
	assert.ErrorIs(t, err, insight.ErrContentNotFound)
}

func TestResolveCorruptFileTreatedAsMissing(t *testing.T) {
	dir := writeBundle(t, "behavioral_then_template")
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "behavioral", "lifePath_04.json"), []byte("{not json"), 0o644))

	r := NewRouter(dir, WithTemplateFallback(stubTemplate))
	payload, err := r.Resolve("numbers", KindBehavioral, CategoryLifePath, 4, "")
	require.NoError(t, err)
	assert.True(t, payload.Fallback)
}

func TestReload(t *testing.T) {
	dir := writeBundle(t, "behavioral_then_template")
	r := NewRouter(dir)
	require.NotNil(t, r.Manifest())

	updated := fmt.Sprintf(testManifest, "strict")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "manifest.json"), []byte(updated), 0o644))

	require.NoError(t, r.Reload())
	assert.Equal(t, FallbackStrict, r.Manifest().Fallback())

	// A broken manifest leaves the previous one in effect.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "manifest.json"), []byte("{"), 0o644))
	require.Error(t, r.Reload())
	assert.NotNil(t, r.Manifest())
}

func TestResolveUnknownDomain(t *testing.T) {
	r := NewRouter(writeBundle(t, "behavioral_then_template"))
	_, err := r.Resolve("planets", KindRich, "", 3, "")
	assert.True(t, errors.Is(err, insight.ErrContentNotFound))
}
