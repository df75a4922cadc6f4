package content

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFallbackStrategy(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		expected FallbackStrategy
	}{
		{name: "behavioral then template", in: "behavioral_then_template", expected: FallbackBehavioralThenTemplate},
		{name: "strict", in: "strict", expected: FallbackStrict},
		{name: "unrecognized maps to safe default", in: "panic_loudly", expected: FallbackBehavioralThenTemplate},
		{name: "empty maps to safe default", in: "", expected: FallbackBehavioralThenTemplate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseFallbackStrategy(tt.in))
		})
	}
}

func TestLoadManifest(t *testing.T) {
	dir := writeBundle(t, "behavioral_then_template")

	m, err := LoadManifest(filepath.Join(dir, "manifest.json"))
	require.NoError(t, err)

	assert.Equal(t, "1.0.0", m.Version)
	assert.Equal(t, "abcdef12", m.HashPrefix())
	assert.Equal(t, FallbackBehavioralThenTemplate, m.Fallback())
	assert.Equal(t, 3, m.Statistics.BehavioralFiles)
	assert.Contains(t, m.Domains["numbers"].Behavioral, "lifePath")
	assert.Len(t, m.Domains["numbers"].Personas, 5)
}

func TestLoadManifestMissingFile(t *testing.T) {
	_, err := LoadManifest(filepath.Join(t.TempDir(), "manifest.json"))
	require.Error(t, err)
}

func TestManifestValidate(t *testing.T) {
	tests := []struct {
		name     string
		manifest Manifest
		wantErr  bool
	}{
		{
			name:     "valid",
			manifest: Manifest{Version: "1", BundleHash: "abc", Domains: map[string]Domain{"numbers": {Rich: "rich/{id}.json"}}},
		},
		{
			name:     "missing version",
			manifest: Manifest{BundleHash: "abc"},
			wantErr:  true,
		},
		{
			name:     "missing hash",
			manifest: Manifest{Version: "1"},
			wantErr:  true,
		},
		{
			name:     "empty domain",
			manifest: Manifest{Version: "1", BundleHash: "abc", Domains: map[string]Domain{"numbers": {}}},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.manifest.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadManifestRejectsGarbage(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "manifest.json"), []byte("not json at all"), 0o644))

	_, err := LoadManifest(filepath.Join(dir, "manifest.json"))
	require.Error(t, err)
}
