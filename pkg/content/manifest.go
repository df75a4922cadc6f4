package content

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
)

// FallbackStrategy controls what happens when behavioral content is
// missing from the bundle.
type FallbackStrategy string

const (
	// FallbackBehavioralThenTemplate substitutes generated template text
	// for missing behavioral content. This is the safe default.
	FallbackBehavioralThenTemplate FallbackStrategy = "behavioral_then_template"

	// FallbackStrict surfaces missing content as not-found with no
	// substitution.
	FallbackStrict FallbackStrategy = "strict"
)

// ParseFallbackStrategy maps a manifest string to a strategy. Unrecognized
// values map to the safe default rather than failing the load.
func ParseFallbackStrategy(s string) FallbackStrategy {
	switch FallbackStrategy(s) {
	case FallbackStrict:
		return FallbackStrict
	default:
		return FallbackBehavioralThenTemplate
	}
}

// Manifest is the versioned descriptor of a content bundle. It is loaded
// once at startup and immutable afterwards; a reload replaces it atomically.
type Manifest struct {
	Version          string            `json:"version"`
	Generated        string            `json:"generated"`
	BundleHash       string            `json:"bundleHash"`
	FallbackStrategy string            `json:"fallbackStrategy"`
	Domains          map[string]Domain `json:"domains"`
	Validation       Validation        `json:"validation"`
	Statistics       Statistics        `json:"statistics"`
}

// Domain maps logical content kinds to path templates. Path templates
// contain an {id} placeholder substituted with a formatted key.
type Domain struct {
	Rich       string            `json:"rich,omitempty"`
	Behavioral map[string]string `json:"behavioral,omitempty"`
	Personas   map[string]string `json:"personas,omitempty"`
}

// Validation records bundle coverage expectations.
type Validation struct {
	RequiredCoverage []string `json:"requiredCoverage"`
	MissingNumbers   []string `json:"missingNumbers"`
}

// Statistics records bundle size metrics.
type Statistics struct {
	BehavioralFiles int     `json:"behavioralFiles"`
	RichFiles       int     `json:"richFiles"`
	TotalSizeKb     float64 `json:"totalSizeKb"`
}

// LoadManifest reads and validates a manifest from a JSON file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "read manifest %s", path)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, eris.Wrapf(err, "parse manifest %s", path)
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks the manifest for structural errors.
func (m *Manifest) Validate() error {
	if m.Version == "" {
		return fmt.Errorf("manifest version is required")
	}
	if m.BundleHash == "" {
		return fmt.Errorf("manifest bundleHash is required")
	}
	for name, d := range m.Domains {
		if d.Rich == "" && len(d.Behavioral) == 0 && len(d.Personas) == 0 {
			return fmt.Errorf("domain %s defines no path templates", name)
		}
	}
	return nil
}

// Fallback returns the effective fallback strategy.
func (m *Manifest) Fallback() FallbackStrategy {
	return ParseFallbackStrategy(m.FallbackStrategy)
}

// HashPrefix returns a short bundle hash suitable for diagnostics output.
func (m *Manifest) HashPrefix() string {
	if len(m.BundleHash) <= 8 {
		return m.BundleHash
	}
	return m.BundleHash[:8]
}

// MissingCoverage returns the numbers the bundle declares as missing.
func (m *Manifest) MissingCoverage() []string {
	return m.Validation.MissingNumbers
}
