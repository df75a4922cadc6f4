package content

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/zen-systems/insightgate/pkg/insight"
)

// placeholder is the token substituted with a formatted key in manifest
// path templates.
const placeholder = "{id}"

// TemplateFunc generates fallback text for missing behavioral content.
type TemplateFunc func(domain, category string, key int, persona insight.Persona) string

// Router resolves logical content requests to bundle payloads using the
// manifest. The router never fails hard: missing domains, files, and parse
// errors degrade to not-found (or fallback content when policy allows).
type Router struct {
	baseDir    string
	templateFn TemplateFunc
	log        *zap.Logger

	mu       sync.RWMutex
	manifest *Manifest

	fallbacks atomic.Int64
}

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithLogger sets the router's logger.
func WithLogger(log *zap.Logger) RouterOption {
	return func(r *Router) {
		r.log = log
	}
}

// WithTemplateFallback sets the generator used when the fallback policy
// substitutes template text for missing behavioral content.
func WithTemplateFallback(fn TemplateFunc) RouterOption {
	return func(r *Router) {
		r.templateFn = fn
	}
}

// NewRouter creates a router over the bundle at baseDir. A missing or
// unreadable manifest is a valid, handled state: the router serves
// fallback content for everything.
func NewRouter(baseDir string, opts ...RouterOption) *Router {
	r := &Router{
		baseDir: baseDir,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}

	m, err := LoadManifest(filepath.Join(baseDir, "manifest.json"))
	if err != nil {
		r.log.Warn("content manifest unavailable, serving fallback content",
			zap.String("bundle", baseDir),
			zap.Error(err),
		)
	}
	r.manifest = m
	return r
}

// Reload re-reads the manifest and swaps it atomically. The old manifest
// stays in effect when the reload fails.
func (r *Router) Reload() error {
	m, err := LoadManifest(filepath.Join(r.baseDir, "manifest.json"))
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.manifest = m
	r.mu.Unlock()
	return nil
}

// Manifest returns the loaded manifest, or nil when none loaded.
func (r *Router) Manifest() *Manifest {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.manifest
}

// FallbackCount returns how many lookups were served by template fallback.
func (r *Router) FallbackCount() int64 {
	return r.fallbacks.Load()
}

// FormatKey formats a numeric key per the content kind's convention.
// Behavioral keys are zero-padded to two digits; rich keys are unpadded.
// Master numbers already have two digits and pass through both formats
// verbatim.
func FormatKey(kind Kind, key int) string {
	if kind == KindBehavioral {
		return fmt.Sprintf("%02d", key)
	}
	return fmt.Sprintf("%d", key)
}

// Resolve maps a logical content request to a payload. The category
// selects a behavioral template (lifePath, expression, soulUrge) and is
// ignored for rich lookups. A non-empty persona selects the
// persona-specific template instead of the category template; an
// unrecognized persona is an ErrUnknownPersona, distinct from not-found.
// The manifest fallback policy applies only to behavioral lookups.
func (r *Router) Resolve(domain string, kind Kind, category string, key int, persona insight.Persona) (*Payload, error) {
	if persona != "" && !persona.Valid() {
		return nil, fmt.Errorf("%w: %q", insight.ErrUnknownPersona, persona)
	}

	manifest := r.Manifest()
	tmpl := r.lookupTemplate(manifest, domain, kind, category, persona)
	if tmpl == "" {
		return r.miss(manifest, domain, kind, category, key, persona, "no path template", nil)
	}

	formatted := FormatKey(kind, key)
	rel := strings.ReplaceAll(tmpl, placeholder, formatted)
	path := filepath.Join(r.baseDir, rel)

	data, err := os.ReadFile(path)
	if err != nil {
		return r.miss(manifest, domain, kind, category, key, persona, "read failed", err)
	}
	if !json.Valid(data) {
		return r.miss(manifest, domain, kind, category, key, persona, "parse failed", fmt.Errorf("invalid JSON in %s", path))
	}

	return &Payload{
		Domain: domain,
		Kind:   kind,
		Key:    formatted,
		Path:   path,
		Raw:    data,
	}, nil
}

func (r *Router) lookupTemplate(m *Manifest, domain string, kind Kind, category string, persona insight.Persona) string {
	if m == nil {
		return ""
	}
	d, ok := m.Domains[domain]
	if !ok {
		return ""
	}
	if kind == KindRich {
		return d.Rich
	}
	if persona != "" {
		return d.Personas[string(persona)]
	}
	return d.Behavioral[category]
}

// miss applies the fallback policy. Read and parse failures are treated
// identically to not-found but keep the distinguishing cause in the log.
func (r *Router) miss(m *Manifest, domain string, kind Kind, category string, key int, persona insight.Persona, reason string, cause error) (*Payload, error) {
	r.log.Debug("content lookup missed",
		zap.String("domain", domain),
		zap.String("kind", string(kind)),
		zap.String("category", category),
		zap.Int("key", key),
		zap.String("reason", reason),
		zap.Error(cause),
	)

	strategy := FallbackBehavioralThenTemplate
	if m != nil {
		strategy = m.Fallback()
	}

	if kind == KindBehavioral && strategy == FallbackBehavioralThenTemplate && r.templateFn != nil {
		r.fallbacks.Add(1)
		return &Payload{
			Domain:   domain,
			Kind:     kind,
			Key:      FormatKey(kind, key),
			Fallback: true,
			Text:     r.templateFn(domain, category, key, persona),
		}, nil
	}

	return nil, fmt.Errorf("%w: %s/%s key %d", insight.ErrContentNotFound, domain, kind, key)
}
