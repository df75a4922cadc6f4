package provider

import (
	"context"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/zen-systems/insightgate/pkg/insight"
)

// TemplateName is the stable identifier of the template provider, which
// the orchestrator uses as its designated fallback target.
const TemplateName = "template"

// archetypes maps numbers to their numerological archetype. Master
// numbers have their own entries and are never reduced to reach one.
var archetypes = map[int]string{
	1:  "the Pioneer",
	2:  "the Harmonizer",
	3:  "the Communicator",
	4:  "the Builder",
	5:  "the Freedom Seeker",
	6:  "the Nurturer",
	7:  "the Mystic",
	8:  "the Powerhouse",
	9:  "the Humanitarian",
	11: "the Intuitive Illuminator",
	22: "the Master Builder",
	33: "the Master Teacher",
	44: "the Master Healer",
}

// Archetype returns the archetype for a number, reducing non-master
// values to their root first.
func Archetype(n int) string {
	if name, ok := archetypes[n]; ok {
		return name
	}
	return archetypes[insight.Reduce(n)]
}

var personaTemplates = map[insight.Persona]string{
	insight.PersonaOracle: "The currents of {{.Context}} reveal {{.FocusArchetype}} stirring within your focus number {{.Focus}}, " +
		"while realm {{.Realm}} carries the steady presence of {{.RealmArchetype}}. Trust what rises unbidden today.",
	insight.PersonaPsychologist: "Your focus number {{.Focus}} reflects {{.FocusArchetype}}, a pattern of motivation worth observing in your {{.Context}}. " +
		"Realm {{.Realm}}, shaped by {{.RealmArchetype}}, suggests where that energy most naturally finds expression.",
	insight.PersonaMindfulness: "Settle into this moment of {{.Context}}. Focus number {{.Focus}} invites the quality of {{.FocusArchetype}}; " +
		"let realm {{.Realm}} and {{.RealmArchetype}} ground your breath and attention.",
	insight.PersonaScholar: "In classical numerology, focus number {{.Focus}} corresponds to {{.FocusArchetype}}, and realm {{.Realm}} to {{.RealmArchetype}}. " +
		"Their pairing in a {{.Context}} reading points to disciplined growth through aligned action.",
	insight.PersonaPhilosopher: "Consider what it means that {{.FocusArchetype}} governs your focus number {{.Focus}} within this {{.Context}}. " +
		"Realm {{.Realm}}, the domain of {{.RealmArchetype}}, asks not what you will do but who you are becoming.",
}

const defaultTemplate = "Your {{.Context}} brings focus number {{.Focus}}, the energy of {{.FocusArchetype}}, " +
	"into realm {{.Realm}}, where {{.RealmArchetype}} shapes the path ahead. Move with intention today."

// Template is the deterministic template engine provider. It is always
// available and serves as the orchestrator's one-shot fallback target.
type Template struct {
	templates map[insight.Persona]*template.Template
	fallback  *template.Template
}

type templateData struct {
	Context        string
	Focus          int
	Realm          int
	FocusArchetype string
	RealmArchetype string
}

// NewTemplate creates the template provider.
func NewTemplate() *Template {
	t := &Template{
		templates: make(map[insight.Persona]*template.Template, len(personaTemplates)),
		fallback:  template.Must(template.New("default").Parse(defaultTemplate)),
	}
	for persona, text := range personaTemplates {
		t.templates[persona] = template.Must(template.New(string(persona)).Parse(text))
	}
	return t
}

// Name returns the provider identifier.
func (t *Template) Name() string {
	return TemplateName
}

// Available always reports true; template generation has no external
// dependencies.
func (t *Template) Available(_ context.Context) bool {
	return true
}

// Generate renders deterministic insight text for the request.
func (t *Template) Generate(_ context.Context, req insight.Request) (string, error) {
	persona := req.Persona()
	if !persona.Valid() {
		return "", fmt.Errorf("%w: %q", insight.ErrUnknownPersona, persona)
	}

	tmpl := t.fallback
	if parsed, ok := t.templates[persona]; ok {
		tmpl = parsed
	}

	contextLabel := req.Context
	if contextLabel == "" {
		contextLabel = "daily reflection"
	}

	var sb strings.Builder
	err := tmpl.Execute(&sb, templateData{
		Context:        contextLabel,
		Focus:          req.Focus,
		Realm:          req.Realm,
		FocusArchetype: Archetype(req.Focus),
		RealmArchetype: Archetype(req.Realm),
	})
	if err != nil {
		return "", insight.NewGenerationError(t.Name(), "template render failed", err)
	}
	return sb.String(), nil
}

// GenerateStructured renders template text with fixed confidence.
func (t *Template) GenerateStructured(ctx context.Context, req insight.Request) (*insight.Insight, error) {
	start := time.Now()
	text, err := t.Generate(ctx, req)
	if err != nil {
		return nil, err
	}

	out := insight.New(text, t.Name(), 0.75, time.Since(start))
	if persona := req.Persona(); persona != "" {
		out = out.WithMetadata("persona", string(persona))
	}
	return out, nil
}

// FallbackText renders template text for a missing content lookup. It is
// wired into the content router as its fallback generator.
func (t *Template) FallbackText(domain, category string, key int, persona insight.Persona) string {
	req := insight.NewRequest(category, key, key)
	if persona != "" {
		req = req.WithExtra("persona", string(persona))
	}
	text, err := t.Generate(context.Background(), req)
	if err != nil {
		return fmt.Sprintf("Number %d carries the energy of %s in your %s.", key, Archetype(key), category)
	}
	return text
}
