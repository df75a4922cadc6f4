package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/zen-systems/insightgate/pkg/content"
	"github.com/zen-systems/insightgate/pkg/insight"
)

// HybridName is the identifier of the blended provider.
const HybridName = "hybrid"

// Hybrid blends rich bundle content with template framing. Rich content
// has no manifest fallback, so a missing rich document degrades to pure
// template output inside the provider.
type Hybrid struct {
	router *content.Router
	tmpl   *Template
}

// NewHybrid creates the blended provider.
func NewHybrid(router *content.Router, tmpl *Template) *Hybrid {
	return &Hybrid{router: router, tmpl: tmpl}
}

// Name returns the provider identifier.
func (h *Hybrid) Name() string {
	return HybridName
}

// Available reports whether the content bundle manifest loaded.
func (h *Hybrid) Available(_ context.Context) bool {
	return h.router.Manifest() != nil
}

// Generate blends the rich document for the focus number with template
// framing for the realm.
func (h *Hybrid) Generate(ctx context.Context, req insight.Request) (string, error) {
	payload, err := h.router.Resolve("numbers", content.KindRich, "", req.Focus, "")
	if err != nil {
		if errors.Is(err, insight.ErrContentNotFound) {
			return h.tmpl.Generate(ctx, req)
		}
		return "", insight.NewGenerationError(h.Name(), "rich content lookup failed", err)
	}

	doc, err := payload.Rich()
	if err != nil {
		return h.tmpl.Generate(ctx, req)
	}

	framing, err := h.tmpl.Generate(ctx, req)
	if err != nil {
		return "", err
	}

	archetype := doc.Archetype
	if archetype == "" {
		archetype = Archetype(req.Focus)
	}
	return fmt.Sprintf("%s, %s: %s %s", archetype, doc.Meaning, framing, keywordLine(doc.Keywords)), nil
}

// GenerateStructured blends content and annotates the blend source.
func (h *Hybrid) GenerateStructured(ctx context.Context, req insight.Request) (*insight.Insight, error) {
	start := time.Now()
	text, err := h.Generate(ctx, req)
	if err != nil {
		return nil, err
	}

	out := insight.New(text, h.Name(), 0.8, time.Since(start))
	out = out.WithMetadata("blend", "rich+template")
	if persona := req.Persona(); persona != "" {
		out = out.WithMetadata("persona", string(persona))
	}
	return out, nil
}

func keywordLine(keywords []string) string {
	if len(keywords) == 0 {
		return ""
	}
	line := "Themes to hold: "
	for i, kw := range keywords {
		if i > 0 {
			line += ", "
		}
		line += kw
	}
	return line + "."
}
