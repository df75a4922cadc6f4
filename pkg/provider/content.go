package provider

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/zen-systems/insightgate/pkg/content"
	"github.com/zen-systems/insightgate/pkg/insight"
)

// ContentName is the identifier of the bundled-content provider.
const ContentName = "content"

// Content serves insights from the curated content bundle via the router.
// Lookups are cached privately; the cache is invisible to the orchestrator
// beyond the cache-hit flag on structured results.
type Content struct {
	router *content.Router
	log    *zap.Logger

	group singleflight.Group
	mu    sync.Mutex
	cache map[string]resolved
}

type resolved struct {
	text     string
	fallback bool
}

// ContentOption configures the content provider.
type ContentOption func(*Content)

// WithContentLogger sets the provider's logger.
func WithContentLogger(log *zap.Logger) ContentOption {
	return func(c *Content) {
		c.log = log
	}
}

// NewContent creates the bundled-content provider.
func NewContent(router *content.Router, opts ...ContentOption) *Content {
	c := &Content{
		router: router,
		log:    zap.NewNop(),
		cache:  make(map[string]resolved),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns the provider identifier.
func (c *Content) Name() string {
	return ContentName
}

// Available reports whether the content bundle manifest loaded.
func (c *Content) Available(_ context.Context) bool {
	return c.router.Manifest() != nil
}

// Generate composes insight text from bundled behavioral content.
func (c *Content) Generate(ctx context.Context, req insight.Request) (string, error) {
	res, _, err := c.lookup(ctx, req)
	if err != nil {
		return "", err
	}
	return res.text, nil
}

// GenerateStructured composes bundled content with provenance metadata.
func (c *Content) GenerateStructured(ctx context.Context, req insight.Request) (*insight.Insight, error) {
	start := time.Now()
	res, cached, err := c.lookup(ctx, req)
	if err != nil {
		return nil, err
	}

	confidence := 0.85
	source := "bundle"
	if res.fallback {
		confidence = 0.7
		source = "template_fallback"
	}

	out := insight.New(res.text, c.Name(), confidence, time.Since(start))
	out = out.WithMetadata("content_source", source)
	if persona := req.Persona(); persona != "" {
		out = out.WithMetadata("persona", string(persona))
	}
	if cached {
		out = out.Cached()
	}
	return out, nil
}

func (c *Content) lookup(_ context.Context, req insight.Request) (resolved, bool, error) {
	category := req.Extra("category")
	if category == "" {
		category = content.CategoryLifePath
	}
	persona := req.Persona()

	key := fmt.Sprintf("%s|%s|%d|%d", category, persona, req.Focus, req.Realm)

	c.mu.Lock()
	if res, ok := c.cache[key]; ok {
		c.mu.Unlock()
		return res, true, nil
	}
	c.mu.Unlock()

	// Concurrent identical lookups share one file read.
	v, err, _ := c.group.Do(key, func() (any, error) {
		res, err := c.resolve(category, persona, req)
		if err != nil {
			return resolved{}, err
		}
		c.mu.Lock()
		c.cache[key] = res
		c.mu.Unlock()
		return res, nil
	})
	if err != nil {
		return resolved{}, false, err
	}
	return v.(resolved), false, nil
}

func (c *Content) resolve(category string, persona insight.Persona, req insight.Request) (resolved, error) {
	payload, err := c.router.Resolve("numbers", content.KindBehavioral, category, req.Focus, persona)
	if err != nil {
		return resolved{}, insight.NewGenerationError(c.Name(), "content lookup failed", err)
	}

	if payload.Fallback {
		return resolved{text: payload.Text, fallback: true}, nil
	}

	doc, err := payload.Behavioral()
	if err != nil {
		return resolved{}, insight.NewGenerationError(c.Name(), "content document malformed", err)
	}
	if len(doc.Insights) == 0 {
		return resolved{}, insight.NewGenerationError(c.Name(), "content document empty", nil)
	}

	// Deterministic selection keyed on the request numbers.
	idx := (req.Focus*7 + req.Realm*3) % len(doc.Insights)
	entry := doc.Insights[idx]

	text := fmt.Sprintf("%s Within realm %d, %s lends this its shape.",
		entry.Text, req.Realm, Archetype(req.Realm))
	return resolved{text: text}, nil
}
