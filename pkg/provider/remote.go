package provider

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/zen-systems/insightgate/pkg/insight"
)

// RemoteName is the identifier of the model-backed provider.
const RemoteName = "remote"

// ModelClient is a vendor-neutral completion client backing the remote
// provider. The core treats the model as opaque beyond reachability and
// completion.
type ModelClient interface {
	// Vendor returns the client's vendor identifier.
	Vendor() string

	// Model returns the configured model name.
	Model() string

	// Probe performs one bounded reachability check.
	Probe(ctx context.Context) error

	// Complete sends a prompt and returns the model's text.
	Complete(ctx context.Context, prompt string) (string, error)
}

// Remote generates insights through a remote or local model endpoint.
type Remote struct {
	client       ModelClient
	probeTimeout time.Duration
	log          *zap.Logger
}

// RemoteOption configures the remote provider.
type RemoteOption func(*Remote)

// WithProbeTimeout bounds the readiness probe.
func WithProbeTimeout(d time.Duration) RemoteOption {
	return func(r *Remote) {
		r.probeTimeout = d
	}
}

// WithRemoteLogger sets the provider's logger.
func WithRemoteLogger(log *zap.Logger) RemoteOption {
	return func(r *Remote) {
		r.log = log
	}
}

// NewRemote creates the model-backed provider.
func NewRemote(client ModelClient, opts ...RemoteOption) *Remote {
	r := &Remote{
		client:       client,
		probeTimeout: 2 * time.Second,
		log:          zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Name returns the provider identifier.
func (r *Remote) Name() string {
	return RemoteName
}

// Available probes the model endpoint once within the probe timeout.
func (r *Remote) Available(ctx context.Context) bool {
	if r.client == nil {
		return false
	}
	probeCtx, cancel := context.WithTimeout(ctx, r.probeTimeout)
	defer cancel()

	if err := r.client.Probe(probeCtx); err != nil {
		r.log.Debug("remote model probe failed",
			zap.String("vendor", r.client.Vendor()),
			zap.Error(err),
		)
		return false
	}
	return true
}

// Generate prompts the model for insight text.
func (r *Remote) Generate(ctx context.Context, req insight.Request) (string, error) {
	if r.client == nil {
		return "", insight.NewGenerationError(r.Name(), "no model client configured", nil)
	}

	text, err := r.client.Complete(ctx, remotePrompt(req))
	if err != nil {
		return "", insight.NewGenerationError(r.Name(), "model completion failed", err)
	}
	if text == "" {
		return "", insight.NewGenerationError(r.Name(), "model returned empty output", nil)
	}
	return text, nil
}

// GenerateStructured prompts the model and annotates vendor metadata.
func (r *Remote) GenerateStructured(ctx context.Context, req insight.Request) (*insight.Insight, error) {
	start := time.Now()
	text, err := r.Generate(ctx, req)
	if err != nil {
		return nil, err
	}

	out := insight.New(text, r.Name(), 0.9, time.Since(start))
	out = out.WithMetadata("vendor", r.client.Vendor())
	out = out.WithMetadata("model", r.client.Model())
	if persona := req.Persona(); persona != "" {
		out = out.WithMetadata("persona", string(persona))
	}
	return out, nil
}

func remotePrompt(req insight.Request) string {
	voice := "a grounded spiritual guide"
	if persona := req.Persona(); persona != "" && persona.Valid() {
		voice = "the " + string(persona) + " voice of a spiritual insight engine"
	}
	contextLabel := req.Context
	if contextLabel == "" {
		contextLabel = "daily reflection"
	}
	return fmt.Sprintf(
		"You are %s. Write a two-sentence insight for a %q reading where the focus number is %d (%s) and the realm number is %d (%s). "+
			"Treat 11, 22, 33, and 44 as master numbers and never reduce them.",
		voice, contextLabel, req.Focus, Archetype(req.Focus), req.Realm, Archetype(req.Realm))
}
