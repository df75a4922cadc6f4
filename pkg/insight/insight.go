package insight

import "time"

// Source tags where an insight came from.
type Source struct {
	Provider string `json:"provider"`
	Cached   bool   `json:"cached"`
}

// Insight is a structured generation result. Confidence and Latency are
// always populated by providers; Metadata keys are provider-specific and
// consumers must not assume any particular key is present.
type Insight struct {
	Text       string            `json:"text"`
	Source     Source            `json:"source"`
	Confidence float64           `json:"confidence"`
	Latency    time.Duration     `json:"latency"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// New creates an insight attributed to the given provider.
func New(text, provider string, confidence float64, latency time.Duration) *Insight {
	return &Insight{
		Text:       text,
		Source:     Source{Provider: provider},
		Confidence: confidence,
		Latency:    latency,
		Metadata:   make(map[string]string),
	}
}

// WithMetadata returns a copy of the insight with an extra metadata entry.
func (i *Insight) WithMetadata(key, value string) *Insight {
	out := &Insight{
		Text:       i.Text,
		Source:     i.Source,
		Confidence: i.Confidence,
		Latency:    i.Latency,
		Metadata:   copyMetadata(i.Metadata),
	}
	out.Metadata[key] = value
	return out
}

// Cached returns a copy of the insight marked as a cache hit.
func (i *Insight) Cached() *Insight {
	out := i.WithMetadata("cache_hit", "true")
	out.Source.Cached = true
	return out
}

func copyMetadata(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
