package content

import (
	"encoding/json"

	"github.com/rotisserie/eris"
)

// Kind selects a content lookup convention.
type Kind string

const (
	// KindRich looks up rich content documents; keys are unpadded.
	KindRich Kind = "rich"

	// KindBehavioral looks up behavioral documents; keys are zero-padded
	// to two digits.
	KindBehavioral Kind = "behavioral"
)

// Behavioral categories recognized by the numbers domain.
const (
	CategoryLifePath   = "lifePath"
	CategoryExpression = "expression"
	CategorySoulUrge   = "soulUrge"
)

// BehavioralDoc is a parsed behavioral content file.
type BehavioralDoc struct {
	Number   int               `json:"number"`
	Context  string            `json:"context"`
	Insights []BehavioralEntry `json:"insights"`
}

// BehavioralEntry is one curated insight line.
type BehavioralEntry struct {
	Text      string  `json:"text"`
	Intensity float64 `json:"intensity"`
}

// RichDoc is a parsed rich content file.
type RichDoc struct {
	Number    int      `json:"number"`
	Archetype string   `json:"archetype"`
	Keywords  []string `json:"keywords"`
	Meaning   string   `json:"meaning"`
}

// Payload is a resolved content document. Fallback payloads carry Text
// instead of Raw.
type Payload struct {
	Domain   string
	Kind     Kind
	Key      string
	Path     string
	Raw      json.RawMessage
	Fallback bool
	Text     string
}

// Behavioral parses the payload as a behavioral document.
func (p *Payload) Behavioral() (*BehavioralDoc, error) {
	var doc BehavioralDoc
	if err := json.Unmarshal(p.Raw, &doc); err != nil {
		return nil, eris.Wrapf(err, "parse behavioral document %s", p.Path)
	}
	return &doc, nil
}

// Rich parses the payload as a rich content document.
func (p *Payload) Rich() (*RichDoc, error) {
	var doc RichDoc
	if err := json.Unmarshal(p.Raw, &doc); err != nil {
		return nil, eris.Wrapf(err, "parse rich document %s", p.Path)
	}
	return &doc, nil
}
