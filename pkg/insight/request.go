package insight

// Persona identifies the voice an insight is written in.
type Persona string

const (
	PersonaOracle       Persona = "oracle"
	PersonaPsychologist Persona = "psychologist"
	PersonaMindfulness  Persona = "mindfulnesscoach"
	PersonaScholar      Persona = "numerologyscholar"
	PersonaPhilosopher  Persona = "philosopher"
)

// Personas lists every recognized persona.
var Personas = []Persona{
	PersonaOracle,
	PersonaPsychologist,
	PersonaMindfulness,
	PersonaScholar,
	PersonaPhilosopher,
}

// Valid reports whether p is a recognized persona. The empty persona is
// valid and means "use the context default".
func (p Persona) Valid() bool {
	if p == "" {
		return true
	}
	for _, known := range Personas {
		if p == known {
			return true
		}
	}
	return false
}

// Request describes a single insight generation request. Requests are
// immutable values; WithExtra returns a copy.
type Request struct {
	Context string
	Focus   int
	Realm   int
	Extras  map[string]string
}

// NewRequest creates a request for the given context label and numbers.
func NewRequest(context string, focus, realm int) Request {
	return Request{
		Context: context,
		Focus:   focus,
		Realm:   realm,
		Extras:  make(map[string]string),
	}
}

// WithExtra returns a copy of the request with an extra hint attached.
func (r Request) WithExtra(key, value string) Request {
	extras := make(map[string]string, len(r.Extras)+1)
	for k, v := range r.Extras {
		extras[k] = v
	}
	extras[key] = value
	r.Extras = extras
	return r
}

// Extra returns the named hint, or "" when absent.
func (r Request) Extra(key string) string {
	if r.Extras == nil {
		return ""
	}
	return r.Extras[key]
}

// Persona returns the requested persona hint, which may be empty.
func (r Request) Persona() Persona {
	return Persona(r.Extra("persona"))
}
