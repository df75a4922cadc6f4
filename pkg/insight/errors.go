package insight

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Sentinel errors surfaced by the orchestration core.
var (
	// ErrProviderUnavailable means no provider is registered for the
	// active strategy. This is a configuration defect, not a request-time
	// condition.
	ErrProviderUnavailable = errors.New("no provider registered for strategy")

	// ErrContentNotFound means the router could not resolve a content
	// path and no fallback policy applied.
	ErrContentNotFound = errors.New("content not found")

	// ErrUnknownPersona means the caller supplied a persona name the
	// system does not recognize. Distinct from ErrContentNotFound: bad
	// input versus missing data.
	ErrUnknownPersona = errors.New("unknown persona")
)

// GenerationError reports a provider failure during generation, with
// optional status metadata for transience checks.
type GenerationError struct {
	Provider  string
	Reason    string
	Status    int
	Temporary bool
	Err       error
}

func (e *GenerationError) Error() string {
	if e == nil {
		return "generation failed"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Provider, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Reason)
}

func (e *GenerationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewGenerationError creates a provider failure error.
func NewGenerationError(provider, reason string, err error) *GenerationError {
	return &GenerationError{Provider: provider, Reason: reason, Err: err}
}

// IsTransient reports whether an error is safe to retry.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var genErr *GenerationError
	if errors.As(err, &genErr) {
		if genErr.Temporary {
			return true
		}
		if genErr.Status == 429 || (genErr.Status >= 500 && genErr.Status <= 599) {
			return true
		}
	}
	return false
}
