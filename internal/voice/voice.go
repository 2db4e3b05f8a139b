// Package voice defines the narration backend interface and the registry of
// concrete speech providers. The sync engine depends only on the Backend
// interface; providers are selected once per run by a string key.
package voice

import (
	"context"
	"errors"
)

// Gender identifies one of the two narration tracks generated per quest.
type Gender string

// The two supported narration tracks.
const (
	Male   Gender = "male"
	Female Gender = "female"
)

// Genders returns the narration tracks in a stable order.
func Genders() []Gender {
	return []Gender{Male, Female}
}

// ParseGender maps a directory or config token to a Gender.
func ParseGender(s string) (Gender, bool) {
	switch Gender(s) {
	case Male:
		return Male, true
	case Female:
		return Female, true
	}
	return "", false
}

// Common errors for narration backends.
var (
	ErrUnknownBackend = errors.New("unknown narration backend")
	ErrNotConfigured  = errors.New("narration backend is not configured")
	ErrEmptyText      = errors.New("empty narration text")
)

// Backend is the capability interface every narration provider implements.
// The engine treats Generate as an opaque, rate-limited, fallible remote call.
type Backend interface {
	// Name returns the registry key of this backend.
	Name() string

	// IsAvailable performs a lightweight runtime check (network reachable,
	// binary present). It must not make a billable call.
	IsAvailable() bool

	// IsConfigured reports whether required configuration (API keys, voice
	// ids) is present.
	IsConfigured() bool

	// Generate synthesizes text with the given provider voice id and returns
	// the encoded audio bytes. Implementations apply their own per-call
	// timeout; a failure is always retryable on a later run.
	Generate(ctx context.Context, text, voiceID string) ([]byte, error)
}

// Config carries provider-agnostic settings passed to backend factories.
type Config struct {
	// APIKey authenticates against paid providers. Keyless providers ignore it.
	APIKey string

	// Model selects the provider's synthesis model, if it has more than one.
	Model string

	// TimeoutSeconds bounds a single Generate call. Zero means the provider
	// default.
	TimeoutSeconds int
}
