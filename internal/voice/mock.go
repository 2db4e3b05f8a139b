package voice

import (
	"context"
	"sync"
)

// MockBackend implements Backend for testing. It records every call and can
// be scripted to fail for specific quests.
type MockBackend struct {
	mu sync.Mutex

	// Audio is returned by Generate on success. Defaults to a small stub.
	Audio []byte

	// FailWith, when non-nil, is returned for texts matched by ShouldFail.
	FailWith error

	// ShouldFail decides per call whether to fail. Nil means never fail.
	ShouldFail func(text, voiceID string) bool

	// Available and Configured default to true via NewMock.
	Available  bool
	Configured bool

	calls []MockCall
}

// MockCall records one Generate invocation.
type MockCall struct {
	Text    string
	VoiceID string
}

// NewMock returns a mock backend that always succeeds.
func NewMock() *MockBackend {
	return &MockBackend{
		Audio:      []byte("mock-audio"),
		Available:  true,
		Configured: true,
	}
}

// Name implements Backend.
func (m *MockBackend) Name() string { return "mock" }

// IsAvailable implements Backend.
func (m *MockBackend) IsAvailable() bool { return m.Available }

// IsConfigured implements Backend.
func (m *MockBackend) IsConfigured() bool { return m.Configured }

// Generate implements Backend.
func (m *MockBackend) Generate(_ context.Context, text, voiceID string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, MockCall{Text: text, VoiceID: voiceID})
	if m.ShouldFail != nil && m.ShouldFail(text, voiceID) {
		return nil, m.FailWith
	}
	return m.Audio, nil
}

// Calls returns a copy of all recorded Generate calls.
func (m *MockBackend) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]MockCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount returns the number of Generate calls so far.
func (m *MockBackend) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.calls)
}

func init() {
	Register("mock", func(Config) (Backend, error) {
		return NewMock(), nil
	})
}
