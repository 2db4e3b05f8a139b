package voice

import (
	"context"
	"errors"
	"testing"
)

func TestOpenMock(t *testing.T) {
	backend, err := Open("mock", Config{})
	if err != nil {
		t.Fatalf("Open(mock) error: %v", err)
	}
	if backend.Name() != "mock" || !backend.IsConfigured() {
		t.Errorf("mock backend = %q configured=%v", backend.Name(), backend.IsConfigured())
	}

	data, err := backend.Generate(context.Background(), "hello", "any-voice")
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if len(data) == 0 {
		t.Error("Generate() returned no audio")
	}
}

func TestOpenUnknown(t *testing.T) {
	_, err := Open("bogus", Config{})
	if !errors.Is(err, ErrUnknownBackend) {
		t.Errorf("Open(bogus) error = %v, want ErrUnknownBackend", err)
	}
}

func TestRegisteredContainsBuiltins(t *testing.T) {
	names := Registered()
	want := map[string]bool{"edge": false, "mock": false, "openai": false}
	for _, n := range names {
		if _, ok := want[n]; ok {
			want[n] = true
		}
	}
	for n, seen := range want {
		if !seen {
			t.Errorf("backend %q not registered (have %v)", n, names)
		}
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("duplicate Register did not panic")
		}
	}()
	Register("mock", func(Config) (Backend, error) { return NewMock(), nil })
}

func TestParseGender(t *testing.T) {
	if g, ok := ParseGender("male"); !ok || g != Male {
		t.Errorf("ParseGender(male) = %q, %v", g, ok)
	}
	if g, ok := ParseGender("female"); !ok || g != Female {
		t.Errorf("ParseGender(female) = %q, %v", g, ok)
	}
	if _, ok := ParseGender("narrator"); ok {
		t.Error("ParseGender(narrator) accepted")
	}
}

func TestMockScriptedFailure(t *testing.T) {
	m := NewMock()
	m.FailWith = errors.New("synth exploded")
	m.ShouldFail = func(text, _ string) bool { return text == "bad" }

	if _, err := m.Generate(context.Background(), "good", "v"); err != nil {
		t.Errorf("unexpected failure: %v", err)
	}
	if _, err := m.Generate(context.Background(), "bad", "v"); err == nil {
		t.Error("scripted failure did not fire")
	}
	if m.CallCount() != 2 {
		t.Errorf("CallCount() = %d, want 2", m.CallCount())
	}
}
