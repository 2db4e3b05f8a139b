package voice

import (
	"context"
	"fmt"
	"time"

	"github.com/wujunwei928/edge-tts-go/edge_tts"
)

const defaultEdgeTimeout = 30 * time.Second

// EdgeBackend synthesizes speech through Microsoft Edge's online TTS service.
// It needs no API key, only network access.
type EdgeBackend struct {
	timeout time.Duration
}

func init() {
	Register("edge", func(cfg Config) (Backend, error) {
		timeout := defaultEdgeTimeout
		if cfg.TimeoutSeconds > 0 {
			timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
		}
		return &EdgeBackend{timeout: timeout}, nil
	})
}

// Name implements Backend.
func (b *EdgeBackend) Name() string { return "edge" }

// IsAvailable implements Backend. Edge TTS has no cheap reachability probe;
// availability is discovered by the first Generate call.
func (b *EdgeBackend) IsAvailable() bool { return true }

// IsConfigured implements Backend. The service is keyless.
func (b *EdgeBackend) IsConfigured() bool { return true }

// Generate implements Backend.
func (b *EdgeBackend) Generate(ctx context.Context, text, voiceID string) ([]byte, error) {
	if text == "" {
		return nil, ErrEmptyText
	}
	if voiceID == "" {
		return nil, fmt.Errorf("%w: no edge voice id", ErrNotConfigured)
	}

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	type result struct {
		data []byte
		err  error
	}
	done := make(chan result, 1)

	// The edge-tts client has no context support; bound it from outside and
	// let a hung call finish in the background.
	go func() {
		communicate, err := edge_tts.NewCommunicate(text, edge_tts.SetVoice(voiceID))
		if err != nil {
			done <- result{nil, fmt.Errorf("unable to create edge tts session: %w", err)}
			return
		}

		data, err := communicate.Stream()
		if err != nil {
			done <- result{nil, fmt.Errorf("edge tts synthesis failed: %w", err)}
			return
		}
		done <- result{data, nil}
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("edge tts synthesis: %w", ctx.Err())
	case r := <-done:
		return r.data, r.err
	}
}
