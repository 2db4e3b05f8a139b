package voice

import (
	"context"
	"fmt"
	"io"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const (
	defaultOpenAITimeout = 60 * time.Second
	defaultOpenAIModel   = string(openai.TTSModel1)
)

// OpenAIBackend synthesizes speech through the OpenAI audio API. It requires
// an API key and bills per character.
type OpenAIBackend struct {
	client  *openai.Client
	apiKey  string
	model   string
	timeout time.Duration
}

func init() {
	Register("openai", func(cfg Config) (Backend, error) {
		b := &OpenAIBackend{
			apiKey:  cfg.APIKey,
			model:   cfg.Model,
			timeout: defaultOpenAITimeout,
		}
		if b.model == "" {
			b.model = defaultOpenAIModel
		}
		if cfg.TimeoutSeconds > 0 {
			b.timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
		}
		if cfg.APIKey != "" {
			b.client = openai.NewClient(cfg.APIKey)
		}
		return b, nil
	})
}

// Name implements Backend.
func (b *OpenAIBackend) Name() string { return "openai" }

// IsAvailable implements Backend.
func (b *OpenAIBackend) IsAvailable() bool { return b.client != nil }

// IsConfigured implements Backend.
func (b *OpenAIBackend) IsConfigured() bool { return b.apiKey != "" }

// Generate implements Backend.
func (b *OpenAIBackend) Generate(ctx context.Context, text, voiceID string) ([]byte, error) {
	if text == "" {
		return nil, ErrEmptyText
	}
	if b.client == nil {
		return nil, fmt.Errorf("%w: no OpenAI API key", ErrNotConfigured)
	}

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	resp, err := b.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(b.model),
		Input:          text,
		Voice:          openai.SpeechVoice(voiceID),
		ResponseFormat: openai.SpeechResponseFormatMp3,
	})
	if err != nil {
		return nil, fmt.Errorf("openai speech synthesis failed: %w", err)
	}
	defer resp.Close() //nolint:errcheck

	data, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("unable to read openai speech response: %w", err)
	}
	return data, nil
}
