package asr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"unitranslate/packages/backend/language"

	openai "github.com/sashabaranov/go-openai"
)

// errNoAudio is reported when the recorder produced nothing.
var errNoAudio = errors.New("no audio captured")

// Transcriber is the subset of the go-openai client used by WhisperRecognizer.
type Transcriber interface {
	CreateTranscription(ctx context.Context, request openai.AudioRequest) (openai.AudioResponse, error)
}

// WhisperRecognizer records an utterance from an AudioSource and transcribes
// it with the OpenAI transcription endpoint.
type WhisperRecognizer struct {
	client Transcriber
	source AudioSource
	model  string
}

// NewWhisperRecognizer builds a recognizer from an API key.
func NewWhisperRecognizer(apiKey, baseURL string, source AudioSource) (*WhisperRecognizer, error) {
	if apiKey == "" {
		return nil, errors.New("openai api key is required")
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return NewWhisperRecognizerWithClient(openai.NewClientWithConfig(cfg), source), nil
}

// NewWhisperRecognizerWithClient builds a recognizer around an existing client.
func NewWhisperRecognizerWithClient(client Transcriber, source AudioSource) *WhisperRecognizer {
	if source == nil {
		source = CommandSource{}
	}
	return &WhisperRecognizer{client: client, source: source, model: openai.Whisper1}
}

// Start records one utterance in the background and transcribes it.
func (w *WhisperRecognizer) Start(ctx context.Context, locale string) (Capture, error) {
	recordCtx, stop := context.WithCancel(ctx)
	c := newCapture(locale, stop)

	go func() {
		audio, err := w.source.Record(recordCtx)
		if ctx.Err() != nil {
			c.finish("", nil)
			return
		}
		if err != nil {
			c.finish("", fmt.Errorf("record: %w", err))
			return
		}
		if len(audio.Data) == 0 {
			c.finish("", errNoAudio)
			return
		}

		resp, err := w.client.CreateTranscription(ctx, openai.AudioRequest{
			Model:    w.model,
			FilePath: audio.Name,
			Reader:   bytes.NewReader(audio.Data),
			Language: language.BaseOf(locale),
		})
		if err != nil {
			if ctx.Err() != nil {
				c.finish("", nil)
				return
			}
			c.finish("", fmt.Errorf("transcribe: %w", err))
			return
		}
		c.finish(strings.TrimSpace(resp.Text), nil)
	}()

	return c, nil
}

// Available reports whether a client is configured. The recorder is only
// probed when a capture starts.
func (w *WhisperRecognizer) Available() bool { return w.client != nil }

// Health returns the health status of the recognizer.
func (w *WhisperRecognizer) Health() HealthStatus {
	return HealthStatus{Healthy: w.client != nil, Message: "whisper recognizer (" + w.model + ")"}
}
