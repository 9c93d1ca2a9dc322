package tts

import (
	"context"
	"errors"
	"fmt"
	"io"

	openai "github.com/sashabaranov/go-openai"
)

const (
	minOpenAISpeed = 0.25
	maxOpenAISpeed = 4.0
)

// SpeechCreator is the subset of the go-openai client used by OpenAISynthesizer.
type SpeechCreator interface {
	CreateSpeech(ctx context.Context, request openai.CreateSpeechRequest) (openai.RawResponse, error)
}

// OpenAISynthesizer renders speech with the OpenAI speech endpoint and hands
// the audio to a Player. The endpoint picks the language from the text, so
// the locale is not sent; pitch is not supported and is ignored.
type OpenAISynthesizer struct {
	client SpeechCreator
	player Player
	model  openai.SpeechModel
	voice  openai.SpeechVoice
}

// NewOpenAISynthesizer builds a synthesizer from an API key.
func NewOpenAISynthesizer(apiKey, baseURL string, player Player) (*OpenAISynthesizer, error) {
	if apiKey == "" {
		return nil, errors.New("openai api key is required")
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return NewOpenAISynthesizerWithClient(openai.NewClientWithConfig(cfg), player), nil
}

// NewOpenAISynthesizerWithClient builds a synthesizer around an existing client.
func NewOpenAISynthesizerWithClient(client SpeechCreator, player Player) *OpenAISynthesizer {
	if player == nil {
		player = &CommandPlayer{}
	}
	return &OpenAISynthesizer{
		client: client,
		player: player,
		model:  openai.TTSModel1,
		voice:  openai.VoiceAlloy,
	}
}

// Speak synthesizes the utterance and starts playback.
func (s *OpenAISynthesizer) Speak(ctx context.Context, utterance Utterance) error {
	speed := utterance.Rate
	if speed == 0 {
		speed = 1
	}
	speed = min(max(speed, minOpenAISpeed), maxOpenAISpeed)

	resp, err := s.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          s.model,
		Input:          utterance.Text,
		Voice:          s.voice,
		ResponseFormat: openai.SpeechResponseFormatMp3,
		Speed:          speed,
	})
	if err != nil {
		return fmt.Errorf("openai create speech: %w", err)
	}
	defer func() { _ = resp.Close() }()

	data, err := io.ReadAll(resp)
	if err != nil {
		return fmt.Errorf("read speech audio: %w", err)
	}

	if err := s.player.Play(ctx, Audio{Data: data, Format: "mp3"}); err != nil {
		return fmt.Errorf("play speech: %w", err)
	}
	return nil
}

// Available reports whether a client is configured.
func (s *OpenAISynthesizer) Available() bool { return s.client != nil }

// Health returns the health status of the synthesizer.
func (s *OpenAISynthesizer) Health() HealthStatus {
	return HealthStatus{Healthy: s.client != nil, Message: "openai synthesizer (" + string(s.model) + ")"}
}
