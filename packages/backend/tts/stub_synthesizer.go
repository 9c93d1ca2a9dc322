package tts

import (
	"context"
	"sync"
)

// StubSynthesizerConfig configures the stub synthesizer behavior.
type StubSynthesizerConfig struct {
	// Err, when set, is returned by Speak.
	Err error
}

// StubSynthesizer records utterances instead of playing them.
type StubSynthesizer struct {
	config *StubSynthesizerConfig

	mu     sync.Mutex
	spoken []Utterance
}

// NewStubSynthesizer creates a new stub synthesizer with the given config.
func NewStubSynthesizer(config *StubSynthesizerConfig) *StubSynthesizer {
	if config == nil {
		config = &StubSynthesizerConfig{}
	}
	return &StubSynthesizer{config: config}
}

// Speak records the utterance.
func (s *StubSynthesizer) Speak(ctx context.Context, utterance Utterance) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.config.Err != nil {
		return s.config.Err
	}
	s.mu.Lock()
	s.spoken = append(s.spoken, utterance)
	s.mu.Unlock()
	return nil
}

// Spoken returns the recorded utterances in order.
func (s *StubSynthesizer) Spoken() []Utterance {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Utterance(nil), s.spoken...)
}

// Available reports true.
func (s *StubSynthesizer) Available() bool { return true }

// Health returns the health status of the stub synthesizer.
func (s *StubSynthesizer) Health() HealthStatus {
	return HealthStatus{
		Healthy: true,
		Message: "stub synthesizer ready",
	}
}
