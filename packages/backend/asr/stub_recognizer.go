package asr

import (
	"context"
	"sync"
	"time"
)

// StubRecognizerConfig configures the stub recognizer behavior.
type StubRecognizerConfig struct {
	// ProcessingDelay simulates how long the speaker talks.
	ProcessingDelay time.Duration
	// Transcripts are returned by successive captures. When exhausted the
	// capture ends without a result, as when nothing was said.
	Transcripts []string
	// Err, when set, is emitted as an EventError instead of a result.
	Err error
	// StartErr, when set, is returned by Start.
	StartErr error
}

// DefaultStubRecognizerConfig returns sensible defaults for testing.
func DefaultStubRecognizerConfig() *StubRecognizerConfig {
	return &StubRecognizerConfig{
		ProcessingDelay: 20 * time.Millisecond,
		Transcripts: []string{
			"Hello world.",
			"Good morning.",
			"Thank you.",
		},
	}
}

// StubRecognizer is a test implementation that returns deterministic transcripts.
type StubRecognizer struct {
	config *StubRecognizerConfig

	mu      sync.Mutex
	next    int
	locales []string
}

// NewStubRecognizer creates a new stub recognizer with the given config.
func NewStubRecognizer(config *StubRecognizerConfig) *StubRecognizer {
	if config == nil {
		config = DefaultStubRecognizerConfig()
	}
	return &StubRecognizer{config: config}
}

// Start begins a simulated capture.
func (s *StubRecognizer) Start(ctx context.Context, locale string) (Capture, error) {
	if s.config.StartErr != nil {
		return nil, s.config.StartErr
	}

	s.mu.Lock()
	s.locales = append(s.locales, locale)
	var transcript string
	if s.next < len(s.config.Transcripts) {
		transcript = s.config.Transcripts[s.next]
		s.next++
	}
	s.mu.Unlock()

	recordCtx, stop := context.WithCancel(ctx)
	c := newCapture(locale, stop)

	go func() {
		// Simulate the utterance; stopping early still yields the result.
		if s.config.ProcessingDelay > 0 {
			select {
			case <-time.After(s.config.ProcessingDelay):
			case <-recordCtx.Done():
			}
		}
		if ctx.Err() != nil {
			c.finish("", nil)
			return
		}
		c.finish(transcript, s.config.Err)
	}()

	return c, nil
}

// Locales returns the locales captures were started with, in order.
func (s *StubRecognizer) Locales() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.locales...)
}

// Available reports true.
func (s *StubRecognizer) Available() bool { return true }

// Health returns the health status of the stub recognizer.
func (s *StubRecognizer) Health() HealthStatus {
	return HealthStatus{
		Healthy: true,
		Message: "stub recognizer ready",
	}
}
