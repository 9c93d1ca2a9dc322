// Package tts defines the Text-to-Speech provider used by a translation
// session and its implementations.
package tts

import (
	"context"
	"errors"
)

const (
	// DefaultRate is the speaking rate requested for translations.
	DefaultRate = 0.8
	// DefaultPitch is the pitch requested for translations.
	DefaultPitch = 1.0
)

// Utterance describes text to be spoken.
type Utterance struct {
	// Text is what to say.
	Text string `json:"text"`
	// Locale is a region-qualified tag such as "es-ES".
	Locale string `json:"locale"`
	// Rate is the speaking rate, 1.0 being normal speed.
	Rate float64 `json:"rate"`
	// Pitch is the voice pitch, 1.0 being the voice's default.
	Pitch float64 `json:"pitch"`
}

// HealthStatus represents the health of a component.
type HealthStatus struct {
	Healthy bool   `json:"healthy"`
	Message string `json:"message,omitempty"`
}

// Synthesizer converts text to speech audio and plays it.
type Synthesizer interface {
	// Speak requests playback of the utterance. Playback continues after
	// Speak returns; completion is not reported.
	Speak(ctx context.Context, utterance Utterance) error

	// Available reports whether the host can play speech at all.
	Available() bool

	// Health returns the current health status of the synthesizer.
	Health() HealthStatus
}

// ErrUnavailable is returned by synthesizers that cannot play speech.
var ErrUnavailable = errors.New("speech synthesis unavailable")

// Unavailable is the Synthesizer of hosts without speech output.
type Unavailable struct {
	Reason string
}

// Speak always fails with ErrUnavailable.
func (Unavailable) Speak(context.Context, Utterance) error {
	return ErrUnavailable
}

// Available reports false.
func (Unavailable) Available() bool { return false }

// Health reports the reason the synthesizer is unavailable.
func (u Unavailable) Health() HealthStatus {
	msg := u.Reason
	if msg == "" {
		msg = ErrUnavailable.Error()
	}
	return HealthStatus{Healthy: false, Message: msg}
}
