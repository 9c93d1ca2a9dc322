// Package asr defines the Speech-to-Text provider used by a translation
// session and its implementations.
package asr

import (
	"context"
	"errors"
)

// EventType classifies capture events.
type EventType int

const (
	// EventResult carries the recognized transcript.
	EventResult EventType = iota
	// EventError reports a capture or recognition failure.
	EventError
	// EventEnd is the last event of every capture.
	EventEnd
)

func (t EventType) String() string {
	switch t {
	case EventResult:
		return "result"
	case EventError:
		return "error"
	case EventEnd:
		return "end"
	default:
		return "unknown"
	}
}

// Event is emitted by a Capture.
type Event struct {
	Type EventType
	// Transcript is the first recognized alternative. Set for EventResult.
	Transcript string
	// Locale is the locale the capture was started with.
	Locale string
	// Err is set for EventError.
	Err error
}

// Capture is one single-utterance recognition. Its event channel delivers at
// most one result or error followed by EventEnd, then closes.
type Capture interface {
	Events() <-chan Event
	// Stop ends recording early. Audio captured so far is still recognized.
	Stop() error
}

// HealthStatus represents the health of a component.
type HealthStatus struct {
	Healthy bool   `json:"healthy"`
	Message string `json:"message,omitempty"`
}

// Recognizer transcribes speech for a locale tag such as "en-US".
type Recognizer interface {
	// Start begins a capture. Cancelling ctx aborts it.
	Start(ctx context.Context, locale string) (Capture, error)

	// Available reports whether the host can capture speech at all.
	Available() bool

	// Health returns the current health status of the recognizer.
	Health() HealthStatus
}

// ErrUnavailable is returned by recognizers that cannot capture speech.
var ErrUnavailable = errors.New("speech recognition unavailable")

// Unavailable is the Recognizer of hosts without speech capture.
type Unavailable struct {
	Reason string
}

// Start always fails with ErrUnavailable.
func (Unavailable) Start(context.Context, string) (Capture, error) {
	return nil, ErrUnavailable
}

// Available reports false.
func (Unavailable) Available() bool { return false }

// Health reports the reason the recognizer is unavailable.
func (u Unavailable) Health() HealthStatus {
	msg := u.Reason
	if msg == "" {
		msg = ErrUnavailable.Error()
	}
	return HealthStatus{Healthy: false, Message: msg}
}
