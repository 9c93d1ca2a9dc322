// Package status carries the progress events of a translation session to
// observers: the session log, in-process callbacks and Redis pub/sub.
package status

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// Stage names the part of a session an event is about.
type Stage string

const (
	StageSession     Stage = "session"
	StageLanguages   Stage = "languages"
	StageTranslation Stage = "translation"
	StageListening   Stage = "listening"
	StageSpeech      Stage = "speech"
)

// State is the outcome reported for a stage.
type State string

const (
	StateStarted   State = "started"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
	StateStopped   State = "stopped"
	StateFallback  State = "fallback"
)

// SessionStatusEvent represents a progress update for a translation session.
type SessionStatusEvent struct {
	SessionID string    `json:"sessionId"`
	Stage     Stage     `json:"stage"`
	State     State     `json:"state"`
	Detail    string    `json:"detail,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher delivers session events. Publishing must not block for long;
// callers treat failures as non-fatal.
type Publisher interface {
	Publish(ctx context.Context, event SessionStatusEvent) error
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(ctx context.Context, event SessionStatusEvent) error

// Publish calls f.
func (f PublisherFunc) Publish(ctx context.Context, event SessionStatusEvent) error {
	return f(ctx, event)
}

// NopPublisher discards events.
type NopPublisher struct{}

// Publish does nothing.
func (NopPublisher) Publish(context.Context, SessionStatusEvent) error { return nil }

// LogPublisher writes events to a zap logger at debug level.
type LogPublisher struct {
	Logger *zap.SugaredLogger
}

// Publish logs the event.
func (p LogPublisher) Publish(_ context.Context, event SessionStatusEvent) error {
	if p.Logger == nil {
		return nil
	}
	p.Logger.Debugw("session status",
		"sessionId", event.SessionID,
		"stage", event.Stage,
		"state", event.State,
		"detail", event.Detail,
	)
	return nil
}

// MultiPublisher fans an event out to every publisher.
type MultiPublisher []Publisher

// Publish delivers to all publishers and joins their errors.
func (m MultiPublisher) Publish(ctx context.Context, event SessionStatusEvent) error {
	var errs []error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ChannelName returns the pub/sub channel of a session.
func ChannelName(sessionID string) string {
	return "unitranslate:session:" + sessionID + ":status"
}
