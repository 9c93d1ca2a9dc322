package asr

import (
	"context"
	"sync"
)

// capture is the Capture shared by the recognizers in this package. The
// recognition goroutine owns events; stop cancels the recording phase only.
type capture struct {
	locale   string
	events   chan Event
	stopOnce sync.Once
	stop     context.CancelFunc
}

func newCapture(locale string, stop context.CancelFunc) *capture {
	return &capture{
		locale: locale,
		events: make(chan Event, 2),
		stop:   stop,
	}
}

func (c *capture) Events() <-chan Event {
	return c.events
}

func (c *capture) Stop() error {
	c.stopOnce.Do(c.stop)
	return nil
}

// finish emits the outcome, then EventEnd, and closes the channel. The
// channel is buffered for both so finish never blocks.
func (c *capture) finish(transcript string, err error) {
	defer close(c.events)
	defer c.stopOnce.Do(c.stop)

	switch {
	case err != nil:
		c.events <- Event{Type: EventError, Locale: c.locale, Err: err}
	case transcript != "":
		c.events <- Event{Type: EventResult, Locale: c.locale, Transcript: transcript}
	}
	c.events <- Event{Type: EventEnd, Locale: c.locale}
}
