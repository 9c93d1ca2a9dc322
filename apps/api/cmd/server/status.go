package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"sync"
	"time"

	statuspkg "unitranslate/packages/backend/status"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	eventsWriteWait = 10 * time.Second
	eventsPongWait  = 60 * time.Second
	eventsPingEvery = eventsPongWait * 9 / 10
)

var sessionIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{8,64}$`)

// StatusSubscriber opens the status event stream of one session.
type StatusSubscriber interface {
	Subscribe(ctx context.Context, sessionID string) (statuspkg.StatusStream, error)
}

var eventsUpgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

// eventRelays tracks the open websocket relays so shutdown can close them
// with 1001. http.Server.Shutdown does not see hijacked connections.
type eventRelays struct {
	mu       sync.Mutex
	closed   bool
	stopping chan struct{}
	active   sync.WaitGroup
}

func newEventRelays() *eventRelays {
	return &eventRelays{stopping: make(chan struct{})}
}

// enter registers a relay; it fails once Shutdown has started.
func (e *eventRelays) enter() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return false
	}
	e.active.Add(1)
	return true
}

// Shutdown tells every relay to close and waits for them or for ctx.
func (e *eventRelays) Shutdown(ctx context.Context) error {
	e.mu.Lock()
	if !e.closed {
		e.closed = true
		close(e.stopping)
	}
	e.mu.Unlock()

	done := make(chan struct{})
	go func() {
		e.active.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// sessionEventsHandler relays the status events of one session to a
// websocket client until either side goes away or relays shut down.
func sessionEventsHandler(subscriber StatusSubscriber, relays *eventRelays, logger *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := chi.URLParam(r, "id")
		if !sessionIDPattern.MatchString(sessionID) {
			writeError(w, logger, http.StatusBadRequest, fmt.Errorf("invalid session id"))
			return
		}

		if !relays.enter() {
			writeError(w, logger, http.StatusServiceUnavailable, fmt.Errorf("server shutting down"))
			return
		}
		defer relays.active.Done()

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		stream, err := subscriber.Subscribe(ctx, sessionID)
		if err != nil {
			logger.Errorw("failed to subscribe to status stream", "error", err, "sessionID", sessionID)
			writeError(w, logger, http.StatusServiceUnavailable, fmt.Errorf("session events unavailable"))
			return
		}
		defer func() {
			if err := stream.Close(); err != nil {
				logger.Errorw("failed to close status stream", "error", err, "sessionID", sessionID)
			}
		}()

		conn, err := eventsUpgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Warnw("websocket upgrade failed", "error", err, "sessionID", sessionID)
			return
		}
		defer func() { _ = conn.Close() }()

		go websocketReadLoop(conn, cancel)

		ticker := time.NewTicker(eventsPingEvery)
		defer ticker.Stop()

		for {
			select {
			case event, ok := <-stream.Events():
				if !ok {
					writeClose(conn, websocket.CloseNormalClosure)
					return
				}
				payload, err := json.Marshal(event)
				if err != nil {
					logger.Errorw("failed to marshal status event", "error", err, "sessionID", sessionID)
					continue
				}
				_ = conn.SetWriteDeadline(time.Now().Add(eventsWriteWait))
				if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
					logger.Errorw("failed to write status event", "error", err, "sessionID", sessionID)
					return
				}
			case err, ok := <-stream.Errors():
				if ok && err != nil {
					logger.Errorw("status stream error", "error", err, "sessionID", sessionID)
					writeClose(conn, websocket.CloseInternalServerErr)
					return
				}
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(eventsWriteWait)); err != nil {
					return
				}
			case <-relays.stopping:
				writeClose(conn, websocket.CloseGoingAway)
				return
			case <-ctx.Done():
				writeClose(conn, websocket.CloseGoingAway)
				return
			}
		}
	}
}

func writeClose(conn *websocket.Conn, code int) {
	msg := websocket.FormatCloseMessage(code, "")
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(eventsWriteWait))
}

// websocketReadLoop consumes client frames so control messages are handled,
// and cancels the relay when the client disconnects.
func websocketReadLoop(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	_ = conn.SetReadDeadline(time.Now().Add(eventsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(eventsPongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
