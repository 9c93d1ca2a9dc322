package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"sync"

	"unitranslate/packages/backend/status"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

func newWatchCmd(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "watch <session-id>",
		Short: "Follow the status events of a session",
		Long: `Follow the status events of a translation session.

Events are read from Redis when --redis is set, otherwise from the
Translation API's /sessions/{id}/events websocket.`,
		Args: cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			stream, err := a.subscribe(ctx, args[0])
			if err != nil {
				return err
			}
			defer func() { _ = stream.Close() }()

			out := newPrinter(cmd.OutOrStdout())
			seen := 0
			for {
				select {
				case event, ok := <-stream.Events():
					if !ok {
						return pendingError(stream)
					}
					out.Println(out.styles.event(event))
					seen++
					if limit > 0 && seen >= limit {
						return nil
					}
				case err, ok := <-stream.Errors():
					if ok && err != nil {
						return fmt.Errorf("watch session: %w", err)
					}
				case <-ctx.Done():
					return nil
				}
			}
		}),
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "exit after this many events (0 for no limit)")
	return cmd
}

// pendingError returns an error the stream reported as it ended.
func pendingError(stream status.StatusStream) error {
	select {
	case err, ok := <-stream.Errors():
		if ok && err != nil {
			return fmt.Errorf("watch session: %w", err)
		}
	default:
	}
	return nil
}

func (a *app) subscribe(ctx context.Context, sessionID string) (status.StatusStream, error) {
	if a.redis != nil {
		stream, err := status.NewRedisStatusSubscriber(a.redis).Subscribe(ctx, sessionID)
		if err != nil {
			return nil, fmt.Errorf("subscribe to session events: %w", err)
		}
		return stream, nil
	}
	return dialSessionEvents(ctx, a.client.BaseURL(), sessionID)
}

// eventsURL maps the Translation API base URL to its websocket endpoint.
func eventsURL(baseURL, sessionID string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parse api url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported api url scheme %q", u.Scheme)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/sessions/" + url.PathEscape(sessionID) + "/events"
	u.RawQuery = ""
	return u.String(), nil
}

// wsStatusStream reads session events relayed by the Translation API.
type wsStatusStream struct {
	conn   *websocket.Conn
	events chan status.SessionStatusEvent
	errs   chan error
	once   sync.Once
}

func dialSessionEvents(ctx context.Context, baseURL, sessionID string) (status.StatusStream, error) {
	target, err := eventsURL(baseURL, sessionID)
	if err != nil {
		return nil, err
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, target, nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial session events: %s: %w", resp.Status, err)
		}
		return nil, fmt.Errorf("dial session events: %w", err)
	}

	s := &wsStatusStream{
		conn:   conn,
		events: make(chan status.SessionStatusEvent, 16),
		errs:   make(chan error, 1),
	}
	go s.run(ctx)
	return s, nil
}

func (s *wsStatusStream) Events() <-chan status.SessionStatusEvent { return s.events }

func (s *wsStatusStream) Errors() <-chan error { return s.errs }

// Close sends a close frame and releases the connection.
func (s *wsStatusStream) Close() error {
	var err error
	s.once.Do(func() {
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = s.conn.WriteMessage(websocket.CloseMessage, msg)
		err = s.conn.Close()
	})
	return err
}

func (s *wsStatusStream) run(ctx context.Context) {
	defer close(s.events)
	defer close(s.errs)

	for {
		_, payload, err := s.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return
			}
			if errors.Is(err, net.ErrClosed) {
				return
			}
			s.errs <- fmt.Errorf("read session events: %w", err)
			return
		}

		var event status.SessionStatusEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			s.errs <- fmt.Errorf("decode session event: %w", err)
			return
		}
		select {
		case s.events <- event:
		case <-ctx.Done():
			return
		}
	}
}
