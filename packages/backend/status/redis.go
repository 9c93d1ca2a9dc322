package status

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	goredis "github.com/redis/go-redis/v9"
)

// RedisStatusPublisher publishes session events on the session's channel.
type RedisStatusPublisher struct {
	client goredis.Cmdable
}

// NewRedisStatusPublisher creates a publisher on client.
func NewRedisStatusPublisher(client goredis.Cmdable) *RedisStatusPublisher {
	return &RedisStatusPublisher{client: client}
}

// Publish sends event as JSON on the session's channel.
func (p *RedisStatusPublisher) Publish(ctx context.Context, event SessionStatusEvent) error {
	if event.SessionID == "" {
		return fmt.Errorf("session id required")
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal status event: %w", err)
	}
	if err := p.client.Publish(ctx, ChannelName(event.SessionID), payload).Err(); err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}
	return nil
}

type pubSubClient interface {
	Subscribe(ctx context.Context, channels ...string) *goredis.PubSub
}

// RedisStatusSubscriber reads session events from Redis pub/sub.
type RedisStatusSubscriber struct {
	client pubSubClient
}

// NewRedisStatusSubscriber creates a subscriber on client.
func NewRedisStatusSubscriber(client *goredis.Client) *RedisStatusSubscriber {
	return &RedisStatusSubscriber{client: client}
}

// Subscribe returns once the subscription is confirmed by the server.
func (s *RedisStatusSubscriber) Subscribe(ctx context.Context, sessionID string) (StatusStream, error) {
	pubsub := s.client.Subscribe(ctx, ChannelName(sessionID))
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("redis subscribe: %w", err)
	}

	stream := &redisStatusStream{
		pubsub:    pubsub,
		events:    make(chan SessionStatusEvent, 8),
		errors:    make(chan error, 1),
		sessionID: sessionID,
	}
	go stream.run(ctx, pubsub.Channel())
	return stream, nil
}

// StatusStream delivers the events of one session until closed. Both
// channels are closed when the stream ends.
type StatusStream interface {
	Events() <-chan SessionStatusEvent
	Errors() <-chan error
	Close() error
}

type redisStatusStream struct {
	pubsub    *goredis.PubSub
	events    chan SessionStatusEvent
	errors    chan error
	closeOnce sync.Once
	closeErr  error
	sessionID string
}

func (s *redisStatusStream) Events() <-chan SessionStatusEvent {
	return s.events
}

func (s *redisStatusStream) Errors() <-chan error {
	return s.errors
}

func (s *redisStatusStream) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.pubsub.Close()
	})
	return s.closeErr
}

func (s *redisStatusStream) run(ctx context.Context, messages <-chan *goredis.Message) {
	defer close(s.errors)
	defer close(s.events)
	defer func() { _ = s.Close() }()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			var event SessionStatusEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				s.reportError(fmt.Errorf("decode status event: %w", err))
				continue
			}
			if event.SessionID == "" {
				event.SessionID = s.sessionID
			}
			select {
			case s.events <- event:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (s *redisStatusStream) reportError(err error) {
	select {
	case s.errors <- err:
	default:
	}
}
