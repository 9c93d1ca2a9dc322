package status

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestChannelName(t *testing.T) {
	got := ChannelName("session123")
	if got != "unitranslate:session:session123:status" {
		t.Fatalf("unexpected channel name: %s", got)
	}
}

func TestMultiPublisher(t *testing.T) {
	t.Parallel()

	var got []SessionStatusEvent
	record := PublisherFunc(func(_ context.Context, event SessionStatusEvent) error {
		got = append(got, event)
		return nil
	})
	boom := errors.New("boom")
	failing := PublisherFunc(func(context.Context, SessionStatusEvent) error { return boom })

	pub := MultiPublisher{record, nil, NopPublisher{}, failing, record}
	event := SessionStatusEvent{SessionID: "s1", Stage: StageTranslation, State: StateCompleted}

	err := pub.Publish(context.Background(), event)
	require.ErrorIs(t, err, boom)
	require.Equal(t, []SessionStatusEvent{event, event}, got)
}

func TestLogPublisher(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	pub := LogPublisher{Logger: zap.New(core).Sugar()}

	require.NoError(t, pub.Publish(context.Background(), SessionStatusEvent{
		SessionID: "s1", Stage: StageListening, State: StateStarted, Detail: "es-ES",
	}))
	require.NoError(t, LogPublisher{}.Publish(context.Background(), SessionStatusEvent{}))

	entries := logs.FilterMessage("session status").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	require.Equal(t, "s1", fields["sessionId"])
	require.Equal(t, "es-ES", fields["detail"])
}

func TestRedisStatusPublisherAndSubscriber(t *testing.T) {
	mini := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mini.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stream, err := NewRedisStatusSubscriber(client).Subscribe(ctx, "session123")
	require.NoError(t, err)
	defer stream.Close()

	publisher := NewRedisStatusPublisher(client)
	event := SessionStatusEvent{
		SessionID: "session123",
		Stage:     StageTranslation,
		State:     StateCompleted,
		Detail:    "en->es",
		Timestamp: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, publisher.Publish(ctx, event))

	select {
	case got := <-stream.Events():
		require.Equal(t, event, got)
	case err := <-stream.Errors():
		t.Fatalf("unexpected stream error: %v", err)
	case <-ctx.Done():
		t.Fatalf("timed out waiting for status event")
	}
}

func TestRedisStatusSubscriber_BadPayload(t *testing.T) {
	mini := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mini.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stream, err := NewRedisStatusSubscriber(client).Subscribe(ctx, "s2")
	require.NoError(t, err)
	defer stream.Close()

	mini.Publish(ChannelName("s2"), "{not json")

	select {
	case err := <-stream.Errors():
		require.ErrorContains(t, err, "decode status event")
	case <-ctx.Done():
		t.Fatalf("timed out waiting for decode error")
	}

	mini.Publish(ChannelName("s2"), `{"stage":"speech","state":"started"}`)
	select {
	case got := <-stream.Events():
		require.Equal(t, "s2", got.SessionID)
		require.Equal(t, StageSpeech, got.Stage)
	case <-ctx.Done():
		t.Fatalf("timed out waiting for status event")
	}
}

func TestRedisStatusStream_CloseEndsChannels(t *testing.T) {
	mini := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mini.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	stream, err := NewRedisStatusSubscriber(client).Subscribe(context.Background(), "s3")
	require.NoError(t, err)
	require.NoError(t, stream.Close())

	select {
	case _, open := <-stream.Events():
		require.False(t, open)
	case <-time.After(5 * time.Second):
		t.Fatalf("events channel not closed")
	}
}

func TestRedisStatusPublisher_RequiresSession(t *testing.T) {
	t.Parallel()

	err := NewRedisStatusPublisher(nil).Publish(context.Background(), SessionStatusEvent{})
	require.Error(t, err)
}
