package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"unitranslate/packages/backend/asr"
	"unitranslate/packages/backend/di"
	"unitranslate/packages/backend/language"
	"unitranslate/packages/backend/session"
	"unitranslate/packages/backend/status"
	"unitranslate/packages/backend/translation"
	"unitranslate/packages/backend/tts"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/websocket"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeAPI serves a small Translation API.
func fakeAPI(t *testing.T) *httptest.Server {
	t.Helper()

	writeJSON := func(w http.ResponseWriter, code int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(v)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /languages", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"en": "english", "es": "spanish", "fr": "french"})
	})
	mux.HandleFunc("POST /translate", func(w http.ResponseWriter, r *http.Request) {
		var req translation.Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
			return
		}
		if req.Text == "boom" {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Translation error: engine down"})
			return
		}
		translated := "[" + req.TargetLanguage + "] " + req.Text
		if req.Text == "hello" && req.TargetLanguage == "es" {
			translated = "hola"
		}
		writeJSON(w, http.StatusOK, translation.Response{TranslatedText: translated, DetectedLanguage: "en", Confidence: 0.95})
	})
	mux.HandleFunc("GET /detect", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, translation.DetectResponse{Language: "fr", Confidence: 0.8, LanguageName: "french"})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

type testRun struct {
	out    string
	err    error
	speech speechProviders
}

func stubSpeech() speechProviders {
	return speechProviders{
		recognizer:  asr.NewStubRecognizer(nil),
		synthesizer: tts.NewStubSynthesizer(nil),
	}
}

func runCommand(t *testing.T, speech speechProviders, stdin string, args ...string) testRun {
	t.Helper()

	a := &app{newSpeech: func(cliConfig, *zap.SugaredLogger) speechProviders { return speech }}
	cmd := newRootCommand(a)

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--log-level", "error", "--redis", ""}, args...))

	err := cmd.ExecuteContext(context.Background())
	return testRun{out: out.String(), err: err, speech: speech}
}

func TestLanguagesCommand(t *testing.T) {
	srv := fakeAPI(t)

	run := runCommand(t, stubSpeech(), "", "--api-url", srv.URL, "languages")
	require.NoError(t, run.err)
	require.Contains(t, run.out, "spanish")
	require.Less(t, strings.Index(run.out, "en "), strings.Index(run.out, "es "))
	require.Less(t, strings.Index(run.out, "es "), strings.Index(run.out, "fr "))
}

func TestLanguagesCommand_APIDown(t *testing.T) {
	srv := fakeAPI(t)
	srv.Close()

	run := runCommand(t, stubSpeech(), "", "--api-url", srv.URL, "languages")
	require.ErrorContains(t, run.err, "list languages")
}

func TestTranslateCommand(t *testing.T) {
	srv := fakeAPI(t)

	run := runCommand(t, stubSpeech(), "", "--api-url", srv.URL, "translate", "--to", "es", "hello")
	require.NoError(t, run.err)
	require.Contains(t, run.out, "hola")
	require.Contains(t, run.out, "detected english (en), 95% confident")
}

func TestTranslateCommand_ExplicitSourceHidesDetection(t *testing.T) {
	srv := fakeAPI(t)

	run := runCommand(t, stubSpeech(), "", "--api-url", srv.URL, "translate", "--from", "en", "--to", "fr", "good", "night")
	require.NoError(t, run.err)
	require.Contains(t, run.out, "[fr] good night")
	require.NotContains(t, run.out, "detected")
}

func TestTranslateCommand_ReadsStdin(t *testing.T) {
	srv := fakeAPI(t)

	run := runCommand(t, stubSpeech(), "  hello\n", "--api-url", srv.URL, "translate", "-t", "es")
	require.NoError(t, run.err)
	require.Contains(t, run.out, "hola")
}

func TestTranslateCommand_Errors(t *testing.T) {
	srv := fakeAPI(t)

	run := runCommand(t, stubSpeech(), "", "--api-url", srv.URL, "translate", "boom")
	require.Error(t, run.err)
	require.Contains(t, run.out, session.FailureMessage)

	run = runCommand(t, stubSpeech(), "   ", "--api-url", srv.URL, "translate")
	require.ErrorIs(t, run.err, errNoText)

	run = runCommand(t, stubSpeech(), "", "--api-url", srv.URL, "translate", "--to", "xx", "hello")
	require.ErrorIs(t, run.err, language.ErrUnknownLanguage)

	run = runCommand(t, stubSpeech(), "", "--api-url", srv.URL, "translate", "--to", language.Auto, "hello")
	require.ErrorIs(t, run.err, language.ErrUnknownLanguage)
}

func TestTranslateCommand_Speak(t *testing.T) {
	srv := fakeAPI(t)
	speech := stubSpeech()

	run := runCommand(t, speech, "", "--api-url", srv.URL, "translate", "--to", "es", "--speak", "hello")
	require.NoError(t, run.err)

	spoken := speech.synthesizer.(*tts.StubSynthesizer).Spoken()
	require.Len(t, spoken, 1)
	require.Equal(t, "hola", spoken[0].Text)
	require.Equal(t, "es-ES", spoken[0].Locale)
	require.InDelta(t, tts.DefaultRate, spoken[0].Rate, 1e-9)
}

func TestTranslateCommand_SpeakUnavailable(t *testing.T) {
	srv := fakeAPI(t)
	speech := speechProviders{
		recognizer:  asr.Unavailable{},
		synthesizer: tts.Unavailable{},
	}

	run := runCommand(t, speech, "", "--api-url", srv.URL, "translate", "--to", "es", "--speak", "hello")
	require.NoError(t, run.err)
	require.Contains(t, run.out, "hola")
}

func TestDetectCommand(t *testing.T) {
	srv := fakeAPI(t)

	run := runCommand(t, stubSpeech(), "", "--api-url", srv.URL, "detect", "Bonjour")
	require.NoError(t, run.err)
	require.Contains(t, run.out, "french (fr)")
	require.Contains(t, run.out, "80% confident")
}

func TestInteractiveCommand(t *testing.T) {
	srv := fakeAPI(t)
	input := strings.Join([]string{
		"/to es",
		"hello",
		"/swap",
		"/from en",
		"/to xx",
		"/swap",
		"/status",
		"/clear",
		"/translate",
		"/bogus",
		"/quit",
		"never read",
	}, "\n")

	run := runCommand(t, stubSpeech(), input, "--api-url", srv.URL, "interactive")
	require.NoError(t, run.err)
	require.Contains(t, run.out, "Universal Translator")
	require.Contains(t, run.out, "to spanish (es)")
	require.Contains(t, run.out, "hola")
	require.Contains(t, run.out, "cannot swap while the source language is auto")
	require.Contains(t, run.out, "unknown language")
	require.Contains(t, run.out, "languages swapped")
	require.Contains(t, run.out, "translations: 1")
	require.Contains(t, run.out, "nothing to translate")
	require.Contains(t, run.out, "unknown command /bogus")
	require.NotContains(t, run.out, "never read")
}

func TestInteractiveCommand_SpeechUnavailable(t *testing.T) {
	srv := fakeAPI(t)
	speech := speechProviders{recognizer: asr.Unavailable{}, synthesizer: tts.Unavailable{}}

	run := runCommand(t, speech, "/listen\n/speak\n", "--api-url", srv.URL, "interactive")
	require.NoError(t, run.err)
	require.Contains(t, run.out, "speech input unavailable")
	require.Contains(t, run.out, "speech output unavailable")
}

// syncBuffer is a bytes.Buffer safe for concurrent readers.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestRepl_ListenReportsTranscript(t *testing.T) {
	container := di.NewTestContainer()
	container.Recognizer = asr.NewStubRecognizer(&asr.StubRecognizerConfig{
		ProcessingDelay: 10 * time.Millisecond,
		Transcripts:     []string{"good morning"},
	})

	var out syncBuffer
	r := &repl{out: newPrinter(&out)}
	r.ctrl = container.NewSession(session.WithCaptureEndListener(r.onCaptureEnd))
	t.Cleanup(func() { _ = r.ctrl.Close() })

	ctx := context.Background()
	r.handle(ctx, "/listen")
	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "heard: good morning")
	}, 2*time.Second, 10*time.Millisecond)
	require.Equal(t, "good morning", r.ctrl.Snapshot().InputText)

	r.handle(ctx, "/listen")
	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "no speech recognized")
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRepl_StopReportsTranscript(t *testing.T) {
	container := di.NewTestContainer()
	container.Recognizer = asr.NewStubRecognizer(&asr.StubRecognizerConfig{
		ProcessingDelay: 10 * time.Second,
		Transcripts:     []string{"see you tomorrow"},
	})

	var out syncBuffer
	r := &repl{out: newPrinter(&out)}
	r.ctrl = container.NewSession(session.WithCaptureEndListener(r.onCaptureEnd))
	t.Cleanup(func() { _ = r.ctrl.Close() })

	ctx := context.Background()
	r.handle(ctx, "/listen")
	r.handle(ctx, "/listen")
	require.Contains(t, out.String(), "already listening")

	r.handle(ctx, "/stop")
	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "heard: see you tomorrow")
	}, 2*time.Second, 10*time.Millisecond)
	require.NotContains(t, out.String(), "no speech recognized")
}

func TestWatchCommand_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	srv := fakeAPI(t)
	const sessionID = "session-1234"

	done := make(chan testRun, 1)
	go func() {
		a := &app{newSpeech: func(cliConfig, *zap.SugaredLogger) speechProviders { return stubSpeech() }}
		cmd := newRootCommand(a)
		var out bytes.Buffer
		cmd.SetOut(&out)
		cmd.SetArgs([]string{"--log-level", "error", "--api-url", srv.URL, "--redis", mr.Addr(), "watch", "--limit", "2", sessionID})
		err := cmd.ExecuteContext(context.Background())
		done <- testRun{out: out.String(), err: err}
	}()

	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	ctx := context.Background()

	channel := status.ChannelName(sessionID)
	require.Eventually(t, func() bool {
		return client.PubSubNumSub(ctx, channel).Val()[channel] == 1
	}, 2*time.Second, 10*time.Millisecond)

	publisher := status.NewRedisStatusPublisher(client)
	require.NoError(t, publisher.Publish(ctx, status.SessionStatusEvent{
		SessionID: sessionID, Stage: status.StageTranslation, State: status.StateStarted, Detail: "auto->es", Timestamp: time.Now(),
	}))
	require.NoError(t, publisher.Publish(ctx, status.SessionStatusEvent{
		SessionID: sessionID, Stage: status.StageTranslation, State: status.StateFailed, Detail: "engine down", Timestamp: time.Now(),
	}))

	select {
	case run := <-done:
		require.NoError(t, run.err)
		require.Contains(t, run.out, "auto->es")
		require.Contains(t, run.out, "engine down")
	case <-time.After(5 * time.Second):
		t.Fatalf("watch did not exit")
	}
}

func TestWatchCommand_Websocket(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/sessions/session-1234/events" {
			http.NotFound(w, r)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for _, state := range []status.State{status.StateStarted, status.StateCompleted} {
			payload, _ := json.Marshal(status.SessionStatusEvent{
				SessionID: "session-1234", Stage: status.StageListening, State: state, Detail: "en-US", Timestamp: time.Now(),
			})
			_ = conn.WriteMessage(websocket.TextMessage, payload)
		}
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	}))
	t.Cleanup(srv.Close)

	run := runCommand(t, stubSpeech(), "", "--api-url", srv.URL, "watch", "session-1234")
	require.NoError(t, run.err)
	require.Contains(t, run.out, "listening   started")
	require.Contains(t, run.out, "listening   completed")

	run = runCommand(t, stubSpeech(), "", "--api-url", srv.URL, "watch", "other-session")
	require.ErrorContains(t, run.err, "dial session events")
}

func TestWatchCommand_WebsocketStreamError(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		msg := websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "")
		_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	}))
	t.Cleanup(srv.Close)

	run := runCommand(t, stubSpeech(), "", "--api-url", srv.URL, "watch", "session-1234")
	require.ErrorContains(t, run.err, "read session events")
}

func TestEventsURL(t *testing.T) {
	cases := []struct {
		base string
		want string
	}{
		{base: "http://localhost:8000", want: "ws://localhost:8000/sessions/abc/events"},
		{base: "https://api.example.com/v1/", want: "wss://api.example.com/v1/sessions/abc/events"},
	}
	for _, tc := range cases {
		got, err := eventsURL(tc.base, "abc")
		require.NoError(t, err)
		require.Equal(t, tc.want, got)
	}

	_, err := eventsURL("ftp://example.com", "abc")
	require.Error(t, err)
}

func TestDetectSpeech_WithoutKey(t *testing.T) {
	p := detectSpeech(cliConfig{}, zap.NewNop().Sugar())
	require.False(t, p.recognizer.Available())
	require.False(t, p.synthesizer.Available())
	p.Wait()
}

func TestDetectSpeech_FileOutput(t *testing.T) {
	cfg := cliConfig{OpenAIKey: "sk-test", TTSOutputDir: t.TempDir(), Recorder: "definitely-not-a-recorder"}
	p := detectSpeech(cfg, zap.NewNop().Sugar())
	require.False(t, p.recognizer.Available())
	require.True(t, p.synthesizer.Available())
	require.Nil(t, p.player)
}
