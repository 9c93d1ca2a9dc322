package di

import (
	"context"
	"testing"
	"time"

	"unitranslate/packages/backend/asr"
	"unitranslate/packages/backend/language"
	"unitranslate/packages/backend/session"
	"unitranslate/packages/backend/tts"
)

func TestNewTestContainer_WiresStubs(t *testing.T) {
	t.Parallel()

	c := NewTestContainer()
	if c.API == nil || c.Recognizer == nil || c.Synthesizer == nil || c.Publisher == nil {
		t.Fatalf("expected all providers to be set: %+v", c)
	}

	s := c.NewSession(session.WithSuccessWindow(10 * time.Millisecond))
	defer s.Close()

	caps := s.Capabilities()
	if !caps.SpeechRecognition || !caps.SpeechSynthesis {
		t.Fatalf("expected stub providers to be available, got %+v", caps)
	}

	if err := s.SetTargetLanguage("es"); err != nil {
		t.Fatalf("set target: %v", err)
	}
	s.SetInputText("hello")
	s.TranslateInput(context.Background())

	state := s.Snapshot()
	if state.TranslatedText != "hola" {
		t.Fatalf("expected hola, got %q", state.TranslatedText)
	}
	if state.DetectedLanguage != "en" || state.TranslationCount != 1 {
		t.Fatalf("unexpected state: %+v", state)
	}
}

func TestNewContainer_DefaultsToUnavailableSpeech(t *testing.T) {
	t.Parallel()

	c := NewContainer(NewTestContainer().API)
	if _, ok := c.Recognizer.(asr.Unavailable); !ok {
		t.Fatalf("expected unavailable recognizer, got %T", c.Recognizer)
	}
	if _, ok := c.Synthesizer.(tts.Unavailable); !ok {
		t.Fatalf("expected unavailable synthesizer, got %T", c.Synthesizer)
	}

	s := c.NewSession()
	defer s.Close()
	if caps := s.Capabilities(); caps.SpeechRecognition || caps.SpeechSynthesis {
		t.Fatalf("expected no speech capabilities, got %+v", caps)
	}

	s.LoadLanguages(context.Background())
	if !s.Snapshot().Languages.Has("zh-cn") {
		t.Fatalf("expected stub catalog to be loaded")
	}
	if s.Snapshot().SourceLanguage != language.Auto {
		t.Fatalf("expected auto source")
	}
}

func TestContainerOptions(t *testing.T) {
	t.Parallel()

	recognizer := asr.NewStubRecognizer(nil)
	synth := tts.NewStubSynthesizer(nil)
	c := NewContainer(NewTestContainer().API, WithRecognizer(recognizer), WithSynthesizer(synth))
	if c.Recognizer != recognizer || c.Synthesizer != synth {
		t.Fatalf("options not applied")
	}
}

func TestNewContainer_RequiresAPI(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Fatalf("expected a panic for a nil API")
		}
	}()
	NewContainer(nil)
}
