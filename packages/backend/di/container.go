package di

import (
	"unitranslate/packages/backend/asr"
	"unitranslate/packages/backend/session"
	"unitranslate/packages/backend/status"
	"unitranslate/packages/backend/translation"
	"unitranslate/packages/backend/tts"

	"go.uber.org/zap"
)

// Container holds the providers a translation session depends on.
// It enables dependency injection for both production and test environments.
type Container struct {
	API         translation.API
	Recognizer  asr.Recognizer
	Synthesizer tts.Synthesizer
	Publisher   status.Publisher
	Logger      *zap.SugaredLogger
}

// ContainerOption configures a container during construction.
type ContainerOption func(*Container)

// WithRecognizer sets the ASR recognizer implementation.
func WithRecognizer(r asr.Recognizer) ContainerOption {
	return func(c *Container) { c.Recognizer = r }
}

// WithSynthesizer sets the TTS synthesizer implementation.
func WithSynthesizer(s tts.Synthesizer) ContainerOption {
	return func(c *Container) { c.Synthesizer = s }
}

// WithPublisher sets the status event publisher.
func WithPublisher(p status.Publisher) ContainerOption {
	return func(c *Container) { c.Publisher = p }
}

// WithLogger sets the logger handed to sessions.
func WithLogger(l *zap.SugaredLogger) ContainerOption {
	return func(c *Container) { c.Logger = l }
}

// NewTestContainer creates a container with all stub implementations
// for testing without external dependencies.
func NewTestContainer() *Container {
	return &Container{
		API:         translation.NewService(translation.NewStubTranslator(nil), nil),
		Recognizer:  asr.NewStubRecognizer(nil),
		Synthesizer: tts.NewStubSynthesizer(nil),
		Publisher:   status.NopPublisher{},
		Logger:      zap.NewNop().Sugar(),
	}
}

// NewContainer creates a container translating through api. Speech
// providers that are not set are unavailable. api must not be nil.
func NewContainer(api translation.API, opts ...ContainerOption) *Container {
	if api == nil {
		panic("di: nil translation API")
	}
	c := &Container{
		API:         api,
		Recognizer:  asr.Unavailable{Reason: "no speech recognizer configured"},
		Synthesizer: tts.Unavailable{Reason: "no speech synthesizer configured"},
		Publisher:   status.NopPublisher{},
		Logger:      zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewSession creates a session controller wired to the container's
// providers. Provider capabilities are detected here, once per session.
func (c *Container) NewSession(opts ...session.Option) *session.Controller {
	base := []session.Option{
		session.WithRecognizer(c.Recognizer),
		session.WithSynthesizer(c.Synthesizer),
		session.WithPublisher(c.Publisher),
		session.WithLogger(c.Logger),
	}
	return session.New(c.API, append(base, opts...)...)
}
