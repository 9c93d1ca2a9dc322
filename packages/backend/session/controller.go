package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"unitranslate/packages/backend/asr"
	"unitranslate/packages/backend/language"
	"unitranslate/packages/backend/status"
	"unitranslate/packages/backend/translation"
	"unitranslate/packages/backend/tts"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultSuccessWindow is how long ShowSuccess stays set after a translation.
const DefaultSuccessWindow = 2 * time.Second

// Option configures a Controller.
type Option func(*Controller)

// WithRecognizer sets the Speech-to-Text provider.
func WithRecognizer(r asr.Recognizer) Option {
	return func(c *Controller) { c.recognizer = r }
}

// WithSynthesizer sets the Text-to-Speech provider.
func WithSynthesizer(s tts.Synthesizer) Option {
	return func(c *Controller) { c.synthesizer = s }
}

// WithLogger sets the logger.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithPublisher sets where session status events are sent.
func WithPublisher(p status.Publisher) Option {
	return func(c *Controller) { c.publisher = p }
}

// WithSuccessWindow overrides DefaultSuccessWindow.
func WithSuccessWindow(d time.Duration) Option {
	return func(c *Controller) { c.successWindow = d }
}

// WithSessionID sets the session ID instead of generating one.
func WithSessionID(id string) Option {
	return func(c *Controller) { c.id = id }
}

// WithStateListener registers fn to receive a snapshot after every state
// change. fn is called without internal locks held, possibly from provider
// or timer goroutines.
func WithStateListener(fn func(State)) Option {
	return func(c *Controller) { c.onChange = fn }
}

// WithCaptureEndListener registers fn to receive a snapshot once a speech
// capture has finished, after any transcript was stored, or when a capture
// fails to start. Stopping a capture early does not end it; the listener
// fires when the recognizer has delivered its last event.
func WithCaptureEndListener(fn func(State)) Option {
	return func(c *Controller) { c.onCaptureEnd = fn }
}

// Controller owns the state of one translation session. Its methods are
// safe for concurrent use; no lock is held across API or provider calls.
type Controller struct {
	id            string
	api           translation.API
	recognizer    asr.Recognizer
	synthesizer   tts.Synthesizer
	publisher     status.Publisher
	logger        *zap.SugaredLogger
	successWindow time.Duration
	onChange      func(State)
	onCaptureEnd  func(State)
	caps          Capabilities

	mu            sync.Mutex
	state         State
	successTimer  *time.Timer
	successGen    uint64
	capture       asr.Capture
	captureCancel context.CancelFunc
	closed        bool

	captures sync.WaitGroup
}

// New creates a controller that translates through api. Speech providers
// default to their unavailable variants. api must not be nil.
func New(api translation.API, opts ...Option) *Controller {
	if api == nil {
		panic("session: nil translation API")
	}
	c := &Controller{
		api:           api,
		recognizer:    asr.Unavailable{},
		synthesizer:   tts.Unavailable{},
		publisher:     status.NopPublisher{},
		successWindow: DefaultSuccessWindow,
		state:         initialState(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.id == "" {
		c.id = uuid.NewString()
	}
	if c.logger == nil {
		c.logger = zap.NewNop().Sugar()
	}
	c.logger = c.logger.With("sessionId", c.id)
	c.caps = Capabilities{
		SpeechRecognition: c.recognizer.Available(),
		SpeechSynthesis:   c.synthesizer.Available(),
	}
	return c
}

// ID returns the session ID.
func (c *Controller) ID() string { return c.id }

// Capabilities reports which speech providers are usable.
func (c *Controller) Capabilities() Capabilities { return c.caps }

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// LoadLanguages fetches the catalog from the Translation API. Failures and
// empty catalogs fall back to the built-in catalog. Selections the catalog
// does not contain are reset.
func (c *Controller) LoadLanguages(ctx context.Context) {
	catalog, err := c.api.Languages(ctx)
	fallback := err != nil || len(catalog) == 0
	if fallback {
		c.logger.Warnw("language catalog unavailable, using fallback", "error", err)
		catalog = language.Fallback()
	}

	c.mu.Lock()
	c.state.Languages = catalog.Clone()
	if !catalog.ValidSource(c.state.SourceLanguage) {
		c.state.SourceLanguage = language.Auto
	}
	if !catalog.Has(c.state.TargetLanguage) || c.state.TargetLanguage == language.Auto {
		c.state.TargetLanguage = defaultTarget(catalog)
	}
	c.mu.Unlock()
	c.notify()

	if fallback {
		c.publish(ctx, status.StageLanguages, status.StateFallback, "")
		return
	}
	c.publish(ctx, status.StageLanguages, status.StateCompleted, fmt.Sprintf("%d languages", len(catalog)))
}

func defaultTarget(catalog language.Catalog) string {
	if catalog.Has(language.DefaultTarget) {
		return language.DefaultTarget
	}
	for _, code := range catalog.Codes() {
		if code != language.Auto {
			return code
		}
	}
	return language.DefaultTarget
}

// Translate sends text to the Translation API. Empty or whitespace-only
// text, and calls made while a translation is in flight, are ignored.
// Failures are not returned: TranslatedText is set to FailureMessage.
func (c *Controller) Translate(ctx context.Context, text, source, target string) {
	if strings.TrimSpace(text) == "" {
		return
	}

	c.mu.Lock()
	if c.state.IsTranslating || c.closed {
		c.mu.Unlock()
		return
	}
	c.state.IsTranslating = true
	c.mu.Unlock()
	c.notify()

	defer func() {
		c.mu.Lock()
		c.state.IsTranslating = false
		c.mu.Unlock()
		c.notify()
	}()

	detail := source + "->" + target
	c.publish(ctx, status.StageTranslation, status.StateStarted, detail)

	resp, err := c.api.Translate(ctx, translation.Request{
		Text:           text,
		SourceLanguage: source,
		TargetLanguage: target,
	})
	if err != nil {
		c.logger.Errorw("translation failed", "source", source, "target", target, "error", err)
		c.mu.Lock()
		c.state.TranslatedText = FailureMessage
		c.mu.Unlock()
		c.publish(ctx, status.StageTranslation, status.StateFailed, err.Error())
		return
	}

	c.mu.Lock()
	c.state.TranslatedText = resp.TranslatedText
	c.state.DetectedLanguage = resp.DetectedLanguage
	c.state.Confidence = resp.Confidence
	c.state.TranslationCount++
	c.showSuccessLocked()
	count := c.state.TranslationCount
	c.mu.Unlock()

	c.logger.Infow("translation completed",
		"source", source,
		"target", target,
		"detected", resp.DetectedLanguage,
		"confidence", resp.Confidence,
		"count", count,
	)
	c.publish(ctx, status.StageTranslation, status.StateCompleted, detail)
}

// TranslateInput translates the current input with the current selections.
func (c *Controller) TranslateInput(ctx context.Context) {
	c.mu.Lock()
	text, source, target := c.state.InputText, c.state.SourceLanguage, c.state.TargetLanguage
	c.mu.Unlock()
	c.Translate(ctx, text, source, target)
}

// showSuccessLocked sets ShowSuccess and (re)starts the window that clears it.
func (c *Controller) showSuccessLocked() {
	c.state.ShowSuccess = true
	if c.successTimer != nil {
		c.successTimer.Stop()
	}
	c.successGen++
	gen := c.successGen
	c.successTimer = time.AfterFunc(c.successWindow, func() {
		c.mu.Lock()
		if c.successGen != gen {
			c.mu.Unlock()
			return
		}
		c.state.ShowSuccess = false
		c.successTimer = nil
		c.mu.Unlock()
		c.notify()
	})
}

func (c *Controller) cancelSuccessLocked() {
	c.state.ShowSuccess = false
	if c.successTimer != nil {
		c.successTimer.Stop()
		c.successTimer = nil
	}
	c.successGen++
}

// StartListening starts a speech capture in the locale of the source
// language, or language.DefaultLocale when it is auto. It does nothing when
// recognition is unavailable or a capture is already active.
func (c *Controller) StartListening(ctx context.Context) {
	if !c.caps.SpeechRecognition {
		return
	}

	c.mu.Lock()
	if c.state.IsListening || c.capture != nil || c.closed {
		c.mu.Unlock()
		return
	}
	c.state.IsListening = true
	locale := language.CaptureLocale(c.state.SourceLanguage)
	c.mu.Unlock()
	c.notify()

	captureCtx, cancel := context.WithCancel(ctx)
	capture, err := c.recognizer.Start(captureCtx, locale)
	if err != nil {
		cancel()
		c.logger.Warnw("speech capture failed to start", "locale", locale, "error", err)
		c.mu.Lock()
		c.state.IsListening = false
		c.mu.Unlock()
		c.notify()
		c.publish(ctx, status.StageListening, status.StateFailed, err.Error())
		c.notifyCaptureEnd()
		return
	}

	c.mu.Lock()
	if c.closed {
		c.state.IsListening = false
		c.mu.Unlock()
		cancel()
		return
	}
	c.capture = capture
	c.captureCancel = cancel
	c.captures.Add(1)
	c.mu.Unlock()

	c.publish(ctx, status.StageListening, status.StateStarted, locale)
	go c.consume(ctx, capture, cancel)
}

func (c *Controller) consume(ctx context.Context, capture asr.Capture, cancel context.CancelFunc) {
	defer c.captures.Done()
	defer cancel()

	for event := range capture.Events() {
		c.mu.Lock()
		c.state.IsListening = false
		if event.Type == asr.EventResult {
			c.state.InputText = event.Transcript
		}
		c.mu.Unlock()

		switch event.Type {
		case asr.EventResult:
			c.logger.Debugw("speech recognized", "locale", event.Locale, "length", len(event.Transcript))
			c.publish(ctx, status.StageListening, status.StateCompleted, event.Locale)
		case asr.EventError:
			c.logger.Warnw("speech capture error", "locale", event.Locale, "error", event.Err)
			c.publish(ctx, status.StageListening, status.StateFailed, fmt.Sprint(event.Err))
		case asr.EventEnd:
			c.logger.Debugw("speech capture ended", "locale", event.Locale)
		}
		c.notify()
	}

	c.mu.Lock()
	if c.capture == capture {
		c.capture = nil
		c.captureCancel = nil
	}
	c.state.IsListening = false
	c.mu.Unlock()
	c.notifyCaptureEnd()
}

// StopListening asks the recognizer to stop the active capture. Speech
// already captured is still delivered to InputText.
func (c *Controller) StopListening() {
	c.mu.Lock()
	capture := c.capture
	wasListening := c.state.IsListening
	c.state.IsListening = false
	c.mu.Unlock()

	if capture != nil {
		if err := capture.Stop(); err != nil {
			c.logger.Warnw("speech capture stop failed", "error", err)
		}
	}
	if wasListening {
		c.notify()
		c.publish(context.Background(), status.StageListening, status.StateStopped, "")
	}
}

// Speak plays text in the voice of lang. Empty text and an unavailable
// synthesizer make it a no-op.
func (c *Controller) Speak(ctx context.Context, text, lang string) {
	if text == "" || !c.caps.SpeechSynthesis {
		return
	}

	locale := language.LocaleFor(lang)
	err := c.synthesizer.Speak(ctx, tts.Utterance{
		Text:   text,
		Locale: locale,
		Rate:   tts.DefaultRate,
		Pitch:  tts.DefaultPitch,
	})
	if err != nil {
		c.logger.Warnw("speech playback failed", "locale", locale, "error", err)
		c.publish(ctx, status.StageSpeech, status.StateFailed, err.Error())
		return
	}
	c.publish(ctx, status.StageSpeech, status.StateStarted, locale)
}

// SpeakTranslation speaks the current translation in the target language.
func (c *Controller) SpeakTranslation(ctx context.Context) {
	c.mu.Lock()
	text, target := c.state.TranslatedText, c.state.TargetLanguage
	c.mu.Unlock()
	c.Speak(ctx, text, target)
}

// SwapLanguages exchanges the languages and the texts. It does nothing while
// the source language is auto.
func (c *Controller) SwapLanguages() {
	c.mu.Lock()
	if c.state.SourceLanguage == language.Auto {
		c.mu.Unlock()
		return
	}
	c.state.SourceLanguage, c.state.TargetLanguage = c.state.TargetLanguage, c.state.SourceLanguage
	c.state.InputText, c.state.TranslatedText = c.state.TranslatedText, c.state.InputText
	c.mu.Unlock()
	c.notify()
}

// ClearAll resets the texts, the detection result and the success flag.
// Language selections and the translation count are kept.
func (c *Controller) ClearAll() {
	c.mu.Lock()
	c.state.InputText = ""
	c.state.TranslatedText = ""
	c.state.DetectedLanguage = ""
	c.state.Confidence = 0
	c.cancelSuccessLocked()
	c.mu.Unlock()
	c.notify()
}

// SetInputText replaces the input text.
func (c *Controller) SetInputText(text string) {
	c.mu.Lock()
	c.state.InputText = text
	c.mu.Unlock()
	c.notify()
}

// SetSourceLanguage selects the source language: auto or a catalog code.
func (c *Controller) SetSourceLanguage(code string) error {
	c.mu.Lock()
	if !c.state.Languages.ValidSource(code) {
		c.mu.Unlock()
		return fmt.Errorf("%w: %q", language.ErrUnknownLanguage, code)
	}
	c.state.SourceLanguage = code
	c.mu.Unlock()
	c.notify()
	return nil
}

// SetTargetLanguage selects the target language, which must be in the catalog.
func (c *Controller) SetTargetLanguage(code string) error {
	c.mu.Lock()
	if code == language.Auto || !c.state.Languages.Has(code) {
		c.mu.Unlock()
		return fmt.Errorf("%w: %q", language.ErrUnknownLanguage, code)
	}
	c.state.TargetLanguage = code
	c.mu.Unlock()
	c.notify()
	return nil
}

// Close stops the success timer and aborts any active capture. The
// controller ignores translate and listen requests afterwards.
func (c *Controller) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	if c.successTimer != nil {
		c.successTimer.Stop()
		c.successTimer = nil
	}
	c.successGen++
	cancel := c.captureCancel
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	c.captures.Wait()

	c.publish(context.Background(), status.StageSession, status.StateStopped, "")
	return nil
}

func (c *Controller) notify() {
	if c.onChange == nil {
		return
	}
	c.onChange(c.Snapshot())
}

func (c *Controller) notifyCaptureEnd() {
	if c.onCaptureEnd == nil {
		return
	}
	c.onCaptureEnd(c.Snapshot())
}

func (c *Controller) publish(ctx context.Context, stage status.Stage, state status.State, detail string) {
	err := c.publisher.Publish(context.WithoutCancel(ctx), status.SessionStatusEvent{
		SessionID: c.id,
		Stage:     stage,
		State:     state,
		Detail:    detail,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		c.logger.Debugw("status publish failed", "stage", stage, "state", state, "error", err)
	}
}
