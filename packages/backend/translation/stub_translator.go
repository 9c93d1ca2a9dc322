package translation

import (
	"context"
	"time"

	"unitranslate/packages/backend/language"
)

// StubTranslatorConfig configures the stub translator behavior.
type StubTranslatorConfig struct {
	// ProcessingDelay simulates translation processing time.
	ProcessingDelay time.Duration
	// SourceLanguage is the language of the dictionary keys.
	SourceLanguage string
	// Dictionary maps source text to translated text.
	// Unknown text is returned as "[LANG] " prefix + original text.
	Dictionary map[string]map[string]string // [targetLang][sourceText]translatedText
	// DetectionConfidence is reported for text found in the dictionary.
	// Text that is not found is attributed to SourceLanguage unscored.
	DetectionConfidence float64
	// Catalog is the language catalog the stub accepts. Nil selects the
	// fallback catalog.
	Catalog language.Catalog
	// Err, when set, is returned by every call.
	Err error
}

// DefaultStubTranslatorConfig returns sensible defaults for testing.
func DefaultStubTranslatorConfig() *StubTranslatorConfig {
	return &StubTranslatorConfig{
		ProcessingDelay: 10 * time.Millisecond,
		SourceLanguage:  "en",
		Dictionary: map[string]map[string]string{
			"es": {
				"hello":                 "hola",
				"Hello world.":          "Hola mundo.",
				"Good morning.":         "Buenos días.",
				"Thank you.":            "Gracias.",
				"Where is the station?": "¿Dónde está la estación?",
			},
			"fr": {
				"hello":                 "bonjour",
				"Hello world.":          "Bonjour le monde.",
				"Good morning.":         "Bonjour.",
				"Thank you.":            "Merci.",
				"Where is the station?": "Où est la gare ?",
			},
			"de": {
				"hello":                 "hallo",
				"Hello world.":          "Hallo Welt.",
				"Good morning.":         "Guten Morgen.",
				"Thank you.":            "Danke.",
				"Where is the station?": "Wo ist der Bahnhof?",
			},
		},
		DetectionConfidence: 0.95,
	}
}

// StubTranslator is a deterministic Translator used by tests and by the API
// server when no engine is configured.
type StubTranslator struct {
	config  *StubTranslatorConfig
	catalog language.Catalog
}

// NewStubTranslator creates a new stub translator with the given config.
func NewStubTranslator(config *StubTranslatorConfig) *StubTranslator {
	if config == nil {
		config = DefaultStubTranslatorConfig()
	}
	catalog := config.Catalog
	if catalog == nil {
		catalog = language.Fallback()
	}
	return &StubTranslator{config: config, catalog: catalog}
}

// Translate converts a single text.
func (s *StubTranslator) Translate(ctx context.Context, text string, sourceLang, targetLang string) (Translation, error) {
	if err := s.wait(ctx); err != nil {
		return Translation{}, err
	}

	if sourceLang == language.Auto || sourceLang == "" {
		sourceLang = s.detect(text).Language
	}

	return Translation{
		SourceText:     text,
		TranslatedText: s.lookupTranslation(text, sourceLang, targetLang),
		SourceLang:     sourceLang,
		TargetLang:     targetLang,
	}, nil
}

// Detect attributes text to the language whose dictionary contains it.
func (s *StubTranslator) Detect(ctx context.Context, text string) (Detection, error) {
	if err := s.wait(ctx); err != nil {
		return Detection{}, err
	}
	return s.detect(text), nil
}

func (s *StubTranslator) detect(text string) Detection {
	for targetLang, dict := range s.config.Dictionary {
		if _, ok := dict[text]; ok {
			return Detection{Language: s.config.SourceLanguage, Confidence: s.config.DetectionConfidence, Scored: true}
		}
		for _, translated := range dict {
			if translated == text {
				return Detection{Language: targetLang, Confidence: s.config.DetectionConfidence, Scored: true}
			}
		}
	}
	return Detection{Language: s.config.SourceLanguage}
}

func (s *StubTranslator) wait(ctx context.Context) error {
	if s.config.ProcessingDelay > 0 {
		select {
		case <-time.After(s.config.ProcessingDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return s.config.Err
}

// lookupTranslation finds a translation in the dictionary or generates a default.
func (s *StubTranslator) lookupTranslation(text, sourceLang, targetLang string) string {
	if sourceLang == targetLang {
		return text
	}
	if sourceLang == s.config.SourceLanguage {
		if langDict, ok := s.config.Dictionary[targetLang]; ok {
			if translated, ok := langDict[text]; ok {
				return translated
			}
		}
	}
	if targetLang == s.config.SourceLanguage {
		for original, translated := range s.config.Dictionary[sourceLang] {
			if translated == text {
				return original
			}
		}
	}
	// Default: prefix with language code
	return "[" + targetLang + "] " + text
}

// Languages returns the catalog the stub accepts.
func (s *StubTranslator) Languages() language.Catalog {
	return s.catalog
}

// Health returns the health status of the stub translator.
func (s *StubTranslator) Health() HealthStatus {
	return HealthStatus{
		Healthy: true,
		Message: "stub translator ready",
	}
}
