package translation

import (
	"context"

	"unitranslate/packages/backend/language"
)

// Translation represents one translated text.
type Translation struct {
	// SourceText is the original text that was translated.
	SourceText string `json:"sourceText"`
	// TranslatedText is the translated result.
	TranslatedText string `json:"translatedText"`
	// SourceLang is the source language. When the request asked for
	// language.Auto it carries the language the engine detected.
	SourceLang string `json:"sourceLang"`
	// TargetLang is the target language.
	TargetLang string `json:"targetLang"`
}

// Detection is the outcome of language identification.
type Detection struct {
	// Language is the detected language code.
	Language string `json:"language"`
	// Confidence is the detection confidence (0.0 - 1.0). Only meaningful
	// when Scored is true; some engines cannot score their guesses.
	Confidence float64 `json:"confidence"`
	Scored     bool    `json:"scored"`
}

// HealthStatus represents the health of a component.
type HealthStatus struct {
	Healthy bool   `json:"healthy"`
	Message string `json:"message,omitempty"`
}

// Translator is the engine behind the Translation API. Translating and
// detecting are delegated to it; it performs neither itself in any
// production implementation.
type Translator interface {
	// Translate converts text to the target language. sourceLang may be
	// language.Auto, in which case the engine picks the source language and
	// reports it in Translation.SourceLang.
	Translate(ctx context.Context, text string, sourceLang, targetLang string) (Translation, error)

	// Detect identifies the language of text.
	Detect(ctx context.Context, text string) (Detection, error)

	// Languages returns the catalog of languages the engine accepts.
	Languages() language.Catalog

	// Health returns the current health status of the translator.
	Health() HealthStatus
}
