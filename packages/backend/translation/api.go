package translation

import (
	"context"
	"errors"
	"fmt"

	"unitranslate/packages/backend/language"
)

// Request is the body of POST /translate.
type Request struct {
	Text           string `json:"text"`
	TargetLanguage string `json:"target_language"`
	SourceLanguage string `json:"source_language"`
}

// Response is the body returned by POST /translate.
type Response struct {
	TranslatedText   string  `json:"translated_text"`
	DetectedLanguage string  `json:"detected_language"`
	Confidence       float64 `json:"confidence"`
}

// DetectResponse is the body returned by GET /detect.
type DetectResponse struct {
	Language     string  `json:"language"`
	Confidence   float64 `json:"confidence"`
	LanguageName string  `json:"language_name"`
}

var (
	// ErrEmptyText is returned for requests without text.
	ErrEmptyText = errors.New("text is required")
	// ErrUnknownLanguage is returned when a request names a language the
	// catalog does not contain.
	ErrUnknownLanguage = language.ErrUnknownLanguage
)

// API is the contract of the Translation API. The HTTP Client speaks it to a
// remote server; Service implements it in process on top of a Translator.
type API interface {
	Languages(ctx context.Context) (language.Catalog, error)
	Translate(ctx context.Context, req Request) (Response, error)
	Detect(ctx context.Context, text string) (DetectResponse, error)
}

// APIError carries a non-2xx reply of the Translation API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("translation api: status %d", e.StatusCode)
	}
	return fmt.Sprintf("translation api: status %d: %s", e.StatusCode, e.Message)
}
