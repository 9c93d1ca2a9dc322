package translation

import (
	"context"
	"fmt"
	"strings"

	"unitranslate/packages/backend/language"

	"go.uber.org/zap"
)

const (
	// UnscoredConfidence is reported by Translate and Detect when the engine
	// detected a language without scoring it.
	UnscoredConfidence = 0.5
	// LowConfidenceThreshold triggers a second detection attempt.
	LowConfidenceThreshold = 0.7
	// RetriedConfidence is reported when the second attempt succeeded.
	RetriedConfidence = 0.8
	// ExplicitSourceConfidence is reported when the caller named the source.
	ExplicitSourceConfidence = 0.95

	unknownLanguageName = "Unknown"
)

// Service implements API in process on top of a Translator. It owns the
// auto-detection rules of the Translation API.
type Service struct {
	translator Translator
	logger     *zap.SugaredLogger
}

// NewService wraps translator. A nil logger discards log output.
func NewService(translator Translator, logger *zap.SugaredLogger) *Service {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Service{translator: translator, logger: logger}
}

// Languages returns the engine catalog.
func (s *Service) Languages(context.Context) (language.Catalog, error) {
	return s.translator.Languages().Clone(), nil
}

// Health reports the engine health.
func (s *Service) Health() HealthStatus {
	return s.translator.Health()
}

// Validate checks a request against the engine catalog and fills in the
// default source language.
func (s *Service) Validate(req Request) (Request, error) {
	if strings.TrimSpace(req.Text) == "" {
		return req, ErrEmptyText
	}
	if req.SourceLanguage == "" {
		req.SourceLanguage = language.Auto
	}

	catalog := s.translator.Languages()
	if !catalog.Has(req.TargetLanguage) {
		return req, fmt.Errorf("%w: target_language %q", ErrUnknownLanguage, req.TargetLanguage)
	}
	if !catalog.ValidSource(req.SourceLanguage) {
		return req, fmt.Errorf("%w: source_language %q", ErrUnknownLanguage, req.SourceLanguage)
	}
	return req, nil
}

// Translate validates req and translates it. With an explicit source the
// reported confidence is fixed; with language.Auto the source is detected
// first and a low-confidence guess is double checked by translating into
// English and taking the source language the engine reports.
func (s *Service) Translate(ctx context.Context, req Request) (Response, error) {
	req, err := s.Validate(req)
	if err != nil {
		return Response{}, err
	}

	if req.SourceLanguage != language.Auto {
		result, err := s.translator.Translate(ctx, req.Text, req.SourceLanguage, req.TargetLanguage)
		if err != nil {
			return Response{}, fmt.Errorf("translate: %w", err)
		}
		return Response{
			TranslatedText:   result.TranslatedText,
			DetectedLanguage: req.SourceLanguage,
			Confidence:       ExplicitSourceConfidence,
		}, nil
	}

	detection, err := s.translator.Detect(ctx, req.Text)
	if err != nil {
		return Response{}, fmt.Errorf("detect: %w", err)
	}
	detected := detection.Language
	confidence := detection.Confidence
	if !detection.Scored {
		confidence = UnscoredConfidence
	}

	if confidence < LowConfidenceThreshold {
		probe, err := s.translator.Translate(ctx, req.Text, language.Auto, language.DefaultTarget)
		if err != nil {
			s.logger.Debugw("second detection attempt failed", "error", err)
		} else if probe.SourceLang != "" && probe.SourceLang != language.Auto {
			detected = probe.SourceLang
			confidence = RetriedConfidence
		}
	}

	result, err := s.translator.Translate(ctx, req.Text, detected, req.TargetLanguage)
	if err != nil {
		return Response{}, fmt.Errorf("translate: %w", err)
	}

	return Response{
		TranslatedText:   result.TranslatedText,
		DetectedLanguage: detected,
		Confidence:       confidence,
	}, nil
}

// Detect identifies the language of text and names it from the catalog.
func (s *Service) Detect(ctx context.Context, text string) (DetectResponse, error) {
	if strings.TrimSpace(text) == "" {
		return DetectResponse{}, ErrEmptyText
	}

	detection, err := s.translator.Detect(ctx, text)
	if err != nil {
		return DetectResponse{}, fmt.Errorf("detect: %w", err)
	}

	name := s.translator.Languages().Name(detection.Language)
	if name == "" {
		name = unknownLanguageName
	}
	confidence := detection.Confidence
	if !detection.Scored {
		confidence = UnscoredConfidence
	}
	return DetectResponse{
		Language:     detection.Language,
		Confidence:   confidence,
		LanguageName: name,
	}, nil
}
