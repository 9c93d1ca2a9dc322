package translation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"unitranslate/packages/backend/language"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultOpenAIModel is used when OpenAIConfig.Model is empty.
const DefaultOpenAIModel = openai.GPT4oMini

const (
	translatePrompt = `You are a translation service. Translate the user's text into %s.%s
Reply with a JSON object {"translation": string, "source_language": string}
where source_language is the ISO 639-1 code of the original text. Do not add commentary.`

	detectPrompt = `You are a language identification service. Identify the language of the user's text.
Reply with a JSON object {"language": string, "confidence": number} where language is the
ISO 639-1 code and confidence is between 0 and 1.`
)

var errEmptyCompletion = errors.New("openai returned no choices")

// ChatCompleter is the subset of the go-openai client used by OpenAITranslator.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAIConfig configures OpenAITranslator.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	// Catalog restricts accepted languages. Nil selects the fallback catalog.
	Catalog language.Catalog
}

// OpenAITranslator delegates translation and detection to an OpenAI chat model.
type OpenAITranslator struct {
	client  ChatCompleter
	model   string
	catalog language.Catalog
}

// NewOpenAITranslator builds a translator backed by the OpenAI API.
func NewOpenAITranslator(cfg OpenAIConfig) (*OpenAITranslator, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai api key is required")
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return NewOpenAITranslatorWithClient(openai.NewClientWithConfig(clientCfg), cfg.Model, cfg.Catalog), nil
}

// NewOpenAITranslatorWithClient builds a translator around an existing client.
func NewOpenAITranslatorWithClient(client ChatCompleter, model string, catalog language.Catalog) *OpenAITranslator {
	if model == "" {
		model = DefaultOpenAIModel
	}
	if catalog == nil {
		catalog = language.Fallback()
	}
	return &OpenAITranslator{client: client, model: model, catalog: catalog}
}

type translateReply struct {
	Translation    string `json:"translation"`
	SourceLanguage string `json:"source_language"`
}

type detectReply struct {
	Language   string   `json:"language"`
	Confidence *float64 `json:"confidence"`
}

// Translate asks the model for a translation of text.
func (t *OpenAITranslator) Translate(ctx context.Context, text string, sourceLang, targetLang string) (Translation, error) {
	var sourceHint string
	if sourceLang != "" && sourceLang != language.Auto {
		sourceHint = fmt.Sprintf(" The text is written in %s.", t.catalog.DisplayName(sourceLang))
	}

	var reply translateReply
	system := fmt.Sprintf(translatePrompt, t.catalog.DisplayName(targetLang), sourceHint)
	if err := t.complete(ctx, system, text, &reply); err != nil {
		return Translation{}, err
	}

	detected := sourceLang
	if detected == "" || detected == language.Auto {
		detected = t.catalog.Normalize(reply.SourceLanguage)
	}

	return Translation{
		SourceText:     text,
		TranslatedText: reply.Translation,
		SourceLang:     detected,
		TargetLang:     targetLang,
	}, nil
}

// Detect asks the model to identify the language of text.
func (t *OpenAITranslator) Detect(ctx context.Context, text string) (Detection, error) {
	var reply detectReply
	if err := t.complete(ctx, detectPrompt, text, &reply); err != nil {
		return Detection{}, err
	}

	detection := Detection{Language: t.catalog.Normalize(reply.Language)}
	if reply.Confidence != nil {
		detection.Confidence = min(max(*reply.Confidence, 0), 1)
		detection.Scored = true
	}
	return detection, nil
}

func (t *OpenAITranslator) complete(ctx context.Context, system, user string, out any) error {
	resp, err := t.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: t.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0,
	})
	if err != nil {
		return fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return errEmptyCompletion
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), out); err != nil {
		return fmt.Errorf("decode openai reply: %w", err)
	}
	return nil
}

// Languages returns the catalog the translator accepts.
func (t *OpenAITranslator) Languages() language.Catalog {
	return t.catalog
}

// Health reports whether the translator has a client.
func (t *OpenAITranslator) Health() HealthStatus {
	if t.client == nil {
		return HealthStatus{Healthy: false, Message: "openai client not configured"}
	}
	return HealthStatus{Healthy: true, Message: "openai translator ready (" + t.model + ")"}
}
