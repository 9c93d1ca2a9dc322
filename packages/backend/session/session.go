// Package session implements the translation session controller: the state
// behind one interactive translator and the operations that drive it.
package session

import (
	"unitranslate/packages/backend/language"
)

// FailureMessage replaces the translated text when a translation fails.
const FailureMessage = "Translation failed. Please try again."

// State is the state of a translation session.
type State struct {
	InputText        string           `json:"inputText"`
	TranslatedText   string           `json:"translatedText"`
	SourceLanguage   string           `json:"sourceLanguage"`
	TargetLanguage   string           `json:"targetLanguage"`
	Languages        language.Catalog `json:"languages"`
	DetectedLanguage string           `json:"detectedLanguage"`
	// Confidence is only meaningful when SourceLanguage is language.Auto.
	Confidence       float64 `json:"confidence"`
	IsListening      bool    `json:"isListening"`
	IsTranslating    bool    `json:"isTranslating"`
	ShowSuccess      bool    `json:"showSuccess"`
	TranslationCount int     `json:"translationCount"`
}

func initialState() State {
	return State{
		SourceLanguage: language.Auto,
		TargetLanguage: language.DefaultTarget,
		Languages:      language.Fallback(),
	}
}

func (s State) clone() State {
	s.Languages = s.Languages.Clone()
	return s
}

// Capabilities reports which speech providers the host supports. It is
// detected once when the controller is created.
type Capabilities struct {
	SpeechRecognition bool `json:"speechRecognition"`
	SpeechSynthesis   bool `json:"speechSynthesis"`
}
