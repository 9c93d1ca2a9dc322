package language

import (
	"strings"

	"golang.org/x/text/language"
)

// DefaultLocale is used for speech capture when the source language is Auto;
// recognizers need an explicit locale hint.
const DefaultLocale = "en-US"

// localeMap holds the region-qualified locale used by the speech providers
// for each bare language code.
var localeMap = map[string]string{
	"en": "en-US",
	"es": "es-ES",
	"fr": "fr-FR",
	"de": "de-DE",
	"it": "it-IT",
	"pt": "pt-BR",
	"ru": "ru-RU",
	"ja": "ja-JP",
	"ko": "ko-KR",
	"zh": "zh-CN",
	"ar": "ar-SA",
	"hi": "hi-IN",
}

// LocaleFor returns the locale tag for a language code. Unmapped codes are
// returned unchanged.
func LocaleFor(code string) string {
	if locale, ok := localeMap[code]; ok {
		return locale
	}
	return code
}

// CaptureLocale returns the locale used to start speech capture for the given
// source language.
func CaptureLocale(source string) string {
	if source == Auto || source == "" {
		return DefaultLocale
	}
	return LocaleFor(source)
}

// BaseOf strips the region from a locale tag: "en-US" becomes "en".
// Tags x/text cannot parse are returned lowercased up to the first separator.
func BaseOf(locale string) string {
	tag, err := language.Parse(locale)
	if err == nil {
		if base, conf := tag.Base(); conf != language.No {
			return base.String()
		}
	}
	code := strings.ToLower(locale)
	if i := strings.IndexAny(code, "-_"); i > 0 {
		code = code[:i]
	}
	return code
}
