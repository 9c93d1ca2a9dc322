// Package language holds the language catalog and the code helpers shared by
// the translation client, the API server and the speech providers.
package language

import (
	"errors"
	"maps"
	"slices"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

const (
	// Auto asks the Translation API to detect the source language.
	Auto = "auto"
	// DefaultTarget is the initial target language of a session.
	DefaultTarget = "en"
)

// ErrUnknownLanguage is returned when a code is not part of the catalog.
var ErrUnknownLanguage = errors.New("unknown language")

// Catalog maps language codes to display names.
type Catalog map[string]string

// Fallback returns a copy of the built-in catalog.
func Fallback() Catalog {
	return Catalog(maps.Clone(fallbackCatalog))
}

// Has reports whether code is a key of the catalog.
func (c Catalog) Has(code string) bool {
	_, ok := c[code]
	return ok
}

// Name returns the display name for code, or the empty string.
func (c Catalog) Name(code string) string {
	return c[code]
}

// Codes returns the catalog keys in lexical order.
func (c Catalog) Codes() []string {
	return slices.Sorted(maps.Keys(c))
}

// Clone returns an independent copy of the catalog.
func (c Catalog) Clone() Catalog {
	if c == nil {
		return nil
	}
	return maps.Clone(c)
}

// ValidSource reports whether code may be used as a source language.
func (c Catalog) ValidSource(code string) bool {
	return code == Auto || c.Has(code)
}

// Normalize maps a BCP 47 tag reported by an engine onto a catalog key.
// "zh-CN" becomes "zh-cn", "pt-BR" becomes "pt". The input is returned
// lowercased when nothing in the catalog matches.
func (c Catalog) Normalize(tag string) string {
	code := strings.ToLower(strings.TrimSpace(tag))
	if code == "" || c.Has(code) {
		return code
	}
	parsed, err := language.Parse(code)
	if err != nil {
		return code
	}
	base, _ := parsed.Base()
	if c.Has(base.String()) {
		return base.String()
	}
	return code
}

// DisplayName returns the catalog name for code, falling back to the English
// name known to x/text and finally to the code itself.
func (c Catalog) DisplayName(code string) string {
	if name := c.Name(code); name != "" {
		return name
	}
	if tag, err := language.Parse(code); err == nil {
		if name := display.English.Tags().Name(tag); name != "" {
			return strings.ToLower(name)
		}
	}
	return code
}
