// Package translator defines the translation service capability the
// component is built on and its DeepL implementation.
package translator

import "context"

// SourceLang is a source language code, or AutoDetect.
type SourceLang string

// AutoDetect requests server side detection of the source language.
const AutoDetect SourceLang = "auto"

// TextResult is a single translated text.
type TextResult struct {
	// DetectedSourceLang is the language the service detected or used.
	DetectedSourceLang string
	Text               string
}

// Translator translates text into a target language.
type Translator interface {
	TranslateText(ctx context.Context, text string, source SourceLang, target string) (*TextResult, error)
}

// Factory builds a Translator bound to an API key.
type Factory func(apiKey string) (Translator, error)
