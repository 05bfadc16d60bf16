package language

import (
	"sort"
	"strings"
)

// Option is one selectable language for API and CLI listings.
type Option struct {
	Code   string `json:"code"`
	Label  string `json:"label"`
	Native string `json:"native,omitempty"`
}

type label struct {
	english string
	native  string
}

var labels = map[string]label{
	"ar": {english: "Arabic", native: "العربية"},
	"de": {english: "German", native: "Deutsch"},
	"en": {english: "English", native: "English"},
	"es": {english: "Spanish", native: "Español"},
	"fr": {english: "French", native: "Français"},
	"id": {english: "Indonesian", native: "Bahasa Indonesia"},
	"it": {english: "Italian", native: "Italiano"},
	"ja": {english: "Japanese", native: "日本語"},
	"ko": {english: "Korean", native: "한국어"},
	"nl": {english: "Dutch", native: "Nederlands"},
	"pl": {english: "Polish", native: "Polski"},
	"pt": {english: "Portuguese", native: "Português"},
	"ru": {english: "Russian", native: "Русский"},
	"th": {english: "Thai", native: "ไทย"},
	"tr": {english: "Turkish", native: "Türkçe"},
	"uk": {english: "Ukrainian", native: "Українська"},
	"vi": {english: "Vietnamese", native: "Tiếng Việt"},
	"zh": {english: "Chinese", native: "中文"},
}

// SupportedCodes lists known target language codes in sorted order.
func SupportedCodes() []string {
	codes := make([]string, 0, len(labels))
	for code := range labels {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// IsSupported reports whether the code has a known label entry.
func IsSupported(code string) bool {
	_, ok := labels[NormalizeCode(code)]
	return ok
}

// TargetOptions lists selectable target languages.
func TargetOptions() []Option {
	codes := SupportedCodes()
	options := make([]Option, 0, len(codes))
	for _, code := range codes {
		entry := labels[code]
		options = append(options, Option{
			Code:   code,
			Label:  entry.english,
			Native: entry.native,
		})
	}
	return options
}

// SourceOptions lists selectable source languages, "auto" first.
func SourceOptions() []Option {
	options := make([]Option, 0, len(labels)+1)
	options = append(options, Option{Code: Auto, Label: "Detect automatically"})
	options = append(options, TargetOptions()...)
	return options
}

// Label returns the English label for a code, falling back to the
// uppercased code for unknown entries.
func Label(code string) string {
	normalized := NormalizeCode(code)
	if entry, ok := labels[normalized]; ok {
		return entry.english
	}
	fallback := strings.TrimSpace(code)
	if fallback == "" {
		return ""
	}
	return strings.ToUpper(fallback)
}
