// Package langmeta provides locale helpers (validation and display names)
// used by the CLI. Locale codes stay opaque everywhere else: resource file
// names keep the exact spelling found on disk or given on the command line.
package langmeta

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Canonicalize turns pt_br, PT-br and similar spellings into pt-BR.
func Canonicalize(lang string) string {
	normalized := strings.ReplaceAll(strings.TrimSpace(lang), "_", "-")
	if normalized == "" {
		return ""
	}
	parts := strings.Split(normalized, "-")
	parts[0] = strings.ToLower(parts[0])
	if len(parts) >= 2 {
		parts[1] = strings.ToUpper(parts[1])
	}
	return strings.Join(parts, "-")
}

// Tag parses lang as a BCP 47 tag, accepting underscore separators.
func Tag(lang string) (language.Tag, error) {
	tag, err := language.Parse(Canonicalize(lang))
	if err != nil {
		return language.Und, fmt.Errorf("locale %q: %w", lang, err)
	}
	return tag, nil
}

// Valid reports whether lang is a well-formed, known language tag.
func Valid(lang string) bool {
	_, err := Tag(lang)
	return err == nil
}

// Name returns the native display name of lang, e.g. "français" for fr.
// Unknown locales are returned unchanged.
func Name(lang string) string {
	tag, err := Tag(lang)
	if err != nil {
		return lang
	}
	if name := display.Self.Name(tag); name != "" {
		return name
	}
	return lang
}

// Base returns the language part of lang ("pt" for pt_BR).
func Base(lang string) string {
	tag, err := Tag(lang)
	if err != nil {
		return lang
	}
	base, _ := tag.Base()
	return base.String()
}
