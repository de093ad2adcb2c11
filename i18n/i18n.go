// Package i18n translates tabkit's own user-facing messages.
//
// It wraps the gotext library behind T() and N(). Catalogs are embedded in
// the binary from locales/{lang}/LC_MESSAGES/tabkit.po and selected once by
// Init().
package i18n

import (
	"embed"
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/leonelquinteros/gotext"
	"github.com/minios-linux/tabkit/langmeta"
)

//go:embed all:locales
var locales embed.FS

// domain is the gettext domain name for tabkit.
const domain = "tabkit"

var (
	po     *gotext.Locale
	active string
)

// Init selects the catalog for lang. If lang is empty it is taken from
// LANGUAGE, LC_ALL, LC_MESSAGES, LANG (GNU gettext order). A regional
// variant without its own catalog falls back to the base language
// (ru_UA uses ru).
func Init(lang string) {
	if lang == "" {
		lang = detectLanguage()
	}
	lang = catalogFor(lang)
	active = lang

	po = gotext.NewLocaleFSWithPath(lang, locales, "locales")
	po.AddDomain(domain)
	po.SetDomain(domain)
}

// Lang returns the catalog language chosen by Init, or "" before Init.
func Lang() string { return active }

// Available returns the languages with an embedded catalog.
func Available() []string {
	entries, err := fs.ReadDir(locales, "locales")
	if err != nil {
		return nil
	}
	var langs []string
	for _, e := range entries {
		if e.IsDir() && hasCatalog(e.Name()) {
			langs = append(langs, e.Name())
		}
	}
	return langs
}

// T translates a message. Untranslated messages are returned unchanged.
func T(msgid string) string {
	if po == nil {
		return msgid
	}
	return po.Get(msgid)
}

// N translates a message with plural forms.
func N(singular, plural string, n int) string {
	if po == nil {
		if n == 1 {
			return singular
		}
		return plural
	}
	return po.GetN(singular, plural, n)
}

func catalogFor(lang string) string {
	if hasCatalog(lang) {
		return lang
	}
	if base := langmeta.Base(lang); hasCatalog(base) {
		return base
	}
	return lang
}

func hasCatalog(lang string) bool {
	_, err := fs.Stat(locales, path.Join("locales", lang, "LC_MESSAGES", domain+".po"))
	return err == nil
}

func detectLanguage() string {
	for _, env := range []string{"LANGUAGE", "LC_ALL", "LC_MESSAGES", "LANG"} {
		val := os.Getenv(env)
		if val == "" {
			continue
		}
		if env == "LANGUAGE" {
			val, _, _ = strings.Cut(val, ":")
		}
		// ru_RU.UTF-8 -> ru_RU
		val, _, _ = strings.Cut(val, ".")
		if val == "C" || val == "POSIX" || val == "" {
			continue
		}
		return val
	}
	return "en"
}
