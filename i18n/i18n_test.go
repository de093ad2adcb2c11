package i18n

import (
	"slices"
	"testing"
)

func clearLocaleEnv(t *testing.T) {
	t.Helper()
	t.Setenv("LANGUAGE", "")
	t.Setenv("LC_ALL", "")
	t.Setenv("LC_MESSAGES", "")
	t.Setenv("LANG", "")
}

func resetCatalog(t *testing.T) {
	t.Helper()
	oldPo, oldActive := po, active
	t.Cleanup(func() { po, active = oldPo, oldActive })
}

func TestDetectLanguage(t *testing.T) {
	t.Run("LANGUAGE has highest priority", func(t *testing.T) {
		clearLocaleEnv(t)
		t.Setenv("LANGUAGE", "ru_RU.UTF-8:en_US")
		t.Setenv("LC_ALL", "de_DE.UTF-8")

		if got := detectLanguage(); got != "ru_RU" {
			t.Fatalf("detectLanguage() = %q, want %q", got, "ru_RU")
		}
	})

	t.Run("C and POSIX are skipped", func(t *testing.T) {
		clearLocaleEnv(t)
		t.Setenv("LANGUAGE", "C")
		t.Setenv("LC_ALL", "POSIX")
		t.Setenv("LC_MESSAGES", "fr_FR.UTF-8")

		if got := detectLanguage(); got != "fr_FR" {
			t.Fatalf("detectLanguage() = %q, want %q", got, "fr_FR")
		}
	})

	t.Run("falls back to en", func(t *testing.T) {
		clearLocaleEnv(t)
		if got := detectLanguage(); got != "en" {
			t.Fatalf("detectLanguage() = %q, want %q", got, "en")
		}
	})
}

func TestAvailable(t *testing.T) {
	if got := Available(); !slices.Contains(got, "ru") {
		t.Fatalf("Available() = %v, want ru among them", got)
	}
}

func TestInitRegionalFallback(t *testing.T) {
	resetCatalog(t)

	Init("ru_UA")
	if Lang() != "ru" {
		t.Fatalf("Lang() = %q, want ru", Lang())
	}
	if got := T("Show version information"); got != "Показать информацию о версии" {
		t.Fatalf("T() = %q", got)
	}
	if got := N("%d key", "%d keys", 5); got != "%d ключей" {
		t.Fatalf("N(5) = %q", got)
	}
}

func TestInitUnknownLanguagePassesThrough(t *testing.T) {
	resetCatalog(t)

	Init("xx")
	if got := T("Show version information"); got != "Show version information" {
		t.Fatalf("T() = %q", got)
	}
	if got := N("%d key", "%d keys", 2); got != "%d keys" {
		t.Fatalf("N(2) = %q", got)
	}
}

func TestTAndNFallbackWhenUninitialized(t *testing.T) {
	resetCatalog(t)
	po = nil

	if got := T("Hello"); got != "Hello" {
		t.Fatalf("T fallback = %q, want %q", got, "Hello")
	}
	if got := N("file", "files", 1); got != "file" {
		t.Fatalf("N singular fallback = %q, want %q", got, "file")
	}
	if got := N("file", "files", 2); got != "files" {
		t.Fatalf("N plural fallback = %q, want %q", got, "files")
	}
}
