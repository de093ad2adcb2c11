package langmeta

import (
	"strings"
	"testing"
)

func TestCanonicalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: "pt_br", want: "pt-BR"},
		{in: " EN-us ", want: "en-US"},
		{in: "ru", want: "ru"},
		{in: "", want: ""},
	}

	for _, tc := range cases {
		got := Canonicalize(tc.in)
		if got != tc.want {
			t.Fatalf("Canonicalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestValid(t *testing.T) {
	for _, lang := range []string{"en", "fr_FR", "pt-BR", "de"} {
		if !Valid(lang) {
			t.Fatalf("Valid(%q) = false, want true", lang)
		}
	}
	for _, lang := range []string{"", "not a locale", "x"} {
		if Valid(lang) {
			t.Fatalf("Valid(%q) = true, want false", lang)
		}
	}
}

func TestName(t *testing.T) {
	t.Run("native name", func(t *testing.T) {
		if got := Name("fr"); got != "français" {
			t.Fatalf("Name(fr) = %q", got)
		}
		if got := Name("de"); got != "Deutsch" {
			t.Fatalf("Name(de) = %q", got)
		}
	})

	t.Run("underscore variant", func(t *testing.T) {
		if got := Name("pt_BR"); !strings.HasPrefix(strings.ToLower(got), "portugu") {
			t.Fatalf("Name(pt_BR) = %q", got)
		}
	})

	t.Run("unknown passthrough", func(t *testing.T) {
		if got := Name("not a locale"); got != "not a locale" {
			t.Fatalf("Name() = %q", got)
		}
	})
}

func TestBase(t *testing.T) {
	if got := Base("pt_BR"); got != "pt" {
		t.Fatalf("Base(pt_BR) = %q", got)
	}
	if got := Base("??"); got != "??" {
		t.Fatalf("Base(??) = %q", got)
	}
}
