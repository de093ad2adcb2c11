package finder

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/minios-linux/tabkit/errkind"
	"github.com/minios-linux/tabkit/scope"
)

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("a: b\n"), 0644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
	}
}

func names(files []File) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = filepath.Base(f.Path)
	}
	return out
}

func TestDir(t *testing.T) {
	r := NewResolver("/srv/app", []string{"yml"})

	cases := []struct {
		name string
		loc  Location
		want string
	}{
		{"standalone", StandaloneDirectory{Path: "/srv/app/translations"}, "/srv/app/translations"},
		{"conventional", ConventionalResourcePath{BasePath: "/srv/vendor/FooBundle"}, "/srv/vendor/FooBundle/Resources/translations"},
		{"already under app resources", ConventionalResourcePath{BasePath: "/srv/app/Resources/FooBundle"}, "/srv/app/Resources/FooBundle"},
		{"prefix is not a path segment", ConventionalResourcePath{BasePath: "/srv/app/ResourcesX"}, "/srv/app/ResourcesX/Resources/translations"},
	}
	for _, tc := range cases {
		if got := r.Dir(tc.loc); got != filepath.FromSlash(tc.want) {
			t.Fatalf("%s: Dir() = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestResolve_FiltersByDomainLocaleAndExt(t *testing.T) {
	base := t.TempDir()
	dir := filepath.Join(base, ResourceSubdir)
	touch(t, dir,
		"messages.fr.yml",
		"messages.en.yml",
		"messages.de.yml",
		"validators.fr.yml",
		"mymessages.fr.yml",
		"messages.fr.json",
		"messages.fr.yml.bak",
		"README",
	)
	if err := os.Mkdir(filepath.Join(dir, "admin.fr.yml"), 0755); err != nil {
		t.Fatal(err)
	}

	r := NewResolver("", []string{"yml"})
	loc := ConventionalResourcePath{BasePath: base}

	files, err := r.Resolve(loc, scope.Filter{"messages"}, []string{"fr", "en"})
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	got := names(files)
	want := []string{"messages.en.yml", "messages.fr.yml"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("Resolve = %v, want %v", got, want)
	}
	if files[1].Domain != "messages" || files[1].Locale != "fr" || files[1].Ext != "yml" {
		t.Fatalf("unexpected decoded file: %#v", files[1])
	}

	files, err = r.Resolve(loc, scope.Any, []string{"fr"})
	if err != nil {
		t.Fatal(err)
	}
	got = names(files)
	want = []string{"messages.fr.yml", "mymessages.fr.yml", "validators.fr.yml"}
	if len(got) != 3 || got[0] != want[0] || got[1] != want[1] || got[2] != want[2] {
		t.Fatalf("Resolve(all) = %v, want %v", got, want)
	}

	files, err = r.Resolve(loc, scope.Filter{"messages", "validators"}, []string{"fr"})
	if err != nil {
		t.Fatal(err)
	}
	if got := names(files); len(got) != 2 || got[0] != "messages.fr.yml" || got[1] != "validators.fr.yml" {
		t.Fatalf("Resolve(messages,validators) = %v", got)
	}

	files, err = r.Resolve(loc, scope.Filter{"messages"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := names(files); len(got) != 3 || got[0] != "messages.de.yml" || got[2] != "messages.fr.yml" {
		t.Fatalf("Resolve(any locale) = %v", got)
	}
}

func TestResolve_MissingDirectoryIsEmpty(t *testing.T) {
	r := NewResolver("", []string{"yml"})
	files, err := r.Resolve(StandaloneDirectory{Path: filepath.Join(t.TempDir(), "nope")}, scope.Any, []string{"fr"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(files) != 0 {
		t.Fatalf("expected no files, got %v", files)
	}
}

func TestResolve_RejectsSameDomainAndLocaleTwice(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "messages.fr.yml", "messages.fr.yaml", "messages.en.yml")
	r := NewResolver("", []string{"yaml", "yml"})
	loc := StandaloneDirectory{Path: dir}

	_, err := r.Resolve(loc, scope.Any, []string{"fr"})
	if !errors.Is(err, errkind.ErrData) {
		t.Fatalf("Resolve error = %v, want a data error", err)
	}

	files, err := r.Resolve(loc, scope.Any, []string{"en"})
	if err != nil {
		t.Fatalf("unrelated locale: %v", err)
	}
	if got := names(files); len(got) != 1 || got[0] != "messages.en.yml" {
		t.Fatalf("Resolve(en) = %v", got)
	}
}

func TestTarget(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "messages.fr.toml")
	r := NewResolver("", []string{"toml", "yml"})
	loc := StandaloneDirectory{Path: dir}

	if got := r.Target(loc, "messages", "fr", "yml"); got != filepath.Join(dir, "messages.fr.toml") {
		t.Fatalf("Target(existing) = %q", got)
	}
	if got := r.Target(loc, "messages", "en", "yml"); got != filepath.Join(dir, "messages.en.yml") {
		t.Fatalf("Target(new) = %q", got)
	}
}

func TestSplitName(t *testing.T) {
	d, l, e, ok := SplitName("messages.fr_FR.yml")
	if !ok || d != "messages" || l != "fr_FR" || e != "yml" {
		t.Fatalf("SplitName = %q %q %q %v", d, l, e, ok)
	}
	for _, bad := range []string{"messages.yml", "a.b.c.d", ".fr.yml", "messages..yml"} {
		if _, _, _, ok := SplitName(bad); ok {
			t.Fatalf("SplitName(%q) should fail", bad)
		}
	}
}
