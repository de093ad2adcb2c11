package lockfile

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/minios-linux/tabkit/errkind"
	"github.com/minios-linux/tabkit/store"
)

func TestHashDeterministic(t *testing.T) {
	h1 := Hash("hello world")
	h2 := Hash("hello world")
	if h1 != h2 {
		t.Errorf("Hash not deterministic: %s != %s", h1, h2)
	}
	if h1 == Hash("different") {
		t.Errorf("Hash collision for %q", "different")
	}
}

func TestLoadNonExistent(t *testing.T) {
	lf, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load returned error for non-existent file: %v", err)
	}
	if lf.Version != Version {
		t.Errorf("Version = %d, want %d", lf.Version, Version)
	}
	if len(lf.Checksums) != 0 {
		t.Errorf("Checksums not empty: %v", lf.Checksums)
	}
}

func TestLoadRejectsBadFiles(t *testing.T) {
	for name, content := range map[string]string{
		"malformed":     "version: [\n",
		"wrong version": "version: 7\nchecksums: {}\n",
	} {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			if err := os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(dir); !errors.Is(err, errkind.ErrData) {
				t.Fatalf("expected data error, got %v", err)
			}
		})
	}
}

func sampleStore() *store.Store {
	st := store.New()
	st.Fold("app", "messages", "nav.home", "en", "Home")
	st.Fold("app", "messages", "nav.home", "fr", "Accueil")
	st.Fold("app", "messages", "nav.about", "fr", "À propos")
	st.Fold("AcmeBundle", "validators", "email", "en", "Invalid email")
	return st
}

func TestRecordSaveAndLoad(t *testing.T) {
	dir := t.TempDir()

	lf, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	lf.Record(sampleStore(), "en")
	if err := lf.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, FileName)); err != nil {
		t.Fatalf("lock file not created: %v", err)
	}

	lf2, err := Load(dir)
	if err != nil {
		t.Fatalf("Load after save: %v", err)
	}
	if lf2.Reference != "en" {
		t.Errorf("Reference = %q, want en", lf2.Reference)
	}
	targets, keys := lf2.Stats()
	if targets != 2 || keys != 3 {
		t.Errorf("Stats() = %d, %d, want 2, 3", targets, keys)
	}
	if want := []string{"AcmeBundle/validators", "app/messages"}; !reflect.DeepEqual(lf2.Targets(), want) {
		t.Errorf("Targets() = %v, want %v", lf2.Targets(), want)
	}
	if lf2.Path() != filepath.Join(dir, FileName) {
		t.Errorf("Path() = %q", lf2.Path())
	}
}

func TestRecordNewReferenceResets(t *testing.T) {
	lf := &LockFile{Version: Version, Checksums: make(map[string]map[string]string)}
	lf.Record(sampleStore(), "en")

	st := store.New()
	st.Fold("app", "messages", "nav.home", "fr", "Accueil")
	lf.Record(st, "fr")

	if lf.Reference != "fr" {
		t.Fatalf("Reference = %q", lf.Reference)
	}
	if targets, keys := lf.Stats(); targets != 1 || keys != 1 {
		t.Fatalf("Stats() = %d, %d, want 1, 1", targets, keys)
	}
}

func TestStale(t *testing.T) {
	lf := &LockFile{Version: Version, Checksums: make(map[string]map[string]string)}
	lf.Record(sampleStore(), "en")

	got := lf.Stale("app/messages", map[string]string{
		"nav.home":  "Homepage", // changed
		"nav.about": "",         // recorded as missing, still missing
		"nav.new":   "New",      // never exported
	})
	if want := []string{"nav.home"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Stale() = %v, want %v", got, want)
	}

	if got := lf.Stale("app/unknown", map[string]string{"a": "b"}); len(got) != 0 {
		t.Fatalf("Stale(unknown target) = %v", got)
	}
}

func TestSaveWithoutPath(t *testing.T) {
	lf := &LockFile{Version: Version}
	if err := lf.Save(); err == nil {
		t.Fatal("expected error")
	}
}
