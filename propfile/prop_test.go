package propfile

import (
	"errors"
	"strings"
	"testing"

	"github.com/minios-linux/tabkit/errkind"
	"github.com/minios-linux/tabkit/keypath"
)

func flat(t *testing.T, tree *keypath.Tree) map[string]string {
	t.Helper()
	out := make(map[string]string)
	for _, e := range keypath.Flatten(tree) {
		out[e.Path.String()] = e.Value
	}
	return out
}

func TestParse_Basic(t *testing.T) {
	tree, err := Parse([]byte("greeting=Hello\nfarewell=Goodbye\n"))
	if err != nil {
		t.Fatal(err)
	}
	if got := tree.Keys(); len(got) != 2 || got[0] != "greeting" || got[1] != "farewell" {
		t.Fatalf("Keys() = %v", got)
	}
	if m, _ := tree.Get("greeting"); m.Value != "Hello" {
		t.Errorf("greeting = %q, want %q", m.Value, "Hello")
	}
}

func TestParse_DottedKeysNest(t *testing.T) {
	tree, err := Parse([]byte("nav.home = Home\nnav.about = About\ntitle = Site\n"))
	if err != nil {
		t.Fatal(err)
	}
	nav, ok := tree.Get("nav")
	if !ok || nav.IsLeaf() {
		t.Fatalf("nav should be a sub-tree: %#v", nav)
	}
	if got := nav.Sub.Keys(); len(got) != 2 || got[0] != "home" || got[1] != "about" {
		t.Fatalf("nav keys = %v", got)
	}
}

func TestParse_CommentsSeparatorsAndReferences(t *testing.T) {
	data := []byte("# comment\n! another comment\n\nname: World\nurl=http://example.com?a=1&b=2\nref=${name}\n")
	tree, err := Parse(data)
	if err != nil {
		t.Fatal(err)
	}
	got := flat(t, tree)
	if got["name"] != "World" {
		t.Errorf("name = %q", got["name"])
	}
	if got["url"] != "http://example.com?a=1&b=2" {
		t.Errorf("url = %q", got["url"])
	}
	if got["ref"] != "${name}" {
		t.Errorf("ref = %q, want the reference kept literally", got["ref"])
	}
	if len(got) != 3 {
		t.Errorf("expected 3 entries, got %v", got)
	}
}

func TestParse_Empty(t *testing.T) {
	tree, err := Parse([]byte("# nothing here\n"))
	if err != nil || tree != nil {
		t.Fatalf("Parse(comments only) = %v, %v", tree, err)
	}
}

func TestParse_Conflict(t *testing.T) {
	_, err := Parse([]byte("a = x\na.b = y\n"))
	if !errors.Is(err, errkind.ErrData) {
		t.Fatalf("expected data error, got %v", err)
	}
}

func TestMarshal_RoundTrip(t *testing.T) {
	tree := keypath.NewTree()
	nav := keypath.NewTree()
	nav.SetLeaf("home", "Accueil")
	nav.SetLeaf("about", "À propos")
	tree.SetLeaf("title", "Line one\nline two")
	tree.SetTree("nav", nav)

	data, err := Marshal(tree)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	if !strings.Contains(out, "nav.home = Accueil\n") {
		t.Errorf("missing nav.home line:\n%s", out)
	}
	if strings.Index(out, "title") > strings.Index(out, "nav.home") {
		t.Errorf("tree order not kept:\n%s", out)
	}

	back, err := Parse(data)
	if err != nil {
		t.Fatal(err)
	}
	if !back.Equal(tree) {
		t.Fatalf("round trip mismatch:\n%s", out)
	}
}
