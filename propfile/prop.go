// Package propfile reads and writes Java-style .properties translation
// resources.
//
// Keys are flat dotted paths, one entry per line:
//
//	greeting = Hello
//	nav.home = Home
//	nav.about = About
//
// On parse the dotted keys are expanded into a tree, so "nav.home" and
// "nav.about" share the "nav" node; on output the tree is flattened back.
// Comments are not carried over. ${...} references are kept literally.
package propfile

import (
	"bytes"
	"fmt"

	"github.com/magiconair/properties"

	"github.com/minios-linux/tabkit/keypath"
)

// Codec is the format.Codec for .properties files.
type Codec struct{}

// Exts implements format.Codec.
func (Codec) Exts() []string { return []string{"properties"} }

// Parse implements format.Codec.
func (Codec) Parse(data []byte) (*keypath.Tree, error) { return Parse(data) }

// Serialize implements format.Codec.
func (Codec) Serialize(t *keypath.Tree) ([]byte, error) { return Marshal(t) }

// ---------------------------------------------------------------------------
// Parsing
// ---------------------------------------------------------------------------

// Parse parses .properties data into a tree, keeping file order. A file
// without entries yields a nil tree. A key that is both a value and the
// prefix of another key ("a" and "a.b") is rejected.
func Parse(data []byte) (*keypath.Tree, error) {
	l := &properties.Loader{Encoding: properties.UTF8, DisableExpansion: true}
	p, err := l.LoadBytes(data)
	if err != nil {
		return nil, fmt.Errorf("parsing properties: %w", err)
	}

	keys := p.Keys()
	if len(keys) == 0 {
		return nil, nil
	}
	entries := make([]keypath.Entry, 0, len(keys))
	for _, k := range keys {
		path, err := keypath.Parse(k)
		if err != nil {
			return nil, fmt.Errorf("parsing properties: %w", err)
		}
		v, _ := p.Get(k)
		entries = append(entries, keypath.Entry{Path: path, Value: v})
	}
	return keypath.Unflatten(entries)
}

// ---------------------------------------------------------------------------
// Writing
// ---------------------------------------------------------------------------

// Marshal writes one "key = value" line per leaf of t, in tree order.
func Marshal(t *keypath.Tree) ([]byte, error) {
	p := properties.NewProperties()
	p.DisableExpansion = true
	for _, e := range keypath.Flatten(t) {
		if _, _, err := p.Set(e.Path.String(), e.Value); err != nil {
			return nil, fmt.Errorf("%s: %w", e.Path, err)
		}
	}

	var buf bytes.Buffer
	if _, err := p.Write(&buf, properties.UTF8); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
