// Package format defines how resource files are turned into trees and back.
//
// A Codec owns the syntax of one file extension; the rest of tabkit only
// ever sees keypath.Tree values.
package format

import (
	"fmt"
	"sort"
	"strings"

	"github.com/minios-linux/tabkit/keypath"
)

// Codec converts between file bytes and an ordered tree.
type Codec interface {
	// Exts lists the file extensions handled, without the leading dot.
	Exts() []string
	// Parse returns the tree held by data. A document whose root is not a
	// mapping yields a nil tree and no error.
	Parse(data []byte) (*keypath.Tree, error)
	// Serialize renders t in the codec's syntax.
	Serialize(t *keypath.Tree) ([]byte, error)
}

// Registry maps file extensions to codecs.
type Registry struct {
	byExt map[string]Codec
}

// NewRegistry returns a registry holding the given codecs. Later codecs
// replace earlier ones for the same extension.
func NewRegistry(codecs ...Codec) *Registry {
	r := &Registry{byExt: make(map[string]Codec)}
	for _, c := range codecs {
		r.Register(c)
	}
	return r
}

// Register adds c for each of its extensions.
func (r *Registry) Register(c Codec) {
	for _, ext := range c.Exts() {
		r.byExt[strings.ToLower(ext)] = c
	}
}

// Get returns the codec for ext (case-insensitive, with or without dot).
func (r *Registry) Get(ext string) (Codec, bool) {
	c, ok := r.byExt[strings.ToLower(strings.TrimPrefix(ext, "."))]
	return c, ok
}

// MustGet is Get returning an error naming the known extensions.
func (r *Registry) MustGet(ext string) (Codec, error) {
	if c, ok := r.Get(ext); ok {
		return c, nil
	}
	return nil, fmt.Errorf("no codec for extension %q (known: %s)", ext, strings.Join(r.Exts(), ", "))
}

// Exts returns the registered extensions in lexical order.
func (r *Registry) Exts() []string {
	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
