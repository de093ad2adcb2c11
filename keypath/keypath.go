// Package keypath models the dotted key paths that address a single
// translatable string inside a nested translation tree, and converts
// between nested trees and flat path/value lists.
//
//	nav:
//	  home: Home     <->   nav.home = Home
//	  about: About   <->   nav.about = About
//
// Segments are joined with Delimiter and are never escaped. Flatten keeps a
// key that itself contains a dot as one segment, but its textual form
// (Path.String) is ambiguous: Parse splits it into separate segments, so
// such keys come back nested once they pass through a file or a table.
package keypath

import (
	"fmt"
	"strings"

	"github.com/minios-linux/tabkit/errkind"
)

// Delimiter separates path segments in the textual form.
const Delimiter = "."

// Path is an ordered, non-empty sequence of key segments.
// A Path is never modified after construction; Child returns a copy.
type Path []string

// New returns a Path made of the given segments.
func New(segments ...string) Path {
	p := make(Path, len(segments))
	copy(p, segments)
	return p
}

// Parse decodes the textual form of a path. Empty input and empty
// segments ("a..b", ".a", "a.") are rejected.
func Parse(s string) (Path, error) {
	if s == "" {
		return nil, errkind.Data("empty key path")
	}
	p := Path(strings.Split(s, Delimiter))
	for _, seg := range p {
		if seg == "" {
			return nil, errkind.Data("key path %q has an empty segment", s)
		}
	}
	return p, nil
}

// String returns the segments joined by Delimiter.
func (p Path) String() string {
	return strings.Join(p, Delimiter)
}

// Equal reports whether both paths have the same segments.
func (p Path) Equal(o Path) bool {
	if len(p) != len(o) {
		return false
	}
	for i := range p {
		if p[i] != o[i] {
			return false
		}
	}
	return true
}

// Child returns a new path with seg appended. The receiver is left intact
// even when its backing array has spare capacity.
func (p Path) Child(seg string) Path {
	return append(p[:len(p):len(p)], seg)
}

// Entry is one leaf of a flattened tree.
type Entry struct {
	Path  Path
	Value string
}

// ConflictError reports a path that is used both as a leaf and as a
// container, e.g. "a" = "x" together with "a.b" = "y".
type ConflictError struct {
	Path Path
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("key %q is used both as a value and as a parent of other keys", e.Path.String())
}

// Unwrap classifies conflicts as data errors.
func (e *ConflictError) Unwrap() error { return errkind.ErrData }

// Flatten returns every leaf of t in depth-first member order. Containers
// never produce entries, so an empty sub-tree disappears. A key containing
// Delimiter stays a single segment here; it is only split when the path
// is rendered with String and read back with Parse.
func Flatten(t *Tree) []Entry {
	var out []Entry
	flatten(t, nil, &out)
	return out
}

func flatten(t *Tree, prefix Path, out *[]Entry) {
	if t == nil {
		return
	}
	for _, m := range t.members {
		path := prefix.Child(m.Key)
		if m.Sub != nil {
			flatten(m.Sub, path, out)
			continue
		}
		*out = append(*out, Entry{Path: path, Value: m.Value})
	}
}

// Unflatten builds a new nested tree from flat entries. Member order
// follows the first appearance of each key in entries. When the same path
// appears twice the last value wins; a path used both as a leaf and as a
// container yields a *ConflictError.
func Unflatten(entries []Entry) (*Tree, error) {
	for _, e := range entries {
		if len(e.Path) == 0 {
			return nil, errkind.Data("empty key path")
		}
		for _, seg := range e.Path {
			if seg == "" {
				return nil, errkind.Data("key path %q has an empty segment", e.Path.String())
			}
		}
	}
	return build(entries, nil)
}

// bucket gathers the entries sharing one key at the current depth.
type bucket struct {
	leaf     bool
	value    string
	children []Entry
}

func build(entries []Entry, prefix Path) (*Tree, error) {
	var order []string
	buckets := make(map[string]*bucket)

	depth := len(prefix)
	for _, e := range entries {
		key := e.Path[depth]
		b, ok := buckets[key]
		if !ok {
			b = &bucket{}
			buckets[key] = b
			order = append(order, key)
		}
		if len(e.Path) == depth+1 {
			b.leaf = true
			b.value = e.Value
		} else {
			b.children = append(b.children, e)
		}
	}

	t := NewTree()
	for _, key := range order {
		b := buckets[key]
		path := prefix.Child(key)
		if b.leaf && len(b.children) > 0 {
			return nil, &ConflictError{Path: path}
		}
		if b.leaf {
			t.SetLeaf(key, b.value)
			continue
		}
		sub, err := build(b.children, path)
		if err != nil {
			return nil, err
		}
		t.SetTree(key, sub)
	}
	return t, nil
}
