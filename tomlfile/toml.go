// Package tomlfile reads and writes TOML translation resources.
//
//	title = "Title"
//
//	[nav]
//	home = "Home"
//	about = "About"
//
// Document order is recovered from the decoder metadata. Arrays are not
// translatable and are dropped; other scalars are carried as text. On
// output the encoder places plain keys before tables and sorts each level.
package tomlfile

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"

	"github.com/BurntSushi/toml"

	"github.com/minios-linux/tabkit/keypath"
)

// Codec is the format.Codec for .toml files.
type Codec struct{}

// Exts implements format.Codec.
func (Codec) Exts() []string { return []string{"toml"} }

// Parse implements format.Codec.
func (Codec) Parse(data []byte) (*keypath.Tree, error) { return Parse(data) }

// Serialize implements format.Codec.
func (Codec) Serialize(t *keypath.Tree) ([]byte, error) { return Marshal(t) }

// Parse decodes TOML data into a tree in document order.
func Parse(data []byte) (*keypath.Tree, error) {
	var raw map[string]any
	md, err := toml.Decode(string(data), &raw)
	if err != nil {
		return nil, fmt.Errorf("parsing TOML: %w", err)
	}

	t := keypath.NewTree()
	for _, key := range md.Keys() {
		v, ok := lookup(raw, key)
		if !ok {
			continue
		}
		place(t, key, v)
	}
	// Keys the metadata did not report (inline tables on some decoder
	// versions) are appended in sorted order.
	fill(t, raw)
	return t, nil
}

// place stores v at key, creating intermediate tables on demand.
func place(t *keypath.Tree, key toml.Key, v any) {
	parent := t
	for _, seg := range key[:len(key)-1] {
		parent = subtree(parent, seg)
		if parent == nil {
			return
		}
	}
	last := key[len(key)-1]
	switch val := v.(type) {
	case map[string]any:
		subtree(parent, last)
	default:
		if s, ok := text(val); ok {
			if _, exists := parent.Get(last); !exists {
				parent.SetLeaf(last, s)
			}
		}
	}
}

// subtree returns the container stored under key, creating it if absent.
// It returns nil when key already holds a leaf.
func subtree(t *keypath.Tree, key string) *keypath.Tree {
	if m, ok := t.Get(key); ok {
		return m.Sub
	}
	sub := keypath.NewTree()
	t.SetTree(key, sub)
	return sub
}

func fill(t *keypath.Tree, raw map[string]any) {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		switch val := raw[k].(type) {
		case map[string]any:
			if sub := subtree(t, k); sub != nil {
				fill(sub, val)
			}
		default:
			if _, exists := t.Get(k); exists {
				continue
			}
			if s, ok := text(val); ok {
				t.SetLeaf(k, s)
			}
		}
	}
}

func lookup(raw map[string]any, key toml.Key) (any, bool) {
	var cur any = raw
	for _, seg := range key {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = m[seg]; !ok {
			return nil, false
		}
	}
	return cur, true
}

// text renders a scalar. Arrays and arrays of tables report false.
func text(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case int64:
		return strconv.FormatInt(val, 10), true
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64), true
	case bool:
		return strconv.FormatBool(val), true
	case []any, []map[string]any:
		return "", false
	default:
		return fmt.Sprint(val), true
	}
}

// Marshal renders t as TOML. All leaves are written as strings.
func Marshal(t *keypath.Tree) ([]byte, error) {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.Indent = ""
	if err := enc.Encode(toMap(t)); err != nil {
		return nil, fmt.Errorf("marshaling TOML: %w", err)
	}
	return buf.Bytes(), nil
}

func toMap(t *keypath.Tree) map[string]any {
	m := make(map[string]any, t.Len())
	for _, member := range t.Members() {
		if member.IsLeaf() {
			m[member.Key] = member.Value
			continue
		}
		m[member.Key] = toMap(member.Sub)
	}
	return m
}
