// Package jsonfile reads and writes nested JSON translation resources.
//
// The expected file format is a JSON object whose members are either
// strings or nested objects:
//
//	{
//	    "greeting": "Hello",
//	    "nav": {
//	        "home": "Home"
//	    }
//	}
//
// Key order is preserved on parse and on output. Numbers and booleans are
// carried as their literal text, null becomes an empty value, and arrays
// are not translatable and are dropped.
package jsonfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/minios-linux/tabkit/keypath"
)

// Indent is the indentation unit on output.
const Indent = "    "

// Codec is the format.Codec for .json files.
type Codec struct{}

// Exts implements format.Codec.
func (Codec) Exts() []string { return []string{"json"} }

// Parse implements format.Codec.
func (Codec) Parse(data []byte) (*keypath.Tree, error) { return Parse(data) }

// Serialize implements format.Codec.
func (Codec) Serialize(t *keypath.Tree) ([]byte, error) { return Marshal(t) }

// ---------------------------------------------------------------------------
// Parsing
// ---------------------------------------------------------------------------

// Parse parses JSON data into a tree. Blank input or a document whose root
// is not an object yields a nil tree.
func Parse(data []byte) (*keypath.Tree, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	t, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}
	if delim, ok := t.(json.Delim); !ok || delim != '{' {
		// Scalars and arrays hold nothing translatable; still require
		// well-formed input.
		if !json.Valid(data) {
			return nil, errors.New("parsing JSON: invalid document")
		}
		return nil, nil
	}

	tree, err := readObject(dec)
	if err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("parsing JSON: unexpected data after the root object")
	}
	return tree, nil
}

// readObject reads object members up to and including the closing brace.
// The opening brace has already been consumed.
func readObject(dec *json.Decoder) (*keypath.Tree, error) {
	t := keypath.NewTree()
	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := kt.(string)
		if !ok {
			return nil, fmt.Errorf("expected string key, got %T", kt)
		}

		vt, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch v := vt.(type) {
		case json.Delim:
			if v == '{' {
				sub, err := readObject(dec)
				if err != nil {
					return nil, err
				}
				t.SetTree(key, sub)
				continue
			}
			if err := skipArray(dec); err != nil {
				return nil, err
			}
		case string:
			t.SetLeaf(key, v)
		case json.Number:
			t.SetLeaf(key, v.String())
		case bool:
			if v {
				t.SetLeaf(key, "true")
			} else {
				t.SetLeaf(key, "false")
			}
		case nil:
			t.SetLeaf(key, "")
		}
	}
	// Closing brace.
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return t, nil
}

// skipArray consumes tokens up to the array's closing bracket.
func skipArray(dec *json.Decoder) error {
	depth := 1
	for depth > 0 {
		t, err := dec.Token()
		if err != nil {
			return err
		}
		if d, ok := t.(json.Delim); ok {
			switch d {
			case '[', '{':
				depth++
			case ']', '}':
				depth--
			}
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Writing
// ---------------------------------------------------------------------------

// Marshal renders t as an indented JSON object in tree order.
func Marshal(t *keypath.Tree) ([]byte, error) {
	var b strings.Builder
	if err := writeObject(&b, t, 0); err != nil {
		return nil, err
	}
	b.WriteByte('\n')
	return []byte(b.String()), nil
}

func writeObject(b *strings.Builder, t *keypath.Tree, depth int) error {
	members := t.Members()
	if len(members) == 0 {
		b.WriteString("{}")
		return nil
	}
	b.WriteString("{\n")
	pad := strings.Repeat(Indent, depth+1)
	for i, m := range members {
		key, err := jsonString(m.Key)
		if err != nil {
			return err
		}
		b.WriteString(pad + key + ": ")
		if m.IsLeaf() {
			val, err := jsonString(m.Value)
			if err != nil {
				return err
			}
			b.WriteString(val)
		} else if err := writeObject(b, m.Sub, depth+1); err != nil {
			return err
		}
		if i < len(members)-1 {
			b.WriteByte(',')
		}
		b.WriteByte('\n')
	}
	b.WriteString(strings.Repeat(Indent, depth) + "}")
	return nil
}

// jsonString encodes s as a JSON string without HTML escaping.
func jsonString(s string) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
