// Package yamlfile reads and writes YAML translation resources.
//
// The expected file format is a nested YAML map with scalar leaf values:
//
//	greeting: Hello
//	nav:
//	  home: Home
//	  about: About
//
// Key order is preserved on parse. Non-string scalars (numbers, booleans)
// are carried as their literal text, null becomes an empty value, and
// sequences are not translatable and are dropped. Aliases and merge keys
// ("<<: *base") are resolved.
package yamlfile

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/minios-linux/tabkit/keypath"
)

// Indent is the number of spaces per nesting level on output.
const Indent = 2

// Codec is the format.Codec for .yml and .yaml files.
type Codec struct{}

// Exts implements format.Codec.
func (Codec) Exts() []string { return []string{"yml", "yaml"} }

// Parse implements format.Codec.
func (Codec) Parse(data []byte) (*keypath.Tree, error) { return Parse(data) }

// Serialize implements format.Codec.
func (Codec) Serialize(t *keypath.Tree) ([]byte, error) { return Marshal(t) }

// ---------------------------------------------------------------------------
// Parsing
// ---------------------------------------------------------------------------

// Parse parses YAML data into a tree. An empty document or one whose root
// is not a mapping yields a nil tree.
func Parse(data []byte) (*keypath.Tree, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}

	// yaml.Unmarshal wraps the document in a DocumentNode.
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, nil
	}
	root := resolve(doc.Content[0])
	if root.Kind != yaml.MappingNode {
		return nil, nil
	}
	return collect(root), nil
}

// collect walks a mapping node and copies its members into a new tree.
func collect(node *yaml.Node) *keypath.Tree {
	t := keypath.NewTree()
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode := node.Content[i]
		valNode := resolve(node.Content[i+1])

		if isMergeKey(keyNode) {
			mergeInto(t, valNode)
			continue
		}

		switch valNode.Kind {
		case yaml.MappingNode:
			t.SetTree(keyNode.Value, collect(valNode))
		case yaml.ScalarNode:
			if valNode.Tag == "!!null" {
				t.SetLeaf(keyNode.Value, "")
				continue
			}
			t.SetLeaf(keyNode.Value, valNode.Value)
		}
	}
	return t
}

// mergeInto applies a "<<" merge key. Keys already present win, as YAML
// requires explicit keys to override merged ones.
func mergeInto(t *keypath.Tree, val *yaml.Node) {
	sources := []*yaml.Node{val}
	if val.Kind == yaml.SequenceNode {
		sources = val.Content
	}
	for _, src := range sources {
		src = resolve(src)
		if src.Kind != yaml.MappingNode {
			continue
		}
		for _, m := range collect(src).Members() {
			if _, exists := t.Get(m.Key); exists {
				continue
			}
			if m.IsLeaf() {
				t.SetLeaf(m.Key, m.Value)
			} else {
				t.SetTree(m.Key, m.Sub)
			}
		}
	}
}

func isMergeKey(n *yaml.Node) bool {
	return n.Tag == "!!merge" || (n.Value == "<<" && n.Style == 0 && n.Tag == "")
}

func resolve(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

// ---------------------------------------------------------------------------
// Writing
// ---------------------------------------------------------------------------

// Marshal renders t as block-style YAML indented by Indent spaces.
// Multi-line values use the literal block style.
func Marshal(t *keypath.Tree) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(Indent)
	if err := enc.Encode(toNode(t)); err != nil {
		return nil, fmt.Errorf("marshaling YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("marshaling YAML: %w", err)
	}
	return buf.Bytes(), nil
}

func toNode(t *keypath.Tree) *yaml.Node {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	if t.Len() == 0 {
		node.Style = yaml.FlowStyle
	}
	for _, m := range t.Members() {
		keyNode := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: m.Key}
		if m.IsLeaf() {
			node.Content = append(node.Content, keyNode, scalar(m.Value))
			continue
		}
		node.Content = append(node.Content, keyNode, toNode(m.Sub))
	}
	return node
}

func scalar(value string) *yaml.Node {
	n := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
	if strings.Contains(value, "\n") {
		n.Style = yaml.LiteralStyle
	}
	return n
}
