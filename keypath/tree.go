package keypath

// Member is one key of a Tree: either a leaf value or a sub-tree.
type Member struct {
	Key   string
	Value string
	// Sub is non-nil for containers.
	Sub *Tree
}

// IsLeaf reports whether m holds a scalar value.
func (m Member) IsLeaf() bool { return m.Sub == nil }

// Tree is a nested string map that remembers insertion order.
// Resource file codecs produce and consume Trees.
type Tree struct {
	members []Member
	index   map[string]int
}

// NewTree returns an empty tree.
func NewTree() *Tree {
	return &Tree{index: make(map[string]int)}
}

// SetLeaf stores a scalar under key. An existing member keeps its position.
func (t *Tree) SetLeaf(key, value string) {
	t.set(Member{Key: key, Value: value})
}

// SetTree stores a sub-tree under key. A nil sub is stored as an empty tree.
func (t *Tree) SetTree(key string, sub *Tree) {
	if sub == nil {
		sub = NewTree()
	}
	t.set(Member{Key: key, Sub: sub})
}

func (t *Tree) set(m Member) {
	if t.index == nil {
		t.index = make(map[string]int)
	}
	if i, ok := t.index[m.Key]; ok {
		t.members[i] = m
		return
	}
	t.index[m.Key] = len(t.members)
	t.members = append(t.members, m)
}

// Get returns the member stored under key.
func (t *Tree) Get(key string) (Member, bool) {
	if t == nil {
		return Member{}, false
	}
	i, ok := t.index[key]
	if !ok {
		return Member{}, false
	}
	return t.members[i], true
}

// Members returns the members in insertion order.
func (t *Tree) Members() []Member {
	if t == nil {
		return nil
	}
	out := make([]Member, len(t.members))
	copy(out, t.members)
	return out
}

// Keys returns member keys in insertion order.
func (t *Tree) Keys() []string {
	if t == nil {
		return nil
	}
	keys := make([]string, len(t.members))
	for i, m := range t.members {
		keys[i] = m.Key
	}
	return keys
}

// Len returns the number of direct members.
func (t *Tree) Len() int {
	if t == nil {
		return 0
	}
	return len(t.members)
}

// Equal reports whether both trees hold the same members in the same order.
func (t *Tree) Equal(o *Tree) bool {
	if t.Len() != o.Len() {
		return false
	}
	for i := 0; i < t.Len(); i++ {
		a, b := t.members[i], o.members[i]
		if a.Key != b.Key || a.IsLeaf() != b.IsLeaf() {
			return false
		}
		if a.IsLeaf() {
			if a.Value != b.Value {
				return false
			}
			continue
		}
		if !a.Sub.Equal(b.Sub) {
			return false
		}
	}
	return true
}
