// Package scope implements the group/domain selectors accepted on the
// command line: either an explicit list of names or the single word "all".
package scope

import "strings"

// All is the sentinel selecting every name.
const All = "all"

// Filter selects names by exact membership. A filter consisting of the
// single element All matches everything; an empty filter matches nothing.
type Filter []string

// Any is the filter matching every name.
var Any = Filter{All}

// Parse splits a comma-separated list, trimming blanks and dropping empty
// items. An empty string yields Any.
func Parse(s string) Filter {
	var f Filter
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			f = append(f, part)
		}
	}
	if len(f) == 0 {
		return Any
	}
	return f
}

// IsAll reports whether f is the single-element All filter.
func (f Filter) IsAll() bool {
	return len(f) == 1 && f[0] == All
}

// Match reports whether name is selected by f.
func (f Filter) Match(name string) bool {
	if f.IsAll() {
		return true
	}
	for _, n := range f {
		if n == name {
			return true
		}
	}
	return false
}

// String returns the comma-joined form accepted by Parse.
func (f Filter) String() string {
	return strings.Join(f, ",")
}
