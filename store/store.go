// Package store holds the in-memory translation model of one run:
//
//	group → domain → key → locale → value
//
// Groups, domains and keys keep the order in which they were first folded
// in, which makes every traversal (and therefore every export) stable.
// For a given (group, domain, key, locale) only the most recent value is
// kept.
package store

import "sort"

// Entry is a single translated value with its full address.
type Entry struct {
	Group  string
	Domain string
	Key    string
	Locale string
	Value  string
}

// KeyValue is one key of a domain restricted to a locale.
type KeyValue struct {
	Key   string
	Value string
}

// Store is the aggregate of all translations loaded during a run.
// The zero value is not usable; call New.
type Store struct {
	groups []*Group
	index  map[string]int
}

// Group holds the domains of one resource group.
type Group struct {
	Name    string
	domains []*Domain
	index   map[string]int
}

// Domain holds the keys of one domain and their per-locale values.
type Domain struct {
	Name   string
	keys   []string
	values map[string]map[string]string
}

// New returns an empty store.
func New() *Store {
	return &Store{index: make(map[string]int)}
}

// Fold stores value under (group, domain, key, locale), replacing any
// previous value. New groups, domains and keys are appended.
func (s *Store) Fold(group, domain, key, locale, value string) {
	s.group(group).domain(domain).set(key, locale, value)
}

// FoldEntry is Fold for an Entry.
func (s *Store) FoldEntry(e Entry) {
	s.Fold(e.Group, e.Domain, e.Key, e.Locale, e.Value)
}

// Value returns the value stored under the full address.
func (s *Store) Value(group, domain, key, locale string) (string, bool) {
	g, ok := s.Group(group)
	if !ok {
		return "", false
	}
	d, ok := g.Domain(domain)
	if !ok {
		return "", false
	}
	return d.Value(key, locale)
}

// Group returns the named group.
func (s *Store) Group(name string) (*Group, bool) {
	i, ok := s.index[name]
	if !ok {
		return nil, false
	}
	return s.groups[i], true
}

// Groups returns the groups in insertion order.
func (s *Store) Groups() []*Group {
	out := make([]*Group, len(s.groups))
	copy(out, s.groups)
	return out
}

// GroupNames returns the group names in insertion order.
func (s *Store) GroupNames() []string {
	names := make([]string, len(s.groups))
	for i, g := range s.groups {
		names[i] = g.Name
	}
	return names
}

// Each calls fn for every stored value, in group, domain and key order.
// Locales of one key are visited in lexical order.
func (s *Store) Each(fn func(Entry)) {
	for _, g := range s.groups {
		for _, d := range g.domains {
			for _, key := range d.keys {
				locales := d.values[key]
				for _, locale := range sortedKeys(locales) {
					fn(Entry{Group: g.Name, Domain: d.Name, Key: key, Locale: locale, Value: locales[locale]})
				}
			}
		}
	}
}

// Len returns the number of stored values.
func (s *Store) Len() int {
	n := 0
	for _, g := range s.groups {
		for _, d := range g.domains {
			for _, locales := range d.values {
				n += len(locales)
			}
		}
	}
	return n
}

func (s *Store) group(name string) *Group {
	if i, ok := s.index[name]; ok {
		return s.groups[i]
	}
	g := &Group{Name: name, index: make(map[string]int)}
	s.index[name] = len(s.groups)
	s.groups = append(s.groups, g)
	return g
}

// Domain returns the named domain.
func (g *Group) Domain(name string) (*Domain, bool) {
	i, ok := g.index[name]
	if !ok {
		return nil, false
	}
	return g.domains[i], true
}

// Domains returns the domains in insertion order.
func (g *Group) Domains() []*Domain {
	out := make([]*Domain, len(g.domains))
	copy(out, g.domains)
	return out
}

func (g *Group) domain(name string) *Domain {
	if i, ok := g.index[name]; ok {
		return g.domains[i]
	}
	d := &Domain{Name: name, values: make(map[string]map[string]string)}
	g.index[name] = len(g.domains)
	g.domains = append(g.domains, d)
	return d
}

// Keys returns the keys in their current order.
func (d *Domain) Keys() []string {
	out := make([]string, len(d.keys))
	copy(out, d.keys)
	return out
}

// Value returns the value of key for locale.
func (d *Domain) Value(key, locale string) (string, bool) {
	v, ok := d.values[key][locale]
	return v, ok
}

// Flat returns the keys holding a value for locale, in key order.
func (d *Domain) Flat(locale string) []KeyValue {
	var out []KeyValue
	for _, key := range d.keys {
		if v, ok := d.values[key][locale]; ok {
			out = append(out, KeyValue{Key: key, Value: v})
		}
	}
	return out
}

// Count returns how many keys hold a non-empty value for locale.
func (d *Domain) Count(locale string) int {
	n := 0
	for _, key := range d.keys {
		if d.values[key][locale] != "" {
			n++
		}
	}
	return n
}

// SortKeys orders the keys lexicographically (byte order).
func (d *Domain) SortKeys() {
	sort.Strings(d.keys)
}

func (d *Domain) set(key, locale, value string) {
	locales, ok := d.values[key]
	if !ok {
		locales = make(map[string]string)
		d.values[key] = locales
		d.keys = append(d.keys, key)
	}
	locales[locale] = value
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
