// Package loader reads the resource files of resource groups into a
// translation store.
package loader

import (
	"fmt"
	"os"

	"github.com/minios-linux/tabkit/errkind"
	"github.com/minios-linux/tabkit/finder"
	"github.com/minios-linux/tabkit/format"
	"github.com/minios-linux/tabkit/keypath"
	"github.com/minios-linux/tabkit/scope"
	"github.com/minios-linux/tabkit/store"
)

// Loader resolves, parses and flattens resource files.
type Loader struct {
	resolver *finder.Resolver
	codecs   *format.Registry
}

// New returns a Loader using resolver for discovery and codecs for parsing.
func New(resolver *finder.Resolver, codecs *format.Registry) *Loader {
	return &Loader{resolver: resolver, codecs: codecs}
}

// Load folds the files of group matching domains and locales into st and
// returns how many files were read. A group without matching files is not
// an error.
func (l *Loader) Load(st *store.Store, group finder.Group, domains scope.Filter, locales []string) (int, error) {
	files, err := l.resolver.Resolve(group.Location, domains, locales)
	if err != nil {
		return 0, fmt.Errorf("group %s: %w", group.Name, err)
	}
	for _, f := range files {
		if err := l.loadFile(st, group.Name, f); err != nil {
			return 0, err
		}
	}
	return len(files), nil
}

// LoadAll loads every group in order and returns the total file count.
func (l *Loader) LoadAll(st *store.Store, groups []finder.Group, domains scope.Filter, locales []string) (int, error) {
	total := 0
	for _, g := range groups {
		n, err := l.Load(st, g, domains, locales)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func (l *Loader) loadFile(st *store.Store, group string, f finder.File) error {
	codec, err := l.codecs.MustGet(f.Ext)
	if err != nil {
		return fmt.Errorf("%s: %w", f.Path, err)
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return errkind.IO("reading", f.Path, err)
	}
	tree, err := codec.Parse(data)
	if err != nil {
		return &errkind.DataError{Path: f.Path, Msg: err.Error()}
	}
	// Not a mapping: nothing to load.
	if tree == nil {
		return nil
	}
	for _, e := range keypath.Flatten(tree) {
		st.Fold(group, f.Domain, e.Path.String(), f.Locale, e.Value)
	}
	return nil
}
