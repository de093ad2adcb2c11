// Package config implements project settings and auto-detection of
// resource groups and locales from the directory layout.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/minios-linux/tabkit/errkind"
	"github.com/minios-linux/tabkit/finder"
	"github.com/minios-linux/tabkit/scope"
)

// AppGroup is the pseudo-group naming the host application's own
// translation directory.
const AppGroup = "app"

// ---------------------------------------------------------------------------
// Group registry
// ---------------------------------------------------------------------------

// Registry maps group names to resource locations.
type Registry struct {
	groups []finder.Group
	byName map[string]finder.Group
}

// Registry builds the group registry: the "app" pseudo-group first, then
// declared groups, then groups detected under GroupsDir in name order.
func (f *File) Registry() (*Registry, error) {
	r := &Registry{byName: make(map[string]finder.Group)}
	r.add(finder.Group{
		Name:     AppGroup,
		Location: finder.StandaloneDirectory{Path: f.AppTranslations},
	})
	for _, g := range f.Groups {
		r.add(finder.Group{
			Name:     g.Name,
			Location: finder.ConventionalResourcePath{BasePath: g.Path},
		})
	}
	if f.GroupsDir != "" {
		detected, err := DetectGroups(f.GroupsDir)
		if err != nil {
			return nil, err
		}
		for _, g := range detected {
			if _, ok := r.byName[g.Name]; ok {
				continue
			}
			r.add(g)
		}
	}
	return r, nil
}

func (r *Registry) add(g finder.Group) {
	r.groups = append(r.groups, g)
	r.byName[g.Name] = g
}

// Groups returns all known groups in registry order.
func (r *Registry) Groups() []finder.Group { return r.groups }

// Names returns all known group names in registry order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.groups))
	for i, g := range r.groups {
		names[i] = g.Name
	}
	return names
}

// Map returns the registry as a name-to-group map.
func (r *Registry) Map() map[string]finder.Group {
	m := make(map[string]finder.Group, len(r.byName))
	for k, v := range r.byName {
		m[k] = v
	}
	return m
}

// Lookup returns the group with the given name.
func (r *Registry) Lookup(name string) (finder.Group, error) {
	g, ok := r.byName[name]
	if !ok {
		return finder.Group{}, fmt.Errorf("group %q: %w (known: %s)",
			name, errkind.ErrNotFound, strings.Join(r.Names(), ", "))
	}
	return g, nil
}

// Select resolves a group filter. "all" selects every known group;
// otherwise each listed name must be known and the result keeps the
// listed order.
func (r *Registry) Select(filter scope.Filter) ([]finder.Group, error) {
	if filter.IsAll() {
		return r.Groups(), nil
	}
	var out []finder.Group
	seen := make(map[string]bool)
	for _, name := range filter {
		if seen[name] {
			continue
		}
		seen[name] = true
		g, err := r.Lookup(name)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Detection
// ---------------------------------------------------------------------------

// DetectGroups scans dir for subdirectories holding Resources/translations.
// Each one becomes a group named after the subdirectory. A missing dir
// yields no groups.
func DetectGroups(dir string) ([]finder.Group, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errkind.IO("scanning", dir, err)
	}

	var groups []finder.Group
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		base := filepath.Join(dir, entry.Name())
		if !isDir(filepath.Join(base, finder.ResourceSubdir)) {
			continue
		}
		groups = append(groups, finder.Group{
			Name:     entry.Name(),
			Location: finder.ConventionalResourcePath{BasePath: base},
		})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Name < groups[j].Name })
	return groups, nil
}

// DetectLocales returns the sorted set of locales found in the resource
// directories of the given groups, considering only files with an
// extension known to res.
func DetectLocales(res *finder.Resolver, groups []finder.Group) ([]string, error) {
	seen := make(map[string]bool)
	var locales []string
	for _, g := range groups {
		files, err := res.Resolve(g.Location, scope.Any, nil)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			if !seen[f.Locale] {
				seen[f.Locale] = true
				locales = append(locales, f.Locale)
			}
		}
	}
	sort.Strings(locales)
	return locales, nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
