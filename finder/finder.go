// Package finder discovers translation resource files.
//
// A resource directory holds one file per domain and locale, named
//
//	<domain>.<locale>.<ext>     e.g. messages.fr.yml
//
// Where that directory lives depends on the group: the host application
// keeps its files in a standalone directory, every other group keeps them
// under <group path>/Resources/translations.
package finder

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/minios-linux/tabkit/errkind"
	"github.com/minios-linux/tabkit/scope"
)

// ResourceSubdir is appended to a group's base path by the convention.
var ResourceSubdir = filepath.Join("Resources", "translations")

// Location says where a group's resource files live. It is either a
// StandaloneDirectory or a ConventionalResourcePath.
type Location interface {
	// String describes the location for logs.
	String() string
	location()
}

// StandaloneDirectory is a directory that directly holds resource files.
type StandaloneDirectory struct {
	Path string
}

func (l StandaloneDirectory) String() string { return l.Path }
func (StandaloneDirectory) location() {}

// ConventionalResourcePath is a group base path whose resource files live
// in ResourceSubdir below it.
type ConventionalResourcePath struct {
	BasePath string
}

func (l ConventionalResourcePath) String() string {
	return filepath.Join(l.BasePath, ResourceSubdir)
}
func (ConventionalResourcePath) location() {}

// Group is a named owner of resource files.
type Group struct {
	Name     string
	Location Location
}

// File is a discovered resource file.
type File struct {
	Path   string
	Domain string
	Locale string
	Ext    string
}

// Resolver maps locations and filters to resource files.
type Resolver struct {
	// AppRoot is the host application root. A conventional base path that
	// already lies under <AppRoot>/Resources is used as is.
	AppRoot string
	exts    []string
}

// NewResolver returns a resolver accepting files with the given extensions
// (without leading dot).
func NewResolver(appRoot string, exts []string) *Resolver {
	r := &Resolver{AppRoot: appRoot}
	for _, ext := range exts {
		r.exts = append(r.exts, strings.ToLower(strings.TrimPrefix(ext, ".")))
	}
	sort.Strings(r.exts)
	return r
}

// Dir returns the directory holding the resource files of loc.
func (r *Resolver) Dir(loc Location) string {
	switch l := loc.(type) {
	case StandaloneDirectory:
		return filepath.Clean(l.Path)
	case ConventionalResourcePath:
		base := filepath.Clean(l.BasePath)
		if r.AppRoot != "" {
			resources := filepath.Join(filepath.Clean(r.AppRoot), "Resources")
			if base == resources || strings.HasPrefix(base, resources+string(filepath.Separator)) {
				return base
			}
		}
		return filepath.Join(base, ResourceSubdir)
	default:
		return ""
	}
}

// Resolve lists the resource files of loc whose domain is selected by
// domains and whose locale is one of locales; a nil locales slice selects
// every locale. The listing is not recursive and sorted by file name. A
// missing directory yields no files. Two files holding the same domain and
// locale under different extensions are a data error, since only one of
// them could be rewritten.
func (r *Resolver) Resolve(loc Location, domains scope.Filter, locales []string) ([]File, error) {
	dir := r.Dir(loc)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, errkind.IO("listing", dir, err)
	}

	var files []File
	seen := make(map[[2]string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		domain, locale, ext, ok := SplitName(entry.Name())
		if !ok || !domains.Match(domain) || (locales != nil && !contains(locales, locale)) || !r.knownExt(ext) {
			continue
		}
		if prev, dup := seen[[2]string{domain, locale}]; dup {
			return nil, &errkind.DataError{
				Path: dir,
				Msg:  fmt.Sprintf("%s and %s hold the same domain and locale", prev, entry.Name()),
			}
		}
		seen[[2]string{domain, locale}] = entry.Name()
		files = append(files, File{
			Path:   filepath.Join(dir, entry.Name()),
			Domain: domain,
			Locale: locale,
			Ext:    ext,
		})
	}
	return files, nil
}

// Target returns the file to write for domain and locale in loc. An
// existing file with any known extension is reused, otherwise the file
// gets defaultExt.
func (r *Resolver) Target(loc Location, domain, locale, defaultExt string) string {
	dir := r.Dir(loc)
	for _, ext := range r.exts {
		path := filepath.Join(dir, FileName(domain, locale, ext))
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return filepath.Join(dir, FileName(domain, locale, defaultExt))
}

// FileName builds <domain>.<locale>.<ext>.
func FileName(domain, locale, ext string) string {
	return domain + "." + locale + "." + strings.TrimPrefix(ext, ".")
}

// SplitName decodes <domain>.<locale>.<ext>. Names that do not have
// exactly three non-empty dot-separated parts are rejected.
func SplitName(name string) (domain, locale, ext string, ok bool) {
	parts := strings.Split(name, ".")
	if len(parts) != 3 {
		return "", "", "", false
	}
	for _, p := range parts {
		if p == "" {
			return "", "", "", false
		}
	}
	return parts[0], parts[1], parts[2], true
}

func (r *Resolver) knownExt(ext string) bool {
	return contains(r.exts, strings.ToLower(ext))
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
