// Package writer rewrites resource files from a merged translation store.
package writer

import (
	"crypto/sha1"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/minios-linux/tabkit/errkind"
	"github.com/minios-linux/tabkit/finder"
	"github.com/minios-linux/tabkit/format"
	"github.com/minios-linux/tabkit/keypath"
	"github.com/minios-linux/tabkit/store"
)

// Result describes one resource file handled by Write.
type Result struct {
	Group   string
	Domain  string
	Locale  string
	Path    string
	Entries int
	// Changed is true when the file content differs from before the write
	// (including files that did not exist).
	Changed bool
}

// Writer serializes domains back into resource files.
type Writer struct {
	resolver   *finder.Resolver
	codecs     *format.Registry
	defaultExt string
	// DryRun computes results without touching the filesystem.
	DryRun bool
}

// New returns a Writer. Files that do not exist yet get defaultExt.
func New(resolver *finder.Resolver, codecs *format.Registry, defaultExt string) *Writer {
	return &Writer{resolver: resolver, codecs: codecs, defaultExt: defaultExt}
}

// Write rewrites, for every group and domain of st and every locale, the
// file <domain>.<locale>.<ext> in the group's resource directory. Keys are
// written in the store's key order. A locale without values is skipped
// unless its file already exists. Every group of st must be in groups.
func (w *Writer) Write(st *store.Store, groups map[string]finder.Group, locales []string) ([]Result, error) {
	var results []Result
	for _, g := range st.Groups() {
		group, ok := groups[g.Name]
		if !ok {
			return results, &errkind.DataError{Column: "Bundle", Msg: fmt.Sprintf("unknown group %q", g.Name)}
		}
		for _, d := range g.Domains() {
			for _, locale := range locales {
				res, err := w.WriteDomain(group, d.Name, locale, d.Flat(locale))
				if err != nil {
					return results, err
				}
				if res.Path != "" {
					results = append(results, res)
				}
			}
		}
	}
	return results, nil
}

// WriteDomain writes one domain/locale file of group from flat key/value
// pairs. It returns a zero Result when there is nothing to write.
func (w *Writer) WriteDomain(group finder.Group, domain, locale string, flat []store.KeyValue) (Result, error) {
	path := w.resolver.Target(group.Location, domain, locale, w.defaultExt)
	before, existed, err := checksum(path)
	if err != nil {
		return Result{}, err
	}
	if len(flat) == 0 && !existed {
		return Result{}, nil
	}

	entries := make([]keypath.Entry, 0, len(flat))
	for _, kv := range flat {
		p, err := keypath.Parse(kv.Key)
		if err != nil {
			return Result{}, fmt.Errorf("%s/%s/%s: %w", group.Name, domain, kv.Key, err)
		}
		entries = append(entries, keypath.Entry{Path: p, Value: kv.Value})
	}
	tree, err := keypath.Unflatten(entries)
	if err != nil {
		return Result{}, fmt.Errorf("%s/%s.%s: %w", group.Name, domain, locale, err)
	}

	codec, err := w.codecs.MustGet(filepath.Ext(path))
	if err != nil {
		return Result{}, err
	}
	data, err := codec.Serialize(tree)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", path, err)
	}

	res := Result{Group: group.Name, Domain: domain, Locale: locale, Path: path, Entries: len(entries)}
	if w.DryRun {
		res.Changed = !existed || sha1.Sum(data) != before
		return res, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return Result{}, errkind.IO("creating directory for", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return Result{}, errkind.IO("writing", path, err)
	}
	after, _, err := checksum(path)
	if err != nil {
		return Result{}, err
	}
	res.Changed = !existed || after != before
	return res, nil
}

// checksum returns the sha1 of the file at path and whether it exists.
func checksum(path string) ([sha1.Size]byte, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return [sha1.Size]byte{}, false, nil
		}
		return [sha1.Size]byte{}, false, errkind.IO("reading", path, err)
	}
	return sha1.Sum(data), true, nil
}
