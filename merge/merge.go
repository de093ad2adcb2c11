// Package merge folds translations imported from a table into the
// translations currently stored in resource files.
package merge

import (
	"github.com/minios-linux/tabkit/store"
)

// Report counts what a merge did, per (group, domain, key, locale).
type Report struct {
	// Added values exist only in the import.
	Added int
	// Updated values exist in both stores with different values.
	Updated int
	// Unchanged values exist in both stores with the same value.
	Unchanged int
	// Kept values exist only in the current store.
	Kept int
}

// Changed reports whether the import brings anything new.
func (r Report) Changed() bool {
	return r.Added > 0 || r.Updated > 0
}

// Merge returns a new store holding every value of current, overridden by
// every value of imported.
// - Values present in both take the imported value.
// - Values only in current are kept unchanged.
// - Values only in imported are added.
// Groups and domains keep current's order, followed by those that only
// appear in imported. Keys of every domain are sorted. Neither input is
// modified.
func Merge(current, imported *store.Store) (*store.Store, Report) {
	var report Report
	result := store.New()

	current.Each(func(e store.Entry) {
		result.FoldEntry(e)
		if _, ok := imported.Value(e.Group, e.Domain, e.Key, e.Locale); !ok {
			report.Kept++
		}
	})

	imported.Each(func(e store.Entry) {
		existing, ok := current.Value(e.Group, e.Domain, e.Key, e.Locale)
		switch {
		case !ok:
			report.Added++
		case existing != e.Value:
			report.Updated++
		default:
			report.Unchanged++
		}
		result.FoldEntry(e)
	})

	SortKeys(result)
	return result, report
}

// SortKeys sorts the keys of every domain of st lexicographically, so
// rewritten files come out in a stable, diff-friendly order.
func SortKeys(st *store.Store) {
	for _, g := range st.Groups() {
		for _, d := range g.Domains() {
			d.SortKeys()
		}
	}
}
