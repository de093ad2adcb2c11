// Package lockfile implements .tabkit.lock: a record of the reference text
// each key had when it was last exported. Import compares it with the
// current reference files to spot translations made from outdated text.
//
// The lock file is stored alongside .tabkit.yaml.
package lockfile

import (
	"crypto/md5"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/minios-linux/tabkit/errkind"
	"github.com/minios-linux/tabkit/store"
)

// FileName is the default lock file name.
const FileName = ".tabkit.lock"

// Version is the lock file format version.
const Version = 1

// ---------------------------------------------------------------------------
// Types
// ---------------------------------------------------------------------------

// LockFile represents the .tabkit.lock file structure.
type LockFile struct {
	Version   int                          `yaml:"version"`
	Reference string                       `yaml:"reference,omitempty"`
	Checksums map[string]map[string]string `yaml:"checksums"` // group/domain -> key -> md5

	path string
}

// ---------------------------------------------------------------------------
// Loading and saving
// ---------------------------------------------------------------------------

// Load reads the lock file from dir. A missing file yields an empty lock.
func Load(dir string) (*LockFile, error) {
	path := filepath.Join(dir, FileName)
	lf := &LockFile{
		Version:   Version,
		Checksums: make(map[string]map[string]string),
		path:      path,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return lf, nil
		}
		return nil, errkind.IO("reading", path, err)
	}

	if err := yaml.Unmarshal(data, lf); err != nil {
		return nil, &errkind.DataError{Path: path, Msg: err.Error()}
	}
	if lf.Version != Version {
		return nil, &errkind.DataError{Path: path, Msg: fmt.Sprintf("unsupported lock file version %d", lf.Version)}
	}
	lf.path = path
	if lf.Checksums == nil {
		lf.Checksums = make(map[string]map[string]string)
	}

	return lf, nil
}

// Save writes the lock file to disk.
func (lf *LockFile) Save() error {
	if lf.path == "" {
		return fmt.Errorf("lock file path not set")
	}

	data, err := yaml.Marshal(lf)
	if err != nil {
		return fmt.Errorf("marshaling lock file: %w", err)
	}
	if err := os.WriteFile(lf.path, data, 0644); err != nil {
		return errkind.IO("writing", lf.path, err)
	}
	return nil
}

// Path returns the lock file path.
func (lf *LockFile) Path() string {
	return lf.path
}

// ---------------------------------------------------------------------------
// Checksum operations
// ---------------------------------------------------------------------------

// Hash computes the MD5 hex digest of a string.
func Hash(s string) string {
	return fmt.Sprintf("%x", md5.Sum([]byte(s)))
}

// Target builds the checksum bucket name of a domain.
func Target(group, domain string) string {
	return group + "/" + domain
}

// Record stores the reference text of every key in st. Switching to
// another reference locale discards everything recorded so far.
func (lf *LockFile) Record(st *store.Store, reference string) {
	if lf.Reference != reference {
		lf.Reference = reference
		lf.Checksums = make(map[string]map[string]string)
	}
	for _, g := range st.Groups() {
		for _, d := range g.Domains() {
			entries := make(map[string]string, len(d.Keys()))
			for _, key := range d.Keys() {
				entries[key], _ = d.Value(key, reference)
			}
			lf.UpdateBatch(Target(g.Name, d.Name), entries)
		}
	}
}

// UpdateBatch records checksums for multiple keys at once.
func (lf *LockFile) UpdateBatch(target string, entries map[string]string) {
	if lf.Checksums[target] == nil {
		lf.Checksums[target] = make(map[string]string)
	}
	for key, content := range entries {
		lf.Checksums[target][key] = Hash(content)
	}
}

// Stale returns, sorted, the keys of current (key -> reference text) that
// were recorded with a different text. Keys never recorded are not stale.
func (lf *LockFile) Stale(target string, current map[string]string) []string {
	recorded := lf.Checksums[target]
	var stale []string
	for key, content := range current {
		if old, ok := recorded[key]; ok && old != Hash(content) {
			stale = append(stale, key)
		}
	}
	sort.Strings(stale)
	return stale
}

// ---------------------------------------------------------------------------
// Stats
// ---------------------------------------------------------------------------

// Stats returns the number of targets and total keys in the lock file.
func (lf *LockFile) Stats() (targets, keys int) {
	targets = len(lf.Checksums)
	for _, m := range lf.Checksums {
		keys += len(m)
	}
	return
}

// Targets returns the sorted list of targets.
func (lf *LockFile) Targets() []string {
	targets := make([]string, 0, len(lf.Checksums))
	for t := range lf.Checksums {
		targets = append(targets, t)
	}
	sort.Strings(targets)
	return targets
}
