// Package csvfile exports a translation store to a delimited table and
// reads such a table back.
//
// The table has one row per translation key:
//
//	Bundle<TAB>Domain<TAB>Key<TAB>fr<TAB>en
//	AcmeBundle<TAB>messages<TAB>nav.home<TAB>Accueil<TAB>Home
//
// Cells are not quoted. A line break inside a value is written as the two
// characters `\n`; real line breaks only terminate rows.
package csvfile

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/minios-linux/tabkit/errkind"
	"github.com/minios-linux/tabkit/keypath"
	"github.com/minios-linux/tabkit/scope"
	"github.com/minios-linux/tabkit/store"
)

// Column names of the mandatory columns. The group column is written as
// ColumnBundle; ColumnGroup is accepted on input as well.
const (
	ColumnBundle = "Bundle"
	ColumnGroup  = "Group"
	ColumnDomain = "Domain"
	ColumnKey    = "Key"
)

// DefaultDelimiter separates cells unless configured otherwise.
const DefaultDelimiter = "\t"

// newlineEscape stands for a line break inside a cell.
const newlineEscape = `\n`

// maxLine bounds a single row when reading.
const maxLine = 16 << 20

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ---------------------------------------------------------------------------
// Encoding
// ---------------------------------------------------------------------------

// EncodeOptions controls Encode.
type EncodeOptions struct {
	// Reference is the locale written right after the key column.
	Reference string
	// Locales are the additional locale columns, in order.
	Locales []string
	// Delimiter separates cells (DefaultDelimiter when empty).
	Delimiter string
	// OnlyMissing keeps only rows with at least one empty locale cell.
	OnlyMissing bool
}

// EncodeStats summarizes an export.
type EncodeStats struct {
	// Rows is the number of keys in the store.
	Rows int
	// Missing is the number of keys lacking at least one value.
	Missing int
	// Written is the number of data rows emitted.
	Written int
}

// Header returns the header cells for opts.
func Header(opts EncodeOptions) []string {
	header := []string{ColumnBundle, ColumnDomain, ColumnKey, opts.Reference}
	return append(header, opts.Locales...)
}

// Encode writes the header and one row per (group, domain, key) of st, in
// store order. Encoding the same store with the same options always
// produces the same bytes.
func Encode(w io.Writer, st *store.Store, opts EncodeOptions) (EncodeStats, error) {
	var stats EncodeStats
	sep := delimiter(opts.Delimiter)
	locales := append([]string{opts.Reference}, opts.Locales...)

	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(strings.Join(Header(opts), sep) + "\n"); err != nil {
		return stats, err
	}

	for _, g := range st.Groups() {
		for _, d := range g.Domains() {
			for _, key := range d.Keys() {
				row := []string{g.Name, d.Name, key}
				missing := false
				for _, locale := range locales {
					value, _ := d.Value(key, locale)
					cell := Escape(value)
					if cell == "" {
						missing = true
					}
					row = append(row, cell)
				}
				stats.Rows++
				if missing {
					stats.Missing++
				}
				if opts.OnlyMissing && !missing {
					continue
				}

				for i, cell := range row {
					if strings.Contains(cell, sep) {
						return stats, &errkind.DataError{
							Column: Header(opts)[i],
							Msg:    fmt.Sprintf("%s/%s/%s: value contains the delimiter %q, choose another separator", g.Name, d.Name, key, sep),
						}
					}
				}
				if _, err := bw.WriteString(strings.Join(row, sep) + "\n"); err != nil {
					return stats, err
				}
				stats.Written++
			}
		}
	}
	return stats, bw.Flush()
}

// WriteFile encodes st into path, replacing any existing file.
func WriteFile(path string, st *store.Store, opts EncodeOptions) (EncodeStats, error) {
	var buf bytes.Buffer
	stats, err := Encode(&buf, st, opts)
	if err != nil {
		return stats, err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return stats, errkind.IO("writing", path, err)
	}
	return stats, nil
}

// Escape replaces line breaks with `\n` and drops one trailing escape.
func Escape(value string) string {
	s := strings.ReplaceAll(value, "\r\n", newlineEscape)
	s = strings.ReplaceAll(s, "\n", newlineEscape)
	return strings.TrimSuffix(s, newlineEscape)
}

// Unescape turns `\n` back into line breaks.
func Unescape(cell string) string {
	return strings.ReplaceAll(cell, newlineEscape, "\n")
}

// ---------------------------------------------------------------------------
// Decoding
// ---------------------------------------------------------------------------

// DecodeOptions controls Decode.
type DecodeOptions struct {
	// Delimiter separates cells (DefaultDelimiter when empty).
	Delimiter string
	// Groups and Domains select rows; see scope.Filter.
	Groups  scope.Filter
	Domains scope.Filter
	// Locales are the columns to read. Each must be present in the header.
	Locales []string
	// Path is used in error messages only.
	Path string
}

// Decode reads a table and returns the non-empty values of the selected
// rows and locales, in row order. Blank lines are skipped, so an empty
// input yields an empty store.
func Decode(r io.Reader, opts DecodeOptions) (*store.Store, error) {
	sep := delimiter(opts.Delimiter)
	st := store.New()

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLine)

	var cols *columns
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Bytes()
		if lineNo == 1 {
			line = bytes.TrimPrefix(line, utf8BOM)
		}
		if len(line) == 0 {
			continue
		}
		row := strings.Split(string(line), sep)

		if cols == nil {
			c, err := readHeader(row, opts)
			if err != nil {
				return nil, err
			}
			cols = c
			continue
		}

		group, err := cols.cell(row, cols.group, lineNo, opts.Path)
		if err != nil {
			return nil, err
		}
		domain, err := cols.cell(row, cols.domain, lineNo, opts.Path)
		if err != nil {
			return nil, err
		}
		if !opts.Groups.Match(group) || !opts.Domains.Match(domain) {
			continue
		}
		if len(opts.Locales) == 0 {
			continue
		}
		key, err := cols.cell(row, cols.key, lineNo, opts.Path)
		if err != nil {
			return nil, err
		}
		if _, err := keypath.Parse(key); err != nil {
			return nil, &errkind.DataError{Path: opts.Path, Line: lineNo, Column: ColumnKey, Msg: err.Error()}
		}
		for _, locale := range opts.Locales {
			cell, err := cols.cell(row, cols.locales[locale], lineNo, opts.Path)
			if err != nil {
				return nil, err
			}
			// Blank cells mean "no translation".
			if value := Unescape(cell); value != "" {
				st.Fold(group, domain, key, locale, value)
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errkind.IO("reading", opts.Path, err)
	}
	return st, nil
}

// ReadFile decodes the table stored at path.
func ReadFile(path string, opts DecodeOptions) (*store.Store, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, errkind.NotFound(path, err)
		}
		return nil, errkind.IO("opening", path, err)
	}
	defer f.Close()

	if opts.Path == "" {
		opts.Path = path
	}
	return Decode(f, opts)
}

// columns maps column roles to cell indexes.
type columns struct {
	names   []string
	group   int
	domain  int
	key     int
	locales map[string]int
}

func readHeader(row []string, opts DecodeOptions) (*columns, error) {
	index := make(map[string]int, len(row))
	for i, name := range row {
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}

	c := &columns{names: row, locales: make(map[string]int, len(opts.Locales))}
	groupIdx, ok := index[ColumnBundle]
	if !ok {
		groupIdx, ok = index[ColumnGroup]
	}
	if !ok {
		return nil, &errkind.DataError{Path: opts.Path, Line: 1, Column: ColumnBundle, Msg: "mandatory column is missing"}
	}
	c.group = groupIdx
	for _, m := range []struct {
		name string
		dst  *int
	}{
		{ColumnDomain, &c.domain},
		{ColumnKey, &c.key},
	} {
		i, ok := index[m.name]
		if !ok {
			return nil, &errkind.DataError{Path: opts.Path, Line: 1, Column: m.name, Msg: "mandatory column is missing"}
		}
		*m.dst = i
	}
	for _, locale := range opts.Locales {
		i, ok := index[locale]
		if !ok {
			return nil, &errkind.DataError{Path: opts.Path, Line: 1, Column: locale, Msg: "locale column is missing"}
		}
		c.locales[locale] = i
	}
	return c, nil
}

func (c *columns) cell(row []string, i, lineNo int, path string) (string, error) {
	if i >= len(row) {
		return "", &errkind.DataError{
			Path:   path,
			Line:   lineNo,
			Column: c.names[i],
			Msg:    fmt.Sprintf("missing column value (row has %d cells, header has %d)", len(row), len(c.names)),
		}
	}
	return row[i], nil
}

func delimiter(d string) string {
	if d == "" {
		return DefaultDelimiter
	}
	return d
}
