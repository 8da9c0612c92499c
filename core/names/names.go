// Package names resolves book display names, combining a built-in default
// table with an optional BookNames.xml override file.
package names

import (
	"fmt"
	"os"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"

	"github.com/BSB-publishing/bsb2usfm/core/ref"
)

// Name is the long/short/abbreviated display-name triple for one book.
type Name struct {
	Long  string
	Short string
	Abbr  string
}

// Table resolves book codes to display names. Lookups never fail: codes
// absent from the override file resolve to defaults, unknown codes resolve
// to the code itself.
type Table struct {
	overrides map[string]Name
}

// specialTitles lists books whose two-line title page differs from a plain
// split of the long name.
var specialTitles = map[string][2]string{
	"ECC": {"The Preacher, or", "Ecclesiastes"},
	"SNG": {"The Song of Solomon, or", "Song of Songs"},
	"ACT": {"The Acts of the Apostles", "Acts"},
	"REV": {"The Revelation to John", "Revelation"},
}

// bookXPath selects book entries in a BookNames.xml document.
var bookXPath = xpath.MustCompile("//book[@code]")

// Default returns a table with no overrides.
func Default() *Table {
	return &Table{}
}

// Load reads a BookNames.xml override file. Entries missing a long, short,
// or abbr attribute fall back per-field to the defaults.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open book names %s: %w", path, err)
	}
	defer f.Close()

	doc, err := xmlquery.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse book names %s: %w", path, err)
	}

	t := &Table{overrides: make(map[string]Name)}
	for _, n := range xmlquery.QuerySelectorAll(doc, bookXPath) {
		code := strings.ToUpper(n.SelectAttr("code"))
		if code == "" {
			continue
		}
		t.overrides[code] = Name{
			Long:  n.SelectAttr("long"),
			Short: n.SelectAttr("short"),
			Abbr:  n.SelectAttr("abbr"),
		}
	}
	return t, nil
}

// Resolve returns the display names for a book code.
func (t *Table) Resolve(code string) Name {
	code = strings.ToUpper(code)
	def := Name{Long: ref.BookName(code), Short: ref.BookName(code), Abbr: code}
	if t == nil || t.overrides == nil {
		return def
	}
	o, ok := t.overrides[code]
	if !ok {
		return def
	}
	if o.Long == "" {
		o.Long = def.Long
	}
	if o.Short == "" {
		o.Short = def.Short
	}
	if o.Abbr == "" {
		o.Abbr = def.Abbr
	}
	return o
}

// Titles returns the two title-page lines (mt2, mt1) for a book: a special
// pairing for a few books, otherwise the long name split at its last space,
// otherwise the long name twice.
func (t *Table) Titles(code string) (string, string) {
	if pair, ok := specialTitles[strings.ToUpper(code)]; ok {
		return pair[0], pair[1]
	}
	long := t.Resolve(code).Long
	if i := strings.LastIndex(long, " "); i >= 0 {
		// Ordinal prefixes ("1 Samuel") are part of the name, not a
		// title line of their own.
		if prefix := long[:i]; strings.TrimLeft(prefix, "0123456789") != "" {
			return prefix, long[i+1:]
		}
	}
	return long, long
}
