// Package footnote holds the per-verse footnote styling rules: an optional
// tab-separated table mapping verse references to ordered marker sequences
// for the quoted parts of a footnote.
package footnote

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// DefaultQuoteTag is the marker applied to quoted footnote parts when no
// rule covers the verse.
const DefaultQuoteTag = "fqa"

// Rules is the loaded rule table. A nil *Rules is valid and means "defaults
// for everything".
type Rules struct {
	byKey map[string][]string
}

// Load reads a footnote styling TSV. The first field of each row is a verse
// reference; the remaining fields are ordered marker names. Repeated
// references key the second and later occurrences as "REF[1]", "REF[2]", ...
// matching footnote order within the verse. A header row starting with
// "ref" is tolerated.
func Load(path string) (*Rules, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open footnote rules %s: %w", path, err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads footnote styling rows from r.
func Parse(r io.Reader) (*Rules, error) {
	rdr := csv.NewReader(r)
	rdr.Comma = '\t'
	rdr.FieldsPerRecord = -1

	rules := &Rules{byKey: make(map[string][]string)}
	lastRef := ""
	count := 0
	for {
		rec, err := rdr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read footnote rules: %w", err)
		}
		if len(rec) < 2 || rec[0] == "" {
			continue
		}
		if strings.EqualFold(rec[0], "ref") {
			continue
		}
		key := rec[0]
		if key == lastRef {
			count++
			key = fmt.Sprintf("%s[%d]", rec[0], count)
		} else {
			lastRef = rec[0]
			count = 0
		}
		tags := make([]string, 0, len(rec)-1)
		for _, tag := range rec[1:] {
			if tag = strings.TrimSpace(tag); tag != "" {
				tags = append(tags, tag)
			}
		}
		rules.byKey[key] = tags
	}
	return rules, nil
}

// Lookup returns the marker sequence for the n-th footnote (0-based) of a
// verse reference, or nil when no rule exists.
func (r *Rules) Lookup(verseRef string, n int) []string {
	if r == nil || r.byKey == nil {
		return nil
	}
	key := verseRef
	if n > 0 {
		key = fmt.Sprintf("%s[%d]", verseRef, n)
	}
	return r.byKey[key]
}

// Len returns the number of loaded rules.
func (r *Rules) Len() int {
	if r == nil {
		return 0
	}
	return len(r.byKey)
}
