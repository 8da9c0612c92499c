// Package table ingests the BSB tables dataset: tab-separated rows (plain,
// xz-compressed, or a SQLite database) become ordered verse fragments
// grouped by book.
package table

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ulikunitz/xz"

	converrors "github.com/BSB-publishing/bsb2usfm/core/errors"
	"github.com/BSB-publishing/bsb2usfm/core/ref"
	"github.com/BSB-publishing/bsb2usfm/internal/logging"
)

// SourceRow is one dataset record as read, before merging.
type SourceRow struct {
	Line int // 1-based position in the dataset

	HebSort int // Hebrew ordering sort key
	GrkSort int // Greek ordering sort key
	BSBSort int // canonical (output) ordering sort key; -1 when absent

	VerseID  string // verse reference text; empty continues the prior verse
	Language string

	Heading   string // heading markup column
	CrossRefs string // cross-reference markup column
	Par       string // verse-paragraph markup column
	RefText   string // psalm heading reference text column
	Text      string // rendered verse text
	PNC       string // closing markup, first column
	PNC2      string // closing markup, second column
	Footnotes string // footnote text
	EndText   string // closing markup, final column
}

// Segment is the per-row payload of a merged fragment, in row order.
type Segment struct {
	Heading   string
	CrossRefs string
	Par       string
	RefText   string
	Text      string
	PNC       string
	PNC2      string
	Footnote  string
	EndText   string
}

// Fragment is one logical verse: all consecutive rows sharing a verse
// reference, merged in canonical sort-key order.
type Fragment struct {
	Ref      ref.Ref
	Sort     int // BSB sort key of the first row
	Segments []Segment
}

// Options controls ingestion.
type Options struct {
	// Books is an allow-list of book codes; empty means all known books.
	// Rows for excluded books are dropped before any translation work.
	Books []string
}

// Report summarizes an ingestion run. Skipped carries one typed error per
// rejected row, each wrapping the sentinel that caused the rejection.
type Report struct {
	Rows      int
	Fragments int
	Skipped   []*converrors.RowError
}

// column header names, compared after trimming and lowercasing. The dataset
// ships them with inconsistent spacing (" BSB version ").
const (
	colHebSort  = "heb sort"
	colGrkSort  = "grk sort"
	colBSBSort  = "bsb sort"
	colLanguage = "language"
	colVerseID  = "verseid"
	colHeading  = "hdg"
	colCrossRef = "crossref"
	colPar      = "par"
	colRefText  = "reftext"
	colText     = "bsb version"
	colPNC      = "pnc"
	colPNC2     = "pnc2"
	colFootnote = "footnotes"
	colEndText  = "end text"
)

// Positional fallbacks for the two columns the dataset leaves unnamed.
const (
	idxRefText = 17
	idxPNC2    = 20
)

// IngestFile ingests a dataset from path. ".xz" input is decompressed
// transparently; ".db" and ".sqlite" input is read through the SQLite
// driver.
func IngestFile(path string, opts Options) (map[string][]Fragment, *Report, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return IngestSQLite(path, opts)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, converrors.Wrapf(err, "open dataset %s", path)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.EqualFold(filepath.Ext(path), ".xz") {
		xzr, err := xz.NewReader(f)
		if err != nil {
			return nil, nil, converrors.Wrapf(err, "open xz dataset %s", path)
		}
		r = xzr
	}
	return Ingest(r, opts)
}

// Ingest reads tab-separated dataset rows from r. The first non-comment row
// must be the header; columns are resolved by name and unknown columns are
// ignored.
func Ingest(r io.Reader, opts Options) (map[string][]Fragment, *Report, error) {
	rdr := csv.NewReader(r)
	rdr.Comma = '\t'
	rdr.FieldsPerRecord = -1
	rdr.LazyQuotes = true

	var cols map[string]int
	b := newBuilder(opts)
	line := 0
	for {
		rec, err := rdr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, converrors.Wrap(err, "read dataset")
		}
		line++
		if cols == nil {
			if len(rec) > 0 && strings.HasPrefix(rec[0], "//") {
				continue
			}
			cols = headerIndex(rec)
			if _, ok := cols[colVerseID]; !ok {
				return nil, nil, converrors.Wrapf(converrors.ErrInvalidInput, "dataset header has no %q column", "VerseId")
			}
			continue
		}
		b.addRow(rowFromRecord(rec, cols, line))
	}
	return b.finish()
}

// headerIndex maps normalized header names to field positions.
func headerIndex(rec []string) map[string]int {
	cols := make(map[string]int, len(rec))
	for i, name := range rec {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	// The dataset leaves two columns unnamed; fall back to their documented
	// positions when the header doesn't name them.
	if _, ok := cols[colRefText]; !ok {
		cols[colRefText] = idxRefText
	}
	if _, ok := cols[colPNC2]; !ok {
		cols[colPNC2] = idxPNC2
	}
	return cols
}

func rowFromRecord(rec []string, cols map[string]int, line int) SourceRow {
	get := func(name string) string {
		i, ok := cols[name]
		if !ok || i < 0 || i >= len(rec) {
			return ""
		}
		return rec[i]
	}
	return SourceRow{
		Line:      line,
		HebSort:   parseSort(get(colHebSort)),
		GrkSort:   parseSort(get(colGrkSort)),
		BSBSort:   parseSort(get(colBSBSort)),
		VerseID:   strings.TrimSpace(get(colVerseID)),
		Language:  strings.TrimSpace(get(colLanguage)),
		Heading:   get(colHeading),
		CrossRefs: get(colCrossRef),
		Par:       get(colPar),
		RefText:   get(colRefText),
		Text:      get(colText),
		PNC:       get(colPNC),
		PNC2:      get(colPNC2),
		Footnotes: get(colFootnote),
		EndText:   get(colEndText),
	}
}

// parseSort parses a sort-key field; -1 means "no key" and is exempt from
// the monotonicity check.
func parseSort(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return -1
	}
	return n
}

// builder accumulates rows into per-book fragment sequences.
type builder struct {
	allowed  map[string]bool // nil = all books
	books    map[string][]Fragment
	report   *Report
	current  *Fragment // fragment receiving continuation rows, nil when skipping
	quiet    bool      // true while dropping an allow-list-excluded book
	lastSort map[string]int
}

func newBuilder(opts Options) *builder {
	var allowed map[string]bool
	if len(opts.Books) > 0 {
		allowed = make(map[string]bool, len(opts.Books))
		for _, b := range opts.Books {
			allowed[strings.ToUpper(b)] = true
		}
	}
	return &builder{
		allowed:  allowed,
		books:    make(map[string][]Fragment),
		report:   &Report{},
		lastSort: make(map[string]int),
	}
}

func (b *builder) skip(row SourceRow, reason string, cause error) {
	b.current = nil
	b.report.Skipped = append(b.report.Skipped, &converrors.RowError{
		Line:    row.Line,
		VerseID: row.VerseID,
		Reason:  reason,
		Err:     cause,
	})
	logging.RowSkipped(row.Line, row.VerseID, reason)
}

func (b *builder) addRow(row SourceRow) {
	b.report.Rows++

	if row.VerseID == "" {
		// Continuation of the previous verse.
		if b.current == nil {
			if !b.quiet {
				b.skip(row, "continuation row with no preceding verse", nil)
			}
			return
		}
		b.current.Segments = append(b.current.Segments, segmentFromRow(row))
		return
	}

	r, err := ref.Parse(row.VerseID)
	if err != nil || !ref.KnownBook(r.Book) {
		b.skip(row, "unknown book in verse reference", converrors.ErrUnknownBook)
		return
	}

	if b.allowed != nil && !b.allowed[r.Book] {
		// Excluded by the allow-list; drop silently, including
		// continuation rows, before any translation work happens.
		b.current = nil
		b.quiet = true
		return
	}
	b.quiet = false

	if last, ok := b.lastSort[r.Book]; ok && row.BSBSort >= 0 && row.BSBSort < last {
		b.skip(row, fmt.Sprintf("sort key %d below previous %d", row.BSBSort, last), converrors.ErrSortOrder)
		return
	}
	if row.BSBSort >= 0 {
		b.lastSort[r.Book] = row.BSBSort
	}

	b.books[r.Book] = append(b.books[r.Book], Fragment{
		Ref:      r,
		Sort:     row.BSBSort,
		Segments: []Segment{segmentFromRow(row)},
	})
	b.current = &b.books[r.Book][len(b.books[r.Book])-1]
	b.report.Fragments++
	logging.Debug("row ingested", "line", row.Line, "verse_id", row.VerseID, "sort", row.BSBSort)
}

func (b *builder) finish() (map[string][]Fragment, *Report, error) {
	if b.report.Fragments == 0 {
		return nil, b.report, converrors.Wrap(converrors.ErrEmptyDataset, "no usable rows in dataset")
	}
	return b.books, b.report, nil
}

func segmentFromRow(row SourceRow) Segment {
	return Segment{
		Heading:   row.Heading,
		CrossRefs: row.CrossRefs,
		Par:       row.Par,
		RefText:   row.RefText,
		Text:      row.Text,
		PNC:       row.PNC,
		PNC2:      row.PNC2,
		Footnote:  row.Footnotes,
		EndText:   row.EndText,
	}
}
