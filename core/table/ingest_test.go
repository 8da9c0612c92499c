package table

import (
	"errors"
	"strings"
	"testing"

	converrors "github.com/BSB-publishing/bsb2usfm/core/errors"
)

const testHeader = "Heb Sort\tBSB Sort\tLanguage\tVerseId\tHdg\tCrossref\tPar\tReftext\t BSB version \tpnc\tpnc2\tFootnotes\tEnd text"

func row(fields ...string) string {
	return strings.Join(fields, "\t")
}

func ingestString(t *testing.T, data string, opts Options) (map[string][]Fragment, *Report, error) {
	t.Helper()
	return Ingest(strings.NewReader(data), opts)
}

func TestIngestMergesContinuationRows(t *testing.T) {
	data := strings.Join([]string{
		testHeader,
		row("1", "1", "Hebrew", "Genesis 1:1", "<p class=|hdg|>The Creation", "", "<p class=|reg|>", "", "In the beginning God created", "", "", "", ""),
		row("2", "2", "Hebrew", "", "", "", "", "", " the heavens", "", "", "", ""),
		row("3", "3", "Hebrew", "", "", "", "", "", " and the earth.", "", "", "", ""),
	}, "\n")

	books, rep, err := ingestString(t, data, Options{})
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if rep.Rows != 3 || rep.Fragments != 1 {
		t.Errorf("report = %+v, want 3 rows, 1 fragment", rep)
	}

	frags := books["GEN"]
	if len(frags) != 1 {
		t.Fatalf("GEN fragments = %d, want 1", len(frags))
	}
	f := frags[0]
	if got := f.Ref.String(); got != "GEN 1:1" {
		t.Errorf("fragment ref = %q", got)
	}
	if len(f.Segments) != 3 {
		t.Fatalf("segments = %d, want 3", len(f.Segments))
	}
	if f.Segments[0].Heading == "" || f.Segments[1].Heading != "" {
		t.Error("heading should carry only on the first segment")
	}
	if f.Segments[2].Text != " and the earth." {
		t.Errorf("segment text = %q", f.Segments[2].Text)
	}
}

func TestIngestCommentAndHeader(t *testing.T) {
	data := strings.Join([]string{
		"// BSB tables export",
		testHeader,
		row("1", "1", "Hebrew", "Genesis 1:1", "", "", "", "", "text", "", "", "", ""),
	}, "\n")

	books, _, err := ingestString(t, data, Options{})
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if len(books["GEN"]) != 1 {
		t.Errorf("GEN fragments = %d, want 1", len(books["GEN"]))
	}
}

func TestIngestMissingVerseIDColumn(t *testing.T) {
	data := "Heb Sort\tText\n1\thello\n"
	_, _, err := ingestString(t, data, Options{})
	if !errors.Is(err, converrors.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestIngestSkipsUnknownBook(t *testing.T) {
	data := strings.Join([]string{
		testHeader,
		row("1", "1", "Hebrew", "Hezekiah 1:1", "", "", "", "", "bogus", "", "", "", ""),
		row("2", "2", "Hebrew", "Genesis 1:1", "", "", "", "", "text", "", "", "", ""),
	}, "\n")

	books, rep, err := ingestString(t, data, Options{})
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if len(books["GEN"]) != 1 {
		t.Errorf("GEN fragments = %d, want 1", len(books["GEN"]))
	}
	if len(rep.Skipped) != 1 || rep.Skipped[0].Line != 2 {
		t.Errorf("skipped = %+v, want line 2 only", rep.Skipped)
	}
	if !errors.Is(rep.Skipped[0], converrors.ErrUnknownBook) {
		t.Errorf("skip error = %v, want ErrUnknownBook", rep.Skipped[0])
	}
}

func TestIngestSkipsSortRegression(t *testing.T) {
	data := strings.Join([]string{
		testHeader,
		row("1", "10", "Hebrew", "Genesis 1:1", "", "", "", "", "first", "", "", "", ""),
		row("2", "5", "Hebrew", "Genesis 1:2", "", "", "", "", "out of order", "", "", "", ""),
		row("3", "11", "Hebrew", "Genesis 1:3", "", "", "", "", "third", "", "", "", ""),
	}, "\n")

	books, rep, err := ingestString(t, data, Options{})
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if len(books["GEN"]) != 2 {
		t.Fatalf("GEN fragments = %d, want 2", len(books["GEN"]))
	}
	if len(rep.Skipped) != 1 {
		t.Fatalf("skipped = %+v, want 1", rep.Skipped)
	}
	if !errors.Is(rep.Skipped[0], converrors.ErrSortOrder) {
		t.Errorf("skip error = %v, want ErrSortOrder", rep.Skipped[0])
	}
	if books["GEN"][1].Ref.Verse != 3 {
		t.Errorf("second fragment = %s", books["GEN"][1].Ref.String())
	}
}

func TestIngestContinuationAfterSkipIsDropped(t *testing.T) {
	data := strings.Join([]string{
		testHeader,
		row("1", "1", "Hebrew", "Hezekiah 1:1", "", "", "", "", "bogus", "", "", "", ""),
		row("2", "2", "Hebrew", "", "", "", "", "", "orphan continuation", "", "", "", ""),
	}, "\n")

	_, rep, err := ingestString(t, data, Options{})
	if !errors.Is(err, converrors.ErrEmptyDataset) {
		t.Fatalf("err = %v, want ErrEmptyDataset", err)
	}
	if len(rep.Skipped) != 2 {
		t.Fatalf("skipped = %+v, want both rows", rep.Skipped)
	}
	// The orphan continuation has no sentinel of its own.
	var re *converrors.RowError
	if !errors.As(rep.Skipped[1], &re) || !errors.Is(re, converrors.ErrInvalidInput) {
		t.Errorf("skip error = %v, want RowError wrapping ErrInvalidInput", rep.Skipped[1])
	}
}

func TestIngestAllowListDropsQuietly(t *testing.T) {
	data := strings.Join([]string{
		testHeader,
		row("1", "1", "Hebrew", "Genesis 1:1", "", "", "", "", "kept", "", "", "", ""),
		row("2", "2", "Hebrew", "Exodus 1:1", "", "", "", "", "dropped", "", "", "", ""),
		row("3", "3", "Hebrew", "", "", "", "", "", "dropped continuation", "", "", "", ""),
	}, "\n")

	books, rep, err := ingestString(t, data, Options{Books: []string{"gen"}})
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if len(books) != 1 || len(books["GEN"]) != 1 {
		t.Errorf("books = %v, want GEN only", books)
	}
	// Allow-list drops are expected, not defects: no skip entries.
	if len(rep.Skipped) != 0 {
		t.Errorf("skipped = %+v, want none", rep.Skipped)
	}
}

func TestIngestEmptyDataset(t *testing.T) {
	_, _, err := ingestString(t, testHeader+"\n", Options{})
	if !errors.Is(err, converrors.ErrEmptyDataset) {
		t.Fatalf("err = %v, want ErrEmptyDataset", err)
	}
}

func TestHeaderIndexPositionalFallback(t *testing.T) {
	// A header without the two unnamed columns falls back to their
	// documented positions.
	cols := headerIndex([]string{"VerseId", "Hdg"})
	if cols[colRefText] != idxRefText {
		t.Errorf("reftext index = %d, want %d", cols[colRefText], idxRefText)
	}
	if cols[colPNC2] != idxPNC2 {
		t.Errorf("pnc2 index = %d, want %d", cols[colPNC2], idxPNC2)
	}
}

func TestParseSort(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"42", 42},
		{" 7 ", 7},
		{"", -1},
		{"x", -1},
		{"-3", -1},
	}
	for _, tt := range tests {
		if got := parseSort(tt.in); got != tt.want {
			t.Errorf("parseSort(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
