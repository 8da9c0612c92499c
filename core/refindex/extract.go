// Package refindex scans generated USFM documents and extracts their inline
// scripture references into a cross-reference index, plus the per-footnote
// marker sequences that feed the footnote styling table.
package refindex

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"

	converrors "github.com/BSB-publishing/bsb2usfm/core/errors"
	"github.com/BSB-publishing/bsb2usfm/core/ref"
	"github.com/BSB-publishing/bsb2usfm/internal/logging"
)

var (
	idRE     = regexp.MustCompile(`^\\id\s+(\S+)`)
	cRE      = regexp.MustCompile(`^\\c\s+(\d+)`)
	inlineRE = regexp.MustCompile(`\\v\s+(\d+)|\\ref\s(.*?)\\ref\*|\\f\s+\S+\s(.*?)\\f\*`)
	refRE    = regexp.MustCompile(`\\ref\s(.*?)\\ref\*`)
	// Only opening markers count; a closed span like \fq ...\fq* is one
	// quoted part, not two.
	markerRE = regexp.MustCompile(`\\(fqa|fq)\s`)
)

// FootnoteMarkers is one footnote's quoted-part marker sequence, keyed by
// the verse it annotates. Writing these back out as a tab-separated table
// produces valid footnote styling rules.
type FootnoteMarkers struct {
	Ref     string
	Markers []string
}

// Result aggregates extraction over one or more documents. Skipped holds one
// error per reference payload that could not be resolved to a target.
type Result struct {
	refs    map[string]ref.Ref
	Notes   []FootnoteMarkers
	Skipped []error
}

// NewResult creates an empty result.
func NewResult() *Result {
	return &Result{refs: make(map[string]ref.Ref)}
}

// Refs returns the deduplicated reference targets in canonical order.
func (res *Result) Refs() []ref.Ref {
	out := make([]ref.Ref, 0, len(res.refs))
	for _, r := range res.refs {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return ref.Compare(out[i], out[j]) < 0 })
	return out
}

// Merge folds other into res, keeping document order for footnote entries.
func (res *Result) Merge(other *Result) {
	for k, r := range other.refs {
		res.refs[k] = r
	}
	res.Notes = append(res.Notes, other.Notes...)
	res.Skipped = append(res.Skipped, other.Skipped...)
}

// WriteIndex writes the index, one canonical reference per line.
func (res *Result) WriteIndex(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, r := range res.Refs() {
		if _, err := fmt.Fprintln(bw, r.String()); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteMarkers writes the footnote marker table as tab-separated rows:
// verse reference, then the marker names in note order. The output loads
// back as footnote styling rules.
func (res *Result) WriteMarkers(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintln(bw, "ref\tmrkrs"); err != nil {
		return err
	}
	for _, n := range res.Notes {
		row := append([]string{n.Ref}, n.Markers...)
		if _, err := fmt.Fprintln(bw, strings.Join(row, "\t")); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ExtractReader scans one USFM document. The current book, chapter, and
// verse track through the marker stream so footnotes and bare references
// resolve against their position.
func ExtractReader(r io.Reader, name string) (*Result, error) {
	res := NewResult()
	book := ""
	chapter, verse := 0, 0

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if m := idRE.FindStringSubmatch(line); m != nil {
			book = m[1]
			chapter, verse = 0, 0
			continue
		}
		if m := cRE.FindStringSubmatch(line); m != nil {
			chapter, _ = strconv.Atoi(m[1])
			verse = 0
			continue
		}
		for _, m := range inlineRE.FindAllStringSubmatch(line, -1) {
			switch {
			case m[1] != "":
				verse, _ = strconv.Atoi(m[1])
			case m[2] != "":
				res.addRef(m[2], name)
			case m[3] != "":
				res.addNote(m[3], book, chapter, verse, name)
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", name, err)
	}
	return res, nil
}

// addRef records one \ref payload. The canonical target after the vertical
// bar wins; without one the display text is parsed instead.
func (res *Result) addRef(payload, name string) {
	text, loc := payload, ""
	if i := strings.LastIndexByte(payload, '|'); i >= 0 {
		text, loc = payload[:i], payload[i+1:]
	}

	var r ref.Ref
	if loc != "" {
		parsed, err := ref.Parse(loc)
		if err != nil {
			res.dropRef(loc, name)
			return
		}
		r = parsed
	} else {
		found, _, _, ok := ref.Find(text)
		if !ok {
			res.dropRef(text, name)
			return
		}
		r = found
	}
	res.refs[r.String()] = r
}

func (res *Result) dropRef(text, name string) {
	err := &converrors.ReferenceError{Text: text, File: name}
	res.Skipped = append(res.Skipped, err)
	logging.Warn("reference skipped", "error", err.Error())
}

// addNote records one footnote's quoted-part markers, and any references
// embedded in the note body.
func (res *Result) addNote(body, book string, chapter, verse int, name string) {
	for _, m := range refRE.FindAllStringSubmatch(body, -1) {
		res.addRef(m[1], name)
	}

	var markers []string
	for _, m := range markerRE.FindAllStringSubmatch(body, -1) {
		markers = append(markers, m[1])
	}
	if len(markers) == 0 || book == "" {
		return
	}
	res.Notes = append(res.Notes, FootnoteMarkers{
		Ref:     fmt.Sprintf("%s %d:%d", book, chapter, verse),
		Markers: markers,
	})
}

// ExtractFile scans one USFM file.
func ExtractFile(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open usfm %s: %w", path, err)
	}
	defer f.Close()
	return ExtractReader(f, path)
}

// ExtractFiles scans the given files with up to jobs workers and merges
// their results in argument order.
func ExtractFiles(paths []string, jobs int) (*Result, error) {
	if jobs < 1 {
		jobs = 1
	}
	if jobs > len(paths) {
		jobs = len(paths)
	}

	results := make([]*Result, len(paths))
	errs := make([]error, len(paths))
	idx := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < jobs; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range idx {
				results[i], errs[i] = ExtractFile(paths[i])
			}
		}()
	}
	for i := range paths {
		idx <- i
	}
	close(idx)
	wg.Wait()

	merged := NewResult()
	for i, res := range results {
		if errs[i] != nil {
			return nil, errs[i]
		}
		merged.Merge(res)
	}
	return merged, nil
}
