// Package convert orchestrates a full dataset conversion: ingest the
// tables, assemble each requested book concurrently, and write one USFM
// document per book.
package convert

import (
	"context"
	"runtime"
	"sort"
	"sync"

	"github.com/BSB-publishing/bsb2usfm/core/assemble"
	converrors "github.com/BSB-publishing/bsb2usfm/core/errors"
	"github.com/BSB-publishing/bsb2usfm/core/footnote"
	"github.com/BSB-publishing/bsb2usfm/core/names"
	"github.com/BSB-publishing/bsb2usfm/core/ref"
	"github.com/BSB-publishing/bsb2usfm/core/table"
	"github.com/BSB-publishing/bsb2usfm/internal/logging"
	"github.com/BSB-publishing/bsb2usfm/internal/report"
)

// Options configures one conversion run.
type Options struct {
	Input          string   // dataset path (TSV, .xz, or SQLite)
	OutputTemplate string   // output path with one '%' standing for the book code
	FootnotesPath  string   // optional footnote styling rules
	NamesPath      string   // optional book names XML
	Books          []string // optional allow-list of book codes
	Jobs           int      // worker count; <1 means GOMAXPROCS
}

// Run converts the dataset. Books assemble and write independently: a
// failed book is recorded and skipped, and only a run that writes nothing
// fails as a whole. Cancelling ctx stops books that have not started.
func Run(ctx context.Context, opts Options) (*report.Run, error) {
	if err := validateTemplate(opts.OutputTemplate); err != nil {
		return nil, err
	}

	nameTable := names.Default()
	if opts.NamesPath != "" {
		t, err := names.Load(opts.NamesPath)
		if err != nil {
			return nil, err
		}
		nameTable = t
	}

	var rules *footnote.Rules
	if opts.FootnotesPath != "" {
		r, err := footnote.Load(opts.FootnotesPath)
		if err != nil {
			return nil, err
		}
		rules = r
	}

	books, ingested, err := table.IngestFile(opts.Input, table.Options{Books: opts.Books})
	if err != nil {
		if converrors.Is(err, converrors.ErrEmptyDataset) {
			logging.Error("dataset yielded no rows", "input", opts.Input)
		}
		return nil, err
	}

	run := report.New(opts.Input)
	run.RowsRead = ingested.Rows
	run.RowsSkipped = len(ingested.Skipped)

	engine := assemble.New(nameTable, rules)
	codes := orderedCodes(books)

	jobs := opts.Jobs
	if jobs < 1 {
		jobs = runtime.GOMAXPROCS(0)
	}
	if jobs > len(codes) {
		jobs = len(codes)
	}

	logging.Info("conversion started",
		"input", opts.Input, "books", len(codes), "jobs", jobs)

	work := make(chan string)
	var wg sync.WaitGroup
	for w := 0; w < jobs; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for code := range work {
				run.AddBook(convertBook(engine, code, books[code], opts.OutputTemplate))
			}
		}()
	}

feed:
	for _, code := range codes {
		select {
		case work <- code:
		case <-ctx.Done():
			break feed
		}
	}
	close(work)
	wg.Wait()

	sortBooks(run)
	run.Finish()

	if err := ctx.Err(); err != nil {
		return run, err
	}
	if run.Written() == 0 {
		return run, converrors.Wrap(converrors.ErrEmptyDataset, "no book converted")
	}
	return run, nil
}

// convertBook assembles and writes one book, returning its report entry.
func convertBook(engine *assemble.Engine, code string, frags []table.Fragment, template string) report.Book {
	doc, stats, err := engine.AssembleBook(code, frags)
	entry := report.Book{Code: code}
	if stats != nil {
		entry.Chapters = stats.Chapters
		entry.Verses = stats.Verses
		entry.Footnotes = stats.Footnotes
		entry.Refs = stats.Refs
		entry.Warnings = stats.Warnings
	}
	if err != nil {
		// The entry already names the book; keep just the reason when the
		// failure is book-scoped.
		var be *converrors.BookError
		if converrors.As(err, &be) {
			entry.Error = be.Reason
		} else {
			entry.Error = err.Error()
		}
		return entry
	}

	path := PathForBook(template, code)
	data := []byte(doc.USFM())
	if err := writeAtomic(path, data); err != nil {
		logging.BookFailed(code, err)
		entry.Error = err.Error()
		return entry
	}

	entry.Path = path
	entry.Bytes = int64(len(data))
	entry.Hash = report.Hash(data)
	logging.BookWritten(code, path)
	return entry
}

// orderedCodes returns the ingested book codes in canonical order.
func orderedCodes(books map[string][]table.Fragment) []string {
	var codes []string
	for _, b := range ref.Canon {
		if _, ok := books[b.Code]; ok {
			codes = append(codes, b.Code)
		}
	}
	return codes
}

// sortBooks orders report entries canonically; workers append them in
// completion order.
func sortBooks(run *report.Run) {
	sort.Slice(run.Books, func(i, j int) bool {
		return ref.BookOrder(run.Books[i].Code) < ref.BookOrder(run.Books[j].Code)
	})
}
