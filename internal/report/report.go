// Package report records what a conversion run produced: one entry per
// book with the output path, size, content hash, and assembly counters,
// under a unique run identifier.
package report

import (
	"encoding/hex"
	"encoding/json"
	"io"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/zeebo/blake3"
)

// Book is one book's outcome within a run.
type Book struct {
	Code      string `json:"code"`
	Path      string `json:"path,omitempty"`
	Bytes     int64  `json:"bytes,omitempty"`
	Hash      string `json:"hash,omitempty"`
	Chapters  int    `json:"chapters,omitempty"`
	Verses    int    `json:"verses,omitempty"`
	Footnotes int    `json:"footnotes,omitempty"`
	Refs      int    `json:"refs,omitempty"`
	Warnings  int    `json:"warnings,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Run is the full record of one conversion.
type Run struct {
	ID          string    `json:"id"`
	Started     time.Time `json:"started"`
	Finished    time.Time `json:"finished"`
	Input       string    `json:"input"`
	RowsRead    int       `json:"rows_read"`
	RowsSkipped int       `json:"rows_skipped"`
	Books       []Book    `json:"books"`

	mu sync.Mutex
}

// New starts a run record for the given input.
func New(input string) *Run {
	return &Run{
		ID:      uuid.NewString(),
		Started: time.Now().UTC(),
		Input:   input,
	}
}

// AddBook appends one book entry. Safe for concurrent use.
func (r *Run) AddBook(b Book) {
	r.mu.Lock()
	r.Books = append(r.Books, b)
	r.mu.Unlock()
}

// Finish stamps the completion time.
func (r *Run) Finish() {
	r.Finished = time.Now().UTC()
}

// Written counts books that produced output.
func (r *Run) Written() int {
	n := 0
	for _, b := range r.Books {
		if b.Error == "" {
			n++
		}
	}
	return n
}

// WriteJSON writes the run record as indented JSON.
func (r *Run) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteFile writes the run record to a JSON file.
func (r *Run) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := r.WriteJSON(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Hash returns the hex BLAKE3 digest of one document's bytes.
func Hash(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}
