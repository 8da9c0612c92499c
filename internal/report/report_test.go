package report

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestHash(t *testing.T) {
	a := Hash([]byte("hello"))
	b := Hash([]byte("hello"))
	c := Hash([]byte("world"))
	if a != b {
		t.Error("same input should hash identically")
	}
	if a == c {
		t.Error("different input should hash differently")
	}
	if len(a) != 64 {
		t.Errorf("hash length = %d, want 64 hex chars", len(a))
	}
}

func TestRunRecord(t *testing.T) {
	r := New("bsbtables.tsv")
	if r.ID == "" || r.Started.IsZero() {
		t.Fatalf("run = %+v", r)
	}
	r.AddBook(Book{Code: "GEN", Path: "GEN.usfm", Bytes: 10})
	r.AddBook(Book{Code: "EXO", Error: "chapter regression"})
	r.Finish()

	if r.Written() != 1 {
		t.Errorf("Written = %d, want 1", r.Written())
	}

	var sb strings.Builder
	if err := r.WriteJSON(&sb); err != nil {
		t.Fatal(err)
	}
	var decoded struct {
		ID    string `json:"id"`
		Input string `json:"input"`
		Books []struct {
			Code  string `json:"code"`
			Error string `json:"error"`
		} `json:"books"`
	}
	if err := json.Unmarshal([]byte(sb.String()), &decoded); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}
	if decoded.ID != r.ID || decoded.Input != "bsbtables.tsv" {
		t.Errorf("decoded = %+v", decoded)
	}
	if len(decoded.Books) != 2 || decoded.Books[1].Error == "" {
		t.Errorf("books = %+v", decoded.Books)
	}
}
