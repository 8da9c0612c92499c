package errors

import (
	"errors"
	"testing"
)

func TestRowError(t *testing.T) {
	err := &RowError{Line: 7, VerseID: "GEN 1:1", Reason: "bad sort key", Err: ErrSortOrder}
	if got := err.Error(); got != "row 7 (GEN 1:1): bad sort key" {
		t.Errorf("Error() = %q", got)
	}
	if !errors.Is(err, ErrSortOrder) {
		t.Error("should unwrap to ErrSortOrder")
	}

	bare := &RowError{Line: 3, Reason: "no verse"}
	if got := bare.Error(); got != "row 3: no verse" {
		t.Errorf("Error() = %q", got)
	}
	if !errors.Is(bare, ErrInvalidInput) {
		t.Error("should default to ErrInvalidInput")
	}
}

func TestBookError(t *testing.T) {
	err := &BookError{Book: "GEN", Reason: "chapter 1 after chapter 2", Err: ErrChapterRegression}
	if !errors.Is(err, ErrChapterRegression) {
		t.Error("should unwrap to ErrChapterRegression")
	}
	var be *BookError
	if !errors.As(err, &be) || be.Book != "GEN" {
		t.Errorf("As failed: %v", err)
	}
}

func TestMarkupErrorDefaults(t *testing.T) {
	err := &MarkupError{Token: "<p class=|zzz|>"}
	if !errors.Is(err, ErrBadMarkup) {
		t.Error("should default to ErrBadMarkup")
	}
}

func TestReferenceErrorDefaults(t *testing.T) {
	err := &ReferenceError{Text: "Hezekiah 3:16", File: "GEN.usfm"}
	if !errors.Is(err, ErrBadReference) {
		t.Error("should default to ErrBadReference")
	}
	if got := err.Error(); got != `unparseable reference "Hezekiah 3:16" in GEN.usfm` {
		t.Errorf("Error() = %q", got)
	}
}

func TestWrap(t *testing.T) {
	if Wrap(nil, "context") != nil {
		t.Error("Wrap(nil) should be nil")
	}
	err := Wrap(ErrEmptyDataset, "ingest")
	if !Is(err, ErrEmptyDataset) {
		t.Error("wrapped error should match sentinel")
	}
	if err.Error() != "ingest: empty dataset" {
		t.Errorf("Error() = %q", err.Error())
	}

	err = Wrapf(ErrUnknownBook, "row %d", 9)
	if !Is(err, ErrUnknownBook) || err.Error() != "row 9: unknown book" {
		t.Errorf("Wrapf = %v", err)
	}
}
