package assemble

import (
	"errors"
	"strings"
	"testing"

	converrors "github.com/BSB-publishing/bsb2usfm/core/errors"
	"github.com/BSB-publishing/bsb2usfm/core/footnote"
	"github.com/BSB-publishing/bsb2usfm/core/ref"
	"github.com/BSB-publishing/bsb2usfm/core/table"
)

func mustRef(t *testing.T, s string) ref.Ref {
	t.Helper()
	r, err := ref.Parse(s)
	if err != nil {
		t.Fatalf("Parse(%q): %v", s, err)
	}
	return r
}

func frag(t *testing.T, verse string, segs ...table.Segment) table.Fragment {
	t.Helper()
	return table.Fragment{Ref: mustRef(t, verse), Segments: segs}
}

func assemble(t *testing.T, eng *Engine, code string, frags []table.Fragment) (string, *Stats) {
	t.Helper()
	doc, stats, err := eng.AssembleBook(code, frags)
	if err != nil {
		t.Fatalf("AssembleBook: %v", err)
	}
	return doc.USFM(), stats
}

func TestAssembleBasicBook(t *testing.T) {
	frags := []table.Fragment{
		frag(t, "Genesis 1:1",
			table.Segment{
				Heading: "<p class=|hdg|>The Creation",
				Par:     "<p class=|reg|>",
				Text:    "In the beginning God created",
			},
			table.Segment{Text: " the heavens and the earth."},
		),
		frag(t, "Genesis 1:2",
			table.Segment{Text: "Now the earth was formless and void."},
		),
	}

	out, stats := assemble(t, New(nil, nil), "GEN", frags)

	wantLines := []string{
		`\id GEN Autogenerated BSB by bsb2usfm`,
		`\h Genesis`,
		`\toc1 Genesis`,
		`\toc2 Genesis`,
		`\toc3 GEN`,
		`\mt2 Genesis`,
		`\mt1 Genesis`,
		`\c 1`,
		`\s1 The Creation`,
		`\p \v 1 In the beginning God created the heavens and the earth. \v 2 Now the earth was formless and void.`,
	}
	if got := strings.Split(strings.TrimRight(out, "\n"), "\n"); len(got) != len(wantLines) {
		t.Fatalf("got %d lines, want %d:\n%s", len(got), len(wantLines), out)
	} else {
		for i, w := range wantLines {
			if got[i] != w {
				t.Errorf("line %d = %q, want %q", i, got[i], w)
			}
		}
	}

	if stats.Chapters != 1 || stats.Verses != 2 {
		t.Errorf("stats = %+v, want 1 chapter, 2 verses", stats)
	}
}

func TestAssembleFirstChapterFromRef(t *testing.T) {
	// A book starting mid-canon keeps the chapter number of its first
	// fragment.
	frags := []table.Fragment{
		frag(t, "Genesis 2:1", table.Segment{
			Par:  "<p class=|reg|>",
			Text: "Thus the heavens were completed.",
		}),
	}
	out, _ := assemble(t, New(nil, nil), "GEN", frags)
	if !strings.Contains(out, "\\c 2\n\\p \\v 1 Thus the heavens were completed.") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestAssembleChapterRegressionAbandonsBook(t *testing.T) {
	frags := []table.Fragment{
		frag(t, "Genesis 2:1", table.Segment{Text: "later"}),
		frag(t, "Genesis 1:1", table.Segment{Text: "earlier"}),
	}
	_, _, err := New(nil, nil).AssembleBook("GEN", frags)
	if !errors.Is(err, converrors.ErrChapterRegression) {
		t.Fatalf("err = %v, want ErrChapterRegression", err)
	}
	var be *converrors.BookError
	if !errors.As(err, &be) || be.Book != "GEN" {
		t.Errorf("err = %v, want BookError for GEN", err)
	}
}

func TestAssembleVerseBelowChapterStart(t *testing.T) {
	frags := []table.Fragment{
		frag(t, "Genesis 1:5", table.Segment{Text: "five"}),
		frag(t, "Genesis 1:3", table.Segment{Text: "three"}),
	}
	out, stats := assemble(t, New(nil, nil), "GEN", frags)
	if stats.Irregular != 1 {
		t.Errorf("Irregular = %d, want 1", stats.Irregular)
	}
	// The irregular verse is still emitted.
	if !strings.Contains(out, `\v 3 three`) {
		t.Errorf("irregular verse missing:\n%s", out)
	}
}

func TestAssembleVerseBridgeRepeats(t *testing.T) {
	// Repeated verse numbers at or above the chapter start are accepted
	// without an irregular mark.
	frags := []table.Fragment{
		frag(t, "Genesis 1:1", table.Segment{Text: "first"}),
		frag(t, "Genesis 1:1", table.Segment{Text: "again"}),
	}
	_, stats := assemble(t, New(nil, nil), "GEN", frags)
	if stats.Irregular != 0 {
		t.Errorf("Irregular = %d, want 0", stats.Irregular)
	}
	if stats.Verses != 2 {
		t.Errorf("Verses = %d, want 2", stats.Verses)
	}
}

func TestAssemblePoetryStyles(t *testing.T) {
	frags := []table.Fragment{
		frag(t, "Psalm 23:1", table.Segment{
			Par:  "<p class=|indent1|>",
			Text: "The LORD is my shepherd;",
		}),
		frag(t, "Psalm 23:2", table.Segment{
			Par:  "<p class=|indent2|>",
			Text: "He makes me lie down.",
		}),
	}
	out, _ := assemble(t, New(nil, nil), "PSA", frags)
	if !strings.Contains(out, "\\q1 \\v 1 The LORD is my shepherd;\n\\q2 \\v 2 He makes me lie down.") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestAssembleRedLetterSpan(t *testing.T) {
	frags := []table.Fragment{
		frag(t, "Matthew 4:19", table.Segment{
			Par:  "<p class=|reg|><span class=|red|>",
			Text: "Follow Me,",
			PNC:  "</span>",
		}),
	}
	out, _ := assemble(t, New(nil, nil), "MAT", frags)
	// The span opened before any verse text arrived, so the verse marker
	// lands inside it.
	if !strings.Contains(out, `\p \wj \v 19 Follow Me,\wj*`) {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestAssembleUnclosedSpanForcedAtVerseClose(t *testing.T) {
	frags := []table.Fragment{
		frag(t, "Matthew 4:19", table.Segment{
			Par:  "<p class=|reg|><span class=|red|>",
			Text: "Follow Me,",
		}),
		frag(t, "Matthew 4:20", table.Segment{Text: "At once they followed."}),
	}
	out, stats := assemble(t, New(nil, nil), "MAT", frags)
	if stats.Warnings == 0 {
		t.Error("expected a warning for the forced close")
	}
	if !strings.Contains(out, `\wj \v 19 Follow Me,\wj*`) {
		t.Errorf("span should be closed before the next verse:\n%s", out)
	}
	if !strings.Contains(out, `\v 20 At once they followed.`) {
		t.Errorf("following verse should continue outside the span:\n%s", out)
	}
}

func TestAssembleCrossReference(t *testing.T) {
	frags := []table.Fragment{
		frag(t, "Genesis 1:1",
			table.Segment{
				CrossRefs: `<span class=|cross|>(<a href="#">John 1:1</a>)</span>`,
				Par:       "<p class=|reg|>",
				Text:      "In the beginning",
			},
		),
	}
	out, stats := assemble(t, New(nil, nil), "GEN", frags)
	if !strings.Contains(out, `\r (\ref John 1:1|JHN 1:1\ref*)`) {
		t.Errorf("unexpected output:\n%s", out)
	}
	if stats.Refs != 1 {
		t.Errorf("Refs = %d, want 1", stats.Refs)
	}
}

func TestAssembleFootnoteRuleOrder(t *testing.T) {
	rules, err := footnote.Parse(strings.NewReader("GEN 1:2\tfq\tft\n"))
	if err != nil {
		t.Fatal(err)
	}
	frags := []table.Fragment{
		frag(t, "Genesis 1:2", table.Segment{
			Par:      "<p class=|reg|>",
			Text:     "the Spirit of God was hovering",
			Footnote: "<i>Or</i> a mighty wind",
		}),
	}
	out, stats := assemble(t, New(nil, rules), "GEN", frags)
	if !strings.Contains(out, `\f a \fr 1:2 \fq Or \ft a mighty wind\f*`) {
		t.Errorf("unexpected output:\n%s", out)
	}
	if stats.Footnotes != 1 {
		t.Errorf("Footnotes = %d, want 1", stats.Footnotes)
	}
}

func TestAssembleFootnoteDefaults(t *testing.T) {
	// Without a rule, quoted parts take the default quote tag and plain
	// parts take ft.
	frags := []table.Fragment{
		frag(t, "Genesis 1:2", table.Segment{
			Par:      "<p class=|reg|>",
			Text:     "text",
			Footnote: "<i>Or</i> a mighty wind",
		}),
	}
	out, _ := assemble(t, New(nil, nil), "GEN", frags)
	if !strings.Contains(out, `\f a \fr 1:2 \fqa Or \ft a mighty wind\f*`) {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestAssembleFootnoteCallers(t *testing.T) {
	frags := []table.Fragment{
		frag(t, "Genesis 1:1", table.Segment{Par: "<p class=|reg|>", Text: "one", Footnote: "first note"}),
		frag(t, "Genesis 1:2", table.Segment{Text: "two", Footnote: "second note"}),
		frag(t, "Genesis 2:1", table.Segment{Par: "<p class=|reg|>", Text: "three", Footnote: "third note"}),
	}
	out, _ := assemble(t, New(nil, nil), "GEN", frags)

	if !strings.Contains(out, `\f a \fr 1:1 \ft first note\f*`) {
		t.Errorf("first caller wrong:\n%s", out)
	}
	if !strings.Contains(out, `\f b \fr 1:2 \ft second note\f*`) {
		t.Errorf("second caller should advance within the chapter:\n%s", out)
	}
	if !strings.Contains(out, `\f a \fr 2:1 \ft third note\f*`) {
		t.Errorf("callers should reset at a chapter boundary:\n%s", out)
	}
}

func TestAssembleSecondFootnoteRuleInVerse(t *testing.T) {
	rules, err := footnote.Parse(strings.NewReader("GEN 1:1\tfq\nGEN 1:1\tft\tfqa\n"))
	if err != nil {
		t.Fatal(err)
	}
	frags := []table.Fragment{
		frag(t, "Genesis 1:1",
			table.Segment{Par: "<p class=|reg|>", Text: "alpha", Footnote: "<i>one</i>"},
			table.Segment{Text: " beta", Footnote: "plain <i>two</i>"},
		),
	}
	out, _ := assemble(t, New(nil, rules), "GEN", frags)
	if !strings.Contains(out, `\f a \fr 1:1 \fq one\f*`) {
		t.Errorf("first note should use the verse's first rule:\n%s", out)
	}
	if !strings.Contains(out, `\f b \fr 1:1 \ft plain `) || !strings.Contains(out, `\fqa two\f*`) {
		t.Errorf("second note should use the [1] rule:\n%s", out)
	}
}

func TestAssembleFootnoteVerseSpan(t *testing.T) {
	frags := []table.Fragment{
		frag(t, "Psalm 3:2", table.Segment{
			Par:      "<p class=|indent1|>",
			Text:     "Selah",
			Footnote: "Cited in verse <span class=|fnv|>4</span> as well",
		}),
	}
	out, _ := assemble(t, New(nil, nil), "PSA", frags)
	if !strings.Contains(out, `\ft Cited in verse \fv 4\fv* as well\f*`) {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestAssembleFootnoteEmbeddedReference(t *testing.T) {
	frags := []table.Fragment{
		frag(t, "Matthew 1:23", table.Segment{
			Par:      "<p class=|reg|>",
			Text:     "Immanuel",
			Footnote: "Isaiah 7:14",
		}),
	}
	out, _ := assemble(t, New(nil, nil), "MAT", frags)
	if !strings.Contains(out, `\ft \ref Isaiah 7:14|ISA 7:14\ref*\f*`) {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestAssemblePlaceholderCellsDropped(t *testing.T) {
	for _, placeholder := range []string{"-", ". . .", "vvv"} {
		frags := []table.Fragment{
			frag(t, "Genesis 1:1", table.Segment{Par: "<p class=|reg|>", Text: placeholder}),
			frag(t, "Genesis 1:2", table.Segment{Text: "real text"}),
		}
		out, _ := assemble(t, New(nil, nil), "GEN", frags)
		if strings.Contains(out, strings.TrimSpace(placeholder)) {
			t.Errorf("placeholder %q should not be emitted:\n%s", placeholder, out)
		}
	}
}

func TestAssembleNumericRunPadded(t *testing.T) {
	frags := []table.Fragment{
		frag(t, "Genesis 1:1",
			table.Segment{Par: "<p class=|reg|>", Text: "word"},
			table.Segment{Text: "7"},
			table.Segment{Text: " more"},
		),
	}
	out, _ := assemble(t, New(nil, nil), "GEN", frags)
	if !strings.Contains(out, "word 7 more") {
		t.Errorf("numeric run should be space padded:\n%s", out)
	}
}

func TestAssembleTabStyleOpensFollowingParagraph(t *testing.T) {
	frags := []table.Fragment{
		frag(t, "Matthew 1:1", table.Segment{
			Par:  "<p class=|tab1|>",
			Text: "This is the genealogy",
		}),
	}
	out, _ := assemble(t, New(nil, nil), "MAT", frags)
	if !strings.Contains(out, "\\b\n\\pmo \\v 1 This is the genealogy") {
		t.Errorf("tab1 should emit b then pmo:\n%s", out)
	}
}

func TestAssembleIdempotent(t *testing.T) {
	frags := []table.Fragment{
		frag(t, "Genesis 1:1", table.Segment{
			Heading:  "<p class=|hdg|>The Creation",
			Par:      "<p class=|reg|>",
			Text:     "In the beginning",
			Footnote: "a note",
		}),
	}
	eng := New(nil, nil)
	first, _ := assemble(t, eng, "GEN", frags)
	second, _ := assemble(t, eng, "GEN", frags)
	if first != second {
		t.Error("same input should produce identical output")
	}
}
