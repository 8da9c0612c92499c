// Package assemble turns ordered verse fragments into nested USFM
// documents. It is the converter's state machine: one builder per book
// tracks the current chapter, verse, and open formatting blocks, and every
// chapter/verse transition runs through a single choke point that enforces
// the ordering invariants.
package assemble

import (
	"fmt"
	"strconv"
	"strings"

	converrors "github.com/BSB-publishing/bsb2usfm/core/errors"
	"github.com/BSB-publishing/bsb2usfm/core/footnote"
	"github.com/BSB-publishing/bsb2usfm/core/markup"
	"github.com/BSB-publishing/bsb2usfm/core/names"
	"github.com/BSB-publishing/bsb2usfm/core/ref"
	"github.com/BSB-publishing/bsb2usfm/core/table"
	"github.com/BSB-publishing/bsb2usfm/core/usfm"
	"github.com/BSB-publishing/bsb2usfm/internal/logging"
)

// State is the assembly position within one book.
type State int

const (
	// StateBeforeBook means only the header has been emitted.
	StateBeforeBook State = iota
	// StateInChapter means a chapter is open with no verse yet.
	StateInChapter
	// StateInVerse means a verse block is receiving content.
	StateInVerse
	// StateBookClosed means assembly for the book has finished.
	StateBookClosed
)

// idText is the free text of the generated \id line.
const idText = "Autogenerated BSB by bsb2usfm"

// Stats counts what one book's assembly produced.
type Stats struct {
	Chapters  int
	Verses    int
	Footnotes int
	Refs      int
	Irregular int // verses emitted below the chapter's starting verse
	Warnings  int
}

// Engine assembles books. It is stateless across books and safe for
// concurrent use; each AssembleBook call works on its own builder.
type Engine struct {
	names *names.Table
	rules *footnote.Rules
}

// New creates an engine. Either collaborator may be nil, meaning built-in
// defaults.
func New(n *names.Table, r *footnote.Rules) *Engine {
	if n == nil {
		n = names.Default()
	}
	return &Engine{names: n, rules: r}
}

// AssembleBook builds the document for one book from its ordered fragments.
// A chapter regression abandons the book (fail-fast per book); any other
// malformed input degrades with a warning.
func (e *Engine) AssembleBook(code string, frags []table.Fragment) (*usfm.Document, *Stats, error) {
	b := e.newBuilder(code)
	for _, frag := range frags {
		if err := b.advance(frag.Ref); err != nil {
			logging.BookFailed(code, err)
			return nil, &b.stats, err
		}
		for _, seg := range frag.Segments {
			b.segment(seg)
		}
	}
	b.close()
	return b.doc, &b.stats, nil
}

// builder holds the per-book assembly state.
type builder struct {
	eng  *Engine
	doc  *usfm.Document
	curr *usfm.Node

	state        State
	book         string
	cref         ref.Ref
	chapter      int
	chapterStart int // first verse number seen in the current chapter
	versePending bool
	irregular    bool
	pendingStrip bool

	fnIndex   int // verse-scoped footnote index, keys the rule lookup
	callerSeq int // chapter-scoped caller counter, never reused

	stats Stats
}

func (e *Engine) newBuilder(code string) *builder {
	doc := usfm.NewDocument(code)
	root := doc.Root

	book := root.NewChild("book", "id")
	book.Code = code
	book.Text = idText

	nm := e.names.Resolve(code)
	mt2, mt1 := e.names.Titles(code)
	for _, p := range []struct{ style, text string }{
		{"h", nm.Short},
		{"toc1", nm.Long},
		{"toc2", nm.Short},
		{"toc3", nm.Abbr},
		{"mt2", mt2},
		{"mt1", mt1},
	} {
		n := root.NewChild("para", p.style)
		n.Text = p.text
	}

	return &builder{
		eng:   e,
		doc:   doc,
		curr:  root.LastChild(),
		state: StateBeforeBook,
		book:  code,
	}
}

// advance is the transition choke point: it moves the builder to the given
// verse reference, opening chapters and validating the ordering invariants.
func (b *builder) advance(r ref.Ref) error {
	if b.state != StateBeforeBook && r.Chapter < b.chapter {
		return &converrors.BookError{
			Book:   b.book,
			Reason: fmt.Sprintf("chapter %d after chapter %d", r.Chapter, b.chapter),
			Err:    converrors.ErrChapterRegression,
		}
	}

	b.forceCloseSpans()

	if b.state == StateBeforeBook || r.Chapter != b.chapter {
		ch := b.doc.Root.NewChild("chapter", "c")
		ch.Number = strconv.Itoa(r.Chapter)
		b.curr = ch
		b.chapter = r.Chapter
		b.chapterStart = r.Verse
		b.callerSeq = 0
		b.stats.Chapters++
		b.state = StateInChapter
	}

	b.irregular = r.Verse < b.chapterStart
	if b.irregular {
		logging.Warn("verse_below_chapter_start",
			"book", b.book, "chapter", b.chapter,
			"verse", r.Verse, "chapter_start", b.chapterStart)
		b.stats.Irregular++
	}

	b.cref = r
	b.versePending = true
	b.fnIndex = 0
	b.stats.Verses++
	b.state = StateInVerse
	return nil
}

// forceCloseSpans closes character blocks left open when a verse or chapter
// boundary arrives.
func (b *builder) forceCloseSpans() {
	for b.curr != nil && b.curr.Tag == "char" {
		if b.state == StateInVerse {
			logging.Warn("unclosed_span_at_verse_close",
				"book", b.book, "style", b.curr.Style,
				"chapter", b.chapter, "verse", b.cref.Verse)
			b.stats.Warnings++
		}
		b.curr = b.curr.Parent
	}
}

func (b *builder) close() {
	b.forceCloseSpans()
	b.state = StateBookClosed
}

// segment plays one merged row's columns through the builder in dataset
// order: headings, cross references, verse paragraph, reference text, verse
// text, block closers, footnote, end text.
func (b *builder) segment(seg table.Segment) {
	if seg.Heading != "" {
		b.playMarkup(seg.Heading, false)
	}
	if seg.CrossRefs != "" {
		b.playMarkup(seg.CrossRefs, false)
	}
	if seg.Par != "" {
		b.playMarkup(seg.Par, true)
	}
	if seg.RefText != "" {
		if !strings.HasPrefix(seg.RefText, "<span class=|reftext|") {
			b.appendText(" "+markup.Debracket(seg.RefText), true, true)
		}
		b.pendingStrip = true
	}
	if seg.Text != "" {
		b.playText(seg.Text)
	}
	if seg.PNC != "" {
		b.playEnd(seg.PNC)
	}
	if seg.PNC2 != "" {
		b.playEnd(markup.Debracket(seg.PNC2))
	}
	if seg.Footnote != "" {
		b.addNote(seg.Footnote)
	}
	if seg.EndText != "" {
		b.playEnd(seg.EndText)
	}
}

// playText handles the main verse-text column: editorial brackets drop,
// bare chapter-number runs pad with spaces, placeholder cells vanish, and
// embedded paragraph opens replay as markup.
func (b *builder) playText(raw string) {
	t := markup.Debracket(raw)
	if isNumericRun(t) {
		t = " " + t + " "
	}
	if strings.Contains(t, "<p class=") {
		dirs, warns := markup.TranslateLoose(t)
		b.warnAll(warns)
		b.play(dirs, true, false)
		return
	}
	switch strings.TrimSpace(t) {
	case "-", ". . .", "vvv":
		return
	}
	if b.pendingStrip {
		t = trimLeftSpace(t)
		b.pendingStrip = false
	}
	b.appendText(t, true, true)
}

func (b *builder) playMarkup(raw string, verseText bool) {
	dirs, warns := markup.Translate(raw)
	b.warnAll(warns)
	b.play(dirs, false, verseText)
	b.pendingStrip = false
}

func (b *builder) playEnd(raw string) {
	b.play(markup.TranslateEnd(raw), true, false)
}

// play applies a directive sequence. verseMode makes plain text trigger the
// pending verse marker; verseText lets paragraph opens of the verse column
// insert it ahead of character styles.
func (b *builder) play(dirs []markup.Directive, verseMode, verseText bool) {
	for _, d := range dirs {
		switch d.Kind {
		case markup.KindOpen:
			b.applyStyle(d.Style, d.Par, verseText && d.Par)
		case markup.KindText:
			if verseMode {
				b.appendText(d.Text, true, true)
			} else {
				b.appendText(d.Text, false, false)
			}
		case markup.KindRef:
			b.ensureContainer()
			r := b.curr.NewChild("ref", "")
			r.Text = d.Text
			r.Loc = d.Loc
			b.stats.Refs++
		case markup.KindClose:
			b.closeOne()
		}
	}
}

// applyStyle opens the blocks of one style definition at the right level:
// paragraph styles at the document level, character styles nested at the
// current position.
func (b *builder) applyStyle(def markup.StyleDef, ispar, verseText bool) {
	if def.RefText {
		// Psalm heading reference: no style of its own, just the verse
		// marker it stands in for.
		b.insertVerse()
		return
	}

	parent := b.curr
	var res *usfm.Node
	for _, s := range def.Styles {
		// A blank line directly under a section heading is redundant.
		if s == "b" && parent != nil && usfm.IsSectionPara(parent.Style) {
			continue
		}
		cat := usfm.CategoryOf(s)
		if cat == usfm.CategoryNone {
			b.warn("unusable style: " + s)
			continue
		}
		if cat == usfm.CategoryPara || ispar {
			parent = parent.Root()
		}
		if cat != usfm.CategoryPara {
			if ispar || parent.Tag == "chapter" || parent.Tag == "doc" {
				parent = parent.Root().NewChild("para", "p")
			}
			if verseText && b.versePending {
				v := parent.NewChild("verse", "")
				v.Number = strconv.Itoa(b.cref.Verse)
				v.Irregular = b.irregular
				b.versePending = false
			}
			parent.EnsureSpace()
		}
		tag := "para"
		if cat == usfm.CategoryChar {
			tag = "char"
		}
		res = parent.NewChild(tag, s)
		parent = res
		ispar = false // only the first style decides placement
	}
	if res == nil {
		b.warn("style definition produced no blocks")
		return
	}
	b.curr = res
	if def.After != "" {
		b.curr = res.Root().NewChild("para", def.After)
	}
}

// insertVerse emits the pending verse marker at the current position.
func (b *builder) insertVerse() {
	if !b.versePending {
		return
	}
	b.ensureContainer()
	v := b.curr.NewChild("verse", "")
	v.Number = strconv.Itoa(b.cref.Verse)
	v.Irregular = b.irregular
	b.versePending = false
}

// appendText adds text at the current position. isVerse triggers the
// pending verse marker first; doStrip trims trailing whitespace.
func (b *builder) appendText(txt string, isVerse, doStrip bool) {
	if doStrip {
		txt = strings.TrimRight(txt, " \t\r\n")
	}
	if isVerse && b.versePending {
		b.insertVerse()
		txt = trimLeftSpace(txt)
	}
	if txt == "" {
		return
	}
	b.ensureContainer()
	b.curr.AppendText(txt)
}

// ensureContainer guarantees the current node can hold inline content,
// opening a plain paragraph when assembly sits at the chapter or document
// level.
func (b *builder) ensureContainer() {
	if b.curr == nil || b.curr.Tag == "chapter" || b.curr.Tag == "doc" {
		b.curr = b.doc.Root.NewChild("para", "p")
	}
}

func (b *builder) closeOne() {
	if b.curr == nil || b.curr.Parent == nil || b.curr.Tag == "doc" {
		b.warn("close directive with no open block")
		return
	}
	b.curr = b.curr.Parent
}

func (b *builder) warn(token string) {
	b.warnErr(&converrors.MarkupError{Token: token, Context: b.position()})
}

func (b *builder) warnErr(err error) {
	var me *converrors.MarkupError
	if converrors.As(err, &me) {
		ctx := me.Context
		if ctx == "" {
			ctx = b.position()
		}
		logging.MarkupWarning(me.Token, ctx)
	} else {
		logging.Warn("markup degraded", "error", err.Error(), "at", b.position())
	}
	b.stats.Warnings++
}

func (b *builder) warnAll(warns []error) {
	for _, w := range warns {
		b.warnErr(w)
	}
}

func (b *builder) position() string {
	return fmt.Sprintf("%s %d:%d", b.book, b.chapter, b.cref.Verse)
}

// isNumericRun reports whether text is only digits and commas, the shape of
// a bare chapter-number cell that needs padding.
func isNumericRun(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if (c < '0' || c > '9') && c != ',' {
			return false
		}
	}
	return true
}

func trimLeftSpace(s string) string {
	return strings.TrimLeft(s, " \t\r\n")
}
