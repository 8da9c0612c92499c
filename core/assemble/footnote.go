package assemble

import (
	"fmt"
	"strings"

	"github.com/BSB-publishing/bsb2usfm/core/footnote"
	"github.com/BSB-publishing/bsb2usfm/core/markup"
	"github.com/BSB-publishing/bsb2usfm/core/ref"
	"github.com/BSB-publishing/bsb2usfm/core/usfm"
)

// addNote renders one footnote column into a \f note at the current
// position. The payload splits on italics into parts; each part becomes one
// note component, styled by the footnote rules when an entry matches the
// current verse, otherwise by position (plain text ft, quoted words the
// default quote tag).
func (b *builder) addNote(raw string) {
	b.ensureContainer()
	note := b.curr.NewChild("note", "f")
	note.Caller = b.nextCaller()

	fr := note.NewChild("char", "fr")
	fr.Text = fmt.Sprintf("%d:%d ", b.cref.Chapter, b.cref.Verse)
	prev := fr

	tags := b.eng.rules.Lookup(b.cref.String(), b.fnIndex)
	tagIdx := 0
	for i, part := range markup.SplitItalics(raw) {
		if part == "" {
			continue
		}
		style := "ft"
		switch {
		case tagIdx < len(tags):
			style = tags[tagIdx]
		case i%2 == 1:
			style = footnote.DefaultQuoteTag
		}
		tagIdx++

		cf := note.NewChild("char", style)
		b.fillNotePart(cf, prev, part)
		prev = cf
	}

	b.fnIndex++
	b.stats.Footnotes++
}

// fillNotePart places one note component's content: an embedded scripture
// reference becomes a ref marker, embedded verse-number spans become fv
// spans, plain text lands as-is.
func (b *builder) fillNotePart(cf, prev *usfm.Node, part string) {
	if r, start, end, ok := ref.Find(part); ok {
		cf.Text = part[:start]
		rn := cf.NewChild("ref", "")
		rn.Text = part[start:end]
		rn.Loc = r.String()
		rn.Tail = part[end:]
		b.stats.Refs++
		return
	}

	fnvParts := markup.SplitFnv(part)
	if len(fnvParts) == 1 && fnvParts[0].Verse == "" {
		text := fnvParts[0].Text
		if strings.HasPrefix(text, " ") && prev != nil {
			// The separating space belongs inside the previous component,
			// not after this one's marker.
			prev.AppendText(" ")
			text = text[1:]
		}
		cf.Text = text
		return
	}

	for i, p := range fnvParts {
		if i == 0 {
			cf.Text = p.Text
		} else {
			cf.AppendText(p.Text)
		}
		if p.Verse != "" {
			fv := cf.NewChild("char", "fv")
			fv.Text = p.Verse
		}
	}
}

// nextCaller returns the next chapter-scoped footnote caller: a through z,
// then aa onward. Callers reset at chapter boundaries and are never reused
// within a chapter.
func (b *builder) nextCaller() string {
	b.callerSeq++
	n := b.callerSeq
	var buf []byte
	for n > 0 {
		n--
		buf = append([]byte{byte('a' + n%26)}, buf...)
		n /= 26
	}
	return string(buf)
}
