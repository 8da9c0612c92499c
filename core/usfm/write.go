package usfm

import (
	"io"
	"strings"
)

// USFM serializes the document to USFM text. Top-level book, chapter, and
// paragraph nodes each start a new marker line; verse markers, character
// spans, footnotes, and references render inline.
func (d *Document) USFM() string {
	var sb strings.Builder
	for _, n := range d.Root.Children {
		switch n.Tag {
		case "book":
			sb.WriteString(`\id ` + n.Code)
			if n.Text != "" {
				sb.WriteString(" " + n.Text)
			}
		case "chapter":
			sb.WriteString(`\c ` + n.Number)
		case "para":
			writePara(&sb, n)
		default:
			continue
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// WriteTo writes the serialized document to w.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, d.USFM())
	return int64(n), err
}

func writePara(sb *strings.Builder, n *Node) {
	sb.WriteString(`\` + n.Style)
	var content strings.Builder
	writeContent(&content, n, false)
	text := strings.TrimRight(strings.TrimLeft(content.String(), " "), " \t")
	if text != "" {
		sb.WriteString(" ")
		sb.WriteString(text)
	}
}

// writeContent renders a node's text and children, without the node's own
// marker.
func writeContent(w *strings.Builder, n *Node, inNote bool) {
	w.WriteString(n.Text)
	for _, c := range n.Children {
		writeInline(w, c, inNote)
		w.WriteString(c.Tail)
	}
}

func writeInline(w *strings.Builder, n *Node, inNote bool) {
	switch n.Tag {
	case "verse":
		pad(w)
		w.WriteString(`\v ` + n.Number + " ")
	case "char":
		if inNote && IsNoteContent(n.Style) {
			// Footnote content markers run open-ended until the next marker.
			pad(w)
			w.WriteString(`\` + n.Style + " ")
			writeContent(w, n, inNote)
			return
		}
		prefix := `\`
		if !inNote && n.Parent != nil && n.Parent.Tag == "char" {
			prefix = `\+`
		}
		pad(w)
		w.WriteString(prefix + n.Style + " ")
		writeContent(w, n, inNote)
		w.WriteString(prefix + n.Style + "*")
	case "note":
		pad(w)
		caller := n.Caller
		if caller == "" {
			caller = "+"
		}
		w.WriteString(`\f ` + caller + " ")
		writeContent(w, n, true)
		w.WriteString(`\f*`)
	case "ref":
		w.WriteString(`\ref `)
		writeContent(w, n, inNote)
		if n.Loc != "" {
			w.WriteString("|" + n.Loc)
		}
		w.WriteString(`\ref*`)
	case "para":
		// Nested paragraphs are lifted to the top level by the assembler;
		// one reaching here is a bug upstream, render its content only.
		writeContent(w, n, inNote)
	}
}

// pad separates a marker from preceding inline text.
func pad(w *strings.Builder) {
	s := w.String()
	if s == "" {
		return
	}
	c := s[len(s)-1]
	if c != ' ' && c != '\n' {
		w.WriteByte(' ')
	}
}
