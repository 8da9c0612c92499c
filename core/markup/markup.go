// Package markup translates the dataset's embedded pseudo-markup into
// structural directives for the assembly engine.
//
// The markup is not XML: tokens look like <p class=|reg|>, <span
// class=|red|>, <div class=|hdg|>, with class names delimited by vertical
// bars, and spans may stay open across dataset columns. The tokenizer is
// the one place malformed input degrades instead of failing: unknown or
// unparseable tokens pass through as literal text with a warning.
package markup

import (
	"regexp"
	"strings"

	converrors "github.com/BSB-publishing/bsb2usfm/core/errors"
	"github.com/BSB-publishing/bsb2usfm/core/ref"
)

// Kind discriminates structural directives.
type Kind int

const (
	// KindOpen opens the blocks described by Style.
	KindOpen Kind = iota
	// KindText appends literal text at the current position.
	KindText
	// KindRef inserts an inline reference marker.
	KindRef
	// KindClose closes the innermost open block.
	KindClose
)

// Directive is one canonical structural instruction.
type Directive struct {
	Kind  Kind
	Class string   // originating class token, for diagnostics
	Style StyleDef // resolved styles, KindOpen only
	Text  string   // KindText and KindRef display text
	Loc   string   // KindRef canonical target, "" when unresolvable
	Par   bool     // KindOpen from a paragraph-level <p> token
}

var (
	pOpenRE    = regexp.MustCompile(`^<p class=\|([^|]*)\|>`)
	spanRE     = regexp.MustCompile(`(?s)^<span class=\|([^|]*)\|>(.*?)(</span>|$)`)
	divRE      = regexp.MustCompile(`(?s)^<div class=\|([^|]*)\|>(.*?)(</div>|$)`)
	linkRE     = regexp.MustCompile(`(?s)<a[^>]*>(.*?)</a>`)
	looseRE    = regexp.MustCompile(`<p class=\|([^|]*)\|>`)
	closeRE    = regexp.MustCompile(`</span>|</div>`)
	italicRE   = regexp.MustCompile(`</?i>`)
	fnvRE      = regexp.MustCompile(`(?s)<span class=\|fnv\|>(.*?)</span>`)
	acrosticRE = regexp.MustCompile(`(?s)^(.*?)<br> (.*)$`)
	bracketRE  = regexp.MustCompile(`[\[\]{}]`)
)

// Translate tokenizes one column of embedded markup (heading, cross
// reference, or verse-paragraph text) into directives. Warnings are
// MarkupError values reporting degraded tokens; the text they covered is
// preserved as literal output.
func Translate(raw string) ([]Directive, []error) {
	var dirs []Directive
	var warns []error

	txt := strings.TrimPrefix(raw, "<br />")
	txt = strings.TrimSpace(txt)

	for len(txt) > 0 {
		switch {
		case strings.HasPrefix(txt, "<p "):
			m := pOpenRE.FindStringSubmatch(txt)
			if m == nil {
				warns = append(warns, degraded("<p", truncate(txt)))
				dirs = append(dirs, Directive{Kind: KindText, Text: txt})
				return collapse(dirs), warns
			}
			rest := txt[len(m[0]):]
			end := nextTokenIndex(rest)
			content := strings.TrimSpace(rest[:end])
			txt = rest[end:]

			def, ok := LookupClass(m[1])
			if !ok {
				warns = append(warns, degraded(m[1], truncate(content)))
				if content != "" {
					dirs = append(dirs, Directive{Kind: KindText, Text: content})
				}
				continue
			}
			if def.Acrostic {
				dirs = append(dirs, acrosticDirectives(m[1], def, content, &warns)...)
				continue
			}
			dirs = append(dirs, Directive{Kind: KindOpen, Class: m[1], Style: def, Par: true})
			if content != "" {
				dirs = append(dirs, Directive{Kind: KindText, Text: content})
			}

		case strings.HasPrefix(txt, "<span "):
			m := spanRE.FindStringSubmatch(txt)
			if m == nil {
				warns = append(warns, degraded("<span", truncate(txt)))
				dirs = append(dirs, Directive{Kind: KindText, Text: txt})
				return collapse(dirs), warns
			}
			txt = txt[len(m[0]):]

			def, ok := LookupClass(m[1])
			if !ok {
				warns = append(warns, degraded(m[1], truncate(m[2])))
				dirs = append(dirs, Directive{Kind: KindText, Text: m[2]})
				continue
			}
			dirs = append(dirs, Directive{Kind: KindOpen, Class: m[1], Style: def})
			dirs = append(dirs, linkDirectives(m[2])...)
			if m[3] != "" {
				// Closing tag present in the same column; otherwise the
				// span stays open for later columns to close.
				dirs = append(dirs, Directive{Kind: KindClose})
			}

		case strings.HasPrefix(txt, "<div "):
			m := divRE.FindStringSubmatch(txt)
			if m == nil {
				warns = append(warns, degraded("<div", truncate(txt)))
				dirs = append(dirs, Directive{Kind: KindText, Text: txt})
				return collapse(dirs), warns
			}
			txt = txt[len(m[0]):]

			def, ok := LookupClass(m[1])
			if !ok {
				warns = append(warns, degraded(m[1], truncate(m[2])))
				dirs = append(dirs, Directive{Kind: KindText, Text: m[2]})
				continue
			}
			dirs = append(dirs, Directive{Kind: KindOpen, Class: m[1], Style: def})
			if content := strings.TrimSpace(m[2]); content != "" {
				dirs = append(dirs, Directive{Kind: KindText, Text: content})
			}
			if m[3] != "" {
				dirs = append(dirs, Directive{Kind: KindClose})
			}

		case strings.HasPrefix(txt, "<"):
			// Unknown tag at the current position; emit it verbatim up to
			// the closing angle bracket so scanning can continue.
			warns = append(warns, degraded(truncate(txt), ""))
			gt := strings.IndexByte(txt, '>')
			if gt < 0 {
				dirs = append(dirs, Directive{Kind: KindText, Text: txt})
				return collapse(dirs), warns
			}
			dirs = append(dirs, Directive{Kind: KindText, Text: txt[:gt+1]})
			txt = txt[gt+1:]

		default:
			// Literal text up to the next token.
			end := nextTokenIndex(txt)
			dirs = append(dirs, Directive{Kind: KindText, Text: txt[:end]})
			txt = txt[end:]
		}
	}

	return collapse(dirs), warns
}

// TranslateLoose tokenizes verse text that mixes plain words with paragraph
// opens, the shape the main text column takes mid-verse.
func TranslateLoose(raw string) ([]Directive, []error) {
	var dirs []Directive
	var warns []error

	txt := raw
	for {
		m := looseRE.FindStringSubmatchIndex(txt)
		if m == nil {
			break
		}
		if before := txt[:m[0]]; before != "" {
			dirs = append(dirs, Directive{Kind: KindText, Text: before})
		}
		class := txt[m[2]:m[3]]
		if def, ok := LookupClass(class); ok {
			dirs = append(dirs, Directive{Kind: KindOpen, Class: class, Style: def})
		} else {
			warns = append(warns, degraded(class, truncate(raw)))
		}
		txt = txt[m[1]:]
	}
	if txt != "" {
		dirs = append(dirs, Directive{Kind: KindText, Text: txt})
	}
	return dirs, warns
}

// TranslateEnd tokenizes block-closing columns: text interleaved with
// </span> and </div> tags, each tag closing the innermost open block.
func TranslateEnd(raw string) []Directive {
	var dirs []Directive
	for i, part := range closeRE.Split(raw, -1) {
		if i > 0 {
			dirs = append(dirs, Directive{Kind: KindClose})
		}
		if part != "" {
			dirs = append(dirs, Directive{Kind: KindText, Text: part})
		}
	}
	return dirs
}

// acrosticDirectives splits acrostic heading text into its two stacked
// paragraph lines.
func acrosticDirectives(class string, def StyleDef, content string, warns *[]error) []Directive {
	m := acrosticRE.FindStringSubmatch(content)
	if m == nil {
		*warns = append(*warns, degraded(class, truncate(content)))
		return []Directive{{Kind: KindText, Text: content}}
	}
	return []Directive{
		{Kind: KindOpen, Class: class, Style: StyleDef{Styles: def.Styles[:1]}, Par: true},
		{Kind: KindText, Text: m[1]},
		{Kind: KindOpen, Class: class, Style: StyleDef{Styles: def.Styles[1:2]}, Par: true},
		{Kind: KindText, Text: m[2]},
	}
}

// linkDirectives splits span content around <a> anchors, turning each
// anchor's text into a reference directive.
func linkDirectives(content string) []Directive {
	var dirs []Directive
	pos := 0
	for _, m := range linkRE.FindAllStringSubmatchIndex(content, -1) {
		if before := content[pos:m[0]]; before != "" {
			dirs = append(dirs, Directive{Kind: KindText, Text: before})
		}
		text := content[m[2]:m[3]]
		loc := ""
		if r, _, _, ok := ref.Find(text); ok {
			loc = r.String()
		}
		dirs = append(dirs, Directive{Kind: KindRef, Text: text, Loc: loc})
		pos = m[1]
	}
	if tail := content[pos:]; tail != "" {
		dirs = append(dirs, Directive{Kind: KindText, Text: tail})
	}
	return dirs
}

// nextTokenIndex returns the offset of the next markup token in s, or
// len(s) when none remains.
func nextTokenIndex(s string) int {
	end := len(s)
	for _, tok := range []string{"<p ", "<span ", "<div "} {
		if i := strings.Index(s, tok); i >= 0 && i < end {
			end = i
		}
	}
	return end
}

// collapse removes open-then-immediate-close pairs that would emit empty
// blocks.
func collapse(dirs []Directive) []Directive {
	out := dirs[:0]
	for _, d := range dirs {
		if d.Kind == KindClose && len(out) > 0 && out[len(out)-1].Kind == KindOpen {
			out = out[:len(out)-1]
			continue
		}
		out = append(out, d)
	}
	return out
}

// FnvPart is one run of footnote text, optionally followed by an embedded
// verse number span.
type FnvPart struct {
	Text  string
	Verse string // "" when the part is trailing text
}

// SplitFnv splits footnote text around <span class=|fnv|> verse-number
// spans.
func SplitFnv(s string) []FnvPart {
	var parts []FnvPart
	pos := 0
	for _, m := range fnvRE.FindAllStringSubmatchIndex(s, -1) {
		parts = append(parts, FnvPart{Text: s[pos:m[0]], Verse: s[m[2]:m[3]]})
		pos = m[1]
	}
	if pos < len(s) || len(parts) == 0 {
		parts = append(parts, FnvPart{Text: s[pos:]})
	}
	return parts
}

// SplitItalics splits footnote text on <i> boundaries; odd-numbered parts
// were italicized in the source (quoted words, by the dataset convention).
func SplitItalics(s string) []string {
	return italicRE.Split(s, -1)
}

// Debracket strips the dataset's editorial bracket characters.
func Debracket(s string) string {
	return bracketRE.ReplaceAllString(s, "")
}

func truncate(s string) string {
	if len(s) > 60 {
		return s[:60] + "..."
	}
	return s
}

func degraded(token, context string) error {
	return &converrors.MarkupError{Token: token, Context: context}
}
