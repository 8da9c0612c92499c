// Package ref provides canonical scripture references for the BSB converter:
// parsing of human-style reference text ("Genesis 1:1", "1 Samuel 3:4-5:2"),
// the canonical book table, and reference ordering.
package ref

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Ref represents a canonical scripture reference, optionally a range.
// Zero Chapter means a whole-book reference; zero Verse a whole-chapter one.
type Ref struct {
	Book       string // canonical book code (e.g. "GEN", "1SA")
	Chapter    int
	Verse      int
	ChapterEnd int // set only for ranges crossing a chapter boundary
	VerseEnd   int // set only for ranges
}

// scriptureRange is the participle grammar for human-style references.
// Examples: "Genesis 1:1", "Gen 1:1-3", "1 Samuel 3:4-5:2", "Psalm 23"
//
//nolint:govet // participle grammar tags are not standard struct tags
type scriptureRange struct {
	Book         string `@Book`
	ChapterStart *int   `( @Number`
	VerseStart   *int   `( ":" @Number )?`
	ChapterEnd   *int   `( "-" ( @Number`
	VerseEnd     *int   `    ( ":" @Number )? )? )? )?`
}

// refLexer tokenizes scripture references.
var refLexer = lexer.MustSimple([]lexer.SimpleRule{
	// Book names: optional leading ordinal, words, optional "of" connective.
	// Examples: Genesis, Gen., 1 Samuel, Song of Solomon
	{Name: "Book", Pattern: `(?:\d\s*)?[A-Za-z]+(?:\s+(?:of\s+)?[A-Za-z]+)*\.?`},
	{Name: "Number", Pattern: `\d+`},
	{Name: "Colon", Pattern: `:`},
	{Name: "Dash", Pattern: `-`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var refParser = participle.MustBuild[scriptureRange](
	participle.Lexer(refLexer),
	participle.Elide("Whitespace"),
)

// Parse parses a reference string into a canonical Ref.
// The book part may be a full name, a code, or a common abbreviation.
func Parse(s string) (Ref, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, "–", "-"))
	if s == "" {
		return Ref{}, fmt.Errorf("empty reference string")
	}

	parsed, err := refParser.ParseString("", s)
	if err != nil {
		return Ref{}, fmt.Errorf("failed to parse reference %q: %w", s, err)
	}

	code, ok := CanonicalBook(parsed.Book)
	if !ok {
		return Ref{}, fmt.Errorf("failed to parse reference %q: unknown book %q", s, parsed.Book)
	}

	r := Ref{Book: code}
	if parsed.ChapterStart != nil {
		r.Chapter = *parsed.ChapterStart
	}
	if parsed.VerseStart != nil {
		r.Verse = *parsed.VerseStart
	}
	if parsed.ChapterEnd != nil {
		r.ChapterEnd = *parsed.ChapterEnd
	}
	if parsed.VerseEnd != nil {
		r.VerseEnd = *parsed.VerseEnd
	}

	// "Genesis 1:1-5" parses with the number after the dash as ChapterEnd;
	// when a start verse is present and no end verse, it is really VerseEnd.
	if r.Verse > 0 && r.ChapterEnd > 0 && r.VerseEnd == 0 {
		r.VerseEnd = r.ChapterEnd
		r.ChapterEnd = 0
	}

	return r, nil
}

// String returns the canonical "BOOK CHAPTER:VERSE" form, with range
// suffixes "-V" or "-C:V" where applicable.
func (r Ref) String() string {
	var sb strings.Builder
	sb.WriteString(r.Book)
	if r.Chapter > 0 {
		sb.WriteByte(' ')
		sb.WriteString(strconv.Itoa(r.Chapter))
		if r.Verse > 0 {
			sb.WriteByte(':')
			sb.WriteString(strconv.Itoa(r.Verse))
		}
	}
	if r.ChapterEnd > 0 {
		sb.WriteByte('-')
		sb.WriteString(strconv.Itoa(r.ChapterEnd))
		if r.VerseEnd > 0 {
			sb.WriteByte(':')
			sb.WriteString(strconv.Itoa(r.VerseEnd))
		}
	} else if r.VerseEnd > 0 {
		sb.WriteByte('-')
		sb.WriteString(strconv.Itoa(r.VerseEnd))
	}
	return sb.String()
}

// IsRange reports whether the reference spans more than one verse.
func (r Ref) IsRange() bool {
	return r.VerseEnd > 0 || r.ChapterEnd > 0
}

// Compare orders references by canonical book order, then chapter, then
// verse. Unknown books sort after known ones, lexically by code.
func Compare(a, b Ref) int {
	ao, bo := BookOrder(a.Book), BookOrder(b.Book)
	switch {
	case ao < 0 && bo < 0:
		if c := strings.Compare(a.Book, b.Book); c != 0 {
			return c
		}
	case ao < 0:
		return 1
	case bo < 0:
		return -1
	case ao != bo:
		if ao < bo {
			return -1
		}
		return 1
	}
	if a.Chapter != b.Chapter {
		if a.Chapter < b.Chapter {
			return -1
		}
		return 1
	}
	if a.Verse != b.Verse {
		if a.Verse < b.Verse {
			return -1
		}
		return 1
	}
	// Ranges after the bare verse, shorter ranges first.
	return strings.Compare(a.String(), b.String())
}

// findRE locates candidate reference spans inside free text. The book
// candidate may include leading non-book words that Find trims away.
var findRE = regexp.MustCompile(`((?:\d\s*)?[A-Za-z]+(?:\s+(?:of\s+)?[A-Za-z]+)*)\s*(\d+):(\d+)(\s*[-\x{2013}]\s*(\d+)(:(\d+))?)?`)

// Find locates the first scripture reference inside free text, returning the
// parsed reference and the byte span it occupies. ok is false when no
// resolvable reference is present.
func Find(s string) (r Ref, start, end int, ok bool) {
	loc := findRE.FindStringSubmatchIndex(s)
	if loc == nil {
		return Ref{}, 0, 0, false
	}
	candidate := s[loc[2]:loc[3]]

	// Trim leading words until the remainder names a known book.
	starts := fieldStarts(candidate)
	code := ""
	bookStart := -1
	for _, fs := range starts {
		if c, found := CanonicalBook(candidate[fs:]); found {
			code = c
			bookStart = loc[2] + fs
			break
		}
	}
	if code == "" {
		return Ref{}, 0, 0, false
	}

	r = Ref{Book: code}
	r.Chapter = mustAtoi(s[loc[4]:loc[5]])
	r.Verse = mustAtoi(s[loc[6]:loc[7]])
	if loc[10] >= 0 {
		if loc[14] >= 0 {
			r.ChapterEnd = mustAtoi(s[loc[10]:loc[11]])
			r.VerseEnd = mustAtoi(s[loc[14]:loc[15]])
		} else {
			r.VerseEnd = mustAtoi(s[loc[10]:loc[11]])
		}
	}
	return r, bookStart, loc[1], true
}

// fieldStarts returns the byte offset of each whitespace-separated field.
func fieldStarts(s string) []int {
	var starts []int
	inField := false
	for i, c := range s {
		if c == ' ' || c == '\t' || c == '\n' {
			inField = false
			continue
		}
		if !inField {
			starts = append(starts, i)
			inField = true
		}
	}
	return starts
}

func mustAtoi(s string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(s))
	return n
}
