package ref

import "strings"

// Book describes one canonical book: its USFM code and its traditional
// English name as used in the BSB tables.
type Book struct {
	Code string
	Name string
}

// Canon lists the 66 books in canonical (Genesis-first) order.
// Names follow the BSB tables convention ("Psalm", "Song of Solomon").
var Canon = []Book{
	{"GEN", "Genesis"}, {"EXO", "Exodus"}, {"LEV", "Leviticus"}, {"NUM", "Numbers"},
	{"DEU", "Deuteronomy"}, {"JOS", "Joshua"}, {"JDG", "Judges"}, {"RUT", "Ruth"},
	{"1SA", "1 Samuel"}, {"2SA", "2 Samuel"}, {"1KI", "1 Kings"}, {"2KI", "2 Kings"},
	{"1CH", "1 Chronicles"}, {"2CH", "2 Chronicles"}, {"EZR", "Ezra"}, {"NEH", "Nehemiah"},
	{"EST", "Esther"}, {"JOB", "Job"}, {"PSA", "Psalm"}, {"PRO", "Proverbs"},
	{"ECC", "Ecclesiastes"}, {"SNG", "Song of Solomon"}, {"ISA", "Isaiah"}, {"JER", "Jeremiah"},
	{"LAM", "Lamentations"}, {"EZK", "Ezekiel"}, {"DAN", "Daniel"}, {"HOS", "Hosea"},
	{"JOL", "Joel"}, {"AMO", "Amos"}, {"OBA", "Obadiah"}, {"JON", "Jonah"},
	{"MIC", "Micah"}, {"NAM", "Nahum"}, {"HAB", "Habakkuk"}, {"ZEP", "Zephaniah"},
	{"HAG", "Haggai"}, {"ZEC", "Zechariah"}, {"MAL", "Malachi"},
	{"MAT", "Matthew"}, {"MRK", "Mark"}, {"LUK", "Luke"}, {"JHN", "John"},
	{"ACT", "Acts"}, {"ROM", "Romans"}, {"1CO", "1 Corinthians"}, {"2CO", "2 Corinthians"},
	{"GAL", "Galatians"}, {"EPH", "Ephesians"}, {"PHP", "Philippians"}, {"COL", "Colossians"},
	{"1TH", "1 Thessalonians"}, {"2TH", "2 Thessalonians"}, {"1TI", "1 Timothy"}, {"2TI", "2 Timothy"},
	{"TIT", "Titus"}, {"PHM", "Philemon"}, {"HEB", "Hebrews"}, {"JAS", "James"},
	{"1PE", "1 Peter"}, {"2PE", "2 Peter"}, {"1JN", "1 John"}, {"2JN", "2 John"},
	{"3JN", "3 John"}, {"JUD", "Jude"}, {"REV", "Revelation"},
}

// aliases maps additional accepted spellings to book codes, beyond the
// canonical names and codes themselves.
var aliases = map[string]string{
	"psalms":        "PSA",
	"song of songs": "SNG",
	"song":          "SNG",
	"canticles":     "SNG",
	"matt":          "MAT",
	"mk":            "MRK",
	"lk":            "LUK",
	"jn":            "JHN",
	"phil":          "PHP",
	"philem":        "PHM",
}

var (
	orderByCode = make(map[string]int, len(Canon))
	codeByName  = make(map[string]string, len(Canon)*2)
)

func init() {
	for i, b := range Canon {
		orderByCode[b.Code] = i
		codeByName[normalizeName(b.Code)] = b.Code
		codeByName[normalizeName(b.Name)] = b.Code
	}
	for alias, code := range aliases {
		codeByName[alias] = code
	}
}

// normalizeName lowercases a book name, strips trailing periods and
// collapses interior whitespace for lookup.
func normalizeName(s string) string {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "."))
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// KnownBook reports whether code is a canonical book code.
func KnownBook(code string) bool {
	_, ok := orderByCode[strings.ToUpper(code)]
	return ok
}

// BookOrder returns the canonical (Genesis-first) position of a book code,
// or -1 for unknown codes.
func BookOrder(code string) int {
	if i, ok := orderByCode[strings.ToUpper(code)]; ok {
		return i
	}
	return -1
}

// BookName returns the traditional English name for a book code, or the
// code itself when unknown.
func BookName(code string) string {
	if i, ok := orderByCode[strings.ToUpper(code)]; ok {
		return Canon[i].Name
	}
	return code
}

// CanonicalBook expands a book name, code, or common abbreviation to its
// canonical code. The second result reports whether the name was recognized.
func CanonicalBook(name string) (string, bool) {
	code, ok := codeByName[normalizeName(name)]
	return code, ok
}
