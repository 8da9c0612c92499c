package usfm

// Category classifies a USFM marker by where it may appear.
type Category int

const (
	// CategoryNone marks an unrecognized style.
	CategoryNone Category = iota
	// CategoryPara marks paragraph-level styles.
	CategoryPara
	// CategoryChar marks inline character styles.
	CategoryChar
)

// paraMarkers lists paragraph-level styles the converter emits or accepts.
var paraMarkers = map[string]bool{
	"h": true, "toc1": true, "toc2": true, "toc3": true,
	"mt1": true, "mt2": true, "mt3": true,
	"ms": true, "ms1": true, "mr": true,
	"s1": true, "s2": true, "s3": true, "r": true, "sr": true, "d": true, "sp": true,
	"p": true, "m": true, "b": true, "pc": true, "pmo": true, "pm": true, "po": true,
	"mi": true, "nb": true, "cls": true, "pi1": true, "pi2": true,
	"q1": true, "q2": true, "q3": true, "qa": true, "qr": true, "qc": true,
	"li1": true, "li2": true, "li3": true,
}

// charMarkers lists inline character styles the converter emits or accepts.
var charMarkers = map[string]bool{
	"wj": true, "nd": true, "it": true, "bd": true, "em": true, "sc": true,
	"add": true, "tl": true, "qs": true, "k": true, "ord": true, "no": true,
	"fr": true, "ft": true, "fq": true, "fqa": true, "fv": true, "fk": true, "fl": true,
	"xo": true, "xt": true, "xq": true,
}

// sectionParas lists the paragraph styles that head a section. A blank-line
// marker directly after one of these is dropped.
var sectionParas = map[string]bool{
	"s1": true, "s2": true, "s3": true,
	"ms": true, "ms1": true, "mr": true, "r": true, "sr": true,
}

// noteContent lists character styles that live inside a footnote and run
// open-ended until the next marker.
var noteContent = map[string]bool{
	"fr": true, "ft": true, "fq": true, "fqa": true, "fk": true, "fl": true,
}

// CategoryOf returns the marker category of a style name.
func CategoryOf(style string) Category {
	switch {
	case paraMarkers[style]:
		return CategoryPara
	case charMarkers[style]:
		return CategoryChar
	default:
		return CategoryNone
	}
}

// IsSectionPara reports whether style is a section-heading paragraph.
func IsSectionPara(style string) bool {
	return sectionParas[style]
}

// IsNoteContent reports whether style is an open-ended footnote content
// marker.
func IsNoteContent(style string) bool {
	return noteContent[style]
}
