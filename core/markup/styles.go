package markup

// StyleDef describes how one inline class token maps onto USFM styles.
type StyleDef struct {
	// Styles are opened in order; paragraph styles climb to the document
	// level, character styles nest at the current position.
	Styles []string

	// After names a paragraph style opened as a sibling once Styles are
	// placed; text then flows into it ("tab1" = blank line, then "pmo").
	After string

	// Acrostic splits the token's text at "<br> " into two stacked
	// paragraphs of Styles[0] and Styles[1].
	Acrostic bool

	// RefText marks the psalm-heading verse-reference class, which gets
	// special verse-marker handling instead of a style of its own.
	RefText bool
}

// classTable maps the dataset's inline class tokens to USFM styles.
var classTable = map[string]StyleDef{
	"acrostic":         {Styles: []string{"qa", "qa"}, Acrostic: true},
	"cross":            {Styles: []string{"r"}},
	"fnv":              {Styles: []string{"fv"}},
	"hdg":              {Styles: []string{"s1"}},
	"ihdg":             {Styles: []string{"s2"}},
	"indent1":          {Styles: []string{"q1"}},
	"indent1stline":    {Styles: []string{"b", "q1"}},
	"indent1stlinered": {Styles: []string{"q1", "wj"}},
	"indent2":          {Styles: []string{"q2"}},
	"indentred1":       {Styles: []string{"q1", "wj"}},
	"indentred2":       {Styles: []string{"q2", "wj"}},
	"inscrip":          {Styles: []string{"pc"}},
	"list1":            {Styles: []string{"li1"}},
	"list1stline":      {Styles: []string{"b", "li1"}},
	"list2":            {Styles: []string{"li2"}},
	"pshdg":            {Styles: []string{"mr"}},
	"red":              {Styles: []string{"wj"}},
	"reftext":          {RefText: true},
	"reg":              {Styles: []string{"p"}},
	"selah":            {Styles: []string{"qr"}},
	"subhdg":           {Styles: []string{"s2"}},
	"suphdg":           {Styles: []string{"ms"}},
	"tab1":             {Styles: []string{"b"}, After: "pmo"},
	"tab1stline":       {Styles: []string{"pmo"}},
	"tab1stlinered":    {Styles: []string{"pmo", "wj"}},
}

// LookupClass resolves an inline class token to its style definition.
func LookupClass(class string) (StyleDef, bool) {
	def, ok := classTable[class]
	return def, ok
}
