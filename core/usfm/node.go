// Package usfm provides the document node model for generated scripture
// documents and its USFM text serialization.
//
// The model is a small element tree: a document holds book, chapter, and
// paragraph nodes; paragraphs hold verse markers, character spans, footnotes,
// and reference markers. Text interleaves with children the way XML does,
// via Text (before children) and Tail (after a child).
package usfm

// Node is one element of a document tree.
type Node struct {
	Tag    string // "doc", "book", "para", "chapter", "verse", "char", "note", "ref"
	Style  string // USFM marker name for para/char/note nodes
	Number string // chapter or verse number
	Code   string // book code, book nodes only
	Caller string // footnote caller, note nodes only
	Loc    string // canonical reference target, ref nodes only

	Text string // text before the first child
	Tail string // text after this node, within the parent

	// Irregular marks verse nodes emitted outside the expected sequence
	// (bridged or repeated verses). It does not affect serialization.
	Irregular bool

	Parent   *Node
	Children []*Node
}

// Document is one book's assembled output.
type Document struct {
	Code string
	Root *Node
}

// NewDocument creates an empty document for a book code.
func NewDocument(code string) *Document {
	return &Document{
		Code: code,
		Root: &Node{Tag: "doc"},
	}
}

// NewNode creates a detached node.
func NewNode(tag, style string) *Node {
	return &Node{Tag: tag, Style: style}
}

// Append attaches child to n.
func (n *Node) Append(child *Node) {
	child.Parent = n
	n.Children = append(n.Children, child)
}

// NewChild creates a node and attaches it to n.
func (n *Node) NewChild(tag, style string) *Node {
	c := NewNode(tag, style)
	n.Append(c)
	return c
}

// Root returns the topmost ancestor of n.
func (n *Node) Root() *Node {
	for n.Parent != nil {
		n = n.Parent
	}
	return n
}

// LastChild returns the final child of n, or nil.
func (n *Node) LastChild() *Node {
	if len(n.Children) == 0 {
		return nil
	}
	return n.Children[len(n.Children)-1]
}

// AppendText appends text at the current insertion point of n: the tail of
// the last child when children exist, otherwise the node's own text.
func (n *Node) AppendText(s string) {
	if s == "" {
		return
	}
	if last := n.LastChild(); last != nil {
		last.Tail += s
	} else {
		n.Text += s
	}
}

// EnsureSpace guarantees the content of n ends with whitespace, so a marker
// appended next is separated from preceding text.
func (n *Node) EnsureSpace() {
	if len(n.Children) == 0 {
		if n.Text != "" && !endsWithSpace(n.Text) {
			n.Text += " "
		}
		return
	}
	last := n.LastChild()
	if last.Tail != "" {
		if !endsWithSpace(last.Tail) {
			last.Tail += " "
		}
		return
	}
	last.EnsureSpace()
}

// IsEmpty reports whether n carries no text and no children.
func (n *Node) IsEmpty() bool {
	return n.Text == "" && len(n.Children) == 0
}

func endsWithSpace(s string) bool {
	c := s[len(s)-1]
	return c == ' ' || c == '\n'
}
