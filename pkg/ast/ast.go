// Package ast models the concrete syntax tree the analyzer consumes. The
// tree is produced by the host's parser; this package only defines the node
// shape, spans, and typed accessors over children. Nodes are immutable after
// construction.
package ast

// FileID identifies a source file within the host's workspace. Zero means
// "no file".
type FileID uint32

// Span locates a node inside its file by byte offsets. The zero Span is
// detached: it points at no source at all (synthetic nodes).
type Span struct {
	File       FileID
	Start, End uint32
}

// Detached reports whether the span carries no source location.
func (s Span) Detached() bool {
	return s == Span{}
}

// Node is one vertex of the concrete syntax tree.
type Node struct {
	kind     Kind
	span     Span
	text     string
	unOp     UnOp
	binOp    BinOp
	children []*Node
}

// New constructs an inner node.
func New(kind Kind, span Span, children ...*Node) *Node {
	return &Node{kind: kind, span: span, children: children}
}

// Leaf constructs a node carrying source text and no children.
func Leaf(kind Kind, span Span, text string) *Node {
	return &Node{kind: kind, span: span, text: text}
}

// NewUnary constructs a unary expression node.
func NewUnary(span Span, op UnOp, operand *Node) *Node {
	return &Node{kind: KindUnary, span: span, unOp: op, children: []*Node{operand}}
}

// NewBinary constructs a binary expression node.
func NewBinary(span Span, op BinOp, lhs, rhs *Node) *Node {
	return &Node{kind: KindBinary, span: span, binOp: op, children: []*Node{lhs, rhs}}
}

func (n *Node) Kind() Kind { return n.kind }
func (n *Node) Span() Span { return n.span }

// Text returns the leaf's source text, or "" for inner nodes.
func (n *Node) Text() string { return n.text }

// Children returns all children, trivia included.
func (n *Node) Children() []*Node { return n.children }

// exprChildren returns the children that can carry an expression value.
func (n *Node) exprChildren() []*Node {
	out := make([]*Node, 0, len(n.children))
	for _, c := range n.children {
		if c != nil && !c.kind.IsTrivia() {
			out = append(out, c)
		}
	}
	return out
}

// exprChild returns the i-th non-trivia child.
func (n *Node) exprChild(i int) (*Node, bool) {
	for _, c := range n.children {
		if c == nil || c.kind.IsTrivia() {
			continue
		}
		if i == 0 {
			return c, true
		}
		i--
	}
	return nil, false
}
