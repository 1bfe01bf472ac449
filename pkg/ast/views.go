package ast

// Typed views over raw nodes. Each AsX accessor checks the node kind and
// returns a thin wrapper exposing the node's named parts; parts are resolved
// positionally over non-trivia children, so trees with or without token
// children both work.

// Unary is a unary expression.
type Unary struct{ n *Node }

func (n *Node) AsUnary() (Unary, bool) {
	return Unary{n}, n.kind == KindUnary
}

func (u Unary) Op() UnOp { return u.n.unOp }

func (u Unary) Operand() *Node {
	c, _ := u.n.exprChild(0)
	return c
}

// Binary is a binary expression.
type Binary struct{ n *Node }

func (n *Node) AsBinary() (Binary, bool) {
	return Binary{n}, n.kind == KindBinary
}

func (b Binary) Op() BinOp { return b.n.binOp }

func (b Binary) Lhs() *Node {
	c, _ := b.n.exprChild(0)
	return c
}

func (b Binary) Rhs() *Node {
	c, _ := b.n.exprChild(1)
	return c
}

// Named is a `name: expr` item inside dicts, args, and params.
type Named struct{ n *Node }

func (n *Node) AsNamed() (Named, bool) {
	return Named{n}, n.kind == KindNamed
}

func (m Named) Name() *Node {
	c, _ := m.n.exprChild(0)
	return c
}

func (m Named) Expr() *Node {
	c, _ := m.n.exprChild(1)
	return c
}

// Keyed is a `"key": expr` item inside dicts.
type Keyed struct{ n *Node }

func (n *Node) AsKeyed() (Keyed, bool) {
	return Keyed{n}, n.kind == KindKeyed
}

func (k Keyed) Key() *Node {
	c, _ := k.n.exprChild(0)
	return c
}

func (k Keyed) Expr() *Node {
	c, _ := k.n.exprChild(1)
	return c
}

// Spread is a `..expr` argument or a `..sink` parameter.
type Spread struct{ n *Node }

func (n *Node) AsSpread() (Spread, bool) {
	return Spread{n}, n.kind == KindSpread
}

// SinkIdent returns the bound identifier when the spread names one.
func (s Spread) SinkIdent() (*Node, bool) {
	c, ok := s.n.exprChild(0)
	if !ok || c.kind != KindIdent {
		return nil, false
	}
	return c, true
}

func (s Spread) Expr() *Node {
	c, _ := s.n.exprChild(0)
	return c
}

// FieldAccess is `target.field`.
type FieldAccess struct{ n *Node }

func (n *Node) AsFieldAccess() (FieldAccess, bool) {
	return FieldAccess{n}, n.kind == KindFieldAccess
}

func (f FieldAccess) Target() *Node {
	c, _ := f.n.exprChild(0)
	return c
}

func (f FieldAccess) Field() *Node {
	c, _ := f.n.exprChild(1)
	return c
}

// FuncCall is `callee(args)`.
type FuncCall struct{ n *Node }

func (n *Node) AsFuncCall() (FuncCall, bool) {
	return FuncCall{n}, n.kind == KindFuncCall
}

func (f FuncCall) Callee() *Node {
	c, _ := f.n.exprChild(0)
	return c
}

func (f FuncCall) Args() *Node {
	for _, c := range f.n.exprChildren() {
		if c.kind == KindArgs {
			return c
		}
	}
	return nil
}

// Closure is `(params) => body`, possibly named.
type Closure struct{ n *Node }

func (n *Node) AsClosure() (Closure, bool) {
	return Closure{n}, n.kind == KindClosure
}

func (c Closure) Params() *Node {
	for _, ch := range c.n.exprChildren() {
		if ch.kind == KindParams {
			return ch
		}
	}
	return nil
}

func (c Closure) Body() *Node {
	kids := c.n.exprChildren()
	if len(kids) == 0 {
		return nil
	}
	return kids[len(kids)-1]
}

// LetBinding is `let target = init` or `let f(params) = body`.
type LetBinding struct{ n *Node }

func (n *Node) AsLetBinding() (LetBinding, bool) {
	return LetBinding{n}, n.kind == KindLetBinding
}

// Target returns the bound pattern or function name.
func (l LetBinding) Target() *Node {
	c, _ := l.n.exprChild(0)
	return c
}

// Init returns the initializer, if any.
func (l LetBinding) Init() (*Node, bool) {
	return l.n.exprChild(1)
}

// SetRule is `set target(args) [if cond]`.
type SetRule struct{ n *Node }

func (n *Node) AsSetRule() (SetRule, bool) {
	return SetRule{n}, n.kind == KindSetRule
}

func (s SetRule) Target() *Node {
	c, _ := s.n.exprChild(0)
	return c
}

func (s SetRule) Args() *Node {
	for _, c := range s.n.exprChildren() {
		if c.kind == KindArgs {
			return c
		}
	}
	return nil
}

func (s SetRule) Condition() (*Node, bool) {
	return s.n.exprChild(2)
}

// ShowRule is `show [selector]: transform`.
type ShowRule struct{ n *Node }

func (n *Node) AsShowRule() (ShowRule, bool) {
	return ShowRule{n}, n.kind == KindShowRule
}

func (s ShowRule) Selector() (*Node, bool) {
	kids := s.n.exprChildren()
	if len(kids) < 2 {
		return nil, false
	}
	return kids[0], true
}

func (s ShowRule) Transform() *Node {
	kids := s.n.exprChildren()
	if len(kids) == 0 {
		return nil
	}
	return kids[len(kids)-1]
}

// Conditional is `if cond { then } [else { other }]`.
type Conditional struct{ n *Node }

func (n *Node) AsConditional() (Conditional, bool) {
	return Conditional{n}, n.kind == KindConditional
}

func (c Conditional) Condition() *Node {
	ch, _ := c.n.exprChild(0)
	return ch
}

func (c Conditional) Then() *Node {
	ch, _ := c.n.exprChild(1)
	return ch
}

func (c Conditional) Else() (*Node, bool) {
	return c.n.exprChild(2)
}

// WhileLoop is `while cond { body }`.
type WhileLoop struct{ n *Node }

func (n *Node) AsWhileLoop() (WhileLoop, bool) {
	return WhileLoop{n}, n.kind == KindWhileLoop
}

func (w WhileLoop) Condition() *Node {
	c, _ := w.n.exprChild(0)
	return c
}

func (w WhileLoop) Body() *Node {
	c, _ := w.n.exprChild(1)
	return c
}

// ForLoop is `for pattern in iterable { body }`.
type ForLoop struct{ n *Node }

func (n *Node) AsForLoop() (ForLoop, bool) {
	return ForLoop{n}, n.kind == KindForLoop
}

func (f ForLoop) Pattern() *Node {
	c, _ := f.n.exprChild(0)
	return c
}

func (f ForLoop) Iterable() *Node {
	c, _ := f.n.exprChild(1)
	return c
}

func (f ForLoop) Body() *Node {
	c, _ := f.n.exprChild(2)
	return c
}

// ModuleImport is `import source[: items|*]`.
type ModuleImport struct{ n *Node }

func (n *Node) AsModuleImport() (ModuleImport, bool) {
	return ModuleImport{n}, n.kind == KindModuleImport
}

func (m ModuleImport) Source() *Node {
	c, _ := m.n.exprChild(0)
	return c
}

func (m ModuleImport) Items() (*Node, bool) {
	for _, c := range m.n.exprChildren() {
		if c.kind == KindImportItems {
			return c, true
		}
	}
	return nil, false
}

// ModuleInclude is `include source`.
type ModuleInclude struct{ n *Node }

func (n *Node) AsModuleInclude() (ModuleInclude, bool) {
	return ModuleInclude{n}, n.kind == KindModuleInclude
}

func (m ModuleInclude) Source() *Node {
	c, _ := m.n.exprChild(0)
	return c
}
