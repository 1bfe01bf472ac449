package typechecker

import (
	"strconv"

	"marq/analyzer-go/pkg/ast"
)

// check computes a node's type and witnesses it at the node's span. A nil
// node, like everything else the walk cannot resolve, is Any.
func (c *Checker) check(n *ast.Node) Type {
	if n == nil {
		return Any
	}
	t := c.checkNode(n)
	if t == nil {
		t = Any
	}
	c.info.WitnessAtLeast(n.Span(), t)
	return t
}

func (c *Checker) checkNode(n *ast.Node) Type {
	switch n.Kind() {
	case ast.KindMarkup:
		return c.checkSeq(n, ModeMarkup)
	case ast.KindCode:
		return c.checkSeq(n, ModeCode)
	case ast.KindMath, ast.KindEquation:
		return c.checkSeq(n, ModeMath)
	case ast.KindCodeBlock:
		if only, ok := onlyChild(n); ok && only.Kind() == ast.KindCode {
			return c.check(only)
		}
		return c.checkSeq(n, ModeCode)
	case ast.KindContentBlock:
		return c.checkSeq(n, ModeMarkup)

	case ast.KindText, ast.KindEscape, ast.KindRaw, ast.KindLink,
		ast.KindLinebreak, ast.KindRef:
		return Content
	case ast.KindHeading, ast.KindStrong, ast.KindEmph,
		ast.KindListItem, ast.KindEnumItem, ast.KindTermItem:
		c.checkChildren(n)
		return Content
	case ast.KindSpace, ast.KindParbreak:
		return Space
	case ast.KindLabel:
		return LitLabel

	case ast.KindNone:
		return None
	case ast.KindAuto:
		return Auto
	case ast.KindBool:
		if n.Text() == "true" {
			return BoolTrue
		}
		return BoolFalse
	case ast.KindInt:
		if v, err := strconv.ParseInt(n.Text(), 0, 64); err == nil {
			return c.in.InsAt(IntValue{Val: v}, n.Span())
		}
		return LitInt
	case ast.KindFloat:
		if v, err := strconv.ParseFloat(n.Text(), 64); err == nil {
			return c.in.InsAt(FloatValue{Val: v}, n.Span())
		}
		return LitFloat
	case ast.KindStr:
		return c.in.InsAt(StrValue{Val: unquote(n.Text())}, n.Span())

	case ast.KindIdent:
		return c.checkIdent(n, c.mode())
	case ast.KindMathIdent:
		return c.checkIdent(n, ModeMath)

	case ast.KindParenthesized:
		return c.check(firstExpr(n))
	case ast.KindArray:
		return c.checkArray(n)
	case ast.KindDict:
		return c.checkDict(n)
	case ast.KindUnary:
		return c.checkUnary(n)
	case ast.KindBinary:
		return c.checkBinary(n)
	case ast.KindFieldAccess:
		return c.checkFieldAccess(n)
	case ast.KindFuncCall:
		return c.checkFuncCall(n)
	case ast.KindArgs:
		return ArgTy{Sig: c.checkArgs(n)}
	case ast.KindClosure:
		return c.checkClosure(n)
	case ast.KindLetBinding:
		return c.checkLet(n)
	case ast.KindSetRule:
		return c.checkSet(n)
	case ast.KindShowRule:
		return c.checkShow(n)
	case ast.KindConditional:
		return c.checkConditional(n)
	case ast.KindWhileLoop:
		return c.checkWhile(n)
	case ast.KindForLoop:
		return c.checkFor(n)
	case ast.KindModuleImport:
		return c.checkImport(n)
	case ast.KindModuleInclude:
		c.check(firstExpr(n))
		return Content
	case ast.KindDestructuring:
		return c.checkPattern(n)
	case ast.KindDestructAssignment:
		return c.checkDestructAssign(n)

	case ast.KindLoopBreak:
		return Break
	case ast.KindLoopContinue:
		return Continue
	case ast.KindFuncReturn:
		if expr := firstExpr(n); expr != nil {
			c.recordReturn(c.check(expr))
		} else {
			c.recordReturn(None)
		}
		return Return

	case ast.KindNamed, ast.KindKeyed, ast.KindSpread,
		ast.KindImportItems, ast.KindParams, ast.KindUnderscore:
		return Clause
	}
	c.checkChildren(n)
	return Any
}

// checkSeq checks a sequence's children under a mode and joins them. A
// control-flow marker escaping the sequence becomes the sequence's type, so
// enclosing joiners short-circuit too.
func (c *Checker) checkSeq(n *ast.Node, m Mode) Type {
	c.pushMode(m)
	snapshot := c.info.StartScope()
	j := NewJoiner()
	for _, child := range n.Children() {
		if child == nil || child.Kind().IsTrivia() {
			continue
		}
		j.Join(c.check(child))
	}
	c.info.EndScope(snapshot)
	c.popMode()
	if flow, ok := j.Flow(); ok {
		return flow
	}
	return j.Finalize()
}

func (c *Checker) checkChildren(n *ast.Node) {
	for _, child := range n.Children() {
		if child == nil || child.Kind().IsTrivia() {
			continue
		}
		c.check(child)
	}
}

func (c *Checker) checkIdent(n *ast.Node, m Mode) Type {
	if id, ok := c.defs.Resolve(n.Span()); ok {
		return c.varOf(id)
	}
	if c.lib != nil {
		if v, ok := c.lib.Lookup(n.Text(), m); ok {
			return c.in.InsAt(v, n.Span())
		}
	}
	return Any
}

func (c *Checker) checkArray(n *ast.Node) Type {
	var elems []Type
	for _, child := range n.Children() {
		if child == nil || child.Kind().IsTrivia() {
			continue
		}
		if child.Kind() == ast.KindSpread {
			sp, _ := child.AsSpread()
			spread := c.check(sp.Expr())
			if tup, ok := spread.(*TupleTy); ok {
				elems = append(elems, tup.Elems...)
			} else {
				elems = append(elems, Any)
			}
			continue
		}
		elems = append(elems, c.check(child))
	}
	return c.in.Tuple(elems)
}

func (c *Checker) checkDict(n *ast.Node) Type {
	var fields []RecordField
	for _, child := range n.Children() {
		if child == nil || child.Kind().IsTrivia() {
			continue
		}
		switch child.Kind() {
		case ast.KindNamed:
			nm, _ := child.AsNamed()
			if name := nm.Name(); name != nil {
				fields = append(fields, RecordField{
					Name: fieldName(name),
					Ty:   c.check(nm.Expr()),
					Span: name.Span(),
				})
			}
		case ast.KindKeyed:
			kv, _ := child.AsKeyed()
			if key := kv.Key(); key != nil && key.Kind() == ast.KindStr {
				fields = append(fields, RecordField{
					Name: unquote(key.Text()),
					Ty:   c.check(kv.Expr()),
					Span: key.Span(),
				})
			}
		case ast.KindSpread:
			sp, _ := child.AsSpread()
			c.check(sp.Expr())
		}
	}
	return c.in.Record(fields)
}

func (c *Checker) checkUnary(n *ast.Node) Type {
	u, _ := n.AsUnary()
	operand := c.check(u.Operand())
	if folded, ok := c.foldUnary(u.Op(), operand, n.Span()); ok {
		return folded
	}
	return UnaryTy{Op: u.Op(), Ty: operand}
}

func (c *Checker) checkBinary(n *ast.Node) Type {
	b, _ := n.AsBinary()
	op := b.Op()
	lhs := c.check(b.Lhs())
	rhs := c.check(b.Rhs())

	if folded, ok := c.foldBinary(op, lhs, rhs, n.Span()); ok {
		return folded
	}

	switch op {
	case ast.BinAssign, ast.BinAddAssign, ast.BinSubAssign,
		ast.BinMulAssign, ast.BinDivAssign:
		c.constrain(rhs, lhs)
		c.possibleEverBe(lhs, rhs)
	case ast.BinIn, ast.BinNotIn:
		c.checkContaining(rhs, lhs)
	case ast.BinAnd, ast.BinOr:
		c.constrain(lhs, BoolUnknown)
		c.constrain(rhs, BoolUnknown)
	case ast.BinEq, ast.BinNeq, ast.BinLt, ast.BinLeq, ast.BinGt, ast.BinGeq:
		c.possibleEverBe(lhs, rhs)
		c.possibleEverBe(rhs, lhs)
	}
	return BinaryTy{Op: op, Lhs: lhs, Rhs: rhs}
}

func (c *Checker) checkFieldAccess(n *ast.Node) Type {
	fa, _ := n.AsFieldAccess()
	target := c.check(fa.Target())
	field := fa.Field()
	if field == nil {
		return Any
	}
	name := field.Text()
	if ins, ok := target.(*InsTy); ok {
		if mod, ok := ins.Val.(ModuleValue); ok {
			return c.moduleField(mod, name)
		}
	}
	return SelectTy{Ty: target, Field: name}
}

func (c *Checker) moduleField(mod ModuleValue, name string) Type {
	if c.host == nil {
		return Any
	}
	ext, ok := c.host.ResultFor(mod.File)
	if !ok {
		return Any
	}
	if t, ok := ext.ExportedType(name); ok {
		return t
	}
	return Any
}

func (c *Checker) checkFuncCall(n *ast.Node) Type {
	fc, _ := n.AsFuncCall()
	callee := fc.Callee()
	args := c.checkArgs(fc.Args())
	if callee != nil && callee.Kind() == ast.KindFieldAccess {
		fa, _ := callee.AsFieldAccess()
		if field := fa.Field(); field != nil && field.Text() == "with" {
			base := c.check(fa.Target())
			return c.checkWith(base, args)
		}
	}
	calleeTy := c.check(callee)
	span := n.Span()
	if callee != nil {
		span = callee.Span()
	}
	return c.checkApply(calleeTy, args, span)
}

// checkArgs builds the argument signature of a call: positionals in source
// order, named by name, a spread as the rest slot.
func (c *Checker) checkArgs(n *ast.Node) *SigTy {
	var pos []Type
	var named []NamedField
	var rest Type
	if n != nil {
		for _, child := range n.Children() {
			if child == nil || child.Kind().IsTrivia() {
				continue
			}
			switch child.Kind() {
			case ast.KindNamed:
				nm, _ := child.AsNamed()
				if name := nm.Name(); name != nil {
					named = append(named, NamedField{
						Name: fieldName(name),
						Ty:   c.check(nm.Expr()),
					})
				}
			case ast.KindSpread:
				sp, _ := child.AsSpread()
				rest = c.check(sp.Expr())
			default:
				pos = append(pos, c.check(child))
			}
		}
	}
	return c.in.Sig(pos, named, rest, false, nil)
}

func (c *Checker) checkClosure(n *ast.Node) Type {
	cl, _ := n.AsClosure()
	snapshot := c.info.StartScope()

	var pos []Type
	var named []NamedField
	var rest Type
	if params := cl.Params(); params != nil {
		for _, p := range params.Children() {
			if p == nil || p.Kind().IsTrivia() {
				continue
			}
			switch p.Kind() {
			case ast.KindIdent:
				pos = append(pos, c.declVar(p))
			case ast.KindUnderscore:
				pos = append(pos, Any)
			case ast.KindNamed:
				nm, _ := p.AsNamed()
				name := nm.Name()
				if name == nil {
					continue
				}
				v := c.declVar(name)
				def := c.check(nm.Expr())
				c.constrain(def, v)
				named = append(named, NamedField{Name: fieldName(name), Ty: v})
			case ast.KindSpread:
				sp, _ := p.AsSpread()
				if sink, ok := sp.SinkIdent(); ok {
					v := c.declVar(sink)
					c.constrain(LitArgs, v)
					rest = v
				} else {
					rest = Any
				}
			case ast.KindDestructuring:
				pos = append(pos, c.checkPattern(p))
			}
		}
	}

	c.pushReturns()
	body := c.check(cl.Body())
	returns := c.popReturns()
	c.info.EndScope(snapshot)
	c.freezeParams(pos, named, rest)

	ret := body
	if ret == Type(Return) {
		ret = None
	}
	if len(returns) > 0 {
		returns = append(returns, ret)
		ret = c.in.Union(returns...)
	}
	return FuncTy{Sig: c.in.Sig(pos, named, rest, false, ret)}
}

// checkPattern types a destructuring pattern, binding a variable per slot.
func (c *Checker) checkPattern(n *ast.Node) Type {
	var pos []Type
	var named []NamedField
	var rest Type
	for _, p := range n.Children() {
		if p == nil || p.Kind().IsTrivia() {
			continue
		}
		switch p.Kind() {
		case ast.KindIdent:
			pos = append(pos, c.declVar(p))
		case ast.KindUnderscore:
			pos = append(pos, Any)
		case ast.KindNamed:
			nm, _ := p.AsNamed()
			name := nm.Name()
			if name == nil {
				continue
			}
			// `(key: binding)` renames: the binding variable receives the
			// source field named key.
			bind := nm.Expr()
			var v Type = Any
			if bind != nil && bind.Kind() == ast.KindIdent {
				v = c.declVar(bind)
			}
			named = append(named, NamedField{Name: fieldName(name), Ty: v})
		case ast.KindSpread:
			sp, _ := p.AsSpread()
			if sink, ok := sp.SinkIdent(); ok {
				rest = c.declVar(sink)
			} else {
				rest = Any
			}
		case ast.KindDestructuring:
			pos = append(pos, c.checkPattern(p))
		}
	}
	return PatTy{Sig: c.in.Sig(pos, named, rest, false, nil)}
}

func (c *Checker) checkLet(n *ast.Node) Type {
	lb, _ := n.AsLetBinding()
	target := lb.Target()
	if target == nil {
		return None
	}
	init, hasInit := lb.Init()

	switch target.Kind() {
	case ast.KindIdent:
		v := c.declVar(target)
		if hasInit {
			c.constrain(c.check(init), v)
		} else {
			c.constrain(Infer, v)
		}
	case ast.KindClosure:
		// `let f(x) = body`: the closure node carries the function name.
		var fnVar Type
		for _, child := range target.Children() {
			if child != nil && child.Kind() == ast.KindIdent {
				fnVar = c.declVar(child)
				break
			}
			if child != nil && child.Kind() == ast.KindParams {
				break
			}
		}
		fty := c.check(target)
		if fnVar != nil {
			c.constrain(fty, fnVar)
		}
	case ast.KindDestructuring:
		pat := c.checkPattern(target)
		if hasInit {
			c.destructure(pat.(PatTy).Sig, c.check(init))
		}
	default:
		if hasInit {
			c.check(init)
		}
	}
	return None
}

// destructure pairs a pattern's slots with the source type's structure.
func (c *Checker) destructure(sig *SigTy, src Type) {
	switch x := src.(type) {
	case *TupleTy:
		for i, slot := range sig.Positional() {
			if i < len(x.Elems) {
				c.constrain(x.Elems[i], slot)
			}
		}
		if rest, ok := sig.Rest(); ok {
			if len(x.Elems) > sig.NameStart {
				c.constrain(c.in.Tuple(x.Elems[sig.NameStart:]), rest)
			}
		}
	case ArrayTy:
		for _, slot := range sig.Positional() {
			c.constrain(x.Elem, slot)
		}
		if rest, ok := sig.Rest(); ok {
			c.constrain(x, rest)
		}
	case *RecordTy:
		for i, name := range sig.Names {
			if ft, ok := x.FieldType(name); ok {
				c.constrain(ft, sig.namedTypeAt(i))
			}
		}
	default:
		for _, slot := range sig.Positional() {
			c.constrain(src, slot)
		}
	}
}

func (c *Checker) checkSet(n *ast.Node) Type {
	s, _ := n.AsSetRule()
	target := c.check(s.Target())
	args := c.checkArgs(s.Args())
	if cond, ok := s.Condition(); ok {
		c.constrain(c.check(cond), BoolUnknown)
	}
	// Only settable named parameters take set arguments.
	for _, cand := range c.sigCandidates(target, nil, make(map[Type]bool)) {
		matchSignatures(cand.sig, args, cand.withs, func(param, arg Type) {
			if p, ok := param.(*ParamTy); ok {
				if !p.Settable {
					return
				}
				c.constrain(arg, p.Ty)
				return
			}
			c.constrain(arg, param)
		})
	}
	return Any
}

func (c *Checker) checkShow(n *ast.Node) Type {
	s, _ := n.AsShowRule()
	if sel, ok := s.Selector(); ok {
		selTy := c.check(sel)
		c.possibleEverBe(selTy, LitElement)
	}
	transform := c.check(s.Transform())
	// A functional transform receives and produces content.
	for _, cand := range c.sigCandidates(transform, nil, make(map[Type]bool)) {
		if p, ok := cand.sig.Pos(0); ok {
			c.constrain(Content, p)
		}
		if cand.sig.Ret != nil {
			c.constrain(cand.sig.Ret, Content)
		}
	}
	return Any
}

func (c *Checker) checkConditional(n *ast.Node) Type {
	cond, _ := n.AsConditional()
	condTy := c.check(cond.Condition())
	c.constrain(condTy, BoolUnknown)
	thenTy := c.check(cond.Then())
	var elseTy Type = None
	if e, ok := cond.Else(); ok {
		elseTy = c.check(e)
	}
	return CondTy{Cond: condTy, Then: thenTy, Else: elseTy}
}

func (c *Checker) checkWhile(n *ast.Node) Type {
	w, _ := n.AsWhileLoop()
	c.constrain(c.check(w.Condition()), BoolUnknown)
	c.check(w.Body())
	return Any
}

func (c *Checker) checkFor(n *ast.Node) Type {
	f, _ := n.AsForLoop()
	iter := c.check(f.Iterable())
	pattern := f.Pattern()
	if pattern != nil {
		switch pattern.Kind() {
		case ast.KindIdent:
			v := c.declVar(pattern)
			c.constrain(iter, ArrayTy{Elem: v})
		case ast.KindDestructuring:
			pat := c.checkPattern(pattern)
			c.constrain(iter, ArrayTy{Elem: pat})
		}
	}
	c.check(f.Body())
	return Any
}

func (c *Checker) checkImport(n *ast.Node) Type {
	m, _ := n.AsModuleImport()
	c.check(m.Source())
	if items, ok := m.Items(); ok {
		for _, item := range items.Children() {
			if item != nil && item.Kind() == ast.KindIdent {
				c.declVar(item)
			}
		}
	}
	return None
}

func (c *Checker) checkDestructAssign(n *ast.Node) Type {
	var pattern, init *ast.Node
	for _, child := range n.Children() {
		if child == nil || child.Kind().IsTrivia() {
			continue
		}
		if pattern == nil {
			pattern = child
			continue
		}
		init = child
		break
	}
	if pattern == nil {
		return None
	}
	pat := c.checkPattern(pattern)
	if init != nil {
		if p, ok := pat.(PatTy); ok {
			c.destructure(p.Sig, c.check(init))
		}
	}
	return None
}

// declVar resolves an identifier node to its declaration's variable.
func (c *Checker) declVar(n *ast.Node) Type {
	if id, ok := c.defs.Resolve(n.Span()); ok {
		return c.varOf(id)
	}
	return Any
}

func onlyChild(n *ast.Node) (*ast.Node, bool) {
	var only *ast.Node
	for _, child := range n.Children() {
		if child == nil || child.Kind().IsTrivia() {
			continue
		}
		if only != nil {
			return nil, false
		}
		only = child
	}
	return only, only != nil
}

func firstExpr(n *ast.Node) *ast.Node {
	for _, child := range n.Children() {
		if child == nil || child.Kind().IsTrivia() {
			continue
		}
		return child
	}
	return nil
}

func fieldName(n *ast.Node) string {
	if n.Kind() == ast.KindStr {
		return unquote(n.Text())
	}
	return n.Text()
}

func unquote(s string) string {
	if u, err := strconv.Unquote(s); err == nil {
		return u
	}
	return s
}
