package typechecker

import (
	"testing"

	"marq/analyzer-go/pkg/ast"
	"marq/analyzer-go/pkg/defuse"
)

type stubLib map[string]Value

func (s stubLib) Lookup(name string, _ Mode) (Value, bool) {
	v, ok := s[name]
	return v, ok
}

func TestCheckLetBindsLiteralLowerBound(t *testing.T) {
	declX := ast.Leaf(ast.KindIdent, span(4, 5), "x")
	one := ast.Leaf(ast.KindInt, span(8, 9), "1")
	let := ast.New(ast.KindLetBinding, span(0, 9), declX, one)
	root := ast.New(ast.KindMarkup, span(0, 9),
		ast.New(ast.KindCodeBlock, span(0, 9),
			ast.New(ast.KindCode, span(0, 9), let)))

	defs := defuse.NewInfo()
	defs.AddDecl(defuse.Decl{ID: 1, Name: "x", File: 1, Span: span(4, 5), Doc: "the x", TopLevel: true})

	info := CheckFile(1, root, Config{Defs: defs})

	vb, ok := info.Vars[1]
	if !ok {
		t.Fatalf("no bound record for x")
	}
	if len(vb.Lower) != 1 {
		t.Fatalf("lower bounds = %v, want exactly the initializer", vb.Lower)
	}
	ins, ok := vb.Lower[0].(*InsTy)
	if !ok {
		t.Fatalf("lower bound = %T, want a value instance", vb.Lower[0])
	}
	if ins.Val != Value(IntValue{Val: 1}) {
		t.Fatalf("lower bound value = %v", ins.Val)
	}
	if ins.At != span(8, 9) {
		t.Fatalf("instance lost its provenance: %v", ins.At)
	}
	if info.Docs[1] != "the x" {
		t.Fatalf("doc not captured: %q", info.Docs[1])
	}
	if _, ok := info.ExportedType("x"); !ok {
		t.Fatalf("top-level binding not exported")
	}
}

func TestCheckConditionalKeepsBranchesApart(t *testing.T) {
	cond := ast.Leaf(ast.KindBool, span(3, 7), "true")
	thenB := ast.Leaf(ast.KindInt, span(10, 11), "1")
	elseB := ast.Leaf(ast.KindStr, span(17, 20), `"a"`)
	ifNode := ast.New(ast.KindConditional, span(0, 20), cond, thenB, elseB)
	root := ast.New(ast.KindCode, span(0, 20), ifNode)

	info := CheckFile(1, root, Config{})

	got, ok := info.TypeOfSpan(span(0, 20))
	if !ok {
		t.Fatalf("conditional left no witness")
	}
	ct, ok := got.(CondTy)
	if !ok {
		t.Fatalf("conditional type = %T, want the unmerged branch pair", got)
	}
	if ct.Cond != Type(BoolTrue) {
		t.Fatalf("condition type = %v", ct.Cond)
	}
	thenIns, ok := ct.Then.(*InsTy)
	if !ok || thenIns.Val != Value(IntValue{Val: 1}) {
		t.Fatalf("then branch = %v", ct.Then)
	}
	elseIns, ok := ct.Else.(*InsTy)
	if !ok || elseIns.Val != Value(StrValue{Val: "a"}) {
		t.Fatalf("else branch = %v", ct.Else)
	}
}

func TestCheckCallConstrainsArgumentUpward(t *testing.T) {
	in := NewInterner()
	lib := stubLib{
		"upper": FuncValue{
			FuncName: "upper",
			Sig:      in.Sig([]Type{LitStr}, nil, nil, false, LitStr),
		},
	}

	declX := ast.Leaf(ast.KindIdent, span(4, 5), "x")
	strLit := ast.Leaf(ast.KindStr, span(8, 11), `"s"`)
	let := ast.New(ast.KindLetBinding, span(0, 11), declX, strLit)

	callee := ast.Leaf(ast.KindIdent, span(13, 18), "upper")
	useX := ast.Leaf(ast.KindIdent, span(19, 20), "x")
	args := ast.New(ast.KindArgs, span(18, 21), useX)
	call := ast.New(ast.KindFuncCall, span(13, 21), callee, args)

	root := ast.New(ast.KindCode, span(0, 21), let, call)

	defs := defuse.NewInfo()
	defs.AddDecl(defuse.Decl{ID: 1, Name: "x", File: 1, Span: span(4, 5)})
	defs.AddRef(span(19, 20), 1)

	info := CheckFile(1, root, Config{Defs: defs, Library: lib, Interner: in})

	vb := info.Vars[1]
	if vb == nil {
		t.Fatalf("no bound record for x")
	}
	found := false
	for _, ub := range vb.Upper {
		if ub == Type(LitStr) {
			found = true
		}
	}
	if !found {
		t.Fatalf("argument did not flow into the parameter: uppers = %v", vb.Upper)
	}

	// The call's own type is the signature's return.
	got, ok := info.TypeOfSpan(span(13, 21))
	if !ok || got != Type(LitStr) {
		t.Fatalf("call type = %v, %v; want str", got, ok)
	}
}

func TestCheckClosureFreezesParameters(t *testing.T) {
	declX := ast.Leaf(ast.KindIdent, span(4, 5), "x")
	one := ast.Leaf(ast.KindInt, span(8, 9), "1")
	let := ast.New(ast.KindLetBinding, span(0, 9), declX, one)

	declY := ast.Leaf(ast.KindIdent, span(12, 13), "y")
	params := ast.New(ast.KindParams, span(11, 14), declY)
	useX := ast.Leaf(ast.KindIdent, span(18, 19), "x")
	closure := ast.New(ast.KindClosure, span(11, 19), params, useX)

	root := ast.New(ast.KindCode, span(0, 19), let, closure)

	defs := defuse.NewInfo()
	defs.AddDecl(defuse.Decl{ID: 1, Name: "x", File: 1, Span: span(4, 5)})
	defs.AddDecl(defuse.Decl{ID: 2, Name: "y", File: 1, Span: span(12, 13)})
	defs.AddRef(span(18, 19), 1)

	info := CheckFile(1, root, Config{Defs: defs})

	y := info.Vars[2]
	if y == nil || !y.Weak() {
		t.Fatalf("parameter variable not frozen after closure packaging")
	}
	// The captured outer binding stays strong and keeps its literal bound.
	x := info.Vars[1]
	if x == nil || x.Weak() {
		t.Fatalf("captured binding must stay strong")
	}
	if len(x.Lower) != 1 {
		t.Fatalf("lower bounds = %v, want exactly the initializer", x.Lower)
	}
	if ins, ok := x.Lower[0].(*InsTy); !ok || ins.Val != Value(IntValue{Val: 1}) {
		t.Fatalf("literal lower bound lost: %v", x.Lower)
	}

	got, ok := info.TypeOfSpan(span(11, 19))
	if !ok {
		t.Fatalf("closure left no witness")
	}
	fn, ok := got.(FuncTy)
	if !ok {
		t.Fatalf("closure type = %T, want func", got)
	}
	if fn.Sig.NameStart != 1 {
		t.Fatalf("closure arity = %d, want 1", fn.Sig.NameStart)
	}
	if p, _ := fn.Sig.Pos(0); p != Type(y.Var) {
		t.Fatalf("parameter slot = %v, want y's variable", p)
	}
	if fn.Sig.Ret != Type(x.Var) {
		t.Fatalf("return = %v, want x's variable", fn.Sig.Ret)
	}
}

func TestCheckSetRuleFiltersSettableParams(t *testing.T) {
	in := NewInterner()
	sizeParam := in.Param(ParamTy{ParamName: "size", Ty: LitTextSize, Named: true, Settable: true})
	variantParam := in.Param(ParamTy{ParamName: "variant", Ty: LitStr, Named: true})
	lib := stubLib{
		"text": ElementValue{
			ElemName: "text",
			Sig: in.Sig(nil, []NamedField{
				{Name: "size", Ty: sizeParam},
				{Name: "variant", Ty: variantParam},
			}, nil, false, Content),
		},
	}

	target := ast.Leaf(ast.KindIdent, span(4, 8), "text")
	sizeName := ast.Leaf(ast.KindIdent, span(9, 13), "size")
	sizeVal := ast.Leaf(ast.KindIdent, span(15, 16), "a")
	variantName := ast.Leaf(ast.KindIdent, span(18, 25), "variant")
	variantVal := ast.Leaf(ast.KindIdent, span(27, 28), "b")
	args := ast.New(ast.KindArgs, span(8, 29),
		ast.New(ast.KindNamed, span(9, 16), sizeName, sizeVal),
		ast.New(ast.KindNamed, span(18, 28), variantName, variantVal))
	set := ast.New(ast.KindSetRule, span(0, 29), target, args)
	root := ast.New(ast.KindCode, span(0, 29), set)

	defs := defuse.NewInfo()
	defs.AddDecl(defuse.Decl{ID: 1, Name: "a", File: 1, Span: span(15, 16)})
	defs.AddDecl(defuse.Decl{ID: 2, Name: "b", File: 1, Span: span(27, 28)})

	info := CheckFile(1, root, Config{Defs: defs, Library: lib, Interner: in})

	a := info.Vars[1]
	if a == nil || len(a.Upper) != 1 || a.Upper[0] != Type(LitTextSize) {
		t.Fatalf("settable param did not constrain its argument: %v", a)
	}
	b := info.Vars[2]
	if b != nil && len(b.Upper) != 0 {
		t.Fatalf("non-settable param constrained a set argument: %v", b.Upper)
	}
}

func TestCheckWithBuildsPartialApplication(t *testing.T) {
	declF := ast.Leaf(ast.KindIdent, span(4, 5), "f")
	params := ast.New(ast.KindParams, span(6, 8),
		ast.Leaf(ast.KindIdent, span(6, 7), "p"),
		ast.Leaf(ast.KindIdent, span(7, 8), "q"))
	body := ast.Leaf(ast.KindInt, span(11, 12), "1")
	closure := ast.New(ast.KindClosure, span(6, 12), params, body)
	let := ast.New(ast.KindLetBinding, span(0, 12), declF, closure)

	useF := ast.Leaf(ast.KindIdent, span(14, 15), "f")
	withField := ast.Leaf(ast.KindIdent, span(16, 20), "with")
	access := ast.New(ast.KindFieldAccess, span(14, 20), useF, withField)
	one := ast.Leaf(ast.KindInt, span(21, 22), "2")
	args := ast.New(ast.KindArgs, span(20, 23), one)
	call := ast.New(ast.KindFuncCall, span(14, 23), access, args)

	root := ast.New(ast.KindCode, span(0, 23), let, call)

	defs := defuse.NewInfo()
	defs.AddDecl(defuse.Decl{ID: 1, Name: "f", File: 1, Span: span(4, 5)})
	defs.AddDecl(defuse.Decl{ID: 2, Name: "p", File: 1, Span: span(6, 7)})
	defs.AddDecl(defuse.Decl{ID: 3, Name: "q", File: 1, Span: span(7, 8)})
	defs.AddRef(span(14, 15), 1)

	info := CheckFile(1, root, Config{Defs: defs})

	got, ok := info.TypeOfSpan(span(14, 23))
	if !ok {
		t.Fatalf("with call left no witness")
	}
	w, ok := got.(WithTy)
	if !ok {
		t.Fatalf("with call type = %T, want a partial application", got)
	}
	if w.Sig != Type(info.Vars[1].Var) {
		t.Fatalf("partial application base = %v, want f's variable", w.Sig)
	}
	if w.Args.NameStart != 1 {
		t.Fatalf("accumulated positionals = %d, want 1", w.Args.NameStart)
	}
}

func TestCheckComparisonBuildsOperationType(t *testing.T) {
	useX := ast.Leaf(ast.KindIdent, span(0, 1), "x")
	one := ast.Leaf(ast.KindInt, span(4, 5), "1")
	cmpNode := ast.NewBinary(span(0, 5), ast.BinLt, useX, one)
	root := ast.New(ast.KindCode, span(0, 6), cmpNode)

	defs := defuse.NewInfo()
	defs.AddDecl(defuse.Decl{ID: 1, Name: "x", File: 1, Span: span(8, 9)})
	defs.AddRef(span(0, 1), 1)

	info := CheckFile(1, root, Config{Defs: defs})

	got, ok := info.TypeOfSpan(span(0, 5))
	if !ok {
		t.Fatalf("comparison left no witness")
	}
	b, ok := got.(BinaryTy)
	if !ok || b.Op != ast.BinLt {
		t.Fatalf("comparison type = %v, want the deferred operation", got)
	}
	// The possible-value hint still lands on the variable.
	vb := info.Vars[1]
	if vb == nil || len(vb.Lower) != 1 {
		t.Fatalf("comparison hint not recorded: %v", vb)
	}
	if ins, ok := vb.Lower[0].(*InsTy); !ok || ins.Val != Value(IntValue{Val: 1}) {
		t.Fatalf("hint = %v, want the compared literal", vb.Lower)
	}
}

func TestCheckContentBlockKeepsLoneChildType(t *testing.T) {
	useX := ast.Leaf(ast.KindIdent, span(2, 3), "x")
	block := ast.New(ast.KindContentBlock, span(0, 5), useX)
	root := ast.New(ast.KindCode, span(0, 5), block)

	defs := defuse.NewInfo()
	defs.AddDecl(defuse.Decl{ID: 1, Name: "x", File: 1, Span: span(8, 9)})
	defs.AddRef(span(2, 3), 1)

	info := CheckFile(1, root, Config{Defs: defs})

	got, ok := info.TypeOfSpan(span(0, 5))
	if !ok {
		t.Fatalf("content block left no witness")
	}
	if got != Type(info.Vars[1].Var) {
		t.Fatalf("content block type = %v, want the lone child's variable", got)
	}
}

func TestCheckMarkupJoinsToContent(t *testing.T) {
	root := ast.New(ast.KindMarkup, span(0, 10),
		ast.Leaf(ast.KindText, span(0, 4), "abc"),
		ast.Leaf(ast.KindSpace, span(4, 5), " "),
		ast.New(ast.KindStrong, span(5, 10), ast.Leaf(ast.KindText, span(6, 9), "def")))

	info := CheckFile(1, root, Config{})
	got, ok := info.TypeOfSpan(span(0, 10))
	if !ok || got != Type(Content) {
		t.Fatalf("markup type = %v, %v; want content", got, ok)
	}
}
