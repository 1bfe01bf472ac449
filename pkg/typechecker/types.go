package typechecker

import (
	"cmp"
	"slices"
	"strings"

	"marq/analyzer-go/pkg/ast"
	"marq/analyzer-go/pkg/defuse"
)

// typeKind ranks the variants for the handle total order.
type typeKind uint8

const (
	kindPrim typeKind = iota
	kindBoolean
	kindLit
	kindIns
	kindParam
	kindVar
	kindUnion
	kindLet
	kindRecord
	kindArray
	kindTuple
	kindFunc
	kindArgs
	kindPattern
	kindWith
	kindSelect
	kindUnary
	kindBinary
	kindIf
)

// Type is the interned structural type the engine assigns to every syntax
// node and declaration. All implementations are comparable; composite
// variants are canonicalized through an Interner, so == is identity-first
// structural equality.
type Type interface {
	// Name renders a short, stable spelling of the type.
	Name() string
	kind() typeKind
	hashValue() uint64
}

// Prim is the built-in tag family: the top type, value-less sentinels, and
// control flow markers.
type Prim uint8

const (
	// Any is the neutral top type: no information at all.
	Any Prim = iota
	// None is the none value's type and the empty sequence type.
	None
	// Undef marks a sequence that mixes shapes and cannot be characterized.
	Undef
	// Content is what markup produces.
	Content
	// Space is whitespace between markup siblings.
	Space
	// Clause is syntax that carries no expression value.
	Clause
	// Auto is the auto value's type.
	Auto
	// Infer marks a to-be-inferred hole, such as a missing initializer.
	Infer
	// Break, Continue, and Return mark control flow escaping a sequence.
	Break
	Continue
	Return
)

var primNames = [...]string{
	Any: "any", None: "none", Undef: "undef", Content: "content",
	Space: "space", Clause: "clause", Auto: "auto", Infer: "infer",
	Break: "break", Continue: "continue", Return: "return",
}

func (p Prim) Name() string {
	if int(p) < len(primNames) {
		return primNames[p]
	}
	return "unknown"
}

func (p Prim) kind() typeKind    { return kindPrim }
func (p Prim) hashValue() uint64 { return mixHash(uint64(kindPrim), uint64(p)) }

// Boolean is the boolean type, optionally narrowed to one of its values.
type Boolean struct {
	Known bool
	Val   bool
}

var (
	BoolUnknown = Boolean{}
	BoolTrue    = Boolean{Known: true, Val: true}
	BoolFalse   = Boolean{Known: true, Val: false}
)

func (b Boolean) Name() string {
	if !b.Known {
		return "bool"
	}
	if b.Val {
		return "true"
	}
	return "false"
}

func (b Boolean) kind() typeKind    { return kindBoolean }
func (b Boolean) hashValue() uint64 { return mixHash(uint64(kindBoolean), uint64(boolKey(b))) }

// Lit is a built-in literal shape tag. Tags name library concepts the
// checker reasons about structurally: scalar shapes, argument sinks, style
// dimensions, and the pseudo-record configuration shapes.
type Lit uint8

const (
	LitArgs Lit = iota
	LitColor
	LitLength
	LitTextSize
	LitTextFont
	LitDir
	LitLabel
	LitInt
	LitFloat
	LitStr
	LitContent
	LitType
	LitElement
	LitStroke
	LitMargin
	LitInset
	LitOutset
	LitRadius
)

var litNames = [...]string{
	LitArgs: "arguments", LitColor: "color", LitLength: "length",
	LitTextSize: "text.size", LitTextFont: "text.font", LitDir: "direction",
	LitLabel: "label", LitInt: "int", LitFloat: "float", LitStr: "str",
	LitContent: "content", LitType: "type", LitElement: "element",
	LitStroke: "stroke", LitMargin: "margin", LitInset: "inset",
	LitOutset: "outset", LitRadius: "radius",
}

func (l Lit) Name() string {
	if int(l) < len(litNames) {
		return litNames[l]
	}
	return "unknown"
}

func (l Lit) kind() typeKind    { return kindLit }
func (l Lit) hashValue() uint64 { return mixHash(uint64(kindLit), uint64(l)) }

// meta carries the interner bookkeeping embedded in every canonical
// composite: the structural hash and the arena sequence number that breaks
// hash ties in the total order.
type meta struct {
	hash uint64
	seq  uint32
}

func (m *meta) hashValue() uint64 { return m.hash }
func (m *meta) sequence() uint32  { return m.seq }

// InsTy is a value-instance type: a concrete value with optional source
// provenance.
type InsTy struct {
	meta
	Val Value
	At  ast.Span
}

func (t *InsTy) Name() string   { return t.Val.Repr() }
func (t *InsTy) kind() typeKind { return kindIns }

// ParamTy is a parameter slot: a name, an inner type, an optional default,
// and the slot's calling-convention attributes. Settable marks named slots
// that double as style properties.
type ParamTy struct {
	meta
	ParamName  string
	Ty         Type
	Default    Type
	Positional bool
	Named      bool
	Variadic   bool
	Settable   bool
}

func (t *ParamTy) Name() string   { return t.ParamName }
func (t *ParamTy) kind() typeKind { return kindParam }

// VarTy is an open type variable, one per lexical binding site. Its bounds
// live outside the type in the per-file Info table.
type VarTy struct {
	meta
	VarName string
	Decl    defuse.DeclID
}

func (t *VarTy) Name() string   { return "@" + t.VarName }
func (t *VarTy) kind() typeKind { return kindVar }

// UnionTy is the "or" combinator over sorted, deduplicated members.
type UnionTy struct {
	meta
	Members []Type
}

func (t *UnionTy) Name() string {
	parts := make([]string, len(t.Members))
	for i, m := range t.Members {
		parts[i] = m.Name()
	}
	return "(" + strings.Join(parts, " | ") + ")"
}

func (t *UnionTy) kind() typeKind { return kindUnion }

// BoundsTy is a frozen bound set: explicit lower-bound and upper-bound
// lists, both sorted by the handle total order.
type BoundsTy struct {
	meta
	Lower []Type
	Upper []Type
}

func (t *BoundsTy) Name() string   { return "let" }
func (t *BoundsTy) kind() typeKind { return kindLet }

// RecordTy is a record shape: a sorted, deduplicated field-name index with
// a parallel type list and optional per-field source spans.
type RecordTy struct {
	meta
	FieldNames []string
	FieldTypes []Type
	FieldSpans []ast.Span
}

func (t *RecordTy) Name() string   { return "dict" }
func (t *RecordTy) kind() typeKind { return kindRecord }

// FieldType returns the type of the named field via binary search over the
// sorted index.
func (t *RecordTy) FieldType(name string) (Type, bool) {
	i, ok := slices.BinarySearch(t.FieldNames, name)
	if !ok {
		return nil, false
	}
	return t.FieldTypes[i], true
}

// FieldSpan returns the source span recorded for the named field.
func (t *RecordTy) FieldSpan(name string) (ast.Span, bool) {
	i, ok := slices.BinarySearch(t.FieldNames, name)
	if !ok || i >= len(t.FieldSpans) {
		return ast.Span{}, false
	}
	return t.FieldSpans[i], true
}

// ArrayTy is a homogeneous array of Elem.
type ArrayTy struct{ Elem Type }

func (t ArrayTy) Name() string   { return "array" }
func (t ArrayTy) kind() typeKind { return kindArray }
func (t ArrayTy) hashValue() uint64 {
	return mixHash(uint64(kindArray), t.Elem.hashValue())
}

// TupleTy is a fixed-length heterogeneous array.
type TupleTy struct {
	meta
	Elems []Type
}

func (t *TupleTy) Name() string   { return "array" }
func (t *TupleTy) kind() typeKind { return kindTuple }

// SigTy is the shared positional/named/spread shape backing function
// signatures, call arguments, and destructuring patterns. Inputs stores the
// positional slots first, then the named slots in field-index order, then
// the rest slot when SpreadRight is set. NameStart is the boundary index
// separating positional storage from named storage.
type SigTy struct {
	meta
	Inputs      []Type
	Names       []string
	NameStart   int
	SpreadLeft  bool
	SpreadRight bool
	Ret         Type
}

func (t *SigTy) kind() typeKind { return kindFunc }
func (t *SigTy) Name() string   { return "sig" }

// Positional returns the positional slots.
func (t *SigTy) Positional() []Type {
	return t.Inputs[:t.NameStart]
}

// Pos returns the i-th positional slot.
func (t *SigTy) Pos(i int) (Type, bool) {
	if i < 0 || i >= t.NameStart {
		return nil, false
	}
	return t.Inputs[i], true
}

// NamedType returns the named slot for name via the sorted field index.
func (t *SigTy) NamedType(name string) (Type, bool) {
	i, ok := slices.BinarySearch(t.Names, name)
	if !ok {
		return nil, false
	}
	return t.Inputs[t.NameStart+i], true
}

// namedTypeAt returns the named slot at field-index offset i.
func (t *SigTy) namedTypeAt(i int) Type {
	return t.Inputs[t.NameStart+i]
}

// Rest returns the rest slot when the signature spreads to the right.
func (t *SigTy) Rest() (Type, bool) {
	if !t.SpreadRight || len(t.Inputs) == 0 {
		return nil, false
	}
	return t.Inputs[len(t.Inputs)-1], true
}

// FuncTy is a function-signature type.
type FuncTy struct{ Sig *SigTy }

func (t FuncTy) Name() string      { return "func" }
func (t FuncTy) kind() typeKind    { return kindFunc }
func (t FuncTy) hashValue() uint64 { return mixHash(uint64(kindFunc)<<8, t.Sig.hash) }

// ArgTy is a call-argument type; it reuses the signature representation.
type ArgTy struct{ Sig *SigTy }

func (t ArgTy) Name() string      { return "args" }
func (t ArgTy) kind() typeKind    { return kindArgs }
func (t ArgTy) hashValue() uint64 { return mixHash(uint64(kindArgs)<<8, t.Sig.hash) }

// PatTy is a destructuring-pattern type; it reuses the signature
// representation.
type PatTy struct{ Sig *SigTy }

func (t PatTy) Name() string      { return "pattern" }
func (t PatTy) kind() typeKind    { return kindPattern }
func (t PatTy) hashValue() uint64 { return mixHash(uint64(kindPattern)<<8, t.Sig.hash) }

// WithTy is a partially-applied signature: a base signature plus the
// arguments accumulated by one `.with()` call. Chained applications nest,
// innermost application closest to the base.
type WithTy struct {
	Sig  Type
	Args *SigTy
}

func (t WithTy) Name() string   { return "with" }
func (t WithTy) kind() typeKind { return kindWith }
func (t WithTy) hashValue() uint64 {
	return mixHash(mixHash(uint64(kindWith), t.Sig.hashValue()), t.Args.hash)
}

// SelectTy is a lazy, unresolved field selection `base.field`.
type SelectTy struct {
	Ty    Type
	Field string
}

func (t SelectTy) Name() string   { return t.Ty.Name() + "." + t.Field }
func (t SelectTy) kind() typeKind { return kindSelect }
func (t SelectTy) hashValue() uint64 {
	return mixHash(mixHash(uint64(kindSelect), t.Ty.hashValue()), hashString(t.Field))
}

// UnaryTy is an unresolved unary operation over a type.
type UnaryTy struct {
	Op ast.UnOp
	Ty Type
}

func (t UnaryTy) Name() string   { return t.Op.String() + t.Ty.Name() }
func (t UnaryTy) kind() typeKind { return kindUnary }
func (t UnaryTy) hashValue() uint64 {
	return mixHash(mixHash(uint64(kindUnary), uint64(t.Op)), t.Ty.hashValue())
}

// BinaryTy is an unresolved binary operation over two types.
type BinaryTy struct {
	Op  ast.BinOp
	Lhs Type
	Rhs Type
}

func (t BinaryTy) Name() string {
	return t.Lhs.Name() + " " + t.Op.String() + " " + t.Rhs.Name()
}

func (t BinaryTy) kind() typeKind { return kindBinary }

func (t BinaryTy) hashValue() uint64 {
	h := mixHash(uint64(kindBinary), uint64(t.Op))
	h = mixHash(h, t.Lhs.hashValue())
	return mixHash(h, t.Rhs.hashValue())
}

// CondTy is a conditional type: condition and the two branch types, kept
// unmerged so later passes can see both arms.
type CondTy struct {
	Cond Type
	Then Type
	Else Type
}

func (t CondTy) Name() string   { return "if" }
func (t CondTy) kind() typeKind { return kindIf }
func (t CondTy) hashValue() uint64 {
	h := mixHash(uint64(kindIf), t.Cond.hashValue())
	h = mixHash(h, t.Then.hashValue())
	return mixHash(h, t.Else.hashValue())
}

// compareTypes is the handle total order: kind rank first, then a per-kind
// key, then structural hash, then arena sequence. Variables order by
// (name, declaration id) so rendered unions stay stable across runs.
func compareTypes(a, b Type) int {
	if a == b {
		return 0
	}
	if c := cmp.Compare(a.kind(), b.kind()); c != 0 {
		return c
	}
	switch x := a.(type) {
	case Prim:
		return cmp.Compare(x, b.(Prim))
	case Lit:
		return cmp.Compare(x, b.(Lit))
	case Boolean:
		return cmp.Compare(boolKey(x), boolKey(b.(Boolean)))
	case *VarTy:
		y := b.(*VarTy)
		if c := cmp.Compare(x.VarName, y.VarName); c != 0 {
			return c
		}
		return cmp.Compare(x.Decl, y.Decl)
	}
	if c := cmp.Compare(a.hashValue(), b.hashValue()); c != 0 {
		return c
	}
	if c := cmp.Compare(seqOf(a), seqOf(b)); c != 0 {
		return c
	}
	return cmp.Compare(a.Name(), b.Name())
}

func boolKey(b Boolean) int {
	if !b.Known {
		return 0
	}
	if b.Val {
		return 2
	}
	return 1
}

type sequenced interface{ sequence() uint32 }

func seqOf(t Type) uint32 {
	if s, ok := t.(sequenced); ok {
		return s.sequence()
	}
	return 0
}

// sortTypes sorts in place by the handle total order.
func sortTypes(ts []Type) {
	slices.SortFunc(ts, compareTypes)
}

// dedupSorted removes exactly-equal neighbors from a sorted slice.
func dedupSorted(ts []Type) []Type {
	return slices.CompactFunc(ts, func(a, b Type) bool { return a == b })
}
