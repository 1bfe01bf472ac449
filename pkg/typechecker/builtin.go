package typechecker

import (
	"sync"

	"marq/analyzer-go/pkg/ast"
)

// The pseudo-record tags name style shapes that may be spelled either as a
// bare value or as a record of components. The checker rewrites between the
// tag and the canonical record below when a constraint pairs them.

var pseudoRecordFields = map[Lit][]RecordField{
	LitStroke: {
		{Name: "paint", Ty: LitColor},
		{Name: "thickness", Ty: LitLength},
		{Name: "cap", Ty: LitStr},
		{Name: "join", Ty: LitStr},
		{Name: "dash", Ty: LitStr},
		{Name: "miter-limit", Ty: LitFloat},
	},
	LitMargin: {
		{Name: "top", Ty: LitLength},
		{Name: "right", Ty: LitLength},
		{Name: "bottom", Ty: LitLength},
		{Name: "left", Ty: LitLength},
		{Name: "inside", Ty: LitLength},
		{Name: "outside", Ty: LitLength},
		{Name: "x", Ty: LitLength},
		{Name: "y", Ty: LitLength},
		{Name: "rest", Ty: LitLength},
	},
	LitInset: {
		{Name: "top", Ty: LitLength},
		{Name: "right", Ty: LitLength},
		{Name: "bottom", Ty: LitLength},
		{Name: "left", Ty: LitLength},
		{Name: "x", Ty: LitLength},
		{Name: "y", Ty: LitLength},
		{Name: "rest", Ty: LitLength},
	},
	LitOutset: {
		{Name: "top", Ty: LitLength},
		{Name: "right", Ty: LitLength},
		{Name: "bottom", Ty: LitLength},
		{Name: "left", Ty: LitLength},
		{Name: "x", Ty: LitLength},
		{Name: "y", Ty: LitLength},
		{Name: "rest", Ty: LitLength},
	},
	LitRadius: {
		{Name: "top-left", Ty: LitLength},
		{Name: "top-right", Ty: LitLength},
		{Name: "bottom-left", Ty: LitLength},
		{Name: "bottom-right", Ty: LitLength},
		{Name: "left", Ty: LitLength},
		{Name: "top", Ty: LitLength},
		{Name: "right", Ty: LitLength},
		{Name: "bottom", Ty: LitLength},
		{Name: "rest", Ty: LitLength},
	},
}

var (
	pseudoOnce    sync.Once
	pseudoRecords map[Lit]*RecordTy
	pseudoArena   = NewInterner()
)

// PseudoRecord returns the canonical record shape behind a pseudo-record
// tag. The shapes live in a private arena so they are stable process-wide.
func PseudoRecord(l Lit) (*RecordTy, bool) {
	pseudoOnce.Do(func() {
		pseudoRecords = make(map[Lit]*RecordTy, len(pseudoRecordFields))
		for tag, fields := range pseudoRecordFields {
			pseudoRecords[tag] = pseudoArena.Record(fields)
		}
	})
	rec, ok := pseudoRecords[l]
	return rec, ok
}

// isPseudoRecordTag reports whether the literal tag has a record spelling.
func isPseudoRecordTag(t Type) (Lit, bool) {
	l, ok := t.(Lit)
	if !ok {
		return 0, false
	}
	switch l {
	case LitStroke, LitMargin, LitInset, LitOutset, LitRadius:
		return l, true
	}
	return 0, false
}

// Shape lifts a concrete value to its general builtin shape. It is what
// weakening applies to value instances so that a frozen variable constrains
// by shape rather than by the one literal it happened to see. A false second
// return means the value has no more general shape than itself.
func Shape(v Value) (Type, bool) {
	switch val := v.(type) {
	case NoneValue:
		return None, true
	case AutoValue:
		return Auto, true
	case BoolValue:
		return BoolUnknown, true
	case IntValue:
		return LitInt, true
	case FloatValue:
		return LitFloat, true
	case StrValue:
		return LitStr, true
	case ContentValue:
		return Content, true
	case TypeValue:
		return LitType, true
	case FuncValue:
		return FuncTy{Sig: val.Sig}, true
	case ElementValue:
		return LitElement, true
	case TagValue:
		return val.Tag, true
	}
	return nil, false
}

// weakenType rewrites value instances inside a bound to their shapes.
// Composites that can contain instances are rebuilt; everything else passes
// through.
func weakenType(in *Interner, t Type) Type {
	switch x := t.(type) {
	case *InsTy:
		if shape, ok := Shape(x.Val); ok {
			return shape
		}
		return x
	case *UnionTy:
		members := make([]Type, len(x.Members))
		for i, m := range x.Members {
			members[i] = weakenType(in, m)
		}
		return in.Union(members...)
	case *TupleTy:
		elems := make([]Type, len(x.Elems))
		for i, e := range x.Elems {
			elems[i] = weakenType(in, e)
		}
		return in.Tuple(elems)
	case ArrayTy:
		return ArrayTy{Elem: weakenType(in, x.Elem)}
	case *RecordTy:
		fields := make([]RecordField, len(x.FieldNames))
		for i, name := range x.FieldNames {
			span := ast.Span{}
			if i < len(x.FieldSpans) {
				span = x.FieldSpans[i]
			}
			fields[i] = RecordField{Name: name, Ty: weakenType(in, x.FieldTypes[i]), Span: span}
		}
		return in.Record(fields)
	}
	return t
}
