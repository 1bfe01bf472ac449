package typechecker

import (
	"strconv"

	"marq/analyzer-go/pkg/ast"
)

// Value is a concrete literal or runtime value wrapped by a value-instance
// type. The set is closed; every implementation is comparable so that value
// instances can be deduplicated by the interner.
type Value interface {
	// Repr renders the value the way source code would spell it.
	Repr() string
}

// NoneValue is the `none` literal.
type NoneValue struct{}

func (NoneValue) Repr() string { return "none" }

// AutoValue is the `auto` literal.
type AutoValue struct{}

func (AutoValue) Repr() string { return "auto" }

// BoolValue is a boolean literal.
type BoolValue struct{ Val bool }

func (v BoolValue) Repr() string { return strconv.FormatBool(v.Val) }

// IntValue is an integer literal.
type IntValue struct{ Val int64 }

func (v IntValue) Repr() string { return strconv.FormatInt(v.Val, 10) }

// FloatValue is a floating-point literal.
type FloatValue struct{ Val float64 }

func (v FloatValue) Repr() string { return strconv.FormatFloat(v.Val, 'g', -1, 64) }

// StrValue is a string literal.
type StrValue struct{ Val string }

func (v StrValue) Repr() string { return strconv.Quote(v.Val) }

// ContentValue is an opaque piece of already-produced content.
type ContentValue struct{}

func (ContentValue) Repr() string { return "content" }

// FuncValue is a library function with a known signature.
type FuncValue struct {
	FuncName string
	Sig      *SigTy
}

func (v FuncValue) Repr() string { return v.FuncName }

// ElementValue is a callable content element (heading, text, ...). Its
// named parameters double as settable style properties.
type ElementValue struct {
	ElemName string
	Sig      *SigTy
}

func (v ElementValue) Repr() string { return v.ElemName }

// ModuleValue names another file's module.
type ModuleValue struct {
	ModName string
	File    ast.FileID
}

func (v ModuleValue) Repr() string { return "<module " + v.ModName + ">" }

// TypeValue is a first-class type object (`int`, `str`, ...).
type TypeValue struct{ TypeName string }

func (v TypeValue) Repr() string { return v.TypeName }

// TagValue is an opaque library constant whose type is a builtin tag, such
// as a color or direction constant.
type TagValue struct {
	ConstName string
	Tag       Lit
}

func (v TagValue) Repr() string { return v.ConstName }
