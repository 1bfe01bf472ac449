package typechecker

import (
	"strings"

	"github.com/samber/lo"
)

// Describe renders a type the way hover and completion present it. The
// rendering is cycle-safe: a type re-entered while being described shows as
// $self.
func Describe(t Type) string {
	d := &describer{seen: make(map[Type]bool)}
	return d.describe(t)
}

type describer struct {
	seen map[Type]bool
}

func (d *describer) describe(t Type) string {
	if t == nil {
		return "any"
	}
	if d.seen[t] {
		return "$self"
	}
	d.seen[t] = true
	defer delete(d.seen, t)

	switch x := t.(type) {
	case Prim, Lit, Boolean:
		return t.Name()
	case *InsTy:
		return x.Val.Repr()
	case *VarTy:
		return x.VarName
	case *ParamTy:
		return d.describe(x.Ty)
	case *UnionTy:
		parts := lo.Uniq(lo.Map(x.Members, func(m Type, _ int) string {
			return d.describe(m)
		}))
		return strings.Join(parts, " | ")
	case *BoundsTy:
		sides := append(append([]Type{}, x.Lower...), x.Upper...)
		if len(sides) == 0 {
			return "any"
		}
		parts := lo.Uniq(lo.Map(sides, func(m Type, _ int) string {
			return d.describe(m)
		}))
		return strings.Join(parts, " | ")
	case *RecordTy:
		fields := lo.Map(x.FieldNames, func(name string, i int) string {
			return name + ": " + d.describe(x.FieldTypes[i])
		})
		return "(" + strings.Join(fields, ", ") + ")"
	case ArrayTy:
		return "array<" + d.describe(x.Elem) + ">"
	case *TupleTy:
		elems := lo.Map(x.Elems, func(e Type, _ int) string {
			return d.describe(e)
		})
		return "(" + strings.Join(elems, ", ") + ")"
	case FuncTy:
		return d.describeSig(x.Sig)
	case PatTy:
		return d.describeSig(x.Sig)
	case ArgTy:
		return "arguments"
	case WithTy:
		return d.describe(x.Sig)
	case SelectTy:
		return d.describe(x.Ty) + "." + x.Field
	case CondTy:
		thenS := d.describe(x.Then)
		elseS := d.describe(x.Else)
		if thenS == elseS {
			return thenS
		}
		return thenS + " | " + elseS
	case *SigTy:
		return d.describeSig(x)
	}
	return t.Name()
}

func (d *describer) describeSig(sig *SigTy) string {
	if sig == nil {
		return "() => any"
	}
	var parts []string
	for _, p := range sig.Positional() {
		parts = append(parts, d.describe(p))
	}
	for i, name := range sig.Names {
		parts = append(parts, name+": "+d.describe(sig.namedTypeAt(i)))
	}
	if rest, ok := sig.Rest(); ok {
		parts = append(parts, "..: "+d.describe(rest))
	}
	ret := "any"
	if sig.Ret != nil {
		ret = d.describe(sig.Ret)
	}
	return "(" + strings.Join(parts, ", ") + ") => " + ret
}
