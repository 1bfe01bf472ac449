package typechecker

import "slices"

// VarBounds accumulates what the checker learns about one type variable.
// Lower bounds are types the variable must be able to hold (flowing in);
// upper bounds are types it flows out into. Order of arrival is kept; the
// lists are only sorted when frozen into a BoundsTy.
//
// A record starts strong: witnessed value instances are kept verbatim so the
// exact literal and its provenance survive. Weakening is a one-way, an
// idempotent switch flipped when the binding escapes into a closure; from
// then on instances are lifted to their shapes before recording, and the
// bounds already gathered are lifted too.
type VarBounds struct {
	Var   *VarTy
	Lower []Type
	Upper []Type
	weak  bool
}

// NewVarBounds returns an empty record for the variable.
func NewVarBounds(v *VarTy) *VarBounds {
	return &VarBounds{Var: v}
}

// Weak reports whether the record has been weakened.
func (vb *VarBounds) Weak() bool { return vb.weak }

// Weaken switches the record to weak mode and lifts the bounds gathered so
// far. Calling it again is a no-op.
func (vb *VarBounds) Weaken(in *Interner) {
	if vb.weak {
		return
	}
	vb.weak = true
	for i, t := range vb.Lower {
		vb.Lower[i] = weakenType(in, t)
	}
	for i, t := range vb.Upper {
		vb.Upper[i] = weakenType(in, t)
	}
}

// WitnessLower records a type flowing into the variable.
func (vb *VarBounds) WitnessLower(in *Interner, t Type) {
	if vb.weak {
		t = weakenType(in, t)
	}
	if !slices.Contains(vb.Lower, t) {
		vb.Lower = append(vb.Lower, t)
	}
}

// WitnessUpper records a type the variable flows out into.
func (vb *VarBounds) WitnessUpper(in *Interner, t Type) {
	if vb.weak {
		t = weakenType(in, t)
	}
	if !slices.Contains(vb.Upper, t) {
		vb.Upper = append(vb.Upper, t)
	}
}

// Snapshot freezes the current bounds into an interned BoundsTy.
func (vb *VarBounds) Snapshot(in *Interner) *BoundsTy {
	return in.Bounds(vb.Lower, vb.Upper)
}

// boundSource resolves a variable's bounds during type traversals.
type boundSource interface {
	BoundsOf(v *VarTy) (*VarBounds, bool)
}

// walkVars visits every variable reachable from t with the polarity it is
// seen at: true where the position accepts values flowing in, false where
// it produces them. Parameter positions and upper bounds flip polarity.
// Frozen bound sets contribute uppers at the current polarity and lowers at
// the flipped one. Cycles through variable bounds are cut by the seen set.
func walkVars(t Type, pol bool, src boundSource, seen map[varPol]bool, visit func(v *VarTy, pol bool)) {
	switch x := t.(type) {
	case *VarTy:
		key := varPol{x, pol}
		if seen[key] {
			return
		}
		seen[key] = true
		visit(x, pol)
		if src == nil {
			return
		}
		vb, ok := src.BoundsOf(x)
		if !ok {
			return
		}
		if pol {
			for _, lb := range vb.Lower {
				walkVars(lb, pol, src, seen, visit)
			}
		} else {
			for _, ub := range vb.Upper {
				walkVars(ub, pol, src, seen, visit)
			}
		}
	case *BoundsTy:
		for _, ub := range x.Upper {
			walkVars(ub, pol, src, seen, visit)
		}
		for _, lb := range x.Lower {
			walkVars(lb, !pol, src, seen, visit)
		}
	case *UnionTy:
		for _, m := range x.Members {
			walkVars(m, pol, src, seen, visit)
		}
	case *ParamTy:
		walkVars(x.Ty, pol, src, seen, visit)
	case *RecordTy:
		for _, f := range x.FieldTypes {
			walkVars(f, pol, src, seen, visit)
		}
	case *TupleTy:
		for _, e := range x.Elems {
			walkVars(e, pol, src, seen, visit)
		}
	case ArrayTy:
		walkVars(x.Elem, pol, src, seen, visit)
	case FuncTy:
		walkSigVars(x.Sig, pol, src, seen, visit)
	case ArgTy:
		walkSigVars(x.Sig, pol, src, seen, visit)
	case PatTy:
		walkSigVars(x.Sig, pol, src, seen, visit)
	case WithTy:
		walkVars(x.Sig, pol, src, seen, visit)
		walkSigVars(x.Args, pol, src, seen, visit)
	case SelectTy:
		walkVars(x.Ty, pol, src, seen, visit)
	case UnaryTy:
		walkVars(x.Ty, pol, src, seen, visit)
	case BinaryTy:
		walkVars(x.Lhs, pol, src, seen, visit)
		walkVars(x.Rhs, pol, src, seen, visit)
	case CondTy:
		walkVars(x.Cond, pol, src, seen, visit)
		walkVars(x.Then, pol, src, seen, visit)
		walkVars(x.Else, pol, src, seen, visit)
	case *SigTy:
		walkSigVars(x, pol, src, seen, visit)
	}
}

func walkSigVars(sig *SigTy, pol bool, src boundSource, seen map[varPol]bool, visit func(v *VarTy, pol bool)) {
	if sig == nil {
		return
	}
	for _, in := range sig.Inputs {
		walkVars(in, !pol, src, seen, visit)
	}
	if sig.Ret != nil {
		walkVars(sig.Ret, pol, src, seen, visit)
	}
}

type varPol struct {
	v   *VarTy
	pol bool
}
