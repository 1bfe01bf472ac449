package typechecker

import "marq/analyzer-go/pkg/defuse"

// canonicalize is the two-pass rewrite behind Info.Canonicalize.
//
// Pass one walks the type with polarity and records at which polarity each
// reachable variable is sighted. Pass two rebuilds the type bottom-up,
// substituting every variable by its bound set; in principal mode a bound
// side is kept only when it genuinely determines the variable at the
// polarity it is used: lower bounds survive at positive positions of
// variables never sighted negatively, upper bounds at negative positions of
// variables never sighted positively.
//
// Cycles through variable bounds are cut by seeding a placeholder into the
// per-request cache before recursing into a variable's bounds.
func canonicalize(info *Info, ty Type, principal bool) Type {
	s := &simplifier{
		info:      info,
		principal: principal,
		positives: make(map[defuse.DeclID]bool),
		negatives: make(map[defuse.DeclID]bool),
		cache:     make(map[defuse.DeclID]Type),
	}
	seen := make(map[varPol]bool)
	walkVars(ty, true, info, seen, func(v *VarTy, pol bool) {
		if pol {
			s.positives[v.Decl] = true
		} else {
			s.negatives[v.Decl] = true
		}
	})
	return s.transform(ty, true)
}

type simplifier struct {
	info      *Info
	principal bool
	positives map[defuse.DeclID]bool
	negatives map[defuse.DeclID]bool
	// cache holds per-request results keyed by declaration; entries are
	// seeded with Any before recursion so bound cycles terminate.
	cache map[defuse.DeclID]Type
}

func (s *simplifier) transform(t Type, pol bool) Type {
	in := s.info.interner
	switch x := t.(type) {
	case *VarTy:
		if cached, ok := s.cache[x.Decl]; ok {
			return cached
		}
		vb, ok := s.info.BoundsOf(x)
		if !ok {
			return x
		}
		s.cache[x.Decl] = Any
		out := s.transformLet(vb.Lower, vb.Upper, x.Decl, true, pol)
		s.cache[x.Decl] = out
		return out
	case *BoundsTy:
		return s.transformLet(x.Lower, x.Upper, 0, false, pol)
	case *UnionTy:
		members := make([]Type, len(x.Members))
		for i, m := range x.Members {
			members[i] = s.transform(m, pol)
		}
		return in.Union(members...)
	case *ParamTy:
		p := *x
		p.meta = meta{}
		p.Ty = s.transform(x.Ty, pol)
		return in.Param(p)
	case *RecordTy:
		fields := make([]RecordField, len(x.FieldNames))
		for i, name := range x.FieldNames {
			fields[i] = RecordField{
				Name: name,
				Ty:   s.transform(x.FieldTypes[i], pol),
				Span: x.FieldSpans[i],
			}
		}
		return in.Record(fields)
	case *TupleTy:
		elems := make([]Type, len(x.Elems))
		for i, e := range x.Elems {
			elems[i] = s.transform(e, pol)
		}
		return in.Tuple(elems)
	case ArrayTy:
		return ArrayTy{Elem: s.transform(x.Elem, pol)}
	case FuncTy:
		return FuncTy{Sig: s.transformSig(x.Sig, pol)}
	case ArgTy:
		return ArgTy{Sig: s.transformSig(x.Sig, pol)}
	case PatTy:
		return PatTy{Sig: s.transformSig(x.Sig, pol)}
	case WithTy:
		return WithTy{Sig: s.transform(x.Sig, pol), Args: s.transformSig(x.Args, pol)}
	case SelectTy:
		return SelectTy{Ty: s.transform(x.Ty, pol), Field: x.Field}
	case UnaryTy:
		return UnaryTy{Op: x.Op, Ty: s.transform(x.Ty, pol)}
	case BinaryTy:
		return BinaryTy{Op: x.Op, Lhs: s.transform(x.Lhs, pol), Rhs: s.transform(x.Rhs, pol)}
	case CondTy:
		return CondTy{
			Cond: s.transform(x.Cond, pol),
			Then: s.transform(x.Then, pol),
			Else: s.transform(x.Else, pol),
		}
	case *SigTy:
		return s.transformSig(x, pol)
	}
	return t
}

// transformSig rebuilds a signature: inputs at flipped polarity, return at
// the current one.
func (s *simplifier) transformSig(sig *SigTy, pol bool) *SigTy {
	if sig == nil {
		return nil
	}
	pos, named, rest := sigParts(sig)
	for i, p := range pos {
		pos[i] = s.transform(p, !pol)
	}
	for i, f := range named {
		named[i].Ty = s.transform(f.Ty, !pol)
	}
	if rest != nil {
		rest = s.transform(rest, !pol)
	}
	var ret Type
	if sig.Ret != nil {
		ret = s.transform(sig.Ret, pol)
	}
	return s.info.interner.Sig(pos, named, rest, sig.SpreadLeft, ret)
}

// transformLet substitutes one bound set. gated marks bound sets belonging
// to a variable, whose sides are filtered by the sighting tables in
// principal mode; anonymous bound sets keep both sides.
func (s *simplifier) transformLet(lbs, ubs []Type, decl defuse.DeclID, gated, pol bool) Type {
	var outLbs, outUbs []Type
	for _, lb := range lbs {
		if !s.principal || !gated || (pol && !s.negatives[decl]) {
			outLbs = append(outLbs, s.transform(lb, pol))
		}
	}
	for _, ub := range ubs {
		if !s.principal || !gated || (!pol && !s.positives[decl]) {
			outUbs = append(outUbs, s.transform(ub, !pol))
		}
	}
	if len(outUbs) == 0 {
		switch len(outLbs) {
		case 0:
			return Any
		case 1:
			return outLbs[0]
		}
	}
	if len(outLbs) == 0 && len(outUbs) == 1 {
		return outUbs[0]
	}
	return s.info.interner.Bounds(outLbs, outUbs)
}

// sigParts decomposes a signature's input storage back into its positional,
// named, and rest parts. The returned slices are fresh.
func sigParts(sig *SigTy) (pos []Type, named []NamedField, rest Type) {
	pos = append(pos, sig.Inputs[:sig.NameStart]...)
	for i, name := range sig.Names {
		named = append(named, NamedField{Name: name, Ty: sig.Inputs[sig.NameStart+i]})
	}
	if r, ok := sig.Rest(); ok {
		rest = r
	}
	return pos, named, rest
}
