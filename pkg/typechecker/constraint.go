package typechecker

import "go.uber.org/zap"

// constrain records that lhs flows into rhs. Neither side is rejected: the
// call only accumulates bounds on variables, witnesses on value instances,
// and recurses structurally. Pairs with no recording rule fall through to a
// debug log.
func (c *Checker) constrain(lhs, rhs Type) {
	if lhs == nil || rhs == nil || lhs == rhs {
		return
	}

	// Variables first: they absorb the other side as a bound.
	if v, ok := lhs.(*VarTy); ok {
		if w, ok := rhs.(*VarTy); ok {
			if v.Decl == w.Decl {
				return
			}
			// Variable-to-variable flow between distinct bindings is left
			// unresolved; recording it would build unification chains the
			// bound model does not maintain.
			c.log.Debug("constrain: unpaired variables",
				zap.String("lhs", v.Name()), zap.String("rhs", w.Name()))
			return
		}
		c.info.VarOf(v.VarName, v.Decl).WitnessUpper(c.in, rhs)
		return
	}
	if w, ok := rhs.(*VarTy); ok {
		c.info.VarOf(w.VarName, w.Decl).WitnessLower(c.in, lhs)
		return
	}

	// Unions distribute on either side.
	if u, ok := lhs.(*UnionTy); ok {
		for _, m := range u.Members {
			c.constrain(m, rhs)
		}
		return
	}
	if u, ok := rhs.(*UnionTy); ok {
		for _, m := range u.Members {
			c.constrain(lhs, m)
		}
		return
	}

	// Frozen bound sets stand in for their producing or consuming side.
	if b, ok := lhs.(*BoundsTy); ok {
		for _, lb := range b.Lower {
			c.constrain(lb, rhs)
		}
		return
	}
	if b, ok := rhs.(*BoundsTy); ok {
		for _, ub := range b.Upper {
			c.constrain(lhs, ub)
		}
		return
	}

	// Value instances witness the requirement at their source span.
	if ins, ok := lhs.(*InsTy); ok {
		if !ins.At.Detached() {
			c.info.WitnessAtMost(ins.At, rhs)
		}
		return
	}
	if ins, ok := rhs.(*InsTy); ok {
		if !ins.At.Detached() {
			c.info.WitnessAtLeast(ins.At, lhs)
		}
		return
	}

	// Pseudo-record tags rewrite to their canonical record shape when the
	// other side is spelled as a record.
	if tag, ok := isPseudoRecordTag(rhs); ok {
		if _, isRec := lhs.(*RecordTy); isRec {
			if shape, ok := PseudoRecord(tag); ok {
				c.constrain(lhs, shape)
				return
			}
		}
	}
	if tag, ok := isPseudoRecordTag(lhs); ok {
		if _, isRec := rhs.(*RecordTy); isRec {
			if shape, ok := PseudoRecord(tag); ok {
				c.constrain(shape, rhs)
				return
			}
		}
	}

	switch x := lhs.(type) {
	case *RecordTy:
		if y, ok := rhs.(*RecordTy); ok {
			intersectIndex(x.FieldNames, y.FieldNames, func(i, j int) {
				c.constrain(x.FieldTypes[i], y.FieldTypes[j])
				if j < len(y.FieldSpans) && !y.FieldSpans[j].Detached() {
					c.info.WitnessAtLeast(y.FieldSpans[j], x.FieldTypes[i])
				}
				if i < len(x.FieldSpans) && !x.FieldSpans[i].Detached() {
					c.info.WitnessAtMost(x.FieldSpans[i], y.FieldTypes[j])
				}
			})
			return
		}
	case ArrayTy:
		if y, ok := rhs.(ArrayTy); ok {
			c.constrain(x.Elem, y.Elem)
			return
		}
		if y, ok := rhs.(*TupleTy); ok {
			for _, e := range y.Elems {
				c.constrain(x.Elem, e)
			}
			return
		}
	case *TupleTy:
		if y, ok := rhs.(*TupleTy); ok {
			for i := 0; i < len(x.Elems) && i < len(y.Elems); i++ {
				c.constrain(x.Elems[i], y.Elems[i])
			}
			return
		}
		if y, ok := rhs.(ArrayTy); ok {
			for _, e := range x.Elems {
				c.constrain(e, y.Elem)
			}
			return
		}
	case FuncTy:
		if y, ok := rhs.(FuncTy); ok {
			c.constrainSig(x.Sig, y.Sig)
			return
		}
	case CondTy:
		c.constrain(x.Then, rhs)
		c.constrain(x.Else, rhs)
		return
	}
	if y, ok := rhs.(CondTy); ok {
		c.constrain(lhs, y.Then)
		c.constrain(lhs, y.Else)
		return
	}

	c.log.Debug("constrain: no rule",
		zap.String("lhs", lhs.Name()), zap.String("rhs", rhs.Name()))
}

// constrainSig relates two function signatures: inputs contravariantly,
// returns covariantly.
func (c *Checker) constrainSig(a, b *SigTy) {
	if a == nil || b == nil {
		return
	}
	n := min(a.NameStart, b.NameStart)
	for i := 0; i < n; i++ {
		c.constrain(b.Inputs[i], a.Inputs[i])
	}
	intersectIndex(a.Names, b.Names, func(i, j int) {
		c.constrain(b.namedTypeAt(j), a.namedTypeAt(i))
	})
	if ar, ok := a.Rest(); ok {
		if br, ok := b.Rest(); ok {
			c.constrain(br, ar)
		}
	}
	if a.Ret != nil && b.Ret != nil {
		c.constrain(a.Ret, b.Ret)
	}
}

// possibleEverBe records a soft hint that lhs might take the value rhs,
// without requiring it. Only simple concrete hints are recorded.
func (c *Checker) possibleEverBe(lhs, rhs Type) {
	switch rhs.(type) {
	case *InsTy, Boolean, Lit, Prim:
		c.constrain(rhs, lhs)
	}
}

// checkContaining constrains the container side of an `in` test: the
// container must hold elem, spelled as an array of elem or, for string
// elements, a string or record key lookup.
func (c *Checker) checkContaining(container, elem Type) {
	expected := []Type{ArrayTy{Elem: elem}}
	if c.isStrLike(elem) {
		expected = append(expected, LitStr)
	}
	c.constrain(container, c.in.Union(expected...))
}

func (c *Checker) isStrLike(t Type) bool {
	return satisfies(t, c.info, func(m Type) bool {
		if m == Type(LitStr) {
			return true
		}
		if ins, ok := m.(*InsTy); ok {
			_, isStr := ins.Val.(StrValue)
			return isStr
		}
		return false
	})
}

// satisfies reports whether any member reachable from t through unions,
// frozen bound sets, and variable bounds matches pred.
func satisfies(t Type, src boundSource, pred func(Type) bool) bool {
	return satisfiesRec(t, src, pred, make(map[Type]bool))
}

func satisfiesRec(t Type, src boundSource, pred func(Type) bool, seen map[Type]bool) bool {
	if t == nil || seen[t] {
		return false
	}
	seen[t] = true
	switch x := t.(type) {
	case *VarTy:
		if src == nil {
			return false
		}
		vb, ok := src.BoundsOf(x)
		if !ok {
			return false
		}
		for _, lb := range vb.Lower {
			if satisfiesRec(lb, src, pred, seen) {
				return true
			}
		}
		for _, ub := range vb.Upper {
			if satisfiesRec(ub, src, pred, seen) {
				return true
			}
		}
		return false
	case *BoundsTy:
		for _, lb := range x.Lower {
			if satisfiesRec(lb, src, pred, seen) {
				return true
			}
		}
		for _, ub := range x.Upper {
			if satisfiesRec(ub, src, pred, seen) {
				return true
			}
		}
		return false
	case *UnionTy:
		for _, m := range x.Members {
			if satisfiesRec(m, src, pred, seen) {
				return true
			}
		}
		return false
	}
	return pred(t)
}
