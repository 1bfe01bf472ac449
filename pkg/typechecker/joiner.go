package typechecker

// Joiner folds the child types of a sequence (markup body, code block,
// loop body) into the sequence's own type. Whitespace, clauses, and
// information-free children are ignored; a control-flow marker freezes the
// joiner so nothing after a break, continue, or return contributes.
//
// Everything concrete accumulates into a definite type: none absorbs into
// anything, a repeated shape keeps the shape, and two distinct shapes give
// up to undef. Only open variables are set aside as possibles; a single
// possible wins outright, several dissolve into any.
type Joiner struct {
	flow      Type
	definite  Type
	possibles []Type
}

// NewJoiner starts an empty sequence, whose type is none.
func NewJoiner() *Joiner {
	return &Joiner{definite: None}
}

// Flow returns the control-flow marker that froze the joiner, if any.
func (j *Joiner) Flow() (Type, bool) {
	if j.flow == nil {
		return nil, false
	}
	return j.flow, true
}

// Join folds one child type into the sequence.
func (j *Joiner) Join(t Type) {
	if j.flow != nil || t == nil {
		return
	}
	if p, ok := t.(Prim); ok {
		switch p {
		case Space, Clause, Any, Infer, None, Undef:
			return
		case Break, Continue, Return:
			j.flow = p
			return
		}
	}
	if _, ok := t.(*VarTy); ok {
		j.possibles = append(j.possibles, t)
		return
	}
	if j.definite == None {
		j.definite = t
		return
	}
	if j.definite == t {
		return
	}
	j.definite = Undef
}

// Finalize returns the joined sequence type.
func (j *Joiner) Finalize() Type {
	switch len(j.possibles) {
	case 0:
		return j.definite
	case 1:
		return j.possibles[0]
	}
	return Any
}
