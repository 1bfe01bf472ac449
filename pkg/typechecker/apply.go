package typechecker

import (
	"go.uber.org/zap"

	"marq/analyzer-go/pkg/ast"
)

// sigCandidate is one callable resolved from a callee type: a base
// signature plus the argument packs already bound by partial application,
// in application order.
type sigCandidate struct {
	sig   *SigTy
	withs []*SigTy
}

// checkApply checks one call: every signature the callee can resolve to is
// matched against the argument pack, each argument constrained into its
// parameter slot. The call's type is the union of the candidate returns.
// An unresolvable callee is inconclusive, never an error.
func (c *Checker) checkApply(callee Type, args *SigTy, at ast.Span) Type {
	cands := c.sigCandidates(callee, nil, make(map[Type]bool))
	if len(cands) == 0 {
		c.log.Debug("apply: callee not resolved", zap.String("callee", callee.Name()))
		return Any
	}
	var rets []Type
	for _, cand := range cands {
		matchSignatures(cand.sig, args, cand.withs, func(param, arg Type) {
			c.constrain(arg, param)
		})
		if !at.Detached() {
			c.info.WitnessAtLeast(at, FuncTy{Sig: cand.sig})
		}
		if cand.sig.Ret != nil {
			rets = append(rets, cand.sig.Ret)
		}
	}
	if len(rets) == 0 {
		return Any
	}
	return c.in.Union(rets...)
}

// checkWith records one partial application without invoking anything.
func (c *Checker) checkWith(callee Type, args *SigTy) Type {
	return WithTy{Sig: callee, Args: args}
}

// sigCandidates resolves a callee type to its callable signatures, chasing
// variable bounds, partial-application chains, unions, and conditional
// branches. The seen set cuts cycles through bounds.
func (c *Checker) sigCandidates(t Type, withs []*SigTy, seen map[Type]bool) []sigCandidate {
	if t == nil || seen[t] {
		return nil
	}
	seen[t] = true
	switch x := t.(type) {
	case FuncTy:
		return []sigCandidate{{sig: x.Sig, withs: withs}}
	case *SigTy:
		return []sigCandidate{{sig: x, withs: withs}}
	case WithTy:
		// Prepending while unwrapping outer-to-inner leaves the list in
		// application order; the matcher consumes it in reverse.
		inner := append([]*SigTy{x.Args}, withs...)
		return c.sigCandidates(x.Sig, inner, seen)
	case *InsTy:
		switch v := x.Val.(type) {
		case FuncValue:
			if v.Sig != nil {
				return []sigCandidate{{sig: v.Sig, withs: withs}}
			}
		case ElementValue:
			if v.Sig != nil {
				return []sigCandidate{{sig: v.Sig, withs: withs}}
			}
		}
		return nil
	case *VarTy:
		vb, ok := c.info.BoundsOf(x)
		if !ok {
			return nil
		}
		var out []sigCandidate
		for _, lb := range vb.Lower {
			out = append(out, c.sigCandidates(lb, withs, seen)...)
		}
		for _, ub := range vb.Upper {
			out = append(out, c.sigCandidates(ub, withs, seen)...)
		}
		return out
	case *BoundsTy:
		var out []sigCandidate
		for _, lb := range x.Lower {
			out = append(out, c.sigCandidates(lb, withs, seen)...)
		}
		return out
	case *UnionTy:
		var out []sigCandidate
		for _, m := range x.Members {
			out = append(out, c.sigCandidates(m, withs, seen)...)
		}
		return out
	case CondTy:
		out := c.sigCandidates(x.Then, withs, seen)
		return append(out, c.sigCandidates(x.Else, withs, seen)...)
	}
	return nil
}
