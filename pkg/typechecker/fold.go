package typechecker

import "marq/analyzer-go/pkg/ast"

// Constant folding over value instances. Folding is best-effort: any pair
// the rules below do not cover stays an unresolved operation type.

// foldUnary folds a unary operator applied to a known value.
func (c *Checker) foldUnary(op ast.UnOp, t Type, at ast.Span) (Type, bool) {
	ins, ok := t.(*InsTy)
	if !ok {
		return nil, false
	}
	switch op {
	case ast.UnPos:
		switch ins.Val.(type) {
		case IntValue, FloatValue:
			return c.in.InsAt(ins.Val, at), true
		}
	case ast.UnNeg:
		switch v := ins.Val.(type) {
		case IntValue:
			return c.in.InsAt(IntValue{Val: -v.Val}, at), true
		case FloatValue:
			return c.in.InsAt(FloatValue{Val: -v.Val}, at), true
		}
	case ast.UnNot:
		if v, ok := ins.Val.(BoolValue); ok {
			return c.in.InsAt(BoolValue{Val: !v.Val}, at), true
		}
	}
	return nil, false
}

// foldBinary folds a binary operator over two known values.
func (c *Checker) foldBinary(op ast.BinOp, lhs, rhs Type, at ast.Span) (Type, bool) {
	li, ok := lhs.(*InsTy)
	if !ok {
		return nil, false
	}
	ri, ok := rhs.(*InsTy)
	if !ok {
		return nil, false
	}

	switch op {
	case ast.BinEq:
		return c.boolIns(li.Val == ri.Val, at), true
	case ast.BinNeq:
		return c.boolIns(li.Val != ri.Val, at), true
	case ast.BinAnd:
		if a, b, ok := boolPair(li.Val, ri.Val); ok {
			return c.boolIns(a && b, at), true
		}
		return nil, false
	case ast.BinOr:
		if a, b, ok := boolPair(li.Val, ri.Val); ok {
			return c.boolIns(a || b, at), true
		}
		return nil, false
	}

	if a, b, ok := intPair(li.Val, ri.Val); ok {
		switch op {
		case ast.BinAdd:
			return c.in.InsAt(IntValue{Val: a + b}, at), true
		case ast.BinSub:
			return c.in.InsAt(IntValue{Val: a - b}, at), true
		case ast.BinMul:
			return c.in.InsAt(IntValue{Val: a * b}, at), true
		case ast.BinDiv:
			if b == 0 {
				return nil, false
			}
			return c.in.InsAt(IntValue{Val: a / b}, at), true
		case ast.BinLt:
			return c.boolIns(a < b, at), true
		case ast.BinLeq:
			return c.boolIns(a <= b, at), true
		case ast.BinGt:
			return c.boolIns(a > b, at), true
		case ast.BinGeq:
			return c.boolIns(a >= b, at), true
		}
		return nil, false
	}

	if a, b, ok := floatPair(li.Val, ri.Val); ok {
		switch op {
		case ast.BinAdd:
			return c.in.InsAt(FloatValue{Val: a + b}, at), true
		case ast.BinSub:
			return c.in.InsAt(FloatValue{Val: a - b}, at), true
		case ast.BinMul:
			return c.in.InsAt(FloatValue{Val: a * b}, at), true
		case ast.BinDiv:
			if b == 0 {
				return nil, false
			}
			return c.in.InsAt(FloatValue{Val: a / b}, at), true
		case ast.BinLt:
			return c.boolIns(a < b, at), true
		case ast.BinLeq:
			return c.boolIns(a <= b, at), true
		case ast.BinGt:
			return c.boolIns(a > b, at), true
		case ast.BinGeq:
			return c.boolIns(a >= b, at), true
		}
		return nil, false
	}

	if a, ok := li.Val.(StrValue); ok {
		if b, ok := ri.Val.(StrValue); ok {
			switch op {
			case ast.BinAdd:
				return c.in.InsAt(StrValue{Val: a.Val + b.Val}, at), true
			case ast.BinLt:
				return c.boolIns(a.Val < b.Val, at), true
			case ast.BinLeq:
				return c.boolIns(a.Val <= b.Val, at), true
			case ast.BinGt:
				return c.boolIns(a.Val > b.Val, at), true
			case ast.BinGeq:
				return c.boolIns(a.Val >= b.Val, at), true
			}
		}
	}
	return nil, false
}

func (c *Checker) boolIns(v bool, at ast.Span) *InsTy {
	return c.in.InsAt(BoolValue{Val: v}, at)
}

func boolPair(a, b Value) (bool, bool, bool) {
	x, ok := a.(BoolValue)
	if !ok {
		return false, false, false
	}
	y, ok := b.(BoolValue)
	if !ok {
		return false, false, false
	}
	return x.Val, y.Val, true
}

func intPair(a, b Value) (int64, int64, bool) {
	x, ok := a.(IntValue)
	if !ok {
		return 0, 0, false
	}
	y, ok := b.(IntValue)
	if !ok {
		return 0, 0, false
	}
	return x.Val, y.Val, true
}

func floatPair(a, b Value) (float64, float64, bool) {
	x, ok := a.(FloatValue)
	if !ok {
		return 0, 0, false
	}
	y, ok := b.(FloatValue)
	if !ok {
		return 0, 0, false
	}
	return x.Val, y.Val, true
}
