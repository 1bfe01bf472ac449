package typechecker

import "testing"

func TestCanonicalizePrincipalPicksSoleLowerBound(t *testing.T) {
	in := NewInterner()
	info := NewInfo(1, in)
	vb := info.VarOf("x", 1)

	one := in.InsAt(IntValue{Val: 1}, span(0, 1))
	vb.WitnessLower(in, one)

	got := info.Canonicalize(vb.Var, true)
	if got != Type(one) {
		t.Fatalf("principal type = %v, want the sole lower bound", got)
	}
}

func TestCanonicalizeKeepsBothSidesWhenNotPrincipal(t *testing.T) {
	in := NewInterner()
	info := NewInfo(1, in)
	vb := info.VarOf("x", 1)
	vb.WitnessLower(in, LitInt)
	vb.WitnessUpper(in, Content)

	got := info.Canonicalize(vb.Var, false)
	b, ok := got.(*BoundsTy)
	if !ok {
		t.Fatalf("canonical form = %T, want a bound set", got)
	}
	if len(b.Lower) != 1 || b.Lower[0] != Type(LitInt) {
		t.Fatalf("lower = %v", b.Lower)
	}
	if len(b.Upper) != 1 || b.Upper[0] != Type(Content) {
		t.Fatalf("upper = %v", b.Upper)
	}
}

func TestCanonicalizeUnboundedVarIsAny(t *testing.T) {
	in := NewInterner()
	info := NewInfo(1, in)
	vb := info.VarOf("x", 1)

	if got := info.Canonicalize(vb.Var, true); got != Type(Any) {
		t.Fatalf("unbounded variable canonicalizes to %v, want any", got)
	}
}

func TestCanonicalizeCutsBoundCycles(t *testing.T) {
	in := NewInterner()
	info := NewInfo(1, in)
	vb := info.VarOf("x", 1)
	// x's bound mentions x itself.
	vb.WitnessLower(in, ArrayTy{Elem: vb.Var})

	got := info.Canonicalize(vb.Var, true)
	arr, ok := got.(ArrayTy)
	if !ok {
		t.Fatalf("canonical form = %T, want array", got)
	}
	if arr.Elem != Type(Any) {
		t.Fatalf("cycle not cut with a placeholder: elem = %v", arr.Elem)
	}
}

func TestCanonicalizeIsStableAndCached(t *testing.T) {
	in := NewInterner()
	info := NewInfo(1, in)
	vb := info.VarOf("x", 1)
	vb.WitnessLower(in, LitInt)
	vb.WitnessLower(in, LitStr)

	first := info.Canonicalize(vb.Var, true)
	second := info.Canonicalize(vb.Var, true)
	if first != second {
		t.Fatalf("repeated canonicalization differs: %v vs %v", first, second)
	}
	b, ok := first.(*BoundsTy)
	if !ok || len(b.Lower) != 2 {
		t.Fatalf("canonical form = %v, want a two-lower bound set", first)
	}
	// Canonical forms are fixed points.
	if again := info.Canonicalize(first, true); again != first {
		t.Fatalf("canonicalization not idempotent: %v vs %v", again, first)
	}
}

func TestCanonicalizeSignatureFlipsPolarity(t *testing.T) {
	in := NewInterner()
	info := NewInfo(1, in)
	vb := info.VarOf("p", 1)
	vb.WitnessUpper(in, LitInt)

	// p is a parameter: it occurs negatively, so in principal mode its
	// upper bound survives.
	fn := FuncTy{Sig: in.Sig([]Type{vb.Var}, nil, nil, false, Content)}
	got := info.Canonicalize(fn, true)
	gotFn, ok := got.(FuncTy)
	if !ok {
		t.Fatalf("canonical form = %T, want func", got)
	}
	p, _ := gotFn.Sig.Pos(0)
	if p != Type(LitInt) {
		t.Fatalf("parameter canonicalized to %v, want int", p)
	}
	if gotFn.Sig.Ret != Type(Content) {
		t.Fatalf("return canonicalized to %v", gotFn.Sig.Ret)
	}
}
