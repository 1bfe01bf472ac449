package typechecker

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

type pair struct{ Param, Arg Type }

func collectMatches(sig, args *SigTy, withs []*SigTy) []pair {
	var out []pair
	matchSignatures(sig, args, withs, func(p, a Type) {
		out = append(out, pair{p, a})
	})
	return out
}

func TestMatchesRestCyclesOnSigSide(t *testing.T) {
	in := NewInterner()
	p1 := in.Var("p1", 1)
	r1 := in.Var("r1", 2)
	q1, q2, q3 := in.Var("q1", 3), in.Var("q2", 4), in.Var("q3", 5)

	sig := in.Sig([]Type{p1}, nil, r1, false, nil)
	args := in.Sig([]Type{q1, q2, q3}, nil, nil, false, nil)

	want := []pair{{p1, q1}, {r1, q2}, {r1, q3}}
	if diff := cmp.Diff(want, collectMatches(sig, args, nil), tyIdentity); diff != "" {
		t.Fatalf("pairs mismatch (-want +got):\n%s", diff)
	}
}

func TestMatchesRestCyclesOnArgSide(t *testing.T) {
	in := NewInterner()
	p1, p2 := in.Var("p1", 1), in.Var("p2", 2)
	s2 := in.Var("s2", 3)

	sig := in.Sig([]Type{p1, p2}, nil, nil, false, nil)
	args := in.Sig(nil, nil, s2, false, nil)

	want := []pair{{p1, s2}, {p2, s2}}
	if diff := cmp.Diff(want, collectMatches(sig, args, nil), tyIdentity); diff != "" {
		t.Fatalf("pairs mismatch (-want +got):\n%s", diff)
	}
}

func TestMatchesBothRests(t *testing.T) {
	in := NewInterner()
	p1 := in.Var("p1", 1)
	r1 := in.Var("r1", 2)
	s1 := in.Var("s1", 3)

	sig := in.Sig([]Type{p1}, nil, r1, false, nil)
	args := in.Sig(nil, nil, s1, false, nil)

	// One extra slot pairs the two rests exactly once.
	want := []pair{{p1, s1}, {r1, s1}}
	if diff := cmp.Diff(want, collectMatches(sig, args, nil), tyIdentity); diff != "" {
		t.Fatalf("pairs mismatch (-want +got):\n%s", diff)
	}
}

func TestMatchesNamedIntersection(t *testing.T) {
	in := NewInterner()
	sig := in.Sig(nil, []NamedField{
		{Name: "fill", Ty: LitColor},
		{Name: "size", Ty: LitTextSize},
	}, nil, false, nil)
	args := in.Sig(nil, []NamedField{
		{Name: "size", Ty: LitInt},
		{Name: "unknown", Ty: LitStr},
	}, nil, false, nil)

	want := []pair{{LitTextSize, LitInt}}
	if diff := cmp.Diff(want, collectMatches(sig, args, nil), tyIdentity); diff != "" {
		t.Fatalf("named pairs mismatch (-want +got):\n%s", diff)
	}
}

func TestMatchesWithsConsumeLastAppliedFirst(t *testing.T) {
	in := NewInterner()
	p1, p2, p3 := in.Var("p1", 1), in.Var("p2", 2), in.Var("p3", 3)
	a1, b1 := in.Var("a1", 4), in.Var("b1", 5)
	q1 := in.Var("q1", 6)

	sig := in.Sig([]Type{p1, p2, p3}, nil, nil, false, nil)
	// f.with(a1).with(b1)(q1): withs in application order is [a1-pack, b1-pack].
	withA := in.Sig([]Type{a1}, nil, nil, false, nil)
	withB := in.Sig([]Type{b1}, nil, nil, false, nil)
	args := in.Sig([]Type{q1}, nil, nil, false, nil)

	want := []pair{{p1, b1}, {p2, a1}, {p3, q1}}
	got := collectMatches(sig, args, []*SigTy{withA, withB})
	if diff := cmp.Diff(want, got, tyIdentity); diff != "" {
		t.Fatalf("with-chain pairs mismatch (-want +got):\n%s", diff)
	}
}

func TestMatchesNamedFromWithPacks(t *testing.T) {
	in := NewInterner()
	a1, b1 := in.Var("a1", 1), in.Var("b1", 2)
	sig := in.Sig(nil, []NamedField{{Name: "fill", Ty: LitColor}}, nil, false, nil)

	// f.with(fill: a1).with(fill: b1)(): both packs pair, last applied first.
	withA := in.Sig(nil, []NamedField{{Name: "fill", Ty: a1}}, nil, false, nil)
	withB := in.Sig(nil, []NamedField{{Name: "fill", Ty: b1}}, nil, false, nil)
	args := in.Sig(nil, nil, nil, false, nil)

	want := []pair{{LitColor, b1}, {LitColor, a1}}
	got := collectMatches(sig, args, []*SigTy{withA, withB})
	if diff := cmp.Diff(want, got, tyIdentity); diff != "" {
		t.Fatalf("with-pack named pairs mismatch (-want +got):\n%s", diff)
	}
}

func TestIntersectIndexStrictlyIncreasing(t *testing.T) {
	a := []string{"a", "c", "d", "f"}
	b := []string{"b", "c", "f", "g"}

	var is, js []int
	intersectIndex(a, b, func(i, j int) {
		is = append(is, i)
		js = append(js, j)
	})

	if diff := cmp.Diff([]int{1, 3}, is); diff != "" {
		t.Fatalf("left offsets (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{1, 2}, js); diff != "" {
		t.Fatalf("right offsets (-want +got):\n%s", diff)
	}
	for i := 1; i < len(is); i++ {
		if is[i] <= is[i-1] || js[i] <= js[i-1] {
			t.Fatalf("offsets not strictly increasing: %v %v", is, js)
		}
	}
}
