package typechecker

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"marq/analyzer-go/pkg/ast"
)

// tyIdentity compares interned types by canonical identity.
var tyIdentity = cmp.Comparer(func(a, b Type) bool { return a == b })

func span(start, end uint32) ast.Span {
	return ast.Span{File: 1, Start: start, End: end}
}

func TestInternIdentity(t *testing.T) {
	in := NewInterner()

	a := in.InsAt(IntValue{Val: 42}, span(0, 2))
	b := in.InsAt(IntValue{Val: 42}, span(0, 2))
	if a != b {
		t.Fatalf("same value instance interned twice: %p vs %p", a, b)
	}
	c := in.InsAt(IntValue{Val: 42}, span(5, 7))
	if a == c {
		t.Fatalf("instances at different spans must be distinct")
	}

	v1 := in.Var("x", 1)
	v2 := in.Var("x", 1)
	if v1 != v2 {
		t.Fatalf("variable interned twice: %p vs %p", v1, v2)
	}
	if in.Var("x", 2) == v1 {
		t.Fatalf("distinct declarations must give distinct variables")
	}

	t1 := in.Tuple([]Type{LitInt, LitStr})
	t2 := in.Tuple([]Type{LitInt, LitStr})
	if t1 != t2 {
		t.Fatalf("equal tuples interned twice")
	}
}

func TestUnionNormalizes(t *testing.T) {
	in := NewInterner()
	x := in.Var("x", 1)

	if got := in.Union(); got != Type(Any) {
		t.Fatalf("empty union = %v, want any", got)
	}
	if got := in.Union(LitInt); got != Type(LitInt) {
		t.Fatalf("singleton union = %v, want the member", got)
	}
	if got := in.Union(LitInt, LitInt, LitInt); got != Type(LitInt) {
		t.Fatalf("duplicate members must collapse, got %v", got)
	}

	u1 := in.Union(LitStr, x, LitInt)
	u2 := in.Union(x, LitInt, LitStr)
	if u1 != u2 {
		t.Fatalf("member order changed the union identity")
	}

	// Nested unions flatten.
	u3 := in.Union(LitStr, in.Union(x, LitInt))
	if u3 != u1 {
		t.Fatalf("nested union did not flatten: %v vs %v", u3, u1)
	}

	u := u1.(*UnionTy)
	for i := 1; i < len(u.Members); i++ {
		if compareTypes(u.Members[i-1], u.Members[i]) >= 0 {
			t.Fatalf("members not strictly ordered at %d: %v", i, u.Members)
		}
	}
}

func TestRecordSortedIndex(t *testing.T) {
	in := NewInterner()
	rec := in.Record([]RecordField{
		{Name: "b", Ty: LitInt, Span: span(4, 5)},
		{Name: "a", Ty: LitStr, Span: span(0, 1)},
		{Name: "b", Ty: LitFloat, Span: span(8, 9)},
	})

	if diff := cmp.Diff([]string{"a", "b"}, rec.FieldNames); diff != "" {
		t.Fatalf("field index mismatch (-want +got):\n%s", diff)
	}
	// Later duplicate wins.
	got, ok := rec.FieldType("b")
	if !ok || got != Type(LitFloat) {
		t.Fatalf("FieldType(b) = %v, %v; want float", got, ok)
	}
	if _, ok := rec.FieldType("missing"); ok {
		t.Fatalf("lookup of a missing field succeeded")
	}
	if s, ok := rec.FieldSpan("b"); !ok || s != span(8, 9) {
		t.Fatalf("FieldSpan(b) = %v, %v", s, ok)
	}
}

func TestSigLayout(t *testing.T) {
	in := NewInterner()
	rest := ArrayTy{Elem: LitInt}
	sig := in.Sig(
		[]Type{LitStr, LitInt},
		[]NamedField{{Name: "z", Ty: LitFloat}, {Name: "a", Ty: BoolUnknown}},
		rest, false, Content,
	)

	if sig.NameStart != 2 {
		t.Fatalf("NameStart = %d, want 2", sig.NameStart)
	}
	if diff := cmp.Diff([]string{"a", "z"}, sig.Names); diff != "" {
		t.Fatalf("named index not sorted (-want +got):\n%s", diff)
	}
	if got, ok := sig.NamedType("z"); !ok || got != Type(LitFloat) {
		t.Fatalf("NamedType(z) = %v, %v", got, ok)
	}
	if got, ok := sig.Rest(); !ok || got != Type(rest) {
		t.Fatalf("Rest() = %v, %v", got, ok)
	}
	if got, ok := sig.Pos(1); !ok || got != Type(LitInt) {
		t.Fatalf("Pos(1) = %v, %v", got, ok)
	}
	if _, ok := sig.Pos(2); ok {
		t.Fatalf("Pos(2) must miss: index 2 is named storage")
	}
	if len(sig.Inputs) != 5 {
		t.Fatalf("inputs = %d slots, want 5 (2 pos + 2 named + rest)", len(sig.Inputs))
	}
}
