package typechecker

import (
	"slices"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"

	"marq/analyzer-go/pkg/ast"
	"marq/analyzer-go/pkg/defuse"
)

// Interner is the content-addressed arena behind every composite type.
// Constructing the same shape twice returns the same pointer, which makes
// == structural equality and keeps unions and bound lists cheap to
// deduplicate. One interner serves the whole session; it is safe for
// concurrent use.
type Interner struct {
	mu      sync.Mutex
	buckets map[uint64][]Type
	seq     uint32
}

// NewInterner returns an empty arena.
func NewInterner() *Interner {
	return &Interner{buckets: make(map[uint64][]Type)}
}

// mixHash folds one value into a running hash, splitmix-style.
func mixHash(h, v uint64) uint64 {
	h ^= v + 0x9e3779b97f4a7c15 + (h << 6) + (h >> 2)
	h ^= h >> 30
	h *= 0xbf58476d1ce4e5b9
	return h ^ (h >> 27)
}

func hashString(s string) uint64 {
	return xxhash.Sum64String(s)
}

func hashSpan(h uint64, s ast.Span) uint64 {
	h = mixHash(h, uint64(s.File))
	h = mixHash(h, uint64(s.Start)<<32|uint64(s.End))
	return h
}

func hashTypes(h uint64, ts []Type) uint64 {
	h = mixHash(h, uint64(len(ts)))
	for _, t := range ts {
		h = mixHash(h, t.hashValue())
	}
	return h
}

// canonical returns the arena's copy of a candidate type, inserting it when
// the shape is new. eq must compare the candidate against an existing entry
// of the same variant.
func (in *Interner) canonical(hash uint64, cand Type, eq func(existing Type) bool) Type {
	in.mu.Lock()
	defer in.mu.Unlock()
	for _, existing := range in.buckets[hash] {
		if existing.kind() == cand.kind() && eq(existing) {
			return existing
		}
	}
	in.seq++
	if m, ok := cand.(interface{ stamp(hash uint64, seq uint32) }); ok {
		m.stamp(hash, in.seq)
	}
	in.buckets[hash] = append(in.buckets[hash], cand)
	return cand
}

func (m *meta) stamp(hash uint64, seq uint32) {
	m.hash = hash
	m.seq = seq
}

// Ins interns a value instance with no source provenance.
func (in *Interner) Ins(val Value) *InsTy {
	return in.InsAt(val, ast.Span{})
}

// InsAt interns a value instance recorded at a source span. The span is part
// of the identity: the same literal at two sites yields two instances, so
// bound witnesses keep their provenance.
func (in *Interner) InsAt(val Value, at ast.Span) *InsTy {
	h := mixHash(uint64(kindIns), hashString(val.Repr()))
	h = hashSpan(h, at)
	cand := &InsTy{Val: val, At: at}
	return in.canonical(h, cand, func(existing Type) bool {
		e := existing.(*InsTy)
		return e.Val == val && e.At == at
	}).(*InsTy)
}

// Var interns the type variable for one declaration.
func (in *Interner) Var(name string, decl defuse.DeclID) *VarTy {
	h := mixHash(uint64(kindVar), hashString(name))
	h = mixHash(h, uint64(decl))
	cand := &VarTy{VarName: name, Decl: decl}
	return in.canonical(h, cand, func(existing Type) bool {
		e := existing.(*VarTy)
		return e.VarName == name && e.Decl == decl
	}).(*VarTy)
}

// Param interns a parameter slot. The candidate's attribute fields are taken
// as-is; callers build it literally.
func (in *Interner) Param(p ParamTy) *ParamTy {
	if p.Ty == nil {
		p.Ty = Any
	}
	h := mixHash(uint64(kindParam), hashString(p.ParamName))
	h = mixHash(h, p.Ty.hashValue())
	if p.Default != nil {
		h = mixHash(h, p.Default.hashValue())
	}
	var attrs uint64
	if p.Positional {
		attrs |= 1
	}
	if p.Named {
		attrs |= 2
	}
	if p.Variadic {
		attrs |= 4
	}
	if p.Settable {
		attrs |= 8
	}
	h = mixHash(h, attrs)
	cand := &p
	return in.canonical(h, cand, func(existing Type) bool {
		e := existing.(*ParamTy)
		return e.ParamName == p.ParamName && e.Ty == p.Ty && e.Default == p.Default &&
			e.Positional == p.Positional && e.Named == p.Named &&
			e.Variadic == p.Variadic && e.Settable == p.Settable
	}).(*ParamTy)
}

// Union interns the "or" of members: sorted, deduplicated, flattened one
// level. No members collapses to Any; one member is returned unwrapped.
func (in *Interner) Union(members ...Type) Type {
	flat := make([]Type, 0, len(members))
	for _, m := range members {
		if m == nil {
			continue
		}
		if u, ok := m.(*UnionTy); ok {
			flat = append(flat, u.Members...)
			continue
		}
		flat = append(flat, m)
	}
	sortTypes(flat)
	flat = dedupSorted(flat)
	switch len(flat) {
	case 0:
		return Any
	case 1:
		return flat[0]
	}
	h := hashTypes(uint64(kindUnion), flat)
	cand := &UnionTy{Members: flat}
	return in.canonical(h, cand, func(existing Type) bool {
		return typesEqual(existing.(*UnionTy).Members, flat)
	})
}

// Bounds interns a frozen bound set. Both lists are sorted and deduplicated.
func (in *Interner) Bounds(lower, upper []Type) *BoundsTy {
	lower = normalizedBoundList(lower)
	upper = normalizedBoundList(upper)
	h := hashTypes(uint64(kindLet), lower)
	h = hashTypes(mixHash(h, 0x1f), upper)
	cand := &BoundsTy{Lower: lower, Upper: upper}
	return in.canonical(h, cand, func(existing Type) bool {
		e := existing.(*BoundsTy)
		return typesEqual(e.Lower, lower) && typesEqual(e.Upper, upper)
	}).(*BoundsTy)
}

func normalizedBoundList(ts []Type) []Type {
	out := make([]Type, 0, len(ts))
	for _, t := range ts {
		if t != nil {
			out = append(out, t)
		}
	}
	sortTypes(out)
	return dedupSorted(out)
}

// RecordField is one input field for Record.
type RecordField struct {
	Name string
	Ty   Type
	Span ast.Span
}

// Record interns a record shape. Fields are sorted by name; on a duplicate
// name the later field wins, matching source evaluation order.
func (in *Interner) Record(fields []RecordField) *RecordTy {
	byName := make(map[string]RecordField, len(fields))
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		if _, seen := byName[f.Name]; !seen {
			names = append(names, f.Name)
		}
		if f.Ty == nil {
			f.Ty = Any
		}
		byName[f.Name] = f
	}
	sortStrings(names)
	types := make([]Type, len(names))
	spans := make([]ast.Span, len(names))
	for i, name := range names {
		types[i] = byName[name].Ty
		spans[i] = byName[name].Span
	}
	h := uint64(kindRecord)
	for i := range names {
		h = mixHash(h, hashString(names[i]))
		h = mixHash(h, types[i].hashValue())
		h = hashSpan(h, spans[i])
	}
	cand := &RecordTy{FieldNames: names, FieldTypes: types, FieldSpans: spans}
	return in.canonical(h, cand, func(existing Type) bool {
		e := existing.(*RecordTy)
		return stringsEqual(e.FieldNames, names) && typesEqual(e.FieldTypes, types) &&
			spansEqual(e.FieldSpans, spans)
	}).(*RecordTy)
}

// Tuple interns a fixed-length heterogeneous array.
func (in *Interner) Tuple(elems []Type) *TupleTy {
	es := make([]Type, len(elems))
	for i, e := range elems {
		if e == nil {
			e = Any
		}
		es[i] = e
	}
	h := hashTypes(uint64(kindTuple), es)
	cand := &TupleTy{Elems: es}
	return in.canonical(h, cand, func(existing Type) bool {
		return typesEqual(existing.(*TupleTy).Elems, es)
	}).(*TupleTy)
}

// NamedField is one named slot input for Sig.
type NamedField struct {
	Name string
	Ty   Type
}

// Sig interns a signature shape. Positional slots keep their order; named
// slots are sorted into the field index; rest, when present, is stored last
// and flips SpreadRight. spreadLeft marks signatures whose positional prefix
// is already consumed by an unknown spread.
func (in *Interner) Sig(pos []Type, named []NamedField, rest Type, spreadLeft bool, ret Type) *SigTy {
	sortNamedFields(named)
	inputs := make([]Type, 0, len(pos)+len(named)+1)
	for _, p := range pos {
		if p == nil {
			p = Any
		}
		inputs = append(inputs, p)
	}
	nameStart := len(inputs)
	names := make([]string, 0, len(named))
	for _, f := range named {
		ty := f.Ty
		if ty == nil {
			ty = Any
		}
		names = append(names, f.Name)
		inputs = append(inputs, ty)
	}
	spreadRight := rest != nil
	if spreadRight {
		inputs = append(inputs, rest)
	}
	h := hashTypes(uint64(kindFunc)|0x100, inputs)
	for _, n := range names {
		h = mixHash(h, hashString(n))
	}
	h = mixHash(h, uint64(nameStart))
	var spreads uint64
	if spreadLeft {
		spreads |= 1
	}
	if spreadRight {
		spreads |= 2
	}
	h = mixHash(h, spreads)
	if ret != nil {
		h = mixHash(h, ret.hashValue())
	}
	cand := &SigTy{
		Inputs:      inputs,
		Names:       names,
		NameStart:   nameStart,
		SpreadLeft:  spreadLeft,
		SpreadRight: spreadRight,
		Ret:         ret,
	}
	return in.canonical(h, cand, func(existing Type) bool {
		e := existing.(*SigTy)
		return typesEqual(e.Inputs, inputs) && stringsEqual(e.Names, names) &&
			e.NameStart == nameStart && e.SpreadLeft == spreadLeft &&
			e.SpreadRight == spreadRight && e.Ret == ret
	}).(*SigTy)
}

func sortStrings(ss []string) {
	slices.Sort(ss)
}

func sortNamedFields(fs []NamedField) {
	slices.SortStableFunc(fs, func(a, b NamedField) int {
		return strings.Compare(a.Name, b.Name)
	})
}

func typesEqual(a, b []Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func stringsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func spansEqual(a, b []ast.Span) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
