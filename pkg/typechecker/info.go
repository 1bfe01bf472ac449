package typechecker

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"marq/analyzer-go/pkg/ast"
	"marq/analyzer-go/pkg/defuse"
)

const canoCacheSize = 1024

// Info is the checking result for one file: the bound records of every
// variable the file declares, the types witnessed at every syntax span, the
// exported top-level types, and documentation gathered along the way.
// Checking fills it in; queries read it afterwards.
type Info struct {
	File ast.FileID

	interner *Interner

	// Vars holds the bound record of every declaration checked so far.
	Vars map[defuse.DeclID]*VarBounds
	// Exports maps top-level binding names to their types.
	Exports map[string]Type
	// Docs keeps the documentation string attached to each declaration.
	Docs map[defuse.DeclID]string

	witnesses map[ast.Span][]spanWitness

	locals map[defuse.DeclID]Type
	undo   []localUndo

	canoMu sync.Mutex
	cano   *lru.Cache[canoKey, Type]
}

type localUndo struct {
	decl defuse.DeclID
	prev Type
	had  bool
}

// spanWitness is one type observed at a span, tagged with the direction it
// flowed: upper means the span's expression was required to be the type,
// lower means it was seen producing it.
type spanWitness struct {
	Ty    Type
	Upper bool
}

type canoKey struct {
	ty        Type
	principal bool
}

// NewInfo returns an empty result table sharing the session's interner.
func NewInfo(file ast.FileID, in *Interner) *Info {
	cache, _ := lru.New[canoKey, Type](canoCacheSize)
	return &Info{
		File:      file,
		interner:  in,
		Vars:      make(map[defuse.DeclID]*VarBounds),
		Exports:   make(map[string]Type),
		Docs:      make(map[defuse.DeclID]string),
		witnesses: make(map[ast.Span][]spanWitness),
		locals:    make(map[defuse.DeclID]Type),
		cano:      cache,
	}
}

// Snapshot marks a point in the local-binding journal.
type Snapshot int

// StartScope opens a lexical scope and returns the rollback point.
func (info *Info) StartScope() Snapshot {
	return Snapshot(len(info.undo))
}

// EndScope rolls local bindings back to the snapshot.
func (info *Info) EndScope(s Snapshot) {
	for i := len(info.undo) - 1; i >= int(s); i-- {
		u := info.undo[i]
		if u.had {
			info.locals[u.decl] = u.prev
		} else {
			delete(info.locals, u.decl)
		}
	}
	info.undo = info.undo[:s]
}

// BindLocal records a scope-local binding; EndScope undoes it.
func (info *Info) BindLocal(decl defuse.DeclID, ty Type) {
	prev, had := info.locals[decl]
	info.undo = append(info.undo, localUndo{decl: decl, prev: prev, had: had})
	info.locals[decl] = ty
}

// LocalOf resolves a declaration through the innermost live scope.
func (info *Info) LocalOf(decl defuse.DeclID) (Type, bool) {
	t, ok := info.locals[decl]
	return t, ok
}

// Interner exposes the arena the table's types live in.
func (info *Info) Interner() *Interner { return info.interner }

// BoundsOf resolves a variable to its bound record.
func (info *Info) BoundsOf(v *VarTy) (*VarBounds, bool) {
	vb, ok := info.Vars[v.Decl]
	return vb, ok
}

// VarOf returns the bound record for a declaration, creating the variable
// and an empty record on first sight.
func (info *Info) VarOf(name string, decl defuse.DeclID) *VarBounds {
	if vb, ok := info.Vars[decl]; ok {
		return vb
	}
	vb := NewVarBounds(info.interner.Var(name, decl))
	info.Vars[decl] = vb
	return vb
}

// WitnessAtLeast records that the expression at span produced ty.
func (info *Info) WitnessAtLeast(span ast.Span, ty Type) {
	info.witness(span, ty, false)
}

// WitnessAtMost records that the expression at span was required to be ty.
func (info *Info) WitnessAtMost(span ast.Span, ty Type) {
	info.witness(span, ty, true)
}

func (info *Info) witness(span ast.Span, ty Type, upper bool) {
	if span.Detached() || ty == nil {
		return
	}
	w := spanWitness{Ty: ty, Upper: upper}
	for _, seen := range info.witnesses[span] {
		if seen == w {
			return
		}
	}
	info.witnesses[span] = append(info.witnesses[span], w)
}

// TypeOfSpan returns the union of everything witnessed at a span.
func (info *Info) TypeOfSpan(span ast.Span) (Type, bool) {
	ws := info.witnesses[span]
	if len(ws) == 0 {
		return nil, false
	}
	ts := make([]Type, len(ws))
	for i, w := range ws {
		ts[i] = w.Ty
	}
	return info.interner.Union(ts...), true
}

// TypeOfDecl returns the declared variable's current type: its frozen bound
// snapshot when bounds exist, the bare variable otherwise.
func (info *Info) TypeOfDecl(decl defuse.DeclID) (Type, bool) {
	vb, ok := info.Vars[decl]
	if !ok {
		return nil, false
	}
	if len(vb.Lower) == 0 && len(vb.Upper) == 0 {
		return vb.Var, true
	}
	return vb.Snapshot(info.interner), true
}

// ExportedType resolves one exported name.
func (info *Info) ExportedType(name string) (Type, bool) {
	t, ok := info.Exports[name]
	return t, ok
}

// Canonicalize rewrites a type into its canonical display or comparison
// form, substituting variables by their bounds. With principal set, bound
// sides that would over- or under-approximate the variable are dropped so
// the result is the principal type; without it both sides are kept.
// Results are cached per (type, principal) pair.
func (info *Info) Canonicalize(ty Type, principal bool) Type {
	if ty == nil {
		return Any
	}
	key := canoKey{ty: ty, principal: principal}
	info.canoMu.Lock()
	if cached, ok := info.cano.Get(key); ok {
		info.canoMu.Unlock()
		return cached
	}
	info.canoMu.Unlock()

	out := canonicalize(info, ty, principal)

	info.canoMu.Lock()
	info.cano.Add(key, out)
	info.canoMu.Unlock()
	return out
}
