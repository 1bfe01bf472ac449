// Package defuse carries the name-resolution facts the analyzer consumes:
// stable declaration identities and the map from identifier occurrences to
// the declaration they refer to. The facts are produced by the host's
// def-use pass; this package only defines their shape.
package defuse

import "marq/analyzer-go/pkg/ast"

// DeclID is the stable identity of one declaration. IDs are unique across
// the whole workspace, not just one file.
type DeclID uint64

// Decl describes one declaration site.
type Decl struct {
	ID   DeclID
	Name string
	File ast.FileID
	Span ast.Span
	// Doc holds the documentation comment attached to the declaration.
	Doc string
	// TopLevel marks declarations exported from their file.
	TopLevel bool
}

// Info is the per-workspace declaration table.
type Info struct {
	decls map[DeclID]Decl
	refs  map[ast.Span]DeclID
}

// NewInfo returns an empty declaration table.
func NewInfo() *Info {
	return &Info{
		decls: make(map[DeclID]Decl),
		refs:  make(map[ast.Span]DeclID),
	}
}

// AddDecl registers a declaration and makes its own span resolve to it.
func (in *Info) AddDecl(decl Decl) {
	in.decls[decl.ID] = decl
	if !decl.Span.Detached() {
		in.refs[decl.Span] = decl.ID
	}
}

// AddRef records that the identifier at span refers to the declaration.
func (in *Info) AddRef(span ast.Span, id DeclID) {
	if span.Detached() {
		return
	}
	in.refs[span] = id
}

// Resolve maps an identifier occurrence to its declaration.
func (in *Info) Resolve(span ast.Span) (DeclID, bool) {
	id, ok := in.refs[span]
	return id, ok
}

// DeclOf returns the declaration record for an id.
func (in *Info) DeclOf(id DeclID) (Decl, bool) {
	decl, ok := in.decls[id]
	return decl, ok
}

// TopLevelDecls returns the exported declarations of one file.
func (in *Info) TopLevelDecls(file ast.FileID) []Decl {
	var out []Decl
	for _, decl := range in.decls {
		if decl.File == file && decl.TopLevel {
			out = append(out, decl)
		}
	}
	return out
}
