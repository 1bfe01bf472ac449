package driver

import (
	"fmt"
	"testing"

	"marq/analyzer-go/pkg/ast"
	"marq/analyzer-go/pkg/defuse"
)

type mapLoader struct {
	sources map[ast.FileID]Source
	loads   map[ast.FileID]int
}

func (l *mapLoader) Load(file ast.FileID) (Source, error) {
	if l.loads == nil {
		l.loads = make(map[ast.FileID]int)
	}
	l.loads[file]++
	src, ok := l.sources[file]
	if !ok {
		return Source{}, fmt.Errorf("no such file %d", file)
	}
	return src, nil
}

func span(file ast.FileID, start, end uint32) ast.Span {
	return ast.Span{File: file, Start: start, End: end}
}

// letFile builds `let <name> = <int>` as a one-statement code file.
func letFile(file ast.FileID, name string, val string, declSpan ast.Span) Source {
	ident := ast.Leaf(ast.KindIdent, declSpan, name)
	lit := ast.Leaf(ast.KindInt, span(file, 10, 11), val)
	let := ast.New(ast.KindLetBinding, span(file, 0, 11), ident, lit)
	return Source{File: file, Root: ast.New(ast.KindCode, span(file, 0, 11), let)}
}

func TestSessionMemoizesResults(t *testing.T) {
	defs := defuse.NewInfo()
	defs.AddDecl(defuse.Decl{ID: 1, Name: "x", File: 1, Span: span(1, 4, 5), TopLevel: true})

	loader := &mapLoader{sources: map[ast.FileID]Source{
		1: letFile(1, "x", "1", span(1, 4, 5)),
	}}
	s, err := NewSession(loader, Options{Defs: defs})
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}

	first, err := s.Check(1)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	second, err := s.Check(1)
	if err != nil {
		t.Fatalf("Check (cached): %v", err)
	}
	if first != second {
		t.Fatalf("result not memoized")
	}
	if loader.loads[1] != 1 {
		t.Fatalf("file loaded %d times, want 1", loader.loads[1])
	}

	s.Invalidate(1)
	if _, err := s.Check(1); err != nil {
		t.Fatalf("Check after invalidate: %v", err)
	}
	if loader.loads[1] != 2 {
		t.Fatalf("invalidate did not force a reload")
	}
}

func TestSessionSeedsImportsAcrossFiles(t *testing.T) {
	// File 2 exports y; file 1 references it.
	defs := defuse.NewInfo()
	defs.AddDecl(defuse.Decl{ID: 1, Name: "y", File: 2, Span: span(2, 4, 5), TopLevel: true})
	defs.AddRef(span(1, 0, 1), 1)

	use := ast.Leaf(ast.KindIdent, span(1, 0, 1), "y")
	fileOne := Source{File: 1, Root: ast.New(ast.KindCode, span(1, 0, 1), use)}

	loader := &mapLoader{sources: map[ast.FileID]Source{
		1: fileOne,
		2: letFile(2, "y", "7", span(2, 4, 5)),
	}}
	s, err := NewSession(loader, Options{Defs: defs})
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}

	info, err := s.Check(1)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	vb, ok := info.Vars[1]
	if !ok {
		t.Fatalf("imported declaration has no record in file 1")
	}
	if len(vb.Lower)+len(vb.Upper) == 0 {
		t.Fatalf("imported declaration not seeded from file 2")
	}
	if loader.loads[2] != 1 {
		t.Fatalf("dependency loaded %d times, want 1", loader.loads[2])
	}
}

func TestSessionBreaksImportCycles(t *testing.T) {
	// Two files referencing each other's exports.
	defs := defuse.NewInfo()
	defs.AddDecl(defuse.Decl{ID: 1, Name: "a", File: 1, Span: span(1, 4, 5), TopLevel: true})
	defs.AddDecl(defuse.Decl{ID: 2, Name: "b", File: 2, Span: span(2, 4, 5), TopLevel: true})

	// File 1: let a = 1; b
	declA := ast.Leaf(ast.KindIdent, span(1, 4, 5), "a")
	letA := ast.New(ast.KindLetBinding, span(1, 0, 9), declA, ast.Leaf(ast.KindInt, span(1, 8, 9), "1"))
	useB := ast.Leaf(ast.KindIdent, span(1, 11, 12), "b")
	defs.AddRef(span(1, 11, 12), 2)
	fileOne := Source{File: 1, Root: ast.New(ast.KindCode, span(1, 0, 12), letA, useB)}

	// File 2: let b = 2; a
	declB := ast.Leaf(ast.KindIdent, span(2, 4, 5), "b")
	letB := ast.New(ast.KindLetBinding, span(2, 0, 9), declB, ast.Leaf(ast.KindInt, span(2, 8, 9), "2"))
	useA := ast.Leaf(ast.KindIdent, span(2, 11, 12), "a")
	defs.AddRef(span(2, 11, 12), 1)
	fileTwo := Source{File: 2, Root: ast.New(ast.KindCode, span(2, 0, 12), letB, useA)}

	loader := &mapLoader{sources: map[ast.FileID]Source{1: fileOne, 2: fileTwo}}
	s, err := NewSession(loader, Options{Defs: defs})
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}

	// Must terminate; the back-reference into the mid-check file resolves
	// to no information.
	info, err := s.Check(1)
	if err != nil {
		t.Fatalf("Check over a cycle: %v", err)
	}
	if _, ok := info.Vars[1]; !ok {
		t.Fatalf("file 1's own declaration missing")
	}
	if _, err := s.Check(2); err != nil {
		t.Fatalf("Check of the partner file: %v", err)
	}
}

func TestSessionRejectsNilLoader(t *testing.T) {
	if _, err := NewSession(nil, Options{}); err == nil {
		t.Fatalf("nil loader accepted")
	}
}
