package typechecker

import (
	"time"

	"go.uber.org/zap"

	"marq/analyzer-go/pkg/ast"
	"marq/analyzer-go/pkg/defuse"
)

// Mode is the interpretation mode a node is checked under. The mode decides
// which library scope resolves free identifiers and how sequences join.
type Mode uint8

const (
	ModeMarkup Mode = iota
	ModeCode
	ModeMath
)

func (m Mode) String() string {
	switch m {
	case ModeMarkup:
		return "markup"
	case ModeCode:
		return "code"
	case ModeMath:
		return "math"
	}
	return "unknown"
}

// LibraryScope resolves free identifiers against the global library.
type LibraryScope interface {
	Lookup(name string, mode Mode) (Value, bool)
}

// Host resolves cross-file references. ResultFor returns the finished or
// in-progress check result of another file; a false return means no
// information, which the checker treats as inconclusive.
type Host interface {
	ResultFor(file ast.FileID) (*Info, bool)
}

// Config carries everything a file check needs besides the tree itself.
type Config struct {
	// Defs is the workspace declaration table.
	Defs *defuse.Info
	// Library resolves free identifiers; nil means nothing resolves.
	Library LibraryScope
	// Host resolves imports across files; nil disables cross-file seeding.
	Host Host
	// Logger defaults to a nop logger.
	Logger *zap.Logger
	// Interner defaults to a fresh arena; share one across files so types
	// from different files compare by identity.
	Interner *Interner
}

// Checker walks one file's tree and accumulates the Info result. It is
// single-use and not safe for concurrent use; run one Checker per file.
type Checker struct {
	in   *Interner
	info *Info
	defs *defuse.Info
	lib  LibraryScope
	host Host
	log  *zap.Logger

	modes []Mode
	rets  [][]Type
}

// CheckFile checks one file and returns its result table. The walk never
// fails: missing information yields Any, not an error.
func CheckFile(file ast.FileID, root *ast.Node, cfg Config) *Info {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Interner == nil {
		cfg.Interner = NewInterner()
	}
	if cfg.Defs == nil {
		cfg.Defs = defuse.NewInfo()
	}
	c := &Checker{
		in:    cfg.Interner,
		info:  NewInfo(file, cfg.Interner),
		defs:  cfg.Defs,
		lib:   cfg.Library,
		host:  cfg.Host,
		log:   cfg.Logger,
		modes: []Mode{ModeMarkup},
	}
	start := time.Now()
	c.check(root)
	c.collectExports()
	c.log.Debug("checked file",
		zap.Uint32("file", uint32(file)),
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("vars", len(c.info.Vars)))
	return c.info
}

// Result exposes the table mid-check, for hosts that hand out in-progress
// results to break import cycles.
func (c *Checker) Result() *Info { return c.info }

func (c *Checker) mode() Mode {
	return c.modes[len(c.modes)-1]
}

func (c *Checker) pushMode(m Mode) {
	c.modes = append(c.modes, m)
}

func (c *Checker) popMode() {
	c.modes = c.modes[:len(c.modes)-1]
}

// varOf returns the type variable of a declaration, creating and seeding
// its bound record on first sight. Scope-local overrides win.
func (c *Checker) varOf(id defuse.DeclID) Type {
	if t, ok := c.info.LocalOf(id); ok {
		return t
	}
	if vb, ok := c.info.Vars[id]; ok {
		return vb.Var
	}
	decl, ok := c.defs.DeclOf(id)
	if !ok {
		return Any
	}
	vb := c.info.VarOf(decl.Name, id)
	if decl.Doc != "" {
		c.info.Docs[id] = decl.Doc
	}
	if decl.File != c.info.File {
		c.seedExternal(vb, decl)
	}
	return vb.Var
}

// seedExternal initializes a variable for a declaration that lives in
// another file from that file's result: variables seed as lower bounds,
// frozen bound sets copy over, anything concrete becomes an initial upper
// bound.
func (c *Checker) seedExternal(vb *VarBounds, decl defuse.Decl) {
	if c.host == nil {
		return
	}
	ext, ok := c.host.ResultFor(decl.File)
	if !ok {
		c.log.Debug("external file unavailable",
			zap.Uint32("file", uint32(decl.File)), zap.String("name", decl.Name))
		return
	}
	t, ok := ext.ExportedType(decl.Name)
	if !ok {
		if t, ok = ext.TypeOfDecl(decl.ID); !ok {
			return
		}
	}
	switch x := t.(type) {
	case *VarTy:
		vb.WitnessLower(c.in, x)
	case *BoundsTy:
		for _, lb := range x.Lower {
			vb.WitnessLower(c.in, lb)
		}
		for _, ub := range x.Upper {
			vb.WitnessUpper(c.in, ub)
		}
	default:
		vb.WitnessUpper(c.in, t)
	}
}

// collectExports snapshots the top-level declarations into the export map.
func (c *Checker) collectExports() {
	for _, decl := range c.defs.TopLevelDecls(c.info.File) {
		if t, ok := c.info.TypeOfDecl(decl.ID); ok {
			c.info.Exports[decl.Name] = t
		}
	}
}

// pushReturns opens a return-type collector for one closure body.
func (c *Checker) pushReturns() {
	c.rets = append(c.rets, nil)
}

// popReturns closes the innermost collector.
func (c *Checker) popReturns() []Type {
	last := c.rets[len(c.rets)-1]
	c.rets = c.rets[:len(c.rets)-1]
	return last
}

// recordReturn files a returned value with the innermost collector.
func (c *Checker) recordReturn(t Type) {
	if len(c.rets) == 0 {
		return
	}
	c.rets[len(c.rets)-1] = append(c.rets[len(c.rets)-1], t)
}

// freezeParams weakens every variable bound by a closure's parameter slots,
// nested destructuring leaves included. Once the signature is packaged the
// parameters may be applied at any time, so their records accumulate shapes
// from then on, not literals.
func (c *Checker) freezeParams(pos []Type, named []NamedField, rest Type) {
	seen := make(map[varPol]bool)
	freeze := func(v *VarTy, _ bool) {
		if vb, ok := c.info.Vars[v.Decl]; ok {
			vb.Weaken(c.in)
		}
	}
	for _, p := range pos {
		walkVars(p, true, nil, seen, freeze)
	}
	for _, f := range named {
		walkVars(f.Ty, true, nil, seen, freeze)
	}
	if rest != nil {
		walkVars(rest, true, nil, seen, freeze)
	}
}
