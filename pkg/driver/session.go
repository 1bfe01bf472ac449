// Package driver runs the analyzer across a workspace: it loads parsed
// sources on demand, checks each file once, memoizes the results, and
// guards against import cycles.
package driver

import (
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"marq/analyzer-go/pkg/ast"
	"marq/analyzer-go/pkg/defuse"
	"marq/analyzer-go/pkg/typechecker"
)

const defaultResultCache = 256

// Source is one parsed file handed over by the host.
type Source struct {
	File ast.FileID
	Root *ast.Node
}

// Loader supplies parsed sources on demand.
type Loader interface {
	Load(file ast.FileID) (Source, error)
}

// Options configures a session.
type Options struct {
	// Defs is the workspace declaration table shared by all files.
	Defs *defuse.Info
	// Library resolves free identifiers; nil means nothing resolves.
	Library typechecker.LibraryScope
	// Logger defaults to a nop logger.
	Logger *zap.Logger
	// CacheSize bounds the per-file result cache; zero means the default.
	CacheSize int
}

// Session checks files across a workspace. Results are cached per file; a
// file referenced while it is itself being checked resolves to no
// information instead of recursing, so import cycles terminate.
//
// A session serializes checking. Finished results are safe to read from any
// goroutine.
type Session struct {
	loader Loader
	defs   *defuse.Info
	lib    typechecker.LibraryScope
	log    *zap.Logger
	in     *typechecker.Interner

	mu       sync.Mutex
	results  *lru.Cache[ast.FileID, *typechecker.Info]
	checking map[ast.FileID]bool
}

// NewSession builds a session over a loader.
func NewSession(loader Loader, opts Options) (*Session, error) {
	if loader == nil {
		return nil, fmt.Errorf("driver: nil loader")
	}
	size := opts.CacheSize
	if size <= 0 {
		size = defaultResultCache
	}
	results, err := lru.New[ast.FileID, *typechecker.Info](size)
	if err != nil {
		return nil, fmt.Errorf("driver: building result cache: %w", err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	defs := opts.Defs
	if defs == nil {
		defs = defuse.NewInfo()
	}
	return &Session{
		loader:   loader,
		defs:     defs,
		lib:      opts.Library,
		log:      logger,
		in:       typechecker.NewInterner(),
		results:  results,
		checking: make(map[ast.FileID]bool),
	}, nil
}

// Interner exposes the session-wide type arena.
func (s *Session) Interner() *typechecker.Interner { return s.in }

// Check returns the file's result, checking it on first request.
func (s *Session) Check(file ast.FileID) (*typechecker.Info, error) {
	s.mu.Lock()
	if info, ok := s.results.Get(file); ok {
		s.mu.Unlock()
		return info, nil
	}
	if s.checking[file] {
		s.mu.Unlock()
		return nil, fmt.Errorf("driver: file %d is already being checked (import cycle)", file)
	}
	s.checking[file] = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.checking, file)
		s.mu.Unlock()
	}()

	src, err := s.loader.Load(file)
	if err != nil {
		return nil, fmt.Errorf("driver: loading file %d: %w", file, err)
	}
	start := time.Now()
	info := typechecker.CheckFile(file, src.Root, typechecker.Config{
		Defs:     s.defs,
		Library:  s.lib,
		Host:     s,
		Logger:   s.log,
		Interner: s.in,
	})
	s.log.Debug("session checked file",
		zap.Uint32("file", uint32(file)),
		zap.Duration("elapsed", time.Since(start)))

	s.mu.Lock()
	s.results.Add(file, info)
	s.mu.Unlock()
	return info, nil
}

// ResultFor implements typechecker.Host. A file mid-check, or one that
// fails to load, resolves to no information.
func (s *Session) ResultFor(file ast.FileID) (*typechecker.Info, bool) {
	s.mu.Lock()
	if info, ok := s.results.Get(file); ok {
		s.mu.Unlock()
		return info, true
	}
	if s.checking[file] {
		s.mu.Unlock()
		return nil, false
	}
	s.mu.Unlock()

	info, err := s.Check(file)
	if err != nil {
		s.log.Debug("session: dependency check failed",
			zap.Uint32("file", uint32(file)), zap.Error(err))
		return nil, false
	}
	return info, true
}

// Invalidate drops a file's cached result, for hosts reacting to edits.
func (s *Session) Invalidate(file ast.FileID) {
	s.mu.Lock()
	s.results.Remove(file)
	s.mu.Unlock()
}
