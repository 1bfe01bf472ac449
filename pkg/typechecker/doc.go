// Package typechecker infers structural types for Marq source trees.
//
// The engine is the semantic half of a language server, not a compiler
// front end: it never rejects a program. Checking a file walks its syntax
// tree once, assigns every expression a type from a hash-consed structural
// model, and accumulates directional bounds on one type variable per
// declaration. Whatever cannot be decided stays Any.
//
// The resulting Info answers the queries editors need: the type witnessed
// at a span, the type of a declaration, a file's exports, and canonical,
// human-readable renderings of all of these. Canonicalization substitutes
// variables by their bounds with polarity tracking, so a principal type can
// be extracted from the bound graph without running a solver.
//
// Inputs come from the host: a pkg/ast tree, a pkg/defuse declaration
// table, and optionally a pkg/scope library plus a Host that resolves
// cross-file imports. pkg/driver bundles the latter into a session.
package typechecker
