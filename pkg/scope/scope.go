// Package scope provides the immutable library scope the checker resolves
// free identifiers against. The default scope is a YAML snapshot embedded
// in the binary; hosts with a different library ship their own bytes.
package scope

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"marq/analyzer-go/pkg/typechecker"
)

//go:embed builtin.yaml
var builtinYAML []byte

// Environment resolves library names per interpretation mode. Markup and
// code share one namespace; math has its own, falling back to the shared
// one.
type Environment struct {
	code map[string]typechecker.Value
	math map[string]typechecker.Value
}

var _ typechecker.LibraryScope = (*Environment)(nil)

type document struct {
	Entries []entrySpec `yaml:"entries"`
}

type entrySpec struct {
	Name   string      `yaml:"name"`
	Kind   string      `yaml:"kind"`
	Type   string      `yaml:"type,omitempty"`
	Params []paramSpec `yaml:"params,omitempty"`
	Ret    string      `yaml:"ret,omitempty"`
	Math   bool        `yaml:"math,omitempty"`
}

type paramSpec struct {
	Name       string `yaml:"name"`
	Type       string `yaml:"type,omitempty"`
	Positional bool   `yaml:"positional,omitempty"`
	Named      bool   `yaml:"named,omitempty"`
	Variadic   bool   `yaml:"variadic,omitempty"`
	Settable   bool   `yaml:"settable,omitempty"`
}

var (
	defaultOnce sync.Once
	defaultEnv  *Environment
	defaultErr  error
)

// Default returns the embedded library scope, parsed once.
func Default(in *typechecker.Interner) (*Environment, error) {
	defaultOnce.Do(func() {
		defaultEnv, defaultErr = Load(builtinYAML, in)
	})
	return defaultEnv, defaultErr
}

// Load parses a scope snapshot. Signatures are interned through in so their
// types compare by identity with the checker's.
func Load(data []byte, in *typechecker.Interner) (*Environment, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("scope: parsing snapshot: %w", err)
	}
	env := &Environment{
		code: make(map[string]typechecker.Value),
		math: make(map[string]typechecker.Value),
	}
	for _, e := range doc.Entries {
		val, err := buildEntry(e, in)
		if err != nil {
			return nil, err
		}
		if e.Math {
			env.math[e.Name] = val
		} else {
			env.code[e.Name] = val
		}
	}
	return env, nil
}

// Lookup resolves a free identifier under a mode.
func (env *Environment) Lookup(name string, mode typechecker.Mode) (typechecker.Value, bool) {
	if mode == typechecker.ModeMath {
		if v, ok := env.math[name]; ok {
			return v, true
		}
	}
	v, ok := env.code[name]
	return v, ok
}

func buildEntry(e entrySpec, in *typechecker.Interner) (typechecker.Value, error) {
	switch e.Kind {
	case "func":
		sig, err := buildSig(e, in)
		if err != nil {
			return nil, err
		}
		return typechecker.FuncValue{FuncName: e.Name, Sig: sig}, nil
	case "element":
		sig, err := buildSig(e, in)
		if err != nil {
			return nil, err
		}
		return typechecker.ElementValue{ElemName: e.Name, Sig: sig}, nil
	case "const":
		tag, ok := tagByName(e.Type)
		if !ok {
			return nil, fmt.Errorf("scope: const %q has unknown type %q", e.Name, e.Type)
		}
		return typechecker.TagValue{ConstName: e.Name, Tag: tag}, nil
	case "type":
		return typechecker.TypeValue{TypeName: e.Name}, nil
	}
	return nil, fmt.Errorf("scope: entry %q has unknown kind %q", e.Name, e.Kind)
}

func buildSig(e entrySpec, in *typechecker.Interner) (*typechecker.SigTy, error) {
	var pos []typechecker.Type
	var named []typechecker.NamedField
	var rest typechecker.Type
	for _, p := range e.Params {
		ty, ok := typeByName(p.Type)
		if !ok {
			return nil, fmt.Errorf("scope: %s: param %q has unknown type %q", e.Name, p.Name, p.Type)
		}
		switch {
		case p.Variadic:
			rest = ty
		case p.Named || p.Settable:
			param := in.Param(typechecker.ParamTy{
				ParamName: p.Name,
				Ty:        ty,
				Named:     true,
				Settable:  p.Settable,
			})
			named = append(named, typechecker.NamedField{Name: p.Name, Ty: param})
		default:
			pos = append(pos, ty)
		}
	}
	var ret typechecker.Type
	if e.Ret != "" {
		ty, ok := typeByName(e.Ret)
		if !ok {
			return nil, fmt.Errorf("scope: %s: unknown return type %q", e.Name, e.Ret)
		}
		ret = ty
	}
	return in.Sig(pos, named, rest, false, ret), nil
}

var namedTags = map[string]typechecker.Lit{
	"arguments": typechecker.LitArgs,
	"color":     typechecker.LitColor,
	"length":    typechecker.LitLength,
	"text.size": typechecker.LitTextSize,
	"text.font": typechecker.LitTextFont,
	"direction": typechecker.LitDir,
	"label":     typechecker.LitLabel,
	"int":       typechecker.LitInt,
	"float":     typechecker.LitFloat,
	"str":       typechecker.LitStr,
	"element":   typechecker.LitElement,
	"type":      typechecker.LitType,
	"stroke":    typechecker.LitStroke,
	"margin":    typechecker.LitMargin,
	"inset":     typechecker.LitInset,
	"outset":    typechecker.LitOutset,
	"radius":    typechecker.LitRadius,
}

func tagByName(name string) (typechecker.Lit, bool) {
	tag, ok := namedTags[name]
	return tag, ok
}

func typeByName(name string) (typechecker.Type, bool) {
	switch name {
	case "", "any":
		return typechecker.Any, true
	case "none":
		return typechecker.None, true
	case "auto":
		return typechecker.Auto, true
	case "content":
		return typechecker.Content, true
	case "bool":
		return typechecker.BoolUnknown, true
	case "array":
		return typechecker.ArrayTy{Elem: typechecker.Any}, true
	case "array<int>":
		return typechecker.ArrayTy{Elem: typechecker.LitInt}, true
	case "array<str>":
		return typechecker.ArrayTy{Elem: typechecker.LitStr}, true
	}
	if tag, ok := tagByName(name); ok {
		return tag, true
	}
	return nil, false
}
