// Package ast is the canonical AST: the typed vocabulary shared by the
// import bridge, the effect synthesizer and constraint generation. Every
// node owns its children outright; type variables are referenced by id and
// belong to the VarStore of the enclosing module.
package ast

import (
	"github.com/funvibe/fxfront/internal/region"
	"github.com/funvibe/fxfront/internal/symbols"
	"github.com/funvibe/fxfront/internal/typesystem"
)

// Expr is a canonical expression.
type Expr interface {
	exprNode()
}

// Pattern is a canonical pattern.
type Pattern interface {
	patternNode()
}

// Declaration is a top-level group of definitions.
type Declaration interface {
	declarationNode()
	// Defs returns the definitions of the group in order.
	Defs() []*Def
}

// Def binds a pattern to an expression, optionally annotated.
type Def struct {
	LocPattern  region.Loc[Pattern]
	LocExpr     region.Loc[Expr]
	ExprVar     typesystem.Variable
	PatternVars map[symbols.Symbol]typesystem.Variable
	Annotation  *Annotation
}

// Symbol returns the bound symbol when the def binds a plain identifier.
func (d *Def) Symbol() (symbols.Symbol, bool) {
	if id, ok := d.LocPattern.Value.(*Identifier); ok {
		return id.Symbol, true
	}
	return symbols.Symbol{}, false
}

// Declare is a single non-recursive definition.
type Declare struct {
	Def *Def
}

// DeclareRec is a group of (mutually) recursive definitions.
type DeclareRec struct {
	Group []*Def
}

func (*Declare) declarationNode()    {}
func (*DeclareRec) declarationNode() {}

func (d *Declare) Defs() []*Def    { return []*Def{d.Def} }
func (d *DeclareRec) Defs() []*Def { return d.Group }

// NamedVariable is a type variable introduced by name in an annotation.
type NamedVariable struct {
	Name string
	Var  typesystem.Variable
}

// IntroducedVariables lists the variables an annotation brings into scope.
type IntroducedVariables struct {
	Named     []NamedVariable
	Wildcards []typesystem.Variable
}

// InsertNamed records a named variable. Re-inserting a name keeps the first.
func (iv *IntroducedVariables) InsertNamed(name string, v typesystem.Variable) {
	for _, nv := range iv.Named {
		if nv.Name == name {
			return
		}
	}
	iv.Named = append(iv.Named, NamedVariable{Name: name, Var: v})
}

func (iv *IntroducedVariables) InsertWildcard(v typesystem.Variable) {
	iv.Wildcards = append(iv.Wildcards, v)
}

// NameOf returns the user-facing name of v, if it was introduced by name.
func (iv *IntroducedVariables) NameOf(v typesystem.Variable) (string, bool) {
	for _, nv := range iv.Named {
		if nv.Var == v {
			return nv.Name, true
		}
	}
	return "", false
}

// Annotation is a type signature attached to a definition.
type Annotation struct {
	Signature           typesystem.Type
	IntroducedVariables IntroducedVariables
	Aliases             map[symbols.Symbol]typesystem.Alias
	Region              region.Region
}
