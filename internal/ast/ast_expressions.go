package ast

import (
	"github.com/funvibe/fxfront/internal/region"
	"github.com/funvibe/fxfront/internal/symbols"
	"github.com/funvibe/fxfront/internal/typesystem"
)

// Var is a reference to a symbol.
type Var struct {
	Symbol symbols.Symbol
}

// Int is an integer literal.
type Int struct {
	Var   typesystem.Variable
	Value int64
}

// Str is a string literal.
type Str struct {
	Value string
}

// EmptyRecord is the `{}` value.
type EmptyRecord struct{}

// CalledVia records the surface syntax a call came from.
type CalledVia int

const (
	CalledViaSpace CalledVia = iota
	CalledViaPipe
	CalledViaGenerated
)

// CallFn is the callee of a call together with its type variables.
type CallFn struct {
	FnVar      typesystem.Variable
	Fn         region.Loc[Expr]
	ClosureVar typesystem.Variable
	RetVar     typesystem.Variable
}

// CallArg is one argument of a call.
type CallArg struct {
	Var   typesystem.Variable
	Value region.Loc[Expr]
}

type Call struct {
	Fn        CallFn
	Args      []CallArg
	CalledVia CalledVia
}

// Recursive marks whether a closure refers to itself.
type Recursive int

const (
	NotRecursive Recursive = iota
	SelfRecursive
	TailRecursive
)

func (r Recursive) String() string {
	switch r {
	case SelfRecursive:
		return "recursive"
	case TailRecursive:
		return "tail-recursive"
	default:
		return "not-recursive"
	}
}

// Captured is a symbol captured by a closure, with the variable of its type
// at the capture site.
type Captured struct {
	Symbol symbols.Symbol
	Var    typesystem.Variable
}

// Argument is one formal parameter of a closure.
type Argument struct {
	Var     typesystem.Variable
	Pattern region.Loc[Pattern]
}

// Closure is a lambda. Name is the symbol the closure is known by; for a
// top-level function it equals the symbol the function is bound to.
type Closure struct {
	FunctionType    typesystem.Variable
	ClosureType     typesystem.Variable
	ClosureExtVar   typesystem.Variable
	ReturnType      typesystem.Variable
	Name            symbols.Symbol
	CapturedSymbols []Captured
	Recursive       Recursive
	Arguments       []Argument
	Body            region.Loc[Expr]
}

// TagArg is one payload of a tag application.
type TagArg struct {
	Var   typesystem.Variable
	Value region.Loc[Expr]
}

// Tag applies a tag constructor to its payloads.
type Tag struct {
	VariantVar typesystem.Variable
	ExtVar     typesystem.Variable
	Name       typesystem.TagName
	Arguments  []TagArg
}

// LetNonRec evaluates Def, then Body with the def's pattern in scope.
type LetNonRec struct {
	Def  *Def
	Body region.Loc[Expr]
	Var  typesystem.Variable
}

// ForeignArg is one argument of a foreign call.
type ForeignArg struct {
	Var   typesystem.Variable
	Value Expr
}

// ForeignCall calls a function provided by the host under ForeignSymbol.
type ForeignCall struct {
	ForeignSymbol string
	Args          []ForeignArg
	RetVar        typesystem.Variable
}

func (*Var) exprNode()         {}
func (*Int) exprNode()         {}
func (*Str) exprNode()         {}
func (*EmptyRecord) exprNode() {}
func (*Call) exprNode()        {}
func (*Closure) exprNode()     {}
func (*Tag) exprNode()         {}
func (*LetNonRec) exprNode()   {}
func (*ForeignCall) exprNode() {}
