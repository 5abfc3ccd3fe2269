package typesystem

import (
	"fmt"
	"strings"

	"github.com/funvibe/fxfront/internal/symbols"
)

// Type is a canonical (not yet solved) type as written in annotations or
// produced by translating a SolvedType.
type Type interface {
	String() string
	// Variables appends every variable occurring in the type, in order.
	Variables(acc []Variable) []Variable
	isType()
}

// TagName names a tag union constructor. Global tags are plain names;
// private tags belong to the symbol that declared them.
type TagName struct {
	Global    string
	Private   symbols.Symbol
	IsPrivate bool
}

func GlobalTag(name string) TagName {
	return TagName{Global: name}
}

func PrivateTag(sym symbols.Symbol) TagName {
	return TagName{Private: sym, IsPrivate: true}
}

func (t TagName) String() string {
	if t.IsPrivate {
		return "@" + t.Private.String()
	}
	return t.Global
}

// TVar is a reference to a type variable.
type TVar struct {
	Var Variable
}

// TFunc is a function type; Closure is the lambda set of the arrow.
type TFunc struct {
	Args    []Type
	Closure Type
	Ret     Type
}

// TApp applies a builtin or opaque type constructor.
type TApp struct {
	Symbol symbols.Symbol
	Args   []Type
}

type RecordField struct {
	Name string
	Type Type
}

type TRecord struct {
	Fields []RecordField
	Ext    Type
}

type TEmptyRecord struct{}

type Tag struct {
	Name TagName
	Args []Type
}

type TTagUnion struct {
	Tags []Tag
	Ext  Type
}

type TEmptyTagUnion struct{}

// LambdaSet is a type standing for the set of closures an arrow may carry.
type LambdaSet struct {
	Type Type
}

type AliasArg struct {
	Name string
	Type Type
}

// TAlias is an occurrence of a type alias together with its expansion.
type TAlias struct {
	Symbol             symbols.Symbol
	TypeArguments      []AliasArg
	LambdaSetVariables []LambdaSet
	Actual             Type
}

// TErroneous stands in for a type that could not be determined.
type TErroneous struct {
	Problem Problem
}

func (TVar) isType()           {}
func (TFunc) isType()          {}
func (TApp) isType()           {}
func (TRecord) isType()        {}
func (TEmptyRecord) isType()   {}
func (TTagUnion) isType()      {}
func (TEmptyTagUnion) isType() {}
func (TAlias) isType()         {}
func (TErroneous) isType()     {}

func (t TVar) String() string { return t.Var.String() }

func (t TFunc) String() string {
	args := make([]string, len(t.Args))
	for i, a := range t.Args {
		args[i] = a.String()
	}
	if t.Closure == nil {
		return fmt.Sprintf("(%s -> %s)", strings.Join(args, ", "), t.Ret)
	}
	return fmt.Sprintf("(%s -%s-> %s)", strings.Join(args, ", "), t.Closure, t.Ret)
}

func (t TApp) String() string {
	if len(t.Args) == 0 {
		return t.Symbol.String()
	}
	args := make([]string, len(t.Args))
	for i, a := range t.Args {
		args[i] = a.String()
	}
	return fmt.Sprintf("(%s %s)", t.Symbol, strings.Join(args, " "))
}

func (t TRecord) String() string {
	fields := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		fields[i] = f.Name + " : " + f.Type.String()
	}
	return "{ " + strings.Join(fields, ", ") + " }" + extString(t.Ext)
}

func (TEmptyRecord) String() string { return "{}" }

func (t TTagUnion) String() string {
	tags := make([]string, len(t.Tags))
	for i, tag := range t.Tags {
		parts := []string{tag.Name.String()}
		for _, a := range tag.Args {
			parts = append(parts, a.String())
		}
		tags[i] = strings.Join(parts, " ")
	}
	return "[ " + strings.Join(tags, ", ") + " ]" + extString(t.Ext)
}

func (TEmptyTagUnion) String() string { return "[]" }

func (t TAlias) String() string {
	parts := []string{t.Symbol.String()}
	for _, a := range t.TypeArguments {
		parts = append(parts, a.Type.String())
	}
	return "(" + strings.Join(parts, " ") + ")"
}

func (t TErroneous) String() string { return "<error: " + t.Problem.String() + ">" }

func extString(ext Type) string {
	switch ext.(type) {
	case nil, TEmptyRecord, TEmptyTagUnion:
		return ""
	default:
		return ext.String()
	}
}

func (t TVar) Variables(acc []Variable) []Variable { return append(acc, t.Var) }

func (t TFunc) Variables(acc []Variable) []Variable {
	for _, a := range t.Args {
		acc = a.Variables(acc)
	}
	if t.Closure != nil {
		acc = t.Closure.Variables(acc)
	}
	return t.Ret.Variables(acc)
}

func (t TApp) Variables(acc []Variable) []Variable {
	for _, a := range t.Args {
		acc = a.Variables(acc)
	}
	return acc
}

func (t TRecord) Variables(acc []Variable) []Variable {
	for _, f := range t.Fields {
		acc = f.Type.Variables(acc)
	}
	if t.Ext != nil {
		acc = t.Ext.Variables(acc)
	}
	return acc
}

func (TEmptyRecord) Variables(acc []Variable) []Variable { return acc }

func (t TTagUnion) Variables(acc []Variable) []Variable {
	for _, tag := range t.Tags {
		for _, a := range tag.Args {
			acc = a.Variables(acc)
		}
	}
	if t.Ext != nil {
		acc = t.Ext.Variables(acc)
	}
	return acc
}

func (TEmptyTagUnion) Variables(acc []Variable) []Variable { return acc }

func (t TAlias) Variables(acc []Variable) []Variable {
	for _, a := range t.TypeArguments {
		acc = a.Type.Variables(acc)
	}
	for _, ls := range t.LambdaSetVariables {
		acc = ls.Type.Variables(acc)
	}
	return t.Actual.Variables(acc)
}

func (TErroneous) Variables(acc []Variable) []Variable { return acc }

// ShallowDealias strips alias wrappers at the root of t.
func ShallowDealias(t Type) Type {
	for {
		alias, ok := t.(TAlias)
		if !ok {
			return t
		}
		t = alias.Actual
	}
}

// Arity returns the number of arguments of a (dealiased) function type, and
// false when t is not a function.
func Arity(t Type) (int, bool) {
	fn, ok := ShallowDealias(t).(TFunc)
	if !ok {
		return 0, false
	}
	return len(fn.Args), true
}

// AliasVar is a type parameter of an alias definition.
type AliasVar struct {
	Name string
	Var  Variable
}

// Alias is a type alias definition as exported by a module.
type Alias struct {
	Symbol             symbols.Symbol
	TypeVariables      []AliasVar
	LambdaSetVariables []LambdaSet
	Typ                Type
}

// Problem describes why a type is erroneous.
type Problem int

const (
	ProblemInvalidModule Problem = iota + 1
	ProblemCanonicalizationProblem
	ProblemCyclicAlias
	ProblemUnrecognizedIdent
)

func (p Problem) String() string {
	switch p {
	case ProblemInvalidModule:
		return "invalid module"
	case ProblemCanonicalizationProblem:
		return "canonicalization problem"
	case ProblemCyclicAlias:
		return "cyclic alias"
	case ProblemUnrecognizedIdent:
		return "unrecognized identifier"
	default:
		return fmt.Sprintf("problem(%d)", int(p))
	}
}
