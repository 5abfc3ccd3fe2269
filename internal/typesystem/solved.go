package typesystem

import (
	"fmt"
	"strings"

	"github.com/funvibe/fxfront/internal/symbols"
)

// VarID is a variable id local to the module that exported a solved type.
// It carries no meaning in the importing module.
type VarID uint32

// SolvedType is the exported, numbering-independent form of a type after a
// module finished inference.
type SolvedType interface {
	String() string
	isSolved()
}

// SolvedRigid is a user-written type parameter, e.g. `a`.
type SolvedRigid struct {
	Name string
}

// SolvedFlex is a variable that lost its name during solving but is still
// part of the exported signature.
type SolvedFlex struct {
	ID VarID
}

// SolvedWildcard is an anonymous variable, e.g. an unconstrained lambda set.
type SolvedWildcard struct{}

type SolvedFunc struct {
	Args    []SolvedType
	Closure SolvedType
	Ret     SolvedType
}

type SolvedApply struct {
	Symbol symbols.Symbol
	Args   []SolvedType
}

type SolvedField struct {
	Name string
	Type SolvedType
}

type SolvedRecord struct {
	Fields []SolvedField
	Ext    SolvedType
}

type SolvedEmptyRecord struct{}

type SolvedTag struct {
	Name TagName
	Args []SolvedType
}

type SolvedTagUnion struct {
	Tags []SolvedTag
	Ext  SolvedType
}

type SolvedEmptyTagUnion struct{}

type SolvedAliasArg struct {
	Name string
	Type SolvedType
}

type SolvedAlias struct {
	Symbol     symbols.Symbol
	Args       []SolvedAliasArg
	LambdaSets []SolvedType
	Actual     SolvedType
}

// SolvedErroneous marks a type the exporter could not determine; importers
// accept it without raising a new error.
type SolvedErroneous struct {
	Problem Problem
}

func (SolvedRigid) isSolved()         {}
func (SolvedFlex) isSolved()          {}
func (SolvedWildcard) isSolved()      {}
func (SolvedFunc) isSolved()          {}
func (SolvedApply) isSolved()         {}
func (SolvedRecord) isSolved()        {}
func (SolvedEmptyRecord) isSolved()   {}
func (SolvedTagUnion) isSolved()      {}
func (SolvedEmptyTagUnion) isSolved() {}
func (SolvedAlias) isSolved()         {}
func (SolvedErroneous) isSolved()     {}

func (t SolvedRigid) String() string  { return t.Name }
func (t SolvedFlex) String() string   { return fmt.Sprintf("'%d", t.ID) }
func (SolvedWildcard) String() string { return "*" }

func (t SolvedFunc) String() string {
	args := make([]string, len(t.Args))
	for i, a := range t.Args {
		args[i] = a.String()
	}
	return fmt.Sprintf("(%s -> %s)", strings.Join(args, ", "), t.Ret)
}

func (t SolvedApply) String() string {
	if len(t.Args) == 0 {
		return t.Symbol.String()
	}
	args := make([]string, len(t.Args))
	for i, a := range t.Args {
		args[i] = a.String()
	}
	return fmt.Sprintf("(%s %s)", t.Symbol, strings.Join(args, " "))
}

func (t SolvedRecord) String() string {
	fields := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		fields[i] = f.Name + " : " + f.Type.String()
	}
	return "{ " + strings.Join(fields, ", ") + " }"
}

func (SolvedEmptyRecord) String() string { return "{}" }

func (t SolvedTagUnion) String() string {
	tags := make([]string, len(t.Tags))
	for i, tag := range t.Tags {
		parts := []string{tag.Name.String()}
		for _, a := range tag.Args {
			parts = append(parts, a.String())
		}
		tags[i] = strings.Join(parts, " ")
	}
	return "[ " + strings.Join(tags, ", ") + " ]"
}

func (SolvedEmptyTagUnion) String() string { return "[]" }

func (t SolvedAlias) String() string {
	parts := []string{t.Symbol.String()}
	for _, a := range t.Args {
		parts = append(parts, a.Type.String())
	}
	return "(" + strings.Join(parts, " ") + ")"
}

func (t SolvedErroneous) String() string { return "<error: " + t.Problem.String() + ">" }
