// Package builtins holds the solved types of the builtin modules. Builtin
// modules are never compiled; importers read their types from this table.
package builtins

import (
	"sync"

	"github.com/funvibe/fxfront/internal/region"
	"github.com/funvibe/fxfront/internal/symbols"
	"github.com/funvibe/fxfront/internal/typesystem"
)

// BuiltinType is the solved type of a builtin value and where it is documented.
type BuiltinType struct {
	Type   typesystem.SolvedType
	Region region.Region
}

// StdLib is the builtin-types table consulted by the import bridge.
type StdLib struct {
	// Types maps builtin values to their solved types.
	Types map[symbols.Symbol]BuiltinType
	// Applies lists builtin type constructors; referencing them needs no constraint.
	Applies symbols.Set
}

// BuiltinAlias is a builtin type alias, e.g. `I64 : Num [Signed64]`.
type BuiltinAlias struct {
	Symbol        symbols.Symbol
	TypeVariables []string
	Actual        typesystem.SolvedType
}

var (
	stdlibOnce sync.Once
	stdlib     *StdLib

	aliasesOnce sync.Once
	aliases     map[symbols.Symbol]BuiltinAlias
)

// Get returns the shared builtin table. Callers must not mutate it.
func Get() *StdLib {
	stdlibOnce.Do(func() {
		stdlib = New()
	})
	return stdlib
}

// Aliases returns the builtin alias table. Callers must not mutate it.
func Aliases() map[symbols.Symbol]BuiltinAlias {
	aliasesOnce.Do(func() {
		aliases = buildAliases()
	})
	return aliases
}

// IsBuiltinAlias reports whether sym names a builtin alias.
func IsBuiltinAlias(sym symbols.Symbol) bool {
	_, ok := Aliases()[sym]
	return ok
}

// IsZeroConstraint reports whether sym is a builtin that contributes no
// constraint when referenced: a type constructor or a builtin alias.
func (s *StdLib) IsZeroConstraint(sym symbols.Symbol) bool {
	return s.Applies.Contains(sym) || IsBuiltinAlias(sym)
}

// New builds a fresh table.
func New() *StdLib {
	s := &StdLib{
		Types:   make(map[symbols.Symbol]BuiltinType),
		Applies: symbols.NewSet(symbols.NumNum, symbols.StrStr, symbols.ListList),
	}

	line := uint32(0)
	add := func(sym symbols.Symbol, typ typesystem.SolvedType) {
		line++
		s.Types[sym] = BuiltinType{Type: typ, Region: region.New(line, 1, line, 1)}
	}

	a := typesystem.SolvedRigid{Name: "a"}
	b := typesystem.SolvedRigid{Name: "b"}
	e := typesystem.SolvedRigid{Name: "e"}

	// Num
	add(symbols.NumAdd, fn(num(a), num(a), num(a)))
	add(symbols.NumSub, fn(num(a), num(a), num(a)))
	add(symbols.NumMul, fn(num(a), num(a), num(a)))
	add(symbols.NumIsZero, fn(num(a), boolType()))
	add(symbols.NumToStr, fn(num(a), str()))

	// Str
	add(symbols.StrConcat, fn(str(), str(), str()))
	add(symbols.StrIsEmpty, fn(str(), boolType()))
	add(symbols.StrCountGraphemes, fn(str(), i64()))

	// Bool
	add(symbols.BoolNot, fn(boolType(), boolType()))
	add(symbols.BoolAnd, fn(boolType(), boolType(), boolType()))
	add(symbols.BoolOr, fn(boolType(), boolType(), boolType()))

	// List
	add(symbols.ListLen, fn(list(a), i64()))
	add(symbols.ListMap, fn(list(a), fn(a, b), list(b)))
	add(symbols.ListAppend, fn(list(a), a, list(a)))
	add(symbols.ListSingle, fn(a, list(a)))

	// Result
	add(symbols.ResultMap, fn(result(a, e), fn(a, b), result(b, e)))
	add(symbols.ResultWithDefault, fn(result(a, e), a, a))

	return s
}

func buildAliases() map[symbols.Symbol]BuiltinAlias {
	out := make(map[symbols.Symbol]BuiltinAlias)
	for _, alias := range []BuiltinAlias{
		{Symbol: symbols.NumI64, Actual: signed64()},
		{Symbol: symbols.NumF64, Actual: binary64()},
		{Symbol: symbols.BoolBool, Actual: boolActual()},
		{Symbol: symbols.ResultResult, TypeVariables: []string{"ok", "err"}, Actual: resultActual(
			typesystem.SolvedRigid{Name: "ok"}, typesystem.SolvedRigid{Name: "err"})},
	} {
		out[alias.Symbol] = alias
	}
	return out
}

// fn builds a function type; the last argument is the return type. Every
// arrow gets its own wildcard lambda set.
func fn(types ...typesystem.SolvedType) typesystem.SolvedType {
	n := len(types)
	return typesystem.SolvedFunc{
		Args:    types[:n-1],
		Closure: typesystem.SolvedWildcard{},
		Ret:     types[n-1],
	}
}

func num(a typesystem.SolvedType) typesystem.SolvedType {
	return typesystem.SolvedApply{Symbol: symbols.NumNum, Args: []typesystem.SolvedType{a}}
}

func str() typesystem.SolvedType {
	return typesystem.SolvedApply{Symbol: symbols.StrStr}
}

func list(a typesystem.SolvedType) typesystem.SolvedType {
	return typesystem.SolvedApply{Symbol: symbols.ListList, Args: []typesystem.SolvedType{a}}
}

func signed64() typesystem.SolvedType {
	return num(typesystem.SolvedTagUnion{Tags: []typesystem.SolvedTag{{Name: typesystem.GlobalTag("Signed64")}}})
}

func binary64() typesystem.SolvedType {
	return num(typesystem.SolvedTagUnion{Tags: []typesystem.SolvedTag{{Name: typesystem.GlobalTag("Binary64")}}})
}

func i64() typesystem.SolvedType {
	return typesystem.SolvedAlias{Symbol: symbols.NumI64, Actual: signed64()}
}

func boolActual() typesystem.SolvedType {
	return typesystem.SolvedTagUnion{Tags: []typesystem.SolvedTag{
		{Name: typesystem.GlobalTag("False")},
		{Name: typesystem.GlobalTag("True")},
	}}
}

func boolType() typesystem.SolvedType {
	return typesystem.SolvedAlias{Symbol: symbols.BoolBool, Actual: boolActual()}
}

func resultActual(ok, err typesystem.SolvedType) typesystem.SolvedType {
	return typesystem.SolvedTagUnion{Tags: []typesystem.SolvedTag{
		{Name: typesystem.GlobalTag("Err"), Args: []typesystem.SolvedType{err}},
		{Name: typesystem.GlobalTag("Ok"), Args: []typesystem.SolvedType{ok}},
	}}
}

func result(ok, err typesystem.SolvedType) typesystem.SolvedType {
	return typesystem.SolvedAlias{
		Symbol: symbols.ResultResult,
		Args: []typesystem.SolvedAliasArg{
			{Name: "ok", Type: ok},
			{Name: "err", Type: err},
		},
		Actual: resultActual(ok, err),
	}
}
