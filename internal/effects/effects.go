// Package effects synthesizes the definitions of a platform's effect module.
//
// A platform names an effect type in its header, e.g. `Task`. From that
// name we generate the alias
//
//	Task a : [ @Task ({} -> a) ]
//
// and the builtin combinators always, map, after and forever, plus one
// wrapper per host-provided function. None of them has surface syntax:
// they are built directly as typed canonical AST and are then inferred
// like user code.
package effects

import (
	"github.com/funvibe/fxfront/internal/ast"
	"github.com/funvibe/fxfront/internal/config"
	"github.com/funvibe/fxfront/internal/diagnostics"
	"github.com/funvibe/fxfront/internal/region"
	"github.com/funvibe/fxfront/internal/symbols"
	"github.com/funvibe/fxfront/internal/typesystem"
)

// Builder generates one combinator and returns the symbol it is bound to.
type Builder func(
	env *symbols.Env,
	scope *symbols.Scope,
	effectSymbol symbols.Symbol,
	tag typesystem.TagName,
	vs *typesystem.VarStore,
) (symbols.Symbol, *ast.Def)

// BuiltinEffectFunction is one entry of the combinator table.
type BuiltinEffectFunction struct {
	Name      string
	Build     Builder
	Recursive bool
}

// BuiltinEffectFunctions are implemented for every effect type, in this order.
var BuiltinEffectFunctions = []BuiltinEffectFunction{
	// after : Effect a, (a -> Effect b) -> Effect b
	{Name: config.EffectAfterName, Build: buildEffectAfter},
	// map : Effect a, (a -> b) -> Effect b
	{Name: config.EffectMapName, Build: buildEffectMap},
	// always : a -> Effect a
	{Name: config.EffectAlwaysName, Build: buildEffectAlways},
	// forever : Effect a -> Effect b
	{Name: config.EffectForeverName, Build: buildEffectForever, Recursive: true},
}

// EffectTag is the private tag wrapping the thunk of an effect value.
func EffectTag(effectSymbol symbols.Symbol) typesystem.TagName {
	return typesystem.PrivateTag(effectSymbol)
}

// BuildEffectBuiltins appends the combinator definitions to decls and
// records their symbols in exposed. Recursive combinators are declared
// with DeclareRec.
func BuildEffectBuiltins(
	env *symbols.Env,
	scope *symbols.Scope,
	effectSymbol symbols.Symbol,
	vs *typesystem.VarStore,
	exposed symbols.Set,
	decls []ast.Declaration,
) []ast.Declaration {
	tag := EffectTag(effectSymbol)
	for _, fn := range BuiltinEffectFunctions {
		sym, def := fn.Build(env, scope, effectSymbol, tag, vs)
		exposed.Insert(sym)

		if fn.Recursive {
			decls = append(decls, &ast.DeclareRec{Group: []*ast.Def{def}})
		} else {
			decls = append(decls, &ast.Declare{Def: def})
		}
	}
	return decls
}

// mustIntroduce binds a generated name. Generated names cannot collide
// with user code, so a collision is a compiler bug.
func mustIntroduce(scope *symbols.Scope, env *symbols.Env, name string) symbols.Symbol {
	sym, err := scope.Introduce(name, env, region.Zero())
	if err != nil {
		panic(diagnostics.NewInternalError(diagnostics.ErrI004, "introducing %q: %v", name, err))
	}
	return sym
}

func wildcard(vs *typesystem.VarStore, iv *ast.IntroducedVariables) typesystem.Variable {
	v := vs.Fresh()
	iv.InsertWildcard(v)
	return v
}

func named(name string, vs *typesystem.VarStore, iv *ast.IntroducedVariables) typesystem.Variable {
	v := vs.Fresh()
	iv.InsertNamed(name, v)
	return v
}

// wrapInEffectThunk turns body into `@Tag \{} -> body`.
func wrapInEffectThunk(
	vs *typesystem.VarStore,
	body ast.Expr,
	tag typesystem.TagName,
	closureName symbols.Symbol,
	captured []symbols.Symbol,
) *ast.Tag {
	return ast.NewTag(vs, tag, ast.NewThunk(vs, closureName, captured, body))
}

// forceEffect unwraps effect with `@Tag thunk = effect` and forces the thunk.
func forceEffect(
	vs *typesystem.VarStore,
	effect ast.Expr,
	tag typesystem.TagName,
	thunk symbols.Symbol,
) *ast.LetNonRec {
	unwrap := ast.NewDef(vs, ast.NewAppliedTagPattern(vs, tag, thunk), effect)
	return ast.NewLet(vs, unwrap, ast.NewThunkCall(vs, thunk))
}
