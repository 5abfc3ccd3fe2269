package effects

import (
	"github.com/funvibe/fxfront/internal/ast"
	"github.com/funvibe/fxfront/internal/config"
	"github.com/funvibe/fxfront/internal/symbols"
	"github.com/funvibe/fxfront/internal/typesystem"
)

// always = \value -> @Effect \{} -> value
func buildEffectAlways(
	env *symbols.Env,
	scope *symbols.Scope,
	effectSymbol symbols.Symbol,
	tag typesystem.TagName,
	vs *typesystem.VarStore,
) (symbols.Symbol, *ast.Def) {
	value := mustIntroduce(scope, env, config.AlwaysValueName)
	inner := mustIntroduce(scope, env, config.AlwaysInnerName)
	always := mustIntroduce(scope, env, config.EffectAlwaysName)

	constClosure := ast.NewThunk(vs, inner, []symbols.Symbol{value}, ast.NewVar(value))

	fnVar := vs.Fresh()
	closure := ast.NewClosure(vs, ast.ClosureSpec{
		Name:         always,
		Recursive:    ast.NotRecursive,
		Arguments:    ast.NewArguments(vs, ast.NewIdentPattern(value)),
		Body:         ast.NewTag(vs, tag, constClosure),
		FunctionType: fnVar,
	})

	// always : a -> Effect a
	var iv ast.IntroducedVariables
	a := named("a", vs, &iv)
	effectA := BuildEffectAlias(effectSymbol, tag, "a", typesystem.TVar{Var: a}, vs, &iv)
	signature := typesystem.TFunc{
		Args:    []typesystem.Type{typesystem.TVar{Var: a}},
		Closure: typesystem.TVar{Var: wildcard(vs, &iv)},
		Ret:     effectA,
	}

	return always, ast.NewFunctionDef(always, closure, fnVar, &ast.Annotation{
		Signature:           signature,
		IntroducedVariables: iv,
	})
}

// map = \@Effect thunk, mapper -> @Effect \{} -> mapper (thunk {})
func buildEffectMap(
	env *symbols.Env,
	scope *symbols.Scope,
	effectSymbol symbols.Symbol,
	tag typesystem.TagName,
	vs *typesystem.VarStore,
) (symbols.Symbol, *ast.Def) {
	thunk := mustIntroduce(scope, env, config.MapThunkName)
	mapper := mustIntroduce(scope, env, config.MapMapperName)
	mapSym := mustIntroduce(scope, env, config.EffectMapName)

	mapperCall := ast.NewCall(vs, ast.NewVar(mapper), ast.NewThunkCall(vs, thunk))

	inner := mustIntroduce(scope, env, config.MapInnerName)
	innerClosure := ast.NewThunk(vs, inner, []symbols.Symbol{thunk, mapper}, mapperCall)

	arguments := ast.NewArguments(vs,
		ast.NewAppliedTagPattern(vs, tag, thunk),
		ast.NewIdentPattern(mapper),
	)
	body := ast.NewTag(vs, tag, innerClosure)

	fnVar := vs.Fresh()
	closure := ast.NewClosure(vs, ast.ClosureSpec{
		Name:         mapSym,
		Recursive:    ast.NotRecursive,
		Arguments:    arguments,
		Body:         body,
		FunctionType: fnVar,
	})

	// map : Effect a, (a -> b) -> Effect b
	var iv ast.IntroducedVariables
	a := named("a", vs, &iv)
	b := named("b", vs, &iv)
	effectA := BuildEffectAlias(effectSymbol, tag, "a", typesystem.TVar{Var: a}, vs, &iv)
	effectB := BuildEffectAlias(effectSymbol, tag, "b", typesystem.TVar{Var: b}, vs, &iv)
	aToB := typesystem.TFunc{
		Args:    []typesystem.Type{typesystem.TVar{Var: a}},
		Closure: typesystem.TVar{Var: wildcard(vs, &iv)},
		Ret:     typesystem.TVar{Var: b},
	}
	signature := typesystem.TFunc{
		Args:    []typesystem.Type{effectA, aToB},
		Closure: typesystem.TVar{Var: wildcard(vs, &iv)},
		Ret:     effectB,
	}

	return mapSym, ast.NewFunctionDef(mapSym, closure, fnVar, &ast.Annotation{
		Signature:           signature,
		IntroducedVariables: iv,
	})
}

// after = \@Effect thunk, toEffect -> toEffect (thunk {})
//
// The continuation already returns an effect, so there is no second wrapper.
func buildEffectAfter(
	env *symbols.Env,
	scope *symbols.Scope,
	effectSymbol symbols.Symbol,
	tag typesystem.TagName,
	vs *typesystem.VarStore,
) (symbols.Symbol, *ast.Def) {
	thunk := mustIntroduce(scope, env, config.AfterThunkName)
	toEffect := mustIntroduce(scope, env, config.AfterToEffectName)
	after := mustIntroduce(scope, env, config.EffectAfterName)

	toEffectCall := ast.NewCall(vs, ast.NewVar(toEffect), ast.NewThunkCall(vs, thunk))

	arguments := ast.NewArguments(vs,
		ast.NewAppliedTagPattern(vs, tag, thunk),
		ast.NewIdentPattern(toEffect),
	)

	fnVar := vs.Fresh()
	closure := ast.NewClosure(vs, ast.ClosureSpec{
		Name:         after,
		Recursive:    ast.NotRecursive,
		Arguments:    arguments,
		Body:         toEffectCall,
		FunctionType: fnVar,
	})

	// after : Effect a, (a -> Effect b) -> Effect b
	var iv ast.IntroducedVariables
	a := named("a", vs, &iv)
	b := named("b", vs, &iv)
	effectA := BuildEffectAlias(effectSymbol, tag, "a", typesystem.TVar{Var: a}, vs, &iv)
	effectB := BuildEffectAlias(effectSymbol, tag, "b", typesystem.TVar{Var: b}, vs, &iv)
	aToEffectB := typesystem.TFunc{
		Args:    []typesystem.Type{typesystem.TVar{Var: a}},
		Closure: typesystem.TVar{Var: wildcard(vs, &iv)},
		Ret:     effectB,
	}
	signature := typesystem.TFunc{
		Args:    []typesystem.Type{effectA, aToEffectB},
		Closure: typesystem.TVar{Var: wildcard(vs, &iv)},
		Ret:     effectB,
	}

	return after, ast.NewFunctionDef(after, closure, fnVar, &ast.Annotation{
		Signature:           signature,
		IntroducedVariables: iv,
	})
}
