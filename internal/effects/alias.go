package effects

import (
	"github.com/funvibe/fxfront/internal/ast"
	"github.com/funvibe/fxfront/internal/symbols"
	"github.com/funvibe/fxfront/internal/typesystem"
)

// BuildEffectAlias builds one occurrence of `Effect a`:
//
//	Effect a : [ @Tag ({} -[clo]-> a) ]
//
// Every occurrence gets its own lambda set variable, recorded as a wildcard
// in iv, since each call site may close over different state.
func BuildEffectAlias(
	effectSymbol symbols.Symbol,
	tag typesystem.TagName,
	argName string,
	argType typesystem.Type,
	vs *typesystem.VarStore,
	iv *ast.IntroducedVariables,
) typesystem.Type {
	closureVar := wildcard(vs, iv)
	return typesystem.TAlias{
		Symbol:             effectSymbol,
		TypeArguments:      []typesystem.AliasArg{{Name: argName, Type: argType}},
		LambdaSetVariables: []typesystem.LambdaSet{{Type: typesystem.TVar{Var: closureVar}}},
		Actual:             effectActual(tag, closureVar, argType),
	}
}

// BuildEffectActual builds the expansion of `Effect a` without the alias.
func BuildEffectActual(tag typesystem.TagName, argType typesystem.Type, vs *typesystem.VarStore) typesystem.Type {
	return effectActual(tag, vs.Fresh(), argType)
}

func effectActual(tag typesystem.TagName, closureVar typesystem.Variable, argType typesystem.Type) typesystem.Type {
	return typesystem.TTagUnion{
		Tags: []typesystem.Tag{{
			Name: tag,
			Args: []typesystem.Type{typesystem.TFunc{
				Args:    []typesystem.Type{typesystem.TEmptyRecord{}},
				Closure: typesystem.TVar{Var: closureVar},
				Ret:     argType,
			}},
		}},
		Ext: typesystem.TEmptyTagUnion{},
	}
}

// EffectAliasDef is the definition of the effect alias as exported by the
// effect module.
func EffectAliasDef(effectSymbol symbols.Symbol, vs *typesystem.VarStore) typesystem.Alias {
	a := vs.Fresh()
	closureVar := vs.Fresh()
	return typesystem.Alias{
		Symbol:             effectSymbol,
		TypeVariables:      []typesystem.AliasVar{{Name: "a", Var: a}},
		LambdaSetVariables: []typesystem.LambdaSet{{Type: typesystem.TVar{Var: closureVar}}},
		Typ:                effectActual(EffectTag(effectSymbol), closureVar, typesystem.TVar{Var: a}),
	}
}
