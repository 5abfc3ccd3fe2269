package effects

import (
	"fmt"

	"github.com/funvibe/fxfront/internal/ast"
	"github.com/funvibe/fxfront/internal/config"
	"github.com/funvibe/fxfront/internal/region"
	"github.com/funvibe/fxfront/internal/symbols"
	"github.com/funvibe/fxfront/internal/typesystem"
)

// ForeignSymbolName is the host function implementing ident.
func ForeignSymbolName(ident string) string {
	return config.ForeignSymbolPrefix + ident
}

// BuildHostExposedDef implements a host-provided function ident, declared
// with annotation, as a call into the host wrapped in an effect:
//
//	putLine = \closure_arg_putLine_0 ->
//	    @Effect \{} -> fx_putLine closure_arg_putLine_0
//
// A non-function annotation yields the bare effect `@Effect \{} -> fx_ident`.
// The annotation is trusted: only its arity is inspected, after stripping
// aliases at the root, and it is attached to the def unchanged.
func BuildHostExposedDef(
	env *symbols.Env,
	scope *symbols.Scope,
	symbol symbols.Symbol,
	ident string,
	tag typesystem.TagName,
	vs *typesystem.VarStore,
	annotation ast.Annotation,
) *ast.Def {
	exprVar := vs.Fresh()

	var body ast.Expr
	if fn, ok := typesystem.ShallowDealias(annotation.Signature).(typesystem.TFunc); ok {
		arguments := make([]ast.Argument, 0, len(fn.Args))
		captured := make([]ast.Captured, 0, len(fn.Args))
		foreignArgs := make([]ast.ForeignArg, 0, len(fn.Args))

		for i := range fn.Args {
			name := fmt.Sprintf("%s%s_%d", config.ClosureArgPrefix, ident, i)
			argSym := mustIntroduce(scope, env, name)
			argVar := vs.Fresh()

			arguments = append(arguments, ast.Argument{
				Var:     argVar,
				Pattern: region.AtZero[ast.Pattern](ast.NewIdentPattern(argSym)),
			})
			captured = append(captured, ast.Captured{Symbol: argSym, Var: argVar})
			foreignArgs = append(foreignArgs, ast.ForeignArg{Var: argVar, Value: ast.NewVar(argSym)})
		}

		effect := hostEffect(env, scope, ident, tag, vs, captured, foreignArgs)

		outer := ast.NewClosure(vs, ast.ClosureSpec{
			Name:         symbol,
			Recursive:    ast.NotRecursive,
			Arguments:    arguments,
			Body:         effect,
			FunctionType: exprVar,
		})
		body = outer
	} else {
		body = hostEffect(env, scope, ident, tag, vs, nil, nil)
	}

	ann := annotation
	return ast.NewFunctionDef(symbol, body, exprVar, &ann)
}

// hostEffect builds `@Effect \{} -> fx_ident args...`.
func hostEffect(
	env *symbols.Env,
	scope *symbols.Scope,
	ident string,
	tag typesystem.TagName,
	vs *typesystem.VarStore,
	captured []ast.Captured,
	foreignArgs []ast.ForeignArg,
) *ast.Tag {
	call := &ast.ForeignCall{
		ForeignSymbol: ForeignSymbolName(ident),
		Args:          foreignArgs,
		RetVar:        vs.Fresh(),
	}

	closureSym := mustIntroduce(scope, env, config.EffectClosurePrefix+ident)
	closure := &ast.Closure{
		FunctionType:    vs.Fresh(),
		ClosureType:     vs.Fresh(),
		ClosureExtVar:   vs.Fresh(),
		ReturnType:      vs.Fresh(),
		Name:            closureSym,
		CapturedSymbols: captured,
		Recursive:       ast.NotRecursive,
		Arguments:       ast.NewArguments(vs, ast.NewEmptyRecordPattern(vs)),
		Body:            region.AtZero[ast.Expr](call),
	}
	return ast.NewTag(vs, tag, closure)
}

// HostAnnotation builds the annotation of a host function taking args and
// producing an effect of ret. With no arguments it is a bare effect value.
// Platform types are closed, so the only introduced variables are the
// lambda sets.
func HostAnnotation(
	effectSymbol symbols.Symbol,
	args []typesystem.Type,
	ret typesystem.Type,
	vs *typesystem.VarStore,
) ast.Annotation {
	var iv ast.IntroducedVariables

	effect := BuildEffectAlias(effectSymbol, EffectTag(effectSymbol), "a", ret, vs, &iv)
	if len(args) == 0 {
		return ast.Annotation{Signature: effect, IntroducedVariables: iv}
	}
	return ast.Annotation{
		Signature: typesystem.TFunc{
			Args:    args,
			Closure: typesystem.TVar{Var: wildcard(vs, &iv)},
			Ret:     effect,
		},
		IntroducedVariables: iv,
	}
}
