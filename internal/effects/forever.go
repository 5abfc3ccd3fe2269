package effects

import (
	"github.com/funvibe/fxfront/internal/ast"
	"github.com/funvibe/fxfront/internal/config"
	"github.com/funvibe/fxfront/internal/symbols"
	"github.com/funvibe/fxfront/internal/typesystem"
)

// forever is morally
//
//	forever = \effect -> after effect (\_ -> forever effect)
//
// but that builds an ever growing chain of thunks. Instead `after` is
// inlined and the recursive call is forced in tail position of the same
// inner closure:
//
//	forever : Effect a -> Effect b
//	forever = \effect ->
//	    @Effect \{} ->
//	        @Effect thunk1 = effect
//	        _ = thunk1 {}
//	        @Effect thunk2 = forever effect
//	        thunk2 {}
//
// Once the tag wrapper melts away and closures are defunctionalized, the
// inner closure calls itself with the same captured effect, which later
// passes turn into a loop. MatchForever recognizes exactly this tree; any
// change to its shape must be mirrored there.
func buildEffectForever(
	env *symbols.Env,
	scope *symbols.Scope,
	effectSymbol symbols.Symbol,
	tag typesystem.TagName,
	vs *typesystem.VarStore,
) (symbols.Symbol, *ast.Def) {
	forever := mustIntroduce(scope, env, config.EffectForeverName)
	effect := mustIntroduce(scope, env, config.ForeverEffectName)

	body := buildEffectForeverBody(env, scope, tag, forever, effect, vs)

	fnVar := vs.Fresh()
	closure := ast.NewClosure(vs, ast.ClosureSpec{
		Name:         forever,
		Recursive:    ast.SelfRecursive,
		Arguments:    ast.NewArguments(vs, ast.NewIdentPattern(effect)),
		Body:         body,
		FunctionType: fnVar,
	})

	var iv ast.IntroducedVariables
	a := named("a", vs, &iv)
	b := named("b", vs, &iv)
	effectA := BuildEffectAlias(effectSymbol, tag, "a", typesystem.TVar{Var: a}, vs, &iv)
	// the loop never produces a value, so the result is unconstrained
	effectB := BuildEffectAlias(effectSymbol, tag, "b", typesystem.TVar{Var: b}, vs, &iv)
	signature := typesystem.TFunc{
		Args:    []typesystem.Type{effectA},
		Closure: typesystem.TVar{Var: wildcard(vs, &iv)},
		Ret:     effectB,
	}

	return forever, ast.NewFunctionDef(forever, closure, fnVar, &ast.Annotation{
		Signature:           signature,
		IntroducedVariables: iv,
	})
}

func buildEffectForeverBody(
	env *symbols.Env,
	scope *symbols.Scope,
	tag typesystem.TagName,
	forever, effect symbols.Symbol,
	vs *typesystem.VarStore,
) ast.Expr {
	inner := mustIntroduce(scope, env, config.ForeverInnerName)
	innerBody := buildEffectForeverInnerBody(env, scope, tag, forever, effect, vs)
	return wrapInEffectThunk(vs, innerBody, tag, inner, []symbols.Symbol{effect})
}

func buildEffectForeverInnerBody(
	env *symbols.Env,
	scope *symbols.Scope,
	tag typesystem.TagName,
	forever, effect symbols.Symbol,
	vs *typesystem.VarStore,
) ast.Expr {
	thunk1 := mustIntroduce(scope, env, config.ForeverThunk1Name)
	thunk2 := mustIntroduce(scope, env, config.ForeverThunk2Name)

	// @Effect thunk1 = effect
	unwrap := ast.NewDef(vs, ast.NewAppliedTagPattern(vs, tag, thunk1), ast.NewVar(effect))

	// _ = thunk1 {}
	force1 := ast.NewDef(vs, &ast.Underscore{}, ast.NewThunkCall(vs, thunk1))

	// @Effect thunk2 = forever effect
	// thunk2 {}
	recursive := ast.NewCall(vs, ast.NewVar(forever), ast.NewVar(effect))
	force2 := forceEffect(vs, recursive, tag, thunk2)

	return ast.NewLet(vs, unwrap, ast.NewLet(vs, force1, force2))
}

// ForeverShape names the parts of a generated forever definition.
type ForeverShape struct {
	// Forever is the symbol of the combinator; the recursive call targets it.
	Forever symbols.Symbol
	// Effect is the argument, the only symbol captured by Inner.
	Effect symbols.Symbol
	// Inner is the thunk that becomes the loop body.
	Inner  symbols.Symbol
	Tag    typesystem.TagName
	Thunk1 symbols.Symbol
	Thunk2 symbols.Symbol
}

// MatchForever reports whether def has exactly the shape built for forever.
// Optimizers rely on it to run the loop in constant stack.
func MatchForever(def *ast.Def) (ForeverShape, bool) {
	var shape ForeverShape

	self, ok := def.Symbol()
	if !ok {
		return shape, false
	}
	outer, ok := def.LocExpr.Value.(*ast.Closure)
	if !ok || outer.Recursive != ast.SelfRecursive || outer.Name != self ||
		len(outer.CapturedSymbols) != 0 || len(outer.Arguments) != 1 {
		return shape, false
	}
	effectPat, ok := outer.Arguments[0].Pattern.Value.(*ast.Identifier)
	if !ok {
		return shape, false
	}
	shape.Forever = self
	shape.Effect = effectPat.Symbol

	wrapper, ok := outer.Body.Value.(*ast.Tag)
	if !ok || len(wrapper.Arguments) != 1 {
		return shape, false
	}
	shape.Tag = wrapper.Name

	inner, ok := wrapper.Arguments[0].Value.Value.(*ast.Closure)
	if !ok || inner.Recursive != ast.NotRecursive || !isUnitArguments(inner.Arguments) ||
		len(inner.CapturedSymbols) != 1 || inner.CapturedSymbols[0].Symbol != shape.Effect {
		return shape, false
	}
	shape.Inner = inner.Name

	// @Effect thunk1 = effect
	let1, ok := inner.Body.Value.(*ast.LetNonRec)
	if !ok {
		return shape, false
	}
	if shape.Thunk1, ok = matchUnwrap(let1.Def, shape.Tag); !ok {
		return shape, false
	}
	if v, ok := let1.Def.LocExpr.Value.(*ast.Var); !ok || v.Symbol != shape.Effect {
		return shape, false
	}

	// _ = thunk1 {}
	let2, ok := let1.Body.Value.(*ast.LetNonRec)
	if !ok {
		return shape, false
	}
	if _, ok := let2.Def.LocPattern.Value.(*ast.Underscore); !ok {
		return shape, false
	}
	if !isThunkCall(let2.Def.LocExpr.Value, shape.Thunk1) {
		return shape, false
	}

	// @Effect thunk2 = forever effect
	let3, ok := let2.Body.Value.(*ast.LetNonRec)
	if !ok {
		return shape, false
	}
	if shape.Thunk2, ok = matchUnwrap(let3.Def, shape.Tag); !ok {
		return shape, false
	}
	call, ok := let3.Def.LocExpr.Value.(*ast.Call)
	if !ok || len(call.Args) != 1 {
		return shape, false
	}
	if callee, ok := call.Fn.Fn.Value.(*ast.Var); !ok || callee.Symbol != shape.Forever {
		return shape, false
	}
	if arg, ok := call.Args[0].Value.Value.(*ast.Var); !ok || arg.Symbol != shape.Effect {
		return shape, false
	}

	// thunk2 {}
	if !isThunkCall(let3.Body.Value, shape.Thunk2) {
		return shape, false
	}
	return shape, true
}

// matchUnwrap matches the pattern `@Tag thunk`.
func matchUnwrap(def *ast.Def, tag typesystem.TagName) (symbols.Symbol, bool) {
	pat, ok := def.LocPattern.Value.(*ast.AppliedTag)
	if !ok || pat.TagName != tag || len(pat.Arguments) != 1 {
		return symbols.Symbol{}, false
	}
	id, ok := pat.Arguments[0].Pattern.Value.(*ast.Identifier)
	if !ok {
		return symbols.Symbol{}, false
	}
	return id.Symbol, true
}

// isThunkCall matches `thunk {}`.
func isThunkCall(e ast.Expr, thunk symbols.Symbol) bool {
	call, ok := e.(*ast.Call)
	if !ok || len(call.Args) != 1 {
		return false
	}
	if fn, ok := call.Fn.Fn.Value.(*ast.Var); !ok || fn.Symbol != thunk {
		return false
	}
	_, ok = call.Args[0].Value.Value.(*ast.EmptyRecord)
	return ok
}

// isUnitArguments matches the single `{}` argument of a thunk.
func isUnitArguments(args []ast.Argument) bool {
	if len(args) != 1 {
		return false
	}
	rec, ok := args[0].Pattern.Value.(*ast.RecordDestructure)
	return ok && len(rec.Destructs) == 0
}
