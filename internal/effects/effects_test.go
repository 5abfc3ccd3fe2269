package effects

import (
	"errors"
	"testing"

	"github.com/funvibe/fxfront/internal/ast"
	"github.com/funvibe/fxfront/internal/config"
	"github.com/funvibe/fxfront/internal/diagnostics"
	"github.com/funvibe/fxfront/internal/region"
	"github.com/funvibe/fxfront/internal/symbols"
	"github.com/funvibe/fxfront/internal/typesystem"
)

type fixture struct {
	env    *symbols.Env
	scope  *symbols.Scope
	vs     *typesystem.VarStore
	effect symbols.Symbol
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	interns := symbols.NewInterns()
	home := interns.Module("Effect")
	env := symbols.NewEnv(home, nil)
	scope := symbols.NewScope(home)
	effect, err := scope.Introduce("Task", env, region.Zero())
	if err != nil {
		t.Fatalf("introduce effect symbol: %v", err)
	}
	return &fixture{env: env, scope: scope, vs: typesystem.NewVarStore(), effect: effect}
}

func (f *fixture) name(sym symbols.Symbol) string {
	name, _ := f.env.IdentIDs.Name(sym.Ident)
	return name
}

func (f *fixture) builtins() ([]ast.Declaration, symbols.Set) {
	exposed := symbols.NewSet()
	decls := BuildEffectBuiltins(f.env, f.scope, f.effect, f.vs, exposed, nil)
	return decls, exposed
}

func (f *fixture) buildOne(b Builder) (symbols.Symbol, *ast.Def) {
	return b(f.env, f.scope, f.effect, EffectTag(f.effect), f.vs)
}

func expectInternal(t *testing.T, code diagnostics.ErrorCode, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		r := recover()
		err, ok := r.(error)
		var ie *diagnostics.InternalError
		if !ok || !errors.As(err, &ie) || ie.Code != code {
			t.Fatalf("expected internal error %s, got %v", code, r)
		}
	}()
	fn()
}

func TestBuildEffectBuiltinsOrder(t *testing.T) {
	f := newFixture(t)
	decls, exposed := f.builtins()

	want := []string{"after", "map", "always", "forever"}
	if len(decls) != len(want) {
		t.Fatalf("got %d declarations, want %d", len(decls), len(want))
	}
	for i, decl := range decls {
		defs := decl.Defs()
		if len(defs) != 1 {
			t.Fatalf("declaration %d has %d defs", i, len(defs))
		}
		sym, ok := defs[0].Symbol()
		if !ok {
			t.Fatalf("declaration %d does not bind an identifier", i)
		}
		if got := f.name(sym); got != want[i] {
			t.Errorf("declaration %d = %s, want %s", i, got, want[i])
		}
		if !exposed.Contains(sym) {
			t.Errorf("%s is not exposed", want[i])
		}
		_, isRec := decl.(*ast.DeclareRec)
		if isRec != (want[i] == config.EffectForeverName) {
			t.Errorf("%s: DeclareRec = %v", want[i], isRec)
		}
	}
	if len(exposed) != 4 {
		t.Errorf("exposed %d symbols, want 4", len(exposed))
	}
}

func TestBuiltinDefsShareFunctionVariable(t *testing.T) {
	f := newFixture(t)
	decls, _ := f.builtins()
	for _, decl := range decls {
		def := decl.Defs()[0]
		sym, _ := def.Symbol()
		closure, ok := def.LocExpr.Value.(*ast.Closure)
		if !ok {
			t.Fatalf("%s is not a closure", f.name(sym))
		}
		if closure.Name != sym {
			t.Errorf("%s: closure name %v, want %v", f.name(sym), closure.Name, sym)
		}
		if closure.FunctionType != def.ExprVar || def.PatternVars[sym] != def.ExprVar {
			t.Errorf("%s: function type %s, expr var %s, pattern var %s",
				f.name(sym), closure.FunctionType, def.ExprVar, def.PatternVars[sym])
		}
		if def.Annotation == nil {
			t.Errorf("%s has no annotation", f.name(sym))
		}
	}
}

func TestCombinatorSignatures(t *testing.T) {
	tests := []struct {
		name      string
		build     Builder
		arity     int
		named     []string
		wildcards int
		effects   int
	}{
		{"always", buildEffectAlways, 1, []string{"a"}, 2, 1},
		{"map", buildEffectMap, 2, []string{"a", "b"}, 4, 2},
		{"after", buildEffectAfter, 2, []string{"a", "b"}, 4, 3},
		{"forever", buildEffectForever, 1, []string{"a", "b"}, 3, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			_, def := f.buildOne(tt.build)
			ann := def.Annotation

			if n, ok := typesystem.Arity(ann.Signature); !ok || n != tt.arity {
				t.Errorf("arity = (%d, %v), want %d", n, ok, tt.arity)
			}
			if len(ann.IntroducedVariables.Named) != len(tt.named) {
				t.Fatalf("named = %v, want %v", ann.IntroducedVariables.Named, tt.named)
			}
			for i, nv := range ann.IntroducedVariables.Named {
				if nv.Name != tt.named[i] {
					t.Errorf("named[%d] = %s, want %s", i, nv.Name, tt.named[i])
				}
			}
			wild := ann.IntroducedVariables.Wildcards
			if len(wild) != tt.wildcards {
				t.Errorf("got %d wildcards, want %d", len(wild), tt.wildcards)
			}
			seen := map[typesystem.Variable]bool{}
			for _, v := range wild {
				if seen[v] {
					t.Errorf("wildcard %s reused", v)
				}
				seen[v] = true
			}
			if got := countEffectAliases(ann.Signature, f.effect); got != tt.effects {
				t.Errorf("signature has %d Effect occurrences, want %d", got, tt.effects)
			}
		})
	}
}

func countEffectAliases(t typesystem.Type, effect symbols.Symbol) int {
	switch tt := t.(type) {
	case typesystem.TAlias:
		n := 0
		if tt.Symbol == effect {
			n = 1
		}
		for _, a := range tt.TypeArguments {
			n += countEffectAliases(a.Type, effect)
		}
		return n
	case typesystem.TFunc:
		n := countEffectAliases(tt.Ret, effect)
		for _, a := range tt.Args {
			n += countEffectAliases(a, effect)
		}
		return n
	default:
		return 0
	}
}

func TestAlwaysWrapsValue(t *testing.T) {
	f := newFixture(t)
	_, def := f.buildOne(buildEffectAlways)
	outer := def.LocExpr.Value.(*ast.Closure)

	value := outer.Arguments[0].Pattern.Value.(*ast.Identifier).Symbol
	tag, ok := outer.Body.Value.(*ast.Tag)
	if !ok || tag.Name != EffectTag(f.effect) {
		t.Fatalf("body is %T, want the effect tag", outer.Body.Value)
	}
	inner := tag.Arguments[0].Value.Value.(*ast.Closure)
	if f.name(inner.Name) != config.AlwaysInnerName {
		t.Errorf("inner closure = %s", f.name(inner.Name))
	}
	if len(inner.CapturedSymbols) != 1 || inner.CapturedSymbols[0].Symbol != value {
		t.Errorf("inner closure captures %v, want [%v]", inner.CapturedSymbols, value)
	}
	if v, ok := inner.Body.Value.(*ast.Var); !ok || v.Symbol != value {
		t.Errorf("inner body = %#v, want the value", inner.Body.Value)
	}
}

func TestMapCapturesThunkThenMapper(t *testing.T) {
	f := newFixture(t)
	_, def := f.buildOne(buildEffectMap)
	outer := def.LocExpr.Value.(*ast.Closure)

	thunkPat := outer.Arguments[0].Pattern.Value.(*ast.AppliedTag)
	thunk := thunkPat.Arguments[0].Pattern.Value.(*ast.Identifier).Symbol
	mapper := outer.Arguments[1].Pattern.Value.(*ast.Identifier).Symbol

	inner := outer.Body.Value.(*ast.Tag).Arguments[0].Value.Value.(*ast.Closure)
	if len(inner.CapturedSymbols) != 2 ||
		inner.CapturedSymbols[0].Symbol != thunk || inner.CapturedSymbols[1].Symbol != mapper {
		t.Errorf("captured = %v, want [thunk mapper]", inner.CapturedSymbols)
	}
	call := inner.Body.Value.(*ast.Call)
	if call.Fn.Fn.Value.(*ast.Var).Symbol != mapper {
		t.Errorf("inner body does not call the mapper")
	}
	if !isThunkCall(call.Args[0].Value.Value, thunk) {
		t.Errorf("mapper argument is not `thunk {}`")
	}
}

func TestAfterHasNoSecondWrapper(t *testing.T) {
	f := newFixture(t)
	_, def := f.buildOne(buildEffectAfter)
	outer := def.LocExpr.Value.(*ast.Closure)

	call, ok := outer.Body.Value.(*ast.Call)
	if !ok {
		t.Fatalf("after body is %T, want a call", outer.Body.Value)
	}
	toEffect := outer.Arguments[1].Pattern.Value.(*ast.Identifier).Symbol
	if call.Fn.Fn.Value.(*ast.Var).Symbol != toEffect {
		t.Errorf("after does not call the continuation")
	}
}

func TestForeverShape(t *testing.T) {
	f := newFixture(t)
	sym, def := f.buildOne(buildEffectForever)

	shape, ok := MatchForever(def)
	if !ok {
		t.Fatalf("generated forever does not match its own shape")
	}
	if shape.Forever != sym {
		t.Errorf("recursive callee %v, want %v", shape.Forever, sym)
	}
	outer := def.LocExpr.Value.(*ast.Closure)
	if outer.Recursive != ast.SelfRecursive {
		t.Errorf("outer closure is %s", outer.Recursive)
	}
	if f.name(shape.Inner) != config.ForeverInnerName {
		t.Errorf("inner closure = %s, want %s", f.name(shape.Inner), config.ForeverInnerName)
	}
	if f.name(shape.Effect) != config.ForeverEffectName {
		t.Errorf("argument = %s, want %s", f.name(shape.Effect), config.ForeverEffectName)
	}
	if shape.Thunk1 == shape.Thunk2 {
		t.Errorf("thunk1 and thunk2 share a symbol")
	}
	if shape.Tag != EffectTag(f.effect) {
		t.Errorf("tag = %v, want %v", shape.Tag, EffectTag(f.effect))
	}
}

func TestForeverResultIsIndependent(t *testing.T) {
	f := newFixture(t)
	_, def := f.buildOne(buildEffectForever)

	sig, ok := def.Annotation.Signature.(typesystem.TFunc)
	if !ok || len(sig.Args) != 1 {
		t.Fatalf("signature = %v, want a one argument function", def.Annotation.Signature)
	}
	typeArg := func(t *testing.T, ty typesystem.Type) typesystem.Type {
		t.Helper()
		alias, ok := ty.(typesystem.TAlias)
		if !ok || alias.Symbol != f.effect || len(alias.TypeArguments) != 1 {
			t.Fatalf("%v is not an effect alias", ty)
		}
		return alias.TypeArguments[0].Type
	}
	in, ok := typeArg(t, sig.Args[0]).(typesystem.TVar)
	if !ok {
		t.Fatalf("argument type = %v, want a variable", typeArg(t, sig.Args[0]))
	}
	out, ok := typeArg(t, sig.Ret).(typesystem.TVar)
	if !ok {
		t.Fatalf("result type = %v, want a variable", typeArg(t, sig.Ret))
	}
	if in.Var == out.Var {
		t.Errorf("argument and result share %s", in.Var)
	}

	named := def.Annotation.IntroducedVariables.Named
	if len(named) != 2 || named[0].Var != in.Var || named[1].Var != out.Var {
		t.Errorf("named = %v, want a=%s b=%s", named, in.Var, out.Var)
	}
}

func TestMatchForeverRejectsReshapedTrees(t *testing.T) {
	inner := func(def *ast.Def) *ast.Closure {
		return def.LocExpr.Value.(*ast.Closure).Body.Value.(*ast.Tag).Arguments[0].Value.Value.(*ast.Closure)
	}
	tests := []struct {
		name   string
		mutate func(f *fixture, def *ast.Def)
	}{
		{"not recursive", func(_ *fixture, def *ast.Def) {
			def.LocExpr.Value.(*ast.Closure).Recursive = ast.NotRecursive
		}},
		{"extra capture", func(f *fixture, def *ast.Def) {
			c := inner(def)
			c.CapturedSymbols = append(c.CapturedSymbols, ast.Captured{Symbol: f.effect, Var: f.vs.Fresh()})
		}},
		{"different callee", func(f *fixture, def *ast.Def) {
			let3 := inner(def).Body.Value.(*ast.LetNonRec).Body.Value.(*ast.LetNonRec).Body.Value.(*ast.LetNonRec)
			let3.Def.LocExpr.Value.(*ast.Call).Fn.Fn.Value = ast.NewVar(f.effect)
		}},
		{"extra wrapping", func(f *fixture, def *ast.Def) {
			c := inner(def)
			c.Body = region.AtZero[ast.Expr](ast.NewTag(f.vs, EffectTag(f.effect), c.Body.Value))
		}},
		{"result not forced", func(f *fixture, def *ast.Def) {
			let3 := inner(def).Body.Value.(*ast.LetNonRec).Body.Value.(*ast.LetNonRec).Body.Value.(*ast.LetNonRec)
			let3.Body = region.AtZero[ast.Expr](&ast.EmptyRecord{})
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			_, def := f.buildOne(buildEffectForever)
			tt.mutate(f, def)
			if _, ok := MatchForever(def); ok {
				t.Errorf("reshaped forever still matches")
			}
		})
	}

	f := newFixture(t)
	_, mapDef := f.buildOne(buildEffectMap)
	if _, ok := MatchForever(mapDef); ok {
		t.Errorf("map matches the forever shape")
	}
}

// Every generated def draws distinct variables for distinct slots; the
// only shared slot is the function type, which is the def's variable.
func TestCombinatorVariablesAreFresh(t *testing.T) {
	for _, fn := range BuiltinEffectFunctions {
		t.Run(fn.Name, func(t *testing.T) {
			f := newFixture(t)
			_, def := f.buildOne(fn.Build)

			counts := map[typesystem.Variable]int{}
			for _, v := range collectVars(def, nil) {
				counts[v]++
			}
			for v, n := range counts {
				want := 1
				if v == def.ExprVar {
					want = 2
				}
				if n != want {
					t.Errorf("variable %s used %d times, want %d", v, n, want)
				}
			}
		})
	}
}

func collectVars(def *ast.Def, acc []typesystem.Variable) []typesystem.Variable {
	acc = append(acc, def.ExprVar)
	acc = collectPatternVars(def.LocPattern.Value, acc)
	acc = collectExprVars(def.LocExpr.Value, acc)
	if def.Annotation != nil {
		for _, nv := range def.Annotation.IntroducedVariables.Named {
			acc = append(acc, nv.Var)
		}
		acc = append(acc, def.Annotation.IntroducedVariables.Wildcards...)
	}
	return acc
}

func collectExprVars(e ast.Expr, acc []typesystem.Variable) []typesystem.Variable {
	switch ex := e.(type) {
	case *ast.Closure:
		acc = append(acc, ex.FunctionType, ex.ClosureType, ex.ClosureExtVar, ex.ReturnType)
		for _, c := range ex.CapturedSymbols {
			acc = append(acc, c.Var)
		}
		for _, a := range ex.Arguments {
			acc = append(acc, a.Var)
			acc = collectPatternVars(a.Pattern.Value, acc)
		}
		return collectExprVars(ex.Body.Value, acc)
	case *ast.Tag:
		acc = append(acc, ex.VariantVar, ex.ExtVar)
		for _, a := range ex.Arguments {
			acc = append(acc, a.Var)
			acc = collectExprVars(a.Value.Value, acc)
		}
	case *ast.Call:
		acc = append(acc, ex.Fn.FnVar, ex.Fn.ClosureVar, ex.Fn.RetVar)
		for _, a := range ex.Args {
			acc = append(acc, a.Var)
			acc = collectExprVars(a.Value.Value, acc)
		}
	case *ast.LetNonRec:
		acc = append(acc, ex.Var)
		acc = collectVars(ex.Def, acc)
		acc = collectExprVars(ex.Body.Value, acc)
	}
	return acc
}

func collectPatternVars(p ast.Pattern, acc []typesystem.Variable) []typesystem.Variable {
	switch pt := p.(type) {
	case *ast.AppliedTag:
		acc = append(acc, pt.WholeVar, pt.ExtVar)
		for _, a := range pt.Arguments {
			acc = append(acc, a.Var)
		}
	case *ast.RecordDestructure:
		acc = append(acc, pt.WholeVar, pt.ExtVar)
	}
	return acc
}

func TestGeneratedNameCollisionPanics(t *testing.T) {
	f := newFixture(t)
	if _, err := f.scope.Introduce(config.EffectAlwaysName, f.env, region.New(1, 1, 1, 7)); err != nil {
		t.Fatalf("introduce: %v", err)
	}
	expectInternal(t, diagnostics.ErrI004, func() {
		f.builtins()
	})
}

func TestBuildEffectAlias(t *testing.T) {
	f := newFixture(t)
	var iv ast.IntroducedVariables
	a := f.vs.Fresh()
	alias, ok := BuildEffectAlias(f.effect, EffectTag(f.effect), "a", typesystem.TVar{Var: a}, f.vs, &iv).(typesystem.TAlias)
	if !ok {
		t.Fatalf("not an alias")
	}
	if len(iv.Wildcards) != 1 || len(alias.LambdaSetVariables) != 1 {
		t.Fatalf("wildcards %v, lambda sets %v", iv.Wildcards, alias.LambdaSetVariables)
	}
	union := alias.Actual.(typesystem.TTagUnion)
	thunk := union.Tags[0].Args[0].(typesystem.TFunc)
	if thunk.Closure != (typesystem.TVar{Var: iv.Wildcards[0]}) {
		t.Errorf("thunk lambda set %v, want %s", thunk.Closure, iv.Wildcards[0])
	}
	if alias.LambdaSetVariables[0].Type != (typesystem.TVar{Var: iv.Wildcards[0]}) {
		t.Errorf("alias lambda set %v, want %s", alias.LambdaSetVariables[0].Type, iv.Wildcards[0])
	}
	if _, ok := thunk.Args[0].(typesystem.TEmptyRecord); !ok {
		t.Errorf("thunk argument %v, want {}", thunk.Args[0])
	}
	if thunk.Ret != (typesystem.TVar{Var: a}) {
		t.Errorf("thunk returns %v, want %s", thunk.Ret, a)
	}

	before := f.vs.Peek()
	BuildEffectActual(EffectTag(f.effect), typesystem.TEmptyRecord{}, f.vs)
	if f.vs.Peek() != before+1 {
		t.Errorf("BuildEffectActual allocated %d variables, want 1", f.vs.Peek()-before)
	}
}

func TestBuildHostExposedDef(t *testing.T) {
	str := typesystem.TApp{Symbol: symbols.StrStr}
	tests := []struct {
		name  string
		ident string
		args  []typesystem.Type
	}{
		{"value", "getLine", nil},
		{"unary", "putLine", []typesystem.Type{str}},
		{"ternary", "writeAt", []typesystem.Type{str, str, typesystem.TEmptyRecord{}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			sym, err := f.scope.Introduce(tt.ident, f.env, region.Zero())
			if err != nil {
				t.Fatal(err)
			}
			ann := HostAnnotation(f.effect, tt.args, typesystem.TEmptyRecord{}, f.vs)
			def := BuildHostExposedDef(f.env, f.scope, sym, tt.ident, EffectTag(f.effect), f.vs, ann)

			if def.Annotation.Signature.String() != ann.Signature.String() {
				t.Errorf("annotation changed: %s, want %s", def.Annotation.Signature, ann.Signature)
			}
			if def.PatternVars[sym] != def.ExprVar {
				t.Errorf("pattern var %s, want %s", def.PatternVars[sym], def.ExprVar)
			}

			var tag *ast.Tag
			var argSyms []symbols.Symbol
			if len(tt.args) == 0 {
				var ok bool
				tag, ok = def.LocExpr.Value.(*ast.Tag)
				if !ok {
					t.Fatalf("non-function def is %T, want a tag", def.LocExpr.Value)
				}
			} else {
				outer, ok := def.LocExpr.Value.(*ast.Closure)
				if !ok {
					t.Fatalf("function def is %T, want a closure", def.LocExpr.Value)
				}
				if outer.Name != sym || len(outer.Arguments) != len(tt.args) {
					t.Fatalf("outer closure %v with %d arguments", outer.Name, len(outer.Arguments))
				}
				for i, arg := range outer.Arguments {
					argSym := arg.Pattern.Value.(*ast.Identifier).Symbol
					want := config.ClosureArgPrefix + tt.ident + "_" + string(rune('0'+i))
					if got := f.name(argSym); got != want {
						t.Errorf("argument %d = %s, want %s", i, got, want)
					}
					argSyms = append(argSyms, argSym)
				}
				tag = outer.Body.Value.(*ast.Tag)
			}

			inner := tag.Arguments[0].Value.Value.(*ast.Closure)
			if got := f.name(inner.Name); got != config.EffectClosurePrefix+tt.ident {
				t.Errorf("inner closure = %s", got)
			}
			if len(inner.CapturedSymbols) != len(argSyms) {
				t.Fatalf("captures %d symbols, want %d", len(inner.CapturedSymbols), len(argSyms))
			}
			call := inner.Body.Value.(*ast.ForeignCall)
			if call.ForeignSymbol != "fx_"+tt.ident {
				t.Errorf("foreign symbol = %q", call.ForeignSymbol)
			}
			if len(call.Args) != len(tt.args) {
				t.Fatalf("foreign call has %d args, want %d", len(call.Args), len(tt.args))
			}
			for i, arg := range call.Args {
				if arg.Value.(*ast.Var).Symbol != argSyms[i] || inner.CapturedSymbols[i].Symbol != argSyms[i] {
					t.Errorf("argument %d is not passed through", i)
				}
			}
		})
	}
}

func TestBuildHostExposedDefDealiases(t *testing.T) {
	f := newFixture(t)
	sym, _ := f.scope.Introduce("log", f.env, region.Zero())
	fn := typesystem.TFunc{
		Args:    []typesystem.Type{typesystem.TEmptyRecord{}, typesystem.TEmptyRecord{}},
		Closure: typesystem.TVar{Var: f.vs.Fresh()},
		Ret:     typesystem.TEmptyRecord{},
	}
	ann := ast.Annotation{Signature: typesystem.TAlias{Symbol: f.effect, Actual: fn}}

	def := BuildHostExposedDef(f.env, f.scope, sym, "log", EffectTag(f.effect), f.vs, ann)
	outer, ok := def.LocExpr.Value.(*ast.Closure)
	if !ok || len(outer.Arguments) != 2 {
		t.Fatalf("aliased function type did not produce a 2-argument closure: %T", def.LocExpr.Value)
	}
	if _, ok := def.Annotation.Signature.(typesystem.TAlias); !ok {
		t.Errorf("annotation was dealiased")
	}
}
