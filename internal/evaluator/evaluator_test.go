package evaluator

import (
	"context"
	"strings"
	"testing"

	"github.com/funvibe/fxfront/internal/ast"
	"github.com/funvibe/fxfront/internal/effects"
	"github.com/funvibe/fxfront/internal/region"
	"github.com/funvibe/fxfront/internal/symbols"
	"github.com/funvibe/fxfront/internal/typesystem"
)

type effectModule struct {
	scope *symbols.Scope
	env   *Environment
	eval  *Evaluator
	tag   typesystem.TagName
}

func loadEffectModule(t *testing.T, loopForever bool, hosts ...string) *effectModule {
	t.Helper()
	interns := symbols.NewInterns()
	home := interns.Module("Effect")
	symEnv := symbols.NewEnv(home, nil)
	scope := symbols.NewScope(home)
	vs := typesystem.NewVarStore()

	effect, err := scope.Introduce("Task", symEnv, region.Zero())
	if err != nil {
		t.Fatal(err)
	}
	decls := effects.BuildEffectBuiltins(symEnv, scope, effect, vs, symbols.NewSet(), nil)

	for _, host := range hosts {
		sym, err := scope.Introduce(host, symEnv, region.Zero())
		if err != nil {
			t.Fatal(err)
		}
		var args []typesystem.Type
		if strings.HasPrefix(host, "put") {
			args = []typesystem.Type{typesystem.TApp{Symbol: symbols.StrStr}}
		}
		ann := effects.HostAnnotation(effect, args, typesystem.TEmptyRecord{}, vs)
		def := effects.BuildHostExposedDef(symEnv, scope, sym, host, effects.EffectTag(effect), vs, ann)
		decls = append(decls, &ast.Declare{Def: def})
	}

	eval := New()
	eval.LoopForever = loopForever
	eval.Names = interns.SymbolName
	env := NewEnvironment()
	if res := eval.LoadDeclarations(decls, env); isError(res) {
		t.Fatalf("load: %s", res.Inspect())
	}
	return &effectModule{scope: scope, env: env, eval: eval, tag: effects.EffectTag(effect)}
}

func (m *effectModule) fn(t *testing.T, name string) Object {
	t.Helper()
	sym, ok := m.scope.Lookup(name)
	if !ok {
		t.Fatalf("%s is not in scope", name)
	}
	obj, ok := m.env.Get(sym)
	if !ok {
		t.Fatalf("%s is not bound", name)
	}
	return obj
}

func (m *effectModule) call(t *testing.T, name string, args ...Object) Object {
	t.Helper()
	res := m.eval.Apply(m.fn(t, name), args...)
	if isError(res) {
		t.Fatalf("%s: %s", name, res.Inspect())
	}
	return res
}

func (m *effectModule) force(t *testing.T, effect Object) Object {
	t.Helper()
	res, err := m.eval.Run(effect)
	if err != nil {
		t.Fatal(err)
	}
	return res
}

func builtin(name string, fn func(args ...Object) Object) *Builtin {
	return &Builtin{Name: name, Fn: func(_ *Evaluator, args ...Object) Object { return fn(args...) }}
}

func intValue(t *testing.T, obj Object) int64 {
	t.Helper()
	i, ok := obj.(*Integer)
	if !ok {
		t.Fatalf("got %s, want an integer", obj.Inspect())
	}
	return i.Value
}

func TestAlways(t *testing.T) {
	m := loadEffectModule(t, true)
	values := []Object{&Integer{Value: 42}, &String{Value: "hi"}, UNIT}
	for _, v := range values {
		effect := m.call(t, "always", v)
		if tag, ok := effect.(*TagValue); !ok || tag.Name != m.tag {
			t.Fatalf("always %s = %s, want an effect", v.Inspect(), effect.Inspect())
		}
		if got := m.force(t, effect); got != v {
			t.Errorf("forcing always %s = %s", v.Inspect(), got.Inspect())
		}
	}
}

func TestMap(t *testing.T) {
	m := loadEffectModule(t, true)
	effect := m.call(t, "always", &Integer{Value: 20})
	double := builtin("double", func(args ...Object) Object {
		return &Integer{Value: args[0].(*Integer).Value * 2}
	})

	mapped := m.call(t, "map", effect, double)
	if got := intValue(t, m.force(t, mapped)); got != 40 {
		t.Errorf("map = %d, want 40", got)
	}
}

func TestMapIsLazy(t *testing.T) {
	m := loadEffectModule(t, true)
	calls := 0
	counter := builtin("count", func(args ...Object) Object {
		calls++
		return args[0]
	})
	mapped := m.call(t, "map", m.call(t, "always", UNIT), counter)
	if calls != 0 {
		t.Fatalf("mapper ran before the effect was forced")
	}
	m.force(t, mapped)
	m.force(t, mapped)
	if calls != 2 {
		t.Errorf("mapper ran %d times, want 2", calls)
	}
}

func TestAfter(t *testing.T) {
	m := loadEffectModule(t, true)
	always := m.fn(t, "always")
	var seen int64
	cont := builtin("cont", func(args ...Object) Object {
		seen = args[0].(*Integer).Value
		return m.eval.Apply(always, &Integer{Value: seen + 1})
	})

	chained := m.call(t, "after", m.call(t, "always", &Integer{Value: 7}), cont)
	if got := intValue(t, m.force(t, chained)); got != 8 {
		t.Errorf("after = %d, want 8", got)
	}
	if seen != 7 {
		t.Errorf("continuation saw %d, want 7", seen)
	}
}

func TestHostExposedDefs(t *testing.T) {
	m := loadEffectModule(t, true, "putLine", "getLine")
	var out []string
	m.eval.RegisterHost("fx_putLine", func(args ...Object) Object {
		out = append(out, args[0].(*String).Value)
		return UNIT
	})
	m.eval.RegisterHost("fx_getLine", func(args ...Object) Object {
		if len(args) != 0 {
			return newError("getLine takes no arguments")
		}
		return &String{Value: "input"}
	})

	put := m.call(t, "putLine", &String{Value: "hello"})
	if len(out) != 0 {
		t.Fatalf("host ran before the effect was forced")
	}
	m.force(t, put)
	if len(out) != 1 || out[0] != "hello" {
		t.Errorf("host saw %v, want [hello]", out)
	}

	got := m.force(t, m.fn(t, "getLine"))
	if s, ok := got.(*String); !ok || s.Value != "input" {
		t.Errorf("getLine = %s", got.Inspect())
	}
}

func TestMissingHostFunction(t *testing.T) {
	m := loadEffectModule(t, true, "getLine")
	if _, err := m.eval.Run(m.fn(t, "getLine")); err == nil || !strings.Contains(err.Error(), "fx_getLine") {
		t.Errorf("err = %v, want a missing host function error", err)
	}
}

func TestForever(t *testing.T) {
	tests := []struct {
		name string
		loop bool
		runs int
	}{
		{"loop", true, 100000},
		{"recursive body", false, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := loadEffectModule(t, tt.loop, "tick")
			ticks := 0
			m.eval.RegisterHost("fx_tick", func(args ...Object) Object {
				ticks++
				if ticks == tt.runs {
					return newError("stop")
				}
				return UNIT
			})

			loop := m.call(t, "forever", m.fn(t, "tick"))
			_, err := m.eval.Run(loop)
			if err == nil || !strings.Contains(err.Error(), "stop") {
				t.Fatalf("err = %v, want stop", err)
			}
			if ticks != tt.runs {
				t.Errorf("effect ran %d times, want %d", ticks, tt.runs)
			}
		})
	}
}

func TestForeverIsRecognized(t *testing.T) {
	m := loadEffectModule(t, true)
	if _, ok := m.fn(t, "forever").(*Builtin); !ok {
		t.Errorf("forever was not replaced by a loop")
	}
	m = loadEffectModule(t, false)
	if _, ok := m.fn(t, "forever").(*Function); !ok {
		t.Errorf("forever should stay a closure when loops are disabled")
	}
}

func TestForeverHonoursContext(t *testing.T) {
	m := loadEffectModule(t, true, "tick")
	ctx, cancel := context.WithCancel(context.Background())
	m.eval.Context = ctx
	ticks := 0
	m.eval.RegisterHost("fx_tick", func(args ...Object) Object {
		ticks++
		if ticks == 3 {
			cancel()
		}
		return UNIT
	})

	_, err := m.eval.Run(m.call(t, "forever", m.fn(t, "tick")))
	if err == nil || !strings.Contains(err.Error(), "canceled") {
		t.Errorf("err = %v, want cancellation", err)
	}
	if ticks != 3 {
		t.Errorf("ticks = %d, want 3", ticks)
	}
}

func TestForceRejectsNonEffects(t *testing.T) {
	e := New()
	if res := e.Force(&Integer{Value: 1}); !isError(res) {
		t.Errorf("Force(1) = %s, want error", res.Inspect())
	}
}
