package symbols

import (
	"errors"
	"testing"

	"github.com/funvibe/fxfront/internal/region"
)

func TestScopeIntroduceFreshSymbols(t *testing.T) {
	home := ModuleID(20)
	env := NewEnv(home, nil)
	scope := NewScope(home)

	a, err := scope.Introduce("a", env, region.Zero())
	if err != nil {
		t.Fatalf("Introduce(a) error: %v", err)
	}
	b, err := scope.Introduce("b", env, region.Zero())
	if err != nil {
		t.Fatalf("Introduce(b) error: %v", err)
	}
	if a == b {
		t.Fatalf("expected distinct symbols, both are %v", a)
	}
	if a.ModuleID() != home || b.ModuleID() != home {
		t.Errorf("symbols not homed in %d: %v %v", home, a, b)
	}
	if got, ok := scope.Lookup("b"); !ok || got != b {
		t.Errorf("Lookup(b) = %v, %v; want %v", got, ok, b)
	}
}

func TestScopeShadowing(t *testing.T) {
	home := ModuleID(20)
	env := NewEnv(home, nil)
	scope := NewScope(home)

	first := region.New(1, 1, 1, 5)
	orig, err := scope.Introduce("x", env, first)
	if err != nil {
		t.Fatalf("Introduce error: %v", err)
	}
	got, err := scope.Introduce("x", env, region.New(2, 1, 2, 5))
	var shadow *ShadowingError
	if !errors.As(err, &shadow) {
		t.Fatalf("expected ShadowingError, got %v", err)
	}
	if shadow.Original != first {
		t.Errorf("Original = %v, want %v", shadow.Original, first)
	}
	if got != orig {
		t.Errorf("shadowing returned %v, want original %v", got, orig)
	}
}

func TestScopeExposedIdentsKeepIDs(t *testing.T) {
	exposed := NewIdentIDs()
	exposed.Add("main")
	putLine := exposed.Add("putLine")

	home := ModuleID(21)
	env := NewEnv(home, exposed)
	scope := NewScope(home)

	helper, _ := scope.Introduce("helper", env, region.Zero())
	sym, _ := scope.Introduce("putLine", env, region.Zero())
	if sym.Ident != putLine {
		t.Errorf("exposed ident id = %d, want %d", sym.Ident, putLine)
	}
	if helper.Ident == putLine {
		t.Errorf("non-exposed ident reused an exposed id")
	}
}

func TestInternsBuiltins(t *testing.T) {
	in := NewInterns()
	if got := in.SymbolName(StrConcat); got != "Str.concat" {
		t.Errorf("SymbolName(StrConcat) = %q", got)
	}
	if got := in.SymbolName(NumI64); got != "Num.I64" {
		t.Errorf("SymbolName(NumI64) = %q", got)
	}
	if !ModuleList.IsBuiltin() {
		t.Errorf("List should be builtin")
	}
	id := in.Module("App")
	if id.IsBuiltin() {
		t.Errorf("user module %d reported as builtin", id)
	}
	if again := in.Module("App"); again != id {
		t.Errorf("Module(App) not stable: %d vs %d", again, id)
	}
	sym := in.Symbol("App", "main")
	if in.SymbolName(sym) != "App.main" {
		t.Errorf("SymbolName = %q", in.SymbolName(sym))
	}
}

func TestSetSorted(t *testing.T) {
	s := NewSet(Symbol{3, 1}, Symbol{1, 5}, Symbol{1, 2})
	got := s.Sorted()
	want := []Symbol{{1, 2}, {1, 5}, {3, 1}}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Sorted() = %v, want %v", got, want)
		}
	}
}
