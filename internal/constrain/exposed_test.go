package constrain

import (
	"sync"
	"testing"

	"github.com/funvibe/fxfront/internal/ast"
	"github.com/funvibe/fxfront/internal/diagnostics"
	"github.com/funvibe/fxfront/internal/symbols"
	"github.com/funvibe/fxfront/internal/typesystem"
)

func TestExposedByModuleInsertOnce(t *testing.T) {
	exposed := NewExposedByModule()
	exposed.Insert(depA, ExposedInvalid{})
	expectInternal(t, diagnostics.ErrI003, func() {
		exposed.Insert(depA, ExposedInvalid{})
	})
}

func TestExposedByModuleConcurrentReaders(t *testing.T) {
	exposed := NewExposedByModule()
	for i := 0; i < 8; i++ {
		exposed.Insert(symbols.FirstUserModule+symbols.ModuleID(i), ExposedInvalid{})
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(id symbols.ModuleID) {
			defer wg.Done()
			ref := symbols.Symbol{Module: id, Ident: 0}
			result := PreConstrainImports(home+100, symbols.NewSet(ref), nil, exposed, nil)
			if len(result.ImportedSymbols) != 1 {
				t.Errorf("module %d: got %d imports, want 1", id, len(result.ImportedSymbols))
			}
		}(symbols.FirstUserModule + symbols.ModuleID(i))
	}
	wg.Wait()

	if exposed.Len() != 8 {
		t.Errorf("Len() = %d, want 8", exposed.Len())
	}
	snap := exposed.Snapshot()
	snap[other+100] = ExposedInvalid{}
	if _, ok := exposed.Get(other + 100); ok {
		t.Errorf("snapshot aliases the store")
	}
}

func TestSignatureConstrainer(t *testing.T) {
	vs := typesystem.NewVarStore()
	annotated := ast.NewFunctionDef(sym(home, 0), &ast.EmptyRecord{}, vs.Fresh(), &ast.Annotation{
		Signature: typesystem.TEmptyRecord{},
	})
	plain := ast.NewDef(vs, ast.NewIdentPattern(sym(home, 1)), &ast.EmptyRecord{})

	decls := []ast.Declaration{&ast.Declare{Def: annotated}, &ast.Declare{Def: plain}}
	c := ConstrainModule(decls, home, SignatureConstrainer{})

	eq, ok := c.(*Eq)
	if !ok {
		t.Fatalf("got %T (%s), want a single *Eq", c, c)
	}
	if eq.Var != annotated.ExprVar {
		t.Errorf("Eq var = %s, want %s", eq.Var, annotated.ExprVar)
	}

	if _, ok := ConstrainModule(decls, home, TrueDeclConstrainer{}).(True); !ok {
		t.Errorf("TrueDeclConstrainer did not return True")
	}
}

func TestAndOf(t *testing.T) {
	eq := &Eq{Var: 1, Type: typesystem.TEmptyRecord{}}
	tests := []struct {
		name string
		in   []Constraint
		want string
	}{
		{"empty", nil, "True"},
		{"only true", []Constraint{True{}, True{}}, "True"},
		{"single", []Constraint{True{}, eq}, eq.String()},
		{"many", []Constraint{eq, eq}, "And(" + eq.String() + ", " + eq.String() + ")"},
	}
	for _, tt := range tests {
		if got := AndOf(tt.in...).String(); got != tt.want {
			t.Errorf("%s: AndOf = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestRigidAnnotationVars(t *testing.T) {
	ann := &ast.Annotation{}
	ann.IntroducedVariables.InsertWildcard(9)
	ann.IntroducedVariables.InsertNamed("a", 3)
	ann.IntroducedVariables.InsertNamed("a", 4)
	got := RigidAnnotationVars(ann)
	if len(got) != 2 || got[0] != 3 || got[1] != 9 {
		t.Errorf("RigidAnnotationVars = %v, want [v3 v9]", got)
	}
}
