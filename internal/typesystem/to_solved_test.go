package typesystem

import (
	"testing"

	"github.com/funvibe/fxfront/internal/symbols"
)

func TestExportToSolved(t *testing.T) {
	a, clo, other := Variable(80), Variable(81), Variable(82)
	typ := TFunc{
		Args:    []Type{TVar{Var: a}, TVar{Var: other}},
		Closure: TVar{Var: clo},
		Ret:     TApp{Symbol: symbols.ListList, Args: []Type{TVar{Var: a}}},
	}
	export := Export{
		Named:     map[Variable]string{a: "a"},
		Wildcards: map[Variable]bool{clo: true},
	}

	got := export.ToSolved(typ)
	want := SolvedFunc{
		Args:    []SolvedType{SolvedRigid{Name: "a"}, SolvedFlex{ID: 82}},
		Closure: SolvedWildcard{},
		Ret:     SolvedApply{Symbol: symbols.ListList, Args: []SolvedType{SolvedRigid{Name: "a"}}},
	}
	if got.String() != want.String() {
		t.Fatalf("ToSolved = %s, want %s", got, want)
	}
}

func TestExportRoundTripsThroughToType(t *testing.T) {
	a, clo := Variable(80), Variable(81)
	typ := TFunc{
		Args:    []Type{TVar{Var: a}},
		Closure: TVar{Var: clo},
		Ret:     TVar{Var: a},
	}
	solved := Export{Named: map[Variable]string{a: "a"}, Wildcards: map[Variable]bool{clo: true}}.ToSolved(typ)

	var fv FreeVars
	back := ToType(solved, &fv, NewVarStore())
	fn, ok := back.(TFunc)
	if !ok {
		t.Fatalf("ToType = %T, want TFunc", back)
	}
	if fn.Args[0] != fn.Ret {
		t.Errorf("argument and result lost their shared variable: %s", fn)
	}
	if len(fv.NamedVars) != 1 || len(fv.Wildcards) != 1 || len(fv.UnnamedVars) != 0 {
		t.Errorf("free vars = %+v", fv)
	}
}
