package pipeline

import (
	"testing"

	"github.com/funvibe/fxfront/internal/ast"
	"github.com/funvibe/fxfront/internal/diagnostics"
	"github.com/funvibe/fxfront/internal/region"
	"github.com/funvibe/fxfront/internal/symbols"
	"github.com/funvibe/fxfront/internal/typesystem"
)

func TestPipelineRunsAllStages(t *testing.T) {
	var order []string
	stage := func(name string, fail bool) Processor {
		return ProcessorFunc(func(ctx *PipelineContext) *PipelineContext {
			order = append(order, name)
			if fail {
				ctx.AddError(diagnostics.NewError(diagnostics.ErrS001, ctx.ModuleName, region.Zero(), "%s failed", name))
			}
			return ctx
		})
	}

	ctx := New(stage("first", true), stage("second", false)).Run(NewPipelineContext(symbols.NewInterns(), "Main"))

	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Errorf("stages ran as %v, want [first second]", order)
	}
	if !ctx.HasErrors() || len(ctx.Errors) != 1 {
		t.Errorf("errors = %v, want one", ctx.Errors)
	}
}

func TestAddErrorRoutesWarnings(t *testing.T) {
	ctx := NewPipelineContext(symbols.NewInterns(), "Main")
	ctx.AddError(diagnostics.NewError(diagnostics.WarnW001, "Main", region.Zero(), "unused"))

	if ctx.HasErrors() {
		t.Errorf("warning recorded as error")
	}
	if len(ctx.Warnings) != 1 {
		t.Errorf("warnings = %v, want one", ctx.Warnings)
	}
}

func TestDeclareExposesSymbol(t *testing.T) {
	ctx := NewPipelineContext(symbols.NewInterns(), "Main")
	sym, err := ctx.Scope.Introduce("main", ctx.Env, region.Zero())
	if err != nil {
		t.Fatal(err)
	}
	ctx.Declare(ast.NewFunctionDef(sym, &ast.EmptyRecord{}, ctx.VarStore.Fresh(), nil))

	if len(ctx.Declarations) != 1 || !ctx.Exposed.Contains(sym) {
		t.Errorf("declarations = %d, exposed = %v", len(ctx.Declarations), ctx.Exposed)
	}
}

func TestReferenceTypeCollectsForeignSymbols(t *testing.T) {
	interns := symbols.NewInterns()
	ctx := NewPipelineContext(interns, "Main")
	local, err := ctx.Scope.Introduce("Local", ctx.Env, region.Zero())
	if err != nil {
		t.Fatal(err)
	}
	foreign := interns.Symbol("Dep", "Box")

	str := typesystem.TApp{Symbol: symbols.StrStr}
	typ := typesystem.TFunc{
		Args: []typesystem.Type{
			typesystem.TApp{Symbol: symbols.ListList, Args: []typesystem.Type{str}},
			typesystem.TAlias{Symbol: foreign, Actual: typesystem.TEmptyRecord{}},
		},
		Ret: typesystem.TAlias{Symbol: local, Actual: typesystem.TEmptyRecord{}},
	}
	ctx.ReferenceType(typ)

	for _, want := range []symbols.Symbol{symbols.StrStr, symbols.ListList, foreign} {
		if !ctx.References.Contains(want) {
			t.Errorf("missing reference %v", want)
		}
	}
	if ctx.References.Contains(local) {
		t.Errorf("home alias recorded as a reference")
	}
}

func TestSyncIdentsPublishesNames(t *testing.T) {
	interns := symbols.NewInterns()
	ctx := NewPipelineContext(interns, "Main")
	sym, err := ctx.Scope.Introduce("main", ctx.Env, region.Zero())
	if err != nil {
		t.Fatal(err)
	}
	ctx.SyncIdents()
	if got := interns.SymbolName(sym); got != "Main.main" {
		t.Errorf("SymbolName = %q, want Main.main", got)
	}
}

func TestLookupPublishedIdent(t *testing.T) {
	interns := symbols.NewInterns()
	dep := NewPipelineContext(interns, "Dep")
	sym, err := dep.Scope.Introduce("helper", dep.Env, region.Zero())
	if err != nil {
		t.Fatal(err)
	}

	main := NewPipelineContext(interns, "Main")
	if _, ok := main.Lookup("Dep", "helper"); ok {
		t.Fatalf("found an identifier before it was published")
	}
	dep.SyncIdents()
	got, ok := main.Lookup("Dep", "helper")
	if !ok || got != sym {
		t.Errorf("Lookup = %v, %v; want %v", got, ok, sym)
	}
	if _, ok := main.Lookup("Missing", "helper"); ok {
		t.Errorf("found an identifier of an unknown module")
	}
}
