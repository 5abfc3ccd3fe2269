package session

import (
	"github.com/funvibe/fxfront/internal/ast"
	"github.com/funvibe/fxfront/internal/constrain"
	"github.com/funvibe/fxfront/internal/pipeline"
	"github.com/funvibe/fxfront/internal/symbols"
	"github.com/funvibe/fxfront/internal/typesystem"
)

// Solver solves a module's constraint and produces the types it exposes.
// It runs concurrently for independent modules and must not touch state
// shared between modules.
type Solver interface {
	Solve(ctx *pipeline.PipelineContext) (constrain.ExposedModuleTypes, error)
}

// AnnotationSolver trusts signatures: every exposed, annotated def is
// exported with its annotation. Unannotated defs are not exported.
type AnnotationSolver struct{}

func (AnnotationSolver) Solve(ctx *pipeline.PipelineContext) (constrain.ExposedModuleTypes, error) {
	defs := make(map[symbols.Symbol]*ast.Def)
	for _, decl := range ctx.Declarations {
		for _, def := range decl.Defs() {
			if sym, ok := def.Symbol(); ok && def.Annotation != nil {
				defs[sym] = def
			}
		}
	}

	valid := &constrain.ExposedValid{
		SolvedTypes: make(map[symbols.Symbol]typesystem.SolvedType),
		Aliases:     make(map[symbols.Symbol]typesystem.Alias, len(ctx.Aliases)),
		StorageSubs: typesystem.NewStorageSubs(),
	}
	for sym, alias := range ctx.Aliases {
		valid.Aliases[sym] = alias
	}

	for _, sym := range ctx.Exposed.Sorted() {
		def, ok := defs[sym]
		if !ok {
			continue
		}
		solved := exportAnnotation(def.Annotation)
		valid.SolvedTypes[sym] = solved
		valid.StoredVarsBySymbol = append(valid.StoredVarsBySymbol, constrain.StoredVar{Symbol: sym, Variable: def.ExprVar})
		valid.StorageSubs.Insert(def.ExprVar, solved)
	}
	return valid, nil
}

func exportAnnotation(ann *ast.Annotation) typesystem.SolvedType {
	export := typesystem.Export{
		Named:     make(map[typesystem.Variable]string, len(ann.IntroducedVariables.Named)),
		Wildcards: make(map[typesystem.Variable]bool, len(ann.IntroducedVariables.Wildcards)),
	}
	for _, nv := range ann.IntroducedVariables.Named {
		export.Named[nv.Var] = nv.Name
	}
	for _, w := range ann.IntroducedVariables.Wildcards {
		export.Wildcards[w] = true
	}
	return export.ToSolved(ann.Signature)
}
