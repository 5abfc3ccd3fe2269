package session

import (
	"errors"

	"github.com/funvibe/fxfront/internal/builtins"
	"github.com/funvibe/fxfront/internal/constrain"
	"github.com/funvibe/fxfront/internal/diagnostics"
	"github.com/funvibe/fxfront/internal/pipeline"
	"github.com/funvibe/fxfront/internal/region"
)

// CanonicalizeProcessor registers the module's imports and runs its
// canonicalizer. A failing canonicalizer leaves the module invalid.
type CanonicalizeProcessor struct {
	Module Module
}

func (p *CanonicalizeProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	for _, name := range sortedImports(p.Module.Imports) {
		ctx.ImportedModules[ctx.Interns.Module(name)] = p.Module.Imports[name]
	}
	if p.Module.Canonicalize != nil {
		if err := p.Module.Canonicalize(ctx); err != nil {
			var diag *diagnostics.DiagnosticError
			if !errors.As(err, &diag) {
				diag = diagnostics.NewError(diagnostics.ErrS001, ctx.ModuleName, region.Zero(), "%v", err)
			}
			ctx.AddError(diag)
		}
	}
	ctx.SyncIdents()
	return ctx
}

// ImportsProcessor resolves referenced foreign symbols against the shared
// exposed types. It locks the store and must run after every dependency
// of the module was solved.
type ImportsProcessor struct {
	Exposed *constrain.ExposedByModule
	StdLib  *builtins.StdLib
}

func (p *ImportsProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	ctx.Imports = constrain.PreConstrainImports(ctx.Home, ctx.References, ctx.ImportedModules, p.Exposed, p.StdLib)
	for _, w := range constrain.UnusedImportWarnings(ctx.ModuleName, ctx.Imports.UnusedImports, ctx.Interns.ModuleName) {
		ctx.AddError(w)
	}
	return ctx
}

// ConstrainProcessor builds the module constraint, wrapping the
// declarations' constraint in the let-import of the resolved imports.
type ConstrainProcessor struct {
	Constrainer constrain.DeclConstrainer
}

func (p *ConstrainProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	body := constrain.ConstrainModule(ctx.Declarations, ctx.Home, p.Constrainer)
	c := constrain.IntroduceBuiltinImports(ctx.Imports.ImportedSymbols, body, ctx.VarStore)
	if li, ok := c.(*constrain.LetImport); ok {
		ctx.RigidVars = li.RigidVars
		ctx.DefTypes = li.DefTypes
	}
	ctx.Constraint = c
	return ctx
}

// SolveProcessor turns the constraint into exposed types. Modules with
// errors are exposed as invalid so that importers can keep going.
type SolveProcessor struct {
	Solver Solver
}

func (p *SolveProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.HasErrors() {
		ctx.ExposedTypes = constrain.ExposedInvalid{}
		return ctx
	}
	exposed, err := p.Solver.Solve(ctx)
	if err != nil {
		ctx.AddError(diagnostics.NewError(diagnostics.ErrS001, ctx.ModuleName, region.Zero(), "%v", err))
		exposed = constrain.ExposedInvalid{}
	}
	ctx.ExposedTypes = exposed
	return ctx
}
