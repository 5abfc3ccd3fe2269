package pipeline

import (
	"github.com/funvibe/fxfront/internal/ast"
	"github.com/funvibe/fxfront/internal/constrain"
	"github.com/funvibe/fxfront/internal/diagnostics"
	"github.com/funvibe/fxfront/internal/region"
	"github.com/funvibe/fxfront/internal/symbols"
	"github.com/funvibe/fxfront/internal/typesystem"
)

// PipelineContext carries one module through the compilation stages.
// Each stage reads what earlier stages produced and appends diagnostics.
type PipelineContext struct {
	ModuleName string
	Home       symbols.ModuleID
	Interns    *symbols.Interns
	Env        *symbols.Env
	Scope      *symbols.Scope
	VarStore   *typesystem.VarStore

	// Filled by canonicalization.
	Declarations    []ast.Declaration
	References      symbols.Set
	ImportedModules map[symbols.ModuleID]region.Region
	Exposed         symbols.Set
	Aliases         map[symbols.Symbol]typesystem.Alias

	// Filled by the import and constraint stages.
	Imports    constrain.ConstrainableImports
	RigidVars  []typesystem.Variable
	DefTypes   []constrain.DefType
	Constraint constrain.Constraint

	// Filled by solving.
	ExposedTypes constrain.ExposedModuleTypes

	// FromCache is set when ExposedTypes were loaded instead of solved.
	FromCache bool

	Errors   []*diagnostics.DiagnosticError
	Warnings []*diagnostics.DiagnosticError
}

// NewPipelineContext creates the context of module name, interning it.
func NewPipelineContext(interns *symbols.Interns, name string) *PipelineContext {
	home := interns.Module(name)
	return &PipelineContext{
		ModuleName:      name,
		Home:            home,
		Interns:         interns,
		Env:             symbols.NewEnv(home, nil),
		Scope:           symbols.NewScope(home),
		VarStore:        typesystem.NewVarStore(),
		References:      symbols.NewSet(),
		ImportedModules: make(map[symbols.ModuleID]region.Region),
		Exposed:         symbols.NewSet(),
		Aliases:         make(map[symbols.Symbol]typesystem.Alias),
	}
}

// AddError records a diagnostic, routing warnings separately.
func (ctx *PipelineContext) AddError(err *diagnostics.DiagnosticError) {
	if err.Code.IsWarning() {
		ctx.Warnings = append(ctx.Warnings, err)
		return
	}
	ctx.Errors = append(ctx.Errors, err)
}

func (ctx *PipelineContext) HasErrors() bool {
	return len(ctx.Errors) > 0
}

// Declare appends a non-recursive declaration and exposes its symbol.
func (ctx *PipelineContext) Declare(def *ast.Def) {
	ctx.Declarations = append(ctx.Declarations, &ast.Declare{Def: def})
	if sym, ok := def.Symbol(); ok {
		ctx.Exposed.Insert(sym)
	}
}

// Reference records a symbol used by the module, with builtin and foreign
// symbols resolved through the import bridge.
func (ctx *PipelineContext) Reference(sym symbols.Symbol) {
	ctx.References.Insert(sym)
}

// ReferenceType records every applied or aliased symbol occurring in t.
func (ctx *PipelineContext) ReferenceType(t typesystem.Type) {
	switch tt := t.(type) {
	case typesystem.TApp:
		ctx.Reference(tt.Symbol)
		for _, a := range tt.Args {
			ctx.ReferenceType(a)
		}
	case typesystem.TAlias:
		if tt.Symbol.Module != ctx.Home {
			ctx.Reference(tt.Symbol)
		}
		for _, a := range tt.TypeArguments {
			ctx.ReferenceType(a.Type)
		}
	case typesystem.TFunc:
		for _, a := range tt.Args {
			ctx.ReferenceType(a)
		}
		ctx.ReferenceType(tt.Ret)
	case typesystem.TRecord:
		for _, f := range tt.Fields {
			ctx.ReferenceType(f.Type)
		}
	case typesystem.TTagUnion:
		for _, tag := range tt.Tags {
			for _, a := range tag.Args {
				ctx.ReferenceType(a)
			}
		}
	}
}

// SyncIdents publishes the module's identifier table so that symbols of
// this module print by name.
func (ctx *PipelineContext) SyncIdents() {
	ctx.Interns.SetIdentIDs(ctx.Home, ctx.Env.IdentIDs)
}

// Lookup resolves module.ident among the identifiers published so far.
func (ctx *PipelineContext) Lookup(module, ident string) (symbols.Symbol, bool) {
	id, ok := ctx.Interns.LookupModule(module)
	if !ok {
		return symbols.Symbol{}, false
	}
	identID, ok := ctx.Interns.IdentIDs(id).Get(ident)
	if !ok {
		return symbols.Symbol{}, false
	}
	return symbols.Symbol{Module: id, Ident: identID}, true
}
