package constrain

import (
	"github.com/funvibe/fxfront/internal/builtins"
	"github.com/funvibe/fxfront/internal/diagnostics"
	"github.com/funvibe/fxfront/internal/region"
	"github.com/funvibe/fxfront/internal/symbols"
	"github.com/funvibe/fxfront/internal/typesystem"
)

// Import is a symbol from another module together with its exported type.
type Import struct {
	LocSymbol  region.Loc[symbols.Symbol]
	SolvedType typesystem.SolvedType
}

// HackyImport lets the importer splice the exporter's type graph directly
// instead of rebuilding it from the solved type. Only a solver that shares
// the exporter's variable numbering can use it; the constraint built here
// always goes through the solved type. The session reports how many imports
// had a direct path.
type HackyImport struct {
	StorageSubs *typesystem.StorageSubs
	LocSymbol   region.Loc[symbols.Symbol]
	Variable    typesystem.Variable
}

// ConstrainableImports is the result of the locked part of import handling.
// It owns everything it refers to and can be moved to another goroutine.
type ConstrainableImports struct {
	ImportedSymbols []Import
	HackySymbols    []HackyImport
	ImportedAliases map[symbols.Symbol]typesystem.Alias
	// UnusedImports are the imported modules no reference resolved to.
	UnusedImports map[symbols.ModuleID]region.Region
}

// PreConstrainImports resolves every referenced symbol to the type it was
// exported with. It holds the lock of exposed for the whole scan, which is
// why it is split from ConstrainImports.
//
// Symbols of home are skipped. Builtin symbols are read from stdlib; a
// builtin that is neither a value, a type constructor nor an alias panics
// with an internal error, as does a module that was never published.
func PreConstrainImports(
	home symbols.ModuleID,
	references symbols.Set,
	importedModules map[symbols.ModuleID]region.Region,
	exposed *ExposedByModule,
	stdlib *builtins.StdLib,
) ConstrainableImports {
	result := ConstrainableImports{
		ImportedSymbols: make([]Import, 0, len(references)),
		HackySymbols:    make([]HackyImport, 0, len(references)),
		ImportedAliases: make(map[symbols.Symbol]typesystem.Alias),
		UnusedImports:   make(map[symbols.ModuleID]region.Region, len(importedModules)),
	}
	for id, r := range importedModules {
		result.UnusedImports[id] = r
	}

	exposed.WithExclusive(func(modules map[symbols.ModuleID]ExposedModuleTypes) {
		for _, sym := range references.Sorted() {
			moduleID := sym.ModuleID()
			delete(result.UnusedImports, moduleID)

			switch {
			case moduleID.IsBuiltin():
				importBuiltin(&result, sym, stdlib)
			case moduleID != home:
				importExposed(&result, sym, modules)
			}
		}
	})

	return result
}

func importBuiltin(result *ConstrainableImports, sym symbols.Symbol, stdlib *builtins.StdLib) {
	if bt, ok := stdlib.Types[sym]; ok {
		result.ImportedSymbols = append(result.ImportedSymbols, Import{
			LocSymbol:  region.At(bt.Region, sym),
			SolvedType: bt.Type,
		})
		return
	}
	if !stdlib.IsZeroConstraint(sym) {
		panic(diagnostics.NewInternalError(diagnostics.ErrI001,
			"could not find %s in builtin types or builtin aliases", sym))
	}
}

func importExposed(result *ConstrainableImports, sym symbols.Symbol, modules map[symbols.ModuleID]ExposedModuleTypes) {
	moduleID := sym.ModuleID()
	// TODO: use the region of the declaration in its home module once
	// exposed types record it.
	loc := region.AtZero(sym)

	entry, ok := modules[moduleID]
	if !ok {
		panic(diagnostics.NewInternalError(diagnostics.ErrI002,
			"could not find module %d in exposed types; modules were solved out of dependency order", moduleID))
	}

	switch exp := entry.(type) {
	case ExposedInvalid:
		result.ImportedSymbols = append(result.ImportedSymbols, Import{
			LocSymbol:  loc,
			SolvedType: typesystem.SolvedErroneous{Problem: typesystem.ProblemInvalidModule},
		})
	case *ExposedValid:
		solved, ok := exp.SolvedTypes[sym]
		if !ok {
			// exposed but never successfully defined
			return
		}
		// Later modules overwrite aliases of the same symbol.
		for aliasSym, alias := range exp.Aliases {
			result.ImportedAliases[aliasSym] = alias
		}
		result.ImportedSymbols = append(result.ImportedSymbols, Import{LocSymbol: loc, SolvedType: solved})

		variable, ok := exp.StoredVarFor(sym)
		if !ok {
			panic(diagnostics.NewInternalError(diagnostics.ErrI005,
				"module %d exposes %s without a stored variable", moduleID, sym))
		}
		result.HackySymbols = append(result.HackySymbols, HackyImport{
			StorageSubs: exp.StorageSubs.Clone(),
			LocSymbol:   loc,
			Variable:    variable,
		})
	}
}

// ConstrainImports translates imports into local types. Every free variable
// of an imported type becomes rigid: named ones first, then wildcards, then
// the ones that lost their name during solving, per import in order.
func ConstrainImports(imports []Import, vs *typesystem.VarStore) ([]typesystem.Variable, []DefType) {
	var rigidVars []typesystem.Variable
	defTypes := make([]DefType, 0, len(imports))

	for _, imp := range imports {
		// Alias definitions are not values.
		if alias, ok := imp.SolvedType.(typesystem.SolvedAlias); ok && alias.Symbol == imp.LocSymbol.Value {
			continue
		}

		var fv typesystem.FreeVars
		typ := typesystem.ToType(imp.SolvedType, &fv, vs)
		defTypes = append(defTypes, DefType{
			Symbol: imp.LocSymbol.Value,
			Type:   region.At(imp.LocSymbol.Region, typ),
		})
		rigidVars = append(rigidVars, fv.All()...)
	}

	return rigidVars, defTypes
}

// IntroduceBuiltinImports wraps body in a let-import of imports.
func IntroduceBuiltinImports(imports []Import, body Constraint, vs *typesystem.VarStore) Constraint {
	rigidVars, defTypes := ConstrainImports(imports, vs)
	return &LetImport{RigidVars: rigidVars, DefTypes: defTypes, Body: body}
}

// UnusedImportWarnings turns the unused imports into W001 warnings, in
// module order.
func UnusedImportWarnings(moduleName string, unused map[symbols.ModuleID]region.Region, names func(symbols.ModuleID) string) []*diagnostics.DiagnosticError {
	out := make([]*diagnostics.DiagnosticError, 0, len(unused))
	for _, id := range symbols.SortModuleIDs(unused) {
		out = append(out, diagnostics.NewError(diagnostics.WarnW001, moduleName, unused[id],
			"module %s is imported but nothing from it is used", names(id)))
	}
	return out
}
