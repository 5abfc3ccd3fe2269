package constrain

import (
	"sync"

	"github.com/funvibe/fxfront/internal/diagnostics"
	"github.com/funvibe/fxfront/internal/symbols"
	"github.com/funvibe/fxfront/internal/typesystem"
)

// ExposedModuleTypes is what a solved module publishes to its importers.
// It is either invalid (the module failed) or carries the solved types.
type ExposedModuleTypes interface {
	isExposed()
}

// ExposedInvalid marks a module that failed; importers get erroneous types.
type ExposedInvalid struct{}

// StoredVar is the exporter's variable for an exposed symbol within its
// StorageSubs.
type StoredVar struct {
	Symbol   symbols.Symbol
	Variable typesystem.Variable
}

// ExposedValid carries the solved signatures of a module.
type ExposedValid struct {
	// SolvedTypes only has entries for exposed symbols that were
	// successfully solved.
	SolvedTypes        map[symbols.Symbol]typesystem.SolvedType
	Aliases            map[symbols.Symbol]typesystem.Alias
	StoredVarsBySymbol []StoredVar
	StorageSubs        *typesystem.StorageSubs
}

func (ExposedInvalid) isExposed() {}
func (*ExposedValid) isExposed()  {}

// StoredVarFor finds the stored variable of sym.
func (e *ExposedValid) StoredVarFor(sym symbols.Symbol) (typesystem.Variable, bool) {
	for _, sv := range e.StoredVarsBySymbol {
		if sv.Symbol == sym {
			return sv.Variable, true
		}
	}
	return 0, false
}

// ExposedByModule maps module ids to their exposed types. Entries are
// written once, when a module finishes solving, and only read afterwards.
// All access goes through the mutex.
type ExposedByModule struct {
	mu      sync.Mutex
	modules map[symbols.ModuleID]ExposedModuleTypes
}

func NewExposedByModule() *ExposedByModule {
	return &ExposedByModule{modules: make(map[symbols.ModuleID]ExposedModuleTypes)}
}

// Insert publishes the exposed types of id. Publishing twice is a compiler bug.
func (e *ExposedByModule) Insert(id symbols.ModuleID, types ExposedModuleTypes) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.modules[id]; ok {
		panic(diagnostics.NewInternalError(diagnostics.ErrI003,
			"exposed types for module %d were already recorded", id))
	}
	e.modules[id] = types
}

func (e *ExposedByModule) Get(id symbols.ModuleID) (ExposedModuleTypes, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	t, ok := e.modules[id]
	return t, ok
}

func (e *ExposedByModule) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.modules)
}

// WithExclusive runs fn while holding the lock. fn must not retain m.
func (e *ExposedByModule) WithExclusive(fn func(m map[symbols.ModuleID]ExposedModuleTypes)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(e.modules)
}

// Snapshot returns a shallow copy of the table.
func (e *ExposedByModule) Snapshot() map[symbols.ModuleID]ExposedModuleTypes {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make(map[symbols.ModuleID]ExposedModuleTypes, len(e.modules))
	for id, t := range e.modules {
		out[id] = t
	}
	return out
}
