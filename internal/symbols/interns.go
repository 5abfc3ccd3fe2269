package symbols

import (
	"fmt"
	"sync"
)

// IdentIDs interns identifier names for one module.
// Add always allocates a new id; GetOrInsert reuses the first id with that name.
type IdentIDs struct {
	byName map[string]IdentID
	names  []string
}

func NewIdentIDs() *IdentIDs {
	return &IdentIDs{byName: make(map[string]IdentID)}
}

// Add allocates a fresh id for name, even if the name is already known.
func (ids *IdentIDs) Add(name string) IdentID {
	id := IdentID(len(ids.names))
	ids.names = append(ids.names, name)
	if _, ok := ids.byName[name]; !ok {
		ids.byName[name] = id
	}
	return id
}

func (ids *IdentIDs) GetOrInsert(name string) IdentID {
	if id, ok := ids.byName[name]; ok {
		return id
	}
	return ids.Add(name)
}

func (ids *IdentIDs) Get(name string) (IdentID, bool) {
	if ids == nil {
		return 0, false
	}
	id, ok := ids.byName[name]
	return id, ok
}

func (ids *IdentIDs) Name(id IdentID) (string, bool) {
	if int(id) >= len(ids.names) {
		return "", false
	}
	return ids.names[id], true
}

func (ids *IdentIDs) Len() int {
	return len(ids.names)
}

// Clone returns an independent copy.
func (ids *IdentIDs) Clone() *IdentIDs {
	out := &IdentIDs{
		byName: make(map[string]IdentID, len(ids.byName)),
		names:  append([]string(nil), ids.names...),
	}
	for k, v := range ids.byName {
		out.byName[k] = v
	}
	return out
}

// ModuleIDs interns module names for a session.
type ModuleIDs struct {
	byName map[string]ModuleID
	names  map[ModuleID]string
	next   ModuleID
}

func NewModuleIDs() *ModuleIDs {
	m := &ModuleIDs{
		byName: make(map[string]ModuleID),
		names:  make(map[ModuleID]string),
		next:   FirstUserModule,
	}
	for _, b := range builtinModules {
		m.byName[b.name] = b.id
		m.names[b.id] = b.name
	}
	return m
}

func (m *ModuleIDs) GetOrInsert(name string) ModuleID {
	if id, ok := m.byName[name]; ok {
		return id
	}
	id := m.next
	m.next++
	m.byName[name] = id
	m.names[id] = name
	return id
}

func (m *ModuleIDs) Get(name string) (ModuleID, bool) {
	id, ok := m.byName[name]
	return id, ok
}

func (m *ModuleIDs) Name(id ModuleID) (string, bool) {
	name, ok := m.names[id]
	return name, ok
}

// Interns holds every name known to a compilation session.
// Safe for concurrent use: modules compiled in parallel register
// their identifiers through it.
type Interns struct {
	mu      sync.RWMutex
	modules *ModuleIDs
	idents  map[ModuleID]*IdentIDs
}

// NewInterns creates interns pre-populated with the builtin modules.
func NewInterns() *Interns {
	in := &Interns{
		modules: NewModuleIDs(),
		idents:  make(map[ModuleID]*IdentIDs),
	}
	for _, b := range builtinModules {
		ids := NewIdentIDs()
		for _, name := range b.idents {
			ids.Add(name)
		}
		in.idents[b.id] = ids
	}
	return in
}

// Module interns a module name and returns its id.
func (in *Interns) Module(name string) ModuleID {
	in.mu.Lock()
	defer in.mu.Unlock()
	id := in.modules.GetOrInsert(name)
	if _, ok := in.idents[id]; !ok {
		in.idents[id] = NewIdentIDs()
	}
	return id
}

func (in *Interns) LookupModule(name string) (ModuleID, bool) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return in.modules.Get(name)
}

func (in *Interns) ModuleName(id ModuleID) string {
	in.mu.RLock()
	defer in.mu.RUnlock()
	if name, ok := in.modules.Name(id); ok {
		return name
	}
	return fmt.Sprintf("#module%d", id)
}

// Symbol interns module.ident, reusing the first id registered for ident.
func (in *Interns) Symbol(module, ident string) Symbol {
	id := in.Module(module)
	in.mu.Lock()
	defer in.mu.Unlock()
	return Symbol{Module: id, Ident: in.idents[id].GetOrInsert(ident)}
}

// SetIdentIDs replaces the identifier table of a module, typically once a
// module finished canonicalization.
func (in *Interns) SetIdentIDs(id ModuleID, ids *IdentIDs) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.idents[id] = ids.Clone()
}

// IdentIDs returns a copy of the identifier table of a module.
func (in *Interns) IdentIDs(id ModuleID) *IdentIDs {
	in.mu.RLock()
	defer in.mu.RUnlock()
	if ids, ok := in.idents[id]; ok {
		return ids.Clone()
	}
	return NewIdentIDs()
}

// IdentName returns the bare identifier of a symbol.
func (in *Interns) IdentName(sym Symbol) string {
	in.mu.RLock()
	defer in.mu.RUnlock()
	if ids, ok := in.idents[sym.Module]; ok {
		if name, ok := ids.Name(sym.Ident); ok {
			return name
		}
	}
	return fmt.Sprintf("#ident%d", sym.Ident)
}

// SymbolName renders Module.ident.
func (in *Interns) SymbolName(sym Symbol) string {
	return in.ModuleName(sym.Module) + "." + in.IdentName(sym)
}
