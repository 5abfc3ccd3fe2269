// symbols - module and identifier interning, scoped symbol introduction
//
// This package is split into focused files:
// - symbols.go: ModuleID, IdentID, Symbol and ordering helpers
// - interns.go: ModuleIDs/IdentIDs interners and the session-wide Interns
// - builtin.go: fixed ids of the builtin modules and their identifiers
// - scope.go: lexical scope (Scope.Introduce) with shadowing detection

package symbols

import (
	"fmt"
	"sort"
)

// ModuleID identifies a compilation unit within a session.
type ModuleID uint32

// IdentID identifies an identifier within its home module.
type IdentID uint32

// Symbol is a globally unique name: an identifier qualified by its home module.
type Symbol struct {
	Module ModuleID
	Ident  IdentID
}

// ModuleID returns the home module of the symbol.
func (s Symbol) ModuleID() ModuleID {
	return s.Module
}

func (s Symbol) String() string {
	return fmt.Sprintf("`%d.%d`", s.Module, s.Ident)
}

// Less orders symbols by module, then by identifier.
func (s Symbol) Less(other Symbol) bool {
	if s.Module != other.Module {
		return s.Module < other.Module
	}
	return s.Ident < other.Ident
}

// IsBuiltin reports whether the module is one of the fixed builtin modules.
func (m ModuleID) IsBuiltin() bool {
	return m < FirstUserModule
}

// Set is an unordered collection of symbols.
type Set map[Symbol]struct{}

// NewSet builds a set from the given symbols.
func NewSet(syms ...Symbol) Set {
	s := make(Set, len(syms))
	for _, sym := range syms {
		s[sym] = struct{}{}
	}
	return s
}

// NewSetFromMap builds a set from the keys of a symbol-keyed map.
func NewSetFromMap[V any](m map[Symbol]V) Set {
	s := make(Set, len(m))
	for sym := range m {
		s[sym] = struct{}{}
	}
	return s
}

func (s Set) Insert(sym Symbol) {
	s[sym] = struct{}{}
}

func (s Set) Contains(sym Symbol) bool {
	_, ok := s[sym]
	return ok
}

// Sorted returns the members of the set in deterministic order.
func (s Set) Sorted() []Symbol {
	out := make([]Symbol, 0, len(s))
	for sym := range s {
		out = append(out, sym)
	}
	SortSymbols(out)
	return out
}

// SortSymbols sorts in place by (module, ident).
func SortSymbols(syms []Symbol) {
	sort.Slice(syms, func(i, j int) bool { return syms[i].Less(syms[j]) })
}

// SortModuleIDs returns the keys of a module-keyed map in ascending order.
func SortModuleIDs[V any](m map[ModuleID]V) []ModuleID {
	out := make([]ModuleID, 0, len(m))
	for id := range m {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
