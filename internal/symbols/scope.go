package symbols

import (
	"fmt"

	"github.com/funvibe/fxfront/internal/region"
)

// ShadowingError is returned when an identifier is introduced twice in one scope.
type ShadowingError struct {
	Name     string
	Original region.Region
	Shadow   region.Region
}

func (e *ShadowingError) Error() string {
	return fmt.Sprintf("identifier %q shadows the definition at %s", e.Name, e.Original)
}

// Env carries the identifier tables of the module being canonicalized.
type Env struct {
	Home ModuleID
	// ExposedIdentIDs holds the ids reserved by the module header; exposed
	// identifiers keep those ids when introduced.
	ExposedIdentIDs *IdentIDs
	IdentIDs        *IdentIDs
}

// NewEnv creates an environment for home. exposed may be nil.
func NewEnv(home ModuleID, exposed *IdentIDs) *Env {
	all := NewIdentIDs()
	if exposed != nil {
		all = exposed.Clone()
	}
	return &Env{Home: home, ExposedIdentIDs: exposed, IdentIDs: all}
}

type scopeEntry struct {
	symbol Symbol
	region region.Region
}

// Scope maps identifier names visible in a module to their symbols.
type Scope struct {
	home   ModuleID
	idents map[string]scopeEntry
	order  []string
}

func NewScope(home ModuleID) *Scope {
	return &Scope{home: home, idents: make(map[string]scopeEntry)}
}

func (s *Scope) Home() ModuleID {
	return s.home
}

// Introduce binds name in the scope and returns a fresh symbol for it.
// Exposed identifiers reuse their reserved id.
func (s *Scope) Introduce(name string, env *Env, r region.Region) (Symbol, error) {
	if existing, ok := s.idents[name]; ok {
		return existing.symbol, &ShadowingError{Name: name, Original: existing.region, Shadow: r}
	}

	var id IdentID
	if exposedID, ok := env.ExposedIdentIDs.Get(name); ok {
		id = exposedID
	} else {
		id = env.IdentIDs.Add(name)
	}

	sym := Symbol{Module: s.home, Ident: id}
	s.idents[name] = scopeEntry{symbol: sym, region: r}
	s.order = append(s.order, name)
	return sym, nil
}

// Import makes a symbol from another module visible under name.
func (s *Scope) Import(name string, sym Symbol, r region.Region) error {
	if existing, ok := s.idents[name]; ok && existing.symbol != sym {
		return &ShadowingError{Name: name, Original: existing.region, Shadow: r}
	}
	if _, ok := s.idents[name]; !ok {
		s.order = append(s.order, name)
	}
	s.idents[name] = scopeEntry{symbol: sym, region: r}
	return nil
}

func (s *Scope) Lookup(name string) (Symbol, bool) {
	e, ok := s.idents[name]
	return e.symbol, ok
}

// Names returns the identifiers in introduction order.
func (s *Scope) Names() []string {
	return append([]string(nil), s.order...)
}
