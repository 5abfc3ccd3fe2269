package typesystem

import (
	"fmt"
	"sort"
)

// UnknownVariableError is returned when a variable has no node in a storage.
type UnknownVariableError struct {
	Var Variable
}

func (e *UnknownVariableError) Error() string {
	return fmt.Sprintf("variable %s is not stored", e.Var)
}

// StorageSubs holds the type-graph nodes reachable from a module's exported
// variables, detached from the exporter's solver state. Importers treat it
// as opaque and splice it into their own graph.
type StorageSubs struct {
	nodes map[Variable]SolvedType
}

func NewStorageSubs() *StorageSubs {
	return &StorageSubs{nodes: make(map[Variable]SolvedType)}
}

// Insert records the node stored under v, replacing any previous one.
func (s *StorageSubs) Insert(v Variable, node SolvedType) {
	s.nodes[v] = node
}

func (s *StorageSubs) Get(v Variable) (SolvedType, error) {
	if s == nil {
		return nil, &UnknownVariableError{Var: v}
	}
	node, ok := s.nodes[v]
	if !ok {
		return nil, &UnknownVariableError{Var: v}
	}
	return node, nil
}

func (s *StorageSubs) Len() int {
	if s == nil {
		return 0
	}
	return len(s.nodes)
}

// Variables returns the stored variables in ascending order.
func (s *StorageSubs) Variables() []Variable {
	if s == nil {
		return nil
	}
	out := make([]Variable, 0, len(s.nodes))
	for v := range s.nodes {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Clone copies the storage. Nodes are immutable values and are shared.
// A nil storage clones to an empty one.
func (s *StorageSubs) Clone() *StorageSubs {
	if s == nil {
		return NewStorageSubs()
	}
	out := &StorageSubs{nodes: make(map[Variable]SolvedType, len(s.nodes))}
	for v, node := range s.nodes {
		out.nodes[v] = node
	}
	return out
}

// Import translates the node stored under v into the importer's numbering.
// This is the fast path that reuses the exporter's graph directly instead of
// going through the exposed solved type.
func (s *StorageSubs) Import(v Variable, fv *FreeVars, vs *VarStore) (Type, error) {
	node, err := s.Get(v)
	if err != nil {
		return nil, err
	}
	return ToType(node, fv, vs), nil
}
