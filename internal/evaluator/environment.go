package evaluator

import (
	"sync"

	"github.com/funvibe/fxfront/internal/symbols"
)

func NewEnvironment() *Environment {
	return &Environment{store: make(map[symbols.Symbol]Object)}
}

func NewEnclosedEnvironment(outer *Environment) *Environment {
	env := NewEnvironment()
	env.outer = outer
	return env
}

type Environment struct {
	mu    sync.RWMutex
	store map[symbols.Symbol]Object
	outer *Environment
}

func (e *Environment) Get(sym symbols.Symbol) (Object, bool) {
	e.mu.RLock()
	obj, ok := e.store[sym]
	e.mu.RUnlock()
	if !ok && e.outer != nil {
		obj, ok = e.outer.Get(sym)
	}
	return obj, ok
}

func (e *Environment) Set(sym symbols.Symbol, val Object) Object {
	e.mu.Lock()
	e.store[sym] = val
	e.mu.Unlock()
	return val
}

// GetStore returns a copy of the innermost store
func (e *Environment) GetStore() map[symbols.Symbol]Object {
	e.mu.RLock()
	defer e.mu.RUnlock()
	copy := make(map[symbols.Symbol]Object, len(e.store))
	for k, v := range e.store {
		copy[k] = v
	}
	return copy
}
