package evaluator

import "sort"

func NewEnvironment() *Environment {
	return &Environment{store: make(map[string]Object)}
}

func NewEnclosedEnvironment(outer *Environment) *Environment {
	env := NewEnvironment()
	env.outer = outer
	return env
}

// Environment is one scope in the lexical chain. A scope may hold nil for a
// declared-but-unset local, which still shadows outer bindings.
type Environment struct {
	store map[string]Object
	outer *Environment
}

// Child opens a nested scope.
func (e *Environment) Child() *Environment {
	return NewEnclosedEnvironment(e)
}

// Root returns the outermost scope of the chain.
func (e *Environment) Root() *Environment {
	for e.outer != nil {
		e = e.outer
	}
	return e
}

func (e *Environment) Get(name string) (Object, bool) {
	for env := e; env != nil; env = env.outer {
		if obj, ok := env.store[name]; ok {
			return obj, true
		}
	}
	return nil, false
}

// Define declares name in this scope, shadowing outer bindings.
func (e *Environment) Define(name string, val Object) Object {
	if val == nil {
		val = NIL
	}
	e.store[name] = val
	return val
}

// Set is Define under the name used throughout the builtin registration code.
func (e *Environment) Set(name string, val Object) Object {
	return e.Define(name, val)
}

// Update rebinds the nearest scope already holding name and reports
// whether one was found.
func (e *Environment) Update(name string, val Object) bool {
	if val == nil {
		val = NIL
	}
	for env := e; env != nil; env = env.outer {
		if _, ok := env.store[name]; ok {
			env.store[name] = val
			return true
		}
	}
	return false
}

// Assign rebinds name where it is already bound, or creates it in the
// outermost scope.
func (e *Environment) Assign(name string, val Object) {
	if val == nil {
		val = NIL
	}
	if !e.Update(name, val) {
		e.Root().store[name] = val
	}
}

// HasLocal reports whether name is bound in this scope itself.
func (e *Environment) HasLocal(name string) bool {
	_, ok := e.store[name]
	return ok
}

// Names returns the names bound in this scope, sorted.
func (e *Environment) Names() []string {
	names := make([]string, 0, len(e.store))
	for k := range e.store {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
