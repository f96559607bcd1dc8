package runtime

import (
	"fmt"
	"sort"
)

// Environment holds the variables of a single script run. Scripts have one
// flat scope: loop variables and assignments all land here.
type Environment struct {
	values map[string]Value
}

// NewEnvironment creates an environment seeded with the given bindings.
func NewEnvironment(seed map[string]Value) *Environment {
	env := &Environment{values: make(map[string]Value, len(seed))}
	for name, value := range seed {
		env.values[name] = value
	}
	return env
}

// Define inserts or overwrites a binding.
func (e *Environment) Define(name string, value Value) {
	e.values[name] = value
}

// Get retrieves a binding.
func (e *Environment) Get(name string) (Value, error) {
	if v, ok := e.values[name]; ok {
		return v, nil
	}
	return Value{}, fmt.Errorf("variable %s does not exist", name)
}

// Keys returns the bindings in sorted order.
func (e *Environment) Keys() []string {
	keys := make([]string, 0, len(e.values))
	for k := range e.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
