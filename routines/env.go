package routines

import (
	"io"
	"maps"
	"slices"
	"sync"
)

// Env is the environment shared by every routine of a pipeline.
type Env struct {
	mu       sync.RWMutex
	globals  map[string]any
	routines map[string]Routine
	output   io.Writer
	maxSteps uint64
}

func NewEnv(output io.Writer) *Env {
	if output == nil {
		output = io.Discard
	}
	return &Env{
		globals:  make(map[string]any),
		routines: make(map[string]Routine),
		output:   output,
	}
}

func (e *Env) SetGlobal(name string, value any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.globals[name] = value
}

func (e *Env) Global(name string) (any, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	v, ok := e.globals[name]
	return v, ok
}

// Bind makes routine reachable from routines loaded later, under its own name.
func (e *Env) Bind(routine Routine) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.routines[routine.Name()] = routine
}

func (e *Env) Lookup(name string) (Routine, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	r, ok := e.routines[name]
	return r, ok
}

// Names returns the sorted names visible to a routine: globals, bound routines and predeclared modules.
func (e *Env) Names() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	set := make(map[string]struct{})
	for name := range e.globals {
		set[name] = struct{}{}
	}
	for name := range e.routines {
		set[name] = struct{}{}
	}
	for name := range starlarkModules {
		set[name] = struct{}{}
	}
	return slices.Sorted(maps.Keys(set))
}

func (e *Env) SetMaxSteps(n uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.maxSteps = n
}

func (e *Env) MaxSteps() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.maxSteps
}

func (e *Env) Output() io.Writer {
	return e.output
}

func (e *Env) snapshot() (globals map[string]any, routines map[string]Routine) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return maps.Clone(e.globals), maps.Clone(e.routines)
}
