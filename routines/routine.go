package routines

import (
	"context"
	"maps"
)

// Mapping is the explicit variable context handed to a routine.
type Mapping = map[string]any

type Routine interface {
	Name() string
	Invoke(ctx context.Context, mapping Mapping) (any, error)
}

// NativeRoutine is a precompiled routine provided by the host program.
type NativeRoutine struct {
	RoutineName string
	Func        func(ctx context.Context, mapping Mapping) (any, error)
}

var _ Routine = NativeRoutine{}

func NewNative(name string, fn func(context.Context, Mapping) (any, error)) NativeRoutine {
	return NativeRoutine{
		RoutineName: name,
		Func:        fn,
	}
}

func (n NativeRoutine) Name() string {
	return n.RoutineName
}

func (n NativeRoutine) Invoke(ctx context.Context, mapping Mapping) (any, error) {
	return n.Func(ctx, copyMapping(mapping))
}

func copyMapping(mapping Mapping) Mapping {
	ret := make(Mapping, len(mapping))
	maps.Copy(ret, mapping)
	return ret
}
