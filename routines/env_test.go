package routines

import (
	"context"
	"reflect"
	"testing"
)

func TestEnvNames(t *testing.T) {
	env := NewEnv(nil)
	env.SetGlobal("zeta", 1)
	env.SetGlobal("alpha", 2)
	env.Bind(NewNative("mid", func(context.Context, Mapping) (any, error) {
		return nil, nil
	}))
	expected := []string{"alpha", "json", "math", "mid", "time", "zeta"}
	if got := env.Names(); !reflect.DeepEqual(got, expected) {
		t.Fatalf("got %v", got)
	}
	if _, ok := env.Lookup("mid"); !ok {
		t.Fatal()
	}
	if v, ok := env.Global("alpha"); !ok || v != 2 {
		t.Fatal()
	}
}

func TestNativeRoutineCopiesMapping(t *testing.T) {
	routine := NewNative("set", func(_ context.Context, m Mapping) (any, error) {
		m["x"] = 1
		return len(m), nil
	})
	mapping := Mapping{}
	res, err := routine.Invoke(context.Background(), mapping)
	if err != nil {
		t.Fatal(err)
	}
	if res != 1 || len(mapping) != 0 {
		t.Fatalf("got %v %v", res, mapping)
	}
}
