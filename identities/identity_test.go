package identities

import (
	"testing"
)

func TestIdentity(t *testing.T) {
	for _, c := range []struct {
		instructions string
		params       []Param
		expected     Key
	}{
		{
			instructions: "return 41 plus one",
			expected:     "413f074ec7912a92d08bad87b683207114d6dad9",
		},
		{
			instructions: "add a and b",
			params:       []Param{P("a", 1), P("b", "x")},
			expected:     "0eab897eaca2fd0d36fbfea81212dc5a9178539f",
		},
		{
			instructions: "add a and b",
			params:       []Param{P("b", "x"), P("a", 1)},
			expected:     "357a50da34a787f0da87135af89cf7ff31ef895d",
		},
		{
			instructions: "",
			expected:     "bf21a9e8fbc5a3846fb05b4fa0859e0917b2202f",
		},
	} {
		got := Identity(c.instructions, c.params)
		if got != c.expected {
			t.Fatalf("%q %v: got %s, expected %s", c.instructions, c.params, got, c.expected)
		}
		if again := Identity(c.instructions, c.params); again != got {
			t.Fatal("not deterministic")
		}
	}
}

func TestCanonical(t *testing.T) {
	for _, c := range []struct {
		params   []Param
		expected string
	}{
		{nil, "{}"},
		{[]Param{P("s", `a"b`)}, `{"s": "a\"b"}`},
		{[]Param{P("n", 1.5), P("b", true)}, `{"n": 1.5, "b": true}`},
		{[]Param{P("m", map[string]int{"y": 2, "x": 1})}, `{"m": {"x": 1, "y": 2}}`},
		{[]Param{P("z", nil)}, `{"z": nil}`},
		{[]Param{P("p", ptr(5))}, `{"p": 5}`},
		{[]Param{P("p", (*int)(nil))}, `{"p": nil}`},
		{[]Param{P("l", []any{ptr("a"), 2})}, `{"l": ["a", 2]}`},
		{[]Param{P("s", point{X: ptr(1), Y: 2})}, `{"s": identities.point{X: 1, Y: 2}}`},
		{[]Param{P("f", func() {})}, `{"f": func()}`},
	} {
		if got := Canonical(c.params); got != c.expected {
			t.Fatalf("got %s, expected %s", got, c.expected)
		}
	}
}

func TestDifferentInstructions(t *testing.T) {
	if Identity("a", nil) == Identity("b", nil) {
		t.Fatal()
	}
	if Identity("a", []Param{P("x", 1)}) == Identity("a", []Param{P("x", "1")}) {
		t.Fatal()
	}
}

func TestKeyShort(t *testing.T) {
	if Key("413f074ec7912a92").Short() != "413f074e" {
		t.Fatal()
	}
	if Key("abc").Short() != "abc" {
		t.Fatal()
	}
}

type point struct {
	X *int
	Y int
}

func ptr[T any](v T) *T {
	return &v
}

func TestIdentityFollowsPointers(t *testing.T) {
	a, b := 5, 5
	if Identity("i", []Param{P("x", &a)}) != Identity("i", []Param{P("x", &b)}) {
		t.Fatal("equal pointed values produce different keys")
	}
	if Identity("i", []Param{P("x", &a)}) != Identity("i", []Param{P("x", 5)}) {
		t.Fatal("pointer and value produce different keys")
	}
	nested := func() []Param {
		return []Param{P("x", map[string]*point{"p": {X: ptr(1), Y: 2}})}
	}
	if Identity("i", nested()) != Identity("i", nested()) {
		t.Fatal("nested pointers produce different keys")
	}
}
