package routines

import (
	"math/big"
	"reflect"
	"testing"

	"go.starlark.net/starlark"
)

func TestToStarlarkValue(t *testing.T) {
	type testStruct struct {
		Exported   string
		unexported int
	}

	ptrStruct := &testStruct{
		Exported:   "hello",
		unexported: 42,
	}

	dictOf := func(pairs ...starlark.Value) *starlark.Dict {
		d := starlark.NewDict(len(pairs) / 2)
		for i := 0; i < len(pairs); i += 2 {
			d.SetKey(pairs[i], pairs[i+1])
		}
		return d
	}

	testCases := []struct {
		name     string
		input    any
		expected starlark.Value
	}{
		{"nil", nil, starlark.None},
		{"bool", true, starlark.True},
		{"bytes", []byte("abc"), starlark.Bytes("abc")},
		{"string", "hello", starlark.String("hello")},
		{"int", 42, starlark.MakeInt(42)},
		{"int8", int8(42), starlark.MakeInt(42)},
		{"uint32", uint32(42), starlark.MakeUint(42)},
		{"float32", float32(1.5), starlark.Float(1.5)},
		{"float64", 3.14, starlark.Float(3.14)},
		{"[]any", []any{1, "a", true}, starlark.NewList([]starlark.Value{starlark.MakeInt(1), starlark.String("a"), starlark.True})},
		{"[]string", []string{"a", "b"}, starlark.NewList([]starlark.Value{starlark.String("a"), starlark.String("b")})},
		{"map[string]any", map[string]any{"a": 1, "b": "c"}, dictOf(
			starlark.String("a"), starlark.MakeInt(1),
			starlark.String("b"), starlark.String("c"),
		)},
		{"map[int]bool", map[int]bool{1: true, 2: false}, dictOf(
			starlark.MakeInt(1), starlark.True,
			starlark.MakeInt(2), starlark.False,
		)},
		{"struct", testStruct{Exported: "hello"}, dictOf(
			starlark.String("Exported"), starlark.String("hello"),
		)},
		{"pointer to pointer to struct", &ptrStruct, dictOf(
			starlark.String("Exported"), starlark.String("hello"),
		)},
		{"nil pointer", (*testStruct)(nil), starlark.None},
		{"starlark value", starlark.String("x"), starlark.String("x")},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			actual, err := toStarlarkValue(tc.input)
			if err != nil {
				t.Fatal(err)
			}
			equal, err := starlark.Equal(actual, tc.expected)
			if err != nil {
				t.Fatalf("comparison failed: %v", err)
			}
			if !equal {
				t.Errorf("got %v, expected %v", actual, tc.expected)
			}
		})
	}
}

func TestToStarlarkValueUnsupported(t *testing.T) {
	_, err := toStarlarkValue(make(chan int))
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestFromStarlarkValue(t *testing.T) {
	huge := new(big.Int).Lsh(big.NewInt(1), 100)

	testCases := []struct {
		name     string
		input    starlark.Value
		expected any
	}{
		{"none", starlark.None, nil},
		{"bool", starlark.False, false},
		{"int", starlark.MakeInt(42), 42},
		{"big int", starlark.MakeBigInt(huge), huge},
		{"float", starlark.Float(0.5), 0.5},
		{"string", starlark.String("s"), "s"},
		{"bytes", starlark.Bytes("b"), []byte("b")},
		{"list", starlark.NewList([]starlark.Value{starlark.MakeInt(1), starlark.String("a")}), []any{1, "a"}},
		{"tuple", starlark.Tuple{starlark.True}, []any{true}},
		{"empty list", starlark.NewList(nil), []any{}},
		{"string dict", func() starlark.Value {
			d := starlark.NewDict(1)
			d.SetKey(starlark.String("k"), starlark.NewList([]starlark.Value{starlark.None}))
			return d
		}(), map[string]any{"k": []any{nil}}},
		{"int dict", func() starlark.Value {
			d := starlark.NewDict(1)
			d.SetKey(starlark.MakeInt(1), starlark.String("one"))
			return d
		}(), map[any]any{1: "one"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			actual, err := fromStarlarkValue(tc.input)
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(actual, tc.expected) {
				t.Errorf("got %#v, expected %#v", actual, tc.expected)
			}
		})
	}
}
