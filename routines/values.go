package routines

import (
	"cmp"
	"fmt"
	"maps"
	"math/big"
	"reflect"
	"slices"

	"github.com/reusee/starlarkutil"
	"go.starlark.net/starlark"
)

func toStarlarkValue(v any) (starlark.Value, error) {
	switch v := v.(type) {

	case nil:
		return starlark.None, nil

	case starlark.Value:
		return v, nil

	case bool:
		return starlark.Bool(v), nil

	case []byte:
		return starlark.Bytes(v), nil
	case string:
		return starlark.String(v), nil

	case int:
		return starlark.MakeInt(v), nil
	case int64:
		return starlark.MakeInt64(v), nil
	case uint64:
		return starlark.MakeUint64(v), nil
	case *big.Int:
		return starlark.MakeBigInt(v), nil

	case float64:
		return starlark.Float(v), nil

	case []any:
		elems := make([]starlark.Value, 0, len(v))
		for _, e := range v {
			elem, err := toStarlarkValue(e)
			if err != nil {
				return nil, err
			}
			elems = append(elems, elem)
		}
		return starlark.NewList(elems), nil

	case map[string]any:
		d := starlark.NewDict(len(v))
		for _, k := range slices.Sorted(maps.Keys(v)) {
			val, err := toStarlarkValue(v[k])
			if err != nil {
				return nil, err
			}
			if err := d.SetKey(starlark.String(k), val); err != nil {
				return nil, err
			}
		}
		return d, nil

	}

	value := reflect.ValueOf(v)
	switch value.Kind() {

	case reflect.Bool:
		return starlark.Bool(value.Bool()), nil

	case reflect.String:
		return starlark.String(value.String()), nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return starlark.MakeInt64(value.Int()), nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return starlark.MakeUint64(value.Uint()), nil

	case reflect.Float32, reflect.Float64:
		return starlark.Float(value.Float()), nil

	case reflect.Slice, reflect.Array:
		l := value.Len()
		elems := make([]starlark.Value, 0, l)
		for i := range l {
			elem, err := toStarlarkValue(value.Index(i).Interface())
			if err != nil {
				return nil, err
			}
			elems = append(elems, elem)
		}
		return starlark.NewList(elems), nil

	case reflect.Map:
		d := starlark.NewDict(value.Len())
		keys := value.MapKeys()
		slices.SortFunc(keys, func(a, b reflect.Value) int {
			return cmp.Compare(fmt.Sprint(a.Interface()), fmt.Sprint(b.Interface()))
		})
		for _, key := range keys {
			k, err := toStarlarkValue(key.Interface())
			if err != nil {
				return nil, err
			}
			val, err := toStarlarkValue(value.MapIndex(key).Interface())
			if err != nil {
				return nil, err
			}
			if err := d.SetKey(k, val); err != nil {
				return nil, err
			}
		}
		return d, nil

	case reflect.Struct:
		n := value.NumField()
		d := starlark.NewDict(n)
		typ := value.Type()
		for i := range n {
			field := typ.Field(i)
			if !field.IsExported() {
				continue
			}
			val, err := toStarlarkValue(value.Field(i).Interface())
			if err != nil {
				return nil, err
			}
			if err := d.SetKey(starlark.String(field.Name), val); err != nil {
				return nil, err
			}
		}
		return d, nil

	case reflect.Pointer, reflect.Interface:
		elem := value.Elem()
		if !elem.IsValid() {
			return starlark.None, nil
		}
		return toStarlarkValue(elem.Interface())

	case reflect.Func:
		return starlarkutil.MakeFunc("", value.Interface()), nil

	}

	return nil, fmt.Errorf("unsupported type for starlark: %T", v)
}

func fromStarlarkValue(v starlark.Value) (any, error) {
	switch v := v.(type) {

	case starlark.NoneType:
		return nil, nil

	case starlark.Bool:
		return bool(v), nil

	case starlark.Int:
		if i, ok := v.Int64(); ok {
			if int64(int(i)) == i {
				return int(i), nil
			}
			return i, nil
		}
		return v.BigInt(), nil

	case starlark.Float:
		return float64(v), nil

	case starlark.String:
		return string(v), nil

	case starlark.Bytes:
		return []byte(v), nil

	case *starlark.Dict:
		items := v.Items()
		allStrings := true
		for _, item := range items {
			if _, ok := item[0].(starlark.String); !ok {
				allStrings = false
				break
			}
		}
		if allStrings {
			ret := make(map[string]any, len(items))
			for _, item := range items {
				val, err := fromStarlarkValue(item[1])
				if err != nil {
					return nil, err
				}
				ret[string(item[0].(starlark.String))] = val
			}
			return ret, nil
		}
		ret := make(map[any]any, len(items))
		for _, item := range items {
			key, err := fromStarlarkValue(item[0])
			if err != nil {
				return nil, err
			}
			if key != nil && !reflect.TypeOf(key).Comparable() {
				return nil, fmt.Errorf("unhashable key in result: %s", item[0].Type())
			}
			val, err := fromStarlarkValue(item[1])
			if err != nil {
				return nil, err
			}
			ret[key] = val
		}
		return ret, nil

	case starlark.Iterable:
		// list, tuple, set
		iter := v.Iterate()
		defer iter.Done()
		ret := []any{}
		var elem starlark.Value
		for iter.Next(&elem) {
			e, err := fromStarlarkValue(elem)
			if err != nil {
				return nil, err
			}
			ret = append(ret, e)
		}
		return ret, nil

	}

	return nil, fmt.Errorf("unsupported result type: %s", v.Type())
}
