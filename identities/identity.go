package identities

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"strings"
)

// Key is the hex SHA-1 digest identifying one instruction request.
type Key string

func (k Key) Short() string {
	if len(k) > 8 {
		return string(k[:8])
	}
	return string(k)
}

// Param is one named value folded into the identity. Order matters.
type Param struct {
	Name  string
	Value any
}

func P(name string, value any) Param {
	return Param{
		Name:  name,
		Value: value,
	}
}

func Identity(instructions string, params []Param) Key {
	h := sha1.New()
	h.Write([]byte(instructions))
	h.Write([]byte(Canonical(params)))
	return Key(hex.EncodeToString(h.Sum(nil)))
}

// Canonical renders params as {"name": value, ...} in the given order.
func Canonical(params []Param) string {
	var b strings.Builder
	b.WriteByte('{')
	for i, param := range params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(strconv.Quote(param.Name))
		b.WriteString(": ")
		b.WriteString(formatValue(param.Value))
	}
	b.WriteByte('}')
	return b.String()
}

func formatValue(v any) string {
	var b strings.Builder
	writeValue(&b, reflect.ValueOf(v))
	return b.String()
}

// writeValue renders v without addresses: pointers and interfaces are followed,
// map entries are sorted by their rendering, and funcs and channels render as their type.
func writeValue(b *strings.Builder, v reflect.Value) {
	if !v.IsValid() {
		b.WriteString("nil")
		return
	}
	switch v.Kind() {
	case reflect.String:
		b.WriteString(strconv.Quote(v.String()))
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			b.WriteString("nil")
			return
		}
		writeValue(b, v.Elem())
	case reflect.Slice:
		if v.IsNil() {
			b.WriteString("nil")
			return
		}
		fallthrough
	case reflect.Array:
		b.WriteByte('[')
		for i := range v.Len() {
			if i > 0 {
				b.WriteString(", ")
			}
			writeValue(b, v.Index(i))
		}
		b.WriteByte(']')
	case reflect.Map:
		if v.IsNil() {
			b.WriteString("nil")
			return
		}
		entries := make([]string, 0, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			var entry strings.Builder
			writeValue(&entry, iter.Key())
			entry.WriteString(": ")
			writeValue(&entry, iter.Value())
			entries = append(entries, entry.String())
		}
		slices.Sort(entries)
		b.WriteByte('{')
		b.WriteString(strings.Join(entries, ", "))
		b.WriteByte('}')
	case reflect.Struct:
		if v.CanInterface() {
			if stringer, ok := v.Interface().(fmt.Stringer); ok {
				b.WriteString(stringer.String())
				return
			}
		}
		t := v.Type()
		b.WriteString(t.String())
		b.WriteByte('{')
		for i := range v.NumField() {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(t.Field(i).Name)
			b.WriteString(": ")
			writeValue(b, v.Field(i))
		}
		b.WriteByte('}')
	case reflect.Func, reflect.Chan, reflect.UnsafePointer:
		b.WriteString(v.Type().String())
	default:
		if v.CanInterface() {
			fmt.Fprintf(b, "%v", v.Interface())
			return
		}
		fmt.Fprintf(b, "%v", v)
	}
}
