package jsonmap

import (
	"encoding/base64"
	"errors"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"slices"
	"strconv"

	"github.com/goccy/go-json"
)

// ErrInvalidKeyType is returned when a Go map with non-string keys is
// converted into the value model.
var ErrInvalidKeyType = errors.New("invalid key type")

// ErrNotInPlace is returned by Adopt for a value whose conversion would
// need a copy.
var ErrNotInPlace = errors.New("value cannot be converted in place")

type KeyTypeError struct {
	Key any
}

func (e *KeyTypeError) Error() string {
	return fmt.Sprintf("%v: object keys must be strings, got %T (%v)", ErrInvalidKeyType, e.Key, e.Key)
}

func (e *KeyTypeError) Unwrap() error { return ErrInvalidKeyType }

// Kind classifies a value of the model.
type Kind uint8

const (
	Invalid Kind = iota
	Null
	Boolean
	Number
	String
	Array
	ObjectKind
)

var kindNames = [...]string{"invalid", "null", "boolean", "number", "string", "array", "object"}

func (k Kind) String() string { return kindNames[k] }

func KindOf(v any) Kind {
	switch v.(type) {
	case nil:
		return Null
	case bool:
		return Boolean
	case string:
		return String
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64, json.Number:
		return Number
	case []any:
		return Array
	case *Object, map[string]any:
		return ObjectKind
	}
	return Invalid
}

// TypeName returns the JSON type name of v.
func TypeName(v any) string { return KindOf(v).String() }

func IsObject(v any) bool { return KindOf(v) == ObjectKind }

// Keys returns the member names of an object value: insertion order for
// *Object, sorted order for map[string]any.
func Keys(v any) []string {
	switch o := v.(type) {
	case *Object:
		return o.Keys()
	case map[string]any:
		keys := make([]string, 0, len(o))
		for k := range o {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		return keys
	}
	return nil
}

func Get(v any, key string) (any, bool) {
	switch o := v.(type) {
	case *Object:
		return o.Get(key)
	case map[string]any:
		val, ok := o[key]
		return val, ok
	}
	return nil, false
}

func Has(v any, key string) bool {
	_, ok := Get(v, key)
	return ok
}

// Set stores key in an object value in place. It reports false when v is
// not an object.
func Set(v any, key string, val any) bool {
	switch o := v.(type) {
	case *Object:
		o.Set(key, val)
		return true
	case map[string]any:
		o[key] = val
		return true
	}
	return false
}

// Len returns the member count of an object or the length of an array.
func Len(v any) int {
	switch o := v.(type) {
	case *Object:
		return o.Len()
	case map[string]any:
		return len(o)
	case []any:
		return len(o)
	}
	return 0
}

// Float returns the numeric value of v as a float64.
func Float(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// Rat returns the exact decimal value of a number. Floats are converted
// through their shortest decimal representation so that 0.1 is 1/10.
func Rat(v any) (*big.Rat, bool) {
	r := new(big.Rat)
	switch n := v.(type) {
	case int64:
		return r.SetInt64(n), true
	case uint64:
		return r.SetUint64(n), true
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return nil, false
		}
		_, ok := r.SetString(strconv.FormatFloat(n, 'g', -1, 64))
		return r, ok
	case float32:
		_, ok := r.SetString(strconv.FormatFloat(float64(n), 'g', -1, 32))
		return r, ok
	case json.Number:
		_, ok := r.SetString(string(n))
		return r, ok
	case int:
		return r.SetInt64(int64(n)), true
	case uint:
		return r.SetUint64(uint64(n)), true
	case int8, int16, int32, uint8, uint16, uint32:
		f, _ := Float(n)
		return r.SetInt64(int64(f)), true
	}
	return nil, false
}

// IsInteger reports whether v is an integer. In strict mode only integer
// representations count; otherwise a float without a fractional part counts too.
func IsInteger(v any, strict bool) bool {
	switch n := v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	case json.Number:
		if _, err := n.Int64(); err == nil {
			return true
		}
		if strict {
			return false
		}
		r, ok := Rat(n)
		return ok && r.IsInt()
	case float32, float64:
		if strict {
			return false
		}
		f, _ := Float(n)
		return !math.IsInf(f, 0) && f == math.Trunc(f)
	}
	return false
}

// CompareNumbers returns -1, 0 or +1. Both values must be numbers.
func CompareNumbers(a, b any) int {
	ra, ok1 := Rat(a)
	rb, ok2 := Rat(b)
	if ok1 && ok2 {
		return ra.Cmp(rb)
	}
	fa, _ := Float(a)
	fb, _ := Float(b)
	switch {
	case fa < fb:
		return -1
	case fa > fb:
		return 1
	}
	return 0
}

// Equal reports whether two values are equal as JSON: numbers compare
// mathematically and objects ignore member order.
func Equal(a, b any) bool {
	ka, kb := KindOf(a), KindOf(b)
	if ka != kb {
		return false
	}
	switch ka {
	case Null:
		return true
	case Boolean:
		return a.(bool) == b.(bool)
	case String:
		return a.(string) == b.(string)
	case Number:
		return CompareNumbers(a, b) == 0
	case Array:
		x, y := a.([]any), b.([]any)
		if len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}
		return true
	case ObjectKind:
		if Len(a) != Len(b) {
			return false
		}
		for _, k := range Keys(a) {
			va, _ := Get(a, k)
			vb, ok := Get(b, k)
			if !ok || !Equal(va, vb) {
				return false
			}
		}
		return true
	}
	return false
}

// Clone deep-copies objects and arrays. Scalars are returned as is.
func Clone(v any) any {
	switch t := v.(type) {
	case *Object:
		out := NewObject()
		for k, val := range t.All() {
			out.Set(k, Clone(val))
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = Clone(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = Clone(val)
		}
		return out
	}
	return v
}

// Supported reports whether v and everything it contains is already part
// of the value model.
func Supported(v any) bool {
	switch t := v.(type) {
	case []any:
		for _, e := range t {
			if !Supported(e) {
				return false
			}
		}
		return true
	case *Object:
		for _, e := range t.All() {
			if !Supported(e) {
				return false
			}
		}
		return true
	case map[string]any:
		for _, e := range t {
			if !Supported(e) {
				return false
			}
		}
		return true
	}
	return KindOf(v) != Invalid
}

// Normalize returns v unchanged when it is already part of the value model
// and a converted copy otherwise.
func Normalize(v any) (any, error) {
	if Supported(v) {
		return v, nil
	}
	return FromGo(v)
}

// Adopt converts the members of v that are not part of the value model,
// storing the converted members back into v, and returns v. Containers of
// the model keep their identity so that later changes to them are visible
// to the caller. v itself must be a []any, map[string]any, *Object or a
// value of the model.
func Adopt(v any) (any, error) {
	if Supported(v) {
		return v, nil
	}
	switch t := v.(type) {
	case []any:
		for i, e := range t {
			c, err := adoptMember(e)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			t[i] = c
		}
		return t, nil
	case map[string]any:
		for k, e := range t {
			c, err := adoptMember(e)
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", k, err)
			}
			t[k] = c
		}
		return t, nil
	case *Object:
		for k, e := range t.All() {
			c, err := adoptMember(e)
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", k, err)
			}
			t.Set(k, c)
		}
		return t, nil
	}
	return nil, fmt.Errorf("%w: %T", ErrNotInPlace, v)
}

func adoptMember(v any) (any, error) {
	switch v.(type) {
	case []any, map[string]any, *Object:
		return Adopt(v)
	}
	return Normalize(v)
}

// FromGo converts an arbitrary Go value into the value model. Maps become
// objects with sorted keys; structs go through their JSON encoding.
func FromGo(v any) (any, error) {
	switch t := v.(type) {
	case nil, bool, string, int64, float64, json.Number:
		return t, nil
	case *Object:
		out := NewObject()
		for k, val := range t.All() {
			c, err := FromGo(val)
			if err != nil {
				return nil, err
			}
			out.Set(k, c)
		}
		return out, nil
	case []byte:
		return base64.StdEncoding.EncodeToString(t), nil
	case json.Marshaler:
		data, err := t.MarshalJSON()
		if err != nil {
			return nil, err
		}
		return Decode(data)
	}
	return fromValue(reflect.ValueOf(v))
}

func fromValue(rv reflect.Value) (any, error) {
	switch rv.Kind() {
	case reflect.Invalid:
		return nil, nil
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return nil, nil
		}
		return FromGo(rv.Elem().Interface())
	case reflect.Bool:
		return rv.Bool(), nil
	case reflect.String:
		return rv.String(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return float64(u), nil
		}
		return int64(u), nil
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return nil, nil
		}
		out := make([]any, rv.Len())
		for i := range out {
			e, err := FromGo(rv.Index(i).Interface())
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			out[i] = e
		}
		return out, nil
	case reflect.Map:
		if rv.IsNil() {
			return nil, nil
		}
		keys := make([]string, 0, rv.Len())
		values := make(map[string]reflect.Value, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			k := iter.Key()
			if k.Kind() == reflect.Interface && !k.IsNil() {
				k = k.Elem()
			}
			if k.Kind() != reflect.String {
				return nil, &KeyTypeError{Key: k.Interface()}
			}
			keys = append(keys, k.String())
			values[k.String()] = iter.Value()
		}
		slices.Sort(keys)
		out := NewObject()
		for _, k := range keys {
			e, err := FromGo(values[k].Interface())
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", k, err)
			}
			out.Set(k, e)
		}
		return out, nil
	case reflect.Struct:
		data, err := json.Marshal(rv.Interface())
		if err != nil {
			return nil, err
		}
		return Decode(data)
	}
	return nil, fmt.Errorf("jsonmap: unsupported type %s", rv.Type())
}

// ToGo converts a model value into plain Go maps and slices, for callers
// such as expression evaluators that expect map[string]any.
func ToGo(v any) any {
	switch t := v.(type) {
	case *Object:
		out := make(map[string]any, t.Len())
		for k, val := range t.All() {
			out[k] = ToGo(val)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = ToGo(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = ToGo(val)
		}
		return out
	}
	return v
}
