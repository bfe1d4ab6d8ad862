package jsonmap

import (
	"iter"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Object is a JSON object that keeps its members in insertion order.
// Keys are unique; setting an existing key replaces the value in place.
type Object struct {
	m *orderedmap.OrderedMap[string, any]
}

func NewObject() *Object {
	return &Object{m: orderedmap.New[string, any]()}
}

// ObjectOf builds an object from alternating keys and values.
// It panics when a key is not a string.
func ObjectOf(kv ...any) *Object {
	o := NewObject()
	for i := 0; i+1 < len(kv); i += 2 {
		o.Set(kv[i].(string), kv[i+1])
	}
	return o
}

func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return o.m.Len()
}

func (o *Object) Get(key string) (any, bool) {
	if o == nil {
		return nil, false
	}
	return o.m.Get(key)
}

func (o *Object) Has(key string) bool {
	_, ok := o.Get(key)
	return ok
}

func (o *Object) Set(key string, value any) {
	o.m.Set(key, value)
}

func (o *Object) Delete(key string) {
	o.m.Delete(key)
}

// Keys returns the member names in insertion order.
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	keys := make([]string, 0, o.m.Len())
	for p := o.m.Oldest(); p != nil; p = p.Next() {
		keys = append(keys, p.Key)
	}
	return keys
}

// All iterates members in insertion order.
func (o *Object) All() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		if o == nil {
			return
		}
		for p := o.m.Oldest(); p != nil; p = p.Next() {
			if !yield(p.Key, p.Value) {
				return
			}
		}
	}
}

// Map returns a shallow, unordered copy.
func (o *Object) Map() map[string]any {
	out := make(map[string]any, o.Len())
	for k, v := range o.All() {
		out[k] = v
	}
	return out
}

func (o *Object) MarshalJSON() ([]byte, error) {
	return Marshal(o)
}

func (o *Object) UnmarshalJSON(data []byte) error {
	v, err := Decode(data)
	if err != nil {
		return err
	}
	src, ok := v.(*Object)
	if !ok {
		return &SyntaxError{Msg: "expected object", Offset: 0}
	}
	o.m = src.m
	return nil
}
