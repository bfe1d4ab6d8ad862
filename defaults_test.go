package jsonschema_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/oarkflow/jsonschema"
	"github.com/oarkflow/jsonschema/jsonmap"
)

func withDefaults(t *testing.T, schema string, instance map[string]any, opts ...jsonschema.Option) *jsonschema.Result {
	t.Helper()
	s := compile(t, schema)
	return validate(t, s, instance, append([]jsonschema.Option{jsonschema.WithInsertPropertyDefaults(true)}, opts...)...)
}

func TestInsertPropertyDefaults(t *testing.T) {
	tests := []struct {
		name     string
		schema   string
		instance map[string]any
		want     map[string]any
	}{
		{
			"inline",
			`{"properties": {"a": {"default": 1}, "b": {"default": "x"}}}`,
			map[string]any{"b": "kept"},
			map[string]any{"a": int64(1), "b": "kept"},
		},
		{
			"through ref",
			`{"$defs": {"x": {"default": 1}}, "properties": {"a": {"$ref": "#/$defs/x"}}}`,
			map[string]any{},
			map[string]any{"a": int64(1)},
		},
		{
			"inline wins over ref",
			`{"$defs": {"x": {"default": 1}}, "properties": {"a": {"$ref": "#/$defs/x", "default": 2}}}`,
			map[string]any{},
			map[string]any{"a": int64(2)},
		},
		{
			"nested objects",
			`{"properties": {"o": {"type": "object", "properties": {"a": {"default": true}}}}}`,
			map[string]any{"o": map[string]any{}},
			map[string]any{"o": map[string]any{"a": true}},
		},
		{
			"inserted object is filled",
			`{"properties": {"o": {"default": {}, "properties": {"a": {"default": 1}}}}}`,
			map[string]any{},
			map[string]any{"o": map[string]any{"a": int64(1)}},
		},
		{
			"conflicting defaults",
			`{"allOf": [{"properties": {"a": {"default": 1}}}, {"properties": {"a": {"default": 2}}}]}`,
			map[string]any{},
			map[string]any{},
		},
		{
			"agreeing defaults",
			`{"allOf": [{"properties": {"a": {"default": 1}}}, {"properties": {"a": {"default": 1.0}}}]}`,
			map[string]any{},
			map[string]any{"a": int64(1)},
		},
		{
			"valid branch preferred",
			`{"oneOf": [
				{"properties": {"kind": {"const": "x"}, "a": {"default": "x-default"}}, "required": ["kind"]},
				{"properties": {"kind": {"const": "y"}, "a": {"default": "y-default"}}, "required": ["kind"]}
			]}`,
			map[string]any{"kind": "y"},
			map[string]any{"kind": "y", "a": "y-default"},
		},
		{
			"not is skipped",
			`{"not": {"properties": {"a": {"default": 1}}, "required": ["b"]}}`,
			map[string]any{},
			map[string]any{},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			withDefaults(t, tc.schema, tc.instance)
			if !jsonmap.Equal(tc.want, tc.instance) {
				t.Errorf("instance mismatch (-want +got):\n%s", cmp.Diff(tc.want, tc.instance))
			}
		})
	}
}

func TestDefaultsAreRevalidated(t *testing.T) {
	r := withDefaults(t, `{"properties": {"a": {"type": "string", "default": 1}}}`, map[string]any{})
	if r.Valid {
		t.Error("invalid default passed validation")
	}
}

func TestDefaultsAreCopied(t *testing.T) {
	s := compile(t, `{"properties": {"a": {"default": {"list": [1]}}}}`)
	first := map[string]any{}
	second := map[string]any{}
	validate(t, s, first, jsonschema.WithInsertPropertyDefaults(true))
	validate(t, s, second, jsonschema.WithInsertPropertyDefaults(true))
	jsonmap.Set(first["a"], "list", "changed")
	if !jsonmap.Equal(second, map[string]any{"a": map[string]any{"list": []any{int64(1)}}}) {
		t.Errorf("defaults share state: %v", second)
	}
}

func TestDefaultResolver(t *testing.T) {
	instance := map[string]any{}
	withDefaults(t, `{"properties": {"a": {"default": "x"}}}`, instance,
		jsonschema.WithPropertyDefaultResolver(func(v any) any {
			if s, ok := v.(string); ok {
				return s + s
			}
			return v
		}))
	if diff := cmp.Diff(map[string]any{"a": "xx"}, instance); diff != "" {
		t.Errorf("instance mismatch (-want +got):\n%s", diff)
	}
}

func TestExpressionDefaults(t *testing.T) {
	schema := `{"properties": {
		"age": {"type": "integer"},
		"double": {"default": "{{ age * 2 }}"},
		"meta": {"default": "{{{{'source': 'literal'}}}}"}
	}}`
	instance := map[string]any{"age": int64(21)}
	withDefaults(t, schema, instance, jsonschema.WithExpressionDefaults(true))
	if !jsonmap.Equal(instance["double"], int64(42)) {
		t.Errorf("double = %#v", instance["double"])
	}
	if !jsonmap.Equal(instance["meta"], map[string]any{"source": "literal"}) {
		t.Errorf("meta = %#v", instance["meta"])
	}

	instance = map[string]any{"age": int64(21)}
	withDefaults(t, schema, instance)
	if instance["double"] != "{{ age * 2 }}" {
		t.Errorf("expression evaluated without the option: %#v", instance["double"])
	}
}

func TestDefaultsAreIdempotent(t *testing.T) {
	s := compile(t, `{"properties": {"a": {"default": 1}}}`)
	tests := []struct {
		name     string
		instance map[string]any
		want     map[string]any
	}{
		{"missing", map[string]any{}, map[string]any{"a": int64(1)}},
		{"present", map[string]any{"a": int64(5)}, map[string]any{"a": int64(5)}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			for run := 0; run < 2; run++ {
				validate(t, s, tc.instance, jsonschema.WithInsertPropertyDefaults(true))
				if !jsonmap.Equal(tc.want, tc.instance) {
					t.Errorf("run %d: instance mismatch (-want +got):\n%s", run, cmp.Diff(tc.want, tc.instance))
				}
			}
		})
	}
}

func TestDefaultsIntoGoValues(t *testing.T) {
	s := compile(t, `{"properties": {
		"a": {"default": 1},
		"o": {"properties": {"b": {"default": 2}}}
	}}`)
	instance := map[string]any{
		"tags": []string{"x"},
		"o":    map[string]int{"n": 1},
	}
	validate(t, s, instance, jsonschema.WithInsertPropertyDefaults(true))
	want := map[string]any{
		"a":    int64(1),
		"tags": []any{"x"},
		"o":    map[string]any{"n": int64(1), "b": int64(2)},
	}
	if !jsonmap.Equal(want, instance) {
		t.Errorf("instance mismatch (-want +got):\n%s", cmp.Diff(want, instance))
	}
}

func TestDefaultsNeedMutableInstance(t *testing.T) {
	s := compile(t, `{"properties": {"A": {"type": "integer"}, "B": {"default": 1}}}`)
	instance := struct{ A int }{A: 1}
	if _, err := s.Validate(instance, jsonschema.WithInsertPropertyDefaults(true)); !errors.Is(err, jsonschema.ErrInstanceNotInPlace) {
		t.Errorf("got %v, want ErrInstanceNotInPlace", err)
	}
	r := validate(t, s, instance)
	if !r.Valid {
		t.Error("struct instance rejected without defaults")
	}
}
