package jsonschema_test

import (
	"testing"

	"github.com/oarkflow/jsonschema"
	"github.com/oarkflow/jsonschema/fetch"
	"github.com/oarkflow/jsonschema/jsonmap"
)

type instanceCase struct {
	instance string
	valid    bool
}

func checkInstances(t *testing.T, s *jsonschema.Schema, cases []instanceCase) {
	t.Helper()
	for _, c := range cases {
		r := validate(t, s, decode(t, c.instance))
		if r.Valid != c.valid {
			t.Errorf("%s: Validate = %v, want %v", c.instance, r.Valid, c.valid)
		}
		if got := s.IsValid(decode(t, c.instance)); got != c.valid {
			t.Errorf("%s: IsValid = %v, want %v", c.instance, got, c.valid)
		}
	}
}

func TestRecursiveRef(t *testing.T) {
	s := compile(t, `{
		"$defs": {"node": {"type": "object", "properties": {"next": {"$ref": "#/$defs/node"}}}},
		"$ref": "#/$defs/node"
	}`)
	checkInstances(t, s, []instanceCase{
		{`{"next": {"next": {}}}`, true},
		{`{"next": {"next": {"next": 1}}}`, false},
	})

	s = compile(t, `{"properties": {"child": {"$ref": "#"}}, "required": ["id"]}`)
	checkInstances(t, s, []instanceCase{
		{`{"id": 1, "child": {"id": 2}}`, true},
		{`{"id": 1, "child": {"child": {"id": 3}}}`, false},
	})
}

func TestRefResultLocations(t *testing.T) {
	s := compile(t, `{"$defs": {"str": {"type": "string"}}, "properties": {"a": {"$ref": "#/$defs/str"}}}`)
	r := validate(t, s, decode(t, `{"a": 1}`))
	u := r.Basic()
	nested := units(u.Nested())
	if len(nested) != 1 {
		t.Fatalf("got %d units, want 1", len(nested))
	}
	if nested[0].KeywordLocation != "/properties/a/$ref/type" {
		t.Errorf("KeywordLocation = %q", nested[0].KeywordLocation)
	}
	if nested[0].AbsoluteKeywordLocation != "jsonschema://schema#/$defs/str/type" {
		t.Errorf("AbsoluteKeywordLocation = %q", nested[0].AbsoluteKeywordLocation)
	}
}

func TestAnchorsAndIDs(t *testing.T) {
	s := compile(t, `{
		"$id": "https://example.com/root.json",
		"$defs": {
			"a": {"$anchor": "positive", "exclusiveMinimum": 0},
			"b": {"$id": "nested.json", "type": "string"}
		},
		"properties": {
			"n": {"$ref": "#positive"},
			"s": {"$ref": "nested.json"}
		}
	}`)
	checkInstances(t, s, []instanceCase{
		{`{"n": 1, "s": "x"}`, true},
		{`{"n": 0}`, false},
		{`{"s": 1}`, false},
	})
	if got := s.BaseURI(); got != "https://example.com/root.json" {
		t.Errorf("BaseURI = %q", got)
	}
}

func TestRefIntoUnknownKeyword(t *testing.T) {
	s := compile(t, `{"$defs": {"a": {"x-holder": {"type": "string"}}}, "$ref": "#/$defs/a/x-holder"}`)
	checkInstances(t, s, []instanceCase{
		{`"x"`, true},
		{`1`, false},
	})
}

func TestRemoteRefFromResources(t *testing.T) {
	res := map[string]any{
		"https://example.com/name.json": decode(t, `{"type": "string", "minLength": 1}`),
	}
	s := compile(t, `{"properties": {"name": {"$ref": "https://example.com/name.json"}}}`, jsonschema.WithResources(res))
	checkInstances(t, s, []instanceCase{
		{`{"name": "a"}`, true},
		{`{"name": ""}`, false},
	})
}

func TestDynamicRef(t *testing.T) {
	res := map[string]any{
		"https://example.com/tree": decode(t, `{
			"$id": "https://example.com/tree",
			"$dynamicAnchor": "node",
			"type": "object",
			"properties": {
				"data": true,
				"children": {"type": "array", "items": {"$dynamicRef": "#node"}}
			}
		}`),
	}
	tree, err := jsonschema.NewCompiler(jsonschema.WithResources(res)).CompileURI("https://example.com/tree")
	if err != nil {
		t.Fatal(err)
	}
	strict := compile(t, `{
		"$id": "https://example.com/strict-tree",
		"$dynamicAnchor": "node",
		"$ref": "tree",
		"unevaluatedProperties": false
	}`, jsonschema.WithResources(res))

	loose := `{"children": [{"daat": 1}]}`
	checkInstances(t, tree, []instanceCase{{loose, true}})
	checkInstances(t, strict, []instanceCase{
		{loose, false},
		{`{"children": [{"data": 1}]}`, true},
	})
}

func TestDynamicRefWithoutMatchingAnchorIsStatic(t *testing.T) {
	s := compile(t, `{
		"$id": "https://example.com/root",
		"$dynamicAnchor": "items",
		"type": "array",
		"items": {"$ref": "list"},
		"$defs": {
			"list": {
				"$id": "list",
				"$defs": {"items": {"$anchor": "items", "type": "string"}},
				"type": "array",
				"items": {"$dynamicRef": "#items"}
			}
		}
	}`)
	checkInstances(t, s, []instanceCase{
		{`[["a"]]`, true},
		{`[[1]]`, false},
	})
}

func TestRecursiveRefDraft201909(t *testing.T) {
	res := map[string]any{
		"https://example.com/tree19": decode(t, `{
			"$schema": "https://json-schema.org/draft/2019-09/schema",
			"$id": "https://example.com/tree19",
			"$recursiveAnchor": true,
			"type": "object",
			"properties": {
				"data": true,
				"children": {"type": "array", "items": {"$recursiveRef": "#"}}
			}
		}`),
	}
	strict := compile(t, `{
		"$schema": "https://json-schema.org/draft/2019-09/schema",
		"$id": "https://example.com/strict-tree19",
		"$recursiveAnchor": true,
		"$ref": "tree19",
		"unevaluatedProperties": false
	}`, jsonschema.WithResources(res))
	checkInstances(t, strict, []instanceCase{
		{`{"children": [{"daat": 1}]}`, false},
		{`{"children": [{"data": 1}]}`, true},
	})
}

func TestUnevaluatedProperties(t *testing.T) {
	tests := []struct {
		name   string
		schema string
		cases  []instanceCase
	}{
		{
			"allOf",
			`{"allOf": [{"properties": {"a": true}}], "unevaluatedProperties": false}`,
			[]instanceCase{{`{"a": 1}`, true}, {`{"a": 1, "b": 1}`, false}},
		},
		{
			"if then",
			`{
				"if": {"properties": {"kind": {"const": "x"}}},
				"then": {"properties": {"x": true}},
				"unevaluatedProperties": false
			}`,
			[]instanceCase{{`{"kind": "x", "x": 1}`, true}, {`{"kind": "y", "x": 1}`, false}},
		},
		{
			"ref",
			`{"$defs": {"a": {"properties": {"a": true}}}, "$ref": "#/$defs/a", "unevaluatedProperties": false}`,
			[]instanceCase{{`{"a": 1}`, true}, {`{"b": 1}`, false}},
		},
		{
			"patternProperties and additionalProperties",
			`{"anyOf": [{"patternProperties": {"^x": true}}, {"additionalProperties": {"type": "integer"}}], "unevaluatedProperties": false}`,
			[]instanceCase{{`{"xa": "s"}`, true}, {`{"b": 1}`, true}},
		},
		{
			"failed branch does not count",
			`{"anyOf": [{"properties": {"a": {"type": "string"}}}, true], "unevaluatedProperties": false}`,
			[]instanceCase{{`{"a": "s"}`, true}, {`{"a": 1}`, false}},
		},
		{
			"nested unevaluated",
			`{"allOf": [{"unevaluatedProperties": true}], "unevaluatedProperties": false}`,
			[]instanceCase{{`{"a": 1}`, true}},
		},
		{
			"schema",
			`{"properties": {"a": true}, "unevaluatedProperties": {"type": "string"}}`,
			[]instanceCase{{`{"a": 1, "b": "s"}`, true}, {`{"b": 1}`, false}},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			checkInstances(t, compile(t, tc.schema), tc.cases)
		})
	}
}

func TestUnevaluatedItems(t *testing.T) {
	tests := []struct {
		name   string
		schema string
		cases  []instanceCase
	}{
		{
			"prefixItems",
			`{"prefixItems": [true], "unevaluatedItems": false}`,
			[]instanceCase{{`[1]`, true}, {`[1, 2]`, false}},
		},
		{
			"items",
			`{"allOf": [{"items": {"type": "integer"}}], "unevaluatedItems": false}`,
			[]instanceCase{{`[1, 2]`, true}},
		},
		{
			"contains",
			`{"contains": {"type": "string"}, "unevaluatedItems": {"type": "integer"}}`,
			[]instanceCase{{`["a", 1]`, true}, {`["a", true]`, false}},
		},
		{
			"draft 2019-09 items array",
			`{"$schema": "https://json-schema.org/draft/2019-09/schema", "items": [true], "unevaluatedItems": false}`,
			[]instanceCase{{`[1]`, true}, {`[1, 2]`, false}},
		},
		{
			"draft 2019-09 additionalItems",
			`{"$schema": "https://json-schema.org/draft/2019-09/schema", "items": [true], "additionalItems": true, "unevaluatedItems": false}`,
			[]instanceCase{{`[1, 2, 3]`, true}},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			checkInstances(t, compile(t, tc.schema), tc.cases)
		})
	}
}

func TestLegacyItemKeywords(t *testing.T) {
	s := compile(t, `{"$schema": "http://json-schema.org/draft-07/schema#", "items": [{"type": "integer"}], "additionalItems": false}`)
	checkInstances(t, s, []instanceCase{
		{`[1]`, true},
		{`[1, 2]`, false},
		{`["a"]`, false},
	})
	s = compile(t, `{"$schema": "http://json-schema.org/draft-07/schema#", "dependencies": {"a": ["b"], "c": {"required": ["d"]}}}`)
	checkInstances(t, s, []instanceCase{
		{`{"a": 1, "b": 2}`, true},
		{`{"a": 1}`, false},
		{`{"c": 1}`, false},
	})
}

func TestRefEquivalence(t *testing.T) {
	defs := `{"definitions": {"y": {"type": "string"}}}`
	local := `{"definitions": {"y": {"type": "string"}}, "properties": {"a": {"properties": {"x": {"$ref": "#/definitions/y"}}}}}`
	remote := `{"properties": {"a": {"properties": {"x": {"$ref": "https://example.com/defs.json#/definitions/y"}}}}}`
	tests := []struct {
		name   string
		schema string
		opts   []jsonschema.Option
		root   string
	}{
		{"same document", local, nil, local},
		{"fetched document", remote, []jsonschema.Option{
			jsonschema.WithFetcher(fetch.Map{"https://example.com/defs.json": decode(t, defs)}),
		}, defs},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := compile(t, tc.schema, tc.opts...)
			checkInstances(t, s, []instanceCase{
				{`{"a": {"x": "x"}}`, true},
				{`{"a": {"x": 1}}`, false},
			})
			r := validate(t, s, decode(t, `{"a": {"x": 1}}`))
			var first *jsonschema.ClassicError
			for e := range r.Classic() {
				first = &e
				break
			}
			if first == nil {
				t.Fatal("no classic error")
			}
			if first.DataPointer != "/a/x" || first.SchemaPointer != "/definitions/y" || first.Type != "string" {
				t.Errorf("got data_pointer=%q schema_pointer=%q type=%q", first.DataPointer, first.SchemaPointer, first.Type)
			}
			if !jsonmap.Equal(decode(t, tc.root), first.RootSchema) {
				t.Errorf("root_schema = %v, want the document holding the definition", first.RootSchema)
			}
		})
	}
}
