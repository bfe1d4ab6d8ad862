package jsonschema_test

import (
	"errors"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/oarkflow/jsonschema"
	"github.com/oarkflow/jsonschema/jsonmap"
	"github.com/oarkflow/jsonschema/regex"
)

func compile(t testing.TB, schema string, opts ...jsonschema.Option) *jsonschema.Schema {
	t.Helper()
	s, err := jsonschema.Compile([]byte(schema), opts...)
	if err != nil {
		t.Fatalf("compile %s: %v", schema, err)
	}
	return s
}

func decode(t testing.TB, data string) any {
	t.Helper()
	v, err := jsonmap.Decode([]byte(data))
	if err != nil {
		t.Fatalf("decode %s: %v", data, err)
	}
	return v
}

func validate(t testing.TB, s *jsonschema.Schema, instance any, opts ...jsonschema.Option) *jsonschema.Result {
	t.Helper()
	r, err := s.Validate(instance, opts...)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	return r
}

func TestKeywords(t *testing.T) {
	tests := []struct {
		name     string
		schema   string
		instance string
		valid    bool
	}{
		{"type string", `{"type": "string"}`, `"a"`, true},
		{"type mismatch", `{"type": "string"}`, `1`, false},
		{"type list", `{"type": ["string", "null"]}`, `null`, true},
		{"integer whole float", `{"type": "integer"}`, `1.0`, true},
		{"enum", `{"enum": [1, "a", {"b": [1]}]}`, `{"b": [1.0]}`, true},
		{"enum miss", `{"enum": [1, "a"]}`, `"b"`, false},
		{"const", `{"const": {"a": 1, "b": 2}}`, `{"b": 2, "a": 1}`, true},
		{"multipleOf decimal", `{"multipleOf": 0.1}`, `0.3`, true},
		{"multipleOf miss", `{"multipleOf": 2}`, `3`, false},
		{"maximum", `{"maximum": 5}`, `5`, true},
		{"exclusiveMaximum", `{"exclusiveMaximum": 5}`, `5`, false},
		{"minimum", `{"minimum": 5}`, `4.9`, false},
		{"exclusiveMinimum", `{"exclusiveMinimum": 5}`, `5.1`, true},
		{"maxLength counts code points", `{"maxLength": 2}`, `"日本"`, true},
		{"minLength", `{"minLength": 2}`, `"a"`, false},
		{"pattern", `{"pattern": "^a+$"}`, `"aaa"`, true},
		{"pattern unanchored", `{"pattern": "b"}`, `"abc"`, true},
		{"maxItems", `{"maxItems": 1}`, `[1, 2]`, false},
		{"minItems", `{"minItems": 1}`, `[]`, false},
		{"uniqueItems", `{"uniqueItems": true}`, `[1, 1.0]`, false},
		{"uniqueItems objects", `{"uniqueItems": true}`, `[{"a": 1}, {"a": 2}]`, true},
		{"contains", `{"contains": {"type": "string"}}`, `[1, "a"]`, true},
		{"contains none", `{"contains": {"type": "string"}}`, `[1, 2]`, false},
		{"minContains", `{"contains": {"type": "string"}, "minContains": 2}`, `["a", 1]`, false},
		{"minContains zero", `{"contains": {"type": "string"}, "minContains": 0}`, `[1]`, true},
		{"maxContains", `{"contains": {"type": "string"}, "maxContains": 1}`, `["a", "b"]`, false},
		{"maxProperties", `{"maxProperties": 1}`, `{"a": 1, "b": 2}`, false},
		{"minProperties", `{"minProperties": 1}`, `{}`, false},
		{"required", `{"required": ["a"]}`, `{"a": null}`, true},
		{"dependentRequired", `{"dependentRequired": {"a": ["b"]}}`, `{"a": 1}`, false},
		{"dependentSchemas", `{"dependentSchemas": {"a": {"required": ["b"]}}}`, `{"b": 1}`, true},
		{"allOf", `{"allOf": [{"type": "integer"}, {"minimum": 2}]}`, `1`, false},
		{"anyOf", `{"anyOf": [{"type": "integer"}, {"type": "string"}]}`, `"a"`, true},
		{"oneOf two matches", `{"oneOf": [{"type": "integer"}, {"minimum": 0}]}`, `1`, false},
		{"oneOf one match", `{"oneOf": [{"type": "integer"}, {"minimum": 0}]}`, `-1`, true},
		{"not", `{"not": {"type": "string"}}`, `"a"`, false},
		{"if then", `{"if": {"type": "integer"}, "then": {"minimum": 0}, "else": {"type": "string"}}`, `-1`, false},
		{"if else", `{"if": {"type": "integer"}, "then": {"minimum": 0}, "else": {"type": "string"}}`, `"a"`, true},
		{"then without if", `{"then": false}`, `1`, true},
		{"prefixItems", `{"prefixItems": [{"type": "integer"}], "items": false}`, `[1, 2]`, false},
		{"items after prefix", `{"prefixItems": [{"type": "integer"}], "items": {"type": "string"}}`, `[1, "a"]`, true},
		{"properties", `{"properties": {"a": {"type": "integer"}}}`, `{"a": "x"}`, false},
		{"patternProperties", `{"patternProperties": {"^x-": {"type": "string"}}}`, `{"x-a": 1}`, false},
		{"additionalProperties", `{"properties": {"a": true}, "patternProperties": {"^b": true}, "additionalProperties": false}`, `{"a": 1, "bb": 2}`, true},
		{"additionalProperties extra", `{"properties": {"a": true}, "additionalProperties": false}`, `{"a": 1, "c": 2}`, false},
		{"propertyNames", `{"propertyNames": {"maxLength": 2}}`, `{"abc": 1}`, false},
		{"false schema", `false`, `1`, false},
		{"true schema", `true`, `{"a": 1}`, true},
		{"unknown keyword", `{"x-unknown": {"type": "string"}}`, `1`, true},
		{"format email", `{"format": "email"}`, `"nope"`, false},
		{"format ignores other types", `{"format": "email"}`, `1`, true},
		{"unknown format", `{"format": "no-such-format"}`, `"x"`, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := compile(t, tc.schema)
			instance := decode(t, tc.instance)
			r := validate(t, s, instance)
			if r.Valid != tc.valid {
				t.Errorf("Validate = %v, want %v", r.Valid, tc.valid)
			}
			if got := s.IsValid(instance); got != tc.valid {
				t.Errorf("IsValid = %v, want %v", got, tc.valid)
			}
		})
	}
}

func TestClassicTypeError(t *testing.T) {
	s := compile(t, `{"properties": {"a": {"type": "string"}}}`)
	r := validate(t, s, decode(t, `{"a": 1}`))
	errs := slices.Collect(r.Classic())
	if len(errs) != 1 {
		t.Fatalf("got %d errors, want 1", len(errs))
	}
	e := errs[0]
	if e.Error != "value at `/a` is not a string" {
		t.Errorf("Error = %q", e.Error)
	}
	if e.Type != "string" || e.DataPointer != "/a" || e.SchemaPointer != "/properties/a" {
		t.Errorf("got type=%q data_pointer=%q schema_pointer=%q", e.Type, e.DataPointer, e.SchemaPointer)
	}
	if !jsonmap.Equal(e.Data, int64(1)) {
		t.Errorf("Data = %v", e.Data)
	}
}

func TestRequiredMessage(t *testing.T) {
	s := compile(t, `{"required": ["one", "two"]}`)
	r := validate(t, s, decode(t, `{"two": 2}`))
	errs := slices.Collect(r.Classic())
	if len(errs) != 1 {
		t.Fatalf("got %d errors, want 1", len(errs))
	}
	if want := "object at root is missing required properties: one"; errs[0].Error != want {
		t.Errorf("Error = %q, want %q", errs[0].Error, want)
	}
	if diff := cmp.Diff(map[string]any{"missing_keys": []any{"one"}}, errs[0].Details); diff != "" {
		t.Errorf("details mismatch (-want +got):\n%s", diff)
	}
}

func TestDraft4Integer(t *testing.T) {
	d4 := compile(t, `{"$schema": "http://json-schema.org/draft-04/schema#", "type": "integer"}`)
	d2020 := compile(t, `{"type": "integer"}`)
	if d4.IsValid(1.0) {
		t.Error("draft-04 accepted 1.0 as integer")
	}
	if !d4.IsValid(int64(1)) {
		t.Error("draft-04 rejected 1")
	}
	if !d2020.IsValid(1.0) {
		t.Error("2020-12 rejected 1.0 as integer")
	}
	if d4.Draft() != jsonschema.Draft4 {
		t.Errorf("Draft = %v", d4.Draft())
	}
}

func TestExclusiveBounds(t *testing.T) {
	_, err := jsonschema.Compile([]byte(`{"exclusiveMaximum": true}`))
	if !errors.Is(err, jsonschema.ErrInvalidKeywordValue) {
		t.Fatalf("err = %v, want ErrInvalidKeywordValue", err)
	}
	var se *jsonschema.SchemaError
	if !errors.As(err, &se) || se.Location != "jsonschema://schema#/exclusiveMaximum" {
		t.Errorf("SchemaError = %+v", se)
	}

	s := compile(t, `{"$schema": "http://json-schema.org/draft-04/schema#", "maximum": 5, "exclusiveMaximum": true}`)
	if s.IsValid(int64(5)) {
		t.Error("draft-04 exclusive maximum accepted the bound")
	}
	if !s.IsValid(int64(4)) {
		t.Error("draft-04 exclusive maximum rejected 4")
	}
}

func TestDraft7RefIgnoresSiblings(t *testing.T) {
	s := compile(t, `{
		"$schema": "http://json-schema.org/draft-07/schema#",
		"definitions": {"str": {"type": "string"}},
		"properties": {"a": {"$ref": "#/definitions/str", "maxLength": 1}}
	}`)
	if !s.IsValid(decode(t, `{"a": "long"}`)) {
		t.Error("sibling of $ref was applied in draft-07")
	}
	s = compile(t, `{
		"$defs": {"str": {"type": "string"}},
		"properties": {"a": {"$ref": "#/$defs/str", "maxLength": 1}}
	}`)
	if s.IsValid(decode(t, `{"a": "long"}`)) {
		t.Error("sibling of $ref was ignored in 2020-12")
	}
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name   string
		schema string
		opts   []jsonschema.Option
		kind   error
	}{
		{"invalid regexp", `{"pattern": "("}`, nil, jsonschema.ErrInvalidRegexp},
		{"invalid pattern property", `{"patternProperties": {"(": true}}`, nil, jsonschema.ErrInvalidRegexp},
		{"bad keyword value", `{"minLength": -1}`, nil, jsonschema.ErrInvalidKeywordValue},
		{"bad type name", `{"type": "float"}`, nil, jsonschema.ErrInvalidKeywordValue},
		{"not a schema", `{"properties": {"a": 1}}`, nil, jsonschema.ErrInvalidSchema},
		{"missing remote", `{"$ref": "https://example.com/missing.json"}`, nil, jsonschema.ErrInvalidRefResolution},
		{"missing anchor", `{"$ref": "#nowhere"}`, nil, jsonschema.ErrInvalidRefResolution},
		{"bad pointer", `{"$ref": "#/$defs/missing"}`, nil, jsonschema.ErrInvalidRefPointer},
		{"unknown meta-schema", `{"$schema": "https://example.com/no-meta"}`, nil, jsonschema.ErrUnsupportedMetaSchema},
		{
			"unknown required vocabulary",
			`{"$schema": "https://example.com/meta"}`,
			[]jsonschema.Option{jsonschema.WithResources(map[string]any{
				"https://example.com/meta": map[string]any{
					"$schema": "https://json-schema.org/draft/2020-12/schema",
					"$id":     "https://example.com/meta",
					"$vocabulary": map[string]any{
						jsonschema.Vocab202012Core:   true,
						"https://example.com/vocab/x": true,
					},
				},
			})},
			jsonschema.ErrUnknownVocabulary,
		},
		{
			"unknown asserted format",
			`{"$schema": "https://example.com/format-meta", "format": "no-such-format"}`,
			[]jsonschema.Option{jsonschema.WithResources(map[string]any{
				"https://example.com/format-meta": map[string]any{
					"$schema": "https://json-schema.org/draft/2020-12/schema",
					"$id":     "https://example.com/format-meta",
					"$vocabulary": map[string]any{
						jsonschema.Vocab202012Core:            true,
						jsonschema.Vocab202012FormatAssertion: true,
					},
				},
			})},
			jsonschema.ErrUnknownFormat,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := jsonschema.Compile([]byte(tc.schema), tc.opts...)
			if !errors.Is(err, tc.kind) {
				t.Errorf("err = %v, want %v", err, tc.kind)
			}
		})
	}
}

func TestInvalidKeyType(t *testing.T) {
	_, err := jsonschema.Compile(map[any]any{1: "x"})
	if !errors.Is(err, jsonschema.ErrInvalidKeyType) {
		t.Fatalf("err = %v, want ErrInvalidKeyType", err)
	}
}

func TestFormatAssertionOption(t *testing.T) {
	s := compile(t, `{"format": "email"}`, jsonschema.WithFormatAssertion(false))
	r := validate(t, s, "nope")
	if !r.Valid {
		t.Error("format asserted with assertion disabled")
	}
	s = compile(t, `{"format": "even"}`, jsonschema.WithFormat("even", func(v string) error {
		if len(v)%2 != 0 {
			return errors.New("odd length")
		}
		return nil
	}))
	if s.IsValid("abc") || !s.IsValid("ab") {
		t.Error("custom format not applied")
	}
}

func TestContent(t *testing.T) {
	d7 := compile(t, `{"$schema": "http://json-schema.org/draft-07/schema#", "contentEncoding": "base64", "contentMediaType": "application/json"}`)
	if d7.IsValid("!!!") {
		t.Error("draft-07 accepted invalid base64")
	}
	if d7.IsValid("bm90IGpzb24=") {
		t.Error("draft-07 accepted content that is not JSON")
	}
	if !d7.IsValid("eyJhIjogMX0=") {
		t.Error("draft-07 rejected valid content")
	}

	s := compile(t, `{"contentEncoding": "base64", "contentMediaType": "application/json", "contentSchema": {"required": ["b"]}}`)
	r := validate(t, s, "eyJhIjogMX0=")
	if !r.Valid {
		t.Error("2020-12 content keywords asserted")
	}
	if !s.IsValid("!!!") {
		t.Error("2020-12 contentEncoding asserted")
	}
}

func TestOneOfDetails(t *testing.T) {
	s := compile(t, `{"oneOf": [{"type": "integer"}, {"minimum": 0}]}`)
	r := validate(t, s, int64(1))
	errs := slices.Collect(r.Classic())
	if len(errs) != 1 || errs[0].Type != "oneOf" {
		t.Fatalf("errors = %+v", errs)
	}
	if diff := cmp.Diff(map[string]any{"matches": []any{0, 1}}, errs[0].Details); diff != "" {
		t.Errorf("details mismatch (-want +got):\n%s", diff)
	}
}

func TestOneOfNoMatch(t *testing.T) {
	s := compile(t, `{"oneOf": [{"type": "integer"}, {"minimum": 0}]}`)
	r := validate(t, s, decode(t, `-1.5`))
	if r.Valid {
		t.Fatal("oneOf without a matching branch is valid")
	}
	var got []string
	for e := range r.Classic() {
		if e.Details != nil {
			t.Errorf("%s carries details %v", e.Type, e.Details)
		}
		got = append(got, e.SchemaPointer+" "+e.Type)
	}
	slices.Sort(got)
	if diff := cmp.Diff([]string{"/oneOf/0 integer", "/oneOf/1 minimum"}, got); diff != "" {
		t.Errorf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestPatternDialects(t *testing.T) {
	tests := []struct {
		name     string
		compiler regex.Compiler
		instance string
		want     bool
	}{
		{"native multiline", regex.Native, "bar\nfoo\nbar", true},
		{"ecma multiline", regex.ECMA, "bar\nfoo\nbar", false},
		{"native exact", regex.Native, "foo", true},
		{"ecma exact", regex.ECMA, "foo", true},
		{"ecma trailing newline", regex.ECMA, "foo\n", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := compile(t, `{"pattern": "^foo$", "patternProperties": {"^foo$": {"type": "integer"}}}`, jsonschema.WithRegexp(tc.compiler))
			if got := s.IsValid(tc.instance); got != tc.want {
				t.Errorf("pattern: IsValid(%q) = %v, want %v", tc.instance, got, tc.want)
			}
			// a matching property name must hold an integer
			if got := s.IsValid(map[string]any{tc.instance: "x"}); got == tc.want {
				t.Errorf("patternProperties: IsValid(%q) = %v, want %v", tc.instance, got, !tc.want)
			}
		})
	}
}

func TestCompileIsDeterministic(t *testing.T) {
	schema := `{
		"properties": {
			"z": {"type": "string"}, "a": {"type": "string"}, "m": {"minimum": 10},
			"n": {"$ref": "#/$defs/pos"}
		},
		"patternProperties": {"^x": {"type": "boolean"}},
		"required": ["q", "r"],
		"$defs": {"pos": {"exclusiveMinimum": 0}}
	}`
	instance := decode(t, `{"z": 1, "a": 2, "m": 3, "n": -1, "x1": 0, "x2": "y"}`)
	var outputs [2][]byte
	var classic [2][]string
	for i := range outputs {
		s, err := jsonschema.NewCompiler().Compile([]byte(schema))
		if err != nil {
			t.Fatal(err)
		}
		r := validate(t, s, instance)
		if outputs[i], err = jsonschema.Marshal(r.Verbose()); err != nil {
			t.Fatal(err)
		}
		for e := range r.Classic() {
			classic[i] = append(classic[i], e.DataPointer+" "+e.Error)
		}
	}
	if diff := cmp.Diff(string(outputs[0]), string(outputs[1])); diff != "" {
		t.Errorf("verbose output differs between compilations:\n%s", diff)
	}
	if diff := cmp.Diff(classic[0], classic[1]); diff != "" {
		t.Errorf("classic order differs between compilations:\n%s", diff)
	}
	if len(classic[0]) != 7 {
		t.Errorf("got %d errors, want 7: %v", len(classic[0]), classic[0])
	}
}

func TestCustomKeyword(t *testing.T) {
	even := func(instance, schema any, instanceLocation string) any {
		n, ok := jsonmap.Float(instance)
		if !ok {
			return nil
		}
		if int64(n)%2 == 0 {
			return true
		}
		return "number at " + instanceLocation + " is odd"
	}
	s := compile(t, `{"properties": {"n": {"even": true}}}`, jsonschema.WithCustomKeyword("even", even))
	if !s.IsValid(decode(t, `{"n": 2}`)) {
		t.Error("rejected even number")
	}
	r := validate(t, s, decode(t, `{"n": 3}`))
	errs := slices.Collect(r.Classic())
	if len(errs) != 1 || errs[0].Error != "number at /n is odd" || errs[0].Type != "even" {
		t.Fatalf("errors = %+v", errs)
	}

	many := func(instance, schema any, instanceLocation string) any {
		return []any{true, false, "second failure"}
	}
	s = compile(t, `{"many": 1}`, jsonschema.WithCustomKeyword("many", many))
	r = validate(t, s, int64(1))
	if r.Valid {
		t.Fatal("array result with failures was valid")
	}
	if got := len(slices.Collect(r.Classic())); got != 2 {
		t.Errorf("got %d errors, want 2", got)
	}
}

func TestAccessMode(t *testing.T) {
	s := compile(t, `{"properties": {"id": {"readOnly": true}, "password": {"writeOnly": true}}}`)
	id := decode(t, `{"id": 1}`)
	password := decode(t, `{"password": "x"}`)
	tests := []struct {
		name     string
		mode     jsonschema.AccessMode
		instance any
		valid    bool
	}{
		{"no mode", jsonschema.AccessNone, id, true},
		{"read readOnly", jsonschema.AccessRead, id, true},
		{"write readOnly", jsonschema.AccessWrite, id, false},
		{"read writeOnly", jsonschema.AccessRead, password, false},
		{"write writeOnly", jsonschema.AccessWrite, password, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := s.IsValid(tc.instance, jsonschema.WithAccessMode(tc.mode)); got != tc.valid {
				t.Errorf("IsValid = %v, want %v", got, tc.valid)
			}
		})
	}
}

func TestPropertyHooks(t *testing.T) {
	var order []string
	before := func(instance any, property string, propertySchema, parentSchema any) {
		order = append(order, property)
		if !jsonmap.Has(instance, property) {
			jsonmap.Set(instance, property, "filled")
		}
	}
	s := compile(t, `{
		"properties": {"b": {"type": "string"}, "a": {"type": "string"}},
		"not": {"properties": {"z": true}}
	}`, jsonschema.WithBeforePropertyHook(before))
	instance := map[string]any{}
	r := validate(t, s, instance)
	if !r.Valid {
		t.Errorf("instance invalid: %+v", slices.Collect(r.Classic()))
	}
	if diff := cmp.Diff([]string{"b", "a"}, order); diff != "" {
		t.Errorf("hook order mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string]any{"a": "filled", "b": "filled"}, instance); diff != "" {
		t.Errorf("instance mismatch (-want +got):\n%s", diff)
	}
}

func TestMetaSchemasValidateThemselves(t *testing.T) {
	for _, d := range []*jsonschema.Draft{jsonschema.Draft4, jsonschema.Draft6, jsonschema.Draft7, jsonschema.Draft201909, jsonschema.Draft202012} {
		t.Run(d.Name, func(t *testing.T) {
			c := jsonschema.NewCompiler()
			m, err := c.CompileURI(d.URI)
			if err != nil {
				t.Fatalf("compile meta-schema: %v", err)
			}
			if !m.IsValidSchema() {
				r, _ := m.ValidateSchema()
				t.Errorf("meta-schema invalid: %+v", slices.Collect(r.Classic()))
			}
			s, err := c.CompileValue(map[string]any{"$schema": d.URI, "type": "object"})
			if err != nil {
				t.Fatal(err)
			}
			if !s.IsValidSchema() {
				t.Error("schema invalid against its meta-schema")
			}
			if s.MetaSchemaURI() != d.URI {
				t.Errorf("MetaSchemaURI = %q", s.MetaSchemaURI())
			}
		})
	}
}

func TestValidateSchemaReportsErrors(t *testing.T) {
	s := compile(t, `{"required": ["a", "a"]}`)
	if s.IsValidSchema() {
		t.Fatal("duplicate required names passed the meta-schema")
	}
	r, err := s.ValidateSchema()
	if err != nil {
		t.Fatal(err)
	}
	errs := slices.Collect(r.Classic())
	if len(errs) == 0 || errs[0].DataPointer != "/required" || errs[0].Type != "uniqueItems" {
		t.Errorf("errors = %+v", errs)
	}
}

func TestFacade(t *testing.T) {
	schema := []byte(`{"type": "object", "properties": {"name": {"type": "string"}, "age": {"type": "integer", "default": 18}}, "required": ["name"]}`)
	if err := jsonschema.Validate([]byte(`{"name": "a"}`), schema); err != nil {
		t.Errorf("Validate: %v", err)
	}
	err := jsonschema.Validate([]byte(`{"age": 1}`), schema)
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) || len(ve.Errors) != 1 {
		t.Fatalf("err = %v, want one validation error", err)
	}
	if ve.Error() != "object at root is missing required properties: name" {
		t.Errorf("Error = %q", ve.Error())
	}

	var person struct {
		Name string `json:"name"`
		Age  int    `json:"age"`
	}
	if err := jsonschema.Unmarshal([]byte(`{"name": "a"}`), &person, schema); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if person.Name != "a" || person.Age != 18 {
		t.Errorf("person = %+v", person)
	}
	if err := jsonschema.Unmarshal([]byte(`{}`), person, schema); err == nil {
		t.Error("Unmarshal accepted a non-pointer")
	}
}

func TestIsJSON(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{`{"name": "John", "age": 30}`, true},
		{`[{"name": "John"}, {"name": "Jane"}]`, true},
		{` {"a": "}"} `, true},
		{`{"a": [}`, false},
		{``, false},
		{`"name": "John"}`, false},
		{`name: John`, false},
	}
	for _, tc := range tests {
		if got := jsonschema.IsJSON(tc.in); got != tc.want {
			t.Errorf("IsJSON(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func BenchmarkIsJSON(b *testing.B) {
	tests := []string{
		`{"name": "John", "age": 30, "city": "New York"}`,
		`[{"name": "John"}, {"name": "Jane"}]`,
		`{name: "John", age: 30, city: "New York"}`,
		``,
	}
	for _, test := range tests {
		b.Run(test, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				jsonschema.IsJSON(test)
			}
		})
	}
}
