package openapi_test

import (
	"errors"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/oarkflow/jsonschema"
	"github.com/oarkflow/jsonschema/jsonmap"
	"github.com/oarkflow/jsonschema/openapi"
)

const petSchema = `{
	"$defs": {
		"Cat": {"type": "object", "properties": {"petType": {"const": "Cat"}, "meows": {"type": "boolean"}}, "required": ["meows"]},
		"Dog": {"type": "object", "properties": {"petType": {"const": "dog"}, "barks": {"type": "boolean"}}, "required": ["barks"]}
	},
	"oneOf": [{"$ref": "#/$defs/Cat"}, {"$ref": "#/$defs/Dog"}],
	"discriminator": {"propertyName": "petType", "mapping": {"dog": "#/$defs/Dog"}},
	"externalDocs": {"url": "https://example.com/pets"},
	"example": {"petType": "Cat", "meows": true}
}`

func compile(t *testing.T, schema string) *jsonschema.Schema {
	t.Helper()
	s, err := jsonschema.Compile([]byte(schema), jsonschema.WithVocabulary(openapi.Vocabulary()))
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	return s
}

func TestDiscriminator(t *testing.T) {
	s := compile(t, petSchema)
	tests := []struct {
		name     string
		instance string
		valid    bool
		kind     string
		details  map[string]any
	}{
		{"explicit mapping", `{"petType": "dog", "barks": true}`, true, "", nil},
		{"implicit mapping", `{"petType": "Cat", "meows": false}`, true, "", nil},
		{"mapped schema fails", `{"petType": "dog", "meows": true}`, false, "required", nil},
		{"missing property", `{"barks": true}`, false, "discriminator", map[string]any{"missing_keys": []any{"petType"}}},
		{"unmapped value", `{"petType": "bird"}`, false, "discriminator", map[string]any{"property": "petType", "value": "bird", "reason": "no mapping"}},
		{"not a string", `{"petType": 1}`, false, "discriminator", map[string]any{"property": "petType", "reason": "not a string"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			instance, err := jsonmap.Decode([]byte(tc.instance))
			if err != nil {
				t.Fatal(err)
			}
			r, err := s.Validate(instance)
			if err != nil {
				t.Fatal(err)
			}
			if r.Valid != tc.valid {
				t.Fatalf("Valid = %v, want %v", r.Valid, tc.valid)
			}
			if tc.valid {
				return
			}
			var found *jsonschema.ClassicError
			for e := range r.Classic() {
				if e.Type == tc.kind {
					found = &e
					break
				}
			}
			if found == nil {
				t.Fatalf("no %q error in %+v", tc.kind, slices.Collect(r.Classic()))
			}
			if tc.details != nil {
				if diff := cmp.Diff(tc.details, found.Details); diff != "" {
					t.Errorf("details mismatch (-want +got):\n%s", diff)
				}
			}
		})
	}
}

func TestDiscriminatorRequiresPropertyName(t *testing.T) {
	_, err := jsonschema.Compile([]byte(`{"discriminator": {"mapping": {}}}`), jsonschema.WithVocabulary(openapi.Vocabulary()))
	if !errors.Is(err, jsonschema.ErrInvalidKeywordValue) {
		t.Errorf("err = %v, want ErrInvalidKeywordValue", err)
	}
}

func TestWithoutVocabularyDiscriminatorIsAnnotation(t *testing.T) {
	s, err := jsonschema.Compile([]byte(petSchema))
	if err != nil {
		t.Fatal(err)
	}
	if !s.IsValid(map[string]any{"meows": true}) {
		t.Error("discriminator applied without the vocabulary")
	}
}
