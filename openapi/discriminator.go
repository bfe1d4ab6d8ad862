// Package openapi provides the OpenAPI 3.1 base vocabulary as an extension
// of the 2020-12 dialect. Only "discriminator" changes validation; the
// other keywords are reported as annotations.
package openapi

import (
	"path"

	"github.com/oarkflow/jsonschema"
	"github.com/oarkflow/jsonschema/jsonmap"
)

// VocabularyURI identifies the OpenAPI 3.1 base vocabulary.
const VocabularyURI = "https://spec.openapis.org/oas/3.1/vocab/base"

// Vocabulary returns the vocabulary, for use with jsonschema.WithVocabulary.
func Vocabulary() *jsonschema.Vocabulary {
	return &jsonschema.Vocabulary{
		URI: VocabularyURI,
		Keywords: []*jsonschema.Keyword{
			{Name: "discriminator", Compile: compileDiscriminator},
			{Name: "xml", Compile: compileAnnotation},
			{Name: "externalDocs", Compile: compileAnnotation},
			{Name: "example", Compile: compileAnnotation},
		},
	}
}

func compileAnnotation(_ *jsonschema.KeywordCompiler, v any) (jsonschema.Evaluator, error) {
	return jsonschema.EvaluatorFunc(func(e *jsonschema.Evaluation) *jsonschema.Result {
		return e.Valid(v)
	}), nil
}

// discriminator selects the schema an object must match by the value of
// one of its properties.
type discriminator struct {
	propertyName string
	mapping      map[string]*jsonschema.Ref
}

func compileDiscriminator(c *jsonschema.KeywordCompiler, v any) (jsonschema.Evaluator, error) {
	if !jsonmap.IsObject(v) {
		return nil, c.Errorf("discriminator must be an object")
	}
	prop, _ := jsonmap.Get(v, "propertyName")
	name, ok := prop.(string)
	if !ok || name == "" {
		return nil, c.Errorf("discriminator: propertyName must be a non-empty string")
	}
	d := &discriminator{propertyName: name, mapping: map[string]*jsonschema.Ref{}}
	if m, ok := jsonmap.Get(v, "mapping"); ok {
		if !jsonmap.IsObject(m) {
			return nil, c.Errorf("discriminator: mapping must be an object")
		}
		for _, value := range jsonmap.Keys(m) {
			raw, _ := jsonmap.Get(m, value)
			uri, ok := raw.(string)
			if !ok {
				return nil, c.Errorf("discriminator: mapping for %q must be a string", value)
			}
			ref, err := c.Reference(uri)
			if err != nil {
				return nil, c.Errorf("discriminator: mapping for %q: %v", value, err)
			}
			d.mapping[value] = ref
		}
	}
	// Candidates of oneOf and anyOf map implicitly by the last segment of
	// their reference.
	for _, applicator := range []string{"oneOf", "anyOf"} {
		list, _ := c.Sibling(applicator)
		items, _ := list.([]any)
		for _, item := range items {
			r, _ := jsonmap.Get(item, "$ref")
			uri, ok := r.(string)
			if !ok {
				continue
			}
			value := path.Base(uri)
			if _, exists := d.mapping[value]; exists {
				continue
			}
			ref, err := c.Reference(uri)
			if err != nil {
				return nil, c.Errorf("discriminator: %v", err)
			}
			d.mapping[value] = ref
		}
	}
	return d, nil
}

func (d *discriminator) Evaluate(e *jsonschema.Evaluation) *jsonschema.Result {
	if !jsonmap.IsObject(e.Instance) {
		return e.Valid(nil)
	}
	raw, ok := jsonmap.Get(e.Instance, d.propertyName)
	if !ok {
		return e.Invalid("", map[string]any{"missing_keys": []any{d.propertyName}})
	}
	value, ok := raw.(string)
	if !ok {
		return e.Invalid("", map[string]any{"property": d.propertyName, "reason": "not a string"})
	}
	ref, ok := d.mapping[value]
	if !ok {
		return e.Invalid("", map[string]any{"property": d.propertyName, "value": value, "reason": "no mapping"})
	}
	r := e.Apply(ref.Target(), e.Instance, e.InstanceLocation, "mapping", value)
	return e.Result(r.Valid, []*jsonschema.Result{r}, value)
}
