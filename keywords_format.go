package jsonschema

import (
	"github.com/oarkflow/jsonschema/formats"
	"github.com/oarkflow/jsonschema/jsonmap"
)

var (
	kwFormat           = &Keyword{Name: "format", Compile: compileFormat}
	kwFormatAssertion  = &Keyword{Name: "format", Compile: compileFormatAssertion}
	kwContentEncoding  = &Keyword{Name: "contentEncoding", Compile: compileContentEncoding}
	kwContentMediaType = &Keyword{Name: "contentMediaType", Compile: compileContentMediaType}
	kwContentSchema    = &Keyword{Name: "contentSchema", Compile: compileContentSchema}
)

type formatKeyword struct {
	name     string
	registry formats.Registry
	assert   bool
}

func compileFormat(c *KeywordCompiler, v any) (Evaluator, error) {
	name, ok := v.(string)
	if !ok {
		return nil, c.Errorf("must be a string, got %s", jsonmap.TypeName(v))
	}
	o := c.options()
	return &formatKeyword{name: name, registry: o.Formats, assert: o.FormatAssertion || c.formatAssertion()}, nil
}

// compileFormatAssertion is "format" under the format-assertion
// vocabulary, where an unknown format is a schema error.
func compileFormatAssertion(c *KeywordCompiler, v any) (Evaluator, error) {
	name, ok := v.(string)
	if !ok {
		return nil, c.Errorf("must be a string, got %s", jsonmap.TypeName(v))
	}
	o := c.options()
	if !o.Formats.Known(name) {
		return nil, &SchemaError{Kind: ErrUnknownFormat, Location: c.Location(), Err: formatName(name)}
	}
	return &formatKeyword{name: name, registry: o.Formats, assert: true}, nil
}

type formatName string

func (f formatName) Error() string { return string(f) }

func (k *formatKeyword) Evaluate(e *Evaluation) *Result {
	s, isString := e.Instance.(string)
	if !k.assert || !isString || !k.registry.Known(k.name) {
		return e.Valid(k.name)
	}
	if ok, _ := k.registry.Check(k.name, s); !ok {
		return e.Invalid("", map[string]any{"format": k.name})
	}
	return e.Valid(k.name)
}

// Content keywords assert up to draft-07 and only annotate afterwards.

type contentEncodingKeyword struct {
	name      string
	encodings formats.Encodings
	assert    bool
}

func compileContentEncoding(c *KeywordCompiler, v any) (Evaluator, error) {
	name, ok := v.(string)
	if !ok {
		return nil, c.Errorf("must be a string, got %s", jsonmap.TypeName(v))
	}
	return &contentEncodingKeyword{name: name, encodings: c.options().ContentEncodings, assert: c.Draft().version <= 7}, nil
}

func (k *contentEncodingKeyword) Evaluate(e *Evaluation) *Result {
	s, ok := e.Instance.(string)
	if !ok || !k.encodings.Known(k.name) {
		return e.Valid(nil)
	}
	decoded, err := k.encodings.Decode(k.name, s)
	if err != nil {
		if k.assert {
			return e.Invalid("", nil)
		}
		return e.Valid(nil)
	}
	r := e.Valid(string(decoded))
	r.content, r.hasContent = string(decoded), true
	return r
}

type contentMediaTypeKeyword struct {
	mediaType string
	types     formats.MediaTypes
	assert    bool
}

func compileContentMediaType(c *KeywordCompiler, v any) (Evaluator, error) {
	mt, ok := v.(string)
	if !ok {
		return nil, c.Errorf("must be a string, got %s", jsonmap.TypeName(v))
	}
	return &contentMediaTypeKeyword{mediaType: mt, types: c.options().ContentMediaTypes, assert: c.Draft().version <= 7}, nil
}

func (k *contentMediaTypeKeyword) Evaluate(e *Evaluation) *Result {
	s, ok := e.Instance.(string)
	if !ok || !k.types.Known(k.mediaType) {
		return e.Valid(nil)
	}
	if enc, ok := e.Sibling("contentEncoding"); ok && enc.hasContent {
		s = enc.content.(string)
	}
	parsed, err := k.types.Parse(k.mediaType, []byte(s))
	if err != nil {
		if k.assert {
			return e.Invalid("", nil)
		}
		return e.Valid(nil)
	}
	r := e.Valid(parsed)
	r.content, r.hasContent = parsed, true
	return r
}

type contentSchemaKeyword struct{ s *Schema }

func compileContentSchema(c *KeywordCompiler, v any) (Evaluator, error) {
	s, err := c.Subschema(v)
	if err != nil {
		return nil, err
	}
	return &contentSchemaKeyword{s: s}, nil
}

func (k *contentSchemaKeyword) sub() *Schema { return k.s }

// Evaluate applies the schema to the parsed content. The outcome is
// reported but never fails the instance.
func (k *contentSchemaKeyword) Evaluate(e *Evaluation) *Result {
	mt, ok := e.Sibling("contentMediaType")
	if !ok || !mt.hasContent {
		return e.Valid(nil)
	}
	r := e.Apply(k.s, mt.content, e.InstanceLocation)
	return e.Result(true, []*Result{r}, nil)
}
