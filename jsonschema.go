// Package jsonschema compiles JSON Schema documents (draft-04 through
// 2020-12) and validates instances against them.
//
//	s, err := jsonschema.Compile([]byte(`{"type": "object", "required": ["id"]}`))
//	if err != nil {
//		return err
//	}
//	r, err := s.Validate(instance)
//	for e := range r.Classic() {
//		fmt.Println(e.Error)
//	}
package jsonschema

import (
	"errors"
	"slices"
	"strings"
	"sync"

	"github.com/goccy/go-reflect"

	"github.com/oarkflow/jsonschema/jsonmap"
	"github.com/oarkflow/jsonschema/marshaler"
	"github.com/oarkflow/jsonschema/unmarshaler"
)

func (s *Schema) options() *Options { return s.root.opts }

// IsValid reports whether instance conforms to s.
func (s *Schema) IsValid(instance any, opts ...Option) bool {
	o := s.options().with(opts...)
	v, err := o.instance(instance)
	if err != nil {
		return false
	}
	if !o.shortCircuit() {
		return s.validate(v, o).Valid
	}
	st := &state{opts: o, shortCircuit: true}
	return st.evaluate(s, v, "", "").Valid
}

// Validate applies s to instance and returns the full result tree. With
// default insertion enabled, missing properties of instance are filled in
// place and the instance is validated again until no default applies.
// Go slices and maps nested in instance are then replaced by their
// converted form; an instance that cannot be converted in place, such as
// a struct, fails with ErrInstanceNotInPlace.
func (s *Schema) Validate(instance any, opts ...Option) (*Result, error) {
	o := s.options().with(opts...)
	v, err := o.instance(instance)
	if err != nil {
		return nil, err
	}
	return s.validate(v, o), nil
}

func (s *Schema) validate(instance any, o *Options) *Result {
	st := &state{opts: o}
	r := st.evaluate(s, instance, "", "")
	if !o.InsertPropertyDefaults {
		return r
	}
	// inserted objects may carry defaults of their own
	for i := 0; i < maxDefaultDepth && insertDefaults(r, o); i++ {
		st = &state{opts: o}
		r = st.evaluate(s, instance, "", "")
	}
	return r
}

// Output validates instance and renders the result in the configured
// output format.
func (s *Schema) Output(instance any, opts ...Option) (any, error) {
	o := s.options().with(opts...)
	v, err := o.instance(instance)
	if err != nil {
		return nil, err
	}
	out, err := s.validate(v, o).Output(o.OutputFormat)
	if err != nil {
		return nil, err
	}
	if o.ResolveEnumerators {
		out = resolve(out)
	}
	return out, nil
}

// MetaSchema returns the compiled meta-schema of s.
func (s *Schema) MetaSchema() (*Schema, error) {
	return s.root.compiler.metaSchema(s.dialect.uri)
}

// IsValidSchema reports whether s conforms to its meta-schema.
func (s *Schema) IsValidSchema() bool {
	m, err := s.MetaSchema()
	if err != nil {
		return false
	}
	return m.IsValid(s.value)
}

// ValidateSchema validates s against its meta-schema.
func (s *Schema) ValidateSchema(opts ...Option) (*Result, error) {
	m, err := s.MetaSchema()
	if err != nil {
		return nil, err
	}
	return m.Validate(s.value, opts...)
}

var defaultCompiler = sync.OnceValue(func() *Compiler { return NewCompiler() })

// Marshal encodes v with the configured marshaler.
func Marshal(v any) ([]byte, error) {
	return marshaler.Instance()(v)
}

// Unmarshal decodes data into dst. When a schema is given, data is
// validated first and missing properties are filled from the schema
// defaults before decoding.
func Unmarshal(data []byte, dst any, schema ...[]byte) error {
	if reflect.ValueOf(dst).Kind() != reflect.Ptr {
		return errors.New("dst is not pointer type")
	}
	if len(schema) == 0 {
		return unmarshaler.Instance()(data, dst)
	}
	s, err := defaultCompiler().Compile(schema[0])
	if err != nil {
		return err
	}
	instance, err := jsonmap.Decode(data)
	if err != nil {
		return err
	}
	r, err := s.Validate(instance, WithInsertPropertyDefaults(true))
	if err != nil {
		return err
	}
	if !r.Valid {
		return &ValidationError{Errors: slices.Collect(r.Classic())}
	}
	out, err := Marshal(instance)
	if err != nil {
		return err
	}
	return unmarshaler.Instance()(out, dst)
}

// Validate validates the JSON document data against the JSON schema.
func Validate(data []byte, schema []byte) error {
	s, err := defaultCompiler().Compile(schema)
	if err != nil {
		return err
	}
	instance, err := jsonmap.Decode(data)
	if err != nil {
		return err
	}
	r, err := s.Validate(instance)
	if err != nil {
		return err
	}
	if !r.Valid {
		return &ValidationError{Errors: slices.Collect(r.Classic())}
	}
	return nil
}

// IsJSON is a quick structural check that s looks like a JSON object or
// array: balanced brackets outside of strings.
func IsJSON(s string) bool {
	s = strings.TrimSpace(s)
	if len(s) == 0 {
		return false
	}
	if s[0] != '{' && s[0] != '[' {
		return false
	}
	if s[len(s)-1] != '}' && s[len(s)-1] != ']' {
		return false
	}
	const maxDepth = 1024
	var stack [maxDepth]byte
	sp := 0

	for i := 0; i < len(s); i++ {
		char := s[i]
		switch char {
		case '{', '[':
			if sp >= maxDepth {
				return false
			}
			stack[sp] = char
			sp++
		case '}', ']':
			if sp == 0 {
				return false
			}
			sp--
			opening := stack[sp]
			if (char == '}' && opening != '{') || (char == ']' && opening != '[') {
				return false
			}
		case '"':
			i++
			for i < len(s) {
				if s[i] == '\\' {
					i++
				} else if s[i] == '"' {
					break
				}
				i++
			}
		}
	}

	return sp == 0
}
