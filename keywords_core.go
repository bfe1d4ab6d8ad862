package jsonschema

import (
	"strconv"

	"github.com/oarkflow/jsonschema/jsonmap"
)

var (
	kwSchema          = &Keyword{Name: "$schema", Compile: compileString}
	kwVocabulary      = &Keyword{Name: "$vocabulary", Compile: compileVocabulary}
	kwID              = &Keyword{Name: "$id", Compile: compileString}
	kwIDDraft4        = &Keyword{Name: "id", Compile: compileString}
	kwAnchor          = &Keyword{Name: "$anchor", Compile: compileString}
	kwDynamicAnchor   = &Keyword{Name: "$dynamicAnchor", Compile: compileString}
	kwRecursiveAnchor = &Keyword{Name: "$recursiveAnchor", Compile: compileBool}
	kwRef             = &Keyword{Name: "$ref", Compile: compileRef}
	kwRefExclusive    = &Keyword{Name: "$ref", Exclusive: true, Compile: compileRef}
	kwDynamicRef      = &Keyword{Name: "$dynamicRef", Compile: compileDynamicRef}
	kwRecursiveRef    = &Keyword{Name: "$recursiveRef", Compile: compileRecursiveRef}
	kwDefs            = &Keyword{Name: "$defs", Compile: compileDefs}
	kwDefinitions     = &Keyword{Name: "definitions", Compile: compileDefs}
	kwComment         = &Keyword{Name: "$comment", Compile: compileString}
)

func compileString(c *KeywordCompiler, v any) (Evaluator, error) {
	if _, ok := v.(string); !ok {
		return nil, c.Errorf("must be a string, got %s", jsonmap.TypeName(v))
	}
	return nil, nil
}

func compileBool(c *KeywordCompiler, v any) (Evaluator, error) {
	if _, ok := v.(bool); !ok {
		return nil, c.Errorf("must be a boolean, got %s", jsonmap.TypeName(v))
	}
	return nil, nil
}

func compileVocabulary(c *KeywordCompiler, v any) (Evaluator, error) {
	if !jsonmap.IsObject(v) {
		return nil, c.Errorf("must be an object, got %s", jsonmap.TypeName(v))
	}
	for _, uri := range jsonmap.Keys(v) {
		if b, _ := jsonmap.Get(v, uri); jsonmap.KindOf(b) != jsonmap.Boolean {
			return nil, c.Errorf("value for %q must be a boolean", uri)
		}
	}
	return nil, nil
}

func compileDefs(c *KeywordCompiler, v any) (Evaluator, error) {
	if !jsonmap.IsObject(v) {
		return nil, c.Errorf("must be an object, got %s", jsonmap.TypeName(v))
	}
	for _, name := range jsonmap.Keys(v) {
		def, _ := jsonmap.Get(v, name)
		if _, err := c.Subschema(def, name); err != nil {
			return nil, err
		}
	}
	return nil, nil
}

// refTarget is implemented by the reference keywords. It returns the
// statically resolved target.
type refTarget interface {
	refTarget() *Schema
}

type refKeyword struct {
	ref *Ref
}

func compileRef(c *KeywordCompiler, v any) (Evaluator, error) {
	s, ok := v.(string)
	if !ok {
		return nil, c.Errorf("must be a string, got %s", jsonmap.TypeName(v))
	}
	r, err := c.Reference(s)
	if err != nil {
		return nil, c.Errorf("%q: %v", s, err)
	}
	return &refKeyword{ref: r}, nil
}

// Evaluate returns the result of the target schema as is, at the location
// of the reference.
func (k *refKeyword) Evaluate(e *Evaluation) *Result {
	return e.st.evaluate(k.ref.target, e.Instance, e.InstanceLocation, e.KeywordLocation)
}

func (k *refKeyword) refTarget() *Schema { return k.ref.target }

type dynamicRefKeyword struct {
	ref *Ref
	// "#name" when the reference fragment is a plain name
	anchor string
}

func compileDynamicRef(c *KeywordCompiler, v any) (Evaluator, error) {
	s, ok := v.(string)
	if !ok {
		return nil, c.Errorf("must be a string, got %s", jsonmap.TypeName(v))
	}
	r, err := c.Reference(s)
	if err != nil {
		return nil, c.Errorf("%q: %v", s, err)
	}
	k := &dynamicRefKeyword{ref: r}
	if _, frag := splitFragment(r.resolved); frag != "" && frag[0] != '/' {
		k.anchor = "#" + frag
	}
	return k, nil
}

func (k *dynamicRefKeyword) Evaluate(e *Evaluation) *Result {
	target := k.ref.target
	if k.anchor != "" && target.dynamicAnchor == k.anchor[1:] {
		if d := e.st.dynamicTarget(k.anchor); d != nil {
			target = d
		}
	}
	return e.st.evaluate(target, e.Instance, e.InstanceLocation, e.KeywordLocation)
}

func (k *dynamicRefKeyword) refTarget() *Schema { return k.ref.target }

type recursiveRefKeyword struct {
	ref *Ref
}

func compileRecursiveRef(c *KeywordCompiler, v any) (Evaluator, error) {
	s, ok := v.(string)
	if !ok {
		return nil, c.Errorf("must be a string, got %s", jsonmap.TypeName(v))
	}
	r, err := c.Reference(s)
	if err != nil {
		return nil, c.Errorf("%q: %v", s, err)
	}
	return &recursiveRefKeyword{ref: r}, nil
}

func (k *recursiveRefKeyword) Evaluate(e *Evaluation) *Result {
	target := k.ref.target
	if target.recursiveAnchor {
		if d := e.st.dynamicTarget(""); d != nil {
			target = d
		}
	}
	return e.st.evaluate(target, e.Instance, e.InstanceLocation, e.KeywordLocation)
}

func (k *recursiveRefKeyword) refTarget() *Schema { return k.ref.target }

// unknownKeyword passes a keyword no vocabulary defines. Its value is
// reported as an annotation.
func unknownKeyword(name string) *Keyword {
	return &Keyword{Name: name, Compile: compileUnknown}
}

func compileUnknown(_ *KeywordCompiler, _ any) (Evaluator, error) {
	return EvaluatorFunc(func(e *Evaluation) *Result {
		return e.Valid(e.Keyword())
	}), nil
}

func compileSchemaArray(c *KeywordCompiler, v any) ([]*Schema, error) {
	arr, ok := v.([]any)
	if !ok || len(arr) == 0 {
		return nil, c.Errorf("must be a non-empty array of schemas")
	}
	subs := make([]*Schema, len(arr))
	for i, item := range arr {
		s, err := c.Subschema(item, strconv.Itoa(i))
		if err != nil {
			return nil, err
		}
		subs[i] = s
	}
	return subs, nil
}
