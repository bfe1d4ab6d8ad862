package jsonschema

import (
	"github.com/oarkflow/jsonschema/jsonmap"
)

var (
	kwUnevaluatedItems      = &Keyword{Name: "unevaluatedItems", Compile: compileUnevaluatedItems}
	kwUnevaluatedProperties = &Keyword{Name: "unevaluatedProperties", Compile: compileUnevaluatedProperties}
)

// collect walks the passing results at instanceLocation, descending into
// nested results and evaluated if conditions, and calls visit for every
// keyword result.
func collect(rs []*Result, instanceLocation string, visit func(name string, r *Result)) {
	for _, r := range rs {
		if r == nil || !r.Valid || r.InstanceLocation != instanceLocation {
			continue
		}
		if k, ok := r.Source.(*keywordNode); ok {
			visit(k.name, r)
		}
		collect(r.Nested, instanceLocation, visit)
		collect(r.applied, instanceLocation, visit)
	}
}

func siblingResults(e *Evaluation) []*Result {
	out := make([]*Result, 0, len(e.siblings))
	for _, r := range e.siblings {
		out = append(out, r)
	}
	return out
}

type unevaluatedPropertiesKeyword struct{ s *Schema }

func compileUnevaluatedProperties(c *KeywordCompiler, v any) (Evaluator, error) {
	s, err := c.Subschema(v)
	if err != nil {
		return nil, err
	}
	return &unevaluatedPropertiesKeyword{s: s}, nil
}

func (k *unevaluatedPropertiesKeyword) sub() *Schema { return k.s }

func (k *unevaluatedPropertiesKeyword) Evaluate(e *Evaluation) *Result {
	if !jsonmap.IsObject(e.Instance) {
		return e.Valid(nil)
	}
	seen := map[string]bool{}
	collect(siblingResults(e), e.InstanceLocation, func(name string, r *Result) {
		switch name {
		case "properties", "patternProperties", "additionalProperties", "unevaluatedProperties":
			names, _ := r.Annotation.([]any)
			for _, n := range names {
				if s, ok := n.(string); ok {
					seen[s] = true
				}
			}
		}
	})
	var nested []*Result
	evaluated := []any{}
	valid := true
	for _, name := range jsonmap.Keys(e.Instance) {
		if seen[name] {
			continue
		}
		r := e.ApplyProperty(k.s, name)
		nested = append(nested, r)
		evaluated = append(evaluated, name)
		valid = valid && r.Valid
		if !valid && e.ShortCircuit() {
			break
		}
	}
	return e.Result(valid, nested, evaluated)
}

type unevaluatedItemsKeyword struct {
	s *Schema
	// contains annotations count from 2020-12 on
	withContains bool
}

func compileUnevaluatedItems(c *KeywordCompiler, v any) (Evaluator, error) {
	s, err := c.Subschema(v)
	if err != nil {
		return nil, err
	}
	return &unevaluatedItemsKeyword{s: s, withContains: c.Draft().version >= 2020}, nil
}

func (k *unevaluatedItemsKeyword) sub() *Schema { return k.s }

func (k *unevaluatedItemsKeyword) Evaluate(e *Evaluation) *Result {
	arr, ok := e.Instance.([]any)
	if !ok {
		return e.Valid(nil)
	}
	all, upTo := false, -1
	seen := map[int]bool{}
	collect(siblingResults(e), e.InstanceLocation, func(name string, r *Result) {
		switch name {
		case "prefixItems", "items", "additionalItems", "unevaluatedItems":
		case "contains":
			if !k.withContains {
				return
			}
		default:
			return
		}
		switch a := r.Annotation.(type) {
		case bool:
			all = all || a
		case int:
			upTo = max(upTo, a)
		case []any:
			for _, i := range a {
				if n, ok := i.(int); ok {
					seen[n] = true
				}
			}
		}
	})
	if all {
		return e.Valid(nil)
	}
	var nested []*Result
	valid := true
	for i := upTo + 1; i < len(arr); i++ {
		if seen[i] {
			continue
		}
		r := e.ApplyItem(k.s, i)
		nested = append(nested, r)
		valid = valid && r.Valid
		if !valid && e.ShortCircuit() {
			break
		}
	}
	var annotation any
	if len(nested) > 0 {
		annotation = true
	}
	return e.Result(valid, nested, annotation)
}
