package jsonschema

import (
	"github.com/oarkflow/jsonschema/jsonmap"
	"github.com/oarkflow/jsonschema/pointer"
)

// state is the per-call evaluation state.
type state struct {
	opts         *Options
	scope        []*Schema
	shortCircuit bool
	notDepth     int
}

// Evaluation is passed to an Evaluator. It carries the instance, its
// location and the results of the keywords evaluated before this one.
type Evaluation struct {
	Instance         any
	InstanceLocation string
	KeywordLocation  string

	st       *state
	node     *keywordNode
	siblings map[string]*Result
}

// Schema returns the schema object holding the keyword.
func (e *Evaluation) Schema() *Schema { return e.node.schema }

// Keyword returns the raw keyword value.
func (e *Evaluation) Keyword() any { return e.node.value }

// AccessMode returns the mode requested for this validation.
func (e *Evaluation) AccessMode() AccessMode { return e.st.opts.AccessMode }

// ShortCircuit reports whether the caller only needs a verdict, in which
// case evaluation may stop at the first failure.
func (e *Evaluation) ShortCircuit() bool { return e.st.shortCircuit }

// Sibling returns the result of a keyword of the same schema object that
// was evaluated before this one.
func (e *Evaluation) Sibling(name string) (*Result, bool) {
	r, ok := e.siblings[name]
	return r, ok
}

func (e *Evaluation) result(valid bool) *Result {
	return &Result{
		Source:           e.node,
		Instance:         e.Instance,
		InstanceLocation: e.InstanceLocation,
		KeywordLocation:  e.KeywordLocation,
		Valid:            valid,
		renderer:         e.st.opts.Renderer,
	}
}

// Valid returns a passing result carrying annotation, which may be nil.
func (e *Evaluation) Valid(annotation any) *Result {
	r := e.result(true)
	r.Annotation = annotation
	return r
}

// Invalid returns a failing result. An empty kind defaults to the keyword name.
func (e *Evaluation) Invalid(kind string, details map[string]any) *Result {
	r := e.result(false)
	if kind == "" {
		kind = e.node.name
	}
	r.Kind = kind
	r.Details = details
	return r
}

// Result returns a result with nested results from subschemas.
func (e *Evaluation) Result(valid bool, nested []*Result, annotation any) *Result {
	r := e.result(valid)
	r.Nested = nested
	r.Annotation = annotation
	if !valid {
		r.Kind = e.node.name
	}
	return r
}

// Apply evaluates sub against instance. instanceLocation is the location of
// instance; tokens extend the keyword location of this keyword.
func (e *Evaluation) Apply(sub *Schema, instance any, instanceLocation string, tokens ...string) *Result {
	return e.st.evaluate(sub, instance, instanceLocation, pointer.Join(e.KeywordLocation, tokens...))
}

// ApplyProperty evaluates sub against a member of the current instance.
func (e *Evaluation) ApplyProperty(sub *Schema, name string, tokens ...string) *Result {
	v, _ := jsonmap.Get(e.Instance, name)
	return e.Apply(sub, v, pointer.Join(e.InstanceLocation, name), tokens...)
}

// ApplyItem evaluates sub against an element of the current instance.
func (e *Evaluation) ApplyItem(sub *Schema, i int, tokens ...string) *Result {
	arr, _ := e.Instance.([]any)
	return e.Apply(sub, arr[i], pointer.JoinIndex(e.InstanceLocation, i), tokens...)
}

// evaluate validates instance against s. The schema stays on the dynamic
// scope for the duration of the call.
func (st *state) evaluate(s *Schema, instance any, instanceLocation, keywordLocation string) *Result {
	st.scope = append(st.scope, s)
	defer func() { st.scope = st.scope[:len(st.scope)-1] }()

	r := &Result{
		Source:           s,
		Instance:         instance,
		InstanceLocation: instanceLocation,
		KeywordLocation:  keywordLocation,
		Valid:            true,
		renderer:         st.opts.Renderer,
	}
	if b, ok := s.boolean(); ok {
		r.Valid = b
		if !b {
			r.Kind = "schema"
		}
		return r
	}

	var siblings map[string]*Result
	for _, k := range s.keywords {
		if k.eval == nil {
			continue
		}
		if !r.Valid && st.shortCircuit {
			break
		}
		e := &Evaluation{
			Instance:         instance,
			InstanceLocation: instanceLocation,
			KeywordLocation:  pointer.Join(keywordLocation, k.name),
			st:               st,
			node:             k,
			siblings:         siblings,
		}
		kr := k.eval.Evaluate(e)
		if kr == nil {
			continue
		}
		if siblings == nil {
			siblings = make(map[string]*Result, len(s.keywords))
		}
		siblings[k.name] = kr
		r.Valid = r.Valid && kr.Valid
		r.Nested = append(r.Nested, kr)
	}
	if len(st.opts.customKeywords) > 0 && (r.Valid || !st.shortCircuit) {
		for _, cr := range st.custom(s, instance, instanceLocation, keywordLocation) {
			r.Valid = r.Valid && cr.Valid
			r.Nested = append(r.Nested, cr)
		}
	}
	return r
}

// custom runs the callbacks registered for keywords present in s.
func (st *state) custom(s *Schema, instance any, instanceLocation, keywordLocation string) []*Result {
	var out []*Result
	for _, ck := range st.opts.customKeywords {
		value, ok := jsonmap.Get(s.value, ck.name)
		if !ok {
			continue
		}
		node := &keywordNode{name: ck.name, value: value, schema: s}
		e := &Evaluation{
			Instance:         instance,
			InstanceLocation: instanceLocation,
			KeywordLocation:  pointer.Join(keywordLocation, ck.name),
			st:               st,
			node:             node,
		}
		out = append(out, customResult(e, ck.fn(instance, s.value, instanceLocation)))
	}
	return out
}

func customResult(e *Evaluation, v any) *Result {
	switch t := v.(type) {
	case bool:
		if t {
			return e.Valid(nil)
		}
		return e.Invalid("", nil)
	case string:
		r := e.Invalid("", nil)
		r.message = t
		return r
	case error:
		r := e.Invalid("", nil)
		r.message = t.Error()
		return r
	case []any:
		nested := make([]*Result, 0, len(t))
		valid := true
		for _, item := range t {
			nr := customResult(e, item)
			valid = valid && nr.Valid
			nested = append(nested, nr)
		}
		if len(nested) == 1 {
			return nested[0]
		}
		return e.Result(valid, nested, nil)
	case nil:
		return e.Valid(nil)
	}
	return e.Invalid("", map[string]any{"result": v})
}

// dynamicTarget returns the outermost schema in the dynamic scope whose
// resource registered key as a dynamic anchor.
func (st *state) dynamicTarget(anchor string) *Schema {
	for _, frame := range st.scope {
		if s, ok := frame.root.resources.dynamic[frame.baseURI+anchor]; ok {
			return s
		}
	}
	return nil
}
