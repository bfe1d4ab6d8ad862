package jsonschema

import (
	"strings"

	"github.com/oarkflow/expr"

	"github.com/oarkflow/jsonschema/jsonmap"
	"github.com/oarkflow/jsonschema/pointer"
)

const maxDefaultDepth = 32

type defaultCandidate struct {
	valid    bool
	parent   any
	property string
	value    any
}

// insertDefaults fills in missing properties from the defaults declared
// by the "properties" keywords that took part in r. Candidates from
// passing paths win over the others; a property is only set when its
// candidates agree. It reports whether anything was inserted.
func insertDefaults(r *Result, o *Options) bool {
	type item struct {
		r     *Result
		valid bool
	}
	var (
		order []string
		seen  = map[string]map[string]bool{}
		cands = map[string][]defaultCandidate{}
	)
	stack := []item{{r, true}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		k, isKeyword := it.r.Source.(*keywordNode)
		if isKeyword && k.name == "not" {
			continue
		}
		valid := it.valid && it.r.Valid
		for i := len(it.r.Nested) - 1; i >= 0; i-- {
			stack = append(stack, item{it.r.Nested[i], valid})
		}
		if !isKeyword || k.name != "properties" || !jsonmap.IsObject(it.r.Instance) {
			continue
		}
		props, ok := k.eval.(*propertiesKeyword)
		if !ok {
			continue
		}
		for _, name := range props.names {
			if jsonmap.Has(it.r.Instance, name) {
				continue
			}
			def, ok := defaultOf(props.subs[name], 0)
			if !ok {
				continue
			}
			loc := pointer.Join(it.r.InstanceLocation, name)
			kwLoc := pointer.Join(it.r.KeywordLocation, name)
			if seen[loc] == nil {
				seen[loc] = map[string]bool{}
				order = append(order, loc)
			}
			if seen[loc][kwLoc] {
				continue
			}
			seen[loc][kwLoc] = true
			cands[loc] = append(cands[loc], defaultCandidate{valid: valid, parent: it.r.Instance, property: name, value: def})
		}
	}

	inserted := false
	for _, loc := range order {
		c, ok := agreed(cands[loc])
		if !ok {
			o.Logger.Debug("conflicting defaults", "location", loc)
			continue
		}
		if jsonmap.Has(c.parent, c.property) {
			continue
		}
		value, err := prepareDefault(c.value, c.parent, o)
		if err != nil {
			o.Logger.Debug("default not inserted", "location", loc, "err", err)
			continue
		}
		if jsonmap.Set(c.parent, c.property, jsonmap.Clone(value)) {
			inserted = true
		}
	}
	return inserted
}

// agreed picks the candidate to insert: passing candidates are preferred
// and they must all carry the same value.
func agreed(cands []defaultCandidate) (defaultCandidate, bool) {
	var use []defaultCandidate
	for _, c := range cands {
		if c.valid {
			use = append(use, c)
		}
	}
	if len(use) == 0 {
		use = cands
	}
	if len(use) == 0 {
		return defaultCandidate{}, false
	}
	for _, c := range use[1:] {
		if !jsonmap.Equal(c.value, use[0].value) {
			return defaultCandidate{}, false
		}
	}
	return use[0], true
}

// defaultOf returns the default of s: its own "default", else the default
// of the schemas it references, in keyword order.
func defaultOf(s *Schema, depth int) (any, bool) {
	if s == nil || depth > maxDefaultDepth {
		return nil, false
	}
	if k := s.keyword("default"); k != nil {
		return k.value, true
	}
	for _, k := range s.keywords {
		if rt, ok := k.eval.(refTarget); ok {
			if v, ok := defaultOf(rt.refTarget(), depth+1); ok {
				return v, true
			}
		}
	}
	return nil, false
}

// prepareDefault applies the expression evaluation and the configured
// resolver to a default value.
func prepareDefault(def, parent any, o *Options) (any, error) {
	if o.ExpressionDefaults {
		if s, ok := def.(string); ok && strings.HasPrefix(s, "{{") && strings.HasSuffix(s, "}}") {
			v, err := evaluateExpression(strings.TrimSuffix(strings.TrimPrefix(s, "{{"), "}}"), parent)
			if err != nil {
				return nil, err
			}
			def = v
		}
	}
	if o.PropertyDefaultResolver != nil {
		def = o.PropertyDefaultResolver(def)
	}
	return jsonmap.Normalize(def)
}

// evaluateExpression evaluates exprStr with the members of parent in
// scope. A literal wrapped in one more pair of braces is read as JSON with
// single quotes.
func evaluateExpression(exprStr string, parent any) (any, error) {
	exprStr = strings.TrimSpace(exprStr)
	if strings.HasPrefix(exprStr, "{{") && strings.HasSuffix(exprStr, "}}") {
		jsonStr := strings.ReplaceAll(exprStr[1:len(exprStr)-1], "'", "\"")
		return jsonmap.Decode([]byte(jsonStr))
	}
	data, _ := jsonmap.ToGo(parent).(map[string]any)
	if data == nil {
		data = make(map[string]any)
	}
	return expr.Eval(exprStr, data)
}
