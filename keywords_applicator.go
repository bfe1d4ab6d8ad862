package jsonschema

import (
	"strconv"
	"strings"

	"github.com/oarkflow/jsonschema/jsonmap"
	"github.com/oarkflow/jsonschema/pointer"
	"github.com/oarkflow/jsonschema/regex"
)

var (
	kwAllOf                = &Keyword{Name: "allOf", Compile: compileAllOf}
	kwAnyOf                = &Keyword{Name: "anyOf", Compile: compileAnyOf}
	kwOneOf                = &Keyword{Name: "oneOf", Compile: compileOneOf}
	kwNot                  = &Keyword{Name: "not", Compile: compileNot}
	kwIf                   = &Keyword{Name: "if", Compile: compileIf}
	kwThen                 = &Keyword{Name: "then", Compile: compileBranch}
	kwElse                 = &Keyword{Name: "else", Compile: compileBranch}
	kwDependentSchemas     = &Keyword{Name: "dependentSchemas", Compile: compileDependentSchemas}
	kwPrefixItems          = &Keyword{Name: "prefixItems", Compile: compilePrefixItems}
	kwItems                = &Keyword{Name: "items", Compile: compileItems}
	kwItemsLegacy          = &Keyword{Name: "items", Compile: compileItemsLegacy}
	kwAdditionalItems      = &Keyword{Name: "additionalItems", Compile: compileAdditionalItems}
	kwContains             = &Keyword{Name: "contains", Compile: compileContains}
	kwProperties           = &Keyword{Name: "properties", Compile: compileProperties}
	kwPatternProperties    = &Keyword{Name: "patternProperties", Compile: compilePatternProperties}
	kwAdditionalProperties = &Keyword{Name: "additionalProperties", Compile: compileAdditionalProperties}
	kwPropertyNames        = &Keyword{Name: "propertyNames", Compile: compilePropertyNames}
	kwDependencies         = &Keyword{Name: "dependencies", Compile: compileDependencies}
)

type allOfKeyword struct{ subs []*Schema }

func compileAllOf(c *KeywordCompiler, v any) (Evaluator, error) {
	subs, err := compileSchemaArray(c, v)
	if err != nil {
		return nil, err
	}
	return &allOfKeyword{subs: subs}, nil
}

func (k *allOfKeyword) Evaluate(e *Evaluation) *Result {
	nested := make([]*Result, 0, len(k.subs))
	valid := true
	for i, sub := range k.subs {
		r := e.Apply(sub, e.Instance, e.InstanceLocation, strconv.Itoa(i))
		nested = append(nested, r)
		valid = valid && r.Valid
		if !valid && e.ShortCircuit() {
			break
		}
	}
	return e.Result(valid, nested, nil)
}

type anyOfKeyword struct{ subs []*Schema }

func compileAnyOf(c *KeywordCompiler, v any) (Evaluator, error) {
	subs, err := compileSchemaArray(c, v)
	if err != nil {
		return nil, err
	}
	return &anyOfKeyword{subs: subs}, nil
}

// Evaluate tries every branch: annotations of all passing branches count
// towards the unevaluated keywords.
func (k *anyOfKeyword) Evaluate(e *Evaluation) *Result {
	nested := make([]*Result, 0, len(k.subs))
	valid := false
	for i, sub := range k.subs {
		r := e.Apply(sub, e.Instance, e.InstanceLocation, strconv.Itoa(i))
		nested = append(nested, r)
		valid = valid || r.Valid
	}
	return e.Result(valid, nested, nil)
}

type oneOfKeyword struct{ subs []*Schema }

func compileOneOf(c *KeywordCompiler, v any) (Evaluator, error) {
	subs, err := compileSchemaArray(c, v)
	if err != nil {
		return nil, err
	}
	return &oneOfKeyword{subs: subs}, nil
}

func (k *oneOfKeyword) Evaluate(e *Evaluation) *Result {
	nested := make([]*Result, 0, len(k.subs))
	var matches []any
	for i, sub := range k.subs {
		r := e.Apply(sub, e.Instance, e.InstanceLocation, strconv.Itoa(i))
		nested = append(nested, r)
		if r.Valid {
			matches = append(matches, i)
		}
	}
	r := e.Result(len(matches) == 1, nested, nil)
	if len(matches) > 1 {
		r.Details = map[string]any{"matches": matches}
	}
	return r
}

type notKeyword struct{ s *Schema }

func compileNot(c *KeywordCompiler, v any) (Evaluator, error) {
	s, err := c.Subschema(v)
	if err != nil {
		return nil, err
	}
	return &notKeyword{s: s}, nil
}

func (k *notKeyword) sub() *Schema { return k.s }

func (k *notKeyword) Evaluate(e *Evaluation) *Result {
	e.st.notDepth++
	r := e.Apply(k.s, e.Instance, e.InstanceLocation)
	e.st.notDepth--
	return e.Result(!r.Valid, []*Result{r}, nil)
}

// ifKeyword evaluates the condition and then the matching branch. The
// branch keywords themselves contribute nothing.
type ifKeyword struct{ s *Schema }

func compileIf(c *KeywordCompiler, v any) (Evaluator, error) {
	s, err := c.Subschema(v)
	if err != nil {
		return nil, err
	}
	return &ifKeyword{s: s}, nil
}

func (k *ifKeyword) sub() *Schema { return k.s }

func (k *ifKeyword) Evaluate(e *Evaluation) *Result {
	cond := e.Apply(k.s, e.Instance, e.InstanceLocation)
	branch := "then"
	if !cond.Valid {
		branch = "else"
	}
	bs := e.Schema().subschema(branch)
	if bs == nil {
		r := e.Valid(nil)
		r.applied = []*Result{cond}
		return r
	}
	loc := pointer.Join(strings.TrimSuffix(e.KeywordLocation, "/if"), branch)
	br := e.st.evaluate(bs, e.Instance, e.InstanceLocation, loc)
	r := e.Result(br.Valid, []*Result{br}, nil)
	if !br.Valid {
		r.Kind = branch
	}
	r.applied = []*Result{cond}
	return r
}

type branchKeyword struct{ s *Schema }

func compileBranch(c *KeywordCompiler, v any) (Evaluator, error) {
	s, err := c.Subschema(v)
	if err != nil {
		return nil, err
	}
	return &branchKeyword{s: s}, nil
}

func (k *branchKeyword) sub() *Schema { return k.s }

func (k *branchKeyword) Evaluate(*Evaluation) *Result { return nil }

type namedSchema struct {
	name string
	s    *Schema
}

type dependentSchemasKeyword struct{ subs []namedSchema }

func compileDependentSchemas(c *KeywordCompiler, v any) (Evaluator, error) {
	if !jsonmap.IsObject(v) {
		return nil, c.Errorf("must be an object, got %s", jsonmap.TypeName(v))
	}
	k := &dependentSchemasKeyword{}
	for _, name := range jsonmap.Keys(v) {
		raw, _ := jsonmap.Get(v, name)
		s, err := c.Subschema(raw, name)
		if err != nil {
			return nil, err
		}
		k.subs = append(k.subs, namedSchema{name, s})
	}
	return k, nil
}

func (k *dependentSchemasKeyword) Evaluate(e *Evaluation) *Result {
	if !jsonmap.IsObject(e.Instance) {
		return e.Valid(nil)
	}
	var nested []*Result
	valid := true
	for _, d := range k.subs {
		if !jsonmap.Has(e.Instance, d.name) {
			continue
		}
		r := e.Apply(d.s, e.Instance, e.InstanceLocation, d.name)
		nested = append(nested, r)
		valid = valid && r.Valid
		if !valid && e.ShortCircuit() {
			break
		}
	}
	return e.Result(valid, nested, nil)
}

// applyItems evaluates subs positionally. The annotation is the largest
// index evaluated, or true when every item was.
func applyItems(e *Evaluation, subs []*Schema, arr []any) *Result {
	n := min(len(subs), len(arr))
	nested := make([]*Result, 0, n)
	valid := true
	for i := 0; i < n; i++ {
		r := e.ApplyItem(subs[i], i, strconv.Itoa(i))
		nested = append(nested, r)
		valid = valid && r.Valid
		if !valid && e.ShortCircuit() {
			break
		}
	}
	var annotation any
	switch {
	case len(nested) == len(arr):
		annotation = true
	case len(nested) > 0:
		annotation = len(nested) - 1
	}
	return e.Result(valid, nested, annotation)
}

// applyRest evaluates s against every item from index from on. The
// annotation is true when it applied to any item.
func applyRest(e *Evaluation, s *Schema, arr []any, from int) *Result {
	var nested []*Result
	valid := true
	for i := from; i < len(arr); i++ {
		r := e.ApplyItem(s, i)
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

type prefixItemsKeyword struct{ subs []*Schema }

func compilePrefixItems(c *KeywordCompiler, v any) (Evaluator, error) {
	subs, err := compileSchemaArray(c, v)
	if err != nil {
		return nil, err
	}
	return &prefixItemsKeyword{subs: subs}, nil
}

func (k *prefixItemsKeyword) Evaluate(e *Evaluation) *Result {
	arr, ok := e.Instance.([]any)
	if !ok {
		return e.Valid(nil)
	}
	return applyItems(e, k.subs, arr)
}

type itemsKeyword struct {
	s      *Schema
	prefix int
}

func compileItems(c *KeywordCompiler, v any) (Evaluator, error) {
	s, err := c.Subschema(v)
	if err != nil {
		return nil, err
	}
	k := &itemsKeyword{s: s}
	if p, ok := c.Sibling("prefixItems"); ok {
		if arr, ok := p.([]any); ok {
			k.prefix = len(arr)
		}
	}
	return k, nil
}

func (k *itemsKeyword) sub() *Schema { return k.s }

func (k *itemsKeyword) Evaluate(e *Evaluation) *Result {
	arr, ok := e.Instance.([]any)
	if !ok {
		return e.Valid(nil)
	}
	return applyRest(e, k.s, arr, k.prefix)
}

// itemsLegacyKeyword is "items" before 2020-12: a schema for every item
// or an array of positional schemas.
type itemsLegacyKeyword struct {
	s    *Schema
	subs []*Schema
}

func compileItemsLegacy(c *KeywordCompiler, v any) (Evaluator, error) {
	if _, ok := v.([]any); ok {
		subs, err := compileSchemaArrayAllowEmpty(c, v)
		if err != nil {
			return nil, err
		}
		return &itemsLegacyKeyword{subs: subs}, nil
	}
	s, err := c.Subschema(v)
	if err != nil {
		return nil, err
	}
	return &itemsLegacyKeyword{s: s}, nil
}

func (k *itemsLegacyKeyword) sub() *Schema { return k.s }

func (k *itemsLegacyKeyword) Evaluate(e *Evaluation) *Result {
	arr, ok := e.Instance.([]any)
	if !ok {
		return e.Valid(nil)
	}
	if k.s != nil {
		r := applyRest(e, k.s, arr, 0)
		r.Annotation = true
		return r
	}
	return applyItems(e, k.subs, arr)
}

func compileSchemaArrayAllowEmpty(c *KeywordCompiler, v any) ([]*Schema, error) {
	arr := v.([]any)
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

type additionalItemsKeyword struct {
	s    *Schema
	from int
}

func compileAdditionalItems(c *KeywordCompiler, v any) (Evaluator, error) {
	s, err := c.Subschema(v)
	if err != nil {
		return nil, err
	}
	items, ok := c.Sibling("items")
	arr, isArray := items.([]any)
	if !ok || !isArray {
		// only meaningful next to positional items
		return nil, nil
	}
	return &additionalItemsKeyword{s: s, from: len(arr)}, nil
}

func (k *additionalItemsKeyword) sub() *Schema { return k.s }

func (k *additionalItemsKeyword) Evaluate(e *Evaluation) *Result {
	arr, ok := e.Instance.([]any)
	if !ok {
		return e.Valid(nil)
	}
	return applyRest(e, k.s, arr, k.from)
}

type containsKeyword struct {
	s          *Schema
	minimum    int
	allIndices bool
}

func compileContains(c *KeywordCompiler, v any) (Evaluator, error) {
	s, err := c.Subschema(v)
	if err != nil {
		return nil, err
	}
	k := &containsKeyword{s: s, minimum: 1, allIndices: c.Draft().version >= 2020}
	if c.Draft().version >= 2019 {
		if m, ok := c.Sibling("minContains"); ok && jsonmap.IsInteger(m, false) {
			f, _ := jsonmap.Float(m)
			k.minimum = int(f)
		}
	}
	return k, nil
}

func (k *containsKeyword) sub() *Schema { return k.s }

// Evaluate checks every item. The annotation holds the matching indices,
// or true when every item matched.
func (k *containsKeyword) Evaluate(e *Evaluation) *Result {
	arr, ok := e.Instance.([]any)
	if !ok {
		return e.Valid(nil)
	}
	nested := make([]*Result, 0, len(arr))
	matched := make([]any, 0, len(arr))
	for i := range arr {
		r := e.ApplyItem(k.s, i)
		nested = append(nested, r)
		if r.Valid {
			matched = append(matched, i)
		}
	}
	var annotation any = matched
	if k.allIndices && len(matched) == len(arr) {
		annotation = true
	}
	r := e.Result(len(matched) >= k.minimum, nested, annotation)
	r.IgnoreNested = true
	return r
}

// containsCount returns the number of items the sibling "contains" matched.
func containsCount(e *Evaluation) (int, bool) {
	r, ok := e.Sibling("contains")
	if !ok {
		return 0, false
	}
	switch a := r.Annotation.(type) {
	case bool:
		return jsonmap.Len(e.Instance), true
	case []any:
		return len(a), true
	}
	return 0, false
}

type propertiesKeyword struct {
	names []string
	subs  map[string]*Schema
}

func compileProperties(c *KeywordCompiler, v any) (Evaluator, error) {
	if !jsonmap.IsObject(v) {
		return nil, c.Errorf("must be an object, got %s", jsonmap.TypeName(v))
	}
	k := &propertiesKeyword{subs: make(map[string]*Schema)}
	for _, name := range jsonmap.Keys(v) {
		raw, _ := jsonmap.Get(v, name)
		s, err := c.Subschema(raw, name)
		if err != nil {
			return nil, err
		}
		k.names = append(k.names, name)
		k.subs[name] = s
	}
	return k, nil
}

// Evaluate runs the property hooks in declaration order around the
// evaluation of the instance members. The annotation is the list of
// member names evaluated.
func (k *propertiesKeyword) Evaluate(e *Evaluation) *Result {
	if !jsonmap.IsObject(e.Instance) {
		return e.Valid(nil)
	}
	hooks := e.st.notDepth == 0
	if hooks {
		k.runHooks(e, e.st.opts.BeforePropertyHooks)
	}
	var nested []*Result
	evaluated := []any{}
	valid := true
	for _, name := range jsonmap.Keys(e.Instance) {
		sub, ok := k.subs[name]
		if !ok {
			continue
		}
		r := e.ApplyProperty(sub, name, name)
		nested = append(nested, r)
		evaluated = append(evaluated, name)
		valid = valid && r.Valid
		if !valid && e.ShortCircuit() {
			break
		}
	}
	if hooks {
		k.runHooks(e, e.st.opts.AfterPropertyHooks)
	}
	return e.Result(valid, nested, evaluated)
}

func (k *propertiesKeyword) runHooks(e *Evaluation, hooks []PropertyHook) {
	for _, name := range k.names {
		for _, h := range hooks {
			h(e.Instance, name, k.subs[name].value, e.Schema().value)
		}
	}
}

type patternSchema struct {
	re regex.Regexp
	s  *Schema
}

type patternPropertiesKeyword struct{ patterns []patternSchema }

func compilePatternProperties(c *KeywordCompiler, v any) (Evaluator, error) {
	if !jsonmap.IsObject(v) {
		return nil, c.Errorf("must be an object, got %s", jsonmap.TypeName(v))
	}
	k := &patternPropertiesKeyword{}
	for _, pattern := range jsonmap.Keys(v) {
		re, err := c.Regexp(pattern)
		if err != nil {
			return nil, err
		}
		raw, _ := jsonmap.Get(v, pattern)
		s, err := c.Subschema(raw, pattern)
		if err != nil {
			return nil, err
		}
		k.patterns = append(k.patterns, patternSchema{re, s})
	}
	return k, nil
}

func (k *patternPropertiesKeyword) matches(name string) bool {
	for _, p := range k.patterns {
		if p.re.MatchString(name) {
			return true
		}
	}
	return false
}

func (k *patternPropertiesKeyword) Evaluate(e *Evaluation) *Result {
	if !jsonmap.IsObject(e.Instance) {
		return e.Valid(nil)
	}
	var nested []*Result
	evaluated := []any{}
	valid := true
outer:
	for _, name := range jsonmap.Keys(e.Instance) {
		hit := false
		for _, p := range k.patterns {
			if !p.re.MatchString(name) {
				continue
			}
			hit = true
			r := e.ApplyProperty(p.s, name, p.re.String())
			nested = append(nested, r)
			valid = valid && r.Valid
			if !valid && e.ShortCircuit() {
				break outer
			}
		}
		if hit {
			evaluated = append(evaluated, name)
		}
	}
	return e.Result(valid, nested, evaluated)
}

type additionalPropertiesKeyword struct {
	s          *Schema
	properties *propertiesKeyword
	patterns   *patternPropertiesKeyword
}

func compileAdditionalProperties(c *KeywordCompiler, v any) (Evaluator, error) {
	s, err := c.Subschema(v)
	if err != nil {
		return nil, err
	}
	k := &additionalPropertiesKeyword{s: s}
	k.properties, _ = c.compiled("properties").(*propertiesKeyword)
	k.patterns, _ = c.compiled("patternProperties").(*patternPropertiesKeyword)
	return k, nil
}

func (k *additionalPropertiesKeyword) sub() *Schema { return k.s }

func (k *additionalPropertiesKeyword) additional(name string) bool {
	if k.properties != nil {
		if _, ok := k.properties.subs[name]; ok {
			return false
		}
	}
	return k.patterns == nil || !k.patterns.matches(name)
}

func (k *additionalPropertiesKeyword) Evaluate(e *Evaluation) *Result {
	if !jsonmap.IsObject(e.Instance) {
		return e.Valid(nil)
	}
	var nested []*Result
	evaluated := []any{}
	valid := true
	for _, name := range jsonmap.Keys(e.Instance) {
		if !k.additional(name) {
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

type propertyNamesKeyword struct{ s *Schema }

func compilePropertyNames(c *KeywordCompiler, v any) (Evaluator, error) {
	s, err := c.Subschema(v)
	if err != nil {
		return nil, err
	}
	return &propertyNamesKeyword{s: s}, nil
}

func (k *propertyNamesKeyword) sub() *Schema { return k.s }

func (k *propertyNamesKeyword) Evaluate(e *Evaluation) *Result {
	if !jsonmap.IsObject(e.Instance) {
		return e.Valid(nil)
	}
	var nested []*Result
	valid := true
	for _, name := range jsonmap.Keys(e.Instance) {
		r := e.Apply(k.s, name, pointer.Join(e.InstanceLocation, name))
		nested = append(nested, r)
		valid = valid && r.Valid
		if !valid && e.ShortCircuit() {
			break
		}
	}
	return e.Result(valid, nested, nil)
}

// dependenciesKeyword is the pre 2019-09 form that mixes required
// property lists and schemas.
type dependenciesKeyword struct {
	names    []string
	required map[string][]string
	schemas  map[string]*Schema
}

func compileDependencies(c *KeywordCompiler, v any) (Evaluator, error) {
	if !jsonmap.IsObject(v) {
		return nil, c.Errorf("must be an object, got %s", jsonmap.TypeName(v))
	}
	k := &dependenciesKeyword{required: map[string][]string{}, schemas: map[string]*Schema{}}
	for _, name := range jsonmap.Keys(v) {
		raw, _ := jsonmap.Get(v, name)
		k.names = append(k.names, name)
		if arr, ok := raw.([]any); ok {
			names, err := stringList(c, arr)
			if err != nil {
				return nil, err
			}
			k.required[name] = names
			continue
		}
		s, err := c.Subschema(raw, name)
		if err != nil {
			return nil, err
		}
		k.schemas[name] = s
	}
	return k, nil
}

func (k *dependenciesKeyword) Evaluate(e *Evaluation) *Result {
	if !jsonmap.IsObject(e.Instance) {
		return e.Valid(nil)
	}
	var (
		nested  []*Result
		missing []any
		valid   = true
	)
	for _, name := range k.names {
		if !jsonmap.Has(e.Instance, name) {
			continue
		}
		if s, ok := k.schemas[name]; ok {
			r := e.Apply(s, e.Instance, e.InstanceLocation, name)
			nested = append(nested, r)
			valid = valid && r.Valid
			continue
		}
		for _, req := range k.required[name] {
			if !jsonmap.Has(e.Instance, req) {
				missing = append(missing, req)
			}
		}
	}
	r := e.Result(valid && len(missing) == 0, nested, nil)
	if len(missing) > 0 {
		r.Details = map[string]any{"missing_keys": missing}
	}
	return r
}

func stringList(c *KeywordCompiler, arr []any) ([]string, error) {
	out := make([]string, len(arr))
	for i, item := range arr {
		s, ok := item.(string)
		if !ok {
			return nil, c.Errorf("item %d must be a string, got %s", i, jsonmap.TypeName(item))
		}
		out[i] = s
	}
	return out, nil
}
