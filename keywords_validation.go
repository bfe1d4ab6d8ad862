package jsonschema

import (
	"math/big"
	"slices"
	"unicode/utf8"

	"github.com/oarkflow/jsonschema/jsonmap"
	"github.com/oarkflow/jsonschema/regex"
)

var (
	kwType                   = &Keyword{Name: "type", Compile: compileType}
	kwEnum                   = &Keyword{Name: "enum", Compile: compileEnum}
	kwConst                  = &Keyword{Name: "const", Compile: compileConst}
	kwMultipleOf             = &Keyword{Name: "multipleOf", Compile: compileMultipleOf}
	kwMaximum                = &Keyword{Name: "maximum", Compile: compileBound(func(c int) bool { return c <= 0 })}
	kwExclusiveMaximum       = &Keyword{Name: "exclusiveMaximum", Compile: compileBound(func(c int) bool { return c < 0 })}
	kwMinimum                = &Keyword{Name: "minimum", Compile: compileBound(func(c int) bool { return c >= 0 })}
	kwExclusiveMinimum       = &Keyword{Name: "exclusiveMinimum", Compile: compileBound(func(c int) bool { return c > 0 })}
	kwExclusiveMaximumDraft4 = &Keyword{Name: "exclusiveMaximum", Compile: compileExclusiveDraft4("maximum", func(c int) bool { return c < 0 })}
	kwExclusiveMinimumDraft4 = &Keyword{Name: "exclusiveMinimum", Compile: compileExclusiveDraft4("minimum", func(c int) bool { return c > 0 })}
	kwMaxLength              = &Keyword{Name: "maxLength", Compile: compileCount(countString, func(n, l int) bool { return n <= l })}
	kwMinLength              = &Keyword{Name: "minLength", Compile: compileCount(countString, func(n, l int) bool { return n >= l })}
	kwPattern                = &Keyword{Name: "pattern", Compile: compilePattern}
	kwMaxItems               = &Keyword{Name: "maxItems", Compile: compileCount(countArray, func(n, l int) bool { return n <= l })}
	kwMinItems               = &Keyword{Name: "minItems", Compile: compileCount(countArray, func(n, l int) bool { return n >= l })}
	kwUniqueItems            = &Keyword{Name: "uniqueItems", Compile: compileUniqueItems}
	kwMaxContains            = &Keyword{Name: "maxContains", Compile: compileMaxContains}
	kwMinContains            = &Keyword{Name: "minContains", Compile: compileMinContains}
	kwMaxProperties          = &Keyword{Name: "maxProperties", Compile: compileCount(countObject, func(n, l int) bool { return n <= l })}
	kwMinProperties          = &Keyword{Name: "minProperties", Compile: compileCount(countObject, func(n, l int) bool { return n >= l })}
	kwRequired               = &Keyword{Name: "required", Compile: compileRequired}
	kwDependentRequired      = &Keyword{Name: "dependentRequired", Compile: compileDependentRequired}
)

var typeNames = []string{"null", "boolean", "object", "array", "number", "string", "integer"}

type typeKeyword struct {
	types []string
	kind  string
}

func compileType(c *KeywordCompiler, v any) (Evaluator, error) {
	k := &typeKeyword{kind: "type"}
	switch t := v.(type) {
	case string:
		k.types = []string{t}
		k.kind = t
	case []any:
		names, err := stringList(c, t)
		if err != nil {
			return nil, err
		}
		k.types = names
	default:
		return nil, c.Errorf("must be a string or an array, got %s", jsonmap.TypeName(v))
	}
	for _, t := range k.types {
		if !slices.Contains(typeNames, t) {
			return nil, c.Errorf("unknown type %q", t)
		}
	}
	strict := c.Draft().StrictInteger
	return EvaluatorFunc(func(e *Evaluation) *Result {
		for _, t := range k.types {
			if hasType(e.Instance, t, strict) {
				return e.Valid(nil)
			}
		}
		return e.Invalid(k.kind, nil)
	}), nil
}

func hasType(v any, t string, strict bool) bool {
	kind := jsonmap.KindOf(v)
	switch t {
	case "integer":
		return kind == jsonmap.Number && jsonmap.IsInteger(v, strict)
	case "object":
		return kind == jsonmap.ObjectKind
	}
	return kind.String() == t
}

func compileEnum(c *KeywordCompiler, v any) (Evaluator, error) {
	values, ok := v.([]any)
	if !ok {
		return nil, c.Errorf("must be an array, got %s", jsonmap.TypeName(v))
	}
	return EvaluatorFunc(func(e *Evaluation) *Result {
		for _, want := range values {
			if jsonmap.Equal(e.Instance, want) {
				return e.Valid(nil)
			}
		}
		return e.Invalid("", nil)
	}), nil
}

func compileConst(_ *KeywordCompiler, v any) (Evaluator, error) {
	return EvaluatorFunc(func(e *Evaluation) *Result {
		if jsonmap.Equal(e.Instance, v) {
			return e.Valid(nil)
		}
		return e.Invalid("", nil)
	}), nil
}

func compileMultipleOf(c *KeywordCompiler, v any) (Evaluator, error) {
	d, ok := jsonmap.Rat(v)
	if !ok || d.Sign() <= 0 {
		return nil, c.Errorf("must be a number greater than 0")
	}
	return EvaluatorFunc(func(e *Evaluation) *Result {
		if jsonmap.KindOf(e.Instance) != jsonmap.Number {
			return e.Valid(nil)
		}
		n, ok := jsonmap.Rat(e.Instance)
		if !ok {
			return e.Invalid("", nil)
		}
		if new(big.Rat).Quo(n, d).IsInt() {
			return e.Valid(nil)
		}
		return e.Invalid("", nil)
	}), nil
}

// compileBound builds a numeric limit. ok receives the comparison of the
// instance against the limit.
func compileBound(ok func(cmp int) bool) CompileFunc {
	return func(c *KeywordCompiler, v any) (Evaluator, error) {
		if jsonmap.KindOf(v) != jsonmap.Number {
			return nil, c.Errorf("must be a number, got %s", jsonmap.TypeName(v))
		}
		return EvaluatorFunc(func(e *Evaluation) *Result {
			if jsonmap.KindOf(e.Instance) != jsonmap.Number || ok(jsonmap.CompareNumbers(e.Instance, v)) {
				return e.Valid(nil)
			}
			return e.Invalid("", nil)
		}), nil
	}
}

// compileExclusiveDraft4 handles the boolean form that modifies the
// sibling limit.
func compileExclusiveDraft4(limit string, ok func(cmp int) bool) CompileFunc {
	return func(c *KeywordCompiler, v any) (Evaluator, error) {
		b, isBool := v.(bool)
		if !isBool {
			return nil, c.Errorf("must be a boolean, got %s", jsonmap.TypeName(v))
		}
		bound, present := c.Sibling(limit)
		if !b || !present || jsonmap.KindOf(bound) != jsonmap.Number {
			return nil, nil
		}
		return EvaluatorFunc(func(e *Evaluation) *Result {
			if jsonmap.KindOf(e.Instance) != jsonmap.Number || ok(jsonmap.CompareNumbers(e.Instance, bound)) {
				return e.Valid(nil)
			}
			return e.Invalid("", nil)
		}), nil
	}
}

func countString(v any) (int, bool) {
	s, ok := v.(string)
	return utf8.RuneCountInString(s), ok
}

func countArray(v any) (int, bool) {
	a, ok := v.([]any)
	return len(a), ok
}

func countObject(v any) (int, bool) {
	return jsonmap.Len(v), jsonmap.IsObject(v)
}

func nonNegative(c *KeywordCompiler, v any) (int, error) {
	if !jsonmap.IsInteger(v, false) {
		return 0, c.Errorf("must be a non-negative integer, got %v", v)
	}
	f, _ := jsonmap.Float(v)
	if f < 0 {
		return 0, c.Errorf("must be a non-negative integer, got %v", v)
	}
	return int(f), nil
}

func compileCount(count func(any) (int, bool), ok func(n, limit int) bool) CompileFunc {
	return func(c *KeywordCompiler, v any) (Evaluator, error) {
		limit, err := nonNegative(c, v)
		if err != nil {
			return nil, err
		}
		return EvaluatorFunc(func(e *Evaluation) *Result {
			n, applies := count(e.Instance)
			if !applies || ok(n, limit) {
				return e.Valid(nil)
			}
			return e.Invalid("", nil)
		}), nil
	}
}

func compilePattern(c *KeywordCompiler, v any) (Evaluator, error) {
	s, ok := v.(string)
	if !ok {
		return nil, c.Errorf("must be a string, got %s", jsonmap.TypeName(v))
	}
	re, err := c.Regexp(s)
	if err != nil {
		return nil, err
	}
	return patternEvaluator{re}, nil
}

type patternEvaluator struct{ re regex.Regexp }

func (p patternEvaluator) Evaluate(e *Evaluation) *Result {
	s, ok := e.Instance.(string)
	if !ok || p.re.MatchString(s) {
		return e.Valid(nil)
	}
	return e.Invalid("", nil)
}

func compileUniqueItems(c *KeywordCompiler, v any) (Evaluator, error) {
	b, ok := v.(bool)
	if !ok {
		return nil, c.Errorf("must be a boolean, got %s", jsonmap.TypeName(v))
	}
	if !b {
		return nil, nil
	}
	return EvaluatorFunc(func(e *Evaluation) *Result {
		arr, ok := e.Instance.([]any)
		if !ok {
			return e.Valid(nil)
		}
		for i := 1; i < len(arr); i++ {
			for j := 0; j < i; j++ {
				if jsonmap.Equal(arr[i], arr[j]) {
					return e.Invalid("", map[string]any{"duplicates": []any{j, i}})
				}
			}
		}
		return e.Valid(nil)
	}), nil
}

func compileMaxContains(c *KeywordCompiler, v any) (Evaluator, error) {
	limit, err := nonNegative(c, v)
	if err != nil {
		return nil, err
	}
	return EvaluatorFunc(func(e *Evaluation) *Result {
		n, ok := containsCount(e)
		if !ok || n <= limit {
			return e.Valid(nil)
		}
		return e.Invalid("", nil)
	}), nil
}

// compileMinContains only checks its value; "contains" applies the limit.
func compileMinContains(c *KeywordCompiler, v any) (Evaluator, error) {
	_, err := nonNegative(c, v)
	return nil, err
}

func compileRequired(c *KeywordCompiler, v any) (Evaluator, error) {
	arr, ok := v.([]any)
	if !ok {
		return nil, c.Errorf("must be an array, got %s", jsonmap.TypeName(v))
	}
	names, err := stringList(c, arr)
	if err != nil {
		return nil, err
	}
	return EvaluatorFunc(func(e *Evaluation) *Result {
		if !jsonmap.IsObject(e.Instance) {
			return e.Valid(nil)
		}
		if missing := missingKeys(e.Instance, names); len(missing) > 0 {
			return e.Invalid("", map[string]any{"missing_keys": missing})
		}
		return e.Valid(nil)
	}), nil
}

func missingKeys(obj any, names []string) []any {
	var missing []any
	for _, n := range names {
		if !jsonmap.Has(obj, n) {
			missing = append(missing, n)
		}
	}
	return missing
}

func compileDependentRequired(c *KeywordCompiler, v any) (Evaluator, error) {
	if !jsonmap.IsObject(v) {
		return nil, c.Errorf("must be an object, got %s", jsonmap.TypeName(v))
	}
	deps := map[string][]string{}
	keys := jsonmap.Keys(v)
	for _, name := range keys {
		raw, _ := jsonmap.Get(v, name)
		arr, ok := raw.([]any)
		if !ok {
			return nil, c.Errorf("value for %q must be an array", name)
		}
		names, err := stringList(c, arr)
		if err != nil {
			return nil, err
		}
		deps[name] = names
	}
	return EvaluatorFunc(func(e *Evaluation) *Result {
		if !jsonmap.IsObject(e.Instance) {
			return e.Valid(nil)
		}
		var missing []any
		for _, name := range keys {
			if jsonmap.Has(e.Instance, name) {
				missing = append(missing, missingKeys(e.Instance, deps[name])...)
			}
		}
		if len(missing) > 0 {
			return e.Invalid("", map[string]any{"missing_keys": missing})
		}
		return e.Valid(nil)
	}), nil
}
