package jsonschema

import "github.com/oarkflow/jsonschema/jsonmap"

var (
	kwTitle       = &Keyword{Name: "title", Compile: compileAnnotation(jsonmap.String)}
	kwDescription = &Keyword{Name: "description", Compile: compileAnnotation(jsonmap.String)}
	kwDefault     = &Keyword{Name: "default", Compile: compileAnnotation(jsonmap.Invalid)}
	kwDeprecated  = &Keyword{Name: "deprecated", Compile: compileAnnotation(jsonmap.Boolean)}
	kwExamples    = &Keyword{Name: "examples", Compile: compileAnnotation(jsonmap.Array)}
	kwReadOnly    = &Keyword{Name: "readOnly", Compile: compileAccess(AccessWrite)}
	kwWriteOnly   = &Keyword{Name: "writeOnly", Compile: compileAccess(AccessRead)}
)

// compileAnnotation reports the keyword value as annotation. kind is the
// required value kind, Invalid for any.
func compileAnnotation(kind jsonmap.Kind) CompileFunc {
	return func(c *KeywordCompiler, v any) (Evaluator, error) {
		if kind != jsonmap.Invalid && jsonmap.KindOf(v) != kind {
			return nil, c.Errorf("must be %s, got %s", kind, jsonmap.TypeName(v))
		}
		return EvaluatorFunc(func(e *Evaluation) *Result {
			return e.Valid(v)
		}), nil
	}
}

// compileAccess rejects the instance when the flag is set and validation
// runs in the forbidden mode.
func compileAccess(forbidden AccessMode) CompileFunc {
	return func(c *KeywordCompiler, v any) (Evaluator, error) {
		b, ok := v.(bool)
		if !ok {
			return nil, c.Errorf("must be boolean, got %s", jsonmap.TypeName(v))
		}
		return EvaluatorFunc(func(e *Evaluation) *Result {
			if b && e.AccessMode() == forbidden {
				return e.Invalid("", map[string]any{"mode": forbidden.String()})
			}
			return e.Valid(v)
		}), nil
	}
}
