package jsonschema

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"

	"github.com/oarkflow/jsonschema/jsonmap"
	"github.com/oarkflow/jsonschema/pointer"
)

// Renderer turns a failing result into a message.
type Renderer interface {
	Render(r *Result) string
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(r *Result) string

func (f RendererFunc) Render(r *Result) string { return f(r) }

// argument selects the second message argument after the location.
type argument int

const (
	argNone argument = iota
	argValue
	argMissing
	argKeyword
)

type template struct {
	text string
	arg  argument
}

const fallbackKey = "fallback"

// templates are keyed by result kind. %[1]s is the instance location.
var templates = map[string]template{
	"schema":                {"value at %[1]s does not match schema", argNone},
	"null":                  {"value at %[1]s is not null", argNone},
	"boolean":               {"value at %[1]s is not a boolean", argNone},
	"object":                {"value at %[1]s is not an object", argNone},
	"array":                 {"value at %[1]s is not an array", argNone},
	"number":                {"value at %[1]s is not a number", argNone},
	"string":                {"value at %[1]s is not a string", argNone},
	"integer":               {"value at %[1]s is not an integer", argNone},
	"type":                  {"value at %[1]s is not one of the types: %[2]s", argValue},
	"enum":                  {"value at %[1]s is not one of: %[2]s", argValue},
	"const":                 {"value at %[1]s is not: %[2]s", argValue},
	"multipleOf":            {"number at %[1]s is not a multiple of: %[2]s", argValue},
	"maximum":               {"number at %[1]s is greater than: %[2]s", argValue},
	"exclusiveMaximum":      {"number at %[1]s is greater than or equal to: %[2]s", argValue},
	"minimum":               {"number at %[1]s is less than: %[2]s", argValue},
	"exclusiveMinimum":      {"number at %[1]s is less than or equal to: %[2]s", argValue},
	"maxLength":             {"string length at %[1]s is greater than: %[2]s", argValue},
	"minLength":             {"string length at %[1]s is less than: %[2]s", argValue},
	"pattern":               {"string at %[1]s does not match pattern: %[2]s", argValue},
	"format":                {"value at %[1]s does not match format: %[2]s", argValue},
	"maxItems":              {"array size at %[1]s is greater than: %[2]s", argValue},
	"minItems":              {"array size at %[1]s is less than: %[2]s", argValue},
	"uniqueItems":           {"array items at %[1]s are not unique", argNone},
	"contains":              {"array at %[1]s does not contain enough items that match the `contains` schema", argNone},
	"maxContains":           {"number of array items at %[1]s matching the `contains` schema is greater than: %[2]s", argValue},
	"maxProperties":         {"object size at %[1]s is greater than: %[2]s", argValue},
	"minProperties":         {"object size at %[1]s is less than: %[2]s", argValue},
	"required":              {"object at %[1]s is missing required properties: %[2]s", argMissing},
	"dependentRequired":     {"object at %[1]s is missing required properties: %[2]s", argMissing},
	"dependencies":          {"object at %[1]s either does not match applicable `dependencies` schemas or is missing required properties", argNone},
	"dependentSchemas":      {"object at %[1]s does not match applicable `dependentSchemas` schemas", argNone},
	"propertyNames":         {"object property names at %[1]s do not match `propertyNames` schema", argNone},
	"properties":            {"object properties at %[1]s do not match their schemas", argNone},
	"patternProperties":     {"object properties at %[1]s do not match their `patternProperties` schemas", argNone},
	"additionalProperties":  {"object at %[1]s has disallowed additional properties", argNone},
	"unevaluatedProperties": {"object at %[1]s has disallowed unevaluated properties", argNone},
	"prefixItems":           {"array items at %[1]s do not match corresponding `prefixItems` schemas", argNone},
	"items":                 {"array items at %[1]s do not match `items` schema", argNone},
	"additionalItems":       {"array items at %[1]s do not match `additionalItems` schema", argNone},
	"unevaluatedItems":      {"array items at %[1]s do not match `unevaluatedItems` schema", argNone},
	"allOf":                 {"value at %[1]s does not match all `allOf` schemas", argNone},
	"anyOf":                 {"value at %[1]s does not match any `anyOf` schemas", argNone},
	"oneOf":                 {"value at %[1]s does not match exactly one `oneOf` schema", argNone},
	"not":                   {"value at %[1]s matches `not` schema", argNone},
	"then":                  {"value at %[1]s does not match conditional schema", argNone},
	"else":                  {"value at %[1]s does not match conditional schema", argNone},
	"readOnly":              {"value at %[1]s is `readOnly`", argNone},
	"writeOnly":             {"value at %[1]s is `writeOnly`", argNone},
	"contentEncoding":       {"string at %[1]s could not be decoded using encoding: %[2]s", argValue},
	"contentMediaType":      {"string at %[1]s could not be parsed using media type: %[2]s", argValue},
	fallbackKey:             {"value at %[1]s does not match schema keyword `%[2]s`", argKeyword},
}

type catalogRenderer struct {
	printer *message.Printer
}

var defaultRenderer = NewRenderer(language.English, nil)

// DefaultRenderer renders English messages.
func DefaultRenderer() Renderer { return defaultRenderer }

// NewRenderer returns a renderer for tag. translations maps result kinds
// to message templates with the same arguments as the English ones; kinds
// without a translation fall back to English.
func NewRenderer(tag language.Tag, translations map[string]string) Renderer {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for kind, t := range templates {
		_ = b.SetString(language.English, kind, t.text)
	}
	for kind, text := range translations {
		_ = b.SetString(tag, kind, text)
	}
	return &catalogRenderer{printer: message.NewPrinter(tag, message.Catalog(b))}
}

func (c *catalogRenderer) Render(r *Result) string {
	key := r.kind()
	t, ok := templates[key]
	if !ok {
		key, t = fallbackKey, templates[fallbackKey]
	}
	args := []any{pointer.Format(r.InstanceLocation)}
	switch t.arg {
	case argValue:
		args = append(args, renderValue(r.Source.Value()))
	case argMissing:
		missing, _ := r.Details["missing_keys"].([]any)
		names := make([]string, len(missing))
		for i, m := range missing {
			names[i], _ = m.(string)
		}
		args = append(args, strings.Join(names, ", "))
	case argKeyword:
		args = append(args, r.Keyword())
	}
	return c.printer.Sprintf(key, args...)
}

func renderValue(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	data, err := jsonmap.Marshal(v)
	if err != nil {
		return "?"
	}
	return string(data)
}
