package jsonschema

import (
	"errors"
	"fmt"
	"strings"

	"github.com/oarkflow/jsonschema/formats"
	"github.com/oarkflow/jsonschema/jsonmap"
)

var (
	ErrInvalidKeyType        = jsonmap.ErrInvalidKeyType
	ErrUnknownVocabulary     = errors.New("unknown vocabulary")
	ErrUnsupportedMetaSchema = errors.New("unsupported meta-schema")
	ErrInvalidKeywordValue   = errors.New("invalid keyword value")
	ErrInvalidRegexp         = errors.New("invalid regular expression")
	ErrUnknownFormat         = formats.ErrUnknownFormat
	ErrInvalidRefResolution  = errors.New("unresolvable reference")
	ErrInvalidRefPointer     = errors.New("invalid reference pointer")
	ErrUnknownOutputFormat   = errors.New("unknown output format")
	ErrInvalidSchema         = errors.New("schema must be an object or a boolean")
	ErrInstanceNotInPlace    = jsonmap.ErrNotInPlace
)

// SchemaError reports a problem found while compiling a schema. Kind is one
// of the sentinel errors above; Location is the absolute keyword location.
type SchemaError struct {
	Kind     error
	Location string
	Err      error
}

func (e *SchemaError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Kind.Error())
	if e.Location != "" {
		sb.WriteString(" at ")
		sb.WriteString(e.Location)
	}
	if e.Err != nil && e.Err != e.Kind {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

func (e *SchemaError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// RefError reports a reference that could not be resolved.
type RefError struct {
	Kind error
	Ref  string
	From string
	Err  error
}

func (e *RefError) Error() string {
	msg := fmt.Sprintf("%v: %q", e.Kind, e.Ref)
	if e.From != "" {
		msg += " from " + e.From
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *RefError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// ValidationError is returned by the package level helpers when an
// instance does not conform. Errors holds the classic error records.
type ValidationError struct {
	Errors []ClassicError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "validation failed"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "validation failed with %d errors:", len(e.Errors))
	for _, ce := range e.Errors {
		sb.WriteString("\n  - ")
		sb.WriteString(ce.Error)
	}
	return sb.String()
}

func schemaErr(kind error, location string, err error) error {
	var se *SchemaError
	if errors.As(err, &se) {
		return err
	}
	var re *RefError
	if errors.As(err, &re) {
		return err
	}
	return &SchemaError{Kind: kind, Location: location, Err: err}
}
