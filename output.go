package jsonschema

import (
	"fmt"
	"iter"
	"slices"
	"strings"

	"github.com/oarkflow/jsonschema/jsonmap"
)

// Format selects an output shape.
type Format int

const (
	FormatFlag Format = iota
	FormatBasic
	FormatDetailed
	FormatVerbose
	FormatClassic
)

var formatNames = [...]string{"flag", "basic", "detailed", "verbose", "classic"}

func (f Format) String() string {
	if int(f) < len(formatNames) {
		return formatNames[f]
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// ParseFormat returns the format named s.
func ParseFormat(s string) (Format, error) {
	if i := slices.Index(formatNames[:], strings.ToLower(s)); i >= 0 {
		return Format(i), nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownOutputFormat, s)
}

// Flag is the flag output: the verdict only.
type Flag struct {
	Valid bool `json:"valid"`
}

// OutputUnit is one node of the basic, detailed and verbose outputs.
// Nested units are produced lazily.
type OutputUnit struct {
	Valid                   bool
	KeywordLocation         string
	AbsoluteKeywordLocation string
	InstanceLocation        string
	Error                   string
	Annotation              any

	nestedKey string
	nested    iter.Seq[*OutputUnit]
}

// Nested returns the nested units, or nil when there are none. The
// sequence can be iterated more than once.
func (u *OutputUnit) Nested() iter.Seq[*OutputUnit] { return u.nested }

// Resolve materializes the nested units recursively.
func (u *OutputUnit) Resolve() *OutputUnit {
	if u.nested == nil {
		return u
	}
	units := slices.Collect(u.nested)
	for _, n := range units {
		n.Resolve()
	}
	u.nested = slices.Values(units)
	return u
}

func (u *OutputUnit) object() *jsonmap.Object {
	o := jsonmap.NewObject()
	o.Set("valid", u.Valid)
	o.Set("keywordLocation", u.KeywordLocation)
	o.Set("absoluteKeywordLocation", u.AbsoluteKeywordLocation)
	o.Set("instanceLocation", u.InstanceLocation)
	if u.Valid {
		if u.Annotation != nil {
			o.Set("annotation", u.Annotation)
		}
	} else {
		o.Set("error", u.Error)
	}
	if u.nested != nil {
		nested := []any{}
		for n := range u.nested {
			nested = append(nested, n.object())
		}
		o.Set(u.nestedKey, nested)
	}
	return o
}

func (u *OutputUnit) MarshalJSON() ([]byte, error) {
	return jsonmap.Marshal(u.object())
}

// ClassicError is one error record of the classic output.
type ClassicError struct {
	Data          any            `json:"data"`
	DataPointer   string         `json:"data_pointer"`
	Schema        any            `json:"schema"`
	SchemaPointer string         `json:"schema_pointer"`
	RootSchema    any            `json:"root_schema"`
	Type          string         `json:"type"`
	Error         string         `json:"error"`
	Details       map[string]any `json:"details,omitempty"`
}

func (r *Result) unit() *OutputUnit {
	u := &OutputUnit{
		Valid:                   r.Valid,
		KeywordLocation:         r.KeywordLocation,
		AbsoluteKeywordLocation: r.AbsoluteKeywordLocation(),
		InstanceLocation:        r.InstanceLocation,
		nestedKey:               r.NestedKey(),
	}
	if r.Valid {
		u.Annotation = r.Annotation
	} else {
		u.Error = r.Message()
	}
	return u
}

func (r *Result) classic() ClassicError {
	s := r.Source.Schema()
	return ClassicError{
		Data:          r.Instance,
		DataPointer:   r.InstanceLocation,
		Schema:        s.value,
		SchemaPointer: r.Source.SchemaPointer(),
		RootSchema:    s.root.value,
		Type:          r.kind(),
		Error:         r.Message(),
		Details:       r.Details,
	}
}

func (r *Result) leaf() bool {
	return r.IgnoreNested || len(r.Nested) == 0
}

// walk visits r and the nested results whose validity equals valid in
// depth-first order. emit receives each result and the number of nested
// results that were scheduled under it.
func (r *Result) walk(valid bool, emit func(n *Result, pushed int) bool) {
	stack := []*Result{r}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n.leaf() {
			if !emit(n, 0) {
				return
			}
			continue
		}
		before := len(stack)
		for i := len(n.Nested) - 1; i >= 0; i-- {
			if n.Nested[i].Valid == valid {
				stack = append(stack, n.Nested[i])
			}
		}
		if !emit(n, len(stack)-before) {
			return
		}
	}
}

// Flag returns the flag output.
func (r *Result) Flag() Flag { return Flag{Valid: r.Valid} }

// Basic returns a flat list of the results that explain the verdict.
// A result with exactly one relevant nested result is represented by it.
func (r *Result) Basic() *OutputUnit {
	u := r.unit()
	if len(r.Nested) == 0 {
		return u
	}
	u.nested = func(yield func(*OutputUnit) bool) {
		r.walk(r.Valid, func(n *Result, pushed int) bool {
			if !n.leaf() && pushed == 1 {
				return true
			}
			return yield(n.unit())
		})
	}
	return u
}

// Detailed returns the result tree with single-child chains collapsed.
func (r *Result) Detailed() *OutputUnit {
	if r.leaf() {
		return r.unit()
	}
	var matching []*Result
	for _, n := range r.Nested {
		if n.Valid == r.Valid {
			matching = append(matching, n)
		}
	}
	if len(matching) == 1 {
		return matching[0].Detailed()
	}
	u := r.unit()
	if len(matching) > 0 {
		u.nested = func(yield func(*OutputUnit) bool) {
			for _, n := range matching {
				if !yield(n.Detailed()) {
					return
				}
			}
		}
	}
	return u
}

// Verbose returns the complete result tree.
func (r *Result) Verbose() *OutputUnit {
	u := r.unit()
	if len(r.Nested) > 0 {
		u.nested = func(yield func(*OutputUnit) bool) {
			for _, n := range r.Nested {
				if !yield(n.Verbose()) {
					return
				}
			}
		}
	}
	return u
}

// Classic returns one record per failing leaf. It is empty when r is valid.
func (r *Result) Classic() iter.Seq[ClassicError] {
	return func(yield func(ClassicError) bool) {
		if r.Valid {
			return
		}
		r.walk(false, func(n *Result, pushed int) bool {
			if pushed > 0 {
				return true
			}
			return yield(n.classic())
		})
	}
}

// Output renders r in format f. Basic, detailed and verbose return an
// *OutputUnit, classic an iter.Seq[ClassicError] and flag a Flag.
func (r *Result) Output(f Format) (any, error) {
	switch f {
	case FormatFlag:
		return r.Flag(), nil
	case FormatBasic:
		return r.Basic(), nil
	case FormatDetailed:
		return r.Detailed(), nil
	case FormatVerbose:
		return r.Verbose(), nil
	case FormatClassic:
		return r.Classic(), nil
	}
	return nil, fmt.Errorf("%w: %v", ErrUnknownOutputFormat, f)
}

// resolve materializes lazy sequences of an output value.
func resolve(out any) any {
	switch o := out.(type) {
	case *OutputUnit:
		return o.Resolve()
	case iter.Seq[ClassicError]:
		return slices.Collect(o)
	}
	return out
}
