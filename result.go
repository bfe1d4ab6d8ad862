package jsonschema

// Result is the outcome of applying a schema or one keyword to an
// instance location.
type Result struct {
	Source           Source
	Instance         any
	InstanceLocation string
	KeywordLocation  string
	Valid            bool
	Nested           []*Result
	// Kind names the failed check, usually the keyword name. Single-type
	// "type" failures use the type name and false schemas use "schema".
	Kind       string
	Annotation any
	Details    map[string]any
	// IgnoreNested marks a result that summarizes its nested results, such
	// as "contains". Output formats treat it as a leaf.
	IgnoreNested bool

	message  string
	renderer Renderer
	// conditions evaluated without being part of the outcome ("if")
	applied []*Result
	// decoded or parsed content for the content keywords
	content    any
	hasContent bool
}

// NestedKey is the member name nested output units are listed under.
func (r *Result) NestedKey() string {
	if r.Valid {
		return "annotations"
	}
	return "errors"
}

// Keyword returns the keyword that produced r, or "" for a schema result.
func (r *Result) Keyword() string {
	return r.Source.Keyword()
}

// AbsoluteKeywordLocation is the URI of the schema or keyword that
// produced r.
func (r *Result) AbsoluteKeywordLocation() string {
	return r.Source.AbsoluteKeywordLocation()
}

// Message renders the error message of a failing result.
func (r *Result) Message() string {
	if r.message != "" {
		return r.message
	}
	if r.renderer == nil {
		return defaultRenderer.Render(r)
	}
	return r.renderer.Render(r)
}

func (r *Result) kind() string {
	if r.Kind != "" {
		return r.Kind
	}
	return "schema"
}
