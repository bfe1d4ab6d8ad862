package jsonschema

import (
	"strings"
	"sync"

	"github.com/oarkflow/jsonschema/jsonmap"
	"github.com/oarkflow/jsonschema/pointer"
)

// Source is what produced a Result: a *Schema or one of its keywords.
type Source interface {
	// Schema returns the schema object the source belongs to.
	Schema() *Schema
	// Keyword returns the keyword name, or "" for a schema.
	Keyword() string
	Value() any
	SchemaPointer() string
	AbsoluteKeywordLocation() string
}

// Schema is a compiled schema object or boolean schema. Compiled schemas
// are immutable and safe for concurrent use.
type Schema struct {
	value   any
	parent  *Schema
	owner   *keywordNode
	root    *Schema
	ptr     string
	baseURI string
	dialect *dialect

	keywords []*keywordNode
	byName   map[string]*keywordNode

	// set when the schema object declares them
	id              string
	dynamicAnchor   string
	recursiveAnchor bool

	absOnce sync.Once
	abs     string

	// root only
	compiler  *Compiler
	opts      *Options
	resources *registry
	byPointer map[string]*Schema
	nodes     []*Schema
}

type keywordNode struct {
	name   string
	value  any
	schema *Schema
	eval   Evaluator

	absOnce sync.Once
	abs     string
}

func (s *Schema) Schema() *Schema { return s }
func (s *Schema) Keyword() string { return "" }
func (s *Schema) Value() any      { return s.value }

// SchemaPointer is the JSON pointer of s inside its document.
func (s *Schema) SchemaPointer() string { return s.ptr }

// Root returns the root of the document s belongs to.
func (s *Schema) Root() *Schema { return s.root }

// Parent returns the enclosing schema, or nil for a root.
func (s *Schema) Parent() *Schema { return s.parent }

// BaseURI is the URI relative references in s resolve against.
func (s *Schema) BaseURI() string { return s.baseURI }

// Draft returns the draft s was compiled with.
func (s *Schema) Draft() *Draft { return s.dialect.draft }

// MetaSchemaURI is the URI of the dialect s was compiled with.
func (s *Schema) MetaSchemaURI() string { return s.dialect.uri }

// Keywords lists the compiled keywords in evaluation order.
func (s *Schema) Keywords() []string {
	out := make([]string, len(s.keywords))
	for i, k := range s.keywords {
		out[i] = k.name
	}
	return out
}

func (s *Schema) boolean() (value, ok bool) {
	b, ok := s.value.(bool)
	return b, ok
}

// AbsoluteKeywordLocation is the URI of s: its base URI followed by the
// pointer from the enclosing resource.
func (s *Schema) AbsoluteKeywordLocation() string {
	s.absOnce.Do(func() {
		switch {
		case s.owner != nil && s.baseURI == s.parent.baseURI && s.id == "":
			s.abs = s.owner.AbsoluteKeywordLocation() + pointer.Fragment(strings.TrimPrefix(s.ptr, s.owner.pointer()))
		case s.owner == nil && s.parent != nil && s.baseURI == s.parent.baseURI && s.id == "":
			// compiled on demand from a pointer
			s.abs = s.parent.AbsoluteKeywordLocation() + pointer.Fragment(strings.TrimPrefix(s.ptr, s.parent.ptr))
		default:
			s.abs = s.baseURI + "#"
		}
	})
	return s.abs
}

func (s *Schema) String() string { return s.AbsoluteKeywordLocation() }

func (k *keywordNode) Schema() *Schema { return k.schema }
func (k *keywordNode) Keyword() string { return k.name }
func (k *keywordNode) Value() any      { return k.value }

func (k *keywordNode) pointer() string {
	return pointer.Join(k.schema.ptr, k.name)
}

func (k *keywordNode) SchemaPointer() string { return k.schema.ptr }

func (k *keywordNode) AbsoluteKeywordLocation() string {
	k.absOnce.Do(func() {
		k.abs = k.schema.AbsoluteKeywordLocation() + pointer.Fragment("/"+pointer.Escape(k.name))
	})
	return k.abs
}

// keyword returns the compiled keyword name, or nil.
func (s *Schema) keyword(name string) *keywordNode {
	return s.byName[name]
}

// subschema returns the single schema compiled for a sibling keyword.
func (s *Schema) subschema(name string) *Schema {
	k := s.keyword(name)
	if k == nil {
		return nil
	}
	if ss, ok := k.eval.(interface{ sub() *Schema }); ok {
		return ss.sub()
	}
	return nil
}

// lookupPointer returns the compiled node at ptr inside the document.
func (s *Schema) lookupPointer(ptr string) *Schema {
	return s.root.byPointer[ptr]
}

// raw descends tokens through the raw value of s.
func raw(v any, tokens []string) (any, bool) {
	for _, t := range tokens {
		switch jsonmap.KindOf(v) {
		case jsonmap.ObjectKind:
			next, ok := jsonmap.Get(v, t)
			if !ok {
				return nil, false
			}
			v = next
		case jsonmap.Array:
			i, ok := pointer.Index(t)
			arr := v.([]any)
			if !ok || i >= len(arr) {
				return nil, false
			}
			v = arr[i]
		default:
			return nil, false
		}
	}
	return v, true
}
