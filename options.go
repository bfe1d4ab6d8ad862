package jsonschema

import (
	"context"
	"io"
	"maps"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/oarkflow/jsonschema/fetch"
	"github.com/oarkflow/jsonschema/formats"
	"github.com/oarkflow/jsonschema/jsonmap"
	"github.com/oarkflow/jsonschema/regex"
)

// DefaultBaseURI is the base URI of a root schema without an id.
const DefaultBaseURI = "jsonschema://schema"

// AccessMode selects how readOnly and writeOnly are enforced.
type AccessMode int

const (
	AccessNone AccessMode = iota
	AccessRead
	AccessWrite
)

func (m AccessMode) String() string {
	switch m {
	case AccessRead:
		return "read"
	case AccessWrite:
		return "write"
	}
	return ""
}

// PropertyHook runs around the "properties" keyword for every declared
// property, whether or not the instance has it. It may mutate instance.
type PropertyHook func(instance any, property string, propertySchema, parentSchema any)

// CustomKeywordFunc validates the raw schema object holding the keyword.
// It returns true, false, an error message string, or a []any of those.
type CustomKeywordFunc func(instance, schema any, instanceLocation string) any

type customKeyword struct {
	name string
	fn   CustomKeywordFunc
}

// Options holds compile and validation settings.
type Options struct {
	BaseURI                 string
	Draft                   *Draft
	FormatAssertion         bool
	Formats                 formats.Registry
	ContentEncodings        formats.Encodings
	ContentMediaTypes       formats.MediaTypes
	InsertPropertyDefaults  bool
	PropertyDefaultResolver func(any) any
	ExpressionDefaults      bool
	BeforePropertyHooks     []PropertyHook
	AfterPropertyHooks      []PropertyHook
	Fetcher                 fetch.Fetcher
	Resources               map[string]any
	Regexp                  regex.Compiler
	OutputFormat            Format
	ResolveEnumerators      bool
	AccessMode              AccessMode
	Renderer                Renderer
	Vocabularies            []*Vocabulary
	Logger                  *log.Logger
	Context                 context.Context

	customKeywords []customKeyword
}

// Option is a function that modifies the Options struct.
type Option func(*Options)

func defaultOptions() *Options {
	return &Options{
		BaseURI:           DefaultBaseURI,
		Draft:             Draft202012,
		FormatAssertion:   true,
		Formats:           formats.Default(),
		ContentEncodings:  formats.DefaultEncodings(),
		ContentMediaTypes: formats.DefaultMediaTypes(),
		Regexp:            regex.Native,
		OutputFormat:      FormatClassic,
		Renderer:          DefaultRenderer(),
		Logger:            log.New(io.Discard),
		Context:           context.Background(),
	}
}

func newOptions(opts ...Option) *Options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// with returns a copy of o with opts applied. Slices and maps are copied
// so that per-call options never leak into the compiled schema.
func (o *Options) with(opts ...Option) *Options {
	if len(opts) == 0 {
		return o
	}
	c := *o
	c.BeforePropertyHooks = slices.Clone(o.BeforePropertyHooks)
	c.AfterPropertyHooks = slices.Clone(o.AfterPropertyHooks)
	c.customKeywords = slices.Clone(o.customKeywords)
	c.Vocabularies = slices.Clone(o.Vocabularies)
	c.Resources = maps.Clone(o.Resources)
	for _, opt := range opts {
		opt(&c)
	}
	return &c
}

// shortCircuit reports whether evaluation may stop at the first failure.
// mutating reports whether validation may change the instance.
func (o *Options) mutating() bool {
	return o.InsertPropertyDefaults || len(o.BeforePropertyHooks) > 0 || len(o.AfterPropertyHooks) > 0
}

func (o *Options) shortCircuit() bool {
	return !o.mutating()
}

// instance brings v into the value model. When validation may change the
// instance, containers are converted in place instead of copied.
func (o *Options) instance(v any) (any, error) {
	if !o.mutating() {
		return jsonmap.Normalize(v)
	}
	return jsonmap.Adopt(v)
}

// WithBaseURI sets the base URI of root schemas that do not declare an id.
func WithBaseURI(uri string) Option {
	return func(o *Options) {
		o.BaseURI = uri
	}
}

// WithDraft sets the dialect used when a schema has no "$schema".
func WithDraft(d *Draft) Option {
	return func(o *Options) {
		if d != nil {
			o.Draft = d
		}
	}
}

// WithFormatAssertion toggles "format" as an assertion. It is on by default.
func WithFormatAssertion(enabled bool) Option {
	return func(o *Options) {
		o.FormatAssertion = enabled
	}
}

// WithFormats replaces the format registry.
func WithFormats(r formats.Registry) Option {
	return func(o *Options) {
		o.Formats = r
	}
}

// WithFormat adds or replaces a single format checker. A nil checker
// disables the format.
func WithFormat(name string, c formats.Checker) Option {
	return func(o *Options) {
		o.Formats = o.Formats.With(name, c)
	}
}

func WithContentEncodings(e formats.Encodings) Option {
	return func(o *Options) {
		o.ContentEncodings = e
	}
}

func WithContentMediaTypes(m formats.MediaTypes) Option {
	return func(o *Options) {
		o.ContentMediaTypes = m
	}
}

// WithCustomKeyword registers a callback run for every schema object that
// contains name. Callbacks run after the vocabulary keywords.
func WithCustomKeyword(name string, fn CustomKeywordFunc) Option {
	return func(o *Options) {
		o.customKeywords = slices.DeleteFunc(o.customKeywords, func(k customKeyword) bool { return k.name == name })
		o.customKeywords = append(o.customKeywords, customKeyword{name: name, fn: fn})
	}
}

// WithInsertPropertyDefaults inserts missing properties that declare a
// default. The instance is modified in place.
func WithInsertPropertyDefaults(enabled bool) Option {
	return func(o *Options) {
		o.InsertPropertyDefaults = enabled
	}
}

// WithPropertyDefaultResolver transforms every default before insertion.
func WithPropertyDefaultResolver(fn func(any) any) Option {
	return func(o *Options) {
		o.PropertyDefaultResolver = fn
	}
}

// WithExpressionDefaults evaluates string defaults of the form "{{ expr }}"
// against the object receiving the property.
func WithExpressionDefaults(enabled bool) Option {
	return func(o *Options) {
		o.ExpressionDefaults = enabled
	}
}

func WithBeforePropertyHook(h PropertyHook) Option {
	return func(o *Options) {
		o.BeforePropertyHooks = append(o.BeforePropertyHooks, h)
	}
}

func WithAfterPropertyHook(h PropertyHook) Option {
	return func(o *Options) {
		o.AfterPropertyHooks = append(o.AfterPropertyHooks, h)
	}
}

// WithFetcher sets the fetcher used for documents that are neither embedded
// meta-schemas nor registered resources.
func WithFetcher(f fetch.Fetcher) Option {
	return func(o *Options) {
		o.Fetcher = f
	}
}

// WithResources registers in-memory documents by URI.
func WithResources(docs map[string]any) Option {
	return func(o *Options) {
		if o.Resources == nil {
			o.Resources = make(map[string]any, len(docs))
		}
		for uri, doc := range docs {
			o.Resources[normalizeURI(uri)] = doc
		}
	}
}

// WithRegexp sets the pattern compiler, regex.Native or regex.ECMA.
func WithRegexp(c regex.Compiler) Option {
	return func(o *Options) {
		if c != nil {
			o.Regexp = c
		}
	}
}

func WithOutputFormat(f Format) Option {
	return func(o *Options) {
		o.OutputFormat = f
	}
}

// WithResolveEnumerators makes Output materialize lazy sequences.
func WithResolveEnumerators(enabled bool) Option {
	return func(o *Options) {
		o.ResolveEnumerators = enabled
	}
}

func WithAccessMode(m AccessMode) Option {
	return func(o *Options) {
		o.AccessMode = m
	}
}

func WithRenderer(r Renderer) Option {
	return func(o *Options) {
		if r != nil {
			o.Renderer = r
		}
	}
}

// WithVocabulary registers an extension vocabulary. Its keywords are
// active in every dialect.
func WithVocabulary(v *Vocabulary) Option {
	return func(o *Options) {
		o.Vocabularies = append(o.Vocabularies, v)
	}
}

func WithVocabularies(vs ...*Vocabulary) Option {
	return func(o *Options) {
		o.Vocabularies = append(o.Vocabularies, vs...)
	}
}

func WithLogger(l *log.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.Logger = l
		}
	}
}

// WithContext sets the context passed to the fetcher.
func WithContext(ctx context.Context) Option {
	return func(o *Options) {
		if ctx != nil {
			o.Context = ctx
		}
	}
}
