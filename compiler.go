package jsonschema

import (
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/oarkflow/jsonschema/jsonmap"
	"github.com/oarkflow/jsonschema/pointer"
	"github.com/oarkflow/jsonschema/regex"
)

// Compiler compiles schemas with a fixed set of options. Compiled schemas
// are cached by the canonical form of their value.
type Compiler struct {
	opts    *Options
	cache   map[string]*Schema
	cacheMu sync.RWMutex
	metas   sync.Map
}

// NewCompiler creates a new Compiler instance with provided functional options.
func NewCompiler(opts ...Option) *Compiler {
	c := &Compiler{
		opts:  newOptions(opts...),
		cache: make(map[string]*Schema),
	}
	for _, k := range c.opts.customKeywords {
		c.opts.Logger.Debug("custom keyword", "name", k.name, "func", funcName(k.fn))
	}
	for _, h := range c.opts.BeforePropertyHooks {
		c.opts.Logger.Debug("property hook", "when", "before", "func", funcName(h))
	}
	for _, h := range c.opts.AfterPropertyHooks {
		c.opts.Logger.Debug("property hook", "when", "after", "func", funcName(h))
	}
	return c
}

// Options returns the compiler configuration. It must not be modified.
func (c *Compiler) Options() *Options { return c.opts }

// Compile decodes and compiles a JSON schema document.
func (c *Compiler) Compile(data []byte) (*Schema, error) {
	v, err := jsonmap.Decode(data)
	if err != nil {
		return nil, err
	}
	return c.CompileValue(v)
}

// CompileValue compiles a schema given as a value. Go maps, structs and
// slices are accepted and converted.
func (c *Compiler) CompileValue(value any) (*Schema, error) {
	value, err := jsonmap.Normalize(value)
	if err != nil {
		return nil, &SchemaError{Kind: ErrInvalidKeyType, Err: err}
	}
	key, err := computeCacheKey(value)
	if err != nil {
		return nil, err
	}
	c.cacheMu.RLock()
	if s, ok := c.cache[key]; ok {
		c.cacheMu.RUnlock()
		c.opts.Logger.Debug("schema cache hit", "key", key[:12])
		return s, nil
	}
	c.cacheMu.RUnlock()

	ss := newSession(c)
	root, err := ss.compileDocument(value, c.opts.BaseURI, nil)
	if err != nil {
		return nil, err
	}
	if err := ss.link(); err != nil {
		return nil, err
	}
	c.cacheMu.Lock()
	c.cache[key] = root
	c.cacheMu.Unlock()
	return root, nil
}

// CompileURI compiles the document identified by uri, loaded from the
// embedded meta-schemas, the registered resources or the fetcher.
func (c *Compiler) CompileURI(uri string) (*Schema, error) {
	ss := newSession(c)
	doc, frag := splitFragment(normalizeURI(uri))
	root, err := ss.load(doc, nil)
	if err != nil {
		return nil, err
	}
	target := root
	if frag != "" {
		if target, err = ss.resolve(root, uri); err != nil {
			return nil, err
		}
	}
	if err := ss.link(); err != nil {
		return nil, err
	}
	return target, nil
}

func (c *Compiler) metaSchema(uri string) (*Schema, error) {
	if m, ok := c.metas.Load(uri); ok {
		return m.(*Schema), nil
	}
	m, err := c.CompileURI(uri)
	if err != nil {
		return nil, err
	}
	actual, _ := c.metas.LoadOrStore(uri, m)
	return actual.(*Schema), nil
}

// Compile compiles schema with a new Compiler. schema may be raw JSON
// ([]byte) or a value.
func Compile(schema any, opts ...Option) (*Schema, error) {
	c := NewCompiler(opts...)
	if data, ok := schema.([]byte); ok {
		return c.Compile(data)
	}
	return c.CompileValue(schema)
}

// MustCompile is like Compile but panics on error.
func MustCompile(schema any, opts ...Option) *Schema {
	s, err := Compile(schema, opts...)
	if err != nil {
		panic(err)
	}
	return s
}

// Ref is a reference keyword value. Its target is set when the compiler
// links the documents.
type Ref struct {
	URI      string
	resolved string
	from     *Schema
	target   *Schema
}

// Target returns the referenced schema.
func (r *Ref) Target() *Schema { return r.target }

// session is one run of the compiler. Documents loaded while linking are
// compiled into the same session.
type session struct {
	c        *Compiler
	opts     *Options
	log      *log.Logger
	docs     map[string]*Schema
	roots    []*Schema
	dialects map[string]*dialect
	pending  []*Ref
}

func newSession(c *Compiler) *session {
	return &session{
		c:        c,
		opts:     c.opts,
		log:      c.opts.Logger,
		docs:     make(map[string]*Schema),
		dialects: make(map[string]*dialect),
	}
}

func (ss *session) compileDocument(value any, uri string, inherit *dialect) (*Schema, error) {
	uri = normalizeURI(uri)
	if root, ok := ss.docs[uri]; ok {
		return root, nil
	}
	ss.log.Debug("compiling document", "uri", uri)
	root := &Schema{
		value:     value,
		compiler:  ss.c,
		opts:      ss.opts,
		resources: newRegistry(),
		byPointer: make(map[string]*Schema),
	}
	root.root = root
	ss.docs[uri] = root
	ss.roots = append(ss.roots, root)
	root.resources.addLexical(uri, root)
	if err := ss.build(root, uri, inherit); err != nil {
		return nil, err
	}
	return root, nil
}

// build compiles s, whose value, parent, owner, root and pointer are set.
func (ss *session) build(s *Schema, base string, inherit *dialect) error {
	s.baseURI = base
	s.dialect = inherit
	root := s.root
	root.byPointer[s.ptr] = s
	root.nodes = append(root.nodes, s)

	if _, ok := s.value.(bool); ok {
		if s.dialect == nil {
			s.dialect = ss.defaultDialect()
		}
		return nil
	}
	if !jsonmap.IsObject(s.value) {
		return &SchemaError{Kind: ErrInvalidSchema, Location: s.location(), Err: fmt.Errorf("got %s", jsonmap.TypeName(s.value))}
	}
	if ms, ok := jsonmap.Get(s.value, "$schema"); ok {
		uri, ok := ms.(string)
		if !ok {
			return &SchemaError{Kind: ErrInvalidKeywordValue, Location: s.location(), Err: errors.New("$schema must be a string")}
		}
		d, err := ss.dialectFor(uri)
		if err != nil {
			return err
		}
		s.dialect = d
	}
	if s.dialect == nil {
		s.dialect = ss.defaultDialect()
	}

	excl := s.dialect.exclusive(s.value)
	if excl == nil {
		if err := ss.identify(s); err != nil {
			return err
		}
	}
	s.byName = make(map[string]*keywordNode)
	if excl != nil {
		return ss.compileKeyword(s, excl)
	}
	for _, k := range s.dialect.keywords {
		if !jsonmap.Has(s.value, k.Name) {
			continue
		}
		if err := ss.compileKeyword(s, k); err != nil {
			return err
		}
	}
	for _, name := range jsonmap.Keys(s.value) {
		if _, ok := s.byName[name]; ok || ss.isCustom(name) {
			continue
		}
		if err := ss.compileKeyword(s, unknownKeyword(name)); err != nil {
			return err
		}
	}
	return nil
}

func (ss *session) isCustom(name string) bool {
	for _, k := range ss.opts.customKeywords {
		if k.name == name {
			return true
		}
	}
	return false
}

// identify applies the id keyword and registers anchors.
func (ss *session) identify(s *Schema) error {
	draft := s.dialect.draft
	res := s.root.resources
	if v, ok := jsonmap.Get(s.value, draft.ID); ok {
		id, ok := v.(string)
		if !ok {
			return &SchemaError{Kind: ErrInvalidKeywordValue, Location: s.location(), Err: fmt.Errorf("%s must be a string", draft.ID)}
		}
		resolved, err := resolveURI(s.baseURI, id)
		if err != nil {
			return &SchemaError{Kind: ErrInvalidKeywordValue, Location: s.location(), Err: err}
		}
		doc, frag := splitFragment(resolved)
		if frag != "" && draft.version <= 7 {
			res.addLexical(doc+"#"+frag, s)
		}
		if len(id) > 0 && id[0] != '#' && doc != s.baseURI {
			s.baseURI = doc
			s.id = doc
			res.addLexical(doc, s)
		}
	}
	if draft.version >= 2019 {
		if v, ok := jsonmap.Get(s.value, "$anchor"); ok {
			if a, ok := v.(string); ok {
				res.addLexical(s.baseURI+"#"+a, s)
			}
		}
	}
	if draft.version >= 2020 {
		if v, ok := jsonmap.Get(s.value, "$dynamicAnchor"); ok {
			if a, ok := v.(string); ok {
				s.dynamicAnchor = a
				res.addLexical(s.baseURI+"#"+a, s)
				res.addDynamic(s.baseURI+"#"+a, s)
			}
		}
	}
	if draft.version == 2019 {
		if v, _ := jsonmap.Get(s.value, "$recursiveAnchor"); v == true {
			s.recursiveAnchor = true
			res.addDynamic(s.baseURI, s)
		}
	}
	return nil
}

func (ss *session) compileKeyword(s *Schema, k *Keyword) error {
	value, _ := jsonmap.Get(s.value, k.Name)
	node := &keywordNode{name: k.Name, value: value, schema: s}
	s.byName[k.Name] = node
	ev, err := k.Compile(&KeywordCompiler{ss: ss, node: node}, value)
	if err != nil {
		return schemaErr(ErrInvalidKeywordValue, node.AbsoluteKeywordLocation(), err)
	}
	node.eval = ev
	s.keywords = append(s.keywords, node)
	return nil
}

func (ss *session) defaultDialect() *dialect {
	d, _ := ss.dialectFor(ss.opts.Draft.URI)
	return d
}

// dialectFor returns the keyword table for the meta-schema uri. Unknown
// meta-schemas are loaded and followed through their own "$schema" until a
// known draft is reached; their "$vocabulary" selects the keywords.
func (ss *session) dialectFor(uri string) (*dialect, error) {
	uri = normalizeURI(uri)
	if d, ok := ss.dialects[uri]; ok {
		return d, nil
	}
	var (
		draft    = draftFor(uri)
		selected any
	)
	if draft == nil {
		var err error
		draft, selected, err = ss.metaInfo(uri)
		if err != nil {
			return nil, err
		}
		ss.log.Debug("resolved custom meta-schema", "uri", uri, "draft", draft.Name)
	}
	d, err := newDialect(draft, uri, selected, ss.opts.Vocabularies)
	if err != nil {
		return nil, err
	}
	ss.dialects[uri] = d
	return d, nil
}

func (ss *session) metaInfo(uri string) (*Draft, any, error) {
	var selected any
	seen := map[string]bool{}
	for cur := uri; ; {
		if seen[cur] {
			return nil, nil, &SchemaError{Kind: ErrUnsupportedMetaSchema, Location: uri, Err: errors.New("meta-schema cycle")}
		}
		seen[cur] = true
		doc, err := ss.fetch(cur)
		if err != nil {
			return nil, nil, &SchemaError{Kind: ErrUnsupportedMetaSchema, Location: uri, Err: err}
		}
		if selected == nil {
			selected, _ = jsonmap.Get(doc, "$vocabulary")
		}
		next, _ := jsonmap.Get(doc, "$schema")
		ns, ok := next.(string)
		if !ok {
			return nil, nil, &SchemaError{Kind: ErrUnsupportedMetaSchema, Location: uri, Err: errors.New("meta-schema has no $schema")}
		}
		if d := draftFor(ns); d != nil {
			return d, selected, nil
		}
		cur = normalizeURI(ns)
	}
}

// link resolves pending references. Resolving may compile further
// documents, which may add references of their own.
func (ss *session) link() error {
	for len(ss.pending) > 0 {
		r := ss.pending[0]
		ss.pending = ss.pending[1:]
		target, err := ss.resolve(r.from, r.resolved)
		if err != nil {
			return err
		}
		r.target = target
		ss.log.Debug("linked reference", "ref", r.URI, "target", target.AbsoluteKeywordLocation())
	}
	return nil
}

// KeywordCompiler is handed to CompileFunc. It gives access to the schema
// object being compiled and compiles subschemas and references.
type KeywordCompiler struct {
	ss   *session
	node *keywordNode
}

func (c *KeywordCompiler) Keyword() string { return c.node.name }

func (c *KeywordCompiler) Draft() *Draft { return c.node.schema.dialect.draft }

// Location is the absolute keyword location of the keyword.
func (c *KeywordCompiler) Location() string { return c.node.AbsoluteKeywordLocation() }

// Sibling returns the raw value of another keyword of the same schema object.
func (c *KeywordCompiler) Sibling(name string) (any, bool) {
	return jsonmap.Get(c.node.schema.value, name)
}

// compiled returns the evaluator of a sibling compiled before this keyword.
func (c *KeywordCompiler) compiled(name string) Evaluator {
	if k := c.node.schema.byName[name]; k != nil {
		return k.eval
	}
	return nil
}

func (c *KeywordCompiler) formatAssertion() bool {
	return c.node.schema.dialect.formatAssertion
}

func (c *KeywordCompiler) options() *Options { return c.ss.opts }

// Subschema compiles value as a schema located at the keyword followed by tokens.
func (c *KeywordCompiler) Subschema(value any, tokens ...string) (*Schema, error) {
	parent := c.node.schema
	child := &Schema{
		value:  value,
		parent: parent,
		owner:  c.node,
		root:   parent.root,
		ptr:    pointer.Join(c.node.pointer(), tokens...),
	}
	if err := c.ss.build(child, parent.baseURI, parent.dialect); err != nil {
		return nil, err
	}
	return child, nil
}

// Reference registers a reference resolved once the documents are linked.
func (c *KeywordCompiler) Reference(uri string) (*Ref, error) {
	resolved, err := resolveURI(c.node.schema.baseURI, uri)
	if err != nil {
		return nil, err
	}
	r := &Ref{URI: uri, resolved: resolved, from: c.node.schema}
	c.ss.pending = append(c.ss.pending, r)
	return r, nil
}

// Regexp compiles a pattern with the configured dialect.
func (c *KeywordCompiler) Regexp(pattern string) (regex.Regexp, error) {
	re, err := c.ss.opts.Regexp(pattern)
	if err != nil {
		return nil, &SchemaError{Kind: ErrInvalidRegexp, Location: c.Location(), Err: err}
	}
	return re, nil
}

// Errorf reports an invalid keyword value.
func (c *KeywordCompiler) Errorf(format string, args ...any) error {
	return &SchemaError{Kind: ErrInvalidKeywordValue, Location: c.Location(), Err: fmt.Errorf(format, args...)}
}

func (s *Schema) location() string {
	if s.owner != nil || s.parent != nil {
		return s.AbsoluteKeywordLocation()
	}
	return s.baseURI + "#" + pointer.Fragment(s.ptr)
}
