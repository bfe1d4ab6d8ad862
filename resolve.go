package jsonschema

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/oarkflow/jsonschema/jsonmap"
	"github.com/oarkflow/jsonschema/metaschema"
	"github.com/oarkflow/jsonschema/pointer"
)

// normalizeURI drops an empty fragment.
func normalizeURI(uri string) string {
	return strings.TrimSuffix(uri, "#")
}

// resolveURI resolves ref against base and drops an empty fragment.
func resolveURI(base, ref string) (string, error) {
	r, err := url.Parse(ref)
	if err != nil {
		return "", err
	}
	if r.IsAbs() {
		return normalizeURI(r.String()), nil
	}
	b, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	return normalizeURI(b.ResolveReference(r).String()), nil
}

func splitFragment(uri string) (doc, fragment string) {
	if i := strings.IndexByte(uri, '#'); i >= 0 {
		return uri[:i], uri[i+1:]
	}
	return uri, ""
}

// resolve returns the schema identified by the absolute uri, loading the
// document it belongs to when no compiled resource matches.
func (ss *session) resolve(from *Schema, uri string) (*Schema, error) {
	doc, frag := splitFragment(uri)
	decoded, err := url.PathUnescape(frag)
	if err != nil {
		return nil, &RefError{Kind: ErrInvalidRefPointer, Ref: uri, From: from.location(), Err: err}
	}
	isPointer := decoded == "" || decoded[0] == '/'
	key := doc
	if !isPointer {
		key = doc + "#" + decoded
	}
	node := ss.lookup(from.root, key)
	if node == nil {
		root, err := ss.load(doc, from.root.dialect)
		if err != nil {
			return nil, err
		}
		if node = ss.lookup(root, key); node == nil {
			return nil, &RefError{Kind: ErrInvalidRefResolution, Ref: uri, From: from.location(), Err: errors.New("no such anchor")}
		}
	}
	if isPointer && decoded != "" {
		return ss.descend(node, "#"+frag)
	}
	return node, nil
}

func (ss *session) lookup(root *Schema, key string) *Schema {
	if s := root.resources.lookup(key); s != nil {
		return s
	}
	for _, r := range ss.roots {
		if r == root {
			continue
		}
		if s := r.resources.lookup(key); s != nil {
			return s
		}
	}
	return nil
}

// descend applies a JSON pointer fragment to node. Pointer targets that
// were not compiled as schemas (for example values of unknown keywords)
// are compiled on demand.
func (ss *session) descend(node *Schema, fragment string) (*Schema, error) {
	tokens, err := pointer.Parse(fragment)
	if err != nil {
		return nil, &RefError{Kind: ErrInvalidRefPointer, Ref: fragment, From: node.location(), Err: err}
	}
	root := node.root
	full := pointer.Join(node.ptr, tokens...)
	if s := root.byPointer[full]; s != nil {
		return s, nil
	}
	cur, consumed := node, 0
	for i := range tokens {
		if s := root.byPointer[pointer.Join(node.ptr, tokens[:i+1]...)]; s != nil {
			cur, consumed = s, i+1
		}
	}
	v, ok := raw(cur.value, tokens[consumed:])
	if !ok {
		return nil, &RefError{Kind: ErrInvalidRefPointer, Ref: fragment, From: node.location(), Err: errors.New("no value at pointer")}
	}
	switch jsonmap.KindOf(v) {
	case jsonmap.Boolean, jsonmap.ObjectKind:
	default:
		return nil, &RefError{Kind: ErrInvalidRefPointer, Ref: fragment, From: node.location(), Err: fmt.Errorf("pointer target is %s, not a schema", jsonmap.TypeName(v))}
	}
	s := &Schema{value: v, parent: cur, root: root, ptr: full}
	if err := ss.build(s, cur.baseURI, cur.dialect); err != nil {
		return nil, err
	}
	return s, nil
}

// load compiles the document at doc, an absolute URI without fragment.
func (ss *session) load(doc string, inherit *dialect) (*Schema, error) {
	if root, ok := ss.docs[doc]; ok {
		return root, nil
	}
	v, err := ss.fetch(doc)
	if err != nil {
		return nil, err
	}
	return ss.compileDocument(v, doc, inherit)
}

var metaDocs sync.Map

// fetch returns the raw document at uri: an embedded meta-schema, a
// registered resource, or whatever the fetcher returns.
func (ss *session) fetch(uri string) (any, error) {
	if v, ok := metaDocs.Load(uri); ok {
		return v, nil
	}
	if data, ok := metaschema.Load(uri); ok {
		v, err := jsonmap.Decode(data)
		if err != nil {
			return nil, err
		}
		ss.log.Debug("loaded embedded meta-schema", "uri", uri)
		actual, _ := metaDocs.LoadOrStore(uri, v)
		return actual, nil
	}
	if v, ok := ss.opts.Resources[uri]; ok {
		return normalizeDocument(v)
	}
	if ss.opts.Fetcher == nil {
		return nil, &RefError{Kind: ErrInvalidRefResolution, Ref: uri, Err: errors.New("no fetcher configured")}
	}
	ss.log.Debug("fetching document", "uri", uri)
	v, err := ss.opts.Fetcher.Fetch(ss.opts.Context, uri)
	if err != nil {
		return nil, &RefError{Kind: ErrInvalidRefResolution, Ref: uri, Err: err}
	}
	if v == nil {
		return nil, &RefError{Kind: ErrInvalidRefResolution, Ref: uri, Err: errors.New("fetcher returned nothing")}
	}
	return normalizeDocument(v)
}

func normalizeDocument(v any) (any, error) {
	switch t := v.(type) {
	case []byte:
		return jsonmap.Decode(t)
	case string:
		return jsonmap.Decode([]byte(t))
	}
	v, err := jsonmap.Normalize(v)
	if err != nil {
		return nil, &SchemaError{Kind: ErrInvalidKeyType, Err: err}
	}
	return v, nil
}
