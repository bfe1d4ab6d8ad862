package jsonschema

// registry maps resource URIs of one document to compiled nodes. Lexical
// entries come from ids and anchors; dynamic entries from "$dynamicAnchor"
// (keyed base#name) and "$recursiveAnchor" (keyed by the base URI).
type registry struct {
	lexical map[string]*Schema
	dynamic map[string]*Schema
}

func newRegistry() *registry {
	return &registry{
		lexical: make(map[string]*Schema),
		dynamic: make(map[string]*Schema),
	}
}

func (r *registry) addLexical(uri string, s *Schema) {
	if _, ok := r.lexical[uri]; !ok {
		r.lexical[uri] = s
	}
}

func (r *registry) addDynamic(uri string, s *Schema) {
	if _, ok := r.dynamic[uri]; !ok {
		r.dynamic[uri] = s
	}
}

// lookup finds uri, also trying it with an explicit empty fragment.
func (r *registry) lookup(uri string) *Schema {
	if s, ok := r.lexical[uri]; ok {
		return s
	}
	if s, ok := r.lexical[uri+"#"]; ok {
		return s
	}
	return nil
}
