package jsonschema

import (
	"fmt"
	"slices"

	"github.com/oarkflow/jsonschema/jsonmap"
)

// CompileFunc compiles the value of a keyword. It may return a nil
// Evaluator for keywords that never contribute a result.
type CompileFunc func(c *KeywordCompiler, value any) (Evaluator, error)

// Evaluator validates an instance against one compiled keyword. A nil
// result means the keyword does not apply.
type Evaluator interface {
	Evaluate(e *Evaluation) *Result
}

type EvaluatorFunc func(e *Evaluation) *Result

func (f EvaluatorFunc) Evaluate(e *Evaluation) *Result { return f(e) }

// Keyword describes one keyword of a vocabulary. When an Exclusive keyword
// is present in a schema object, every other keyword there is ignored.
type Keyword struct {
	Name      string
	Exclusive bool
	Compile   CompileFunc
}

// Vocabulary is an ordered set of keywords identified by a URI.
type Vocabulary struct {
	URI      string
	Keywords []*Keyword
}

// dialect is the resolved keyword table a schema object is compiled with.
type dialect struct {
	draft           *Draft
	uri             string
	keywords        []*Keyword
	byName          map[string]*Keyword
	formatAssertion bool
}

func (d *dialect) add(k *Keyword) {
	if _, ok := d.byName[k.Name]; ok {
		i := slices.IndexFunc(d.keywords, func(x *Keyword) bool { return x.Name == k.Name })
		d.keywords[i] = k
	} else {
		d.keywords = append(d.keywords, k)
	}
	d.byName[k.Name] = k
}

// exclusive returns the first exclusive keyword present in obj.
func (d *dialect) exclusive(obj any) *Keyword {
	for _, k := range d.keywords {
		if k.Exclusive && jsonmap.Has(obj, k.Name) {
			return k
		}
	}
	return nil
}

// newDialect builds the keyword table for draft. selected holds the
// "$vocabulary" object of the meta-schema, or nil for the draft defaults.
func newDialect(draft *Draft, uri string, selected any, extra []*Vocabulary) (*dialect, error) {
	d := &dialect{draft: draft, uri: uri, byName: make(map[string]*Keyword)}
	active := draft.defaults
	if selected != nil && draft.version >= 2019 {
		active = map[string]bool{}
		for _, vocabURI := range jsonmap.Keys(selected) {
			required, _ := jsonmap.Get(selected, vocabURI)
			known := draft.vocabulary(vocabURI) != nil || slices.ContainsFunc(extra, func(v *Vocabulary) bool { return v.URI == vocabURI })
			if !known {
				if required == true {
					return nil, &SchemaError{Kind: ErrUnknownVocabulary, Location: uri, Err: fmt.Errorf("%q", vocabURI)}
				}
				continue
			}
			active[vocabURI] = true
		}
		active[draft.vocabularies[0].URI] = true
	}
	for _, v := range draft.vocabularies {
		if !active[v.URI] {
			continue
		}
		if v.URI == Vocab202012FormatAssertion {
			d.formatAssertion = true
		}
		for _, k := range v.Keywords {
			d.add(k)
		}
	}
	for _, v := range extra {
		for _, k := range v.Keywords {
			d.add(k)
		}
	}
	return d, nil
}
