package jsonschema

import "strings"

const (
	Vocab201909Core       = "https://json-schema.org/draft/2019-09/vocab/core"
	Vocab201909Applicator = "https://json-schema.org/draft/2019-09/vocab/applicator"
	Vocab201909Validation = "https://json-schema.org/draft/2019-09/vocab/validation"
	Vocab201909MetaData   = "https://json-schema.org/draft/2019-09/vocab/meta-data"
	Vocab201909Format     = "https://json-schema.org/draft/2019-09/vocab/format"
	Vocab201909Content    = "https://json-schema.org/draft/2019-09/vocab/content"

	Vocab202012Core             = "https://json-schema.org/draft/2020-12/vocab/core"
	Vocab202012Applicator       = "https://json-schema.org/draft/2020-12/vocab/applicator"
	Vocab202012Unevaluated      = "https://json-schema.org/draft/2020-12/vocab/unevaluated"
	Vocab202012Validation       = "https://json-schema.org/draft/2020-12/vocab/validation"
	Vocab202012MetaData         = "https://json-schema.org/draft/2020-12/vocab/meta-data"
	Vocab202012FormatAnnotation = "https://json-schema.org/draft/2020-12/vocab/format-annotation"
	Vocab202012FormatAssertion  = "https://json-schema.org/draft/2020-12/vocab/format-assertion"
	Vocab202012Content          = "https://json-schema.org/draft/2020-12/vocab/content"
)

// Draft is a published version of JSON Schema.
type Draft struct {
	Name string
	// URI of the draft meta-schema, without the trailing '#'.
	URI string
	// ID is the keyword that sets the base URI: "id" or "$id".
	ID string
	// StrictInteger limits "integer" to integer representations, so 1.0
	// is not an integer.
	StrictInteger bool

	version      int
	vocabularies []*Vocabulary
	defaults     map[string]bool
}

func (d *Draft) String() string { return d.Name }

// Vocabularies returns the URIs of the vocabularies the draft defines.
func (d *Draft) Vocabularies() []string {
	if d.version < 2019 {
		return nil
	}
	out := make([]string, len(d.vocabularies))
	for i, v := range d.vocabularies {
		out[i] = v.URI
	}
	return out
}

func (d *Draft) vocabulary(uri string) *Vocabulary {
	for _, v := range d.vocabularies {
		if v.URI == uri {
			return v
		}
	}
	return nil
}

func single(uri string, keywords ...*Keyword) (vs []*Vocabulary, defaults map[string]bool) {
	return []*Vocabulary{{URI: uri, Keywords: keywords}}, map[string]bool{uri: true}
}

func defaultsOf(uris ...string) map[string]bool {
	m := make(map[string]bool, len(uris))
	for _, u := range uris {
		m[u] = true
	}
	return m
}

var (
	Draft4 = &Draft{Name: "draft-04", URI: "http://json-schema.org/draft-04/schema", ID: "id", StrictInteger: true, version: 4}
	Draft6 = &Draft{Name: "draft-06", URI: "http://json-schema.org/draft-06/schema", ID: "$id", version: 6}
	Draft7 = &Draft{Name: "draft-07", URI: "http://json-schema.org/draft-07/schema", ID: "$id", version: 7}

	Draft201909 = &Draft{Name: "2019-09", URI: "https://json-schema.org/draft/2019-09/schema", ID: "$id", version: 2019}
	Draft202012 = &Draft{Name: "2020-12", URI: "https://json-schema.org/draft/2020-12/schema", ID: "$id", version: 2020}

	drafts = []*Draft{Draft4, Draft6, Draft7, Draft201909, Draft202012}
)

func init() {
	Draft4.vocabularies, Draft4.defaults = single(Draft4.URI,
		kwSchema, kwIDDraft4, kwRefExclusive, kwDefinitions,
		kwType, kwEnum, kwMultipleOf, kwMaximum, kwExclusiveMaximumDraft4, kwMinimum, kwExclusiveMinimumDraft4,
		kwMaxLength, kwMinLength, kwPattern,
		kwItemsLegacy, kwAdditionalItems, kwMaxItems, kwMinItems, kwUniqueItems,
		kwMaxProperties, kwMinProperties, kwRequired, kwProperties, kwPatternProperties, kwAdditionalProperties, kwDependencies,
		kwAllOf, kwAnyOf, kwOneOf, kwNot,
		kwFormat,
		kwTitle, kwDescription, kwDefault,
	)
	Draft6.vocabularies, Draft6.defaults = single(Draft6.URI,
		kwSchema, kwID, kwRefExclusive, kwDefinitions,
		kwType, kwEnum, kwConst, kwMultipleOf, kwMaximum, kwExclusiveMaximum, kwMinimum, kwExclusiveMinimum,
		kwMaxLength, kwMinLength, kwPattern,
		kwItemsLegacy, kwAdditionalItems, kwMaxItems, kwMinItems, kwUniqueItems, kwContains,
		kwMaxProperties, kwMinProperties, kwRequired, kwProperties, kwPatternProperties, kwAdditionalProperties, kwDependencies, kwPropertyNames,
		kwAllOf, kwAnyOf, kwOneOf, kwNot,
		kwFormat,
		kwTitle, kwDescription, kwDefault, kwExamples,
	)
	Draft7.vocabularies, Draft7.defaults = single(Draft7.URI,
		kwSchema, kwID, kwRefExclusive, kwDefinitions, kwComment,
		kwType, kwEnum, kwConst, kwMultipleOf, kwMaximum, kwExclusiveMaximum, kwMinimum, kwExclusiveMinimum,
		kwMaxLength, kwMinLength, kwPattern,
		kwItemsLegacy, kwAdditionalItems, kwMaxItems, kwMinItems, kwUniqueItems, kwContains,
		kwMaxProperties, kwMinProperties, kwRequired, kwProperties, kwPatternProperties, kwAdditionalProperties, kwDependencies, kwPropertyNames,
		kwIf, kwThen, kwElse, kwAllOf, kwAnyOf, kwOneOf, kwNot,
		kwFormat,
		kwContentEncoding, kwContentMediaType,
		kwTitle, kwDescription, kwDefault, kwReadOnly, kwWriteOnly, kwExamples,
	)

	Draft201909.vocabularies = []*Vocabulary{
		{URI: Vocab201909Core, Keywords: []*Keyword{
			kwSchema, kwVocabulary, kwID, kwAnchor, kwRecursiveAnchor, kwRef, kwRecursiveRef, kwDefs, kwComment,
		}},
		{URI: Vocab201909Applicator, Keywords: []*Keyword{
			kwAllOf, kwAnyOf, kwOneOf, kwNot, kwIf, kwThen, kwElse, kwDependentSchemas,
			kwItemsLegacy, kwAdditionalItems, kwContains,
			kwProperties, kwPatternProperties, kwAdditionalProperties, kwPropertyNames,
			kwUnevaluatedItems, kwUnevaluatedProperties,
		}},
		{URI: Vocab201909Validation, Keywords: validationKeywords()},
		{URI: Vocab201909Format, Keywords: []*Keyword{kwFormat}},
		{URI: Vocab201909Content, Keywords: []*Keyword{kwContentEncoding, kwContentMediaType, kwContentSchema}},
		{URI: Vocab201909MetaData, Keywords: metaDataKeywords()},
	}
	Draft201909.defaults = defaultsOf(Vocab201909Core, Vocab201909Applicator, Vocab201909Validation,
		Vocab201909Format, Vocab201909Content, Vocab201909MetaData)

	Draft202012.vocabularies = []*Vocabulary{
		{URI: Vocab202012Core, Keywords: []*Keyword{
			kwSchema, kwVocabulary, kwID, kwAnchor, kwDynamicAnchor, kwRef, kwDynamicRef, kwDefs, kwComment,
		}},
		{URI: Vocab202012Applicator, Keywords: []*Keyword{
			kwAllOf, kwAnyOf, kwOneOf, kwNot, kwIf, kwThen, kwElse, kwDependentSchemas,
			kwPrefixItems, kwItems, kwContains,
			kwProperties, kwPatternProperties, kwAdditionalProperties, kwPropertyNames,
		}},
		{URI: Vocab202012Unevaluated, Keywords: []*Keyword{kwUnevaluatedItems, kwUnevaluatedProperties}},
		{URI: Vocab202012Validation, Keywords: validationKeywords()},
		{URI: Vocab202012FormatAnnotation, Keywords: []*Keyword{kwFormat}},
		{URI: Vocab202012FormatAssertion, Keywords: []*Keyword{kwFormatAssertion}},
		{URI: Vocab202012Content, Keywords: []*Keyword{kwContentEncoding, kwContentMediaType, kwContentSchema}},
		{URI: Vocab202012MetaData, Keywords: metaDataKeywords()},
	}
	Draft202012.defaults = defaultsOf(Vocab202012Core, Vocab202012Applicator, Vocab202012Unevaluated,
		Vocab202012Validation, Vocab202012FormatAnnotation, Vocab202012Content, Vocab202012MetaData)
}

func validationKeywords() []*Keyword {
	return []*Keyword{
		kwType, kwConst, kwEnum,
		kwMultipleOf, kwMaximum, kwExclusiveMaximum, kwMinimum, kwExclusiveMinimum,
		kwMaxLength, kwMinLength, kwPattern,
		kwMaxItems, kwMinItems, kwUniqueItems, kwMaxContains, kwMinContains,
		kwMaxProperties, kwMinProperties, kwRequired, kwDependentRequired,
	}
}

func metaDataKeywords() []*Keyword {
	return []*Keyword{kwTitle, kwDescription, kwDefault, kwDeprecated, kwReadOnly, kwWriteOnly, kwExamples}
}

// draftFor returns the draft whose meta-schema URI is uri.
func draftFor(uri string) *Draft {
	uri = strings.TrimSuffix(uri, "#")
	switch uri {
	case "http://json-schema.org/schema":
		return Draft202012
	case "https://json-schema.org/draft-04/schema":
		return Draft4
	case "https://json-schema.org/draft-06/schema":
		return Draft6
	case "https://json-schema.org/draft-07/schema":
		return Draft7
	}
	for _, d := range drafts {
		if d.URI == uri {
			return d
		}
	}
	return nil
}

// DraftByName accepts "4", "draft-04", "2020-12" and similar names.
func DraftByName(name string) *Draft {
	switch strings.TrimPrefix(strings.ToLower(name), "draft") {
	case "4", "-04", "04", "-4":
		return Draft4
	case "6", "-06", "06", "-6":
		return Draft6
	case "7", "-07", "07", "-7":
		return Draft7
	case "2019-09", "-2019-09", "2019":
		return Draft201909
	case "2020-12", "-2020-12", "2020":
		return Draft202012
	}
	return nil
}
