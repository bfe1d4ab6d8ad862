// Package metaschema embeds the official meta-schemas for drafts 4 through
// 2020-12 so they resolve without network access.
package metaschema

import (
	"embed"
	"strings"
)

//go:embed *.json draft2019-09 draft2020-12
var files embed.FS

var paths = map[string]string{
	"http://json-schema.org/draft-04/schema":                       "draft4.json",
	"http://json-schema.org/draft-06/schema":                       "draft6.json",
	"http://json-schema.org/draft-07/schema":                       "draft7.json",
	"https://json-schema.org/draft/2019-09/schema":                 "draft2019-09/schema.json",
	"https://json-schema.org/draft/2019-09/meta/core":              "draft2019-09/meta/core.json",
	"https://json-schema.org/draft/2019-09/meta/applicator":        "draft2019-09/meta/applicator.json",
	"https://json-schema.org/draft/2019-09/meta/validation":        "draft2019-09/meta/validation.json",
	"https://json-schema.org/draft/2019-09/meta/meta-data":         "draft2019-09/meta/meta-data.json",
	"https://json-schema.org/draft/2019-09/meta/format":            "draft2019-09/meta/format.json",
	"https://json-schema.org/draft/2019-09/meta/content":           "draft2019-09/meta/content.json",
	"https://json-schema.org/draft/2020-12/schema":                 "draft2020-12/schema.json",
	"https://json-schema.org/draft/2020-12/meta/core":              "draft2020-12/meta/core.json",
	"https://json-schema.org/draft/2020-12/meta/applicator":        "draft2020-12/meta/applicator.json",
	"https://json-schema.org/draft/2020-12/meta/unevaluated":       "draft2020-12/meta/unevaluated.json",
	"https://json-schema.org/draft/2020-12/meta/validation":        "draft2020-12/meta/validation.json",
	"https://json-schema.org/draft/2020-12/meta/meta-data":         "draft2020-12/meta/meta-data.json",
	"https://json-schema.org/draft/2020-12/meta/format-annotation": "draft2020-12/meta/format-annotation.json",
	"https://json-schema.org/draft/2020-12/meta/format-assertion":  "draft2020-12/meta/format-assertion.json",
	"https://json-schema.org/draft/2020-12/meta/content":           "draft2020-12/meta/content.json",
}

// Load returns the raw document for a meta-schema URI. A trailing "#" or
// empty fragment is ignored.
func Load(uri string) ([]byte, bool) {
	p, ok := paths[strings.TrimSuffix(uri, "#")]
	if !ok {
		return nil, false
	}
	data, err := files.ReadFile(p)
	if err != nil {
		return nil, false
	}
	return data, true
}

// URIs lists every embedded meta-schema URI.
func URIs() []string {
	out := make([]string, 0, len(paths))
	for u := range paths {
		out = append(out, u)
	}
	return out
}
