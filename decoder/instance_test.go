package decoder

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestAll(t *testing.T) {
	var docs []any
	for doc, err := range All(strings.NewReader("{\"a\": 1}\n[true]\n\"x\" 2.5")) {
		if err != nil {
			t.Fatal(err)
		}
		docs = append(docs, doc)
	}
	want := []any{map[string]any{"a": json.Number("1")}, []any{true}, "x", json.Number("2.5")}
	if diff := cmp.Diff(want, docs); diff != "" {
		t.Errorf("documents mismatch (-want +got):\n%s", diff)
	}
}

func TestAllStopsAtError(t *testing.T) {
	n := 0
	var last error
	for _, err := range All(strings.NewReader(`{"a": 1} {"a": `)) {
		n++
		last = err
	}
	if n != 2 || last == nil || !strings.Contains(last.Error(), "document 1") {
		t.Errorf("got %d items, last error %v", n, last)
	}
}
