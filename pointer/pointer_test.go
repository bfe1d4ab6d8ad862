package pointer

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestJoinAndParse(t *testing.T) {
	ptr := Join("", "a/b", "c~d", "")
	if want := "/a~1b/c~0d/"; ptr != want {
		t.Fatalf("Join = %q, want %q", ptr, want)
	}
	tokens, err := Parse(ptr)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"a/b", "c~d", ""}, tokens); diff != "" {
		t.Errorf("Parse mismatch (-want +got):\n%s", diff)
	}
}

func TestParseFragment(t *testing.T) {
	tokens, err := Parse("#/definitions/a%20b")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"definitions", "a b"}, tokens); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
	if _, err := Parse("definitions"); err == nil {
		t.Error("expected error for pointer without leading slash")
	}
}

func TestIndex(t *testing.T) {
	for token, want := range map[string]bool{"0": true, "12": true, "01": false, "-1": false, "": false, "a": false} {
		if _, ok := Index(token); ok != want {
			t.Errorf("Index(%q) ok = %v, want %v", token, ok, want)
		}
	}
}

func TestFormat(t *testing.T) {
	if got := Format(""); got != "root" {
		t.Errorf("got %q", got)
	}
	if got := Format("/a/0"); got != "`/a/0`" {
		t.Errorf("got %q", got)
	}
}
