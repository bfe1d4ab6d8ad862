// Package pointer builds and parses RFC 6901 JSON pointers and their
// URI fragment form.
package pointer

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/qri-io/jsonpointer"
)

var escaper = strings.NewReplacer("~", "~0", "/", "~1")

// Escape encodes a single reference token.
func Escape(token string) string {
	return escaper.Replace(token)
}

// Join appends escaped tokens to ptr.
func Join(ptr string, tokens ...string) string {
	if len(tokens) == 0 {
		return ptr
	}
	var sb strings.Builder
	sb.Grow(len(ptr) + 8*len(tokens))
	sb.WriteString(ptr)
	for _, t := range tokens {
		sb.WriteByte('/')
		sb.WriteString(Escape(t))
	}
	return sb.String()
}

// JoinIndex appends an array index to ptr.
func JoinIndex(ptr string, i int) string {
	return ptr + "/" + strconv.Itoa(i)
}

// Parse splits a JSON pointer into unescaped tokens. A leading '#' is
// treated as a URI fragment and percent-decoded first.
func Parse(ptr string) ([]string, error) {
	if strings.HasPrefix(ptr, "#") {
		decoded, err := url.PathUnescape(ptr[1:])
		if err != nil {
			return nil, err
		}
		ptr = decoded
	}
	if ptr != "" && ptr[0] != '/' {
		return nil, fmt.Errorf("invalid JSON pointer %q: non-empty pointers must begin with '/'", ptr)
	}
	p, err := jsonpointer.Parse(ptr)
	if err != nil {
		return nil, err
	}
	return []string(p), nil
}

// Fragment renders ptr as a percent-encoded URI fragment, without the '#'.
func Fragment(ptr string) string {
	return (&url.URL{Fragment: ptr}).EscapedFragment()
}

// Index parses an array index token. Leading zeros and signs are rejected.
func Index(token string) (int, bool) {
	if token == "" || (len(token) > 1 && token[0] == '0') {
		return 0, false
	}
	for i := 0; i < len(token); i++ {
		if token[i] < '0' || token[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(token)
	return n, err == nil
}

// Format renders an instance location for messages: "root" for the empty
// pointer, the pointer in backticks otherwise.
func Format(ptr string) string {
	if ptr == "" {
		return "root"
	}
	return "`" + ptr + "`"
}
