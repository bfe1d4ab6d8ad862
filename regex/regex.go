// Package regex provides the regular expression dialects used by the
// "pattern", "patternProperties" and "regex" format keywords.
package regex

import (
	"fmt"
	"regexp"
	"sync"
	"time"

	"github.com/dlclark/regexp2"
)

// Regexp is a compiled pattern.
type Regexp interface {
	MatchString(s string) bool
	String() string
}

// Compiler compiles a pattern in some dialect.
type Compiler func(pattern string) (Regexp, error)

// MatchTimeout bounds a single ECMA match.
var MatchTimeout = 2 * time.Second

var (
	nativePool sync.Map
	ecmaPool   sync.Map
)

// Native compiles pattern with Go's RE2 engine. The anchors ^ and $ match
// at line boundaries, so "^foo$" matches "bar\nfoo\nbar".
func Native(pattern string) (Regexp, error) {
	if re, ok := nativePool.Load(pattern); ok {
		return re.(*native), nil
	}
	re, err := regexp.Compile("(?m)" + pattern)
	if err != nil {
		return nil, err
	}
	n := &native{re: re, src: pattern}
	nativePool.Store(pattern, n)
	return n, nil
}

type native struct {
	re  *regexp.Regexp
	src string
}

func (n *native) MatchString(s string) bool { return n.re.MatchString(s) }
func (n *native) String() string            { return n.src }

// ECMA compiles pattern with ECMA-262 semantics: ^ and $ anchor to the whole
// input and lookarounds and backreferences are supported.
func ECMA(pattern string) (Regexp, error) {
	if re, ok := ecmaPool.Load(pattern); ok {
		return re.(*ecma), nil
	}
	re, err := regexp2.Compile(pattern, regexp2.ECMAScript)
	if err != nil {
		return nil, err
	}
	re.MatchTimeout = MatchTimeout
	e := &ecma{re: re}
	ecmaPool.Store(pattern, e)
	return e, nil
}

type ecma struct {
	re *regexp2.Regexp
}

// MatchString reports no match when the engine times out.
func (e *ecma) MatchString(s string) bool {
	ok, err := e.re.MatchString(s)
	return err == nil && ok
}

func (e *ecma) String() string { return e.re.String() }

// Lookup returns the compiler for a dialect name: "native" (alias "ruby")
// or "ecma".
func Lookup(name string) (Compiler, error) {
	switch name {
	case "", "native", "ruby":
		return Native, nil
	case "ecma", "ecmascript":
		return ECMA, nil
	}
	return nil, fmt.Errorf("unknown regexp dialect %q", name)
}
