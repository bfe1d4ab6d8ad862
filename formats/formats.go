// Package formats holds the checkers for the "format" keyword and the
// decoders for "contentEncoding" and "contentMediaType".
package formats

import (
	"errors"
	"fmt"
	"maps"
	"net/mail"
	"net/netip"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/oarkflow/date"
	"golang.org/x/net/idna"

	"github.com/oarkflow/jsonschema/regex"
)

// ErrUnknownFormat is returned for a format name with no registered checker.
var ErrUnknownFormat = errors.New("unknown format")

// Checker validates a string against a format. A nil Checker disables the format.
type Checker func(value string) error

// Registry maps format names to checkers.
type Registry map[string]Checker

var defaultRegistry = Registry{
	"date-time":             checkDateTime,
	"date":                  checkDate,
	"time":                  checkTime,
	"duration":              checkDuration,
	"email":                 checkEmail,
	"idn-email":             checkEmail,
	"hostname":              checkHostname,
	"idn-hostname":          checkIDNHostname,
	"ipv4":                  checkIPv4,
	"ipv6":                  checkIPv6,
	"uri":                   checkURI,
	"uri-reference":         checkURIReference,
	"iri":                   checkIRI,
	"iri-reference":         checkIRIReference,
	"uri-template":          checkURITemplate,
	"uuid":                  checkUUID,
	"json-pointer":          checkJSONPointer,
	"relative-json-pointer": checkRelativeJSONPointer,
	"regex":                 checkRegex,
}

// Default returns a copy of the built-in registry.
func Default() Registry {
	return maps.Clone(defaultRegistry)
}

// Lenient returns the built-in registry with "date" and "date-time"
// accepting any layout understood by github.com/oarkflow/date.
func Lenient() Registry {
	r := Default()
	lenient := func(value string) error {
		if _, err := date.Parse(value); err != nil {
			return fmt.Errorf("invalid date: %v", err)
		}
		return nil
	}
	r["date"] = lenient
	r["date-time"] = lenient
	return r
}

// With returns a copy of r with name bound to c.
func (r Registry) With(name string, c Checker) Registry {
	out := maps.Clone(r)
	if out == nil {
		out = Registry{}
	}
	out[name] = c
	return out
}

// Check reports whether value conforms to the named format.
func (r Registry) Check(name, value string) (bool, error) {
	c, ok := r[name]
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
	if c == nil {
		return true, nil
	}
	return c(value) == nil, nil
}

// Known reports whether name has an entry (possibly disabled) in r.
func (r Registry) Known(name string) bool {
	_, ok := r[name]
	return ok
}

var (
	dateRe     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timeRe     = regexp.MustCompile(`^(\d{2}):(\d{2}):(\d{2})(\.\d+)?([zZ]|([+-])(\d{2}):(\d{2}))$`)
	durationRe = regexp.MustCompile(`^P(?:\d+W|(?:\d+Y(?:\d+M)?(?:\d+D)?|\d+M(?:\d+D)?|\d+D)(?:T(?:\d+H(?:\d+M)?(?:\d+S)?|\d+M(?:\d+S)?|\d+S))?|T(?:\d+H(?:\d+M)?(?:\d+S)?|\d+M(?:\d+S)?|\d+S))$`)
	labelRe    = regexp.MustCompile(`^[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?$`)
	relPtrRe   = regexp.MustCompile(`^(?:0|[1-9][0-9]*)(?:#|(?:/(?:[^~]|~[01])*)*)$`)
	templateRe = regexp.MustCompile(`^[+#./;?&=,!@|]?[A-Za-z0-9_%.]+(?::[1-9][0-9]{0,3}|\*)?(?:,[A-Za-z0-9_%.]+(?::[1-9][0-9]{0,3}|\*)?)*$`)
)

func checkDate(value string) error {
	if !dateRe.MatchString(value) {
		return errors.New("invalid date")
	}
	if _, err := time.Parse(time.DateOnly, value); err != nil {
		return fmt.Errorf("invalid date: %v", err)
	}
	return nil
}

func checkTime(value string) error {
	m := timeRe.FindStringSubmatch(value)
	if m == nil {
		return errors.New("invalid time")
	}
	h, _ := strconv.Atoi(m[1])
	mi, _ := strconv.Atoi(m[2])
	s, _ := strconv.Atoi(m[3])
	if h > 23 || mi > 59 || s > 60 {
		return errors.New("invalid time: out of range")
	}
	offset := 0
	if m[6] != "" {
		oh, _ := strconv.Atoi(m[7])
		om, _ := strconv.Atoi(m[8])
		if oh > 23 || om > 59 {
			return errors.New("invalid time: bad offset")
		}
		offset = oh*60 + om
		if m[6] == "-" {
			offset = -offset
		}
	}
	if s == 60 {
		// leap seconds only exist at 23:59 UTC
		utc := ((h*60+mi-offset)%1440 + 1440) % 1440
		if utc != 23*60+59 {
			return errors.New("invalid time: leap second not at 23:59 UTC")
		}
	}
	return nil
}

func checkDateTime(value string) error {
	i := strings.IndexAny(value, "tT")
	if i < 0 {
		return errors.New("invalid date-time: missing T separator")
	}
	if err := checkDate(value[:i]); err != nil {
		return err
	}
	return checkTime(value[i+1:])
}

func checkDuration(value string) error {
	if !durationRe.MatchString(value) {
		return errors.New("invalid duration")
	}
	return nil
}

func checkEmail(value string) error {
	addr, err := mail.ParseAddress(value)
	if err != nil {
		return fmt.Errorf("invalid email: %v", err)
	}
	if addr.Address != value || addr.Name != "" {
		return errors.New("invalid email: display names are not allowed")
	}
	return nil
}

func checkHostname(value string) error {
	value = strings.TrimSuffix(value, ".")
	if len(value) == 0 || len(value) > 253 {
		return errors.New("invalid hostname length")
	}
	for _, label := range strings.Split(value, ".") {
		if !labelRe.MatchString(label) {
			return fmt.Errorf("invalid hostname label %q", label)
		}
		if strings.HasPrefix(strings.ToLower(label), "xn--") {
			if _, err := idna.Punycode.ToUnicode(label); err != nil {
				return fmt.Errorf("invalid punycode label %q: %v", label, err)
			}
		}
	}
	return nil
}

func checkIDNHostname(value string) error {
	ascii, err := idna.Lookup.ToASCII(value)
	if err != nil {
		return fmt.Errorf("invalid idn-hostname: %v", err)
	}
	return checkHostname(ascii)
}

func checkIPv4(value string) error {
	addr, err := netip.ParseAddr(value)
	if err != nil || !addr.Is4() {
		return errors.New("invalid IPv4 address")
	}
	return nil
}

func checkIPv6(value string) error {
	addr, err := netip.ParseAddr(value)
	if err != nil || !addr.Is6() || addr.Zone() != "" {
		return errors.New("invalid IPv6 address")
	}
	return nil
}

func hasInvalidURIChars(value string, allowUnicode bool) bool {
	for _, r := range value {
		if r > unicode.MaxASCII {
			if !allowUnicode {
				return true
			}
			continue
		}
		if r <= ' ' || strings.ContainsRune(`"<>\^{|}`+"`", r) {
			return true
		}
	}
	return false
}

func checkURI(value string) error {
	if hasInvalidURIChars(value, false) {
		return errors.New("invalid URI: illegal character")
	}
	u, err := url.Parse(value)
	if err != nil || u.Scheme == "" {
		return errors.New("invalid URI")
	}
	return nil
}

func checkURIReference(value string) error {
	if hasInvalidURIChars(value, false) {
		return errors.New("invalid URI reference: illegal character")
	}
	if _, err := url.Parse(value); err != nil {
		return fmt.Errorf("invalid URI reference: %v", err)
	}
	return nil
}

func checkIRI(value string) error {
	if hasInvalidURIChars(value, true) {
		return errors.New("invalid IRI: illegal character")
	}
	u, err := url.Parse(value)
	if err != nil || u.Scheme == "" {
		return errors.New("invalid IRI")
	}
	return nil
}

func checkIRIReference(value string) error {
	if hasInvalidURIChars(value, true) {
		return errors.New("invalid IRI reference: illegal character")
	}
	if _, err := url.Parse(value); err != nil {
		return fmt.Errorf("invalid IRI reference: %v", err)
	}
	return nil
}

func checkURITemplate(value string) error {
	rest := value
	for {
		open := strings.IndexByte(rest, '{')
		closing := strings.IndexByte(rest, '}')
		if open < 0 {
			if closing >= 0 {
				return errors.New("invalid URI template: unbalanced '}'")
			}
			return nil
		}
		if closing < open {
			return errors.New("invalid URI template: unbalanced braces")
		}
		if !templateRe.MatchString(rest[open+1 : closing]) {
			return fmt.Errorf("invalid URI template expression %q", rest[open:closing+1])
		}
		rest = rest[closing+1:]
	}
}

func checkUUID(value string) error {
	if len(value) != 36 {
		return errors.New("invalid UUID")
	}
	if _, err := uuid.Parse(value); err != nil {
		return fmt.Errorf("invalid UUID: %v", err)
	}
	return nil
}

func checkJSONPointer(value string) error {
	if value != "" && !strings.HasPrefix(value, "/") {
		return errors.New("invalid JSON pointer")
	}
	for i := 0; i < len(value); i++ {
		if value[i] == '~' && (i+1 == len(value) || (value[i+1] != '0' && value[i+1] != '1')) {
			return errors.New("invalid JSON pointer: bad escape")
		}
	}
	return nil
}

func checkRelativeJSONPointer(value string) error {
	if !relPtrRe.MatchString(value) {
		return errors.New("invalid relative JSON pointer")
	}
	return nil
}

func checkRegex(value string) error {
	if _, err := regex.ECMA(value); err != nil {
		return fmt.Errorf("invalid regex: %v", err)
	}
	return nil
}
