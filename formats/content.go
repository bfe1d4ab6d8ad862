package formats

import (
	"encoding/base32"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"maps"
	"mime"
	"strings"

	"github.com/oarkflow/jsonschema/jsonmap"
)

var (
	ErrUnknownEncoding  = errors.New("unknown content encoding")
	ErrUnknownMediaType = errors.New("unknown content media type")
)

// Decoder decodes a "contentEncoding" string.
type Decoder func(value string) ([]byte, error)

// Encodings maps encoding names to decoders.
type Encodings map[string]Decoder

// MediaType parses decoded content. The returned value is what
// "contentSchema" is applied to.
type MediaType func(data []byte) (any, error)

// MediaTypes maps media types, without parameters, to parsers.
type MediaTypes map[string]MediaType

var defaultEncodings = Encodings{
	"base64":    base64.StdEncoding.DecodeString,
	"base64url": base64.URLEncoding.DecodeString,
	"base32":    base32.StdEncoding.DecodeString,
	"base16":    hex.DecodeString,
	"7bit":      identity,
	"8bit":      identity,
	"binary":    identity,
}

var defaultMediaTypes = MediaTypes{
	"application/json": jsonmap.Decode,
	"text/plain": func(data []byte) (any, error) {
		return string(data), nil
	},
}

func identity(value string) ([]byte, error) { return []byte(value), nil }

func DefaultEncodings() Encodings { return maps.Clone(defaultEncodings) }

func DefaultMediaTypes() MediaTypes { return maps.Clone(defaultMediaTypes) }

// Decode applies the named encoding.
func (e Encodings) Decode(name, value string) ([]byte, error) {
	d, ok := e[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
	}
	return d(value)
}

// Known reports whether an encoding is registered.
func (e Encodings) Known(name string) bool {
	_, ok := e[strings.ToLower(name)]
	return ok
}

// Parse applies the parser registered for the media type, ignoring parameters
// such as charset.
func (m MediaTypes) Parse(mediaType string, data []byte) (any, error) {
	p, ok := m.lookup(mediaType)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMediaType, mediaType)
	}
	return p(data)
}

func (m MediaTypes) Known(mediaType string) bool {
	_, ok := m.lookup(mediaType)
	return ok
}

func (m MediaTypes) lookup(mediaType string) (MediaType, bool) {
	mt, _, err := mime.ParseMediaType(mediaType)
	if err != nil {
		mt = strings.ToLower(strings.TrimSpace(mediaType))
	}
	p, ok := m[mt]
	return p, ok
}
