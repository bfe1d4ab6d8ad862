// Package encoder creates the stream encoders used to print documents
// and output units.
package encoder

import (
	"bytes"
	"io"

	"github.com/goccy/go-json"

	"github.com/oarkflow/jsonschema/jsonmap"
)

type IEncoder interface {
	Encode(any) error
}

type Factory func(io.Writer) IEncoder

var encoderFactory Factory

// The default encoder writes one compact, order preserving document per line.
func init() {
	encoderFactory = func(w io.Writer) IEncoder {
		return jsonmap.NewEncoder(w)
	}
}

// SetEncoder allows you to set a custom encoder factory.
func SetEncoder(factory Factory) {
	encoderFactory = factory
}

// NewEncoder creates a new encoder using the currently set encoder factory.
func NewEncoder(w io.Writer) IEncoder {
	return encoderFactory(w)
}

func Instance() Factory {
	return encoderFactory
}

type indentEncoder struct {
	w      io.Writer
	indent string
	buf    bytes.Buffer
}

// Indented returns an encoder that writes each document over several
// lines, indenting nested values by indent. Member order is kept.
func Indented(w io.Writer, indent string) IEncoder {
	return &indentEncoder{w: w, indent: indent}
}

func (e *indentEncoder) Encode(v any) error {
	data, err := jsonmap.Marshal(v)
	if err != nil {
		return err
	}
	e.buf.Reset()
	if err := json.Indent(&e.buf, data, "", e.indent); err != nil {
		return err
	}
	e.buf.WriteByte('\n')
	_, err = e.w.Write(e.buf.Bytes())
	return err
}
