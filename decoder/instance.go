// Package decoder creates the stream decoders used to read a sequence of
// JSON documents, such as JSON lines.
package decoder

import (
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/goccy/go-json"
)

type IDecoder interface {
	Decode(any) error
}

type Factory func(io.Reader) IDecoder

var decoderFactory Factory

// The default decoder keeps numbers as json.Number so that integers and
// decimals survive exactly.
func init() {
	decoderFactory = func(r io.Reader) IDecoder {
		d := json.NewDecoder(r)
		d.UseNumber()
		return d
	}
}

// SetDecoder allows you to set a custom decoder factory.
func SetDecoder(factory Factory) {
	decoderFactory = factory
}

// NewDecoder creates a new decoder using the currently set decoder factory.
func NewDecoder(r io.Reader) IDecoder {
	return decoderFactory(r)
}

func Instance() Factory {
	return decoderFactory
}

// All yields the documents of r in order. Iteration stops after the
// first error, which is yielded with the index of the failing document.
func All(r io.Reader) iter.Seq2[any, error] {
	return func(yield func(any, error) bool) {
		dec := NewDecoder(r)
		for i := 0; ; i++ {
			var doc any
			err := dec.Decode(&doc)
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(nil, fmt.Errorf("document %d: %w", i, err))
				return
			}
			if !yield(doc, nil) {
				return
			}
		}
	}
}
