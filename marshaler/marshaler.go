// Package marshaler holds the process-wide JSON marshal function. The
// default keeps the member order of decoded objects.
package marshaler

import (
	"github.com/oarkflow/jsonschema/jsonmap"
)

type Marshaler func(any) ([]byte, error)

var (
	marshaler Marshaler
)

func init() {
	marshaler = jsonmap.Marshal
}

func SetMarshaler(m Marshaler) {
	marshaler = m
}

func Instance() Marshaler {
	return marshaler
}
