// Package unmarshaler holds the process-wide JSON unmarshal function.
package unmarshaler

import (
	"github.com/oarkflow/jsonschema/jsonmap"
)

type Unmarshaler func([]byte, any) error

var (
	unmarshaler Unmarshaler
)

func init() {
	unmarshaler = jsonmap.Unmarshal
}

func SetUnmarshaler(m Unmarshaler) {
	unmarshaler = m
}

func Instance() Unmarshaler {
	return unmarshaler
}
