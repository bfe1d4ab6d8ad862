package jsonmap

import (
	"fmt"
	"io"
	"math"
	"slices"
	"strconv"
	"sync"

	"github.com/goccy/go-json"
)

type encoder struct {
	buf []byte
}

func newEncoder() *encoder {
	const initialCapacity = 4096
	return &encoder{buf: make([]byte, 0, initialCapacity)}
}

func (e *encoder) reset() {
	e.buf = e.buf[:0]
}

func (e *encoder) writeByte(b byte) {
	e.buf = append(e.buf, b)
}

func (e *encoder) writeString(s string) {
	e.buf = append(e.buf, s...)
}

func (e *encoder) encode(v any) error {
	switch vv := v.(type) {
	case nil:
		e.writeString("null")
	case string:
		e.encodeString(vv)
	case bool:
		if vv {
			e.writeString("true")
		} else {
			e.writeString("false")
		}
	case int64:
		e.buf = strconv.AppendInt(e.buf, vv, 10)
	case int:
		e.buf = strconv.AppendInt(e.buf, int64(vv), 10)
	case float64:
		return e.encodeFloat(vv)
	case json.Number:
		e.writeString(string(vv))
	case *Object:
		return e.encodeObject(vv)
	case map[string]any:
		return e.encodeMap(vv)
	case []any:
		return e.encodeSlice(vv)
	default:
		if _, ok := Float(v); ok {
			return e.encodeNumber(v)
		}
		// Everything else goes through the general purpose codec.
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("unsupported type for marshal: %T: %w", v, err)
		}
		e.buf = append(e.buf, b...)
	}
	return nil
}

func (e *encoder) encodeNumber(v any) error {
	if IsInteger(v, true) {
		r, _ := Rat(v)
		e.writeString(r.Num().String())
		return nil
	}
	f, _ := Float(v)
	return e.encodeFloat(f)
}

func (e *encoder) encodeFloat(f float64) error {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("unsupported float value: %v", f)
	}
	abs := math.Abs(f)
	if abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		e.buf = strconv.AppendFloat(e.buf, f, 'e', -1, 64)
		return nil
	}
	e.buf = strconv.AppendFloat(e.buf, f, 'f', -1, 64)
	return nil
}

func (e *encoder) encodeKey(k string) {
	e.encodeString(k)
	e.writeByte(':')
}

func (e *encoder) encodeObject(o *Object) error {
	e.writeByte('{')
	first := true
	for k, val := range o.All() {
		if !first {
			e.writeByte(',')
		}
		first = false
		e.encodeKey(k)
		if err := e.encode(val); err != nil {
			return err
		}
	}
	e.writeByte('}')
	return nil
}

// encodeMap writes keys in sorted order so output is deterministic.
func (e *encoder) encodeMap(m map[string]any) error {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	e.writeByte('{')
	for i, k := range keys {
		if i > 0 {
			e.writeByte(',')
		}
		e.encodeKey(k)
		if err := e.encode(m[k]); err != nil {
			return err
		}
	}
	e.writeByte('}')
	return nil
}

func (e *encoder) encodeSlice(s []any) error {
	e.writeByte('[')
	for i, val := range s {
		if i > 0 {
			e.writeByte(',')
		}
		if err := e.encode(val); err != nil {
			return err
		}
	}
	e.writeByte(']')
	return nil
}

func (e *encoder) encodeString(s string) {
	const hex = "0123456789abcdef"
	e.writeByte('"')
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' && c != '"' && c >= 0x20 {
			continue
		}
		e.writeString(s[start:i])
		switch c {
		case '\\', '"':
			e.writeByte('\\')
			e.writeByte(c)
		case '\n':
			e.writeString(`\n`)
		case '\r':
			e.writeString(`\r`)
		case '\t':
			e.writeString(`\t`)
		default:
			e.writeString(`\u00`)
			e.writeByte(hex[c>>4])
			e.writeByte(hex[c&0xF])
		}
		start = i + 1
	}
	e.writeString(s[start:])
	e.writeByte('"')
}

var encoderPool = sync.Pool{
	New: func() any { return newEncoder() },
}

// Marshal encodes v as compact JSON. Objects keep their member order.
func Marshal(v any) ([]byte, error) {
	enc := encoderPool.Get().(*encoder)
	defer encoderPool.Put(enc)
	enc.reset()
	if err := enc.encode(v); err != nil {
		return nil, err
	}
	ret := make([]byte, len(enc.buf))
	copy(ret, enc.buf)
	return ret, nil
}

// Encoder writes one JSON document per line.
type Encoder struct {
	w   io.Writer
	enc *encoder
}

func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{
		w:   w,
		enc: newEncoder(),
	}
}

func (e *Encoder) Encode(v any) error {
	e.enc.reset()
	if err := e.enc.encode(v); err != nil {
		return err
	}
	e.enc.writeByte('\n')
	_, err := e.w.Write(e.enc.buf)
	return err
}
