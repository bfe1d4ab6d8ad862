package jsonmap

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"unicode/utf16"
	"unicode/utf8"
)

// SyntaxError reports malformed JSON input.
type SyntaxError struct {
	Msg    string
	Offset int
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("jsonmap: %s at offset %d", e.Msg, e.Offset)
}

// ----------------------
// JSON Decoder
// ----------------------

type decoder struct {
	data []byte
	pos  int
	len  int
}

func newDecoder(data []byte) *decoder {
	return &decoder{data: data, pos: 0, len: len(data)}
}

func (d *decoder) errorf(format string, args ...any) error {
	return &SyntaxError{Msg: fmt.Sprintf(format, args...), Offset: d.pos}
}

func (d *decoder) skipWhitespace() {
	for d.pos < d.len {
		switch d.data[d.pos] {
		case ' ', '\n', '\r', '\t':
			d.pos++
		default:
			return
		}
	}
}

func (d *decoder) decodeValue() (any, error) {
	d.skipWhitespace()
	if d.pos >= d.len {
		return nil, d.errorf("unexpected end of input")
	}
	switch d.data[d.pos] {
	case '"':
		return d.decodeString()
	case '{':
		return d.decodeObject()
	case '[':
		return d.decodeArray()
	case 't', 'f':
		return d.decodeBool()
	case 'n':
		return d.decodeNull()
	default:
		return d.decodeNumber()
	}
}

func (d *decoder) decodeObject() (*Object, error) {
	obj := NewObject()
	d.pos++ // skip '{'
	d.skipWhitespace()
	if d.pos < d.len && d.data[d.pos] == '}' {
		d.pos++
		return obj, nil
	}
	for {
		d.skipWhitespace()
		if d.pos >= d.len || d.data[d.pos] != '"' {
			return nil, d.errorf("expected string key")
		}
		key, err := d.decodeString()
		if err != nil {
			return nil, err
		}
		d.skipWhitespace()
		if d.pos >= d.len || d.data[d.pos] != ':' {
			return nil, d.errorf("expected ':' after key")
		}
		d.pos++ // skip ':'
		val, err := d.decodeValue()
		if err != nil {
			return nil, err
		}
		obj.Set(key, val)
		d.skipWhitespace()
		if d.pos >= d.len {
			return nil, d.errorf("unexpected end of object")
		}
		switch d.data[d.pos] {
		case ',':
			d.pos++
		case '}':
			d.pos++
			return obj, nil
		default:
			return nil, d.errorf("expected ',' or '}' in object")
		}
	}
}

func (d *decoder) decodeArray() ([]any, error) {
	arr := make([]any, 0)
	d.pos++ // skip '['
	d.skipWhitespace()
	if d.pos < d.len && d.data[d.pos] == ']' {
		d.pos++
		return arr, nil
	}
	for {
		val, err := d.decodeValue()
		if err != nil {
			return nil, err
		}
		arr = append(arr, val)
		d.skipWhitespace()
		if d.pos >= d.len {
			return nil, d.errorf("unexpected end of array")
		}
		switch d.data[d.pos] {
		case ',':
			d.pos++
		case ']':
			d.pos++
			return arr, nil
		default:
			return nil, d.errorf("expected ',' or ']' in array")
		}
	}
}

func (d *decoder) decodeString() (string, error) {
	// Consume opening quote.
	d.pos++
	start := d.pos
	for d.pos < d.len {
		c := d.data[d.pos]
		if c == '"' {
			// Fast path: no escapes.
			s := string(d.data[start:d.pos])
			d.pos++
			return s, nil
		}
		if c == '\\' {
			return d.decodeStringEscaped(start)
		}
		if c < 0x20 {
			return "", d.errorf("invalid control character in string")
		}
		d.pos++
	}
	return "", d.errorf("unterminated string")
}

func (d *decoder) decodeStringEscaped(start int) (string, error) {
	buf := make([]byte, 0, d.pos-start+16)
	buf = append(buf, d.data[start:d.pos]...)
	for d.pos < d.len {
		c := d.data[d.pos]
		if c == '"' {
			d.pos++
			return string(buf), nil
		}
		if c != '\\' {
			if c < 0x20 {
				return "", d.errorf("invalid control character in string")
			}
			buf = append(buf, c)
			d.pos++
			continue
		}
		d.pos++
		if d.pos >= d.len {
			return "", d.errorf("unexpected end after escape")
		}
		switch esc := d.data[d.pos]; esc {
		case '"', '\\', '/':
			buf = append(buf, esc)
		case 'b':
			buf = append(buf, '\b')
		case 'f':
			buf = append(buf, '\f')
		case 'n':
			buf = append(buf, '\n')
		case 'r':
			buf = append(buf, '\r')
		case 't':
			buf = append(buf, '\t')
		case 'u':
			r, err := d.decodeHexRune()
			if err != nil {
				return "", err
			}
			if utf16.IsSurrogate(r) {
				// a high surrogate must be followed by an escaped low surrogate
				if d.pos+2 < d.len && d.data[d.pos+1] == '\\' && d.data[d.pos+2] == 'u' {
					d.pos += 2
					r2, err := d.decodeHexRune()
					if err != nil {
						return "", err
					}
					r = utf16.DecodeRune(r, r2)
				} else {
					r = utf8.RuneError
				}
			}
			buf = utf8.AppendRune(buf, r)
		default:
			return "", d.errorf("invalid escape character %q", esc)
		}
		d.pos++
	}
	return "", d.errorf("unterminated string")
}

// decodeHexRune reads the four hex digits following "\u"; d.pos is left on the last digit.
func (d *decoder) decodeHexRune() (rune, error) {
	if d.pos+4 >= d.len {
		return 0, d.errorf("incomplete unicode escape")
	}
	v, err := strconv.ParseUint(string(d.data[d.pos+1:d.pos+5]), 16, 16)
	if err != nil {
		return 0, d.errorf("invalid unicode escape")
	}
	d.pos += 4
	return rune(v), nil
}

// decodeNumber returns int64 for integer literals that fit, float64 otherwise.
func (d *decoder) decodeNumber() (any, error) {
	start := d.pos
	isFloat := false
	if d.pos < d.len && d.data[d.pos] == '-' {
		d.pos++
	}
	digits := d.pos
scan:
	for d.pos < d.len {
		c := d.data[d.pos]
		switch {
		case c >= '0' && c <= '9':
		case c == '.' || c == 'e' || c == 'E' || c == '+' || c == '-':
			isFloat = true
		default:
			break scan
		}
		d.pos++
	}
	if d.pos == digits {
		d.pos = start
		return nil, d.errorf("invalid character %q looking for value", d.data[start])
	}
	if d.data[digits] == '0' && d.pos > digits+1 && d.data[digits+1] >= '0' && d.data[digits+1] <= '9' {
		return nil, d.errorf("leading zero in number")
	}
	numStr := string(d.data[start:d.pos])
	if !isFloat {
		if n, err := strconv.ParseInt(numStr, 10, 64); err == nil {
			return n, nil
		}
	}
	f, err := strconv.ParseFloat(numStr, 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && numErr.Err == strconv.ErrRange {
			return f, nil
		}
		return nil, d.errorf("invalid number %q", numStr)
	}
	return f, nil
}

func (d *decoder) decodeBool() (bool, error) {
	if d.pos+4 <= d.len && string(d.data[d.pos:d.pos+4]) == "true" {
		d.pos += 4
		return true, nil
	}
	if d.pos+5 <= d.len && string(d.data[d.pos:d.pos+5]) == "false" {
		d.pos += 5
		return false, nil
	}
	return false, d.errorf("invalid boolean literal")
}

func (d *decoder) decodeNull() (any, error) {
	if d.pos+4 <= d.len && string(d.data[d.pos:d.pos+4]) == "null" {
		d.pos += 4
		return nil, nil
	}
	return nil, d.errorf("invalid null literal")
}

// Decode parses exactly one JSON document into the value model: nil, bool,
// int64, float64, string, []any and *Object.
func Decode(data []byte) (any, error) {
	d := newDecoder(data)
	v, err := d.decodeValue()
	if err != nil {
		return nil, err
	}
	d.skipWhitespace()
	if d.pos != d.len {
		return nil, d.errorf("invalid character %q after top-level value", d.data[d.pos])
	}
	return v, nil
}

// ----------------------
// Caching of Struct Field Metadata
// ----------------------

type fieldInfo struct {
	index []int  // Field index chain (for nested fields)
	name  string // JSON key name to match
}

var structCache sync.Map // map[reflect.Type][]fieldInfo

func getStructFields(t reflect.Type) []fieldInfo {
	if cached, ok := structCache.Load(t); ok {
		return cached.([]fieldInfo)
	}
	var fields []fieldInfo
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.PkgPath != "" {
			continue
		}
		key := field.Name
		if tag := field.Tag.Get("json"); tag != "" {
			name, _, _ := strings.Cut(tag, ",")
			if name == "-" {
				continue
			}
			if name != "" {
				key = name
			}
		}
		fields = append(fields, fieldInfo{index: field.Index, name: key})
	}
	structCache.Store(t, fields)
	return fields
}

// ----------------------
// Unmarshal Implementation
// ----------------------

// Unmarshal decodes JSON data into v. Besides *any it supports basic
// types, maps, slices and structs (using reflection and caching).
func Unmarshal(data []byte, v any) error {
	if v == nil {
		return errors.New("jsonmap: nil target provided")
	}
	raw, err := Decode(data)
	if err != nil {
		return err
	}
	switch target := v.(type) {
	case *any:
		*target = raw
		return nil
	case **Object:
		obj, ok := raw.(*Object)
		if !ok {
			return fmt.Errorf("jsonmap: expected object, got %s", TypeName(raw))
		}
		*target = obj
		return nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return errors.New("jsonmap: target must be a non-nil pointer")
	}
	return assignValue(rv.Elem(), raw)
}

// decodeStruct uses reflection (with cached metadata) to assign values from the decoded object.
func decodeStruct(v reflect.Value, data *Object) error {
	fields := getStructFields(v.Type())
	for _, info := range fields {
		raw, exists := data.Get(info.name)
		if !exists {
			continue
		}
		fv := v.FieldByIndex(info.index)
		if !fv.CanSet() {
			continue
		}
		if err := assignValue(fv, raw); err != nil {
			return fmt.Errorf("field %q: %w", info.name, err)
		}
	}
	return nil
}

// assignValue converts and assigns the raw value to the field.
func assignValue(fv reflect.Value, raw any) error {
	if raw == nil {
		fv.Set(reflect.Zero(fv.Type()))
		return nil
	}

	switch fv.Kind() {
	case reflect.String:
		s, ok := raw.(string)
		if !ok {
			return fmt.Errorf("expected string, got %T", raw)
		}
		fv.SetString(s)
	case reflect.Float32, reflect.Float64:
		n, ok := Float(raw)
		if !ok {
			return fmt.Errorf("expected number, got %T", raw)
		}
		fv.SetFloat(n)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if !IsInteger(raw, false) {
			return fmt.Errorf("expected integer, got %v", raw)
		}
		n, _ := Float(raw)
		fv.SetInt(int64(n))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, ok := Float(raw)
		if !ok || n < 0 || !IsInteger(raw, false) {
			return fmt.Errorf("expected unsigned integer, got %v", raw)
		}
		fv.SetUint(uint64(n))
	case reflect.Bool:
		b, ok := raw.(bool)
		if !ok {
			return fmt.Errorf("expected bool, got %T", raw)
		}
		fv.SetBool(b)
	case reflect.Struct:
		m, ok := raw.(*Object)
		if !ok {
			return fmt.Errorf("expected object for struct, got %T", raw)
		}
		return decodeStruct(fv, m)
	case reflect.Map:
		m, ok := raw.(*Object)
		if !ok {
			return fmt.Errorf("expected object for map, got %T", raw)
		}
		if fv.Type().Key().Kind() != reflect.String {
			return &KeyTypeError{Key: fv.Type().Key().String()}
		}
		out := reflect.MakeMapWithSize(fv.Type(), m.Len())
		for k, val := range m.All() {
			elem := reflect.New(fv.Type().Elem()).Elem()
			if err := assignValue(elem, val); err != nil {
				return fmt.Errorf("key %q: %w", k, err)
			}
			out.SetMapIndex(reflect.ValueOf(k).Convert(fv.Type().Key()), elem)
		}
		fv.Set(out)
	case reflect.Slice:
		arr, ok := raw.([]any)
		if !ok {
			return fmt.Errorf("expected array, got %T", raw)
		}
		slice := reflect.MakeSlice(fv.Type(), len(arr), len(arr))
		for i := 0; i < len(arr); i++ {
			if err := assignValue(slice.Index(i), arr[i]); err != nil {
				return fmt.Errorf("index %d: %w", i, err)
			}
		}
		fv.Set(slice)
	case reflect.Ptr:
		ptrVal := reflect.New(fv.Type().Elem())
		if err := assignValue(ptrVal.Elem(), raw); err != nil {
			return err
		}
		fv.Set(ptrVal)
	case reflect.Interface:
		fv.Set(reflect.ValueOf(raw))
	default:
		return fmt.Errorf("unsupported kind %s", fv.Kind())
	}
	return nil
}
