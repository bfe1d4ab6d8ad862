package jsonschema

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"sync"

	"github.com/goccy/go-json"

	"github.com/oarkflow/jsonschema/jsonmap"
)

var bufferPool = sync.Pool{
	New: func() interface{} {
		return new(bytes.Buffer)
	},
}

func canonicalize(v any) (string, error) {
	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	if err := canonicalizeToBuffer(buf, v); err != nil {
		bufferPool.Put(buf)
		return "", err
	}
	result := buf.String()
	bufferPool.Put(buf)
	return result, nil
}

// canonicalizeToBuffer writes v as JSON. Plain maps are written in sorted
// key order; ordered objects keep their order, which keyword evaluation
// depends on.
func canonicalizeToBuffer(buf *bytes.Buffer, v any) error {
	switch t := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return writeMembers(buf, keys, func(k string) any { return t[k] })
	case *jsonmap.Object:
		return writeMembers(buf, t.Keys(), func(k string) any {
			v, _ := t.Get(k)
			return v
		})
	case []any:
		buf.WriteByte('[')
		for i, elem := range t {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := canonicalizeToBuffer(buf, elem); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		buf.Write(b)
	}
	return nil
}

func writeMembers(buf *bytes.Buffer, keys []string, get func(string) any) error {
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		b, err := json.Marshal(k)
		if err != nil {
			return err
		}
		buf.Write(b)
		buf.WriteByte(':')
		if err := canonicalizeToBuffer(buf, get(k)); err != nil {
			return err
		}
	}
	buf.WriteByte('}')
	return nil
}

// computeCacheKey hashes the canonical form of a schema value.
func computeCacheKey(v any) (string, error) {
	canonical, err := canonicalize(v)
	if err != nil {
		return "", err
	}
	h := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(h[:]), nil
}
