package jsonschema

import (
	"runtime"
	"strings"

	"github.com/goccy/go-reflect"
)

// funcName names a callback for log output: the function name qualified
// by its last package path element.
func funcName(fn any) string {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return ""
	}
	f := runtime.FuncForPC(v.Pointer())
	if f == nil {
		return ""
	}
	name := f.Name()
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	return name
}
