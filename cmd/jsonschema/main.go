// Command jsonschema validates JSON and YAML documents against a schema.
//
//	jsonschema [options] schema_file data_file...
//
// A data file of "-" is read from stdin. JSON data files may hold a stream
// of documents, such as JSON lines; each document is validated on its own.
// The exit status is 0 when every document is valid, 1 when some document
// is invalid and 2 on usage or fatal errors.
package main

import (
	"context"

	"github.com/scott-cotton/cli"
)

func main() {
	cli.MainContext(context.Background(), MainCommand())
}
