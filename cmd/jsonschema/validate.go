package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	jsonpatch "github.com/evanphx/json-patch"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/oarkflow/jsonschema"
	"github.com/oarkflow/jsonschema/decoder"
	"github.com/oarkflow/jsonschema/encoder"
	"github.com/oarkflow/jsonschema/fetch"
	"github.com/oarkflow/jsonschema/formats"
	"github.com/oarkflow/jsonschema/marshaler"
	"github.com/oarkflow/jsonschema/openapi"
)

func (cfg *config) run(out, errOut io.Writer, in io.Reader, args []string) int {
	if len(args) < 2 {
		fmt.Fprintln(errOut, "usage: jsonschema [opts] schema_file data_file...")
		return exitFatal
	}
	stdin := 0
	for _, a := range args {
		if a == "-" {
			stdin++
		}
	}
	if stdin > 1 {
		fmt.Fprintln(errOut, "jsonschema: stdin (-) may be used at most once")
		return exitFatal
	}

	logger := log.New(io.Discard)
	if cfg.Verbose {
		logger = log.NewWithOptions(errOut, log.Options{Level: log.DebugLevel, Prefix: "jsonschema"})
	}
	schema, err := cfg.compile(args[0], in, logger)
	if err != nil {
		fmt.Fprintf(errOut, "jsonschema: %s: %v\n", args[0], err)
		return exitFatal
	}

	p := newPrinter(out, cfg, len(args) > 2)
	code := exitValid
	for _, name := range args[1:] {
		docs, err := readDocuments(name, in)
		if err != nil {
			fmt.Fprintf(errOut, "jsonschema: %s: %v\n", name, err)
			return exitFatal
		}
		p.header(name)
		for i, doc := range docs {
			valid, err := cfg.check(p, schema, doc)
			if err != nil {
				fmt.Fprintf(errOut, "jsonschema: %s: document %d: %v\n", name, i, err)
				return exitFatal
			}
			if !valid {
				code = exitInvalid
			}
		}
	}
	return code
}

func (cfg *config) compile(name string, in io.Reader, logger *log.Logger) (*jsonschema.Schema, error) {
	data, err := readInput(name, in)
	if err != nil {
		return nil, err
	}
	doc, err := fetch.Parse(name, data)
	if err != nil {
		return nil, err
	}
	opts := []jsonschema.Option{
		jsonschema.WithFetcher(fetch.Chain(fetch.File(), fetch.NewCache(fetch.HTTP(nil)))),
		jsonschema.WithRegexp(cfg.regexp),
		jsonschema.WithFormatAssertion(!cfg.NoFormat),
		jsonschema.WithOutputFormat(cfg.output),
		jsonschema.WithVocabulary(openapi.Vocabulary()),
		jsonschema.WithLogger(logger),
	}
	if cfg.LenientDates {
		opts = append(opts, jsonschema.WithFormats(formats.Lenient()))
	}
	if name != "-" {
		if abs, err := filepath.Abs(name); err == nil {
			opts = append(opts, jsonschema.WithBaseURI("file://"+filepath.ToSlash(abs)))
		}
	}
	return jsonschema.NewCompiler(opts...).CompileValue(doc)
}

// check validates one document and prints its report.
func (cfg *config) check(p *printer, schema *jsonschema.Schema, doc any) (bool, error) {
	if !cfg.Defaults {
		r, err := schema.Validate(doc)
		if err != nil {
			return false, err
		}
		return r.Valid, p.result(r)
	}
	before, err := marshaler.Instance()(doc)
	if err != nil {
		return false, err
	}
	r, err := schema.Validate(doc, jsonschema.WithInsertPropertyDefaults(true))
	if err != nil {
		return false, err
	}
	after, err := marshaler.Instance()(doc)
	if err != nil {
		return false, err
	}
	if !bytes.Equal(before, after) {
		patch, err := jsonpatch.CreateMergePatch(before, after)
		if err != nil {
			return false, fmt.Errorf("building merge patch: %w", err)
		}
		p.patch(patch)
	}
	return r.Valid, p.result(r)
}

func readInput(name string, in io.Reader) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(in)
	}
	return os.ReadFile(name)
}

// readDocuments reads every document of a data file. YAML files hold one
// document; JSON files may hold a stream.
func readDocuments(name string, in io.Reader) ([]any, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		data, err := readInput(name, in)
		if err != nil {
			return nil, err
		}
		doc, err := fetch.Parse(name, data)
		if err != nil {
			return nil, err
		}
		return []any{doc}, nil
	}
	r := in
	if name != "-" {
		f, err := os.Open(name)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	var docs []any
	for doc, err := range decoder.All(r) {
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if len(docs) == 0 {
		return nil, errors.New("no documents")
	}
	return docs, nil
}

type printer struct {
	w         io.Writer
	enc       encoder.IEncoder
	format    jsonschema.Format
	maxErrors int
	headers   bool
	title     *color.Color
	errColor  *color.Color

	// classic records are encoded one per line into buf before colouring
	buf   bytes.Buffer
	lines encoder.IEncoder
}

func newPrinter(w io.Writer, cfg *config, headers bool) *printer {
	p := &printer{
		w:         w,
		enc:       encoder.NewEncoder(w),
		format:    cfg.output,
		maxErrors: cfg.maxErrors,
		headers:   headers,
		title:     color.New(color.FgCyan, color.Bold),
		errColor:  color.New(color.FgRed),
	}
	p.lines = encoder.NewEncoder(&p.buf)
	if cfg.Pretty {
		p.enc = encoder.Indented(w, "  ")
	}
	if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		p.title.EnableColor()
		p.errColor.EnableColor()
	} else {
		p.title.DisableColor()
		p.errColor.DisableColor()
	}
	return p
}

func (p *printer) header(name string) {
	if p.headers {
		p.title.Fprintf(p.w, "==> %s <==\n", name)
	}
}

func (p *printer) patch(patch []byte) {
	fmt.Fprintf(p.w, "%s\n", patch)
}

// result prints r in the configured format. Classic output is one JSON
// record per line, at most maxErrors of them.
func (p *printer) result(r *jsonschema.Result) error {
	if p.format != jsonschema.FormatClassic {
		out, err := r.Output(p.format)
		if err != nil {
			return err
		}
		return p.enc.Encode(out)
	}
	if p.maxErrors == 0 {
		return nil
	}
	n := 0
	for e := range r.Classic() {
		if p.maxErrors > 0 && n == p.maxErrors {
			break
		}
		p.buf.Reset()
		if err := p.lines.Encode(e); err != nil {
			return err
		}
		if _, err := p.errColor.Fprint(p.w, p.buf.String()); err != nil {
			return err
		}
		n++
	}
	return nil
}
