package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/scott-cotton/cli"

	"github.com/oarkflow/jsonschema"
	"github.com/oarkflow/jsonschema/regex"
)

const (
	exitValid   = 0
	exitInvalid = 1
	exitFatal   = 2
)

type config struct {
	*cli.Command

	NoFormat     bool `cli:"name=no-format desc='do not assert format keywords'"`
	LenientDates bool `cli:"name=lenient-dates desc='accept any common layout for date and date-time formats'"`
	Defaults     bool `cli:"name=d aliases=defaults desc='insert defaults and print the changes as a merge patch'"`
	Verbose      bool `cli:"name=v desc='log compilation and reference resolution to stderr'"`
	Pretty       bool `cli:"name=p aliases=pretty desc='indent basic, detailed, verbose and flag output'"`

	maxErrors int
	regexp    regex.Compiler
	output    jsonschema.Format
}

func newConfig() *config {
	return &config{
		maxErrors: -1,
		regexp:    regex.Native,
		output:    jsonschema.FormatClassic,
	}
}

func (cfg *config) errorsOpt() cli.FuncOpt {
	return cli.FuncOpt(func(_ *cli.Context, v string) (any, error) {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("%w: -e expects a number: %w", cli.ErrUsage, err)
		}
		cfg.maxErrors = n
		return n, nil
	})
}

func (cfg *config) regexpOpt() cli.FuncOpt {
	return cli.FuncOpt(func(_ *cli.Context, v string) (any, error) {
		switch v {
		case "native":
			cfg.regexp = regex.Native
		case "ecma":
			cfg.regexp = regex.ECMA
		default:
			return nil, fmt.Errorf("%w: unknown regexp dialect %q", cli.ErrUsage, v)
		}
		return v, nil
	})
}

func (cfg *config) outputOpt() cli.FuncOpt {
	return cli.FuncOpt(func(_ *cli.Context, v string) (any, error) {
		f, err := jsonschema.ParseFormat(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", cli.ErrUsage, err)
		}
		cfg.output = f
		return f, nil
	})
}

// MainCommand returns the jsonschema command.
func MainCommand() *cli.Command {
	cfg := newConfig()
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	opts = append(opts,
		&cli.Opt{
			Name:        "e",
			Aliases:     []string{"errors"},
			Description: "print at most n errors per document, 0 for none, negative for all",
			Type:        cli.NamedFuncOpt(cfg.errorsOpt(), "(n)"),
		},
		&cli.Opt{
			Name:        "r",
			Aliases:     []string{"regexp"},
			Description: "regular expression dialect: native or ecma",
			Type:        cli.NamedFuncOpt(cfg.regexpOpt(), "(dialect)"),
		},
		&cli.Opt{
			Name:        "o",
			Aliases:     []string{"output"},
			Description: "output format: classic, basic, detailed, verbose or flag",
			Type:        cli.NamedFuncOpt(cfg.outputOpt(), "(format)"),
		})

	return cli.NewCommandAt(&cfg.Command, "jsonschema").
		WithSynopsis("jsonschema [opts] schema_file data_file...").
		WithDescription("jsonschema validates JSON and YAML documents against a JSON Schema.").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			args, err := cfg.Parse(cc, args)
			if err != nil {
				cfg.Usage(cc, err)
				return cli.ExitCodeErr(exitFatal)
			}
			if code := cfg.run(cc.Out, os.Stderr, cc.In, args); code != exitValid {
				return cli.ExitCodeErr(code)
			}
			return nil
		})
}
