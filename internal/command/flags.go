// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"os/exec"

	altsrc "github.com/urfave/cli-altsrc/v3"
	yaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"

	"github.com/staranto/awsctlgo/internal/config"
)

// cfg is the config file the flag value sources read.  InitApp sets it before
// any command is built.
var cfg config.Type

// Flags carry parse state, so every command gets its own instances.

func newSchemaFlag() *cli.BoolFlag {
	return &cli.BoolFlag{
		Name:        "schema",
		Usage:       "dump the field paths of the output",
		HideDefault: true,
	}
}

func newTldrFlag() *cli.BoolFlag {
	return &cli.BoolFlag{
		Name:        "tldr",
		Usage:       "show tldr page or examples",
		HideDefault: true,
	}
}

func newForceFlag() *cli.BoolFlag {
	return &cli.BoolFlag{
		Name:        "force",
		Usage:       "do not ask for confirmation",
		HideDefault: true,
	}
}

func newWhatIfFlag() *cli.BoolFlag {
	return &cli.BoolFlag{
		Name:        "what-if",
		Usage:       "show the difference against the current policy and exit",
		HideDefault: true,
	}
}

// sources builds the config file value chain for a flag, most specific
// namespace first: <service>.<operation>.<flag>, <service>.<flag>, <flag>.
func sources(flag string, ns ...string) []cli.ValueSource {
	var chain []cli.ValueSource
	for i := len(ns); i > 0; i-- {
		key := ""
		for _, n := range ns[:i] {
			key += n + "."
		}
		chain = append(chain, yaml.YAML(key+flag, altsrc.StringSourcer(cfg.Source)))
	}
	return append(chain, yaml.YAML(flag, altsrc.StringSourcer(cfg.Source)))
}

// NewGlobalFlags returns the rendering flags every operation carries.  ns is
// the service and operation name used to namespace config file values.
func NewGlobalFlags(ns ...string) (flags []cli.Flag) {
	flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "attrs",
			Aliases: []string{"a"},
			Usage:   "comma-separated list of attributes to include in results",
			Sources: cli.NewValueSourceChain(sources("attrs", ns...)...),
		},
		&cli.BoolWithInverseFlag{
			Name:    "color",
			Aliases: []string{"c"},
			Usage:   "enable colored text output",
			Sources: cli.NewValueSourceChain(sources("color", ns...)...),
			Value:   false,
		},
		&cli.StringFlag{
			Name:    "filter",
			Aliases: []string{"f"},
			Usage:   "comma-separated list of filters to apply to results",
		},
		&cli.BoolFlag{
			Name:    "local",
			Aliases: []string{"l"},
			Usage:   "render timestamps in the local timezone",
			Sources: cli.NewValueSourceChain(sources("local", ns...)...),
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format (text, json, yaml, raw)",
			Sources: cli.NewValueSourceChain(sources("output", ns...)...),
			Value:   "text",
			Validator: func(value string) error {
				return FlagValidators(value, OutputValidator)
			},
		},
		&cli.StringFlag{
			Name:  "select",
			Usage: "response path to emit, '*' for the whole response or '^Param' for an input value",
		},
		&cli.StringFlag{
			Name:    "sort",
			Aliases: []string{"s"},
			Usage:   "comma-separated list of attributes to sort the results by",
			Sources: cli.NewValueSourceChain(sources("sort", ns...)...),
		},
		&cli.BoolWithInverseFlag{
			Name:    "titles",
			Aliases: []string{"t"},
			Usage:   "show titles with text output",
			Sources: cli.NewValueSourceChain(sources("titles", ns...)...),
			Value:   false,
		},
	}

	return
}

// NewAWSFlags returns the connection flags every operation carries.
func NewAWSFlags(ns ...string) []cli.Flag {
	profileChain := append([]cli.ValueSource{
		cli.EnvVar("AWSCTL_PROFILE"),
		cli.EnvVar("AWS_PROFILE"),
	}, sources("profile", ns...)...)

	regionChain := append([]cli.ValueSource{
		cli.EnvVar("AWSCTL_REGION"),
		cli.EnvVar("AWS_REGION"),
		cli.EnvVar("AWS_DEFAULT_REGION"),
	}, sources("region", ns...)...)

	return []cli.Flag{
		&cli.StringFlag{
			Name:    "profile",
			Aliases: []string{"p"},
			Usage:   "shared config profile",
			Sources: cli.NewValueSourceChain(profileChain...),
		},
		&cli.StringFlag{
			Name:    "region",
			Aliases: []string{"r"},
			Usage:   "AWS region",
			Sources: cli.NewValueSourceChain(regionChain...),
		},
		&cli.StringFlag{
			Name:  "endpoint-url",
			Usage: "override the service endpoint",
			Sources: cli.NewValueSourceChain(
				append([]cli.ValueSource{cli.EnvVar("AWSCTL_ENDPOINT_URL")}, sources("endpoint-url", ns...)...)...),
		},
		&cli.StringFlag{
			Name:  "access-key",
			Usage: "static access key id",
		},
		&cli.StringFlag{
			Name:  "secret-key",
			Usage: "static secret access key",
		},
		&cli.StringFlag{
			Name:  "session-token",
			Usage: "static session token",
		},
		&cli.IntFlag{
			Name:    "max-attempts",
			Usage:   "maximum attempts per API call, 0 keeps the SDK default",
			Sources: cli.NewValueSourceChain(sources("max-attempts", ns...)...),
		},
	}
}

// NewPagingFlags returns the auto-iteration flags of paginated operations.
func NewPagingFlags(pageSize bool) []cli.Flag {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:  "next-token",
			Usage: "token to start iterating from",
		},
		&cli.IntFlag{
			Name:  "max-items",
			Usage: "stop after this many items, 0 for all",
			Validator: func(v int) error {
				return FlagValidators(v, NonNegativeValidator)
			},
		},
		&cli.BoolFlag{
			Name:  "no-auto-iteration",
			Usage: "fetch a single page and report the next token",
		},
	}
	if pageSize {
		flags = append(flags, &cli.IntFlag{
			Name:  "page-size",
			Usage: "items requested per call",
			Validator: func(v int) error {
				return FlagValidators(v, PageSizeValidator)
			},
		})
	}
	return flags
}

// pathHas reports whether target is an executable on PATH.
func pathHas(target string) bool {
	_, err := exec.LookPath(target)
	return err == nil
}
