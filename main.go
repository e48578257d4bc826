// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/apex/log"

	"github.com/staranto/awsctlgo/internal/cacheutil"
	"github.com/staranto/awsctlgo/internal/command"
	"github.com/staranto/awsctlgo/internal/config"
	mylog "github.com/staranto/awsctlgo/internal/log"
	"github.com/staranto/awsctlgo/internal/version"
)

func main() {
	os.Exit(realMain())
}

func realMain() int {
	mylog.InitLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	args := os.Args

	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "No command specified.")
		args = append(args, "--help")
	}

	// Short-circuit --version/-v.
	for _, a := range args {
		if a == "--version" || a == "-v" {
			fmt.Println(version.Version)
			return 0
		}
	}

	// Best-effort: pre-create cache directory when caching is enabled.
	if _, err := cacheutil.EnsureBaseDir(); err != nil {
		log.WithError(err).Warn("login caching unavailable")
	}

	app, err := command.InitApp(ctx, args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	// Sets are read from the config InitApp loaded.
	args = mangleArguments(args)

	if err := app.Run(ctx, args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	return 0
}

// mangleArguments expands an @set argument into the flags stored under
// sets.<service>.<operation>.<set> in the config file.  Without an explicit
// @set the "defaults" set is applied, if one exists.
func mangleArguments(args []string) []string {
	// awsctl <service> <operation> ...
	if len(args) < 3 || strings.HasPrefix(args[1], "-") || strings.HasPrefix(args[2], "-") {
		return args
	}

	// Short-circuit for --help/-h. If help is requested, just keep the preamble
	// and add --help flag.
	for _, a := range args {
		if a == "--help" || a == "-h" {
			return append(append([]string{}, args[:3]...), "--help")
		}
	}

	out := append([]string{}, args[:3]...)
	set := "defaults"
	explicit := false
	var setArgs []string
	var rest []string
	for i, a := range args[3:] {
		if explicit || !strings.HasPrefix(a, "@") || len(a) < 2 {
			rest = append(rest, a)
			continue
		}

		// @name right after a flag is usually an @file value.  It is only taken
		// as a set when one by that name exists.
		prev := args[2+i]
		found, err := setFor(args[1], args[2], a[1:])
		afterFlag := strings.HasPrefix(prev, "-") && !strings.Contains(prev, "=")
		if afterFlag && err != nil {
			rest = append(rest, a)
			continue
		}
		if err != nil {
			log.Warnf("no set %q for %s %s", a[1:], args[1], args[2])
		}
		set, setArgs, explicit = a[1:], found, true
	}

	if !explicit {
		setArgs, _ = setFor(args[1], args[2], set)
	}

	// Set flags come first so flags on the command line win.
	for _, arg := range setArgs {
		out = append(out, strings.Fields(arg)...)
	}
	out = append(out, rest...)

	log.Debugf("set=%s, args=%v", set, out)
	return out
}

// setFor returns the arguments of a named set from the config file.
func setFor(service, operation, name string) ([]string, error) {
	return config.GetStringSlice(strings.Join([]string{"sets", service, operation, name}, "."))
}
