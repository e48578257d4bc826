// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	md2man "github.com/cpuguy83/go-md2man/v2/md2man"
	"github.com/urfave/cli/v3"

	"github.com/staranto/awsctlgo/internal/command"
	"github.com/staranto/awsctlgo/internal/meta"
)

// Doc generator. Walks the awsctl command tree and generates:
//   - docs/commands/awsctl-<service>-<op>.md
//   - docs/man/share/man1/awsctl-<service>-<op>.1 via md2man
//   - docs/tldr/awsctl-<service>-<op>.md from the command examples

func main() {
	var (
		repoRoot           string
		writeOnlyIfChanged bool
	)

	flag.StringVar(&repoRoot, "root", ".", "repo root (default current dir)")
	flag.BoolVar(&writeOnlyIfChanged, "only-if-changed", true, "only write files if content changed")
	flag.Parse()

	commandsDir := filepath.Join(repoRoot, "docs", "commands")
	manOutDir := filepath.Join(repoRoot, "docs", "man", "share", "man1")
	tldrOutDir := filepath.Join(repoRoot, "docs", "tldr")

	for _, dir := range []string{commandsDir, manOutDir, tldrOutDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			fatalf("creating output dir %s: %v", dir, err)
		}
	}

	app := command.NewApp(meta.Meta{})

	var processed int
	for _, svc := range app.Commands {
		for _, op := range svc.Commands {
			page := svc.Name + "-" + op.Name
			examples := commandExamples(op)

			md := buildMarkdown(svc.Name, op, examples)
			mdPath := filepath.Join(commandsDir, "awsctl-"+page+".md")
			if err := writeFileIfChanged(mdPath, []byte(md), writeOnlyIfChanged); err != nil {
				fatalf("writing markdown for %s: %v", page, err)
			}

			manPath := filepath.Join(manOutDir, "awsctl-"+page+".1")
			if err := writeFileIfChanged(manPath, md2man.Render([]byte(md)), writeOnlyIfChanged); err != nil {
				fatalf("writing man page for %s: %v", page, err)
			}

			tldr := buildTLDR(page, op.Usage, examples)
			tldrPath := filepath.Join(tldrOutDir, "awsctl-"+page+".md")
			if err := writeFileIfChanged(tldrPath, []byte(tldr), writeOnlyIfChanged); err != nil {
				fatalf("writing TLDR for %s: %v", page, err)
			}

			processed++
		}
	}

	if processed == 0 {
		fatalf("no commands found")
	}
	fmt.Printf("generated docs for %d commands\n", processed)
}

func fatalf(f string, a ...any) {
	fmt.Fprintf(os.Stderr, f+"\n", a...)
	os.Exit(1)
}

func writeFileIfChanged(path string, new []byte, onlyIfChanged bool) error {
	if !onlyIfChanged {
		return os.WriteFile(path, new, 0o644)
	}
	old, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return os.WriteFile(path, new, 0o644)
		}
		return err
	}
	if bytes.Equal(bytes.TrimSpace(old), bytes.TrimSpace(new)) {
		return nil
	}
	return os.WriteFile(path, new, 0o644)
}

type example struct {
	Desc string
	Cmd  string
}

func commandExamples(cmd *cli.Command) []example {
	raw, _ := cmd.Metadata["examples"].([][2]string)
	exs := make([]example, 0, len(raw))
	for _, e := range raw {
		exs = append(exs, example{Cmd: e[0], Desc: e[1]})
	}
	return exs
}

func flagUsage(f cli.Flag) string {
	if u, ok := f.(interface{ GetUsage() string }); ok {
		return u.GetUsage()
	}
	return ""
}

func buildMarkdown(service string, cmd *cli.Command, exs []example) string {
	var b strings.Builder
	name := "awsctl-" + service + "-" + cmd.Name

	fmt.Fprintf(&b, "%% %s 1\n\n", strings.ToUpper(name))
	fmt.Fprintf(&b, "# NAME\n\n%s - %s\n\n", name, cmd.Usage)
	fmt.Fprintf(&b, "# SYNOPSIS\n\n`%s`\n\n", cmd.UsageText)
	if api, ok := cmd.Metadata["api"].(string); ok {
		fmt.Fprintf(&b, "# DESCRIPTION\n\nCalls the %s %s API.\n\n", service, api)
	}

	b.WriteString("# OPTIONS\n\n")
	for _, f := range cmd.Flags {
		var names []string
		for _, n := range f.Names() {
			if len(n) == 1 {
				names = append(names, "-"+n)
			} else {
				names = append(names, "--"+n)
			}
		}
		fmt.Fprintf(&b, "**%s**\n: %s\n\n", strings.Join(names, ", "), flagUsage(f))
	}

	if len(exs) > 0 {
		b.WriteString("# EXAMPLES\n\n")
		for _, ex := range exs {
			fmt.Fprintf(&b, "%s:\n\n    %s\n\n", ex.Desc, sanitizeCommand(ex.Cmd))
		}
	}
	return b.String()
}

func buildTLDR(page, short string, exs []example) string {
	var b strings.Builder
	// Header
	b.WriteString("# awsctl-" + page + "\n\n")
	if short != "" {
		b.WriteString("> " + short + ".\n")
	} else {
		b.WriteString("> awsctl " + strings.Replace(page, "-", " ", 1) + "\n")
	}
	b.WriteString("> More information: https://github.com/staranto/awsctlgo.\n\n")

	if len(exs) == 0 {
		// Fallback examples
		b.WriteString("- Show help for the command:\n\n")
		b.WriteString("`awsctl " + strings.Replace(page, "-", " ", 1) + " --help`\n")
		b.WriteString("\n")
		return b.String()
	}

	for i, ex := range exs {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("- " + strings.TrimSpace(ex.Desc) + ":\n\n")
		b.WriteString("`" + sanitizeCommand(ex.Cmd) + "`\n")
	}
	return b.String()
}

func sanitizeCommand(s string) string {
	// Compress runs of whitespace
	return strings.Join(strings.Fields(s), " ")
}
