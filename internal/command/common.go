// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"os/exec"
	"reflect"
	"strings"

	"github.com/apex/log"
	"github.com/goccy/go-json"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/staranto/awsctlgo/internal/aws"
	"github.com/staranto/awsctlgo/internal/differ"
	"github.com/staranto/awsctlgo/internal/meta"
	"github.com/staranto/awsctlgo/internal/output"
)

var (
	// ErrNotConfirmed is returned when a destructive command is declined or
	// cannot ask for confirmation.
	ErrNotConfirmed = errors.New("not confirmed")

	// ErrDuplicateToken is returned when a service hands back a pagination
	// token it has already returned.
	ErrDuplicateToken = errors.New("duplicate pagination token")
)

// isTerminal is swapped out by tests.
var isTerminal = term.IsTerminal

// ShortCircuitTLDR checks the --tldr flag and, if present, runs
// `tldr awsctl-<page>` when tldr is installed or prints the command's examples
// otherwise.  It returns true so the caller can exit early.
func ShortCircuitTLDR(ctx context.Context, cmd *cli.Command, page string, examples [][2]string) bool {
	if !cmd.Bool("tldr") {
		return false
	}

	if pathHas("tldr") {
		c := exec.CommandContext(ctx, "tldr", "awsctl-"+page)
		c.Stdout = cmd.Root().Writer
		c.Stderr = cmd.Root().ErrWriter
		if err := c.Run(); err == nil {
			return true
		}
	}

	if len(examples) == 0 {
		fmt.Fprintln(cmd.Root().Writer, cmd.UsageText)
		return true
	}
	output.DumpExamples(cmd.Root().Writer, examples)
	return true
}

// DumpSchemaIfRequested prints the field paths of the selected part of the
// output type when --schema is set, and returns true if it handled the
// request.
func DumpSchemaIfRequested(cmd *cli.Command, selection string, t reflect.Type) bool {
	if cmd.Bool("schema") {
		output.DumpSchema(cmd.Root().Writer, selection, t)
		return true
	}
	return false
}

// GetMeta returns the meta.Meta stored in the command's Metadata. If missing
// or of an unexpected type, it returns the zero value.
func GetMeta(cmd *cli.Command) meta.Meta {
	if cmd == nil || cmd.Metadata == nil {
		return meta.Meta{}
	}
	if m, ok := cmd.Metadata["meta"].(meta.Meta); ok {
		return m
	}
	return meta.Meta{}
}

// Confirm asks a yes/no question on the terminal.  Without a terminal there is
// nobody to ask, so the command fails and --force is required.
func Confirm(cmd *cli.Command, prompt string) error {
	in := cmd.Root().Reader
	f, ok := in.(*os.File)
	if !ok || !isTerminal(int(f.Fd())) {
		return fmt.Errorf("%w: %s: use --force when not running interactively", ErrNotConfirmed, prompt)
	}

	fmt.Fprintf(cmd.Root().ErrWriter, "%s [y/N]: ", prompt)
	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to read confirmation: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrNotConfirmed, prompt)
	}
}

// warn reports a condition the user should see even at the default log level.
func warn(cmd *cli.Command, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	log.Warn(msg)
	fmt.Fprintf(cmd.Root().ErrWriter, "warning: %s\n", msg)
}

// Paging describes how an operation iterates.  NextToken reads the token from
// a response, SetToken writes it into the next request and SetPageSize, when
// the API has one, maps --page-size onto MaxResults.
type Paging[I, O any] struct {
	NextToken   func(*O) *string
	SetToken    func(*I, *string)
	SetPageSize func(*I, int32)
}

// PageOptions are the auto-iteration settings of one invocation.
type PageOptions struct {
	StartToken      string
	MaxItems        int
	PageSize        int32
	NoAutoIteration bool
}

// Paginate drives a token paginated API.  visit is called with every page in
// server order and returns how many items it kept, which --max-items is
// counted against.  When the API takes a page size, each request asks for no
// more than the items still wanted, so the returned token resumes exactly
// after the last item kept.  The returned token is non-nil only when iteration
// stopped before the service ran out of pages.
func Paginate[I, O any](
	ctx context.Context,
	in *I,
	p Paging[I, O],
	po PageOptions,
	call func(context.Context, *I) (*O, error),
	visit func(*O) (int, error),
) (*string, error) {
	seen := map[string]bool{}
	if po.StartToken != "" {
		start := po.StartToken
		seen[start] = true
		p.SetToken(in, &start)
	}

	total := 0
	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if p.SetPageSize != nil {
			if size := pageSize(po, total); size > 0 {
				p.SetPageSize(in, size)
			}
		}

		out, err := call(ctx, in)
		if err != nil {
			return nil, err
		}

		n, err := visit(out)
		if err != nil {
			return nil, err
		}
		total += n
		log.Debugf("page: %d, items: %d, total: %d", page, n, total)

		next := p.NextToken(out)
		if next == nil || *next == "" {
			return nil, nil
		}
		if seen[*next] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateToken, *next)
		}
		seen[*next] = true

		if po.NoAutoIteration || (po.MaxItems > 0 && total >= po.MaxItems) {
			return next, nil
		}
		p.SetToken(in, next)
	}
}

// pageSize is the MaxResults for the next request, 0 leaving it unset.
func pageSize(po PageOptions, total int) int32 {
	size := po.PageSize
	if po.MaxItems > 0 {
		remaining := po.MaxItems - total
		if remaining > math.MaxInt32 {
			remaining = math.MaxInt32
		}
		if size == 0 || int32(remaining) < size {
			size = int32(remaining)
		}
	}
	return size
}

// Operation describes one API operation exposed as a command: how flags bind
// into the request, how the client is called and what part of the response is
// emitted by default.
type Operation[I, O any] struct {
	Service   string
	Name      string
	API       string
	Usage     string
	UsageText string
	Flags     []cli.Flag
	Examples  [][2]string

	// Select is the default --select.  Attrs are default --attrs for it.
	Select string
	Attrs  string

	Destructive bool
	Deprecated  string

	Bind     func(*cli.Command, *I) error
	Call     func(context.Context, *aws.Clients, *I) (*O, error)
	Resource func(*I) string
	Paging   *Paging[I, O]

	// Failures lists the per-item failures of batch responses.
	Failures func(*O) []string

	// WhatIf returns the current and proposed policy documents for --what-if.
	WhatIf func(context.Context, *aws.Clients, *I) (string, string, error)
}

// Build returns a configured cli.Command for the operation.
func (op *Operation[I, O]) Build(m meta.Meta) *cli.Command {
	flags := append([]cli.Flag{}, op.Flags...)
	if op.Paging != nil {
		flags = append(flags, NewPagingFlags(op.Paging.SetPageSize != nil)...)
	}
	if op.Destructive {
		flags = append(flags, newForceFlag())
	}
	if op.WhatIf != nil {
		flags = append(flags, newWhatIfFlag())
	}
	flags = append(flags, newTldrFlag(), newSchemaFlag())
	flags = append(flags, NewGlobalFlags(op.Service, op.Name)...)
	flags = append(flags, NewAWSFlags(op.Service, op.Name)...)

	usage := op.Usage
	if op.Deprecated != "" {
		usage += " (deprecated)"
	}

	usageText := op.UsageText
	if usageText == "" {
		usageText = fmt.Sprintf("awsctl %s %s [options]", op.Service, op.Name)
	}

	return &cli.Command{
		Name:      op.Name,
		Usage:     usage,
		UsageText: usageText,
		Metadata: map[string]any{
			"meta":     m,
			"api":      op.API,
			"examples": op.Examples,
		},
		Flags: flags,
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			return ctx, GlobalFlagsValidator(ctx, c)
		},
		Action: op.Run,
	}
}

// selection returns the effective --select.
func (op *Operation[I, O]) selection(cmd *cli.Command) string {
	if s := cmd.String("select"); s != "" {
		return s
	}
	if op.Select == "" {
		return "*"
	}
	return op.Select
}

func (op *Operation[I, O]) errorContext(in *I, c *aws.Clients) aws.ErrorContext {
	ectx := aws.ErrorContext{
		Service:   op.Service,
		Operation: op.API,
	}
	if op.Resource != nil {
		ectx.Resource = op.Resource(in)
	}
	if c != nil {
		ectx.Region = c.Region
		ectx.Profile = c.Profile
	}
	return ectx
}

// Run executes the operation: short circuits, bind, confirm, call, select and
// render.
func (op *Operation[I, O]) Run(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %s %s", op.Service, op.Name)

	if ShortCircuitTLDR(ctx, cmd, op.Service+"-"+op.Name, op.Examples) {
		return nil
	}

	sel := op.selection(cmd)
	if DumpSchemaIfRequested(cmd, sel, reflect.TypeOf((*O)(nil))) {
		return nil
	}

	if op.Deprecated != "" {
		warn(cmd, "%s %s is deprecated, %s", op.Service, op.Name, op.Deprecated)
	}

	in := new(I)
	if op.Bind != nil {
		if err := op.Bind(cmd, in); err != nil {
			return err
		}
	}
	log.Debugf("input: %+v", in)

	if op.Destructive && !cmd.Bool("force") {
		prompt := fmt.Sprintf("%s %s", op.Service, op.Name)
		if op.Resource != nil {
			if r := op.Resource(in); r != "" {
				prompt += " " + r
			}
		}
		if err := Confirm(cmd, prompt+"?"); err != nil {
			return err
		}
	}

	if m.Clients == nil {
		return errors.New("no AWS client factory configured")
	}
	clients, err := m.Clients(ctx, cmd)
	if err != nil {
		return err
	}

	if op.WhatIf != nil && cmd.Bool("what-if") {
		return op.whatIf(ctx, cmd, clients, in)
	}

	items, err := op.collect(ctx, cmd, clients, in, sel)
	if err != nil {
		return err
	}

	attrDefaults := op.Attrs
	if cmd.String("select") != "" {
		attrDefaults = ""
	}
	al, err := output.ResolveAttrs(attrDefaults, cmd.String("attrs"), output.Items(items))
	if err != nil {
		return err
	}
	log.Debugf("attrs: %v", al)

	return output.SliceDiceSpit(items, al, output.OptionsFrom(cmd), cmd.Root().Writer)
}

func (op *Operation[I, O]) whatIf(ctx context.Context, cmd *cli.Command, clients *aws.Clients, in *I) error {
	current, proposed, err := op.WhatIf(ctx, clients, in)
	if err != nil {
		if aws.ErrorCode(err) != "" {
			return aws.FriendlyAWS(err, op.errorContext(in, clients))
		}
		return err
	}

	diff, changed, err := differ.Diff(current, proposed, cmd.Bool("color"))
	if err != nil {
		return err
	}
	if !changed {
		fmt.Fprintln(cmd.Root().Writer, "no changes")
		return nil
	}
	fmt.Fprint(cmd.Root().Writer, diff)
	return nil
}

// collect calls the operation, iterating when it is paginated, and returns the
// selected items as raw JSON.
func (op *Operation[I, O]) collect(ctx context.Context, cmd *cli.Command, clients *aws.Clients, in *I, sel string) ([]string, error) {
	call := func(ctx context.Context, in *I) (*O, error) {
		out, err := op.Call(ctx, clients, in)
		if err != nil {
			return nil, aws.FriendlyAWS(err, op.errorContext(in, clients))
		}
		return out, nil
	}

	passThrough := strings.HasPrefix(sel, "^")

	var items []string
	visit := func(out *O) (int, error) {
		if op.Failures != nil {
			for _, f := range op.Failures(out) {
				warn(cmd, "%s", f)
			}
		}
		if passThrough {
			return 0, nil
		}
		page, err := output.Marshal(out)
		if err != nil {
			return 0, err
		}
		selected := output.Select(page, sel)
		items = append(items, selected...)
		return len(selected), nil
	}

	if op.Paging == nil {
		out, err := call(ctx, in)
		if err != nil {
			return nil, err
		}
		if _, err := visit(out); err != nil {
			return nil, err
		}
	} else {
		po := PageOptions{
			StartToken:      cmd.String("next-token"),
			MaxItems:        cmd.Int("max-items"),
			NoAutoIteration: cmd.Bool("no-auto-iteration"),
		}
		if op.Paging.SetPageSize != nil {
			size, err := int32Flag(cmd, "page-size")
			if err != nil {
				return nil, err
			}
			po.PageSize = size
		}

		next, err := Paginate(ctx, in, *op.Paging, po, call, visit)
		if err != nil {
			return nil, err
		}

		dropped := 0
		if po.MaxItems > 0 && len(items) > po.MaxItems {
			dropped = len(items) - po.MaxItems
			items = items[:po.MaxItems]
		}
		switch {
		case next != nil && dropped > 0:
			// The token points past items that were never printed.
			warn(cmd, "%d items beyond --max-items were skipped and cannot be resumed; use --no-auto-iteration to page without loss", dropped)
		case next != nil:
			fmt.Fprintf(cmd.Root().ErrWriter, "NextToken: %s\n", *next)
		}
	}

	if passThrough {
		return PassThrough(cmd, in, sel[1:])
	}
	return items, nil
}

// PassThrough returns the value bound to an input parameter as raw JSON items.
// name is the request field name, e.g. RepositoryName, or failing that a flag
// name.
func PassThrough(cmd *cli.Command, in any, name string) ([]string, error) {
	var value any

	v := reflect.Indirect(reflect.ValueOf(in))
	if v.Kind() == reflect.Struct {
		if f := v.FieldByName(name); f.IsValid() {
			value = f.Interface()
		}
	}
	if value == nil {
		if !cmd.IsSet(name) {
			return nil, fmt.Errorf("unknown parameter for --select: ^%s", name)
		}
		value = cmd.Value(name)
	}

	b, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal parameter %s: %w", name, err)
	}
	return output.Select(b, "*"), nil
}
