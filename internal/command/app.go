// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package command

import (
	"context"
	"os"
	"sort"
	"strings"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/urfave/cli/v3"

	"github.com/staranto/awsctlgo/internal/aws"
	"github.com/staranto/awsctlgo/internal/config"
	mylog "github.com/staranto/awsctlgo/internal/log"
	"github.com/staranto/awsctlgo/internal/meta"
)

func InitApp(ctx context.Context, args []string) (*cli.Command, error) {

	// The arg[1] immediately following the binary (arg[0]) is the service
	// and also represents the namespace key to be used when retrieving config
	// values. arg[1] could be -h/--help, so ignore it if it appears to be a
	// flag.
	var ns string
	if len(args) > 1 && !strings.HasPrefix(args[1], "-") {
		ns = args[1]
	}

	c, _ := config.Load(ns)
	m := meta.Meta{
		Args:    args,
		Config:  c,
		Context: ctx,
		Clients: ClientsFromFlags,
	}

	return NewApp(m), nil
}

// NewApp builds the command tree around the given meta.
func NewApp(m meta.Meta) *cli.Command {
	cfg = m.Config

	app := &cli.Command{
		Name:    "awsctl",
		Usage:   "AWS ECR and Application Discovery Service control",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "version",
				Aliases:     []string{"v"},
				Usage:       "print version and exit",
				HideDefault: true,
			},
		},
	}

	app.Commands = append(app.Commands,
		ServiceCommandBuilder("ecr", "Elastic Container Registry", ECRCommands(m)),
		ServiceCommandBuilder("ads", "Application Discovery Service", ADSCommands(m)),
		CompletionCommandBuilder(m),
	)

	// Make sure flags are sorted for the --help text.
	for _, svc := range app.Commands {
		for _, cmd := range svc.Commands {
			sort.Slice(cmd.Flags, func(i, j int) bool {
				return cmd.Flags[i].Names()[0] < cmd.Flags[j].Names()[0]
			})
		}
	}

	return app
}

// ServiceCommandBuilder groups the operations of one service.
func ServiceCommandBuilder(name, usage string, ops []*cli.Command) *cli.Command {
	sort.Slice(ops, func(i, j int) bool { return ops[i].Name < ops[j].Name })
	return &cli.Command{
		Name:      name,
		Usage:     usage,
		UsageText: "awsctl " + name + " <operation> [options]",
		Commands:  ops,
	}
}

// ClientsFromFlags resolves the AWS config from the connection flags and
// builds the service clients.
func ClientsFromFlags(ctx context.Context, cmd *cli.Command) (*aws.Clients, error) {
	opts := []aws.Option{
		aws.WithProfile(cmd.String("profile")),
		aws.WithRegion(cmd.String("region")),
		aws.WithEndpointURL(cmd.String("endpoint-url")),
		aws.WithStaticCredentials(cmd.String("access-key"), cmd.String("secret-key"), cmd.String("session-token")),
		aws.WithMaxAttempts(cmd.Int("max-attempts")),
	}

	if mylog.DebugEnabled() {
		mode := awsv2.LogRetries | awsv2.LogRequest | awsv2.LogResponse
		if os.Getenv("AWSCTL_LOG_SDK") == "1" {
			mode |= awsv2.LogRequestWithBody | awsv2.LogResponseWithBody
		}
		opts = append(opts, aws.WithLogger(mylog.SDKLogger(), mode))
	}

	awsCfg, err := aws.LoadAWSConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	return aws.NewClients(awsCfg, cmd.String("profile")), nil
}
