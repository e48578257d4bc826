// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package meta

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/staranto/awsctlgo/internal/aws"
	"github.com/staranto/awsctlgo/internal/config"
)

// ClientFactory resolves the AWS service clients for a command invocation.
// Commands call it lazily so --schema and --tldr never touch AWS.
type ClientFactory func(context.Context, *cli.Command) (*aws.Clients, error)

// Meta are the meta-options that are available on all or most commands.
type Meta struct {
	Args    []string
	Config  config.Type
	Context context.Context
	Clients ClientFactory
}
