// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	ads "github.com/aws/aws-sdk-go-v2/service/applicationdiscoveryservice"
	"github.com/aws/aws-sdk-go-v2/service/applicationdiscoveryservice/types"
	"github.com/urfave/cli/v3"

	"github.com/staranto/awsctlgo/internal/aws"
	"github.com/staranto/awsctlgo/internal/meta"
)

const agentStatusAttrs = "AgentId,OperationSucceeded:Succeeded,Description"

// BatchDeleteAgentsCommandBuilder constructs "ads batch-delete-agents".
func BatchDeleteAgentsCommandBuilder(m meta.Meta) *cli.Command {
	op := &Operation[ads.BatchDeleteAgentsInput, ads.BatchDeleteAgentsOutput]{
		Service: "ads",
		Name:    "batch-delete-agents",
		API:     "BatchDeleteAgents",
		Usage:   "delete agents or connectors",
		Flags: []cli.Flag{
			agentIDFlag(),
			&cli.BoolFlag{
				Name:  "force-agent",
				Usage: "delete agents that are still collecting data",
			},
		},
		Select:      "Errors",
		Attrs:       "AgentId,ErrorCode,ErrorMessage",
		Destructive: true,
		Resource: func(in *ads.BatchDeleteAgentsInput) string {
			ids := make([]string, 0, len(in.DeleteAgents))
			for _, a := range in.DeleteAgents {
				ids = append(ids, deref(a.AgentId))
			}
			return idsResource("agents", ids)
		},
		Bind: func(cmd *cli.Command, in *ads.BatchDeleteAgentsInput) error {
			ids, err := requireSlice(cmd, "agent-id")
			if err != nil {
				return err
			}
			for _, id := range ids {
				in.DeleteAgents = append(in.DeleteAgents, types.DeleteAgent{
					AgentId: awsv2.String(id),
					Force:   cmd.Bool("force-agent"),
				})
			}
			return nil
		},
		Call: func(ctx context.Context, c *aws.Clients, in *ads.BatchDeleteAgentsInput) (*ads.BatchDeleteAgentsOutput, error) {
			return c.Discovery.BatchDeleteAgents(ctx, in)
		},
		Failures: func(o *ads.BatchDeleteAgentsOutput) []string {
			out := make([]string, 0, len(o.Errors))
			for _, e := range o.Errors {
				out = append(out, fmt.Sprintf("agent %s: %s: %s", deref(e.AgentId), e.ErrorCode, deref(e.ErrorMessage)))
			}
			return out
		},
	}
	return op.Build(m)
}

// DescribeAgentsCommandBuilder constructs "ads describe-agents".
func DescribeAgentsCommandBuilder(m meta.Meta) *cli.Command {
	op := &Operation[ads.DescribeAgentsInput, ads.DescribeAgentsOutput]{
		Service: "ads",
		Name:    "describe-agents",
		API:     "DescribeAgents",
		Usage:   "list discovery agents and connectors",
		Flags:   []cli.Flag{agentIDFlag(), serverFilterFlag(true)},
		Examples: [][2]string{
			{"awsctl ads describe-agents -t", "every agent with titles"},
			{"awsctl ads describe-agents --server-filter 'health:EQUALS:HEALTHY|RUNNING'", "healthy or running agents"},
			{"awsctl ads describe-agents -f 'Health!=HEALTHY'", "unhealthy agents, filtered client side"},
		},
		Select: "AgentsInfo",
		Attrs:  "AgentId,HostName,AgentType,Health,CollectionStatus,LastHealthPingTime",
		Bind: func(cmd *cli.Command, in *ads.DescribeAgentsInput) error {
			var err error
			in.AgentIds = cmd.StringSlice("agent-id")
			in.Filters, err = adsFilters(cmd)
			return err
		},
		Call: func(ctx context.Context, c *aws.Clients, in *ads.DescribeAgentsInput) (*ads.DescribeAgentsOutput, error) {
			return c.Discovery.DescribeAgents(ctx, in)
		},
		Paging: &Paging[ads.DescribeAgentsInput, ads.DescribeAgentsOutput]{
			NextToken:   func(o *ads.DescribeAgentsOutput) *string { return o.NextToken },
			SetToken:    func(i *ads.DescribeAgentsInput, t *string) { i.NextToken = t },
			SetPageSize: func(i *ads.DescribeAgentsInput, n int32) { i.MaxResults = awsv2.Int32(n) },
		},
	}
	return op.Build(m)
}

// StartDataCollectionByAgentIdsCommandBuilder constructs
// "ads start-data-collection-by-agent-ids".
func StartDataCollectionByAgentIdsCommandBuilder(m meta.Meta) *cli.Command {
	op := &Operation[ads.StartDataCollectionByAgentIdsInput, ads.StartDataCollectionByAgentIdsOutput]{
		Service:  "ads",
		Name:     "start-data-collection-by-agent-ids",
		API:      "StartDataCollectionByAgentIds",
		Usage:    "start collecting data on agents",
		Flags:    []cli.Flag{agentIDFlag()},
		Select:   "AgentsConfigurationStatus",
		Attrs:    agentStatusAttrs,
		Resource: func(in *ads.StartDataCollectionByAgentIdsInput) string { return idsResource("agents", in.AgentIds) },
		Bind: func(cmd *cli.Command, in *ads.StartDataCollectionByAgentIdsInput) error {
			var err error
			in.AgentIds, err = requireSlice(cmd, "agent-id")
			return err
		},
		Call: func(ctx context.Context, c *aws.Clients, in *ads.StartDataCollectionByAgentIdsInput) (*ads.StartDataCollectionByAgentIdsOutput, error) {
			return c.Discovery.StartDataCollectionByAgentIds(ctx, in)
		},
	}
	return op.Build(m)
}

// StopDataCollectionByAgentIdsCommandBuilder constructs
// "ads stop-data-collection-by-agent-ids".
func StopDataCollectionByAgentIdsCommandBuilder(m meta.Meta) *cli.Command {
	op := &Operation[ads.StopDataCollectionByAgentIdsInput, ads.StopDataCollectionByAgentIdsOutput]{
		Service:     "ads",
		Name:        "stop-data-collection-by-agent-ids",
		API:         "StopDataCollectionByAgentIds",
		Usage:       "stop collecting data on agents",
		Flags:       []cli.Flag{agentIDFlag()},
		Select:      "AgentsConfigurationStatus",
		Attrs:       agentStatusAttrs,
		Destructive: true,
		Resource:    func(in *ads.StopDataCollectionByAgentIdsInput) string { return idsResource("agents", in.AgentIds) },
		Bind: func(cmd *cli.Command, in *ads.StopDataCollectionByAgentIdsInput) error {
			var err error
			in.AgentIds, err = requireSlice(cmd, "agent-id")
			return err
		},
		Call: func(ctx context.Context, c *aws.Clients, in *ads.StopDataCollectionByAgentIdsInput) (*ads.StopDataCollectionByAgentIdsOutput, error) {
			return c.Discovery.StopDataCollectionByAgentIds(ctx, in)
		},
	}
	return op.Build(m)
}
