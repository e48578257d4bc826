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

// AssociateConfigurationItemsToApplicationCommandBuilder constructs
// "ads associate-configuration-items-to-application".
func AssociateConfigurationItemsToApplicationCommandBuilder(m meta.Meta) *cli.Command {
	op := &Operation[ads.AssociateConfigurationItemsToApplicationInput, ads.AssociateConfigurationItemsToApplicationOutput]{
		Service: "ads",
		Name:    "associate-configuration-items-to-application",
		API:     "AssociateConfigurationItemsToApplication",
		Usage:   "add configuration items to an application",
		Flags:   []cli.Flag{applicationIDFlag(), configurationIDFlag()},
		Select:  "^ApplicationConfigurationId",
		Resource: func(in *ads.AssociateConfigurationItemsToApplicationInput) string {
			return "application " + deref(in.ApplicationConfigurationId)
		},
		Bind: func(cmd *cli.Command, in *ads.AssociateConfigurationItemsToApplicationInput) error {
			var err error
			if in.ApplicationConfigurationId, err = requireString(cmd, "application-configuration-id"); err != nil {
				return err
			}
			in.ConfigurationIds, err = requireSlice(cmd, "configuration-id")
			return err
		},
		Call: func(ctx context.Context, c *aws.Clients, in *ads.AssociateConfigurationItemsToApplicationInput) (*ads.AssociateConfigurationItemsToApplicationOutput, error) {
			return c.Discovery.AssociateConfigurationItemsToApplication(ctx, in)
		},
	}
	return op.Build(m)
}

// DisassociateConfigurationItemsFromApplicationCommandBuilder constructs
// "ads disassociate-configuration-items-from-application".
func DisassociateConfigurationItemsFromApplicationCommandBuilder(m meta.Meta) *cli.Command {
	op := &Operation[ads.DisassociateConfigurationItemsFromApplicationInput, ads.DisassociateConfigurationItemsFromApplicationOutput]{
		Service:     "ads",
		Name:        "disassociate-configuration-items-from-application",
		API:         "DisassociateConfigurationItemsFromApplication",
		Usage:       "remove configuration items from an application",
		Flags:       []cli.Flag{applicationIDFlag(), configurationIDFlag()},
		Select:      "^ApplicationConfigurationId",
		Destructive: true,
		Resource: func(in *ads.DisassociateConfigurationItemsFromApplicationInput) string {
			return fmt.Sprintf("%d item(s) from application %s", len(in.ConfigurationIds), deref(in.ApplicationConfigurationId))
		},
		Bind: func(cmd *cli.Command, in *ads.DisassociateConfigurationItemsFromApplicationInput) error {
			var err error
			if in.ApplicationConfigurationId, err = requireString(cmd, "application-configuration-id"); err != nil {
				return err
			}
			in.ConfigurationIds, err = requireSlice(cmd, "configuration-id")
			return err
		},
		Call: func(ctx context.Context, c *aws.Clients, in *ads.DisassociateConfigurationItemsFromApplicationInput) (*ads.DisassociateConfigurationItemsFromApplicationOutput, error) {
			return c.Discovery.DisassociateConfigurationItemsFromApplication(ctx, in)
		},
	}
	return op.Build(m)
}

// CreateApplicationCommandBuilder constructs "ads create-application".
func CreateApplicationCommandBuilder(m meta.Meta) *cli.Command {
	op := &Operation[ads.CreateApplicationInput, ads.CreateApplicationOutput]{
		Service: "ads",
		Name:    "create-application",
		API:     "CreateApplication",
		Usage:   "create an application",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Usage: "application name"},
			&cli.StringFlag{Name: "description", Usage: "application description"},
		},
		Select:   "ConfigurationId",
		Resource: func(in *ads.CreateApplicationInput) string { return "application " + deref(in.Name) },
		Bind: func(cmd *cli.Command, in *ads.CreateApplicationInput) error {
			var err error
			in.Description = optString(cmd, "description")
			in.Name, err = requireString(cmd, "name")
			return err
		},
		Call: func(ctx context.Context, c *aws.Clients, in *ads.CreateApplicationInput) (*ads.CreateApplicationOutput, error) {
			return c.Discovery.CreateApplication(ctx, in)
		},
	}
	return op.Build(m)
}

// UpdateApplicationCommandBuilder constructs "ads update-application".
func UpdateApplicationCommandBuilder(m meta.Meta) *cli.Command {
	op := &Operation[ads.UpdateApplicationInput, ads.UpdateApplicationOutput]{
		Service: "ads",
		Name:    "update-application",
		API:     "UpdateApplication",
		Usage:   "rename or redescribe an application",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "configuration-id", Aliases: []string{"i"}, Usage: "configuration id of the application"},
			&cli.StringFlag{Name: "name", Usage: "new application name"},
			&cli.StringFlag{Name: "description", Usage: "new application description"},
		},
		Select:   "^ConfigurationId",
		Resource: func(in *ads.UpdateApplicationInput) string { return "application " + deref(in.ConfigurationId) },
		Bind: func(cmd *cli.Command, in *ads.UpdateApplicationInput) error {
			var err error
			if in.ConfigurationId, err = requireString(cmd, "configuration-id"); err != nil {
				return err
			}
			in.Name = optString(cmd, "name")
			in.Description = optString(cmd, "description")
			if in.Name == nil && in.Description == nil {
				return fmt.Errorf("%w: --name or --description is required", ErrInvalidValue)
			}
			return nil
		},
		Call: func(ctx context.Context, c *aws.Clients, in *ads.UpdateApplicationInput) (*ads.UpdateApplicationOutput, error) {
			return c.Discovery.UpdateApplication(ctx, in)
		},
	}
	return op.Build(m)
}

// DeleteApplicationsCommandBuilder constructs "ads delete-applications".
func DeleteApplicationsCommandBuilder(m meta.Meta) *cli.Command {
	op := &Operation[ads.DeleteApplicationsInput, ads.DeleteApplicationsOutput]{
		Service:     "ads",
		Name:        "delete-applications",
		API:         "DeleteApplications",
		Usage:       "delete applications",
		Flags:       []cli.Flag{configurationIDFlag()},
		Select:      "^ConfigurationIds",
		Destructive: true,
		Resource:    func(in *ads.DeleteApplicationsInput) string { return idsResource("applications", in.ConfigurationIds) },
		Bind: func(cmd *cli.Command, in *ads.DeleteApplicationsInput) error {
			var err error
			in.ConfigurationIds, err = requireSlice(cmd, "configuration-id")
			return err
		},
		Call: func(ctx context.Context, c *aws.Clients, in *ads.DeleteApplicationsInput) (*ads.DeleteApplicationsOutput, error) {
			return c.Discovery.DeleteApplications(ctx, in)
		},
	}
	return op.Build(m)
}

// CreateTagsCommandBuilder constructs "ads create-tags".
func CreateTagsCommandBuilder(m meta.Meta) *cli.Command {
	op := &Operation[ads.CreateTagsInput, ads.CreateTagsOutput]{
		Service: "ads",
		Name:    "create-tags",
		API:     "CreateTags",
		Usage:   "tag configuration items",
		Flags:   []cli.Flag{configurationIDFlag(), tagFlag()},
		Examples: [][2]string{
			{"awsctl ads create-tags -i d-server-0a1b2c -i d-server-3d4e5f --tag wave=1", "tag two servers"},
		},
		Select:   "^ConfigurationIds",
		Resource: func(in *ads.CreateTagsInput) string { return idsResource("items", in.ConfigurationIds) },
		Bind: func(cmd *cli.Command, in *ads.CreateTagsInput) error {
			var err error
			if in.ConfigurationIds, err = requireSlice(cmd, "configuration-id"); err != nil {
				return err
			}
			if in.Tags, err = adsTags(cmd, "tag"); err != nil {
				return err
			}
			if len(in.Tags) == 0 {
				return fmt.Errorf("%w: at least one --tag is required", ErrInvalidValue)
			}
			return nil
		},
		Call: func(ctx context.Context, c *aws.Clients, in *ads.CreateTagsInput) (*ads.CreateTagsOutput, error) {
			return c.Discovery.CreateTags(ctx, in)
		},
	}
	return op.Build(m)
}

// DeleteTagsCommandBuilder constructs "ads delete-tags".
func DeleteTagsCommandBuilder(m meta.Meta) *cli.Command {
	op := &Operation[ads.DeleteTagsInput, ads.DeleteTagsOutput]{
		Service:     "ads",
		Name:        "delete-tags",
		API:         "DeleteTags",
		Usage:       "remove tags from configuration items, all tags when none are named",
		Flags:       []cli.Flag{configurationIDFlag(), tagFlag()},
		Select:      "^ConfigurationIds",
		Destructive: true,
		Resource:    func(in *ads.DeleteTagsInput) string { return idsResource("items", in.ConfigurationIds) },
		Bind: func(cmd *cli.Command, in *ads.DeleteTagsInput) error {
			var err error
			if in.ConfigurationIds, err = requireSlice(cmd, "configuration-id"); err != nil {
				return err
			}
			in.Tags, err = adsTags(cmd, "tag")
			return err
		},
		Call: func(ctx context.Context, c *aws.Clients, in *ads.DeleteTagsInput) (*ads.DeleteTagsOutput, error) {
			return c.Discovery.DeleteTags(ctx, in)
		},
	}
	return op.Build(m)
}

// DescribeTagsCommandBuilder constructs "ads describe-tags".
func DescribeTagsCommandBuilder(m meta.Meta) *cli.Command {
	op := &Operation[ads.DescribeTagsInput, ads.DescribeTagsOutput]{
		Service: "ads",
		Name:    "describe-tags",
		API:     "DescribeTags",
		Usage:   "list tags on configuration items",
		Flags:   []cli.Flag{serverFilterFlag(false)},
		Examples: [][2]string{
			{"awsctl ads describe-tags --server-filter tagKey:wave", "every item tagged with wave"},
		},
		Select: "Tags",
		Attrs:  "ConfigurationId,ConfigurationType,Key,Value",
		Bind: func(cmd *cli.Command, in *ads.DescribeTagsInput) error {
			var err error
			in.Filters, err = tagFilters(cmd)
			return err
		},
		Call: func(ctx context.Context, c *aws.Clients, in *ads.DescribeTagsInput) (*ads.DescribeTagsOutput, error) {
			return c.Discovery.DescribeTags(ctx, in)
		},
		Paging: &Paging[ads.DescribeTagsInput, ads.DescribeTagsOutput]{
			NextToken:   func(o *ads.DescribeTagsOutput) *string { return o.NextToken },
			SetToken:    func(i *ads.DescribeTagsInput, t *string) { i.NextToken = t },
			SetPageSize: func(i *ads.DescribeTagsInput, n int32) { i.MaxResults = awsv2.Int32(n) },
		},
	}
	return op.Build(m)
}

// DescribeConfigurationsCommandBuilder constructs "ads describe-configurations".
func DescribeConfigurationsCommandBuilder(m meta.Meta) *cli.Command {
	op := &Operation[ads.DescribeConfigurationsInput, ads.DescribeConfigurationsOutput]{
		Service: "ads",
		Name:    "describe-configurations",
		API:     "DescribeConfigurations",
		Usage:   "show the attributes of configuration items",
		Flags:   []cli.Flag{configurationIDFlag()},
		Select:  "Configurations",
		Bind: func(cmd *cli.Command, in *ads.DescribeConfigurationsInput) error {
			var err error
			in.ConfigurationIds, err = requireSlice(cmd, "configuration-id")
			return err
		},
		Call: func(ctx context.Context, c *aws.Clients, in *ads.DescribeConfigurationsInput) (*ads.DescribeConfigurationsOutput, error) {
			return c.Discovery.DescribeConfigurations(ctx, in)
		},
	}
	return op.Build(m)
}

// ListConfigurationsCommandBuilder constructs "ads list-configurations".
func ListConfigurationsCommandBuilder(m meta.Meta) *cli.Command {
	op := &Operation[ads.ListConfigurationsInput, ads.ListConfigurationsOutput]{
		Service: "ads",
		Name:    "list-configurations",
		API:     "ListConfigurations",
		Usage:   "list configuration items of one type",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "configuration-type",
				Usage: fmt.Sprintf("item type %v", types.ConfigurationItemType("").Values()),
				Validator: func(v string) error {
					return FlagValidators(v, EnumValidator(types.ConfigurationItemType("").Values()))
				},
			},
			serverFilterFlag(true),
			&cli.StringSliceFlag{
				Name:  "order-by",
				Usage: "server side sort field[:ASC|DESC], repeatable",
			},
		},
		Examples: [][2]string{
			{"awsctl ads list-configurations --configuration-type SERVER -a 'server.hostName:host,server.osName:os' -t", "servers with host and OS"},
			{"awsctl ads list-configurations --configuration-type SERVER --order-by server.hostName:DESC", "servers sorted by the service"},
		},
		Select: "Configurations",
		Bind: func(cmd *cli.Command, in *ads.ListConfigurationsInput) error {
			ct, err := requireString(cmd, "configuration-type")
			if err != nil {
				return err
			}
			in.ConfigurationType = types.ConfigurationItemType(*ct)
			if in.Filters, err = adsFilters(cmd); err != nil {
				return err
			}
			in.OrderBy, err = ParseOrderBy(cmd.StringSlice("order-by"))
			return err
		},
		Call: func(ctx context.Context, c *aws.Clients, in *ads.ListConfigurationsInput) (*ads.ListConfigurationsOutput, error) {
			return c.Discovery.ListConfigurations(ctx, in)
		},
		Paging: &Paging[ads.ListConfigurationsInput, ads.ListConfigurationsOutput]{
			NextToken:   func(o *ads.ListConfigurationsOutput) *string { return o.NextToken },
			SetToken:    func(i *ads.ListConfigurationsInput, t *string) { i.NextToken = t },
			SetPageSize: func(i *ads.ListConfigurationsInput, n int32) { i.MaxResults = awsv2.Int32(n) },
		},
	}
	return op.Build(m)
}

// ListServerNeighborsCommandBuilder constructs "ads list-server-neighbors".
func ListServerNeighborsCommandBuilder(m meta.Meta) *cli.Command {
	op := &Operation[ads.ListServerNeighborsInput, ads.ListServerNeighborsOutput]{
		Service: "ads",
		Name:    "list-server-neighbors",
		API:     "ListServerNeighbors",
		Usage:   "list the servers a server talks to",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "configuration-id", Aliases: []string{"i"}, Usage: "server configuration id"},
			&cli.StringSliceFlag{Name: "neighbor-configuration-id", Usage: "limit to these neighbors, repeatable"},
			&cli.BoolFlag{Name: "port-information-needed", Usage: "include ports in the result"},
		},
		Select:   "Neighbors",
		Attrs:    "SourceServerId,DestinationServerId,DestinationPort,TransportProtocol,ConnectionsCount",
		Resource: func(in *ads.ListServerNeighborsInput) string { return "server " + deref(in.ConfigurationId) },
		Bind: func(cmd *cli.Command, in *ads.ListServerNeighborsInput) error {
			var err error
			if in.ConfigurationId, err = requireString(cmd, "configuration-id"); err != nil {
				return err
			}
			in.NeighborConfigurationIds = cmd.StringSlice("neighbor-configuration-id")
			in.PortInformationNeeded = cmd.Bool("port-information-needed")
			return nil
		},
		Call: func(ctx context.Context, c *aws.Clients, in *ads.ListServerNeighborsInput) (*ads.ListServerNeighborsOutput, error) {
			return c.Discovery.ListServerNeighbors(ctx, in)
		},
		Paging: &Paging[ads.ListServerNeighborsInput, ads.ListServerNeighborsOutput]{
			NextToken:   func(o *ads.ListServerNeighborsOutput) *string { return o.NextToken },
			SetToken:    func(i *ads.ListServerNeighborsInput, t *string) { i.NextToken = t },
			SetPageSize: func(i *ads.ListServerNeighborsInput, n int32) { i.MaxResults = awsv2.Int32(n) },
		},
	}
	return op.Build(m)
}

// StartBatchDeleteConfigurationTaskCommandBuilder constructs
// "ads start-batch-delete-configuration-task".
func StartBatchDeleteConfigurationTaskCommandBuilder(m meta.Meta) *cli.Command {
	op := &Operation[ads.StartBatchDeleteConfigurationTaskInput, ads.StartBatchDeleteConfigurationTaskOutput]{
		Service: "ads",
		Name:    "start-batch-delete-configuration-task",
		API:     "StartBatchDeleteConfigurationTask",
		Usage:   "delete configuration items in the background",
		Flags: []cli.Flag{
			configurationIDFlag(),
			&cli.StringFlag{
				Name:  "configuration-type",
				Usage: fmt.Sprintf("item type %v", types.DeletionConfigurationItemType("").Values()),
				Value: string(types.DeletionConfigurationItemTypeServer),
				Validator: func(v string) error {
					return FlagValidators(v, EnumValidator(types.DeletionConfigurationItemType("").Values()))
				},
			},
		},
		Select:      "TaskId",
		Destructive: true,
		Resource: func(in *ads.StartBatchDeleteConfigurationTaskInput) string {
			return idsResource(string(in.ConfigurationType), in.ConfigurationIds)
		},
		Bind: func(cmd *cli.Command, in *ads.StartBatchDeleteConfigurationTaskInput) error {
			var err error
			in.ConfigurationType = types.DeletionConfigurationItemType(cmd.String("configuration-type"))
			in.ConfigurationIds, err = requireSlice(cmd, "configuration-id")
			return err
		},
		Call: func(ctx context.Context, c *aws.Clients, in *ads.StartBatchDeleteConfigurationTaskInput) (*ads.StartBatchDeleteConfigurationTaskOutput, error) {
			return c.Discovery.StartBatchDeleteConfigurationTask(ctx, in)
		},
	}
	return op.Build(m)
}

// DescribeBatchDeleteConfigurationTaskCommandBuilder constructs
// "ads describe-batch-delete-configuration-task".
func DescribeBatchDeleteConfigurationTaskCommandBuilder(m meta.Meta) *cli.Command {
	op := &Operation[ads.DescribeBatchDeleteConfigurationTaskInput, ads.DescribeBatchDeleteConfigurationTaskOutput]{
		Service: "ads",
		Name:    "describe-batch-delete-configuration-task",
		API:     "DescribeBatchDeleteConfigurationTask",
		Usage:   "show the progress of a batch delete task",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "task-id", Usage: "task id from start-batch-delete-configuration-task"},
		},
		Select:   "Task",
		Attrs:    "TaskId,Status,ConfigurationType,StartTime,EndTime",
		Resource: func(in *ads.DescribeBatchDeleteConfigurationTaskInput) string { return "task " + deref(in.TaskId) },
		Bind: func(cmd *cli.Command, in *ads.DescribeBatchDeleteConfigurationTaskInput) error {
			var err error
			in.TaskId, err = requireString(cmd, "task-id")
			return err
		},
		Call: func(ctx context.Context, c *aws.Clients, in *ads.DescribeBatchDeleteConfigurationTaskInput) (*ads.DescribeBatchDeleteConfigurationTaskOutput, error) {
			return c.Discovery.DescribeBatchDeleteConfigurationTask(ctx, in)
		},
	}
	return op.Build(m)
}

// GetDiscoverySummaryCommandBuilder constructs "ads get-discovery-summary".
func GetDiscoverySummaryCommandBuilder(m meta.Meta) *cli.Command {
	op := &Operation[ads.GetDiscoverySummaryInput, ads.GetDiscoverySummaryOutput]{
		Service: "ads",
		Name:    "get-discovery-summary",
		API:     "GetDiscoverySummary",
		Usage:   "summarize what has been discovered",
		Examples: [][2]string{
			{"awsctl ads get-discovery-summary -a Servers,Applications,ServersMappedToApplications -t", "headline counts"},
		},
		Call: func(ctx context.Context, c *aws.Clients, in *ads.GetDiscoverySummaryInput) (*ads.GetDiscoverySummaryOutput, error) {
			return c.Discovery.GetDiscoverySummary(ctx, in)
		},
	}
	return op.Build(m)
}
