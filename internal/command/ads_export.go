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

const exportInfoAttrs = "ExportId,ExportStatus,ExportRequestTime,StatusMessage"

func exportIDsFlag() cli.Flag {
	return &cli.StringSliceFlag{
		Name:  "export-id",
		Usage: "export id, repeatable",
	}
}

// DescribeContinuousExportsCommandBuilder constructs
// "ads describe-continuous-exports".
func DescribeContinuousExportsCommandBuilder(m meta.Meta) *cli.Command {
	op := &Operation[ads.DescribeContinuousExportsInput, ads.DescribeContinuousExportsOutput]{
		Service: "ads",
		Name:    "describe-continuous-exports",
		API:     "DescribeContinuousExports",
		Usage:   "list continuous exports",
		Flags:   []cli.Flag{exportIDsFlag()},
		Select:  "Descriptions",
		Attrs:   "ExportId,Status,DataSource,S3Bucket,StartTime",
		Bind: func(cmd *cli.Command, in *ads.DescribeContinuousExportsInput) error {
			in.ExportIds = cmd.StringSlice("export-id")
			return nil
		},
		Call: func(ctx context.Context, c *aws.Clients, in *ads.DescribeContinuousExportsInput) (*ads.DescribeContinuousExportsOutput, error) {
			return c.Discovery.DescribeContinuousExports(ctx, in)
		},
		Paging: &Paging[ads.DescribeContinuousExportsInput, ads.DescribeContinuousExportsOutput]{
			NextToken:   func(o *ads.DescribeContinuousExportsOutput) *string { return o.NextToken },
			SetToken:    func(i *ads.DescribeContinuousExportsInput, t *string) { i.NextToken = t },
			SetPageSize: func(i *ads.DescribeContinuousExportsInput, n int32) { i.MaxResults = awsv2.Int32(n) },
		},
	}
	return op.Build(m)
}

// StartContinuousExportCommandBuilder constructs "ads start-continuous-export".
func StartContinuousExportCommandBuilder(m meta.Meta) *cli.Command {
	op := &Operation[ads.StartContinuousExportInput, ads.StartContinuousExportOutput]{
		Service: "ads",
		Name:    "start-continuous-export",
		API:     "StartContinuousExport",
		Usage:   "stream agent data to S3 through Kinesis Data Firehose",
		Call: func(ctx context.Context, c *aws.Clients, in *ads.StartContinuousExportInput) (*ads.StartContinuousExportOutput, error) {
			return c.Discovery.StartContinuousExport(ctx, in)
		},
	}
	return op.Build(m)
}

// StopContinuousExportCommandBuilder constructs "ads stop-continuous-export".
func StopContinuousExportCommandBuilder(m meta.Meta) *cli.Command {
	op := &Operation[ads.StopContinuousExportInput, ads.StopContinuousExportOutput]{
		Service: "ads",
		Name:    "stop-continuous-export",
		API:     "StopContinuousExport",
		Usage:   "stop a continuous export",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "export-id", Usage: "continuous export id"},
		},
		Destructive: true,
		Resource:    func(in *ads.StopContinuousExportInput) string { return "export " + deref(in.ExportId) },
		Bind: func(cmd *cli.Command, in *ads.StopContinuousExportInput) error {
			var err error
			in.ExportId, err = requireString(cmd, "export-id")
			return err
		},
		Call: func(ctx context.Context, c *aws.Clients, in *ads.StopContinuousExportInput) (*ads.StopContinuousExportOutput, error) {
			return c.Discovery.StopContinuousExport(ctx, in)
		},
	}
	return op.Build(m)
}

// DescribeExportConfigurationsCommandBuilder constructs
// "ads describe-export-configurations".
func DescribeExportConfigurationsCommandBuilder(m meta.Meta) *cli.Command {
	op := &Operation[ads.DescribeExportConfigurationsInput, ads.DescribeExportConfigurationsOutput]{
		Service:    "ads",
		Name:       "describe-export-configurations",
		API:        "DescribeExportConfigurations",
		Usage:      "list configuration exports",
		Flags:      []cli.Flag{exportIDsFlag()},
		Select:     "ExportsInfo",
		Attrs:      exportInfoAttrs,
		Deprecated: "use describe-export-tasks",
		Bind: func(cmd *cli.Command, in *ads.DescribeExportConfigurationsInput) error {
			in.ExportIds = cmd.StringSlice("export-id")
			return nil
		},
		Call: func(ctx context.Context, c *aws.Clients, in *ads.DescribeExportConfigurationsInput) (*ads.DescribeExportConfigurationsOutput, error) {
			return c.Discovery.DescribeExportConfigurations(ctx, in)
		},
		Paging: &Paging[ads.DescribeExportConfigurationsInput, ads.DescribeExportConfigurationsOutput]{
			NextToken:   func(o *ads.DescribeExportConfigurationsOutput) *string { return o.NextToken },
			SetToken:    func(i *ads.DescribeExportConfigurationsInput, t *string) { i.NextToken = t },
			SetPageSize: func(i *ads.DescribeExportConfigurationsInput, n int32) { i.MaxResults = awsv2.Int32(n) },
		},
	}
	return op.Build(m)
}

// ExportConfigurationsCommandBuilder constructs "ads export-configurations".
func ExportConfigurationsCommandBuilder(m meta.Meta) *cli.Command {
	op := &Operation[ads.ExportConfigurationsInput, ads.ExportConfigurationsOutput]{
		Service:    "ads",
		Name:       "export-configurations",
		API:        "ExportConfigurations",
		Usage:      "export every discovered configuration item",
		Select:     "ExportId",
		Deprecated: "use start-export-task",
		Call: func(ctx context.Context, c *aws.Clients, in *ads.ExportConfigurationsInput) (*ads.ExportConfigurationsOutput, error) {
			return c.Discovery.ExportConfigurations(ctx, in)
		},
	}
	return op.Build(m)
}

// DescribeExportTasksCommandBuilder constructs "ads describe-export-tasks".
func DescribeExportTasksCommandBuilder(m meta.Meta) *cli.Command {
	op := &Operation[ads.DescribeExportTasksInput, ads.DescribeExportTasksOutput]{
		Service: "ads",
		Name:    "describe-export-tasks",
		API:     "DescribeExportTasks",
		Usage:   "list export tasks",
		Flags:   []cli.Flag{exportIDsFlag(), serverFilterFlag(true)},
		Examples: [][2]string{
			{"awsctl ads describe-export-tasks -s -ExportRequestTime --max-items 1 --select ExportsInfo.ConfigurationsDownloadUrl", "download URL of the newest export"},
		},
		Select: "ExportsInfo",
		Attrs:  exportInfoAttrs,
		Bind: func(cmd *cli.Command, in *ads.DescribeExportTasksInput) error {
			var err error
			in.ExportIds = cmd.StringSlice("export-id")
			in.Filters, err = exportFilters(cmd)
			return err
		},
		Call: func(ctx context.Context, c *aws.Clients, in *ads.DescribeExportTasksInput) (*ads.DescribeExportTasksOutput, error) {
			return c.Discovery.DescribeExportTasks(ctx, in)
		},
		Paging: &Paging[ads.DescribeExportTasksInput, ads.DescribeExportTasksOutput]{
			NextToken:   func(o *ads.DescribeExportTasksOutput) *string { return o.NextToken },
			SetToken:    func(i *ads.DescribeExportTasksInput, t *string) { i.NextToken = t },
			SetPageSize: func(i *ads.DescribeExportTasksInput, n int32) { i.MaxResults = awsv2.Int32(n) },
		},
	}
	return op.Build(m)
}

// StartExportTaskCommandBuilder constructs "ads start-export-task".
func StartExportTaskCommandBuilder(m meta.Meta) *cli.Command {
	op := &Operation[ads.StartExportTaskInput, ads.StartExportTaskOutput]{
		Service: "ads",
		Name:    "start-export-task",
		API:     "StartExportTask",
		Usage:   "export discovered data to S3",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:  "export-data-format",
				Usage: fmt.Sprintf("format %v, repeatable", types.ExportDataFormat("").Values()),
			},
			serverFilterFlag(true),
			&cli.StringFlag{Name: "start-time", Usage: "earliest data to export, RFC3339"},
			&cli.StringFlag{Name: "end-time", Usage: "latest data to export, RFC3339"},
		},
		Examples: [][2]string{
			{"awsctl ads start-export-task --server-filter 'agentIds:EQUALS:o-0123456789abcdef0' --start-time 2025-01-01", "one agent's data since January"},
		},
		Select: "ExportId",
		Bind: func(cmd *cli.Command, in *ads.StartExportTaskInput) error {
			var err error
			if in.ExportDataFormat, err = ParseEnums("export-data-format", cmd.StringSlice("export-data-format"), types.ExportDataFormat("").Values()); err != nil {
				return err
			}
			if in.Filters, err = exportFilters(cmd); err != nil {
				return err
			}
			if in.StartTime, err = ParseTime("start-time", cmd.String("start-time")); err != nil {
				return err
			}
			if in.EndTime, err = ParseTime("end-time", cmd.String("end-time")); err != nil {
				return err
			}
			if in.StartTime != nil && in.EndTime != nil && in.EndTime.Before(*in.StartTime) {
				return fmt.Errorf("%w: --end-time is before --start-time", ErrInvalidValue)
			}
			return nil
		},
		Call: func(ctx context.Context, c *aws.Clients, in *ads.StartExportTaskInput) (*ads.StartExportTaskOutput, error) {
			return c.Discovery.StartExportTask(ctx, in)
		},
	}
	return op.Build(m)
}
