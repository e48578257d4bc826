// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"fmt"
	"strings"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/applicationdiscoveryservice/types"
	"github.com/urfave/cli/v3"

	"github.com/staranto/awsctlgo/internal/meta"
)

// ADSCommands returns every ads operation command.
func ADSCommands(m meta.Meta) []*cli.Command {
	return []*cli.Command{
		AssociateConfigurationItemsToApplicationCommandBuilder(m),
		BatchDeleteAgentsCommandBuilder(m),
		BatchDeleteImportDataCommandBuilder(m),
		CreateApplicationCommandBuilder(m),
		CreateTagsCommandBuilder(m),
		DeleteApplicationsCommandBuilder(m),
		DeleteTagsCommandBuilder(m),
		DescribeAgentsCommandBuilder(m),
		DescribeBatchDeleteConfigurationTaskCommandBuilder(m),
		DescribeConfigurationsCommandBuilder(m),
		DescribeContinuousExportsCommandBuilder(m),
		DescribeExportConfigurationsCommandBuilder(m),
		DescribeExportTasksCommandBuilder(m),
		DescribeImportTasksCommandBuilder(m),
		DescribeTagsCommandBuilder(m),
		DisassociateConfigurationItemsFromApplicationCommandBuilder(m),
		ExportConfigurationsCommandBuilder(m),
		GetDiscoverySummaryCommandBuilder(m),
		ListConfigurationsCommandBuilder(m),
		ListServerNeighborsCommandBuilder(m),
		StartBatchDeleteConfigurationTaskCommandBuilder(m),
		StartContinuousExportCommandBuilder(m),
		StartDataCollectionByAgentIdsCommandBuilder(m),
		StartExportTaskCommandBuilder(m),
		StartImportTaskCommandBuilder(m),
		StopContinuousExportCommandBuilder(m),
		StopDataCollectionByAgentIdsCommandBuilder(m),
		UpdateApplicationCommandBuilder(m),
	}
}

func configurationIDFlag() cli.Flag {
	return &cli.StringSliceFlag{
		Name:    "configuration-id",
		Aliases: []string{"i"},
		Usage:   "configuration item id, repeatable",
	}
}

func agentIDFlag() cli.Flag {
	return &cli.StringSliceFlag{
		Name:  "agent-id",
		Usage: "agent or connector id, repeatable",
	}
}

func serverFilterFlag(withCondition bool) cli.Flag {
	usage := "server side filter name:v1|v2, repeatable"
	if withCondition {
		usage = "server side filter name:CONDITION:v1|v2, repeatable"
	}
	return &cli.StringSliceFlag{
		Name:  "server-filter",
		Usage: usage,
	}
}

func applicationIDFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "application-configuration-id",
		Usage: "configuration id of the application",
	}
}

func adsTags(cmd *cli.Command, name string) ([]types.Tag, error) {
	kvs, err := ParseTags(cmd.StringSlice(name))
	if err != nil {
		return nil, err
	}
	var tags []types.Tag
	for _, kv := range kvs {
		tags = append(tags, types.Tag{Key: awsv2.String(kv.Key), Value: awsv2.String(kv.Value)})
	}
	return tags, nil
}

// adsFilters parses --server-filter into the generic ADS Filter shape.
func adsFilters(cmd *cli.Command) ([]types.Filter, error) {
	sfs, err := ParseServerFilters(cmd.StringSlice("server-filter"), true)
	if err != nil {
		return nil, err
	}
	var filters []types.Filter
	for _, sf := range sfs {
		filters = append(filters, types.Filter{
			Name:      awsv2.String(sf.Name),
			Condition: awsv2.String(sf.Condition),
			Values:    sf.Values,
		})
	}
	return filters, nil
}

func exportFilters(cmd *cli.Command) ([]types.ExportFilter, error) {
	sfs, err := ParseServerFilters(cmd.StringSlice("server-filter"), true)
	if err != nil {
		return nil, err
	}
	var filters []types.ExportFilter
	for _, sf := range sfs {
		filters = append(filters, types.ExportFilter{
			Name:      awsv2.String(sf.Name),
			Condition: awsv2.String(sf.Condition),
			Values:    sf.Values,
		})
	}
	return filters, nil
}

func tagFilters(cmd *cli.Command) ([]types.TagFilter, error) {
	sfs, err := ParseServerFilters(cmd.StringSlice("server-filter"), false)
	if err != nil {
		return nil, err
	}
	var filters []types.TagFilter
	for _, sf := range sfs {
		filters = append(filters, types.TagFilter{
			Name:   awsv2.String(sf.Name),
			Values: sf.Values,
		})
	}
	return filters, nil
}

func importTaskFilters(cmd *cli.Command) ([]types.ImportTaskFilter, error) {
	sfs, err := ParseServerFilters(cmd.StringSlice("server-filter"), false)
	if err != nil {
		return nil, err
	}
	var filters []types.ImportTaskFilter
	for _, sf := range sfs {
		name, err := ParseEnum("server-filter", sf.Name, types.ImportTaskFilterName("").Values())
		if err != nil {
			return nil, err
		}
		filters = append(filters, types.ImportTaskFilter{Name: name, Values: sf.Values})
	}
	return filters, nil
}

// ParseOrderBy parses field[:ASC|DESC] sort keys for list-configurations.
func ParseOrderBy(specs []string) ([]types.OrderByElement, error) {
	var out []types.OrderByElement
	for _, spec := range specs {
		field, order, _ := strings.Cut(spec, ":")
		if field == "" {
			return nil, fmt.Errorf("%w: --order-by %q has no field", ErrInvalidValue, spec)
		}
		e := types.OrderByElement{FieldName: awsv2.String(field)}
		if order != "" {
			o, err := ParseEnum("order-by", strings.ToUpper(order), types.OrderString("").Values())
			if err != nil {
				return nil, err
			}
			e.SortOrder = o
		}
		out = append(out, e)
	}
	return out, nil
}

func idsResource(kind string, ids []string) string {
	return kind + " " + strings.Join(ids, ",")
}
