// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"fmt"
	"strings"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ecr"
	"github.com/aws/aws-sdk-go-v2/service/ecr/types"
	"github.com/urfave/cli/v3"

	"github.com/staranto/awsctlgo/internal/aws"
	"github.com/staranto/awsctlgo/internal/meta"
)

// ParseScanningRules parses FREQUENCY:filter,filter rules.  Filters are
// wildcard repository patterns, "*" when omitted.
func ParseScanningRules(specs []string) ([]types.RegistryScanningRule, error) {
	rules := make([]types.RegistryScanningRule, 0, len(specs))
	for _, spec := range specs {
		freq, filters, _ := strings.Cut(spec, ":")
		f, err := ParseEnum("rule", strings.ToUpper(freq), types.ScanFrequency("").Values())
		if err != nil {
			return nil, err
		}
		if f == "" {
			return nil, fmt.Errorf("%w: rule %q has no scan frequency", ErrInvalidValue, spec)
		}
		if filters == "" {
			filters = "*"
		}

		rule := types.RegistryScanningRule{ScanFrequency: f}
		for _, pattern := range strings.Split(filters, ",") {
			pattern = strings.TrimSpace(pattern)
			if pattern == "" {
				continue
			}
			rule.RepositoryFilters = append(rule.RepositoryFilters, types.ScanningRepositoryFilter{
				Filter:     awsv2.String(pattern),
				FilterType: types.ScanningRepositoryFilterTypeWildcard,
			})
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// ParseReplicationDestinations parses region[:registry] destinations.
func ParseReplicationDestinations(specs []string) ([]types.ReplicationDestination, error) {
	dests := make([]types.ReplicationDestination, 0, len(specs))
	for _, spec := range specs {
		region, registry, _ := strings.Cut(spec, ":")
		if region == "" {
			return nil, fmt.Errorf("%w: destination %q must be region[:registry]", ErrInvalidValue, spec)
		}
		d := types.ReplicationDestination{Region: awsv2.String(region)}
		if registry != "" {
			d.RegistryId = awsv2.String(registry)
		}
		dests = append(dests, d)
	}
	return dests, nil
}

// DescribeRegistryCommandBuilder constructs "ecr describe-registry".
func DescribeRegistryCommandBuilder(m meta.Meta) *cli.Command {
	op := &Operation[ecr.DescribeRegistryInput, ecr.DescribeRegistryOutput]{
		Service: "ecr",
		Name:    "describe-registry",
		API:     "DescribeRegistry",
		Usage:   "describe the registry and its replication configuration",
		Call: func(ctx context.Context, c *aws.Clients, in *ecr.DescribeRegistryInput) (*ecr.DescribeRegistryOutput, error) {
			return c.ECR.DescribeRegistry(ctx, in)
		},
	}
	return op.Build(m)
}

// GetRegistryPolicyCommandBuilder constructs "ecr get-registry-policy".
func GetRegistryPolicyCommandBuilder(m meta.Meta) *cli.Command {
	op := &Operation[ecr.GetRegistryPolicyInput, ecr.GetRegistryPolicyOutput]{
		Service: "ecr",
		Name:    "get-registry-policy",
		API:     "GetRegistryPolicy",
		Usage:   "show the registry permissions policy",
		Call: func(ctx context.Context, c *aws.Clients, in *ecr.GetRegistryPolicyInput) (*ecr.GetRegistryPolicyOutput, error) {
			return c.ECR.GetRegistryPolicy(ctx, in)
		},
	}
	return op.Build(m)
}

// PutRegistryPolicyCommandBuilder constructs "ecr put-registry-policy".
func PutRegistryPolicyCommandBuilder(m meta.Meta) *cli.Command {
	op := &Operation[ecr.PutRegistryPolicyInput, ecr.PutRegistryPolicyOutput]{
		Service: "ecr",
		Name:    "put-registry-policy",
		API:     "PutRegistryPolicy",
		Usage:   "apply the registry permissions policy",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "policy-text",
				Usage: "policy JSON or @file",
			},
		},
		Examples: [][2]string{
			{"awsctl ecr put-registry-policy --policy-text @registry.json --what-if -c", "colored diff against the current policy"},
		},
		Bind: func(cmd *cli.Command, in *ecr.PutRegistryPolicyInput) error {
			var err error
			if in.PolicyText, err = optText(cmd, "policy-text"); err != nil {
				return err
			}
			if in.PolicyText == nil {
				return fmt.Errorf("%w: --policy-text is required", ErrInvalidValue)
			}
			return nil
		},
		Call: func(ctx context.Context, c *aws.Clients, in *ecr.PutRegistryPolicyInput) (*ecr.PutRegistryPolicyOutput, error) {
			return c.ECR.PutRegistryPolicy(ctx, in)
		},
		WhatIf: func(ctx context.Context, c *aws.Clients, in *ecr.PutRegistryPolicyInput) (string, string, error) {
			cur, err := c.ECR.GetRegistryPolicy(ctx, &ecr.GetRegistryPolicyInput{})
			var notFound *types.RegistryPolicyNotFoundException
			if errors.As(err, &notFound) {
				return "", deref(in.PolicyText), nil
			}
			if err != nil {
				return "", "", err
			}
			return deref(cur.PolicyText), deref(in.PolicyText), nil
		},
	}
	return op.Build(m)
}

// DeleteRegistryPolicyCommandBuilder constructs "ecr delete-registry-policy".
func DeleteRegistryPolicyCommandBuilder(m meta.Meta) *cli.Command {
	op := &Operation[ecr.DeleteRegistryPolicyInput, ecr.DeleteRegistryPolicyOutput]{
		Service:     "ecr",
		Name:        "delete-registry-policy",
		API:         "DeleteRegistryPolicy",
		Usage:       "delete the registry permissions policy",
		Destructive: true,
		Resource:    func(*ecr.DeleteRegistryPolicyInput) string { return "registry policy" },
		Call: func(ctx context.Context, c *aws.Clients, in *ecr.DeleteRegistryPolicyInput) (*ecr.DeleteRegistryPolicyOutput, error) {
			return c.ECR.DeleteRegistryPolicy(ctx, in)
		},
	}
	return op.Build(m)
}

func accountSettingNameFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "name",
		Usage: "account setting name, e.g. BASIC_SCAN_TYPE_VERSION",
	}
}

// GetAccountSettingCommandBuilder constructs "ecr get-account-setting".
func GetAccountSettingCommandBuilder(m meta.Meta) *cli.Command {
	op := &Operation[ecr.GetAccountSettingInput, ecr.GetAccountSettingOutput]{
		Service:  "ecr",
		Name:     "get-account-setting",
		API:      "GetAccountSetting",
		Usage:    "show an account setting",
		Flags:    []cli.Flag{accountSettingNameFlag()},
		Resource: func(in *ecr.GetAccountSettingInput) string { return "setting " + deref(in.Name) },
		Bind: func(cmd *cli.Command, in *ecr.GetAccountSettingInput) error {
			var err error
			in.Name, err = requireString(cmd, "name")
			return err
		},
		Call: func(ctx context.Context, c *aws.Clients, in *ecr.GetAccountSettingInput) (*ecr.GetAccountSettingOutput, error) {
			return c.ECR.GetAccountSetting(ctx, in)
		},
	}
	return op.Build(m)
}

// PutAccountSettingCommandBuilder constructs "ecr put-account-setting".
func PutAccountSettingCommandBuilder(m meta.Meta) *cli.Command {
	op := &Operation[ecr.PutAccountSettingInput, ecr.PutAccountSettingOutput]{
		Service: "ecr",
		Name:    "put-account-setting",
		API:     "PutAccountSetting",
		Usage:   "change an account setting",
		Flags: []cli.Flag{
			accountSettingNameFlag(),
			&cli.StringFlag{
				Name:  "value",
				Usage: "new setting value",
			},
		},
		Resource: func(in *ecr.PutAccountSettingInput) string { return "setting " + deref(in.Name) },
		Bind: func(cmd *cli.Command, in *ecr.PutAccountSettingInput) error {
			var err error
			if in.Name, err = requireString(cmd, "name"); err != nil {
				return err
			}
			in.Value, err = requireString(cmd, "value")
			return err
		},
		Call: func(ctx context.Context, c *aws.Clients, in *ecr.PutAccountSettingInput) (*ecr.PutAccountSettingOutput, error) {
			return c.ECR.PutAccountSetting(ctx, in)
		},
	}
	return op.Build(m)
}

// GetRegistryScanningConfigurationCommandBuilder constructs
// "ecr get-registry-scanning-configuration".
func GetRegistryScanningConfigurationCommandBuilder(m meta.Meta) *cli.Command {
	op := &Operation[ecr.GetRegistryScanningConfigurationInput, ecr.GetRegistryScanningConfigurationOutput]{
		Service: "ecr",
		Name:    "get-registry-scanning-configuration",
		API:     "GetRegistryScanningConfiguration",
		Usage:   "show the registry scanning configuration",
		Select:  "ScanningConfiguration",
		Attrs:   "ScanType,Rules",
		Call: func(ctx context.Context, c *aws.Clients, in *ecr.GetRegistryScanningConfigurationInput) (*ecr.GetRegistryScanningConfigurationOutput, error) {
			return c.ECR.GetRegistryScanningConfiguration(ctx, in)
		},
	}
	return op.Build(m)
}

// PutRegistryScanningConfigurationCommandBuilder constructs
// "ecr put-registry-scanning-configuration".
func PutRegistryScanningConfigurationCommandBuilder(m meta.Meta) *cli.Command {
	op := &Operation[ecr.PutRegistryScanningConfigurationInput, ecr.PutRegistryScanningConfigurationOutput]{
		Service: "ecr",
		Name:    "put-registry-scanning-configuration",
		API:     "PutRegistryScanningConfiguration",
		Usage:   "replace the registry scanning configuration",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "scan-type",
				Usage: fmt.Sprintf("scan type %v", types.ScanType("").Values()),
				Validator: func(v string) error {
					return FlagValidators(v, EnumValidator(types.ScanType("").Values()))
				},
			},
			&cli.StringSliceFlag{
				Name:  "rule",
				Usage: "FREQUENCY:pattern,pattern scanning rule, repeatable",
			},
		},
		Examples: [][2]string{
			{"awsctl ecr put-registry-scanning-configuration --scan-type ENHANCED --rule 'CONTINUOUS_SCAN:prod-*' --rule SCAN_ON_PUSH", "continuous scans for prod, scan on push for the rest"},
		},
		Select: "RegistryScanningConfiguration",
		Attrs:  "ScanType,Rules",
		Bind: func(cmd *cli.Command, in *ecr.PutRegistryScanningConfigurationInput) error {
			var err error
			in.ScanType = types.ScanType(cmd.String("scan-type"))
			in.Rules, err = ParseScanningRules(cmd.StringSlice("rule"))
			return err
		},
		Call: func(ctx context.Context, c *aws.Clients, in *ecr.PutRegistryScanningConfigurationInput) (*ecr.PutRegistryScanningConfigurationOutput, error) {
			return c.ECR.PutRegistryScanningConfiguration(ctx, in)
		},
	}
	return op.Build(m)
}

// PutReplicationConfigurationCommandBuilder constructs
// "ecr put-replication-configuration".
func PutReplicationConfigurationCommandBuilder(m meta.Meta) *cli.Command {
	op := &Operation[ecr.PutReplicationConfigurationInput, ecr.PutReplicationConfigurationOutput]{
		Service: "ecr",
		Name:    "put-replication-configuration",
		API:     "PutReplicationConfiguration",
		Usage:   "replace the registry replication configuration",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:  "destination",
				Usage: "region[:registry] to replicate to, repeatable",
			},
			&cli.StringSliceFlag{
				Name:  "repository-prefix",
				Usage: "replicate only repositories with this prefix, repeatable",
			},
		},
		Examples: [][2]string{
			{"awsctl ecr put-replication-configuration --destination us-west-2 --destination eu-west-1:123456789012 --repository-prefix prod-", "replicate prod- repositories to two places"},
		},
		Select: "ReplicationConfiguration",
		Bind: func(cmd *cli.Command, in *ecr.PutReplicationConfigurationInput) error {
			specs, err := requireSlice(cmd, "destination")
			if err != nil {
				return err
			}
			dests, err := ParseReplicationDestinations(specs)
			if err != nil {
				return err
			}

			rule := types.ReplicationRule{Destinations: dests}
			for _, prefix := range cmd.StringSlice("repository-prefix") {
				rule.RepositoryFilters = append(rule.RepositoryFilters, types.RepositoryFilter{
					Filter:     awsv2.String(prefix),
					FilterType: types.RepositoryFilterTypePrefixMatch,
				})
			}
			in.ReplicationConfiguration = &types.ReplicationConfiguration{Rules: []types.ReplicationRule{rule}}
			return nil
		},
		Call: func(ctx context.Context, c *aws.Clients, in *ecr.PutReplicationConfigurationInput) (*ecr.PutReplicationConfigurationOutput, error) {
			return c.ECR.PutReplicationConfiguration(ctx, in)
		},
	}
	return op.Build(m)
}
