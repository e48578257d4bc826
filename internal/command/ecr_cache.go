// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ecr"
	"github.com/aws/aws-sdk-go-v2/service/ecr/types"
	"github.com/urfave/cli/v3"

	"github.com/staranto/awsctlgo/internal/aws"
	"github.com/staranto/awsctlgo/internal/meta"
)

const cacheRuleAttrs = "EcrRepositoryPrefix:Prefix,UpstreamRegistryUrl,UpstreamRegistry,CreatedAt"

func ecrRepositoryPrefixFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "ecr-repository-prefix",
		Usage: "repository namespace the rule applies to",
	}
}

func credentialArnFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "credential-arn",
		Usage: "Secrets Manager secret holding the upstream credentials",
	}
}

func prefixResource[I any](get func(*I) *string) func(*I) string {
	return func(in *I) string { return "prefix " + deref(get(in)) }
}

// CreatePullThroughCacheRuleCommandBuilder constructs
// "ecr create-pull-through-cache-rule".
func CreatePullThroughCacheRuleCommandBuilder(m meta.Meta) *cli.Command {
	op := &Operation[ecr.CreatePullThroughCacheRuleInput, ecr.CreatePullThroughCacheRuleOutput]{
		Service: "ecr",
		Name:    "create-pull-through-cache-rule",
		API:     "CreatePullThroughCacheRule",
		Usage:   "cache an upstream registry under a repository prefix",
		Flags: []cli.Flag{
			ecrRepositoryPrefixFlag(),
			registryIDFlag(),
			credentialArnFlag(),
			&cli.StringFlag{
				Name:  "upstream-registry-url",
				Usage: "upstream registry URL",
			},
			&cli.StringFlag{
				Name:  "upstream-registry",
				Usage: fmt.Sprintf("upstream registry kind %v", types.UpstreamRegistry("").Values()),
				Validator: func(v string) error {
					return FlagValidators(v, EnumValidator(types.UpstreamRegistry("").Values()))
				},
			},
		},
		Examples: [][2]string{
			{"awsctl ecr create-pull-through-cache-rule --ecr-repository-prefix ecr-public --upstream-registry-url public.ecr.aws", "cache ECR Public"},
		},
		Resource: prefixResource(func(in *ecr.CreatePullThroughCacheRuleInput) *string { return in.EcrRepositoryPrefix }),
		Bind: func(cmd *cli.Command, in *ecr.CreatePullThroughCacheRuleInput) error {
			var err error
			if in.EcrRepositoryPrefix, err = requireString(cmd, "ecr-repository-prefix"); err != nil {
				return err
			}
			if in.UpstreamRegistryUrl, err = requireString(cmd, "upstream-registry-url"); err != nil {
				return err
			}
			in.RegistryId = optString(cmd, "registry-id")
			in.CredentialArn = optString(cmd, "credential-arn")
			in.UpstreamRegistry = types.UpstreamRegistry(cmd.String("upstream-registry"))
			return nil
		},
		Call: func(ctx context.Context, c *aws.Clients, in *ecr.CreatePullThroughCacheRuleInput) (*ecr.CreatePullThroughCacheRuleOutput, error) {
			return c.ECR.CreatePullThroughCacheRule(ctx, in)
		},
	}
	return op.Build(m)
}

// DeletePullThroughCacheRuleCommandBuilder constructs
// "ecr delete-pull-through-cache-rule".
func DeletePullThroughCacheRuleCommandBuilder(m meta.Meta) *cli.Command {
	op := &Operation[ecr.DeletePullThroughCacheRuleInput, ecr.DeletePullThroughCacheRuleOutput]{
		Service:     "ecr",
		Name:        "delete-pull-through-cache-rule",
		API:         "DeletePullThroughCacheRule",
		Usage:       "delete a pull through cache rule",
		Flags:       []cli.Flag{ecrRepositoryPrefixFlag(), registryIDFlag()},
		Destructive: true,
		Resource:    prefixResource(func(in *ecr.DeletePullThroughCacheRuleInput) *string { return in.EcrRepositoryPrefix }),
		Bind: func(cmd *cli.Command, in *ecr.DeletePullThroughCacheRuleInput) error {
			var err error
			in.RegistryId = optString(cmd, "registry-id")
			in.EcrRepositoryPrefix, err = requireString(cmd, "ecr-repository-prefix")
			return err
		},
		Call: func(ctx context.Context, c *aws.Clients, in *ecr.DeletePullThroughCacheRuleInput) (*ecr.DeletePullThroughCacheRuleOutput, error) {
			return c.ECR.DeletePullThroughCacheRule(ctx, in)
		},
	}
	return op.Build(m)
}

// DescribePullThroughCacheRulesCommandBuilder constructs
// "ecr describe-pull-through-cache-rules".
func DescribePullThroughCacheRulesCommandBuilder(m meta.Meta) *cli.Command {
	op := &Operation[ecr.DescribePullThroughCacheRulesInput, ecr.DescribePullThroughCacheRulesOutput]{
		Service: "ecr",
		Name:    "describe-pull-through-cache-rules",
		API:     "DescribePullThroughCacheRules",
		Usage:   "list pull through cache rules",
		Flags: []cli.Flag{
			registryIDFlag(),
			&cli.StringSliceFlag{
				Name:  "ecr-repository-prefix",
				Usage: "rule prefix to describe, repeatable",
			},
		},
		Select: "PullThroughCacheRules",
		Attrs:  cacheRuleAttrs,
		Bind: func(cmd *cli.Command, in *ecr.DescribePullThroughCacheRulesInput) error {
			in.RegistryId = optString(cmd, "registry-id")
			in.EcrRepositoryPrefixes = cmd.StringSlice("ecr-repository-prefix")
			return nil
		},
		Call: func(ctx context.Context, c *aws.Clients, in *ecr.DescribePullThroughCacheRulesInput) (*ecr.DescribePullThroughCacheRulesOutput, error) {
			return c.ECR.DescribePullThroughCacheRules(ctx, in)
		},
		Paging: &Paging[ecr.DescribePullThroughCacheRulesInput, ecr.DescribePullThroughCacheRulesOutput]{
			NextToken:   func(o *ecr.DescribePullThroughCacheRulesOutput) *string { return o.NextToken },
			SetToken:    func(i *ecr.DescribePullThroughCacheRulesInput, t *string) { i.NextToken = t },
			SetPageSize: func(i *ecr.DescribePullThroughCacheRulesInput, n int32) { i.MaxResults = awsv2.Int32(n) },
		},
	}
	return op.Build(m)
}

// UpdatePullThroughCacheRuleCommandBuilder constructs
// "ecr update-pull-through-cache-rule".
func UpdatePullThroughCacheRuleCommandBuilder(m meta.Meta) *cli.Command {
	op := &Operation[ecr.UpdatePullThroughCacheRuleInput, ecr.UpdatePullThroughCacheRuleOutput]{
		Service:  "ecr",
		Name:     "update-pull-through-cache-rule",
		API:      "UpdatePullThroughCacheRule",
		Usage:    "change the credentials of a pull through cache rule",
		Flags:    []cli.Flag{ecrRepositoryPrefixFlag(), registryIDFlag(), credentialArnFlag()},
		Resource: prefixResource(func(in *ecr.UpdatePullThroughCacheRuleInput) *string { return in.EcrRepositoryPrefix }),
		Bind: func(cmd *cli.Command, in *ecr.UpdatePullThroughCacheRuleInput) error {
			var err error
			if in.EcrRepositoryPrefix, err = requireString(cmd, "ecr-repository-prefix"); err != nil {
				return err
			}
			in.RegistryId = optString(cmd, "registry-id")
			in.CredentialArn, err = requireString(cmd, "credential-arn")
			return err
		},
		Call: func(ctx context.Context, c *aws.Clients, in *ecr.UpdatePullThroughCacheRuleInput) (*ecr.UpdatePullThroughCacheRuleOutput, error) {
			return c.ECR.UpdatePullThroughCacheRule(ctx, in)
		},
	}
	return op.Build(m)
}

// ValidatePullThroughCacheRuleCommandBuilder constructs
// "ecr validate-pull-through-cache-rule".
func ValidatePullThroughCacheRuleCommandBuilder(m meta.Meta) *cli.Command {
	op := &Operation[ecr.ValidatePullThroughCacheRuleInput, ecr.ValidatePullThroughCacheRuleOutput]{
		Service:  "ecr",
		Name:     "validate-pull-through-cache-rule",
		API:      "ValidatePullThroughCacheRule",
		Usage:    "check that a rule can reach its upstream registry",
		Flags:    []cli.Flag{ecrRepositoryPrefixFlag(), registryIDFlag()},
		Resource: prefixResource(func(in *ecr.ValidatePullThroughCacheRuleInput) *string { return in.EcrRepositoryPrefix }),
		Bind: func(cmd *cli.Command, in *ecr.ValidatePullThroughCacheRuleInput) error {
			var err error
			in.RegistryId = optString(cmd, "registry-id")
			in.EcrRepositoryPrefix, err = requireString(cmd, "ecr-repository-prefix")
			return err
		},
		Call: func(ctx context.Context, c *aws.Clients, in *ecr.ValidatePullThroughCacheRuleInput) (*ecr.ValidatePullThroughCacheRuleOutput, error) {
			return c.ECR.ValidatePullThroughCacheRule(ctx, in)
		},
	}
	return op.Build(m)
}

// creationTemplate holds the settings shared by the create and update
// template commands.
type creationTemplate struct {
	AppliedFor         []types.RCTAppliedFor
	Description        *string
	Encryption         *types.EncryptionConfigurationForRepositoryCreationTemplate
	ImageTagMutability types.ImageTagMutability
	LifecyclePolicy    *string
	RepositoryPolicy   *string
	ResourceTags       []types.Tag
}

func templatePrefixFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "prefix",
		Usage: "repository prefix the template applies to, ROOT for all",
	}
}

func creationTemplateFlags() []cli.Flag {
	return []cli.Flag{
		templatePrefixFlag(),
		imageTagMutabilityFlag(),
		&cli.StringSliceFlag{
			Name:  "applied-for",
			Usage: fmt.Sprintf("repository creation source %v, repeatable", types.RCTAppliedFor("").Values()),
		},
		&cli.StringFlag{
			Name:  "description",
			Usage: "template description",
		},
		&cli.StringFlag{
			Name:  "encryption-type",
			Usage: fmt.Sprintf("encryption type %v", types.EncryptionType("").Values()),
			Validator: func(v string) error {
				return FlagValidators(v, EnumValidator(types.EncryptionType("").Values()))
			},
		},
		&cli.StringFlag{
			Name:  "kms-key",
			Usage: "KMS key for KMS encryption",
		},
		&cli.StringFlag{
			Name:  "lifecycle-policy",
			Usage: "lifecycle policy JSON or @file",
		},
		&cli.StringFlag{
			Name:  "repository-policy",
			Usage: "repository policy JSON or @file",
		},
		&cli.StringSliceFlag{
			Name:  "resource-tag",
			Usage: "tag for created repositories as Key=Value, repeatable",
		},
	}
}

func bindCreationTemplate(cmd *cli.Command) (*creationTemplate, error) {
	var (
		t   creationTemplate
		err error
	)
	if t.AppliedFor, err = ParseEnums("applied-for", cmd.StringSlice("applied-for"), types.RCTAppliedFor("").Values()); err != nil {
		return nil, err
	}
	t.Description = optString(cmd, "description")
	t.ImageTagMutability = types.ImageTagMutability(cmd.String("image-tag-mutability"))
	if et := cmd.String("encryption-type"); et != "" {
		t.Encryption = &types.EncryptionConfigurationForRepositoryCreationTemplate{
			EncryptionType: types.EncryptionType(et),
			KmsKey:         optString(cmd, "kms-key"),
		}
	}
	if t.LifecyclePolicy, err = optText(cmd, "lifecycle-policy"); err != nil {
		return nil, err
	}
	if t.RepositoryPolicy, err = optText(cmd, "repository-policy"); err != nil {
		return nil, err
	}
	if t.ResourceTags, err = ecrTags(cmd, "resource-tag"); err != nil {
		return nil, err
	}
	return &t, nil
}

const creationTemplateAttrs = "Prefix,AppliedFor,ImageTagMutability,Description"

// CreateRepositoryCreationTemplateCommandBuilder constructs
// "ecr create-repository-creation-template".
func CreateRepositoryCreationTemplateCommandBuilder(m meta.Meta) *cli.Command {
	op := &Operation[ecr.CreateRepositoryCreationTemplateInput, ecr.CreateRepositoryCreationTemplateOutput]{
		Service: "ecr",
		Name:    "create-repository-creation-template",
		API:     "CreateRepositoryCreationTemplate",
		Usage:   "create settings for repositories ECR creates on your behalf",
		Flags:   creationTemplateFlags(),
		Examples: [][2]string{
			{"awsctl ecr create-repository-creation-template --prefix cache --applied-for PULL_THROUGH_CACHE --image-tag-mutability IMMUTABLE", "immutable pull through cache repositories"},
		},
		Select:   "RepositoryCreationTemplate",
		Attrs:    creationTemplateAttrs,
		Resource: prefixResource(func(in *ecr.CreateRepositoryCreationTemplateInput) *string { return in.Prefix }),
		Bind: func(cmd *cli.Command, in *ecr.CreateRepositoryCreationTemplateInput) error {
			var err error
			if in.Prefix, err = requireString(cmd, "prefix"); err != nil {
				return err
			}
			t, err := bindCreationTemplate(cmd)
			if err != nil {
				return err
			}
			if len(t.AppliedFor) == 0 {
				return fmt.Errorf("%w: at least one --applied-for is required", ErrInvalidValue)
			}
			in.AppliedFor = t.AppliedFor
			in.Description = t.Description
			in.EncryptionConfiguration = t.Encryption
			in.ImageTagMutability = t.ImageTagMutability
			in.LifecyclePolicy = t.LifecyclePolicy
			in.RepositoryPolicy = t.RepositoryPolicy
			in.ResourceTags = t.ResourceTags
			return nil
		},
		Call: func(ctx context.Context, c *aws.Clients, in *ecr.CreateRepositoryCreationTemplateInput) (*ecr.CreateRepositoryCreationTemplateOutput, error) {
			return c.ECR.CreateRepositoryCreationTemplate(ctx, in)
		},
	}
	return op.Build(m)
}

// UpdateRepositoryCreationTemplateCommandBuilder constructs
// "ecr update-repository-creation-template".
func UpdateRepositoryCreationTemplateCommandBuilder(m meta.Meta) *cli.Command {
	op := &Operation[ecr.UpdateRepositoryCreationTemplateInput, ecr.UpdateRepositoryCreationTemplateOutput]{
		Service:  "ecr",
		Name:     "update-repository-creation-template",
		API:      "UpdateRepositoryCreationTemplate",
		Usage:    "change a repository creation template",
		Flags:    creationTemplateFlags(),
		Select:   "RepositoryCreationTemplate",
		Attrs:    creationTemplateAttrs,
		Resource: prefixResource(func(in *ecr.UpdateRepositoryCreationTemplateInput) *string { return in.Prefix }),
		Bind: func(cmd *cli.Command, in *ecr.UpdateRepositoryCreationTemplateInput) error {
			var err error
			if in.Prefix, err = requireString(cmd, "prefix"); err != nil {
				return err
			}
			t, err := bindCreationTemplate(cmd)
			if err != nil {
				return err
			}
			in.AppliedFor = t.AppliedFor
			in.Description = t.Description
			in.EncryptionConfiguration = t.Encryption
			in.ImageTagMutability = t.ImageTagMutability
			in.LifecyclePolicy = t.LifecyclePolicy
			in.RepositoryPolicy = t.RepositoryPolicy
			in.ResourceTags = t.ResourceTags
			return nil
		},
		Call: func(ctx context.Context, c *aws.Clients, in *ecr.UpdateRepositoryCreationTemplateInput) (*ecr.UpdateRepositoryCreationTemplateOutput, error) {
			return c.ECR.UpdateRepositoryCreationTemplate(ctx, in)
		},
	}
	return op.Build(m)
}

// DeleteRepositoryCreationTemplateCommandBuilder constructs
// "ecr delete-repository-creation-template".
func DeleteRepositoryCreationTemplateCommandBuilder(m meta.Meta) *cli.Command {
	op := &Operation[ecr.DeleteRepositoryCreationTemplateInput, ecr.DeleteRepositoryCreationTemplateOutput]{
		Service:     "ecr",
		Name:        "delete-repository-creation-template",
		API:         "DeleteRepositoryCreationTemplate",
		Usage:       "delete a repository creation template",
		Flags:       []cli.Flag{templatePrefixFlag()},
		Select:      "RepositoryCreationTemplate",
		Attrs:       creationTemplateAttrs,
		Destructive: true,
		Resource:    prefixResource(func(in *ecr.DeleteRepositoryCreationTemplateInput) *string { return in.Prefix }),
		Bind: func(cmd *cli.Command, in *ecr.DeleteRepositoryCreationTemplateInput) error {
			var err error
			in.Prefix, err = requireString(cmd, "prefix")
			return err
		},
		Call: func(ctx context.Context, c *aws.Clients, in *ecr.DeleteRepositoryCreationTemplateInput) (*ecr.DeleteRepositoryCreationTemplateOutput, error) {
			return c.ECR.DeleteRepositoryCreationTemplate(ctx, in)
		},
	}
	return op.Build(m)
}

// DescribeRepositoryCreationTemplatesCommandBuilder constructs
// "ecr describe-repository-creation-templates".
func DescribeRepositoryCreationTemplatesCommandBuilder(m meta.Meta) *cli.Command {
	op := &Operation[ecr.DescribeRepositoryCreationTemplatesInput, ecr.DescribeRepositoryCreationTemplatesOutput]{
		Service: "ecr",
		Name:    "describe-repository-creation-templates",
		API:     "DescribeRepositoryCreationTemplates",
		Usage:   "list repository creation templates",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:  "prefix",
				Usage: "template prefix to describe, repeatable",
			},
		},
		Select: "RepositoryCreationTemplates",
		Attrs:  creationTemplateAttrs,
		Bind: func(cmd *cli.Command, in *ecr.DescribeRepositoryCreationTemplatesInput) error {
			in.Prefixes = cmd.StringSlice("prefix")
			return nil
		},
		Call: func(ctx context.Context, c *aws.Clients, in *ecr.DescribeRepositoryCreationTemplatesInput) (*ecr.DescribeRepositoryCreationTemplatesOutput, error) {
			return c.ECR.DescribeRepositoryCreationTemplates(ctx, in)
		},
		Paging: &Paging[ecr.DescribeRepositoryCreationTemplatesInput, ecr.DescribeRepositoryCreationTemplatesOutput]{
			NextToken:   func(o *ecr.DescribeRepositoryCreationTemplatesOutput) *string { return o.NextToken },
			SetToken:    func(i *ecr.DescribeRepositoryCreationTemplatesInput, t *string) { i.NextToken = t },
			SetPageSize: func(i *ecr.DescribeRepositoryCreationTemplatesInput, n int32) { i.MaxResults = awsv2.Int32(n) },
		},
	}
	return op.Build(m)
}
