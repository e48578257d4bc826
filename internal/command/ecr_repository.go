// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"fmt"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ecr"
	"github.com/aws/aws-sdk-go-v2/service/ecr/types"
	"github.com/urfave/cli/v3"

	"github.com/staranto/awsctlgo/internal/aws"
	"github.com/staranto/awsctlgo/internal/meta"
)

func repoResource[I any](get func(*I) *string) func(*I) string {
	return func(in *I) string { return "repository " + deref(get(in)) }
}

// CreateRepositoryCommandBuilder constructs "ecr create-repository".
func CreateRepositoryCommandBuilder(m meta.Meta) *cli.Command {
	op := &Operation[ecr.CreateRepositoryInput, ecr.CreateRepositoryOutput]{
		Service: "ecr",
		Name:    "create-repository",
		API:     "CreateRepository",
		Usage:   "create a repository",
		Flags: []cli.Flag{
			repositoryNameFlag(),
			registryIDFlag(),
			tagFlag(),
			imageTagMutabilityFlag(),
			&cli.BoolFlag{
				Name:  "scan-on-push",
				Usage: "scan images after they are pushed",
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
		},
		Examples: [][2]string{
			{"awsctl ecr create-repository -n web --scan-on-push", "create a repository that scans on push"},
			{"awsctl ecr create-repository -n api --image-tag-mutability IMMUTABLE --tag team=core", "immutable tags and a resource tag"},
		},
		Select:   "Repository",
		Attrs:    "RepositoryName,RepositoryUri,ImageTagMutability,CreatedAt",
		Resource: repoResource(func(in *ecr.CreateRepositoryInput) *string { return in.RepositoryName }),
		Bind: func(cmd *cli.Command, in *ecr.CreateRepositoryInput) error {
			var err error
			if in.RepositoryName, err = requireString(cmd, "repository-name"); err != nil {
				return err
			}
			in.RegistryId = optString(cmd, "registry-id")
			if in.Tags, err = ecrTags(cmd, "tag"); err != nil {
				return err
			}
			in.ImageTagMutability = types.ImageTagMutability(cmd.String("image-tag-mutability"))
			if cmd.IsSet("scan-on-push") {
				in.ImageScanningConfiguration = &types.ImageScanningConfiguration{ScanOnPush: cmd.Bool("scan-on-push")}
			}
			if et := cmd.String("encryption-type"); et != "" {
				in.EncryptionConfiguration = &types.EncryptionConfiguration{
					EncryptionType: types.EncryptionType(et),
					KmsKey:         optString(cmd, "kms-key"),
				}
			} else if cmd.String("kms-key") != "" {
				return fmt.Errorf("%w: --kms-key needs --encryption-type", ErrInvalidValue)
			}
			return nil
		},
		Call: func(ctx context.Context, c *aws.Clients, in *ecr.CreateRepositoryInput) (*ecr.CreateRepositoryOutput, error) {
			return c.ECR.CreateRepository(ctx, in)
		},
	}
	return op.Build(m)
}

// DeleteRepositoryCommandBuilder constructs "ecr delete-repository".
func DeleteRepositoryCommandBuilder(m meta.Meta) *cli.Command {
	op := &Operation[ecr.DeleteRepositoryInput, ecr.DeleteRepositoryOutput]{
		Service: "ecr",
		Name:    "delete-repository",
		API:     "DeleteRepository",
		Usage:   "delete a repository",
		Flags: []cli.Flag{
			repositoryNameFlag(),
			registryIDFlag(),
			&cli.BoolFlag{
				Name:  "force-delete",
				Usage: "delete the repository even if it still contains images",
			},
		},
		Select:      "Repository",
		Attrs:       "RepositoryName,RepositoryArn",
		Destructive: true,
		Resource:    repoResource(func(in *ecr.DeleteRepositoryInput) *string { return in.RepositoryName }),
		Bind: func(cmd *cli.Command, in *ecr.DeleteRepositoryInput) error {
			var err error
			if in.RepositoryName, err = requireString(cmd, "repository-name"); err != nil {
				return err
			}
			in.RegistryId = optString(cmd, "registry-id")
			in.Force = cmd.Bool("force-delete")
			return nil
		},
		Call: func(ctx context.Context, c *aws.Clients, in *ecr.DeleteRepositoryInput) (*ecr.DeleteRepositoryOutput, error) {
			return c.ECR.DeleteRepository(ctx, in)
		},
	}
	return op.Build(m)
}

// DescribeRepositoriesCommandBuilder constructs "ecr describe-repositories".
func DescribeRepositoriesCommandBuilder(m meta.Meta) *cli.Command {
	op := &Operation[ecr.DescribeRepositoriesInput, ecr.DescribeRepositoriesOutput]{
		Service: "ecr",
		Name:    "describe-repositories",
		API:     "DescribeRepositories",
		Usage:   "describe repositories",
		Flags: []cli.Flag{
			registryIDFlag(),
			&cli.StringSliceFlag{
				Name:    "repository-name",
				Aliases: []string{"n"},
				Usage:   "repository to describe, repeatable, all when omitted",
			},
		},
		Examples: [][2]string{
			{"awsctl ecr describe-repositories -t", "list repositories with titles"},
			{"awsctl ecr describe-repositories -f 'RepositoryName^team-' -s -CreatedAt", "newest team- repositories first"},
			{"awsctl ecr describe-repositories -a 'ImageScanningConfiguration.ScanOnPush:scan'", "add the scan-on-push setting"},
		},
		Select: "Repositories",
		Attrs:  "RepositoryName,RepositoryUri,ImageTagMutability,CreatedAt",
		Bind: func(cmd *cli.Command, in *ecr.DescribeRepositoriesInput) error {
			in.RegistryId = optString(cmd, "registry-id")
			in.RepositoryNames = cmd.StringSlice("repository-name")
			return nil
		},
		Call: func(ctx context.Context, c *aws.Clients, in *ecr.DescribeRepositoriesInput) (*ecr.DescribeRepositoriesOutput, error) {
			return c.ECR.DescribeRepositories(ctx, in)
		},
		Paging: &Paging[ecr.DescribeRepositoriesInput, ecr.DescribeRepositoriesOutput]{
			NextToken:   func(o *ecr.DescribeRepositoriesOutput) *string { return o.NextToken },
			SetToken:    func(i *ecr.DescribeRepositoriesInput, t *string) { i.NextToken = t },
			SetPageSize: func(i *ecr.DescribeRepositoriesInput, n int32) { i.MaxResults = awsv2.Int32(n) },
		},
	}
	return op.Build(m)
}

// GetRepositoryPolicyCommandBuilder constructs "ecr get-repository-policy".
func GetRepositoryPolicyCommandBuilder(m meta.Meta) *cli.Command {
	op := &Operation[ecr.GetRepositoryPolicyInput, ecr.GetRepositoryPolicyOutput]{
		Service:  "ecr",
		Name:     "get-repository-policy",
		API:      "GetRepositoryPolicy",
		Usage:    "show a repository's policy",
		Flags:    []cli.Flag{repositoryNameFlag(), registryIDFlag()},
		Resource: repoResource(func(in *ecr.GetRepositoryPolicyInput) *string { return in.RepositoryName }),
		Bind: func(cmd *cli.Command, in *ecr.GetRepositoryPolicyInput) error {
			var err error
			in.RegistryId = optString(cmd, "registry-id")
			in.RepositoryName, err = requireString(cmd, "repository-name")
			return err
		},
		Call: func(ctx context.Context, c *aws.Clients, in *ecr.GetRepositoryPolicyInput) (*ecr.GetRepositoryPolicyOutput, error) {
			return c.ECR.GetRepositoryPolicy(ctx, in)
		},
	}
	return op.Build(m)
}

// SetRepositoryPolicyCommandBuilder constructs "ecr set-repository-policy".
func SetRepositoryPolicyCommandBuilder(m meta.Meta) *cli.Command {
	op := &Operation[ecr.SetRepositoryPolicyInput, ecr.SetRepositoryPolicyOutput]{
		Service: "ecr",
		Name:    "set-repository-policy",
		API:     "SetRepositoryPolicy",
		Usage:   "apply a repository policy",
		Flags: []cli.Flag{
			repositoryNameFlag(),
			registryIDFlag(),
			&cli.StringFlag{
				Name:  "policy-text",
				Usage: "policy JSON or @file",
			},
			&cli.BoolFlag{
				Name:  "force-policy",
				Usage: "allow a policy that would lock out SetRepositoryPolicy",
			},
		},
		Examples: [][2]string{
			{"awsctl ecr set-repository-policy -n web --policy-text @policy.json --what-if", "preview the change"},
		},
		Resource: repoResource(func(in *ecr.SetRepositoryPolicyInput) *string { return in.RepositoryName }),
		Bind: func(cmd *cli.Command, in *ecr.SetRepositoryPolicyInput) error {
			var err error
			if in.RepositoryName, err = requireString(cmd, "repository-name"); err != nil {
				return err
			}
			in.RegistryId = optString(cmd, "registry-id")
			in.Force = cmd.Bool("force-policy")
			if in.PolicyText, err = optText(cmd, "policy-text"); err != nil {
				return err
			}
			if in.PolicyText == nil {
				return fmt.Errorf("%w: --policy-text is required", ErrInvalidValue)
			}
			return nil
		},
		Call: func(ctx context.Context, c *aws.Clients, in *ecr.SetRepositoryPolicyInput) (*ecr.SetRepositoryPolicyOutput, error) {
			return c.ECR.SetRepositoryPolicy(ctx, in)
		},
		WhatIf: func(ctx context.Context, c *aws.Clients, in *ecr.SetRepositoryPolicyInput) (string, string, error) {
			cur, err := c.ECR.GetRepositoryPolicy(ctx, &ecr.GetRepositoryPolicyInput{
				RepositoryName: in.RepositoryName,
				RegistryId:     in.RegistryId,
			})
			var notFound *types.RepositoryPolicyNotFoundException
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

// DeleteRepositoryPolicyCommandBuilder constructs "ecr delete-repository-policy".
func DeleteRepositoryPolicyCommandBuilder(m meta.Meta) *cli.Command {
	op := &Operation[ecr.DeleteRepositoryPolicyInput, ecr.DeleteRepositoryPolicyOutput]{
		Service:     "ecr",
		Name:        "delete-repository-policy",
		API:         "DeleteRepositoryPolicy",
		Usage:       "delete a repository's policy",
		Flags:       []cli.Flag{repositoryNameFlag(), registryIDFlag()},
		Destructive: true,
		Resource:    repoResource(func(in *ecr.DeleteRepositoryPolicyInput) *string { return in.RepositoryName }),
		Bind: func(cmd *cli.Command, in *ecr.DeleteRepositoryPolicyInput) error {
			var err error
			in.RegistryId = optString(cmd, "registry-id")
			in.RepositoryName, err = requireString(cmd, "repository-name")
			return err
		},
		Call: func(ctx context.Context, c *aws.Clients, in *ecr.DeleteRepositoryPolicyInput) (*ecr.DeleteRepositoryPolicyOutput, error) {
			return c.ECR.DeleteRepositoryPolicy(ctx, in)
		},
	}
	return op.Build(m)
}

func resourceArnFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "resource-arn",
		Usage: "ARN of the repository",
	}
}

// ListTagsForResourceCommandBuilder constructs "ecr list-tags-for-resource".
func ListTagsForResourceCommandBuilder(m meta.Meta) *cli.Command {
	op := &Operation[ecr.ListTagsForResourceInput, ecr.ListTagsForResourceOutput]{
		Service:  "ecr",
		Name:     "list-tags-for-resource",
		API:      "ListTagsForResource",
		Usage:    "list the tags of a repository",
		Flags:    []cli.Flag{resourceArnFlag()},
		Select:   "Tags",
		Attrs:    "Key,Value",
		Resource: func(in *ecr.ListTagsForResourceInput) string { return deref(in.ResourceArn) },
		Bind: func(cmd *cli.Command, in *ecr.ListTagsForResourceInput) error {
			var err error
			in.ResourceArn, err = requireString(cmd, "resource-arn")
			return err
		},
		Call: func(ctx context.Context, c *aws.Clients, in *ecr.ListTagsForResourceInput) (*ecr.ListTagsForResourceOutput, error) {
			return c.ECR.ListTagsForResource(ctx, in)
		},
	}
	return op.Build(m)
}

// TagResourceCommandBuilder constructs "ecr tag-resource".
func TagResourceCommandBuilder(m meta.Meta) *cli.Command {
	op := &Operation[ecr.TagResourceInput, ecr.TagResourceOutput]{
		Service:  "ecr",
		Name:     "tag-resource",
		API:      "TagResource",
		Usage:    "add tags to a repository",
		Flags:    []cli.Flag{resourceArnFlag(), tagFlag()},
		Select:   "^ResourceArn",
		Resource: func(in *ecr.TagResourceInput) string { return deref(in.ResourceArn) },
		Bind: func(cmd *cli.Command, in *ecr.TagResourceInput) error {
			var err error
			if in.ResourceArn, err = requireString(cmd, "resource-arn"); err != nil {
				return err
			}
			if in.Tags, err = ecrTags(cmd, "tag"); err != nil {
				return err
			}
			if len(in.Tags) == 0 {
				return fmt.Errorf("%w: at least one --tag is required", ErrInvalidValue)
			}
			return nil
		},
		Call: func(ctx context.Context, c *aws.Clients, in *ecr.TagResourceInput) (*ecr.TagResourceOutput, error) {
			return c.ECR.TagResource(ctx, in)
		},
	}
	return op.Build(m)
}

// UntagResourceCommandBuilder constructs "ecr untag-resource".
func UntagResourceCommandBuilder(m meta.Meta) *cli.Command {
	op := &Operation[ecr.UntagResourceInput, ecr.UntagResourceOutput]{
		Service: "ecr",
		Name:    "untag-resource",
		API:     "UntagResource",
		Usage:   "remove tags from a repository",
		Flags: []cli.Flag{
			resourceArnFlag(),
			&cli.StringSliceFlag{
				Name:  "tag-key",
				Usage: "tag key to remove, repeatable",
			},
		},
		Select:      "^ResourceArn",
		Destructive: true,
		Resource:    func(in *ecr.UntagResourceInput) string { return deref(in.ResourceArn) },
		Bind: func(cmd *cli.Command, in *ecr.UntagResourceInput) error {
			var err error
			if in.ResourceArn, err = requireString(cmd, "resource-arn"); err != nil {
				return err
			}
			in.TagKeys, err = requireSlice(cmd, "tag-key")
			return err
		},
		Call: func(ctx context.Context, c *aws.Clients, in *ecr.UntagResourceInput) (*ecr.UntagResourceOutput, error) {
			return c.ECR.UntagResource(ctx, in)
		},
	}
	return op.Build(m)
}

// PutImageTagMutabilityCommandBuilder constructs "ecr put-image-tag-mutability".
func PutImageTagMutabilityCommandBuilder(m meta.Meta) *cli.Command {
	op := &Operation[ecr.PutImageTagMutabilityInput, ecr.PutImageTagMutabilityOutput]{
		Service:  "ecr",
		Name:     "put-image-tag-mutability",
		API:      "PutImageTagMutability",
		Usage:    "set a repository's tag mutability",
		Flags:    []cli.Flag{repositoryNameFlag(), registryIDFlag(), imageTagMutabilityFlag()},
		Resource: repoResource(func(in *ecr.PutImageTagMutabilityInput) *string { return in.RepositoryName }),
		Bind: func(cmd *cli.Command, in *ecr.PutImageTagMutabilityInput) error {
			var err error
			if in.RepositoryName, err = requireString(cmd, "repository-name"); err != nil {
				return err
			}
			in.RegistryId = optString(cmd, "registry-id")
			if cmd.String("image-tag-mutability") == "" {
				return fmt.Errorf("%w: --image-tag-mutability is required", ErrInvalidValue)
			}
			in.ImageTagMutability = types.ImageTagMutability(cmd.String("image-tag-mutability"))
			return nil
		},
		Call: func(ctx context.Context, c *aws.Clients, in *ecr.PutImageTagMutabilityInput) (*ecr.PutImageTagMutabilityOutput, error) {
			return c.ECR.PutImageTagMutability(ctx, in)
		},
	}
	return op.Build(m)
}

// PutImageScanningConfigurationCommandBuilder constructs
// "ecr put-image-scanning-configuration".
func PutImageScanningConfigurationCommandBuilder(m meta.Meta) *cli.Command {
	op := &Operation[ecr.PutImageScanningConfigurationInput, ecr.PutImageScanningConfigurationOutput]{
		Service: "ecr",
		Name:    "put-image-scanning-configuration",
		API:     "PutImageScanningConfiguration",
		Usage:   "turn scan on push on or off for a repository",
		Flags: []cli.Flag{
			repositoryNameFlag(),
			registryIDFlag(),
			&cli.BoolWithInverseFlag{
				Name:  "scan-on-push",
				Usage: "scan images after they are pushed",
			},
		},
		Resource: repoResource(func(in *ecr.PutImageScanningConfigurationInput) *string { return in.RepositoryName }),
		Bind: func(cmd *cli.Command, in *ecr.PutImageScanningConfigurationInput) error {
			var err error
			if in.RepositoryName, err = requireString(cmd, "repository-name"); err != nil {
				return err
			}
			in.RegistryId = optString(cmd, "registry-id")
			if !cmd.IsSet("scan-on-push") {
				return fmt.Errorf("%w: --scan-on-push or --no-scan-on-push is required", ErrInvalidValue)
			}
			in.ImageScanningConfiguration = &types.ImageScanningConfiguration{ScanOnPush: cmd.Bool("scan-on-push")}
			return nil
		},
		Call: func(ctx context.Context, c *aws.Clients, in *ecr.PutImageScanningConfigurationInput) (*ecr.PutImageScanningConfigurationOutput, error) {
			return c.ECR.PutImageScanningConfiguration(ctx, in)
		},
	}
	return op.Build(m)
}

// BatchGetRepositoryScanningConfigurationCommandBuilder constructs
// "ecr batch-get-repository-scanning-configuration".
func BatchGetRepositoryScanningConfigurationCommandBuilder(m meta.Meta) *cli.Command {
	op := &Operation[ecr.BatchGetRepositoryScanningConfigurationInput, ecr.BatchGetRepositoryScanningConfigurationOutput]{
		Service: "ecr",
		Name:    "batch-get-repository-scanning-configuration",
		API:     "BatchGetRepositoryScanningConfiguration",
		Usage:   "show the effective scanning configuration of repositories",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "repository-name",
				Aliases: []string{"n"},
				Usage:   "repository name, repeatable",
			},
		},
		Select: "ScanningConfigurations",
		Attrs:  "RepositoryName,ScanFrequency,ScanOnPush",
		Bind: func(cmd *cli.Command, in *ecr.BatchGetRepositoryScanningConfigurationInput) error {
			var err error
			in.RepositoryNames, err = requireSlice(cmd, "repository-name")
			return err
		},
		Call: func(ctx context.Context, c *aws.Clients, in *ecr.BatchGetRepositoryScanningConfigurationInput) (*ecr.BatchGetRepositoryScanningConfigurationOutput, error) {
			return c.ECR.BatchGetRepositoryScanningConfiguration(ctx, in)
		},
		Failures: func(o *ecr.BatchGetRepositoryScanningConfigurationOutput) []string {
			out := make([]string, 0, len(o.Failures))
			for _, f := range o.Failures {
				out = append(out, fmt.Sprintf("repository %s: %s: %s", deref(f.RepositoryName), f.FailureCode, deref(f.FailureReason)))
			}
			return out
		},
	}
	return op.Build(m)
}
