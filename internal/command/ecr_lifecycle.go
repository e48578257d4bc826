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

func lifecyclePolicyTextFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "lifecycle-policy-text",
		Usage: "lifecycle policy JSON or @file",
	}
}

// GetLifecyclePolicyCommandBuilder constructs "ecr get-lifecycle-policy".
func GetLifecyclePolicyCommandBuilder(m meta.Meta) *cli.Command {
	op := &Operation[ecr.GetLifecyclePolicyInput, ecr.GetLifecyclePolicyOutput]{
		Service: "ecr",
		Name:    "get-lifecycle-policy",
		API:     "GetLifecyclePolicy",
		Usage:   "show a repository's lifecycle policy",
		Flags:   []cli.Flag{repositoryNameFlag(), registryIDFlag()},
		Examples: [][2]string{
			{"awsctl ecr get-lifecycle-policy -n web --select LifecyclePolicyText -o raw", "just the policy document"},
		},
		Resource: repoResource(func(in *ecr.GetLifecyclePolicyInput) *string { return in.RepositoryName }),
		Bind: func(cmd *cli.Command, in *ecr.GetLifecyclePolicyInput) error {
			var err error
			in.RegistryId = optString(cmd, "registry-id")
			in.RepositoryName, err = requireString(cmd, "repository-name")
			return err
		},
		Call: func(ctx context.Context, c *aws.Clients, in *ecr.GetLifecyclePolicyInput) (*ecr.GetLifecyclePolicyOutput, error) {
			return c.ECR.GetLifecyclePolicy(ctx, in)
		},
	}
	return op.Build(m)
}

// PutLifecyclePolicyCommandBuilder constructs "ecr put-lifecycle-policy".
func PutLifecyclePolicyCommandBuilder(m meta.Meta) *cli.Command {
	op := &Operation[ecr.PutLifecyclePolicyInput, ecr.PutLifecyclePolicyOutput]{
		Service:  "ecr",
		Name:     "put-lifecycle-policy",
		API:      "PutLifecyclePolicy",
		Usage:    "apply a lifecycle policy to a repository",
		Flags:    []cli.Flag{repositoryNameFlag(), registryIDFlag(), lifecyclePolicyTextFlag()},
		Resource: repoResource(func(in *ecr.PutLifecyclePolicyInput) *string { return in.RepositoryName }),
		Bind: func(cmd *cli.Command, in *ecr.PutLifecyclePolicyInput) error {
			var err error
			if in.RepositoryName, err = requireString(cmd, "repository-name"); err != nil {
				return err
			}
			in.RegistryId = optString(cmd, "registry-id")
			if in.LifecyclePolicyText, err = optText(cmd, "lifecycle-policy-text"); err != nil {
				return err
			}
			if in.LifecyclePolicyText == nil {
				return fmt.Errorf("%w: --lifecycle-policy-text is required", ErrInvalidValue)
			}
			return nil
		},
		Call: func(ctx context.Context, c *aws.Clients, in *ecr.PutLifecyclePolicyInput) (*ecr.PutLifecyclePolicyOutput, error) {
			return c.ECR.PutLifecyclePolicy(ctx, in)
		},
		WhatIf: func(ctx context.Context, c *aws.Clients, in *ecr.PutLifecyclePolicyInput) (string, string, error) {
			cur, err := c.ECR.GetLifecyclePolicy(ctx, &ecr.GetLifecyclePolicyInput{
				RepositoryName: in.RepositoryName,
				RegistryId:     in.RegistryId,
			})
			var notFound *types.LifecyclePolicyNotFoundException
			if errors.As(err, &notFound) {
				return "", deref(in.LifecyclePolicyText), nil
			}
			if err != nil {
				return "", "", err
			}
			return deref(cur.LifecyclePolicyText), deref(in.LifecyclePolicyText), nil
		},
	}
	return op.Build(m)
}

// DeleteLifecyclePolicyCommandBuilder constructs "ecr delete-lifecycle-policy".
func DeleteLifecyclePolicyCommandBuilder(m meta.Meta) *cli.Command {
	op := &Operation[ecr.DeleteLifecyclePolicyInput, ecr.DeleteLifecyclePolicyOutput]{
		Service:     "ecr",
		Name:        "delete-lifecycle-policy",
		API:         "DeleteLifecyclePolicy",
		Usage:       "delete a repository's lifecycle policy",
		Flags:       []cli.Flag{repositoryNameFlag(), registryIDFlag()},
		Destructive: true,
		Resource:    repoResource(func(in *ecr.DeleteLifecyclePolicyInput) *string { return in.RepositoryName }),
		Bind: func(cmd *cli.Command, in *ecr.DeleteLifecyclePolicyInput) error {
			var err error
			in.RegistryId = optString(cmd, "registry-id")
			in.RepositoryName, err = requireString(cmd, "repository-name")
			return err
		},
		Call: func(ctx context.Context, c *aws.Clients, in *ecr.DeleteLifecyclePolicyInput) (*ecr.DeleteLifecyclePolicyOutput, error) {
			return c.ECR.DeleteLifecyclePolicy(ctx, in)
		},
	}
	return op.Build(m)
}

// StartLifecyclePolicyPreviewCommandBuilder constructs
// "ecr start-lifecycle-policy-preview".
func StartLifecyclePolicyPreviewCommandBuilder(m meta.Meta) *cli.Command {
	op := &Operation[ecr.StartLifecyclePolicyPreviewInput, ecr.StartLifecyclePolicyPreviewOutput]{
		Service:  "ecr",
		Name:     "start-lifecycle-policy-preview",
		API:      "StartLifecyclePolicyPreview",
		Usage:    "preview what a lifecycle policy would expire",
		Flags:    []cli.Flag{repositoryNameFlag(), registryIDFlag(), lifecyclePolicyTextFlag()},
		Resource: repoResource(func(in *ecr.StartLifecyclePolicyPreviewInput) *string { return in.RepositoryName }),
		Bind: func(cmd *cli.Command, in *ecr.StartLifecyclePolicyPreviewInput) error {
			var err error
			if in.RepositoryName, err = requireString(cmd, "repository-name"); err != nil {
				return err
			}
			in.RegistryId = optString(cmd, "registry-id")
			in.LifecyclePolicyText, err = optText(cmd, "lifecycle-policy-text")
			return err
		},
		Call: func(ctx context.Context, c *aws.Clients, in *ecr.StartLifecyclePolicyPreviewInput) (*ecr.StartLifecyclePolicyPreviewOutput, error) {
			return c.ECR.StartLifecyclePolicyPreview(ctx, in)
		},
	}
	return op.Build(m)
}

// GetLifecyclePolicyPreviewCommandBuilder constructs
// "ecr get-lifecycle-policy-preview".
func GetLifecyclePolicyPreviewCommandBuilder(m meta.Meta) *cli.Command {
	flags := append([]cli.Flag{repositoryNameFlag(), registryIDFlag(), tagStatusFlag()}, imageIDFlags()...)

	op := &Operation[ecr.GetLifecyclePolicyPreviewInput, ecr.GetLifecyclePolicyPreviewOutput]{
		Service: "ecr",
		Name:    "get-lifecycle-policy-preview",
		API:     "GetLifecyclePolicyPreview",
		Usage:   "show the results of a lifecycle policy preview",
		Flags:   flags,
		Examples: [][2]string{
			{"awsctl ecr get-lifecycle-policy-preview -n web --select Status", "is the preview finished"},
		},
		Select:   "PreviewResults",
		Attrs:    "ImageTags,ImageDigest,ImagePushedAt,Action.Type:Action,AppliedRulePriority:Rule",
		Resource: repoResource(func(in *ecr.GetLifecyclePolicyPreviewInput) *string { return in.RepositoryName }),
		Bind: func(cmd *cli.Command, in *ecr.GetLifecyclePolicyPreviewInput) error {
			var err error
			if in.RepositoryName, err = requireString(cmd, "repository-name"); err != nil {
				return err
			}
			in.RegistryId = optString(cmd, "registry-id")
			if ts := cmd.String("tag-status"); ts != "" {
				in.Filter = &types.LifecyclePolicyPreviewFilter{TagStatus: types.TagStatus(ts)}
			}
			in.ImageIds, err = imageIDs(cmd, false)
			return err
		},
		Call: func(ctx context.Context, c *aws.Clients, in *ecr.GetLifecyclePolicyPreviewInput) (*ecr.GetLifecyclePolicyPreviewOutput, error) {
			return c.ECR.GetLifecyclePolicyPreview(ctx, in)
		},
		Paging: &Paging[ecr.GetLifecyclePolicyPreviewInput, ecr.GetLifecyclePolicyPreviewOutput]{
			NextToken:   func(o *ecr.GetLifecyclePolicyPreviewOutput) *string { return o.NextToken },
			SetToken:    func(i *ecr.GetLifecyclePolicyPreviewInput, t *string) { i.NextToken = t },
			SetPageSize: func(i *ecr.GetLifecyclePolicyPreviewInput, n int32) { i.MaxResults = awsv2.Int32(n) },
		},
	}
	return op.Build(m)
}
