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

const imageDetailAttrs = "ImageTags,ImageDigest,ImageSizeInBytes:Size:h,ImagePushedAt"

// BatchDeleteImageCommandBuilder constructs "ecr batch-delete-image".
func BatchDeleteImageCommandBuilder(m meta.Meta) *cli.Command {
	op := &Operation[ecr.BatchDeleteImageInput, ecr.BatchDeleteImageOutput]{
		Service: "ecr",
		Name:    "batch-delete-image",
		API:     "BatchDeleteImage",
		Usage:   "delete images from a repository",
		Flags:   append([]cli.Flag{repositoryNameFlag(), registryIDFlag()}, imageIDFlags()...),
		Examples: [][2]string{
			{"awsctl ecr batch-delete-image -n web --image v1 --image v2 --force", "delete two tags without asking"},
		},
		Select:      "ImageIds",
		Attrs:       "ImageTag,ImageDigest",
		Destructive: true,
		Resource: func(in *ecr.BatchDeleteImageInput) string {
			return fmt.Sprintf("%d image(s) from repository %s", len(in.ImageIds), deref(in.RepositoryName))
		},
		Bind: func(cmd *cli.Command, in *ecr.BatchDeleteImageInput) error {
			var err error
			if in.RepositoryName, err = requireString(cmd, "repository-name"); err != nil {
				return err
			}
			in.RegistryId = optString(cmd, "registry-id")
			in.ImageIds, err = imageIDs(cmd, true)
			return err
		},
		Call: func(ctx context.Context, c *aws.Clients, in *ecr.BatchDeleteImageInput) (*ecr.BatchDeleteImageOutput, error) {
			return c.ECR.BatchDeleteImage(ctx, in)
		},
		Failures: func(o *ecr.BatchDeleteImageOutput) []string { return imageFailures(o.Failures) },
	}
	return op.Build(m)
}

// BatchGetImageCommandBuilder constructs "ecr batch-get-image".
func BatchGetImageCommandBuilder(m meta.Meta) *cli.Command {
	flags := append([]cli.Flag{repositoryNameFlag(), registryIDFlag()}, imageIDFlags()...)
	flags = append(flags, &cli.StringSliceFlag{
		Name:  "accepted-media-type",
		Usage: "manifest media type to accept, repeatable",
	})

	op := &Operation[ecr.BatchGetImageInput, ecr.BatchGetImageOutput]{
		Service: "ecr",
		Name:    "batch-get-image",
		API:     "BatchGetImage",
		Usage:   "get image manifests",
		Flags:   flags,
		Examples: [][2]string{
			{"awsctl ecr batch-get-image -n web --image latest --select Images.ImageManifest -o raw", "print the manifest of latest"},
		},
		Select: "Images",
		Attrs:  "ImageId.ImageTag:Tag,ImageId.ImageDigest:Digest,ImageManifestMediaType",
		Resource: func(in *ecr.BatchGetImageInput) string {
			return "repository " + deref(in.RepositoryName)
		},
		Bind: func(cmd *cli.Command, in *ecr.BatchGetImageInput) error {
			var err error
			if in.RepositoryName, err = requireString(cmd, "repository-name"); err != nil {
				return err
			}
			in.RegistryId = optString(cmd, "registry-id")
			in.AcceptedMediaTypes = cmd.StringSlice("accepted-media-type")
			in.ImageIds, err = imageIDs(cmd, true)
			return err
		},
		Call: func(ctx context.Context, c *aws.Clients, in *ecr.BatchGetImageInput) (*ecr.BatchGetImageOutput, error) {
			return c.ECR.BatchGetImage(ctx, in)
		},
		Failures: func(o *ecr.BatchGetImageOutput) []string { return imageFailures(o.Failures) },
	}
	return op.Build(m)
}

// DescribeImageReplicationStatusCommandBuilder constructs
// "ecr describe-image-replication-status".
func DescribeImageReplicationStatusCommandBuilder(m meta.Meta) *cli.Command {
	op := &Operation[ecr.DescribeImageReplicationStatusInput, ecr.DescribeImageReplicationStatusOutput]{
		Service: "ecr",
		Name:    "describe-image-replication-status",
		API:     "DescribeImageReplicationStatus",
		Usage:   "show where an image has been replicated to",
		Flags:   append([]cli.Flag{repositoryNameFlag(), registryIDFlag()}, imageIDFlags()...),
		Select:  "ReplicationStatuses",
		Attrs:   "Region,RegistryId,Status,FailureCode",
		Resource: func(in *ecr.DescribeImageReplicationStatusInput) string {
			return "image " + withRepo(in.RepositoryName, describeImageID(in.ImageId))
		},
		Bind: func(cmd *cli.Command, in *ecr.DescribeImageReplicationStatusInput) error {
			var err error
			if in.RepositoryName, err = requireString(cmd, "repository-name"); err != nil {
				return err
			}
			in.RegistryId = optString(cmd, "registry-id")
			in.ImageId, err = imageID(cmd)
			return err
		},
		Call: func(ctx context.Context, c *aws.Clients, in *ecr.DescribeImageReplicationStatusInput) (*ecr.DescribeImageReplicationStatusOutput, error) {
			return c.ECR.DescribeImageReplicationStatus(ctx, in)
		},
	}
	return op.Build(m)
}

// DescribeImageScanFindingsCommandBuilder constructs
// "ecr describe-image-scan-findings".
func DescribeImageScanFindingsCommandBuilder(m meta.Meta) *cli.Command {
	op := &Operation[ecr.DescribeImageScanFindingsInput, ecr.DescribeImageScanFindingsOutput]{
		Service: "ecr",
		Name:    "describe-image-scan-findings",
		API:     "DescribeImageScanFindings",
		Usage:   "list the scan findings of an image",
		Flags:   append([]cli.Flag{repositoryNameFlag(), registryIDFlag()}, imageIDFlags()...),
		Examples: [][2]string{
			{"awsctl ecr describe-image-scan-findings -n web --image latest -f Severity=CRITICAL", "critical findings only"},
			{"awsctl ecr describe-image-scan-findings -n web --image latest --select ImageScanFindings.FindingSeverityCounts -o json", "severity counts"},
		},
		Select: "ImageScanFindings.Findings",
		Attrs:  "Name,Severity,Uri",
		Resource: func(in *ecr.DescribeImageScanFindingsInput) string {
			return "image " + withRepo(in.RepositoryName, describeImageID(in.ImageId))
		},
		Bind: func(cmd *cli.Command, in *ecr.DescribeImageScanFindingsInput) error {
			var err error
			if in.RepositoryName, err = requireString(cmd, "repository-name"); err != nil {
				return err
			}
			in.RegistryId = optString(cmd, "registry-id")
			in.ImageId, err = imageID(cmd)
			return err
		},
		Call: func(ctx context.Context, c *aws.Clients, in *ecr.DescribeImageScanFindingsInput) (*ecr.DescribeImageScanFindingsOutput, error) {
			return c.ECR.DescribeImageScanFindings(ctx, in)
		},
		Paging: &Paging[ecr.DescribeImageScanFindingsInput, ecr.DescribeImageScanFindingsOutput]{
			NextToken:   func(o *ecr.DescribeImageScanFindingsOutput) *string { return o.NextToken },
			SetToken:    func(i *ecr.DescribeImageScanFindingsInput, t *string) { i.NextToken = t },
			SetPageSize: func(i *ecr.DescribeImageScanFindingsInput, n int32) { i.MaxResults = awsv2.Int32(n) },
		},
	}
	return op.Build(m)
}

// DescribeImagesCommandBuilder constructs "ecr describe-images".
func DescribeImagesCommandBuilder(m meta.Meta) *cli.Command {
	flags := append([]cli.Flag{repositoryNameFlag(), registryIDFlag(), tagStatusFlag()}, imageIDFlags()...)

	op := &Operation[ecr.DescribeImagesInput, ecr.DescribeImagesOutput]{
		Service: "ecr",
		Name:    "describe-images",
		API:     "DescribeImages",
		Usage:   "describe the images in a repository",
		Flags:   flags,
		Examples: [][2]string{
			{"awsctl ecr describe-images -n web -s -ImagePushedAt --max-items 5", "five most recently pushed"},
			{"awsctl ecr describe-images -n web --tag-status UNTAGGED", "dangling images"},
			{"awsctl ecr describe-images -n web -a ImagePushedAt::h", "push times as durations"},
		},
		Select: "ImageDetails",
		Attrs:  imageDetailAttrs,
		Resource: func(in *ecr.DescribeImagesInput) string {
			return "repository " + deref(in.RepositoryName)
		},
		Bind: func(cmd *cli.Command, in *ecr.DescribeImagesInput) error {
			var err error
			if in.RepositoryName, err = requireString(cmd, "repository-name"); err != nil {
				return err
			}
			in.RegistryId = optString(cmd, "registry-id")
			if ts := cmd.String("tag-status"); ts != "" {
				in.Filter = &types.DescribeImagesFilter{TagStatus: types.TagStatus(ts)}
			}
			in.ImageIds, err = imageIDs(cmd, false)
			return err
		},
		Call: func(ctx context.Context, c *aws.Clients, in *ecr.DescribeImagesInput) (*ecr.DescribeImagesOutput, error) {
			return c.ECR.DescribeImages(ctx, in)
		},
		Paging: &Paging[ecr.DescribeImagesInput, ecr.DescribeImagesOutput]{
			NextToken:   func(o *ecr.DescribeImagesOutput) *string { return o.NextToken },
			SetToken:    func(i *ecr.DescribeImagesInput, t *string) { i.NextToken = t },
			SetPageSize: func(i *ecr.DescribeImagesInput, n int32) { i.MaxResults = awsv2.Int32(n) },
		},
	}
	return op.Build(m)
}

// ListImagesCommandBuilder constructs "ecr list-images".
func ListImagesCommandBuilder(m meta.Meta) *cli.Command {
	op := &Operation[ecr.ListImagesInput, ecr.ListImagesOutput]{
		Service: "ecr",
		Name:    "list-images",
		API:     "ListImages",
		Usage:   "list the image ids in a repository",
		Flags:   []cli.Flag{repositoryNameFlag(), registryIDFlag(), tagStatusFlag()},
		Select:  "ImageIds",
		Attrs:   "ImageTag,ImageDigest",
		Resource: func(in *ecr.ListImagesInput) string {
			return "repository " + deref(in.RepositoryName)
		},
		Bind: func(cmd *cli.Command, in *ecr.ListImagesInput) error {
			var err error
			if in.RepositoryName, err = requireString(cmd, "repository-name"); err != nil {
				return err
			}
			in.RegistryId = optString(cmd, "registry-id")
			if ts := cmd.String("tag-status"); ts != "" {
				in.Filter = &types.ListImagesFilter{TagStatus: types.TagStatus(ts)}
			}
			return nil
		},
		Call: func(ctx context.Context, c *aws.Clients, in *ecr.ListImagesInput) (*ecr.ListImagesOutput, error) {
			return c.ECR.ListImages(ctx, in)
		},
		Paging: &Paging[ecr.ListImagesInput, ecr.ListImagesOutput]{
			NextToken:   func(o *ecr.ListImagesOutput) *string { return o.NextToken },
			SetToken:    func(i *ecr.ListImagesInput, t *string) { i.NextToken = t },
			SetPageSize: func(i *ecr.ListImagesInput, n int32) { i.MaxResults = awsv2.Int32(n) },
		},
	}
	return op.Build(m)
}

// PutImageCommandBuilder constructs "ecr put-image".
func PutImageCommandBuilder(m meta.Meta) *cli.Command {
	op := &Operation[ecr.PutImageInput, ecr.PutImageOutput]{
		Service: "ecr",
		Name:    "put-image",
		API:     "PutImage",
		Usage:   "create or retag an image from its manifest",
		Flags: []cli.Flag{
			repositoryNameFlag(),
			registryIDFlag(),
			&cli.StringFlag{
				Name:  "image-manifest",
				Usage: "image manifest JSON or @file",
			},
			&cli.StringFlag{
				Name:  "image-manifest-media-type",
				Usage: "media type of the manifest",
			},
			&cli.StringFlag{
				Name:  "image-tag",
				Usage: "tag to put on the image",
			},
			&cli.StringFlag{
				Name:  "image-digest",
				Usage: "digest of the manifest",
			},
		},
		Examples: [][2]string{
			{"awsctl ecr batch-get-image -n web --image v1 --select Images.ImageManifest -o raw > m.json && awsctl ecr put-image -n web --image-tag stable --image-manifest @m.json", "retag v1 as stable"},
		},
		Select: "Image",
		Attrs:  "RepositoryName,ImageId.ImageTag:Tag,ImageId.ImageDigest:Digest",
		Resource: func(in *ecr.PutImageInput) string {
			return "image " + withRepo(in.RepositoryName, deref(in.ImageTag))
		},
		Bind: func(cmd *cli.Command, in *ecr.PutImageInput) error {
			var err error
			if in.RepositoryName, err = requireString(cmd, "repository-name"); err != nil {
				return err
			}
			in.RegistryId = optString(cmd, "registry-id")
			if in.ImageManifest, err = optText(cmd, "image-manifest"); err != nil {
				return err
			}
			if in.ImageManifest == nil {
				return fmt.Errorf("%w: --image-manifest is required", ErrInvalidValue)
			}
			in.ImageManifestMediaType = optString(cmd, "image-manifest-media-type")
			in.ImageTag = optString(cmd, "image-tag")
			in.ImageDigest = optString(cmd, "image-digest")
			return nil
		},
		Call: func(ctx context.Context, c *aws.Clients, in *ecr.PutImageInput) (*ecr.PutImageOutput, error) {
			return c.ECR.PutImage(ctx, in)
		},
	}
	return op.Build(m)
}

// StartImageScanCommandBuilder constructs "ecr start-image-scan".
func StartImageScanCommandBuilder(m meta.Meta) *cli.Command {
	op := &Operation[ecr.StartImageScanInput, ecr.StartImageScanOutput]{
		Service: "ecr",
		Name:    "start-image-scan",
		API:     "StartImageScan",
		Usage:   "start a basic scan of an image",
		Flags:   append([]cli.Flag{repositoryNameFlag(), registryIDFlag()}, imageIDFlags()...),
		Resource: func(in *ecr.StartImageScanInput) string {
			return "image " + withRepo(in.RepositoryName, describeImageID(in.ImageId))
		},
		Bind: func(cmd *cli.Command, in *ecr.StartImageScanInput) error {
			var err error
			if in.RepositoryName, err = requireString(cmd, "repository-name"); err != nil {
				return err
			}
			in.RegistryId = optString(cmd, "registry-id")
			in.ImageId, err = imageID(cmd)
			return err
		},
		Call: func(ctx context.Context, c *aws.Clients, in *ecr.StartImageScanInput) (*ecr.StartImageScanOutput, error) {
			return c.ECR.StartImageScan(ctx, in)
		},
	}
	return op.Build(m)
}
