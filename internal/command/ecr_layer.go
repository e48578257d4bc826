// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"os"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ecr"
	"github.com/urfave/cli/v3"

	"github.com/staranto/awsctlgo/internal/aws"
	"github.com/staranto/awsctlgo/internal/meta"
)

func layerDigestFlag() cli.Flag {
	return &cli.StringSliceFlag{
		Name:  "layer-digest",
		Usage: "layer digest, repeatable",
	}
}

func uploadIDFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "upload-id",
		Usage: "upload id from initiate-layer-upload",
	}
}

// BatchCheckLayerAvailabilityCommandBuilder constructs
// "ecr batch-check-layer-availability".
func BatchCheckLayerAvailabilityCommandBuilder(m meta.Meta) *cli.Command {
	op := &Operation[ecr.BatchCheckLayerAvailabilityInput, ecr.BatchCheckLayerAvailabilityOutput]{
		Service: "ecr",
		Name:    "batch-check-layer-availability",
		API:     "BatchCheckLayerAvailability",
		Usage:   "check whether layers are present in a repository",
		Flags:   []cli.Flag{repositoryNameFlag(), registryIDFlag(), layerDigestFlag()},
		Select:  "Layers",
		Attrs:   "LayerDigest,LayerAvailability,LayerSize:Size:h,MediaType",
		Resource: func(in *ecr.BatchCheckLayerAvailabilityInput) string {
			return "repository " + deref(in.RepositoryName)
		},
		Bind: func(cmd *cli.Command, in *ecr.BatchCheckLayerAvailabilityInput) error {
			var err error
			if in.RepositoryName, err = requireString(cmd, "repository-name"); err != nil {
				return err
			}
			in.RegistryId = optString(cmd, "registry-id")
			in.LayerDigests, err = requireSlice(cmd, "layer-digest")
			return err
		},
		Call: func(ctx context.Context, c *aws.Clients, in *ecr.BatchCheckLayerAvailabilityInput) (*ecr.BatchCheckLayerAvailabilityOutput, error) {
			return c.ECR.BatchCheckLayerAvailability(ctx, in)
		},
		Failures: func(o *ecr.BatchCheckLayerAvailabilityOutput) []string {
			out := make([]string, 0, len(o.Failures))
			for _, f := range o.Failures {
				out = append(out, fmt.Sprintf("layer %s: %s: %s", deref(f.LayerDigest), f.FailureCode, deref(f.FailureReason)))
			}
			return out
		},
	}
	return op.Build(m)
}

// InitiateLayerUploadCommandBuilder constructs "ecr initiate-layer-upload".
func InitiateLayerUploadCommandBuilder(m meta.Meta) *cli.Command {
	op := &Operation[ecr.InitiateLayerUploadInput, ecr.InitiateLayerUploadOutput]{
		Service: "ecr",
		Name:    "initiate-layer-upload",
		API:     "InitiateLayerUpload",
		Usage:   "start a layer upload",
		Flags:   []cli.Flag{repositoryNameFlag(), registryIDFlag()},
		Examples: [][2]string{
			{"awsctl ecr initiate-layer-upload -n web -o json", "prints UploadId and PartSize"},
		},
		Resource: func(in *ecr.InitiateLayerUploadInput) string {
			return "repository " + deref(in.RepositoryName)
		},
		Bind: func(cmd *cli.Command, in *ecr.InitiateLayerUploadInput) error {
			var err error
			in.RegistryId = optString(cmd, "registry-id")
			in.RepositoryName, err = requireString(cmd, "repository-name")
			return err
		},
		Call: func(ctx context.Context, c *aws.Clients, in *ecr.InitiateLayerUploadInput) (*ecr.InitiateLayerUploadOutput, error) {
			return c.ECR.InitiateLayerUpload(ctx, in)
		},
	}
	return op.Build(m)
}

// UploadLayerPartCommandBuilder constructs "ecr upload-layer-part".
func UploadLayerPartCommandBuilder(m meta.Meta) *cli.Command {
	op := &Operation[ecr.UploadLayerPartInput, ecr.UploadLayerPartOutput]{
		Service: "ecr",
		Name:    "upload-layer-part",
		API:     "UploadLayerPart",
		Usage:   "upload one part of a layer",
		Flags: []cli.Flag{
			repositoryNameFlag(),
			registryIDFlag(),
			uploadIDFlag(),
			&cli.StringFlag{
				Name:      "blob-file",
				Usage:     "file holding the bytes of this part",
				TakesFile: true,
			},
			&cli.Int64Flag{
				Name:  "part-first-byte",
				Usage: "offset of the first byte of the part",
			},
			&cli.Int64Flag{
				Name:  "part-last-byte",
				Usage: "offset of the last byte of the part, defaults to first byte plus file size minus one",
			},
		},
		Resource: func(in *ecr.UploadLayerPartInput) string {
			return "upload " + withRepo(in.RepositoryName, deref(in.UploadId))
		},
		Bind: func(cmd *cli.Command, in *ecr.UploadLayerPartInput) error {
			var err error
			if in.RepositoryName, err = requireString(cmd, "repository-name"); err != nil {
				return err
			}
			if in.UploadId, err = requireString(cmd, "upload-id"); err != nil {
				return err
			}
			in.RegistryId = optString(cmd, "registry-id")

			path, err := requireString(cmd, "blob-file")
			if err != nil {
				return err
			}
			if in.LayerPartBlob, err = os.ReadFile(*path); err != nil {
				return fmt.Errorf("failed to read %s: %w", *path, err)
			}

			first := cmd.Int64("part-first-byte")
			last := first + int64(len(in.LayerPartBlob)) - 1
			if cmd.IsSet("part-last-byte") {
				last = cmd.Int64("part-last-byte")
			}
			if first < 0 || last < first {
				return fmt.Errorf("%w: byte range %d-%d", ErrInvalidValue, first, last)
			}
			in.PartFirstByte = awsv2.Int64(first)
			in.PartLastByte = awsv2.Int64(last)
			return nil
		},
		Call: func(ctx context.Context, c *aws.Clients, in *ecr.UploadLayerPartInput) (*ecr.UploadLayerPartOutput, error) {
			return c.ECR.UploadLayerPart(ctx, in)
		},
	}
	return op.Build(m)
}

// CompleteLayerUploadCommandBuilder constructs "ecr complete-layer-upload".
func CompleteLayerUploadCommandBuilder(m meta.Meta) *cli.Command {
	op := &Operation[ecr.CompleteLayerUploadInput, ecr.CompleteLayerUploadOutput]{
		Service: "ecr",
		Name:    "complete-layer-upload",
		API:     "CompleteLayerUpload",
		Usage:   "finish a layer upload",
		Flags:   []cli.Flag{repositoryNameFlag(), registryIDFlag(), uploadIDFlag(), layerDigestFlag()},
		Resource: func(in *ecr.CompleteLayerUploadInput) string {
			return "upload " + withRepo(in.RepositoryName, deref(in.UploadId))
		},
		Bind: func(cmd *cli.Command, in *ecr.CompleteLayerUploadInput) error {
			var err error
			if in.RepositoryName, err = requireString(cmd, "repository-name"); err != nil {
				return err
			}
			if in.UploadId, err = requireString(cmd, "upload-id"); err != nil {
				return err
			}
			in.RegistryId = optString(cmd, "registry-id")
			in.LayerDigests, err = requireSlice(cmd, "layer-digest")
			return err
		},
		Call: func(ctx context.Context, c *aws.Clients, in *ecr.CompleteLayerUploadInput) (*ecr.CompleteLayerUploadOutput, error) {
			return c.ECR.CompleteLayerUpload(ctx, in)
		},
	}
	return op.Build(m)
}

// GetDownloadURLForLayerCommandBuilder constructs
// "ecr get-download-url-for-layer".
func GetDownloadURLForLayerCommandBuilder(m meta.Meta) *cli.Command {
	op := &Operation[ecr.GetDownloadUrlForLayerInput, ecr.GetDownloadUrlForLayerOutput]{
		Service: "ecr",
		Name:    "get-download-url-for-layer",
		API:     "GetDownloadUrlForLayer",
		Usage:   "get a pre-signed URL for a layer",
		Flags: []cli.Flag{
			repositoryNameFlag(),
			registryIDFlag(),
			&cli.StringFlag{
				Name:  "layer-digest",
				Usage: "layer digest",
			},
		},
		Resource: func(in *ecr.GetDownloadUrlForLayerInput) string {
			return "layer " + withRepo(in.RepositoryName, deref(in.LayerDigest))
		},
		Bind: func(cmd *cli.Command, in *ecr.GetDownloadUrlForLayerInput) error {
			var err error
			if in.RepositoryName, err = requireString(cmd, "repository-name"); err != nil {
				return err
			}
			in.RegistryId = optString(cmd, "registry-id")
			in.LayerDigest, err = requireString(cmd, "layer-digest")
			return err
		},
		Call: func(ctx context.Context, c *aws.Clients, in *ecr.GetDownloadUrlForLayerInput) (*ecr.GetDownloadUrlForLayerOutput, error) {
			return c.ECR.GetDownloadUrlForLayer(ctx, in)
		},
	}
	return op.Build(m)
}
