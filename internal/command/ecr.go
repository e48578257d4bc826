// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"fmt"
	"strings"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ecr/types"
	"github.com/urfave/cli/v3"

	"github.com/staranto/awsctlgo/internal/meta"
)

// ECRCommands returns every ecr operation command.
func ECRCommands(m meta.Meta) []*cli.Command {
	return []*cli.Command{
		BatchCheckLayerAvailabilityCommandBuilder(m),
		BatchDeleteImageCommandBuilder(m),
		BatchGetImageCommandBuilder(m),
		BatchGetRepositoryScanningConfigurationCommandBuilder(m),
		CompleteLayerUploadCommandBuilder(m),
		CreatePullThroughCacheRuleCommandBuilder(m),
		CreateRepositoryCommandBuilder(m),
		CreateRepositoryCreationTemplateCommandBuilder(m),
		DeleteLifecyclePolicyCommandBuilder(m),
		DeletePullThroughCacheRuleCommandBuilder(m),
		DeleteRegistryPolicyCommandBuilder(m),
		DeleteRepositoryCommandBuilder(m),
		DeleteRepositoryCreationTemplateCommandBuilder(m),
		DeleteRepositoryPolicyCommandBuilder(m),
		DescribeImageReplicationStatusCommandBuilder(m),
		DescribeImageScanFindingsCommandBuilder(m),
		DescribeImagesCommandBuilder(m),
		DescribePullThroughCacheRulesCommandBuilder(m),
		DescribeRegistryCommandBuilder(m),
		DescribeRepositoriesCommandBuilder(m),
		DescribeRepositoryCreationTemplatesCommandBuilder(m),
		GetAccountSettingCommandBuilder(m),
		GetAuthorizationTokenCommandBuilder(m),
		GetDownloadURLForLayerCommandBuilder(m),
		GetLifecyclePolicyCommandBuilder(m),
		GetLifecyclePolicyPreviewCommandBuilder(m),
		GetLoginCommandCommandBuilder(m),
		GetLoginPasswordCommandBuilder(m),
		GetRegistryPolicyCommandBuilder(m),
		GetRegistryScanningConfigurationCommandBuilder(m),
		GetRepositoryPolicyCommandBuilder(m),
		InitiateLayerUploadCommandBuilder(m),
		ListImagesCommandBuilder(m),
		ListTagsForResourceCommandBuilder(m),
		PutAccountSettingCommandBuilder(m),
		PutImageCommandBuilder(m),
		PutImageScanningConfigurationCommandBuilder(m),
		PutImageTagMutabilityCommandBuilder(m),
		PutLifecyclePolicyCommandBuilder(m),
		PutRegistryPolicyCommandBuilder(m),
		PutRegistryScanningConfigurationCommandBuilder(m),
		PutReplicationConfigurationCommandBuilder(m),
		SetRepositoryPolicyCommandBuilder(m),
		StartImageScanCommandBuilder(m),
		StartLifecyclePolicyPreviewCommandBuilder(m),
		TagResourceCommandBuilder(m),
		UntagResourceCommandBuilder(m),
		UpdatePullThroughCacheRuleCommandBuilder(m),
		UpdateRepositoryCreationTemplateCommandBuilder(m),
		UploadLayerPartCommandBuilder(m),
		ValidatePullThroughCacheRuleCommandBuilder(m),
	}
}

func registryIDFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "registry-id",
		Usage:   "registry (account) id, defaults to the caller's registry",
		Sources: cli.NewValueSourceChain(sources("registry-id", "ecr")...),
	}
}

func repositoryNameFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "repository-name",
		Aliases: []string{"n"},
		Usage:   "repository name",
	}
}

func tagFlag() cli.Flag {
	return &cli.StringSliceFlag{
		Name:  "tag",
		Usage: "resource tag as Key=Value, repeatable",
	}
}

func imageIDFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{
			Name:  "image-tag",
			Usage: "image tag, repeatable",
		},
		&cli.StringSliceFlag{
			Name:  "image-digest",
			Usage: "image digest, repeatable",
		},
		&cli.StringSliceFlag{
			Name:  "image",
			Usage: "image tag or sha256: digest, repeatable",
		},
	}
}

func tagStatusFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "tag-status",
		Usage: fmt.Sprintf("image tag status %v", types.TagStatus("").Values()),
		Validator: func(v string) error {
			return FlagValidators(v, EnumValidator(types.TagStatus("").Values()))
		},
	}
}

func imageTagMutabilityFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "image-tag-mutability",
		Usage: fmt.Sprintf("tag mutability %v", types.ImageTagMutability("").Values()),
		Validator: func(v string) error {
			return FlagValidators(v, EnumValidator(types.ImageTagMutability("").Values()))
		},
	}
}

// ImageIDs builds image identifiers from --image-tag, --image-digest and
// --image.  An --image value starting with sha256: is a digest.
func ImageIDs(tags, digests, images []string) []types.ImageIdentifier {
	ids := make([]types.ImageIdentifier, 0, len(tags)+len(digests)+len(images))
	for _, t := range tags {
		ids = append(ids, types.ImageIdentifier{ImageTag: awsv2.String(t)})
	}
	for _, d := range digests {
		ids = append(ids, types.ImageIdentifier{ImageDigest: awsv2.String(d)})
	}
	for _, i := range images {
		if strings.HasPrefix(i, "sha256:") {
			ids = append(ids, types.ImageIdentifier{ImageDigest: awsv2.String(i)})
		} else {
			ids = append(ids, types.ImageIdentifier{ImageTag: awsv2.String(i)})
		}
	}
	return ids
}

func imageIDs(cmd *cli.Command, required bool) ([]types.ImageIdentifier, error) {
	ids := ImageIDs(cmd.StringSlice("image-tag"), cmd.StringSlice("image-digest"), cmd.StringSlice("image"))
	if required && len(ids) == 0 {
		return nil, fmt.Errorf("%w: at least one --image, --image-tag or --image-digest is required", ErrInvalidValue)
	}
	return ids, nil
}

// imageID returns the single image an operation acts on.  A tag and a digest
// may both be given to name the same image.
func imageID(cmd *cli.Command) (*types.ImageIdentifier, error) {
	tags := cmd.StringSlice("image-tag")
	digests := cmd.StringSlice("image-digest")
	images := cmd.StringSlice("image")
	if len(tags) > 1 || len(digests) > 1 || len(images) > 1 || (len(images) == 1 && len(tags)+len(digests) > 0) {
		return nil, fmt.Errorf("%w: exactly one image is required", ErrInvalidValue)
	}

	id := types.ImageIdentifier{}
	switch {
	case len(images) == 1:
		id = ImageIDs(nil, nil, images)[0]
	case len(tags)+len(digests) > 0:
		if len(tags) == 1 {
			id.ImageTag = awsv2.String(tags[0])
		}
		if len(digests) == 1 {
			id.ImageDigest = awsv2.String(digests[0])
		}
	default:
		return nil, fmt.Errorf("%w: --image, --image-tag or --image-digest is required", ErrInvalidValue)
	}
	return &id, nil
}

func ecrTags(cmd *cli.Command, name string) ([]types.Tag, error) {
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

// describeImageID renders an image identifier for messages.
func describeImageID(id *types.ImageIdentifier) string {
	if id == nil {
		return ""
	}
	switch {
	case id.ImageTag != nil && id.ImageDigest != nil:
		return *id.ImageTag + "@" + *id.ImageDigest
	case id.ImageTag != nil:
		return *id.ImageTag
	default:
		return deref(id.ImageDigest)
	}
}

func imageFailures(failures []types.ImageFailure) []string {
	out := make([]string, 0, len(failures))
	for _, f := range failures {
		out = append(out, fmt.Sprintf("image %s: %s: %s", describeImageID(f.ImageId), f.FailureCode, deref(f.FailureReason)))
	}
	return out
}

func withRepo(repo *string, what string) string {
	if repo == nil {
		return what
	}
	if what == "" {
		return *repo
	}
	return *repo + ":" + what
}
