// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package command

import (
	"bytes"
	"context"
	"strings"
	"testing"

	ads "github.com/aws/aws-sdk-go-v2/service/applicationdiscoveryservice"
	"github.com/aws/aws-sdk-go-v2/service/ecr"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/urfave/cli/v3"

	"github.com/staranto/awsctlgo/internal/aws"
	"github.com/staranto/awsctlgo/internal/meta"
)

// fakeECR implements the calls the tests need.  Anything else panics on the
// nil embedded interface.
type fakeECR struct {
	aws.ECRAPI

	batchDeleteImage      func(*ecr.BatchDeleteImageInput) (*ecr.BatchDeleteImageOutput, error)
	createRepository      func(*ecr.CreateRepositoryInput) (*ecr.CreateRepositoryOutput, error)
	describeImages        func(*ecr.DescribeImagesInput) (*ecr.DescribeImagesOutput, error)
	describeRepositories  func(*ecr.DescribeRepositoriesInput) (*ecr.DescribeRepositoriesOutput, error)
	getAuthorizationToken func(*ecr.GetAuthorizationTokenInput) (*ecr.GetAuthorizationTokenOutput, error)
	getRepositoryPolicy   func(*ecr.GetRepositoryPolicyInput) (*ecr.GetRepositoryPolicyOutput, error)
	putRegistryScanning   func(*ecr.PutRegistryScanningConfigurationInput) (*ecr.PutRegistryScanningConfigurationOutput, error)
	setRepositoryPolicy   func(*ecr.SetRepositoryPolicyInput) (*ecr.SetRepositoryPolicyOutput, error)
	tagResource           func(*ecr.TagResourceInput) (*ecr.TagResourceOutput, error)
	uploadLayerPart       func(*ecr.UploadLayerPartInput) (*ecr.UploadLayerPartOutput, error)
}

func (f *fakeECR) BatchDeleteImage(_ context.Context, in *ecr.BatchDeleteImageInput, _ ...func(*ecr.Options)) (*ecr.BatchDeleteImageOutput, error) {
	return f.batchDeleteImage(in)
}

func (f *fakeECR) CreateRepository(_ context.Context, in *ecr.CreateRepositoryInput, _ ...func(*ecr.Options)) (*ecr.CreateRepositoryOutput, error) {
	return f.createRepository(in)
}

func (f *fakeECR) DescribeImages(_ context.Context, in *ecr.DescribeImagesInput, _ ...func(*ecr.Options)) (*ecr.DescribeImagesOutput, error) {
	return f.describeImages(in)
}

func (f *fakeECR) DescribeRepositories(_ context.Context, in *ecr.DescribeRepositoriesInput, _ ...func(*ecr.Options)) (*ecr.DescribeRepositoriesOutput, error) {
	return f.describeRepositories(in)
}

func (f *fakeECR) GetAuthorizationToken(_ context.Context, in *ecr.GetAuthorizationTokenInput, _ ...func(*ecr.Options)) (*ecr.GetAuthorizationTokenOutput, error) {
	return f.getAuthorizationToken(in)
}

func (f *fakeECR) GetRepositoryPolicy(_ context.Context, in *ecr.GetRepositoryPolicyInput, _ ...func(*ecr.Options)) (*ecr.GetRepositoryPolicyOutput, error) {
	return f.getRepositoryPolicy(in)
}

func (f *fakeECR) PutRegistryScanningConfiguration(_ context.Context, in *ecr.PutRegistryScanningConfigurationInput, _ ...func(*ecr.Options)) (*ecr.PutRegistryScanningConfigurationOutput, error) {
	return f.putRegistryScanning(in)
}

func (f *fakeECR) SetRepositoryPolicy(_ context.Context, in *ecr.SetRepositoryPolicyInput, _ ...func(*ecr.Options)) (*ecr.SetRepositoryPolicyOutput, error) {
	return f.setRepositoryPolicy(in)
}

func (f *fakeECR) TagResource(_ context.Context, in *ecr.TagResourceInput, _ ...func(*ecr.Options)) (*ecr.TagResourceOutput, error) {
	return f.tagResource(in)
}

func (f *fakeECR) UploadLayerPart(_ context.Context, in *ecr.UploadLayerPartInput, _ ...func(*ecr.Options)) (*ecr.UploadLayerPartOutput, error) {
	return f.uploadLayerPart(in)
}

type fakeDiscovery struct {
	aws.DiscoveryAPI

	batchDeleteAgents    func(*ads.BatchDeleteAgentsInput) (*ads.BatchDeleteAgentsOutput, error)
	createApplication    func(*ads.CreateApplicationInput) (*ads.CreateApplicationOutput, error)
	describeAgents       func(*ads.DescribeAgentsInput) (*ads.DescribeAgentsOutput, error)
	exportConfigurations func(*ads.ExportConfigurationsInput) (*ads.ExportConfigurationsOutput, error)
	listConfigurations   func(*ads.ListConfigurationsInput) (*ads.ListConfigurationsOutput, error)
	startExportTask      func(*ads.StartExportTaskInput) (*ads.StartExportTaskOutput, error)
	startImportTask      func(*ads.StartImportTaskInput) (*ads.StartImportTaskOutput, error)
}

func (f *fakeDiscovery) BatchDeleteAgents(_ context.Context, in *ads.BatchDeleteAgentsInput, _ ...func(*ads.Options)) (*ads.BatchDeleteAgentsOutput, error) {
	return f.batchDeleteAgents(in)
}

func (f *fakeDiscovery) CreateApplication(_ context.Context, in *ads.CreateApplicationInput, _ ...func(*ads.Options)) (*ads.CreateApplicationOutput, error) {
	return f.createApplication(in)
}

func (f *fakeDiscovery) DescribeAgents(_ context.Context, in *ads.DescribeAgentsInput, _ ...func(*ads.Options)) (*ads.DescribeAgentsOutput, error) {
	return f.describeAgents(in)
}

func (f *fakeDiscovery) ExportConfigurations(_ context.Context, in *ads.ExportConfigurationsInput, _ ...func(*ads.Options)) (*ads.ExportConfigurationsOutput, error) {
	return f.exportConfigurations(in)
}

func (f *fakeDiscovery) ListConfigurations(_ context.Context, in *ads.ListConfigurationsInput, _ ...func(*ads.Options)) (*ads.ListConfigurationsOutput, error) {
	return f.listConfigurations(in)
}

func (f *fakeDiscovery) StartExportTask(_ context.Context, in *ads.StartExportTaskInput, _ ...func(*ads.Options)) (*ads.StartExportTaskOutput, error) {
	return f.startExportTask(in)
}

func (f *fakeDiscovery) StartImportTask(_ context.Context, in *ads.StartImportTaskInput, _ ...func(*ads.Options)) (*ads.StartImportTaskOutput, error) {
	return f.startImportTask(in)
}

type fakeS3 struct {
	putObject func(*s3.PutObjectInput) (*s3.PutObjectOutput, error)
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	return f.putObject(in)
}

// runApp runs the full command tree against the given clients and returns
// what was written to stdout and stderr.
func runApp(t *testing.T, c *aws.Clients, args ...string) (string, string, error) {
	t.Helper()

	factory := func(context.Context, *cli.Command) (*aws.Clients, error) {
		return c, nil
	}
	app := NewApp(meta.Meta{Clients: factory})

	var stdout, stderr bytes.Buffer
	app.Writer = &stdout
	app.ErrWriter = &stderr
	app.Reader = strings.NewReader("")

	err := app.Run(context.Background(), append([]string{"awsctl"}, args...))
	return stdout.String(), stderr.String(), err
}

// isolateCache points the cache at a fresh directory for the test.
func isolateCache(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("AWSCTL_CACHE_DIR", dir)
	t.Setenv("AWSCTL_CACHE", "")
	return dir
}
