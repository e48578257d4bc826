// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package aws

import (
	"context"
	"fmt"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	ads "github.com/aws/aws-sdk-go-v2/service/applicationdiscoveryservice"
	"github.com/aws/aws-sdk-go-v2/service/ecr"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ECRAPI is the slice of the ECR client the ecr commands call. Its method set
// mirrors *ecr.Client so tests can substitute a fake.
type ECRAPI interface {
	BatchCheckLayerAvailability(ctx context.Context, params *ecr.BatchCheckLayerAvailabilityInput, optFns ...func(*ecr.Options)) (*ecr.BatchCheckLayerAvailabilityOutput, error)
	BatchDeleteImage(ctx context.Context, params *ecr.BatchDeleteImageInput, optFns ...func(*ecr.Options)) (*ecr.BatchDeleteImageOutput, error)
	BatchGetImage(ctx context.Context, params *ecr.BatchGetImageInput, optFns ...func(*ecr.Options)) (*ecr.BatchGetImageOutput, error)
	BatchGetRepositoryScanningConfiguration(ctx context.Context, params *ecr.BatchGetRepositoryScanningConfigurationInput, optFns ...func(*ecr.Options)) (*ecr.BatchGetRepositoryScanningConfigurationOutput, error)
	CompleteLayerUpload(ctx context.Context, params *ecr.CompleteLayerUploadInput, optFns ...func(*ecr.Options)) (*ecr.CompleteLayerUploadOutput, error)
	CreatePullThroughCacheRule(ctx context.Context, params *ecr.CreatePullThroughCacheRuleInput, optFns ...func(*ecr.Options)) (*ecr.CreatePullThroughCacheRuleOutput, error)
	CreateRepository(ctx context.Context, params *ecr.CreateRepositoryInput, optFns ...func(*ecr.Options)) (*ecr.CreateRepositoryOutput, error)
	CreateRepositoryCreationTemplate(ctx context.Context, params *ecr.CreateRepositoryCreationTemplateInput, optFns ...func(*ecr.Options)) (*ecr.CreateRepositoryCreationTemplateOutput, error)
	DeleteLifecyclePolicy(ctx context.Context, params *ecr.DeleteLifecyclePolicyInput, optFns ...func(*ecr.Options)) (*ecr.DeleteLifecyclePolicyOutput, error)
	DeletePullThroughCacheRule(ctx context.Context, params *ecr.DeletePullThroughCacheRuleInput, optFns ...func(*ecr.Options)) (*ecr.DeletePullThroughCacheRuleOutput, error)
	DeleteRegistryPolicy(ctx context.Context, params *ecr.DeleteRegistryPolicyInput, optFns ...func(*ecr.Options)) (*ecr.DeleteRegistryPolicyOutput, error)
	DeleteRepository(ctx context.Context, params *ecr.DeleteRepositoryInput, optFns ...func(*ecr.Options)) (*ecr.DeleteRepositoryOutput, error)
	DeleteRepositoryCreationTemplate(ctx context.Context, params *ecr.DeleteRepositoryCreationTemplateInput, optFns ...func(*ecr.Options)) (*ecr.DeleteRepositoryCreationTemplateOutput, error)
	DeleteRepositoryPolicy(ctx context.Context, params *ecr.DeleteRepositoryPolicyInput, optFns ...func(*ecr.Options)) (*ecr.DeleteRepositoryPolicyOutput, error)
	DescribeImageReplicationStatus(ctx context.Context, params *ecr.DescribeImageReplicationStatusInput, optFns ...func(*ecr.Options)) (*ecr.DescribeImageReplicationStatusOutput, error)
	DescribeImageScanFindings(ctx context.Context, params *ecr.DescribeImageScanFindingsInput, optFns ...func(*ecr.Options)) (*ecr.DescribeImageScanFindingsOutput, error)
	DescribeImages(ctx context.Context, params *ecr.DescribeImagesInput, optFns ...func(*ecr.Options)) (*ecr.DescribeImagesOutput, error)
	DescribePullThroughCacheRules(ctx context.Context, params *ecr.DescribePullThroughCacheRulesInput, optFns ...func(*ecr.Options)) (*ecr.DescribePullThroughCacheRulesOutput, error)
	DescribeRegistry(ctx context.Context, params *ecr.DescribeRegistryInput, optFns ...func(*ecr.Options)) (*ecr.DescribeRegistryOutput, error)
	DescribeRepositories(ctx context.Context, params *ecr.DescribeRepositoriesInput, optFns ...func(*ecr.Options)) (*ecr.DescribeRepositoriesOutput, error)
	DescribeRepositoryCreationTemplates(ctx context.Context, params *ecr.DescribeRepositoryCreationTemplatesInput, optFns ...func(*ecr.Options)) (*ecr.DescribeRepositoryCreationTemplatesOutput, error)
	GetAccountSetting(ctx context.Context, params *ecr.GetAccountSettingInput, optFns ...func(*ecr.Options)) (*ecr.GetAccountSettingOutput, error)
	GetAuthorizationToken(ctx context.Context, params *ecr.GetAuthorizationTokenInput, optFns ...func(*ecr.Options)) (*ecr.GetAuthorizationTokenOutput, error)
	GetDownloadUrlForLayer(ctx context.Context, params *ecr.GetDownloadUrlForLayerInput, optFns ...func(*ecr.Options)) (*ecr.GetDownloadUrlForLayerOutput, error)
	GetLifecyclePolicy(ctx context.Context, params *ecr.GetLifecyclePolicyInput, optFns ...func(*ecr.Options)) (*ecr.GetLifecyclePolicyOutput, error)
	GetLifecyclePolicyPreview(ctx context.Context, params *ecr.GetLifecyclePolicyPreviewInput, optFns ...func(*ecr.Options)) (*ecr.GetLifecyclePolicyPreviewOutput, error)
	GetRegistryPolicy(ctx context.Context, params *ecr.GetRegistryPolicyInput, optFns ...func(*ecr.Options)) (*ecr.GetRegistryPolicyOutput, error)
	GetRegistryScanningConfiguration(ctx context.Context, params *ecr.GetRegistryScanningConfigurationInput, optFns ...func(*ecr.Options)) (*ecr.GetRegistryScanningConfigurationOutput, error)
	GetRepositoryPolicy(ctx context.Context, params *ecr.GetRepositoryPolicyInput, optFns ...func(*ecr.Options)) (*ecr.GetRepositoryPolicyOutput, error)
	InitiateLayerUpload(ctx context.Context, params *ecr.InitiateLayerUploadInput, optFns ...func(*ecr.Options)) (*ecr.InitiateLayerUploadOutput, error)
	ListImages(ctx context.Context, params *ecr.ListImagesInput, optFns ...func(*ecr.Options)) (*ecr.ListImagesOutput, error)
	ListTagsForResource(ctx context.Context, params *ecr.ListTagsForResourceInput, optFns ...func(*ecr.Options)) (*ecr.ListTagsForResourceOutput, error)
	PutAccountSetting(ctx context.Context, params *ecr.PutAccountSettingInput, optFns ...func(*ecr.Options)) (*ecr.PutAccountSettingOutput, error)
	PutImage(ctx context.Context, params *ecr.PutImageInput, optFns ...func(*ecr.Options)) (*ecr.PutImageOutput, error)
	PutImageScanningConfiguration(ctx context.Context, params *ecr.PutImageScanningConfigurationInput, optFns ...func(*ecr.Options)) (*ecr.PutImageScanningConfigurationOutput, error)
	PutImageTagMutability(ctx context.Context, params *ecr.PutImageTagMutabilityInput, optFns ...func(*ecr.Options)) (*ecr.PutImageTagMutabilityOutput, error)
	PutLifecyclePolicy(ctx context.Context, params *ecr.PutLifecyclePolicyInput, optFns ...func(*ecr.Options)) (*ecr.PutLifecyclePolicyOutput, error)
	PutRegistryPolicy(ctx context.Context, params *ecr.PutRegistryPolicyInput, optFns ...func(*ecr.Options)) (*ecr.PutRegistryPolicyOutput, error)
	PutRegistryScanningConfiguration(ctx context.Context, params *ecr.PutRegistryScanningConfigurationInput, optFns ...func(*ecr.Options)) (*ecr.PutRegistryScanningConfigurationOutput, error)
	PutReplicationConfiguration(ctx context.Context, params *ecr.PutReplicationConfigurationInput, optFns ...func(*ecr.Options)) (*ecr.PutReplicationConfigurationOutput, error)
	SetRepositoryPolicy(ctx context.Context, params *ecr.SetRepositoryPolicyInput, optFns ...func(*ecr.Options)) (*ecr.SetRepositoryPolicyOutput, error)
	StartImageScan(ctx context.Context, params *ecr.StartImageScanInput, optFns ...func(*ecr.Options)) (*ecr.StartImageScanOutput, error)
	StartLifecyclePolicyPreview(ctx context.Context, params *ecr.StartLifecyclePolicyPreviewInput, optFns ...func(*ecr.Options)) (*ecr.StartLifecyclePolicyPreviewOutput, error)
	TagResource(ctx context.Context, params *ecr.TagResourceInput, optFns ...func(*ecr.Options)) (*ecr.TagResourceOutput, error)
	UntagResource(ctx context.Context, params *ecr.UntagResourceInput, optFns ...func(*ecr.Options)) (*ecr.UntagResourceOutput, error)
	UpdatePullThroughCacheRule(ctx context.Context, params *ecr.UpdatePullThroughCacheRuleInput, optFns ...func(*ecr.Options)) (*ecr.UpdatePullThroughCacheRuleOutput, error)
	UpdateRepositoryCreationTemplate(ctx context.Context, params *ecr.UpdateRepositoryCreationTemplateInput, optFns ...func(*ecr.Options)) (*ecr.UpdateRepositoryCreationTemplateOutput, error)
	UploadLayerPart(ctx context.Context, params *ecr.UploadLayerPartInput, optFns ...func(*ecr.Options)) (*ecr.UploadLayerPartOutput, error)
	ValidatePullThroughCacheRule(ctx context.Context, params *ecr.ValidatePullThroughCacheRuleInput, optFns ...func(*ecr.Options)) (*ecr.ValidatePullThroughCacheRuleOutput, error)
}

// DiscoveryAPI is the slice of the Application Discovery Service client the ads
// commands call.
type DiscoveryAPI interface {
	AssociateConfigurationItemsToApplication(ctx context.Context, params *ads.AssociateConfigurationItemsToApplicationInput, optFns ...func(*ads.Options)) (*ads.AssociateConfigurationItemsToApplicationOutput, error)
	BatchDeleteAgents(ctx context.Context, params *ads.BatchDeleteAgentsInput, optFns ...func(*ads.Options)) (*ads.BatchDeleteAgentsOutput, error)
	BatchDeleteImportData(ctx context.Context, params *ads.BatchDeleteImportDataInput, optFns ...func(*ads.Options)) (*ads.BatchDeleteImportDataOutput, error)
	CreateApplication(ctx context.Context, params *ads.CreateApplicationInput, optFns ...func(*ads.Options)) (*ads.CreateApplicationOutput, error)
	CreateTags(ctx context.Context, params *ads.CreateTagsInput, optFns ...func(*ads.Options)) (*ads.CreateTagsOutput, error)
	DeleteApplications(ctx context.Context, params *ads.DeleteApplicationsInput, optFns ...func(*ads.Options)) (*ads.DeleteApplicationsOutput, error)
	DeleteTags(ctx context.Context, params *ads.DeleteTagsInput, optFns ...func(*ads.Options)) (*ads.DeleteTagsOutput, error)
	DescribeAgents(ctx context.Context, params *ads.DescribeAgentsInput, optFns ...func(*ads.Options)) (*ads.DescribeAgentsOutput, error)
	DescribeBatchDeleteConfigurationTask(ctx context.Context, params *ads.DescribeBatchDeleteConfigurationTaskInput, optFns ...func(*ads.Options)) (*ads.DescribeBatchDeleteConfigurationTaskOutput, error)
	DescribeConfigurations(ctx context.Context, params *ads.DescribeConfigurationsInput, optFns ...func(*ads.Options)) (*ads.DescribeConfigurationsOutput, error)
	DescribeContinuousExports(ctx context.Context, params *ads.DescribeContinuousExportsInput, optFns ...func(*ads.Options)) (*ads.DescribeContinuousExportsOutput, error)
	DescribeExportConfigurations(ctx context.Context, params *ads.DescribeExportConfigurationsInput, optFns ...func(*ads.Options)) (*ads.DescribeExportConfigurationsOutput, error)
	DescribeExportTasks(ctx context.Context, params *ads.DescribeExportTasksInput, optFns ...func(*ads.Options)) (*ads.DescribeExportTasksOutput, error)
	DescribeImportTasks(ctx context.Context, params *ads.DescribeImportTasksInput, optFns ...func(*ads.Options)) (*ads.DescribeImportTasksOutput, error)
	DescribeTags(ctx context.Context, params *ads.DescribeTagsInput, optFns ...func(*ads.Options)) (*ads.DescribeTagsOutput, error)
	DisassociateConfigurationItemsFromApplication(ctx context.Context, params *ads.DisassociateConfigurationItemsFromApplicationInput, optFns ...func(*ads.Options)) (*ads.DisassociateConfigurationItemsFromApplicationOutput, error)
	ExportConfigurations(ctx context.Context, params *ads.ExportConfigurationsInput, optFns ...func(*ads.Options)) (*ads.ExportConfigurationsOutput, error)
	GetDiscoverySummary(ctx context.Context, params *ads.GetDiscoverySummaryInput, optFns ...func(*ads.Options)) (*ads.GetDiscoverySummaryOutput, error)
	ListConfigurations(ctx context.Context, params *ads.ListConfigurationsInput, optFns ...func(*ads.Options)) (*ads.ListConfigurationsOutput, error)
	ListServerNeighbors(ctx context.Context, params *ads.ListServerNeighborsInput, optFns ...func(*ads.Options)) (*ads.ListServerNeighborsOutput, error)
	StartBatchDeleteConfigurationTask(ctx context.Context, params *ads.StartBatchDeleteConfigurationTaskInput, optFns ...func(*ads.Options)) (*ads.StartBatchDeleteConfigurationTaskOutput, error)
	StartContinuousExport(ctx context.Context, params *ads.StartContinuousExportInput, optFns ...func(*ads.Options)) (*ads.StartContinuousExportOutput, error)
	StartDataCollectionByAgentIds(ctx context.Context, params *ads.StartDataCollectionByAgentIdsInput, optFns ...func(*ads.Options)) (*ads.StartDataCollectionByAgentIdsOutput, error)
	StartExportTask(ctx context.Context, params *ads.StartExportTaskInput, optFns ...func(*ads.Options)) (*ads.StartExportTaskOutput, error)
	StartImportTask(ctx context.Context, params *ads.StartImportTaskInput, optFns ...func(*ads.Options)) (*ads.StartImportTaskOutput, error)
	StopContinuousExport(ctx context.Context, params *ads.StopContinuousExportInput, optFns ...func(*ads.Options)) (*ads.StopContinuousExportOutput, error)
	StopDataCollectionByAgentIds(ctx context.Context, params *ads.StopDataCollectionByAgentIdsInput, optFns ...func(*ads.Options)) (*ads.StopDataCollectionByAgentIdsOutput, error)
	UpdateApplication(ctx context.Context, params *ads.UpdateApplicationInput, optFns ...func(*ads.Options)) (*ads.UpdateApplicationOutput, error)
}

// S3API is the S3 surface used to stage import files.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Clients bundles the service clients for one command invocation along with
// the resolved settings used for cache keys and messages.
type Clients struct {
	ECR         ECRAPI
	Discovery   DiscoveryAPI
	S3          S3API
	Credentials awsv2.CredentialsProvider
	Region      string
	Profile     string
	Endpoint    string
}

// NewClients constructs all service clients from one config. Client
// construction does no I/O, so building the unused ones is free.
func NewClients(cfg awsv2.Config, profile string) *Clients {
	return &Clients{
		ECR:         NewECR(cfg),
		Discovery:   NewDiscovery(cfg),
		S3:          NewS3(cfg),
		Credentials: cfg.Credentials,
		Region:      cfg.Region,
		Profile:     profile,
		Endpoint:    awsv2.ToString(cfg.BaseEndpoint),
	}
}

// AccessKeyID resolves the credentials and returns their access key, or ""
// when the clients carry no credentials provider.
func (c *Clients) AccessKeyID(ctx context.Context) (string, error) {
	if c.Credentials == nil {
		return "", nil
	}
	creds, err := c.Credentials.Retrieve(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to resolve credentials: %w", err)
	}
	return creds.AccessKeyID, nil
}

// NewECR constructs a v2 ECR client from the provided config.
func NewECR(cfg awsv2.Config, optFns ...func(*ecr.Options)) *ecr.Client {
	return ecr.NewFromConfig(cfg, optFns...)
}

// NewDiscovery constructs a v2 Application Discovery Service client.
func NewDiscovery(cfg awsv2.Config, optFns ...func(*ads.Options)) *ads.Client {
	return ads.NewFromConfig(cfg, optFns...)
}

// NewS3 constructs a v2 S3 client from the provided config. Additional service
// options can be supplied via optFns.
func NewS3(cfg awsv2.Config, optFns ...func(*s3.Options)) *s3.Client {
	return s3.NewFromConfig(cfg, optFns...)
}

// Compile-time checks that the SDK clients satisfy the narrow interfaces.
var (
	_ ECRAPI       = (*ecr.Client)(nil)
	_ DiscoveryAPI = (*ads.Client)(nil)
	_ S3API        = (*s3.Client)(nil)
)
