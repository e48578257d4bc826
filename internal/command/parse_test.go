// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package command

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	adstypes "github.com/aws/aws-sdk-go-v2/service/applicationdiscoveryservice/types"
	"github.com/aws/aws-sdk-go-v2/service/ecr/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTags(t *testing.T) {
	tests := []struct {
		name    string
		specs   []string
		want    []KeyValue
		wantErr bool
	}{
		{"none", nil, []KeyValue{}, false},
		{"pairs", []string{"team=core", "env=prod"}, []KeyValue{{"team", "core"}, {"env", "prod"}}, false},
		{"empty value", []string{"flag="}, []KeyValue{{"flag", ""}}, false},
		{"value with equals", []string{"expr=a=b"}, []KeyValue{{"expr", "a=b"}}, false},
		{"no equals", []string{"team"}, nil, true},
		{"empty key", []string{" =x"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTags(tt.specs)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidValue)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseServerFilters(t *testing.T) {
	tests := []struct {
		name          string
		specs         []string
		withCondition bool
		want          []ServerFilter
		wantErr       bool
	}{
		{
			name:          "with condition",
			specs:         []string{"hostName:CONTAINS:web|api"},
			withCondition: true,
			want:          []ServerFilter{{Name: "hostName", Condition: "CONTAINS", Values: []string{"web", "api"}}},
		},
		{
			name:  "without condition",
			specs: []string{"STATUS:IMPORT_FAILED"},
			want:  []ServerFilter{{Name: "STATUS", Values: []string{"IMPORT_FAILED"}}},
		},
		{
			name:          "value keeps colons",
			specs:         []string{"server.ip:EQUALS:fe80::1"},
			withCondition: true,
			want:          []ServerFilter{{Name: "server.ip", Condition: "EQUALS", Values: []string{"fe80::1"}}},
		},
		{
			name:          "missing condition",
			specs:         []string{"hostName::web"},
			withCondition: true,
			wantErr:       true,
		},
		{
			name:          "too few parts",
			specs:         []string{"hostName:web"},
			withCondition: true,
			wantErr:       true,
		},
		{
			name:    "no values",
			specs:   []string{"STATUS:"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseServerFilters(tt.specs, tt.withCondition)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidValue)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseEnum(t *testing.T) {
	v, err := ParseEnum("tag-status", "TAGGED", types.TagStatus("").Values())
	require.NoError(t, err)
	assert.Equal(t, types.TagStatusTagged, v)

	_, err = ParseEnum("tag-status", "tagged", types.TagStatus("").Values())
	require.ErrorIs(t, err, ErrInvalidValue)
	assert.Contains(t, err.Error(), "--tag-status")

	vs, err := ParseEnums("format", []string{"CSV"}, adstypes.ExportDataFormat("").Values())
	require.NoError(t, err)
	assert.Equal(t, []adstypes.ExportDataFormat{adstypes.ExportDataFormatCsv}, vs)
}

func TestReadText(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"Version":"2012-10-17"}`), 0o600))

	got, err := ReadText("@" + path)
	require.NoError(t, err)
	assert.Equal(t, `{"Version":"2012-10-17"}`, got)

	got, err = ReadText(`{"inline":true}`)
	require.NoError(t, err)
	assert.Equal(t, `{"inline":true}`, got)

	_, err = ReadText("@" + filepath.Join(dir, "missing.json"))
	require.Error(t, err)
}

func TestParseTime(t *testing.T) {
	got, err := ParseTime("start-time", "2025-03-01T10:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC), *got)

	got, err = ParseTime("start-time", "2025-03-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), *got)

	got, err = ParseTime("start-time", "")
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = ParseTime("start-time", "yesterday")
	require.ErrorIs(t, err, ErrInvalidValue)
}

func TestImageIDs(t *testing.T) {
	ids := ImageIDs([]string{"v1"}, []string{"sha256:aaa"}, []string{"latest", "sha256:bbb"})
	require.Len(t, ids, 4)
	assert.Equal(t, "v1", awsv2.ToString(ids[0].ImageTag))
	assert.Equal(t, "sha256:aaa", awsv2.ToString(ids[1].ImageDigest))
	assert.Equal(t, "latest", awsv2.ToString(ids[2].ImageTag))
	assert.Nil(t, ids[2].ImageDigest)
	assert.Equal(t, "sha256:bbb", awsv2.ToString(ids[3].ImageDigest))
	assert.Nil(t, ids[3].ImageTag)

	assert.Empty(t, ImageIDs(nil, nil, nil))
}

func TestDescribeImageID(t *testing.T) {
	assert.Equal(t, "", describeImageID(nil))
	assert.Equal(t, "v1", describeImageID(&types.ImageIdentifier{ImageTag: awsv2.String("v1")}))
	assert.Equal(t, "sha256:a", describeImageID(&types.ImageIdentifier{ImageDigest: awsv2.String("sha256:a")}))
	assert.Equal(t, "v1@sha256:a", describeImageID(&types.ImageIdentifier{
		ImageTag:    awsv2.String("v1"),
		ImageDigest: awsv2.String("sha256:a"),
	}))
}

func TestParseScanningRules(t *testing.T) {
	rules, err := ParseScanningRules([]string{"scan_on_push:prod-*,api", "CONTINUOUS_SCAN"})
	require.NoError(t, err)
	require.Len(t, rules, 2)

	assert.Equal(t, types.ScanFrequencyScanOnPush, rules[0].ScanFrequency)
	require.Len(t, rules[0].RepositoryFilters, 2)
	assert.Equal(t, "prod-*", awsv2.ToString(rules[0].RepositoryFilters[0].Filter))
	assert.Equal(t, types.ScanningRepositoryFilterTypeWildcard, rules[0].RepositoryFilters[0].FilterType)
	assert.Equal(t, "api", awsv2.ToString(rules[0].RepositoryFilters[1].Filter))

	assert.Equal(t, types.ScanFrequencyContinuousScan, rules[1].ScanFrequency)
	require.Len(t, rules[1].RepositoryFilters, 1)
	assert.Equal(t, "*", awsv2.ToString(rules[1].RepositoryFilters[0].Filter))

	_, err = ParseScanningRules([]string{"HOURLY:*"})
	require.ErrorIs(t, err, ErrInvalidValue)

	_, err = ParseScanningRules([]string{":*"})
	require.ErrorIs(t, err, ErrInvalidValue)
}

func TestParseReplicationDestinations(t *testing.T) {
	dests, err := ParseReplicationDestinations([]string{"us-west-2", "eu-west-1:210987654321"})
	require.NoError(t, err)
	require.Len(t, dests, 2)
	assert.Equal(t, "us-west-2", awsv2.ToString(dests[0].Region))
	assert.Nil(t, dests[0].RegistryId)
	assert.Equal(t, "eu-west-1", awsv2.ToString(dests[1].Region))
	assert.Equal(t, "210987654321", awsv2.ToString(dests[1].RegistryId))

	_, err = ParseReplicationDestinations([]string{":123"})
	require.ErrorIs(t, err, ErrInvalidValue)
}

func TestParseOrderBy(t *testing.T) {
	got, err := ParseOrderBy([]string{"server.hostName", "server.osName:desc"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "server.hostName", awsv2.ToString(got[0].FieldName))
	assert.Equal(t, adstypes.OrderString(""), got[0].SortOrder)
	assert.Equal(t, adstypes.OrderStringDesc, got[1].SortOrder)

	_, err = ParseOrderBy([]string{":ASC"})
	require.ErrorIs(t, err, ErrInvalidValue)

	_, err = ParseOrderBy([]string{"server.hostName:SIDEWAYS"})
	require.ErrorIs(t, err, ErrInvalidValue)
}
