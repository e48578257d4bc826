// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package aws

import (
	"context"
	"errors"
	"net/http"
	"testing"

	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func apiFailure(code, msg string, status int, requestID string) error {
	return &smithy.OperationError{
		ServiceID:     "ECR",
		OperationName: "DescribeRepositories",
		Err: &awshttp.ResponseError{
			ResponseError: &smithyhttp.ResponseError{
				Response: &smithyhttp.Response{Response: &http.Response{StatusCode: status}},
				Err:      &smithy.GenericAPIError{Code: code, Message: msg},
			},
			RequestID: requestID,
		},
	}
}

func TestFriendlyAWS(t *testing.T) {
	ectx := ErrorContext{
		Service:   "ecr",
		Operation: "describe repositories",
		Resource:  "repository my-repo",
		Region:    "us-east-1",
	}

	t.Run("nil", func(t *testing.T) {
		assert.NoError(t, FriendlyAWS(nil, ectx))
	})

	t.Run("api error", func(t *testing.T) {
		src := apiFailure("RepositoryNotFoundException", "The repository does not exist", 400, "req-123")
		err := FriendlyAWS(src, ectx)

		var oe *OperationError
		require.True(t, errors.As(err, &oe))
		assert.Equal(t, "RepositoryNotFoundException", oe.Code)
		assert.Equal(t, "The repository does not exist", oe.Message)
		assert.Equal(t, 400, oe.StatusCode)
		assert.Equal(t, "req-123", oe.RequestID)
		assert.ErrorIs(t, err, src)
		assert.Equal(t,
			"ecr describe repositories failed for repository my-repo: RepositoryNotFoundException: The repository does not exist (status 400, region us-east-1, request id req-123)",
			err.Error())
		assert.Equal(t, "RepositoryNotFoundException", ErrorCode(err))
	})

	t.Run("canceled", func(t *testing.T) {
		err := FriendlyAWS(context.Canceled, ectx)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, "Canceled", ErrorCode(err))
	})

	t.Run("plain error", func(t *testing.T) {
		err := FriendlyAWS(errors.New("dial tcp: no route"), ErrorContext{Service: "ads", Operation: "describe agents"})
		assert.Equal(t, "ads describe agents failed: dial tcp: no route", err.Error())
		assert.Equal(t, "", ErrorCode(err))
	})

	t.Run("already wrapped", func(t *testing.T) {
		inner := FriendlyAWS(apiFailure("NoSuchBucket", "missing", 404, ""), ErrorContext{Service: "s3", Operation: "PutObject"})
		err := FriendlyAWS(inner, ectx)
		assert.Same(t, inner, err)
		assert.Equal(t, "NoSuchBucket", ErrorCode(err))
	})
}

func TestLoadOptions(t *testing.T) {
	tests := []struct {
		name    string
		opts    []Option
		wantLen int
		wantErr bool
	}{
		{name: "defaults", wantLen: 0},
		{name: "profile and region", opts: []Option{WithProfile("dev"), WithRegion("us-west-2")}, wantLen: 2},
		{name: "endpoint", opts: []Option{WithEndpointURL("http://localhost:4566")}, wantLen: 1},
		{name: "static credentials", opts: []Option{WithStaticCredentials("AKID", "SECRET", "")}, wantLen: 1},
		{name: "half credentials", opts: []Option{WithStaticCredentials("AKID", "", "")}, wantErr: true},
		{name: "max attempts", opts: []Option{WithMaxAttempts(5)}, wantLen: 1},
		{name: "zero max attempts ignored", opts: []Option{WithMaxAttempts(0)}, wantLen: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var o options
			for _, opt := range tt.opts {
				opt(&o)
			}
			got, err := o.loadOptions()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, got, tt.wantLen)
		})
	}
}
