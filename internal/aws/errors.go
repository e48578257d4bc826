// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package aws

import (
	"context"
	"errors"
	"fmt"
	"strings"

	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/smithy-go"
)

// ErrorContext names what a command was doing when a call failed.
type ErrorContext struct {
	Service   string
	Operation string
	Resource  string
	Region    string
	Profile   string
}

// OperationError is the envelope every failed API call is returned in. It
// keeps the SDK error reachable through Unwrap.
type OperationError struct {
	ErrorContext
	Code       string
	Message    string
	StatusCode int
	RequestID  string
	Err        error
}

func (e *OperationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s failed", e.Service, e.Operation)
	if e.Resource != "" {
		fmt.Fprintf(&b, " for %s", e.Resource)
	}
	if e.Code != "" {
		fmt.Fprintf(&b, ": %s", e.Code)
	}
	if e.Message != "" {
		fmt.Fprintf(&b, ": %s", e.Message)
	}
	var details []string
	if e.StatusCode != 0 {
		details = append(details, fmt.Sprintf("status %d", e.StatusCode))
	}
	if e.Region != "" {
		details = append(details, "region "+e.Region)
	}
	if e.Profile != "" {
		details = append(details, "profile "+e.Profile)
	}
	if e.RequestID != "" {
		details = append(details, "request id "+e.RequestID)
	}
	if len(details) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(details, ", "))
	}
	return b.String()
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

// FriendlyAWS wraps err in an OperationError, lifting the service error code,
// HTTP status and request id out of the smithy error chain. Context
// cancellation is reported as such rather than as an API failure. An error
// that already carries an OperationError is returned unchanged.
func FriendlyAWS(err error, ectx ErrorContext) error {
	if err == nil {
		return nil
	}

	var wrapped *OperationError
	if errors.As(err, &wrapped) {
		return err
	}

	oe := &OperationError{ErrorContext: ectx, Err: err}

	switch {
	case errors.Is(err, context.Canceled):
		oe.Code = "Canceled"
		oe.Message = "operation canceled"
		return oe
	case errors.Is(err, context.DeadlineExceeded):
		oe.Code = "DeadlineExceeded"
		oe.Message = "operation timed out"
		return oe
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		oe.Code = apiErr.ErrorCode()
		oe.Message = apiErr.ErrorMessage()
	}

	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) {
		oe.StatusCode = respErr.HTTPStatusCode()
		oe.RequestID = respErr.ServiceRequestID()
	}

	if oe.Message == "" {
		var opErr *smithy.OperationError
		if errors.As(err, &opErr) {
			oe.Message = opErr.Err.Error()
		} else {
			oe.Message = err.Error()
		}
	}

	return oe
}

// ErrorCode returns the AWS error code carried by err, or "".
func ErrorCode(err error) string {
	var oe *OperationError
	if errors.As(err, &oe) {
		return oe.Code
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}
