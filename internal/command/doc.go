// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package command defines the CLI command set for awsctl. Every ECR and
// Application Discovery Service operation is an Operation that binds flags
// into an SDK request, calls the client, optionally auto-iterates pages and
// hands the selected part of the response to the output pipeline.
package command
