// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package version

// Version is stamped at build time with
// -ldflags "-X github.com/staranto/awsctlgo/internal/version.Version=...".
var Version = "dev"
