// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package driller walks dotted paths through marshalled ECR and Application
// Discovery Service responses for --select, --attrs and --filter.
package driller
