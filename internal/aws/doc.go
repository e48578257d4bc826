// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package aws loads AWS SDK configuration, constructs the service clients the
// commands drive, and turns SDK errors into friendly operation errors.
package aws
