// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package output turns SDK responses into rows and renders them.  Responses
// are marshalled to JSON, the selected items are projected through --attrs,
// filtered, transformed, sorted and finally written as a table, JSON, YAML or
// the raw JSON of the selection.
package output
