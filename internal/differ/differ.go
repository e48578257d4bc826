// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package differ renders the difference between two JSON policy documents.
// It backs --what-if on the policy-setting commands.
package differ

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/yudai/gojsondiff"
	"github.com/yudai/gojsondiff/formatter"
)

// Diff compares the current and proposed JSON documents.  An empty current
// document is treated as {}.  It returns the ASCII rendering of the change and
// whether anything changed at all.
func Diff(current, proposed string, color bool) (string, bool, error) {
	if strings.TrimSpace(current) == "" {
		current = "{}"
	}

	var left map[string]interface{}
	if err := json.Unmarshal([]byte(current), &left); err != nil {
		return "", false, fmt.Errorf("current document is not a JSON object: %w", err)
	}
	var right map[string]interface{}
	if err := json.Unmarshal([]byte(proposed), &right); err != nil {
		return "", false, fmt.Errorf("proposed document is not a JSON object: %w", err)
	}

	d := gojsondiff.New().CompareObjects(left, right)
	if !d.Modified() {
		return "", false, nil
	}

	f := formatter.NewAsciiFormatter(left, formatter.AsciiFormatterConfig{
		ShowArrayIndex: true,
		Coloring:       color,
	})
	out, err := f.Format(d)
	if err != nil {
		return "", true, fmt.Errorf("failed to format diff: %w", err)
	}

	return out, true, nil
}
