// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package output

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/tidwall/gjson"

	"github.com/staranto/awsctlgo/internal/driller"
)

// metadataKey is the middleware metadata every SDK output carries.  It never
// marshals to anything useful.
const metadataKey = "ResultMetadata"

// Marshal renders an SDK value as JSON with the middleware metadata removed.
func Marshal(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}

	doc := gjson.ParseBytes(b)
	if !doc.IsObject() || !doc.Get(metadataKey).Exists() {
		return b, nil
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	doc.ForEach(func(key, value gjson.Result) bool {
		if key.String() == metadataKey {
			return true
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		buf.WriteString(key.Raw)
		buf.WriteByte(':')
		buf.WriteString(value.Raw)
		return true
	})
	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// Select extracts path from a marshalled page and returns it as a list of raw
// JSON items.  An empty path or "*" selects the whole page.  A selected array
// contributes each of its elements, anything else contributes itself.  Arrays
// below the top level stay whole, so every page yields items of one shape.
// Missing and null selections contribute nothing.
func Select(page []byte, path string) []string {
	path = strings.TrimPrefix(path, ".")

	var selected gjson.Result
	if path == "" || path == "*" {
		selected = gjson.ParseBytes(page)
	} else {
		selected = driller.Collect(string(page), path)
	}

	if !selected.Exists() || selected.Type == gjson.Null {
		return nil
	}

	if selected.IsArray() {
		var items []string
		for _, item := range selected.Array() {
			items = append(items, item.Raw)
		}
		return items
	}

	return []string{selected.Raw}
}

// Items joins raw JSON items into a single JSON array.  Scalar items are
// wrapped as {"value": item} so they render as a one column table.
func Items(items []string) gjson.Result {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, item := range items {
		if i > 0 {
			buf.WriteByte(',')
		}
		r := gjson.Parse(item)
		if r.IsObject() {
			buf.WriteString(item)
			continue
		}
		buf.WriteString(`{"value":`)
		buf.WriteString(item)
		buf.WriteByte('}')
	}
	buf.WriteByte(']')
	return gjson.ParseBytes(buf.Bytes())
}

// RawItems joins raw JSON items into an indented JSON array without wrapping.
func RawItems(items []string) []byte {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, item := range items {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(item)
	}
	buf.WriteByte(']')

	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", "  "); err != nil {
		return buf.Bytes()
	}
	out.WriteByte('\n')
	return out.Bytes()
}
