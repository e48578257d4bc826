// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package driller

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// segmentRegex splits a path segment such as "ImageTags[2]" into key and index.
var segmentRegex = regexp.MustCompile(`^(.*?)(?:\[(\d+)\])?$`)

// Driller looks up a dotted path inside one item, typically to read a column
// or filter key.  Single element arrays are transparent, so "Tags.Key" reads a
// plain string from an item with one tag.  An explicit [n] picks an element
// and a key applied to a longer array collects that key from every element.
func Driller(doc string, path string) gjson.Result {
	current := gjson.Parse(doc)
	if path == "" {
		return current
	}
	if literal, ok := literalKey(current, path); ok {
		return literal
	}

	for _, segment := range strings.Split(path, ".") {
		key, index := splitSegment(segment)
		if key != "" {
			current = descend(current, key)
		}
		if index != "" {
			current = element(current, index)
		}
		if !current.Exists() {
			return gjson.Result{}
		}
	}

	if current.IsArray() {
		if elems := current.Array(); len(elems) == 1 {
			return elems[0]
		}
	}
	return current
}

// Collect looks up a dotted path across a whole response page.  Unlike Driller
// it keeps every array it passes through, so the shape of the result follows
// from the path and never from how many elements an array holds.
// "ImageDetails.ImageTags" is always a list with one tag list per image.
func Collect(doc string, path string) gjson.Result {
	current := gjson.Parse(doc)
	if path == "" {
		return current
	}
	if literal, ok := literalKey(current, path); ok {
		return literal
	}

	for _, segment := range strings.Split(path, ".") {
		key, index := splitSegment(segment)
		if key != "" {
			current = collectKey(current, key)
		}
		if index != "" {
			current = element(current, index)
		}
		if !current.Exists() {
			return gjson.Result{}
		}
	}
	return current
}

// literalKey handles keys such as ADS's "server.hostName" that contain dots
// themselves.
func literalKey(current gjson.Result, path string) (gjson.Result, bool) {
	if !strings.Contains(path, ".") || !current.IsObject() {
		return gjson.Result{}, false
	}
	literal := current.Get(gjson.Escape(path))
	return literal, literal.Exists()
}

func splitSegment(segment string) (string, string) {
	parts := segmentRegex.FindStringSubmatch(segment)
	return parts[1], parts[2]
}

func element(current gjson.Result, index string) gjson.Result {
	if !current.IsArray() {
		return gjson.Result{}
	}
	i, _ := strconv.Atoi(index)
	elems := current.Array()
	if i >= len(elems) {
		return gjson.Result{}
	}
	return elems[i]
}

func descend(current gjson.Result, key string) gjson.Result {
	escaped := gjson.Escape(key)
	if current.IsArray() {
		elems := current.Array()
		if len(elems) == 1 {
			return elems[0].Get(escaped)
		}
		return current.Get("#." + escaped)
	}
	return current.Get(escaped)
}

// collectKey reads key from an object, or from every element of an array,
// nesting as deep as the arrays do.  Elements without the key are skipped.
func collectKey(current gjson.Result, key string) gjson.Result {
	if !current.IsArray() {
		return current.Get(gjson.Escape(key))
	}

	var raws []string
	for _, elem := range current.Array() {
		if v := collectKey(elem, key); v.Exists() {
			raws = append(raws, v.Raw)
		}
	}
	return gjson.Parse("[" + strings.Join(raws, ",") + "]")
}
