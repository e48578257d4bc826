// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package filters

import (
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/dustin/go-humanize"
	"github.com/tidwall/gjson"

	"github.com/staranto/awsctlgo/internal/attrs"
	"github.com/staranto/awsctlgo/internal/driller"
)

// filterRegex splits a --filter term into key, operand and target.  The
// operand is one of = ^ ~ < > @ or /, optionally negated with a leading !.
var filterRegex = regexp.MustCompile(`^(.*?)(!?[=^~<>@/])(.*)$`)

// Filter is one parsed --filter term such as "Tags@env=prod",
// "ImageSizeInBytes>500MiB" or "RepositoryName!^tmp-".
type Filter struct {
	Key     string
	Negate  bool
	Operand string
	Target  string
}

// BuildFilters parses a --filter spec.  Terms are comma separated unless
// AWSCTL_FILTER_DELIM says otherwise.  Malformed terms are logged and dropped.
func BuildFilters(spec string) []Filter {
	if spec == "" {
		return nil
	}

	delim := ","
	if d, ok := os.LookupEnv("AWSCTL_FILTER_DELIM"); ok {
		delim = d
	}

	var filters []Filter
	for _, term := range strings.Split(spec, delim) {
		parts := filterRegex.FindStringSubmatch(term)
		if parts == nil {
			log.Errorf("invalid filter: %s", term)
			continue
		}
		op, negate := strings.CutPrefix(parts[2], "!")
		filters = append(filters, Filter{
			Key:     parts[1],
			Negate:  negate,
			Operand: op,
			Target:  parts[3],
		})
	}
	return filters
}

// Match reports whether an item's value satisfies the filter.  A missing or
// null value never matches, negated or not.
func (f Filter) Match(value gjson.Result) bool {
	if !value.Exists() || value.Type == gjson.Null {
		return false
	}
	matched, ok := f.match(value)
	if !ok {
		return false
	}
	return matched != f.Negate
}

// match evaluates the un-negated filter.  ok is false when the target cannot
// be compared with the value at all.
func (f Filter) match(value gjson.Result) (matched bool, ok bool) {
	if f.Operand == "@" {
		return contains(value, f.Target), true
	}

	switch {
	case value.IsArray():
		// ImageTags=latest holds when any tag is latest.
		for _, elem := range value.Array() {
			if m, ok := f.match(elem); ok && m {
				return true, true
			}
		}
		return false, true
	case value.IsObject():
		log.Debugf("filter %s%s cannot compare an object", f.Key, f.Operand)
		return false, false
	case value.Type == gjson.Number && isOrdering(f.Operand):
		return compareNumber(value.Float(), f.Operand, f.Target)
	}

	s := value.String()
	if isOrdering(f.Operand) && f.Operand != "=" {
		if m, ok := compareTime(s, f.Operand, f.Target); ok {
			return m, true
		}
	}
	return compareString(s, f.Operand, f.Target)
}

func isOrdering(op string) bool {
	return op == "=" || op == "<" || op == ">"
}

// contains implements @.  Against a string it is a substring test, against a
// list of strings such as ImageTags it is membership and against a list of
// {Key,Value} tags it matches "key" or "key=value".  A map such as an ADS
// configuration item is tested the same way on its own keys.
func contains(value gjson.Result, target string) bool {
	switch {
	case value.IsArray():
		for _, elem := range value.Array() {
			if elem.IsObject() {
				if tagMatches(elem, target) {
					return true
				}
				continue
			}
			if elem.String() == target {
				return true
			}
		}
		return false
	case value.IsObject():
		key, want, hasValue := strings.Cut(target, "=")
		got := value.Get(gjson.Escape(key))
		if !got.Exists() {
			return false
		}
		return !hasValue || got.String() == want
	default:
		return strings.Contains(value.String(), target)
	}
}

// tagMatches tests one ECR Tag or ADS ConfigurationTag against "key" or
// "key=value".
func tagMatches(tag gjson.Result, target string) bool {
	key, want, hasValue := strings.Cut(target, "=")
	if tag.Get("Key").String() != key {
		return false
	}
	return !hasValue || tag.Get("Value").String() == want
}

// compareNumber compares with a numeric target.  Targets may carry a byte
// unit so sizes read naturally, e.g. ImageSizeInBytes>1.5GiB.
func compareNumber(value float64, op, target string) (bool, bool) {
	target = strings.TrimSpace(target)
	tgt, err := strconv.ParseFloat(target, 64)
	if err != nil {
		b, berr := humanize.ParseBytes(target)
		if berr != nil {
			log.Errorf("invalid numeric target: %s", target)
			return false, false
		}
		tgt = float64(b)
	}

	switch op {
	case "=":
		return value == tgt, true
	case ">":
		return value > tgt, true
	default:
		return value < tgt, true
	}
}

// timeLayouts are the target forms accepted against timestamps such as
// ImagePushedAt or ADS's lastHealthPingTime.
var timeLayouts = []string{time.RFC3339Nano, time.DateTime, time.DateOnly}

// compareTime orders timestamps as instants rather than text, so offsets and
// fractional seconds compare correctly.  ok is false unless both sides parse.
func compareTime(value, op, target string) (bool, bool) {
	v, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return false, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, target); err == nil {
			if op == ">" {
				return v.After(t), true
			}
			return v.Before(t), true
		}
	}
	return false, false
}

func compareString(value, op, target string) (bool, bool) {
	switch op {
	case "=":
		return value == target, true
	case "~":
		return strings.EqualFold(value, target), true
	case "^":
		return strings.HasPrefix(value, target), true
	case ">":
		return value > target, true
	case "<":
		return value < target, true
	case "/":
		re, err := regexp.Compile(target)
		if err != nil {
			log.Errorf("invalid regex: %s", target)
			return false, false
		}
		return re.MatchString(value), true
	}
	log.Errorf("unsupported filtering operand: %s", op)
	return false, false
}

// boundFilter is a Filter with its key resolved to an item path.
type boundFilter struct {
	Filter
	path string
}

// bind resolves each filter key.  A key naming an attr by its output key
// filters on that attr's path; anything else is a path into the item, so rows
// can be filtered on fields that are not displayed.
func bind(filters []Filter, al attrs.AttrList) []boundFilter {
	bound := make([]boundFilter, 0, len(filters))
	for _, f := range filters {
		b := boundFilter{Filter: f, path: strings.TrimPrefix(f.Key, ".")}
		for _, a := range al {
			if a.OutputKey == f.Key {
				b.path = a.Key
				break
			}
		}
		bound = append(bound, b)
	}
	return bound
}

// FilterDataset keeps the items matching every filter in spec and projects
// them onto the attrs, keyed by output key.  Transforms are left to the
// renderer.
func FilterDataset(candidates gjson.Result, al attrs.AttrList, spec string) []map[string]interface{} {
	items := candidates.Array()
	bound := bind(BuildFilters(spec), al)
	warnUnknownKeys(items, bound)

	var rows []map[string]interface{}
	for _, candidate := range items {
		if !keep(candidate, bound) {
			continue
		}
		row := make(map[string]interface{}, len(al))
		for _, a := range al {
			row[a.OutputKey] = driller.Driller(candidate.Raw, a.Key).Value()
		}
		rows = append(rows, row)
	}
	return rows
}

// keep reports whether candidate passes every filter.  Values are looked up
// with driller.Collect so a one element Tags list is still a list.
func keep(candidate gjson.Result, bound []boundFilter) bool {
	for _, b := range bound {
		if !b.Match(driller.Collect(candidate.Raw, b.path)) {
			return false
		}
	}
	return true
}

// warnUnknownKeys logs filters whose key exists in none of the items.  Such a
// filter drops every row, which is usually a typo in the key.
func warnUnknownKeys(items []gjson.Result, bound []boundFilter) {
	if len(items) == 0 {
		return
	}
	for _, b := range bound {
		found := false
		for _, item := range items {
			if driller.Collect(item.Raw, b.path).Exists() {
				found = true
				break
			}
		}
		if !found {
			log.Warnf("filter key not found in any item: %s", b.Key)
		}
	}
}
