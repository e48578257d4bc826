// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package attrs

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/dustin/go-humanize"

	"github.com/staranto/awsctlgo/internal/config"
)

// Attr is one output column: a path into the JSON rendering of an SDK
// response item such as RepositoryName or
// ImageScanFindingsSummary.FindingSeverityCounts.HIGH.
type Attr struct {
	// Key is the path extracted from each item.
	Key string
	// Include is false for attrs only used to filter or sort.
	Include bool
	// OutputKey names the value in json/yaml output and titles the text column.
	OutputKey string
	// TransformSpec holds the transform letters and lengths, e.g. "u", "t" or
	// "h,-20".
	TransformSpec string
}

// lengthSpec finds the truncation lengths in a transform spec.
var lengthSpec = regexp.MustCompile(`-?\d+`)

// localTime is how a localized timestamp is rendered.
const localTime = "2006-01-02T15:04:05MST"

// Transform applies the attr's transform spec to one value.  Numbers only
// honor h.  Strings that are not timestamps go through case and length
// transforms.  Anything else is returned unchanged.
func (a *Attr) Transform(value interface{}) interface{} {
	switch v := value.(type) {
	case float64:
		if a.has("h") && v >= 0 {
			return humanize.IBytes(uint64(v))
		}
		return v
	case string:
		if a.has("h") {
			if t, err := time.Parse(time.RFC3339, v); err == nil {
				return humanize.Time(t)
			}
		}
		if a.has("tT") {
			v = a.localize(v)
		}
		return truncate(letterCase(v, a.TransformSpec), a.TransformSpec)
	default:
		return value
	}
}

func (a *Attr) has(letters string) bool {
	return strings.ContainsAny(a.TransformSpec, letters)
}

// localize renders an RFC3339 timestamp in the configured zone.  The zone is
// the config file's timezone, then AWSCTL_TZ, then TZ.  With none of them
// set, or an unknown zone, the value is returned as is.
func (a *Attr) localize(value string) string {
	tz, _ := config.GetString("timezone", "")
	for _, env := range []string{"AWSCTL_TZ", "TZ"} {
		if tz != "" {
			break
		}
		tz = os.Getenv(env)
	}
	if tz == "" {
		return value
	}

	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.WithError(err).Debugf("unknown timezone %s", tz)
		return value
	}

	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		// Stop trying for the rest of the rows in this column.
		log.Error("failed to parse time: " + value)
		a.TransformSpec = strings.NewReplacer("t", "", "T", "").Replace(a.TransformSpec)
		return value
	}
	return t.In(loc).Format(localTime)
}

// letterCase applies whichever of l/L or u/U appears last in spec, so a
// column's own case beats one inherited from '*'.
func letterCase(value, spec string) string {
	lower := strings.LastIndexAny(spec, "lL")
	upper := strings.LastIndexAny(spec, "uU")
	switch {
	case lower > upper:
		return strings.ToLower(value)
	case upper > lower:
		return strings.ToUpper(value)
	}
	return value
}

// truncate applies the last length in spec.  A positive length keeps the
// head of the value and a negative one keeps both ends around "..".
func truncate(value, spec string) string {
	lengths := lengthSpec.FindAllString(spec, -1)
	if len(lengths) == 0 {
		return value
	}

	n, _ := strconv.Atoi(lengths[len(lengths)-1])
	width := n
	if width < 0 {
		width = -width
	}
	if len(value) <= width {
		return value
	}
	if n >= 0 {
		return value[:n]
	}

	side := max(width/2-1, 0)
	return value[:side] + ".." + value[len(value)-side:]
}

type AttrList []Attr

// String renders the list in --attrs syntax.
func (a *AttrList) String() string {
	specs := make([]string, 0, len(*a))
	for _, attr := range *a {
		specs = append(specs, fmt.Sprintf("%s:%s:%s", attr.Key, attr.OutputKey, attr.TransformSpec))
	}
	return strings.Join(specs, ",")
}

// Set parses a comma separated --attrs value and merges it into the list.
// Each spec is Key[:OutputKey[:Transform]].  A spec naming an attr already in
// the list, by key or output key, changes that attr in place.  New specs are
// appended.
func (a *AttrList) Set(value string) error {
	if value == "" || value == "*" {
		return nil
	}
	for _, spec := range strings.Split(value, ",") {
		a.merge(parseAttr(spec))
	}
	return nil
}

// parseAttr reads one spec.  A leading ! hides the column and a leading . is
// dropped.  Without an output key the last path segment is used.  With an
// empty one the whole key is.
func parseAttr(spec string) Attr {
	fields := strings.Split(spec, ":")

	key := strings.TrimSpace(fields[0])
	hidden := strings.HasPrefix(key, "!")
	key = strings.TrimPrefix(strings.TrimPrefix(key, "!"), ".")

	attr := Attr{Key: key, Include: !hidden && key != "*"}

	switch {
	case len(fields) == 1:
		attr.OutputKey = key[strings.LastIndex(key, ".")+1:]
	case strings.TrimSpace(fields[1]) == "":
		attr.OutputKey = key
	default:
		attr.OutputKey = strings.TrimSpace(fields[1])
	}

	if len(fields) > 2 {
		attr.TransformSpec = strings.TrimSpace(fields[2])
	}
	return attr
}

func (a *AttrList) merge(attr Attr) {
	for i := range *a {
		existing := &(*a)[i]
		if existing.Key == attr.Key || existing.OutputKey == attr.Key {
			existing.Include = attr.Include
			existing.OutputKey = attr.OutputKey
			existing.TransformSpec = attr.TransformSpec
			return
		}
	}
	*a = append(*a, attr)
}

// SetGlobalTransformSpec prefixes every attr's transform with the one given
// to '*'.  Only the first '*' counts.
func (a *AttrList) SetGlobalTransformSpec() error {
	var global string
	for _, attr := range *a {
		if attr.Key == "*" {
			global = attr.TransformSpec
			break
		}
	}
	if global == "" {
		return nil
	}

	for i := range *a {
		(*a)[i].TransformSpec = global + "," + (*a)[i].TransformSpec
	}
	return nil
}

func (a *AttrList) Type() string {
	return "list"
}
