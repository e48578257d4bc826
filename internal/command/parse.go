// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/urfave/cli/v3"
)

// ErrInvalidValue wraps every flag value that does not parse.
var ErrInvalidValue = errors.New("invalid value")

// KeyValue is one parsed --tag.
type KeyValue struct {
	Key   string
	Value string
}

// ParseTags parses repeated Key=Value flags.  The value may be empty, the
// key may not.
func ParseTags(specs []string) ([]KeyValue, error) {
	kvs := make([]KeyValue, 0, len(specs))
	for _, spec := range specs {
		k, v, ok := strings.Cut(spec, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("%w: tag %q must be Key=Value", ErrInvalidValue, spec)
		}
		kvs = append(kvs, KeyValue{Key: k, Value: v})
	}
	return kvs, nil
}

// ServerFilter is one parsed --server-filter.
type ServerFilter struct {
	Name      string
	Condition string
	Values    []string
}

// ParseServerFilters parses name:CONDITION:v1|v2 filters, or name:v1|v2 when
// the API has no condition.
func ParseServerFilters(specs []string, withCondition bool) ([]ServerFilter, error) {
	var filters []ServerFilter
	for _, spec := range specs {
		n := 2
		form := "name:v1|v2"
		if withCondition {
			n = 3
			form = "name:CONDITION:v1|v2"
		}

		parts := strings.SplitN(spec, ":", n)
		if len(parts) != n || parts[0] == "" || parts[n-1] == "" {
			return nil, fmt.Errorf("%w: filter %q must be %s", ErrInvalidValue, spec, form)
		}

		f := ServerFilter{
			Name:   parts[0],
			Values: strings.Split(parts[n-1], "|"),
		}
		if withCondition {
			if parts[1] == "" {
				return nil, fmt.Errorf("%w: filter %q has no condition", ErrInvalidValue, spec)
			}
			f.Condition = parts[1]
		}
		filters = append(filters, f)
	}
	return filters, nil
}

// ParseEnum validates s against an SDK enum's Values().
func ParseEnum[T ~string](name string, s string, values []T) (T, error) {
	if err := EnumValidator(values)(s); err != nil {
		return "", fmt.Errorf("%w: --%s %w", ErrInvalidValue, name, err)
	}
	return T(s), nil
}

// ParseEnums validates every element of ss.
func ParseEnums[T ~string](name string, ss []string, values []T) ([]T, error) {
	out := make([]T, 0, len(ss))
	for _, s := range ss {
		v, err := ParseEnum(name, s, values)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// ReadText returns s, or the contents of the named file when s is @path.
func ReadText(s string) (string, error) {
	if !strings.HasPrefix(s, "@") {
		return s, nil
	}
	b, err := os.ReadFile(s[1:])
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", s[1:], err)
	}
	return string(b), nil
}

// ParseTime accepts RFC3339 or a bare date.
func ParseTime(name, s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("%w: --%s %q is not an RFC3339 time", ErrInvalidValue, name, s)
}

// optString returns nil for an empty flag so the field is left out of the
// request.
func optString(cmd *cli.Command, name string) *string {
	if s := cmd.String(name); s != "" {
		return awsv2.String(s)
	}
	return nil
}

// optText is optString with @file support.
func optText(cmd *cli.Command, name string) (*string, error) {
	s := cmd.String(name)
	if s == "" {
		return nil, nil
	}
	text, err := ReadText(s)
	if err != nil {
		return nil, err
	}
	return awsv2.String(text), nil
}

// int32Flag returns an int flag as the int32 the SDK wants, 0 when unset.
func int32Flag(cmd *cli.Command, name string) (int32, error) {
	n := cmd.Int(name)
	if n < math.MinInt32 || n > math.MaxInt32 {
		return 0, fmt.Errorf("%w: --%s %d is out of range", ErrInvalidValue, name, n)
	}
	return int32(n), nil
}

// requireString returns the flag value or an error naming the missing flag.
func requireString(cmd *cli.Command, name string) (*string, error) {
	if s := cmd.String(name); s != "" {
		return awsv2.String(s), nil
	}
	return nil, fmt.Errorf("%w: --%s is required", ErrInvalidValue, name)
}

// requireSlice returns the repeated flag values or an error when none were
// given.
func requireSlice(cmd *cli.Command, name string) ([]string, error) {
	if ss := cmd.StringSlice(name); len(ss) > 0 {
		return ss, nil
	}
	return nil, fmt.Errorf("%w: at least one --%s is required", ErrInvalidValue, name)
}

// deref renders an optional string for messages.
func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
