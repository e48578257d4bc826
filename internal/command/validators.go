// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package command

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/urfave/cli/v3"
)

// GlobalFlagsValidator checks the flags every operation shares.
func GlobalFlagsValidator(ctx context.Context, c *cli.Command) error {
	for _, name := range []string{"attrs", "filter", "select", "sort"} {
		if err := FlagValidators(c.String(name), JammedFlagValidator); err != nil {
			return fmt.Errorf("--%s %w", name, err)
		}
	}
	return nil
}

type FlagValidatorType func(any) error

func FlagValidators(value any, validators ...FlagValidatorType) error {
	for _, v := range validators {
		if err := v(value); err != nil {
			return err
		}
	}
	return nil
}

// JammedFlagValidator verifies that the arg following a flag does not begin
// with '--'.  urfave/cli allows this and I don't see how to turn it off.
func JammedFlagValidator(value any) error {
	if s, ok := value.(string); ok && strings.HasPrefix(s, "--") {
		return errors.New("must not begin with '--'")
	}
	return nil
}

func NonNegativeValidator(value any) error {
	if n, ok := value.(int); ok && n < 0 {
		return errors.New("must not be negative")
	}
	return nil
}

// PageSizeValidator bounds --page-size to what a MaxResults field can hold.
func PageSizeValidator(value any) error {
	if n, ok := value.(int); ok && (n < 1 || n > math.MaxInt32) {
		return fmt.Errorf("must be between 1 and %d", math.MaxInt32)
	}
	return nil
}

func OutputValidator(value any) error {
	var validOutputFlagValues = []string{"text", "json", "raw", "yaml"}
	if s, ok := value.(string); !ok || !slices.Contains(validOutputFlagValues, s) {
		return fmt.Errorf("must be one of %v", validOutputFlagValues)
	}
	return nil
}

// EnumValidator accepts values from an SDK enum's Values() list.
func EnumValidator[T ~string](values []T) FlagValidatorType {
	return func(value any) error {
		s, ok := value.(string)
		if !ok || s == "" {
			return nil
		}
		for _, v := range values {
			if string(v) == s {
				return nil
			}
		}
		allowed := make([]string, 0, len(values))
		for _, v := range values {
			allowed = append(allowed, string(v))
		}
		return fmt.Errorf("must be one of %v", allowed)
	}
}
