// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package output

import (
	"sort"
	"strings"

	"github.com/apex/log"
)

type sortKey struct {
	key           string
	descending    bool
	caseSensitive bool
}

// parseSortSpec parses a --sort spec.  Each comma separated key may be
// prefixed with - for descending and ! for case sensitive order, in either
// order.
func parseSortSpec(spec string) []sortKey {
	var keys []sortKey
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		sk := sortKey{}
		for len(part) > 0 && (part[0] == '-' || part[0] == '!') {
			if part[0] == '-' {
				sk.descending = true
			} else {
				sk.caseSensitive = true
			}
			part = part[1:]
		}
		if part == "" {
			continue
		}
		sk.key = part
		keys = append(keys, sk)
	}
	return keys
}

// SortDataset sorts the rows in place.  Numbers compare numerically, anything
// else compares on its string form.  Ties on every key keep their original
// order.
func SortDataset(dataset []map[string]interface{}, spec string) {
	if spec == "" || len(dataset) < 2 {
		return
	}

	keys := parseSortSpec(spec)
	log.Debugf("sort keys: %+v", keys)

	sort.SliceStable(dataset, func(i, j int) bool {
		for _, k := range keys {
			c := compareValues(dataset[i][k.key], dataset[j][k.key], k.caseSensitive)
			if c == 0 {
				continue
			}
			if k.descending {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}

func compareValues(a, b interface{}, caseSensitive bool) int {
	af, aNum := a.(float64)
	bf, bNum := b.(float64)
	if aNum && bNum {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}

	as := InterfaceToString(a)
	bs := InterfaceToString(b)
	if !caseSensitive {
		as = strings.ToLower(as)
		bs = strings.ToLower(bs)
	}
	return strings.Compare(as, bs)
}
