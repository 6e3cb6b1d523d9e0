// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"fmt"
	"strconv"
	"strings"
)

// RegRange is an inclusive register address range.
type RegRange struct {
	From, To uint8
}

// WriteRanges lists the registers the register debugger may write.
// An empty list allows nothing.
type WriteRanges []RegRange

// ParseWriteRanges parses a list like "0x02-0x08,0x60".
func ParseWriteRanges(s string) (WriteRanges, error) {
	var out WriteRanges
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		lo, hi, isRange := strings.Cut(part, "-")
		from, err := parseReg(lo)
		if err != nil {
			return nil, err
		}
		to := from
		if isRange {
			if to, err = parseReg(hi); err != nil {
				return nil, err
			}
		}
		if to < from {
			return nil, fmt.Errorf("range %q is reversed", part)
		}
		out = append(out, RegRange{From: from, To: to})
	}
	return out, nil
}

func parseReg(s string) (uint8, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 0, 8)
	if err != nil {
		return 0, fmt.Errorf("register %q: %w", s, err)
	}
	return uint8(v), nil
}

// Contains reports whether reg is inside one of the ranges.
func (w WriteRanges) Contains(reg uint8) bool {
	for _, r := range w {
		if reg >= r.From && reg <= r.To {
			return true
		}
	}
	return false
}

func (w WriteRanges) String() string {
	parts := make([]string, len(w))
	for i, r := range w {
		if r.From == r.To {
			parts[i] = fmt.Sprintf("0x%02X", r.From)
		} else {
			parts[i] = fmt.Sprintf("0x%02X-0x%02X", r.From, r.To)
		}
	}
	return strings.Join(parts, ",")
}
