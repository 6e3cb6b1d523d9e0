// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package regmap

import (
	"errors"
	"fmt"
)

// ErrInvalidFieldSpec is returned when a bit range does not fit in one byte
// or its low bit is above its high bit.
var ErrInvalidFieldSpec = errors.New("regmap: invalid field spec")

// Field is a contiguous bit range [High:Low] inside one byte register.
type Field struct {
	high, low uint8
	mask      byte
}

// NewField returns the field covering bits high down to low, inclusive.
func NewField(high, low uint8) (Field, error) {
	if high > 7 || low > 7 {
		return Field{}, fmt.Errorf("%w: bits [%d:%d] outside [7:0]", ErrInvalidFieldSpec, high, low)
	}
	if low > high {
		return Field{}, fmt.Errorf("%w: low bit %d above high bit %d", ErrInvalidFieldSpec, low, high)
	}
	width := high - low + 1
	mask := byte((uint16(1)<<width)-1) << low
	return Field{high: high, low: low, mask: mask}, nil
}

// MustField is NewField for package-level register maps. It panics on an
// invalid range.
func MustField(high, low uint8) Field {
	f, err := NewField(high, low)
	if err != nil {
		panic(err)
	}
	return f
}

// Bit returns the single-bit field at position n.
func Bit(n uint8) Field {
	return MustField(n, n)
}

func (f Field) High() uint8  { return f.high }
func (f Field) Low() uint8   { return f.low }
func (f Field) Shift() uint8 { return f.low }
func (f Field) Mask() byte   { return f.mask }

// Width is the number of bits in the field.
func (f Field) Width() uint8 {
	return f.high - f.low + 1
}

// Extract returns the field value held in v, right-aligned.
func (f Field) Extract(v byte) byte {
	return (v & f.mask) >> f.low
}

// Place shifts x into field position. Bits of x beyond the field width are
// dropped.
func (f Field) Place(x byte) byte {
	return (x << f.low) & f.mask
}

func (f Field) String() string {
	if f.high == f.low {
		return fmt.Sprintf("[%d]", f.low)
	}
	return fmt.Sprintf("[%d:%d]", f.high, f.low)
}
