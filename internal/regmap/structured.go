// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package regmap

import (
	"encoding/binary"
	"fmt"
)

// Kind is the numeric type of one entry of a structured register.
type Kind uint8

const (
	Uint8 Kind = iota
	Int8
	Uint16
	Int16
	Uint32
	Int32
)

// Size is the encoded size of k in bytes.
func (k Kind) Size() int {
	switch k {
	case Uint8, Int8:
		return 1
	case Uint16, Int16:
		return 2
	case Uint32, Int32:
		return 4
	}
	return 0
}

// Layout describes a packed run of numbers. Order defaults to little endian.
type Layout struct {
	Order binary.ByteOrder
	Kinds []Kind
}

// LE returns a little-endian layout of kinds.
func LE(kinds ...Kind) Layout {
	return Layout{Order: binary.LittleEndian, Kinds: kinds}
}

// Size is the total number of bytes covered by the layout.
func (l Layout) Size() int {
	n := 0
	for _, k := range l.Kinds {
		n += k.Size()
	}
	return n
}

// Decode unpacks b per the layout. b must hold exactly Size bytes.
func (l Layout) Decode(b []byte) ([]int64, error) {
	if len(b) != l.Size() {
		return nil, fmt.Errorf("regmap: layout needs %d bytes, got %d", l.Size(), len(b))
	}
	order := l.Order
	if order == nil {
		order = binary.LittleEndian
	}
	out := make([]int64, 0, len(l.Kinds))
	for _, k := range l.Kinds {
		switch k {
		case Uint8:
			out = append(out, int64(b[0]))
		case Int8:
			out = append(out, int64(int8(b[0])))
		case Uint16:
			out = append(out, int64(order.Uint16(b)))
		case Int16:
			out = append(out, int64(int16(order.Uint16(b))))
		case Uint32:
			out = append(out, int64(order.Uint32(b)))
		case Int32:
			out = append(out, int64(int32(order.Uint32(b))))
		default:
			return nil, fmt.Errorf("regmap: unknown kind %d", k)
		}
		b = b[k.Size():]
	}
	return out, nil
}

// StructuredRegister is a read-only run of registers decoded as a fixed
// layout. It keeps no cache; every Read goes to the bus.
type StructuredRegister struct {
	dev    *Device
	start  uint8
	layout Layout
}

// NewStructuredRegister returns a structured view starting at start.
func NewStructuredRegister(dev *Device, start uint8, layout Layout) *StructuredRegister {
	return &StructuredRegister{dev: dev, start: start, layout: layout}
}

// Addr returns the first register offset.
func (s *StructuredRegister) Addr() uint8 { return s.start }

// Len returns the number of bytes read per call.
func (s *StructuredRegister) Len() int { return s.layout.Size() }

// Read fetches Len bytes and returns one value per layout entry.
func (s *StructuredRegister) Read() ([]int64, error) {
	b, err := s.dev.ReadBlock(s.start, s.layout.Size())
	if err != nil {
		return nil, err
	}
	return s.layout.Decode(b)
}

// ReadVec3 reads a three-entry layout.
func (s *StructuredRegister) ReadVec3() (x, y, z int64, err error) {
	v, err := s.Read()
	if err != nil {
		return 0, 0, 0, err
	}
	if len(v) != 3 {
		return 0, 0, 0, fmt.Errorf("regmap: layout at 0x%02X has %d entries, want 3", s.start, len(v))
	}
	return v[0], v[1], v[2], nil
}
