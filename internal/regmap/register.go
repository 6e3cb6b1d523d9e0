// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package regmap

// ByteRegister is one byte register with a cached copy of its last known
// value.
type ByteRegister struct {
	dev    *Device
	reg    uint8
	value  byte
	cached bool
}

// NewByteRegister returns a register whose value is unknown until first read.
func NewByteRegister(dev *Device, reg uint8) *ByteRegister {
	return &ByteRegister{dev: dev, reg: reg}
}

// NewCachedRegister returns a register whose cache starts at initial. Use it
// for write-only control registers whose reset value is documented.
func NewCachedRegister(dev *Device, reg uint8, initial byte) *ByteRegister {
	return &ByteRegister{dev: dev, reg: reg, value: initial, cached: true}
}

// Addr returns the register offset.
func (r *ByteRegister) Addr() uint8 {
	return r.reg
}

// Cached returns the cached value and whether one is present.
func (r *ByteRegister) Cached() (byte, bool) {
	return r.value, r.cached
}

// Read always reads the device and refreshes the cache.
func (r *ByteRegister) Read() (byte, error) {
	v, err := r.dev.ReadReg(r.reg)
	if err != nil {
		return 0, err
	}
	r.value, r.cached = v, true
	return v, nil
}

// Write writes value to the device and caches it.
func (r *ByteRegister) Write(value byte) error {
	if err := r.dev.WriteReg(r.reg, value); err != nil {
		return err
	}
	r.value, r.cached = value, true
	return nil
}

// WriteCached commits the cached value. With an empty cache the register is
// read first and that value written back unchanged.
func (r *ByteRegister) WriteCached() error {
	if !r.cached {
		if _, err := r.Read(); err != nil {
			return err
		}
	}
	return r.Write(r.value)
}

// MaskedSet stages (bits & mask) | (cached & ^mask) in the cache without
// touching the bus. An empty cache is filled by a Read first. Call Write or
// WriteCached to commit.
func (r *ByteRegister) MaskedSet(mask, bits byte) error {
	if !r.cached {
		if _, err := r.Read(); err != nil {
			return err
		}
	}
	r.value = (bits & mask) | (r.value &^ mask)
	return nil
}

// Get returns field f of the cached value, reading the device only when the
// cache is empty.
func (r *ByteRegister) Get(f Field) (byte, error) {
	if !r.cached {
		if _, err := r.Read(); err != nil {
			return 0, err
		}
	}
	return f.Extract(r.value), nil
}

// Set writes x into field f and commits the byte immediately.
func (r *ByteRegister) Set(f Field, x byte) error {
	if err := r.MaskedSet(f.Mask(), f.Place(x)); err != nil {
		return err
	}
	return r.WriteCached()
}

// Field returns a view of f on this register.
func (r *ByteRegister) Field(f Field) FieldView {
	return FieldView{reg: r, field: f}
}

// FieldView is a bit field bound to the register that holds it. Several views
// may share one register.
type FieldView struct {
	reg   *ByteRegister
	field Field
}

// Register returns the owning register.
func (v FieldView) Register() *ByteRegister { return v.reg }

// Spec returns the bit range of the view.
func (v FieldView) Spec() Field { return v.field }

// Get returns the field from the register cache, reading once if empty.
func (v FieldView) Get() (byte, error) {
	return v.reg.Get(v.field)
}

// Refresh re-reads the register and returns the field.
func (v FieldView) Refresh() (byte, error) {
	b, err := v.reg.Read()
	if err != nil {
		return 0, err
	}
	return v.field.Extract(b), nil
}

// Set writes x into the field, preserving the other bits of the register.
func (v FieldView) Set(x byte) error {
	return v.reg.Set(v.field, x)
}
