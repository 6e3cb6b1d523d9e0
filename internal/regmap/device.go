// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package regmap

import "fmt"

// Transport performs single-byte register transactions against a device on
// the bus. Implementations block until the transaction completes.
type Transport interface {
	ReadReg(addr uint16, reg uint8) (byte, error)
	WriteReg(addr uint16, reg uint8, value byte) error
}

// Device binds a Transport to one bus address.
type Device struct {
	bus  Transport
	addr uint16
}

// NewDevice returns a Device talking to addr through bus.
func NewDevice(bus Transport, addr uint16) *Device {
	return &Device{bus: bus, addr: addr}
}

// Addr returns the bus address of the device.
func (d *Device) Addr() uint16 {
	return d.addr
}

// ReadReg reads one register.
func (d *Device) ReadReg(reg uint8) (byte, error) {
	v, err := d.bus.ReadReg(d.addr, reg)
	if err != nil {
		return 0, fmt.Errorf("read 0x%02X@0x%02X: %w", reg, d.addr, err)
	}
	return v, nil
}

// WriteReg writes one register.
func (d *Device) WriteReg(reg uint8, value byte) error {
	if err := d.bus.WriteReg(d.addr, reg, value); err != nil {
		return fmt.Errorf("write 0x%02X=0x%02X@0x%02X: %w", reg, value, d.addr, err)
	}
	return nil
}

// ReadBlock reads n consecutive registers starting at reg, one byte per
// transaction in ascending order.
func (d *Device) ReadBlock(reg uint8, n int) ([]byte, error) {
	buf := make([]byte, n)
	for i := range buf {
		v, err := d.ReadReg(reg + uint8(i))
		if err != nil {
			return nil, err
		}
		buf[i] = v
	}
	return buf, nil
}
