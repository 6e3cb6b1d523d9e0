// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package bus implements the register transport on top of periph.io I²C.
package bus

import (
	"encoding/binary"
	"fmt"
	"sync"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/mmr"
	"periph.io/x/host/v3"
)

// I2C serialises single-byte register transactions on one bus. It is safe
// for concurrent use; every call holds the bus for one transaction.
type I2C struct {
	mu  sync.Mutex
	bus i2c.Bus
}

// New wraps an already opened bus.
func New(b i2c.Bus) *I2C {
	return &I2C{bus: b}
}

// Open initialises the periph host drivers and opens the named bus. An empty
// name selects the first bus found.
func Open(name string) (*I2C, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}
	b, err := i2creg.Open(name)
	if err != nil {
		return nil, fmt.Errorf("i2c open %q: %w", name, err)
	}
	return New(b), nil
}

func (t *I2C) dev(addr uint16) *mmr.Dev8 {
	return &mmr.Dev8{Conn: &i2c.Dev{Bus: t.bus, Addr: addr}, Order: binary.LittleEndian}
}

// ReadReg reads one register of the device at addr.
func (t *I2C) ReadReg(addr uint16, reg uint8) (byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dev(addr).ReadUint8(reg)
}

// WriteReg writes one register of the device at addr.
func (t *I2C) WriteReg(addr uint16, reg uint8, value byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dev(addr).WriteUint8(reg, value)
}

// Close releases the bus when it was opened by this package.
func (t *I2C) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if c, ok := t.bus.(i2c.BusCloser); ok {
		return c.Close()
	}
	return nil
}

func (t *I2C) String() string {
	return t.bus.String()
}
