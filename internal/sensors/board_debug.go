// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import "fmt"

// Raw register access for the register debugger. These calls go straight to
// the transport and bypass the driver register caches; call Reinitialize to
// resynchronise a driver after writing its control registers.

func (b *Board) deviceAddr(device string) (uint16, error) {
	switch device {
	case DeviceIMU:
		return b.cfg.IMUAddr, nil
	case DeviceMag:
		return b.cfg.MagAddr, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownDeviceName, device)
}

// RegisterMap returns the register metadata of a device.
func (b *Board) RegisterMap(device string) ([]RegisterInfo, error) {
	switch device {
	case DeviceIMU:
		return qmi8658RegisterMap(), nil
	case DeviceMag:
		return mmc5983RegisterMap(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownDeviceName, device)
}

// ReadRegister reads one register of a device.
func (b *Board) ReadRegister(device string, reg uint8) (byte, error) {
	addr, err := b.deviceAddr(device)
	if err != nil {
		return 0, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.bus.ReadReg(addr, reg)
}

// WriteRegister writes one register of a device.
func (b *Board) WriteRegister(device string, reg uint8, value byte) error {
	addr, err := b.deviceAddr(device)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.bus.WriteReg(addr, reg, value)
}

// ReadAllRegisters reads every readable register listed in the device map.
func (b *Board) ReadAllRegisters(device string) (map[byte]byte, error) {
	addr, err := b.deviceAddr(device)
	if err != nil {
		return nil, err
	}
	regs, _ := b.RegisterMap(device)

	b.mu.Lock()
	defer b.mu.Unlock()
	out := make(map[byte]byte, len(regs))
	for _, info := range regs {
		reg, ok := info.Reg()
		if !ok || !info.Readable() {
			continue
		}
		v, err := b.bus.ReadReg(addr, reg)
		if err != nil {
			return nil, fmt.Errorf("read %s 0x%02X: %w", device, reg, err)
		}
		out[reg] = v
	}
	return out, nil
}
