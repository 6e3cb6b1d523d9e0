// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package mmc5983 drives the MEMSIC MMC5983MA 3-axis magnetometer over I²C.
package mmc5983

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/relabs-tech/zkb_sensors/internal/regmap"
)

var (
	ErrUnknownDevice             = errors.New("mmc5983: unknown device")
	ErrUnsupportedBandwidth      = errors.New("mmc5983: unsupported bandwidth")
	ErrUnsupportedFrequency      = errors.New("mmc5983: unsupported frequency")
	ErrIncompatibleConfiguration = errors.New("mmc5983: frequency incompatible with bandwidth")
	ErrMeasurementTimeout        = errors.New("mmc5983: measurement not done")
)

const (
	// HalfRange is the zero-field offset of the 18-bit output.
	HalfRange = (1 << 18) / 2

	settleDelay = 10 * time.Millisecond

	tempPollInterval = time.Millisecond
	tempPollAttempts = 10
)

// Opts configures New.
type Opts struct {
	Addr uint16
}

// Dev is an MMC5983MA on the bus. It is not safe for concurrent use.
//
// The control registers are write-only on this part, so their state lives
// in the register cache, seeded with the power-on value 0.
type Dev struct {
	dev *regmap.Device

	xyzOut01 *regmap.StructuredRegister
	xyzOut2  *regmap.ByteRegister
	tempOut  *regmap.ByteRegister
	status   *regmap.ByteRegister
	ctrl0    *regmap.ByteRegister
	ctrl1    *regmap.ByteRegister
	ctrl2    *regmap.ByteRegister
	prodID   *regmap.ByteRegister

	tempMeasure regmap.FieldView
	bandwidth   regmap.FieldView
	swReset     regmap.FieldView
	cmFreq      regmap.FieldView
	cmEnable    regmap.FieldView

	sleep func(time.Duration)
}

func newDev(bus regmap.Transport, addr uint16) *Dev {
	dev := regmap.NewDevice(bus, addr)
	d := &Dev{
		dev:      dev,
		xyzOut01: regmap.NewStructuredRegister(dev, regXYZOut0, layoutXYZ),
		xyzOut2:  regmap.NewByteRegister(dev, regXYZOut2),
		tempOut:  regmap.NewByteRegister(dev, regTOut),
		status:   regmap.NewByteRegister(dev, regStatus),
		ctrl0:    regmap.NewCachedRegister(dev, regCtrl0, 0),
		ctrl1:    regmap.NewCachedRegister(dev, regCtrl1, 0),
		ctrl2:    regmap.NewCachedRegister(dev, regCtrl2, 0),
		prodID:   regmap.NewByteRegister(dev, regProdID),
		sleep:    time.Sleep,
	}
	d.tempMeasure = d.ctrl0.Field(fieldTMT)
	d.bandwidth = d.ctrl1.Field(fieldBandwidth)
	d.swReset = d.ctrl1.Field(fieldSWReset)
	d.cmFreq = d.ctrl2.Field(fieldCMFreq)
	d.cmEnable = d.ctrl2.Field(fieldCMEnable)
	return d
}

// New checks the product ID and runs Init. opts may be nil.
func New(bus regmap.Transport, opts *Opts) (*Dev, error) {
	addr := uint16(DefaultAddr)
	if opts != nil && opts.Addr != 0 {
		addr = opts.Addr
	}
	d := newDev(bus, addr)

	id, err := d.ProductID()
	if err != nil {
		return nil, err
	}
	if id != productID {
		return nil, fmt.Errorf("%w: product id 0x%02X at 0x%02X", ErrUnknownDevice, id, addr)
	}
	if err := d.Init(); err != nil {
		return nil, err
	}
	log.Printf("mmc5983: ready at 0x%02X (bw %d Hz, %d Hz continuous)", addr, d.Bandwidth().Hz(), d.Frequency().Hz())
	return d, nil
}

// Init soft-resets the chip and selects 400 Hz bandwidth with 200 Hz
// continuous measurement.
func (d *Dev) Init() error {
	if err := d.SoftReset(); err != nil {
		return err
	}
	if err := d.SetBandwidth(BW400Hz); err != nil {
		return err
	}
	return d.SetFrequency(CM200Hz)
}

// ProductID reads the product ID register.
func (d *Dev) ProductID() (byte, error) {
	return d.prodID.Read()
}

// SoftReset sets SW_RST and waits for the chip to come back.
func (d *Dev) SoftReset() error {
	if err := d.swReset.Set(1); err != nil {
		return err
	}
	d.sleep(settleDelay)
	// SW_RST self-clears; drop it from the cache so later CTRL1 writes do
	// not reset again.
	return d.ctrl1.MaskedSet(fieldSWReset.Mask(), 0)
}

// Continuous enables continuous measurement mode.
func (d *Dev) Continuous() error {
	return d.cmEnable.Set(1)
}

// OneShot leaves continuous mode.
func (d *Dev) OneShot() error {
	return d.cmEnable.Set(0)
}

// SetBandwidth selects the output bandwidth, briefly leaving continuous mode.
func (d *Dev) SetBandwidth(bw Bandwidth) error {
	if bw > BW800Hz {
		return fmt.Errorf("%w: code %d", ErrUnsupportedBandwidth, bw)
	}
	if err := d.OneShot(); err != nil {
		return err
	}
	if err := d.bandwidth.Set(byte(bw)); err != nil {
		return err
	}
	return d.Continuous()
}

// SetFrequency selects the continuous measurement rate. The rate must be
// compatible with the current bandwidth (see CheckCompatible).
func (d *Dev) SetFrequency(f Frequency) error {
	if f > CM1000Hz {
		return fmt.Errorf("%w: code %d", ErrUnsupportedFrequency, f)
	}
	if err := CheckCompatible(d.Bandwidth(), f); err != nil {
		return err
	}
	if err := d.OneShot(); err != nil {
		return err
	}
	if err := d.cmFreq.Set(byte(f)); err != nil {
		return err
	}
	return d.Continuous()
}

// CheckCompatible reports whether continuous rate f can run with bandwidth
// bw. CM200Hz needs at least BW200Hz and CM1000Hz needs BW800Hz.
func CheckCompatible(bw Bandwidth, f Frequency) error {
	if f == CM200Hz && bw < BW200Hz {
		return fmt.Errorf("%w: 200 Hz needs bandwidth >= 200 Hz, have %d Hz", ErrIncompatibleConfiguration, bw.Hz())
	}
	if f == CM1000Hz && bw < BW800Hz {
		return fmt.Errorf("%w: 1000 Hz needs bandwidth 800 Hz, have %d Hz", ErrIncompatibleConfiguration, bw.Hz())
	}
	return nil
}

// Bandwidth returns the configured bandwidth from the register cache.
func (d *Dev) Bandwidth() Bandwidth {
	v, _ := d.ctrl1.Cached()
	return Bandwidth(fieldBandwidth.Extract(v))
}

// Frequency returns the configured measurement rate from the register cache.
func (d *Dev) Frequency() Frequency {
	v, _ := d.ctrl2.Cached()
	return Frequency(fieldCMFreq.Extract(v))
}

// ReadXYZRaw returns the unsigned 18-bit output of each axis.
func (d *Dev) ReadXYZRaw() (x, y, z uint32, err error) {
	hx, hy, hz, err := d.xyzOut01.ReadVec3()
	if err != nil {
		return 0, 0, 0, err
	}
	extra, err := d.xyzOut2.Read()
	if err != nil {
		return 0, 0, 0, err
	}
	x = combine(hx, fieldXLow.Extract(extra))
	y = combine(hy, fieldYLow.Extract(extra))
	z = combine(hz, fieldZLow.Extract(extra))
	return x, y, z, nil
}

func combine(high int64, low byte) uint32 {
	return uint32(high)<<2 | uint32(low)
}

// ReadXYZ returns each axis normalised to [-1, 1).
func (d *Dev) ReadXYZ() (x, y, z float64, err error) {
	rx, ry, rz, err := d.ReadXYZRaw()
	if err != nil {
		return 0, 0, 0, err
	}
	return normalize(rx), normalize(ry), normalize(rz), nil
}

func normalize(v uint32) float64 {
	return (float64(v) - HalfRange) / HalfRange
}

// ReadTemperature triggers a one-off temperature measurement and returns
// the result in °C (-75 °C at 0, 0.8 °C per count).
func (d *Dev) ReadTemperature() (float64, error) {
	if err := d.tempMeasure.Set(1); err != nil {
		return 0, err
	}
	// TM_T self-clears like SW_RST.
	if err := d.ctrl0.MaskedSet(fieldTMT.Mask(), 0); err != nil {
		return 0, err
	}
	for i := 0; i < tempPollAttempts; i++ {
		d.sleep(tempPollInterval)
		st, err := d.status.Read()
		if err != nil {
			return 0, err
		}
		if fieldMeasTDone.Extract(st) == 1 {
			t, err := d.tempOut.Read()
			if err != nil {
				return 0, err
			}
			return -75 + 0.8*float64(t), nil
		}
	}
	return 0, ErrMeasurementTimeout
}

// Status reads the device status register.
func (d *Dev) Status() (byte, error) {
	return d.status.Read()
}

// Addr returns the bus address.
func (d *Dev) Addr() uint16 {
	return d.dev.Addr()
}
