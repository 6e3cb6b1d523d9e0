// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package qmi8658 drives the QST QMI8658 accelerometer + gyroscope over I²C.
//
// New checks the chip identity, resets it, enables both sensors, programs
// the low-pass filter and the full-scale ranges. The returned Dev is ready to
// sample; there is no teardown.
package qmi8658

import (
	"errors"
	"fmt"
	"log"
	"slices"
	"time"

	"github.com/relabs-tech/zkb_sensors/internal/regmap"
)

var (
	ErrUnknownDevice    = errors.New("qmi8658: unknown device")
	ErrResetFailed      = errors.New("qmi8658: reset failed")
	ErrUnsupportedScale = errors.New("qmi8658: unsupported scale")
)

const (
	// StandardGravity converts g to m/s².
	StandardGravity = 9.80665

	// Gyroscope readings are multiplied by this after range scaling.
	degree = 0.01745329

	resolution  = 1 << 16
	settleDelay = 10 * time.Millisecond
)

// Opts configures New. Zero fields take the defaults of DefaultOpts.
type Opts struct {
	Addr       uint16
	AccelRange int // g: 2, 4, 8 or 16
	GyroRange  int // °/s: 16 .. 1024
}

// DefaultOpts is the power-on configuration.
var DefaultOpts = Opts{Addr: DefaultAddr, AccelRange: 2, GyroRange: 16}

// Dev is a QMI8658 on the bus. It is not safe for concurrent use.
type Dev struct {
	dev *regmap.Device

	whoAmI      *regmap.ByteRegister
	ctrl2       *regmap.ByteRegister
	ctrl3       *regmap.ByteRegister
	ctrl5       *regmap.ByteRegister
	ctrl7       *regmap.ByteRegister
	resetStatus *regmap.ByteRegister
	reset       *regmap.ByteRegister

	accelScale regmap.FieldView
	gyroScale  regmap.FieldView
	enable     regmap.FieldView

	accel *regmap.StructuredRegister
	gyro  *regmap.StructuredRegister
	temp  *regmap.StructuredRegister

	// counts per unit for the configured ranges
	accelDivisor int
	gyroDivisor  int
	accelRange   int
	gyroRange    int

	sleep func(time.Duration)
}

func newDev(bus regmap.Transport, addr uint16) *Dev {
	dev := regmap.NewDevice(bus, addr)
	d := &Dev{
		dev:          dev,
		whoAmI:       regmap.NewByteRegister(dev, regWhoAmI),
		ctrl2:        regmap.NewCachedRegister(dev, regCtrl2, 0),
		ctrl3:        regmap.NewCachedRegister(dev, regCtrl3, 0),
		ctrl5:        regmap.NewByteRegister(dev, regCtrl5),
		ctrl7:        regmap.NewByteRegister(dev, regCtrl7),
		resetStatus:  regmap.NewByteRegister(dev, regResetStatus),
		reset:        regmap.NewByteRegister(dev, regReset),
		accel:        regmap.NewStructuredRegister(dev, regAxL, layoutXYZ),
		gyro:         regmap.NewStructuredRegister(dev, regGxL, layoutXYZ),
		temp:         regmap.NewStructuredRegister(dev, regTempL, layoutTemp),
		accelDivisor: 1,
		gyroDivisor:  1,
		sleep:        time.Sleep,
	}
	d.accelScale = d.ctrl2.Field(fieldAccelScale)
	d.gyroScale = d.ctrl3.Field(fieldGyroScale)
	d.enable = d.ctrl7.Field(fieldEnable)
	return d
}

// New probes and initialises the IMU. opts may be nil.
func New(bus regmap.Transport, opts *Opts) (*Dev, error) {
	o := DefaultOpts
	if opts != nil {
		if opts.Addr != 0 {
			o.Addr = opts.Addr
		}
		if opts.AccelRange != 0 {
			o.AccelRange = opts.AccelRange
		}
		if opts.GyroRange != 0 {
			o.GyroRange = opts.GyroRange
		}
	}

	d := newDev(bus, o.Addr)
	id, err := d.WhoAmI()
	if err != nil {
		return nil, err
	}
	if id != sensorID {
		return nil, fmt.Errorf("%w: who_am_i 0x%02X at 0x%02X", ErrUnknownDevice, id, o.Addr)
	}
	if err := d.init(o.AccelRange, o.GyroRange); err != nil {
		return nil, err
	}
	log.Printf("qmi8658: ready at 0x%02X (±%dg, ±%d°/s)", o.Addr, d.accelRange, d.gyroRange)
	return d, nil
}

func (d *Dev) init(accelRange, gyroRange int) error {
	if err := d.Reset(); err != nil {
		return err
	}
	if err := d.Enable(); err != nil {
		return err
	}
	if err := d.ctrl5.Write(lowPassConfig); err != nil {
		return fmt.Errorf("qmi8658: low-pass filter: %w", err)
	}
	if err := d.SetAccelerometerScale(accelRange); err != nil {
		return err
	}
	return d.SetGyroscopeScale(gyroRange)
}

// WhoAmI reads the identity register.
func (d *Dev) WhoAmI() (byte, error) {
	return d.whoAmI.Read()
}

// Reset issues a soft reset and checks the completion marker.
func (d *Dev) Reset() error {
	if err := d.reset.Write(resetCommand); err != nil {
		return err
	}
	d.sleep(settleDelay)
	v, err := d.resetStatus.Read()
	if err != nil {
		return err
	}
	if v != resetDoneValue {
		return fmt.Errorf("%w: status 0x%02X, want 0x%02X", ErrResetFailed, v, resetDoneValue)
	}
	return nil
}

// Enable turns on the accelerometer and gyroscope, keeping the other CTRL7
// bits.
func (d *Dev) Enable() error {
	return d.setEnable(0b11)
}

// Disable turns off the accelerometer and gyroscope.
func (d *Dev) Disable() error {
	return d.setEnable(0b00)
}

func (d *Dev) setEnable(v byte) error {
	if _, err := d.ctrl7.Read(); err != nil {
		return err
	}
	return d.enable.Set(v)
}

// SetAccelerometerScale selects the ±scale g range.
func (d *Dev) SetAccelerometerScale(scale int) error {
	code := slices.Index(accelScales, scale)
	if code < 0 {
		return fmt.Errorf("%w: %d g, supported %v", ErrUnsupportedScale, scale, accelScales)
	}
	if err := d.accelScale.Set(byte(code)); err != nil {
		return err
	}
	d.accelRange = scale
	d.accelDivisor = resolution / scale / 2
	return nil
}

// SetGyroscopeScale selects the ±scale °/s range.
func (d *Dev) SetGyroscopeScale(scale int) error {
	code := slices.Index(gyroScales, scale)
	if code < 0 {
		return fmt.Errorf("%w: %d °/s, supported %v", ErrUnsupportedScale, scale, gyroScales)
	}
	if err := d.gyroScale.Set(byte(code)); err != nil {
		return err
	}
	d.gyroRange = scale
	d.gyroDivisor = resolution / scale / 2
	return nil
}

// AccelRange returns the configured range in g.
func (d *Dev) AccelRange() int { return d.accelRange }

// GyroRange returns the configured range in °/s.
func (d *Dev) GyroRange() int { return d.gyroRange }

// AccelDivisor returns the raw counts per g.
func (d *Dev) AccelDivisor() int { return d.accelDivisor }

// GyroDivisor returns the raw counts per °/s.
func (d *Dev) GyroDivisor() int { return d.gyroDivisor }

// ReadAccelerometer returns acceleration in g, or in m/s² when mps2 is set.
func (d *Dev) ReadAccelerometer(mps2 bool) (x, y, z float64, err error) {
	rx, ry, rz, err := d.accel.ReadVec3()
	if err != nil {
		return 0, 0, 0, err
	}
	div := float64(d.accelDivisor)
	x, y, z = float64(rx)/div, float64(ry)/div, float64(rz)/div
	if mps2 {
		x, y, z = x*StandardGravity, y*StandardGravity, z*StandardGravity
	}
	return x, y, z, nil
}

// ReadGyroscope returns the angular rate: counts divided by the range divisor
// and multiplied by 0.01745329.
//
// The result is in °/s scaled by π/180, which is neither °/s nor a true
// rad/s conversion of a °/s value. Existing consumers depend on it.
func (d *Dev) ReadGyroscope() (x, y, z float64, err error) {
	rx, ry, rz, err := d.gyro.ReadVec3()
	if err != nil {
		return 0, 0, 0, err
	}
	div := float64(d.gyroDivisor)
	x = float64(rx) / div * degree
	y = float64(ry) / div * degree
	z = float64(rz) / div * degree
	return x, y, z, nil
}

// ReadTemperature returns the die temperature in °C.
func (d *Dev) ReadTemperature() (float64, error) {
	v, err := d.temp.Read()
	if err != nil {
		return 0, err
	}
	return float64(v[0]) / 256, nil
}

// Addr returns the bus address.
func (d *Dev) Addr() uint16 {
	return d.dev.Addr()
}
