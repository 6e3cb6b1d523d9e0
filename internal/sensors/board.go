// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/relabs-tech/zkb_sensors/internal/imu"
	"github.com/relabs-tech/zkb_sensors/internal/regmap"
	"github.com/relabs-tech/zkb_sensors/internal/sensors/mmc5983"
	"github.com/relabs-tech/zkb_sensors/internal/sensors/qmi8658"
)

// Device names accepted by the register debug methods.
const (
	DeviceIMU = "qmi8658"
	DeviceMag = "mmc5983"
)

// ErrUnknownDeviceName is returned for a device name other than DeviceIMU or
// DeviceMag.
var ErrUnknownDeviceName = errors.New("board: unknown device name")

// ErrMagUnavailable is returned by magnetometer operations when the chip
// failed to come up.
var ErrMagUnavailable = errors.New("board: magnetometer not available")

// BoardConfig describes the sensors wired to one bus.
type BoardConfig struct {
	Name string // sample source tag

	IMUAddr    uint16
	AccelRange int // g
	GyroRange  int // °/s
	AccelMPS2  bool

	MagAddr      uint16
	MagBandwidth mmc5983.Bandwidth
	MagFrequency mmc5983.Frequency
}

// DefaultBoardConfig matches the chip defaults.
func DefaultBoardConfig() BoardConfig {
	return BoardConfig{
		Name:         "zkb",
		IMUAddr:      qmi8658.DefaultAddr,
		AccelRange:   2,
		GyroRange:    16,
		MagAddr:      mmc5983.DefaultAddr,
		MagBandwidth: mmc5983.BW400Hz,
		MagFrequency: mmc5983.CM200Hz,
	}
}

// Board owns the IMU and magnetometer on a shared transport. Its methods are
// safe for concurrent use.
type Board struct {
	mu  sync.Mutex
	cfg BoardConfig
	bus regmap.Transport

	imu *qmi8658.Dev
	mag *mmc5983.Dev // nil when the magnetometer failed to initialise

	now func() time.Time
}

// NewBoard brings up both sensors. An IMU failure is fatal; a magnetometer
// failure is logged and the board runs without it.
func NewBoard(bus regmap.Transport, cfg BoardConfig) (*Board, error) {
	b := &Board{cfg: cfg, bus: bus, now: time.Now}

	if err := b.initIMU(); err != nil {
		return nil, fmt.Errorf("board %s: IMU: %w", cfg.Name, err)
	}
	if err := b.initMag(); err != nil {
		log.Printf("board %s: magnetometer initialization failed (will continue without mag): %v", cfg.Name, err)
	}
	return b, nil
}

func (b *Board) initIMU() error {
	dev, err := qmi8658.New(b.bus, &qmi8658.Opts{
		Addr:       b.cfg.IMUAddr,
		AccelRange: b.cfg.AccelRange,
		GyroRange:  b.cfg.GyroRange,
	})
	if err != nil {
		return err
	}
	b.imu = dev
	return nil
}

func (b *Board) initMag() error {
	b.mag = nil
	dev, err := mmc5983.New(b.bus, &mmc5983.Opts{Addr: b.cfg.MagAddr})
	if err != nil {
		return err
	}
	if err := configureMag(dev, b.cfg.MagBandwidth, b.cfg.MagFrequency); err != nil {
		return err
	}
	b.mag = dev
	return nil
}

// configureMag moves the magnetometer to bw and f without passing through
// an incompatible pair.
func configureMag(dev *mmc5983.Dev, bw mmc5983.Bandwidth, f mmc5983.Frequency) error {
	if err := mmc5983.CheckCompatible(bw, f); err != nil {
		return err
	}
	setBW := func() error {
		if dev.Bandwidth() == bw {
			return nil
		}
		return dev.SetBandwidth(bw)
	}
	setFreq := func() error {
		if dev.Frequency() == f {
			return nil
		}
		return dev.SetFrequency(f)
	}
	// lowering the bandwidth under the running rate: drop the rate first
	first, second := setBW, setFreq
	if mmc5983.CheckCompatible(bw, dev.Frequency()) != nil {
		first, second = setFreq, setBW
	}
	if err := first(); err != nil {
		return err
	}
	return second()
}

// IsMagAvailable reports whether the magnetometer is in use.
func (b *Board) IsMagAvailable() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.mag != nil
}

// Config returns the board configuration.
func (b *Board) Config() BoardConfig {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cfg
}

// Read samples every sensor once. Magnetometer errors are logged and leave
// MagValid false.
func (b *Board) Read() (imu.Sample, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := imu.Sample{Source: b.cfg.Name, Time: b.now().UTC(), AccelUnit: imu.UnitG}
	if b.cfg.AccelMPS2 {
		s.AccelUnit = imu.UnitMPS2
	}

	var err error
	if s.Ax, s.Ay, s.Az, err = b.imu.ReadAccelerometer(b.cfg.AccelMPS2); err != nil {
		return imu.Sample{}, fmt.Errorf("board %s: accelerometer: %w", b.cfg.Name, err)
	}
	if s.Gx, s.Gy, s.Gz, err = b.imu.ReadGyroscope(); err != nil {
		return imu.Sample{}, fmt.Errorf("board %s: gyroscope: %w", b.cfg.Name, err)
	}
	if s.TempC, err = b.imu.ReadTemperature(); err != nil {
		return imu.Sample{}, fmt.Errorf("board %s: temperature: %w", b.cfg.Name, err)
	}

	if b.mag != nil {
		if s.Mx, s.My, s.Mz, err = b.mag.ReadXYZ(); err != nil {
			log.Printf("board %s: magnetometer read error: %v", b.cfg.Name, err)
			s.Mx, s.My, s.Mz = 0, 0, 0
		} else {
			s.MagValid = true
		}
	}
	return s, nil
}

// SetAccelerometerScale changes the IMU accelerometer range.
func (b *Board) SetAccelerometerScale(g int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.imu.SetAccelerometerScale(g); err != nil {
		return err
	}
	b.cfg.AccelRange = g
	return nil
}

// SetGyroscopeScale changes the IMU gyroscope range.
func (b *Board) SetGyroscopeScale(dps int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.imu.SetGyroscopeScale(dps); err != nil {
		return err
	}
	b.cfg.GyroRange = dps
	return nil
}

// SetMagBandwidth changes the magnetometer bandwidth. A bandwidth the
// running measurement rate cannot use is refused.
func (b *Board) SetMagBandwidth(bw mmc5983.Bandwidth) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.mag == nil {
		return ErrMagUnavailable
	}
	if err := mmc5983.CheckCompatible(bw, b.mag.Frequency()); err != nil {
		return err
	}
	if err := b.mag.SetBandwidth(bw); err != nil {
		return err
	}
	b.cfg.MagBandwidth = bw
	return nil
}

// SetMagFrequency changes the magnetometer measurement rate.
func (b *Board) SetMagFrequency(f mmc5983.Frequency) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.mag == nil {
		return ErrMagUnavailable
	}
	if err := b.mag.SetFrequency(f); err != nil {
		return err
	}
	b.cfg.MagFrequency = f
	return nil
}

// Reinitialize reruns the bring-up sequence of one device. Register caches
// are rebuilt from scratch.
func (b *Board) Reinitialize(device string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch device {
	case DeviceIMU:
		if err := b.initIMU(); err != nil {
			return fmt.Errorf("board %s: IMU: %w", b.cfg.Name, err)
		}
	case DeviceMag:
		if err := b.initMag(); err != nil {
			return fmt.Errorf("board %s: magnetometer: %w", b.cfg.Name, err)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDeviceName, device)
	}
	log.Printf("board %s: %s reinitialized", b.cfg.Name, device)
	return nil
}
