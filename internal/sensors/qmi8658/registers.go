// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package qmi8658

import "github.com/relabs-tech/zkb_sensors/internal/regmap"

// I2C addresses; the SA0 strap selects between them.
const (
	Addr        = 0x6A
	AddrAlt     = 0x6B
	DefaultAddr = AddrAlt
)

// Register map.
const (
	regWhoAmI      = 0x00
	regCtrl1       = 0x02 // power
	regCtrl2       = 0x03 // accelerometer config
	regCtrl3       = 0x04 // gyroscope config
	regCtrl4       = 0x05
	regCtrl5       = 0x06 // low-pass filter
	regCtrl6       = 0x07
	regCtrl7       = 0x08 // sensor enable
	regTempL       = 0x33
	regAxL         = 0x35 // AX_L, AX_H, AY_L, AY_H, AZ_L, AZ_H
	regGxL         = 0x3B // GX_L .. GZ_H
	regResetStatus = 0x4D
	regReset       = 0x60
)

const (
	sensorID       = 0x05
	resetCommand   = 0xB0
	resetDoneValue = 0x80

	// accel and gyro low-pass enabled, mode 001 on both
	lowPassConfig = 0b0_001_0_001
)

var (
	fieldAccelScale = regmap.MustField(4, 3)
	fieldGyroScale  = regmap.MustField(5, 3)
	fieldEnable     = regmap.MustField(1, 0) // aEN, gEN

	layoutXYZ  = regmap.LE(regmap.Int16, regmap.Int16, regmap.Int16)
	layoutTemp = regmap.LE(regmap.Int16)
)

// Allowed full-scale ranges. The position in the table is the config code.
var (
	accelScales = []int{2, 4, 8, 16}                     // g
	gyroScales  = []int{16, 32, 64, 128, 256, 512, 1024} // °/s
)

// AccelScales returns the supported accelerometer ranges in g.
func AccelScales() []int { return append([]int(nil), accelScales...) }

// GyroScales returns the supported gyroscope ranges in °/s.
func GyroScales() []int { return append([]int(nil), gyroScales...) }
