// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package mmc5983

import "github.com/relabs-tech/zkb_sensors/internal/regmap"

// DefaultAddr is the fixed I2C address of the MMC5983MA.
const DefaultAddr = 0x30

// Register map.
const (
	regXYZOut0 = 0x00 // Xout0 .. Zout1
	regXYZOut2 = 0x06 // low bits of each axis
	regTOut    = 0x07
	regStatus  = 0x08
	regCtrl0   = 0x09
	regCtrl1   = 0x0A
	regCtrl2   = 0x0B
	regProdID  = 0x2F
)

const productID = 0x30

var (
	fieldTMT       = regmap.Bit(1)
	fieldMeasTDone = regmap.Bit(1)
	fieldBandwidth = regmap.MustField(1, 0)
	fieldSWReset   = regmap.Bit(7)
	fieldCMFreq    = regmap.MustField(2, 0)
	fieldCMEnable  = regmap.Bit(3)

	// two low bits per axis in XYZOUT2
	fieldXLow = regmap.MustField(7, 6)
	fieldYLow = regmap.MustField(5, 4)
	fieldZLow = regmap.MustField(3, 2)

	layoutXYZ = regmap.LE(regmap.Uint16, regmap.Uint16, regmap.Uint16)
)

// Bandwidth is the CTRL1 BW[1:0] decimation filter code.
type Bandwidth uint8

const (
	BW100Hz Bandwidth = 0b00
	BW200Hz Bandwidth = 0b01
	BW400Hz Bandwidth = 0b10
	BW800Hz Bandwidth = 0b11
)

// Hz returns the nominal bandwidth.
func (b Bandwidth) Hz() int {
	switch b {
	case BW100Hz:
		return 100
	case BW200Hz:
		return 200
	case BW400Hz:
		return 400
	case BW800Hz:
		return 800
	}
	return 0
}

// Frequency is the CTRL2 Cm_freq[2:0] continuous measurement rate code.
type Frequency uint8

const (
	CMOff Frequency = iota
	CM1Hz
	CM10Hz
	CM20Hz
	CM50Hz
	CM100Hz
	CM200Hz
	CM1000Hz
)

var frequencyHz = [...]int{0, 1, 10, 20, 50, 100, 200, 1000}

// Hz returns the nominal measurement rate; CMOff is 0.
func (f Frequency) Hz() int {
	if int(f) < len(frequencyHz) {
		return frequencyHz[f]
	}
	return -1
}

// BandwidthFromHz maps 100/200/400/800 to a Bandwidth.
func BandwidthFromHz(hz int) (Bandwidth, bool) {
	for b := BW100Hz; b <= BW800Hz; b++ {
		if b.Hz() == hz {
			return b, true
		}
	}
	return 0, false
}

// FrequencyFromHz maps a rate in Hz (0 for off) to a Frequency.
func FrequencyFromHz(hz int) (Frequency, bool) {
	for i, v := range frequencyHz {
		if v == hz {
			return Frequency(i), true
		}
	}
	return 0, false
}
