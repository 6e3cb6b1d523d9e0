// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"strconv"
	"strings"
)

// RegisterInfo describes one chip register for the register debugger.
type RegisterInfo struct {
	Address     string     `json:"address"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Access      string     `json:"access"` // "R", "W", "RW"
	Default     string     `json:"default,omitempty"`
	BitFields   []BitField `json:"bit_fields,omitempty"`
}

// BitField describes a bit range inside a register.
type BitField struct {
	Bits        string `json:"bits"` // "7" or "4:3"
	Name        string `json:"name"`
	Description string `json:"description"`
	Values      string `json:"values,omitempty"`
}

// Reg parses Address.
func (r RegisterInfo) Reg() (uint8, bool) {
	v, err := strconv.ParseUint(r.Address, 0, 8)
	if err != nil {
		return 0, false
	}
	return uint8(v), true
}

// Readable reports whether reading the register is side-effect free and
// meaningful.
func (r RegisterInfo) Readable() bool {
	return strings.Contains(r.Access, "R")
}

// qmi8658RegisterMap returns metadata for the QMI8658 registers the driver uses.
func qmi8658RegisterMap() []RegisterInfo {
	return []RegisterInfo{
		// Identification
		{Address: "0x00", Name: "WHO_AM_I", Description: "Device identifier (should be 0x05)", Access: "R", Default: "0x05"},
		{Address: "0x01", Name: "REVISION_ID", Description: "Device revision", Access: "R"},

		// Configuration
		{Address: "0x02", Name: "CTRL1", Description: "Serial interface and sensor enable", Access: "RW", Default: "0x20",
			BitFields: []BitField{
				{Bits: "6", Name: "ADDR_AI", Description: "Serial address auto increment", Values: "0=Disabled, 1=Enabled"},
				{Bits: "5", Name: "BE", Description: "Read data big endian", Values: "0=Little endian, 1=Big endian"},
				{Bits: "0", Name: "SensorDisable", Description: "Internal 2MHz oscillator", Values: "0=Enabled, 1=Disabled"},
			}},
		{Address: "0x03", Name: "CTRL2", Description: "Accelerometer settings", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "7", Name: "aST", Description: "Accelerometer self-test", Values: "0=Disabled, 1=Enabled"},
				{Bits: "4:3", Name: "aFS", Description: "Accelerometer full scale", Values: "0=±2g, 1=±4g, 2=±8g, 3=±16g"},
				{Bits: "2:0", Name: "aODR", Description: "Accelerometer output data rate"},
			}},
		{Address: "0x04", Name: "CTRL3", Description: "Gyroscope settings", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "7", Name: "gST", Description: "Gyroscope self-test", Values: "0=Disabled, 1=Enabled"},
				{Bits: "5:3", Name: "gFS", Description: "Gyroscope full scale", Values: "0=±16, 1=±32, 2=±64, 3=±128, 4=±256, 5=±512, 6=±1024 °/s"},
				{Bits: "2:0", Name: "gODR", Description: "Gyroscope output data rate"},
			}},
		{Address: "0x05", Name: "CTRL4", Description: "Reserved", Access: "RW", Default: "0x00"},
		{Address: "0x06", Name: "CTRL5", Description: "Low pass filter settings", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "6:5", Name: "gLPF_MODE", Description: "Gyroscope LPF bandwidth", Values: "0=2.66%, 1=3.63%, 2=5.39%, 3=13.37% of ODR"},
				{Bits: "4", Name: "gLPF_EN", Description: "Gyroscope low pass filter", Values: "0=Disabled, 1=Enabled"},
				{Bits: "2:1", Name: "aLPF_MODE", Description: "Accelerometer LPF bandwidth", Values: "0=2.66%, 1=3.63%, 2=5.39%, 3=13.37% of ODR"},
				{Bits: "0", Name: "aLPF_EN", Description: "Accelerometer low pass filter", Values: "0=Disabled, 1=Enabled"},
			}},
		{Address: "0x07", Name: "CTRL6", Description: "Attitude engine settings", Access: "RW", Default: "0x00"},
		{Address: "0x08", Name: "CTRL7", Description: "Enable sensors", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "7", Name: "syncSmpl", Description: "SyncSample mode", Values: "0=Disabled, 1=Enabled"},
				{Bits: "4", Name: "gSN", Description: "Gyroscope snooze mode", Values: "0=Full mode, 1=Drive mode only"},
				{Bits: "1", Name: "gEN", Description: "Gyroscope enable", Values: "0=Disabled, 1=Enabled"},
				{Bits: "0", Name: "aEN", Description: "Accelerometer enable", Values: "0=Disabled, 1=Enabled"},
			}},

		// Status
		{Address: "0x2D", Name: "STATUSINT", Description: "Sensor data availability with locking", Access: "R"},
		{Address: "0x2E", Name: "STATUS0", Description: "Output data status", Access: "R",
			BitFields: []BitField{
				{Bits: "1", Name: "gDA", Description: "New gyroscope data available"},
				{Bits: "0", Name: "aDA", Description: "New accelerometer data available"},
			}},
		{Address: "0x2F", Name: "STATUS1", Description: "Miscellaneous status", Access: "R"},

		// Sensor data
		{Address: "0x33", Name: "TEMP_L", Description: "Temperature low byte (1/256 °C)", Access: "R"},
		{Address: "0x34", Name: "TEMP_H", Description: "Temperature high byte (°C)", Access: "R"},
		{Address: "0x35", Name: "AX_L", Description: "Accelerometer X-Axis Low Byte", Access: "R"},
		{Address: "0x36", Name: "AX_H", Description: "Accelerometer X-Axis High Byte", Access: "R"},
		{Address: "0x37", Name: "AY_L", Description: "Accelerometer Y-Axis Low Byte", Access: "R"},
		{Address: "0x38", Name: "AY_H", Description: "Accelerometer Y-Axis High Byte", Access: "R"},
		{Address: "0x39", Name: "AZ_L", Description: "Accelerometer Z-Axis Low Byte", Access: "R"},
		{Address: "0x3A", Name: "AZ_H", Description: "Accelerometer Z-Axis High Byte", Access: "R"},
		{Address: "0x3B", Name: "GX_L", Description: "Gyroscope X-Axis Low Byte", Access: "R"},
		{Address: "0x3C", Name: "GX_H", Description: "Gyroscope X-Axis High Byte", Access: "R"},
		{Address: "0x3D", Name: "GY_L", Description: "Gyroscope Y-Axis Low Byte", Access: "R"},
		{Address: "0x3E", Name: "GY_H", Description: "Gyroscope Y-Axis High Byte", Access: "R"},
		{Address: "0x3F", Name: "GZ_L", Description: "Gyroscope Z-Axis Low Byte", Access: "R"},
		{Address: "0x40", Name: "GZ_H", Description: "Gyroscope Z-Axis High Byte", Access: "R"},

		// Reset
		{Address: "0x4D", Name: "dQW", Description: "Reset status (0x80 after a soft reset)", Access: "R"},
		{Address: "0x60", Name: "RESET", Description: "Soft reset (write 0xB0)", Access: "W"},
	}
}

// mmc5983RegisterMap returns metadata for all MMC5983MA registers.
// The control registers are write-only.
func mmc5983RegisterMap() []RegisterInfo {
	return []RegisterInfo{
		// Output
		{Address: "0x00", Name: "Xout0", Description: "X-Axis output [17:10]", Access: "R"},
		{Address: "0x01", Name: "Xout1", Description: "X-Axis output [9:2]", Access: "R"},
		{Address: "0x02", Name: "Yout0", Description: "Y-Axis output [17:10]", Access: "R"},
		{Address: "0x03", Name: "Yout1", Description: "Y-Axis output [9:2]", Access: "R"},
		{Address: "0x04", Name: "Zout0", Description: "Z-Axis output [17:10]", Access: "R"},
		{Address: "0x05", Name: "Zout1", Description: "Z-Axis output [9:2]", Access: "R"},
		{Address: "0x06", Name: "XYZout2", Description: "Low bits of each axis", Access: "R",
			BitFields: []BitField{
				{Bits: "7:6", Name: "Xout[1:0]", Description: "X-Axis output low bits"},
				{Bits: "5:4", Name: "Yout[1:0]", Description: "Y-Axis output low bits"},
				{Bits: "3:2", Name: "Zout[1:0]", Description: "Z-Axis output low bits"},
			}},
		{Address: "0x07", Name: "Tout", Description: "Temperature output (-75 °C + 0.8 °C/LSB)", Access: "R"},

		// Status
		{Address: "0x08", Name: "Status", Description: "Device status", Access: "R",
			BitFields: []BitField{
				{Bits: "4", Name: "OTP_Read_Done", Description: "OTP memory read successfully"},
				{Bits: "1", Name: "Meas_T_Done", Description: "Temperature measurement done"},
				{Bits: "0", Name: "Meas_M_Done", Description: "Magnetic measurement done"},
			}},

		// Control
		{Address: "0x09", Name: "Internal_Control_0", Description: "Measurement triggers", Access: "W", Default: "0x00",
			BitFields: []BitField{
				{Bits: "6", Name: "OTP_Read", Description: "Read OTP memory"},
				{Bits: "5", Name: "Auto_SR_en", Description: "Automatic set/reset", Values: "0=Disabled, 1=Enabled"},
				{Bits: "4", Name: "Reset", Description: "Reset current pulse"},
				{Bits: "3", Name: "Set", Description: "Set current pulse"},
				{Bits: "2", Name: "INT_meas_done_en", Description: "Measurement done interrupt", Values: "0=Disabled, 1=Enabled"},
				{Bits: "1", Name: "TM_T", Description: "Start temperature measurement (self-clearing)"},
				{Bits: "0", Name: "TM_M", Description: "Start magnetic measurement (self-clearing)"},
			}},
		{Address: "0x0A", Name: "Internal_Control_1", Description: "Bandwidth and reset", Access: "W", Default: "0x00",
			BitFields: []BitField{
				{Bits: "7", Name: "SW_RST", Description: "Software reset (self-clearing)"},
				{Bits: "4:3", Name: "YZ-inhibit", Description: "Disable Y and Z channels"},
				{Bits: "2", Name: "X-inhibit", Description: "Disable X channel"},
				{Bits: "1:0", Name: "BW", Description: "Output bandwidth", Values: "0=100Hz, 1=200Hz, 2=400Hz, 3=800Hz"},
			}},
		{Address: "0x0B", Name: "Internal_Control_2", Description: "Continuous measurement", Access: "W", Default: "0x00",
			BitFields: []BitField{
				{Bits: "7", Name: "En_prd_set", Description: "Periodic set", Values: "0=Disabled, 1=Enabled"},
				{Bits: "6:4", Name: "Prd_set", Description: "Measurements between set operations", Values: "0=1, 1=25, 2=75, 3=100, 4=250, 5=500, 6=1000, 7=2000"},
				{Bits: "3", Name: "Cmm_en", Description: "Continuous mode", Values: "0=One-shot, 1=Continuous"},
				{Bits: "2:0", Name: "Cm_freq", Description: "Continuous measurement rate", Values: "0=Off, 1=1Hz, 2=10Hz, 3=20Hz, 4=50Hz, 5=100Hz, 6=200Hz, 7=1000Hz"},
			}},
		{Address: "0x0C", Name: "Internal_Control_3", Description: "Self-test and SPI mode", Access: "W", Default: "0x00",
			BitFields: []BitField{
				{Bits: "6", Name: "Spi_3w", Description: "3-wire SPI", Values: "0=4-wire, 1=3-wire"},
				{Bits: "2", Name: "St_enm", Description: "Self-test negative current"},
				{Bits: "1", Name: "St_enp", Description: "Self-test positive current"},
			}},

		// Identification
		{Address: "0x2F", Name: "Product_ID", Description: "Product identifier (should be 0x30)", Access: "R", Default: "0x30"},
	}
}
