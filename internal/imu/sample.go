package imu

import "time"

// Sample is one combined reading of the board sensors.
type Sample struct {
	Source string    `json:"source"`
	Time   time.Time `json:"time"`

	Ax        float64 `json:"ax"` // accel
	Ay        float64 `json:"ay"`
	Az        float64 `json:"az"`
	AccelUnit string  `json:"accel_unit"` // "g" or "m/s2"

	Gx float64 `json:"gx"` // gyro, legacy degree-factor scaling
	Gy float64 `json:"gy"`
	Gz float64 `json:"gz"`

	Mx       float64 `json:"mx"` // magnetometer, normalised to [-1, 1)
	My       float64 `json:"my"`
	Mz       float64 `json:"mz"`
	MagValid bool    `json:"mag_valid"`

	TempC float64 `json:"temp_c"` // IMU die temperature
}

// Accel unit names used in Sample.AccelUnit.
const (
	UnitG    = "g"
	UnitMPS2 = "m/s2"
)

// SampleSource is anything that produces board samples.
type SampleSource interface {
	Read() (Sample, error)
}
