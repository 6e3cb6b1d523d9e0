// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"math"

	"github.com/relabs-tech/zkb_sensors/internal/imu"
)

// Pose is the board orientation in degrees.
type Pose struct {
	Roll  float64 `json:"roll"`
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
}

// Source is anything that can provide poses over time.
type Source interface {
	Next() (Pose, error)
}

// ComputePoseFromAccel computes roll and pitch from accelerometer data only.
// Yaw is set to 0.
//
// Uses simple tilt formulas:
//
//	roll  = atan2(ay, az)
//	pitch = atan2(-ax, sqrt(ay² + az²))
func ComputePoseFromAccel(ax, ay, az float64) Pose {
	rollRad := math.Atan2(ay, az)
	pitchRad := math.Atan2(-ax, math.Sqrt(ay*ay+az*az))

	return Pose{
		Roll:  rollRad * 180.0 / math.Pi,
		Pitch: pitchRad * 180.0 / math.Pi,
	}
}

// Heading returns the tilt-compensated magnetic heading in [0, 360) degrees
// for a magnetometer reading and the roll/pitch of the board. Only the
// direction of m matters, so normalised magnetometer output works as is.
//
//	Xh = mx·cosθ + my·sinφ·sinθ + mz·cosφ·sinθ
//	Yh = my·cosφ − mz·sinφ
//	yaw = atan2(−Yh, Xh)
func Heading(mx, my, mz, rollDeg, pitchDeg float64) float64 {
	phi := rollDeg * math.Pi / 180.0
	theta := pitchDeg * math.Pi / 180.0

	xh := mx*math.Cos(theta) + my*math.Sin(phi)*math.Sin(theta) + mz*math.Cos(phi)*math.Sin(theta)
	yh := my*math.Cos(phi) - mz*math.Sin(phi)

	yaw := math.Atan2(-yh, xh) * 180.0 / math.Pi
	if yaw < 0 {
		yaw += 360
	}
	return yaw
}

// ComputePose derives roll and pitch from the accelerometer and, when the
// magnetometer reading is valid, yaw from the magnetic heading.
func ComputePose(s imu.Sample) Pose {
	p := ComputePoseFromAccel(s.Ax, s.Ay, s.Az)
	if s.MagValid {
		p.Yaw = Heading(s.Mx, s.My, s.Mz, p.Roll, p.Pitch)
	}
	return p
}
