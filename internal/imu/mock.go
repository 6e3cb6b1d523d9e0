// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package imu

import (
	"math"
	"time"
)

type mockSource struct {
	name  string
	start time.Time
	now   func() time.Time
}

// NewMockSource creates a sample source that generates a board slowly
// rocking and turning, for running the pipeline without hardware.
func NewMockSource(name string) SampleSource {
	return &mockSource{name: name, start: time.Now(), now: time.Now}
}

func (m *mockSource) Read() (Sample, error) {
	t := m.now()
	elapsed := t.Sub(m.start).Seconds()

	roll := 20 * math.Pi / 180 * math.Sin(elapsed)
	pitch := 15 * math.Pi / 180 * math.Cos(elapsed*0.7)
	yaw := math.Mod(elapsed*30, 360) * math.Pi / 180

	// gravity in the body frame
	ax := -math.Sin(pitch)
	ay := math.Sin(roll) * math.Cos(pitch)
	az := math.Cos(roll) * math.Cos(pitch)

	return Sample{
		Source:    m.name,
		Time:      t.UTC(),
		Ax:        ax,
		Ay:        ay,
		Az:        az,
		AccelUnit: UnitG,
		Gx:        20 * math.Cos(elapsed) * 0.01745329,
		Gy:        -10.5 * math.Sin(elapsed*0.7) * 0.01745329,
		Gz:        30 * 0.01745329,
		Mx:        0.3 * math.Cos(yaw),
		My:        -0.3 * math.Sin(yaw),
		Mz:        0,
		MagValid:  true,
		TempC:     25,
	}, nil
}
