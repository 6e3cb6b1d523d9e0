// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"fmt"

	"github.com/relabs-tech/zkb_sensors/internal/imu"
)

type sampleSource struct {
	src imu.SampleSource
}

// NewSampleSource returns a Source computing a pose from every sample read
// from src.
func NewSampleSource(src imu.SampleSource) Source {
	return &sampleSource{src: src}
}

// Next reads one sample and computes its pose.
func (s *sampleSource) Next() (Pose, error) {
	sample, err := s.src.Read()
	if err != nil {
		return Pose{}, fmt.Errorf("orientation: %w", err)
	}
	return ComputePose(sample), nil
}
