// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"fmt"
	"io"
	"time"

	"github.com/relabs-tech/zkb_sensors/internal/imu"
	"github.com/relabs-tech/zkb_sensors/internal/orientation"
)

// RunMockConsole prints poses of the mock sample source to w, n times
// (forever when n <= 0).
func RunMockConsole(w io.Writer, interval time.Duration, n int) error {
	src := orientation.NewSampleSource(imu.NewMockSource("mock"))
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for i := 0; n <= 0 || i < n; i++ {
		<-ticker.C
		pose, err := src.Next()
		if err != nil {
			return err
		}
		fmt.Fprintln(w, FormatPose(pose))
	}
	return nil
}
