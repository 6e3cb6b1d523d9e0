// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"log"
	"os"
	"time"

	"github.com/relabs-tech/zkb_sensors/internal/app"
)

func main() {
	log.Println("starting zkb mock console")
	if err := app.RunMockConsole(os.Stdout, 100*time.Millisecond, 0); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
