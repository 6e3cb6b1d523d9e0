// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"flag"
	"log"

	"github.com/relabs-tech/zkb_sensors/internal/app"
	"github.com/relabs-tech/zkb_sensors/internal/config"
)

func main() {
	configPath := flag.String("config", "zkb_config.txt", "configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.RunRegisterDebug(cfg); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
