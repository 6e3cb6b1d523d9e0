// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"bufio"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/relabs-tech/zkb_sensors/internal/sensors"
	"github.com/relabs-tech/zkb_sensors/internal/sensors/mmc5983"
	"github.com/relabs-tech/zkb_sensors/internal/sensors/qmi8658"
)

// Config holds all application configuration values.
type Config struct {
	// Board
	BoardName  string
	I2CBus     string // periph bus name, "" for the first available bus
	IMUI2CAddr uint16
	MagI2CAddr uint16

	// IMU ranges, in g and °/s
	IMUAccelScale int
	IMUGyroScale  int
	IMUAccelMPS2  bool // publish acceleration in m/s² instead of g

	// Magnetometer
	MagBandwidthHz int
	MagFrequencyHz int // continuous measurement rate, 0 = off

	// MQTT
	MQTTBroker           string
	MQTTClientIDProducer string
	MQTTClientIDConsole  string
	MQTTClientIDWeb      string

	// Topics
	TopicIMU  string
	TopicPose string

	// Timing
	SampleInterval int // milliseconds

	// Web Server
	WebServerAddr string

	// Register debugger
	RegisterDebugAddr          string
	RegisterDebugAllowedWrites WriteRanges
}

// Default returns the configuration used for keys missing from the file.
func Default() *Config {
	return &Config{
		BoardName:            "zkb",
		IMUI2CAddr:           qmi8658.DefaultAddr,
		MagI2CAddr:           mmc5983.DefaultAddr,
		IMUAccelScale:        2,
		IMUGyroScale:         16,
		MagBandwidthHz:       400,
		MagFrequencyHz:       200,
		MQTTClientIDProducer: "zkb-producer",
		MQTTClientIDConsole:  "zkb-console",
		MQTTClientIDWeb:      "zkb-web",
		TopicIMU:             "zkb/imu",
		TopicPose:            "zkb/pose",
		WebServerAddr:        ":8080",
		RegisterDebugAddr:    ":8081",
	}
}

// Load reads the configuration file and returns a Config struct.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	cfg := Default()
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=VALUE
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := cfg.setValue(key, value); err != nil {
			return nil, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Validate required fields
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	switch key {
	// Board
	case "BOARD_NAME":
		c.BoardName = value
	case "I2C_BUS":
		c.I2CBus = value
	case "IMU_I2C_ADDR":
		addr, err := parseI2CAddr(key, value)
		if err != nil {
			return err
		}
		c.IMUI2CAddr = addr
	case "MAG_I2C_ADDR":
		addr, err := parseI2CAddr(key, value)
		if err != nil {
			return err
		}
		c.MagI2CAddr = addr

	// IMU Sensor Ranges
	case "IMU_ACCEL_SCALE":
		scale, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid IMU_ACCEL_SCALE %q: %w", value, err)
		}
		if !slices.Contains(qmi8658.AccelScales(), scale) {
			return fmt.Errorf("IMU_ACCEL_SCALE must be one of %v (g), got %d", qmi8658.AccelScales(), scale)
		}
		c.IMUAccelScale = scale
	case "IMU_GYRO_SCALE":
		scale, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid IMU_GYRO_SCALE %q: %w", value, err)
		}
		if !slices.Contains(qmi8658.GyroScales(), scale) {
			return fmt.Errorf("IMU_GYRO_SCALE must be one of %v (°/s), got %d", qmi8658.GyroScales(), scale)
		}
		c.IMUGyroScale = scale
	case "IMU_ACCEL_MPS2":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid IMU_ACCEL_MPS2 %q: %w", value, err)
		}
		c.IMUAccelMPS2 = b

	// Magnetometer
	case "MAG_BANDWIDTH_HZ":
		hz, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid MAG_BANDWIDTH_HZ %q: %w", value, err)
		}
		if _, ok := mmc5983.BandwidthFromHz(hz); !ok {
			return fmt.Errorf("MAG_BANDWIDTH_HZ must be 100, 200, 400 or 800, got %d", hz)
		}
		c.MagBandwidthHz = hz
	case "MAG_FREQUENCY_HZ":
		hz, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid MAG_FREQUENCY_HZ %q: %w", value, err)
		}
		if _, ok := mmc5983.FrequencyFromHz(hz); !ok {
			return fmt.Errorf("MAG_FREQUENCY_HZ must be 0, 1, 10, 20, 50, 100, 200 or 1000, got %d", hz)
		}
		c.MagFrequencyHz = hz

	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_PRODUCER":
		c.MQTTClientIDProducer = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value
	case "MQTT_CLIENT_ID_WEB":
		c.MQTTClientIDWeb = value

	// Topics
	case "TOPIC_IMU":
		c.TopicIMU = value
	case "TOPIC_POSE":
		c.TopicPose = value

	// Timing
	case "SAMPLE_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid SAMPLE_INTERVAL %q: %w", value, err)
		}
		c.SampleInterval = interval

	// Web Server
	case "WEB_SERVER_ADDR":
		c.WebServerAddr = value

	// Register debugger
	case "REGISTER_DEBUG_ADDR":
		c.RegisterDebugAddr = value
	case "REGISTER_DEBUG_ALLOWED_WRITES":
		ranges, err := ParseWriteRanges(value)
		if err != nil {
			return fmt.Errorf("invalid REGISTER_DEBUG_ALLOWED_WRITES %q: %w", value, err)
		}
		c.RegisterDebugAllowedWrites = ranges

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return nil
}

func parseI2CAddr(key, value string) (uint16, error) {
	addr, err := strconv.ParseUint(value, 0, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	if addr > 0x7F {
		return 0, fmt.Errorf("%s must be a 7-bit address, got 0x%X", key, addr)
	}
	return uint16(addr), nil
}

// validate checks that all required fields are set.
func (c *Config) validate() error {
	if c.MQTTBroker == "" {
		return fmt.Errorf("MQTT_BROKER is required")
	}
	if c.SampleInterval <= 0 {
		return fmt.Errorf("SAMPLE_INTERVAL is required")
	}
	if c.IMUI2CAddr == c.MagI2CAddr {
		return fmt.Errorf("IMU_I2C_ADDR and MAG_I2C_ADDR must differ, both are 0x%02X", c.IMUI2CAddr)
	}
	return nil
}

// Board returns the sensor board settings.
func (c *Config) Board() sensors.BoardConfig {
	bw, _ := mmc5983.BandwidthFromHz(c.MagBandwidthHz)
	freq, _ := mmc5983.FrequencyFromHz(c.MagFrequencyHz)
	return sensors.BoardConfig{
		Name:         c.BoardName,
		IMUAddr:      c.IMUI2CAddr,
		AccelRange:   c.IMUAccelScale,
		GyroRange:    c.IMUGyroScale,
		AccelMPS2:    c.IMUAccelMPS2,
		MagAddr:      c.MagI2CAddr,
		MagBandwidth: bw,
		MagFrequency: freq,
	}
}
