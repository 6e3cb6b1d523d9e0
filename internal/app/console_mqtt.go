// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/zkb_sensors/internal/config"
	"github.com/relabs-tech/zkb_sensors/internal/imu"
	"github.com/relabs-tech/zkb_sensors/internal/orientation"
)

// FormatPose renders a pose as one console line.
func FormatPose(p orientation.Pose) string {
	return fmt.Sprintf("[POSE]  ROLL=%6.2f  PITCH=%6.2f  YAW=%6.2f", p.Roll, p.Pitch, p.Yaw)
}

// FormatSample renders a board sample as one console line.
func FormatSample(s imu.Sample) string {
	mag := "mag=n/a"
	if s.MagValid {
		mag = fmt.Sprintf("mx=%7.4f my=%7.4f mz=%7.4f", s.Mx, s.My, s.Mz)
	}
	return fmt.Sprintf("[IMU ]  %s ax=%7.3f ay=%7.3f az=%7.3f %s  gx=%7.4f gy=%7.4f gz=%7.4f  %s  t=%5.1f°C",
		s.Source, s.Ax, s.Ay, s.Az, s.AccelUnit, s.Gx, s.Gy, s.Gz, mag, s.TempC)
}

func poseHandler(w io.Writer) mqtt.MessageHandler {
	return func(_ mqtt.Client, msg mqtt.Message) {
		var p orientation.Pose
		if err := json.Unmarshal(msg.Payload(), &p); err != nil {
			log.Printf("console: pose unmarshal error: %v", err)
			return
		}
		fmt.Fprintln(w, FormatPose(p))
	}
}

func sampleHandler(w io.Writer) mqtt.MessageHandler {
	return func(_ mqtt.Client, msg mqtt.Message) {
		var s imu.Sample
		if err := json.Unmarshal(msg.Payload(), &s); err != nil {
			log.Printf("console: imu unmarshal error: %v", err)
			return
		}
		fmt.Fprintln(w, FormatSample(s))
	}
}

// RunConsoleMQTT prints every pose and sample published by the producer
// until interrupted.
func RunConsoleMQTT(cfg *config.Config) error {
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDConsole)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("console: connected to MQTT broker at %s", cfg.MQTTBroker)

	subs := []struct {
		topic   string
		handler mqtt.MessageHandler
	}{
		{cfg.TopicPose, poseHandler(os.Stdout)},
		{cfg.TopicIMU, sampleHandler(os.Stdout)},
	}
	for _, sub := range subs {
		token := client.Subscribe(sub.topic, 0, sub.handler)
		token.Wait()
		if token.Error() != nil {
			return token.Error()
		}
		log.Printf("console: subscribed to %s", sub.topic)
	}

	// Wait for Ctrl+C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("console: shutting down")
	client.Disconnect(250)
	return nil
}
