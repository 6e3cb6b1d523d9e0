// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/zkb_sensors/internal/bus"
	"github.com/relabs-tech/zkb_sensors/internal/config"
	"github.com/relabs-tech/zkb_sensors/internal/imu"
	"github.com/relabs-tech/zkb_sensors/internal/orientation"
	"github.com/relabs-tech/zkb_sensors/internal/sensors"
)

// Publisher is the part of mqtt.Client the producer uses.
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// Producer reads the board on every tick and publishes the sample and the
// derived pose as retained JSON messages.
type Producer struct {
	src       imu.SampleSource
	pub       Publisher
	topicIMU  string
	topicPose string
}

// NewProducer returns a producer publishing samples of src to topicIMU and
// poses to topicPose.
func NewProducer(src imu.SampleSource, pub Publisher, topicIMU, topicPose string) *Producer {
	return &Producer{src: src, pub: pub, topicIMU: topicIMU, topicPose: topicPose}
}

// Tick reads one sample, computes its pose and publishes both.
func (p *Producer) Tick() (imu.Sample, orientation.Pose, error) {
	s, err := p.src.Read()
	if err != nil {
		return imu.Sample{}, orientation.Pose{}, fmt.Errorf("read sample: %w", err)
	}
	pose := orientation.ComputePose(s)

	if err := p.publishJSON(p.topicIMU, s); err != nil {
		return s, pose, err
	}
	if err := p.publishJSON(p.topicPose, pose); err != nil {
		return s, pose, err
	}
	return s, pose, nil
}

func (p *Producer) publishJSON(topic string, v interface{}) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("json marshal (%s): %w", topic, err)
	}
	if token := p.pub.Publish(topic, 0, true, payload); token.Wait() && token.Error() != nil {
		return fmt.Errorf("MQTT publish (%s): %w", topic, token.Error())
	}
	return nil
}

// openBoard opens the configured I2C bus and brings up the sensor board.
// The returned close function releases the bus.
func openBoard(cfg *config.Config) (*sensors.Board, func() error, error) {
	b, err := bus.Open(cfg.I2CBus)
	if err != nil {
		return nil, nil, err
	}
	board, err := sensors.NewBoard(b, cfg.Board())
	if err != nil {
		b.Close()
		return nil, nil, err
	}
	return board, b.Close, nil
}

// RunProducer publishes board samples until interrupted. With useMock the
// board is replaced by a synthetic sample source.
func RunProducer(cfg *config.Config, useMock bool) error {
	log.Println("starting zkb sensor producer")

	var src imu.SampleSource
	if useMock {
		log.Println("using mock sample source")
		src = imu.NewMockSource(cfg.BoardName)
	} else {
		board, closeBus, err := openBoard(cfg)
		if err != nil {
			return err
		}
		defer closeBus()
		if !board.IsMagAvailable() {
			log.Println("WARNING: magnetometer not available, yaw will stay at 0")
		}
		src = board
	}

	// --- connect to MQTT ---
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDProducer)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("MQTT connect: %w", token.Error())
	}
	defer client.Disconnect(250)

	log.Println("connected to MQTT, starting publish loop")

	p := NewProducer(src, client, cfg.TopicIMU, cfg.TopicPose)

	ticker := time.NewTicker(time.Duration(cfg.SampleInterval) * time.Millisecond)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	for {
		select {
		case <-sigCh:
			log.Println("producer: shutting down")
			return nil
		case t := <-ticker.C:
			s, pose, err := p.Tick()
			if err != nil {
				log.Printf("producer: %v", err)
				continue
			}
			log.Printf("%s tick: pose R=%.2f P=%.2f Y=%.2f | accel %.3f %.3f %.3f %s | gyro %.4f %.4f %.4f | mag %.4f %.4f %.4f valid=%t | %.1f°C",
				t.Format(time.RFC3339),
				pose.Roll, pose.Pitch, pose.Yaw,
				s.Ax, s.Ay, s.Az, s.AccelUnit,
				s.Gx, s.Gy, s.Gz,
				s.Mx, s.My, s.Mz, s.MagValid,
				s.TempC,
			)
		}
	}
}
