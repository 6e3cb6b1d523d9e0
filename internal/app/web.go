// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/go-chi/chi/v5"

	"github.com/relabs-tech/zkb_sensors/internal/config"
	"github.com/relabs-tech/zkb_sensors/internal/imu"
	"github.com/relabs-tech/zkb_sensors/internal/orientation"
)

// LatestState keeps the last pose and sample received over MQTT.
type LatestState struct {
	mu         sync.RWMutex
	pose       orientation.Pose
	havePose   bool
	sample     imu.Sample
	haveSample bool
}

func (l *LatestState) onPose(_ mqtt.Client, msg mqtt.Message) {
	var p orientation.Pose
	if err := json.Unmarshal(msg.Payload(), &p); err != nil {
		log.Printf("web: pose unmarshal error: %v", err)
		return
	}
	l.mu.Lock()
	l.pose = p
	l.havePose = true
	l.mu.Unlock()
}

func (l *LatestState) onSample(_ mqtt.Client, msg mqtt.Message) {
	var s imu.Sample
	if err := json.Unmarshal(msg.Payload(), &s); err != nil {
		log.Printf("web: imu unmarshal error: %v", err)
		return
	}
	l.mu.Lock()
	l.sample = s
	l.haveSample = true
	l.mu.Unlock()
}

// ServeOrientation writes the latest pose.
func (l *LatestState) ServeOrientation(w http.ResponseWriter, r *http.Request) {
	l.mu.RLock()
	p, ok := l.pose, l.havePose
	l.mu.RUnlock()
	writeLatest(w, p, ok)
}

// ServeSample writes the latest board sample.
func (l *LatestState) ServeSample(w http.ResponseWriter, r *http.Request) {
	l.mu.RLock()
	s, ok := l.sample, l.haveSample
	l.mu.RUnlock()
	writeLatest(w, s, ok)
}

func writeLatest(w http.ResponseWriter, v interface{}, ok bool) {
	if !ok {
		http.Error(w, "no data yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("web: json encode error: %v", err)
	}
}

// Routes returns the HTTP handler serving the JSON API.
func (l *LatestState) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/api/orientation", l.ServeOrientation)
	r.Get("/api/imu", l.ServeSample)
	return r
}

// RunWeb mirrors the producer topics into a small JSON API.
func RunWeb(cfg *config.Config) error {
	state := &LatestState{}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDWeb)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	defer client.Disconnect(250)
	log.Printf("web: connected to MQTT broker at %s", cfg.MQTTBroker)

	for topic, handler := range map[string]mqtt.MessageHandler{
		cfg.TopicPose: state.onPose,
		cfg.TopicIMU:  state.onSample,
	} {
		token := client.Subscribe(topic, 0, handler)
		token.Wait()
		if token.Error() != nil {
			return token.Error()
		}
		log.Printf("web: subscribed to MQTT topic %s", topic)
	}

	log.Printf("web server listening on %s", cfg.WebServerAddr)
	return http.ListenAndServe(cfg.WebServerAddr, state.Routes())
}
