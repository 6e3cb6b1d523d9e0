// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/relabs-tech/zkb_sensors/internal/config"
	"github.com/relabs-tech/zkb_sensors/internal/imu"
	"github.com/relabs-tech/zkb_sensors/internal/orientation"
	"github.com/relabs-tech/zkb_sensors/internal/sensors"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// RegisterBoard is the board access the register debugger needs.
type RegisterBoard interface {
	imu.SampleSource
	RegisterMap(device string) ([]sensors.RegisterInfo, error)
	ReadRegister(device string, reg uint8) (byte, error)
	WriteRegister(device string, reg uint8, value byte) error
	ReadAllRegisters(device string) (map[byte]byte, error)
	Reinitialize(device string) error
}

// RegisterDebugServer serves the websocket register inspector and the live
// sample endpoint for one board.
type RegisterDebugServer struct {
	board         RegisterBoard
	allowedWrites config.WriteRanges
}

// NewRegisterDebugServer returns a server for board. Writes are refused
// outside allowedWrites.
func NewRegisterDebugServer(board RegisterBoard, allowedWrites config.WriteRanges) *RegisterDebugServer {
	return &RegisterDebugServer{board: board, allowedWrites: allowedWrites}
}

// RegisterDebugSession holds WebSocket connection state for register debugging
type RegisterDebugSession struct {
	Conn   *websocket.Conn
	server *RegisterDebugServer
}

// RegisterCmd is a client request. Addr and Value are hex strings ("0x0B").
type RegisterCmd struct {
	Action string `json:"action"` // "get_map", "read", "read_all", "write", "init", "export_config"
	Device string `json:"device,omitempty"`
	Addr   string `json:"addr,omitempty"`
	Value  string `json:"value,omitempty"`
}

// RegisterResponse is sent back for every command.
type RegisterResponse struct {
	Type        string                 `json:"type"`             // "register_data", "register_map", "status", "export_config", "error"
	Device      string                 `json:"device,omitempty"` // "qmi8658" or "mmc5983"
	Address     string                 `json:"addr,omitempty"`
	Value       string                 `json:"value,omitempty"`
	Registers   map[string]string      `json:"registers,omitempty"` // for bulk read
	Timestamp   string                 `json:"timestamp,omitempty"`
	Message     string                 `json:"message,omitempty"`
	Status      string                 `json:"status,omitempty"`
	RegisterMap []sensors.RegisterInfo `json:"register_map,omitempty"`
	Config      string                 `json:"config,omitempty"`
	Filename    string                 `json:"filename,omitempty"`
}

// RegisterConfigFile represents the JSON structure for exported register configuration
type RegisterConfigFile struct {
	Version   int               `json:"version"`
	Device    string            `json:"device"`
	Timestamp string            `json:"timestamp"`
	Registers map[string]string `json:"registers"` // hex address -> hex value
}

// HandleRegisterDebugWS handles the WebSocket connection for register debugging
func (srv *RegisterDebugServer) HandleRegisterDebugWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("register_debug: websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	session := &RegisterDebugSession{Conn: conn, server: srv}

	// Send register map on connection (IMU by default)
	if err := session.sendRegisterMap(sensors.DeviceIMU); err != nil {
		log.Printf("register_debug: error sending register map: %v", err)
		return
	}

	// Message loop
	for {
		var cmd RegisterCmd
		if err := conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("register_debug: websocket error: %v", err)
			}
			break
		}
		if cmd.Device == "" {
			cmd.Device = sensors.DeviceIMU
		}

		// Route based on action
		switch cmd.Action {
		case "get_map":
			if err := session.sendRegisterMap(cmd.Device); err != nil {
				session.sendError(err.Error())
			}
		case "read":
			session.handleRead(cmd)
		case "read_all":
			session.handleReadAll(cmd)
		case "write":
			session.handleWrite(cmd)
		case "init":
			session.handleInit(cmd)
		case "export_config":
			session.handleExportConfig(cmd)
		case "":
			session.sendError("missing or invalid action field")
		default:
			session.sendError(fmt.Sprintf("unknown action: %s", cmd.Action))
		}
	}
}

// parseHexByte parses "0x1B". Bare digits are rejected so decimal input is
// never misread as hex.
func parseHexByte(s string) (byte, error) {
	if len(s) < 3 || s[0] != '0' || (s[1] != 'x' && s[1] != 'X') {
		return 0, fmt.Errorf("expected 0x prefix")
	}
	v, err := strconv.ParseUint(s[2:], 16, 8)
	if err != nil {
		return 0, err
	}
	return byte(v), nil
}

func hexMap(regs map[byte]byte) map[string]string {
	out := make(map[string]string, len(regs))
	for addr, value := range regs {
		out[fmt.Sprintf("0x%02X", addr)] = fmt.Sprintf("0x%02X", value)
	}
	return out
}

func (s *RegisterDebugSession) handleRead(cmd RegisterCmd) {
	if cmd.Addr == "" {
		s.sendError("missing addr field")
		return
	}
	reg, err := parseHexByte(cmd.Addr)
	if err != nil {
		s.sendError(fmt.Sprintf("invalid address format: %s", cmd.Addr))
		return
	}

	value, err := s.server.board.ReadRegister(cmd.Device, reg)
	if err != nil {
		s.sendError(fmt.Sprintf("read error: %v", err))
		return
	}

	s.send(RegisterResponse{
		Type:      "register_data",
		Device:    cmd.Device,
		Address:   fmt.Sprintf("0x%02X", reg),
		Value:     fmt.Sprintf("0x%02X", value),
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

func (s *RegisterDebugSession) handleReadAll(cmd RegisterCmd) {
	registers, err := s.server.board.ReadAllRegisters(cmd.Device)
	if err != nil {
		s.sendError(fmt.Sprintf("read all error: %v", err))
		return
	}

	s.send(RegisterResponse{
		Type:      "register_data",
		Device:    cmd.Device,
		Registers: hexMap(registers),
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

func (s *RegisterDebugSession) handleWrite(cmd RegisterCmd) {
	if cmd.Addr == "" || cmd.Value == "" {
		s.sendError("missing addr or value field")
		return
	}

	reg, err := parseHexByte(cmd.Addr)
	if err != nil {
		s.sendError(fmt.Sprintf("invalid address format: %s", cmd.Addr))
		return
	}
	value, err := parseHexByte(cmd.Value)
	if err != nil {
		s.sendError(fmt.Sprintf("invalid value format: %s", cmd.Value))
		return
	}

	if !s.server.allowedWrites.Contains(reg) {
		s.sendError(fmt.Sprintf("register 0x%02X not in allowed write ranges", reg))
		return
	}
	if err := s.server.board.WriteRegister(cmd.Device, reg, value); err != nil {
		s.sendError(fmt.Sprintf("write error: %v", err))
		return
	}
	log.Printf("register_debug: wrote 0x%02X to %s register 0x%02X", value, cmd.Device, reg)

	s.send(RegisterResponse{
		Type:      "register_data",
		Device:    cmd.Device,
		Address:   fmt.Sprintf("0x%02X", reg),
		Value:     fmt.Sprintf("0x%02X", value),
		Timestamp: time.Now().Format(time.RFC3339),
		Message:   "write successful",
	})
}

func (s *RegisterDebugSession) handleInit(cmd RegisterCmd) {
	if err := s.server.board.Reinitialize(cmd.Device); err != nil {
		s.sendError(fmt.Sprintf("reinit error: %v", err))
		return
	}

	s.send(RegisterResponse{
		Type:    "status",
		Device:  cmd.Device,
		Status:  "initialized",
		Message: fmt.Sprintf("%s reinitialized successfully", cmd.Device),
	})
}

func (s *RegisterDebugSession) handleExportConfig(cmd RegisterCmd) {
	registers, err := s.server.board.ReadAllRegisters(cmd.Device)
	if err != nil {
		s.sendError(fmt.Sprintf("export error: %v", err))
		return
	}

	now := time.Now()
	configFile := RegisterConfigFile{
		Version:   1,
		Device:    cmd.Device,
		Timestamp: now.Format(time.RFC3339),
		Registers: hexMap(registers),
	}
	configJSON, err := json.Marshal(configFile)
	if err != nil {
		s.sendError(fmt.Sprintf("export error: %v", err))
		return
	}

	s.send(RegisterResponse{
		Type:     "export_config",
		Device:   cmd.Device,
		Message:  "config exported",
		Config:   string(configJSON),
		Filename: fmt.Sprintf("%s_%s_registers.json", cmd.Device, now.Format("20060102_150405")),
	})
}

func (s *RegisterDebugSession) sendRegisterMap(device string) error {
	regMap, err := s.server.board.RegisterMap(device)
	if err != nil {
		return err
	}
	return s.Conn.WriteJSON(RegisterResponse{
		Type:        "register_map",
		Device:      device,
		RegisterMap: regMap,
	})
}

func (s *RegisterDebugSession) send(resp RegisterResponse) {
	if err := s.Conn.WriteJSON(resp); err != nil {
		log.Printf("register_debug: write error: %v", err)
	}
}

func (s *RegisterDebugSession) sendError(message string) {
	s.send(RegisterResponse{
		Type:    "error",
		Message: message,
	})
}

// liveData is the HandleIMUData payload.
type liveData struct {
	Sample imu.Sample       `json:"sample"`
	Pose   orientation.Pose `json:"pose"`
}

// HandleIMUData serves one live board sample and its pose via REST.
func (srv *RegisterDebugServer) HandleIMUData(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	sample, err := srv.board.Read()
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}

	if err := json.NewEncoder(w).Encode(liveData{Sample: sample, Pose: orientation.ComputePose(sample)}); err != nil {
		log.Printf("register_debug: json encode error: %v", err)
	}
}

// HandleRegisters serves every readable register of the device named in
// the URL as a hex map.
func (srv *RegisterDebugServer) HandleRegisters(w http.ResponseWriter, r *http.Request) {
	device := chi.URLParam(r, "device")
	regs, err := srv.board.ReadAllRegisters(device)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, sensors.ErrUnknownDeviceName) {
			status = http.StatusNotFound
		}
		http.Error(w, err.Error(), status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(hexMap(regs)); err != nil {
		log.Printf("register_debug: json encode error: %v", err)
	}
}

// Routes returns the HTTP handler serving the debugger endpoints.
func (srv *RegisterDebugServer) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/ws", srv.HandleRegisterDebugWS)
	r.Route("/api", func(r chi.Router) {
		r.Get("/imu", srv.HandleIMUData)
		r.Get("/registers/{device}", srv.HandleRegisters)
	})
	return r
}

// RunRegisterDebug brings up the board and serves the register debugger on
// cfg.RegisterDebugAddr.
func RunRegisterDebug(cfg *config.Config) error {
	log.Println("starting QMI8658/MMC5983 register debug tool")

	board, closeBus, err := openBoard(cfg)
	if err != nil {
		return err
	}
	defer closeBus()

	if board.IsMagAvailable() {
		log.Println("magnetometer available")
	} else {
		log.Println("Warning: magnetometer not available")
	}
	if len(cfg.RegisterDebugAllowedWrites) == 0 {
		log.Println("register writes disabled (REGISTER_DEBUG_ALLOWED_WRITES is empty)")
	} else {
		log.Printf("register writes allowed in %s", cfg.RegisterDebugAllowedWrites)
	}

	srv := NewRegisterDebugServer(board, cfg.RegisterDebugAllowedWrites)
	log.Printf("register debug tool listening on %s", cfg.RegisterDebugAddr)
	return http.ListenAndServe(cfg.RegisterDebugAddr, srv.Routes())
}
