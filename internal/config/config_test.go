package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/relabs-tech/zkb_sensors/internal/sensors/mmc5983"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "zkb.cfg")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

const minimal = `
MQTT_BROKER=tcp://localhost:1883
SAMPLE_INTERVAL=50
`

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimal))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.IMUI2CAddr != 0x6B || cfg.MagI2CAddr != 0x30 {
		t.Errorf("addresses = 0x%02X, 0x%02X; want 0x6B, 0x30", cfg.IMUI2CAddr, cfg.MagI2CAddr)
	}
	if cfg.IMUAccelScale != 2 || cfg.IMUGyroScale != 16 {
		t.Errorf("scales = %d g, %d °/s; want 2, 16", cfg.IMUAccelScale, cfg.IMUGyroScale)
	}
	if cfg.SampleInterval != 50 || cfg.MQTTBroker != "tcp://localhost:1883" {
		t.Errorf("cfg = %+v", cfg)
	}
	if len(cfg.RegisterDebugAllowedWrites) != 0 {
		t.Errorf("allowed writes = %v, want none", cfg.RegisterDebugAllowedWrites)
	}
}

func TestLoadFull(t *testing.T) {
	body := `# board
BOARD_NAME = bench
I2C_BUS=/dev/i2c-3
IMU_I2C_ADDR=0x6A
MAG_I2C_ADDR=48
IMU_ACCEL_SCALE=8
IMU_GYRO_SCALE=512
IMU_ACCEL_MPS2=true
MAG_BANDWIDTH_HZ=800
MAG_FREQUENCY_HZ=1000
MQTT_BROKER=tcp://broker:1883
MQTT_CLIENT_ID_PRODUCER=p
MQTT_CLIENT_ID_CONSOLE=c
TOPIC_IMU=bench/imu
TOPIC_POSE=bench/pose
SAMPLE_INTERVAL=20
REGISTER_DEBUG_ADDR=:9000
REGISTER_DEBUG_ALLOWED_WRITES=0x02-0x08, 0x60
`
	cfg, err := Load(writeConfig(t, body))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BoardName != "bench" || cfg.I2CBus != "/dev/i2c-3" {
		t.Errorf("board = %q on %q", cfg.BoardName, cfg.I2CBus)
	}
	if cfg.RegisterDebugAllowedWrites.String() != "0x02-0x08,0x60" {
		t.Errorf("allowed writes = %v", cfg.RegisterDebugAllowedWrites)
	}

	b := cfg.Board()
	if b.Name != "bench" || b.IMUAddr != 0x6A || b.MagAddr != 0x30 {
		t.Errorf("Board() = %+v", b)
	}
	if b.AccelRange != 8 || b.GyroRange != 512 || !b.AccelMPS2 {
		t.Errorf("Board() ranges = %+v", b)
	}
	if b.MagBandwidth != mmc5983.BW800Hz || b.MagFrequency != mmc5983.CM1000Hz {
		t.Errorf("Board() mag = %d Hz / %d Hz", b.MagBandwidth.Hz(), b.MagFrequency.Hz())
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing broker", "SAMPLE_INTERVAL=10\n", "MQTT_BROKER is required"},
		{"missing interval", "MQTT_BROKER=x\n", "SAMPLE_INTERVAL is required"},
		{"bad line", minimal + "NOPE\n", "invalid config line"},
		{"unknown key", minimal + "TOPIC_GPS=x\n", "unknown config key"},
		{"accel scale", minimal + "IMU_ACCEL_SCALE=3\n", "IMU_ACCEL_SCALE must be one of"},
		{"gyro scale", minimal + "IMU_GYRO_SCALE=2000\n", "IMU_GYRO_SCALE must be one of"},
		{"mag bandwidth", minimal + "MAG_BANDWIDTH_HZ=300\n", "MAG_BANDWIDTH_HZ must be"},
		{"mag frequency", minimal + "MAG_FREQUENCY_HZ=500\n", "MAG_FREQUENCY_HZ must be"},
		{"address width", minimal + "IMU_I2C_ADDR=0x80\n", "7-bit address"},
		{"same address", minimal + "MAG_I2C_ADDR=0x6B\n", "must differ"},
		{"mps2", minimal + "IMU_ACCEL_MPS2=maybe\n", "invalid IMU_ACCEL_MPS2"},
		{"write ranges", minimal + "REGISTER_DEBUG_ALLOWED_WRITES=0x08-0x02\n", "reversed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Load() error = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.cfg")); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Load() error = %v, want fs.ErrNotExist", err)
	}
}

func TestWriteRanges(t *testing.T) {
	w, err := ParseWriteRanges("0x02-0x08,0x60, 0x0A - 0x0B")
	if err != nil {
		t.Fatalf("ParseWriteRanges() error = %v", err)
	}
	tests := []struct {
		reg  uint8
		want bool
	}{
		{0x01, false},
		{0x02, true},
		{0x05, true},
		{0x08, true},
		{0x09, false},
		{0x0A, true},
		{0x0B, true},
		{0x5F, false},
		{0x60, true},
		{0x61, false},
	}
	for _, tt := range tests {
		if got := w.Contains(tt.reg); got != tt.want {
			t.Errorf("Contains(0x%02X) = %v, want %v", tt.reg, got, tt.want)
		}
	}

	empty, err := ParseWriteRanges("")
	if err != nil {
		t.Fatalf("ParseWriteRanges(\"\") error = %v", err)
	}
	if empty.Contains(0x00) {
		t.Error("empty ranges allow writes")
	}

	for _, bad := range []string{"0x100", "zz", "0x02-", "0x09-0x01"} {
		if _, err := ParseWriteRanges(bad); err == nil {
			t.Errorf("ParseWriteRanges(%q) accepted", bad)
		}
	}
}

func TestLoadShippedConfig(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "zkb_config.txt"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.WebServerAddr != ":8080" || cfg.MQTTClientIDWeb != "zkb-web" {
		t.Errorf("web settings = %q, %q", cfg.WebServerAddr, cfg.MQTTClientIDWeb)
	}
	if !cfg.RegisterDebugAllowedWrites.Contains(0x06) || cfg.RegisterDebugAllowedWrites.Contains(0x60) {
		t.Errorf("allowed writes = %v", cfg.RegisterDebugAllowedWrites)
	}
}
