package qmi8658

import (
	"errors"
	"testing"
	"time"

	"github.com/relabs-tech/zkb_sensors/internal/bus/bustest"
)

// newFakeIMU returns a bus holding a QMI8658 that passes the identity and
// reset checks.
func newFakeIMU() *bustest.Fake {
	bus := bustest.New()
	bus.Set(DefaultAddr, regWhoAmI, sensorID)
	bus.Set(DefaultAddr, regResetStatus, resetDoneValue)
	return bus
}

func newTestDev(t *testing.T, bus *bustest.Fake) *Dev {
	t.Helper()
	d, err := New(bus, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	bus.ClearOps()
	return d
}

func TestNewDefaultSequence(t *testing.T) {
	bus := newFakeIMU()
	d := newTestDev(t, bus)

	if d.AccelRange() != 2 || d.AccelDivisor() != 16384 {
		t.Errorf("accel range %d divisor %d, want 2 / 16384", d.AccelRange(), d.AccelDivisor())
	}
	if d.GyroRange() != 16 || d.GyroDivisor() != 2048 {
		t.Errorf("gyro range %d divisor %d, want 16 / 2048", d.GyroRange(), d.GyroDivisor())
	}
	if d.Addr() != DefaultAddr {
		t.Errorf("Addr() = 0x%02X, want 0x%02X", d.Addr(), DefaultAddr)
	}
}

func TestNewWriteOrder(t *testing.T) {
	bus := newFakeIMU()
	if _, err := New(bus, nil); err != nil {
		t.Fatalf("New() error = %v", err)
	}

	want := []bustest.Op{
		{Write: true, Addr: DefaultAddr, Reg: regReset, Value: resetCommand},
		{Write: true, Addr: DefaultAddr, Reg: regCtrl7, Value: 0b11},
		{Write: true, Addr: DefaultAddr, Reg: regCtrl5, Value: lowPassConfig},
		{Write: true, Addr: DefaultAddr, Reg: regCtrl2, Value: 0x00},
		{Write: true, Addr: DefaultAddr, Reg: regCtrl3, Value: 0x00},
	}
	got := bus.Writes()
	if len(got) != len(want) {
		t.Fatalf("writes = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("write %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestNewWithOpts(t *testing.T) {
	bus := bustest.New()
	bus.Set(Addr, regWhoAmI, sensorID)
	bus.Set(Addr, regResetStatus, resetDoneValue)

	d, err := New(bus, &Opts{Addr: Addr, AccelRange: 8, GyroRange: 512})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if d.AccelRange() != 8 || d.GyroRange() != 512 {
		t.Errorf("ranges = %d g, %d °/s", d.AccelRange(), d.GyroRange())
	}
	if got := bus.WritesTo(Addr, regCtrl2); len(got) != 1 || got[0] != 2<<3 {
		t.Errorf("CTRL2 writes = %v, want [0x10]", got)
	}
	if got := bus.WritesTo(Addr, regCtrl3); len(got) != 1 || got[0] != 5<<3 {
		t.Errorf("CTRL3 writes = %v, want [0x28]", got)
	}
}

func TestNewUnknownDevice(t *testing.T) {
	for _, id := range []byte{0x00, 0x04, 0x06, 0xFF} {
		bus := newFakeIMU()
		bus.Set(DefaultAddr, regWhoAmI, id)

		_, err := New(bus, nil)
		if !errors.Is(err, ErrUnknownDevice) {
			t.Errorf("New() with id 0x%02X error = %v, want ErrUnknownDevice", id, err)
		}
		if n := len(bus.Writes()); n != 0 {
			t.Errorf("New() with id 0x%02X wrote %d registers", id, n)
		}
	}
}

func TestNewResetFailed(t *testing.T) {
	bus := newFakeIMU()
	bus.Set(DefaultAddr, regResetStatus, 0x00)

	_, err := New(bus, nil)
	if !errors.Is(err, ErrResetFailed) {
		t.Fatalf("New() error = %v, want ErrResetFailed", err)
	}
	if got := bus.WritesTo(DefaultAddr, regCtrl7); len(got) != 0 {
		t.Errorf("sensors enabled after failed reset: %v", got)
	}
}

func TestResetWaitsBeforeStatus(t *testing.T) {
	bus := newFakeIMU()
	d := newDev(bus, DefaultAddr)
	var slept time.Duration
	d.sleep = func(dur time.Duration) {
		slept += dur
		if n := len(bus.Reads()); n != 0 {
			t.Errorf("status read before settle delay")
		}
	}

	if err := d.Reset(); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	if slept != 10*time.Millisecond {
		t.Errorf("settle delay = %v, want 10ms", slept)
	}
}

func TestEnableDisablePreserveOtherBits(t *testing.T) {
	bus := newFakeIMU()
	d := newTestDev(t, bus)
	bus.Set(DefaultAddr, regCtrl7, 0b1000_0100)

	if err := d.Enable(); err != nil {
		t.Fatalf("Enable() error = %v", err)
	}
	if got := bus.Value(DefaultAddr, regCtrl7); got != 0b1000_0111 {
		t.Errorf("CTRL7 after Enable = 0b%08b, want 0b10000111", got)
	}

	bus.Set(DefaultAddr, regCtrl7, 0b0100_0011)
	if err := d.Disable(); err != nil {
		t.Fatalf("Disable() error = %v", err)
	}
	if got := bus.Value(DefaultAddr, regCtrl7); got != 0b0100_0000 {
		t.Errorf("CTRL7 after Disable = 0b%08b, want 0b01000000", got)
	}
}

func TestSetAccelerometerScale(t *testing.T) {
	tests := []struct {
		scale   int
		reg     byte
		divisor int
	}{
		{2, 0x00, 16384},
		{4, 0x08, 8192},
		{8, 0x10, 4096},
		{16, 0x18, 2048},
	}
	for _, tt := range tests {
		bus := newFakeIMU()
		d := newTestDev(t, bus)

		if err := d.SetAccelerometerScale(tt.scale); err != nil {
			t.Fatalf("SetAccelerometerScale(%d) error = %v", tt.scale, err)
		}
		if got := bus.WritesTo(DefaultAddr, regCtrl2); len(got) != 1 || got[0] != tt.reg {
			t.Errorf("SetAccelerometerScale(%d) wrote %v, want [0x%02X]", tt.scale, got, tt.reg)
		}
		if d.AccelDivisor() != tt.divisor {
			t.Errorf("SetAccelerometerScale(%d) divisor = %d, want %d", tt.scale, d.AccelDivisor(), tt.divisor)
		}
	}
}

func TestSetGyroscopeScale(t *testing.T) {
	for code, scale := range GyroScales() {
		bus := newFakeIMU()
		d := newTestDev(t, bus)

		if err := d.SetGyroscopeScale(scale); err != nil {
			t.Fatalf("SetGyroscopeScale(%d) error = %v", scale, err)
		}
		want := byte(code) << 3
		if got := bus.WritesTo(DefaultAddr, regCtrl3); len(got) != 1 || got[0] != want {
			t.Errorf("SetGyroscopeScale(%d) wrote %v, want [0x%02X]", scale, got, want)
		}
		if d.GyroDivisor() != 65536/scale/2 {
			t.Errorf("SetGyroscopeScale(%d) divisor = %d", scale, d.GyroDivisor())
		}
	}
}

func TestUnsupportedScale(t *testing.T) {
	bus := newFakeIMU()
	d := newTestDev(t, bus)

	for _, s := range []int{0, 1, 3, 32} {
		if err := d.SetAccelerometerScale(s); !errors.Is(err, ErrUnsupportedScale) {
			t.Errorf("SetAccelerometerScale(%d) error = %v, want ErrUnsupportedScale", s, err)
		}
	}
	for _, s := range []int{0, 8, 250, 2048} {
		if err := d.SetGyroscopeScale(s); !errors.Is(err, ErrUnsupportedScale) {
			t.Errorf("SetGyroscopeScale(%d) error = %v, want ErrUnsupportedScale", s, err)
		}
	}
	if n := len(bus.Writes()); n != 0 {
		t.Errorf("rejected scales wrote %d registers", n)
	}
	if d.AccelRange() != 2 || d.GyroRange() != 16 {
		t.Errorf("ranges changed to %d g, %d °/s", d.AccelRange(), d.GyroRange())
	}
}

func TestReadAccelerometer(t *testing.T) {
	bus := newFakeIMU()
	d := newTestDev(t, bus)
	if err := d.SetAccelerometerScale(4); err != nil {
		t.Fatalf("SetAccelerometerScale() error = %v", err)
	}
	// x = 8192, y = -8192, z = 0
	bus.SetBlock(DefaultAddr, regAxL, 0x00, 0x20, 0x00, 0xE0, 0x00, 0x00)

	x, y, z, err := d.ReadAccelerometer(false)
	if err != nil {
		t.Fatalf("ReadAccelerometer() error = %v", err)
	}
	if x != 1.0 || y != -1.0 || z != 0 {
		t.Errorf("ReadAccelerometer(false) = %v, %v, %v; want 1, -1, 0", x, y, z)
	}

	x, y, _, err = d.ReadAccelerometer(true)
	if err != nil {
		t.Fatalf("ReadAccelerometer() error = %v", err)
	}
	if x != StandardGravity || y != -StandardGravity {
		t.Errorf("ReadAccelerometer(true) = %v, %v; want ±%v", x, y, StandardGravity)
	}
}

// The gyroscope keeps the legacy transform: counts / divisor * 0.01745329.
func TestReadGyroscopeLegacyDegreeFactor(t *testing.T) {
	bus := newFakeIMU()
	d := newTestDev(t, bus)
	// x = 2048 (one divisor at ±16 °/s), y = -4096, z = 1024
	bus.SetBlock(DefaultAddr, regGxL, 0x00, 0x08, 0x00, 0xF0, 0x00, 0x04)

	x, y, z, err := d.ReadGyroscope()
	if err != nil {
		t.Fatalf("ReadGyroscope() error = %v", err)
	}
	if x != 0.01745329 {
		t.Errorf("x = %v, want 0.01745329", x)
	}
	if y != -2*0.01745329 {
		t.Errorf("y = %v, want %v", y, -2*0.01745329)
	}
	if z != 0.5*0.01745329 {
		t.Errorf("z = %v, want %v", z, 0.5*0.01745329)
	}
}

func TestReadTemperature(t *testing.T) {
	bus := newFakeIMU()
	d := newTestDev(t, bus)
	bus.SetBlock(DefaultAddr, regTempL, 0x80, 0x19) // 0x1980 / 256 = 25.5

	c, err := d.ReadTemperature()
	if err != nil {
		t.Fatalf("ReadTemperature() error = %v", err)
	}
	if c != 25.5 {
		t.Errorf("ReadTemperature() = %v, want 25.5", c)
	}
}

func TestReadPropagatesTransportError(t *testing.T) {
	errBus := errors.New("arbitration lost")
	bus := newFakeIMU()
	d := newTestDev(t, bus)
	bus.FailRead(DefaultAddr, regAxL+3, errBus)

	if _, _, _, err := d.ReadAccelerometer(false); !errors.Is(err, errBus) {
		t.Errorf("ReadAccelerometer() error = %v, want %v", err, errBus)
	}
}

func TestNewPropagatesTransportError(t *testing.T) {
	errBus := errors.New("no ack")
	bus := newFakeIMU()
	bus.FailWrite(DefaultAddr, regReset, errBus)

	if _, err := New(bus, nil); !errors.Is(err, errBus) {
		t.Errorf("New() error = %v, want %v", err, errBus)
	}
}
