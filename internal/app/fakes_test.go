package app

import (
	"errors"
	"sync"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/zkb_sensors/internal/bus/bustest"
	"github.com/relabs-tech/zkb_sensors/internal/imu"
	"github.com/relabs-tech/zkb_sensors/internal/sensors"
	"github.com/relabs-tech/zkb_sensors/internal/sensors/mmc5983"
	"github.com/relabs-tech/zkb_sensors/internal/sensors/qmi8658"
)

// fakeToken is an already completed mqtt.Token.
type fakeToken struct{ err error }

func (t fakeToken) Wait() bool                     { return true }
func (t fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t fakeToken) Error() error                   { return t.err }

func (t fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

type published struct {
	topic    string
	qos      byte
	retained bool
	payload  []byte
}

type fakePublisher struct {
	mu   sync.Mutex
	msgs []published
	fail map[string]error
}

func (p *fakePublisher) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.fail[topic]; err != nil {
		return fakeToken{err: err}
	}
	b, _ := payload.([]byte)
	p.msgs = append(p.msgs, published{topic, qos, retained, b})
	return fakeToken{}
}

// fakeMessage is an incoming mqtt.Message.
type fakeMessage struct {
	topic   string
	payload []byte
}

func (m fakeMessage) Duplicate() bool   { return false }
func (m fakeMessage) Qos() byte         { return 0 }
func (m fakeMessage) Retained() bool    { return true }
func (m fakeMessage) Topic() string     { return m.topic }
func (m fakeMessage) MessageID() uint16 { return 1 }
func (m fakeMessage) Payload() []byte   { return m.payload }
func (m fakeMessage) Ack()              {}

type stubSource struct {
	s   imu.Sample
	err error
}

func (s stubSource) Read() (imu.Sample, error) { return s.s, s.err }

var errStub = errors.New("stub failure")

// newFakeBoard returns a board over an in-memory bus with both chips present.
func newFakeBoard(t testing.TB) (*sensors.Board, *bustest.Fake) {
	t.Helper()
	bus := bustest.New()
	bus.Set(qmi8658.DefaultAddr, 0x00, 0x05)
	bus.Set(qmi8658.DefaultAddr, 0x4D, 0x80)
	bus.Set(mmc5983.DefaultAddr, 0x2F, 0x30)
	board, err := sensors.NewBoard(bus, sensors.DefaultBoardConfig())
	if err != nil {
		t.Fatalf("NewBoard() error = %v", err)
	}
	bus.ClearOps()
	return board, bus
}
