package endpoint

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/madmax/chardev-core/internal/chardev"
	"github.com/madmax/chardev-core/internal/infrastructure/mqtt"
)

// Client is the slice of the MQTT client the endpoint needs.
// Satisfied by *mqtt.Client; tests substitute a fake.
type Client interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
}

// Logger defines the logging interface used by the Endpoint.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Endpoint bridges MQTT operation topics to the device controller.
type Endpoint struct {
	device string
	ctrl   *chardev.Controller
	client Client
	qos    byte
	logger Logger
	topics mqtt.Topics
}

// New creates an MQTT endpoint for the given device controller.
func New(ctrl *chardev.Controller, client Client, qos byte) *Endpoint {
	return &Endpoint{
		device: ctrl.Name(),
		ctrl:   ctrl,
		client: client,
		qos:    qos,
		logger: noopLogger{},
	}
}

// SetLogger sets the logger for the endpoint.
func (e *Endpoint) SetLogger(logger Logger) {
	e.logger = logger
}

// Start subscribes to the device operation topics.
//
// Returns:
//   - error: If any subscription fails
func (e *Endpoint) Start() error {
	subs := map[string]mqtt.MessageHandler{
		e.topics.DeviceOpen(e.device):  e.handleOpen,
		e.topics.DeviceWrite(e.device): e.handleWrite,
		e.topics.DeviceRead(e.device):  e.handleRead,
		e.topics.DeviceClose(e.device): e.handleClose,
	}

	for topic, handler := range subs {
		if err := e.client.Subscribe(topic, e.qos, handler); err != nil {
			return fmt.Errorf("subscribing to %s: %w", topic, err)
		}
	}

	e.logger.Info("device endpoint started", "device", e.device)
	return nil
}

// handleOpen opens the device and publishes the retained open counter.
func (e *Endpoint) handleOpen(_ string, _ []byte) error {
	if err := e.ctrl.Open(); err != nil {
		return e.publishError(err)
	}

	payload, _ := json.Marshal(map[string]int64{"opens": e.ctrl.GetStats().Opens})
	return e.client.Publish(e.topics.DeviceOpens(e.device), payload, e.qos, true)
}

// handleWrite stores the payload in the device and acknowledges the
// accepted length. The acknowledged value echoes the input length, per
// the device's write contract.
func (e *Endpoint) handleWrite(_ string, payload []byte) error {
	n, err := e.ctrl.Write(payload)
	if err != nil {
		return e.publishError(err)
	}

	ack, _ := json.Marshal(map[string]int{"accepted": n})
	return e.client.Publish(e.topics.DeviceAck(e.device), ack, e.qos, false)
}

// handleRead drains the stored message and publishes it. A drained or
// never-written device publishes an empty payload.
func (e *Endpoint) handleRead(_ string, _ []byte) error {
	var buf bytes.Buffer
	if _, err := e.ctrl.Read(&buf); err != nil {
		return e.publishError(err)
	}

	return e.client.Publish(e.topics.DeviceMessage(e.device), buf.Bytes(), e.qos, false)
}

// handleClose releases the device.
func (e *Endpoint) handleClose(_ string, _ []byte) error {
	return e.ctrl.Release()
}

// publishError reports an I/O failure on the device error topic and
// returns the original error for the client's handler logging.
func (e *Endpoint) publishError(opErr error) error {
	payload, _ := json.Marshal(map[string]string{"error": opErr.Error()})
	if err := e.client.Publish(e.topics.DeviceError(e.device), payload, e.qos, false); err != nil {
		e.logger.Error("publishing device error", "device", e.device, "error", err)
	}
	return opErr
}
