package chardev

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/madmax/chardev-core/internal/hostos"
)

// NodeMinor is the minor number of the single device node.
// The device is single-instance; there is never a second minor.
const NodeMinor = 0

// Logger defines the logging interface used by the Controller.
// This allows different logging implementations to be used.
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

// Recorder receives per-operation telemetry from the controller.
// Implementations must be non-blocking; the controller calls them inline.
type Recorder interface {
	// RecordOp records one I/O operation and the number of bytes involved.
	RecordOp(op string, bytes int)

	// RecordOpenCount records the open counter after an open.
	RecordOpenCount(count int64)
}

// Controller wires the message store and lifecycle tracker to the host
// environment. It drives the staged registration protocol (Init/Exit)
// and exposes the four host-facing entry points Open, Read, Write and
// Release, which delegate to the store and lifecycle and carry no state
// of their own.
//
// Thread Safety:
//   - Open, Read, Write and Release are safe for concurrent use.
//   - Init and Exit run once each and must not be called concurrently
//     with each other.
type Controller struct {
	name      string
	className string
	host      hostos.Host
	store     *Store
	life      *Lifecycle

	logger   Logger
	recorder Recorder

	// regMu guards the identity across Init/Exit.
	regMu    sync.Mutex
	identity *hostos.Identity
}

// NewController creates a controller for a device with the given name and
// class name. The host supplies major-number allocation, class
// registration and node creation.
func NewController(host hostos.Host, deviceName, className string) *Controller {
	return &Controller{
		name:      deviceName,
		className: className,
		host:      host,
		store:     NewStore(),
		life:      NewLifecycle(),
		logger:    noopLogger{},
	}
}

// SetLogger sets the logger for the controller.
func (c *Controller) SetLogger(logger Logger) {
	c.logger = logger
}

// SetRecorder sets an optional telemetry recorder.
// A nil recorder disables telemetry.
func (c *Controller) SetRecorder(recorder Recorder) {
	c.recorder = recorder
}

// Init registers the device with the host environment.
//
// Registration is staged: allocate a major number, register the device
// class, create the device node. Each acquired resource pushes its own
// release onto an undo stack; if a later stage fails, the stack unwinds
// in reverse order so no partial registration is ever left behind.
//
// Parameters:
//   - ctx: Context for the host registration calls
//
// Returns:
//   - *hostos.Identity: The registered device identity
//   - error: The failing stage's error, after full rollback
func (c *Controller) Init(ctx context.Context) (*hostos.Identity, error) {
	c.regMu.Lock()
	defer c.regMu.Unlock()

	if c.identity != nil {
		return nil, ErrAlreadyRegistered
	}

	c.logger.Info("initialising device", "name", c.name, "class", c.className)

	// Undo stack: each acquisition registers its own release so failure
	// at any stage unwinds everything acquired so far, in reverse order.
	var undo []func()
	rollback := func() {
		for i := len(undo) - 1; i >= 0; i-- {
			undo[i]()
		}
	}

	major, err := c.host.AllocateMajor(ctx, c.name)
	if err != nil {
		return nil, fmt.Errorf("allocating major number: %w", err)
	}
	undo = append(undo, func() {
		if rerr := c.host.ReleaseMajor(ctx, major, c.name); rerr != nil {
			c.logger.Error("rollback: releasing major number", "major", major, "error", rerr)
		}
	})
	c.logger.Info("registered major number", "major", major)

	class, err := c.host.RegisterClass(ctx, c.name, c.className)
	if err != nil {
		rollback()
		return nil, fmt.Errorf("registering device class: %w", err)
	}
	undo = append(undo, func() {
		if rerr := c.host.DestroyClass(ctx, class); rerr != nil {
			c.logger.Error("rollback: destroying device class", "class", class.Name, "error", rerr)
		}
	})
	c.logger.Info("device class registered", "class", class.Name)

	node, err := c.host.CreateNode(ctx, class, major, NodeMinor, c.name)
	if err != nil {
		rollback()
		return nil, fmt.Errorf("creating device node: %w", err)
	}

	c.identity = &hostos.Identity{Major: major, Class: class, Node: node}
	c.logger.Info("device node created", "node", node.Name, "major", major, "minor", NodeMinor)

	id := *c.identity
	return &id, nil
}

// Exit tears the device registration down: destroy the node, unregister
// the class, destroy the class, release the major number, strictly in
// that order. Teardown is best-effort: individual failures are logged
// and the sequence continues. Exit on an unregistered controller is a
// no-op.
func (c *Controller) Exit(ctx context.Context) {
	c.regMu.Lock()
	defer c.regMu.Unlock()

	if c.identity == nil {
		c.logger.Debug("exit: device not registered, nothing to tear down")
		return
	}

	id := *c.identity
	c.identity = nil

	if err := c.host.DestroyNode(ctx, id.Node); err != nil {
		c.logger.Error("destroying device node", "node", id.Node.Name, "error", err)
	}
	if err := c.host.UnregisterClass(ctx, id.Class); err != nil {
		c.logger.Error("unregistering device class", "class", id.Class.Name, "error", err)
	}
	if err := c.host.DestroyClass(ctx, id.Class); err != nil {
		c.logger.Error("destroying device class", "class", id.Class.Name, "error", err)
	}
	if err := c.host.ReleaseMajor(ctx, id.Major, c.name); err != nil {
		c.logger.Error("releasing major number", "major", id.Major, "error", err)
	}

	c.logger.Info("goodbye from the device", "name", c.name)
}

// Open records one open of the device. It always succeeds and has no
// gating effect on subsequent reads or writes.
func (c *Controller) Open() error {
	n := c.life.Open()
	c.logger.Info("device opened", "times", n)
	if c.recorder != nil {
		c.recorder.RecordOpenCount(n)
	}
	return nil
}

// Release records the device being closed by a caller. It always
// succeeds and performs no store mutation.
func (c *Controller) Release() error {
	c.life.Close()
	c.logger.Info("device closed")
	return nil
}

// Write stores the caller's message in the device slot.
// The returned count echoes the caller's input length; see Store.Write.
func (c *Controller) Write(p []byte) (int, error) {
	n, err := c.store.Write(p)
	if err != nil {
		c.logger.Warn("rejected message", "bytes", len(p), "error", err)
		return 0, err
	}
	c.logger.Info("received characters", "count", len(p))
	if c.recorder != nil {
		c.recorder.RecordOp("write", n)
	}
	return n, nil
}

// Read drains the stored message into the caller's destination.
// An empty slot yields zero bytes; a failed copy leaves the message in
// place for retry. See Store.Drain.
func (c *Controller) Read(dst io.Writer) (int, error) {
	n, err := c.store.Drain(dst)
	if err != nil {
		c.logger.Warn("failed to send message", "error", err)
		return 0, err
	}
	c.logger.Info("sent characters", "count", n)
	if c.recorder != nil {
		c.recorder.RecordOp("read", n)
	}
	return n, nil
}

// Identity returns a copy of the registered device identity, or nil if
// the device is not registered.
func (c *Controller) Identity() *hostos.Identity {
	c.regMu.Lock()
	defer c.regMu.Unlock()
	if c.identity == nil {
		return nil
	}
	id := *c.identity
	return &id
}

// Name returns the device name.
func (c *Controller) Name() string {
	return c.name
}

// Stats is a point-in-time snapshot of the device for monitoring.
type Stats struct {
	Name       string `json:"name"`
	Opens      int64  `json:"opens"`
	Pending    int    `json:"pending_bytes"`
	Registered bool   `json:"registered"`
}

// GetStats returns current device statistics.
func (c *Controller) GetStats() Stats {
	return Stats{
		Name:       c.name,
		Opens:      c.life.OpenCount(),
		Pending:    c.store.Len(),
		Registered: c.Identity() != nil,
	}
}
