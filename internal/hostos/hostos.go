package hostos

import "context"

// Major is a host-assigned integer identifying a device type.
type Major int

// Dynamic major allocation range. Majors are handed out from
// DynamicMajorMax downward until DynamicMajorMin is reached.
const (
	DynamicMajorMin Major = 60
	DynamicMajorMax Major = 254
)

// Class is an opaque handle to a registered device class, the grouping
// construct a host uses to expose devices under a conventional naming
// scheme.
type Class struct {
	ID    string `json:"id"`
	Owner string `json:"owner"`
	Name  string `json:"name"`
}

// Node is an opaque handle to a created device node, the addressable
// entry a consumer opens to reach the device.
type Node struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Major Major  `json:"major"`
	Minor int    `json:"minor"`
}

// Identity bundles the three handles acquired during device
// registration. They are created in order (major, class, node) and must
// be destroyed in reverse.
type Identity struct {
	Major Major `json:"major"`
	Class Class `json:"class"`
	Node  Node  `json:"node"`
}

// Host defines the registration primitives the host environment supplies
// to a device. This abstraction allows different implementations
// (in-memory, SQLite, mock) and enables unit testing of the controller's
// rollback behaviour without a real host.
type Host interface {
	// AllocateMajor reserves a free major number for the named device.
	// Returns ErrMajorsExhausted when the dynamic range is full, or
	// ErrNameTaken when the device name already holds a major.
	AllocateMajor(ctx context.Context, deviceName string) (Major, error)

	// ReleaseMajor returns a major number to the free pool.
	// Returns ErrMajorNotAllocated if the major is not held by deviceName.
	ReleaseMajor(ctx context.Context, major Major, deviceName string) error

	// RegisterClass registers a device class owned by the named device.
	// Returns ErrClassExists if a class with that name is registered.
	RegisterClass(ctx context.Context, owner, className string) (Class, error)

	// UnregisterClass removes the class from the host's visible registry.
	// Returns ErrClassNotFound if the class is unknown.
	UnregisterClass(ctx context.Context, class Class) error

	// DestroyClass destroys the class object itself. Safe to call after
	// UnregisterClass; returns ErrClassNotFound if the class never
	// existed.
	DestroyClass(ctx context.Context, class Class) error

	// CreateNode creates the addressable device node under a class.
	// Returns ErrNodeExists if a node with that name already exists.
	CreateNode(ctx context.Context, class Class, major Major, minor int, deviceName string) (Node, error)

	// DestroyNode removes a device node.
	// Returns ErrNodeNotFound if the node is unknown.
	DestroyNode(ctx context.Context, node Node) error
}
