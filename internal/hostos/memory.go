package hostos

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryHost is a process-local Host implementation.
//
// It keeps all registration state in memory, which is the natural fit
// for a device that exists only for the lifetime of its process.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type MemoryHost struct {
	mu      sync.Mutex
	majors  map[Major]string // major → holding device name
	classes map[string]*classRecord
	nodes   map[string]Node // node ID → node
}

// classRecord tracks a class object and whether it is still registered
// (visible). Unregistering hides the class; destroying removes the
// object itself.
type classRecord struct {
	class      Class
	registered bool
}

// NewMemoryHost creates an empty in-memory host registry.
func NewMemoryHost() *MemoryHost {
	return &MemoryHost{
		majors:  make(map[Major]string),
		classes: make(map[string]*classRecord),
		nodes:   make(map[string]Node),
	}
}

// AllocateMajor implements Host. Majors are handed out from the top of
// the dynamic range downward.
func (h *MemoryHost) AllocateMajor(_ context.Context, deviceName string) (Major, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, name := range h.majors {
		if name == deviceName {
			return 0, ErrNameTaken
		}
	}

	for m := DynamicMajorMax; m >= DynamicMajorMin; m-- {
		if _, taken := h.majors[m]; !taken {
			h.majors[m] = deviceName
			return m, nil
		}
	}
	return 0, ErrMajorsExhausted
}

// ReleaseMajor implements Host.
func (h *MemoryHost) ReleaseMajor(_ context.Context, major Major, deviceName string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.majors[major] != deviceName {
		return ErrMajorNotAllocated
	}
	delete(h.majors, major)
	return nil
}

// RegisterClass implements Host.
func (h *MemoryHost) RegisterClass(_ context.Context, owner, className string) (Class, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, rec := range h.classes {
		if rec.registered && rec.class.Name == className {
			return Class{}, ErrClassExists
		}
	}

	class := Class{
		ID:    uuid.NewString(),
		Owner: owner,
		Name:  className,
	}
	h.classes[class.ID] = &classRecord{class: class, registered: true}
	return class, nil
}

// UnregisterClass implements Host.
func (h *MemoryHost) UnregisterClass(_ context.Context, class Class) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	rec, ok := h.classes[class.ID]
	if !ok {
		return ErrClassNotFound
	}
	rec.registered = false
	return nil
}

// DestroyClass implements Host.
func (h *MemoryHost) DestroyClass(_ context.Context, class Class) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.classes[class.ID]; !ok {
		return ErrClassNotFound
	}
	delete(h.classes, class.ID)
	return nil
}

// CreateNode implements Host.
func (h *MemoryHost) CreateNode(_ context.Context, class Class, major Major, minor int, deviceName string) (Node, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.classes[class.ID]; !ok {
		return Node{}, ErrClassNotFound
	}
	for _, n := range h.nodes {
		if n.Name == deviceName {
			return Node{}, ErrNodeExists
		}
	}

	node := Node{
		ID:    uuid.NewString(),
		Name:  deviceName,
		Major: major,
		Minor: minor,
	}
	h.nodes[node.ID] = node
	return node, nil
}

// DestroyNode implements Host.
func (h *MemoryHost) DestroyNode(_ context.Context, node Node) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.nodes[node.ID]; !ok {
		return ErrNodeNotFound
	}
	delete(h.nodes, node.ID)
	return nil
}

// Leaks reports any registration state still held by the host. A clean
// teardown leaves all three counts at zero.
func (h *MemoryHost) Leaks() (majors, classes, nodes int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.majors), len(h.classes), len(h.nodes)
}
