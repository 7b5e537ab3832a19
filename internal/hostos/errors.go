package hostos

import "errors"

// Domain errors for the hostos package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, hostos.ErrMajorsExhausted) {
//	    // no majors left in the dynamic range
//	}
var (
	// ErrMajorsExhausted is returned when no free major number remains
	// in the dynamic allocation range.
	ErrMajorsExhausted = errors.New("hostos: dynamic major range exhausted")

	// ErrMajorNotAllocated is returned when releasing a major that is
	// not held by the releasing device.
	ErrMajorNotAllocated = errors.New("hostos: major not allocated")

	// ErrNameTaken is returned when a device name already holds a major.
	ErrNameTaken = errors.New("hostos: device name already registered")

	// ErrClassExists is returned when registering a class name that is
	// already registered.
	ErrClassExists = errors.New("hostos: class already registered")

	// ErrClassNotFound is returned when a class handle is unknown.
	ErrClassNotFound = errors.New("hostos: class not found")

	// ErrNodeExists is returned when creating a node whose name is
	// already in use.
	ErrNodeExists = errors.New("hostos: node already exists")

	// ErrNodeNotFound is returned when a node handle is unknown.
	ErrNodeNotFound = errors.New("hostos: node not found")
)
