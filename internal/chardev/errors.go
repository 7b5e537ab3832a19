package chardev

import "errors"

// Domain errors for the chardev package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, chardev.ErrMessageTooLong) {
//	    // reject the caller's input
//	}
var (
	// ErrMessageTooLong is returned by Write when the formatted message
	// would not fit in the device buffer. The stored message is unchanged.
	ErrMessageTooLong = errors.New("chardev: formatted message exceeds buffer capacity")

	// ErrCopyFault is returned by Read when the message could not be
	// copied to the caller's destination. The stored message is retained
	// so the read can be retried.
	ErrCopyFault = errors.New("chardev: copy to caller failed")

	// ErrAlreadyRegistered is returned when Init is called on a
	// controller that already holds a device identity.
	ErrAlreadyRegistered = errors.New("chardev: device already registered")
)
