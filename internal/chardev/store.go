package chardev

import (
	"fmt"
	"io"
	"sync"
)

// Capacity is the size of the device message buffer in bytes.
// One byte is reserved for the terminator of the original device layout,
// so the longest storable formatted message is Capacity-1 bytes.
const Capacity = 256

// MaxMessageSize is the longest formatted message the store accepts.
const MaxMessageSize = Capacity - 1

// Store is the fixed-capacity message slot of the device.
//
// A write replaces the stored message with the formatted input; a read
// drains it (drain-once: the next read without an intervening write
// returns zero bytes).
//
// Thread Safety:
//   - All operations are serialised behind a single mutex: one writer or
//     reader at a time. Ordering between contending callers is unspecified.
type Store struct {
	mu     sync.Mutex
	buf    [Capacity]byte
	length int // bytes of buf holding the current message, 0 after a drain
}

// NewStore creates an empty message store.
func NewStore() *Store {
	return &Store{}
}

// Write stores the caller's input formatted as "<input> (<n> letters)"
// where n is the input length, replacing any previously stored message.
//
// The returned count is the caller's input length, not the length of the
// formatted message actually stored. This mirrors the original device
// contract: surfaces echo the accepted input size to the writer.
//
// If the formatted message would exceed MaxMessageSize the write is
// rejected with ErrMessageTooLong and the stored message is unchanged.
//
// Parameters:
//   - p: The caller's message bytes
//
// Returns:
//   - int: len(p) on success, 0 on rejection
//   - error: ErrMessageTooLong if the formatted message does not fit
func (s *Store) Write(p []byte) (int, error) {
	msg := fmt.Sprintf("%s (%d letters)", p, len(p))
	if len(msg) > MaxMessageSize {
		return 0, fmt.Errorf("%w: %d > %d bytes", ErrMessageTooLong, len(msg), MaxMessageSize)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.length = copy(s.buf[:], msg)
	return len(p), nil
}

// Drain copies the stored message to the caller's destination and clears
// the slot.
//
// If the slot is empty, Drain returns 0 bytes and no error. If the copy
// fails the stored message is left intact so the read can be retried, and
// the failure is reported as ErrCopyFault.
//
// Parameters:
//   - dst: The caller's destination for the message bytes
//
// Returns:
//   - int: Number of bytes copied out
//   - error: ErrCopyFault if dst could not accept the message
func (s *Store) Drain(dst io.Writer) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.length == 0 {
		return 0, nil
	}

	n, err := dst.Write(s.buf[:s.length])
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrCopyFault, err)
	}
	if n < s.length {
		return 0, fmt.Errorf("%w: short copy (%d of %d bytes)", ErrCopyFault, n, s.length)
	}

	s.length = 0
	return n, nil
}

// Len returns the length of the currently stored message in bytes.
// Zero means the slot is drained or has never been written.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.length
}
