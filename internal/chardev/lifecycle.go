package chardev

import "sync/atomic"

// Lifecycle tracks how many times the device has been opened.
//
// The counter is purely observational: it is reported in logs and stats
// but never gates I/O. It only ever increases; closing the device does
// not decrement it.
//
// Thread Safety:
//   - The counter is atomic; Open and Close are safe from any goroutine.
type Lifecycle struct {
	opens atomic.Int64
}

// NewLifecycle creates a lifecycle tracker with a zero open count.
func NewLifecycle() *Lifecycle {
	return &Lifecycle{}
}

// Open records one open of the device and returns the new total.
// It always succeeds.
func (l *Lifecycle) Open() int64 {
	return l.opens.Add(1)
}

// Close records the device being released by a caller.
// It mutates nothing and always succeeds; the open count is retained.
func (l *Lifecycle) Close() {}

// OpenCount returns the number of times the device has been opened.
func (l *Lifecycle) OpenCount() int64 {
	return l.opens.Load()
}
