// Package chardev implements the message-slot character device core.
//
// The device is a single process-wide message slot: callers open it, write
// a message into it, and drain the message back out by reading. Three types
// compose the core:
//
//	┌──────────────────────────────────────────────────────────────────┐
//	│                        Controller                                │
//	│                     (controller.go)                              │
//	│                                                                  │
//	│  • Open/Read/Write/Release entry points for the host             │
//	│  • Init/Exit registration protocol against hostos.Host           │
//	│                                                                  │
//	│   ┌──────────────────┐              ┌──────────────────┐         │
//	│   │      Store       │              │    Lifecycle     │         │
//	│   │    (store.go)    │              │  (lifecycle.go)  │         │
//	│   │                  │              │                  │         │
//	│   │ • 256-byte slot  │              │ • open counter   │         │
//	│   │ • drain-once     │              │ • observational  │         │
//	│   │ • mutex guarded  │              │   only           │         │
//	│   └──────────────────┘              └──────────────────┘         │
//	└──────────────────────────────────────────────────────────────────┘
//	                │
//	                ▼
//	     ┌──────────────────────┐
//	     │     hostos.Host      │
//	     │ (major numbers,      │
//	     │  classes, nodes)     │
//	     └──────────────────────┘
//
// # Semantics
//
// A write stores the input formatted as "<input> (<n> letters)" where n is
// the caller's input length. A read drains the stored message: a second
// read without an intervening write returns zero bytes. Writes overwrite;
// nothing is appended. Open counts are purely observational and never gate
// I/O.
//
// # Thread Safety
//
// The store is serialised behind a single mutex: one writer or reader at a
// time, fairness unspecified. The open counter is atomic. Init and Exit
// run once each at process start and end and are not safe for concurrent
// re-entry with each other.
package chardev
