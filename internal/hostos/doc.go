// Package hostos models the host environment's device registration
// primitives: major-number allocation, device-class registration and
// device-node creation.
//
// The chardev controller depends only on the Host interface. Two
// implementations are provided:
//
//   - MemoryHost: a process-local registry. Registrations live for the
//     lifetime of the process, which matches a device whose state never
//     persists across restarts.
//   - SQLiteHost: the same contract persisted in SQLite, so the host's
//     registration bookkeeping (who holds which major, which nodes
//     exist) survives restarts and can be inspected out of process.
//
// Dynamic majors are allocated from 254 downward, mirroring the
// conventional dynamic range of the original host environment.
//
// # Thread Safety
//
// Both implementations are safe for concurrent use. In practice the
// controller invokes registration once at startup and teardown once at
// shutdown.
package hostos
