// Package endpoint exposes the character device as an MQTT surface.
//
// Consumers drive the device by publishing to per-device operation
// topics and receive results on the matching outbound topics:
//
//	chardev/<device>/open    → chardev/<device>/opens   (open counter)
//	chardev/<device>/write   → chardev/<device>/ack     (accepted length)
//	chardev/<device>/read    → chardev/<device>/message (drained bytes)
//	chardev/<device>/close   (no response)
//	failures                 → chardev/<device>/error
//
// The endpoint is delegation-only: every inbound message maps to exactly
// one controller entry point and carries no state of its own, mirroring
// the host-facing operations table of the device.
package endpoint
