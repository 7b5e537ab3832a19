// Package api provides the HTTP surface for the character device.
//
// It exposes the four device entry points and a stats endpoint:
//
//	POST /api/v1/device/open   open the device (returns the open count)
//	POST /api/v1/device/close  release the device
//	POST /api/v1/device        write the request body into the device
//	GET  /api/v1/device        drain the stored message (204 when empty)
//	GET  /api/v1/device/stats  open counter, pending bytes, identity
//	GET  /api/v1/health        daemon health
//
// Handlers are delegation-only: all device semantics live in the
// chardev package.
//
// The server follows the same lifecycle pattern as the other
// infrastructure components:
//
//	server := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
package api
