package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteDeviceOp records one device I/O operation.
//
// The write is non-blocking; data is batched and sent asynchronously.
//
// Parameters:
//   - device: Device name (e.g., "chardev")
//   - op: Operation name ("read" or "write")
//   - bytes: Number of bytes moved by the operation
func (c *Client) WriteDeviceOp(device, op string, bytes int) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"device_ops",
		map[string]string{
			"device": device,
			"op":     op,
		},
		map[string]interface{}{
			"bytes": bytes,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteOpenCount records the device open counter.
//
// Parameters:
//   - device: Device name
//   - count: Total opens since the device was registered
func (c *Client) WriteOpenCount(device string, count int64) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"device_opens",
		map[string]string{
			"device": device,
		},
		map[string]interface{}{
			"count": count,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}
