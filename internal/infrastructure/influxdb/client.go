package influxdb

import (
	"context"
	"fmt"
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"

	"github.com/madmax/chardev-core/internal/infrastructure/config"
)

// Default timeouts for InfluxDB operations.
const (
	defaultPingTimeout = 5 * time.Second

	// millisecondsPerSecond converts seconds to milliseconds for the InfluxDB API.
	millisecondsPerSecond = 1000
)

// Client wraps the InfluxDB v2 client for device telemetry.
//
// Writes are non-blocking and batched; failures surface through the
// optional error callback rather than the write path.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Client struct {
	client   influxdb2.Client
	writeAPI api.WriteAPI
	cfg      config.InfluxDBConfig

	// connected tracks current connection state.
	connected bool
	mu        sync.RWMutex

	// onError is invoked for asynchronous write failures.
	onError   func(error)
	onErrorMu sync.RWMutex

	// done stops the error-forwarding goroutine on Close.
	done chan struct{}
}

// Connect creates an InfluxDB client and verifies connectivity.
//
// Parameters:
//   - ctx: Context for the initial health probe
//   - cfg: InfluxDB configuration from config.yaml
//
// Returns:
//   - *Client: Connected client ready for use
//   - error: ErrDisabled if disabled in config, or connection failure
func Connect(ctx context.Context, cfg config.InfluxDBConfig) (*Client, error) {
	if !cfg.Enabled {
		return nil, ErrDisabled
	}

	opts := influxdb2.DefaultOptions()
	if cfg.BatchSize > 0 {
		opts.SetBatchSize(uint(cfg.BatchSize))
	}
	if cfg.FlushInterval > 0 {
		opts.SetFlushInterval(uint(cfg.FlushInterval * millisecondsPerSecond))
	}

	client := influxdb2.NewClientWithOptions(cfg.URL, cfg.Token, opts)

	pingCtx, cancel := context.WithTimeout(ctx, defaultPingTimeout)
	defer cancel()

	ok, err := client.Ping(pingCtx)
	if err != nil || !ok {
		client.Close()
		return nil, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}

	c := &Client{
		client:    client,
		writeAPI:  client.WriteAPI(cfg.Org, cfg.Bucket),
		cfg:       cfg,
		connected: true,
		done:      make(chan struct{}),
	}

	// Forward asynchronous write errors to the callback.
	go c.forwardErrors()

	return c, nil
}

// forwardErrors drains the write API error channel until Close.
func (c *Client) forwardErrors() {
	errCh := c.writeAPI.Errors()
	for {
		select {
		case err, ok := <-errCh:
			if !ok {
				return
			}
			c.onErrorMu.RLock()
			callback := c.onError
			c.onErrorMu.RUnlock()
			if callback != nil && err != nil {
				callback(err)
			}
		case <-c.done:
			return
		}
	}
}

// SetOnError sets a callback invoked for asynchronous write failures.
func (c *Client) SetOnError(callback func(error)) {
	c.onErrorMu.Lock()
	c.onError = callback
	c.onErrorMu.Unlock()
}

// IsConnected returns the last known connection state.
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// HealthCheck verifies InfluxDB is reachable.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//
// Returns:
//   - error: nil if healthy, error describing the issue otherwise
func (c *Client) HealthCheck(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, defaultPingTimeout)
	defer cancel()

	ok, err := c.client.Ping(pingCtx)
	if err != nil {
		return fmt.Errorf("influxdb health check: %w", err)
	}
	if !ok {
		return ErrNotConnected
	}
	return nil
}

// Close flushes pending writes and releases the client.
func (c *Client) Close() error {
	c.mu.Lock()
	c.connected = false
	c.mu.Unlock()

	close(c.done)
	c.writeAPI.Flush()
	c.client.Close()
	return nil
}
