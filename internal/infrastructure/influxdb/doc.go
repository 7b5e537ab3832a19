// Package influxdb records device telemetry (per-operation byte counts
// and the open counter) to InfluxDB v2. Integration is optional; when
// disabled in config the daemon runs without it and the controller's
// recorder hook stays nil.
package influxdb
