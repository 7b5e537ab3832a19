// Package config loads and validates the chardev daemon configuration.
//
// Configuration comes from three layers, each overriding the previous:
// hardcoded defaults, a YAML file, and CHARDEV_* environment variables.
// The zero configuration is intentionally useful: the defaults describe
// a device named "chardev" of class "chard" with the SQLite host
// registry enabled and MQTT/InfluxDB disabled.
package config
