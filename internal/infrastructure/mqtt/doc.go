// Package mqtt wraps the paho MQTT client for the chardev daemon.
//
// It adds the pieces the daemon needs on top of paho: a retained status
// document on chardev/system/status with a Last Will for crash
// detection, automatic re-subscription after reconnects, panic recovery
// around message handlers, and topic builders for the per-device
// operation topics.
package mqtt
