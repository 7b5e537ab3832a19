package mqtt

import "fmt"

// Topic prefixes for the chardev MQTT surface.
//
// Device topics use the scheme: chardev/{device}/{operation}
// Inbound operations (open, write, read, close) are published by
// consumers; outbound topics (opens, ack, message, error) are published
// by the daemon.
const (
	// TopicPrefixDevice is the base for all per-device topics.
	TopicPrefixDevice = "chardev"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "chardev/system"
)

// Topics provides builders for chardev MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	writeTopic := topics.DeviceWrite("chardev")
//	// Returns: "chardev/chardev/write"
type Topics struct{}

// DeviceOpen returns the inbound topic that opens the device.
func (Topics) DeviceOpen(device string) string {
	return fmt.Sprintf("%s/%s/open", TopicPrefixDevice, device)
}

// DeviceWrite returns the inbound topic that writes a message to the device.
func (Topics) DeviceWrite(device string) string {
	return fmt.Sprintf("%s/%s/write", TopicPrefixDevice, device)
}

// DeviceRead returns the inbound topic that drains the stored message.
func (Topics) DeviceRead(device string) string {
	return fmt.Sprintf("%s/%s/read", TopicPrefixDevice, device)
}

// DeviceClose returns the inbound topic that releases the device.
func (Topics) DeviceClose(device string) string {
	return fmt.Sprintf("%s/%s/close", TopicPrefixDevice, device)
}

// DeviceOpens returns the outbound topic carrying the open counter.
func (Topics) DeviceOpens(device string) string {
	return fmt.Sprintf("%s/%s/opens", TopicPrefixDevice, device)
}

// DeviceAck returns the outbound topic acknowledging accepted writes.
func (Topics) DeviceAck(device string) string {
	return fmt.Sprintf("%s/%s/ack", TopicPrefixDevice, device)
}

// DeviceMessage returns the outbound topic carrying drained messages.
func (Topics) DeviceMessage(device string) string {
	return fmt.Sprintf("%s/%s/message", TopicPrefixDevice, device)
}

// DeviceError returns the outbound topic carrying I/O errors.
func (Topics) DeviceError(device string) string {
	return fmt.Sprintf("%s/%s/error", TopicPrefixDevice, device)
}

// SystemStatus returns the retained daemon status topic.
func (Topics) SystemStatus() string {
	return TopicPrefixSystem + "/status"
}
