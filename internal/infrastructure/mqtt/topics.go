package mqtt

import "fmt"

// Topic layout.
//
// Devices publish to and the core subscribes on:
//
//	devices/{code}/register  - sensor/actuator registration requests
//	devices/{code}/update    - state update reports
//
// The core publishes to:
//
//	devices/{code}/response  - registration acknowledgements ({type,name})
//	devices/{code}/action    - actuator commands ({name,state})
//	iothome/system/status    - online/offline status (retained, LWT)
const (
	// TopicPrefixDevices is the base for all per-device topics.
	TopicPrefixDevices = "devices"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "iothome/system"
)

// Topics provides builders for IoT Home MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
type Topics struct{}

// DeviceRegister returns the registration topic for a device.
//
// Example: devices/dev42/register
func (Topics) DeviceRegister(deviceCode string) string {
	return fmt.Sprintf("%s/%s/register", TopicPrefixDevices, deviceCode)
}

// DeviceUpdate returns the state update topic for a device.
//
// Example: devices/dev42/update
func (Topics) DeviceUpdate(deviceCode string) string {
	return fmt.Sprintf("%s/%s/update", TopicPrefixDevices, deviceCode)
}

// DeviceResponse returns the registration response topic for a device.
//
// Example: devices/dev42/response
func (Topics) DeviceResponse(deviceCode string) string {
	return fmt.Sprintf("%s/%s/response", TopicPrefixDevices, deviceCode)
}

// DeviceAction returns the actuator command topic for a device.
//
// Example: devices/dev42/action
func (Topics) DeviceAction(deviceCode string) string {
	return fmt.Sprintf("%s/%s/action", TopicPrefixDevices, deviceCode)
}

// DeviceRegisterWildcard returns the wildcard subscription pattern for
// registration messages from all devices.
//
// Returns: devices/+/register
func (Topics) DeviceRegisterWildcard() string {
	return TopicPrefixDevices + "/+/register"
}

// DeviceUpdateWildcard returns the wildcard subscription pattern for
// state updates from all devices.
//
// Returns: devices/+/update
func (Topics) DeviceUpdateWildcard() string {
	return TopicPrefixDevices + "/+/update"
}

// SystemStatus returns the core's status topic (retained, also the LWT target).
//
// Returns: iothome/system/status
func (Topics) SystemStatus() string {
	return TopicPrefixSystem + "/status"
}
