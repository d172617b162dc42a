package device

import "time"

// Device represents a physical IoT unit, identified by a firmware-assigned
// code. Devices are created lazily when the first sensor or actuator
// registers under their code; the core never deletes them.
type Device struct {
	Code        string    `json:"device_code"`
	Name        *string   `json:"name,omitempty"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Sensor is a read-only sub-component of a device. State is a free-form
// string reported by the device; the core stores it verbatim.
type Sensor struct {
	ID          int64      `json:"id"`
	DeviceCode  string     `json:"device_code"`
	Name        string     `json:"name"`
	NameShown   *string    `json:"name_shown,omitempty"`
	Type        SensorType `json:"sensor_type"`
	State       *string    `json:"state,omitempty"`
	Description *string    `json:"description,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Actuator is a commandable sub-component of a device. Level is the
// inclusive upper bound for valid states; State, once set, must satisfy
// 0 <= state <= level.
type Actuator struct {
	ID          int64     `json:"id"`
	DeviceCode  string    `json:"device_code"`
	Name        string    `json:"name"`
	NameShown   *string   `json:"name_shown,omitempty"`
	Level       int       `json:"level"`
	State       *int      `json:"state,omitempty"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// SensorType classifies what a sensor measures.
type SensorType string

// SensorType constants.
const (
	SensorTypeTemperature SensorType = "temperature"
	SensorTypeHumidity    SensorType = "humidity"
	SensorTypeLight       SensorType = "light"
	SensorTypeMotion      SensorType = "motion"
	SensorTypeDoor        SensorType = "door"
	SensorTypeGas         SensorType = "gas"
	SensorTypeCustom      SensorType = "custom"
)

// AllSensorTypes returns all valid sensor type values.
func AllSensorTypes() []SensorType {
	return []SensorType{
		SensorTypeTemperature, SensorTypeHumidity, SensorTypeLight,
		SensorTypeMotion, SensorTypeDoor, SensorTypeGas, SensorTypeCustom,
	}
}

// IsValid reports whether t is a known sensor type.
func (t SensorType) IsValid() bool {
	for _, v := range AllSensorTypes() {
		if t == v {
			return true
		}
	}
	return false
}

// SensorRegistration carries the fields of an inbound sensor registration.
type SensorRegistration struct {
	Name  string
	Type  SensorType
	State *string
}

// ActuatorRegistration carries the fields of an inbound actuator registration.
type ActuatorRegistration struct {
	Name  string
	Level int
	State *int
}

// Edit carries the user-editable fields of a device, sensor or actuator.
// Nil fields are left unchanged.
type Edit struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}
