package mqtt

import "testing"

func TestTopicBuilders(t *testing.T) {
	topics := Topics{}

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"register", topics.DeviceRegister("dev42"), "devices/dev42/register"},
		{"update", topics.DeviceUpdate("dev42"), "devices/dev42/update"},
		{"response", topics.DeviceResponse("dev42"), "devices/dev42/response"},
		{"action", topics.DeviceAction("dev42"), "devices/dev42/action"},
		{"register wildcard", topics.DeviceRegisterWildcard(), "devices/+/register"},
		{"update wildcard", topics.DeviceUpdateWildcard(), "devices/+/update"},
		{"system status", topics.SystemStatus(), "iothome/system/status"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}
