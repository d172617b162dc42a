// Package config loads and validates IoT Home Core configuration.
//
// Configuration comes from a YAML file with environment variable overrides
// (IOTHOME_SECTION_KEY pattern). Broker connection settings are mandatory:
// the core is an MQTT-driven gateway and refuses to start without them.
package config
