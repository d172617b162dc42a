// Package gateway is the message-driven heart of the core: it decodes
// inbound MQTT traffic from devices, applies it to storage, acknowledges
// registrations, and fans live events out through the hub. It also builds
// the core's outbound messages (registration responses, actuator commands).
//
// The contract with devices:
//
//	devices/{code}/register  in   {"type","name",...}     -> devices/{code}/response {"type","name"}
//	devices/{code}/update    in   {"type","name","state"} -> live event to subscribers
//	devices/{code}/action    out  {"name","state"}        (triggered over HTTP)
//
// Bad input is logged and dropped, never fatal.
package gateway
