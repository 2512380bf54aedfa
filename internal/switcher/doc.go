// Package switcher provides the matrix switcher drivers the routing
// dispatcher commands.
//
// Every driver keeps a local route table (output → input) built from
// device feedback, so CurrentSource never blocks on I/O. When the table
// changes the driver calls the registered routing.EventHandler.
//
//	            ┌──────────────┐
//	dispatcher ─┤ RouteInput   ├─► device (MQTT bridge, Quartz socket, memory)
//	            │              │
//	dispatcher ◄┤ RouteChanged ├── device feedback
//	            └──────────────┘
//
// Drivers:
//   - Simulated: in-memory crossbar for development and tests
//   - MQTT: JSON commands to a matrix bridge on the Gray Logic bus
//   - Quartz: Evertz Quartz protocol over TCP
//
// Use New to build the driver a room.Matrix asks for.
package switcher
