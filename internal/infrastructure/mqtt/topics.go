package mqtt

import "fmt"

// Topic prefixes on the shared Gray Logic bus.
const (
	// TopicPrefix is the root of every Gray Logic topic.
	TopicPrefix = "graylogic"

	// TopicPrefixCore is the base for topics published by core services.
	TopicPrefixCore = "graylogic/core"

	// TopicPrefixSystem is the base for service status topics.
	TopicPrefixSystem = "graylogic/system"

	// matrixProtocol is the protocol segment used by matrix bridges.
	matrixProtocol = "matrix"
)

// Topics provides builders for the MQTT topics used by the routing core.
//
//	topics := mqtt.Topics{}
//	topics.MatrixCommand("mx1")     // "graylogic/command/matrix/mx1"
//	topics.CoreRouteState("DISP1")  // "graylogic/core/route/DISP1/state"
type Topics struct{}

// MatrixCommand returns the topic matrix bridges listen on for crosspoint commands.
//
// Example: graylogic/command/matrix/mx1
func (Topics) MatrixCommand(address string) string {
	return fmt.Sprintf("%s/command/%s/%s", TopicPrefix, matrixProtocol, address)
}

// MatrixState returns the topic a matrix bridge reports its crosspoints on.
//
// Example: graylogic/state/matrix/mx1
func (Topics) MatrixState(address string) string {
	return fmt.Sprintf("%s/state/%s/%s", TopicPrefix, matrixProtocol, address)
}

// MatrixHealth returns the topic a matrix bridge reports connectivity on.
//
// Example: graylogic/health/matrix/mx1
func (Topics) MatrixHealth(address string) string {
	return fmt.Sprintf("%s/health/%s/%s", TopicPrefix, matrixProtocol, address)
}

// CoreRouteState returns the retained topic holding a destination's current source.
//
// Example: graylogic/core/route/DISP1/state
func (Topics) CoreRouteState(destinationID string) string {
	return fmt.Sprintf("%s/route/%s/state", TopicPrefixCore, destinationID)
}

// CoreRouterConnectivity returns the retained topic holding a switcher's online flag.
//
// Example: graylogic/core/router/MX1/connectivity
func (Topics) CoreRouterConnectivity(routerID string) string {
	return fmt.Sprintf("%s/router/%s/connectivity", TopicPrefixCore, routerID)
}

// CoreEvent returns the topic for a core event stream.
//
// Example: graylogic/core/event/route_changed
func (Topics) CoreEvent(eventType string) string {
	return fmt.Sprintf("%s/event/%s", TopicPrefixCore, eventType)
}

// ServiceStatus returns the retained online/offline topic for a service.
//
// Example: graylogic/system/status/graylogic-av
func (Topics) ServiceStatus(clientID string) string {
	return fmt.Sprintf("%s/status/%s", TopicPrefixSystem, clientID)
}

// AllMatrixStates returns a wildcard subscription for every matrix bridge state.
//
// Pattern: graylogic/state/matrix/+
func (Topics) AllMatrixStates() string {
	return fmt.Sprintf("%s/state/%s/+", TopicPrefix, matrixProtocol)
}

// AllCoreRouteStates returns a wildcard subscription for every destination state.
//
// Pattern: graylogic/core/route/+/state
func (Topics) AllCoreRouteStates() string {
	return TopicPrefixCore + "/route/+/state"
}
