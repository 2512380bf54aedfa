package mqtt

import "testing"

func TestTopics(t *testing.T) {
	topics := Topics{}

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"matrix command", topics.MatrixCommand("mx1"), "graylogic/command/matrix/mx1"},
		{"matrix state", topics.MatrixState("mx1"), "graylogic/state/matrix/mx1"},
		{"matrix health", topics.MatrixHealth("mx1"), "graylogic/health/matrix/mx1"},
		{"route state", topics.CoreRouteState("DISP1"), "graylogic/core/route/DISP1/state"},
		{"router connectivity", topics.CoreRouterConnectivity("MX1"), "graylogic/core/router/MX1/connectivity"},
		{"route event", topics.CoreEvent("route_changed"), "graylogic/core/event/route_changed"},
		{"service status", topics.ServiceStatus("graylogic-av"), "graylogic/system/status/graylogic-av"},
		{"all matrix states", topics.AllMatrixStates(), "graylogic/state/matrix/+"},
		{"all route states", topics.AllCoreRouteStates(), "graylogic/core/route/+/state"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}
