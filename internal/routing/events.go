package routing

import (
	"time"

	"github.com/nerrad567/gray-logic-av/internal/room"
)

// NoRouteID is the source ID reported for a destination with nothing routed.
const NoRouteID = "NONE"

// NoRoute is the source returned for destinations with no known route,
// and for unknown destination IDs.
var NoRoute = room.Source{ID: NoRouteID, Label: "None"}

// IsNoRoute reports whether s is the NoRoute sentinel.
func IsNoRoute(s room.Source) bool {
	return s.ID == NoRouteID
}

// Origin tells listeners what caused a route change.
type Origin string

// Route change origins.
const (
	OriginCommand  Origin = "command"
	OriginFeedback Origin = "feedback"
)

// Route outcome labels passed to Recorder.RecordRoute.
const (
	StatusSuccess       = "success"
	StatusNotFound      = "not_found"
	StatusNoPath        = "no_path"
	StatusMalformed     = "malformed"
	StatusCommandFailed = "command_failed"
	StatusLocked        = "locked"
)

// Feedback outcome labels passed to Recorder.RecordFeedback.
const (
	FeedbackResolved      = "resolved"
	FeedbackCleared       = "cleared"
	FeedbackUnmapped      = "unmapped"
	FeedbackUnknownDevice = "unknown_device"
)

// RouteEvent describes a change to a destination's current source.
type RouteEvent struct {
	DestinationID string      `json:"destination_id"`
	Source        room.Source `json:"source"`
	Origin        Origin      `json:"origin"`

	// Path is the signal chain from source to destination, if known.
	Path      []string  `json:"path,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ConnectivityEvent describes a switcher going online or offline.
type ConnectivityEvent struct {
	RouterID  string    `json:"router_id"`
	Online    bool      `json:"online"`
	Timestamp time.Time `json:"timestamp"`
}

// Outcome is the result of routing to one destination in RouteToAll.
type Outcome struct {
	DestinationID string `json:"destination_id"`
	Err           error  `json:"-"`
}

// RouterStatus summarises a configured matrix switcher.
type RouterStatus struct {
	ID      string          `json:"id"`
	Label   string          `json:"label,omitempty"`
	Driver  room.DriverType `json:"driver"`
	Inputs  int             `json:"inputs"`
	Outputs int             `json:"outputs"`
	Online  bool            `json:"online"`
}
