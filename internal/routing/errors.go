package routing

import "errors"

// Domain errors for the routing package.
//
// These errors can be checked using errors.Is():
//
//	if errors.Is(err, routing.ErrNoPath) {
//	    // destination unreachable from this source
//	}
var (
	// ErrMissingDependency is returned by New when a required option is nil.
	ErrMissingDependency = errors.New("routing: missing dependency")

	// ErrSourceNotFound is returned when an input ID is not a configured source.
	ErrSourceNotFound = errors.New("routing: source not found")

	// ErrDestinationNotFound is returned when an output ID is not a configured destination.
	ErrDestinationNotFound = errors.New("routing: destination not found")

	// ErrNoPath is returned when no signal path joins the source and destination.
	ErrNoPath = errors.New("routing: no path")

	// ErrMalformedPath is returned when a matrix port key on the path cannot be decomposed.
	ErrMalformedPath = errors.New("routing: malformed path")

	// ErrCommandFailed is returned when a switcher rejects or cannot receive a command.
	ErrCommandFailed = errors.New("routing: hardware command failed")

	// ErrDestinationLocked is returned when routing to a locked destination.
	ErrDestinationLocked = errors.New("routing: destination locked")

	// ErrCapabilityUnsupported is returned when a switcher lacks an optional capability.
	ErrCapabilityUnsupported = errors.New("routing: capability not supported")
)
