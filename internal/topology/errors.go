package topology

import "errors"

// Domain errors for the topology package.
var (
	// ErrVertexNotFound is returned when a key was never added to the graph.
	ErrVertexNotFound = errors.New("topology: vertex not found")

	// ErrMalformedKey is returned when a matrix port key cannot be decomposed.
	ErrMalformedKey = errors.New("topology: malformed port key")
)
