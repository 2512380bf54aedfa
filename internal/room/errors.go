package room

import "errors"

// Domain errors for the room package.
var (
	// ErrInvalidRoom is returned when the room file fails structural validation.
	ErrInvalidRoom = errors.New("room: invalid")

	// ErrSourceNotFound is returned when a source ID does not exist.
	ErrSourceNotFound = errors.New("room: source not found")

	// ErrDestinationNotFound is returned when a destination ID does not exist.
	ErrDestinationNotFound = errors.New("room: destination not found")

	// ErrMatrixNotFound is returned when a matrix ID does not exist.
	ErrMatrixNotFound = errors.New("room: matrix not found")
)
