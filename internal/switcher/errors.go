package switcher

import "errors"

// Domain-specific errors for switcher drivers.
var (
	// ErrUnknownDriver is returned when a matrix names an unsupported driver type.
	ErrUnknownDriver = errors.New("switcher: unknown driver type")

	// ErrPortOutOfRange is returned when an input or output is outside the matrix size.
	ErrPortOutOfRange = errors.New("switcher: port out of range")

	// ErrOffline is returned when a command is sent to a switcher that is not online.
	ErrOffline = errors.New("switcher: device offline")

	// ErrLocked is returned when a route command targets a locked output.
	ErrLocked = errors.New("switcher: output locked")

	// ErrMissingBus is returned when an MQTT driver is requested without a bus.
	ErrMissingBus = errors.New("switcher: mqtt bus not configured")

	// ErrInvalidAddress is returned when a driver needs an address and has none.
	ErrInvalidAddress = errors.New("switcher: driver address required")

	// ErrInvalidPayload is returned when device feedback cannot be decoded.
	ErrInvalidPayload = errors.New("switcher: invalid payload")
)
