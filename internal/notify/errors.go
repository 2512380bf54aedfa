package notify

import "errors"

var (
	// ErrQueueFull is reported when the publish queue cannot take another message.
	ErrQueueFull = errors.New("notify: publish queue full")

	// ErrClosed is returned by Run when the publisher has already been stopped.
	ErrClosed = errors.New("notify: publisher closed")
)
