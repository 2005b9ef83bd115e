package service

import "errors"

var (
	// ErrStopped is returned by Start and Enqueue once the service has been stopped.
	ErrStopped = errors.New("service stopped")
	// ErrQueueFull is returned by Enqueue when the event's partition has no room.
	ErrQueueFull = errors.New("event queue full")
)
