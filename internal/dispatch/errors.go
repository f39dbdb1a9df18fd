package dispatch

import "errors"

var (
	// ErrInvalidInput marks an event or record rejected by validation
	// before any store or provider call.
	ErrInvalidInput = errors.New("invalid notification input")

	// ErrSaveFailed marks a failed write of the durable notification
	// record. It is the only condition that flips a dispatch Result to
	// unsuccessful.
	ErrSaveFailed = errors.New("failed to save notification")
)
