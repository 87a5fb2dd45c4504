package reservoir

import "errors"

// Error kinds surfaced by the sampling core

var (
	// ErrInvalidCapacity indicates a capacity (or new capacity) below 1
	ErrInvalidCapacity = errors.New("capacity must be strictly positive")

	// ErrNilSource indicates a stream argument that cannot be consumed
	ErrNilSource = errors.New("stream source is not consumable")
)
