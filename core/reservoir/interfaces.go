package reservoir

import (
	"context"
	"time"
)

// Sampler defines the core sampling interface
type Sampler[T any] interface {
	// Add ingests a single item
	Add(item T)

	// SampleStream ingests every item of src in order
	SampleStream(ctx context.Context, src Source[T]) error

	// Sample returns a snapshot of the current sample contents
	Sample() []T

	// Seen returns the number of items ingested since the last reset
	Seen() int64

	// Reset clears the sample and seen count, preserving capacity
	Reset()

	// Capacity returns the maximum number of items the sample can hold
	Capacity() int

	// SetCapacity updates the maximum number of items the sample can hold
	SetCapacity(capacity int) error
}

// Window defines the time window management interface
type Window interface {
	// Current returns the current window ID, start time, and end time
	Current() (id int64, start, end time.Time)

	// Expired reports whether the current window has passed its end time
	Expired() bool

	// Advance closes the current window and opens the next one,
	// returning the ID of the closed window
	Advance() int64
}

var (
	_ Sampler[int] = (*Reservoir[int])(nil)
	_ Sampler[int] = (*WindowedReservoir[int])(nil)
	_ Window       = (*TimeWindow)(nil)
)
