package reservoir

import (
	"sync"
	"time"
)

// TimeWindow tracks time-based sampling windows
type TimeWindow struct {
	duration        time.Duration
	currentID       int64
	currentStart    time.Time
	currentEnd      time.Time
	rolloverCounter int64
	mu              sync.RWMutex
}

// NewTimeWindow creates a window tracker with the given duration
func NewTimeWindow(duration time.Duration) *TimeWindow {
	now := time.Now()
	return &TimeWindow{
		duration:     duration,
		currentID:    now.Unix(),
		currentStart: now,
		currentEnd:   now.Add(duration),
	}
}

// Current returns the current window information
func (w *TimeWindow) Current() (id int64, start, end time.Time) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return w.currentID, w.currentStart, w.currentEnd
}

// Expired reports whether the current window has passed its end time
func (w *TimeWindow) Expired() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return time.Now().After(w.currentEnd)
}

// Advance closes the current window and opens the next one, returning the
// ID of the closed window
func (w *TimeWindow) Advance() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()

	closed := w.currentID

	now := time.Now()
	w.currentID = now.Unix()
	w.currentStart = now
	w.currentEnd = now.Add(w.duration)
	w.rolloverCounter++

	return closed
}

// Rollovers returns the number of windows closed so far
func (w *TimeWindow) Rollovers() int64 {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return w.rolloverCounter
}

// Duration returns the configured window duration
func (w *TimeWindow) Duration() time.Duration {
	return w.duration
}
