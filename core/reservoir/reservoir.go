// Package reservoir implements single-pass uniform reservoir sampling
// (Algorithm R): a fixed-capacity sample drawn from a stream of unknown or
// unbounded length, using constant memory per item.
package reservoir

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// Reservoir maintains a uniformly-random sample of at most Capacity items
// over everything pushed through it. While fewer items have been seen than
// the capacity every item is kept (filling phase); afterwards each new item
// enters with probability capacity/seen, replacing a uniformly random slot
// (replacement phase). Streams ingested by successive calls compose as one
// long logical stream: seen counts and acceptance probabilities carry over.
//
// All methods are safe for concurrent use; ingestion is serialized per item
// so accessors can observe a consistent sample mid-stream.
type Reservoir[T any] struct {
	mu       sync.RWMutex
	capacity int
	sample   []T
	seen     int64
	random   *rand.Rand

	accepted  *atomic.Int64
	replaced  *atomic.Int64
	discarded *atomic.Int64

	metrics MetricsReporter
	logger  *zap.Logger
}

// Option configures a Reservoir at construction.
type Option[T any] func(*Reservoir[T])

// WithLogger attaches a logger. The default is a no-op logger.
func WithLogger[T any](logger *zap.Logger) Option[T] {
	return func(r *Reservoir[T]) {
		r.logger = logger
	}
}

// WithMetrics attaches a metrics reporter.
func WithMetrics[T any](metrics MetricsReporter) Option[T] {
	return func(r *Reservoir[T]) {
		r.metrics = metrics
	}
}

// WithSeed seeds the reservoir's own random source deterministically.
// Randomness is instance-local: seeding one reservoir never affects draws
// made by another.
func WithSeed[T any](seed int64) Option[T] {
	return func(r *Reservoir[T]) {
		r.random = rand.New(rand.NewSource(seed))
	}
}

// WithRand supplies the random source directly.
func WithRand[T any](random *rand.Rand) Option[T] {
	return func(r *Reservoir[T]) {
		r.random = random
	}
}

// New creates a Reservoir with the given capacity. It fails with
// ErrInvalidCapacity if capacity is less than 1.
func New[T any](capacity int, opts ...Option[T]) (*Reservoir[T], error) {
	if capacity < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCapacity, capacity)
	}

	r := &Reservoir[T]{
		capacity:  capacity,
		sample:    make([]T, 0, capacity),
		random:    rand.New(rand.NewSource(time.Now().UnixNano())),
		accepted:  atomic.NewInt64(0),
		replaced:  atomic.NewInt64(0),
		discarded: atomic.NewInt64(0),
		logger:    zap.NewNop(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r, nil
}

// Capacity returns the maximum number of items the sample may hold.
func (r *Reservoir[T]) Capacity() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.capacity
}

// SetCapacity updates the capacity, with the same validation as New.
//
// Only the stored capacity changes: the held sample is neither trimmed nor
// re-sampled, so after shrinking it can stay longer than the new capacity
// until the next Reset, and growing past a full sample leaves replacement
// draws addressing slots the sample does not yet hold. Callers that resize
// mid-stream should Reset first.
func (r *Reservoir[T]) SetCapacity(capacity int) error {
	if capacity < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidCapacity, capacity)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.capacity = capacity
	return nil
}

// Sample returns a copy of the current sample, in slot order. Slot order has
// no meaning beyond identity; it is the target of random swaps. Mutating the
// returned slice never affects the reservoir.
func (r *Reservoir[T]) Sample() []T {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]T, len(r.sample))
	copy(out, r.sample)
	return out
}

// Len returns the current number of items in the sample.
func (r *Reservoir[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.sample)
}

// Seen returns the total number of items ingested since construction or the
// last Reset.
func (r *Reservoir[T]) Seen() int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.seen
}

// Stats reports cumulative ingestion counters. Unlike Seen, the counters are
// lifetime totals and survive Reset.
type Stats struct {
	Accepted  int64 // items that entered the sample (fills and replacements)
	Replaced  int64 // replacement-phase acceptances
	Discarded int64 // replacement-phase rejections
}

// Stats returns the cumulative ingestion counters.
func (r *Reservoir[T]) Stats() Stats {
	return Stats{
		Accepted:  r.accepted.Load(),
		Replaced:  r.replaced.Load(),
		Discarded: r.discarded.Load(),
	}
}

// Reseed reinitializes the reservoir's random source with the given seed,
// making every subsequent draw by this instance deterministic.
func (r *Reservoir[T]) Reseed(seed int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.random = rand.New(rand.NewSource(seed))
}

// Add ingests a single item.
//
// This implements Algorithm R (Jeffrey Vitter):
//  1. If fewer than capacity items have been seen, keep the item.
//  2. Otherwise keep it with probability capacity/seen, overwriting a slot
//     chosen by an independent uniform draw.
func (r *Reservoir[T]) Add(item T) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.addLocked(item)
}

// addLocked performs one ingestion step (must be called with the lock held).
func (r *Reservoir[T]) addLocked(item T) {
	r.seen++

	if r.seen <= int64(r.capacity) {
		// Filling phase: keep everything.
		r.sample = append(r.sample, item)
		r.accepted.Inc()
		r.reportLocked(1, 0)
		return
	}

	// Replacement phase: one draw decides acceptance, an independent draw
	// picks the victim slot.
	p := float64(r.capacity) / float64(r.seen)
	if u := r.random.Float64(); u <= p {
		slot := r.random.Intn(r.capacity)
		r.sample[slot] = item
		r.accepted.Inc()
		r.replaced.Inc()
		r.reportLocked(1, 0)
	} else {
		r.discarded.Inc()
		r.reportLocked(0, 1)
	}
}

// reportLocked pushes current state to the metrics reporter, if any.
func (r *Reservoir[T]) reportLocked(sampled, discarded int) {
	if r.metrics == nil {
		return
	}

	r.metrics.ReportReservoirSize(len(r.sample))
	r.metrics.ReportSeenItems(r.seen)
	if sampled > 0 {
		r.metrics.ReportSampledItems(sampled)
	}
	if discarded > 0 {
		r.metrics.ReportDiscardedItems(discarded)
	}
}

// SampleStream consumes src sequentially until exhaustion, ingesting every
// item in order. It fails with ErrNilSource before touching any state if src
// is nil, and stops with the context error if ctx is cancelled between items.
// Calling it repeatedly on the same reservoir composes the streams into one.
func (r *Reservoir[T]) SampleStream(ctx context.Context, src Source[T]) error {
	if src == nil {
		return fmt.Errorf("%w: nil source", ErrNilSource)
	}

	for {
		item, ok, err := src.Next(ctx)
		if err != nil {
			return fmt.Errorf("stream source: %w", err)
		}
		if !ok {
			return nil
		}
		r.Add(item)
	}
}

// SampleStreamSeeded reseeds the reservoir's random source and then ingests
// src exactly like SampleStream. Validation of src happens before the reseed
// so a bad stream argument leaves the random source untouched.
func (r *Reservoir[T]) SampleStreamSeeded(ctx context.Context, src Source[T], seed int64) error {
	if src == nil {
		return fmt.Errorf("%w: nil source", ErrNilSource)
	}

	r.Reseed(seed)
	return r.SampleStream(ctx, src)
}

// Reset clears the sample and the seen count. The capacity is unaffected.
func (r *Reservoir[T]) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sample = make([]T, 0, r.capacity)
	r.seen = 0

	if r.metrics != nil {
		r.metrics.ReportReservoirSize(0)
		r.metrics.ReportSeenItems(0)
	}
}
