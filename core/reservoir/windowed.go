package reservoir

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// WindowSample is the outcome of one closed sampling window.
type WindowSample[T any] struct {
	ID    int64
	Start time.Time
	End   time.Time
	Seen  int64
	Items []T
}

// RolloverFunc receives the sample of each closed window.
type RolloverFunc[T any] func(WindowSample[T])

// WindowedReservoir composes a Reservoir with a TimeWindow: each window
// holds an independent uniform sample, and when a window closes its sample
// and counts are handed to the rollover callback before the reservoir
// resets for the next window.
//
// Rollover is checked lazily on every ingested item. If a cron schedule is
// configured, Start launches a background scheduler that also checks, so
// windows close even when the stream goes idle.
type WindowedReservoir[T any] struct {
	res        *Reservoir[T]
	window     *TimeWindow
	onRollover RolloverFunc[T]
	metrics    MetricsReporter
	logger     *zap.Logger

	rolloverCron *cron.Cron
	mu           sync.Mutex
}

// NewWindowed creates a windowed reservoir from the given configuration.
// opts apply to the underlying reservoir.
func NewWindowed[T any](cfg WindowConfig, onRollover RolloverFunc[T], opts ...Option[T]) (*WindowedReservoir[T], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	res, err := New[T](cfg.Capacity, opts...)
	if err != nil {
		return nil, err
	}

	w := &WindowedReservoir[T]{
		res:        res,
		window:     NewTimeWindow(cfg.WindowDuration),
		onRollover: onRollover,
		metrics:    res.metrics,
		logger:     res.logger,
	}

	if cfg.RolloverScheduleCron != "" {
		w.rolloverCron = cron.New()
		if _, err := w.rolloverCron.AddFunc(cfg.RolloverScheduleCron, w.maybeRollover); err != nil {
			return nil, fmt.Errorf("failed to schedule window rollover: %w", err)
		}
	}

	w.logger.Info("windowed reservoir created",
		zap.Int("capacity", cfg.Capacity),
		zap.Duration("window", cfg.WindowDuration),
		zap.String("rollover_schedule", cfg.RolloverScheduleCron))

	return w, nil
}

// Start launches the rollover scheduler, if one is configured. It is a
// no-op otherwise.
func (w *WindowedReservoir[T]) Start() {
	if w.rolloverCron != nil {
		w.rolloverCron.Start()
	}
}

// Stop halts the rollover scheduler. The reservoir itself stays usable.
func (w *WindowedReservoir[T]) Stop() {
	if w.rolloverCron != nil {
		w.rolloverCron.Stop()
	}
}

// Add ingests a single item into the current window's sample, rolling the
// window over first if it has expired.
func (w *WindowedReservoir[T]) Add(item T) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.rolloverLocked()
	w.res.Add(item)
}

// SampleStream ingests every item of src in order, rolling windows over as
// their end times pass.
func (w *WindowedReservoir[T]) SampleStream(ctx context.Context, src Source[T]) error {
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
		w.Add(item)
	}
}

// maybeRollover closes the current window if it has expired.
func (w *WindowedReservoir[T]) maybeRollover() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.rolloverLocked()
}

// rolloverLocked closes expired windows (must be called with the lock held).
func (w *WindowedReservoir[T]) rolloverLocked() {
	if !w.window.Expired() {
		return
	}

	items := w.res.Sample()
	seen := w.res.Seen()
	_, start, end := w.window.Current()
	w.res.Reset()
	closedID := w.window.Advance()

	if w.metrics != nil {
		w.metrics.ReportWindowRollovers(1)
	}

	w.logger.Debug("sampling window rolled over",
		zap.Int64("window_id", closedID),
		zap.Int64("seen", seen),
		zap.Int("sampled", len(items)))

	if w.onRollover != nil {
		w.onRollover(WindowSample[T]{
			ID:    closedID,
			Start: start,
			End:   end,
			Seen:  seen,
			Items: items,
		})
	}
}

// Sample returns a copy of the current window's sample.
func (w *WindowedReservoir[T]) Sample() []T {
	return w.res.Sample()
}

// Seen returns the number of items ingested in the current window.
func (w *WindowedReservoir[T]) Seen() int64 {
	return w.res.Seen()
}

// Capacity returns the per-window sample capacity.
func (w *WindowedReservoir[T]) Capacity() int {
	return w.res.Capacity()
}

// SetCapacity updates the per-window sample capacity. As with
// Reservoir.SetCapacity, the current window's sample is not re-sampled.
func (w *WindowedReservoir[T]) SetCapacity(capacity int) error {
	return w.res.SetCapacity(capacity)
}

// Reset clears the current window's sample and seen count without closing
// the window.
func (w *WindowedReservoir[T]) Reset() {
	w.res.Reset()
}

// Window returns the window tracker.
func (w *WindowedReservoir[T]) Window() *TimeWindow {
	return w.window
}
