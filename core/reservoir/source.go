package reservoir

import (
	"context"
	"fmt"
)

// Source represents a lazily-consumable stream of items. Sources are pulled
// one item at a time and are consumed exactly once; they are not required to
// be materialized in memory and may be infinite.
type Source[T any] interface {
	// Next returns the next element and true, or the zero value and false
	// once the source is exhausted.
	Next(ctx context.Context) (T, bool, error)

	// Close releases resources held by the source.
	Close() error
}

// sliceSource implements Source for slices.
type sliceSource[T any] struct {
	slice []T
	index int
}

func (s *sliceSource[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T

	if s.index >= len(s.slice) {
		return zero, false, nil
	}

	select {
	case <-ctx.Done():
		return zero, false, ctx.Err()
	default:
		item := s.slice[s.index]
		s.index++
		return item, true, nil
	}
}

func (s *sliceSource[T]) Close() error {
	return nil
}

// channelSource implements Source for channels.
type channelSource[T any] struct {
	ch <-chan T
}

func (s *channelSource[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T

	if s.ch == nil {
		return zero, false, fmt.Errorf("%w: nil channel", ErrNilSource)
	}

	select {
	case item, ok := <-s.ch:
		if !ok {
			return zero, false, nil
		}
		return item, true, nil
	case <-ctx.Done():
		return zero, false, ctx.Err()
	}
}

func (s *channelSource[T]) Close() error {
	return nil
}

// generatorSource implements Source for generator functions. It never
// exhausts on its own; consumption stops only via context cancellation.
type generatorSource[T any] struct {
	generator func() T
}

func (s *generatorSource[T]) Next(ctx context.Context) (T, bool, error) {
	select {
	case <-ctx.Done():
		var zero T
		return zero, false, ctx.Err()
	default:
		return s.generator(), true, nil
	}
}

func (s *generatorSource[T]) Close() error {
	return nil
}

// rangeSource implements Source for half-open integer intervals.
type rangeSource struct {
	next int
	end  int
}

func (s *rangeSource) Next(ctx context.Context) (int, bool, error) {
	if s.next >= s.end {
		return 0, false, nil
	}

	select {
	case <-ctx.Done():
		return 0, false, ctx.Err()
	default:
		item := s.next
		s.next++
		return item, true, nil
	}
}

func (s *rangeSource) Close() error {
	return nil
}

// FromSlice creates a Source that yields the elements of a slice in order.
func FromSlice[T any](slice []T) Source[T] {
	return &sliceSource[T]{slice: slice}
}

// FromChannel creates a Source that yields values received from a channel
// until the channel is closed.
func FromChannel[T any](ch <-chan T) Source[T] {
	return &channelSource[T]{ch: ch}
}

// Generate creates an infinite Source from a generator function.
func Generate[T any](generator func() T) Source[T] {
	return &generatorSource[T]{generator: generator}
}

// Range creates a Source yielding the integers in [from, to) in order.
func Range(from, to int) Source[int] {
	return &rangeSource{next: from, end: to}
}
