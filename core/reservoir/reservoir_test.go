package reservoir

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewValidation(t *testing.T) {
	for _, capacity := range []int{0, -5, -1} {
		r, err := New[int](capacity)
		assert.Nil(t, r)
		assert.ErrorIs(t, err, ErrInvalidCapacity, "capacity %d should be rejected", capacity)
	}

	r, err := New[int](1)
	require.NoError(t, err)
	assert.Equal(t, 1, r.Capacity())
	assert.Equal(t, int64(0), r.Seen())
	assert.Empty(t, r.Sample())
}

func TestFillingPhase(t *testing.T) {
	r, err := New[string](10)
	require.NoError(t, err)

	for _, item := range []string{"a", "b", "c"} {
		r.Add(item)
	}

	// While seen <= capacity every item is kept, in arrival order
	assert.Equal(t, []string{"a", "b", "c"}, r.Sample())
	assert.Equal(t, int64(3), r.Seen())
	assert.Equal(t, 3, r.Len())
}

func TestCapacityBound(t *testing.T) {
	ctx := context.Background()

	for _, tc := range []struct {
		capacity int
		streamN  int
	}{
		{capacity: 1, streamN: 1000},
		{capacity: 10, streamN: 10000},
		{capacity: 100, streamN: 100},
		{capacity: 100, streamN: 42},
	} {
		r, err := New[int](tc.capacity)
		require.NoError(t, err)

		require.NoError(t, r.SampleStream(ctx, Range(0, tc.streamN)))

		want := tc.streamN
		if want > tc.capacity {
			want = tc.capacity
		}
		assert.Equal(t, want, r.Len(), "capacity=%d streamN=%d", tc.capacity, tc.streamN)
		assert.Equal(t, int64(tc.streamN), r.Seen())
	}
}

func TestCountAccumulatesAcrossStreams(t *testing.T) {
	ctx := context.Background()

	r, err := New[int](10)
	require.NoError(t, err)

	require.NoError(t, r.SampleStreamSeeded(ctx, Range(0, 10000), 0))
	assert.Equal(t, int64(10000), r.Seen())
	assert.Equal(t, 10, r.Len())

	// A second stream without reseeding composes with the first
	require.NoError(t, r.SampleStream(ctx, Range(10000, 15000)))
	assert.Equal(t, int64(15000), r.Seen())
	assert.Equal(t, 10, r.Len())
}

func TestSecondStreamPartiallyReplacesSample(t *testing.T) {
	ctx := context.Background()

	// Across many seeds at least one run must replace part of the first
	// stream's sample and at least one run must retain part of it.
	var retained, replaced int
	for seed := int64(0); seed < 20; seed++ {
		r, err := New[int](10)
		require.NoError(t, err)

		require.NoError(t, r.SampleStreamSeeded(ctx, Range(0, 10000), seed))
		first := map[int]bool{}
		for _, v := range r.Sample() {
			first[v] = true
		}

		require.NoError(t, r.SampleStream(ctx, Range(10000, 15000)))
		require.Equal(t, 10, r.Len())

		var kept int
		for _, v := range r.Sample() {
			if first[v] {
				kept++
			}
		}
		if kept > 0 {
			retained++
		}
		if kept < 10 {
			replaced++
		}
	}

	assert.Positive(t, retained)
	assert.Positive(t, replaced)
}

func TestDeterministicReplay(t *testing.T) {
	ctx := context.Background()

	a, err := New[int](10)
	require.NoError(t, err)
	b, err := New[int](10)
	require.NoError(t, err)

	require.NoError(t, a.SampleStreamSeeded(ctx, Range(0, 10000), 42))
	require.NoError(t, b.SampleStreamSeeded(ctx, Range(0, 10000), 42))

	assert.Equal(t, a.Sample(), b.Sample())

	enc := func(n int) []byte { return Int64Bytes(int64(n)) }
	assert.Equal(t, Digest(a.Sample(), enc), Digest(b.Sample(), enc))

	// A different seed diverges
	c, err := New[int](10, WithSeed[int](43))
	require.NoError(t, err)
	require.NoError(t, c.SampleStream(ctx, Range(0, 10000)))
	assert.NotEqual(t, a.Sample(), c.Sample())
}

func TestUniformity(t *testing.T) {
	if testing.Short() {
		t.Skip("statistical test")
	}

	ctx := context.Background()

	const (
		streamN  = 100
		capacity = 10
		trials   = 2000
	)

	counts := make([]int, streamN)
	for seed := int64(0); seed < trials; seed++ {
		r, err := New[int](capacity, WithSeed[int](seed))
		require.NoError(t, err)
		require.NoError(t, r.SampleStream(ctx, Range(0, streamN)))

		for _, v := range r.Sample() {
			counts[v]++
		}
	}

	// Each item should land in the final sample with frequency close to
	// capacity/streamN = 0.1. Expected count is 200 with sd ~13.4; the
	// bounds below sit six sigmas out.
	for item, count := range counts {
		assert.Greater(t, count, 120, "item %d under-sampled: %d", item, count)
		assert.Less(t, count, 280, "item %d over-sampled: %d", item, count)
	}
}

func TestResetPreservesCapacity(t *testing.T) {
	ctx := context.Background()

	r, err := New[int](10)
	require.NoError(t, err)
	require.NoError(t, r.SampleStream(ctx, Range(0, 1000)))
	require.Equal(t, 10, r.Len())

	r.Reset()

	assert.Equal(t, int64(0), r.Seen())
	assert.Empty(t, r.Sample())
	assert.Equal(t, 10, r.Capacity())

	// The reservoir refills normally after a reset
	require.NoError(t, r.SampleStream(ctx, Range(0, 5)))
	assert.Equal(t, 5, r.Len())
	assert.Equal(t, int64(5), r.Seen())
}

func TestSetCapacityDoesNotResample(t *testing.T) {
	ctx := context.Background()

	r, err := New[int](10)
	require.NoError(t, err)
	require.NoError(t, r.SampleStream(ctx, Range(0, 10000)))
	require.Equal(t, 10, r.Len())

	// Shrinking leaves the accumulated sample untouched
	require.NoError(t, r.SetCapacity(3))
	assert.Equal(t, 3, r.Capacity())
	assert.Equal(t, 10, r.Len())

	// Invalid capacities are rejected without side effects
	assert.ErrorIs(t, r.SetCapacity(0), ErrInvalidCapacity)
	assert.ErrorIs(t, r.SetCapacity(-5), ErrInvalidCapacity)
	assert.Equal(t, 3, r.Capacity())

	// After a reset the new capacity governs the next fill
	r.Reset()
	require.NoError(t, r.SampleStream(ctx, Range(0, 100)))
	assert.Equal(t, 3, r.Len())
	assert.Equal(t, int64(100), r.Seen())
}

func TestSampleReturnsCopy(t *testing.T) {
	r, err := New[int](5)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		r.Add(i)
	}

	snapshot := r.Sample()
	snapshot[0] = 999

	assert.Equal(t, []int{0, 1, 2, 3, 4}, r.Sample())
}

func TestSampleStreamNilSource(t *testing.T) {
	ctx := context.Background()

	r, err := New[int](10)
	require.NoError(t, err)

	assert.ErrorIs(t, r.SampleStream(ctx, nil), ErrNilSource)
	assert.ErrorIs(t, r.SampleStreamSeeded(ctx, nil, 7), ErrNilSource)

	// Validation fails before any state mutation
	assert.Equal(t, int64(0), r.Seen())
	assert.Empty(t, r.Sample())
}

func TestSampleStreamContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r, err := New[int](10)
	require.NoError(t, err)

	err = r.SampleStream(ctx, Generate(func() int { return 1 }))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int64(0), r.Seen())
}

func TestStats(t *testing.T) {
	ctx := context.Background()

	r, err := New[int](10, WithSeed[int](1))
	require.NoError(t, err)
	require.NoError(t, r.SampleStream(ctx, Range(0, 1000)))

	stats := r.Stats()
	assert.Equal(t, int64(10)+stats.Replaced, stats.Accepted)
	assert.Equal(t, int64(990), stats.Replaced+stats.Discarded)
	assert.Positive(t, stats.Replaced)
	assert.Positive(t, stats.Discarded)
}

func TestReseedReplays(t *testing.T) {
	ctx := context.Background()

	r, err := New[int](10)
	require.NoError(t, err)

	require.NoError(t, r.SampleStreamSeeded(ctx, Range(0, 10000), 0))
	first := r.Sample()

	r.Reset()
	r.Reseed(0)
	require.NoError(t, r.SampleStream(ctx, Range(0, 10000)))

	assert.Equal(t, first, r.Sample())
}

func TestConcurrentAdds(t *testing.T) {
	r, err := New[int](100)
	require.NoError(t, err)

	const (
		workers = 8
		perWork = 10000
	)

	done := make(chan struct{})
	for w := 0; w < workers; w++ {
		go func(base int) {
			defer func() { done <- struct{}{} }()
			for i := 0; i < perWork; i++ {
				r.Add(base + i)
			}
		}(w * perWork)
	}
	for w := 0; w < workers; w++ {
		<-done
	}

	assert.Equal(t, int64(workers*perWork), r.Seen())
	assert.Equal(t, 100, r.Len())
}
