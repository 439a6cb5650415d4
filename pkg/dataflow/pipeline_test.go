package dataflow

import (
	"context"
	"errors"
	"sort"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatch(t *testing.T) {
	ctx := context.Background()
	chunks, err := Collect(ctx, Batch(ctx, []int{1, 2, 3, 4, 5}, 2))
	require.NoError(t, err)
	assert.Equal(t, [][]int{{1, 2}, {3, 4}, {5}}, chunks)

	chunks, err = Collect(ctx, Batch(ctx, []int{1, 2, 3}, 0))
	require.NoError(t, err)
	assert.Equal(t, [][]int{{1, 2, 3}}, chunks)

	chunks, err = Collect(ctx, Batch[int](ctx, nil, 10))
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestMap_WorkersAndDrops(t *testing.T) {
	ctx := context.Background()
	var dropped atomic.Int32

	out := Map(ctx, From(ctx, 1, 2, 3, 4, 5, 6), func(n int) (int, error) {
		if n%3 == 0 {
			return 0, errors.New("multiple of three")
		}
		return n * 10, nil
	}, WithWorkers(3), WithErrorHandler(func(error) bool {
		dropped.Add(1)
		return true
	}))

	got, err := Collect(ctx, out)
	require.NoError(t, err)
	sort.Ints(got)
	assert.Equal(t, []int{10, 20, 40, 50}, got)
	assert.Equal(t, int32(2), dropped.Load())
}

func TestForEach_Retry(t *testing.T) {
	ctx := context.Background()
	var calls atomic.Int32

	err := ForEach(ctx, From(ctx, "doc"), func(context.Context, string) error {
		if calls.Add(1) < 3 {
			return errors.New("transient")
		}
		return nil
	}, WithRetry(2, ConstantBackoff(time.Millisecond)))

	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestForEach_FirstErrorStops(t *testing.T) {
	ctx := context.Background()
	var seen atomic.Int32

	err := ForEach(ctx, From(ctx, 1, 2, 3, 4), func(_ context.Context, n int) error {
		seen.Add(1)
		if n == 2 {
			return errors.New("bulk rejected")
		}
		return nil
	})

	assert.EqualError(t, err, "bulk rejected")
	assert.Equal(t, int32(2), seen.Load())
}

func TestForEach_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := ForEach(ctx, From(context.Background(), 1), func(context.Context, int) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}
