package morphology

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/morphology-mcp/internal/ndimage"
)

func TestExecutor_CoversRegionOnce(t *testing.T) {
	largest := ndimage.RegionOfSize(7, 9)
	for _, workers := range []int{1, 2, 3, 4, 16, 0} {
		counts := make([]atomic.Int32, largest.NumberOfPixels())
		img := ndimage.New[uint8](largest)

		err := NewExecutor(workers).Run(context.Background(), largest, func(_ context.Context, sub ndimage.Region) error {
			sub.ForEach(func(idx ndimage.Index) {
				counts[img.Offset(idx)].Add(1)
			})
			return nil
		})
		require.NoError(t, err)
		for i := range counts {
			require.Equal(t, int32(1), counts[i].Load(), "workers=%d pixel %d", workers, i)
		}
	}
}

func TestExecutor_PropagatesWorkerError(t *testing.T) {
	errBoom := errors.New("boom")
	largest := ndimage.RegionOfSize(4, 8)

	err := NewExecutor(4).Run(context.Background(), largest, func(_ context.Context, sub ndimage.Region) error {
		if sub.Index[1] == 0 {
			return errBoom
		}
		return nil
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrWorkerFailed)
	assert.ErrorIs(t, err, errBoom)

	var werr *WorkerError
	require.ErrorAs(t, err, &werr)
	assert.Equal(t, 0, werr.Region.Index[1])
}

func TestExecutor_RecoversPanic(t *testing.T) {
	err := NewExecutor(2).Run(context.Background(), ndimage.RegionOfSize(2, 2), func(context.Context, ndimage.Region) error {
		panic("out of memory")
	})
	require.ErrorIs(t, err, ErrWorkerFailed)
	assert.Contains(t, err.Error(), "out of memory")
}

func TestExecutor_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls atomic.Int32
	err := NewExecutor(2).Run(ctx, ndimage.RegionOfSize(4, 4), func(context.Context, ndimage.Region) error {
		calls.Add(1)
		return nil
	})
	require.ErrorIs(t, err, ErrCanceled)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls.Load())
}

func TestExecutor_CanceledMidBatch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	err := NewExecutor(4).Run(ctx, ndimage.RegionOfSize(2, 8), func(context.Context, ndimage.Region) error {
		calls.Add(1)
		cancel()
		return nil
	})
	require.ErrorIs(t, err, ErrCanceled)
	assert.LessOrEqual(t, calls.Load(), int32(4))
}

func TestExecutor_EmptyRegion(t *testing.T) {
	err := NewExecutor(3).Run(context.Background(), ndimage.RegionOfSize(0, 4), func(context.Context, ndimage.Region) error {
		t.Fatal("no work expected for an empty region")
		return nil
	})
	require.NoError(t, err)
}
