package utils

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkerPool(t *testing.T) {
	t.Run("keeps input order", func(t *testing.T) {
		pool := NewWorkerPool(3, func(ctx context.Context, item string) (string, error) {
			return strings.ToUpper(item), nil
		})
		results, errs := pool.ProcessItems(context.Background(), []string{"boeing", "thales", "airbus", "palantir"})
		assert.Equal(t, []string{"BOEING", "THALES", "AIRBUS", "PALANTIR"}, results)
		for _, err := range errs {
			assert.NoError(t, err)
		}
	})

	t.Run("isolates panics and errors", func(t *testing.T) {
		pool := NewWorkerPool(2, func(ctx context.Context, item int) (int, error) {
			switch item {
			case 1:
				panic("boom")
			case 2:
				return 0, errors.New("bad item")
			}
			return item * 10, nil
		})
		results, errs := pool.ProcessItems(context.Background(), []int{0, 1, 2, 3})
		assert.Equal(t, 30, results[3])
		assert.NoError(t, errs[0])

		var panicErr *PanicError
		require.True(t, errors.As(errs[1], &panicErr))
		assert.EqualError(t, errs[2], "bad item")
	})

	t.Run("cancelled context", func(t *testing.T) {
		var calls int32
		pool := NewWorkerPool(1, func(ctx context.Context, item int) (int, error) {
			atomic.AddInt32(&calls, 1)
			return item, nil
		})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, errs := pool.ProcessItems(ctx, []int{1, 2, 3})
		assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
		for _, err := range errs {
			assert.ErrorIs(t, err, context.Canceled)
		}
	})

	t.Run("empty input", func(t *testing.T) {
		pool := NewWorkerPool(0, func(ctx context.Context, item int) (int, error) { return item, nil })
		results, errs := pool.ProcessItems(context.Background(), nil)
		assert.Nil(t, results)
		assert.Nil(t, errs)
	})
}

func TestGetConcurrencyLimit(t *testing.T) {
	t.Setenv("ORGSIGNAL_CONCURRENCY", "")
	assert.Equal(t, DefaultConcurrency, GetConcurrencyLimit())

	t.Setenv("ORGSIGNAL_CONCURRENCY", "9")
	assert.Equal(t, 9, GetConcurrencyLimit())

	t.Setenv("ORGSIGNAL_CONCURRENCY", "-2")
	assert.Equal(t, DefaultConcurrency, GetConcurrencyLimit())
}
