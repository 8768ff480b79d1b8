package utils

import (
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkerPool_RunsAllJobs(t *testing.T) {
	pool := NewWorkerPool(3, zerolog.Nop())
	var count atomic.Int32

	for i := 0; i < 50; i++ {
		require.NoError(t, pool.Submit(func() { count.Add(1) }))
	}
	pool.Shutdown()

	assert.Equal(t, int32(50), count.Load())
}

func TestWorkerPool_SurvivesPanics(t *testing.T) {
	pool := NewWorkerPool(1, zerolog.Nop())
	var ran atomic.Bool

	require.NoError(t, pool.Submit(func() { panic("boom") }))
	require.NoError(t, pool.Submit(func() { ran.Store(true) }))
	pool.Shutdown()

	assert.True(t, ran.Load())
}

func TestWorkerPool_SubmitAfterShutdown(t *testing.T) {
	pool := NewWorkerPool(0, zerolog.Nop())
	pool.Shutdown()
	pool.Shutdown()

	assert.ErrorIs(t, pool.Submit(func() {}), ErrPoolClosed)
}

func TestSliceToSet(t *testing.T) {
	set := SliceToSet([]string{"a", "b", "a"})

	assert.Len(t, set, 2)
	assert.Contains(t, set, "a")
	assert.Contains(t, set, "b")
}
