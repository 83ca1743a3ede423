package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"vision-classifier/internal/domain/entity"
)

func TestEnginePool_ExclusiveUse(t *testing.T) {
	a := newFakeEngine(t, 4, 4, floatOutput(1))
	b := newFakeEngine(t, 4, 4, floatOutput(1))
	a.delay, b.delay = 5*time.Millisecond, 5*time.Millisecond

	pool, err := NewEnginePool(a, b)
	require.NoError(t, err)
	require.Equal(t, 2, pool.Size())
	require.Same(t, a, pool.Primary())

	var wg sync.WaitGroup
	for i := 0; i < 12; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = pool.Run(context.Background(), &entity.Tensor{})
		}()
	}
	wg.Wait()

	require.Equal(t, int32(12), a.calls.Load()+b.calls.Load())
	require.Equal(t, int32(1), a.peak.Load())
	require.LessOrEqual(t, b.peak.Load(), int32(1))
}

func TestEnginePool_WaitHonoursContext(t *testing.T) {
	engine := newFakeEngine(t, 4, 4, floatOutput(1))
	engine.delay = 200 * time.Millisecond
	pool, err := NewEnginePool(engine)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = pool.Run(context.Background(), &entity.Tensor{})
	}()
	require.Eventually(t, func() bool { return engine.running.Load() == 1 }, time.Second, time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = pool.Run(ctx, &entity.Tensor{})
	require.ErrorIs(t, err, entity.ErrBusy)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	<-done
}

func TestEnginePool_WrapsEngineErrors(t *testing.T) {
	engine := newFakeEngine(t, 4, 4, floatOutput(1))
	engine.err = errors.New("boom")
	pool, err := NewEnginePool(engine)
	require.NoError(t, err)

	_, err = pool.Run(context.Background(), &entity.Tensor{})
	require.ErrorIs(t, err, entity.ErrInference)

	// движок возвращается в пул и после ошибки
	engine.err = nil
	_, err = pool.Run(context.Background(), &entity.Tensor{})
	require.NoError(t, err)
}

func TestEnginePool_Validation(t *testing.T) {
	_, err := NewEnginePool()
	require.Error(t, err)

	_, err = NewEnginePool(newFakeEngine(t, 4, 4, floatOutput(1)), newFakeEngine(t, 8, 8, floatOutput(1)))
	require.ErrorIs(t, err, entity.ErrConfig)
}

func TestEnginePool_Close(t *testing.T) {
	a := newFakeEngine(t, 4, 4, floatOutput(1))
	b := newFakeEngine(t, 4, 4, floatOutput(1))
	b.close = errors.New("destroy failed")
	pool, err := NewEnginePool(a, b)
	require.NoError(t, err)
	require.ErrorContains(t, pool.Close(), "destroy failed")
}
