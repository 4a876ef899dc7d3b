package event

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsyncPool_StartStop(t *testing.T) {
	bus := newTestBus(t)

	require.NoError(t, bus.Start())
	assert.ErrorIs(t, bus.Start(), ErrAlreadyRunning)

	require.NoError(t, bus.Stop(context.Background()))
	assert.ErrorIs(t, bus.Stop(context.Background()), ErrNotRunning)
}

func TestAsyncPool_DeliversOffCaller(t *testing.T) {
	bus := newTestBus(t)
	require.NoError(t, bus.Start())
	defer bus.Stop(context.Background())

	done := make(chan Event, 1)
	require.NoError(t, bus.SubscribeFunc("serial.data", func(ctx context.Context, ev Event) (any, error) {
		done <- ev
		return nil, nil
	}, WithAsync()))

	res := bus.Publish(context.Background(), "serial.data", Fields{"line": "OK"})
	assert.Equal(t, 1, res.Enqueued)
	assert.Zero(t, res.Handled)

	select {
	case ev := <-done:
		assert.Equal(t, Fields{"line": "OK"}, ev.Fields)
	case <-time.After(2 * time.Second):
		t.Fatal("async handler never ran")
	}
}

func TestAsyncPool_DegradesToInlineWhenStopped(t *testing.T) {
	bus := newTestBus(t)

	calls := 0
	require.NoError(t, bus.SubscribeFunc("x", func(ctx context.Context, ev Event) (any, error) {
		calls++
		return nil, nil
	}, WithAsync()))

	res := bus.Publish(context.Background(), "x")
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, res.Handled)
	assert.Zero(t, res.Enqueued)
}

func TestAsyncPool_PublishSyncRunsInline(t *testing.T) {
	bus := newTestBus(t)
	require.NoError(t, bus.Start())
	defer bus.Stop(context.Background())

	calls := 0
	require.NoError(t, bus.SubscribeFunc("x", func(ctx context.Context, ev Event) (any, error) {
		calls++
		return nil, nil
	}, WithAsync()))

	res := bus.PublishSync(context.Background(), "x")
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, res.Handled)
	assert.Zero(t, res.Enqueued)
}

func TestAsyncPool_QueueFullDrops(t *testing.T) {
	bus := newTestBus(t, WithAsyncQueueSize(1), WithAsyncWorkers(1))
	require.NoError(t, bus.Start())

	block := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	require.NoError(t, bus.SubscribeFunc("x", func(ctx context.Context, ev Event) (any, error) {
		wg.Done()
		<-block
		return nil, nil
	}, WithAsync()))

	ctx := context.Background()

	// First publish occupies the single worker; wait until it is inside
	// the handler so the queue state is deterministic.
	bus.Publish(ctx, "x")
	wg.Wait()

	// Second fills the queue, third must drop.
	bus.Publish(ctx, "x")
	res := bus.Publish(ctx, "x")

	require.Len(t, res.Errors, 1)
	assert.ErrorIs(t, res.Errors[0], ErrQueueFull)
	assert.Equal(t, uint64(1), bus.Stats().Dropped)

	close(block)
	require.NoError(t, bus.Stop(ctx))
}

func TestAsyncPool_StopWaitsForQueued(t *testing.T) {
	bus := newTestBus(t, WithAsyncWorkers(2))
	require.NoError(t, bus.Start())

	var mu sync.Mutex
	ran := 0
	require.NoError(t, bus.SubscribeFunc("x", func(ctx context.Context, ev Event) (any, error) {
		time.Sleep(10 * time.Millisecond)
		mu.Lock()
		ran++
		mu.Unlock()
		return nil, nil
	}, WithAsync()))

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		bus.Publish(ctx, "x")
	}

	require.NoError(t, bus.Stop(ctx))
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 5, ran)
}
