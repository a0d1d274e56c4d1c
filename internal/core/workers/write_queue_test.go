package workers

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startedQueue(t *testing.T, size int) *WriteQueue {
	t.Helper()
	q := NewWriteQueue("test", size, nil, nil)
	q.Start(context.Background())
	t.Cleanup(q.Close)
	return q
}

func TestWriteQueue_RunsInSubmissionOrder(t *testing.T) {
	q := startedQueue(t, 10)

	var mu sync.Mutex
	var order []int
	var results []<-chan error

	for i := 0; i < 50; i++ {
		i := i
		res, err := q.Submit(context.Background(), func(ctx context.Context) error {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			return nil
		})
		require.NoError(t, err)
		results = append(results, res)
	}

	for _, r := range results {
		require.NoError(t, <-r)
	}

	require.Len(t, order, 50)
	for i, v := range order {
		assert.Equal(t, i, v)
	}
}

func TestWriteQueue_OneAtATime(t *testing.T) {
	q := startedQueue(t, 10)

	var running, maxRunning int
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = q.Do(context.Background(), func(ctx context.Context) error {
				mu.Lock()
				running++
				if running > maxRunning {
					maxRunning = running
				}
				mu.Unlock()

				time.Sleep(time.Millisecond)

				mu.Lock()
				running--
				mu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxRunning)
}

func TestWriteQueue_DoReturnsOpError(t *testing.T) {
	q := startedQueue(t, 1)
	boom := errors.New("boom")

	err := q.Do(context.Background(), func(ctx context.Context) error { return boom })

	assert.ErrorIs(t, err, boom)
}

func TestWriteQueue_PanicBecomesError(t *testing.T) {
	q := startedQueue(t, 1)

	err := q.Do(context.Background(), func(ctx context.Context) error {
		panic("disk on fire")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk on fire")

	assert.NoError(t, q.Do(context.Background(), func(ctx context.Context) error { return nil }))
}

func TestWriteQueue_WriteSurvivesCallerCancel(t *testing.T) {
	q := startedQueue(t, 1)

	release := make(chan struct{})
	written := make(chan struct{})

	ctx, cancel := context.WithCancel(context.Background())
	res, err := q.Submit(ctx, func(opCtx context.Context) error {
		<-release
		if opCtx.Err() != nil {
			return opCtx.Err()
		}
		close(written)
		return nil
	})
	require.NoError(t, err)

	cancel()
	close(release)

	assert.NoError(t, <-res)
	select {
	case <-written:
	case <-time.After(2 * time.Second):
		t.Fatal("write did not run")
	}
}

func TestWriteQueue_CloseDrainsPending(t *testing.T) {
	q := NewWriteQueue("drain", 10, nil, nil)
	q.Start(context.Background())

	var mu sync.Mutex
	count := 0
	for i := 0; i < 5; i++ {
		_, err := q.Submit(context.Background(), func(ctx context.Context) error {
			time.Sleep(time.Millisecond)
			mu.Lock()
			count++
			mu.Unlock()
			return nil
		})
		require.NoError(t, err)
	}

	q.Close()

	assert.Equal(t, 5, count)

	_, err := q.Submit(context.Background(), func(ctx context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrQueueClosed)
}

func TestWriteQueue_ContextCancelClosesQueue(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	q := NewWriteQueue("ctx", 1, nil, nil)
	q.Start(ctx)

	cancel()

	assert.Eventually(t, func() bool {
		_, err := q.Submit(context.Background(), func(ctx context.Context) error { return nil })
		return errors.Is(err, ErrQueueClosed)
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWriteQueue_SubmitHonorsContextWhenFull(t *testing.T) {
	q := NewWriteQueue("full", 1, nil, nil)
	defer q.Close()

	_, err := q.Submit(context.Background(), func(ctx context.Context) error { return nil })
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = q.Submit(ctx, func(ctx context.Context) error { return nil })
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
