package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueRetriesUntilSuccess(t *testing.T) {
	q := NewQueue("test", QueueConfig{Workers: 1, MaxRetries: 5, RetryDelay: 5 * time.Millisecond})
	var calls int32
	done := make(chan struct{})
	q.Register("distribute", func(ctx context.Context, job Job) error {
		if atomic.AddInt32(&calls, 1) < 3 {
			return errors.New("store unavailable")
		}
		close(done)
		return nil
	})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "n1", Type: "distribute"}))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("job was not retried to completion")
	}
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestQueueGivesUpAfterMaxRetries(t *testing.T) {
	q := NewQueue("test", QueueConfig{Workers: 1, MaxRetries: 2, RetryDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond})
	var calls int32
	q.Register("always-fails", func(ctx context.Context, job Job) error {
		atomic.AddInt32(&calls, 1)
		return errors.New("boom")
	})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "x", Type: "always-fails"}))

	assert.Eventually(t, func() bool { return atomic.LoadInt32(&calls) == 3 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestQueueEnqueueErrors(t *testing.T) {
	q := NewQueue("test", QueueConfig{})
	q.Register("known", func(ctx context.Context, job Job) error { return nil })

	require.Error(t, q.Enqueue(Job{Type: "known"}), "queue not started")

	q.Start(context.Background())
	defer q.Stop()
	require.Error(t, q.Enqueue(Job{Type: "unknown"}))
	require.NoError(t, q.Enqueue(Job{Type: "known"}))
}

func TestQueueBackoff(t *testing.T) {
	q := NewQueue("test", QueueConfig{RetryDelay: time.Second, MaxDelay: 5 * time.Second})
	assert.Equal(t, time.Second, q.backoff(1))
	assert.Equal(t, 2*time.Second, q.backoff(2))
	assert.Equal(t, 4*time.Second, q.backoff(3))
	assert.Equal(t, 5*time.Second, q.backoff(4))
}
