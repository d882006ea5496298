package jobqueue

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexforge/lexforge/internal/pkg/cache"
)

func newTestQueue(t *testing.T) (*Queue, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	cache.SetClient(client)

	q := NewQueue(client, 2)
	q.retryBackoff = 10 * time.Millisecond
	return q, mr
}

func dequeueAndProcess(t *testing.T, q *Queue) *Job {
	t.Helper()
	ctx := context.Background()
	job, err := q.dequeueJob(ctx)
	require.NoError(t, err)
	q.processJob(ctx, job)
	return job
}

func TestEnqueueJob(t *testing.T) {
	q, _ := newTestQueue(t)
	ctx := context.Background()

	job, err := q.EnqueuePaymentSync(ctx, PaymentSyncPayload{PaymentID: "123"})
	require.NoError(t, err)
	assert.Equal(t, JobTypePaymentSync, job.Type)
	assert.Equal(t, JobStatusPending, job.Status)
	assert.Equal(t, DefaultMaxRetries, job.MaxRetries)

	size, err := q.GetQueueSize(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), size)

	stored, err := q.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, "123", stored.Payload["payment_id"])

	stats, err := q.GetJobStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats[JobStatusPending])
}

func TestProcessJobSuccess(t *testing.T) {
	q, _ := newTestQueue(t)
	ctx := context.Background()

	var seen string
	q.Register(JobTypePaymentSync, func(_ context.Context, job *Job) error {
		seen = job.Payload["payment_id"].(string)
		return nil
	})

	job, err := q.EnqueuePaymentSync(ctx, PaymentSyncPayload{PaymentID: "987"})
	require.NoError(t, err)
	dequeueAndProcess(t, q)

	assert.Equal(t, "987", seen)
	_, err = q.GetJob(ctx, job.ID)
	assert.ErrorIs(t, err, redis.Nil)

	processing, err := q.GetProcessingSize(ctx)
	require.NoError(t, err)
	assert.Zero(t, processing)

	stats, err := q.GetJobStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats[JobStatusCompleted])
}

func TestProcessJobRetriesThenFails(t *testing.T) {
	q, _ := newTestQueue(t)
	ctx := context.Background()

	var calls int32
	q.Register(JobTypeDocumentArchive, func(context.Context, *Job) error {
		atomic.AddInt32(&calls, 1)
		return errors.New("bucket unavailable")
	})

	job, err := q.EnqueueDocumentArchive(ctx, DocumentArchivePayload{DocumentID: "d", FilePath: "/tmp/d.pdf"})
	require.NoError(t, err)

	for attempt := 1; attempt <= DefaultMaxRetries; attempt++ {
		dequeueAndProcess(t, q)
		stored, err := q.GetJob(ctx, job.ID)
		require.NoError(t, err)
		assert.Equal(t, attempt, stored.RetryCount)
		assert.Equal(t, "bucket unavailable", stored.ErrorMsg)

		if attempt < DefaultMaxRetries {
			assert.Equal(t, JobStatusRetrying, stored.Status)
			assert.Eventually(t, func() bool {
				n, _ := q.GetQueueSize(ctx)
				return n == 1
			}, time.Second, 5*time.Millisecond)
		} else {
			assert.Equal(t, JobStatusFailed, stored.Status)
		}
	}

	assert.Equal(t, int32(DefaultMaxRetries), atomic.LoadInt32(&calls))
	stats, err := q.GetJobStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats[JobStatusFailed])
}

func TestProcessJobWithoutHandlerFailsOnce(t *testing.T) {
	q, _ := newTestQueue(t)
	ctx := context.Background()

	job, err := q.EnqueueJob(ctx, JobType("unknown"), nil)
	require.NoError(t, err)
	dequeueAndProcess(t, q)

	stored, err := q.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, JobStatusFailed, stored.Status)
	assert.Contains(t, stored.ErrorMsg, "no handler")

	size, _ := q.GetQueueSize(ctx)
	assert.Zero(t, size)
}

func TestProcessJobRecoversPanics(t *testing.T) {
	q, _ := newTestQueue(t)
	ctx := context.Background()
	q.Register(JobTypePaymentSync, func(context.Context, *Job) error {
		panic("nil map")
	})

	job, err := q.EnqueuePaymentSync(ctx, PaymentSyncPayload{PaymentID: "1"})
	require.NoError(t, err)
	dequeueAndProcess(t, q)

	stored, err := q.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Contains(t, stored.ErrorMsg, "panicked")
}

func TestRecoverStuckJobs(t *testing.T) {
	q, _ := newTestQueue(t)
	ctx := context.Background()

	job, err := q.EnqueuePaymentSync(ctx, PaymentSyncPayload{PaymentID: "1"})
	require.NoError(t, err)
	dequeued, err := q.dequeueJob(ctx)
	require.NoError(t, err)
	dequeued.MarkAsProcessing()
	old := time.Now().Add(-time.Hour)
	dequeued.ProcessedAt = &old
	q.updateJob(ctx, dequeued)

	// a stray id without job data is dropped
	require.NoError(t, q.client.LPush(ctx, JobProcessingKey, "ghost").Err())

	assert.Equal(t, 0, q.recoverStuckJobs(ctx, 2*time.Hour, time.Now()))
	assert.Equal(t, 1, q.recoverStuckJobs(ctx, 10*time.Minute, time.Now()))

	processing, _ := q.GetProcessingSize(ctx)
	assert.Zero(t, processing)
	size, _ := q.GetQueueSize(ctx)
	assert.Equal(t, int64(1), size)

	stored, err := q.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, JobStatusPending, stored.Status)
	assert.Equal(t, "recovered by sweeper", stored.ErrorMsg)
}

func TestQueueWorkersProcessJobs(t *testing.T) {
	q, _ := newTestQueue(t)
	ctx := context.Background()

	done := make(chan string, 3)
	q.Register(JobTypePaymentSync, func(_ context.Context, job *Job) error {
		done <- job.Payload["payment_id"].(string)
		return nil
	})

	q.Start()
	for _, id := range []string{"a", "b", "c"} {
		_, err := q.EnqueuePaymentSync(ctx, PaymentSyncPayload{PaymentID: id})
		require.NoError(t, err)
	}

	got := map[string]bool{}
	for i := 0; i < 3; i++ {
		select {
		case id := <-done:
			got[id] = true
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for jobs")
		}
	}
	q.Stop()

	assert.Equal(t, map[string]bool{"a": true, "b": true, "c": true}, got)
}
