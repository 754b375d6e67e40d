package detect

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingJob struct {
	executed *int32
	done     func()
	err      error
}

func (j *countingJob) Execute(ctx context.Context) error {
	atomic.AddInt32(j.executed, 1)
	if j.done != nil {
		j.done()
	}
	return j.err
}

func TestWorkerPool_ExecutesSubmittedJobs(t *testing.T) {
	pool := NewWorkerPool(context.Background(), 2)

	var executed int32
	var wg sync.WaitGroup
	count := 10
	wg.Add(count)
	for i := 0; i < count; i++ {
		require.NoError(t, pool.Submit(&countingJob{executed: &executed, done: wg.Done}))
	}
	wg.Wait()
	pool.Close()

	assert.Equal(t, int32(count), atomic.LoadInt32(&executed))
}

func TestWorkerPool_ContinuesAfterJobError(t *testing.T) {
	pool := NewWorkerPool(context.Background(), 1)

	var executed int32
	var wg sync.WaitGroup
	wg.Add(2)
	require.NoError(t, pool.Submit(&countingJob{executed: &executed, done: wg.Done, err: errors.New("boom")}))
	require.NoError(t, pool.Submit(&countingJob{executed: &executed, done: wg.Done}))
	wg.Wait()
	pool.Close()

	assert.Equal(t, int32(2), atomic.LoadInt32(&executed))
}

func TestWorkerPool_Size(t *testing.T) {
	sized := NewWorkerPool(context.Background(), 3)
	defer sized.Close()
	assert.Equal(t, 3, sized.Size())

	defaulted := NewWorkerPool(context.Background(), 0)
	defer defaulted.Close()
	assert.GreaterOrEqual(t, defaulted.Size(), 1)
}
