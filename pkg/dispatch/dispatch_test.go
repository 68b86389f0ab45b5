package dispatch_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbusenius/nllb-api/pkg/apierr"
	"github.com/pbusenius/nllb-api/pkg/dispatch"
)

func TestSubmitReturnsResult(t *testing.T) {
	d := dispatch.New(context.Background(), 1)
	defer d.Shutdown()

	got, err := dispatch.Submit(d, context.Background(), 0, func(ctx context.Context) (string, error) {
		return "hello", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "hello", got)
}

func TestSubmitPropagatesError(t *testing.T) {
	d := dispatch.New(context.Background(), 1)
	defer d.Shutdown()

	wantErr := apierr.New(apierr.DecodeEmpty, "boom")
	_, err := dispatch.Submit(d, context.Background(), 0, func(ctx context.Context) (string, error) {
		return "", wantErr
	})
	assert.True(t, apierr.IsKind(err, apierr.DecodeEmpty))
}

// TestFIFOAdmissionOrder exercises spec §4.5's "FIFO fairness of admission":
// with a single worker, tasks submitted in order must be observed to start
// running in that same order.
func TestFIFOAdmissionOrder(t *testing.T) {
	d := dispatch.New(context.Background(), 1)
	defer d.Shutdown()

	const n = 20
	var mu sync.Mutex
	var started []int

	var wg sync.WaitGroup
	wg.Add(n)

	release := make(chan struct{})
	go func() {
		_, _ = dispatch.Submit(d, context.Background(), 0, func(ctx context.Context) (struct{}, error) {
			<-release
			return struct{}{}, nil
		})
	}()
	// Let the blocking task reach the worker before queuing the rest, so
	// every subsequent Submit below is still waiting in the queue when
	// release is closed.
	time.Sleep(10 * time.Millisecond)

	for i := 0; i < n; i++ {
		i := i
		go func() {
			defer wg.Done()
			_, _ = dispatch.Submit(d, context.Background(), 0, func(ctx context.Context) (struct{}, error) {
				mu.Lock()
				started = append(started, i)
				mu.Unlock()
				return struct{}{}, nil
			})
		}()
		// Give each submission time to reach the queue before the next,
		// since admission order (not goroutine scheduling order) is what
		// FIFO fairness governs.
		time.Sleep(time.Millisecond)
	}

	close(release)
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, started, n)
	for i := 0; i < n; i++ {
		assert.Equal(t, i, started[i])
	}
}

// TestBoundedConcurrency exercises "at most one in-flight invocation ...
// at any time" for a single-worker Dispatch.
func TestBoundedConcurrency(t *testing.T) {
	d := dispatch.New(context.Background(), 1)
	defer d.Shutdown()

	var inFlight int32
	var maxObserved int32
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = dispatch.Submit(d, context.Background(), 0, func(ctx context.Context) (struct{}, error) {
				n := atomic.AddInt32(&inFlight, 1)
				for {
					old := atomic.LoadInt32(&maxObserved)
					if n <= old || atomic.CompareAndSwapInt32(&maxObserved, old, n) {
						break
					}
				}
				time.Sleep(2 * time.Millisecond)
				atomic.AddInt32(&inFlight, -1)
				return struct{}{}, nil
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxObserved)
}

func TestSubmitTimesOutWhileRunning(t *testing.T) {
	d := dispatch.New(context.Background(), 1)
	defer d.Shutdown()

	_, err := dispatch.Submit(d, context.Background(), 10*time.Millisecond, func(ctx context.Context) (struct{}, error) {
		<-ctx.Done()
		return struct{}{}, ctx.Err()
	})
	assert.True(t, apierr.IsKind(err, apierr.Timeout))
}

func TestSubmitCancellationWhileQueued(t *testing.T) {
	d := dispatch.New(context.Background(), 1)
	defer d.Shutdown()

	block := make(chan struct{})
	go func() {
		_, _ = dispatch.Submit(d, context.Background(), 0, func(ctx context.Context) (struct{}, error) {
			<-block
			return struct{}{}, nil
		})
	}()
	time.Sleep(5 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := dispatch.Submit(d, ctx, 0, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, nil
	})
	assert.True(t, apierr.IsKind(err, apierr.Timeout))
	close(block)
}
