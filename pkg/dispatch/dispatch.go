// Package dispatch implements the Dispatch Layer (spec §4.5): it delivers
// translate/stream/batch/count operations from many concurrent HTTP
// handlers to the single decoder, serializing actual invocations while
// preserving FIFO admission order and propagating cancellation/timeouts.
//
// Grounded on the sharded workqueue pool of
// zetxqx-llm-d-kv-cache-manager/pkg/kvcache/kvevents/pool.go: the same
// get/process/done/forget loop over a
// k8s.io/client-go/util/workqueue.TypedRateLimitingInterface, adapted from
// that pool's fire-and-forget event processing to a request/response model
// (the HTTP handler needs the operation's result back), and narrowed from N
// shards to the single queue the decoder's single-flight constraint
// requires.
package dispatch

import (
	"context"
	"sync"
	"time"

	"k8s.io/client-go/util/workqueue"

	"github.com/pbusenius/nllb-api/pkg/apierr"
)

// job is the unit of work admitted to the queue. Its run closure captures
// the caller's typed result variables, letting Submit stay generic while
// the queue itself stays concrete (workqueue requires one comparable item
// type; *job, always a distinct pointer, never collides in the queue's
// dedup set, so FIFO order among submissions is preserved).
type job struct {
	ctx  context.Context
	run  func(ctx context.Context)
	done chan struct{}
}

// Dispatch is the single-decoder admission queue. Concurrency controls how
// many workers drain it in parallel; spec §4.5 calls for 1 unless the
// underlying binding is documented re-entrant.
type Dispatch struct {
	queue workqueue.TypedRateLimitingInterface[*job]
	wg    sync.WaitGroup
}

// New starts a Dispatch with concurrency workers. Callers must call
// Shutdown to drain and stop them.
func New(ctx context.Context, concurrency int) *Dispatch {
	if concurrency < 1 {
		concurrency = 1
	}

	d := &Dispatch{
		queue: workqueue.NewTypedRateLimitingQueue(workqueue.DefaultTypedControllerRateLimiter[*job]()),
	}

	d.wg.Add(concurrency)
	for i := 0; i < concurrency; i++ {
		go d.worker(ctx)
	}
	return d
}

func (d *Dispatch) worker(ctx context.Context) {
	defer d.wg.Done()
	for {
		j, shutdown := d.queue.Get()
		if shutdown {
			return
		}

		func() {
			defer d.queue.Done(j)
			defer close(j.done)
			if j.ctx.Err() != nil {
				return
			}
			j.run(j.ctx)
		}()
		d.queue.Forget(j)

		select {
		case <-ctx.Done():
			return
		default:
		}
	}
}

// Shutdown stops accepting new work, lets queued work drain, and waits for
// every worker to exit.
func (d *Dispatch) Shutdown() {
	d.queue.ShutDown()
	d.wg.Wait()
}

// Submit admits fn to the queue in FIFO order relative to every other
// Submit call on d, waits for it to run, and returns its result. If
// deadline is non-zero, fn is given that much time from admission
// (spec §4.5's optional 300s per-request deadline) and a TIMEOUT error is
// returned if it elapses — whether while still queued or while running,
// since fn itself is expected to select on ctx.Done() (as
// pkg/translator/pkg/decoder do) and return promptly.
func Submit[T any](d *Dispatch, ctx context.Context, deadline time.Duration, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	if deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, deadline)
		defer cancel()
	}

	var result T
	var runErr error
	j := &job{
		ctx: ctx,
		run: func(jobCtx context.Context) {
			result, runErr = fn(jobCtx)
		},
		done: make(chan struct{}),
	}

	d.queue.Add(j)

	select {
	case <-j.done:
		if j.ctx.Err() != nil && runErr == nil {
			return zero, apierr.Wrap(apierr.Timeout, "request deadline exceeded", j.ctx.Err())
		}
		return result, runErr
	case <-ctx.Done():
		return zero, apierr.Wrap(apierr.Timeout, "request deadline exceeded while queued", ctx.Err())
	}
}
