package queue

import (
	"context"
	"errors"
	"hash/fnv"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
)

const (
	defaultWorkers = 8
	channelBuffer  = 256
)

// ErrStopped is returned for work submitted after the dispatcher shut down.
var ErrStopped = errors.New("dispatcher stopped")

// Job states. A queued job is claimed exactly once: by its worker, which
// then runs it, or by its caller, which then stops waiting for it.
const (
	jobPending int32 = iota
	jobRunning
	jobAbandoned
)

type job struct {
	ctx   context.Context
	key   int64
	fn    func(ctx context.Context) error
	done  chan error
	state atomic.Int32
}

func (j *job) claim(state int32) bool {
	return j.state.CompareAndSwap(jobPending, state)
}

// Dispatcher runs jobs on a fixed set of workers, sharded by key, so jobs
// for the same key never overlap and run in submission order.
type Dispatcher struct {
	workers []chan *job
	quit    chan struct{}
	once    sync.Once
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan *job, numWorkers),
		quit:    make(chan struct{}),
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan *job, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled;
// pending and later submissions then fail with ErrStopped.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
	go func() {
		<-ctx.Done()
		d.once.Do(func() { close(d.quit) })
	}()
}

// Run submits fn to the worker owning key and waits for its result.
//
// If ctx ends or the dispatcher stops while the job is still queued, the job
// is dropped and Run returns ctx.Err() or ErrStopped. Once fn has started,
// Run always returns fn's own result, so a nil error means fn completed.
func (d *Dispatcher) Run(ctx context.Context, key int64, fn func(ctx context.Context) error) error {
	j := &job{ctx: ctx, key: key, fn: fn, done: make(chan error, 1)}

	select {
	case d.workers[d.shardIndex(key)] <- j:
	case <-ctx.Done():
		return ctx.Err()
	case <-d.quit:
		return ErrStopped
	}

	select {
	case err := <-j.done:
		return err
	case <-ctx.Done():
		if j.claim(jobAbandoned) {
			return ctx.Err()
		}
	case <-d.quit:
		if j.claim(jobAbandoned) {
			return ErrStopped
		}
	}
	return <-j.done
}

// shardIndex maps a key deterministically to a worker index.
func (d *Dispatcher) shardIndex(key int64) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strconv.FormatInt(key, 10)))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan *job) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-ch:
			if !j.claim(jobRunning) {
				continue
			}
			if err := j.ctx.Err(); err != nil {
				j.done <- err
				continue
			}
			err := j.fn(j.ctx)
			if err != nil {
				d.log.Debug().Err(err).
					Int64("key", j.key).
					Int("worker_id", id).
					Msg("job failed")
			}
			j.done <- err
		}
	}
}
