package handler

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/agora-platform/agoralog/core"
)

// Async handler states
const (
	stateRunning int32 = iota
	stateDraining
	stateStopped
)

// AsyncHandler decouples producers from writer I/O. Records are queued
// on one bounded channel and delivered to the underlying handler by a
// single consumer goroutine, batched by size and time.
//
// Ordering is FIFO within the queue only: with the Fallback policy,
// overflow records are written synchronously on the calling goroutine
// and may interleave out of order with records the consumer is
// concurrently flushing. That is a known, accepted trade for
// durability.
type AsyncHandler struct {
	underlying Handler

	queue   chan *core.Record // nil record is the drain sentinel
	closing chan struct{}

	onFull       OverflowPolicy
	batchSize    int
	batchTimeout time.Duration
	drainTimeout time.Duration
	flushTimeout time.Duration

	state     atomic.Int32
	stats     Stats
	wg        sync.WaitGroup
	errOutput io.Writer
}

// AsyncConfig holds configuration for the async handler
type AsyncConfig struct {
	// QueueSize is the bounded queue capacity (default: 10000)
	QueueSize int
	// OnFull is the overflow policy applied when the queue is full
	// (default: Drop)
	OnFull OverflowPolicy
	// BatchSize is the number of records flushed downstream at once
	// (default: 100)
	BatchSize int
	// BatchTimeout bounds how long a partial batch may wait
	// (default: 100ms)
	BatchTimeout time.Duration
	// DrainTimeout bounds the wait for the consumer on Close
	// (default: 5s)
	DrainTimeout time.Duration
	// FlushTimeout bounds the queue-empty poll in Flush (default: 10s)
	FlushTimeout time.Duration
	// ErrOutput receives drop reports and shutdown diagnostics
	// (default: os.Stderr)
	ErrOutput io.Writer
}

// NewAsyncHandler wraps the given handler and starts the consumer
// goroutine.
func NewAsyncHandler(underlying Handler, cfg AsyncConfig) *AsyncHandler {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 10000
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.BatchTimeout <= 0 {
		cfg.BatchTimeout = 100 * time.Millisecond
	}
	if cfg.DrainTimeout <= 0 {
		cfg.DrainTimeout = 5 * time.Second
	}
	if cfg.FlushTimeout <= 0 {
		cfg.FlushTimeout = 10 * time.Second
	}
	if cfg.ErrOutput == nil {
		cfg.ErrOutput = os.Stderr
	}

	h := &AsyncHandler{
		underlying:   underlying,
		queue:        make(chan *core.Record, cfg.QueueSize),
		closing:      make(chan struct{}),
		onFull:       cfg.OnFull,
		batchSize:    cfg.BatchSize,
		batchTimeout: cfg.BatchTimeout,
		drainTimeout: cfg.DrainTimeout,
		flushTimeout: cfg.FlushTimeout,
		errOutput:    cfg.ErrOutput,
	}

	h.wg.Add(1)
	go h.run()

	return h
}

// Emit queues the record for the consumer. Behavior when the queue is
// full depends on the overflow policy; see OverflowPolicy.
func (h *AsyncHandler) Emit(rec *core.Record) error {
	if h.state.Load() != stateRunning {
		return nil
	}

	switch h.onFull {
	case Block:
		select {
		case h.queue <- rec:
		case <-h.closing:
			// Shutting down; deliver directly rather than stall forever.
			_ = h.underlying.Emit(rec)
		}

	case Fallback:
		select {
		case h.queue <- rec:
		default:
			h.stats.IncrementDropped()
			// Queue full: trade ordering for durability and write on
			// the calling goroutine.
			_ = h.underlying.Emit(rec)
		}

	default: // Drop
		select {
		case h.queue <- rec:
		default:
			h.stats.IncrementDropped()
		}
	}

	return nil
}

// run is the single consumer goroutine: it accumulates queued records
// into a batch and flushes whenever the batch reaches batchSize or
// batchTimeout has elapsed since the last flush, whichever comes first.
func (h *AsyncHandler) run() {
	defer h.wg.Done()

	batch := make([]*core.Record, 0, h.batchSize)
	timer := time.NewTimer(h.batchTimeout)
	defer timer.Stop()

	for {
		select {
		case rec := <-h.queue:
			if rec == nil {
				// Drain sentinel: flush the partial batch and stop.
				h.writeBatch(&batch)
				return
			}
			batch = append(batch, rec)
			if len(batch) >= h.batchSize {
				h.writeBatch(&batch)
				h.resetBatchTimer(timer)
			}

		case <-timer.C:
			if len(batch) > 0 {
				h.writeBatch(&batch)
			}
			timer.Reset(h.batchTimeout)

		case <-h.closing:
			h.drain(&batch)
			return
		}
	}
}

// drain empties whatever is already queued, flushes, and exits. Used
// when Close could not enqueue the sentinel or closed the handler
// mid-wait.
func (h *AsyncHandler) drain(batch *[]*core.Record) {
	for {
		select {
		case rec := <-h.queue:
			if rec == nil {
				h.writeBatch(batch)
				return
			}
			*batch = append(*batch, rec)
			if len(*batch) >= h.batchSize {
				h.writeBatch(batch)
			}
		default:
			h.writeBatch(batch)
			return
		}
	}
}

// writeBatch delivers the buffered records to the underlying handler,
// one Emit per record, in order. Emit failures are already reported on
// the underlying handler's side channel and must not stop the consumer.
func (h *AsyncHandler) writeBatch(batch *[]*core.Record) {
	for _, rec := range *batch {
		if err := h.underlying.Emit(rec); err == nil {
			h.stats.IncrementProcessed()
		}
	}
	*batch = (*batch)[:0]
}

// resetBatchTimer restarts the batch deadline after a flush
func (h *AsyncHandler) resetBatchTimer(timer *time.Timer) {
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
	timer.Reset(h.batchTimeout)
}

// Flush polls until the queue empties, bounded by the flush timeout,
// then flushes the underlying handler. Best-effort only: a partial
// batch not yet past its deadline, or producers outrunning the
// consumer, can leave records in flight.
func (h *AsyncHandler) Flush() error {
	deadline := time.Now().Add(h.flushTimeout)
	for len(h.queue) > 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	return h.underlying.Flush()
}

// Close transitions Running to Draining, waits for the consumer up to
// the drain timeout, then flushes and closes the underlying handler.
// It never hangs indefinitely; if the consumer does not finish in time
// the shutdown proceeds anyway and says so on the side channel.
// Repeated calls are no-ops.
func (h *AsyncHandler) Close() error {
	if !h.state.CompareAndSwap(stateRunning, stateDraining) {
		return nil
	}

	// Drain sentinel; when the queue is full the closing channel below
	// carries the stop signal instead.
	select {
	case h.queue <- nil:
	default:
	}
	close(h.closing)

	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(h.drainTimeout):
		fmt.Fprintf(h.errOutput, "agoralog: async handler: consumer did not terminate within %v\n", h.drainTimeout)
	}
	h.state.Store(stateStopped)

	flushErr := h.underlying.Flush()
	closeErr := h.underlying.Close()

	if dropped := h.stats.Dropped(); dropped > 0 {
		fmt.Fprintf(h.errOutput, "agoralog: async handler: dropped %d records due to queue overflow\n", dropped)
	}

	if flushErr != nil {
		return flushErr
	}
	return closeErr
}

// Dropped returns the number of records dropped due to queue overflow
func (h *AsyncHandler) Dropped() uint64 {
	return h.stats.Dropped()
}

// Processed returns the number of records delivered to the underlying handler
func (h *AsyncHandler) Processed() uint64 {
	return h.stats.Processed()
}

// CanRecycleRecord returns false: queued records outlive Emit
func (h *AsyncHandler) CanRecycleRecord() bool {
	return false
}
