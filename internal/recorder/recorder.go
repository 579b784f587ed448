// Package recorder is the append-only audit sink for trade legs and chain
// steps. Records flow through a bounded non-blocking queue into a background
// writer, so a slow or failing store structurally cannot stall or influence
// the trading walk.
package recorder

import (
	"context"
	"errors"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"crossfill/internal/domain"
	"crossfill/internal/observability"
	"crossfill/internal/storage"
)

var (
	ErrQueueFull   = errors.New("recorder queue full")
	ErrQueueClosed = errors.New("recorder queue closed")
)

// record is the unit passed through the queue. Exactly one field is set.
type record struct {
	leg   *domain.TradeLeg
	steps []domain.ChainStep
}

// Recorder buffers audit records and writes them in the background.
type Recorder struct {
	trades storage.TradeStore
	steps  storage.ChainStepStore

	ch     chan record
	closed uint32

	// writeTimeout bounds each background store write.
	writeTimeout time.Duration

	wg sync.WaitGroup
}

// Options configures a Recorder.
type Options struct {
	Trades storage.TradeStore
	Steps  storage.ChainStepStore
	// QueueSize is the queue capacity; records beyond it are dropped.
	QueueSize int
	// WriteTimeout bounds each store write. Defaults to 10s.
	WriteTimeout time.Duration
}

// New allocates a Recorder and starts its background writer.
func New(opts Options) *Recorder {
	size := opts.QueueSize
	if size <= 0 {
		size = 1024
	}
	timeout := opts.WriteTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	r := &Recorder{
		trades:       opts.Trades,
		steps:        opts.Steps,
		ch:           make(chan record, size),
		writeTimeout: timeout,
	}

	r.wg.Add(1)
	go r.run()

	return r
}

// RecordLeg enqueues a trade leg. Never blocks; a full queue drops the
// record and counts the drop.
func (r *Recorder) RecordLeg(leg domain.TradeLeg) {
	if err := r.tryPublish(record{leg: &leg}); err != nil {
		observability.RecordRecorderDrop()
		log.Printf("[recorder] dropping trade leg (session=%s): %v", leg.SessionID, err)
	}
}

// RecordSteps enqueues a batch of chain steps. Never blocks.
func (r *Recorder) RecordSteps(steps []domain.ChainStep) {
	if len(steps) == 0 {
		return
	}
	batch := append([]domain.ChainStep(nil), steps...)
	if err := r.tryPublish(record{steps: batch}); err != nil {
		observability.RecordRecorderDrop()
		log.Printf("[recorder] dropping %d chain steps (session=%s): %v", len(batch), batch[0].SessionID, err)
	}
}

func (r *Recorder) tryPublish(rec record) error {
	if atomic.LoadUint32(&r.closed) != 0 {
		return ErrQueueClosed
	}
	select {
	case r.ch <- rec:
		observability.UpdateRecorderQueueDepth(len(r.ch))
		return nil
	default:
		return ErrQueueFull
	}
}

// Close stops accepting records, drains what is already queued and waits
// for the writer to finish.
func (r *Recorder) Close() {
	if atomic.CompareAndSwapUint32(&r.closed, 0, 1) {
		close(r.ch)
	}
	r.wg.Wait()
}

func (r *Recorder) run() {
	defer r.wg.Done()

	for rec := range r.ch {
		observability.UpdateRecorderQueueDepth(len(r.ch))
		r.write(rec)
	}
}

func (r *Recorder) write(rec record) {
	ctx, cancel := context.WithTimeout(context.Background(), r.writeTimeout)
	defer cancel()

	switch {
	case rec.leg != nil:
		err := r.trades.Insert(ctx, rec.leg)
		observability.RecordRecorderWrite("trade_leg", err)
		if err != nil {
			log.Printf("[recorder] trade leg write failed (session=%s): %v", rec.leg.SessionID, err)
		}
	case rec.steps != nil:
		ptrs := make([]*domain.ChainStep, len(rec.steps))
		for i := range rec.steps {
			ptrs[i] = &rec.steps[i]
		}
		err := r.steps.InsertBulk(ctx, ptrs)
		observability.RecordRecorderWrite("chain_steps", err)
		if err != nil {
			log.Printf("[recorder] chain step write failed (session=%s): %v", rec.steps[0].SessionID, err)
		}
	}
}
