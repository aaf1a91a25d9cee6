package audit

import (
	"context"
	"sync"
	"sync/atomic"
)

// Config controls how lease events are buffered between the engine and a sink.
type Config struct {
	Enabled    bool
	BufferSize int
	// DropIfFull drops events instead of blocking the emitting goroutine
	// when the buffer is full.
	DropIfFull bool
}

// Stats is a point-in-time view of dispatcher accounting.
type Stats struct {
	Accepted  uint64
	Delivered uint64
	Dropped   uint64
	Pending   int
}

// Dispatcher forwards lease events to a sink from a single background
// goroutine, so sinks see events in emission order. Every accepted event is
// delivered before Close returns.
type Dispatcher struct {
	sink       Sink
	queue      chan Event
	dropIfFull bool

	// mu guards closed; Emit holds it shared while enqueueing so Close
	// cannot stop the worker between an accept and the send.
	mu      sync.RWMutex
	closed  bool
	stop    chan struct{}
	stopped chan struct{}

	accepted  atomic.Uint64
	delivered atomic.Uint64
	dropped   atomic.Uint64
}

// NewDispatcher returns nil when auditing is disabled; a nil *Dispatcher
// accepts and discards every call.
func NewDispatcher(cfg Config, sink Sink) *Dispatcher {
	if !cfg.Enabled {
		return nil
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1
	}
	if sink == nil {
		sink = NoOpSink{}
	}
	d := &Dispatcher{
		sink:       sink,
		queue:      make(chan Event, cfg.BufferSize),
		dropIfFull: cfg.DropIfFull,
		stop:       make(chan struct{}),
		stopped:    make(chan struct{}),
	}
	go d.loop()
	return d
}

func (d *Dispatcher) loop() {
	defer close(d.stopped)
	for {
		select {
		case event := <-d.queue:
			d.forward(event)
		case <-d.stop:
			d.flush()
			return
		}
	}
}

func (d *Dispatcher) flush() {
	for {
		select {
		case event := <-d.queue:
			d.forward(event)
		default:
			return
		}
	}
}

func (d *Dispatcher) forward(event Event) {
	d.sink.Emit(context.Background(), event)
	d.delivered.Add(1)
}

// Emit queues event and reports whether it was accepted. With DropIfFull a
// full buffer drops the event; otherwise Emit waits for room until ctx ends.
// Events emitted after Close are ignored and not counted.
func (d *Dispatcher) Emit(ctx context.Context, event Event) bool {
	if d == nil {
		return false
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return false
	}

	if d.dropIfFull {
		select {
		case d.queue <- event:
			d.accepted.Add(1)
			return true
		default:
			d.dropped.Add(1)
			return false
		}
	}

	if ctx == nil {
		ctx = context.Background()
	}
	select {
	case d.queue <- event:
		d.accepted.Add(1)
		return true
	case <-ctx.Done():
		d.dropped.Add(1)
		return false
	}
}

// Close stops accepting events and waits until the buffer is flushed to the sink.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.stop)
	}
	d.mu.Unlock()
	<-d.stopped
}

func (d *Dispatcher) Stats() Stats {
	if d == nil {
		return Stats{}
	}
	return Stats{
		Accepted:  d.accepted.Load(),
		Delivered: d.delivered.Load(),
		Dropped:   d.dropped.Load(),
		Pending:   len(d.queue),
	}
}
