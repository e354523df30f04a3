package transport

import (
	"log/slog"
	"sync"
)

// Emitter is a serialized event dispatcher for Transport
// implementations. Emit never blocks: events queue in an unbounded
// FIFO mailbox and a single dispatch goroutine invokes handlers one
// event at a time, across all channels. That single-consumer
// discipline is what lets event consumers stay lock-free internally.
type Emitter struct {
	mu     sync.Mutex
	subs   map[Channel][]subscriber
	nextID uint64
	queue  []Event
	closed bool

	// kick wakes the dispatch goroutine after an enqueue; capacity 1
	// coalesces bursts.
	kick chan struct{}
	done chan struct{}
	wg   sync.WaitGroup

	logger *slog.Logger
}

type subscriber struct {
	id uint64
	fn Handler
}

// NewEmitter creates an Emitter and starts its dispatch goroutine.
// logger may be nil to disable operational logging.
func NewEmitter(logger *slog.Logger) *Emitter {
	e := &Emitter{
		subs:   make(map[Channel][]subscriber),
		kick:   make(chan struct{}, 1),
		done:   make(chan struct{}),
		logger: logger,
	}
	e.wg.Add(1)
	go e.dispatchLoop()
	return e
}

// Subscribe registers fn for events on ch. The returned cancel func
// removes the registration; calling it more than once is harmless.
func (e *Emitter) Subscribe(ch Channel, fn Handler) (cancel func()) {
	e.mu.Lock()
	id := e.nextID
	e.nextID++
	e.subs[ch] = append(e.subs[ch], subscriber{id: id, fn: fn})
	e.mu.Unlock()

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		entries := e.subs[ch]
		for i, s := range entries {
			if s.id == id {
				e.subs[ch] = append(entries[:i], entries[i+1:]...)
				return
			}
		}
	}
}

// Emit queues an event for dispatch and returns immediately.
// Events emitted after Close are dropped.
func (e *Emitter) Emit(ev Event) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.queue = append(e.queue, ev)
	e.mu.Unlock()

	select {
	case e.kick <- struct{}{}:
	default:
	}
}

// Close stops dispatch and waits for the in-flight handler, if any, to
// return. Events still queued are dropped. Safe to call more than once.
func (e *Emitter) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	e.mu.Unlock()

	close(e.done)
	e.wg.Wait()
}

func (e *Emitter) dispatchLoop() {
	defer e.wg.Done()

	for {
		select {
		case <-e.done:
			return
		case <-e.kick:
			e.drain()
		}
	}
}

// drain delivers queued events until the mailbox is empty. Handlers
// run outside the mutex, so a handler may Emit or Subscribe without
// deadlocking; anything it enqueues is picked up in the same pass.
func (e *Emitter) drain() {
	for {
		e.mu.Lock()
		if len(e.queue) == 0 {
			e.mu.Unlock()
			return
		}
		ev := e.queue[0]
		e.queue = e.queue[1:]
		entries := e.subs[ev.Channel()]
		handlers := make([]Handler, len(entries))
		for i, s := range entries {
			handlers[i] = s.fn
		}
		e.mu.Unlock()

		for _, fn := range handlers {
			e.call(fn, ev)
		}

		select {
		case <-e.done:
			return
		default:
		}
	}
}

// call invokes one handler, recovering panics so a misbehaving
// subscriber cannot kill the dispatch loop.
func (e *Emitter) call(fn Handler, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			if e.logger != nil {
				e.logger.Error("event handler panicked",
					"channel", ev.Channel().String(),
					"panic", r)
			}
		}
	}()
	fn(ev)
}
