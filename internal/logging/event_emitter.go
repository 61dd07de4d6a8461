package logging

import (
	"sync"
	"time"

	"github.com/jutukuva/overlay-captions/internal/events"
)

// EventEmitter pushes log entries to the frontend log viewer in batches.
// Entries are queued on a bounded channel so a slow frontend can never stall
// the logging hot path.
type EventEmitter struct {
	mu sync.Mutex

	sink    events.Emitter
	enabled bool

	batchSize     int
	flushInterval time.Duration

	queue    chan LogEntry
	stopChan chan struct{}
	doneChan chan struct{}
}

// NewEventEmitter creates an emitter with default batching parameters.
func NewEventEmitter() *EventEmitter {
	return &EventEmitter{
		batchSize:     10,
		flushInterval: 100 * time.Millisecond,
	}
}

// Start begins forwarding queued entries to the sink. Called once the
// frontend has subscribed.
func (e *EventEmitter) Start(sink events.Emitter) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.enabled {
		return
	}

	e.sink = sink
	e.enabled = true
	e.stopChan = make(chan struct{})
	e.doneChan = make(chan struct{})

	// Bounded queue: when the frontend falls behind, entries are dropped
	// instead of blocking the logger.
	queueCap := e.batchSize * 200
	if queueCap < 100 {
		queueCap = 100
	}
	e.queue = make(chan LogEntry, queueCap)

	go e.batchSendLoop(e.sink, e.queue, e.stopChan, e.doneChan, e.batchSize, e.flushInterval)
}

// Stop shuts the emitter down and waits for the send loop to drain.
func (e *EventEmitter) Stop() {
	e.mu.Lock()
	if !e.enabled {
		e.mu.Unlock()
		return
	}
	e.enabled = false
	stopChan := e.stopChan
	doneChan := e.doneChan
	e.stopChan = nil
	e.doneChan = nil
	e.queue = nil
	e.mu.Unlock()

	if stopChan != nil {
		close(stopChan)
	}
	if doneChan != nil {
		<-doneChan
	}
}

// Emit queues one log entry. Never blocks: when the queue is full the entry
// is dropped, except that ERROR and WARN entries evict an older entry first.
func (e *EventEmitter) Emit(entry LogEntry) {
	e.mu.Lock()
	if !e.enabled || e.queue == nil {
		e.mu.Unlock()
		return
	}
	queue := e.queue
	e.mu.Unlock()

	select {
	case queue <- entry:
	default:
		if entry.Level == "ERROR" || entry.Level == "WARN" {
			select {
			case <-queue:
			default:
			}
			select {
			case queue <- entry:
			default:
			}
		}
	}
}

func (e *EventEmitter) batchSendLoop(
	sink events.Emitter,
	queue <-chan LogEntry,
	stop <-chan struct{},
	done chan<- struct{},
	batchSize int,
	flushInterval time.Duration,
) {
	defer close(done)

	if batchSize <= 0 {
		batchSize = 10
	}
	if flushInterval <= 0 {
		flushInterval = 100 * time.Millisecond
	}

	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	buffer := make([]LogEntry, 0, batchSize)
	flush := func() {
		if len(buffer) == 0 {
			return
		}
		if sink != nil {
			batch := make([]LogEntry, len(buffer))
			copy(batch, buffer)
			sink.Emit(events.LogBatch, batch)
		}
		buffer = buffer[:0]
	}

	for {
		select {
		case <-stop:
			// Drain what is already queued without blocking.
			for {
				select {
				case entry := <-queue:
					buffer = append(buffer, entry)
					if len(buffer) >= batchSize {
						flush()
					}
				default:
					flush()
					return
				}
			}
		case entry := <-queue:
			buffer = append(buffer, entry)
			if len(buffer) >= batchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}

// IsEnabled reports whether the emitter has been started.
func (e *EventEmitter) IsEnabled() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.enabled
}
