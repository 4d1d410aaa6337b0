package supervisor

import (
	"log"
	"sync/atomic"
	"time"

	"github.com/voyagent/voyagent/pkg/models"
)

// EventType represents the type of planning event.
type EventType string

const (
	// EventPlanStarted indicates a plan run has begun.
	EventPlanStarted EventType = "plan_started"
	// EventProviderStarted indicates a provider call has started.
	EventProviderStarted EventType = "provider_started"
	// EventProviderRetrying indicates a provider call failed transiently and
	// is being retried.
	EventProviderRetrying EventType = "provider_retrying"
	// EventProviderCompleted indicates a provider call succeeded.
	EventProviderCompleted EventType = "provider_completed"
	// EventProviderFailed indicates a provider call exhausted its retries.
	EventProviderFailed EventType = "provider_failed"
	// EventStageStarted indicates a pipeline stage (allocate, rank,
	// schedule) has started.
	EventStageStarted EventType = "stage_started"
	// EventPlanCompleted indicates the plan run finished.
	EventPlanCompleted EventType = "plan_completed"
)

// Event is emitted during planning. Events drive the progress display and
// are advisory: dropping one never affects the plan itself.
type Event struct {
	// Type is the kind of event.
	Type EventType
	// Provider is the related provider, if applicable.
	Provider models.ProviderID
	// Stage names the pipeline stage for stage events.
	Stage string
	// Message provides additional context.
	Message string
	// Err holds failure details for failure events.
	Err error
	// Attempt is the attempt number for retry events.
	Attempt int
	// Timestamp is when the event occurred.
	Timestamp time.Time
	// Elapsed is the running plan duration.
	Elapsed time.Duration
}

// EventEmitter provides a buffered, thread-safe event stream for
// subscribers such as the progress display.
type EventEmitter struct {
	events       chan Event
	droppedCount atomic.Uint64
}

// NewEventEmitter creates an emitter with the given buffer size.
func NewEventEmitter(bufferSize int) *EventEmitter {
	return &EventEmitter{events: make(chan Event, bufferSize)}
}

// Emit sends an event without blocking the planner. When the buffer is
// full the event is dropped and counted.
func (e *EventEmitter) Emit(ev Event) {
	if e == nil {
		return
	}
	ev.Timestamp = time.Now()
	select {
	case e.events <- ev:
	default:
		count := e.droppedCount.Add(1)
		if count%10 == 1 {
			log.Printf("[supervisor] event buffer full, dropped event (total dropped: %d): type=%s", count, ev.Type)
		}
	}
}

// DroppedCount returns how many events have been dropped.
func (e *EventEmitter) DroppedCount() uint64 {
	return e.droppedCount.Load()
}

// Events returns the read-only event stream.
func (e *EventEmitter) Events() <-chan Event {
	return e.events
}

// Close closes the event stream. Call only after planning has finished.
func (e *EventEmitter) Close() {
	close(e.events)
}
