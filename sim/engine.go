package sim

import (
	"container/heap"

	"github.com/sirupsen/logrus"
)

// Listener is invoked after every event the Engine executes, whatever its
// type; there is no per-tag filtering. Listeners are registered with
// AddListener; the keep-alive hook (driver.go) is the primary consumer.
type Listener func(e *Engine, ev Event)

// Engine owns the simulation clock and the future-event min-heap. It is
// single-threaded and cooperative: exactly one event executes at a time,
// and no entity mutates state outside an event handler.
type Engine struct {
	Clock                 int64
	MinTimeBetweenEvents  int64
	queue                 *EventQueue
	nextEventID           uint64
	listeners             []Listener

	Datacenter *Datacenter
	Broker     *Broker
}

// NewEngine constructs an Engine with an empty event queue. Datacenter and
// Broker are wired in by the driver after construction (they need a
// reference back to the Engine to schedule their own events).
func NewEngine(minTimeBetweenEvents int64) *Engine {
	return &Engine{
		MinTimeBetweenEvents: minTimeBetweenEvents,
		queue:                newEventQueue(),
	}
}

// AddListener registers a hook fired after each executed event.
func (e *Engine) AddListener(l Listener) {
	e.listeners = append(e.listeners, l)
}

// nextID returns the next monotonic event sequence number, used solely to
// break timestamp+type ties deterministically.
func (e *Engine) nextID() uint64 {
	e.nextEventID++
	return e.nextEventID
}

// Schedule enqueues an event to run at the event's own Timestamp(). Callers
// build events with a delay already applied; same-tick (zero-delay) events
// are legal and common (a VmCreateEvent fires in the same tick as its
// request, a CloudletSubmitEvent fires immediately when the cloudlet has
// already arrived) since they are one-shot, not self-rescheduling, so they
// carry no runaway-loop risk. MinTimeBetweenEvents is enforced at the
// driver level instead: once per Reset, to let the initial VM fleet's
// VmCreateEvents settle before the first observation is built, and by the
// keep-alive listener during an episode's final stretch.
func (e *Engine) Schedule(ev Event) {
	heap.Push(e.queue, ev)
}

// IsRunning reports whether the engine has pending work: either a queued
// event, or unfinished cloudlets tracked by the broker (cloudlets in flight
// on a VM produce no queued event between ticks in some schedulers, so the
// broker's own bookkeeping is authoritative).
func (e *Engine) IsRunning() bool {
	if e.queue.Len() > 0 {
		return true
	}
	if e.Broker != nil {
		return e.Broker.HasUnfinishedWork()
	}
	return false
}

// defaultRunUntilBudget bounds the number of micro-steps RunUntil will
// process before giving up and logging, guarding against a runaway loop
// (e.g. a bug that keeps rescheduling a zero-delay event).
const defaultRunUntilBudget = 10000

// RunUntil processes every event with timestamp <= targetTime, firing
// listeners after each, and returns the resulting clock value: targetTime
// once no pending event is due at or before it (the clock is never moved
// backwards, so a clock already past targetTime is returned unchanged). If
// the iteration budget is exhausted before that point, RunUntil logs a
// warning and returns early, at the clock of the last event processed,
// rather than spinning.
func (e *Engine) RunUntil(targetTime int64) int64 {
	iterations := 0
	for {
		next := e.queue.Peek()
		if next == nil {
			break
		}
		if next.Timestamp() > targetTime {
			break
		}
		if iterations >= defaultRunUntilBudget {
			logrus.Warnf("RunUntil: iteration budget %d exhausted before reaching target %d (clock=%d)", defaultRunUntilBudget, targetTime, e.Clock)
			break
		}
		iterations++

		ev := heap.Pop(e.queue).(Event)
		if ev.Timestamp() > e.Clock {
			e.Clock = ev.Timestamp()
		}
		ev.Execute(e)
		for _, l := range e.listeners {
			l(e, ev)
		}
	}
	if e.Clock < targetTime {
		if next := e.queue.Peek(); next == nil || next.Timestamp() > targetTime {
			e.Clock = targetTime
		}
	}
	return e.Clock
}

// PendingEventCount reports how many events remain queued; used by the
// driver's keep-alive listener to detect the final stretch of an episode.
func (e *Engine) PendingEventCount() int {
	return e.queue.Len()
}
