package sim

import "container/heap"

// EventQueue implements heap.Interface over pending simulation events. Two
// events with the same Timestamp() never race: EventTypePriority breaks the
// tie by kind, and EventID breaks any remaining tie by arrival order, so a
// given event set always drains in one fixed order regardless of how it was
// pushed.
type EventQueue struct {
	events []Event
}

func (q *EventQueue) Len() int { return len(q.events) }

func (q *EventQueue) Less(i, j int) bool {
	a, b := q.events[i], q.events[j]
	if a.Timestamp() != b.Timestamp() {
		return a.Timestamp() < b.Timestamp()
	}
	pa, pb := EventTypePriority[a.Type()], EventTypePriority[b.Type()]
	if pa != pb {
		return pa < pb
	}
	return a.EventID() < b.EventID()
}

func (q *EventQueue) Swap(i, j int) { q.events[i], q.events[j] = q.events[j], q.events[i] }

func (q *EventQueue) Push(x any) {
	q.events = append(q.events, x.(Event))
}

func (q *EventQueue) Pop() any {
	old := q.events
	n := len(old)
	item := old[n-1]
	q.events = old[0 : n-1]
	return item
}

// Peek returns the next event without removing it, or nil if empty.
func (q *EventQueue) Peek() Event {
	if len(q.events) == 0 {
		return nil
	}
	return q.events[0]
}

func newEventQueue() *EventQueue {
	q := &EventQueue{events: make([]Event, 0)}
	heap.Init(q)
	return q
}
