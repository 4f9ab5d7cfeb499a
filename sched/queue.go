package sched

import "container/heap"

// eventItem is one entry in the discrete-event min-heap, keyed
// (tick, id) so ties between components due at the same tick resolve
// by ascending component id — a stable, deterministic secondary key.
type eventItem struct {
	tick uint64
	id   ComponentID
}

// eventQueue is a container/heap-backed min-heap over eventItem,
// giving the discrete-event driver O(log n) pop-minimum without a
// third-party priority-queue dependency (none is exercised elsewhere
// in the pack; container/heap is the idiomatic stdlib choice the
// teacher itself never needed but would reach for here).
type eventQueue []eventItem

func (q eventQueue) Len() int { return len(q) }
func (q eventQueue) Less(i, j int) bool {
	if q[i].tick != q[j].tick {
		return q[i].tick < q[j].tick
	}
	return q[i].id < q[j].id
}
func (q eventQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *eventQueue) Push(x any) {
	*q = append(*q, x.(eventItem))
}

func (q *eventQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

// EventQueue wraps eventQueue behind heap.Interface's Init/Push/Pop so
// callers never touch the raw slice.
type EventQueue struct {
	items eventQueue
}

// NewEventQueue returns an empty event queue.
func NewEventQueue() *EventQueue {
	eq := &EventQueue{}
	heap.Init(&eq.items)
	return eq
}

// Schedule pushes a (tick, id) entry.
func (q *EventQueue) Schedule(tick uint64, id ComponentID) {
	heap.Push(&q.items, eventItem{tick: tick, id: id})
}

// Len reports the number of pending entries.
func (q *EventQueue) Len() int { return q.items.Len() }

// Pop removes and returns the smallest (tick, id) entry.
func (q *EventQueue) Pop() (uint64, ComponentID) {
	item := heap.Pop(&q.items).(eventItem)
	return item.tick, item.id
}
