package wiz

import "container/heap"

// priorityEntry is one (priority, id) pair sitting in the heap. generation
// lets pop() discard stale entries cheaply instead of mutating the heap in
// place on every update (spec.md §9, "Priority queue with decrease-key").
type priorityEntry struct {
	priority int
	id       string
	gen      int
}

type entryHeap []priorityEntry

func (h entryHeap) Len() int { return len(h) }
func (h entryHeap) Less(i, j int) bool {
	if h[i].priority != h[j].priority {
		return h[i].priority < h[j].priority
	}
	// Insertion-order tie-break (spec.md §4.E): lower generation was
	// pushed earlier.
	return h[i].gen < h[j].gen
}
func (h entryHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *entryHeap) Push(x interface{}) { *h = append(*h, x.(priorityEntry)) }
func (h *entryHeap) Pop() interface{} {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}

// priorityQueue is a decrease/increase-key priority queue keyed by node id:
// a dedicated map of current priorities plus a binary heap of stale-tolerant
// entries, rebuilt when it grows past 2x the live element count. Grounded
// directly in the original source's dict-backed _PriorityQueue
// (original_source wiz/graph.py) and in the teacher's own container/heap
// usage (solver.go).
type priorityQueue struct {
	current map[string]int
	gens    map[string]int
	nextGen int
	h       entryHeap
}

func newPriorityQueue() *priorityQueue {
	return &priorityQueue{
		current: make(map[string]int),
		gens:    make(map[string]int),
	}
}

// set assigns priority to id, pushing a fresh heap entry and rebuilding the
// heap from scratch once it has grown past 2x the number of live keys (to
// bound memory from accumulated stale entries).
func (q *priorityQueue) set(id string, priority int) {
	q.current[id] = priority
	q.nextGen++
	q.gens[id] = q.nextGen

	if len(q.h) < 2*len(q.current) {
		heap.Push(&q.h, priorityEntry{priority: priority, id: id, gen: q.nextGen})
	} else {
		q.rebuild()
	}
}

func (q *priorityQueue) rebuild() {
	q.h = q.h[:0]
	for id, p := range q.current {
		q.h = append(q.h, priorityEntry{priority: p, id: id, gen: q.gens[id]})
	}
	heap.Init(&q.h)
}

// empty reports whether the queue has no remaining live entries.
func (q *priorityQueue) empty() bool { return len(q.current) == 0 }

// popSmallest removes and returns the id with the lowest current priority,
// discarding stale heap entries whose (id, priority, gen) no longer match
// the authoritative map.
func (q *priorityQueue) popSmallest() string {
	for len(q.h) > 0 {
		e := heap.Pop(&q.h).(priorityEntry)
		if cur, ok := q.current[e.id]; ok && cur == e.priority && q.gens[e.id] == e.gen {
			delete(q.current, e.id)
			delete(q.gens, e.id)
			return e.id
		}
	}
	panic("wiz: popSmallest called on empty priorityQueue")
}

// priorityResult is the (priority, parent) pair computed for a node, or
// (nil, nil) when the node is unreachable from root.
type priorityResult struct {
	priority *int
	parent   string
}

// computePriorities computes, for every node reachable from root, the
// longest-path distance from root and the parent that achieves it — see
// spec.md §9's Open Question: despite being phrased as Dijkstra's
// shortest-path algorithm, the update rule keeps the *larger* candidate
// priority, which is what the extractor (§4.G) relies on to emit
// dependencies before dependents.
//
// Ties in the heap are broken by insertion order of priority updates,
// mirroring the order link creation discovered each node (spec.md §4.E).
func computePriorities(g *graph) map[string]priorityResult {
	g.hist.record(ActionDistanceComputation, map[string]interface{}{"nodes": len(g.live)})

	results := make(map[string]priorityResult, len(g.nodes)+1)
	for id := range g.nodes {
		results[id] = priorityResult{}
	}

	zero := 0
	results[RootID] = priorityResult{priority: &zero, parent: RootID}

	q := newPriorityQueue()
	q.set(RootID, 0)

	for !q.empty() {
		id := q.popSmallest()
		current := results[id].priority
		if current == nil {
			continue
		}

		for _, childID := range g.outgoing(id) {
			_, weight, ok := g.linkInfo(id, childID)
			if !ok {
				continue
			}
			candidate := *current + weight

			last := results[childID].priority
			if last == nil || *last < candidate {
				c := candidate
				results[childID] = priorityResult{priority: &c, parent: id}
				q.set(childID, candidate)
			}
		}
	}

	return results
}
