package wiz

import "sort"

// Package is a resolved definition, already merged with its selected
// variant (if any). It is the element type of a Resolve result.
type Package = Definition

// extract returns the live nodes of g sorted by priority descending
// (deepest dependency first, per spec.md §4.G / §4.F step 4 — "Larger
// priority = farther from root = deeper dependency; dependencies come
// first so dependents see them already in scope"), tie-broken by
// insertion order.
func extract(g *graph, priorities map[string]priorityResult) []Package {
	ids := g.nodeIdentifiers()

	sort.SliceStable(ids, func(i, j int) bool {
		pi, pj := priorities[ids[i]].priority, priorities[ids[j]].priority
		switch {
		case pi == nil && pj == nil:
			return g.nodes[ids[i]].seq < g.nodes[ids[j]].seq
		case pi == nil:
			return false
		case pj == nil:
			return true
		case *pi != *pj:
			return *pi > *pj
		default:
			return g.nodes[ids[i]].seq < g.nodes[ids[j]].seq
		}
	})

	out := make([]Package, len(ids))
	for i, id := range ids {
		out[i] = g.nodes[id].definition
	}
	return out
}
