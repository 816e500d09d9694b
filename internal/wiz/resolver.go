package wiz

import "sort"

// conflictOutcome is the sum-type result of one resolveConflicts pass, per
// spec.md §9's design note: "Prefer an explicit result variant (Resolved |
// Diverged | Failed(err)) so the outer loop branches on a sum type rather
// than catching a sentinel error."
type conflictOutcome int

const (
	outcomeResolved conflictOutcome = iota
	outcomeDiverged
	outcomeFailed
)

type conflictResult struct {
	outcome conflictOutcome
	err     error
}

// Resolve is the resolver entry point described in spec.md §4.F: given an
// ordered list of root request strings and a built Registry, it produces a
// deterministic linear order of definitions that jointly satisfy every
// transitive requirement, or a WizError diagnosing why no arrangement
// could.
//
// The returned History is additive diagnostic detail only; it never
// affects the Definiteness or ordering of the returned package list (see
// spec.md §8's Determinism property, which applies to the package list).
func Resolve(registry *Registry, requests []string) ([]Definition, *History, error) {
	hist := NewHistory()

	parsed, err := parseRequests(requests)
	if err != nil {
		return nil, hist, err
	}
	parsed = append(parsed, implicitRequirements(registry)...)

	hist.record(ActionFetchDefinitions, map[string]interface{}{"requests": requests})

	root := newGraph(registry, hist)
	hist.record(ActionGraphGenerate, nil)
	if err := root.addRootRequirements(parsed); err != nil {
		return nil, hist, err
	}

	stack := []*graph{root}
	var lastErr error

	for len(stack) > 0 {
		g := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		priorities := computePriorities(g)

		if groups := g.variantGroupList(); len(groups) > 0 {
			alternatives := divide(g, priorities, groups)
			hist.record(ActionGraphDivided, map[string]interface{}{
				"groups": len(groups), "alternatives": len(alternatives),
			})
			stack = append(stack, alternatives...)
			continue
		}

		result := resolveConflicts(g, hist)
		switch result.outcome {
		case outcomeResolved:
			priorities = computePriorities(g)
			packages := extract(g, priorities)
			hist.record(ActionPackagesExtraction, map[string]interface{}{"count": len(packages)})
			return packages, hist, nil
		default:
			lastErr = result.err
			hist.record(ActionResolutionFailure, map[string]interface{}{"error": result.err.Error()})
			continue
		}
	}

	if lastErr == nil {
		lastErr = RequestNotFound("no arrangement of packages satisfies the given requests")
	}
	return nil, hist, lastErr
}

func parseRequests(requests []string) ([]Requirement, error) {
	out := make([]Requirement, 0, len(requests))
	for _, raw := range requests {
		req, err := ParseRequirement(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, nil
}

// implicitRequirements returns bare-name requirements for every auto-use
// identifier in the registry's Implicit list, per spec.md §4.B/§4.F
// (scenario 6: "Auto-use ... request: empty. Output includes A.").
func implicitRequirements(registry *Registry) []Requirement {
	out := make([]Requirement, len(registry.Implicit))
	for i, id := range registry.Implicit {
		out[i] = Requirement{Name: id}
	}
	return out
}

// divide produces the Cartesian product of variant choices across groups,
// per spec.md §4.F step (c): sorted nearest-to-root first, pushed onto the
// stack in reverse combinatorial order so earlier-declared variants are
// popped (tried) first.
func divide(g *graph, priorities map[string]priorityResult, groups [][]string) []*graph {
	sorted := append([][]string(nil), groups...)
	sort.SliceStable(sorted, func(i, j int) bool {
		pi, pj := priorities[sorted[i][0]].priority, priorities[sorted[j][0]].priority
		if pi == nil || pj == nil {
			return pi != nil
		}
		return *pi < *pj
	})

	graphList := []*graph{g.copy()}
	for _, group := range sorted {
		var next []*graph
		for _, gg := range graphList {
			for _, chosen := range group {
				copied := gg.copy()
				for _, other := range group {
					if other != chosen {
						copied.removeNode(other)
					}
				}
				next = append(next, copied)
			}
		}
		graphList = next
	}

	for _, gg := range graphList {
		gg.resetVariantGroups()
	}

	out := make([]*graph, 0, len(graphList))
	for i := len(graphList) - 1; i >= 0; i-- {
		out = append(out, graphList[i])
	}
	return out
}

// resolveConflicts repeatedly resolves the farthest-from-root conflicting
// node in g per spec.md §4.F's conflict-resolution algorithm (steps 1–8),
// until no conflicts remain (outcomeResolved), an irreducible conflict or
// registry-query error surfaces (outcomeFailed), or newly-added candidates
// introduce fresh variant groups (outcomeDiverged, the "graph divided"
// signal from spec.md §9).
func resolveConflicts(g *graph, hist *History) conflictResult {
	pending := g.conflicts()

	for {
		priorities := computePriorities(g)

		for _, id := range g.nodeIdentifiers() {
			if priorities[id].priority == nil {
				g.removeNode(id)
			}
		}

		pending = filterLive(g, pending)
		if len(pending) == 0 {
			return conflictResult{outcome: outcomeResolved}
		}

		hist.record(ActionVersionConflicts, map[string]interface{}{"nodes": pending})

		sort.SliceStable(pending, func(i, j int) bool {
			pi, pj := priorities[pending[i]].priority, priorities[pending[j]].priority
			if pi == nil || pj == nil {
				return pj != nil
			}
			return *pi < *pj
		})

		n := pending[len(pending)-1]
		pending = pending[:len(pending)-1]

		definitionID := g.node(n).definition.Identifier
		siblings := removeFrom(g.nodeIdentifiersForDefinition(definitionID), n)

		if err := validateCompatibility(g, n, siblings); err != nil {
			return conflictResult{outcome: outcomeFailed, err: err}
		}

		combined := combinedRequirement(g, append([]string{n}, siblings...), priorities)

		candidates, err := g.source.Resolve(combined)
		if err != nil {
			return conflictResult{outcome: outcomeFailed, err: err}
		}
		candidateIDs := make([]string, len(candidates))
		for i, d := range candidates {
			candidateIDs[i] = NodeIdentifier(d)
		}

		if !contains(candidateIDs, n) {
			g.removeNode(n)

			newIDs := setDifference(candidateIDs, siblings)
			if len(newIDs) > 0 {
				if err := g.addRequirement(combined, RootID, 1); err != nil {
					return conflictResult{outcome: outcomeFailed, err: err}
				}
				hist.record(ActionGraphUpdate, map[string]interface{}{
					"requirement": combined.String(), "added": newIDs,
				})
				pending = unionStrings(pending, g.conflicts())

				priorities = computePriorities(g)
				if len(g.variantGroupList()) > 0 {
					return conflictResult{
						outcome: outcomeDiverged,
						err:     IncorrectDefinition("graph divided while resolving a version conflict"),
					}
				}
			}
		}
	}
}

type reqParentPair struct {
	requirement Requirement
	parent      string
}

func computeRequirementMapping(g *graph, id string) []reqParentPair {
	n := g.node(id)
	if n == nil {
		return nil
	}
	var out []reqParentPair
	for parentID := range n.parents {
		if parentID != RootID && !g.nodeExists(parentID) {
			continue
		}
		req, _, ok := g.linkInfo(parentID, id)
		if ok {
			out = append(out, reqParentPair{requirement: req, parent: parentID})
		}
	}
	return out
}

// validateCompatibility enforces spec.md §4.F step 5: for the farthest
// conflicting node n and each sibling in siblings sharing its definition
// identifier, every pair of requirements incident on {n} ∪ {sibling} is
// rejected when neither n's version satisfies the second requirement nor
// the sibling's version satisfies the first, or when the two request
// different variant extras.
func validateCompatibility(g *graph, n string, siblings []string) error {
	node1 := g.node(n)
	mapping1 := computeRequirementMapping(g, n)

	for _, s := range siblings {
		node2 := g.node(s)
		mapping2 := computeRequirementMapping(g, s)

		combined := append(append([]reqParentPair(nil), mapping1...), mapping2...)
		for i := 0; i < len(combined); i++ {
			for j := i + 1; j < len(combined); j++ {
				r1, r2 := combined[i], combined[j]

				matches1, err1 := r2.requirement.Matches(node1.definition.Version)
				matches2, err2 := r1.requirement.Matches(node2.definition.Version)

				conflict := false
				if err1 == nil && err2 == nil && !matches1 && !matches2 {
					conflict = true
				} else if !r1.requirement.SameExtras(r2.requirement) {
					conflict = true
				}

				if conflict {
					return newGraphResolutionError([]conflictDetail{{
						definition:   node1.definition.Identifier,
						requirement1: r1.requirement.String(),
						requirement2: r2.requirement.String(),
						parent1:      r1.parent,
						parent2:      r2.parent,
					}})
				}
			}
		}
	}
	return nil
}

// combinedRequirement intersects, for every id in ids, the requirement
// carried on the link from that node's best (priority) parent, per
// spec.md §4.F step 6. Requirements with different names in the same
// conflict set are an internal invariant violation (see Requirement.
// Intersect), not a resolution error.
func combinedRequirement(g *graph, ids []string, priorities map[string]priorityResult) Requirement {
	var result Requirement
	first := true
	for _, id := range ids {
		parent := priorities[id].parent
		req, _, ok := g.linkInfo(parent, id)
		if !ok {
			continue
		}
		if first {
			result = req
			first = false
		} else {
			result = result.Intersect(req)
		}
	}
	return result
}

func filterLive(g *graph, ids []string) []string {
	out := ids[:0]
	for _, id := range ids {
		if g.nodeExists(id) {
			out = append(out, id)
		}
	}
	return out
}

func removeFrom(ids []string, target string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != target {
			out = append(out, id)
		}
	}
	return out
}

func contains(ids []string, target string) bool {
	for _, id := range ids {
		if id == target {
			return true
		}
	}
	return false
}

func setDifference(a, b []string) []string {
	excl := make(map[string]struct{}, len(b))
	for _, id := range b {
		excl[id] = struct{}{}
	}
	var out []string
	for _, id := range a {
		if _, ok := excl[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}

func unionStrings(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	var out []string
	for _, id := range append(append([]string(nil), a...), b...) {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}
