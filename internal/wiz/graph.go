package wiz

// definitionSource resolves a requirement to its candidate definitions,
// applying variant-selection (spec.md §4.C). *Registry implements this.
type definitionSource interface {
	Resolve(requirement Requirement) ([]Definition, error)
}

// graph is the directed multi-source dependency graph described in
// spec.md §3/§4.D: nodes are (definition@version[variant]) and edges are
// weighted, requirement-labeled links from parent to child.
//
// Node removal is lazy (spec.md §9, "Lazy graph deletion"): live tracks
// which node identifiers are currently present, and every traversal
// intersects against it rather than relying on absence from the nodes map.
type graph struct {
	source definitionSource
	hist   *History

	nodes map[string]*node
	live  map[string]struct{}

	// links[parentID][childID] is the edge from parent to child.
	links map[string]map[string]*link

	// byDefinition indexes node identifiers sharing the same Definition
	// Identifier (regardless of version/variant), used to detect version
	// conflicts (spec.md §4.D "conflicts").
	byDefinition map[string]map[string]struct{}

	// variantGroups maps an autoincrementing group id (per spec.md §9,
	// replacing the source's incidental MD5-based identity) to the set of
	// node identifiers produced when a single requirement resolved to
	// multiple variants.
	variantGroups map[int][]string
	nextGroupID   int
	nextSeq       int
}

func newGraph(source definitionSource, hist *History) *graph {
	return &graph{
		source:        source,
		hist:          hist,
		nodes:         make(map[string]*node),
		live:          make(map[string]struct{}),
		links:         make(map[string]map[string]*link),
		byDefinition:  make(map[string]map[string]struct{}),
		variantGroups: make(map[int][]string),
	}
}

// copy returns a deep copy of the graph: independent node map (with
// independently-mutable parent sets), link map, and variant-group map, per
// spec.md §3's "Graphs are cloned before variant division so each
// alternative holds an independent node map."
func (g *graph) copy() *graph {
	out := newGraph(g.source, g.hist)

	for id, n := range g.nodes {
		parents := make(map[string]struct{}, len(n.parents))
		for p := range n.parents {
			parents[p] = struct{}{}
		}
		out.nodes[id] = &node{id: id, definition: n.definition, parents: parents, seq: n.seq}
	}
	out.nextSeq = g.nextSeq

	for id := range g.live {
		out.live[id] = struct{}{}
	}

	for parentID, children := range g.links {
		cp := make(map[string]*link, len(children))
		for childID, l := range children {
			linkCopy := *l
			cp[childID] = &linkCopy
		}
		out.links[parentID] = cp
	}

	for defID, set := range g.byDefinition {
		cp := make(map[string]struct{}, len(set))
		for id := range set {
			cp[id] = struct{}{}
		}
		out.byDefinition[defID] = cp
	}

	for gid, ids := range g.variantGroups {
		out.variantGroups[gid] = append([]string(nil), ids...)
	}
	out.nextGroupID = g.nextGroupID

	return out
}

// resetVariantGroups discards the variant-group map. Per spec.md §3, this
// is a lazy deletion: only the group index is cleared, not the nodes
// themselves.
func (g *graph) resetVariantGroups() {
	g.variantGroups = make(map[int][]string)
	g.nextGroupID = 0
}

func (g *graph) nodeExists(id string) bool {
	_, ok := g.live[id]
	return ok
}

// node returns the live node for id, or nil.
func (g *graph) node(id string) *node {
	if !g.nodeExists(id) {
		return nil
	}
	return g.nodes[id]
}

// nodeIdentifiers returns every live node identifier, including root-only
// graphs returning an empty slice (root itself is not a node entry).
func (g *graph) nodeIdentifiers() []string {
	out := make([]string, 0, len(g.live))
	for id := range g.live {
		out = append(out, id)
	}
	return out
}

// outgoing returns the live child identifiers reachable directly from id.
func (g *graph) outgoing(id string) []string {
	children := g.links[id]
	out := make([]string, 0, len(children))
	for childID := range children {
		if g.nodeExists(childID) {
			out = append(out, childID)
		}
	}
	return out
}

// linkInfo returns the requirement and weight recorded on the edge
// parentID -> childID, and whether that edge exists.
func (g *graph) linkInfo(parentID, childID string) (Requirement, int, bool) {
	children, ok := g.links[parentID]
	if !ok {
		return Requirement{}, 0, false
	}
	l, ok := children[childID]
	if !ok {
		return Requirement{}, 0, false
	}
	return l.requirement, l.weight, true
}

// conflicts returns live node identifiers belonging to definition
// identifiers that currently have two or more live nodes, per spec.md
// §4.D.
func (g *graph) conflicts() []string {
	var out []string
	for _, set := range g.byDefinition {
		live := make([]string, 0, len(set))
		for id := range set {
			if g.nodeExists(id) {
				live = append(live, id)
			}
		}
		if len(live) > 1 {
			out = append(out, live...)
		}
	}
	return out
}

// nodeIdentifiersForDefinition returns the live node identifiers sharing
// the given Definition Identifier.
func (g *graph) nodeIdentifiersForDefinition(definitionIdentifier string) []string {
	set := g.byDefinition[definitionIdentifier]
	out := make([]string, 0, len(set))
	for id := range set {
		if g.nodeExists(id) {
			out = append(out, id)
		}
	}
	return out
}

// variantGroupList returns the live variant groups: a group is pruned if
// any member is no longer live, per spec.md §4.D.
func (g *graph) variantGroupList() [][]string {
	var out [][]string
	for _, ids := range g.variantGroups {
		allLive := true
		for _, id := range ids {
			if !g.nodeExists(id) {
				allLive = false
				break
			}
		}
		if allLive && len(ids) > 1 {
			out = append(out, append([]string(nil), ids...))
		}
	}
	return out
}

// removeNode lazily removes id from the live set only (spec.md §3/§9):
// O(1), links and node data are left in place.
func (g *graph) removeNode(id string) {
	delete(g.live, id)
	g.hist.record(ActionNodeRemoval, map[string]interface{}{"node": id})
}

// addRootRequirements seeds the graph from the top-level request list, per
// spec.md §4.D: for each request in order (weight = 1-based position),
// invoke addRequirement(request, parent=root, weight=position).
func (g *graph) addRootRequirements(requests []Requirement) error {
	for i, req := range requests {
		if err := g.addRequirement(req, RootID, i+1); err != nil {
			return err
		}
	}
	return nil
}

// addRequirement resolves req via the definition source to one or more
// candidate definitions, creating/reusing nodes and links, and recursing
// into each newly-created node's own requirements, per spec.md §4.D.
func (g *graph) addRequirement(req Requirement, parentID string, weight int) error {
	definitions, err := g.source.Resolve(req)
	if err != nil {
		return err
	}

	identifiers := make([]string, len(definitions))
	for i, d := range definitions {
		identifiers[i] = NodeIdentifier(d)
	}

	if len(definitions) > 1 {
		g.variantGroups[g.nextGroupID] = append([]string(nil), identifiers...)
		g.nextGroupID++
		g.hist.record(ActionVariantConflicts, map[string]interface{}{
			"requirement": req.String(),
			"candidates":  identifiers,
		})
	}

	for i, d := range definitions {
		id := identifiers[i]

		if _, exists := g.nodes[id]; !exists {
			n := newNode(d)
			n.seq = g.nextSeq
			g.nextSeq++
			g.nodes[id] = n
			g.live[id] = struct{}{}
			g.hist.record(ActionNodeCreation, map[string]interface{}{"node": id})

			for ri, childReq := range d.Requirements {
				if err := g.addRequirement(childReq, id, ri+1); err != nil {
					return err
				}
			}
		}
		g.live[id] = struct{}{}

		n := g.nodes[id]
		n.addParent(parentID)

		defID := definitions[i].Identifier
		if g.byDefinition[defID] == nil {
			g.byDefinition[defID] = make(map[string]struct{})
		}
		g.byDefinition[defID][id] = struct{}{}

		if err := g.createLink(id, parentID, req, weight); err != nil {
			return err
		}
	}

	return nil
}

// createLink adds the edge parentID -> childID. Per spec.md §4.D, at most
// one link may exist for a given (parent, child) pair; attempting a second
// fails with IncorrectDefinition.
func (g *graph) createLink(childID, parentID string, req Requirement, weight int) error {
	if g.links[parentID] == nil {
		g.links[parentID] = make(map[string]*link)
	}
	if _, exists := g.links[parentID][childID]; exists {
		return IncorrectDefinition(
			"there cannot be several dependency links to %q from %q", childID, parentID,
		)
	}
	g.links[parentID][childID] = &link{requirement: req, weight: weight}
	g.hist.record(ActionLinkCreation, map[string]interface{}{
		"parent": parentID, "child": childID, "requirement": req.String(), "weight": weight,
	})
	return nil
}
