package wiz

import "testing"

func TestGraphDetectsVersionConflicts(t *testing.T) {
	c1 := defOf(t, "c", "1.0.0")
	c2 := defOf(t, "c", "2.0.0")
	source := chainSource{"c": c1}
	hist := NewHistory()
	g := newGraph(source, hist)

	req1, _ := ParseRequirement("c ==1.0.0")
	if err := g.addRequirement(req1, RootID, 1); err != nil {
		t.Fatalf("addRequirement: %v", err)
	}

	source["c"] = c2
	req2, _ := ParseRequirement("c ==2.0.0")
	if err := g.addRequirement(req2, RootID, 2); err != nil {
		t.Fatalf("addRequirement: %v", err)
	}

	conflicts := g.conflicts()
	if len(conflicts) != 2 {
		t.Fatalf("expected 2 conflicting nodes, got %+v", conflicts)
	}
}

func TestGraphRemoveNodeIsLazy(t *testing.T) {
	a := defOf(t, "a", "1.0.0")
	source := chainSource{"a": a}
	hist := NewHistory()
	g := newGraph(source, hist)

	req, _ := ParseRequirement("a")
	if err := g.addRootRequirements([]Requirement{req}); err != nil {
		t.Fatalf("addRootRequirements: %v", err)
	}

	id := NodeIdentifier(a)
	if !g.nodeExists(id) {
		t.Fatal("expected node to exist before removal")
	}

	g.removeNode(id)
	if g.nodeExists(id) {
		t.Fatal("expected node to no longer be live")
	}
	if _, ok := g.nodes[id]; !ok {
		t.Fatal("expected underlying node data to still be present (lazy removal)")
	}
}

func TestGraphCreateLinkRejectsDuplicate(t *testing.T) {
	a := defOf(t, "a", "1.0.0")
	source := chainSource{"a": a}
	hist := NewHistory()
	g := newGraph(source, hist)

	req, _ := ParseRequirement("a")
	if err := g.addRequirement(req, RootID, 1); err != nil {
		t.Fatalf("addRequirement: %v", err)
	}

	id := NodeIdentifier(a)
	if err := g.createLink(id, RootID, req, 2); err == nil {
		t.Fatal("expected duplicate link to be rejected")
	}
}

func TestGraphCopyIsIndependent(t *testing.T) {
	a := defOf(t, "a", "1.0.0")
	source := chainSource{"a": a}
	hist := NewHistory()
	g := newGraph(source, hist)

	req, _ := ParseRequirement("a")
	if err := g.addRootRequirements([]Requirement{req}); err != nil {
		t.Fatalf("addRootRequirements: %v", err)
	}

	cp := g.copy()
	id := NodeIdentifier(a)
	cp.removeNode(id)

	if !g.nodeExists(id) {
		t.Fatal("expected removal on the copy to not affect the original graph")
	}
	if cp.nodeExists(id) {
		t.Fatal("expected node to be removed on the copy")
	}
}

func TestGraphVariantGroupRecorded(t *testing.T) {
	foo := Definition{
		Identifier: "foo",
		Version:    mustVersion(t, "1.0.0"),
		Variants: []Variant{
			{Identifier: "a"},
			{Identifier: "b"},
		},
	}
	reg, err := NewRegistry([]Definition{foo})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	hist := NewHistory()
	g := newGraph(reg, hist)

	req, _ := ParseRequirement("foo")
	if err := g.addRootRequirements([]Requirement{req}); err != nil {
		t.Fatalf("addRootRequirements: %v", err)
	}

	groups := g.variantGroupList()
	if len(groups) != 1 || len(groups[0]) != 2 {
		t.Fatalf("expected a single 2-member variant group, got %+v", groups)
	}
}
