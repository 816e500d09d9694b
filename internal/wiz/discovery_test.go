package wiz

import (
	"os"
	"path/filepath"
	"testing"
)

func writeDefinitionFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestDiscoverFindsDefinitionFiles(t *testing.T) {
	dir := t.TempDir()
	writeDefinitionFile(t, dir, "foo.json", `{"identifier": "foo"}`)
	writeDefinitionFile(t, dir, "nested/bar.json", `{"identifier": "bar"}`)
	writeDefinitionFile(t, dir, "ignore.txt", `not json`)

	defs, err := Discover(DiscoverOptions{Paths: []string{dir}, MaxDepth: -1})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}

	ids := identifiers(defs)
	if !containsString(ids, "foo") || !containsString(ids, "bar") {
		t.Fatalf("expected foo and bar, got %+v", ids)
	}
	if len(defs) != 2 {
		t.Fatalf("expected exactly 2 definitions, got %d", len(defs))
	}
}

func TestDiscoverSkipsDisabled(t *testing.T) {
	dir := t.TempDir()
	writeDefinitionFile(t, dir, "off.json", `{"identifier": "off", "disabled": true}`)

	defs, err := Discover(DiscoverOptions{Paths: []string{dir}, MaxDepth: -1})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(defs) != 0 {
		t.Fatalf("expected disabled definition to be skipped, got %+v", defs)
	}
}

func TestDiscoverSkipsMalformedFileWithoutFailing(t *testing.T) {
	dir := t.TempDir()
	writeDefinitionFile(t, dir, "bad.json", `{not valid json`)
	writeDefinitionFile(t, dir, "good.json", `{"identifier": "good"}`)

	defs, err := Discover(DiscoverOptions{Paths: []string{dir}, MaxDepth: -1})
	if err != nil {
		t.Fatalf("Discover should not fail on a single bad file: %v", err)
	}
	ids := identifiers(defs)
	if !containsString(ids, "good") {
		t.Fatalf("expected good definition to still be discovered, got %+v", ids)
	}
}

func TestDiscoverStampsProvenance(t *testing.T) {
	dir := t.TempDir()
	path := writeDefinitionFile(t, dir, "foo.json", `{"identifier": "foo"}`)

	defs, err := Discover(DiscoverOptions{Paths: []string{dir}, MaxDepth: -1})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(defs) != 1 {
		t.Fatalf("expected 1 definition, got %d", len(defs))
	}
	if defs[0].DefinitionLocation() != path {
		t.Fatalf("expected definition-location %q, got %q", path, defs[0].DefinitionLocation())
	}
	if defs[0].RegistryRoot() == "" {
		t.Fatal("expected registry root to be stamped")
	}
}

func TestDiscoverRegistryBuildsUsableRegistry(t *testing.T) {
	dir := t.TempDir()
	writeDefinitionFile(t, dir, "foo.json", `{"identifier": "foo", "version": "1.0.0"}`)

	reg, err := Fetch(DiscoverOptions{Paths: []string{dir}, MaxDepth: -1})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	req, _ := ParseRequirement("foo")
	if _, err := reg.Query(req); err != nil {
		t.Fatalf("expected foo to be queryable, got %v", err)
	}
}

func TestDiscoverNarrowsByRequest(t *testing.T) {
	dir := t.TempDir()
	writeDefinitionFile(t, dir, "foo.json", `{"identifier": "foo", "version": "1.0.0"}`)
	writeDefinitionFile(t, dir, "bar.json", `{"identifier": "bar", "version": "1.0.0"}`)

	defs, err := Discover(DiscoverOptions{Paths: []string{dir}, MaxDepth: -1, Requests: []string{"foo"}})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	ids := identifiers(defs)
	if len(ids) != 1 || ids[0] != "foo" {
		t.Fatalf("expected only foo, got %+v", ids)
	}
}

func TestDiscoverNarrowsByRequestSpecifier(t *testing.T) {
	dir := t.TempDir()
	writeDefinitionFile(t, dir, "foo.json", `{"identifier": "foo", "version": "1.0.0"}`)

	defs, err := Discover(DiscoverOptions{Paths: []string{dir}, MaxDepth: -1, Requests: []string{"foo >=2.0.0"}})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(defs) != 0 {
		t.Fatalf("expected foo 1.0.0 to be excluded by >=2.0.0, got %+v", defs)
	}
}

func TestDiscoverSystemFilter(t *testing.T) {
	dir := t.TempDir()
	writeDefinitionFile(t, dir, "linux.json", `{"identifier": "linux-only", "system": {"platform": "linux"}}`)
	writeDefinitionFile(t, dir, "mac.json", `{"identifier": "mac-only", "system": {"platform": "mac"}}`)

	defs, err := Discover(DiscoverOptions{
		Paths: []string{dir}, MaxDepth: -1, System: map[string]string{"platform": "linux"},
	})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	ids := identifiers(defs)
	if len(ids) != 1 || ids[0] != "linux-only" {
		t.Fatalf("expected only linux-only, got %+v", ids)
	}
}
