package wiz

import (
	"sort"

	"github.com/armon/go-radix"
)

// Registry is the immutable, in-memory index of all definitions described
// in spec.md §4.B. It is built once (by Fetch, or directly via NewRegistry
// for tests) and treated as read-only for the duration of a resolution.
type Registry struct {
	// byPackage indexes definitions by identifier using a radix tree (the
	// teacher's own github.com/armon/go-radix dependency, used in
	// solver.go for deterministic, prefix-ordered project lookups). Each
	// leaf is the "version-string -> Definition" map from spec.md §4.B.
	byPackage *radix.Tree

	// byCommand maps command alias -> identifier, latest-wins on conflict.
	byCommand map[string]string

	// Implicit is the ordered list of package-request strings generated
	// from auto-use definitions, in discovery order.
	Implicit []string
}

// NewRegistry builds a Registry from a flat list of definitions, applying
// the same auto-use/by-command indexing rules Fetch uses. It is the entry
// point for constructing a registry directly (e.g. in tests), without
// touching the filesystem.
func NewRegistry(definitions []Definition) (*Registry, error) {
	r := &Registry{
		byPackage: radix.New(),
		byCommand: make(map[string]string),
	}

	for _, d := range definitions {
		if err := r.add(d); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Registry) add(d Definition) error {
	versions, _ := r.byPackage.Get(d.Identifier)
	byVersion, _ := versions.(map[string]Definition)
	if byVersion == nil {
		byVersion = make(map[string]Definition)
	}

	// Enforce "a definition identifier may have at most one unknown-version
	// entry and must not mix unknown with concrete versions" at insertion
	// time too, so a malformed registry fails fast rather than only at
	// query time.
	if len(byVersion) > 0 {
		mixed := false
		for _, existing := range byVersion {
			if existing.Version.IsUnknown() != d.Version.IsUnknown() {
				mixed = true
				break
			}
		}
		if mixed {
			return IncorrectDefinition(
				"definition %q mixes unknown and concrete versions", d.Identifier,
			)
		}
	}

	byVersion[d.Version.String()] = d
	r.byPackage.Insert(d.Identifier, byVersion)

	for alias := range d.Command {
		r.byCommand[alias] = d.Identifier
	}

	if d.AutoUse {
		r.Implicit = append(r.Implicit, d.Identifier)
	}

	return nil
}

// versionsFor returns the version->Definition map for identifier, or nil.
func (r *Registry) versionsFor(identifier string) map[string]Definition {
	v, ok := r.byPackage.Get(identifier)
	if !ok {
		return nil
	}
	return v.(map[string]Definition)
}

// CommandOwner returns the definition identifier that owns the given
// command alias, and whether it was found.
func (r *Registry) CommandOwner(command string) (string, bool) {
	id, ok := r.byCommand[command]
	return id, ok
}

// Query returns the highest version of identifier whose Version satisfies
// requirement's specifier-set, per spec.md §4.B. It fails with
// RequestNotFound when the name is unknown, when no version matches, or
// when the identifier mixes the Unknown sentinel with concrete versions.
func (r *Registry) Query(requirement Requirement) (Definition, error) {
	byVersion := r.versionsFor(requirement.Name)
	if len(byVersion) == 0 {
		return Definition{}, RequestNotFound("no definition named %q", requirement.Name)
	}

	hasUnknown, hasConcrete := false, false
	candidates := make([]Definition, 0, len(byVersion))
	for _, d := range byVersion {
		if d.Version.IsUnknown() {
			hasUnknown = true
		} else {
			hasConcrete = true
		}
		candidates = append(candidates, d)
	}
	if hasUnknown && hasConcrete {
		return Definition{}, RequestNotFound(
			"definition %q mixes unknown and concrete versions", requirement.Name,
		)
	}

	sort.Slice(candidates, func(i, j int) bool {
		// Unknown-only registries have exactly one entry, so lessThan is
		// only ever invoked between two concrete versions here.
		return candidates[j].Version.lessThan(candidates[i].Version)
	})

	for _, d := range candidates {
		ok, err := requirement.Matches(d.Version)
		if err != nil {
			return Definition{}, err
		}
		if ok {
			return d, nil
		}
	}

	return Definition{}, RequestNotFound(
		"no version of %q satisfies %s", requirement.Name, requirement,
	)
}

// Resolve returns the list of candidate Definitions a requirement expands
// to, applying the variant-selection rules of spec.md §4.C:
//
//   - no variants: the single matched definition.
//   - requirement.Extras non-empty: exactly the named variant, merged in.
//   - otherwise: every declared variant, each merged in, forming a variant
//     group candidate set (the caller records these as a variant group when
//     there is more than one).
func (r *Registry) Resolve(requirement Requirement) ([]Definition, error) {
	def, err := r.Query(requirement)
	if err != nil {
		return nil, err
	}

	if !def.HasVariants() {
		return []Definition{def}, nil
	}

	if len(requirement.Extras) > 0 {
		name := requirement.Extras[0]
		v, ok := def.FindVariant(name)
		if !ok {
			return nil, RequestNotFound(
				"variant %q could not be resolved for %q", name, requirement.Name,
			)
		}
		return []Definition{def.Merge(v)}, nil
	}

	out := make([]Definition, len(def.Variants))
	for i, v := range def.Variants {
		out[i] = def.Merge(v)
	}
	return out, nil
}

// Export writes a definition to dir as "{identifier}[-{version}].json",
// per spec.md §4.B, failing with FileExists when the target exists and
// overwrite is false. See export.go for the serialization and safe-write
// machinery.
func (r *Registry) Export(dir string, d Definition, overwrite bool) error {
	return exportDefinition(dir, d, overwrite)
}
