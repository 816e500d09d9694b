package wiz

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// clause is one (op, version) pair of a requirement's specifier-set.
type clause struct {
	op      string
	version string
}

// Requirement is the triple (name, specifier-set, extras) from spec.md
// §3/§4.A: a constraint on a package name with a version specifier set and
// optional variant extras.
type Requirement struct {
	Name    string
	Extras  []string
	clauses []clause
}

var requirementPattern = regexp.MustCompile(
	`^\s*([A-Za-z0-9_.\-]+)\s*(?:\[([^\]]*)\])?\s*(.*)$`,
)

var clausePattern = regexp.MustCompile(
	`^\s*(==|!=|<=|>=|~=|=|<|>)\s*(\S+)\s*$`,
)

// ParseRequirement parses "name[extra1,extra2] op v, op v, …" as described
// in spec.md §4.A. A bare name with no specifier clauses matches any
// version.
func ParseRequirement(raw string) (Requirement, error) {
	m := requirementPattern.FindStringSubmatch(raw)
	if m == nil || m[1] == "" {
		return Requirement{}, InvalidRequirement(raw, errNoMatch)
	}

	req := Requirement{Name: m[1]}

	if extras := strings.TrimSpace(m[2]); extras != "" {
		for _, e := range strings.Split(extras, ",") {
			e = strings.TrimSpace(e)
			if e != "" {
				req.Extras = append(req.Extras, e)
			}
		}
	}

	if body := strings.TrimSpace(m[3]); body != "" {
		for _, part := range strings.Split(body, ",") {
			cm := clausePattern.FindStringSubmatch(part)
			if cm == nil {
				return Requirement{}, InvalidRequirement(raw, errBadClause)
			}
			req.clauses = append(req.clauses, clause{op: normalizeOp(cm[1]), version: cm[2]})
		}
	}

	return req, nil
}

func normalizeOp(op string) string {
	if op == "==" {
		return "="
	}
	return op
}

var errNoMatch = simpleErr("requirement does not match the expected grammar")
var errBadClause = simpleErr("specifier clause does not match op+version grammar")

type simpleErr string

func (e simpleErr) Error() string { return string(e) }

// String renders the requirement back to its canonical textual form.
func (r Requirement) String() string {
	var b strings.Builder
	b.WriteString(r.Name)
	if len(r.Extras) > 0 {
		b.WriteString("[")
		b.WriteString(strings.Join(r.Extras, ","))
		b.WriteString("]")
	}
	if len(r.clauses) > 0 {
		b.WriteString(" ")
		parts := make([]string, len(r.clauses))
		for i, c := range r.clauses {
			parts[i] = c.op + c.version
		}
		b.WriteString(strings.Join(parts, ", "))
	}
	return b.String()
}

// Intersect returns the requirement formed by unioning the clauses of r and
// other, per spec.md §4.A: "intersection by unioning clauses; intersection
// is empty iff no version satisfies all clauses." Both requirements must
// share the same Name — a mismatch is an internal invariant violation (see
// spec.md §9, "Requirement intersection across unrelated names"), not a
// resolution error, so it panics rather than returning a WizError.
func (r Requirement) Intersect(other Requirement) Requirement {
	if r.Name != other.Name {
		panic("wiz: intersecting requirements with different names: " + r.Name + " vs " + other.Name)
	}

	out := Requirement{Name: r.Name, Extras: r.Extras}
	out.clauses = append(out.clauses, r.clauses...)
	out.clauses = append(out.clauses, other.clauses...)
	out.dedupeClauses()
	return out
}

// dedupeClauses removes duplicate clauses, per spec.md §8's "Idempotence of
// requirement intersection" property: combining a requirement set
// containing duplicates must equal combining the de-duplicated set.
func (r *Requirement) dedupeClauses() {
	seen := make(map[clause]bool, len(r.clauses))
	out := r.clauses[:0]
	for _, c := range r.clauses {
		if seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	r.clauses = out
}

// constraints builds the combined *semver.Constraints for this
// requirement's clauses, or nil if the requirement has no clauses (matches
// any version).
func (r Requirement) constraints() (*semver.Constraints, error) {
	if len(r.clauses) == 0 {
		return nil, nil
	}
	parts := make([]string, 0, len(r.clauses))
	for _, c := range r.clauses {
		rendered, err := renderClause(c)
		if err != nil {
			return nil, InvalidRequirement(r.String(), err)
		}
		parts = append(parts, rendered...)
	}
	cs, err := semver.NewConstraints(strings.Join(parts, ", "))
	if err != nil {
		return nil, InvalidRequirement(r.String(), err)
	}
	return cs, nil
}

// renderClause translates one clause into the constraint expression(s)
// Masterminds/semver understands. Every operator but "~=" passes straight
// through; "~=" is PEP 440's "compatible release" clause, which semver has
// no token for (confirmed against the teacher's own vendored
// Masterminds/semver: only "", "=", "!=", ">", "<", ">=", "<=", "~", "~>",
// "^" are recognized), so it is expanded here into the equivalent
// ">=X.Y.Z, <X.(Y+1).0" range per PEP 440 §"Compatible release clause".
func renderClause(c clause) ([]string, error) {
	if c.op != "~=" {
		return []string{c.op + " " + c.version}, nil
	}

	v, err := semver.NewVersion(c.version)
	if err != nil {
		return nil, err
	}
	upper := fmt.Sprintf("%d.%d.0", v.Major(), v.Minor()+1)
	return []string{
		">= " + v.String(),
		"< " + upper,
	}, nil
}

// Matches reports whether v satisfies every clause in the requirement's
// specifier-set. A requirement with no clauses matches any version,
// Unknown included; a requirement with at least one clause never matches
// Unknown.
func (r Requirement) Matches(v Version) (bool, error) {
	if v.IsUnknown() {
		return len(r.clauses) == 0, nil
	}
	cs, err := r.constraints()
	if err != nil {
		return false, err
	}
	if cs == nil {
		return true, nil
	}
	return cs.Check(v.semverValue()), nil
}

// sortedExtras returns Extras in deterministic order, used for comparing
// two requirements' extras for equality (spec.md §4.F conflict-resolution
// step 5: "Reject ... if the two requirements' extras differ").
func (r Requirement) sortedExtras() []string {
	out := append([]string(nil), r.Extras...)
	sort.Strings(out)
	return out
}

// SameExtras reports whether r and other request the same set of variant
// extras.
func (r Requirement) SameExtras(other Requirement) bool {
	a, b := r.sortedExtras(), other.sortedExtras()
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
