package wiz

import (
	"github.com/Masterminds/semver/v3"
)

// Version is a sortable semantic version, or the sentinel "unknown" value
// used by definitions that declare no version. Unknown is incomparable to
// any concrete version; Compare against it always fails.
type Version struct {
	sv      *semver.Version
	unknown bool
}

// Unknown is the sentinel version assigned to definitions with no declared
// version. A definition identifier may carry at most one Unknown entry in
// the registry, and Unknown must never be mixed with concrete versions
// under the same identifier (see Registry.Query).
var Unknown = Version{unknown: true}

// ParseVersion parses the conventional dotted major.minor.patch form with
// optional pre-release/build segments. An empty string parses to Unknown.
func ParseVersion(raw string) (Version, error) {
	if raw == "" {
		return Unknown, nil
	}
	sv, err := semver.NewVersion(raw)
	if err != nil {
		return Version{}, InvalidVersion(raw, err)
	}
	return Version{sv: sv}, nil
}

// IsUnknown reports whether v is the Unknown sentinel.
func (v Version) IsUnknown() bool { return v.unknown }

// String renders the version in its canonical dotted form, or "unknown".
func (v Version) String() string {
	if v.unknown {
		return "unknown"
	}
	return v.sv.Original()
}

// Compare orders v against other. It returns an error if either side is
// Unknown, since Unknown is incomparable to concrete versions (and to
// itself).
func (v Version) Compare(other Version) (int, error) {
	if v.unknown || other.unknown {
		return 0, IncorrectDefinition("cannot compare unknown version against %q/%q", v.String(), other.String())
	}
	return v.sv.Compare(other.sv), nil
}

// LessThan reports whether v sorts before other. Panics semantics are
// avoided: callers that might compare against Unknown should check
// IsUnknown first, or handle the returned error from Compare directly; this
// helper is only used internally where Unknown has already been excluded.
func (v Version) lessThan(other Version) bool {
	c, err := v.Compare(other)
	return err == nil && c < 0
}

// semverValue exposes the underlying *semver.Version for constraint checks.
// Returns nil for Unknown.
func (v Version) semverValue() *semver.Version {
	return v.sv
}
