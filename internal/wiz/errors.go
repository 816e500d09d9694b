package wiz

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ErrorKind classifies a WizError per the resolver's error taxonomy.
type ErrorKind string

const (
	// KindInvalidVersion means a version string could not be parsed.
	KindInvalidVersion ErrorKind = "InvalidVersion"
	// KindInvalidRequirement means a requirement string could not be parsed.
	KindInvalidRequirement ErrorKind = "InvalidRequirement"
	// KindIncorrectDefinition means a definition, variant, or graph
	// construction step violated a schema or structural invariant.
	KindIncorrectDefinition ErrorKind = "IncorrectDefinition"
	// KindRequestNotFound means no definition/version/variant satisfies a
	// requirement.
	KindRequestNotFound ErrorKind = "RequestNotFound"
	// KindGraphResolutionError means an irreducible version/variant
	// conflict was found. A graph divided mid-resolution is reported through
	// the conflictOutcome result (see resolver.go), not through this kind.
	KindGraphResolutionError ErrorKind = "GraphResolutionError"
	// KindFileExists means an export target already exists and overwrite
	// was not requested.
	KindFileExists ErrorKind = "FileExists"
)

// WizError is the root of the resolver's error taxonomy. Errors of the
// taxonomy can be type-asserted to WizError to recover their Kind for
// diagnostics or CLI exit-code mapping. I/O and decoding failures from
// config loading, discovery, export and JSON parsing are returned as plain
// (wrapped) errors that do not implement WizError.
type WizError interface {
	error
	Kind() ErrorKind
}

type wizError struct {
	kind ErrorKind
	msg  string
}

func (e *wizError) Error() string   { return e.msg }
func (e *wizError) Kind() ErrorKind { return e.kind }

func newError(kind ErrorKind, format string, args ...interface{}) *wizError {
	return &wizError{kind: kind, msg: fmt.Sprintf(format, args...)}
}

// InvalidVersion reports a version string that could not be parsed.
func InvalidVersion(raw string, cause error) WizError {
	return &wizError{
		kind: KindInvalidVersion,
		msg:  errors.Wrapf(cause, "invalid version %q", raw).Error(),
	}
}

// InvalidRequirement reports a requirement string that could not be parsed.
func InvalidRequirement(raw string, cause error) WizError {
	return &wizError{
		kind: KindInvalidRequirement,
		msg:  errors.Wrapf(cause, "invalid requirement %q", raw).Error(),
	}
}

// IncorrectDefinition reports a schema or structural violation.
func IncorrectDefinition(format string, args ...interface{}) WizError {
	return newError(KindIncorrectDefinition, format, args...)
}

// RequestNotFound reports that a requirement could not be satisfied by the
// registry.
func RequestNotFound(format string, args ...interface{}) WizError {
	return newError(KindRequestNotFound, format, args...)
}

// FileExists reports an export target collision.
func FileExists(path string) WizError {
	return newError(KindFileExists, "file already exists: %s", path)
}

// conflictDetail carries the structured context of an irreducible
// version/variant conflict, used by GraphResolutionError.
type conflictDetail struct {
	definition                 string
	requirement1, requirement2 string
	parent1, parent2           string
}

// GraphResolutionError reports an irreducible version or variant conflict.
// It is also raised, sentinel-style in the Python original, to signal
// "graph divided, retry the next alternative" — in this port that signal
// is instead represented by the conflictOutcome sum type (see resolver.go),
// so every GraphResolutionError constructed here carries real diagnostic
// content.
type GraphResolutionErrorDetail struct {
	wizError
	conflicts []conflictDetail
}

func newGraphResolutionError(conflicts []conflictDetail) *GraphResolutionErrorDetail {
	var b strings.Builder
	fmt.Fprintf(&b, "a requirement conflict has been detected")
	for _, c := range conflicts {
		fmt.Fprintf(&b, "\n for %q:\n - %s [from %s]\n - %s [from %s]",
			c.definition, c.requirement1, c.parent1, c.requirement2, c.parent2)
	}
	return &GraphResolutionErrorDetail{
		wizError:  wizError{kind: KindGraphResolutionError, msg: b.String()},
		conflicts: conflicts,
	}
}

func (e *GraphResolutionErrorDetail) Error() string   { return e.wizError.Error() }
func (e *GraphResolutionErrorDetail) Kind() ErrorKind { return KindGraphResolutionError }

// IsKind reports whether err is a WizError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	we, ok := err.(WizError)
	return ok && we.Kind() == kind
}
