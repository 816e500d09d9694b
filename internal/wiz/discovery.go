package wiz

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/karrick/godirwalk"
	"github.com/pkg/errors"
)

// DiscoverOptions controls a definition-file search (spec.md §6/§4.B).
// Paths are searched recursively up to MaxDepth sub-levels; MaxDepth < 0
// means no limit, and MaxDepth == 0 restricts the search to files directly
// under each path.
//
// Requests and System implement the optional narrowing spec.md §4.B's
// fetch operation describes: Requests keeps only definitions matching at
// least one request's name (by identifier/description substring) and
// specifier; System keeps only definitions whose declared platform
// constraints do not conflict with the given key/value filter. Both are
// optional — a zero-value DiscoverOptions performs no narrowing at all.
type DiscoverOptions struct {
	Paths    []string
	MaxDepth int
	Requests []string
	System   map[string]string
	Logger   *Logger
}

// Discover walks opts.Paths for "*.json" definition files, grounded in the
// teacher's directory-walking conventions but using
// github.com/karrick/godirwalk in place of filepath.Walk for the recursive
// scan. A definition file that fails to parse, or that sets "disabled":
// true, is skipped with a warning rather than aborting the whole search
// (spec.md §6), matching the original's "continue on a single bad file"
// behavior.
//
// When opts.Requests or opts.System narrow the search, a definition that
// fails either filter is omitted from the result entirely, grounded in
// original_source's wiz.definition.search (identifier/description
// substring plus specifier match) generalized to OR across multiple
// requests, per spec.md §4.B's "fetch" operation.
func Discover(opts DiscoverOptions) ([]Definition, error) {
	requests, err := parseRequests(opts.Requests)
	if err != nil {
		return nil, err
	}

	var out []Definition

	for _, root := range opts.Paths {
		root = strings.TrimSpace(root)
		if root == "" {
			opts.Logger.Debugf("skipping empty registry path")
			continue
		}

		abs, err := filepath.Abs(root)
		if err != nil {
			return nil, errors.Wrapf(err, "resolving registry path %s", root)
		}
		opts.Logger.Debugf("searching %s for definition files", abs)

		initialDepth := strings.Count(strings.TrimRight(abs, string(filepath.Separator)), string(filepath.Separator))

		walkErr := godirwalk.Walk(abs, &godirwalk.Options{
			Callback: func(path string, de *godirwalk.Dirent) error {
				if de.IsDir() {
					if opts.MaxDepth >= 0 {
						depth := strings.Count(strings.TrimRight(path, string(filepath.Separator)), string(filepath.Separator))
						if depth-initialDepth > opts.MaxDepth {
							return filepath.SkipDir
						}
					}
					return nil
				}
				if filepath.Ext(path) != ".json" {
					return nil
				}

				data, err := os.ReadFile(path)
				if err != nil {
					opts.Logger.Warnf("reading definition file %s: %v", path, err)
					return nil
				}

				disabled, err := disabledFromRaw(data)
				if err != nil {
					opts.Logger.Warnf("loading definition file %s: %v", path, err)
					return nil
				}
				if disabled {
					opts.Logger.Warnf("skipping disabled definition file %s", path)
					return nil
				}

				var d Definition
				if err := d.UnmarshalJSON(data); err != nil {
					opts.Logger.Warnf("loading definition file %s: %v", path, err)
					return nil
				}

				d = d.WithRegistryRoot(abs).WithDefinitionLocation(path)

				if !systemMatches(d.System, opts.System) {
					opts.Logger.Debugf("skipping %s: system constraints do not match", path)
					return nil
				}
				if len(requests) > 0 && !matchesAnyRequest(d, requests) {
					opts.Logger.Debugf("skipping %s: does not match any requested name/version", path)
					return nil
				}

				opts.Logger.Debugf("loaded definition %s from %s", d.Identifier, path)
				out = append(out, d)
				return nil
			},
		})
		if walkErr != nil {
			if stderrors.Is(walkErr, os.ErrNotExist) {
				opts.Logger.Warnf("registry path %s does not exist", abs)
				continue
			}
			return nil, errors.Wrapf(walkErr, "walking registry path %s", abs)
		}
	}

	return out, nil
}

// systemMatches reports whether defSystem satisfies filter: every key
// filter declares must either be absent from defSystem (no opinion) or
// match case-insensitively. A nil/empty filter always matches, meaning "no
// system filter configured" rather than "no definition qualifies".
func systemMatches(defSystem, filter map[string]string) bool {
	for key, want := range filter {
		if got, ok := defSystem[key]; ok && !strings.EqualFold(got, want) {
			return false
		}
	}
	return true
}

// matchesAnyRequest reports whether d matches at least one of requests,
// per spec.md §4.B: identifier or description contains the request's name
// (case-insensitive substring) and d's version satisfies that request's
// specifier.
func matchesAnyRequest(d Definition, requests []Requirement) bool {
	for _, r := range requests {
		name := strings.ToLower(r.Name)
		if !strings.Contains(strings.ToLower(d.Identifier), name) &&
			!strings.Contains(strings.ToLower(d.Description), name) {
			continue
		}
		if ok, err := r.Matches(d.Version); err == nil && ok {
			return true
		}
	}
	return false
}

// Fetch is the spec.md §4.B "fetch" operation: it discovers and loads
// every definition file under opts.Paths (applying opts.System/opts.Requests
// narrowing) and builds a queryable Registry from the result, including its
// implicit[] auto-use list.
func Fetch(opts DiscoverOptions) (*Registry, error) {
	definitions, err := Discover(opts)
	if err != nil {
		return nil, err
	}
	return NewRegistry(definitions)
}
