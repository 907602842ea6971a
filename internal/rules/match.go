package rules

import (
	"strings"

	"github.com/bulwarkhq/bulwark/internal/scope"
)

// InScope reports whether a file falls under an invariant's scope globs.
// An invariant without a source_glob or scope_glob applies everywhere.
func InScope(relPath string, inv Invariant) bool {
	glob := inv.SourceGlob
	if glob == "" {
		glob = inv.ScopeGlob
	}
	if glob == "" {
		return true
	}
	if !scope.Matches(relPath, glob) {
		return false
	}
	for _, excl := range inv.ScopeGlobExclude {
		if scope.Matches(relPath, excl) {
			return false
		}
	}
	return true
}

// ImportForbidden reports whether an import specifier is forbidden by a
// boundary invariant. An import matches a pattern as a literal string, as a
// glob, or, for dotted module names with no path separator, with dots
// converted to slashes. A match against allowed_imports overrides
// unconditionally.
func ImportForbidden(imp string, inv Invariant) bool {
	if len(inv.ForbiddenImports) == 0 {
		return false
	}

	asPath := imp
	if strings.Contains(imp, ".") && !strings.Contains(imp, "/") {
		asPath = strings.ReplaceAll(imp, ".", "/")
	}

	matched := false
	for _, pattern := range inv.ForbiddenImports {
		if imp == pattern || scope.Matches(imp, pattern) || scope.Matches(asPath, pattern) {
			matched = true
			break
		}
	}
	if !matched {
		return false
	}

	for _, pattern := range inv.AllowedImports {
		if imp == pattern || scope.Matches(imp, pattern) || scope.Matches(asPath, pattern) {
			return false
		}
	}
	return true
}
