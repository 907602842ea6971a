package rules

import (
	"log/slog"
	"os"
	"regexp"
	"strings"

	"github.com/bulwarkhq/bulwark/internal/extract"
	"github.com/bulwarkhq/bulwark/internal/scope"
)

// posixClasses maps POSIX bracket expressions, which invariant files use for
// shell-grep compatibility, to Go regexp equivalents.
var posixClasses = strings.NewReplacer(
	"[[:space:]]", `\s`,
	"[[:alpha:]]", "[a-zA-Z]",
	"[[:digit:]]", `\d`,
	"[[:alnum:]]", "[a-zA-Z0-9]",
	"[[:upper:]]", "[A-Z]",
	"[[:lower:]]", "[a-z]",
	"[[:punct:]]", `[^\w\s]`,
	"[[:blank:]]", `[ \t]`,
)

// Engine evaluates invariants against files. Root is the project root used
// for test-colocation lookups.
type Engine struct {
	Root string
	log  *slog.Logger
}

// NewEngine creates a rule engine for a project root.
func NewEngine(root string, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{Root: root, log: log}
}

// Eval evaluates a single invariant against a file and returns any
// violations. Out-of-scope files short-circuit before any file I/O.
func (e *Engine) Eval(absPath, relPath string, inv Invariant) []Violation {
	if !InScope(relPath, inv) {
		return nil
	}
	if _, err := os.Stat(absPath); err != nil {
		return nil
	}

	switch inv.Type {
	case TypeBoundary:
		return e.evalBoundary(absPath, relPath, inv)
	case TypePattern:
		return e.evalPattern(absPath, relPath, inv)
	case TypeConvention:
		return e.evalConvention(absPath, relPath, inv)
	case TypeDependency:
		return e.evalDependency(absPath, relPath, inv)
	}
	return nil
}

func (e *Engine) evalBoundary(absPath, relPath string, inv Invariant) []Violation {
	var violations []Violation
	for _, imp := range extract.File(absPath) {
		if ImportForbidden(imp, inv) {
			violations = append(violations, Violation{
				Rule:     inv.ID,
				Severity: inv.Severity,
				Message:  inv.Description,
				File:     relPath,
				Import:   imp,
			})
		}
	}
	return violations
}

// evalPattern flags presence, not every occurrence: only the first matching
// line is reported. Downstream counters assume at most one violation per
// (file, pattern rule).
func (e *Engine) evalPattern(absPath, relPath string, inv Invariant) []Violation {
	if inv.ForbiddenPattern == "" {
		return nil
	}
	pat, err := regexp.Compile(posixClasses.Replace(inv.ForbiddenPattern))
	if err != nil {
		e.log.Warn("invalid regex in pattern rule, skipping",
			"rule", inv.ID, "pattern", inv.ForbiddenPattern)
		return nil
	}

	content, err := os.ReadFile(absPath)
	if err != nil {
		return nil
	}
	for i, line := range strings.Split(string(content), "\n") {
		if pat.MatchString(line) {
			return []Violation{{
				Rule:     inv.ID,
				Severity: inv.Severity,
				Message:  inv.Description,
				File:     relPath,
				Line:     i + 1,
			}}
		}
	}
	return nil
}

func (e *Engine) evalConvention(absPath, relPath string, inv Invariant) []Violation {
	// Only test-colocation conventions are checked; other free-text rules
	// have no mechanical interpretation.
	if !strings.Contains(strings.ToLower(inv.Rule), "test") {
		return nil
	}
	if HasColocatedTest(e.Root, absPath, relPath) {
		return nil
	}
	return []Violation{{
		Rule:     inv.ID,
		Severity: inv.Severity,
		Message:  "missing colocated test file",
		File:     relPath,
	}}
}

// evalDependency uses plain substring matching, so package "io" also flags
// an import of "crypto/io". Existing invariant files rely on the loose
// semantics.
func (e *Engine) evalDependency(absPath, relPath string, inv Invariant) []Violation {
	if inv.Package == "" {
		return nil
	}
	for _, allowed := range inv.AllowedIn {
		if scope.Matches(relPath, allowed) {
			return nil
		}
	}
	for _, imp := range extract.File(absPath) {
		if strings.Contains(imp, inv.Package) {
			return []Violation{{
				Rule:     inv.ID,
				Severity: inv.Severity,
				Message:  inv.Description,
				File:     relPath,
				Package:  inv.Package,
			}}
		}
	}
	return nil
}
