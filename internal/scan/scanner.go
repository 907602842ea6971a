// Package scan runs every invariant against every file in a project and
// aggregates the violations.
package scan

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/bulwarkhq/bulwark/internal/observability"
	"github.com/bulwarkhq/bulwark/internal/rules"
)

// DefaultMaxFileBytes caps how large a file may be before it is skipped
// without extraction.
const DefaultMaxFileBytes = 1 << 20

// Stats summarizes a scan by severity.
type Stats struct {
	Total    int `json:"total"`
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
}

// Result is the batch scan output payload.
type Result struct {
	Scope        string            `json:"scope"`
	FilesChecked int               `json:"files_checked"`
	Violations   []rules.Violation `json:"violations"`
	Stats        Stats             `json:"stats"`
}

// Scanner evaluates invariants across a file set. File analysis is read-only
// and independent per file, so it fans out over a bounded worker pool;
// aggregation is a single merge in file order afterwards, which keeps output
// independent of scheduling.
type Scanner struct {
	Root         string
	Workers      int
	MaxFileBytes int64

	engine *rules.Engine
	log    *slog.Logger
}

// New creates a scanner for a project root.
func New(root string, log *slog.Logger) *Scanner {
	if log == nil {
		log = slog.Default()
	}
	return &Scanner{
		Root:         root,
		Workers:      runtime.GOMAXPROCS(0),
		MaxFileBytes: DefaultMaxFileBytes,
		engine:       rules.NewEngine(root, log),
		log:          log,
	}
}

// Scan evaluates every invariant against every file. files holds paths
// relative to the scanner root; entries that no longer exist on disk are
// silently skipped so diff-mode lists may include deletions.
func (s *Scanner) Scan(ctx context.Context, scopePath string, files []string, invariants []rules.Invariant) (*Result, error) {
	ctx, span := observability.StartSpan(ctx, "bulwark.scan")
	defer span.End()

	workers := s.Workers
	if workers < 1 {
		workers = 1
	}

	partials := make([][]rules.Violation, len(files))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for idx, rel := range files {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(idx int, rel string) {
			defer wg.Done()
			defer func() { <-sem }()
			partials[idx] = s.scanFile(rel, invariants)
		}(idx, rel)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Violations keep file order; empty slice marshals as [] rather than null.
	violations := []rules.Violation{}
	for _, part := range partials {
		violations = append(violations, part...)
	}

	result := &Result{
		Scope:        scopePath,
		FilesChecked: len(files),
		Violations:   violations,
	}
	for _, v := range violations {
		result.Stats.Total++
		switch v.Severity {
		case rules.SeverityError:
			result.Stats.Errors++
		case rules.SeverityWarning:
			result.Stats.Warnings++
		}
	}

	observability.RecordScanResult(span, result.FilesChecked, result.Stats.Total, result.Stats.Errors)
	s.log.Debug("scan complete",
		"files", len(files), "violations", result.Stats.Total)
	return result, nil
}

func (s *Scanner) scanFile(rel string, invariants []rules.Invariant) []rules.Violation {
	abs := filepath.Join(s.Root, filepath.FromSlash(rel))
	info, err := os.Stat(abs)
	if err != nil || info.IsDir() {
		return nil // deleted since listed, or never a file
	}
	if s.MaxFileBytes > 0 && info.Size() > s.MaxFileBytes {
		s.log.Debug("skipping oversized file", "file", rel, "bytes", info.Size())
		return nil
	}

	var violations []rules.Violation
	for _, inv := range invariants {
		violations = append(violations, s.engine.Eval(abs, rel, inv)...)
	}
	return violations
}
