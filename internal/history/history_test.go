package history

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/bulwarkhq/bulwark/internal/rules"
	"github.com/bulwarkhq/bulwark/internal/scan"
)

func TestBuildEntry(t *testing.T) {
	result := &scan.Result{
		FilesChecked: 10,
		Violations: []rules.Violation{
			{Rule: "r1", Severity: rules.SeverityError},
			{Rule: "r1", Severity: rules.SeverityError},
			{Rule: "r2", Severity: rules.SeverityWarning},
			{Rule: "r3", Severity: rules.SeverityInfo},
		},
	}

	entry := BuildEntry(context.Background(), result, t.TempDir())

	if entry.Violations.Error != 2 || entry.Violations.Warn != 1 || entry.Violations.Info != 1 {
		t.Errorf("severity counts wrong: %+v", entry.Violations)
	}
	// 10 files, 2 errors: (10-2)/10 = 80.0
	if entry.ComplianceScore != 80.0 {
		t.Errorf("ComplianceScore = %v, want 80.0", entry.ComplianceScore)
	}
	if entry.ByRule["r1"] != 2 || entry.ByRule["r2"] != 1 {
		t.Errorf("by_rule wrong: %v", entry.ByRule)
	}
	if entry.Commit != "unknown" {
		t.Errorf("Commit = %q, want unknown outside a git repo", entry.Commit)
	}
	if entry.TotalFiles != 10 || entry.FilesChecked != 10 {
		t.Errorf("file counts wrong: %+v", entry)
	}
}

func TestBuildEntryEmptyScan(t *testing.T) {
	entry := BuildEntry(context.Background(), &scan.Result{}, t.TempDir())
	if entry.ComplianceScore != 100.0 {
		t.Errorf("empty scan score = %v, want 100", entry.ComplianceScore)
	}
}

func TestBuildEntryRounding(t *testing.T) {
	result := &scan.Result{
		FilesChecked: 3,
		Violations:   []rules.Violation{{Rule: "r", Severity: rules.SeverityError}},
	}
	entry := BuildEntry(context.Background(), result, t.TempDir())
	// (3-1)/3 = 66.666... rounds to 66.7
	if entry.ComplianceScore != 66.7 {
		t.Errorf("ComplianceScore = %v, want 66.7", entry.ComplianceScore)
	}
}

func TestAppendAndEntries(t *testing.T) {
	dir := filepath.Join(t.TempDir(), ".bulwark")
	log := NewLog(dir, nil)

	for i := 0; i < 3; i++ {
		entry := Entry{Timestamp: fmt.Sprintf("2026-01-0%dT00:00:00Z", i+1), Commit: "abc1234"}
		if err := log.Append(entry); err != nil {
			t.Fatal(err)
		}
	}

	entries, err := log.Entries()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
	if entries[0].Timestamp != "2026-01-01T00:00:00Z" || entries[2].Timestamp != "2026-01-03T00:00:00Z" {
		t.Errorf("entries out of order: %+v", entries)
	}
}

func TestAppendFIFOCap(t *testing.T) {
	dir := filepath.Join(t.TempDir(), ".bulwark")
	log := NewLog(dir, nil)

	for i := 0; i < FIFOCap+10; i++ {
		if err := log.Append(Entry{TotalFiles: i}); err != nil {
			t.Fatal(err)
		}
	}

	entries, err := log.Entries()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != FIFOCap {
		t.Fatalf("got %d entries, want cap %d", len(entries), FIFOCap)
	}
	// Oldest entries were dropped.
	if entries[0].TotalFiles != 10 {
		t.Errorf("first retained entry = %d, want 10", entries[0].TotalFiles)
	}
}

func TestEntriesMissingFile(t *testing.T) {
	log := NewLog(filepath.Join(t.TempDir(), ".bulwark"), nil)
	entries, err := log.Entries()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("missing log should read empty, got %d", len(entries))
	}
}
