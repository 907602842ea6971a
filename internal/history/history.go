// Package history records scan outcomes to a JSONL log so compliance can be
// tracked over time. Writes are atomic (temp file plus rename) and the log is
// capped FIFO so it never grows without bound.
package history

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/bulwarkhq/bulwark/internal/rules"
	"github.com/bulwarkhq/bulwark/internal/scan"
)

// FIFOCap is the maximum number of retained history entries.
const FIFOCap = 500

// SeverityCounts groups a scan's violations by severity.
type SeverityCounts struct {
	Error int `json:"error"`
	Warn  int `json:"warn"`
	Info  int `json:"info"`
}

// Entry is one history record.
type Entry struct {
	Timestamp       string         `json:"timestamp"`
	Commit          string         `json:"commit"`
	TotalFiles      int            `json:"total_files"`
	FilesChecked    int            `json:"files_checked"`
	Violations      SeverityCounts `json:"violations"`
	ComplianceScore float64        `json:"compliance_score"`
	ByRule          map[string]int `json:"by_rule"`
}

// Log appends to and reads a single project's history file.
type Log struct {
	Dir string // project state directory, e.g. <root>/.bulwark
	log *slog.Logger
}

// NewLog creates a history log rooted at the given state directory.
func NewLog(dir string, logger *slog.Logger) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	return &Log{Dir: dir, log: logger}
}

// BuildEntry derives a history entry from a scan result. The compliance
// score treats a file with at least one error as non-compliant, rounded to
// one decimal; an empty scan scores 100.
func BuildEntry(ctx context.Context, result *scan.Result, repoDir string) Entry {
	counts := SeverityCounts{}
	byRule := make(map[string]int)
	for _, v := range result.Violations {
		switch v.Severity {
		case rules.SeverityError:
			counts.Error++
		case rules.SeverityWarning:
			counts.Warn++
		case rules.SeverityInfo:
			counts.Info++
		}
		if v.Rule != "" {
			byRule[v.Rule]++
		}
	}

	score := 100.0
	if result.FilesChecked > 0 {
		score = float64(result.FilesChecked-counts.Error) / float64(result.FilesChecked) * 100
		score = math.Round(score*10) / 10
	}

	return Entry{
		Timestamp:       time.Now().UTC().Format("2006-01-02T15:04:05Z"),
		Commit:          gitCommit(ctx, repoDir),
		TotalFiles:      result.FilesChecked,
		FilesChecked:    result.FilesChecked,
		Violations:      counts,
		ComplianceScore: score,
		ByRule:          byRule,
	}
}

// gitCommit returns the short commit hash, or "unknown" outside a repo.
func gitCommit(ctx context.Context, repoDir string) string {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", "rev-parse", "--short", "HEAD")
	cmd.Dir = repoDir
	out, err := cmd.Output()
	if err != nil {
		return "unknown"
	}
	return strings.TrimSpace(string(out))
}

// Append writes the entry to history.jsonl, trimming oldest entries past the
// cap. The whole file is rewritten through a temp file so a crash never
// leaves a torn log.
func (l *Log) Append(entry Entry) error {
	if err := os.MkdirAll(l.Dir, 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	historyPath := filepath.Join(l.Dir, "history.jsonl")

	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal history entry: %w", err)
	}

	lines, err := readLines(historyPath)
	if err != nil {
		return err
	}
	lines = append(lines, string(line))
	if len(lines) > FIFOCap {
		lines = lines[len(lines)-FIFOCap:]
	}

	tmp, err := os.CreateTemp(l.Dir, ".history.jsonl.")
	if err != nil {
		return fmt.Errorf("create temp history file: %w", err)
	}
	tmpPath := tmp.Name()
	for _, ln := range lines {
		if _, err := tmp.WriteString(ln + "\n"); err != nil {
			tmp.Close()
			os.Remove(tmpPath)
			return fmt.Errorf("write history: %w", err)
		}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp history file: %w", err)
	}
	if err := os.Rename(tmpPath, historyPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace history file: %w", err)
	}

	l.log.Debug("history appended",
		"entries", len(lines), "compliance", entry.ComplianceScore)
	return nil
}

// Entries reads the log back, skipping unparseable lines.
func (l *Log) Entries() ([]Entry, error) {
	lines, err := readLines(filepath.Join(l.Dir, "history.jsonl"))
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(lines))
	for _, ln := range lines {
		var e Entry
		if err := json.Unmarshal([]byte(ln), &e); err != nil {
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read history file: %w", err)
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, sc.Err()
}
