package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/bulwarkhq/bulwark/internal/config"
	"github.com/bulwarkhq/bulwark/internal/history"
	"github.com/bulwarkhq/bulwark/internal/rules"
	"github.com/bulwarkhq/bulwark/internal/scan"
)

func newScanCmd(app *appContext) *cobra.Command {
	var (
		scope      string
		diffMode   bool
		diffFile   string
		jsonOutput bool
		record     bool
	)

	cmd := &cobra.Command{
		Use:   "scan [path]",
		Short: "Check the project against its architectural invariants",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := projectRoot(args)
			if err != nil {
				return err
			}
			_, err = runScan(cmd.Context(), app, root, scope, diffMode, diffFile, jsonOutput, record)
			return err
		},
	}
	cmd.Flags().StringVar(&scope, "scope", "", "Restrict the scan to a path prefix")
	cmd.Flags().BoolVar(&diffMode, "diff", false, "Scan only files changed since HEAD")
	cmd.Flags().StringVar(&diffFile, "diff-file", "", "Scan only files listed in this file (one per line)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the scan result as JSON")
	cmd.Flags().BoolVar(&record, "record", false, "Append the result to .bulwark/history.jsonl")

	return cmd
}

func runScan(ctx context.Context, app *appContext, root, scope string, diffMode bool, diffFile string, jsonOutput, record bool) (*scan.Result, error) {
	scope = strings.TrimSuffix(scope, "/")

	invariants, err := config.LoadInvariants(root)
	if err != nil {
		// Matches the empty-result contract: a missing or unparseable
		// invariants file yields an error payload, not a failed command.
		payload := map[string]any{
			"error":      "No invariants.yml found. Run bulwark init first.",
			"violations": []rules.Violation{},
			"stats":      scan.Stats{},
		}
		return nil, json.NewEncoder(os.Stdout).Encode(payload)
	}

	var files []string
	switch {
	case diffFile != "":
		files, err = readFileList(diffFile, scope)
		if err != nil {
			return nil, err
		}
	case diffMode:
		files = gitChangedFiles(ctx, root, scope)
	default:
		files, err = scan.FindSourceFiles(root)
		if err != nil {
			return nil, fmt.Errorf("discover source files: %w", err)
		}
		if scope != "" {
			files = scan.FilterScope(files, scope)
		}
	}

	scanner := scan.New(root, app.log)
	if app.cfg.Scan.Workers > 0 {
		scanner.Workers = app.cfg.Scan.Workers
	}
	if app.cfg.Scan.MaxFileBytes > 0 {
		scanner.MaxFileBytes = app.cfg.Scan.MaxFileBytes
	}

	start := time.Now()
	result, err := scanner.Scan(ctx, scope, files, invariants)
	if err != nil {
		return nil, err
	}
	app.log.Info("scan finished",
		"files", result.FilesChecked,
		"violations", result.Stats.Total,
		"duration", time.Since(start).Round(time.Millisecond))

	if record {
		log := history.NewLog(stateDir(root), app.log)
		if err := log.Append(history.BuildEntry(ctx, result, root)); err != nil {
			app.log.Warn("history append failed", "error", err)
		}
	}

	if jsonOutput {
		return result, json.NewEncoder(os.Stdout).Encode(result)
	}
	printScanSummary(result)
	return result, nil
}

func printScanSummary(result *scan.Result) {
	fmt.Printf("Checked %d files", result.FilesChecked)
	if result.Scope != "" {
		fmt.Printf(" in %s/", result.Scope)
	}
	fmt.Println()

	for _, v := range result.Violations {
		loc := v.File
		if v.Line > 0 {
			loc = fmt.Sprintf("%s:%d", v.File, v.Line)
		}
		fmt.Printf("  [%s] %s: %s (%s)\n", v.Severity, loc, v.Message, v.Rule)
	}

	fmt.Printf("%d violations (%d errors, %d warnings)\n",
		result.Stats.Total, result.Stats.Errors, result.Stats.Warnings)
}

// readFileList reads one relative path per line, filtered by scope.
func readFileList(path, scope string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read diff file: %w", err)
	}
	defer f.Close()

	var files []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if scope != "" && !strings.HasPrefix(line, scope) {
			continue
		}
		files = append(files, line)
	}
	return files, sc.Err()
}

// gitChangedFiles lists files changed since HEAD. Errors collapse to an
// empty list so scans outside a git repo just check nothing.
func gitChangedFiles(ctx context.Context, root, scope string) []string {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", "diff", "--name-only", "HEAD")
	cmd.Dir = root
	out, err := cmd.Output()
	if err != nil {
		return nil
	}

	var files []string
	for _, line := range bytes.Split(out, []byte("\n")) {
		f := strings.TrimSpace(string(line))
		if f == "" {
			continue
		}
		if scope != "" && !strings.HasPrefix(f, scope) {
			continue
		}
		files = append(files, f)
	}
	return files
}
