package scan

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/bulwarkhq/bulwark/internal/rules"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	abs := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestFindSourceFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/app.ts", "")
	writeFile(t, root, "src/db/client.ts", "")
	writeFile(t, root, "main.go", "")
	writeFile(t, root, "node_modules/react/index.js", "")
	writeFile(t, root, ".bulwark/invariants.yml", "")
	writeFile(t, root, "docs/readme.md", "")

	files, err := FindSourceFiles(root)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"main.go", "src/app.ts", "src/db/client.ts"}
	if !reflect.DeepEqual(files, want) {
		t.Errorf("FindSourceFiles = %v, want %v", files, want)
	}
}

func TestFilterScope(t *testing.T) {
	files := []string{"main.go", "src/app.ts", "src/db/client.ts", "srcx/other.ts"}
	got := FilterScope(files, "src")
	want := []string{"src/app.ts", "src/db/client.ts"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FilterScope = %v, want %v", got, want)
	}
}

func TestScan(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/routes/users.ts", `import { db } from "../db/client";`+"\n")
	writeFile(t, root, "src/routes/orders.ts", `import { pool } from "../db/pool";`+"\n")
	writeFile(t, root, "src/db/client.ts", "export const db = 1\n")

	invariants := []rules.Invariant{{
		ID:               "no-db-in-routes",
		Type:             rules.TypeBoundary,
		Severity:         rules.SeverityError,
		Description:      "routes must go through the service layer",
		SourceGlob:       "src/routes/**",
		ForbiddenImports: []string{"../db/**"},
	}}

	files, err := FindSourceFiles(root)
	if err != nil {
		t.Fatal(err)
	}

	scanner := New(root, nil)
	result, err := scanner.Scan(context.Background(), "", files, invariants)
	if err != nil {
		t.Fatal(err)
	}

	if result.FilesChecked != 3 {
		t.Errorf("FilesChecked = %d, want 3", result.FilesChecked)
	}
	if result.Stats.Total != 2 || result.Stats.Errors != 2 || result.Stats.Warnings != 0 {
		t.Errorf("Stats = %+v, want 2 errors", result.Stats)
	}
	// Violations come back in file order regardless of scheduling.
	if result.Violations[0].File != "src/routes/orders.ts" ||
		result.Violations[1].File != "src/routes/users.ts" {
		t.Errorf("violations out of file order: %+v", result.Violations)
	}
}

func TestScanSkipsMissingFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/app.ts", `import x from "./x";`+"\n")

	invariants := []rules.Invariant{{
		ID:               "ban-x",
		Type:             rules.TypeBoundary,
		Severity:         rules.SeverityError,
		ForbiddenImports: []string{"./x"},
	}}

	scanner := New(root, nil)
	result, err := scanner.Scan(context.Background(), "",
		[]string{"src/app.ts", "src/deleted.ts"}, invariants)
	if err != nil {
		t.Fatal(err)
	}
	if result.FilesChecked != 2 {
		t.Errorf("FilesChecked = %d, want 2 (listed files)", result.FilesChecked)
	}
	if result.Stats.Total != 1 {
		t.Errorf("Stats.Total = %d, want 1", result.Stats.Total)
	}
}

func TestScanSkipsOversizedFiles(t *testing.T) {
	root := t.TempDir()
	big := `import x from "./x";` + "\n" + strings.Repeat("// pad\n", 100)
	writeFile(t, root, "src/big.ts", big)

	invariants := []rules.Invariant{{
		ID:               "ban-x",
		Type:             rules.TypeBoundary,
		Severity:         rules.SeverityError,
		ForbiddenImports: []string{"./x"},
	}}

	scanner := New(root, nil)
	scanner.MaxFileBytes = 64
	result, err := scanner.Scan(context.Background(), "", []string{"src/big.ts"}, invariants)
	if err != nil {
		t.Fatal(err)
	}
	if result.Stats.Total != 0 {
		t.Errorf("oversized file was scanned: %+v", result.Violations)
	}
}

func TestScanCancelled(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/app.ts", "\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	scanner := New(root, nil)
	if _, err := scanner.Scan(ctx, "", []string{"src/app.ts"}, nil); err == nil {
		t.Error("cancelled context should surface an error")
	}
}

func TestScanSpanAttributes(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	root := t.TempDir()
	writeFile(t, root, "src/routes/users.ts", `import { db } from "../db/client";`+"\n")
	writeFile(t, root, "src/db/client.ts", "export const db = 1\n")

	invariants := []rules.Invariant{{
		ID:               "no-db-in-routes",
		Type:             rules.TypeBoundary,
		Severity:         rules.SeverityError,
		SourceGlob:       "src/routes/**",
		ForbiddenImports: []string{"../db/**"},
	}}

	scanner := New(root, nil)
	if _, err := scanner.Scan(context.Background(), "",
		[]string{"src/db/client.ts", "src/routes/users.ts"}, invariants); err != nil {
		t.Fatal(err)
	}

	var span sdktrace.ReadOnlySpan
	for _, s := range recorder.Ended() {
		if s.Name() == "bulwark.scan" {
			span = s
		}
	}
	if span == nil {
		t.Fatal("no bulwark.scan span recorded")
	}

	got := map[string]int64{}
	for _, attr := range span.Attributes() {
		got[string(attr.Key)] = attr.Value.AsInt64()
	}
	if got["scan.files_checked"] != 2 {
		t.Errorf("scan.files_checked = %d, want 2", got["scan.files_checked"])
	}
	if got["scan.violation_count"] != 1 {
		t.Errorf("scan.violation_count = %d, want 1", got["scan.violation_count"])
	}
	if got["scan.error_count"] != 1 {
		t.Errorf("scan.error_count = %d, want 1", got["scan.error_count"])
	}
}

func TestScanEmpty(t *testing.T) {
	scanner := New(t.TempDir(), nil)
	result, err := scanner.Scan(context.Background(), "src", nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if result.Scope != "src" || result.FilesChecked != 0 || len(result.Violations) != 0 {
		t.Errorf("empty scan result wrong: %+v", result)
	}
}
