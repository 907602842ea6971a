package patterns

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeFile(t *testing.T, root, rel string) {
	t.Helper()
	abs := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(abs, []byte("x\n"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDetect(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/routes/users.ts")
	writeFile(t, root, "src/services/user.service.ts")
	writeFile(t, root, "src/services/user.service.test.ts")
	writeFile(t, root, "src/services/order.service.ts")
	writeFile(t, root, "src/models/user.model.ts")
	writeFile(t, root, "README.md")
	writeFile(t, root, "node_modules/react/index.js")
	writeFile(t, root, "a/b/c/d/deep.ts")

	report, err := Detect(root, nil)
	if err != nil {
		t.Fatal(err)
	}

	// Depth cap: a/b/c appears, a/b/c/d does not; ignored dirs pruned.
	for _, dir := range report.RawStructure {
		if dir == "a/b/c/d" {
			t.Error("raw_structure should stop at depth 3")
		}
		if dir == "node_modules" {
			t.Error("ignored directory in raw_structure")
		}
	}
	found := false
	for _, dir := range report.RawStructure {
		if dir == "a/b/c" {
			found = true
		}
	}
	if !found {
		t.Errorf("a/b/c missing from raw_structure: %v", report.RawStructure)
	}

	wantLayers := []string{"routes", "services", "models"}
	if !reflect.DeepEqual(report.DetectedLayers, wantLayers) {
		t.Errorf("detected_layers = %v, want %v (fixed order)", report.DetectedLayers, wantLayers)
	}

	// .service.ts appears twice (source + test), .model.ts once.
	if len(report.NamingPatterns) == 0 || report.NamingPatterns[0] != ".service.ts" {
		t.Errorf("naming_patterns = %v, want .service.ts first", report.NamingPatterns)
	}

	// user.service.ts has a colocated test; the others do not. Test files
	// and non-source files never count as gaps.
	wantGaps := []string{"a/b/c/d/deep.ts", "src/models/user.model.ts",
		"src/routes/users.ts", "src/services/order.service.ts"}
	if !reflect.DeepEqual(report.TestGaps, wantGaps) {
		t.Errorf("test_gaps = %v, want %v", report.TestGaps, wantGaps)
	}

	for _, fc := range report.FileCounts {
		if fc.Dir == "src" && fc.Count != 5 {
			t.Errorf("src file count = %d, want 5", fc.Count)
		}
		if fc.Dir == "node_modules" {
			t.Error("ignored directory in file_counts")
		}
	}
}

func TestDetectJavaMirror(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/main/java/com/acme/User.java")
	writeFile(t, root, "src/test/java/com/acme/UserTest.java")
	writeFile(t, root, "src/main/java/com/acme/Order.java")

	report, err := Detect(root, nil)
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"src/main/java/com/acme/Order.java"}
	if !reflect.DeepEqual(report.TestGaps, want) {
		t.Errorf("test_gaps = %v, want %v", report.TestGaps, want)
	}
}

func TestDetectEmptyProject(t *testing.T) {
	report, err := Detect(t.TempDir(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(report.RawStructure) != 0 || len(report.TestGaps) != 0 {
		t.Errorf("empty project report not empty: %+v", report)
	}
}
