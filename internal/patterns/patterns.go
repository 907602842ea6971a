// Package patterns surveys a project's structure: directory layout, layer
// naming conventions, multi-part file extensions, and source files missing a
// colocated test. Everything comes out of a single filesystem walk.
package patterns

import (
	"io/fs"
	"log/slog"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

var ignoredDirs = map[string]struct{}{
	"node_modules": {}, "dist": {}, ".next": {}, ".git": {}, "coverage": {},
	"__pycache__": {}, ".venv": {}, "vendor": {}, "target": {}, "build": {},
	".bulwark": {},
}

var sourceExts = map[string]struct{}{
	".ts": {}, ".js": {}, ".py": {}, ".java": {}, ".go": {}, ".rs": {},
}

var (
	testFileRe = regexp.MustCompile(
		`\.test\.[^.]+$|\.spec\.[^.]+$|\.d\.ts$` +
			`|Test\.java$|Tests\.java$|IT\.java$|Spec\.java$`)
	multiExtRe = regexp.MustCompile(`\.[a-zA-Z]+\.[a-z]+$`)
)

// knownLayers lists conventional layer directory names. Order matters for
// output stability.
var knownLayers = []string{
	"routes", "controllers", "controller", "services", "service",
	"repositories", "repository", "models", "model", "middleware",
	"utils", "util", "lib", "helpers", "types", "handlers", "resolvers",
	"stores", "hooks", "components", "pages", "app", "api", "db",
	"database", "config", "auth", "tests", "test", "__tests__",
	"entity", "entities", "dto", "converter", "mapper", "filter",
	"interceptor", "domain", "infrastructure", "adapter", "port",
	"presenter", "exception", "exceptions",
}

var knownLayerSet = func() map[string]struct{} {
	set := make(map[string]struct{}, len(knownLayers))
	for _, l := range knownLayers {
		set[l] = struct{}{}
	}
	return set
}()

// DirCount pairs a top-level directory with its file count.
type DirCount struct {
	Dir   string `json:"dir"`
	Count int    `json:"count"`
}

// Report is the structural survey of a project.
type Report struct {
	RawStructure   []string   `json:"raw_structure"`
	DetectedLayers []string   `json:"detected_layers"`
	NamingPatterns []string   `json:"naming_patterns"`
	TestGaps       []string   `json:"test_gaps"`
	FileCounts     []DirCount `json:"file_counts"`
}

// Detect walks the project once and assembles the report.
func Detect(root string, log *slog.Logger) (*Report, error) {
	if log == nil {
		log = slog.Default()
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	rawStructure := []string{}
	layerSeen := make(map[string]struct{})
	namingCounts := make(map[string]int)
	topLevelCounts := make(map[string]int)
	allFiles := make(map[string]struct{})

	type sourceFile struct {
		abs, rel, ext string
	}
	var sourceFiles []sourceFile

	err = filepath.WalkDir(absRoot, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		rel, relErr := filepath.Rel(absRoot, p)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if rel == "." {
				return nil
			}
			if _, ignored := ignoredDirs[d.Name()]; ignored {
				return fs.SkipDir
			}
			if strings.Count(rel, "/")+1 <= 3 {
				rawStructure = append(rawStructure, rel)
			}
			if _, known := knownLayerSet[d.Name()]; known {
				layerSeen[d.Name()] = struct{}{}
			}
			return nil
		}

		allFiles[p] = struct{}{}
		relDir := ""
		if idx := strings.IndexByte(rel, '/'); idx >= 0 {
			relDir = rel[:idx]
		}
		if relDir != "" {
			topLevelCounts[relDir]++
		}

		ext := filepath.Ext(d.Name())
		if _, isSource := sourceExts[ext]; !isSource {
			return nil
		}

		if m := multiExtRe.FindString(d.Name()); m != "" {
			namingCounts[m]++
		}
		if !testFileRe.MatchString(d.Name()) {
			sourceFiles = append(sourceFiles, sourceFile{
				abs: p, rel: rel, ext: strings.TrimPrefix(ext, "."),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	testGaps := []string{}
	for _, sf := range sourceFiles {
		if !hasColocatedTest(sf.abs, sf.ext, allFiles) {
			testGaps = append(testGaps, sf.rel)
		}
	}
	sort.Strings(testGaps)
	sort.Strings(rawStructure)

	detectedLayers := []string{}
	for _, layer := range knownLayers {
		if _, seen := layerSeen[layer]; seen {
			detectedLayers = append(detectedLayers, layer)
		}
	}

	fileCounts := []DirCount{}
	for dir, count := range topLevelCounts {
		fileCounts = append(fileCounts, DirCount{Dir: dir, Count: count})
	}
	sort.Slice(fileCounts, func(i, j int) bool { return fileCounts[i].Dir < fileCounts[j].Dir })

	log.Debug("pattern detection complete",
		"dirs", len(rawStructure), "layers", len(detectedLayers), "gaps", len(testGaps))

	return &Report{
		RawStructure:   rawStructure,
		DetectedLayers: detectedLayers,
		NamingPatterns: topNaming(namingCounts, 20),
		TestGaps:       testGaps,
		FileCounts:     fileCounts,
	}, nil
}

// topNaming returns the n most frequent multi-part extensions, ties broken
// alphabetically.
func topNaming(counts map[string]int, n int) []string {
	patterns := make([]string, 0, len(counts))
	for p := range counts {
		patterns = append(patterns, p)
	}
	sort.Slice(patterns, func(i, j int) bool {
		if counts[patterns[i]] != counts[patterns[j]] {
			return counts[patterns[i]] > counts[patterns[j]]
		}
		return patterns[i] < patterns[j]
	})
	if len(patterns) > n {
		patterns = patterns[:n]
	}
	return patterns
}

// hasColocatedTest checks for base.test.ext and base.spec.ext next to the
// file, plus the Java suffix conventions and the src/main/java mirror.
func hasColocatedTest(absPath, ext string, allFiles map[string]struct{}) bool {
	base := strings.TrimSuffix(absPath, "."+ext)

	if _, ok := allFiles[base+".test."+ext]; ok {
		return true
	}
	if _, ok := allFiles[base+".spec."+ext]; ok {
		return true
	}

	if ext == "java" {
		dir := filepath.Dir(absPath)
		stem := filepath.Base(base)
		for _, suffix := range []string{"Test.java", "Tests.java", "IT.java"} {
			if _, ok := allFiles[filepath.Join(dir, stem+suffix)]; ok {
				return true
			}
		}
		slashPath := filepath.ToSlash(absPath)
		if strings.Contains(slashPath, "/src/main/java/") {
			mirror := strings.TrimSuffix(
				strings.Replace(slashPath, "src/main/java", "src/test/java", 1), ".java")
			mirrorDir := filepath.Dir(filepath.FromSlash(mirror))
			mirrorStem := filepath.Base(mirror)
			for _, suffix := range []string{"Test.java", "Tests.java", "IT.java"} {
				if _, ok := allFiles[filepath.Join(mirrorDir, mirrorStem+suffix)]; ok {
					return true
				}
			}
		}
	}
	return false
}
