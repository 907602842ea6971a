package scan

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bulwarkhq/bulwark/internal/extract"
)

// Directories never descended into during discovery.
var ignoredDirs = map[string]struct{}{
	"node_modules": {},
	"dist":         {},
	".next":        {},
	".git":         {},
	"coverage":     {},
	"__pycache__":  {},
	".venv":        {},
	"vendor":       {},
	"target":       {},
	"build":        {},
	".bulwark":     {},
}

// FindSourceFiles walks root and returns sorted slash-separated paths,
// relative to root, of every file with a recognized source extension.
func FindSourceFiles(root string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable subtrees are skipped, not fatal.
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if _, ok := ignoredDirs[d.Name()]; ok {
				return filepath.SkipDir
			}
			return nil
		}
		if extract.LanguageForPath(path) == extract.LangUnknown {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// FilterScope keeps only files under the given path prefix. An empty scope
// keeps everything.
func FilterScope(files []string, scope string) []string {
	if scope == "" {
		return files
	}
	scope = strings.TrimSuffix(scope, "/")
	var kept []string
	for _, f := range files {
		if f == scope || strings.HasPrefix(f, scope+"/") {
			kept = append(kept, f)
		}
	}
	return kept
}
