// Package adjacency builds a module-level dependency graph from file-level
// import data. Files are grouped into modules by their leading path
// components; cross-module imports become directed edges, optionally
// annotated with the boundary violations a scan reported on them.
package adjacency

import (
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bulwarkhq/bulwark/internal/extract"
	"github.com/bulwarkhq/bulwark/internal/rules"
)

// Entry pairs a source file with the import specifiers extracted from it.
type Entry struct {
	File    string   `json:"file"`
	Imports []string `json:"imports"`
}

// ImportRef records one concrete import contributing to an edge. Target is
// the raw specifier as written in the source, not the resolved path.
type ImportRef struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Module is one node of the graph.
type Module struct {
	ID         string   `json:"id"`
	Files      []string `json:"files"`
	FileCount  int      `json:"file_count"`
	Violations int      `json:"violations"`
}

// Edge is one cross-module dependency.
type Edge struct {
	From      string      `json:"from"`
	To        string      `json:"to"`
	Imports   []ImportRef `json:"imports"`
	Violation bool        `json:"violation"`
	RuleIDs   []string    `json:"rule_ids"`
}

// Graph is the adjacency output payload.
type Graph struct {
	Modules []Module `json:"modules"`
	Edges   []Edge   `json:"edges"`
}

// ModuleID maps a file path to its module id, the first two path components.
//
//	src/routes/users.ts -> src/routes
//	src/utils.ts        -> src
//	utils.ts            -> utils
func ModuleID(filePath string) string {
	parts := strings.Split(strings.ReplaceAll(filePath, "\\", "/"), "/")
	switch {
	case len(parts) >= 3:
		return parts[0] + "/" + parts[1]
	case len(parts) == 2:
		return parts[0]
	default:
		name := parts[0]
		if dot := strings.LastIndexByte(name, '.'); dot > 0 {
			return name[:dot]
		}
		return name
	}
}

// ResolveImport resolves an import specifier against its source file.
// Relative specifiers (leading dot) are joined to the source directory and
// cleaned; anything else is returned as written.
func ResolveImport(sourceFile, imp string) string {
	if !strings.HasPrefix(imp, ".") {
		return imp
	}
	resolved := path.Clean(path.Join(path.Dir(sourceFile), imp))
	return strings.ReplaceAll(resolved, "\\", "/")
}

// violationKey identifies one flagged import within one file.
type violationKey struct {
	file     string
	resolved string
}

// IndexViolations indexes scan violations by (source file, resolved import).
// Only violations that carry an import survive; pattern and convention
// findings have no edge to attach to.
func IndexViolations(violations []rules.Violation) map[violationKey][]string {
	index := make(map[violationKey][]string)
	for _, v := range violations {
		if v.Import == "" || v.File == "" || v.Rule == "" {
			continue
		}
		key := violationKey{file: v.File, resolved: ResolveImport(v.File, v.Import)}
		if !containsString(index[key], v.Rule) {
			index[key] = append(index[key], v.Rule)
		}
	}
	return index
}

// BuildEntries converts a file list into graph entries by extracting each
// file's imports. Files that vanished since listing are skipped.
func BuildEntries(root string, files []string) []Entry {
	entries := make([]Entry, 0, len(files))
	for _, f := range files {
		abs := filepath.Join(root, filepath.FromSlash(f))
		if info, err := os.Stat(abs); err != nil || info.IsDir() {
			continue
		}
		entries = append(entries, Entry{File: f, Imports: extract.File(abs)})
	}
	return entries
}

// Build constructs the module graph. Imports that stay inside their own
// module are dropped; imported modules with no scanned files still appear as
// nodes so external boundaries show up in the graph.
func Build(entries []Entry, violations []rules.Violation) *Graph {
	violationIndex := IndexViolations(violations)

	moduleFiles := make(map[string]map[string]struct{})
	type edgeKey struct{ from, to string }
	edgeImports := make(map[edgeKey][]ImportRef)
	edgeRules := make(map[edgeKey]map[string]struct{})

	for _, entry := range entries {
		if entry.File == "" {
			continue
		}
		sourceModule := ModuleID(entry.File)
		if moduleFiles[sourceModule] == nil {
			moduleFiles[sourceModule] = make(map[string]struct{})
		}
		moduleFiles[sourceModule][entry.File] = struct{}{}

		for _, imp := range entry.Imports {
			if imp == "" {
				continue
			}
			resolved := ResolveImport(entry.File, imp)
			targetModule := ModuleID(resolved)
			if targetModule == sourceModule {
				continue
			}
			if moduleFiles[targetModule] == nil {
				moduleFiles[targetModule] = make(map[string]struct{})
			}

			key := edgeKey{from: sourceModule, to: targetModule}
			edgeImports[key] = append(edgeImports[key], ImportRef{
				Source: entry.File,
				Target: imp,
			})

			if ruleIDs, ok := violationIndex[violationKey{file: entry.File, resolved: resolved}]; ok {
				if edgeRules[key] == nil {
					edgeRules[key] = make(map[string]struct{})
				}
				for _, id := range ruleIDs {
					edgeRules[key][id] = struct{}{}
				}
			}
		}
	}

	// Module violation counts come from the scan index, not the edges, so
	// same-module violations still count against their module.
	moduleViolations := make(map[string]int)
	for key, ruleIDs := range violationIndex {
		moduleViolations[ModuleID(key.file)] += len(ruleIDs)
	}

	graph := &Graph{Modules: []Module{}, Edges: []Edge{}}

	moduleIDs := make([]string, 0, len(moduleFiles))
	for id := range moduleFiles {
		moduleIDs = append(moduleIDs, id)
	}
	sort.Strings(moduleIDs)
	for _, id := range moduleIDs {
		files := make([]string, 0, len(moduleFiles[id]))
		for f := range moduleFiles[id] {
			files = append(files, f)
		}
		sort.Strings(files)
		graph.Modules = append(graph.Modules, Module{
			ID:         id,
			Files:      files,
			FileCount:  len(files),
			Violations: moduleViolations[id],
		})
	}

	keys := make([]edgeKey, 0, len(edgeImports))
	for key := range edgeImports {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].from != keys[j].from {
			return keys[i].from < keys[j].from
		}
		return keys[i].to < keys[j].to
	})
	for _, key := range keys {
		ruleIDs := []string{}
		for id := range edgeRules[key] {
			ruleIDs = append(ruleIDs, id)
		}
		sort.Strings(ruleIDs)
		graph.Edges = append(graph.Edges, Edge{
			From:      key.from,
			To:        key.to,
			Imports:   edgeImports[key],
			Violation: len(ruleIDs) > 0,
			RuleIDs:   ruleIDs,
		})
	}

	return graph
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
