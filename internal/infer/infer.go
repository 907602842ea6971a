// Package infer proposes boundary invariants from an observed module
// adjacency graph. Four detectors run over the graph; each proposal carries a
// confidence score and rules below the caller's threshold are discarded.
package infer

import (
	"fmt"
	"log/slog"
	"math"
	"path"
	"sort"
	"strings"

	"github.com/bulwarkhq/bulwark/internal/adjacency"
	"github.com/bulwarkhq/bulwark/internal/rules"
)

// DefaultMinConfidence is the confidence floor applied when the caller does
// not choose one.
const DefaultMinConfidence = 90

// gatewayNames are file stems conventionally used as a module's public
// entry point.
var gatewayNames = map[string]struct{}{
	"index":    {},
	"__init__": {},
	"mod":      {},
	"lib":      {},
	"main":     {},
	"exports":  {},
	"public":   {},
}

// Engine runs the rule detectors against a graph.
type Engine struct {
	MinConfidence float64
	log           *slog.Logger
}

// NewEngine creates an inference engine.
func NewEngine(minConfidence float64, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{MinConfidence: minConfidence, log: log}
}

// Infer runs every detector and returns the deduplicated proposals.
// Inference needs evidence: with no module holding at least two files there
// is nothing to generalize from, and nil is returned.
func (e *Engine) Infer(graph *adjacency.Graph) []rules.Invariant {
	if graph == nil {
		return nil
	}

	valid := 0
	for _, m := range graph.Modules {
		if m.FileCount >= 2 {
			valid++
		}
	}
	if valid == 0 {
		e.log.Debug("no multi-file modules, nothing to infer")
		return nil
	}

	var proposals []rules.Invariant
	proposals = append(proposals, e.detectDirectionality(graph)...)
	proposals = append(proposals, e.detectGateway(graph)...)
	proposals = append(proposals, e.detectSelfContainment(graph)...)
	proposals = append(proposals, e.detectSelectiveDeps(graph)...)

	deduped := dedupe(proposals)
	e.log.Debug("inference complete",
		"candidates", len(proposals), "kept", len(deduped))
	return deduped
}

func slug(moduleID string) string {
	return strings.NewReplacer("/", "-", "\\", "-").Replace(moduleID)
}

func fileStem(p string) string {
	base := path.Base(strings.ReplaceAll(p, "\\", "/"))
	if dot := strings.LastIndexByte(base, '.'); dot > 0 {
		return base[:dot]
	}
	return base
}

func moduleIndex(graph *adjacency.Graph) map[string]adjacency.Module {
	index := make(map[string]adjacency.Module, len(graph.Modules))
	for _, m := range graph.Modules {
		index[m.ID] = m
	}
	return index
}

// detectDirectionality proposes a reverse-import ban for every edge that has
// two or more imports and no edge going the other way. The entire observed
// traffic already obeys the rule, so confidence is 100.
func (e *Engine) detectDirectionality(graph *adjacency.Graph) []rules.Invariant {
	mods := moduleIndex(graph)
	edgeSet := make(map[[2]string]struct{}, len(graph.Edges))
	for _, edge := range graph.Edges {
		edgeSet[[2]string{edge.From, edge.To}] = struct{}{}
	}

	var out []rules.Invariant
	for _, edge := range graph.Edges {
		if len(edge.Imports) < 2 {
			continue
		}
		fromInfo, fromOK := mods[edge.From]
		toInfo, toOK := mods[edge.To]
		if !fromOK || !toOK || fromInfo.FileCount == 0 || toInfo.FileCount == 0 {
			continue
		}
		if _, bidirectional := edgeSet[[2]string{edge.To, edge.From}]; bidirectional {
			continue
		}
		const confidence = 100.0
		if confidence < e.MinConfidence {
			continue
		}
		out = append(out, rules.Invariant{
			ID:       fmt.Sprintf("inferred-%s-no-import-%s", slug(edge.To), slug(edge.From)),
			Type:     rules.TypeBoundary,
			Severity: rules.SeverityWarning,
			Description: fmt.Sprintf("%s imports from %s but %s never imports from %s",
				edge.From, edge.To, edge.To, edge.From),
			SourceGlob:       edge.To + "/**",
			ForbiddenImports: []string{edge.From + "/**"},
			Inferred:         true,
			Confidence:       confidence,
		})
	}
	return out
}

// detectGateway looks for modules whose incoming imports overwhelmingly
// target one conventional entry file. The raw specifier's last path
// component stands in for the target file since specifiers are unresolved.
func (e *Engine) detectGateway(graph *adjacency.Graph) []rules.Invariant {
	mods := moduleIndex(graph)

	incoming := make(map[string][]adjacency.ImportRef)
	for _, edge := range graph.Edges {
		incoming[edge.To] = append(incoming[edge.To], edge.Imports...)
	}

	targets := make([]string, 0, len(incoming))
	for id := range incoming {
		targets = append(targets, id)
	}
	sort.Strings(targets)

	var out []rules.Invariant
	for _, modID := range targets {
		refs := incoming[modID]
		info, ok := mods[modID]
		if !ok || info.FileCount <= 1 || len(refs) < 2 {
			continue
		}

		leafCounts := make(map[string]int)
		var leafOrder []string
		for _, ref := range refs {
			parts := strings.Split(strings.ReplaceAll(ref.Target, "\\", "/"), "/")
			leaf := parts[len(parts)-1]
			if _, seen := leafCounts[leaf]; !seen {
				leafOrder = append(leafOrder, leaf)
			}
			leafCounts[leaf]++
		}

		// Ties keep the first-encountered leaf, not the lexicographic one.
		topLeaf, topCount := "", 0
		for _, leaf := range leafOrder {
			if count := leafCounts[leaf]; count > topCount {
				topLeaf, topCount = leaf, count
			}
		}

		pct := float64(topCount) / float64(len(refs)) * 100.0
		if _, isGateway := gatewayNames[fileStem(topLeaf)]; !isGateway {
			continue
		}
		if pct < 90.0 {
			continue
		}
		confidence := math.Round(pct*10) / 10
		if confidence < e.MinConfidence {
			continue
		}

		out = append(out, rules.Invariant{
			ID:       fmt.Sprintf("inferred-%s-gateway", slug(modID)),
			Type:     rules.TypeBoundary,
			Severity: rules.SeverityWarning,
			Description: fmt.Sprintf("%.0f%% of imports into %s go through %s - enforce gateway pattern",
				pct, modID, topLeaf),
			SourceGlob:       "**",
			ForbiddenImports: []string{modID + "/**"},
			AllowedImports:   []string{modID + "/" + topLeaf},
			Inferred:         true,
			Confidence:       confidence,
		})
	}
	return out
}

// detectSelfContainment flags multi-file modules that import from at most
// one other module. Needs at least three modules overall or the pattern is
// just the shape of a tiny project.
func (e *Engine) detectSelfContainment(graph *adjacency.Graph) []rules.Invariant {
	if len(graph.Modules) < 3 {
		return nil
	}

	outgoing := make(map[string]map[string]struct{})
	for _, edge := range graph.Edges {
		if outgoing[edge.From] == nil {
			outgoing[edge.From] = make(map[string]struct{})
		}
		outgoing[edge.From][edge.To] = struct{}{}
	}

	var out []rules.Invariant
	for _, mod := range graph.Modules {
		if mod.FileCount <= 1 {
			continue
		}
		targets := outgoing[mod.ID]
		if len(targets) > 1 {
			continue
		}
		const confidence = 100.0
		if confidence < e.MinConfidence {
			continue
		}

		inv := rules.Invariant{
			ID:               fmt.Sprintf("inferred-%s-self-contained", slug(mod.ID)),
			Type:             rules.TypeBoundary,
			Severity:         rules.SeverityWarning,
			SourceGlob:       mod.ID + "/**",
			ForbiddenImports: []string{"**"},
			Inferred:         true,
			Confidence:       confidence,
		}
		if len(targets) == 0 {
			inv.Description = fmt.Sprintf("%s has no external imports - enforce self-containment", mod.ID)
			inv.AllowedImports = []string{mod.ID + "/**"}
		} else {
			var target string
			for t := range targets {
				target = t
			}
			inv.Description = fmt.Sprintf("%s only imports from %s - enforce self-containment", mod.ID, target)
			inv.AllowedImports = []string{mod.ID + "/**", target + "/**"}
		}
		out = append(out, inv)
	}
	return out
}

// detectSelectiveDeps flags multi-file modules that import from exactly two
// other modules. One target is self-containment territory; three or more is
// too promiscuous to be intentional.
func (e *Engine) detectSelectiveDeps(graph *adjacency.Graph) []rules.Invariant {
	if len(graph.Modules) < 3 {
		return nil
	}

	outgoing := make(map[string]map[string]struct{})
	incoming := make(map[string]map[string]struct{})
	for _, edge := range graph.Edges {
		if outgoing[edge.From] == nil {
			outgoing[edge.From] = make(map[string]struct{})
		}
		outgoing[edge.From][edge.To] = struct{}{}
		if incoming[edge.To] == nil {
			incoming[edge.To] = make(map[string]struct{})
		}
		incoming[edge.To][edge.From] = struct{}{}
	}

	var out []rules.Invariant
	for _, mod := range graph.Modules {
		if mod.FileCount <= 1 {
			continue
		}
		targets := outgoing[mod.ID]
		if len(targets)+len(incoming[mod.ID]) == 0 {
			continue
		}
		if len(targets) != 2 {
			continue
		}
		const confidence = 100.0
		if confidence < e.MinConfidence {
			continue
		}

		allowed := make([]string, 0, 2)
		for t := range targets {
			allowed = append(allowed, t)
		}
		sort.Strings(allowed)

		out = append(out, rules.Invariant{
			ID:       fmt.Sprintf("inferred-%s-selective-deps", slug(mod.ID)),
			Type:     rules.TypeBoundary,
			Severity: rules.SeverityWarning,
			Description: fmt.Sprintf("%s only imports from %s and %s - enforce selective dependencies",
				mod.ID, allowed[0], allowed[1]),
			SourceGlob:       mod.ID + "/**",
			ForbiddenImports: []string{"**"},
			AllowedImports:   []string{mod.ID + "/**", allowed[0] + "/**", allowed[1] + "/**"},
			Inferred:         true,
			Confidence:       confidence,
		})
	}
	return out
}

// dedupe drops proposals that repeat an earlier (source_glob, forbidden
// imports) combination. First proposal wins.
func dedupe(proposals []rules.Invariant) []rules.Invariant {
	seen := make(map[string]struct{}, len(proposals))
	var unique []rules.Invariant
	for _, p := range proposals {
		forbidden := append([]string(nil), p.ForbiddenImports...)
		sort.Strings(forbidden)
		key := p.SourceGlob + "\x00" + strings.Join(forbidden, "\x00")
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, p)
	}
	return unique
}
