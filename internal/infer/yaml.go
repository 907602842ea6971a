package infer

import (
	"fmt"
	"strings"

	"github.com/bulwarkhq/bulwark/internal/rules"
)

// RenderYAML formats proposed rules as an invariants.yml fragment. The
// output is indented to paste directly under an `invariants:` key.
func RenderYAML(proposals []rules.Invariant, minConfidence float64) string {
	var b strings.Builder
	b.WriteString("# Auto-inferred rules (bulwark infer)\n")
	fmt.Fprintf(&b, "# Min confidence: %s%%\n", formatConfidence(minConfidence))
	b.WriteString("# Review before applying\n")

	if len(proposals) == 0 {
		b.WriteString("# No rules inferred at this confidence level\n")
		return b.String()
	}
	b.WriteString("\n")

	for _, p := range proposals {
		fmt.Fprintf(&b, "  - id: %s\n", p.ID)
		fmt.Fprintf(&b, "    type: %s\n", p.Type)
		fmt.Fprintf(&b, "    severity: %s\n", p.Severity)
		fmt.Fprintf(&b, "    description: %q\n", p.Description)
		if p.SourceGlob != "" {
			fmt.Fprintf(&b, "    source_glob: %q\n", p.SourceGlob)
		}
		if len(p.ForbiddenImports) > 0 {
			b.WriteString("    forbidden_imports:\n")
			for _, imp := range p.ForbiddenImports {
				fmt.Fprintf(&b, "      - %q\n", imp)
			}
		}
		if len(p.AllowedImports) > 0 {
			b.WriteString("    allowed_imports:\n")
			for _, imp := range p.AllowedImports {
				fmt.Fprintf(&b, "      - %q\n", imp)
			}
		}
		fmt.Fprintf(&b, "    inferred: %t\n", p.Inferred)
		fmt.Fprintf(&b, "    confidence: %s\n", formatConfidence(p.Confidence))
	}
	return b.String()
}

// formatConfidence renders whole-number confidences without a decimal.
func formatConfidence(conf float64) string {
	if conf == float64(int(conf)) {
		return fmt.Sprintf("%d", int(conf))
	}
	return fmt.Sprintf("%.1f", conf)
}
