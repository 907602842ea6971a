// Package rules evaluates architectural invariants against source files.
package rules

// Rule types.
const (
	TypeBoundary   = "boundary"
	TypePattern    = "pattern"
	TypeConvention = "convention"
	TypeDependency = "dependency"
)

// Severities.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
	SeverityInfo    = "info"
)

// Invariant is a declared architectural rule. Which fields apply depends on
// Type. Invariants are immutable once loaded for a scan and are identified
// by ID.
type Invariant struct {
	ID               string   `yaml:"id" json:"id"`
	Type             string   `yaml:"type" json:"type"`
	Severity         string   `yaml:"severity" json:"severity"`
	Description      string   `yaml:"description" json:"description"`
	SourceGlob       string   `yaml:"source_glob,omitempty" json:"source_glob,omitempty"`
	ScopeGlob        string   `yaml:"scope_glob,omitempty" json:"scope_glob,omitempty"`
	ScopeGlobExclude []string `yaml:"scope_glob_exclude,omitempty" json:"scope_glob_exclude,omitempty"`
	ForbiddenImports []string `yaml:"forbidden_imports,omitempty" json:"forbidden_imports,omitempty"`
	AllowedImports   []string `yaml:"allowed_imports,omitempty" json:"allowed_imports,omitempty"`
	ForbiddenPattern string   `yaml:"forbidden_pattern,omitempty" json:"forbidden_pattern,omitempty"`
	Rule             string   `yaml:"rule,omitempty" json:"rule,omitempty"`
	Package          string   `yaml:"package,omitempty" json:"package,omitempty"`
	AllowedIn        []string `yaml:"allowed_in,omitempty" json:"allowed_in,omitempty"`

	// Set only on rules proposed by the inference engine.
	Inferred   bool    `yaml:"inferred,omitempty" json:"inferred,omitempty"`
	Confidence float64 `yaml:"confidence,omitempty" json:"confidence,omitempty"`
}

// Violation is a single detected breach of an invariant by a file. Import is
// set for boundary rules, Line for pattern rules, Package for dependency
// rules.
type Violation struct {
	Rule     string `json:"rule"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
	File     string `json:"file"`
	Import   string `json:"import,omitempty"`
	Line     int    `json:"line,omitempty"`
	Package  string `json:"package,omitempty"`
}
