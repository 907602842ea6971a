package extract

import (
	"context"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// pythonImportQuery captures module names from both import statement forms.
// Relative froms (`from .sibling import x`) wrap their dotted name in a
// relative_import node; the prefix dots are not part of the name, so
// `from ..pkg.mod import y` yields `pkg.mod`. Bare-relative imports
// (`from . import x`) carry no dotted module name and are not captured.
const pythonImportQuery = `
(import_statement name: (dotted_name) @module)
(import_statement name: (aliased_import name: (dotted_name) @module))
(import_from_statement module_name: (dotted_name) @module)
(import_from_statement module_name: (relative_import (dotted_name) @module))
`

// extractPython uses a structured parse instead of lexical stripping: the
// grammar resolves comments and strings exactly, so there is nothing to
// strip. A source that fails to parse yields no imports rather than a
// partial list.
func extractPython(src []byte) []string {
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(context.Background(), nil, src)
	if err != nil {
		return nil
	}
	root := tree.RootNode()
	if root.HasError() {
		return nil
	}

	query, err := sitter.NewQuery([]byte(pythonImportQuery), python.GetLanguage())
	if err != nil {
		return nil
	}
	defer query.Close()

	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(query, root)

	var imports importList
	for {
		m, ok := qc.NextMatch()
		if !ok {
			break
		}
		for _, c := range m.Captures {
			imports.add(c.Node.Content(src))
		}
	}
	return imports.list
}
