//go:build anteater_treesitter_example

// This file is excluded from normal builds (see the build tag above); it
// exists only to document, per SPEC_FULL.md's domain-stack ledger, how a
// concrete parser adapter would satisfy ParsedUnit using the corpus's
// tree-sitter binding rather than a hand-rolled parser. The analysis core
// never imports it.
package sourceast

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// treeSitterUnit is a sketch, not a working implementation: a real adapter
// would walk the grammar-specific node kinds and build the Declaration /
// Stmt / Expr trees declared in sourceast.go from them. Left unimplemented
// deliberately — the source-language grammar itself is out of scope
// (spec.md §1).
type treeSitterUnit struct {
	tree *sitter.Tree
	src  []byte
	path string
}

func (u *treeSitterUnit) Path() string { return u.path }

func (u *treeSitterUnit) Declarations() []Declaration {
	panic("treesitter_example: grammar-specific lowering is not part of the analysis core")
}

func (u *treeSitterUnit) ResolveOffset(offset int) (line, column int) {
	// A real adapter would use sitter.Point tracking from the node the
	// offset falls under; omitted here for the same reason as above.
	panic("treesitter_example: not implemented")
}
