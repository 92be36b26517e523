// Package tsql compiles the FILTER option's textual predicate grammar
// (spec.md §4.B) into an AST that Match evaluates against a record.
package tsql

// Node is implemented by every filter AST node.
type Node interface{ node() }

// BinaryExpr joins two predicates with AND/OR.
type BinaryExpr struct {
	Op    string // "AND" or "OR"
	Left  Node
	Right Node
}

func (BinaryExpr) node() {}

// Cmp compares a field against a literal value using one of
// =, !=, <, >, <=, >=.
type Cmp struct {
	Field string
	Op    string
	Value string
}

func (Cmp) node() {}

// Contains tests set membership (Negated == true for "!=" / not-contains).
type Contains struct {
	Field    string
	Values   []string
	Negated  bool
}

func (Contains) node() {}
