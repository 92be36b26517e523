package tsql

import (
	"strconv"

	"github.com/coffersTech/nanots/internal/tsvalue"
)

// Match evaluates a compiled filter node against a record. A nil node
// (empty filter) always matches.
func Match(node Node, rec *tsvalue.Record) bool {
	if node == nil {
		return true
	}
	switch n := node.(type) {
	case BinaryExpr:
		if n.Op == "OR" {
			return Match(n.Left, rec) || Match(n.Right, rec)
		}
		return Match(n.Left, rec) && Match(n.Right, rec)
	case Cmp:
		return matchCmp(n, rec)
	case Contains:
		return matchContains(n, rec)
	default:
		return false
	}
}

func matchCmp(n Cmp, rec *tsvalue.Record) bool {
	raw, ok := rec.Get(n.Field)
	if !ok {
		// A missing field never satisfies a comparison, equality included.
		return false
	}
	fieldVal := tsvalue.Parse(raw)
	litVal := tsvalue.Parse(n.Value)

	if fieldVal.IsNumeric() && litVal.IsNumeric() {
		a, _ := fieldVal.Float64()
		b, _ := litVal.Float64()
		return compareNumeric(a, b, n.Op)
	}
	return compareString(raw, n.Value, n.Op)
}

func compareNumeric(a, b float64, op string) bool {
	switch op {
	case "=":
		return a == b
	case "!=":
		return a != b
	case "<":
		return a < b
	case ">":
		return a > b
	case "<=":
		return a <= b
	case ">=":
		return a >= b
	default:
		return false
	}
}

func compareString(a, b, op string) bool {
	switch op {
	case "=":
		return a == b
	case "!=":
		return a != b
	case "<":
		return a < b
	case ">":
		return a > b
	case "<=":
		return a <= b
	case ">=":
		return a >= b
	default:
		return false
	}
}

func matchContains(n Contains, rec *tsvalue.Record) bool {
	raw, ok := rec.Get(n.Field)
	if !ok {
		// Null field: "field = (...)" is false, so "field != (...)" is also
		// false rather than vacuously true — absence never satisfies either
		// direction of a membership test.
		return false
	}

	found := false
	for _, v := range n.Values {
		if valuesEqual(raw, v) {
			found = true
			break
		}
	}
	if n.Negated {
		return !found
	}
	return found
}

func valuesEqual(raw, lit string) bool {
	af, aerr := strconv.ParseFloat(raw, 64)
	bf, berr := strconv.ParseFloat(lit, 64)
	if aerr == nil && berr == nil {
		return af == bf
	}
	return raw == lit
}
