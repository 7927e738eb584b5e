package querybuilder

import (
	"fmt"
	"strings"
)

// nodeKind tags the variant of a predicate node, mirroring the AST
// described for the WHERE/HAVING predicate tree: comparisons, set
// membership, ranges, correlated existence/aggregate subqueries, raw
// fragments, and the group markers that bracket a nested scope.
type nodeKind int

const (
	nodeCmp nodeKind = iota
	nodeLike
	nodeIn
	nodeBetween
	nodeGroupStart
	nodeGroupEnd
	nodeExists
	nodeAggSubquery
	nodeRaw
)

// node is one entry in a flat WHERE/HAVING list. Nested groups are
// represented by a matching nodeGroupStart/nodeGroupEnd pair rather than a
// recursive tree, which keeps the emitter a single linear pass with a
// scope-depth counter.
type node struct {
	kind nodeKind
	conn connective

	column string
	op     string
	value  any // scalar, Raw, or unused when isNull
	isNull bool

	values  []any // IN / NOT IN
	negated bool   // NOT IN / NOT BETWEEN / NOT EXISTS

	lo, hi any // BETWEEN

	// EXISTS and HasCount's AggregateSubquery are compiled eagerly at the
	// point the DSL method runs (the correlated sub-builder is fully formed
	// by then, since its filter callback has already executed); an
	// aggregate-alias filter becomes an AggregateSubquery when the query is
	// compiled. Either way the node stores ready-to-splice SQL plus its own
	// parameter list. nodeRaw reuses the
	// same two fields for caller-supplied WhereRaw fragments and for the
	// hydrator's composite-key disjunctions.
	rawSQL    string
	rawParams []any
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	parts := make([]string, n)
	for i := range parts {
		parts[i] = "?"
	}
	return strings.Join(parts, ", ")
}

// emitNode renders a single leaf node (never a group marker) to its SQL
// fragment and the parameters it contributes, in left-to-right order.
func emitNode(n node) (string, []any) {
	switch n.kind {
	case nodeCmp, nodeLike:
		if n.isNull {
			return fmt.Sprintf("%s %s NULL", n.column, n.op), nil
		}
		if raw, ok := n.value.(Raw); ok {
			return fmt.Sprintf("%s %s %s", n.column, n.op, raw.String()), nil
		}
		return fmt.Sprintf("%s %s ?", n.column, n.op), []any{n.value}
	case nodeIn:
		verb := "IN"
		if n.negated {
			verb = "NOT IN"
		}
		return fmt.Sprintf("%s %s (%s)", n.column, verb, placeholders(len(n.values))), append([]any{}, n.values...)
	case nodeBetween:
		verb := "BETWEEN"
		if n.negated {
			verb = "NOT BETWEEN"
		}
		return fmt.Sprintf("%s %s ? AND ?", n.column, verb), []any{n.lo, n.hi}
	case nodeExists:
		verb := "EXISTS"
		if n.negated {
			verb = "NOT EXISTS"
		}
		return fmt.Sprintf("%s (%s)", verb, n.rawSQL), append([]any{}, n.rawParams...)
	case nodeAggSubquery:
		params := append([]any{}, n.rawParams...)
		params = append(params, n.value)
		return fmt.Sprintf("(%s) %s ?", n.rawSQL, n.op), params
	case nodeRaw:
		return n.rawSQL, append([]any{}, n.rawParams...)
	default:
		return "", nil
	}
}

// emitNodes renders a flat predicate list, bracketing nested groups and
// prefixing every node after the first in a scope with its own connective.
// The same function serves WHERE and HAVING.
func emitNodes(nodes []node) (string, []any, error) {
	var sb strings.Builder
	var params []any
	counters := []int{0}

	for _, n := range nodes {
		top := len(counters) - 1

		switch n.kind {
		case nodeGroupStart:
			if counters[top] > 0 {
				sb.WriteString(" " + n.conn.String() + " ")
			}
			sb.WriteString("(")
			counters = append(counters, 0)
		case nodeGroupEnd:
			if len(counters) < 2 {
				return "", nil, ErrEmissionInvariant
			}
			sb.WriteString(")")
			counters = counters[:len(counters)-1]
			counters[len(counters)-1]++
		default:
			if counters[top] > 0 {
				sb.WriteString(" " + n.conn.String() + " ")
			}
			frag, ps := emitNode(n)
			sb.WriteString(frag)
			params = append(params, ps...)
			counters[top]++
		}
	}

	if len(counters) != 1 {
		return "", nil, ErrEmissionInvariant
	}

	return sb.String(), params, nil
}
