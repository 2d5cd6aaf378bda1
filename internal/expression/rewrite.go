package expression

import "fmt"

// leafFunc is called on every node before recursion. When it reports
// handled, its replacement is used and the node's children are not visited.
type leafFunc func(n Node) (replacement Node, handled bool, err error)

// rewrite rebuilds n bottom-up, letting fn replace any node.
func rewrite(n Node, fn leafFunc) (Node, error) {
	if n == nil {
		return nil, nil
	}
	if out, handled, err := fn(n); err != nil || handled {
		return out, err
	}

	switch e := n.(type) {
	case Literal, Variable, Parameter, ComponentVariable, ComponentParameter, PortField, PortFieldSum:
		return e, nil
	case Negation:
		operand, err := rewrite(e.Operand, fn)
		if err != nil {
			return nil, err
		}
		return Negation{Operand: operand}, nil
	case Addition:
		left, right, err := rewritePair(e.Left, e.Right, fn)
		if err != nil {
			return nil, err
		}
		return Addition{Left: left, Right: right}, nil
	case Subtraction:
		left, right, err := rewritePair(e.Left, e.Right, fn)
		if err != nil {
			return nil, err
		}
		return Subtraction{Left: left, Right: right}, nil
	case Multiplication:
		left, right, err := rewritePair(e.Left, e.Right, fn)
		if err != nil {
			return nil, err
		}
		return Multiplication{Left: left, Right: right}, nil
	case Division:
		left, right, err := rewritePair(e.Left, e.Right, fn)
		if err != nil {
			return nil, err
		}
		return Division{Left: left, Right: right}, nil
	case Comparison:
		left, right, err := rewritePair(e.Left, e.Right, fn)
		if err != nil {
			return nil, err
		}
		return Comparison{Left: left, Right: right, Comparator: e.Comparator}, nil
	case TimeShift:
		operand, err := rewrite(e.Operand, fn)
		if err != nil {
			return nil, err
		}
		return TimeShift{Operand: operand, Offsets: e.Offsets}, nil
	case TimeEvaluation:
		operand, err := rewrite(e.Operand, fn)
		if err != nil {
			return nil, err
		}
		return TimeEvaluation{Operand: operand, Indices: e.Indices}, nil
	case TimeSum:
		operand, err := rewrite(e.Operand, fn)
		if err != nil {
			return nil, err
		}
		return TimeSum{Operand: operand, StayRoll: e.StayRoll}, nil
	case Expectation:
		operand, err := rewrite(e.Operand, fn)
		if err != nil {
			return nil, err
		}
		return Expectation{Operand: operand}, nil
	default:
		panic(fmt.Sprintf("expression: unknown node type %T", n))
	}
}

func rewritePair(left, right Node, fn leafFunc) (Node, Node, error) {
	l, err := rewrite(left, fn)
	if err != nil {
		return nil, nil, err
	}
	r, err := rewrite(right, fn)
	if err != nil {
		return nil, nil, err
	}
	return l, r, nil
}

// walk calls fn on n and every descendant, parents first.
func walk(n Node, fn func(Node)) {
	_, _ = rewrite(n, func(node Node) (Node, bool, error) {
		fn(node)
		return nil, false, nil
	})
}
