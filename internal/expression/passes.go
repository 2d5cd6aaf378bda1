package expression

import (
	"github.com/vk/gridopt/internal/errs"
)

// AddComponentContext qualifies every bare variable and parameter of n with
// componentID. Already qualified references are kept as they are, so the
// pass is idempotent.
func AddComponentContext(componentID string, n Node) Node {
	out, _ := rewrite(n, func(node Node) (Node, bool, error) {
		switch e := node.(type) {
		case Variable:
			return ComponentVariable{ComponentID: componentID, Name: e.Name}, true, nil
		case Parameter:
			return ComponentParameter{ComponentID: componentID, Name: e.Name}, true, nil
		}
		return nil, false, nil
	})
	return out
}

// PortFieldKey identifies the expressions registered for one field of one
// port of one component.
type PortFieldKey struct {
	ComponentID string
	Port        string
	Field       string
}

// PortFieldRegistry maps a port field to the expressions contributed by
// every connection of that port, in connection order.
type PortFieldRegistry map[PortFieldKey][]Node

// ResolvePorts replaces every port field of componentID by the sum of the
// expressions registered for it. An unregistered port field is a
// configuration error.
func ResolvePorts(n Node, componentID string, registry PortFieldRegistry) (Node, error) {
	return rewrite(n, func(node Node) (Node, bool, error) {
		var field PortField
		switch e := node.(type) {
		case PortField:
			field = e
		case PortFieldSum:
			field = e.Field
		default:
			return nil, false, nil
		}

		key := PortFieldKey{ComponentID: componentID, Port: field.Port, Field: field.Field}
		contributions, ok := registry[key]
		if !ok || len(contributions) == 0 {
			return nil, false, errs.Configuration("no expression registered for port field %s of component %q", field, componentID)
		}
		return Add(contributions[0], contributions[1:]...), true, nil
	})
}

// ParameterValueProvider values component parameters for one fixed
// (timestep, scenario) pair.
type ParameterValueProvider interface {
	ComponentParameterValue(componentID, name string) (float64, error)
}

// VariableValueProvider values component variables, for instance from a
// solved problem. Providers used at build time never implement it.
type VariableValueProvider interface {
	ComponentVariableValue(componentID, name string) (float64, error)
}

// ResolveParameters replaces every component parameter by its value. A bare
// parameter means the expression was never scoped, which is a usage error.
func ResolveParameters(n Node, provider ParameterValueProvider) (Node, error) {
	return rewrite(n, func(node Node) (Node, bool, error) {
		switch e := node.(type) {
		case Parameter:
			return nil, false, errs.Usage("parameter %q must be associated to its component before resolution", e.Name)
		case ComponentParameter:
			v, err := provider.ComponentParameterValue(e.ComponentID, e.Name)
			if err != nil {
				return nil, false, err
			}
			return Literal{Value: v}, true, nil
		}
		return nil, false, nil
	})
}

// Inspect calls fn on n and every node below it, parents first. A
// PortFieldSum is visited but the PortField it wraps is not.
func Inspect(n Node, fn func(Node)) {
	walk(n, fn)
}

// ComponentVariables returns the distinct component variables referenced by
// n, in order of first appearance.
func ComponentVariables(n Node) []ComponentVariable {
	var out []ComponentVariable
	seen := make(map[ComponentVariable]struct{})
	walk(n, func(node Node) {
		if v, ok := node.(ComponentVariable); ok {
			if _, dup := seen[v]; !dup {
				seen[v] = struct{}{}
				out = append(out, v)
			}
		}
	})
	return out
}
