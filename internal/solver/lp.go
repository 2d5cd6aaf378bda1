package solver

import (
	"fmt"
	"math"
	"strings"
)

// ExportLP renders the model in free-format LP.
func (m *Model) ExportLP() string {
	var b strings.Builder
	fmt.Fprintf(&b, "\\ Problem name: %s\n\n", m.name)

	if m.objective.maximize {
		b.WriteString("Maximize\n")
	} else {
		b.WriteString("Minimize\n")
	}
	b.WriteString(" obj:")
	writeLinear(&b, m.objective.Entries())
	if m.objective.offset != 0 {
		fmt.Fprintf(&b, " %s", signed(m.objective.offset))
	}
	b.WriteString("\n")

	b.WriteString("Subject To\n")
	for _, c := range m.constraints {
		lbInf, ubInf := math.IsInf(c.lb, -1), math.IsInf(c.ub, 1)
		if lbInf && ubInf {
			continue
		}
		fmt.Fprintf(&b, " %s:", c.name)
		switch {
		case c.lb == c.ub:
			writeLinear(&b, c.Entries())
			fmt.Fprintf(&b, " = %s\n", formatNumber(c.lb))
		case lbInf:
			writeLinear(&b, c.Entries())
			fmt.Fprintf(&b, " <= %s\n", formatNumber(c.ub))
		case ubInf:
			writeLinear(&b, c.Entries())
			fmt.Fprintf(&b, " >= %s\n", formatNumber(c.lb))
		default:
			fmt.Fprintf(&b, " %s <=", formatNumber(c.lb))
			writeLinear(&b, c.Entries())
			fmt.Fprintf(&b, " <= %s\n", formatNumber(c.ub))
		}
	}

	b.WriteString("Bounds\n")
	for _, v := range m.variables {
		lbInf, ubInf := math.IsInf(v.lb, -1), math.IsInf(v.ub, 1)
		switch {
		case lbInf && ubInf:
			fmt.Fprintf(&b, " %s free\n", v.name)
		case v.lb == v.ub:
			fmt.Fprintf(&b, " %s = %s\n", v.name, formatNumber(v.lb))
		case lbInf:
			fmt.Fprintf(&b, " -infinity <= %s <= %s\n", v.name, formatNumber(v.ub))
		case ubInf:
			fmt.Fprintf(&b, " %s >= %s\n", v.name, formatNumber(v.lb))
		default:
			fmt.Fprintf(&b, " %s <= %s <= %s\n", formatNumber(v.lb), v.name, formatNumber(v.ub))
		}
	}

	var general []string
	for _, v := range m.variables {
		if v.integer {
			general = append(general, v.name)
		}
	}
	if len(general) > 0 {
		b.WriteString("General\n")
		for _, name := range general {
			fmt.Fprintf(&b, " %s\n", name)
		}
	}
	b.WriteString("End\n")
	return b.String()
}

func writeLinear(b *strings.Builder, entries []Entry) {
	if len(entries) == 0 {
		b.WriteString(" 0")
		return
	}
	for _, e := range entries {
		fmt.Fprintf(b, " %s %s", signed(e.Coefficient), e.Variable.name)
	}
}

func signed(v float64) string {
	if v < 0 {
		return "-" + formatNumber(-v)
	}
	return "+" + formatNumber(v)
}
