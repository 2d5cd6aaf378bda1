package solver

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ObjectiveRow is the name of the objective row in MPS output.
const ObjectiveRow = "COST"

// ExportMPS renders the model in fixed-format MPS. Every column appears in
// the COLUMNS section at least once; a column with no nonzero gets an
// explicit zero objective entry. Integer columns are enclosed in markers.
//
// Names are padded to the 8-character fixed-format fields but never
// truncated. A longer name pushes the rest of its record to the right, and
// the fields stay separated by at least two spaces, so readers must split
// records on whitespace (free MPS) rather than on column positions.
func (m *Model) ExportMPS() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-14s%s\n", "NAME", m.name)

	b.WriteString("ROWS\n")
	fmt.Fprintf(&b, " N  %s\n", ObjectiveRow)
	for _, c := range m.constraints {
		fmt.Fprintf(&b, " %-2s %s\n", rowType(c.lb, c.ub), c.name)
	}

	b.WriteString("COLUMNS\n")
	columns := m.columnEntries()
	inInteger := false
	markers := 0
	for i, v := range m.variables {
		if v.integer != inInteger {
			kind := "'INTEND'"
			if v.integer {
				kind = "'INTORG'"
			}
			fmt.Fprintf(&b, "    %-8s  %-8s  %s\n", fmt.Sprintf("MARKER%d", markers), "'MARKER'", kind)
			markers++
			inInteger = v.integer
		}
		entries := columns[i]
		if cost := m.objective.get(v); cost != 0 || len(entries) == 0 {
			writeField(&b, v.name, ObjectiveRow, cost)
		}
		for _, e := range entries {
			writeField(&b, v.name, e.row, e.coefficient)
		}
	}
	if inInteger {
		fmt.Fprintf(&b, "    %-8s  %-8s  %s\n", fmt.Sprintf("MARKER%d", markers), "'MARKER'", "'INTEND'")
	}

	var rhs, ranges strings.Builder
	if m.objective.offset != 0 {
		writeField(&rhs, "RHS", ObjectiveRow, -m.objective.offset)
	}
	for _, c := range m.constraints {
		value, rng, hasRange := rowRHS(c.lb, c.ub)
		if value != 0 {
			writeField(&rhs, "RHS", c.name, value)
		}
		if hasRange {
			writeField(&ranges, "RNG", c.name, rng)
		}
	}
	if rhs.Len() > 0 {
		b.WriteString("RHS\n")
		b.WriteString(rhs.String())
	}
	if ranges.Len() > 0 {
		b.WriteString("RANGES\n")
		b.WriteString(ranges.String())
	}

	var bounds strings.Builder
	for _, v := range m.variables {
		writeBounds(&bounds, v)
	}
	if bounds.Len() > 0 {
		b.WriteString("BOUNDS\n")
		b.WriteString(bounds.String())
	}
	b.WriteString("ENDATA\n")
	return b.String()
}

type columnEntry struct {
	row         string
	coefficient float64
}

// columnEntries transposes the rows into per-column entries, keeping row
// order inside each column.
func (m *Model) columnEntries() [][]columnEntry {
	columns := make([][]columnEntry, len(m.variables))
	for _, c := range m.constraints {
		for _, e := range c.Entries() {
			i := e.Variable.index
			columns[i] = append(columns[i], columnEntry{row: c.name, coefficient: e.Coefficient})
		}
	}
	return columns
}

func rowType(lb, ub float64) string {
	switch {
	case math.IsInf(lb, -1) && math.IsInf(ub, 1):
		return "N"
	case lb == ub:
		return "E"
	case math.IsInf(lb, -1):
		return "L"
	case math.IsInf(ub, 1):
		return "G"
	default:
		return "L"
	}
}

// rowRHS returns the right-hand side of a row and its range when both
// sides are finite and distinct.
func rowRHS(lb, ub float64) (rhs, rng float64, hasRange bool) {
	switch {
	case math.IsInf(lb, -1) && math.IsInf(ub, 1):
		return 0, 0, false
	case lb == ub, math.IsInf(ub, 1):
		return lb, 0, false
	case math.IsInf(lb, -1):
		return ub, 0, false
	default:
		return ub, ub - lb, true
	}
}

func writeBounds(b *strings.Builder, v *Variable) {
	lbInf, ubInf := math.IsInf(v.lb, -1), math.IsInf(v.ub, 1)
	switch {
	case lbInf && ubInf:
		writeBound(b, "FR", v.name, "")
	case v.lb == v.ub:
		writeBound(b, "FX", v.name, formatNumber(v.lb))
	case lbInf:
		writeBound(b, "MI", v.name, "")
		writeBound(b, "UP", v.name, formatNumber(v.ub))
	default:
		if v.lb != 0 || v.integer || (!ubInf && v.ub < 0) {
			writeBound(b, "LO", v.name, formatNumber(v.lb))
		}
		if !ubInf {
			writeBound(b, "UP", v.name, formatNumber(v.ub))
		} else if v.integer {
			writeBound(b, "PL", v.name, "")
		}
	}
}

func writeBound(b *strings.Builder, kind, column, value string) {
	line := fmt.Sprintf(" %-2s %-8s  %-8s  %12s", kind, "BND", column, value)
	b.WriteString(strings.TrimRight(line, " "))
	b.WriteByte('\n')
}

func writeField(b *strings.Builder, first, second string, value float64) {
	fmt.Fprintf(b, "    %-8s  %-8s  %12s\n", first, second, formatNumber(value))
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', 12, 64)
}
