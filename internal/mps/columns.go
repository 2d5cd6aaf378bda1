// Package mps reads back the parts of an MPS text the decomposition
// exporter needs: the ordered list of columns and whether each one appears
// in the objective row.
package mps

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/vk/gridopt/internal/errs"
)

// ObjectiveRow is the row name that marks objective entries.
const ObjectiveRow = "COST"

var columnsSection = regexp.MustCompile(`COLUMNS\n(( .*\n)*)(BOUNDS|RHS|RANGES|ENDATA)`)

// Column is one distinct column of the COLUMNS section.
type Column struct {
	Name string
	// Index is the position of the column's first entry among distinct
	// columns, which is the column index solvers assign when reading the file.
	Index int
	// InObjective is set when the column has a nonzero objective entry.
	InObjective bool
}

// ScanColumns lists the distinct columns of an MPS text in file order.
// Integer marker lines are not columns. A text without a COLUMNS section
// is an export error.
func ScanColumns(text string) ([]Column, error) {
	match := columnsSection.FindStringSubmatch(text)
	if match == nil {
		return nil, errs.Export("MPS text has no COLUMNS section")
	}

	var columns []Column
	seen := make(map[string]int)
	for _, line := range strings.Split(strings.TrimSuffix(match[1], "\n"), "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 || strings.Contains(line, "'MARKER'") {
			continue
		}
		name := fields[0]
		i, ok := seen[name]
		if !ok {
			i = len(columns)
			seen[name] = i
			columns = append(columns, Column{Name: name, Index: i})
		}
		if inObjective(fields[1:]) {
			columns[i].InObjective = true
		}
	}
	return columns, nil
}

// inObjective looks through the (row, value) pairs of one record.
func inObjective(pairs []string) bool {
	for j := 0; j+1 < len(pairs); j += 2 {
		if pairs[j] != ObjectiveRow {
			continue
		}
		v, err := strconv.ParseFloat(pairs[j+1], 64)
		if err == nil && v != 0 {
			return true
		}
	}
	return false
}

// Candidates filters the columns in the objective, keyed by name.
func Candidates(columns []Column) map[string]int {
	out := make(map[string]int)
	for _, c := range columns {
		if c.InObjective {
			out[c.Name] = c.Index
		}
	}
	return out
}
