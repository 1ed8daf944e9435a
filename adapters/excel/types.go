package excel

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"sharpq/internal/errors"
)

// Table holds a tabular data file as raw strings, header row first
type Table struct {
	Headers []string
	Rows    [][]string
}

// ColumnIndex returns the position of a header, case-insensitive
func (t *Table) ColumnIndex(name string) (int, error) {
	for i, h := range t.Headers {
		if strings.EqualFold(strings.TrimSpace(h), strings.TrimSpace(name)) {
			return i, nil
		}
	}
	return -1, errors.NotFound(fmt.Sprintf("column %q", name))
}

// PValueColumn extracts a named column as p-values. Blank cells are skipped;
// non-numeric or non-finite cells are an error. Range validation is left to
// the q-value computation.
func (t *Table) PValueColumn(name string) ([]float64, error) {
	idx, err := t.ColumnIndex(name)
	if err != nil {
		return nil, err
	}

	values := make([]float64, 0, len(t.Rows))
	for rowNum, row := range t.Rows {
		if idx >= len(row) {
			continue
		}
		cell := strings.TrimSpace(row[idx])
		if cell == "" {
			continue
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return nil, errors.InvalidInputf("column %q row %d: %q is not a number", name, rowNum+2, cell)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, errors.InvalidInputf("column %q row %d: non-finite value", name, rowNum+2)
		}
		values = append(values, v)
	}
	if len(values) == 0 {
		return nil, errors.InvalidInputf("column %q contains no numeric values", name)
	}
	return values, nil
}

// LabelColumn extracts a named column as raw strings, aligned to the rows
// that PValueColumn keeps for the given p-value column
func (t *Table) LabelColumn(labelName, pvalName string) ([]string, error) {
	labelIdx, err := t.ColumnIndex(labelName)
	if err != nil {
		return nil, err
	}
	pvalIdx, err := t.ColumnIndex(pvalName)
	if err != nil {
		return nil, err
	}

	labels := make([]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		if pvalIdx >= len(row) || strings.TrimSpace(row[pvalIdx]) == "" {
			continue
		}
		label := ""
		if labelIdx < len(row) {
			label = strings.TrimSpace(row[labelIdx])
		}
		labels = append(labels, label)
	}
	return labels, nil
}
