// Package dataset holds the tabular input of a chart: ordered rows keyed by column name.
package dataset

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Row maps a column name to a cell value. Numeric cells are float64.
type Row map[string]any

// Dataset is an ordered collection of rows.
type Dataset []Row

var (
	ErrNoColumn   = errors.New("column not present")
	ErrNotNumeric = errors.New("value is not numeric")
)

// Columns returns the sorted union of column names across all rows.
func Columns(ds Dataset) []string {
	seen := make(map[string]struct{})
	for _, row := range ds {
		for k := range row {
			seen[k] = struct{}{}
		}
	}
	cols := make([]string, 0, len(seen))
	for k := range seen {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}

// Float reads column as a finite number.
func Float(row Row, column string) (float64, error) {
	v, ok := row[column]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrNoColumn, column)
	}

	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int32:
		f = float64(x)
	case int64:
		f = float64(x)
	case uint:
		f = float64(x)
	case uint32:
		f = float64(x)
	case uint64:
		f = float64(x)
	case json.Number:
		n, err := x.Float64()
		if err != nil {
			return 0, fmt.Errorf("%w: %q=%v", ErrNotNumeric, column, v)
		}
		f = n
	default:
		return 0, fmt.Errorf("%w: %q=%v", ErrNotNumeric, column, v)
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %q=%v", ErrNotNumeric, column, v)
	}
	return f, nil
}

// Label renders column as display text.
func Label(row Row, column string) (string, error) {
	v, ok := row[column]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrNoColumn, column)
	}
	switch x := v.(type) {
	case string:
		return x, nil
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64), nil
	case nil:
		return "", nil
	default:
		return fmt.Sprint(x), nil
	}
}

// parseCell turns spreadsheet text into a float64 when it reads as one.
func parseCell(s string) any {
	t := strings.TrimSpace(s)
	if t == "" {
		return s
	}
	if f, err := strconv.ParseFloat(t, 64); err == nil {
		return f
	}
	return s
}
