package barchart

import (
	"errors"
	"fmt"
	"sort"

	"econchart/internal/dataset"
)

// Bar is one selected row.
type Bar struct {
	Label string
	Value float64
}

// SelectTop returns the n rows with the largest values in ascending order, so the last bar
// is the largest. Ties keep dataset order. Fewer than n rows are all returned.
func SelectTop(ds dataset.Dataset, labelColumn, valueColumn string, n int) ([]Bar, error) {
	if len(ds) == 0 {
		return nil, fmt.Errorf("%w: dataset is empty", ErrConfiguration)
	}
	if n <= 0 {
		return nil, fmt.Errorf("%w: top n must be positive, got %d", ErrConfiguration, n)
	}

	bars := make([]Bar, 0, len(ds))
	for i, row := range ds {
		label, err := dataset.Label(row, labelColumn)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d has no %q column", ErrMissingColumn, i, labelColumn)
		}
		value, err := dataset.Float(row, valueColumn)
		if err != nil {
			if errors.Is(err, dataset.ErrNoColumn) {
				return nil, fmt.Errorf("%w: row %d has no %q column", ErrMissingColumn, i, valueColumn)
			}
			return nil, fmt.Errorf("%w: row %d: %v", ErrConfiguration, i, err)
		}
		bars = append(bars, Bar{Label: label, Value: value})
	}

	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Value < bars[j].Value })

	if len(bars) > n {
		bars = bars[len(bars)-n:]
	}
	return bars, nil
}
