package dataset

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

var ErrUnsupportedFormat = errors.New("unsupported dataset format")

// LoadOptions tunes file loading.
type LoadOptions struct {
	// Sheet selects the xlsx worksheet. Empty means the first sheet.
	Sheet string
	// Comma is the csv field separator. Zero means ','.
	Comma rune
}

// Load reads a dataset from a .csv, .json or .xlsx file.
func Load(path string, opts LoadOptions) (Dataset, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".tsv":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open dataset: %w", err)
		}
		defer f.Close()
		if opts.Comma == 0 && strings.EqualFold(filepath.Ext(path), ".tsv") {
			opts.Comma = '\t'
		}
		return ReadCSV(f, opts.Comma)
	case ".json":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read dataset: %w", err)
		}
		return ReadJSON(data)
	case ".xlsx", ".xlsm":
		return LoadXLSX(path, opts.Sheet)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// ReadCSV parses csv with a header row.
func ReadCSV(r io.Reader, comma rune) (Dataset, error) {
	cr := csv.NewReader(r)
	if comma != 0 {
		cr.Comma = comma
	}
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}
	return fromRecords(records), nil
}

// ReadJSON parses an array of objects. Numbers decode as float64.
func ReadJSON(data []byte) (Dataset, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw []map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal dataset: %w", err)
	}

	ds := make(Dataset, 0, len(raw))
	for _, obj := range raw {
		row := make(Row, len(obj))
		for k, v := range obj {
			if n, ok := v.(json.Number); ok {
				if f, err := n.Float64(); err == nil {
					row[k] = f
					continue
				}
			}
			row[k] = v
		}
		ds = append(ds, row)
	}
	return ds, nil
}

// LoadXLSX reads a worksheet whose first row holds column names.
func LoadXLSX(path, sheet string) (Dataset, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook %s has no sheets", path)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	return fromRecords(rows), nil
}

// fromRecords converts header + records into rows; short records leave trailing columns absent
// and blank lines are skipped.
func fromRecords(records [][]string) Dataset {
	if len(records) == 0 {
		return Dataset{}
	}
	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = strings.TrimSpace(h)
	}

	ds := make(Dataset, 0, len(records)-1)
	for _, rec := range records[1:] {
		if isBlank(rec) {
			continue
		}
		row := make(Row, len(header))
		for i, cell := range rec {
			if i >= len(header) || header[i] == "" {
				continue
			}
			row[header[i]] = parseCell(cell)
		}
		ds = append(ds, row)
	}
	return ds
}

func isBlank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
