package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

var missingTokens = map[string]bool{
	"": true, "na": true, "nan": true, "null": true, "none": true,
}

// ReadCSV parses a headered CSV of numeric cells. Empty cells and NA/NaN
// tokens become NaN. Header names are upper-cased, so lowercase exports
// such as crim,...,medv line up with the feature contract.
func ReadCSV(r io.Reader) (*Frame, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("empty CSV input")
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = strings.ToUpper(strings.TrimSpace(h))
	}

	var rows [][]float64
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		row := make([]float64, len(record))
		for j, cell := range record {
			v, err := parseCell(cell)
			if err != nil {
				return nil, fmt.Errorf("line %d column %s: %w", line, columns[j], err)
			}
			row[j] = v
		}
		rows = append(rows, row)
	}

	return New(columns, rows)
}

func parseCell(cell string) (float64, error) {
	cell = strings.TrimSpace(cell)
	if missingTokens[strings.ToLower(cell)] {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(cell, 64)
}

// WriteCSV writes the frame with a header row. NaN is written as an empty cell.
func WriteCSV(w io.Writer, f *Frame) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(f.Columns); err != nil {
		return err
	}
	record := make([]string, len(f.Columns))
	for _, r := range f.Rows {
		for j, v := range r {
			record[j] = FormatValue(v)
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// FormatValue renders a cell the way WriteCSV does.
func FormatValue(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Load reads a dataset file and normalizes its column names.
func Load(path string) (*Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer file.Close()

	frame, err := ReadCSV(file)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	fixer := &ColumnNameFixer{}
	return fixer.Fit(frame).Transform(frame), nil
}

// Save writes the frame to path, creating parent directories.
func Save(path string, f *Frame) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := WriteCSV(file, f); err != nil {
		file.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return file.Close()
}
