// Package exporter renders result collections as CSV for spreadsheet
// consumers. Field names, the x100 ratio scaling, and the 2-decimal
// rounding are part of the downstream contract.
package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"fieldpulse/pkg/contracts/domain"
)

// utf8BOM keeps Excel from misreading Greek names in exported files
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Columns is the fixed export header row
var Columns = []string{"Name", "Jobs", "PctInRange", "PctSetWithin1d", "PctApptEqCompletion", "MedianDays", "RawScore", "FinalScore"}

// WriteResults writes a result collection as CSV, BOM-prefixed. Nil values
// render as empty cells; ratios are scaled x100; all floats use 2-decimal
// fixed notation.
func WriteResults(w io.Writer, items []domain.AggregatedResult) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return fmt.Errorf("write BOM: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, it := range items {
		record := []string{
			it.Name,
			strconv.Itoa(it.Jobs),
			fmtScaled(it.PctInRange, 100),
			fmtScaled(it.PctSet1d, 100),
			fmtScaled(it.PctApptEq, 100),
			fmtScaled(it.MedDays, 1),
			fmtScaled(it.RawScore, 1),
			fmtScaled(it.FinalScore, 1),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteResultsFile writes a result collection to a CSV file, creating
// parent directories as needed.
func WriteResultsFile(path string, items []domain.AggregatedResult) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer f.Close()

	if err := WriteResults(f, items); err != nil {
		return err
	}
	return f.Close()
}

func fmtScaled(v *float64, scale float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v*scale, 'f', 2, 64)
}
