package dataprocessing

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Dataset is one loaded sheet: its ordered headers and typed rows
type Dataset struct {
	Sheet   string
	Headers []string
	Rows    []RawRow
}

// LoadWorkbook opens an .xlsx workbook and extracts the work-order sheet.
// Sheet selection prefers the first sheet whose header row resolves at least
// one essential column synonym, falling back to the first non-empty sheet.
func LoadWorkbook(r io.Reader, syns SynonymTable) (*Dataset, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()
	return selectSheet(f, syns)
}

// LoadWorkbookFile opens an .xlsx file by path with the same sheet
// selection as LoadWorkbook.
func LoadWorkbookFile(path string, syns SynonymTable) (*Dataset, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()

	ds, err := selectSheet(f, syns)
	if err != nil {
		return nil, fmt.Errorf("workbook %s: %w", path, err)
	}
	return ds, nil
}

func selectSheet(f *excelize.File, syns SynonymTable) (*Dataset, error) {
	var fallback *Dataset
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			continue
		}
		ds := datasetFromRows(name, rows)
		if ds == nil {
			continue
		}
		if fallback == nil {
			fallback = ds
		}
		if len(BuildColumnMap(ds.Headers, syns)) > 0 {
			return ds, nil
		}
	}
	if fallback == nil {
		return nil, fmt.Errorf("no data sheet found")
	}
	return fallback, nil
}

// datasetFromRows turns raw sheet rows into a Dataset. The first row with
// any non-blank cell becomes the header row; later rows become typed cells
// keyed by header.
func datasetFromRows(sheet string, rows [][]string) *Dataset {
	headerIdx := -1
	for i, row := range rows {
		if rowHasData(row) {
			headerIdx = i
			break
		}
	}
	if headerIdx == -1 {
		return nil
	}

	headers := make([]string, 0, len(rows[headerIdx]))
	for _, h := range rows[headerIdx] {
		headers = append(headers, strings.TrimSpace(h))
	}

	ds := &Dataset{Sheet: sheet, Headers: headers}
	for _, row := range rows[headerIdx+1:] {
		if !rowHasData(row) {
			continue
		}
		rec := make(RawRow, len(headers))
		for i, h := range headers {
			if h == "" {
				continue
			}
			if i < len(row) {
				rec[h] = ParseCell(row[i])
			} else {
				rec[h] = Cell{Kind: CellAbsent}
			}
		}
		ds.Rows = append(ds.Rows, rec)
	}
	return ds
}

func rowHasData(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return true
		}
	}
	return false
}
