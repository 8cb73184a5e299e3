package dataprocessing

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func buildWorkbook(t *testing.T, sheet string, rows [][]interface{}) *bytes.Buffer {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetName("Sheet1", sheet))

	for i, row := range rows {
		for j, val := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, val))
		}
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestLoadWorkbook(t *testing.T) {
	buf := buildWorkbook(t, "WorkOrders", [][]interface{}{
		{"Installer", "Technician", "Completed On", "Postal Code"},
		{"Acme", "Nikos", "12/5/2024", "11527"},
		{"Borealis", "", "13/5/2024", ""},
	})

	ds, err := LoadWorkbook(bytes.NewReader(buf.Bytes()), DefaultSynonyms())
	require.NoError(t, err)

	assert.Equal(t, "WorkOrders", ds.Sheet)
	assert.Equal(t, []string{"Installer", "Technician", "Completed On", "Postal Code"}, ds.Headers)
	require.Len(t, ds.Rows, 2)

	assert.Equal(t, "Acme", ds.Rows[0]["Installer"].String())
	assert.Equal(t, "12/5/2024", ds.Rows[0]["Completed On"].String())

	// Numeric-looking text comes back as a number cell.
	assert.Equal(t, CellNumber, ds.Rows[0]["Postal Code"].Kind)

	// Trailing columns excelize omits become absent cells.
	assert.True(t, ds.Rows[1]["Postal Code"].Absent())
	assert.True(t, ds.Rows[1]["Technician"].Absent())
}

func TestLoadWorkbookSkipsLeadingBlankRows(t *testing.T) {
	buf := buildWorkbook(t, "Sheet1", [][]interface{}{
		{},
		{"", "", ""},
		{"Installer", "Completed On"},
		{"Acme", "12/5/2024"},
	})

	ds, err := LoadWorkbook(bytes.NewReader(buf.Bytes()), DefaultSynonyms())
	require.NoError(t, err)
	assert.Equal(t, []string{"Installer", "Completed On"}, ds.Headers)
	require.Len(t, ds.Rows, 1)
}

func TestLoadWorkbookPrefersResolvableSheet(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetName("Sheet1", "Notes"))
	require.NoError(t, f.SetCellValue("Notes", "A1", "Εβδομαδιαία εξαγωγή, μην επεξεργάζεστε"))

	_, err := f.NewSheet("Data")
	require.NoError(t, err)
	headers := []string{
		"Installer", "Technician", "Appointment Date", "Appointment Set On",
		"Last Assigned On", "Product Delivery Date", "Appointment Range", "Completed On",
	}
	for j, h := range headers {
		cell, err := excelize.CoordinatesToCellName(j+1, 1)
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue("Data", cell, h))
	}
	require.NoError(t, f.SetCellValue("Data", "A2", "Acme"))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	ds, err := LoadWorkbook(bytes.NewReader(buf.Bytes()), DefaultSynonyms())
	require.NoError(t, err)
	assert.Equal(t, "Data", ds.Sheet)

	// The file path variant runs the same selection.
	path := filepath.Join(t.TempDir(), "orders.xlsx")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	ds, err = LoadWorkbookFile(path, DefaultSynonyms())
	require.NoError(t, err)
	assert.Equal(t, "Data", ds.Sheet)
	require.Len(t, ds.Rows, 1)
	assert.Equal(t, "Acme", ds.Rows[0]["Installer"].String())
}

func TestLoadWorkbookNoData(t *testing.T) {
	buf := buildWorkbook(t, "Sheet1", nil)

	_, err := LoadWorkbook(bytes.NewReader(buf.Bytes()), DefaultSynonyms())
	assert.Error(t, err)
}
