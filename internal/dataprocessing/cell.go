package dataprocessing

import (
	"strconv"
	"strings"
	"time"
)

// CellKind tags the shape of a spreadsheet cell value
type CellKind int

const (
	// CellAbsent marks an empty or missing cell
	CellAbsent CellKind = iota
	// CellText is a free-form string cell
	CellText
	// CellNumber is a numeric cell (possibly a spreadsheet date serial)
	CellNumber
	// CellDate is a cell already carrying a date value
	CellDate
)

// Cell is a tagged spreadsheet cell value. Rows are open-ended mappings from
// header string to Cell; all typed access goes through the resolved column map.
type Cell struct {
	Kind   CellKind
	Text   string
	Number float64
	Date   time.Time
}

// TextCell builds a text cell, or an absent cell for the empty string
func TextCell(s string) Cell {
	if strings.TrimSpace(s) == "" {
		return Cell{Kind: CellAbsent}
	}
	return Cell{Kind: CellText, Text: s}
}

// NumberCell builds a numeric cell
func NumberCell(n float64) Cell {
	return Cell{Kind: CellNumber, Number: n}
}

// DateCell builds a date cell
func DateCell(t time.Time) Cell {
	return Cell{Kind: CellDate, Date: t}
}

// ParseCell converts a raw string as read from a sheet into a typed cell.
// Values that parse as plain floats become numbers so that date serials
// survive the round trip through excelize's string rows.
func ParseCell(raw string) Cell {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Cell{Kind: CellAbsent}
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return Cell{Kind: CellNumber, Number: n, Text: s}
	}
	return Cell{Kind: CellText, Text: s}
}

// Absent reports whether the cell holds no value
func (c Cell) Absent() bool {
	return c.Kind == CellAbsent
}

// String returns the textual form of the cell for filtering and display
func (c Cell) String() string {
	switch c.Kind {
	case CellText:
		return c.Text
	case CellNumber:
		if c.Text != "" {
			return c.Text
		}
		return strconv.FormatFloat(c.Number, 'f', -1, 64)
	case CellDate:
		return c.Date.Format("2006-01-02")
	default:
		return ""
	}
}

// RawRow is one spreadsheet row keyed by its original header strings
type RawRow map[string]Cell
