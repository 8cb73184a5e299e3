package dataprocessing

import (
	"strconv"
	"strings"
	"time"

	"fieldpulse/pkg/contracts/domain"
)

// Classifier filters raw rows and derives the per-row performance signals.
// It is pure: the same row, column map, and filters always produce the same
// result.
type Classifier struct {
	cols    ColumnMap
	filters domain.Filters
	nowYear func() int
}

// NewClassifier builds a classifier for one resolved dataset
func NewClassifier(cols ColumnMap, filters domain.Filters) *Classifier {
	return &Classifier{
		cols:    cols,
		filters: filters,
		nowYear: func() int { return time.Now().Year() },
	}
}

func (c *Classifier) cell(row RawRow, key string) Cell {
	header, ok := c.cols[key]
	if !ok {
		return Cell{Kind: CellAbsent}
	}
	return row[header]
}

func (c *Classifier) date(row RawRow, key string) (time.Time, bool) {
	return ParseDate(c.cell(row, key), 0)
}

// Classify runs the row filter and, when the row passes, derives its
// signals. The second return value is false for filtered-out rows.
func (c *Classifier) Classify(row RawRow) (domain.ClassifiedRow, bool) {
	completedOn, hasCompleted := c.date(row, KeyCompletedOn)

	if !c.passesFilters(row, completedOn, hasCompleted) {
		return domain.ClassifiedRow{}, false
	}

	appointmentDate, hasAppt := c.date(row, KeyAppointmentDate)
	lastAssigned, hasAssigned := c.date(row, KeyLastAssignedOn)
	apptSetOn, hasSetOn := c.date(row, KeyAppointmentSetOn)
	delivery, hasDelivery := c.date(row, KeyProductDeliveryDate)

	rec := domain.ClassifiedRow{
		Installer:  c.cell(row, KeyInstaller).String(),
		Technician: c.cell(row, KeyTechnician).String(),
	}
	if hasCompleted {
		t := completedOn
		rec.CompletedOn = &t
	}

	// The context year for year-less range tokens comes from the row's own
	// dates, falling back to the current calendar year.
	ctxYear := c.nowYear()
	switch {
	case hasAppt:
		ctxYear = appointmentDate.Year()
	case hasCompleted:
		ctxYear = completedOn.Year()
	case hasAssigned:
		ctxYear = lastAssigned.Year()
	case hasDelivery:
		ctxYear = delivery.Year()
	}

	if rangeStart, rangeEnd, okRange := ParseRange(c.cell(row, KeyAppointmentRange), ctxYear); okRange && hasAppt {
		rec.InRange = domain.TriOf(!appointmentDate.Before(rangeStart) && !appointmentDate.After(rangeEnd))
	}

	if hasAssigned && hasSetOn {
		d := DaysBetween(lastAssigned, apptSetOn)
		if d < 0 {
			d = -d
		}
		rec.SetWithin1d = domain.TriOf(d <= 1)
	}

	if hasAppt && hasCompleted {
		rec.ApptEq = domain.TriOf(DaysBetween(appointmentDate, completedOn) == 0)
	}

	if hasDelivery && hasCompleted {
		d := DaysBetween(delivery, completedOn)
		rec.Days = &d
	}

	if lat, okLat := ParseCoord(c.cell(row, KeyLatitude)); okLat {
		if lng, okLng := ParseCoord(c.cell(row, KeyLongitude)); okLng {
			rec.Coordinate = &domain.Coordinate{
				Lat:         lat,
				Lng:         lng,
				WorkOrder:   c.cell(row, KeyWorkOrder).String(),
				CompletedOn: rec.CompletedOn,
			}
		}
	}

	return rec, true
}

// passesFilters applies the row-level filter criteria. A substring criterion
// only excludes rows whose target column resolved and holds a value; absent
// columns or cells never exclude.
func (c *Classifier) passesFilters(row RawRow, completedOn time.Time, hasCompleted bool) bool {
	f := c.filters

	if f.CompletedFrom != nil {
		if !hasCompleted || completedOn.Before(DateOnly(*f.CompletedFrom)) {
			return false
		}
	}
	if f.CompletedTo != nil {
		if !hasCompleted || completedOn.After(DateOnly(*f.CompletedTo)) {
			return false
		}
	}

	for _, crit := range []struct {
		key    string
		needle string
	}{
		{KeyService, f.Service},
		{KeyProduct, f.Product},
		{KeyPostalCode, f.PostalCode},
	} {
		if crit.needle == "" {
			continue
		}
		cell := c.cell(row, crit.key)
		if cell.Absent() {
			continue
		}
		if !strings.Contains(strings.ToLower(cell.String()), strings.ToLower(crit.needle)) {
			return false
		}
	}
	return true
}

// ParseCoord reads a latitude/longitude cell, tolerating a comma decimal
// separator in string cells.
func ParseCoord(c Cell) (float64, bool) {
	switch c.Kind {
	case CellNumber:
		return c.Number, true
	case CellText:
		n, err := strconv.ParseFloat(strings.Replace(strings.TrimSpace(c.Text), ",", ".", 1), 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// ClassifyAll filters and classifies an entire row set in input order
func ClassifyAll(rows []RawRow, cols ColumnMap, filters domain.Filters) []domain.ClassifiedRow {
	c := NewClassifier(cols, filters)
	out := make([]domain.ClassifiedRow, 0, len(rows))
	for _, row := range rows {
		if rec, ok := c.Classify(row); ok {
			out = append(out, rec)
		}
	}
	return out
}
