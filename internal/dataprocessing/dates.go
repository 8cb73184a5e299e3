package dataprocessing

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/transform"
)

// Spreadsheet date serials count days from 1899-12-30; serial 25569 is
// 1970-01-01 UTC.
var serialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// dayFirst matches D/M or D-M with an optional two- or four-digit year
var dayFirst = regexp.MustCompile(`(\d{1,2})[/-](\d{1,2})(?:[/-](\d{2,4}))?`)

// textLayouts are the locale-generic string forms tried before the
// day-first heuristic
var textLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
}

// DateOnly truncates a time to its calendar date in local time
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

// fromSerial converts a spreadsheet day serial to a time. The integer part
// is days since the 1899-12-30 epoch, the fraction is seconds of day.
func fromSerial(n float64) time.Time {
	days := math.Floor(n)
	secs := math.Round(86400 * (n - days))
	return serialEpoch.Add(time.Duration(days)*24*time.Hour + time.Duration(secs)*time.Second)
}

// ParseDate normalizes a cell of unknown shape to a date-only value. The
// year argument fills in string dates with no explicit year; pass 0 to use
// the current calendar year. A false result means unknown, never an error.
func ParseDate(c Cell, year int) (time.Time, bool) {
	switch c.Kind {
	case CellDate:
		return DateOnly(c.Date), true
	case CellNumber:
		t := fromSerial(c.Number)
		y, m, d := t.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.Local), true
	case CellText:
		return parseDateString(c.Text, year)
	default:
		return time.Time{}, false
	}
}

func parseDateString(s string, year int) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range textLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return DateOnly(t), true
		}
	}
	m := dayFirst.FindStringSubmatch(s)
	if m == nil || dayFirst.FindStringIndex(s)[0] != 0 {
		return time.Time{}, false
	}
	return tokenToDate(m, year)
}

// tokenToDate builds a date from one day-first match. Two-digit years are
// taken as 2000-based; a missing year falls back to the supplied context
// year, then to the current calendar year.
func tokenToDate(m []string, year int) (time.Time, bool) {
	dd, err := strconv.Atoi(m[1])
	if err != nil {
		return time.Time{}, false
	}
	mm, err := strconv.Atoi(m[2])
	if err != nil {
		return time.Time{}, false
	}
	yyyy := year
	if m[3] != "" {
		y, err := strconv.Atoi(m[3])
		if err != nil {
			return time.Time{}, false
		}
		if y < 100 {
			y += 2000
		}
		yyyy = y
	}
	if yyyy == 0 {
		yyyy = time.Now().Year()
	}
	return time.Date(yyyy, time.Month(mm), dd, 0, 0, 0, 0, time.Local), true
}

// rangeSeparators rewrites the separators seen in compound range strings
// ("to", en dash, em dash, Greek "until" with accents already folded) to a
// single dash before token extraction.
var rangeSeparators = strings.NewReplacer("εως", "-", "to", "-", "–", "-", "—", "-")

// ParseRange parses a compound string such as "12/5 έως 14/5" into an
// inclusive start/end date pair. Fewer than two date tokens is a definite
// no-range result, not an error. An end before the start collapses the
// range to the start day.
func ParseRange(c Cell, year int) (start, end time.Time, ok bool) {
	if c.Absent() {
		return time.Time{}, time.Time{}, false
	}
	s := strings.ToLower(strings.TrimSpace(c.String()))
	if folded, _, err := transform.String(accentFolder, s); err == nil {
		s = folded
	}
	s = rangeSeparators.Replace(s)

	matches := dayFirst.FindAllStringSubmatch(s, 2)
	if len(matches) < 2 {
		return time.Time{}, time.Time{}, false
	}
	start, okStart := tokenToDate(matches[0], year)
	end, okEnd := tokenToDate(matches[1], year)
	if !okStart || !okEnd {
		return time.Time{}, time.Time{}, false
	}
	if end.Before(start) {
		end = start
	}
	return start, end, true
}

// DaysBetween returns the integer day difference b-a over date-only values.
// Rounding absorbs DST shifts of up to an hour.
func DaysBetween(a, b time.Time) int {
	return int(math.Round(b.Sub(a).Hours() / 24))
}
