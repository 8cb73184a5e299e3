// Package scoring groups classified work-order rows into per-entity rollups
// and converts them into credibility-weighted performance scores.
package scoring

import (
	"sort"

	"fieldpulse/pkg/contracts/domain"
)

// pairSeparator joins the installer and technician sides of a combined
// grouping key. Either side may be empty.
const pairSeparator = "__"

// ratioCounter accumulates one tri-state metric. The denominator moves only
// on definite results, the numerator additionally on true.
type ratioCounter struct {
	num int
	den int
}

func (rc *ratioCounter) add(t domain.Tri) {
	if !t.Known() {
		return
	}
	rc.den++
	if t.True() {
		rc.num++
	}
}

func (rc ratioCounter) ratio() *float64 {
	if rc.den == 0 {
		return nil
	}
	v := float64(rc.num) / float64(rc.den)
	return &v
}

// bucket is the transient per-group accumulator
type bucket struct {
	installer  string
	technician string
	jobs       int
	inRange    ratioCounter
	set1d      ratioCounter
	apptEq     ratioCounter
	days       []float64
	coords     []domain.Coordinate
}

func (b *bucket) add(rec domain.ClassifiedRow) {
	b.jobs++
	b.inRange.add(rec.InRange)
	b.set1d.add(rec.SetWithin1d)
	b.apptEq.add(rec.ApptEq)
	if rec.Days != nil && *rec.Days >= 0 {
		b.days = append(b.days, float64(*rec.Days))
	}
	if rec.Coordinate != nil {
		b.coords = append(b.coords, *rec.Coordinate)
	}
}

// Aggregate builds the two independent rollups over filtered, classified
// rows: one keyed by installer, one by installer+technician pair. Bucket
// accumulation is commutative, so row order never changes the outcome; the
// finalized collections are emitted in deterministic key order.
func Aggregate(rows []domain.ClassifiedRow) (installers, installerTechs []domain.AggregatedResult) {
	byInstaller := make(map[string]*bucket)
	byPair := make(map[string]*bucket)

	for _, rec := range rows {
		if rec.Installer != "" {
			get(byInstaller, rec.Installer, rec).add(rec)
		}
		if rec.Installer != "" || rec.Technician != "" {
			get(byPair, rec.Installer+pairSeparator+rec.Technician, rec).add(rec)
		}
	}

	return finalize(byInstaller, false), finalize(byPair, true)
}

func get(g map[string]*bucket, key string, rec domain.ClassifiedRow) *bucket {
	b, ok := g[key]
	if !ok {
		b = &bucket{installer: rec.Installer, technician: rec.Technician}
		g[key] = b
	}
	return b
}

func finalize(g map[string]*bucket, pairLevel bool) []domain.AggregatedResult {
	keys := make([]string, 0, len(g))
	for k := range g {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]domain.AggregatedResult, 0, len(keys))
	for _, key := range keys {
		b := g[key]
		name := key
		if pairLevel {
			name = b.installer + " ⟶ " + b.technician
		}
		coords := b.coords
		if coords == nil {
			coords = []domain.Coordinate{}
		}
		out = append(out, domain.AggregatedResult{
			Key:         key,
			Name:        name,
			Installer:   b.installer,
			Technician:  b.technician,
			Jobs:        b.jobs,
			PctInRange:  b.inRange.ratio(),
			PctSet1d:    b.set1d.ratio(),
			PctApptEq:   b.apptEq.ratio(),
			InRangeDen:  b.inRange.den,
			Set1dDen:    b.set1d.den,
			ApptEqDen:   b.apptEq.den,
			MedDays:     Median(b.days),
			Coordinates: coords,
		})
	}
	return out
}

// Median returns the median of a value list: nil for empty input, the
// middle element for odd counts, the mean of the two middle elements for
// even counts. The input slice is not modified.
func Median(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	var m float64
	if len(sorted)%2 == 1 {
		m = sorted[mid]
	} else {
		m = (sorted[mid-1] + sorted[mid]) / 2
	}
	return &m
}
