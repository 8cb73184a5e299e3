package domain

import (
	"time"
)

// Tri is a three-valued truth result for per-row performance signals.
// The zero value is TriUnknown so that an unclassifiable signal never
// contributes to a ratio denominator by accident.
type Tri int

const (
	// TriUnknown means the underlying inputs were missing or unparseable
	TriUnknown Tri = iota
	// TriFalse is a definite negative result
	TriFalse
	// TriTrue is a definite positive result
	TriTrue
)

// TriOf converts a definite boolean into a Tri
func TriOf(b bool) Tri {
	if b {
		return TriTrue
	}
	return TriFalse
}

// Known reports whether the result is definite (true or false)
func (t Tri) Known() bool {
	return t != TriUnknown
}

// True reports whether the result is a definite positive
func (t Tri) True() bool {
	return t == TriTrue
}

// String returns the string representation of the tri-state value
func (t Tri) String() string {
	switch t {
	case TriTrue:
		return "true"
	case TriFalse:
		return "false"
	default:
		return "unknown"
	}
}

// Coordinate is a work-order location captured for later map display
type Coordinate struct {
	Lat         float64    `json:"lat"`
	Lng         float64    `json:"lng"`
	WorkOrder   string     `json:"workOrder,omitempty"`
	CompletedOn *time.Time `json:"completedOn,omitempty"`
}

// ClassifiedRow holds the per-row signals derived from a single work order.
// It is transient: rows are classified and folded into buckets within one
// aggregation pass.
type ClassifiedRow struct {
	Installer   string
	Technician  string
	InRange     Tri
	SetWithin1d Tri
	ApptEq      Tri
	// Days is the delivery-to-completion day count; nil when either date is
	// unknown. Negative values are kept here and excluded at median time.
	Days        *int
	Coordinate  *Coordinate
	CompletedOn *time.Time
}

// AggregatedResult is the durable per-entity output record. Ratio and score
// fields are nil when the underlying denominator or signal was empty.
type AggregatedResult struct {
	Key         string       `json:"key"`
	Name        string       `json:"name"`
	Installer   string       `json:"installer,omitempty"`
	Technician  string       `json:"technician,omitempty"`
	Jobs        int          `json:"jobs"`
	PctInRange  *float64     `json:"pctInRange"`
	PctSet1d    *float64     `json:"pctSet1d"`
	PctApptEq   *float64     `json:"pctApptEq"`
	InRangeDen  int          `json:"inRangeDen"`
	Set1dDen    int          `json:"set1dDen"`
	ApptEqDen   int          `json:"apptEqDen"`
	MedDays     *float64     `json:"medDays"`
	RawScore    *float64     `json:"rawScore"`
	FinalScore  *float64     `json:"finalScore"`
	Coordinates []Coordinate `json:"coordinates"`
}

// Kpi summarizes a result collection for the dashboard header cards
type Kpi struct {
	TotalJobs    int      `json:"totalJobs"`
	AvgInRange   *float64 `json:"avgInRange"`
	AvgSet1d     *float64 `json:"avgSet1d"`
	AvgApptEq    *float64 `json:"avgApptEq"`
	MedOfMedians *float64 `json:"medOfMedians"`
	AvgFinal     *float64 `json:"avgFinal"`
}

// Weights is the four-component scoring weight vector. Components are
// fractions; the score engine re-normalizes them to sum to 1 before use.
type Weights struct {
	InRange float64 `json:"inRange" yaml:"in_range" validate:"gte=0"`
	Set1d   float64 `json:"set1d" yaml:"set_1d" validate:"gte=0"`
	ApptEq  float64 `json:"apptEq" yaml:"appt_eq" validate:"gte=0"`
	Median  float64 `json:"median" yaml:"median" validate:"gte=0"`
}

// DefaultWeights returns the stock weight vector used when a caller
// supplies none.
func DefaultWeights() Weights {
	return Weights{InRange: 0.40, Set1d: 0.25, ApptEq: 0.25, Median: 0.10}
}

// Filters restricts which work-order rows enter aggregation. All fields are
// optional; the zero value passes every row.
type Filters struct {
	CompletedFrom *time.Time `json:"completedFrom,omitempty"`
	CompletedTo   *time.Time `json:"completedTo,omitempty"`
	Service       string     `json:"service,omitempty"`
	Product       string     `json:"product,omitempty"`
	PostalCode    string     `json:"postalCode,omitempty"`
}

// Report is the complete output of one pipeline run
type Report struct {
	ID             string                        `json:"id"`
	GeneratedAt    time.Time                     `json:"generated_at"`
	Installers     []AggregatedResult            `json:"installers"`
	InstallerTechs []AggregatedResult            `json:"installerTechs"`
	Children       map[string][]AggregatedResult `json:"children"`
	InstallerKpi   Kpi                           `json:"installerKpi"`
	TechKpi        Kpi                           `json:"techKpi"`
}
