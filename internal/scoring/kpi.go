package scoring

import (
	"fieldpulse/pkg/contracts/domain"
)

// Summarize computes the cross-entity overview for a result collection.
// Each mean skips entities missing the underlying value and is nil when no
// entity carries it; an empty collection yields TotalJobs 0 and all other
// fields nil.
func Summarize(items []domain.AggregatedResult) domain.Kpi {
	kpi := domain.Kpi{}

	var inRange, set1d, apptEq, finals meanAcc
	medians := make([]float64, 0, len(items))

	for _, it := range items {
		kpi.TotalJobs += it.Jobs
		inRange.add(it.PctInRange)
		set1d.add(it.PctSet1d)
		apptEq.add(it.PctApptEq)
		if it.MedDays != nil {
			medians = append(medians, *it.MedDays)
		}
		if it.FinalScore != nil {
			v := *it.FinalScore / 100
			finals.add(&v)
		}
	}

	kpi.AvgInRange = inRange.mean()
	kpi.AvgSet1d = set1d.mean()
	kpi.AvgApptEq = apptEq.mean()
	kpi.MedOfMedians = Median(medians)
	kpi.AvgFinal = finals.mean()
	return kpi
}

type meanAcc struct {
	sum float64
	n   int
}

func (a *meanAcc) add(v *float64) {
	if v == nil {
		return
	}
	a.sum += *v
	a.n++
}

func (a meanAcc) mean() *float64 {
	if a.n == 0 {
		return nil
	}
	m := a.sum / float64(a.n)
	return &m
}
