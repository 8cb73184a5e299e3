package scoring

import (
	"fieldpulse/pkg/contracts/domain"
)

// BuildChildrenMap maps each installer to its technician-level results.
// Every installer-level entry seeds an empty list so installers with no
// attributable technicians still appear; each list is sorted descending by
// final score.
func BuildChildrenMap(installers, techs []domain.AggregatedResult) map[string][]domain.AggregatedResult {
	children := make(map[string][]domain.AggregatedResult)
	for _, inst := range installers {
		if inst.Installer != "" {
			children[inst.Installer] = []domain.AggregatedResult{}
		}
	}
	for _, t := range techs {
		if t.Installer == "" {
			continue
		}
		children[t.Installer] = append(children[t.Installer], t)
	}
	for _, list := range children {
		SortByFinalScore(list)
	}
	return children
}
