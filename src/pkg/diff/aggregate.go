package diff

import (
	"sort"

	"github.com/gh-nvat/gitops-argodiff/src/pkg/models"
)

// SortOutcomes returns a copy of outcomes ordered by application name (byte-wise)
func SortOutcomes(outcomes []models.DiffOutcome) []models.DiffOutcome {
	sorted := make([]models.DiffOutcome, len(outcomes))
	copy(sorted, outcomes)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].App.Name() < sorted[j].App.Name()
	})
	return sorted
}

// Partition splits outcomes into those without and those with a failure, keeping order
func Partition(outcomes []models.DiffOutcome) (ok, failed []models.DiffOutcome) {
	for _, o := range outcomes {
		if o.Failed() {
			failed = append(failed, o)
		} else {
			ok = append(ok, o)
		}
	}
	return ok, failed
}
