// Package aggr computes the per-(location code, category) aggregates over
// the active record set. Recomputation is always total; whenever the active
// set changes the caller runs Recompute again over the whole set.
package aggr

import "containerbeheer/models"

// GroupStat holds the aggregates of one (location code, category) group.
type GroupStat struct {
	Count    int
	MeanFill float64
}

// Compute returns the aggregates per group. Every record is a member of its
// own group, so a group never has count zero.
func Compute(records []models.ContainerRecord) map[models.GroupKey]GroupStat {
	sums := make(map[models.GroupKey]float64)
	counts := make(map[models.GroupKey]int)
	for i := range records {
		k := records[i].Group()
		sums[k] += records[i].FillLevel
		counts[k]++
	}
	stats := make(map[models.GroupKey]GroupStat, len(counts))
	for k, n := range counts {
		stats[k] = GroupStat{Count: n, MeanFill: sums[k] / float64(n)}
	}
	return stats
}

// Recompute writes combination count and mean fill level into every record,
// in place.
func Recompute(records []models.ContainerRecord) {
	stats := Compute(records)
	for i := range records {
		s := stats[records[i].Group()]
		records[i].ComboCount = s.Count
		records[i].MeanFill = s.MeanFill
	}
}
