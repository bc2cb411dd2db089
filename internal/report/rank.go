package report

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/Simplici0/carcost/internal/tco"
)

// Sort keys accepted by SortEntries.
const (
	SortByID         = "id"
	SortByTotalCost  = "total_cost"
	SortByAnnualCost = "annual_cost"
	SortByCostPer10k = "cost_per_10k"
)

// Entry pairs a stored vehicle with its breakdown.
type Entry struct {
	ID        int64
	Title     string
	Breakdown tco.Breakdown
}

// SortEntries orders entries ascending by key, breaking ties by ID. An empty key sorts by
// ID.
func SortEntries(entries []Entry, key string) error {
	metric, err := metricFor(key)
	if err != nil {
		return err
	}
	slices.SortStableFunc(entries, func(a, b Entry) int {
		if c := cmp.Compare(metric(a), metric(b)); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return nil
}

// ValidSortKey reports whether key is accepted by SortEntries.
func ValidSortKey(key string) bool {
	_, err := metricFor(key)
	return err == nil
}

func metricFor(key string) (func(Entry) float64, error) {
	switch key {
	case "", SortByID:
		return func(e Entry) float64 { return float64(e.ID) }, nil
	case SortByTotalCost:
		return func(e Entry) float64 { return e.Breakdown.TotalCost }, nil
	case SortByAnnualCost:
		return func(e Entry) float64 { return e.Breakdown.AnnualCost }, nil
	case SortByCostPer10k:
		return func(e Entry) float64 { return e.Breakdown.CostPer10kMiles }, nil
	default:
		return nil, fmt.Errorf("unknown sort key %q", key)
	}
}
