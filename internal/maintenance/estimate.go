package maintenance

import "math"

const (
	// IncrementMiles is the width of one integration step.
	IncrementMiles = 1000.0

	// MileageWeight is the share of the blended rate taken from the mileage curve; the
	// remainder comes from the age curve.
	MileageWeight = 0.5

	// MaxMiles bounds the distance CostOver integrates over.
	MaxMiles = 10_000_000.0
)

// Query describes the vehicle and driving pattern a maintenance estimate is made for.
type Query struct {
	Make           string
	Model          string
	Year           int
	CurrentMileage float64
	RemainingMiles float64
	AnnualMileage  float64
}

// EstimateTotal returns the expected upkeep cost over the next q.RemainingMiles miles.
// Missing reference data yields 0.
func EstimateTotal(db Database, q Query) float64 {
	table, ok := db.Select(q.Make, q.Model, q.Year)
	if !ok {
		return 0
	}
	return table.CostOver(q.CurrentMileage, q.RemainingMiles, q.AnnualMileage)
}

// Select picks the table whose year range contains year. Without a match the range with
// the smallest boundary distance wins, then the lowest lower bound. An unset year (<= 0)
// selects the range with the lowest lower bound.
func (db Database) Select(brand, model string, year int) (Table, bool) {
	tables := db.Lookup(brand, model)
	if len(tables) == 0 {
		return Table{}, false
	}

	best := 0
	for i := 1; i < len(tables); i++ {
		if closer(tables[i].YearRange, tables[best].YearRange, year) {
			best = i
		}
	}
	return tables[best], true
}

// closer reports whether a is a better match for year than b.
func closer(a, b YearRange, year int) bool {
	if year > 0 {
		distA, distB := a.Distance(year), b.Distance(year)
		if distA != distB {
			return distA < distB
		}
	}
	return a.Min() < b.Min()
}

// CostOver integrates the blended rate over [start, start+miles) in IncrementMiles steps,
// sampling each step at its midpoint. The final step may be partial. miles is capped at
// MaxMiles.
func (t Table) CostOver(start, miles, annualMileage float64) float64 {
	if !(miles > 0) || math.IsInf(miles, 0) {
		return 0
	}
	miles = math.Min(miles, MaxMiles)
	if math.IsNaN(start) || math.IsInf(start, 0) {
		start = 0
	}

	total := 0.0
	for i := 0; ; i++ {
		offset := float64(i) * IncrementMiles
		if offset >= miles {
			break
		}
		width := math.Min(IncrementMiles, miles-offset)
		mid := start + offset + width/2
		total += t.RateAt(mid, annualMileage) * (width / IncrementMiles)
	}
	return total
}

// RateAt returns the blended cost per thousand miles at odometer reading m. The vehicle's
// age is implied from m and annualMileage; with no annual mileage the age curve
// contributes nothing.
func (t Table) RateAt(m, annualMileage float64) float64 {
	mileageRate := Interpolate(t.ByMileage, m)

	timeRate := 0.0
	if annualMileage > 0 {
		impliedAge := m / annualMileage
		timeRate = Interpolate(t.ByTime, impliedAge) / (annualMileage / IncrementMiles)
	}

	return MileageWeight*mileageRate + (1-MileageWeight)*timeRate
}
