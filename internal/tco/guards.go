package tco

import (
	"fmt"
	"math"
)

// ratio divides num by den, resolving to 0 when den is not positive.
func ratio(num, den float64) float64 {
	if den > 0 {
		return num / den
	}
	return 0
}

// finite maps NaN and infinities to 0.
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func (s Settings) sanitized() Settings {
	return Settings{
		OpportunityCostRate: finite(s.OpportunityCostRate),
		AnnualMileage:       finite(s.AnnualMileage),
		LifetimeMiles:       finite(s.LifetimeMiles),
		AvgGasPrice:         finite(s.AvgGasPrice),
	}
}

func (v Vehicle) sanitized() Vehicle {
	out := v
	out.PurchasePrice = finite(v.PurchasePrice)
	out.CurrentMileage = finite(v.CurrentMileage)
	out.MPG = finite(v.MPG)
	out.InsurancePremium6mo = finite(v.InsurancePremium6mo)
	if v.LifetimeMilesOverride != nil {
		override := finite(*v.LifetimeMilesOverride)
		out.LifetimeMilesOverride = &override
	}
	return out
}

// Validate reports the first setting that is negative or not finite.
func (s Settings) Validate() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"opportunity_cost_rate", s.OpportunityCostRate},
		{"annual_mileage", s.AnnualMileage},
		{"lifetime_miles", s.LifetimeMiles},
		{"average_gas_price", s.AvgGasPrice},
	}
	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) || f.value < 0 {
			return fmt.Errorf("%s must be greater than or equal to 0", f.name)
		}
	}
	return nil
}
