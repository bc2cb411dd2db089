package tco

import (
	"math"

	"github.com/Simplici0/carcost/internal/maintenance"
)

// ComputeCostBreakdown projects fuel, insurance, opportunity and maintenance costs over the
// vehicle's remaining miles. It never fails: degenerate inputs (zero MPG, zero annual
// mileage, no remaining miles, missing maintenance data) zero out the affected terms.
// Remaining miles are capped at maintenance.MaxMiles.
func ComputeCostBreakdown(settings Settings, vehicle Vehicle, db maintenance.Database) Breakdown {
	s := settings.sanitized()
	v := vehicle.sanitized()

	lifetimeMiles := s.LifetimeMiles
	if v.LifetimeMilesOverride != nil {
		lifetimeMiles = *v.LifetimeMilesOverride
	}

	remainingMiles := math.Min(math.Max(0, lifetimeMiles-v.CurrentMileage), maintenance.MaxMiles)
	yearsRemaining := ratio(remainingMiles, s.AnnualMileage)

	gasCostTotal := 0.0
	if v.MPG > 0 {
		gasCostTotal = (remainingMiles / v.MPG) * s.AvgGasPrice
	}
	gasCostAnnual := 0.0
	if s.AnnualMileage > 0 && v.MPG > 0 {
		gasCostAnnual = (s.AnnualMileage / v.MPG) * s.AvgGasPrice
	}

	insuranceCostAnnual := v.InsurancePremium6mo * 2
	insuranceCostTotal := insuranceCostAnnual * yearsRemaining

	opportunityCost := v.PurchasePrice * s.OpportunityCostRate * yearsRemaining

	maintenanceCostTotal := maintenance.EstimateTotal(db, maintenance.Query{
		Make:           v.Make,
		Model:          v.Model,
		Year:           v.Year,
		CurrentMileage: v.CurrentMileage,
		RemainingMiles: remainingMiles,
		AnnualMileage:  s.AnnualMileage,
	})
	maintenanceCostAnnual := ratio(maintenanceCostTotal, yearsRemaining)

	totalCost := gasCostTotal + insuranceCostTotal + opportunityCost + maintenanceCostTotal

	return Breakdown{
		RemainingMiles:        remainingMiles,
		YearsRemaining:        yearsRemaining,
		GasCostTotal:          gasCostTotal,
		GasCostAnnual:         gasCostAnnual,
		InsuranceCostAnnual:   insuranceCostAnnual,
		InsuranceCostTotal:    insuranceCostTotal,
		OpportunityCost:       opportunityCost,
		MaintenanceCostTotal:  maintenanceCostTotal,
		MaintenanceCostAnnual: maintenanceCostAnnual,
		TotalCost:             totalCost,
		AnnualCost:            ratio(totalCost, yearsRemaining),
		CostPer10kMiles:       ratio(totalCost, remainingMiles/10000),
	}
}
