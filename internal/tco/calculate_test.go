package tco

import (
	"math"
	"strings"
	"testing"

	"github.com/Simplici0/carcost/internal/maintenance"
)

func nearlyEqual(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("%s = %v, want %v", name, got, want)
	}
}

func miles(v float64) *float64 { return &v }

func sampleDatabase() maintenance.Database {
	return maintenance.NewDatabase(maintenance.Table{
		Make:      "Toyota",
		Model:     "Prius",
		YearRange: maintenance.YearRange{2016, 2022},
		ByMileage: []maintenance.Point{{Key: 0, Value: 30}, {Key: 100000, Value: 50}, {Key: 200000, Value: 70}},
		ByTime:    []maintenance.Point{{Key: 0, Value: 400}, {Key: 10, Value: 700}},
	})
}

func TestComputeCostBreakdown_RemainingMiles(t *testing.T) {
	settings := DefaultSettings()
	settings.LifetimeMiles = 200000

	result := ComputeCostBreakdown(settings, Vehicle{CurrentMileage: 50000}, nil)

	nearlyEqual(t, "remainingMiles", result.RemainingMiles, 150000)
}

func TestComputeCostBreakdown_RemainingMilesNeverNegative(t *testing.T) {
	settings := DefaultSettings()

	result := ComputeCostBreakdown(settings, Vehicle{
		PurchasePrice:       20000,
		CurrentMileage:      250000,
		MPG:                 30,
		InsurancePremium6mo: 500,
	}, sampleDatabase())

	if result.RemainingMiles != 0 {
		t.Fatalf("remainingMiles = %v, want 0", result.RemainingMiles)
	}
	if result.TotalCost != 0 || result.AnnualCost != 0 || result.CostPer10kMiles != 0 {
		t.Fatalf("expected zero projected cost, got %+v", result)
	}
	nearlyEqual(t, "insuranceCostAnnual", result.InsuranceCostAnnual, 1000)
}

func TestComputeCostBreakdown_YearsRemaining(t *testing.T) {
	settings := Settings{AnnualMileage: 12000, LifetimeMiles: 170000}

	result := ComputeCostBreakdown(settings, Vehicle{CurrentMileage: 50000}, nil)

	nearlyEqual(t, "remainingMiles", result.RemainingMiles, 120000)
	nearlyEqual(t, "yearsRemaining", result.YearsRemaining, 10)
}

func TestComputeCostBreakdown_GasCost(t *testing.T) {
	settings := Settings{AnnualMileage: 12000, LifetimeMiles: 200000, AvgGasPrice: 4}

	result := ComputeCostBreakdown(settings, Vehicle{CurrentMileage: 50000, MPG: 30}, nil)

	nearlyEqual(t, "gasCostTotal", result.GasCostTotal, 20000)
	nearlyEqual(t, "gasCostAnnual", result.GasCostAnnual, 1600)
}

func TestComputeCostBreakdown_InsuranceCost(t *testing.T) {
	settings := Settings{AnnualMileage: 10000, LifetimeMiles: 100000}

	result := ComputeCostBreakdown(settings, Vehicle{CurrentMileage: 50000, InsurancePremium6mo: 600}, nil)

	nearlyEqual(t, "yearsRemaining", result.YearsRemaining, 5)
	nearlyEqual(t, "insuranceCostAnnual", result.InsuranceCostAnnual, 1200)
	nearlyEqual(t, "insuranceCostTotal", result.InsuranceCostTotal, 6000)
}

func TestComputeCostBreakdown_OpportunityCost(t *testing.T) {
	settings := Settings{OpportunityCostRate: 0.10, AnnualMileage: 12000, LifetimeMiles: 120000}

	result := ComputeCostBreakdown(settings, Vehicle{PurchasePrice: 30000}, nil)

	nearlyEqual(t, "yearsRemaining", result.YearsRemaining, 10)
	nearlyEqual(t, "opportunityCost", result.OpportunityCost, 30000)
}

func TestComputeCostBreakdown_ZeroOpportunityRate(t *testing.T) {
	settings := DefaultSettings()
	settings.OpportunityCostRate = 0

	result := ComputeCostBreakdown(settings, Vehicle{PurchasePrice: 1e6, CurrentMileage: 10000}, nil)

	if result.OpportunityCost != 0 {
		t.Fatalf("opportunityCost = %v, want 0", result.OpportunityCost)
	}
}

func TestComputeCostBreakdown_ZeroMPG(t *testing.T) {
	settings := DefaultSettings()

	result := ComputeCostBreakdown(settings, Vehicle{CurrentMileage: 10000, MPG: 0, InsurancePremium6mo: 400}, nil)

	if result.GasCostTotal != 0 || result.GasCostAnnual != 0 {
		t.Fatalf("expected zero fuel cost, got total=%v annual=%v", result.GasCostTotal, result.GasCostAnnual)
	}
	if result.TotalCost <= 0 {
		t.Fatalf("expected insurance to still be counted, got %+v", result)
	}
}

func TestComputeCostBreakdown_ZeroAnnualMileage(t *testing.T) {
	settings := DefaultSettings()
	settings.AnnualMileage = 0

	result := ComputeCostBreakdown(settings, Vehicle{
		PurchasePrice:       25000,
		CurrentMileage:      50000,
		MPG:                 50,
		InsurancePremium6mo: 500,
		Make:                "Toyota",
		Model:               "Prius",
		Year:                2018,
	}, sampleDatabase())

	if result.YearsRemaining != 0 || result.InsuranceCostTotal != 0 || result.OpportunityCost != 0 {
		t.Fatalf("time-derived terms should be zero, got %+v", result)
	}
	if result.GasCostAnnual != 0 || result.MaintenanceCostAnnual != 0 || result.AnnualCost != 0 {
		t.Fatalf("annual figures should be zero, got %+v", result)
	}
	for name, v := range map[string]float64{
		"totalCost":       result.TotalCost,
		"costPer10kMiles": result.CostPer10kMiles,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("%s is not finite: %v", name, v)
		}
	}
}

func TestComputeCostBreakdown_TotalIsSumOfTerms(t *testing.T) {
	inputs := []Vehicle{
		{PurchasePrice: 25000, CurrentMileage: 50000, MPG: 50, InsurancePremium6mo: 500, Make: "Toyota", Model: "Prius", Year: 2018},
		{PurchasePrice: 41000.17, CurrentMileage: 1234.5, MPG: 21.3, InsurancePremium6mo: 733.33, Make: "toyota", Model: "prius"},
		{PurchasePrice: 9000, CurrentMileage: 199999, MPG: 33, InsurancePremium6mo: 350},
		{PurchasePrice: 5000, CurrentMileage: 80000, MPG: 0, InsurancePremium6mo: 0, LifetimeMilesOverride: miles(300000)},
	}

	for i, v := range inputs {
		r := ComputeCostBreakdown(DefaultSettings(), v, sampleDatabase())
		want := r.GasCostTotal + r.InsuranceCostTotal + r.OpportunityCost + r.MaintenanceCostTotal
		if r.TotalCost != want {
			t.Fatalf("vehicle %d: totalCost = %v, want exactly %v", i, r.TotalCost, want)
		}
	}
}

func TestComputeCostBreakdown_ScenarioWithAllTerms(t *testing.T) {
	settings := Settings{
		OpportunityCostRate: 0,
		AnnualMileage:       10000,
		LifetimeMiles:       100000,
		AvgGasPrice:         4,
	}
	vehicle := Vehicle{
		PurchasePrice:       30000,
		CurrentMileage:      50000,
		MPG:                 25,
		InsurancePremium6mo: 600,
		Make:                "Toyota",
		Model:               "Prius",
		Year:                2019,
	}

	result := ComputeCostBreakdown(settings, vehicle, sampleDatabase())

	nearlyEqual(t, "gasCostTotal", result.GasCostTotal, 8000)
	nearlyEqual(t, "insuranceCostTotal", result.InsuranceCostTotal, 6000)
	if result.OpportunityCost != 0 {
		t.Fatalf("opportunityCost = %v, want 0", result.OpportunityCost)
	}
	if result.MaintenanceCostTotal <= 0 {
		t.Fatalf("expected maintenance cost from the reference table, got %v", result.MaintenanceCostTotal)
	}
	if result.TotalCost < 14000 {
		t.Fatalf("totalCost = %v, want >= 14000", result.TotalCost)
	}
	nearlyEqual(t, "annualCost", result.AnnualCost, result.TotalCost/5)
	nearlyEqual(t, "costPer10kMiles", result.CostPer10kMiles, result.TotalCost/5)
	nearlyEqual(t, "maintenanceCostAnnual", result.MaintenanceCostAnnual, result.MaintenanceCostTotal/5)
}

func TestComputeCostBreakdown_LifetimeOverride(t *testing.T) {
	settings := DefaultSettings()

	withDefault := ComputeCostBreakdown(settings, Vehicle{CurrentMileage: 50000}, nil)
	withOverride := ComputeCostBreakdown(settings, Vehicle{CurrentMileage: 50000, LifetimeMilesOverride: miles(300000)}, nil)

	nearlyEqual(t, "default remainingMiles", withDefault.RemainingMiles, 150000)
	nearlyEqual(t, "override remainingMiles", withOverride.RemainingMiles, 250000)
}

func TestComputeCostBreakdown_MissingMaintenanceDataIsZero(t *testing.T) {
	result := ComputeCostBreakdown(DefaultSettings(), Vehicle{
		CurrentMileage: 10000,
		Make:           "Lada",
		Model:          "Niva",
	}, sampleDatabase())

	if result.MaintenanceCostTotal != 0 || result.MaintenanceCostAnnual != 0 {
		t.Fatalf("expected no maintenance cost, got %+v", result)
	}
}

func TestComputeCostBreakdown_NonFiniteInputsAreZeroed(t *testing.T) {
	settings := DefaultSettings()
	settings.AvgGasPrice = math.NaN()

	result := ComputeCostBreakdown(settings, Vehicle{
		PurchasePrice:  math.Inf(1),
		CurrentMileage: 10000,
		MPG:            30,
	}, nil)

	if result.GasCostTotal != 0 || result.OpportunityCost != 0 {
		t.Fatalf("expected non-finite inputs to zero their terms, got %+v", result)
	}
	if math.IsNaN(result.TotalCost) {
		t.Fatalf("totalCost is NaN")
	}
}

func TestComputeCostBreakdown_DoesNotMutateOverride(t *testing.T) {
	override := math.NaN()
	vehicle := Vehicle{LifetimeMilesOverride: &override}

	ComputeCostBreakdown(DefaultSettings(), vehicle, nil)

	if !math.IsNaN(*vehicle.LifetimeMilesOverride) {
		t.Fatalf("caller's override was modified")
	}
}

func TestSettingsValidate(t *testing.T) {
	if err := DefaultSettings().Validate(); err != nil {
		t.Fatalf("default settings rejected: %v", err)
	}
	if err := (Settings{}).Validate(); err != nil {
		t.Fatalf("zero settings rejected: %v", err)
	}

	bad := DefaultSettings()
	bad.LifetimeMiles = -1
	err := bad.Validate()
	if err == nil || !strings.Contains(err.Error(), "lifetime_miles") {
		t.Fatalf("expected lifetime_miles error, got %v", err)
	}

	bad = DefaultSettings()
	bad.AvgGasPrice = math.Inf(1)
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected infinite gas price to be rejected")
	}
}

func TestComputeCostBreakdown_CapsRemainingMiles(t *testing.T) {
	settings := DefaultSettings()
	vehicle := Vehicle{
		Make:                  "Toyota",
		Model:                 "Prius",
		Year:                  2018,
		MPG:                   50,
		LifetimeMilesOverride: miles(1e15),
	}

	result := ComputeCostBreakdown(settings, vehicle, sampleDatabase())

	nearlyEqual(t, "remainingMiles", result.RemainingMiles, maintenance.MaxMiles)
	nearlyEqual(t, "gasCostTotal", result.GasCostTotal, maintenance.MaxMiles/50*settings.AvgGasPrice)
	if result.MaintenanceCostTotal <= 0 {
		t.Fatalf("expected maintenance cost over the capped distance, got %v", result.MaintenanceCostTotal)
	}
}
