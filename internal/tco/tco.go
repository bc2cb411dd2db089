// Package tco computes a vehicle's total cost of ownership over its remaining life.
package tco

// Process-wide default assumptions.
const (
	DefaultOpportunityCostRate = 0.08
	DefaultAnnualMileage       = 12000.0
	DefaultLifetimeMiles       = 200000.0
	DefaultAvgGasPrice         = 3.5
)

// Settings holds the lifestyle assumptions shared by every vehicle.
type Settings struct {
	OpportunityCostRate float64 `json:"opportunity_cost_rate"`
	AnnualMileage       float64 `json:"annual_mileage"`
	LifetimeMiles       float64 `json:"lifetime_miles"`
	AvgGasPrice         float64 `json:"average_gas_price"`
}

// DefaultSettings returns the default assumptions.
func DefaultSettings() Settings {
	return Settings{
		OpportunityCostRate: DefaultOpportunityCostRate,
		AnnualMileage:       DefaultAnnualMileage,
		LifetimeMiles:       DefaultLifetimeMiles,
		AvgGasPrice:         DefaultAvgGasPrice,
	}
}

// Vehicle is the snapshot of one car's attributes used by a single calculation.
// Make, Model and Year only drive the maintenance lookup.
type Vehicle struct {
	PurchasePrice         float64  `json:"purchase_price"`
	CurrentMileage        float64  `json:"current_mileage"`
	MPG                   float64  `json:"mpg"`
	InsurancePremium6mo   float64  `json:"insurance_premium_6mo"`
	LifetimeMilesOverride *float64 `json:"lifetime_miles_override,omitempty"`
	Make                  string   `json:"make,omitempty"`
	Model                 string   `json:"model,omitempty"`
	Year                  int      `json:"year,omitempty"`
}

// Breakdown contains every derived quantity of one calculation, at full precision.
type Breakdown struct {
	RemainingMiles        float64 `json:"remaining_miles"`
	YearsRemaining        float64 `json:"years_remaining"`
	GasCostTotal          float64 `json:"gas_cost_total"`
	GasCostAnnual         float64 `json:"gas_cost_annual"`
	InsuranceCostAnnual   float64 `json:"insurance_cost_annual"`
	InsuranceCostTotal    float64 `json:"insurance_cost_total"`
	OpportunityCost       float64 `json:"opportunity_cost"`
	MaintenanceCostTotal  float64 `json:"maintenance_cost_total"`
	MaintenanceCostAnnual float64 `json:"maintenance_cost_annual"`
	TotalCost             float64 `json:"total_cost"`
	AnnualCost            float64 `json:"annual_cost"`
	CostPer10kMiles       float64 `json:"cost_per_10k_miles"`
}
