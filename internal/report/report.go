// Package report presents cost breakdowns: fixed-point rounding for the wire, plain-text
// summaries and ranking of several vehicles.
package report

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/carcost/internal/tco"
)

// Amount is a rounded quantity that marshals as a JSON number with a fixed number of
// decimal places.
type Amount struct {
	value  decimal.Decimal
	places int32
}

func newAmount(v float64, places int32) Amount {
	return Amount{value: decimal.NewFromFloat(v).Round(places), places: places}
}

// Decimal returns the rounded value.
func (a Amount) Decimal() decimal.Decimal { return a.value }

// Float64 returns the rounded value as a float.
func (a Amount) Float64() float64 {
	f, _ := a.value.Float64()
	return f
}

func (a Amount) String() string { return a.value.StringFixed(a.places) }

// MarshalJSON implements json.Marshaler.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.String()), nil
}

// View is a Breakdown rounded for display. Money has 2 decimal places, years 1 and miles
// none.
type View struct {
	RemainingMiles        Amount `json:"remaining_miles"`
	YearsRemaining        Amount `json:"years_remaining"`
	GasCostTotal          Amount `json:"gas_cost_total"`
	GasCostAnnual         Amount `json:"gas_cost_annual"`
	InsuranceCostAnnual   Amount `json:"insurance_cost_annual"`
	InsuranceCostTotal    Amount `json:"insurance_cost_total"`
	OpportunityCost       Amount `json:"opportunity_cost"`
	MaintenanceCostTotal  Amount `json:"maintenance_cost_total"`
	MaintenanceCostAnnual Amount `json:"maintenance_cost_annual"`
	TotalCost             Amount `json:"total_cost"`
	AnnualCost            Amount `json:"annual_cost"`
	CostPer10kMiles       Amount `json:"cost_per_10k_miles"`
}

// Round converts a full-precision breakdown into its display form.
func Round(b tco.Breakdown) View {
	money := func(v float64) Amount { return newAmount(v, 2) }
	return View{
		RemainingMiles:        newAmount(b.RemainingMiles, 0),
		YearsRemaining:        newAmount(b.YearsRemaining, 1),
		GasCostTotal:          money(b.GasCostTotal),
		GasCostAnnual:         money(b.GasCostAnnual),
		InsuranceCostAnnual:   money(b.InsuranceCostAnnual),
		InsuranceCostTotal:    money(b.InsuranceCostTotal),
		OpportunityCost:       money(b.OpportunityCost),
		MaintenanceCostTotal:  money(b.MaintenanceCostTotal),
		MaintenanceCostAnnual: money(b.MaintenanceCostAnnual),
		TotalCost:             money(b.TotalCost),
		AnnualCost:            money(b.AnnualCost),
		CostPer10kMiles:       money(b.CostPer10kMiles),
	}
}

// Summary renders a breakdown as aligned plain text under title.
func Summary(title string, b tco.Breakdown) string {
	v := Round(b)

	var sb strings.Builder
	sb.WriteString(title)
	sb.WriteByte('\n')
	sb.WriteString(strings.Repeat("=", utf8.RuneCountInString(title)))
	sb.WriteByte('\n')

	line := func(label, value string) {
		fmt.Fprintf(&sb, "%-26s %14s\n", label+":", value)
	}
	line("Remaining miles", v.RemainingMiles.String())
	line("Years remaining", v.YearsRemaining.String())
	line("Fuel (total)", "$"+v.GasCostTotal.String())
	line("Fuel (annual)", "$"+v.GasCostAnnual.String())
	line("Insurance (total)", "$"+v.InsuranceCostTotal.String())
	line("Insurance (annual)", "$"+v.InsuranceCostAnnual.String())
	line("Opportunity cost", "$"+v.OpportunityCost.String())
	line("Maintenance (total)", "$"+v.MaintenanceCostTotal.String())
	line("Maintenance (annual)", "$"+v.MaintenanceCostAnnual.String())
	sb.WriteString(strings.Repeat("-", 41))
	sb.WriteByte('\n')
	line("Total cost", "$"+v.TotalCost.String())
	line("Annual cost", "$"+v.AnnualCost.String())
	line("Cost per 10k miles", "$"+v.CostPer10kMiles.String())

	return sb.String()
}
