package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Simplici0/carcost/internal/models"
	"github.com/Simplici0/carcost/internal/report"
	"github.com/Simplici0/carcost/internal/seed"
	"github.com/Simplici0/carcost/internal/tco"
)

type estimateOptions struct {
	dbPath           string
	format           string
	vehicle          models.Vehicle
	lifetimeOverride float64
	settings         tco.Settings
}

type estimateOutput struct {
	Title     string       `json:"title"`
	Settings  tco.Settings `json:"settings"`
	Breakdown report.View  `json:"breakdown"`
}

func newEstimateCmd(a *app) *cobra.Command {
	o := &estimateOptions{settings: tco.DefaultSettings()}

	estimateCmd := &cobra.Command{
		Use:   "estimate",
		Short: "Estimate the cost of owning one vehicle",
		Long: `Compute the cost breakdown of one vehicle over its remaining life.

Without --db the default settings and the built-in maintenance tables are used.
With --db the stored settings and maintenance tables are loaded first; settings
flags given on the command line still take precedence.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runEstimate(cmd, o)
		},
	}

	f := estimateCmd.Flags()
	f.StringVar(&o.dbPath, "db", "", "SQLite database with stored settings and maintenance tables")
	f.StringVarP(&o.format, "format", "f", "text", "output format (text, json)")

	f.StringVar(&o.vehicle.Make, "make", "", "vehicle make")
	f.StringVar(&o.vehicle.Model, "model", "", "vehicle model")
	f.StringVar(&o.vehicle.Trim, "trim", "", "vehicle trim")
	f.IntVar(&o.vehicle.Year, "year", 0, "model year")
	f.Float64Var(&o.vehicle.PurchasePrice, "price", 0, "purchase price")
	f.Float64Var(&o.vehicle.CurrentMileage, "mileage", 0, "current odometer reading")
	f.Float64Var(&o.vehicle.MPG, "mpg", 0, "fuel economy in miles per gallon")
	f.Float64Var(&o.vehicle.InsurancePremium6mo, "insurance", 0, "six-month insurance premium")
	f.Float64Var(&o.lifetimeOverride, "lifetime-miles-override", 0, "expected lifetime miles for this vehicle only")

	f.Float64Var(&o.settings.OpportunityCostRate, "opportunity-cost-rate", tco.DefaultOpportunityCostRate, "annual return forgone on the purchase price, as a ratio")
	f.Float64Var(&o.settings.AnnualMileage, "annual-mileage", tco.DefaultAnnualMileage, "miles driven per year")
	f.Float64Var(&o.settings.LifetimeMiles, "lifetime-miles", tco.DefaultLifetimeMiles, "expected lifetime miles")
	f.Float64Var(&o.settings.AvgGasPrice, "gas-price", tco.DefaultAvgGasPrice, "average price per gallon")

	return estimateCmd
}

var settingsFlags = []string{"opportunity-cost-rate", "annual-mileage", "lifetime-miles", "gas-price"}

func (a *app) runEstimate(cmd *cobra.Command, o *estimateOptions) error {
	format := strings.ToLower(o.format)
	if format != "text" && format != "json" {
		return fmt.Errorf("unknown format %q", o.format)
	}

	settings := o.settings
	database := seed.SampleDatabase()

	if o.dbPath != "" {
		conn, st, err := a.openStore(cmd.Context(), o.dbPath)
		if err != nil {
			return err
		}
		defer conn.Close()

		stored, err := st.Settings(cmd.Context())
		if err != nil {
			return err
		}
		settings = mergeSettings(stored, o.settings, cmd.Flags().Changed)

		database, err = st.MaintenanceDatabase(cmd.Context())
		if err != nil {
			return err
		}
	}

	if err := settings.Validate(); err != nil {
		return err
	}

	vehicle := o.vehicle
	if cmd.Flags().Changed("lifetime-miles-override") {
		override := o.lifetimeOverride
		vehicle.LifetimeMilesOverride = &override
	}

	breakdown := tco.ComputeCostBreakdown(settings, vehicle.Snapshot(), database)
	a.logger.Debug("estimated vehicle",
		zap.String("title", vehicle.Title()),
		zap.Float64("total_cost", breakdown.TotalCost),
	)

	out := cmd.OutOrStdout()
	if format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(estimateOutput{
			Title:     vehicle.Title(),
			Settings:  settings,
			Breakdown: report.Round(breakdown),
		})
	}
	_, err := fmt.Fprint(out, report.Summary(vehicle.Title(), breakdown))
	return err
}

// mergeSettings starts from stored and takes every settings flag the user set explicitly.
func mergeSettings(stored, flags tco.Settings, changed func(string) bool) tco.Settings {
	merged := stored
	for _, name := range settingsFlags {
		if !changed(name) {
			continue
		}
		switch name {
		case "opportunity-cost-rate":
			merged.OpportunityCostRate = flags.OpportunityCostRate
		case "annual-mileage":
			merged.AnnualMileage = flags.AnnualMileage
		case "lifetime-miles":
			merged.LifetimeMiles = flags.LifetimeMiles
		case "gas-price":
			merged.AvgGasPrice = flags.AvgGasPrice
		}
	}
	return merged
}
