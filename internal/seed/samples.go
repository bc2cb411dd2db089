package seed

import "github.com/Simplici0/carcost/internal/maintenance"

// SampleDatabase returns the bundled reference maintenance data.
func SampleDatabase() maintenance.Database {
	return maintenance.NewDatabase(SampleTables()...)
}

// SampleTables lists the bundled reference tables. Mileage curves are cost per 1,000
// miles at an odometer reading; time curves are annual cost at a vehicle age in years.
func SampleTables() []maintenance.Table {
	return []maintenance.Table{
		{
			Make:      "Toyota",
			Model:     "Prius",
			YearRange: maintenance.YearRange{2004, 2015},
			ByMileage: points(0, 34, 30000, 40, 60000, 47, 90000, 54, 120000, 62, 150000, 68, 200000, 75),
			ByTime:    points(0, 420, 3, 480, 6, 560, 9, 640, 12, 720, 15, 800),
		},
		{
			Make:      "Toyota",
			Model:     "Prius",
			YearRange: maintenance.YearRange{2016, 2024},
			ByMileage: points(0, 30, 30000, 36, 60000, 42, 90000, 48, 120000, 55, 150000, 60, 200000, 66),
			ByTime:    points(0, 380, 3, 440, 6, 520, 9, 600, 12, 680, 15, 760),
		},
		{
			Make:      "Ford",
			Model:     "F-150",
			YearRange: maintenance.YearRange{2009, 2014},
			ByMileage: points(0, 50, 30000, 58, 60000, 68, 90000, 78, 120000, 87, 150000, 95, 200000, 104),
			ByTime:    points(0, 600, 3, 700, 6, 820, 9, 940, 12, 1060, 15, 1180),
		},
		{
			Make:      "Ford",
			Model:     "F-150",
			YearRange: maintenance.YearRange{2015, 2024},
			ByMileage: points(0, 45, 30000, 53, 60000, 62, 90000, 72, 120000, 80, 150000, 88, 200000, 96),
			ByTime:    points(0, 550, 3, 640, 6, 760, 9, 880, 12, 1000, 15, 1100),
		},
		{
			Make:      "Honda",
			Model:     "Civic",
			YearRange: maintenance.YearRange{2016, 2024},
			ByMileage: points(0, 28, 30000, 33, 60000, 39, 90000, 45, 120000, 51, 150000, 56, 200000, 62),
			ByTime:    points(0, 360, 3, 420, 6, 500, 9, 580, 12, 650, 15, 720),
		},
	}
}

// points pairs up key, value arguments.
func points(kv ...float64) []maintenance.Point {
	out := make([]maintenance.Point, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		out = append(out, maintenance.Point{Key: kv[i], Value: kv[i+1]})
	}
	return out
}
