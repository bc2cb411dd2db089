package main

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/Simplici0/carcost/internal/cache"
	"github.com/Simplici0/carcost/internal/db"
	"github.com/Simplici0/carcost/internal/live"
	"github.com/Simplici0/carcost/internal/migrations"
	"github.com/Simplici0/carcost/internal/report"
	"github.com/Simplici0/carcost/internal/seed"
	"github.com/Simplici0/carcost/internal/store"
	"github.com/Simplici0/carcost/internal/tco"
)

func newTestServer(t *testing.T) *server {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	database, err := db.Open(ctx, filepath.Join(t.TempDir(), "server-test.db"))
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	if err := migrations.Up(ctx, database, "../../migrations"); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	if _, err := seed.Run(ctx, database); err != nil {
		t.Fatalf("seed: %v", err)
	}

	hub := live.NewHub(nil)
	go hub.Run(ctx)

	return newServer(nil, store.New(database), cache.NewMemo(cache.NewMemoryCache(0), nil), hub)
}

func do(t *testing.T, h http.Handler, method, path, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return v
}

type vehicleResponse struct {
	Vehicle struct {
		ID    int64    `json:"id"`
		Make  string   `json:"make"`
		Model string   `json:"model"`
		MPG   float64  `json:"mpg"`
		Tags  []string `json:"tags"`
	} `json:"vehicle"`
	Title     string             `json:"title"`
	Breakdown map[string]float64 `json:"breakdown"`
}

const priusJSON = `{
	"make": "Toyota",
	"model": "Prius",
	"year": 2018,
	"purchase_price": 25000,
	"current_mileage": "50000",
	"mpg": 50,
	"insurance_premium_6mo": 500,
	"tags": ["hybrid"]
}`

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s.routes(), http.MethodGet, "/health", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d", rec.Code)
	}
	body := decode[map[string]any](t, rec)
	if body["status"] != "ok" {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestSettings_GetAndPartialUpdate(t *testing.T) {
	s := newTestServer(t)
	h := s.routes()

	rec := do(t, h, http.MethodGet, "/api/settings", "", "")
	if got := decode[tco.Settings](t, rec); got != tco.DefaultSettings() {
		t.Fatalf("settings=%+v, want defaults", got)
	}

	rec = do(t, h, http.MethodPut, "/api/settings", "application/json", `{"average_gas_price": 4.25}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	got := decode[tco.Settings](t, rec)
	if got.AvgGasPrice != 4.25 || got.AnnualMileage != tco.DefaultAnnualMileage {
		t.Fatalf("settings=%+v", got)
	}

	form := url.Values{"annual_mileage": {"15000"}}
	rec = do(t, h, http.MethodPut, "/api/settings", "application/x-www-form-urlencoded", form.Encode())
	if rec.Code != http.StatusOK {
		t.Fatalf("form status=%d body=%s", rec.Code, rec.Body.String())
	}
	got = decode[tco.Settings](t, rec)
	if got.AnnualMileage != 15000 || got.AvgGasPrice != 4.25 {
		t.Fatalf("settings=%+v", got)
	}
}

func TestSettings_RejectsInvalidValues(t *testing.T) {
	s := newTestServer(t)
	h := s.routes()

	cases := []struct {
		name, contentType, body string
	}{
		{"negative json", "application/json", `{"annual_mileage": -1}`},
		{"string json", "application/json", `{"annual_mileage": "lots"}`},
		{"negative form", "application/x-www-form-urlencoded", "lifetime_miles=-5"},
		{"garbage form", "application/x-www-form-urlencoded", "average_gas_price=abc"},
	}
	for _, tc := range cases {
		rec := do(t, h, http.MethodPut, "/api/settings", tc.contentType, tc.body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: status=%d, want 400", tc.name, rec.Code)
		}
	}

	rec := do(t, h, http.MethodGet, "/api/settings", "", "")
	if got := decode[tco.Settings](t, rec); got != tco.DefaultSettings() {
		t.Fatalf("rejected updates changed settings: %+v", got)
	}
}

func TestVehicles_CreateGetUpdateDelete(t *testing.T) {
	s := newTestServer(t)
	h := s.routes()

	rec := do(t, h, http.MethodPost, "/api/vehicles", "application/json", priusJSON)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status=%d body=%s", rec.Code, rec.Body.String())
	}
	created := decode[vehicleResponse](t, rec)
	if created.Vehicle.ID <= 0 || created.Title != "2018 Toyota Prius" {
		t.Fatalf("unexpected vehicle: %+v", created)
	}
	if created.Breakdown["maintenance_cost_total"] <= 0 {
		t.Fatalf("expected maintenance from seeded tables, got %v", created.Breakdown)
	}
	if created.Breakdown["remaining_miles"] != 150000 {
		t.Fatalf("remaining_miles=%v", created.Breakdown["remaining_miles"])
	}

	path := "/api/vehicles/" + strconv.FormatInt(created.Vehicle.ID, 10)
	rec = do(t, h, http.MethodGet, path, "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get status=%d", rec.Code)
	}

	rec = do(t, h, http.MethodPut, path, "application/json", strings.Replace(priusJSON, `"mpg": 50`, `"mpg": "54"`, 1))
	if rec.Code != http.StatusOK {
		t.Fatalf("update status=%d body=%s", rec.Code, rec.Body.String())
	}
	if updated := decode[vehicleResponse](t, rec); updated.Vehicle.MPG != 54 {
		t.Fatalf("mpg=%v, want 54", updated.Vehicle.MPG)
	}

	rec = do(t, h, http.MethodGet, path+"/summary", "", "")
	if rec.Code != http.StatusOK || !strings.HasPrefix(rec.Body.String(), "2018 Toyota Prius\n") {
		t.Fatalf("summary status=%d body=%q", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Fatalf("summary content type=%q", ct)
	}

	rec = do(t, h, http.MethodDelete, path, "", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status=%d", rec.Code)
	}
	rec = do(t, h, http.MethodGet, path, "", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get deleted status=%d, want 404", rec.Code)
	}
	rec = do(t, h, http.MethodDelete, path, "", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("second delete status=%d, want 404", rec.Code)
	}
}

func TestVehicles_InvalidRequests(t *testing.T) {
	s := newTestServer(t)
	h := s.routes()

	if rec := do(t, h, http.MethodGet, "/api/vehicles/abc", "", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad id status=%d, want 400", rec.Code)
	}
	if rec := do(t, h, http.MethodPost, "/api/vehicles", "application/json", `{"make":`); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad json status=%d, want 400", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, "/api/vehicles?sort=price", "", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad sort status=%d, want 400", rec.Code)
	}
	if rec := do(t, h, http.MethodPut, "/api/vehicles/42", "application/json", priusJSON); rec.Code != http.StatusNotFound {
		t.Fatalf("update missing status=%d, want 404", rec.Code)
	}
}

func TestVehicles_ListFiltersAndSorts(t *testing.T) {
	s := newTestServer(t)
	h := s.routes()

	truck := url.Values{
		"make":                  {"Ford"},
		"model":                 {"F-150"},
		"year":                  {"2017"},
		"purchase_price":        {"32000"},
		"current_mileage":       {"60000"},
		"mpg":                   {"20"},
		"insurance_premium_6mo": {"700"},
		"tags":                  {"truck, work"},
	}
	if rec := do(t, h, http.MethodPost, "/api/vehicles", "application/x-www-form-urlencoded", truck.Encode()); rec.Code != http.StatusCreated {
		t.Fatalf("create truck status=%d body=%s", rec.Code, rec.Body.String())
	}
	if rec := do(t, h, http.MethodPost, "/api/vehicles", "application/json", priusJSON); rec.Code != http.StatusCreated {
		t.Fatalf("create prius status=%d", rec.Code)
	}

	rec := do(t, h, http.MethodGet, "/api/vehicles?sort=total_cost", "", "")
	list := decode[[]vehicleResponse](t, rec)
	if len(list) != 2 {
		t.Fatalf("expected 2 vehicles, got %d", len(list))
	}
	if list[0].Vehicle.Model != "Prius" || list[0].Breakdown["total_cost"] > list[1].Breakdown["total_cost"] {
		t.Fatalf("expected the Prius first by total cost: %+v", list)
	}

	rec = do(t, h, http.MethodGet, "/api/vehicles", "", "")
	list = decode[[]vehicleResponse](t, rec)
	if list[0].Vehicle.Model != "F-150" {
		t.Fatalf("default order should be by id: %+v", list)
	}

	rec = do(t, h, http.MethodGet, "/api/vehicles?tag=TRUCK", "", "")
	list = decode[[]vehicleResponse](t, rec)
	if len(list) != 1 || list[0].Vehicle.Make != "Ford" {
		t.Fatalf("tag filter: %+v", list)
	}

	rec = do(t, h, http.MethodGet, "/api/vehicles?q=prius", "", "")
	list = decode[[]vehicleResponse](t, rec)
	if len(list) != 1 || list[0].Vehicle.Model != "Prius" {
		t.Fatalf("query filter: %+v", list)
	}

	rec = do(t, h, http.MethodGet, "/api/tags", "", "")
	tags := decode[[]string](t, rec)
	if strings.Join(tags, ",") != "hybrid,truck,work" {
		t.Fatalf("tags=%v", tags)
	}
}

func TestEstimate_UsesSettingsOverride(t *testing.T) {
	s := newTestServer(t)
	h := s.routes()

	body := `{"vehicle": ` + priusJSON + `, "settings": {"opportunity_cost_rate": 0}}`
	rec := do(t, h, http.MethodPost, "/api/estimate", "application/json", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Title     string             `json:"title"`
		Settings  tco.Settings       `json:"settings"`
		Breakdown map[string]float64 `json:"breakdown"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Settings.OpportunityCostRate != 0 || resp.Settings.AnnualMileage != tco.DefaultAnnualMileage {
		t.Fatalf("settings=%+v", resp.Settings)
	}
	if resp.Breakdown["opportunity_cost"] != 0 {
		t.Fatalf("opportunity_cost=%v, want 0", resp.Breakdown["opportunity_cost"])
	}

	settings := tco.DefaultSettings()
	settings.OpportunityCostRate = 0
	want := tco.ComputeCostBreakdown(settings, tco.Vehicle{
		PurchasePrice: 25000, CurrentMileage: 50000, MPG: 50, InsurancePremium6mo: 500,
		Make: "Toyota", Model: "Prius", Year: 2018,
	}, seed.SampleDatabase())
	if got, exp := resp.Breakdown["total_cost"], report.Round(want).TotalCost.Float64(); math.Abs(got-exp) > 1e-9 {
		t.Fatalf("total_cost=%v, want %v", got, exp)
	}

	// Stored settings are untouched.
	rec = do(t, h, http.MethodGet, "/api/settings", "", "")
	if got := decode[tco.Settings](t, rec); got != tco.DefaultSettings() {
		t.Fatalf("estimate changed stored settings: %+v", got)
	}
}


func TestMaintenance_ReplaceAndDelete(t *testing.T) {
	s := newTestServer(t)
	h := s.routes()

	rec := do(t, h, http.MethodGet, "/api/maintenance", "", "")
	db := decode[map[string][]json.RawMessage](t, rec)
	if len(db["toyota|prius"]) != 2 {
		t.Fatalf("expected seeded prius tables, got %v", db)
	}

	table := `[{"year_range": [2019, 2024], "by_mileage": [[0, 29], [100000, 44]], "by_time": [[0, 350], [10, 600]]}]`
	rec = do(t, h, http.MethodPut, "/api/maintenance/Mazda/CX-5", "application/json", table)
	if rec.Code != http.StatusOK {
		t.Fatalf("put status=%d body=%s", rec.Code, rec.Body.String())
	}

	rec = do(t, h, http.MethodGet, "/api/maintenance", "", "")
	db = decode[map[string][]json.RawMessage](t, rec)
	if len(db["mazda|cx-5"]) != 1 {
		t.Fatalf("expected new table, got keys %v", db)
	}

	unsorted := `[{"year_range": [2019, 2024], "by_mileage": [[100000, 44], [0, 29]], "by_time": []}]`
	if rec := do(t, h, http.MethodPut, "/api/maintenance/Mazda/CX-5", "application/json", unsorted); rec.Code != http.StatusBadRequest {
		t.Fatalf("unsorted status=%d, want 400", rec.Code)
	}

	if rec := do(t, h, http.MethodDelete, "/api/maintenance/mazda/cx-5", "", ""); rec.Code != http.StatusNoContent {
		t.Fatalf("delete status=%d", rec.Code)
	}
	if rec := do(t, h, http.MethodDelete, "/api/maintenance/mazda/cx-5", "", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("second delete status=%d, want 404", rec.Code)
	}
}

func TestWritesTriggerRecompute(t *testing.T) {
	s := newTestServer(t)
	fired := make(chan struct{}, 8)
	s.recompute = live.NewDebouncer(10*time.Millisecond, func() { fired <- struct{}{} })
	defer s.recompute.Stop()
	h := s.routes()

	if rec := do(t, h, http.MethodPost, "/api/vehicles", "application/json", priusJSON); rec.Code != http.StatusCreated {
		t.Fatalf("create status=%d", rec.Code)
	}
	if rec := do(t, h, http.MethodPut, "/api/settings", "application/json", `{"average_gas_price": 3}`); rec.Code != http.StatusOK {
		t.Fatalf("settings status=%d", rec.Code)
	}

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatalf("recompute was not triggered")
	}
}

func TestCurrentViewsAreCheapestFirst(t *testing.T) {
	s := newTestServer(t)
	h := s.routes()

	do(t, h, http.MethodPost, "/api/vehicles", "application/json", `{"make":"Ford","model":"F-150","year":2017,"purchase_price":32000,"current_mileage":60000,"mpg":20,"insurance_premium_6mo":700}`)
	do(t, h, http.MethodPost, "/api/vehicles", "application/json", priusJSON)

	views, err := s.currentViews(context.Background())
	if err != nil {
		t.Fatalf("current views: %v", err)
	}
	if len(views) != 2 || views[0].Vehicle.Model != "Prius" {
		t.Fatalf("unexpected order: %+v", views)
	}
	if data, ok := s.initData().([]vehicleView); !ok || len(data) != 2 {
		t.Fatalf("init data = %#v", s.initData())
	}
}
