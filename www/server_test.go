package www

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/angas/gridfees-go/calc"
	"github.com/angas/gridfees-go/config"
	"github.com/angas/gridfees-go/database"
	"github.com/angas/gridfees-go/tariff"
	"github.com/angas/gridfees-go/www/chartjs"
)

func testStore() *tariff.Store {
	return tariff.NewStaticStore(&tariff.Dataset{
		Fees: []tariff.Row{
			{
				Operator:     "Elia",
				VoltageLevel: "HV",
				Rates: map[tariff.FeeType]float64{
					tariff.InjectionContracted: 5,
					tariff.InjectionVolumetric: 0.002,
					tariff.OfftakeFixed:        2.5,
					tariff.OfftakeContracted:   4,
					tariff.OfftakePeakMonthly:  0.3,
					tariff.OfftakeVolumetric:   0.01,
					tariff.OfftakeOther:        0.001,
				},
			},
		},
		BessExemptions: []tariff.BessExemption{
			{Operator: "Elia", FeeType: tariff.OfftakeVolumetric, Multiplier: 0},
		},
	})
}

const eliaBody = `{"dso_tso":"Elia","voltage":"HV","offtake_energy":100,"injection_energy":80,` +
	`"peak_monthly":2,"peak_yearly":3,"contracted_capacity":10,"is_bess":false}`

type fakeLogSource struct {
	entries []database.LogEntryRow
	minLvl  slog.Level
}

func (f *fakeLogSource) GetLogEntries(ctx context.Context, minLvl slog.Level, page, pageSize int) ([]database.LogEntryRow, error) {
	f.minLvl = minLvl
	return f.entries, nil
}

type fakeReloads struct{}

func (fakeReloads) GetDatasetReloads(ctx context.Context, limit int) ([]database.DatasetReloadRow, error) {
	return []database.DatasetReloadRow{{Path: "fees.json", Rows: 1}}, nil
}

func newTestServer(t *testing.T, deps Deps) *Server {
	t.Helper()
	if deps.Datasets == nil {
		deps.Datasets = testStore()
	}
	s, err := NewServer(config.AppConfigApi{}, deps)
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	return s
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestCalculateEndpoint(t *testing.T) {
	var calculated []calc.Result
	s := newTestServer(t, Deps{OnCalculated: func(req calc.Request, res calc.Result) {
		calculated = append(calculated, res)
	}})

	rec := do(t, s.Handler(), http.MethodPost, "/api/calculate", eliaBody)
	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, wanted %d", rec.Code, http.StatusOK)
	}

	var res calc.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("unable to decode result: %v", err)
	}
	if !res.Success {
		t.Errorf("got success %v, wanted true", res.Success)
	}
	if res.Total != 100.96 {
		t.Errorf("got total %v, wanted 100.96", res.Total)
	}
	if res.Configuration.Operator != "Elia" {
		t.Errorf("got operator %q, wanted Elia", res.Configuration.Operator)
	}
	if len(calculated) != 1 {
		t.Errorf("got %d callbacks, wanted 1", len(calculated))
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("got allow origin %q, wanted *", got)
	}
}

func TestCalculateErrors(t *testing.T) {
	s := newTestServer(t, Deps{})

	tests := []struct {
		name   string
		body   string
		status int
		kind   calc.Kind
	}{
		{"no matching tariff", `{"dso_tso":"Elia","voltage":"LV"}`, http.StatusOK, calc.KindNoMatchingTariff},
		{"bad number", `{"dso_tso":"Elia","voltage":"HV","offtake_energy":"lots"}`, http.StatusBadRequest, calc.KindInvalidInput},
		{"not json", `{`, http.StatusBadRequest, calc.KindInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s.Handler(), http.MethodPost, "/api/calculate", tt.body)
			if rec.Code != tt.status {
				t.Errorf("got status %d, wanted %d", rec.Code, tt.status)
			}
			var body calc.ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("unable to decode error body: %v", err)
			}
			if body.Kind != tt.kind {
				t.Errorf("got kind %q, wanted %q", body.Kind, tt.kind)
			}
			if body.Error == "" {
				t.Errorf("got empty error message")
			}
		})
	}
}

func TestMalformedDataset(t *testing.T) {
	s := newTestServer(t, Deps{Datasets: tariff.NewStaticStore(nil)})

	rec := do(t, s.Handler(), http.MethodPost, "/api/calculate", eliaBody)
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("got status %d, wanted %d", rec.Code, http.StatusInternalServerError)
	}

	rec = do(t, s.Handler(), http.MethodGet, "/api/options", "")
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("got status %d, wanted %d", rec.Code, http.StatusInternalServerError)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	s := newTestServer(t, Deps{})

	rec := do(t, s.Handler(), http.MethodGet, "/api/calculate", "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("got status %d, wanted %d", rec.Code, http.StatusMethodNotAllowed)
	}
}

func TestPreflight(t *testing.T) {
	origin := "https://fees.example.com"
	s, err := NewServer(config.AppConfigApi{AllowedOrigin: &origin}, Deps{Datasets: testStore()})
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}

	rec := do(t, s.Handler(), http.MethodOptions, "/api/calculate", "")
	if rec.Code != http.StatusOK {
		t.Errorf("got status %d, wanted %d", rec.Code, http.StatusOK)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != origin {
		t.Errorf("got allow origin %q, wanted %q", got, origin)
	}
}

func TestOptionsEndpoint(t *testing.T) {
	s := newTestServer(t, Deps{})

	rec := do(t, s.Handler(), http.MethodGet, "/api/options", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, wanted %d", rec.Code, http.StatusOK)
	}

	var opts tariff.Options
	if err := json.Unmarshal(rec.Body.Bytes(), &opts); err != nil {
		t.Fatalf("unable to decode options: %v", err)
	}
	if len(opts.Operators) != 1 || opts.Operators[0] != "Elia" {
		t.Errorf("got operators %v, wanted [Elia]", opts.Operators)
	}
	if got := rec.Header().Get("Cache-Control"); got != "no-cache" {
		t.Errorf("got cache control %q, wanted no-cache", got)
	}
}

func TestInsightsEndpoint(t *testing.T) {
	s := newTestServer(t, Deps{})

	rec := do(t, s.Handler(), http.MethodPost, "/api/insights", strings.Replace(eliaBody, `"is_bess":false`, `"is_bess":true`, 1))
	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, wanted %d", rec.Code, http.StatusOK)
	}

	var body insightsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unable to decode insights: %v", err)
	}
	found := false
	for _, in := range body.Insights {
		if in.Title == "BESS Exemptions Active" {
			found = true
		}
	}
	if !found {
		t.Errorf("got insights %v, wanted a BESS exemption insight", body.Insights)
	}
}

func TestCompareEndpoint(t *testing.T) {
	s := newTestServer(t, Deps{})

	body := `{"scenarios":[{"name":"a","request":` + eliaBody + `},{"name":"b","request":{"dso_tso":"Elia","voltage":"LV"}}]}`
	rec := do(t, s.Handler(), http.MethodPost, "/api/compare", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, wanted %d", rec.Code, http.StatusOK)
	}

	var cmp calc.Comparison
	if err := json.Unmarshal(rec.Body.Bytes(), &cmp); err != nil {
		t.Fatalf("unable to decode comparison: %v", err)
	}
	if len(cmp.Scenarios) != 2 {
		t.Fatalf("got %d scenarios, wanted 2", len(cmp.Scenarios))
	}
	if cmp.Scenarios[1].Error == nil {
		t.Errorf("got no error for scenario b, wanted NoMatchingTariff")
	}

	rec = do(t, s.Handler(), http.MethodPost, "/api/compare", `{"scenarios":[]}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("got status %d, wanted %d", rec.Code, http.StatusBadRequest)
	}
}

func TestStorageProfileEndpoint(t *testing.T) {
	s := newTestServer(t, Deps{})

	rec := do(t, s.Handler(), http.MethodPost, "/api/storage-profile", `{"power":2,"duration":2,"cycles":1,"efficiency":81}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, wanted %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var body storageProfileResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unable to decode profile: %v", err)
	}
	if body.Profile.Discharge != 1460 {
		t.Errorf("got discharge %v, wanted 1460", body.Profile.Discharge)
	}
	if !body.Request.IsStorage {
		t.Errorf("got is_bess %v, wanted true", body.Request.IsStorage)
	}

	rec = do(t, s.Handler(), http.MethodPost, "/api/storage-profile", `{"power":0,"duration":2,"cycles":1,"efficiency":81}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("got status %d, wanted %d", rec.Code, http.StatusBadRequest)
	}
}

func TestSensitivityEndpoint(t *testing.T) {
	s := newTestServer(t, Deps{})

	rec := do(t, s.Handler(), http.MethodPost, "/api/sensitivity", `{"request":`+eliaBody+`,"percentages":[-50,0,50]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, wanted %d", rec.Code, http.StatusOK)
	}

	var body sensitivityResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unable to decode sensitivity: %v", err)
	}
	if len(body.Points) != 3 {
		t.Fatalf("got %d points, wanted 3", len(body.Points))
	}
	if body.Points[0].Total >= body.Points[2].Total {
		t.Errorf("got totals %v and %v, wanted an increasing cost", body.Points[0].Total, body.Points[2].Total)
	}
}

func TestChartEndpoint(t *testing.T) {
	s := newTestServer(t, Deps{})

	rec := do(t, s.Handler(), http.MethodPost, "/api/chart", eliaBody)
	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, wanted %d", rec.Code, http.StatusOK)
	}

	var charts []chartjs.Chart
	if err := json.Unmarshal(rec.Body.Bytes(), &charts); err != nil {
		t.Fatalf("unable to decode charts: %v", err)
	}
	if len(charts) != 2 {
		t.Fatalf("got %d charts, wanted 2", len(charts))
	}
	if charts[0].Type != "doughnut" || charts[1].Type != "line" {
		t.Errorf("got chart types %q and %q, wanted doughnut and line", charts[0].Type, charts[1].Type)
	}
	if len(charts[0].Data.Labels) != 7 {
		t.Errorf("got %d breakdown slices, wanted 7", len(charts[0].Data.Labels))
	}
}

func TestExportEndpoint(t *testing.T) {
	s := newTestServer(t, Deps{})

	tests := []struct {
		format      string
		contentType string
		prefix      []byte
	}{
		{"csv", "text/csv", []byte("Configuration")},
		{"xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", []byte("PK")},
		{"pdf", "application/pdf", []byte("%PDF")},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			rec := do(t, s.Handler(), http.MethodPost, "/api/export?format="+tt.format, eliaBody)
			if rec.Code != http.StatusOK {
				t.Fatalf("got status %d, wanted %d", rec.Code, http.StatusOK)
			}
			if got := rec.Header().Get("Content-Type"); !strings.HasPrefix(got, tt.contentType) {
				t.Errorf("got content type %q, wanted %q", got, tt.contentType)
			}
			if got := rec.Header().Get("Content-Disposition"); !strings.Contains(got, "grid-fees-Elia-") {
				t.Errorf("got disposition %q, wanted the operator in the file name", got)
			}
			if !bytes.HasPrefix(rec.Body.Bytes(), tt.prefix) {
				t.Errorf("got body starting with %q, wanted %q", rec.Body.Bytes()[:min(8, rec.Body.Len())], tt.prefix)
			}
		})
	}

	rec := do(t, s.Handler(), http.MethodPost, "/api/export?format=doc", eliaBody)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("got status %d, wanted %d", rec.Code, http.StatusBadRequest)
	}
}

func TestReportEndpoint(t *testing.T) {
	s := newTestServer(t, Deps{})

	rec := do(t, s.Handler(), http.MethodPost, "/api/report", eliaBody)
	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, wanted %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	body := rec.Body.String()
	for _, want := range []string{"Grid Fee Report", "Offtake Fixed", "100960.00"} {
		if !strings.Contains(body, want) {
			t.Errorf("got report without %q", want)
		}
	}
}

func TestLogEndpoint(t *testing.T) {
	logs := &fakeLogSource{entries: []database.LogEntryRow{{Level: int(slog.LevelWarn), Message: "hello"}}}
	s := newTestServer(t, Deps{Logs: logs})

	rec := do(t, s.Handler(), http.MethodGet, "/api/log?page=2&pageSize=10&level=warn", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, wanted %d", rec.Code, http.StatusOK)
	}

	var body logResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unable to decode log: %v", err)
	}
	if body.Page != 2 || body.PageSize != 10 {
		t.Errorf("got page %d/%d, wanted 2/10", body.Page, body.PageSize)
	}
	if len(body.Entries) != 1 || body.Entries[0].Message != "hello" {
		t.Errorf("got entries %v, wanted one entry", body.Entries)
	}
	if logs.minLvl != slog.LevelWarn {
		t.Errorf("got level %v, wanted %v", logs.minLvl, slog.LevelWarn)
	}
}

func TestLogEndpointDisabled(t *testing.T) {
	s := newTestServer(t, Deps{})

	rec := do(t, s.Handler(), http.MethodGet, "/api/log", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("got status %d, wanted %d", rec.Code, http.StatusNotFound)
	}
}

func TestSysInfoEndpoint(t *testing.T) {
	s := newTestServer(t, Deps{DatasetPath: "fees.json", Reloads: fakeReloads{}, Version: "1.2.3"})

	rec := do(t, s.Handler(), http.MethodGet, "/api/sys_info", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, wanted %d", rec.Code, http.StatusOK)
	}

	var body sysInfoResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unable to decode sys info: %v", err)
	}
	if body.Version != "1.2.3" {
		t.Errorf("got version %q, wanted 1.2.3", body.Version)
	}
	if body.Dataset == nil || body.Dataset.Fees != 1 || body.Dataset.Path != "fees.json" {
		t.Errorf("got dataset %+v, wanted one fee row from fees.json", body.Dataset)
	}
	if len(body.Reloads) != 1 {
		t.Errorf("got %d reloads, wanted 1", len(body.Reloads))
	}
}

func TestStaticIndex(t *testing.T) {
	s := newTestServer(t, Deps{})

	rec := do(t, s.Handler(), http.MethodGet, "/", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, wanted %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), "Grid Fee Calculator") {
		t.Errorf("got index without title")
	}
}
