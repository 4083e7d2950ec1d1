package reporthttp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/honai-puma/honai-puma/internal/report"
	"github.com/honai-puma/honai-puma/internal/territory"
)

type stubService struct {
	result    report.Result
	err       error
	lastLevel territory.Level
	nodes     []territory.Node
}

func (s *stubService) Metrics() []report.Adapter {
	return report.NewRegistry().All()
}

func (s *stubService) ComputeRollup(_ context.Context, id report.MetricID, date *time.Time, filter territory.Filter) (report.Result, error) {
	if s.err != nil {
		return report.Result{}, s.err
	}
	result := s.result
	result.Metric = id
	if date != nil {
		result.Date = *date
	}
	return result, nil
}

func (s *stubService) ListTerritories(_ context.Context, level territory.Level, _ territory.Filter) ([]territory.Node, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.lastLevel = level
	return s.nodes, nil
}

func newTestRouter(svc ReportService) http.Handler {
	r := chi.NewRouter()
	NewHandler(nil, svc).MountRoutes(r)
	return r
}

func sampleResult() report.Result {
	data := report.RowData{
		Target:      100,
		Actual:      120,
		Achievement: report.Number(120),
		Gap:         20,
	}
	return report.Result{
		Title: "SO Transactions",
		Unit:  report.UnitCount,
		Date:  time.Date(2025, time.March, 14, 0, 0, 0, 0, time.UTC),
		Rows: []report.Row{
			report.DataRow(territory.LevelRegional, "PUMA", data),
			report.SectionHeader(territory.LevelBranch),
		},
	}
}

func TestHandleRollupReturnsJSON(t *testing.T) {
	router := newTestRouter(&stubService{result: sampleResult()})

	req := httptest.NewRequest(http.MethodGet, "/reports/so?date=2025-03-14", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d body %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content type %s", ct)
	}

	var body struct {
		Metric string `json:"metric"`
		Rows   []struct {
			Kind string `json:"kind"`
			Name string `json:"name"`
			Data *struct {
				Actual float64  `json:"actual"`
				YoY    *float64 `json:"yoy"`
			} `json:"data"`
		} `json:"rows"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Metric != "so" {
		t.Fatalf("metric echo: %s", body.Metric)
	}
	if body.Rows[0].Kind != "data" || body.Rows[0].Data.Actual != 120 {
		t.Fatalf("data row: %+v", body.Rows[0])
	}
	// Not-computable ratios serialise as null, never NaN.
	if body.Rows[0].Data.YoY != nil {
		t.Fatalf("expected null yoy, got %v", *body.Rows[0].Data.YoY)
	}
	if body.Rows[1].Kind != "section_header" || body.Rows[1].Data != nil {
		t.Fatalf("header row: %+v", body.Rows[1])
	}
}

func TestHandleRollupRejectsMalformedDate(t *testing.T) {
	router := newTestRouter(&stubService{result: sampleResult()})
	req := httptest.NewRequest(http.MethodGet, "/reports/so?date=14-03-2025", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandleRollupErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"invalid filter", fmt.Errorf("%w: cluster requires subbranch", territory.ErrInvalidFilter), http.StatusBadRequest},
		{"unknown metric", fmt.Errorf("%w: arpu", report.ErrUnknownMetric), http.StatusNotFound},
		{"data unavailable", fmt.Errorf("%w: timeout", report.ErrDataUnavailable), http.StatusServiceUnavailable},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := newTestRouter(&stubService{err: tc.err})
			req := httptest.NewRequest(http.MethodGet, "/reports/so", nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d (%s)", tc.want, rec.Code, rec.Body.String())
			}
			var problem struct {
				Status int `json:"status"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &problem); err != nil {
				t.Fatalf("problem body: %v", err)
			}
			if problem.Status != tc.want {
				t.Fatalf("problem status mismatch: %d", problem.Status)
			}
		})
	}
}

func TestHandleCatalogueListsMetrics(t *testing.T) {
	router := newTestRouter(&stubService{})
	req := httptest.NewRequest(http.MethodGet, "/reports", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var body struct {
		Metrics []metricView `json:"metrics"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Metrics) != 9 {
		t.Fatalf("expected 9 registered metrics, got %d", len(body.Metrics))
	}
	if body.Metrics[0].ID != report.MetricNewSales || !body.Metrics[0].HasQoQ {
		t.Fatalf("first metric: %+v", body.Metrics[0])
	}
}

func TestHandleCSVSetsDownloadHeaders(t *testing.T) {
	router := newTestRouter(&stubService{result: sampleResult()})
	req := httptest.NewRequest(http.MethodGet, "/reports/so/export.csv?date=2025-03-14", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d body %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("content type %s", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "honai-so-2025-03-14.csv") {
		t.Fatalf("disposition %s", cd)
	}
	if !strings.Contains(rec.Body.String(), "120.00%") {
		t.Fatalf("formatted body missing:\n%s", rec.Body.String())
	}
}

func TestHandleXLSXSetsDownloadHeaders(t *testing.T) {
	router := newTestRouter(&stubService{result: sampleResult()})
	req := httptest.NewRequest(http.MethodGet, "/reports/so/export.xlsx", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "spreadsheetml") {
		t.Fatalf("content type %s", ct)
	}
	if rec.Body.Len() == 0 {
		t.Fatal("empty workbook")
	}
}

func TestHandleTerritoriesDefaultsToBranch(t *testing.T) {
	svc := &stubService{nodes: []territory.Node{{Level: territory.LevelBranch, Name: "AMBON", Parent: "PUMA"}}}
	router := newTestRouter(svc)
	req := httptest.NewRequest(http.MethodGet, "/territories", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	if svc.lastLevel != territory.LevelBranch {
		t.Fatalf("default level: %s", svc.lastLevel)
	}
	var body struct {
		Territories []territory.Node `json:"territories"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Territories) != 1 || body.Territories[0].Name != "AMBON" {
		t.Fatalf("territories: %+v", body.Territories)
	}
}

func TestExportRateLimitKicksIn(t *testing.T) {
	router := newTestRouter(&stubService{result: sampleResult()})
	var last int
	for i := 0; i < 12; i++ {
		req := httptest.NewRequest(http.MethodGet, "/reports/so/export.csv", nil)
		req.RemoteAddr = "10.1.1.1:4000"
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		last = rec.Code
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after burst, got %d", last)
	}
}
