// Package reporthttp exposes the reporting API: rollup JSON, the metric
// catalogue, territory listings and table downloads.
package reporthttp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/honai-puma/honai-puma/internal/platform/httpx"
	"github.com/honai-puma/honai-puma/internal/report"
	"github.com/honai-puma/honai-puma/internal/report/export"
	"github.com/honai-puma/honai-puma/internal/territory"
)

const requestTimeout = 15 * time.Second

// ReportService is the reporting contract the handler depends on.
type ReportService interface {
	Metrics() []report.Adapter
	ComputeRollup(ctx context.Context, id report.MetricID, date *time.Time, filter territory.Filter) (report.Result, error)
	ListTerritories(ctx context.Context, level territory.Level, filter territory.Filter) ([]territory.Node, error)
}

// Handler serves the reporting endpoints.
type Handler struct {
	logger  *slog.Logger
	service ReportService
	bufPool sync.Pool
}

// NewHandler constructs the reporting HTTP handler.
func NewHandler(logger *slog.Logger, service ReportService) *Handler {
	h := &Handler{logger: logger, service: service}
	h.bufPool.New = func() interface{} { return new(bytes.Buffer) }
	return h
}

type metricView struct {
	ID          report.MetricID `json:"id"`
	Title       string          `json:"title"`
	Unit        report.Unit     `json:"unit"`
	LatencyDays int             `json:"latency_days"`
	HasQoQ      bool            `json:"has_qoq"`
}

func (h *Handler) handleCatalogue(w http.ResponseWriter, r *http.Request) {
	adapters := h.service.Metrics()
	views := make([]metricView, 0, len(adapters))
	for _, a := range adapters {
		views = append(views, metricView{
			ID:          a.ID,
			Title:       a.Title,
			Unit:        a.Unit,
			LatencyDays: a.LatencyDays,
			HasQoQ:      a.HasQoQ,
		})
	}
	httpx.JSON(w, http.StatusOK, map[string]interface{}{"metrics": views})
}

func (h *Handler) handleRollup(w http.ResponseWriter, r *http.Request) {
	result, ok := h.loadRollup(w, r)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) handleCSV(w http.ResponseWriter, r *http.Request) {
	result, ok := h.loadRollup(w, r)
	if !ok {
		return
	}
	table := export.BuildTable(result)

	buf := h.bufPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer func() {
		buf.Reset()
		h.bufPool.Put(buf)
	}()

	if err := export.WriteCSV(buf, table); err != nil {
		h.logError("write csv", err)
		httpx.Problem(w, http.StatusInternalServerError, "Export Failed", "")
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(table, "csv")))
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logError("stream csv", err)
	}
}

func (h *Handler) handleXLSX(w http.ResponseWriter, r *http.Request) {
	result, ok := h.loadRollup(w, r)
	if !ok {
		return
	}
	table := export.BuildTable(result)

	buf := h.bufPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer func() {
		buf.Reset()
		h.bufPool.Put(buf)
	}()

	if err := export.WriteXLSX(buf, table); err != nil {
		h.logError("write xlsx", err)
		httpx.Problem(w, http.StatusInternalServerError, "Export Failed", "")
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(table, "xlsx")))
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logError("stream xlsx", err)
	}
}

func (h *Handler) handleTerritories(w http.ResponseWriter, r *http.Request) {
	level := territory.Level(strings.TrimSpace(r.URL.Query().Get("level")))
	if level == "" {
		level = territory.LevelBranch
	}
	filter := parseFilter(r)

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	nodes, err := h.service.ListTerritories(ctx, level, filter)
	if err != nil {
		h.respondError(w, err)
		return
	}
	if nodes == nil {
		nodes = []territory.Node{}
	}
	httpx.JSON(w, http.StatusOK, map[string]interface{}{"territories": nodes})
}

// loadRollup runs the shared parse+compute path. On failure it has
// already written the response.
func (h *Handler) loadRollup(w http.ResponseWriter, r *http.Request) (report.Result, bool) {
	metric := report.MetricID(chi.URLParam(r, "metric"))

	var selected *time.Time
	if raw := strings.TrimSpace(r.URL.Query().Get("date")); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "date must be yyyy-mm-dd")
			return report.Result{}, false
		}
		selected = &parsed
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	result, err := h.service.ComputeRollup(ctx, metric, selected, parseFilter(r))
	if err != nil {
		h.respondError(w, err)
		return report.Result{}, false
	}
	return result, true
}

func parseFilter(r *http.Request) territory.Filter {
	q := r.URL.Query()
	return territory.Filter{
		Branch:    strings.TrimSpace(q.Get("branch")),
		Subbranch: strings.TrimSpace(q.Get("subbranch")),
		Cluster:   strings.TrimSpace(q.Get("cluster")),
		Kabupaten: strings.TrimSpace(q.Get("kabupaten")),
	}
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, territory.ErrInvalidFilter):
		httpx.Problem(w, http.StatusBadRequest, "Invalid Filter", err.Error())
	case errors.Is(err, report.ErrUnknownMetric):
		httpx.Problem(w, http.StatusNotFound, "Unknown Metric", err.Error())
	case errors.Is(err, report.ErrDataUnavailable):
		h.logError("warehouse read", err)
		httpx.Problem(w, http.StatusServiceUnavailable, "Data Unavailable", "report data is temporarily unavailable")
	default:
		h.logError("compute rollup", err)
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

func (h *Handler) logError(context string, err error) {
	if h.logger != nil {
		h.logger.Error(context, slog.Any("error", err))
	}
}
