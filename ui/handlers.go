package ui

import (
	"encoding/json"
	"html/template"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"bookbridge/app"
	"bookbridge/domain/activity"
	"bookbridge/internal/dataset"
)

const defaultCategoryColumn = "program"

var defaultMetrics = []string{
	activity.FieldBooksDistributed,
	activity.FieldTotalChildren,
	activity.MetricAvgBooksPerChild,
}

func (a *App) handleIndex(w http.ResponseWriter, r *http.Request) {
	ds, err := a.provider.LoadDataset(r.Context())
	if err != nil {
		serverError(w, "failed to load dataset", err)
		return
	}
	stats := ds.SummaryStats()
	enrollments, err := a.provider.ActiveEnrollments(r.Context())
	if err != nil {
		log.Printf("[UI] Enrollment count failed: %v", err)
	}

	data := map[string]any{
		"TotalRecords":      stats.TotalRecords,
		"Totals":            stats.Totals,
		"HasDates":          stats.HasDates,
		"DateStart":         stats.DateStart.Format("2006-01-02"),
		"DateEnd":           stats.DateEnd.Format("2006-01-02"),
		"ActiveEnrollments": enrollments,
		"BooksDistributed":  stats.Totals[activity.FieldBooksDistributed],
		"ChildrenServed":    stats.Totals[activity.FieldTotalChildren],
		"BooksPerChild":     stats.Totals[activity.MetricAvgBooksPerChild],
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := a.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		log.Printf("[UI] Template render failed: %v", err)
	}
}

func (a *App) handleAbout(w http.ResponseWriter, r *http.Request) {
	source, err := embeddedFiles.ReadFile("about.md")
	if err != nil {
		serverError(w, "about page unavailable", err)
		return
	}
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: mdhtml.CommonFlags})
	rendered := markdown.ToHTML(source, p, renderer)

	data := map[string]any{"Content": template.HTML(rendered)}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := a.templates.ExecuteTemplate(w, "about.html", data); err != nil {
		log.Printf("[UI] Template render failed: %v", err)
	}
}

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

func (a *App) handleSummary(w http.ResponseWriter, r *http.Request) {
	ds, err := a.provider.LoadDataset(r.Context())
	if err != nil {
		serverError(w, "failed to load dataset", err)
		return
	}
	stats := ds.SummaryStats()
	writeJSON(w, map[string]any{
		"total_records": stats.TotalRecords,
		"totals":        stats.Totals,
		"has_dates":     stats.HasDates,
		"date_start":    stats.DateStart.Format("2006-01-02"),
		"date_end":      stats.DateEnd.Format("2006-01-02"),
	})
}

func (a *App) handleTimeseries(w http.ResponseWriter, r *http.Request) {
	ds, err := a.provider.LoadDataset(r.Context())
	if err != nil {
		serverError(w, "failed to load dataset", err)
		return
	}
	unit := dataset.ParseTimeUnit(r.URL.Query().Get("unit"))
	metrics := queryMetrics(r)
	writeJSON(w, map[string]any{
		"unit":    string(unit),
		"periods": ds.AggregateByTime(unit, metrics),
	})
}

func (a *App) handleCategories(w http.ResponseWriter, r *http.Request) {
	ds, err := a.provider.LoadDataset(r.Context())
	if err != nil {
		serverError(w, "failed to load dataset", err)
		return
	}
	column := r.URL.Query().Get("column")
	if column == "" {
		column = defaultCategoryColumn
	}
	writeJSON(w, map[string]any{
		"column": column,
		"groups": ds.AggregateByCategory(column, queryMetrics(r)),
	})
}

func (a *App) handleCompare(w http.ResponseWriter, r *http.Request) {
	ds, err := a.provider.LoadDataset(r.Context())
	if err != nil {
		serverError(w, "failed to load dataset", err)
		return
	}
	start1, err := queryDate(r, "start1")
	if err != nil {
		badRequest(w, "start1 must be YYYY-MM-DD")
		return
	}
	end1, err := queryDate(r, "end1")
	if err != nil {
		badRequest(w, "end1 must be YYYY-MM-DD")
		return
	}
	start2, err := queryDate(r, "start2")
	if err != nil {
		badRequest(w, "start2 must be YYYY-MM-DD")
		return
	}
	end2, err := queryDate(r, "end2")
	if err != nil {
		badRequest(w, "end2 must be YYYY-MM-DD")
		return
	}
	writeJSON(w, map[string]any{
		"rows": ds.ComparePeriods(start1, end1, start2, end2, queryMetrics(r)),
	})
}

func (a *App) handleTrend(w http.ResponseWriter, r *http.Request) {
	ds, err := a.provider.LoadDataset(r.Context())
	if err != nil {
		serverError(w, "failed to load dataset", err)
		return
	}
	metric := r.URL.Query().Get("metric")
	if metric == "" {
		metric = activity.FieldBooksDistributed
	}
	unit := dataset.ParseTimeUnit(r.URL.Query().Get("unit"))
	periods := ds.AggregateByTime(unit, []string{metric})
	writeJSON(w, app.Trend(periods, metric))
}

func (a *App) handleDistribution(w http.ResponseWriter, r *http.Request) {
	ds, err := a.provider.LoadDataset(r.Context())
	if err != nil {
		serverError(w, "failed to load dataset", err)
		return
	}
	metric := r.URL.Query().Get("metric")
	if metric == "" {
		metric = activity.FieldBooksDistributed
	}
	unit := dataset.ParseTimeUnit(r.URL.Query().Get("unit"))
	periods := ds.AggregateByTime(unit, []string{metric})
	writeJSON(w, app.Distribution(periods, metric))
}

func queryMetrics(r *http.Request) []string {
	raw := r.URL.Query().Get("metrics")
	if raw == "" {
		return defaultMetrics
	}
	var metrics []string
	for _, m := range strings.Split(raw, ",") {
		if m = strings.TrimSpace(m); m != "" {
			metrics = append(metrics, m)
		}
	}
	return metrics
}

func queryDate(r *http.Request, key string) (time.Time, error) {
	return time.Parse("2006-01-02", r.URL.Query().Get(key))
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("[UI] JSON encode failed: %v", err)
	}
}

func serverError(w http.ResponseWriter, message string, err error) {
	log.Printf("[UI] %s: %v", message, err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func badRequest(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
