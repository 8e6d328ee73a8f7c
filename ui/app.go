// Package ui serves the BookBridge dashboard: an HTML landing page plus a
// JSON API over the aggregated activity dataset.
package ui

import (
	"context"
	"embed"
	"html/template"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"bookbridge/internal/dataset"
)

//go:embed templates/*.html about.md
var embeddedFiles embed.FS

// DatasetProvider is the slice of the metrics service the handlers need
type DatasetProvider interface {
	LoadDataset(ctx context.Context) (*dataset.Dataset, error)
	ActiveEnrollments(ctx context.Context) (int, error)
}

// App is the dashboard web application
type App struct {
	router    chi.Router
	provider  DatasetProvider
	templates *template.Template
}

// NewApp creates the dashboard application and mounts its routes
func NewApp(provider DatasetProvider) (*App, error) {
	templates, err := template.ParseFS(embeddedFiles, "templates/*.html")
	if err != nil {
		return nil, err
	}

	a := &App{
		router:    chi.NewRouter(),
		provider:  provider,
		templates: templates,
	}
	a.routes()
	return a, nil
}

func (a *App) routes() {
	a.router.Use(middleware.RequestID)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Timeout(60 * time.Second))

	a.router.Get("/", a.handleIndex)
	a.router.Get("/about", a.handleAbout)
	a.router.Get("/healthz", a.handleHealth)

	a.router.Route("/api", func(r chi.Router) {
		r.Get("/summary", a.handleSummary)
		r.Get("/timeseries", a.handleTimeseries)
		r.Get("/categories", a.handleCategories)
		r.Get("/compare", a.handleCompare)
		r.Get("/trend", a.handleTrend)
		r.Get("/distribution", a.handleDistribution)
	})
}

// Router exposes the mounted routes for serving and testing
func (a *App) Router() http.Handler {
	return a.router
}

// Serve starts the HTTP server on the given port
func (a *App) Serve(port string) error {
	log.Printf("[UI] Dashboard listening on :%s", port)
	return http.ListenAndServe(":"+port, a.router)
}
