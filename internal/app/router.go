package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/stockledger/stockledger/internal/alerts"
	"github.com/stockledger/stockledger/internal/catalog"
	"github.com/stockledger/stockledger/internal/ledger"
	"github.com/stockledger/stockledger/internal/movement"
	"github.com/stockledger/stockledger/internal/observability"
	"github.com/stockledger/stockledger/internal/sheetsync"
	"github.com/stockledger/stockledger/internal/summary"
	"github.com/stockledger/stockledger/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	CatalogHandler   *catalog.Handler
	LedgerHandler    *ledger.Handler
	MovementHandler  *movement.Handler
	AlertsHandler    *alerts.Handler
	SummaryHandler   *summary.Handler
	SheetSyncHandler *sheetsync.Handler
	JobHandler       *jobs.Handler
	Metrics          *observability.Metrics
}

// NewRouter constructs the chi.Router with the service defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/items", params.CatalogHandler.MountRoutes)
	r.Route("/stock", params.LedgerHandler.MountRoutes)
	r.Route("/movement", params.MovementHandler.MountRoutes)
	r.Route("/alerts", params.AlertsHandler.MountRoutes)
	r.Route("/summary", params.SummaryHandler.MountRoutes)
	r.Route("/sync", params.SheetSyncHandler.MountRoutes)
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
