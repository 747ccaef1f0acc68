package httpx

import (
	"log/slog"
	"net/http"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Jobs JobAPI
	// Optional: pinged by /healthz.
	Store StorePinger
	// Optional: Prometheus scrape handler mounted at MetricsPath.
	Metrics     http.Handler
	MetricsPath string
	Logger      *slog.Logger
}

// NewRouter creates and configures the HTTP router with logging and panic recovery.
func NewRouter(services RouterServices) http.Handler {
	mux := http.NewServeMux()

	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "http")

	registerJobRoutes(mux, &JobHandlers{Svc: services.Jobs})
	health := &HealthHandler{Store: services.Store, Logger: logger}
	mux.Handle("GET /healthz", health)
	mux.Handle("HEAD /healthz", health)
	if services.Metrics != nil {
		path := services.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		mux.Handle("GET "+path, services.Metrics)
	}

	return Recover(logger)(Logging(logger)(mux))
}

func registerJobRoutes(mux *http.ServeMux, h *JobHandlers) {
	mux.HandleFunc("POST /api/unsubscribe/jobs", h.CreateJob)
	mux.HandleFunc("GET /api/unsubscribe/jobs", h.ListJobs)
	mux.HandleFunc("GET /api/unsubscribe/jobs/active", h.GetActiveJob)
	mux.HandleFunc("GET /api/unsubscribe/jobs/{id}", h.GetJob)
	mux.HandleFunc("GET /api/unsubscribe/jobs/{id}/status", h.GetJobStatus)
	mux.HandleFunc("POST /api/unsubscribe/jobs/{id}/run", h.RunJob)
	mux.HandleFunc("POST /api/unsubscribe/jobs/{id}/retry", h.RetryJob)
	mux.HandleFunc("GET /api/unsubscribe/jobs/{id}/failed", h.FailedItems)
}
