package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

const defaultHealthTimeout = 2 * time.Second

// StorePinger reports whether the job store can be reached.
type StorePinger interface {
	Ping(ctx context.Context) error
}

type healthResponse struct {
	Status string `json:"status"`
	Store  string `json:"store,omitempty"`
}

// HealthHandler serves /healthz. Without a Store it is a liveness check;
// with one it answers 503 while the store is unreachable.
type HealthHandler struct {
	Store   StorePinger
	Timeout time.Duration
	Logger  *slog.Logger
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	code, body := http.StatusOK, healthResponse{Status: "ok"}
	if h.Store != nil {
		timeout := h.Timeout
		if timeout <= 0 {
			timeout = defaultHealthTimeout
		}
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		err := h.Store.Ping(ctx)
		cancel()
		if err != nil {
			if h.Logger != nil {
				h.Logger.WarnContext(r.Context(), "health check failed", "error", err)
			}
			code, body = http.StatusServiceUnavailable, healthResponse{Status: "unavailable", Store: "down"}
		} else {
			body.Store = "up"
		}
	}

	if r.Method == http.MethodHead {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		return
	}
	WriteJSON(w, code, body)
}
