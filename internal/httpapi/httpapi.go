// Package httpapi serves the auxiliary HTTP surface: the websocket transport,
// Prometheus metrics, the MCP inspection endpoint and JSON debug views.
package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/1broseidon/winserv/internal/inspect"
	"github.com/1broseidon/winserv/internal/ipc"
	"github.com/1broseidon/winserv/internal/server"
)

// Config wires the router to the rest of the process. Nil fields disable the
// matching routes.
type Config struct {
	Source   inspect.Source
	Accept   func(ipc.Conn)
	Gatherer prometheus.Gatherer
	MCP      http.Handler
	Logger   *slog.Logger
}

// NewRouter builds the HTTP routes.
func NewRouter(cfg Config) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "http")

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(logger))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok\n"))
	})

	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}
	if cfg.Accept != nil {
		r.Handle("/ws", ipc.NewWebSocketHandler(cfg.Accept))
	}
	if cfg.MCP != nil {
		r.Handle("/mcp", cfg.MCP)
	}
	if cfg.Source != nil {
		d := debugHandlers{source: cfg.Source}
		r.Route("/debug", func(r chi.Router) {
			r.Get("/clients", d.clients)
			r.Get("/windows", d.windows)
			r.Get("/windows/{id}", d.window)
		})
	}
	return r
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}

type debugHandlers struct {
	source inspect.Source
}

func (d debugHandlers) clients(w http.ResponseWriter, r *http.Request) {
	clients, err := d.source.Clients(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, clients)
}

func (d debugHandlers) windows(w http.ResponseWriter, r *http.Request) {
	clientID := 0
	if v := r.URL.Query().Get("client"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "invalid client id", http.StatusBadRequest)
			return
		}
		clientID = n
	}
	windows, err := d.source.Windows(r.Context(), clientID)
	if err != nil {
		writeError(w, err)
		return
	}
	if windows == nil {
		windows = []server.WindowInfo{}
	}
	writeJSON(w, http.StatusOK, windows)
}

func (d debugHandlers) window(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 32)
	if err != nil {
		http.Error(w, "invalid window id", http.StatusBadRequest)
		return
	}
	info, err := d.source.Window(r.Context(), int32(id))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, server.ErrNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	http.Error(w, err.Error(), http.StatusServiceUnavailable)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(v)
}
