package main

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/Simplici0/carcost/internal/cache"
	"github.com/Simplici0/carcost/internal/live"
	"github.com/Simplici0/carcost/internal/store"
)

const maxBodyBytes = 1 << 20

type server struct {
	logger    *zap.Logger
	store     *store.Store
	memo      *cache.Memo
	hub       *live.Hub
	recompute *live.Debouncer
	limiter   *rateLimiter
}

func newServer(logger *zap.Logger, st *store.Store, memo *cache.Memo, hub *live.Hub) *server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &server{logger: logger, store: st, memo: memo, hub: hub}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/health", s.handleHealth)
	r.Get("/ws", s.hub.ServeWS)

	r.Route("/api", func(r chi.Router) {
		r.Get("/settings", s.handleGetSettings)
		r.Put("/settings", s.handlePutSettings)

		r.Get("/vehicles", s.handleListVehicles)
		r.Post("/vehicles", s.handleCreateVehicle)
		r.Get("/vehicles/{id}", s.handleGetVehicle)
		r.Put("/vehicles/{id}", s.handleUpdateVehicle)
		r.Delete("/vehicles/{id}", s.handleDeleteVehicle)
		r.Get("/vehicles/{id}/summary", s.handleVehicleSummary)
		r.Get("/tags", s.handleListTags)

		r.With(s.rateLimit("estimate")).Post("/estimate", s.handleEstimate)

		r.Get("/maintenance", s.handleGetMaintenance)
		r.Put("/maintenance/{make}/{model}", s.handlePutMaintenance)
		r.Delete("/maintenance/{make}/{model}", s.handleDeleteMaintenance)
	})

	return r
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"clients": s.hub.ClientCount(),
		"cache":   s.memo.Stats(),
	})
}

func (s *server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

// triggerRecompute schedules a broadcast of fresh breakdowns after a write.
func (s *server) triggerRecompute() {
	if s.recompute != nil {
		s.recompute.Trigger()
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeError maps store errors to responses and logs unexpected ones.
func (s *server) writeError(w http.ResponseWriter, r *http.Request, err error, action string) {
	if errors.Is(err, store.ErrNotFound) {
		writeMessage(w, http.StatusNotFound, "not found")
		return
	}
	s.logger.Error(action, zap.String("path", r.URL.Path), zap.Error(err))
	writeMessage(w, http.StatusInternalServerError, "failed to "+action)
}

// isJSON reports whether the request body is JSON. Anything else is treated as a form.
func isJSON(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return r.Header.Get("Content-Type") == ""
	}
	return mediaType == "application/json"
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst)
}
