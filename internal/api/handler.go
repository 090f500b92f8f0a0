package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/nidhogg/nuka-memory/internal/memory"
)

// MemoryService is the part of memory.Service the HTTP API needs.
type MemoryService interface {
	StoreMemory(ctx context.Context, userID, content string, opts memory.StoreOptions) (string, error)
	SearchMemories(ctx context.Context, userID, query string, opts memory.SearchOptions) ([]memory.RankedResult, error)
	GetMemoryStats(ctx context.Context, userID string) (*memory.Stats, error)
	GetMemoryMode(ctx context.Context, userID string) (memory.Mode, error)
	ToggleMemoryMode(ctx context.Context, userID string, mode memory.Mode) error
	ActivateFocusMode(ctx context.Context, userID string, opts memory.FocusOptions) (string, error)
	DeactivateFocusMode(ctx context.Context, userID string) error
	ActiveBoost(ctx context.Context, userID string) (*memory.FocusBoost, error)
	IndexConfigured() bool
}

var _ MemoryService = (*memory.Service)(nil)

const maxBodyBytes = 1 << 20

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	svc    MemoryService
	logger *zap.Logger
}

// NewHandler creates a new API handler.
func NewHandler(svc MemoryService, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, logger: logger}
}

// Router builds the chi router with all routes.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.healthCheck)

		r.Route("/users/{userID}", func(r chi.Router) {
			r.Post("/memories", h.storeMemory)
			r.Post("/memories/search", h.searchMemories)
			r.Get("/memories/stats", h.memoryStats)

			r.Get("/mode", h.getMode)
			r.Put("/mode", h.setMode)

			r.Get("/focus", h.getFocus)
			r.Post("/focus", h.activateFocus)
			r.Delete("/focus", h.deactivateFocus)
		})
	})

	return r
}

func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":       "ok",
		"vector_index": h.svc.IndexConfigured(),
	})
}

type storeRequest struct {
	Content string `json:"content"`
	memory.StoreOptions
}

func (h *Handler) storeMemory(w http.ResponseWriter, r *http.Request) {
	var req storeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	id, err := h.svc.StoreMemory(r.Context(), chi.URLParam(r, "userID"), req.Content, req.StoreOptions)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

type searchRequest struct {
	Query string `json:"query"`
	memory.SearchOptions
}

func (h *Handler) searchMemories(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if !decodeBody(w, r, &req) {
		return
	}
	results, err := h.svc.SearchMemories(r.Context(), chi.URLParam(r, "userID"), req.Query, req.SearchOptions)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (h *Handler) memoryStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.GetMemoryStats(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

type modeBody struct {
	Mode string `json:"mode"`
}

func (h *Handler) getMode(w http.ResponseWriter, r *http.Request) {
	mode, err := h.svc.GetMemoryMode(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, modeBody{Mode: string(mode)})
}

func (h *Handler) setMode(w http.ResponseWriter, r *http.Request) {
	var req modeBody
	if !decodeBody(w, r, &req) {
		return
	}
	mode, err := memory.ParseMode(req.Mode)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.svc.ToggleMemoryMode(r.Context(), chi.URLParam(r, "userID"), mode); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, modeBody{Mode: string(mode)})
}

type focusResponse struct {
	Active bool `json:"active"`
	*memory.FocusBoost
}

func (h *Handler) getFocus(w http.ResponseWriter, r *http.Request) {
	boost, err := h.svc.ActiveBoost(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, focusResponse{Active: boost != nil, FocusBoost: boost})
}

func (h *Handler) activateFocus(w http.ResponseWriter, r *http.Request) {
	var req memory.FocusOptions
	if !decodeBody(w, r, &req) {
		return
	}
	id, err := h.svc.ActivateFocusMode(r.Context(), chi.URLParam(r, "userID"), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (h *Handler) deactivateFocus(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeactivateFocusMode(r.Context(), chi.URLParam(r, "userID")); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"active": false})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body: " + err.Error()})
		return false
	}
	return true
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case memory.IsValidation(err):
		return http.StatusBadRequest
	case errors.Is(err, memory.ErrIndexUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err))
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
