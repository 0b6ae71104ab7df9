package handlers

import (
	"encoding/json"
	"net/http"

	"dynacache/domain/cache"
	"dynacache/infrastructure/messaging/eventbridge"
	appErrors "dynacache/pkg/errors"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// CacheHandler exposes the cache's admin operations over HTTP. It is part
// of the harness around the cache, not the cache itself.
type CacheHandler struct {
	cache    cache.ResponseCache
	events   *eventbridge.Publisher
	validate *validator.Validate
	logger   *zap.Logger
}

// NewCacheHandler creates a new cache handler instance.
func NewCacheHandler(responseCache cache.ResponseCache, events *eventbridge.Publisher, logger *zap.Logger) *CacheHandler {
	return &CacheHandler{
		cache:    responseCache,
		events:   events,
		validate: validator.New(),
		logger:   logger,
	}
}

// InvalidateRequest is the body of POST /api/v1/cache/invalidate.
type InvalidateRequest struct {
	Selectors []cache.Selector `json:"selectors" validate:"required,min=1,dive"`
}

// Invalidate removes every cached entry overlapping the selector set.
func (h *CacheHandler) Invalidate(w http.ResponseWriter, r *http.Request) {
	var req InvalidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "selectors are required and each needs a typename")
		return
	}

	if err := h.cache.Invalidate(r.Context(), req.Selectors); err != nil {
		h.logger.Error("Invalidation failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, "invalidation failed and may be incomplete; retry is safe")
		return
	}

	// Event publishing is best-effort; the invalidation already happened.
	if err := h.events.PublishInvalidated(r.Context(), req.Selectors); err != nil {
		h.logger.Warn("Failed to publish invalidation event", zap.Error(err))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"selectors": len(req.Selectors),
	})
}

// Sweep removes every entry whose expiry has passed.
func (h *CacheHandler) Sweep(w http.ResponseWriter, r *http.Request) {
	if err := h.cache.DeleteExpiredCacheEntry(r.Context()); err != nil {
		h.logger.Error("Expiry sweep failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, "sweep failed and may be incomplete; retry is safe")
		return
	}

	if err := h.events.PublishSwept(r.Context()); err != nil {
		h.logger.Warn("Failed to publish sweep event", zap.Error(err))
	}

	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

// GetEntry is a debug read of one cached payload.
func (h *CacheHandler) GetEntry(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if key == "" {
		writeError(w, http.StatusBadRequest, "cache key is required")
		return
	}

	payload, ok, err := h.cache.Get(r.Context(), key)
	if err != nil {
		status := http.StatusBadGateway
		if appErrors.IsValidation(err) {
			status = http.StatusBadRequest
		}
		h.logger.Error("Cache read failed", zap.String("cacheKey", key), zap.Error(err))
		writeError(w, status, "cache read failed")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "cache miss")
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)
	w.Write(payload)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
