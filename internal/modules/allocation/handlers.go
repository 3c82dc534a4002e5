package allocation

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// resultCache stores the last allocation run.
type resultCache struct {
	mu          sync.RWMutex
	lastResult  *Result
	lastUpdated time.Time
}

// Handler handles HTTP requests for the allocation module.
type Handler struct {
	service *Service
	cache   *resultCache
	log     zerolog.Logger
}

// NewHandler creates a new allocation handler.
func NewHandler(service *Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		cache:   &resultCache{},
		log:     log.With().Str("component", "allocation_handler").Logger(),
	}
}

// HandleRun handles POST /api/allocation/run - runs the pipeline for
// the requested symbols and returns the weights.
func (h *Handler) HandleRun(w http.ResponseWriter, r *http.Request) {
	var req RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.Symbols) == 0 {
		h.writeError(w, http.StatusBadRequest, "At least one symbol is required")
		return
	}

	h.log.Info().Strs("symbols", req.Symbols).Msg("Running allocation")

	result, err := h.service.Allocate(r.Context(), req.Symbols)
	if err != nil {
		h.log.Error().Err(err).Msg("Allocation failed")
		h.writeError(w, http.StatusUnprocessableEntity, "Insufficient information to allocate: "+err.Error())
		return
	}

	h.cache.mu.Lock()
	h.cache.lastResult = result
	h.cache.lastUpdated = result.Timestamp
	h.cache.mu.Unlock()

	h.writeJSON(w, http.StatusOK, result)
}

// HandleStatus handles GET /api/allocation/status - returns the last
// run, if any.
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	h.cache.mu.RLock()
	defer h.cache.mu.RUnlock()

	response := map[string]interface{}{
		"status":   "ready",
		"last_run": nil,
	}
	if h.cache.lastResult != nil {
		response["last_run"] = h.cache.lastResult
		response["last_run_time"] = h.cache.lastUpdated.Format(time.RFC3339)
	}

	h.writeJSON(w, http.StatusOK, response)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
