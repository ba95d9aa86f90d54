package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/scorecore/internal/domain"
	"github.com/scorecore/internal/service"
	"github.com/scorecore/internal/websocket"
)

// Handler provides HTTP handlers for the reconciliation API
type Handler struct {
	service *service.PlayService
	hub     *websocket.Hub
	logger  *slog.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(svc *service.PlayService, hub *websocket.Hub, logger *slog.Logger) *Handler {
	return &Handler{
		service: svc,
		hub:     hub,
		logger:  logger,
	}
}

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Router creates and configures the HTTP router
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(corsMiddleware)

	// Health check
	r.Get("/health", h.HealthCheck)
	r.Get("/ready", h.ReadyCheck)

	// WebSocket endpoint
	r.Get("/ws", h.HandleWebSocket)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Play-result submission
		r.Post("/plays", h.SubmitAttempt)
		r.Post("/plays/batch", h.SubmitBatch)

		// Per-player state
		r.Route("/players/{playerID}", func(r chi.Router) {
			r.Get("/scores", h.GetPlayerScores)
			r.Get("/stats", h.GetPlayerStats)
			r.Get("/courses", h.GetPlayerCourses)
			r.Get("/profile", h.GetProfile)
			r.Put("/profile", h.SaveProfile)

			r.Route("/courses/{courseID}", func(r chi.Router) {
				r.Post("/result", h.SubmitCourseResult)
				r.Post("/status", h.MarkCourseStatus)
			})
		})

		// Catalog and challenge
		r.Get("/courses", h.ListCourses)
		r.Get("/challenge", h.GetChallenge)

		// Chart rankings
		r.Route("/charts/{songID}/{tier}/{mode}", func(r chi.Router) {
			r.Get("/top", h.GetChartTop)
			r.Get("/player/{playerID}", h.GetChartRank)
		})

		// WebSocket info endpoint
		r.Get("/ws/stats", h.GetWebSocketStats)
	})

	return r
}

// corsMiddleware adds CORS headers
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type, X-Request-ID")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeSuccess writes a successful JSON response
func (h *Handler) writeSuccess(w http.ResponseWriter, data interface{}) {
	h.writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    data,
	})
}

// writeError writes an error JSON response
func (h *Handler) writeError(w http.ResponseWriter, status int, err error) {
	h.writeJSON(w, status, APIResponse{
		Success: false,
		Error:   err.Error(),
	})
}

// chartFromParams parses the songID/tier/mode URL segments into a chart key
func chartFromParams(r *http.Request) (domain.ChartKey, error) {
	songID, err := strconv.Atoi(chi.URLParam(r, "songID"))
	if err != nil || songID <= 0 {
		return domain.ChartKey{}, domain.ErrInvalidRequest
	}
	tier, err := strconv.Atoi(chi.URLParam(r, "tier"))
	if err != nil {
		return domain.ChartKey{}, domain.ErrInvalidRequest
	}
	mode, err := strconv.Atoi(chi.URLParam(r, "mode"))
	if err != nil {
		return domain.ChartKey{}, domain.ErrInvalidRequest
	}

	chart := domain.ChartKey{
		SongID: domain.CollapseRegionFanout(songID),
		Tier:   domain.DifficultyTier(tier),
		Mode:   domain.PlayMode(mode),
	}
	if _, err := chart.Storage(); err != nil {
		return domain.ChartKey{}, err
	}
	return chart, nil
}

// HandleWebSocket handles WebSocket upgrade requests
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	websocket.ServeWs(h.hub, h.logger, w, r)
}

// GetWebSocketStats returns WebSocket connection statistics. With a topic
// query parameter it also reports that chart topic's subscriber count.
func (h *Handler) GetWebSocketStats(w http.ResponseWriter, r *http.Request) {
	stats := map[string]interface{}{
		"total_connections": h.hub.GetTotalConnections(),
	}
	if topic := r.URL.Query().Get("topic"); topic != "" {
		stats["topic"] = topic
		stats["topic_subscribers"] = h.hub.GetSubscriberCount(topic)
	}
	h.writeSuccess(w, stats)
}

// HealthCheck returns service health status
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	h.writeSuccess(w, map[string]string{"status": "healthy"})
}

// ReadyCheck returns service readiness status
func (h *Handler) ReadyCheck(w http.ResponseWriter, r *http.Request) {
	h.writeSuccess(w, map[string]string{"status": "ready"})
}

// SubmitAttempt handles a single play-result submission
func (h *Handler) SubmitAttempt(w http.ResponseWriter, r *http.Request) {
	var submission domain.AttemptSubmission
	if err := json.NewDecoder(r.Body).Decode(&submission); err != nil {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	result, err := h.service.SubmitAttempt(r.Context(), submission)
	if err != nil {
		h.handleSubmitError(w, err)
		return
	}

	h.writeSuccess(w, result)
}

// SubmitBatch handles one credit's worth of play results
func (h *Handler) SubmitBatch(w http.ResponseWriter, r *http.Request) {
	var batch domain.BatchAttemptSubmission
	if err := json.NewDecoder(r.Body).Decode(&batch); err != nil {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	if len(batch.Attempts) == 0 {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	results, err := h.service.SubmitBatch(r.Context(), batch)
	if err != nil {
		h.logger.Error("failed to submit batch", "error", err)
		h.writeError(w, http.StatusInternalServerError, domain.ErrInternalError)
		return
	}

	h.writeSuccess(w, map[string]interface{}{
		"received": len(batch.Attempts),
		"results":  results,
	})
}

func (h *Handler) handleSubmitError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest) || errors.Is(err, domain.ErrInvalidChart):
		h.writeError(w, http.StatusBadRequest, err)
	case domain.IsNotFoundError(err):
		h.writeError(w, http.StatusNotFound, err)
	default:
		h.logger.Error("failed to submit attempt", "error", err)
		h.writeError(w, http.StatusInternalServerError, domain.ErrInternalError)
	}
}

// SubmitCourseResult handles a completed course run report
func (h *Handler) SubmitCourseResult(w http.ResponseWriter, r *http.Request) {
	playerID := chi.URLParam(r, "playerID")
	courseID, err := strconv.Atoi(chi.URLParam(r, "courseID"))
	if playerID == "" || err != nil {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	var result domain.CourseRunResult
	if err := json.NewDecoder(r.Body).Decode(&result); err != nil {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	progress, err := h.service.SubmitCourseResult(r.Context(), playerID, courseID, result)
	if err != nil {
		if domain.IsNotFoundError(err) {
			h.writeError(w, http.StatusNotFound, err)
			return
		}
		h.logger.Error("failed to submit course result", "error", err)
		h.writeError(w, http.StatusInternalServerError, domain.ErrInternalError)
		return
	}

	h.writeSuccess(w, progress)
}

// MarkCourseStatus folds a client-reported course status bitmask
func (h *Handler) MarkCourseStatus(w http.ResponseWriter, r *http.Request) {
	playerID := chi.URLParam(r, "playerID")
	courseID, err := strconv.Atoi(chi.URLParam(r, "courseID"))
	if playerID == "" || err != nil {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	var body struct {
		Status int `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	progress, err := h.service.MarkCourseStatus(r.Context(), playerID, courseID, body.Status)
	if err != nil {
		if domain.IsNotFoundError(err) {
			h.writeError(w, http.StatusNotFound, err)
			return
		}
		h.logger.Error("failed to mark course status", "error", err)
		h.writeError(w, http.StatusInternalServerError, domain.ErrInternalError)
		return
	}

	h.writeSuccess(w, progress)
}

// GetPlayerScores returns all best records for a player
func (h *Handler) GetPlayerScores(w http.ResponseWriter, r *http.Request) {
	playerID := chi.URLParam(r, "playerID")
	if playerID == "" {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	records, err := h.service.PlayerScores(r.Context(), playerID)
	if err != nil {
		h.logger.Error("failed to get player scores", "error", err)
		h.writeError(w, http.StatusInternalServerError, domain.ErrInternalError)
		return
	}

	h.writeSuccess(w, records)
}

// GetPlayerStats returns a player's aggregate statistics
func (h *Handler) GetPlayerStats(w http.ResponseWriter, r *http.Request) {
	playerID := chi.URLParam(r, "playerID")
	if playerID == "" {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	stats, err := h.service.PlayerStats(r.Context(), playerID)
	if err != nil {
		h.logger.Error("failed to get player stats", "error", err)
		h.writeError(w, http.StatusInternalServerError, domain.ErrInternalError)
		return
	}

	h.writeSuccess(w, stats)
}

// GetPlayerCourses returns a player's course progress
func (h *Handler) GetPlayerCourses(w http.ResponseWriter, r *http.Request) {
	playerID := chi.URLParam(r, "playerID")
	if playerID == "" {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	progress, err := h.service.PlayerCourses(r.Context(), playerID)
	if err != nil {
		h.logger.Error("failed to get player courses", "error", err)
		h.writeError(w, http.StatusInternalServerError, domain.ErrInternalError)
		return
	}

	h.writeSuccess(w, progress)
}

// GetProfile returns a player's profile, falling back through older
// revisions when the requested one has no save
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	playerID := chi.URLParam(r, "playerID")
	if playerID == "" {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	version := domain.CurrentVersion
	if versionStr := r.URL.Query().Get("version"); versionStr != "" {
		v, err := strconv.Atoi(versionStr)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
			return
		}
		version = domain.GameVersion(v)
	}

	profile, err := h.service.Profile(r.Context(), playerID, version)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownVersion) {
			h.writeError(w, http.StatusBadRequest, err)
			return
		}
		if domain.IsNotFoundError(err) {
			h.writeError(w, http.StatusNotFound, err)
			return
		}
		h.logger.Error("failed to get profile", "error", err)
		h.writeError(w, http.StatusInternalServerError, domain.ErrInternalError)
		return
	}

	h.writeSuccess(w, profile)
}

// SaveProfile stores a player's profile counters
func (h *Handler) SaveProfile(w http.ResponseWriter, r *http.Request) {
	playerID := chi.URLParam(r, "playerID")
	if playerID == "" {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	var counters domain.ProfileCounters
	if err := json.NewDecoder(r.Body).Decode(&counters); err != nil {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	profile, err := h.service.SaveProfile(r.Context(), playerID, counters)
	if err != nil {
		h.logger.Error("failed to save profile", "error", err)
		h.writeError(w, http.StatusInternalServerError, domain.ErrInternalError)
		return
	}

	h.writeSuccess(w, profile)
}

// ListCourses returns the course catalog
func (h *Handler) ListCourses(w http.ResponseWriter, r *http.Request) {
	h.writeSuccess(w, h.service.Courses())
}

// GetChallenge returns the current daily challenge schedule
func (h *Handler) GetChallenge(w http.ResponseWriter, r *http.Request) {
	schedule, err := h.service.CurrentChallenge(r.Context(), time.Now())
	if err != nil {
		h.logger.Error("failed to get challenge", "error", err)
		h.writeError(w, http.StatusInternalServerError, domain.ErrInternalError)
		return
	}
	if schedule == nil {
		h.writeError(w, http.StatusNotFound, domain.ErrNoSchedule)
		return
	}

	h.writeSuccess(w, schedule)
}

// GetChartTop returns top N players on a chart
func (h *Handler) GetChartTop(w http.ResponseWriter, r *http.Request) {
	chart, err := chartFromParams(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	limit := 10
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}

	entries, err := h.service.ChartTop(r.Context(), chart, limit)
	if err != nil {
		h.logger.Error("failed to get chart top", "error", err)
		h.writeError(w, http.StatusInternalServerError, domain.ErrInternalError)
		return
	}

	total, err := h.service.ChartCount(r.Context(), chart)
	if err != nil {
		h.logger.Error("failed to get chart count", "error", err)
		h.writeError(w, http.StatusInternalServerError, domain.ErrInternalError)
		return
	}

	h.writeSuccess(w, map[string]interface{}{
		"entries": entries,
		"total":   total,
	})
}

// GetChartRank returns a player's rank on a chart
func (h *Handler) GetChartRank(w http.ResponseWriter, r *http.Request) {
	chart, err := chartFromParams(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	playerID := chi.URLParam(r, "playerID")
	if playerID == "" {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	entry, err := h.service.ChartRank(r.Context(), chart, playerID)
	if err != nil {
		if domain.IsNotFoundError(err) {
			h.writeError(w, http.StatusNotFound, err)
			return
		}
		h.logger.Error("failed to get chart rank", "error", err)
		h.writeError(w, http.StatusInternalServerError, domain.ErrInternalError)
		return
	}

	h.writeSuccess(w, entry)
}
