package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/vocab-drill/internal/api/shared"
	"github.com/phrazzld/vocab-drill/internal/domain"
	"github.com/phrazzld/vocab-drill/internal/platform/logger"
	"github.com/phrazzld/vocab-drill/internal/service"
)

// defaultPracticeLimit caps /stats/practice when no limit is given.
const defaultPracticeLimit = 20

// StatsHandler handles word statistics HTTP requests
type StatsHandler struct {
	statsService service.StatsService
	logger       *slog.Logger
}

// NewStatsHandler creates a new StatsHandler
func NewStatsHandler(statsService service.StatsService, logger *slog.Logger) *StatsHandler {
	if statsService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("statsService cannot be nil for StatsHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for StatsHandler")
	}
	return &StatsHandler{
		statsService: statsService,
		logger:       logger.With(slog.String("component", "stats_handler")),
	}
}

// ListStats handles GET /stats requests.
func (h *StatsHandler) ListStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.statsService.ListStats(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list word statistics")
		return
	}
	respondWithStats(w, r, stats)
}

// GetSummary handles GET /stats/summary requests.
func (h *StatsHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.statsService.MasteryStats(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to summarise word statistics")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, summary)
}

// NeedingPractice handles GET /stats/practice requests.
func (h *StatsHandler) NeedingPractice(w http.ResponseWriter, r *http.Request) {
	limit := defaultPracticeLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}

	stats, err := h.statsService.WordsNeedingPractice(r.Context(), limit)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list words needing practice")
		return
	}
	respondWithStats(w, r, stats)
}

// ByCategory handles GET /stats/categories/{category} requests.
func (h *StatsHandler) ByCategory(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	stats, err := h.statsService.StatsByCategory(r.Context(), category)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list word statistics")
		return
	}
	respondWithStats(w, r, stats)
}

// GetWord handles GET /stats/word?primary=&translation= requests.
func (h *StatsHandler) GetWord(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	primary, translation := q.Get("primary"), q.Get("translation")
	if primary == "" || translation == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "primary and translation are required")
		return
	}

	stats, err := h.statsService.GetStats(r.Context(), primary, translation)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get word statistics")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, stats)
}

// ClearStats handles DELETE /stats requests.
func (h *StatsHandler) ClearStats(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	removed, err := h.statsService.ClearAll(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to clear word statistics")
		return
	}
	log.Info("word statistics cleared", slog.Int64("removed", removed))
	shared.RespondWithJSON(w, r, http.StatusOK, ClearStatsResponse{Removed: removed})
}

func respondWithStats(w http.ResponseWriter, r *http.Request, stats []*domain.WordStats) {
	if stats == nil {
		stats = []*domain.WordStats{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, map[string]interface{}{
		"words": stats,
	})
}
