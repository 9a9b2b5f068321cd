package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/vocab-drill/internal/api/shared"
	"github.com/phrazzld/vocab-drill/internal/domain"
	"github.com/phrazzld/vocab-drill/internal/domain/gamemode"
	"github.com/phrazzld/vocab-drill/internal/vocab"
)

// CatalogHandler serves the read-only game modes and vocabulary topics.
type CatalogHandler struct {
	catalog  *vocab.Catalog
	defaults gamemode.Options
	logger   *slog.Logger
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(catalog *vocab.Catalog, defaults gamemode.Options, logger *slog.Logger) *CatalogHandler {
	if catalog == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("catalog cannot be nil for CatalogHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for CatalogHandler")
	}
	return &CatalogHandler{
		catalog:  catalog,
		defaults: defaults,
		logger:   logger.With(slog.String("component", "catalog_handler")),
	}
}

// ListModes handles GET /modes requests. With ?language= the round layouts
// for that native language are included.
func (h *CatalogHandler) ListModes(w http.ResponseWriter, r *http.Request) {
	available := gamemode.Available()
	resp := ModesResponse{Modes: make([]ModeResponse, 0, len(available))}

	code := r.URL.Query().Get("language")
	var lang domain.SupportedLanguage
	if code != "" {
		var err error
		lang, err = domain.ParseLanguage(code)
		if err != nil {
			HandleAPIError(w, r, err, "")
			return
		}
	}

	for _, info := range available {
		mr := ModeResponse{ID: info.ID, Description: info.Description, RoundCount: info.Rounds}
		if lang != "" {
			mode, err := gamemode.ForID(info.ID, lang, h.defaults)
			if err != nil {
				HandleAPIError(w, r, err, "Failed to build game mode")
				return
			}
			for _, round := range mode.Rounds {
				mr.Rounds = append(mr.Rounds, RoundResponse{
					ID:        round.ID,
					Name:      round.Name,
					Template:  string(round.Layout.TemplateID),
					Primary:   string(round.Layout.DataMap.Primary),
					Secondary: string(round.Layout.DataMap.Secondary),
				})
			}
		}
		resp.Modes = append(resp.Modes, mr)
	}

	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// ListTopics handles GET /topics requests.
func (h *CatalogHandler) ListTopics(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, map[string]interface{}{
		"topics": h.catalog.Topics(),
	})
}
