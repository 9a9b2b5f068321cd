package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	apiMiddleware "github.com/phrazzld/vocab-drill/internal/api/middleware"
	"github.com/phrazzld/vocab-drill/internal/api/shared"
	"github.com/phrazzld/vocab-drill/internal/domain/gamemode"
	"github.com/phrazzld/vocab-drill/internal/service"
	"github.com/phrazzld/vocab-drill/internal/session"
	"github.com/phrazzld/vocab-drill/internal/task"
	"github.com/phrazzld/vocab-drill/internal/vocab"
	"github.com/rs/cors"
)

// RouterDeps carries everything the HTTP surface needs.
type RouterDeps struct {
	Registry     *session.Registry
	Catalog      *vocab.Catalog
	StatsService service.StatsService
	ModeDefaults gamemode.Options
	// AllowedOrigins applies to both CORS and websocket upgrades.
	AllowedOrigins []string
	// StreamBuffer is the per-watcher snapshot buffer; zero uses the
	// session default.
	StreamBuffer int
	// OutcomeQueue, when set, is reported by /health.
	OutcomeQueue interface{ Stats() task.QueueStats }
	Logger       *slog.Logger
}

// NewRouter builds the application router with all routes and middleware.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.NewTraceMiddleware(deps.Logger))
	r.Use(newCORS(deps.AllowedOrigins).Handler)

	sessionHandler := NewSessionHandler(deps.Registry, deps.Catalog, deps.ModeDefaults, deps.Logger)
	catalogHandler := NewCatalogHandler(deps.Catalog, deps.ModeDefaults, deps.Logger)
	statsHandler := NewStatsHandler(deps.StatsService, deps.Logger)
	streamHandler := NewStreamHandler(sessionHandler, deps.AllowedOrigins, deps.StreamBuffer, deps.Logger)

	r.Route("/api", func(r chi.Router) {
		r.Get("/modes", catalogHandler.ListModes)
		r.Get("/topics", catalogHandler.ListTopics)

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", sessionHandler.CreateSession)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", sessionHandler.GetSession)
				r.Delete("/", sessionHandler.DeleteSession)
				r.Post("/answer", sessionHandler.SubmitAnswer)
				r.Post("/skip", sessionHandler.SkipCard)
				r.Put("/intro", sessionHandler.SetIntroShown)
				r.Post("/reset", sessionHandler.ResetSession)
				r.Get("/stream", streamHandler.Stream)
			})
		})

		r.Route("/stats", func(r chi.Router) {
			r.Get("/", statsHandler.ListStats)
			r.Delete("/", statsHandler.ClearStats)
			r.Get("/summary", statsHandler.GetSummary)
			r.Get("/practice", statsHandler.NeedingPractice)
			r.Get("/word", statsHandler.GetWord)
			r.Get("/categories/{category}", statsHandler.ByCategory)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		body := map[string]interface{}{
			"status":          "ok",
			"active_sessions": deps.Registry.Len(),
		}
		if deps.OutcomeQueue != nil {
			body["outcome_queue"] = deps.OutcomeQueue.Stats()
		}
		shared.RespondWithJSON(w, r, http.StatusOK, body)
	})

	return r
}

func newCORS(allowed []string) *cors.Cors {
	if len(allowed) == 0 {
		allowed = []string{"*"}
	}
	return cors.New(cors.Options{
		AllowedOrigins: allowed,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{"Content-Type", "Accept", "Origin", shared.TraceIDHeader},
		ExposedHeaders: []string{shared.TraceIDHeader},
		MaxAge:         86400,
	})
}
