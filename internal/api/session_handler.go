package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/vocab-drill/internal/answer"
	"github.com/phrazzld/vocab-drill/internal/api/shared"
	"github.com/phrazzld/vocab-drill/internal/domain"
	"github.com/phrazzld/vocab-drill/internal/domain/gamemode"
	"github.com/phrazzld/vocab-drill/internal/drill"
	"github.com/phrazzld/vocab-drill/internal/platform/logger"
	"github.com/phrazzld/vocab-drill/internal/session"
	"github.com/phrazzld/vocab-drill/internal/vocab"
)

// SessionHandler handles drill session HTTP requests
type SessionHandler struct {
	registry *session.Registry
	catalog  *vocab.Catalog
	defaults gamemode.Options
	logger   *slog.Logger
}

// NewSessionHandler creates a new SessionHandler. defaults supplies the
// failure policy used when a request does not override it.
func NewSessionHandler(
	registry *session.Registry,
	catalog *vocab.Catalog,
	defaults gamemode.Options,
	logger *slog.Logger,
) *SessionHandler {
	if registry == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("registry cannot be nil for SessionHandler")
	}
	if catalog == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("catalog cannot be nil for SessionHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for SessionHandler")
	}

	return &SessionHandler{
		registry: registry,
		catalog:  catalog,
		defaults: defaults,
		logger:   logger.With(slog.String("component", "session_handler")),
	}
}

// CreateSession handles POST /sessions requests.
// It deals a deck (from a topic or the supplied cards), builds the mode and
// starts a drill.
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req CreateSessionRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		HandleAPIError(w, r, fmt.Errorf("%w: %w", ErrInvalidRequest, err), "")
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		HandleAPIError(w, r, fmt.Errorf("%w: %w", ErrInvalidRequest, err), "")
		return
	}

	lang, err := domain.ParseLanguage(req.Language)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	deck, err := h.buildDeck(&req, lang)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to build deck")
		return
	}

	modeID := req.Mode
	if modeID == "" {
		modeID = gamemode.ModeStandard
	}
	mode, err := gamemode.ForID(modeID, lang, h.modeOptions(&req))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to build game mode")
		return
	}

	sess, err := h.registry.Create(r.Context(), session.CreateParams{
		Language: lang,
		Topic:    req.Topic,
		Deck:     deck,
		Mode:     mode,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create session")
		return
	}

	log.Debug("session started",
		slog.String("session_id", sess.ID),
		slog.String("topic", req.Topic),
		slog.Int("cards", len(deck)))
	shared.RespondWithJSON(w, r, http.StatusCreated, sessionToResponse(sess, sess.Snapshot()))
}

func (h *SessionHandler) buildDeck(req *CreateSessionRequest, lang domain.SupportedLanguage) ([]domain.Flashcard, error) {
	if len(req.Cards) == 0 {
		if req.Topic == "" {
			return nil, fmt.Errorf("%w: topic or cards required", ErrInvalidRequest)
		}
		return h.catalog.Deck(req.Topic, lang, vocab.DeckOptions{
			Count:         req.Count,
			MaxDifficulty: req.MaxDifficulty,
			FreeOnly:      req.FreeOnly,
			Seed:          req.Seed,
		})
	}

	deck := make([]domain.Flashcard, 0, len(req.Cards))
	for _, in := range req.Cards {
		translations := make(map[domain.LanguageField]string, 2)
		if in.Polish != "" {
			translations[domain.FieldPolish] = in.Polish
		}
		if in.Spanish != "" {
			translations[domain.FieldSpanish] = in.Spanish
		}
		card, err := vocab.NewCard(in.English, in.Category, translations)
		if err != nil {
			return nil, err
		}
		deck = append(deck, *card)
	}
	return deck, nil
}

func (h *SessionHandler) modeOptions(req *CreateSessionRequest) gamemode.Options {
	opts := h.defaults
	if req.Strategy != "" {
		opts.Strategy = gamemode.FailureStrategy(req.Strategy)
		opts.Offset = 0
	}
	if req.Offset > 0 {
		opts.Offset = req.Offset
	}
	if req.RequiredSuccesses > 0 {
		opts.RequiredSuccesses = req.RequiredSuccesses
	}
	return opts
}

// GetSession handles GET /sessions/{id} requests.
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.lookup(w, r)
	if !ok {
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, sessionToResponse(sess, sess.Snapshot()))
}

// DeleteSession handles DELETE /sessions/{id} requests.
func (h *SessionHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.registry.Delete(id); err != nil {
		HandleAPIError(w, r, err, "Failed to delete session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SubmitAnswer handles POST /sessions/{id}/answer requests.
// Typed answers are checked against the current prompt; otherwise the
// client's verdict is taken as is.
func (h *SessionHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	sess, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var req AnswerRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		HandleAPIError(w, r, fmt.Errorf("%w: %w", ErrInvalidRequest, err), "")
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		HandleAPIError(w, r, fmt.Errorf("%w: %w", ErrInvalidRequest, err), "")
		return
	}
	if req.Correct == nil && req.Typed == nil {
		HandleAPIError(w, r, fmt.Errorf("%w: correct or typed required", ErrInvalidRequest), "")
		return
	}

	var correct bool
	snap, err := sess.Do(func(e *drill.Engine) error {
		if e.Phase() != drill.PhasePlaying {
			return ErrNotPlaying
		}
		if req.Typed != nil {
			prompt, ok := e.CurrentPrompt()
			if !ok {
				return ErrNotPlaying
			}
			correct = answer.Check(*req.Typed, prompt.Expected)
		} else {
			correct = *req.Correct
		}
		e.HandleAnswer(correct)
		return nil
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to submit answer")
		return
	}

	log.Debug("answer applied",
		slog.String("session_id", sess.ID),
		slog.Bool("correct", correct),
		slog.String("phase", string(snap.Phase)))
	shared.RespondWithJSON(w, r, http.StatusOK, AnswerResponse{
		Correct: correct,
		Session: sessionToResponse(sess, snap),
	})
}

// SkipCard handles POST /sessions/{id}/skip requests.
func (h *SessionHandler) SkipCard(w http.ResponseWriter, r *http.Request) {
	h.playingAction(w, r, "Failed to skip card", func(e *drill.Engine) {
		e.SkipCurrentCard()
	})
}

// SetIntroShown handles PUT /sessions/{id}/intro requests.
func (h *SessionHandler) SetIntroShown(w http.ResponseWriter, r *http.Request) {
	var req IntroRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		HandleAPIError(w, r, fmt.Errorf("%w: %w", ErrInvalidRequest, err), "")
		return
	}
	h.playingAction(w, r, "Failed to update round intro", func(e *drill.Engine) {
		e.SetRoundIntroShown(req.Shown)
	})
}

// ResetSession handles POST /sessions/{id}/reset requests. The session stays
// registered in the MENU phase.
func (h *SessionHandler) ResetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.lookup(w, r)
	if !ok {
		return
	}
	snap, _ := sess.Do(func(e *drill.Engine) error {
		e.Reset()
		return nil
	})
	shared.RespondWithJSON(w, r, http.StatusOK, sessionToResponse(sess, snap))
}

func (h *SessionHandler) playingAction(
	w http.ResponseWriter,
	r *http.Request,
	fallback string,
	fn func(e *drill.Engine),
) {
	sess, ok := h.lookup(w, r)
	if !ok {
		return
	}
	snap, err := sess.Do(func(e *drill.Engine) error {
		if e.Phase() != drill.PhasePlaying {
			return ErrNotPlaying
		}
		fn(e)
		return nil
	})
	if err != nil {
		HandleAPIError(w, r, err, fallback)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, sessionToResponse(sess, snap))
}

func (h *SessionHandler) lookup(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	id := chi.URLParam(r, "id")
	if id == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Session ID is required")
		return nil, false
	}
	sess, err := h.registry.Get(id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load session")
		return nil, false
	}
	return sess, true
}

func sessionToResponse(sess *session.Session, snap drill.Snapshot) SessionResponse {
	return SessionResponse{
		ID:        sess.ID,
		Language:  string(sess.Language),
		Topic:     sess.Topic,
		CreatedAt: sess.CreatedAt,
		State:     snap,
	}
}
