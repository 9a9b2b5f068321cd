package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/vocab-drill/internal/domain"
	"github.com/phrazzld/vocab-drill/internal/domain/gamemode"
	"github.com/phrazzld/vocab-drill/internal/drill"
	"github.com/phrazzld/vocab-drill/internal/events"
	"github.com/phrazzld/vocab-drill/internal/platform/logger"
)

var (
	// ErrSessionNotFound is returned when no live session has the given id.
	ErrSessionNotFound = errors.New("session not found")

	// ErrTooManySessions is returned when the registry is at capacity.
	ErrTooManySessions = errors.New("too many active sessions")

	// ErrInvalidParams is returned when a session cannot be built from the
	// supplied deck and mode.
	ErrInvalidParams = errors.New("invalid session parameters")
)

// Config bounds the registry.
type Config struct {
	// MaxActive caps live sessions; zero means unlimited.
	MaxActive int
	// IdleTimeout is how long a session may go without activity before
	// Sweep removes it; zero disables expiry.
	IdleTimeout time.Duration
}

// CreateParams describes a new session.
type CreateParams struct {
	Language domain.SupportedLanguage
	Topic    string
	Deck     []domain.Flashcard
	Mode     *gamemode.GameMode
}

// Registry holds live sessions by id.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	cfg      Config
	recorder drill.OutcomeRecorder
	logger   *slog.Logger
	now      func() time.Time
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithClock replaces the clock used for creation and idle checks.
func WithClock(now func() time.Time) RegistryOption {
	return func(r *Registry) { r.now = now }
}

// NewRegistry creates an empty registry. Every engine it starts reports
// outcomes to recorder; a nil recorder discards them.
func NewRegistry(cfg Config, recorder drill.OutcomeRecorder, logger *slog.Logger, opts ...RegistryOption) *Registry {
	if recorder == nil {
		recorder = drill.NopRecorder{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	r := &Registry{
		sessions: make(map[string]*Session),
		cfg:      cfg,
		recorder: recorder,
		logger:   logger.With(slog.String("component", "session_registry")),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Create validates the deck against the mode, starts a new engine and
// registers it.
func (r *Registry) Create(ctx context.Context, params CreateParams) (*Session, error) {
	if params.Mode == nil {
		return nil, fmt.Errorf("%w: mode is required", ErrInvalidParams)
	}
	if err := params.Mode.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}
	if err := domain.ValidateDeck(params.Deck, params.Mode.Fields()...); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}

	id := uuid.NewString()
	sessLogger := r.logger.With(slog.String("session_id", id))

	// Recorder calls outlive the request that created the session.
	engineCtx := logger.WithLogger(events.WithSessionID(context.Background(), id), sessLogger)

	r.mu.Lock()
	if r.cfg.MaxActive > 0 && len(r.sessions) >= r.cfg.MaxActive {
		r.mu.Unlock()
		logger.FromContextOrDefault(ctx, r.logger).Warn("session capacity reached",
			slog.Int("max_active", r.cfg.MaxActive))
		return nil, ErrTooManySessions
	}

	s := newSession(id, params.Language, params.Topic, r.now)
	s.engine = drill.NewEngine(
		drill.WithRecorder(r.recorder),
		drill.WithLogger(sessLogger),
		drill.WithContext(engineCtx),
	)
	s.engine.Subscribe(s.broadcast)
	s.engine.StartGame(params.Deck, params.Mode)
	r.sessions[id] = s
	active := len(r.sessions)
	r.mu.Unlock()

	logger.FromContextOrDefault(ctx, r.logger).Info("session created",
		slog.String("session_id", id),
		slog.String("mode", params.Mode.ID),
		slog.String("language", string(params.Language)),
		slog.Int("cards", len(params.Deck)),
		slog.Int("active", active))
	return s, nil
}

// Get returns the live session with id.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Delete ends a session and closes its subscriptions.
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	s, ok := r.sessions[id]
	if ok {
		delete(r.sessions, id)
	}
	r.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	s.close()
	r.logger.Info("session deleted", slog.String("session_id", id))
	return nil
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Sweep removes sessions idle for longer than the configured timeout and
// returns how many were removed.
func (r *Registry) Sweep() int {
	if r.cfg.IdleTimeout <= 0 {
		return 0
	}
	cutoff := r.now().Add(-r.cfg.IdleTimeout)

	r.mu.Lock()
	var expired []*Session
	for id, s := range r.sessions {
		if s.LastActive().Before(cutoff) {
			expired = append(expired, s)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, s := range expired {
		s.close()
	}
	if len(expired) > 0 {
		r.logger.Info("expired idle sessions", slog.Int("count", len(expired)))
	}
	return len(expired)
}

// RunSweeper calls Sweep every interval until ctx is done.
func (r *Registry) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 || r.cfg.IdleTimeout <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	r.logger.Debug("session sweeper started", slog.Duration("interval", interval))
	for {
		select {
		case <-ctx.Done():
			r.logger.Debug("session sweeper stopped")
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

// Close ends every session.
func (r *Registry) Close() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()

	for _, s := range sessions {
		s.close()
	}
}
