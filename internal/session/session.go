package session

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/phrazzld/vocab-drill/internal/domain"
	"github.com/phrazzld/vocab-drill/internal/drill"
)

// DefaultSubscriberBuffer is the channel capacity used by Subscribe when a
// non-positive buffer is requested.
const DefaultSubscriberBuffer = 16

// Session is one learner's drill run.
type Session struct {
	ID        string
	Language  domain.SupportedLanguage
	Topic     string
	CreatedAt time.Time

	mu     sync.Mutex
	engine *drill.Engine

	lastActive atomic.Int64
	now        func() time.Time

	subsMu  sync.Mutex
	subs    map[int]chan drill.Snapshot
	nextSub int
	closed  bool
}

func newSession(id string, lang domain.SupportedLanguage, topic string, now func() time.Time) *Session {
	created := now().UTC()
	s := &Session{
		ID:        id,
		Language:  lang,
		Topic:     topic,
		CreatedAt: created,
		now:       now,
		subs:      make(map[int]chan drill.Snapshot),
	}
	s.touch(created)
	return s
}

// Do runs fn with exclusive access to the engine and returns the snapshot
// taken afterwards. The snapshot is returned even when fn fails.
func (s *Session) Do(fn func(e *drill.Engine) error) (drill.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := fn(s.engine)
	s.touch(s.now())
	return s.engine.Snapshot(), err
}

// Snapshot returns the engine's current read model.
func (s *Session) Snapshot() drill.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Snapshot()
}

// LastActive reports when the session was last driven through Do.
func (s *Session) LastActive() time.Time {
	return time.Unix(0, s.lastActive.Load()).UTC()
}

func (s *Session) touch(now time.Time) {
	s.lastActive.Store(now.UnixNano())
}

// Subscribe returns a channel receiving a snapshot after every engine state
// change. The channel is closed when the session ends or cancel is called.
func (s *Session) Subscribe(buffer int) (<-chan drill.Snapshot, func()) {
	if buffer <= 0 {
		buffer = DefaultSubscriberBuffer
	}
	ch := make(chan drill.Snapshot, buffer)

	s.subsMu.Lock()
	defer s.subsMu.Unlock()

	if s.closed {
		close(ch)
		return ch, func() {}
	}

	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subsMu.Lock()
			defer s.subsMu.Unlock()
			if sub, ok := s.subs[id]; ok {
				delete(s.subs, id)
				close(sub)
			}
		})
	}
}

// Subscribers reports the number of open subscriptions.
func (s *Session) Subscribers() int {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	return len(s.subs)
}

// broadcast is the engine observer. It never blocks.
func (s *Session) broadcast(snap drill.Snapshot) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()

	for _, ch := range s.subs {
		select {
		case ch <- snap:
		default:
		}
	}
}

func (s *Session) close() {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
}
