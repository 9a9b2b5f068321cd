// Package drill implements the round engine that runs one vocabulary drill
// session: it walks a working deck card by card, collects misses, replays them
// in the following rounds and ends in a summary.
//
// The engine is synchronous and holds no locks. Every operation runs to
// completion before returning and no operation returns an error: calls that
// make no sense in the current state are logged and ignored. Callers that
// share an Engine between goroutines must serialize access themselves (see
// the session package).
//
// Per-card results leave the engine through an OutcomeRecorder. Recording is
// fire-and-forget: recorder errors and panics are logged and never affect the
// session.
package drill
