// Package session keeps the live drill engines of a running server.
//
// Each Session owns one drill.Engine. Engine calls are serialized through
// Session.Do, so the engine itself never sees concurrent access. Snapshots
// produced by the engine's observer hook are fanned out to subscribers over
// buffered channels; a subscriber that falls behind loses frames rather than
// blocking the session.
package session
