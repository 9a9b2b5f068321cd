// Package events decouples drill sessions from whatever consumes their
// outcomes.
//
// The engine reports each answered or skipped card to an OutcomeRecorder. The
// InMemoryEventEmitter is that recorder in the server: it wraps every outcome
// in an OutcomeEvent and hands it to the registered handlers, which in turn
// queue the stats writes. Sessions never learn who listens.
package events
