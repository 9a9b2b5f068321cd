// Package task runs background work off the request path. Drill sessions
// report outcomes synchronously; the OutcomeEventHandler turns each one into a
// RecordOutcomeTask on a buffered TaskQueue, and a WorkerPool writes them to
// the stats store so a slow database never stalls a learner.
package task
