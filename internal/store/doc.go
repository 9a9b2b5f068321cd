// Package store declares the persistence contract for word statistics and
// the errors every backend reports through it. The postgres and memory
// packages under internal/platform provide the implementations; the service
// layer only ever sees WordStatsStore.
package store
