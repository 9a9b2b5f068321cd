// Package service contains the application use cases that sit between the
// delivery layer (API, background tasks) and the stores.
//
// StatsService is the long-term backend of the drill outcome recorder: it
// folds every answered or skipped card into per-word mastery statistics and
// answers the read queries the stats endpoints expose. It depends only on
// the store.WordStatsStore interface; transactions are used when a *sql.DB
// is supplied.
package service
