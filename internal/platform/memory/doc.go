// Package memory provides an in-process store.WordStatsStore used when no
// database is configured and in tests.
package memory
