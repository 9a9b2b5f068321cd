// Package testdb provides helpers for tests that run against a real
// PostgreSQL database.
//
// Tests call GetTestDBWithT to obtain a migrated connection and WithTx to run
// in a transaction that is always rolled back, so they can run in parallel
// without cleanup. When no database URL is configured the tests are skipped.
//
//	func TestUpsert(t *testing.T) {
//	    t.Parallel()
//	    db := testdb.GetTestDBWithT(t)
//	    testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
//	        s := postgres.NewPostgresWordStatsStore(tx, logger)
//	        ...
//	    })
//	}
package testdb
