// Package history persists a ledger of download runs in SQLite.
//
// Every run the downloader completes, successful or not, is recorded with its
// targets, the policy modes it resolved, the format selectors it fetched, and
// the status block it reported. The store uses the pure-Go modernc.org/sqlite
// driver in WAL mode and retries briefly when the database is busy so that
// concurrent invocations sharing one ledger do not fail spuriously.
package history
