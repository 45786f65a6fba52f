// Package catalog implements the daughter store: the local SQLite mirror of
// the mother catalog plus the persisted user preference documents.
//
// The store is a cache. Rows are upserted on download and never implicitly
// deleted; Unload drops the downloaded payloads for one experience while
// keeping its metadata, and Vacuum reclaims the freed space. A schema version
// row guards against stale files; on mismatch the fix is to delete the
// database and let the next sync rebuild it.
//
// Reads run concurrently under WAL. Writes are serialized through a single
// writer mutex and retried with backoff when SQLite reports a busy database.
package catalog
