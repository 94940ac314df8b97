// Package store implements the dedup and persistence layer: an append-only
// tabular store of every event ever seen, keyed by event id, and a per-run
// scratch file holding only the latest delta for the posting stage.
package store
