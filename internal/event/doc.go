// Package event defines the canonical Event record shared by the fetcher,
// the store, and the posting workflow.
//
// Events are normalized at ingestion time: API timestamps (UTC) are
// converted to the reference timezone for display, and free-text fields are
// built by trimming and joining sub-fields so absent values contribute
// nothing. EventID is stable across runs and is the sole dedup key; two
// events with the same id are the same event regardless of other fields.
package event
