// Package poster drives the target site's add-event form for each new
// event: image upload, field filling, description fetch and paste, submit.
// A login redirect detected right after the opening navigation surfaces as
// ErrLoginRequired so the orchestrator can re-authenticate and retry once.
package poster
