// Package bcp implements the Event Fetcher: a client for the Best Coast
// Pairings events API with cursor pagination, a timezone-anchored date
// window, and per-record normalization into canonical Events.
package bcp
