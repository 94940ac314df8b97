// Package cli defines the cobra command surface and the orchestrator that
// sequences one run: fetch, reconcile, then post each new event with a
// single re-login retry on auth failure.
package cli
