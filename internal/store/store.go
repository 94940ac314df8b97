package store

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/samircd4/bcp-events/internal/event"
	"github.com/samircd4/bcp-events/internal/logger"
)

// Store persists the historical event set as an append-only CSV file, one
// row per event, plus a per-run scratch file holding only the current
// delta. The full store only ever grows; the scratch file is recreated
// each run and removed when the run produced no new events.
type Store struct {
	storePath   string
	scratchPath string
}

// New creates a Store over the given file paths. Neither file needs to
// exist yet.
func New(storePath, scratchPath string) *Store {
	return &Store{
		storePath:   storePath,
		scratchPath: scratchPath,
	}
}

// Load reads the full historical event set. A missing store file yields an
// empty set, not an error.
func (s *Store) Load() ([]*event.Event, error) {
	return readCSV(s.storePath)
}

// LoadScratch reads the current run's delta. A missing scratch file yields
// an empty set.
func (s *Store) LoadScratch() ([]*event.Event, error) {
	return readCSV(s.scratchPath)
}

// RemoveScratch deletes the scratch delta file if present. Called at the
// start of every run so a stale delta from a crashed run is never reposted.
func (s *Store) RemoveScratch() error {
	err := os.Remove(s.scratchPath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing scratch file: %w", err)
	}
	if err == nil {
		logger.Info("removed previous scratch file", logger.Fields{"path": s.scratchPath})
	}
	return nil
}

// Reconcile computes which fetched events are not yet in the store,
// preserving fetch order. On a non-empty delta it appends the new events to
// the full store and writes the delta alone to the scratch file. On an
// empty delta it leaves the store untouched and removes any scratch file.
//
// Reconciling the same fetched set twice yields an empty delta the second
// time.
func (s *Store) Reconcile(fetched []*event.Event) ([]*event.Event, error) {
	existing, err := s.Load()
	if err != nil {
		return nil, fmt.Errorf("loading store: %w", err)
	}
	delta := diff(existing, fetched)

	if len(delta) == 0 {
		logger.Info("no new events to add", nil)
		if err := s.RemoveScratch(); err != nil {
			return nil, err
		}
		return nil, nil
	}

	if err := s.appendToStore(delta, len(existing) == 0); err != nil {
		return nil, err
	}
	if err := writeCSV(s.scratchPath, delta); err != nil {
		return nil, fmt.Errorf("writing scratch file: %w", err)
	}

	logger.Info("added new events to store", logger.Fields{
		"new":   len(delta),
		"total": len(existing) + len(delta),
		"path":  s.storePath,
	})
	return delta, nil
}

// Delta computes the would-be new batch without mutating the store or the
// scratch file. Used by dry runs.
func (s *Store) Delta(fetched []*event.Event) ([]*event.Event, error) {
	existing, err := s.Load()
	if err != nil {
		return nil, fmt.Errorf("loading store: %w", err)
	}
	return diff(existing, fetched), nil
}

// diff returns fetched events absent from existing, preserving fetch order
// and collapsing duplicate ids within the fetch itself.
func diff(existing, fetched []*event.Event) []*event.Event {
	seen := make(map[string]bool, len(existing))
	for _, evt := range existing {
		seen[evt.EventID] = true
	}

	var delta []*event.Event
	for _, evt := range fetched {
		if seen[evt.EventID] {
			continue
		}
		seen[evt.EventID] = true
		delta = append(delta, evt)
	}
	return delta
}

// appendToStore appends rows to the full store, writing the header first
// when the store is brand new. Existing rows are never rewritten.
func (s *Store) appendToStore(events []*event.Event, fresh bool) error {
	f, err := os.OpenFile(s.storePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if fresh {
		if err := w.Write(event.Header()); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	for _, evt := range events {
		if err := w.Write(evt.Row()); err != nil {
			return fmt.Errorf("writing row %s: %w", evt.EventID, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing store: %w", err)
	}
	return nil
}

func readCSV(path string) ([]*event.Event, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	events := make([]*event.Event, 0, len(rows)-1)
	for i, row := range rows[1:] { // skip header
		evt, err := event.FromRow(row)
		if err != nil {
			return nil, fmt.Errorf("row %d of %s: %w", i+2, path, err)
		}
		events = append(events, evt)
	}
	return events, nil
}

func writeCSV(path string, events []*event.Event) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(event.Header()); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, evt := range events {
		if err := w.Write(evt.Row()); err != nil {
			return fmt.Errorf("writing row %s: %w", evt.EventID, err)
		}
	}
	w.Flush()
	return w.Error()
}
