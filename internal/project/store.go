package project

import (
	"sync"

	"github.com/ivlev/followcam/internal/telemetry"
)

// Store is the recording lookup collaborator: it owns normalized telemetry
// per recording and the revision tokens that key the cluster cache. Safe for
// concurrent readers.
type Store struct {
	mu         sync.RWMutex
	recordings map[string]*telemetry.Recording
	revision   uint64
}

// NewStore builds a store from a loaded document, normalizing and
// time-sorting every recording's telemetry on the way in.
func NewStore(doc *Document) *Store {
	s := &Store{recordings: make(map[string]*telemetry.Recording, len(doc.Recordings))}
	for _, r := range doc.Recordings {
		s.revision++
		s.recordings[r.ID] = &telemetry.Recording{
			ID:       r.ID,
			Width:    r.Width,
			Height:   r.Height,
			Cursor:   telemetry.Normalize(r.Cursor),
			Clicks:   telemetry.NormalizeClicks(r.Clicks),
			Revision: s.revision,
		}
	}
	return s
}

// Recording returns the recording with the given ID, or nil.
func (s *Store) Recording(id string) *telemetry.Recording {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.recordings[id]
}

// Replace swaps in new telemetry for a recording under a fresh revision, so
// stale cached clusters can never be returned for it.
func (s *Store) Replace(id string, width, height int, cursor []telemetry.CursorSample, clicks []telemetry.ClickSample) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revision++
	s.recordings[id] = &telemetry.Recording{
		ID:       id,
		Width:    width,
		Height:   height,
		Cursor:   telemetry.Normalize(cursor),
		Clicks:   telemetry.NormalizeClicks(clicks),
		Revision: s.revision,
	}
}

// Len reports how many recordings the store holds.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.recordings)
}
