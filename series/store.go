package series

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// Record tracks progress of one serialized content thread. A record is
// created the first time its key is seen and never re-initialized: once set,
// PartsPerSeries stays fixed and NextPart only ever moves forward.
type Record struct {
	Seed           string `json:"seed"`
	Mode           string `json:"mode"`
	NextPart       int    `json:"next_part"`
	PartsPerSeries int    `json:"parts_per_series"`
}

// Exhausted reports whether every part of this series has been produced.
func (r *Record) Exhausted() bool {
	return r.NextPart > r.PartsPerSeries
}

// State is the full persisted mapping of series key to record.
type State struct {
	Series map[string]*Record `json:"series"`
}

// NewState returns an empty state.
func NewState() *State {
	return &State{Series: make(map[string]*Record)}
}

// Key derives the identity of a series from its mode and seed.
func Key(mode, seed string) string {
	return mode + ":" + seed
}

// Ensure inserts a record for (mode, seed) if none exists and reports whether
// it did. An existing record is left untouched, including its PartsPerSeries:
// the ceiling is fixed at creation.
func (st *State) Ensure(seed, mode string, partsPerSeries int) bool {
	key := Key(mode, seed)
	if _, ok := st.Series[key]; ok {
		return false
	}
	st.Series[key] = &Record{
		Seed:           seed,
		Mode:           mode,
		NextPart:       1,
		PartsPerSeries: partsPerSeries,
	}
	return true
}

// Store persists series state as a JSON file. The pipeline is single-writer
// by design; crash safety comes from writing to a temp file and renaming.
type Store struct {
	path string
}

// NewStore creates a store backed by the file at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads the persisted state. A missing or unparsable file yields an
// empty state rather than an error: losing a corrupt file restarts the
// affected series, which is recoverable, while crashing every run is not.
func (s *Store) Load() *State {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return NewState()
	}
	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		log.Printf("[series] state file %s unreadable, starting fresh: %v", s.path, err)
		return NewState()
	}
	if st.Series == nil {
		st.Series = make(map[string]*Record)
	}
	return &st
}

// Save atomically persists the full state, creating parent directories as
// needed. A write failure is fatal for the run: silently losing progress
// would produce duplicate or skipped parts on the next run.
func (s *Store) Save(st *State) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}

// Advance increments NextPart for the given key and persists. An unknown key
// is a silent no-op: callers should never pass one, but a stale key must not
// crash a run.
func (s *Store) Advance(key string) error {
	st := s.Load()
	rec, ok := st.Series[key]
	if !ok {
		log.Printf("[series] advance requested for unknown key %q, ignoring", key)
		return nil
	}
	rec.NextPart++
	return s.Save(st)
}
