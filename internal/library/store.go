package library

import "encoding/json"

// Store is a persisted ordered sequence of approved videos. Every mutation
// rewrites the full sequence; a store never applies deltas. Implementations
// must fall back to the compiled-in default sequence when the persisted
// payload is missing or malformed.
type Store interface {
	List() []VideoEntry
	Get(id string) (VideoEntry, bool)
	Add(entry VideoEntry) error
	Remove(id string) error
	Reset() error
	Close() error
}

// Default is the compiled-in library used on first run and whenever the
// persisted payload cannot be parsed.
func Default() []VideoEntry {
	return []VideoEntry{
		{ID: "XqZsoesa55w", Title: "Baby Shark Dance", Emoji: "🦈", Color: "#fde047"},
		{ID: "e_04ZrNroTo", Title: "Wheels on the Bus", Emoji: "🚌", Color: "#86efac"},
		{ID: "yCjJyiqpAuU", Title: "Twinkle Twinkle Little Star", Emoji: "⭐", Color: "#93c5fd"},
		{ID: "_6HzoUcx3eo", Title: "Old MacDonald Had a Farm", Emoji: "🐮", Color: "#fca5a5"},
		{ID: "w0wTNZQfXQk", Title: "Itsy Bitsy Spider", Emoji: "🕷️", Color: "#d8b4fe"},
		{ID: "D1LDPmYoYm4", Title: "Five Little Ducks", Emoji: "🦆", Color: "#fdba74"},
	}
}

// sequence holds the in-memory copy shared by both store implementations.
// All rules that do not depend on the persistence medium live here.
type sequence struct {
	entries []VideoEntry
}

func (s *sequence) list() []VideoEntry {
	out := make([]VideoEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

func (s *sequence) get(id string) (VideoEntry, bool) {
	for _, e := range s.entries {
		if e.ID == id {
			return e, true
		}
	}
	return VideoEntry{}, false
}

func (s *sequence) add(entry VideoEntry) error {
	if err := entry.Validate(); err != nil {
		return err
	}
	if _, ok := s.get(entry.ID); ok {
		return ErrDuplicateID
	}
	s.entries = append(s.entries, entry)
	return nil
}

func (s *sequence) remove(id string) error {
	for i, e := range s.entries {
		if e.ID == id {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return nil
		}
	}
	return ErrNotInLibrary
}

func (s *sequence) reset() {
	s.entries = Default()
}

// decodePayload parses a persisted payload. Any failure, including entries
// that no longer validate, is reported so callers substitute the default.
func decodePayload(payload []byte) ([]VideoEntry, error) {
	var entries []VideoEntry
	if err := json.Unmarshal(payload, &entries); err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if err := e.Validate(); err != nil {
			return nil, err
		}
		if _, dup := seen[e.ID]; dup {
			return nil, ErrDuplicateID
		}
		seen[e.ID] = struct{}{}
	}
	return entries, nil
}

func encodePayload(entries []VideoEntry) ([]byte, error) {
	return json.MarshalIndent(entries, "", "  ")
}
