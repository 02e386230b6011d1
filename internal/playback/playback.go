package playback

import (
	"sync"

	"github.com/burrowtv/burrow/internal/library"
	"github.com/burrowtv/burrow/internal/media"
)

// SourceMode says which collaborator is currently asked to play.
type SourceMode string

const (
	SourceRemote SourceMode = "remote"
	SourceLocal  SourceMode = "local"
)

// Session is the ephemeral playback state for one stay on the player screen.
// It starts against the remote source, switches to the local file exactly
// once if the remote source fails, and loops forever on end-of-media. It is
// created on entering the player and discarded on leaving it.
type Session struct {
	mu sync.Mutex

	entry   library.VideoEntry
	source  SourceMode
	loading bool
	errored bool
	loops   int

	lastError string
}

func NewSession(entry library.VideoEntry) *Session {
	return &Session{
		entry:   entry,
		source:  SourceRemote,
		loading: true,
	}
}

func (s *Session) Entry() library.VideoEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entry
}

// RemoteReady: the embed finished buffering; playback starts.
func (s *Session) RemoteReady() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.source != SourceRemote {
		return
	}
	s.loading = false
}

// RemoteError switches to the local fallback. The switch happens at most
// once; an error reported after the session already fell back is absorbed.
// Returns true when this call performed the switch.
func (s *Session) RemoteError(code string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.source != SourceRemote {
		return false
	}
	s.source = SourceLocal
	s.loading = true
	s.errored = false
	s.lastError = code
	return true
}

// LocalLoaded: the fallback file is playable.
func (s *Session) LocalLoaded() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.source != SourceLocal {
		return
	}
	s.loading = false
}

// LocalError is terminal for the session; there is no second fallback. The
// player shows an unavailable state whose only action is returning to the
// grid.
func (s *Session) LocalError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.source != SourceLocal {
		return
	}
	s.loading = false
	s.errored = true
}

// Ended handles end-of-media on either source. The video restarts; a finished
// video never returns the child to the grid where an errant tap could land
// anywhere.
func (s *Session) Ended() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.errored {
		return
	}
	s.loops++
}

// Snapshot is what the frontend needs to drive the actual media elements.
type Snapshot struct {
	Entry    library.VideoEntry `json:"entry"`
	Source   SourceMode         `json:"source"`
	Loading  bool               `json:"loading"`
	Errored  bool               `json:"errored"`
	Loops    int                `json:"loops"`
	EmbedURL string             `json:"embedUrl,omitempty"`
	LocalURL string             `json:"localUrl,omitempty"`
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		Entry:   s.entry,
		Source:  s.source,
		Loading: s.loading,
		Errored: s.errored,
		Loops:   s.loops,
	}
	switch s.source {
	case SourceRemote:
		snap.EmbedURL = EmbedURL(s.entry.ID)
	case SourceLocal:
		if !s.errored {
			snap.LocalURL = LocalURL(s.entry.Title)
		}
	}
	return snap
}

// LocalURL derives the fallback location deterministically from the title via
// the shared sanitizer, under the fixed media base path.
func LocalURL(title string) string {
	return "/media/" + media.Filename(title)
}
