package activity

import (
	"sync"
	"time"

	"github.com/mssola/useragent"
)

// Kind labels what happened.
type Kind string

const (
	KindGateOpened    Kind = "gate_opened"
	KindGateSuccess   Kind = "gate_success"
	KindGateCancelled Kind = "gate_cancelled"
	KindVideoSelected Kind = "video_selected"
	KindFallback      Kind = "playback_fallback"
	KindLocalFailure  Kind = "playback_local_failure"
	KindLibraryChange Kind = "library_change"
)

// Event is one recorded occurrence, with the device that caused it parsed
// from its User-Agent so a parent can tell the tablet from their own phone.
type Event struct {
	At      time.Time `json:"at"`
	Kind    Kind      `json:"kind"`
	Detail  string    `json:"detail,omitempty"`
	Browser string    `json:"browser,omitempty"`
	Device  string    `json:"device,omitempty"`
}

// Log is a fixed-size in-memory ring of recent events, newest first on read.
// It is a household diagnostic surface, not an audit trail; nothing persists.
type Log struct {
	mu     sync.Mutex
	events []Event
	next   int
	filled bool
}

func NewLog(capacity int) *Log {
	if capacity <= 0 {
		capacity = 256
	}
	return &Log{events: make([]Event, capacity)}
}

func (l *Log) Record(kind Kind, detail, userAgent string) {
	browser, device := parseUserAgent(userAgent)
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events[l.next] = Event{
		At:      time.Now(),
		Kind:    kind,
		Detail:  detail,
		Browser: browser,
		Device:  device,
	}
	l.next++
	if l.next == len(l.events) {
		l.next = 0
		l.filled = true
	}
}

// Events returns recorded events, newest first.
func (l *Log) Events() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()

	size := l.next
	if l.filled {
		size = len(l.events)
	}
	out := make([]Event, 0, size)
	for i := 1; i <= size; i++ {
		idx := l.next - i
		if idx < 0 {
			idx += len(l.events)
		}
		out = append(out, l.events[idx])
	}
	return out
}

func parseUserAgent(raw string) (browser, device string) {
	if raw == "" {
		return "", ""
	}
	ua := useragent.New(raw)
	name, version := ua.Browser()
	browser = name
	if version != "" {
		browser = name + " " + version
	}
	switch {
	case ua.Mobile():
		device = "mobile"
	case ua.Bot():
		device = "bot"
	default:
		device = "desktop"
	}
	return browser, device
}
