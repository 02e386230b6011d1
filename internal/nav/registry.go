package nav

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/burrowtv/burrow/internal/activity"
	"github.com/burrowtv/burrow/internal/gate"
	"github.com/burrowtv/burrow/internal/library"
	"github.com/burrowtv/burrow/internal/metrics"
)

// Registry tracks one Controller per browser session. Idle sessions are
// swept so abandoned tablets do not accumulate state or live timers.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Controller

	store    library.Store
	gateCfg  gate.Config
	activity *activity.Log
	ttl      time.Duration
}

func NewRegistry(store library.Store, gateCfg gate.Config, log *activity.Log, ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &Registry{
		sessions: make(map[string]*Controller),
		store:    store,
		gateCfg:  gateCfg,
		activity: log,
		ttl:      ttl,
	}
}

// Get returns the session's controller, creating one on first sight.
func (r *Registry) Get(id string) *Controller {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.sessions[id]; ok {
		return c
	}
	c := NewController(r.store, r.gateCfg, r.activity)
	r.sessions[id] = c
	metrics.SessionsActive.Set(float64(len(r.sessions)))
	return c
}

// StartSweeper expires idle sessions until ctx is done.
func (r *Registry) StartSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.sweep()
			}
		}
	}()
}

func (r *Registry) sweep() {
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, c := range r.sessions {
		if time.Since(c.LastSeen()) > r.ttl {
			c.Close()
			delete(r.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		slog.Info("nav: swept idle sessions", "removed", removed, "active", len(r.sessions))
	}
	metrics.SessionsActive.Set(float64(len(r.sessions)))
}
