package nav

import (
	"errors"
	"sync"
	"time"

	"github.com/burrowtv/burrow/internal/activity"
	"github.com/burrowtv/burrow/internal/gate"
	"github.com/burrowtv/burrow/internal/library"
	"github.com/burrowtv/burrow/internal/metrics"
	"github.com/burrowtv/burrow/internal/playback"
)

type View string

const (
	ViewGrid     View = "grid"
	ViewPlayer   View = "player"
	ViewSettings View = "settings"
)

var (
	ErrNotInGrid   = errors.New("video selection only works from the grid")
	ErrNoGate      = errors.New("gate is not open")
	ErrNoPlayback  = errors.New("no playback session")
	ErrNotSettings = errors.New("settings view is not open")
)

// Controller owns the view state for one browser session: which screen is
// showing, what is selected, whether the gate overlay is up. All transitions
// go through it; the gate verifier and the playback session never outlive the
// state that created them.
type Controller struct {
	mu sync.Mutex

	store    library.Store
	gateCfg  gate.Config
	activity *activity.Log

	view     View
	selected *library.VideoEntry
	gate     *gate.Verifier
	playback *playback.Session

	// Set when the gate verifies; the HTTP layer consumes it to mint the
	// settings cookie on the next response to this session.
	pendingGrant bool

	lastSeen time.Time
}

func NewController(store library.Store, gateCfg gate.Config, log *activity.Log) *Controller {
	return &Controller{
		store:    store,
		gateCfg:  gateCfg,
		activity: log,
		view:     ViewGrid,
		lastSeen: time.Now(),
	}
}

// SelectVideo moves grid→player for an entry currently in the library and
// opens a fresh playback session.
func (c *Controller) SelectVideo(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touchLocked()

	if c.view != ViewGrid {
		return ErrNotInGrid
	}
	entry, ok := c.store.Get(id)
	if !ok {
		return library.ErrNotInLibrary
	}

	c.selected = &entry
	c.view = ViewPlayer
	c.playback = playback.NewSession(entry)
	return nil
}

// Back handles a navigate-back gesture. In the player it returns to the
// grid and discards the playback session; anywhere else it is absorbed and
// the current state is simply reasserted. Returns whether a transition
// happened.
func (c *Controller) Back() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touchLocked()

	if c.view != ViewPlayer {
		return false
	}
	c.view = ViewGrid
	c.selected = nil
	c.playback = nil
	return true
}

// RequestSettings raises the gate overlay without changing the view. A
// fresh challenge is generated on every activation.
func (c *Controller) RequestSettings() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touchLocked()

	if c.gate != nil || c.view == ViewSettings {
		return
	}
	var v *gate.Verifier
	v = gate.New(c.gateCfg,
		func() { c.gateSucceededAsync(v, "hold") },
		func() { c.gateCancelledAsync(v) },
	)
	c.gate = v
}

// GateAnswer submits a Path A answer. A correct answer closes the overlay
// and opens settings.
func (c *Controller) GateAnswer(raw string) (gate.Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touchLocked()

	if c.gate == nil {
		return gate.ResultNone, ErrNoGate
	}
	result := c.gate.SubmitAnswer(raw)
	if result == gate.ResultCorrect {
		c.applyGateSuccessLocked("challenge")
	}
	return result, nil
}

func (c *Controller) GateHoldStart() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touchLocked()

	if c.gate == nil {
		return ErrNoGate
	}
	c.gate.StartHold()
	return nil
}

func (c *Controller) GateHoldRelease() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touchLocked()

	if c.gate == nil {
		return ErrNoGate
	}
	if c.gate.ReleaseHold() == gate.ResultCorrect {
		c.applyGateSuccessLocked("hold")
	}
	return nil
}

// GateCancel dismisses the overlay; the view never changes.
func (c *Controller) GateCancel() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touchLocked()

	if c.gate == nil {
		return ErrNoGate
	}
	c.gate.Close()
	c.gate = nil
	metrics.GateOutcomes.WithLabelValues("challenge", "cancelled").Inc()
	return nil
}

// applyGateSuccessLocked closes the overlay, tears the verifier down (both
// timers included) and moves the current view to settings.
func (c *Controller) applyGateSuccessLocked(path string) {
	if c.gate == nil {
		return
	}
	c.gate.Close()
	c.gate = nil
	c.view = ViewSettings
	c.selected = nil
	c.playback = nil
	c.pendingGrant = true
	metrics.GateOutcomes.WithLabelValues(path, "verified").Inc()
}

// gateSucceededAsync fires from the hold ticker when the press completes
// without a release request in flight.
func (c *Controller) gateSucceededAsync(v *gate.Verifier, path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gate != v {
		// A stale timer from an overlay that already closed by other means.
		return
	}
	c.applyGateSuccessLocked(path)
	if c.activity != nil {
		c.activity.Record(activity.KindGateSuccess, path, "")
	}
}

// gateCancelledAsync fires from the post-3rd-wrong-answer delay.
func (c *Controller) gateCancelledAsync(v *gate.Verifier) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gate != v {
		return
	}
	c.gate = nil
	metrics.GateOutcomes.WithLabelValues("challenge", "locked_out").Inc()
	if c.activity != nil {
		c.activity.Record(activity.KindGateCancelled, "lockout", "")
	}
}

// CloseSettings moves settings→grid.
func (c *Controller) CloseSettings() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touchLocked()

	if c.view != ViewSettings {
		return ErrNotSettings
	}
	c.view = ViewGrid
	return nil
}

// PlaybackEvent feeds a media callback from the frontend into the session's
// state machine.
type PlaybackEvent string

const (
	EventRemoteReady PlaybackEvent = "ready"
	EventRemoteError PlaybackEvent = "error"
	EventLocalLoaded PlaybackEvent = "local-loaded"
	EventLocalError  PlaybackEvent = "local-error"
	EventEnded       PlaybackEvent = "ended"
)

var ErrUnknownEvent = errors.New("unknown playback event")

func (c *Controller) HandlePlaybackEvent(ev PlaybackEvent, code string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touchLocked()

	if c.view != ViewPlayer || c.playback == nil {
		return ErrNoPlayback
	}

	switch ev {
	case EventRemoteReady:
		c.playback.RemoteReady()
	case EventRemoteError:
		if c.playback.RemoteError(code) {
			metrics.PlaybackFallbacks.Inc()
			if c.activity != nil {
				c.activity.Record(activity.KindFallback, c.playback.Entry().Title, "")
			}
		}
	case EventLocalLoaded:
		c.playback.LocalLoaded()
	case EventLocalError:
		c.playback.LocalError()
		metrics.PlaybackLocalFailures.Inc()
		if c.activity != nil {
			c.activity.Record(activity.KindLocalFailure, c.playback.Entry().Title, "")
		}
	case EventEnded:
		c.playback.Ended()
	default:
		return ErrUnknownEvent
	}
	return nil
}

// ConsumeSettingsGrant reports whether the gate verified since the last call
// and resets the flag. The HTTP layer uses it to attach the settings cookie
// exactly once.
func (c *Controller) ConsumeSettingsGrant() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	granted := c.pendingGrant
	c.pendingGrant = false
	return granted
}

// GateState is the overlay as the frontend renders it.
type GateState struct {
	Open         bool    `json:"open"`
	Prompt       string  `json:"prompt,omitempty"`
	Attempts     int     `json:"attempts,omitempty"`
	HoldProgress float64 `json:"holdProgress,omitempty"`
}

// State is the full session snapshot served to the frontend.
type State struct {
	View     View                `json:"view"`
	Selected *library.VideoEntry `json:"selected,omitempty"`
	Library  []library.VideoEntry `json:"library"`
	Gate     GateState           `json:"gate"`
	Playback *playback.Snapshot  `json:"playback,omitempty"`
}

func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touchLocked()

	st := State{
		View:    c.view,
		Library: c.store.List(),
	}
	if c.selected != nil {
		entry := *c.selected
		st.Selected = &entry
	}
	if c.gate != nil {
		st.Gate = GateState{
			Open:         true,
			Prompt:       c.gate.Challenge().Prompt(),
			Attempts:     c.gate.Attempts(),
			HoldProgress: c.gate.HoldProgress(),
		}
	}
	if c.playback != nil {
		snap := c.playback.Snapshot()
		st.Playback = &snap
	}
	return st
}

// Close tears down timers and playback; used when the registry expires the
// session.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gate != nil {
		c.gate.Close()
		c.gate = nil
	}
	c.playback = nil
}

func (c *Controller) touchLocked() {
	c.lastSeen = time.Now()
}

// LastSeen is read by the registry sweeper.
func (c *Controller) LastSeen() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastSeen
}
