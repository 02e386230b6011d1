package gate

import (
	"strconv"
	"strings"
	"sync"
	"time"
)

// Verifier distinguishes an adult from a child before the settings surface
// opens. Two independent proofs are always available at once: answering an
// arithmetic challenge, or holding a control down for the full hold duration.
// Either success supersedes the other. A verifier is created per activation
// and carries no state into the next one.
type State string

const (
	StateAwaiting  State = "awaiting"
	StateVerified  State = "verified"
	StateCancelled State = "cancelled"
)

type Result string

const (
	ResultNone      Result = "none"
	ResultCorrect   Result = "correct"
	ResultWrong     Result = "wrong"
	ResultLockedOut Result = "locked_out"
)

type Config struct {
	HoldDuration time.Duration // full hold required for Path B
	HoldTick     time.Duration // completion poll granularity
	LockoutDelay time.Duration // pause before the forced cancel fires
	MaxAttempts  int           // wrong answers before lockout
}

func (c Config) withDefaults() Config {
	if c.HoldDuration <= 0 {
		c.HoldDuration = 3000 * time.Millisecond
	}
	if c.HoldTick <= 0 {
		c.HoldTick = 50 * time.Millisecond
	}
	if c.LockoutDelay <= 0 {
		c.LockoutDelay = 1500 * time.Millisecond
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	return c
}

type Verifier struct {
	mu        sync.Mutex
	cfg       Config
	challenge Challenge
	state     State
	attempts  int

	holding   bool
	holdStart time.Time
	holdStop  chan struct{}

	lockoutTimer *time.Timer

	// Fired from timer goroutines only; synchronous transitions are returned
	// to the caller instead so lock ordering stays one-directional.
	onSuccess func()
	onCancel  func()
}

// New opens the gate: generates a fresh challenge and enters Awaiting.
func New(cfg Config, onSuccess, onCancel func()) *Verifier {
	return &Verifier{
		cfg:       cfg.withDefaults(),
		challenge: NewChallenge(),
		state:     StateAwaiting,
		onSuccess: onSuccess,
		onCancel:  onCancel,
	}
}

func (v *Verifier) Challenge() Challenge {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.challenge
}

func (v *Verifier) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

func (v *Verifier) Attempts() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.attempts
}

// SubmitAnswer checks Path A. Non-digit characters are discarded before
// parsing, so "  26 " and "26!" both count as 26. The third cumulative
// mismatch arms a one-shot forced cancel after the lockout delay.
func (v *Verifier) SubmitAnswer(raw string) Result {
	v.mu.Lock()
	if v.state != StateAwaiting {
		v.mu.Unlock()
		return ResultNone
	}

	if parsed, ok := parseAnswer(raw); ok && parsed == v.challenge.Answer {
		v.state = StateVerified
		v.stopTimersLocked()
		v.mu.Unlock()
		return ResultCorrect
	}

	v.attempts++
	if v.attempts >= v.cfg.MaxAttempts {
		if v.lockoutTimer == nil {
			v.lockoutTimer = time.AfterFunc(v.cfg.LockoutDelay, v.lockoutFired)
		}
		v.mu.Unlock()
		return ResultLockedOut
	}
	v.mu.Unlock()
	return ResultWrong
}

func (v *Verifier) lockoutFired() {
	v.mu.Lock()
	if v.state != StateAwaiting {
		v.mu.Unlock()
		return
	}
	v.state = StateCancelled
	v.stopTimersLocked()
	cb := v.onCancel
	v.mu.Unlock()
	if cb != nil {
		cb()
	}
}

// StartHold begins Path B. Progress accumulates only while the control stays
// down; there is no partial credit across separate presses.
func (v *Verifier) StartHold() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.state != StateAwaiting || v.holding {
		return
	}
	v.holding = true
	v.holdStart = time.Now()
	v.holdStop = make(chan struct{})
	go v.watchHold(v.holdStop)
}

func (v *Verifier) watchHold(stop chan struct{}) {
	ticker := time.NewTicker(v.cfg.HoldTick)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			v.mu.Lock()
			if !v.holding || v.state != StateAwaiting {
				v.mu.Unlock()
				return
			}
			if time.Since(v.holdStart) < v.cfg.HoldDuration {
				v.mu.Unlock()
				continue
			}
			v.state = StateVerified
			v.holding = false
			v.stopTimersLocked()
			cb := v.onSuccess
			v.mu.Unlock()
			if cb != nil {
				cb()
			}
			return
		}
	}
}

// ReleaseHold ends the press. A release at or after the full duration is a
// success (the ticker may not have observed it yet); any earlier release
// resets accumulated progress to zero.
func (v *Verifier) ReleaseHold() Result {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.holding {
		return ResultNone
	}
	v.holding = false
	close(v.holdStop)
	v.holdStop = nil

	if v.state == StateAwaiting && time.Since(v.holdStart) >= v.cfg.HoldDuration {
		v.state = StateVerified
		v.stopTimersLocked()
		return ResultCorrect
	}
	v.holdStart = time.Time{}
	return ResultNone
}

// HoldProgress reports the current press as a fraction of the required
// duration, clamped to [0,1]. Zero when nothing is held.
func (v *Verifier) HoldProgress() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.state == StateVerified {
		return 1
	}
	if !v.holding {
		return 0
	}
	p := float64(time.Since(v.holdStart)) / float64(v.cfg.HoldDuration)
	if p > 1 {
		p = 1
	}
	return p
}

// Cancel dismisses the gate without verification.
func (v *Verifier) Cancel() {
	v.mu.Lock()
	if v.state != StateAwaiting {
		v.mu.Unlock()
		return
	}
	v.state = StateCancelled
	v.stopTimersLocked()
	v.mu.Unlock()
}

// Close tears the verifier down. Both timers are stopped so neither the hold
// ticker nor a pending forced cancel can fire into a gate that already closed
// by other means.
func (v *Verifier) Close() {
	v.mu.Lock()
	if v.state == StateAwaiting {
		v.state = StateCancelled
	}
	v.stopTimersLocked()
	v.mu.Unlock()
}

func (v *Verifier) stopTimersLocked() {
	if v.lockoutTimer != nil {
		v.lockoutTimer.Stop()
		v.lockoutTimer = nil
	}
	if v.holdStop != nil {
		close(v.holdStop)
		v.holdStop = nil
	}
	v.holding = false
}

func parseAnswer(raw string) (int, bool) {
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(digits.String())
	if err != nil {
		return 0, false
	}
	return n, true
}
