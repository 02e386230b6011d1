package nav

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/burrowtv/burrow/internal/gate"
	"github.com/burrowtv/burrow/internal/library"
)

func fastGateConfig() gate.Config {
	return gate.Config{
		HoldDuration: 100 * time.Millisecond,
		HoldTick:     5 * time.Millisecond,
		LockoutDelay: 50 * time.Millisecond,
		MaxAttempts:  3,
	}
}

func newTestController(t *testing.T) *Controller {
	t.Helper()
	store, err := library.NewFileStore(filepath.Join(t.TempDir(), "library.json"))
	if err != nil {
		t.Fatal(err)
	}
	return NewController(store, fastGateConfig(), nil)
}

func TestController_StartsOnGrid(t *testing.T) {
	c := newTestController(t)
	st := c.Snapshot()
	if st.View != ViewGrid || st.Selected != nil || st.Gate.Open || st.Playback != nil {
		t.Errorf("fresh controller: %+v", st)
	}
	if len(st.Library) == 0 {
		t.Error("snapshot should include the library")
	}
}

func TestController_SelectVideo(t *testing.T) {
	c := newTestController(t)
	id := library.Default()[0].ID

	if err := c.SelectVideo(id); err != nil {
		t.Fatalf("SelectVideo: %v", err)
	}
	st := c.Snapshot()
	if st.View != ViewPlayer {
		t.Errorf("view = %v, want player", st.View)
	}
	if st.Selected == nil || st.Selected.ID != id {
		t.Errorf("selected = %+v", st.Selected)
	}
	if st.Playback == nil || st.Playback.Source != "remote" || !st.Playback.Loading {
		t.Errorf("playback = %+v", st.Playback)
	}

	// Selecting while already playing is rejected.
	if err := c.SelectVideo(id); !errors.Is(err, ErrNotInGrid) {
		t.Errorf("second select: got %v, want ErrNotInGrid", err)
	}
}

func TestController_SelectUnknownVideo(t *testing.T) {
	c := newTestController(t)
	if err := c.SelectVideo("AAAAAAAAAAA"); !errors.Is(err, library.ErrNotInLibrary) {
		t.Errorf("got %v, want ErrNotInLibrary", err)
	}
	if c.Snapshot().View != ViewGrid {
		t.Error("failed selection must not leave the grid")
	}
}

func TestController_BackFromPlayer(t *testing.T) {
	c := newTestController(t)
	c.SelectVideo(library.Default()[0].ID)

	if !c.Back() {
		t.Fatal("back from player should transition")
	}
	st := c.Snapshot()
	if st.View != ViewGrid || st.Selected != nil || st.Playback != nil {
		t.Errorf("after back: %+v", st)
	}
}

func TestController_BackAbsorbedElsewhere(t *testing.T) {
	c := newTestController(t)
	if c.Back() {
		t.Error("back on the grid must be absorbed")
	}
	if c.Snapshot().View != ViewGrid {
		t.Error("absorbed back changed state")
	}
}

func TestController_GateOverlayDoesNotChangeView(t *testing.T) {
	c := newTestController(t)
	c.SelectVideo(library.Default()[0].ID)

	c.RequestSettings()
	st := c.Snapshot()
	if st.View != ViewPlayer {
		t.Errorf("view = %v; opening the gate must not change it", st.View)
	}
	if !st.Gate.Open || st.Gate.Prompt == "" {
		t.Errorf("gate = %+v", st.Gate)
	}
}

func TestController_GateSuccessOpensSettings(t *testing.T) {
	c := newTestController(t)
	c.RequestSettings()

	answer := answerFor(t, c)
	result, err := c.GateAnswer(answer)
	if err != nil || result != gate.ResultCorrect {
		t.Fatalf("GateAnswer = %v, %v", result, err)
	}

	st := c.Snapshot()
	if st.View != ViewSettings || st.Gate.Open {
		t.Errorf("after success: %+v", st)
	}
	if !c.ConsumeSettingsGrant() {
		t.Error("gate success should pend a settings grant")
	}
	if c.ConsumeSettingsGrant() {
		t.Error("grant must be consumed exactly once")
	}
}

func TestController_GateCancelKeepsView(t *testing.T) {
	c := newTestController(t)
	c.SelectVideo(library.Default()[0].ID)
	c.RequestSettings()

	if err := c.GateCancel(); err != nil {
		t.Fatal(err)
	}
	st := c.Snapshot()
	if st.View != ViewPlayer || st.Gate.Open {
		t.Errorf("after cancel: %+v", st)
	}
	if st.Playback == nil {
		t.Error("cancel must not tear down playback")
	}
}

func TestController_GateLockoutClosesOverlayOnly(t *testing.T) {
	c := newTestController(t)
	c.RequestSettings()
	wrong := wrongAnswerFor(t, c)

	c.GateAnswer(wrong)
	c.GateAnswer(wrong)
	result, _ := c.GateAnswer(wrong)
	if result != gate.ResultLockedOut {
		t.Fatalf("third wrong: got %v", result)
	}

	deadline := time.After(time.Second)
	for c.Snapshot().Gate.Open {
		select {
		case <-deadline:
			t.Fatal("lockout cancel never closed the overlay")
		case <-time.After(5 * time.Millisecond):
		}
	}
	if st := c.Snapshot(); st.View != ViewGrid {
		t.Errorf("view = %v; forced cancel must not change the view", st.View)
	}
}

func TestController_HoldSuccessFromTicker(t *testing.T) {
	c := newTestController(t)
	c.RequestSettings()
	if err := c.GateHoldStart(); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(time.Second)
	for c.Snapshot().View != ViewSettings {
		select {
		case <-deadline:
			t.Fatal("full hold never opened settings")
		case <-time.After(5 * time.Millisecond):
		}
	}
	if !c.ConsumeSettingsGrant() {
		t.Error("hold success should pend a settings grant")
	}
}

func TestController_HoldReleaseEarly(t *testing.T) {
	c := newTestController(t)
	c.RequestSettings()
	c.GateHoldStart()
	time.Sleep(30 * time.Millisecond)
	c.GateHoldRelease()

	st := c.Snapshot()
	if st.View == ViewSettings {
		t.Error("early release opened settings")
	}
	if !st.Gate.Open {
		t.Error("early release must keep the gate open")
	}
}

func TestController_CloseSettings(t *testing.T) {
	c := newTestController(t)
	c.RequestSettings()
	c.GateAnswer(answerFor(t, c))

	if err := c.CloseSettings(); err != nil {
		t.Fatal(err)
	}
	if c.Snapshot().View != ViewGrid {
		t.Error("close settings should return to the grid")
	}
	if err := c.CloseSettings(); !errors.Is(err, ErrNotSettings) {
		t.Errorf("second close: got %v", err)
	}
}

func TestController_GateStateDoesNotSurviveReopen(t *testing.T) {
	c := newTestController(t)
	c.RequestSettings()
	wrong := wrongAnswerFor(t, c)
	c.GateAnswer(wrong)
	c.GateAnswer(wrong)
	c.GateCancel()

	c.RequestSettings()
	if got := c.Snapshot().Gate.Attempts; got != 0 {
		t.Errorf("attempts = %d after reopen, want 0", got)
	}
}

func TestController_PlaybackEventsRequirePlayer(t *testing.T) {
	c := newTestController(t)
	if err := c.HandlePlaybackEvent(EventRemoteReady, ""); !errors.Is(err, ErrNoPlayback) {
		t.Errorf("got %v, want ErrNoPlayback", err)
	}
}

func TestController_FallbackFlow(t *testing.T) {
	c := newTestController(t)
	c.SelectVideo(library.Default()[0].ID)

	c.HandlePlaybackEvent(EventRemoteError, "150")
	st := c.Snapshot()
	if st.Playback.Source != "local" || st.Playback.LocalURL == "" {
		t.Errorf("after remote error: %+v", st.Playback)
	}

	c.HandlePlaybackEvent(EventLocalError, "")
	st = c.Snapshot()
	if !st.Playback.Errored {
		t.Error("local error should be terminal")
	}
	if st.View != ViewPlayer {
		t.Error("errored playback must not leave the player; back is the recovery")
	}
}

// answerFor reads the correct answer off the live challenge prompt.
func answerFor(t *testing.T, c *Controller) string {
	t.Helper()
	return fmt.Sprintf("%d", solvePrompt(t, c.Snapshot().Gate.Prompt))
}

func wrongAnswerFor(t *testing.T, c *Controller) string {
	t.Helper()
	return fmt.Sprintf("%d", solvePrompt(t, c.Snapshot().Gate.Prompt)+1)
}

func solvePrompt(t *testing.T, prompt string) int {
	t.Helper()
	var left, right int
	var op string
	cleaned := strings.TrimSuffix(prompt, " = ?")
	if _, err := fmt.Sscanf(cleaned, "%d %s %d", &left, &op, &right); err != nil {
		t.Fatalf("unparseable prompt %q: %v", prompt, err)
	}
	switch op {
	case "+":
		return left + right
	case "−":
		return left - right
	case "×":
		return left * right
	}
	t.Fatalf("unknown operator %q", op)
	return 0
}
