package nav

import (
	"errors"
	"net/http"

	"github.com/burrowtv/burrow/internal/activity"
	"github.com/burrowtv/burrow/internal/auth"
	"github.com/burrowtv/burrow/internal/gate"
	"github.com/burrowtv/burrow/internal/httputil"
	"github.com/burrowtv/burrow/internal/library"
	"github.com/google/uuid"
)

const sessionCookie = "burrow_session"

// Handler exposes the per-session state machine over the JSON API the
// embedded frontend drives.
type Handler struct {
	registry *Registry
	auth     *auth.Service
	activity *activity.Log
}

func NewHandler(registry *Registry, authService *auth.Service, log *activity.Log) *Handler {
	return &Handler{registry: registry, auth: authService, activity: log}
}

// session resolves the controller for this browser, minting the session
// cookie on first contact.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) *Controller {
	if cookie, err := r.Cookie(sessionCookie); err == nil && cookie.Value != "" {
		return h.registry.Get(cookie.Value)
	}

	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return h.registry.Get(id)
}

// respondState writes the session snapshot, attaching the settings cookie if
// the gate verified since the last response.
func (h *Handler) respondState(w http.ResponseWriter, c *Controller) {
	if c.ConsumeSettingsGrant() {
		if err := h.auth.GrantSettings(w); err != nil {
			httputil.WriteError(w, http.StatusInternalServerError, "failed to issue settings session")
			return
		}
	}
	httputil.WriteJSON(w, http.StatusOK, c.Snapshot())
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	h.respondState(w, h.session(w, r))
}

type selectRequest struct {
	ID string `json:"id"`
}

func (h *Handler) Select(w http.ResponseWriter, r *http.Request) {
	c := h.session(w, r)

	var req selectRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	switch err := c.SelectVideo(req.ID); {
	case errors.Is(err, library.ErrNotInLibrary):
		httputil.WriteError(w, http.StatusNotFound, "video not in library")
		return
	case errors.Is(err, ErrNotInGrid):
		httputil.WriteError(w, http.StatusConflict, "not on the grid")
		return
	case err != nil:
		httputil.WriteError(w, http.StatusInternalServerError, "selection failed")
		return
	}

	if h.activity != nil {
		h.activity.Record(activity.KindVideoSelected, req.ID, r.UserAgent())
	}
	h.respondState(w, c)
}

func (h *Handler) Back(w http.ResponseWriter, r *http.Request) {
	c := h.session(w, r)
	c.Back()
	// Absorbed or not, the response is the (re)asserted current state.
	h.respondState(w, c)
}

func (h *Handler) RequestSettings(w http.ResponseWriter, r *http.Request) {
	c := h.session(w, r)
	c.RequestSettings()
	if h.activity != nil {
		h.activity.Record(activity.KindGateOpened, "", r.UserAgent())
	}
	h.respondState(w, c)
}

func (h *Handler) CloseSettings(w http.ResponseWriter, r *http.Request) {
	c := h.session(w, r)
	if err := c.CloseSettings(); err != nil {
		httputil.WriteError(w, http.StatusConflict, "settings not open")
		return
	}
	h.auth.RevokeSettings(w)
	h.respondState(w, c)
}

type answerRequest struct {
	Answer string `json:"answer"`
}

func (h *Handler) GateAnswer(w http.ResponseWriter, r *http.Request) {
	c := h.session(w, r)

	var req answerRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := c.GateAnswer(req.Answer)
	if err != nil {
		httputil.WriteError(w, http.StatusConflict, "gate not open")
		return
	}
	if result == gate.ResultCorrect && h.activity != nil {
		h.activity.Record(activity.KindGateSuccess, "challenge", r.UserAgent())
	}

	if c.ConsumeSettingsGrant() {
		if err := h.auth.GrantSettings(w); err != nil {
			httputil.WriteError(w, http.StatusInternalServerError, "failed to issue settings session")
			return
		}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"result": result,
		"state":  c.Snapshot(),
	})
}

func (h *Handler) GateHoldStart(w http.ResponseWriter, r *http.Request) {
	c := h.session(w, r)
	if err := c.GateHoldStart(); err != nil {
		httputil.WriteError(w, http.StatusConflict, "gate not open")
		return
	}
	h.respondState(w, c)
}

func (h *Handler) GateHoldRelease(w http.ResponseWriter, r *http.Request) {
	c := h.session(w, r)
	if err := c.GateHoldRelease(); err != nil {
		httputil.WriteError(w, http.StatusConflict, "gate not open")
		return
	}
	h.respondState(w, c)
}

func (h *Handler) GateCancel(w http.ResponseWriter, r *http.Request) {
	c := h.session(w, r)
	if err := c.GateCancel(); err != nil {
		httputil.WriteError(w, http.StatusConflict, "gate not open")
		return
	}
	if h.activity != nil {
		h.activity.Record(activity.KindGateCancelled, "dismissed", r.UserAgent())
	}
	h.respondState(w, c)
}

type playbackEventRequest struct {
	Event string `json:"event"`
	Code  string `json:"code,omitempty"`
}

func (h *Handler) PlaybackEvent(w http.ResponseWriter, r *http.Request) {
	c := h.session(w, r)

	var req playbackEventRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	switch err := c.HandlePlaybackEvent(PlaybackEvent(req.Event), req.Code); {
	case errors.Is(err, ErrNoPlayback):
		httputil.WriteError(w, http.StatusConflict, "no playback session")
		return
	case errors.Is(err, ErrUnknownEvent):
		httputil.WriteError(w, http.StatusBadRequest, "unknown playback event")
		return
	case err != nil:
		httputil.WriteError(w, http.StatusInternalServerError, "playback event failed")
		return
	}
	h.respondState(w, c)
}
