package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/burrowtv/burrow/internal/activity"
	"github.com/burrowtv/burrow/internal/httputil"
	"github.com/burrowtv/burrow/internal/library"
	"github.com/burrowtv/burrow/internal/metrics"
)

// The management surface behind the settings cookie: curate the library and
// read the household activity log.

func (s *Server) handleListVideos(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, s.store.List())
}

type addVideoRequest struct {
	URL   string `json:"url"`
	Title string `json:"title"`
	Emoji string `json:"emoji,omitempty"`
	Color string `json:"color,omitempty"`
}

func (s *Server) handleAddVideo(w http.ResponseWriter, r *http.Request) {
	var req addVideoRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id, err := library.ExtractID(req.URL)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "not a recognizable video URL or ID")
		return
	}

	entry := library.VideoEntry{ID: id, Title: req.Title, Emoji: req.Emoji, Color: req.Color}
	switch err := s.store.Add(entry); {
	case errors.Is(err, library.ErrDuplicateID):
		httputil.WriteError(w, http.StatusConflict, "video already in library")
		return
	case errors.Is(err, library.ErrEmptyTitle), errors.Is(err, library.ErrTitleTooLong):
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		httputil.WriteError(w, http.StatusInternalServerError, "failed to save library")
		return
	}

	metrics.LibraryMutations.WithLabelValues("add").Inc()
	if s.activity != nil {
		s.activity.Record(activity.KindLibraryChange, "added "+id, r.UserAgent())
	}
	httputil.WriteJSON(w, http.StatusCreated, entry)
}

func (s *Server) handleRemoveVideo(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	switch err := s.store.Remove(id); {
	case errors.Is(err, library.ErrNotInLibrary):
		httputil.WriteError(w, http.StatusNotFound, "video not in library")
		return
	case err != nil:
		httputil.WriteError(w, http.StatusInternalServerError, "failed to save library")
		return
	}

	metrics.LibraryMutations.WithLabelValues("remove").Inc()
	if s.activity != nil {
		s.activity.Record(activity.KindLibraryChange, "removed "+id, r.UserAgent())
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleResetVideos(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Reset(); err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "failed to save library")
		return
	}

	metrics.LibraryMutations.WithLabelValues("reset").Inc()
	if s.activity != nil {
		s.activity.Record(activity.KindLibraryChange, "reset to defaults", r.UserAgent())
	}
	httputil.WriteJSON(w, http.StatusOK, s.store.List())
}

func (s *Server) handleActivity(w http.ResponseWriter, r *http.Request) {
	if s.activity == nil {
		httputil.WriteJSON(w, http.StatusOK, []activity.Event{})
		return
	}
	httputil.WriteJSON(w, http.StatusOK, s.activity.Events())
}
