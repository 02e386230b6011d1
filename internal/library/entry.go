package library

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
)

// VideoEntry is one approved video in the walled garden.
type VideoEntry struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Emoji string `json:"emoji"`
	Color string `json:"color"`
}

var (
	ErrInvalidID    = errors.New("video id must be exactly 11 URL-safe characters")
	ErrEmptyTitle   = errors.New("title is required")
	ErrTitleTooLong = errors.New("title too long")
	ErrDuplicateID  = errors.New("video already in library")
	ErrNotInLibrary = errors.New("video not in library")
)

// MaxTitleLength bounds child-facing labels; it doubles as the filename stem
// bound for prefetched media.
const MaxTitleLength = 200

var idPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// ValidID reports whether s has the exact shape of a video identifier.
func ValidID(s string) bool {
	return idPattern.MatchString(s)
}

// ExtractID pulls the 11-character identifier out of raw input. It accepts a
// bare identifier or any of the usual URL shapes (watch?v=, youtu.be/,
// embed/, shorts/), all extracting identically.
func ExtractID(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if ValidID(raw) {
		return raw, nil
	}

	candidate := raw
	if !strings.Contains(candidate, "://") {
		candidate = "https://" + candidate
	}
	u, err := url.Parse(candidate)
	if err != nil {
		return "", ErrInvalidID
	}

	if strings.HasSuffix(u.Host, "youtu.be") {
		if id := firstSegment(u.Path); ValidID(id) {
			return id, nil
		}
		return "", ErrInvalidID
	}

	if v := u.Query().Get("v"); ValidID(v) {
		return v, nil
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i, seg := range segments {
		switch seg {
		case "embed", "shorts", "v", "live":
			if i+1 < len(segments) && ValidID(segments[i+1]) {
				return segments[i+1], nil
			}
		}
	}

	return "", ErrInvalidID
}

func firstSegment(path string) string {
	return strings.SplitN(strings.Trim(path, "/"), "/", 2)[0]
}

// Validate checks a single entry in isolation; duplicate checks belong to the
// sequence the entry is added to.
func (e VideoEntry) Validate() error {
	if !ValidID(e.ID) {
		return ErrInvalidID
	}
	if strings.TrimSpace(e.Title) == "" {
		return ErrEmptyTitle
	}
	if len(e.Title) > MaxTitleLength {
		return ErrTitleTooLong
	}
	return nil
}
