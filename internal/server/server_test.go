package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/burrowtv/burrow/internal/activity"
	"github.com/burrowtv/burrow/internal/auth"
	"github.com/burrowtv/burrow/internal/gate"
	"github.com/burrowtv/burrow/internal/library"
	"github.com/burrowtv/burrow/internal/media"
)

const testSecret = "test-secret"

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := library.NewFileStore(filepath.Join(dir, "library.json"))
	if err != nil {
		t.Fatal(err)
	}
	mediaDir := filepath.Join(dir, "media")
	if err := os.MkdirAll(mediaDir, 0o755); err != nil {
		t.Fatal(err)
	}
	s := New(Config{
		Store:     store,
		Media:     media.NewDiskStore(mediaDir),
		JWTSecret: testSecret,
		GateConfig: gate.Config{
			HoldDuration: 100 * time.Millisecond,
			HoldTick:     5 * time.Millisecond,
			LockoutDelay: 50 * time.Millisecond,
		},
		Activity: activity.NewLog(16),
	})
	return s, mediaDir
}

func settingsCookie(t *testing.T) *http.Cookie {
	t.Helper()
	token, err := auth.GenerateSettingsToken(testSecret)
	if err != nil {
		t.Fatal(err)
	}
	return &http.Cookie{Name: "burrow_settings", Value: token}
}

func doRequest(s *Server, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doRequest(s, http.MethodGet, "/api/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestSecurityHeaders(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doRequest(s, http.MethodGet, "/api/health", "")

	csp := rec.Header().Get("Content-Security-Policy")
	if !strings.Contains(csp, "youtube-nocookie.com") {
		t.Errorf("CSP must allow the embed frame, got %q", csp)
	}
	if !strings.Contains(csp, "i.ytimg.com") {
		t.Errorf("CSP must allow thumbnails, got %q", csp)
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("missing nosniff")
	}
	if rec.Header().Get("Strict-Transport-Security") != "" {
		t.Error("HSTS should be off for a non-https base URL")
	}
}

func TestVideosRequireSettingsSession(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doRequest(s, http.MethodGet, "/api/videos", "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status %d, want 401", rec.Code)
	}
}

func TestVideoManagement(t *testing.T) {
	s, _ := newTestServer(t)
	cookie := settingsCookie(t)

	rec := doRequest(s, http.MethodPost, "/api/videos",
		`{"url":"https://youtu.be/dQw4w9WgXcQ","title":"A Song"}`, cookie)
	if rec.Code != http.StatusCreated {
		t.Fatalf("add: status %d: %s", rec.Code, rec.Body.String())
	}
	var added library.VideoEntry
	if err := json.Unmarshal(rec.Body.Bytes(), &added); err != nil {
		t.Fatal(err)
	}
	if added.ID != "dQw4w9WgXcQ" {
		t.Errorf("added ID = %q", added.ID)
	}

	rec = doRequest(s, http.MethodPost, "/api/videos",
		`{"url":"dQw4w9WgXcQ","title":"Same Video Again"}`, cookie)
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate: status %d, want 409", rec.Code)
	}

	rec = doRequest(s, http.MethodPost, "/api/videos",
		`{"url":"not a video","title":"Nope"}`, cookie)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad url: status %d, want 400", rec.Code)
	}

	rec = doRequest(s, http.MethodDelete, "/api/videos/dQw4w9WgXcQ", "", cookie)
	if rec.Code != http.StatusNoContent {
		t.Errorf("delete: status %d", rec.Code)
	}
	rec = doRequest(s, http.MethodDelete, "/api/videos/dQw4w9WgXcQ", "", cookie)
	if rec.Code != http.StatusNotFound {
		t.Errorf("delete missing: status %d, want 404", rec.Code)
	}

	rec = doRequest(s, http.MethodPost, "/api/videos/reset", "", cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("reset: status %d", rec.Code)
	}
	var entries []library.VideoEntry
	if err := json.Unmarshal(rec.Body.Bytes(), &entries); err != nil {
		t.Fatal(err)
	}
	if len(entries) != len(library.Default()) {
		t.Errorf("reset left %d entries, want %d", len(entries), len(library.Default()))
	}
}

func TestActivityEndpoint(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doRequest(s, http.MethodGet, "/api/activity", "", settingsCookie(t))
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var events []activity.Event
	if err := json.Unmarshal(rec.Body.Bytes(), &events); err != nil {
		t.Fatal(err)
	}
}

func TestAdminLoginUnconfigured(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doRequest(s, http.MethodPost, "/api/auth/admin", `{"password":"hunter2"}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status %d, want 404", rec.Code)
	}
}

func TestMediaServing(t *testing.T) {
	s, mediaDir := newTestServer(t)
	if err := os.WriteFile(filepath.Join(mediaDir, "A Song.mp4"), []byte("video bytes"), 0o644); err != nil {
		t.Fatal(err)
	}

	rec := doRequest(s, http.MethodGet, "/media/A%20Song.mp4", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	if rec.Body.String() != "video bytes" {
		t.Errorf("body = %q", rec.Body.String())
	}

	rec = doRequest(s, http.MethodGet, "/media/..%2Flibrary.json", "")
	if rec.Code != http.StatusNotFound && rec.Code != http.StatusBadRequest &&
		rec.Code != http.StatusMovedPermanently {
		t.Errorf("traversal attempt: status %d", rec.Code)
	}
}

func TestSPAFallback(t *testing.T) {
	dir := t.TempDir()
	store, err := library.NewFileStore(filepath.Join(dir, "library.json"))
	if err != nil {
		t.Fatal(err)
	}
	s := New(Config{
		Store:     store,
		JWTSecret: testSecret,
		WebFS: fstest.MapFS{
			"index.html": &fstest.MapFile{Data: []byte("<html>burrow</html>")},
			"app.js":     &fstest.MapFile{Data: []byte("console.log('hi')")},
		},
	})

	rec := doRequest(s, http.MethodGet, "/app.js", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "console") {
		t.Errorf("asset: %d %q", rec.Code, rec.Body.String())
	}

	rec = doRequest(s, http.MethodGet, "/settings", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "burrow") {
		t.Errorf("fallback: %d %q", rec.Code, rec.Body.String())
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doRequest(s, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Errorf("status %d", rec.Code)
	}
}
