package auth

import (
	"net/http"
	"time"

	"github.com/burrowtv/burrow/internal/httputil"
	"golang.org/x/crypto/bcrypt"
)

const settingsCookie = "burrow_settings"

// Service guards the management surface. A passed parental gate mints the
// settings cookie; optionally a bcrypt-hashed admin password lets a parent
// open settings from another device without sitting through the gate. The
// gate itself is a deterrent, not a security boundary, but the remote path
// gets a real credential.
type Service struct {
	jwtSecret     string
	adminHash     []byte
	secureCookies bool
}

func NewService(jwtSecret string, adminHash string, secureCookies bool) *Service {
	s := &Service{jwtSecret: jwtSecret, secureCookies: secureCookies}
	if adminHash != "" {
		s.adminHash = []byte(adminHash)
	}
	return s
}

// GrantSettings sets the settings cookie on a response. Called on gate
// success and on admin login.
func (s *Service) GrantSettings(w http.ResponseWriter) error {
	token, err := GenerateSettingsToken(s.jwtSecret)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     settingsCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(SettingsTokenDuration / time.Second),
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// RevokeSettings clears the cookie when settings closes.
func (s *Service) RevokeSettings(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     settingsCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// Middleware rejects management requests without a valid settings token.
func (s *Service) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(settingsCookie)
		if err != nil {
			httputil.WriteError(w, http.StatusUnauthorized, "settings access requires passing the gate")
			return
		}
		if _, err := ValidateSettingsToken(s.jwtSecret, cookie.Value); err != nil {
			httputil.WriteError(w, http.StatusUnauthorized, "settings session expired")
			return
		}
		next.ServeHTTP(w, r)
	})
}

type adminLoginRequest struct {
	Password string `json:"password"`
}

// AdminLogin exchanges the admin password for a settings cookie. Responds
// 404 unless a password hash was configured.
func (s *Service) AdminLogin(w http.ResponseWriter, r *http.Request) {
	if len(s.adminHash) == 0 {
		httputil.WriteError(w, http.StatusNotFound, "admin access not configured")
		return
	}

	var req adminLoginRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := bcrypt.CompareHashAndPassword(s.adminHash, []byte(req.Password)); err != nil {
		httputil.WriteError(w, http.StatusUnauthorized, "wrong password")
		return
	}
	if err := s.GrantSettings(w); err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "failed to issue settings session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
