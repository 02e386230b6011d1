package server

import (
	"net/http"
)

type SecurityConfig struct {
	BaseURL string
}

// securityHeaders locks the page down to exactly the surfaces the player
// needs: the privacy-enhanced embed frame, its iframe API script, and the
// thumbnail host. Everything else stays same-origin.
func securityHeaders(cfg SecurityConfig) func(http.Handler) http.Handler {
	strictTransport := hasHTTPS(cfg.BaseURL)

	csp := "default-src 'self'; " +
		"script-src 'self' https://www.youtube.com; " +
		"frame-src https://www.youtube-nocookie.com; " +
		"img-src 'self' data: https://i.ytimg.com; " +
		"media-src 'self'; " +
		"connect-src 'self'; " +
		"style-src 'self' 'unsafe-inline'; " +
		"frame-ancestors 'self';"

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Referrer-Policy", "no-referrer")
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "SAMEORIGIN")
			w.Header().Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")
			w.Header().Set("Content-Security-Policy", csp)

			if strictTransport {
				w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}

			next.ServeHTTP(w, r)
		})
	}
}

func hasHTTPS(baseURL string) bool {
	return len(baseURL) >= 8 && baseURL[:8] == "https://"
}
