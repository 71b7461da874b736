package middleware

import (
	"net/http"
	"strings"

	"duonest/pkg/logger"
	"duonest/pkg/response"
)

const (
	LoginPath = "/login"

	msgUnauthorized = "ابتدا وارد شوید"
)

// AuthMiddleware lets a request through only with a valid session. Paths in
// public pass untouched; an entry ending in "/" matches as a prefix.
// Anonymous API and socket calls get a 401 envelope, pages redirect to the
// login page.
func AuthMiddleware(sessions *Sessions, public ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isPublic(r.URL.Path, public) || sessions.Authenticated(r) {
				next.ServeHTTP(w, r)
				return
			}

			if wantsJSON(r) {
				logger.Sugar.Debugf("Rejected anonymous %s %s", r.Method, r.URL.Path)
				response.Fail(w, http.StatusUnauthorized, msgUnauthorized)
				return
			}
			http.Redirect(w, r, LoginPath, http.StatusFound)
		})
	}
}

func isPublic(path string, public []string) bool {
	for _, p := range public {
		if strings.HasSuffix(p, "/") {
			if strings.HasPrefix(path, p) {
				return true
			}
			continue
		}
		if path == p {
			return true
		}
	}
	return false
}

func wantsJSON(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api/") || r.URL.Path == "/ws"
}
