package auth

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"os"

	"duonest/middleware"
	"duonest/pkg/logger"
	"duonest/pkg/response"
)

const (
	msgWrongPassword   = "رمز عبور اشتباه است"
	msgTooManyAttempts = "تلاش بیش از حد، کمی بعد دوباره امتحان کنید"
	msgLoginFailed     = "ورود ناموفق بود"
)

// fallbackLoginPage is served when the static directory has no login.html.
const fallbackLoginPage = `<!doctype html>
<html lang="fa" dir="rtl"><head><meta charset="utf-8"><title>ورود</title></head>
<body><form method="post" action="/login">
<input type="password" name="password" autofocus>
<button type="submit">ورود</button>
</form></body></html>
`

type LoginRequest struct {
	Password string `json:"password"`
}

type LoginHandler struct {
	Verifier *Verifier
	Sessions *middleware.Sessions
	Limiter  *loginLimiter
	// LoginPage is the path of the login HTML file.
	LoginPage string
}

// NewLoginHandler allows each client address perMinute password attempts per
// minute, with bursts of the same size.
func NewLoginHandler(v *Verifier, sessions *middleware.Sessions, perMinute int, loginPage string) *LoginHandler {
	return &LoginHandler{
		Verifier:  v,
		Sessions:  sessions,
		Limiter:   newLoginLimiter(perMinute),
		LoginPage: loginPage,
	}
}

func (h *LoginHandler) Login(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		if h.Sessions.Authenticated(r) {
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}
		h.servePage(w, r)

	case http.MethodPost:
		h.submit(w, r)

	default:
		w.Header().Set("Allow", "GET, POST")
		response.Fail(w, http.StatusMethodNotAllowed, msgLoginFailed)
	}
}

func (h *LoginHandler) submit(w http.ResponseWriter, r *http.Request) {
	if !h.Limiter.Allow(r) {
		logger.Sugar.Warnf("Login throttled for %s", r.RemoteAddr)
		response.Fail(w, http.StatusTooManyRequests, msgTooManyAttempts)
		return
	}

	jsonBody := isJSON(r)
	password, err := readPassword(r, jsonBody)
	if err != nil {
		response.Fail(w, http.StatusBadRequest, msgLoginFailed)
		return
	}

	if !h.Verifier.Verify(password) {
		logger.Sugar.Warnf("Wrong password from %s", r.RemoteAddr)
		response.Fail(w, http.StatusUnauthorized, msgWrongPassword)
		return
	}

	if err := h.Sessions.Issue(w); err != nil {
		logger.Sugar.Errorf("Failed to issue session: %v", err)
		response.Fail(w, http.StatusInternalServerError, msgLoginFailed)
		return
	}
	logger.Sugar.Infof("Login from %s", r.RemoteAddr)

	if !jsonBody {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	response.JSON(w, http.StatusOK, response.Envelope{Success: true})
}

// Logout drops the session and sends the browser back to the login page.
func (h *LoginHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.Sessions.Clear(w)
	http.Redirect(w, r, middleware.LoginPath, http.StatusFound)
}

func (h *LoginHandler) servePage(w http.ResponseWriter, r *http.Request) {
	if h.LoginPage != "" {
		if _, err := os.Stat(h.LoginPage); err == nil {
			http.ServeFile(w, r, h.LoginPage)
			return
		}
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	io.WriteString(w, fallbackLoginPage)
}

func isJSON(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "application/json"
}

func readPassword(r *http.Request, jsonBody bool) (string, error) {
	if !jsonBody {
		return r.FormValue("password"), nil
	}
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return req.Password, nil
}
