package handlers

import (
	"context"
	"html/template"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"transitionos/internal/auth"
	"transitionos/internal/models"
	"transitionos/internal/storage"

	"go.uber.org/zap"
)

// Context key type to avoid collisions.
type contextKey string

const (
	// UserContextKey is the context key for the authenticated user.
	UserContextKey contextKey = "user"
	// SessionCookieName is the name of the session cookie.
	SessionCookieName = "session"
	// SessionLifetime is how long plain sessions last.
	SessionLifetime = 24 * time.Hour
	// RememberDuration is how long "remember me" sessions last.
	RememberDuration = 7 * 24 * time.Hour
)

// loginFailedMessage is shown for both unknown usernames and wrong passwords
// so the response does not reveal which field was wrong.
const loginFailedMessage = "Invalid username or password"

// Handlers holds dependencies for HTTP handlers.
type Handlers struct {
	db           *storage.DB
	templateDir  string
	uploadDir    string
	secureCookie bool
	log          *zap.SugaredLogger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(db *storage.DB, templateDir, uploadDir string, secureCookie bool, log *zap.SugaredLogger) *Handlers {
	return &Handlers{db: db, templateDir: templateDir, uploadDir: uploadDir, secureCookie: secureCookie, log: log}
}

// GetUserFromContext retrieves the authenticated user from request context.
func GetUserFromContext(r *http.Request) *models.User {
	if user, ok := r.Context().Value(UserContextKey).(*models.User); ok {
		return user
	}
	return nil
}

// AuthMiddleware wraps handlers to require authentication. Unauthenticated
// requests are redirected to the login page with the original path as the
// "next" target. It also implements rolling sessions: a session past the
// halfway point of its lifetime is renewed by its own duration.
func (h *Handlers) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookieName)
		if err != nil || cookie.Value == "" {
			h.redirectToLogin(w, r)
			return
		}

		sessionInfo, err := h.db.ValidateSessionWithInfo(cookie.Value)
		if err != nil {
			// Invalid or expired session, clear the cookie
			h.clearSessionCookie(w)
			h.redirectToLogin(w, r)
			return
		}

		// Rolling session: renew if past halfway point
		// This keeps active users logged in while still expiring inactive sessions
		now := time.Now()
		if sessionInfo.ExpiresAt.Sub(now) < sessionInfo.Duration/2 {
			newExpiresAt := now.Add(sessionInfo.Duration)
			if err := h.db.RenewSession(cookie.Value, newExpiresAt); err == nil {
				h.setSessionCookie(w, cookie.Value, sessionInfo.Duration)
			}
			// If renewal fails, just continue with the current session
		}

		ctx := context.WithValue(r.Context(), UserContextKey, sessionInfo.User)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handlers) redirectToLogin(w http.ResponseWriter, r *http.Request) {
	target := "/auth/login"
	if r.URL.Path != "/" && r.Method == http.MethodGet {
		target += "?next=" + r.URL.Path
	}
	http.Redirect(w, r, target, http.StatusFound)
}

// LoginViewModel holds data for the login page.
type LoginViewModel struct {
	User  *models.User // always nil; the base template expects the field
	Error string
	Next  string
}

// LoginForm renders the login page.
func (h *Handlers) LoginForm(w http.ResponseWriter, r *http.Request) {
	// If already logged in, redirect to the dashboard
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		if _, err := h.db.ValidateSession(cookie.Value); err == nil {
			http.Redirect(w, r, "/dashboard/", http.StatusFound)
			return
		}
	}
	h.render(w, "login.html", LoginViewModel{Next: r.URL.Query().Get("next")})
}

// Login handles the login form submission.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render(w, "login.html", LoginViewModel{Error: "Invalid form submission"})
		return
	}

	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")
	next := r.FormValue("next")

	if username == "" || password == "" {
		h.render(w, "login.html", LoginViewModel{Error: "Username and password are required", Next: next})
		return
	}

	user, err := h.db.GetUserByUsername(username)
	if err != nil || !auth.CheckPassword(password, user.PasswordHash) {
		h.render(w, "login.html", LoginViewModel{Error: loginFailedMessage, Next: next})
		return
	}

	token, err := auth.GenerateSessionToken()
	if err != nil {
		h.log.Errorw("failed to generate session token", "error", err)
		h.render(w, "login.html", LoginViewModel{Error: "An error occurred. Please try again.", Next: next})
		return
	}

	duration := SessionLifetime
	if r.FormValue("remember") != "" {
		duration = RememberDuration
	}

	if err := h.db.CreateSession(token, user.ID, duration); err != nil {
		h.log.Errorw("failed to create session", "error", err)
		h.render(w, "login.html", LoginViewModel{Error: "An error occurred. Please try again.", Next: next})
		return
	}

	h.setSessionCookie(w, token, duration)

	http.Redirect(w, r, safeNextTarget(next), http.StatusFound)
}

// safeNextTarget validates a caller-supplied redirect target. Only same-origin
// relative paths are honored; anything else falls back to the dashboard so a
// crafted login link cannot bounce the user to an external site.
func safeNextTarget(next string) string {
	if strings.HasPrefix(next, "/") && !strings.HasPrefix(next, "//") && !strings.Contains(next, "\\") {
		return next
	}
	return "/dashboard/"
}

// Logout handles user logout.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		if err := h.db.DeleteSession(cookie.Value); err != nil {
			h.log.Errorw("failed to delete session", "error", err)
		}
	}
	h.clearSessionCookie(w)
	http.Redirect(w, r, "/auth/login", http.StatusFound)
}

// Root redirects to the dashboard when authenticated, else to the login page.
func (h *Handlers) Root(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		if _, err := h.db.ValidateSession(cookie.Value); err == nil {
			http.Redirect(w, r, "/dashboard/", http.StatusFound)
			return
		}
	}
	http.Redirect(w, r, "/auth/login", http.StatusFound)
}

func (h *Handlers) setSessionCookie(w http.ResponseWriter, token string, duration time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(duration.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handlers) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handlers) render(w http.ResponseWriter, viewName string, data any) {
	tmpl, err := template.ParseFiles(filepath.Join(h.templateDir, "base.html"), filepath.Join(h.templateDir, viewName))
	if err != nil {
		h.log.Errorw("template parse error", "view", viewName, "error", err)
		http.Error(w, "Template error", http.StatusInternalServerError)
		return
	}
	if err := tmpl.ExecuteTemplate(w, "base.html", data); err != nil {
		h.log.Errorw("template execution error", "view", viewName, "error", err)
	}
}
