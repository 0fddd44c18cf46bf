package resources

import (
	"net/http"
	"strings"

	"github.com/gorilla/schema"
	"github.com/itsatony/roomwatch/api/middleware"
	"github.com/itsatony/roomwatch/internal/backend"
	"github.com/itsatony/roomwatch/internal/dashboard"
	"github.com/itsatony/roomwatch/internal/errors"
	"github.com/itsatony/roomwatch/internal/render"
	nuts "github.com/vaudience/go-nuts"
)

const (
	msgMissingCredentials = "Username dan password wajib diisi"
	msgInvalidCredentials = "Username atau password salah"
	msgBackendUnavailable = "Server tidak dapat dihubungi, silakan coba lagi"
	msgLogoutFailed       = "Terjadi kesalahan saat keluar"
)

var formDecoder = func() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return d
}()

type loginForm struct {
	Username string `schema:"username"`
	Password string `schema:"password"`
}

// PageHandlers serves the login, dashboard and logout screens
type PageHandlers struct {
	store    middleware.SessionStore
	auth     Authenticator
	sessions SessionEnder
	renderer *render.Renderer
	monitor  Monitor
	paths    Paths
}

// LoginForm renders the login page with any pending flash message
func (h *PageHandlers) LoginForm(w http.ResponseWriter, r *http.Request) {
	flash := h.store.PopFlash(w, r)
	h.renderLogin(w, http.StatusOK, render.LoginPage{Flash: flash})
}

// Login exchanges the posted credentials for a token and stores it
func (h *PageHandlers) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderLogin(w, http.StatusBadRequest, render.LoginPage{Error: msgMissingCredentials})
		return
	}
	var form loginForm
	if err := formDecoder.Decode(&form, r.PostForm); err != nil {
		h.renderLogin(w, http.StatusBadRequest, render.LoginPage{Error: msgMissingCredentials})
		return
	}
	form.Username = strings.TrimSpace(form.Username)
	if form.Username == "" || form.Password == "" {
		h.renderLogin(w, http.StatusBadRequest, render.LoginPage{Error: msgMissingCredentials, Username: form.Username})
		return
	}

	token, err := h.auth.Login(r.Context(), backend.Credentials{Username: form.Username, Password: form.Password})
	if err != nil {
		status, msg, reason := http.StatusBadGateway, msgBackendUnavailable, "upstream"
		if errors.IsValidation(err) {
			status, msg, reason = http.StatusUnauthorized, msgInvalidCredentials, "invalid_credentials"
		} else {
			nuts.L.Warnf("[Pages] Login failed for %s: %v", form.Username, err)
		}
		h.monitor.RecordEvent(r.Context(), "login_failed", map[string]string{"reason": reason})
		h.renderLogin(w, status, render.LoginPage{Error: msg, Username: form.Username})
		return
	}

	if err := h.store.Save(w, token); err != nil {
		nuts.L.Errorf("[Pages] Failed to store session: %v", err)
		h.renderLogin(w, http.StatusInternalServerError, render.LoginPage{Error: msgBackendUnavailable, Username: form.Username})
		return
	}
	h.monitor.RecordEvent(r.Context(), "login", map[string]string{"session": dashboard.SessionKey(token)})
	http.Redirect(w, r, h.paths.Dashboard, http.StatusSeeOther)
}

// Dashboard renders the dashboard shell; data arrives over the stream
func (h *PageHandlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	err := h.renderer.Dashboard(w, render.DashboardPage{
		DashboardURL: h.paths.Dashboard,
		StreamURL:    h.paths.Stream,
		LogoutURL:    h.paths.Logout,
	})
	if err != nil {
		nuts.L.Errorf("[Pages] Failed to render dashboard: %v", err)
	}
}

// Logout always ends at the login page. A failure to clear the token becomes a flash message;
// live views of the session are reset either way.
func (h *PageHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	token := h.store.Token(r)
	session := ""
	if token != "" {
		session = dashboard.SessionKey(token)
	}

	if err := h.store.Clear(w); err != nil {
		nuts.L.Errorf("[Pages] Failed to clear session %s: %v", session, err)
		h.store.SetFlash(w, msgLogoutFailed)
		h.monitor.RecordEvent(r.Context(), "logout_failed", map[string]string{"session": session})
	} else {
		h.monitor.RecordEvent(r.Context(), "logout", map[string]string{"session": session})
	}

	h.sessions.EndSession(r.Context(), token)
	http.Redirect(w, r, h.paths.Login, http.StatusSeeOther)
}

func (h *PageHandlers) renderLogin(w http.ResponseWriter, status int, page render.LoginPage) {
	page.Action = h.paths.Login
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := h.renderer.Login(w, page); err != nil {
		nuts.L.Errorf("[Pages] Failed to render login: %v", err)
	}
}
