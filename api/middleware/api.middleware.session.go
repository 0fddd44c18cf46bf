package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/itsatony/roomwatch/internal/config"
	"github.com/itsatony/roomwatch/internal/errors"
)

// SessionStore keeps the access token and one-shot flash messages on the client
type SessionStore interface {
	Token(r *http.Request) string
	Save(w http.ResponseWriter, token string) error
	Clear(w http.ResponseWriter) error
	SetFlash(w http.ResponseWriter, msg string)
	PopFlash(w http.ResponseWriter, r *http.Request) string
}

// CookieStore implements SessionStore with plain cookies
type CookieStore struct {
	cfg config.SessionConfig
}

func NewCookieStore(cfg config.SessionConfig) *CookieStore {
	if cfg.CookiePath == "" {
		cfg.CookiePath = "/"
	}
	if cfg.FlashName == "" {
		cfg.FlashName = "flash"
	}
	return &CookieStore{cfg: cfg}
}

func (s *CookieStore) cookie(name, value string, maxAge int) *http.Cookie {
	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     s.cfg.CookiePath,
		HttpOnly: true,
		Secure:   s.cfg.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	}
	if maxAge < 0 {
		c.Expires = time.Unix(0, 0)
	}
	return c
}

// Token returns the stored token or ""
func (s *CookieStore) Token(r *http.Request) string {
	c, err := r.Cookie(s.cfg.CookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

func (s *CookieStore) Save(w http.ResponseWriter, token string) error {
	c := s.cookie(s.cfg.CookieName, token, 0)
	if err := c.Valid(); err != nil {
		return fmt.Errorf("invalid session cookie: %w", err)
	}
	http.SetCookie(w, c)
	return nil
}

// Clear deletes the token cookie
func (s *CookieStore) Clear(w http.ResponseWriter) error {
	c := s.cookie(s.cfg.CookieName, "", -1)
	if err := c.Valid(); err != nil {
		return fmt.Errorf("invalid session cookie: %w", err)
	}
	http.SetCookie(w, c)
	return nil
}

func (s *CookieStore) SetFlash(w http.ResponseWriter, msg string) {
	http.SetCookie(w, s.cookie(s.cfg.FlashName, url.QueryEscape(msg), 0))
}

// PopFlash returns the pending flash message and deletes it
func (s *CookieStore) PopFlash(w http.ResponseWriter, r *http.Request) string {
	c, err := r.Cookie(s.cfg.FlashName)
	if err != nil {
		return ""
	}
	http.SetCookie(w, s.cookie(s.cfg.FlashName, "", -1))
	msg, err := url.QueryUnescape(c.Value)
	if err != nil {
		return ""
	}
	return msg
}

type contextKey string

const tokenKey contextKey = "session_token"

// WithToken stores the session token in ctx
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey, token)
}

// TokenFromContext returns the token put there by a session guard
func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey).(string)
	return token
}

// RequireSession redirects to loginPath when no token is stored.
// The redirect is silent: no flash message is set.
func RequireSession(store SessionStore, loginPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := store.Token(r)
			if token == "" {
				http.Redirect(w, r, loginPath, http.StatusFound)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithToken(r.Context(), token)))
		})
	}
}

// RequireSessionAPI answers 401 with an APIError body when no token is stored
func RequireSessionAPI(store SessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := store.Token(r)
			if token == "" {
				handleError(w, errors.NewAuthError("no token provided", nil))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithToken(r.Context(), token)))
		})
	}
}

func handleError(w http.ResponseWriter, err error) {
	apiErr, ok := errors.As(err)
	if !ok {
		apiErr = errors.NewInternalError("internal server error", err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apiErr.Code)
	json.NewEncoder(w).Encode(apiErr)
}
