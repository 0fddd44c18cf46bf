package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/itsatony/roomwatch/internal/config"
	"github.com/itsatony/roomwatch/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore() *CookieStore {
	return NewCookieStore(config.SessionConfig{CookieName: "token", FlashName: "flash"})
}

// carry copies Set-Cookie headers of a response onto a new request
func carry(rec *httptest.ResponseRecorder, req *http.Request) *http.Request {
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge >= 0 {
			req.AddCookie(c)
		}
	}
	return req
}

func TestCookieStoreRoundTrip(t *testing.T) {
	store := newStore()

	rec := httptest.NewRecorder()
	require.NoError(t, store.Save(rec, "tok-123"))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, "/", cookies[0].Path)

	req := carry(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	assert.Equal(t, "tok-123", store.Token(req))
	assert.Empty(t, store.Token(httptest.NewRequest(http.MethodGet, "/", nil)))
}

func TestCookieStoreClear(t *testing.T) {
	rec := httptest.NewRecorder()
	require.NoError(t, newStore().Clear(rec))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "token", cookies[0].Name)
	assert.Less(t, cookies[0].MaxAge, 0)
}

func TestCookieStoreInvalidName(t *testing.T) {
	store := NewCookieStore(config.SessionConfig{CookieName: "bad name;"})
	assert.Error(t, store.Save(httptest.NewRecorder(), "tok"))
	assert.Error(t, store.Clear(httptest.NewRecorder()))
}

func TestFlash(t *testing.T) {
	store := newStore()
	rec := httptest.NewRecorder()
	store.SetFlash(rec, "Gagal keluar, silakan coba lagi")

	req := carry(rec, httptest.NewRequest(http.MethodGet, "/login", nil))
	rec2 := httptest.NewRecorder()
	assert.Equal(t, "Gagal keluar, silakan coba lagi", store.PopFlash(rec2, req))
	require.Len(t, rec2.Result().Cookies(), 1)
	assert.Less(t, rec2.Result().Cookies()[0].MaxAge, 0)

	assert.Empty(t, store.PopFlash(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/login", nil)))
}

func TestRequireSession(t *testing.T) {
	store := newStore()
	var seen string
	h := RequireSession(store, "/login")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = TokenFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
	assert.Empty(t, rec.Result().Cookies())

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: "tok"})
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "tok", seen)
}

func TestRequireSessionAPI(t *testing.T) {
	h := RequireSessionAPI(newStore())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/state", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var body errors.APIError
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, errors.ErrorTypeAuth, body.Type)
}
