package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func allowlistedHandler(allowed []string) http.Handler {
	mw := AllowlistMiddleware(func() []string { return allowed }, zerolog.Nop())
	return mw(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func requestFrom(remote string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/next", nil)
	req.RemoteAddr = remote
	return req
}

func TestAllowlistEmptyAllowsEveryone(t *testing.T) {
	h := allowlistedHandler(nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, requestFrom("203.0.113.9:51000"))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAllowlistAllowsListedAddress(t *testing.T) {
	h := allowlistedHandler([]string{"192.0.2.10", "192.0.2.11"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, requestFrom("192.0.2.11:40000"))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAllowlistRejectsUnlistedAddress(t *testing.T) {
	h := allowlistedHandler([]string{"192.0.2.10"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, requestFrom("198.51.100.7:40000"))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"error":"source address not allowed"}`, rec.Body.String())
}

func TestAllowlistReadsListPerRequest(t *testing.T) {
	allowed := []string{}
	mw := AllowlistMiddleware(func() []string { return allowed }, zerolog.Nop())
	h := mw(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, requestFrom("198.51.100.7:1"))
	assert.Equal(t, http.StatusOK, rec.Code)

	// Preference change applies without rebuilding the router.
	allowed = []string{"192.0.2.10"}
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, requestFrom("198.51.100.7:1"))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
