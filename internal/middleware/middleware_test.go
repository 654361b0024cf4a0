package middleware_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/veritasos/ordem-backend/internal/middleware"
	"github.com/veritasos/ordem-backend/internal/utils"
)

// mockFetcher implements middleware.SessionFetcher without any database dependency.
type mockFetcher struct {
	session utils.SessionData
	err     error
}

func (m mockFetcher) FindSessionByToken(token string) (utils.SessionData, error) {
	return m.session, m.err
}

// callWithAuth wraps a simple 200-OK inner handler in the provided middleware,
// optionally setting an Authorization header, and returns the recorded response.
func callWithAuth(t *testing.T, mw func(http.Handler) http.Handler, authorization string) *httptest.ResponseRecorder {
	t.Helper()

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	handler := mw(inner)
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

// TestSessionMiddleware_MissingToken verifies that a request with no bearer
// token receives a 401 response.
func TestSessionMiddleware_MissingToken(t *testing.T) {
	mw := middleware.SessionMiddleware(mockFetcher{})

	rec := callWithAuth(t, mw, "")

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestSessionMiddleware_WrongScheme(t *testing.T) {
	mw := middleware.SessionMiddleware(mockFetcher{})

	rec := callWithAuth(t, mw, "Basic dXNlcjpwYXNz")

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

// TestSessionMiddleware_ExpiredSession verifies that an expired session is
// rejected with a body containing "Session expired".
func TestSessionMiddleware_ExpiredSession(t *testing.T) {
	fetcher := mockFetcher{
		session: utils.SessionData{
			UserID:    7,
			ExpiresAt: time.Now().Add(-1 * time.Hour),
		},
	}
	mw := middleware.SessionMiddleware(fetcher)

	rec := callWithAuth(t, mw, "Bearer expired-session-token")

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Session expired") {
		t.Errorf("expected body to contain %q, got: %q", "Session expired", body)
	}
}

// TestSessionMiddleware_FetcherError verifies that an unknown token results in
// a 401 response.
func TestSessionMiddleware_FetcherError(t *testing.T) {
	fetcher := mockFetcher{err: errors.New("session not found")}
	mw := middleware.SessionMiddleware(fetcher)

	rec := callWithAuth(t, mw, "Bearer nonexistent")

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

// TestSessionMiddleware_ValidSession verifies that a valid session reaches the
// inner handler with the user id and token in context. The cookie fallback is
// exercised here.
func TestSessionMiddleware_ValidSession(t *testing.T) {
	const wantUserID uint = 42

	fetcher := mockFetcher{
		session: utils.SessionData{
			UserID:    wantUserID,
			ExpiresAt: time.Now().Add(1 * time.Hour),
		},
	}

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID, ok := utils.GetUserIDFromContext(r.Context())
		if !ok || gotUserID != wantUserID {
			http.Error(w, "wrong userID in context", http.StatusInternalServerError)
			return
		}
		token, _ := utils.GetSessionTokenFromContext(r.Context())
		if token != "cookie-token" {
			http.Error(w, "wrong token in context: "+token, http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	handler := middleware.SessionMiddleware(fetcher)(inner)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: "cookie-token"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d; body: %s", rec.Code, rec.Body.String())
	}
}

// TestSessionMiddleware_CookieWithOtherScheme verifies that a non-Bearer
// Authorization header does not hide a valid session cookie.
func TestSessionMiddleware_CookieWithOtherScheme(t *testing.T) {
	fetcher := mockFetcher{
		session: utils.SessionData{
			UserID:    9,
			ExpiresAt: time.Now().Add(time.Hour),
		},
	}
	handler := middleware.SessionMiddleware(fetcher)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, _ := utils.GetSessionTokenFromContext(r.Context())
		if token != "cookie-token" {
			http.Error(w, "wrong token in context: "+token, http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Basic abc")
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: "cookie-token"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d; body: %s", rec.Code, rec.Body.String())
	}
}

func TestCORSMiddleware(t *testing.T) {
	mw := middleware.CORSMiddleware([]string{"http://localhost:3000"})
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodOptions, "/tables", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204 for preflight, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("expected origin echoed, got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/tables", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("expected no CORS header for unknown origin, got %q", got)
	}
}

func TestRateLimit(t *testing.T) {
	handler := middleware.RateLimit(middleware.PerMinute(1))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, httptest.NewRequest(http.MethodPost, "/generate-npc", nil))
	if first.Code != http.StatusOK {
		t.Fatalf("expected first request to pass, got %d", first.Code)
	}

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, httptest.NewRequest(http.MethodPost, "/generate-npc", nil))
	if second.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", second.Code)
	}

	if middleware.PerMinute(0) != nil {
		t.Error("expected nil limiter for 0 per minute")
	}
}
