package session

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type fixedClock struct {
	current time.Time
}

func (c *fixedClock) Now() time.Time {
	return c.current
}

func newTestManager(t *testing.T) (*Manager, *fixedClock) {
	t.Helper()

	clock := &fixedClock{current: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	mgr, err := NewManager(Config{
		CookieName:  "test_session",
		HashKey:     []byte("12345678901234567890123456789012"),
		BlockKey:    []byte("abcdefghijklmnopqrstuv0123456789"),
		IdleTimeout: 10 * time.Minute,
		Lifetime:    2 * time.Hour,
		Now:         clock.Now,
	})
	if err != nil {
		t.Fatalf("NewManager error: %v", err)
	}
	return mgr, clock
}

func TestManager_RequiresHashKey(t *testing.T) {
	if _, err := NewManager(Config{}); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
	if _, err := NewManager(Config{HashKey: GenerateKey(), BlockKey: []byte("short")}); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig for block key, got %v", err)
	}
}

func TestManager_NewSessionLifecycle(t *testing.T) {
	mgr, clock := newTestManager(t)

	sess, err := mgr.Load(httptest.NewRequest(http.MethodGet, "/", nil))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if len(sess.ID()) != 26 {
		t.Fatalf("expected ULID session id, got %q", sess.ID())
	}
	if !sess.data.CreatedAt.Equal(clock.current) {
		t.Fatalf("unexpected CreatedAt: %v", sess.data.CreatedAt)
	}
	token := sess.EnsureCSRFToken()
	if token == "" || sess.EnsureCSRFToken() != token {
		t.Fatalf("expected a stable csrf token")
	}

	rec := httptest.NewRecorder()
	if err := mgr.Save(rec, sess); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	cookie := findCookie(rec.Result().Cookies(), "test_session")
	if cookie == nil {
		t.Fatalf("expected session cookie to be set")
	}
	if !cookie.HttpOnly || cookie.SameSite != http.SameSiteLaxMode {
		t.Fatalf("unexpected cookie attributes: %+v", cookie)
	}

	clock.current = clock.current.Add(5 * time.Minute)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	sess2, err := mgr.Load(req)
	if err != nil {
		t.Fatalf("Load existing error: %v", err)
	}
	if sess2.ID() != sess.ID() {
		t.Fatalf("expected session id to persist")
	}
	if sess2.CSRFToken() != token {
		t.Fatalf("expected csrf token to persist")
	}
}

func TestManager_TamperedCookieStartsFresh(t *testing.T) {
	mgr, _ := newTestManager(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "test_session", Value: "garbage"})
	sess, err := mgr.Load(req)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if !sess.Dirty() || sess.ID() == "" {
		t.Fatalf("expected a fresh session")
	}
}

func TestManager_IdleTimeout(t *testing.T) {
	mgr, clock := newTestManager(t)
	sess, _ := mgr.Load(httptest.NewRequest(http.MethodGet, "/", nil))
	rec := httptest.NewRecorder()
	if err := mgr.Save(rec, sess); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	cookie := findCookie(rec.Result().Cookies(), "test_session")

	clock.current = clock.current.Add(20 * time.Minute)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	if _, err := mgr.Load(req); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
}

func TestManager_Destroy(t *testing.T) {
	mgr, _ := newTestManager(t)
	rec := httptest.NewRecorder()
	mgr.Destroy(rec)
	cookie := findCookie(rec.Result().Cookies(), "test_session")
	if cookie == nil || cookie.MaxAge != -1 {
		t.Fatalf("expected session cookie cleared")
	}
}

func TestManager_SaveSkipsUnchangedSessions(t *testing.T) {
	mgr, clock := newTestManager(t)
	sess, _ := mgr.Load(httptest.NewRequest(http.MethodGet, "/", nil))
	sess.EnsureCSRFToken()
	rec := httptest.NewRecorder()
	if err := mgr.Save(rec, sess); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	cookie := findCookie(rec.Result().Cookies(), "test_session")
	if cookie == nil {
		t.Fatalf("expected session cookie to be set")
	}
	if sess.Dirty() {
		t.Fatalf("expected a saved session to be clean")
	}

	load := func() *Session {
		t.Helper()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(cookie)
		loaded, err := mgr.Load(req)
		if err != nil {
			t.Fatalf("Load error: %v", err)
		}
		loaded.EnsureCSRFToken()
		return loaded
	}

	clock.current = clock.current.Add(20 * time.Second)
	rec = httptest.NewRecorder()
	if err := mgr.Save(rec, load()); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Fatalf("expected no cookie for an unchanged session")
	}

	clock.current = clock.current.Add(time.Minute)
	loaded := load()
	rec = httptest.NewRecorder()
	if err := mgr.Save(rec, loaded); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if findCookie(rec.Result().Cookies(), "test_session") == nil {
		t.Fatalf("expected activity to refresh the cookie")
	}
	if !loaded.data.LastActive.Equal(clock.current) {
		t.Fatalf("unexpected LastActive: %v", loaded.data.LastActive)
	}
}

func findCookie(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}
