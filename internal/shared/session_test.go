package shared

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestSessionManager(t *testing.T) (*SessionManager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSessionManager(client, "honai_session", "secret", time.Hour, false), mr
}

func TestSessionRoundTrip(t *testing.T) {
	sm, mr := newTestSessionManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(ctx, req)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	sess.SetUser("7")
	sess.Set("theme", "dark")

	rec := httptest.NewRecorder()
	if err := sm.Commit(ctx, rec, req, sess); err != nil {
		t.Fatalf("commit: %v", err)
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != "honai_session" {
		t.Fatalf("expected one session cookie, got %v", cookies)
	}
	if !cookies[0].HttpOnly || cookies[0].SameSite != http.SameSiteStrictMode {
		t.Fatalf("cookie must be HttpOnly with SameSite=Strict")
	}

	// The stored payload is exactly values + user id, nothing else.
	raw, err := mr.Get("session:" + sess.ID)
	if err != nil {
		t.Fatalf("stored payload: %v", err)
	}
	var stored map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if len(stored) != 2 {
		t.Fatalf("expected values and user_id only, got keys %v", stored)
	}
	if _, ok := stored["user_id"]; !ok {
		t.Fatal("user_id missing from payload")
	}
	if _, ok := stored["values"]; !ok {
		t.Fatal("values missing from payload")
	}

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	next.AddCookie(cookies[0])
	reloaded, err := sm.Load(ctx, next)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.User() != "7" || reloaded.Get("theme") != "dark" {
		t.Fatalf("unexpected reloaded session: user=%q theme=%q", reloaded.User(), reloaded.Get("theme"))
	}
}

func TestSessionDestroyClearsCookieAndStore(t *testing.T) {
	sm, mr := newTestSessionManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(ctx, req)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	sess.SetUser("7")
	if err := sm.Commit(ctx, httptest.NewRecorder(), req, sess); err != nil {
		t.Fatalf("commit: %v", err)
	}

	sm.Destroy(sess)
	rec := httptest.NewRecorder()
	if err := sm.Commit(ctx, rec, req, sess); err != nil {
		t.Fatalf("destroy commit: %v", err)
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].MaxAge != -1 {
		t.Fatalf("expected expired cookie, got %v", cookies)
	}
	if mr.Exists("session:" + sess.ID) {
		t.Fatal("session must be deleted from redis")
	}
}
