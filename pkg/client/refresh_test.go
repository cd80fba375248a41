package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/velocards/velocards-cli/pkg/domain"
	"github.com/velocards/velocards-cli/pkg/tokenstore"
)

const (
	staleToken = "stale-token"
	freshToken = "fresh-token"
)

func writeRefreshed(w http.ResponseWriter, access string) {
	var res refreshResponse
	res.Tokens.AccessToken = access
	json.NewEncoder(w).Encode(res) //nolint:errcheck
}

// refreshBackend is a test server where the stale access token is rejected
// with the token-expired 401 and the refresh endpoint hands out a fresh one.
type refreshBackend struct {
	refreshCalls atomic.Int64
	staleHits    atomic.Int64

	// When set, the refresh response is held back until the channel closes,
	// so the test controls how many callers pile up behind one exchange.
	refreshGate chan struct{}
}

func (b *refreshBackend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, _ *http.Request) {
		b.refreshCalls.Add(1)
		if b.refreshGate != nil {
			<-b.refreshGate
		}
		writeRefreshed(w, freshToken)
	})
	mux.HandleFunc("/users/profile", func(w http.ResponseWriter, r *http.Request) {
		switch r.Header.Get("Authorization") {
		case "Bearer " + freshToken:
			json.NewEncoder(w).Encode(domain.User{Email: "ada@example.com"}) //nolint:errcheck
		case "Bearer " + staleToken:
			b.staleHits.Add(1)
			writeAPIError(w, http.StatusUnauthorized, CodeTokenExpired, "access token has expired")
		default:
			writeAPIError(w, http.StatusUnauthorized, "UNAUTHORIZED", "not authenticated")
		}
	})
	return mux
}

func TestExpiredTokenRecoveredTransparently(t *testing.T) {
	backend := &refreshBackend{}
	srv := httptest.NewServer(backend.handler())
	defer srv.Close()

	tokens := tokenstore.NewMemStore()
	tokens.SetToken(staleToken) //nolint:errcheck
	c := New(srv.URL, tokens)

	u, err := c.GetProfile(context.Background())
	if err != nil {
		t.Fatalf("GetProfile() error: %v", err)
	}
	if u.Email != "ada@example.com" {
		t.Errorf("Email = %q after recovery", u.Email)
	}
	if got := backend.refreshCalls.Load(); got != 1 {
		t.Errorf("refresh calls = %d, want 1", got)
	}
	if got := tokens.Token(); got != freshToken {
		t.Errorf("stored token = %q, want refreshed token", got)
	}
}

func TestConcurrentExpiriesShareOneRefresh(t *testing.T) {
	const callers = 8

	backend := &refreshBackend{refreshGate: make(chan struct{})}
	srv := httptest.NewServer(backend.handler())
	defer srv.Close()

	tokens := tokenstore.NewMemStore()
	tokens.SetToken(staleToken) //nolint:errcheck
	c := New(srv.URL, tokens)

	// Hold the refresh response until every caller has seen its 401, so all
	// of them are waiting on the same exchange when it resolves.
	go func() {
		for backend.staleHits.Load() < callers {
			time.Sleep(time.Millisecond)
		}
		close(backend.refreshGate)
	}()

	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = c.GetProfile(context.Background())
		}()
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("caller %d: %v", i, err)
		}
	}
	if got := backend.refreshCalls.Load(); got != 1 {
		t.Errorf("refresh calls = %d, want exactly 1 for %d concurrent expiries", got, callers)
	}
}

func TestRetriedRequestNotRefreshedTwice(t *testing.T) {
	var refreshCalls, profileCalls atomic.Int64
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, _ *http.Request) {
		refreshCalls.Add(1)
		writeRefreshed(w, freshToken)
	})
	// The fresh token is rejected too: the retry must surface the 401
	// instead of entering a refresh loop.
	mux.HandleFunc("/users/profile", func(w http.ResponseWriter, _ *http.Request) {
		profileCalls.Add(1)
		writeAPIError(w, http.StatusUnauthorized, CodeTokenExpired, "access token has expired")
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	tokens := tokenstore.NewMemStore()
	tokens.SetToken(staleToken) //nolint:errcheck
	c := New(srv.URL, tokens)

	_, err := c.GetProfile(context.Background())
	if err == nil {
		t.Fatal("expected error when the retried request fails again")
	}
	if !IsTokenExpired(err) {
		t.Errorf("expected the second 401 to propagate, got: %v", err)
	}
	if got := refreshCalls.Load(); got != 1 {
		t.Errorf("refresh calls = %d, want 1", got)
	}
	if got := profileCalls.Load(); got != 2 {
		t.Errorf("profile calls = %d, want original + one retry", got)
	}
}

func TestAuthEndpointsNeverTriggerRefresh(t *testing.T) {
	var refreshCalls atomic.Int64
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, _ *http.Request) {
		refreshCalls.Add(1)
		writeRefreshed(w, freshToken)
	})
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, _ *http.Request) {
		// Deliberately the expired-token shape on an auth path.
		writeAPIError(w, http.StatusUnauthorized, CodeTokenExpired, "access token has expired")
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := New(srv.URL, tokenstore.NewMemStore())
	_, err := c.Login(context.Background(), LoginRequest{Email: "a@b.com", Password: "pw"})
	if err == nil {
		t.Fatal("expected login error to propagate")
	}
	if got := refreshCalls.Load(); got != 0 {
		t.Errorf("refresh calls = %d, want 0 for a 401 on an auth path", got)
	}
}

func TestFailedRefreshEndsSession(t *testing.T) {
	var refreshCalls atomic.Int64
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, _ *http.Request) {
		refreshCalls.Add(1)
		writeAPIError(w, http.StatusUnauthorized, "REFRESH_EXPIRED", "refresh token expired")
	})
	mux.HandleFunc("/users/profile", func(w http.ResponseWriter, _ *http.Request) {
		writeAPIError(w, http.StatusUnauthorized, CodeTokenExpired, "access token has expired")
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	tokens := tokenstore.NewMemStore()
	tokens.SetToken(staleToken) //nolint:errcheck
	c := New(srv.URL, tokens)

	var hookFired atomic.Bool
	c.SetSessionExpiredHook(func() { hookFired.Store(true) })

	_, err := c.GetProfile(context.Background())
	if err == nil {
		t.Fatal("expected error after failed refresh")
	}
	if !IsStatus(err, http.StatusUnauthorized) {
		t.Errorf("expected the refresh failure to propagate, got: %v", err)
	}
	if got := refreshCalls.Load(); got != 1 {
		t.Errorf("refresh calls = %d, want 1 (no retry loop on a failed refresh)", got)
	}
	if !hookFired.Load() {
		t.Error("session-expired hook did not fire")
	}
	if got := tokens.Token(); got != "" {
		t.Errorf("token store still holds %q after failed refresh", got)
	}
}

func TestRefreshCarriesCookieFromLogin(t *testing.T) {
	var sawRefreshCookie atomic.Bool
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, _ *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "refreshToken", Value: "rt-1", Path: "/", HttpOnly: true})
		json.NewEncoder(w).Encode(LoginResult{ //nolint:errcheck
			User:        &domain.User{Email: "ada@example.com"},
			AccessToken: staleToken,
		})
	})
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie("refreshToken"); err == nil && c.Value == "rt-1" {
			sawRefreshCookie.Store(true)
		}
		writeRefreshed(w, freshToken)
	})
	mux.HandleFunc("/users/profile", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "Bearer "+freshToken {
			json.NewEncoder(w).Encode(domain.User{Email: "ada@example.com"}) //nolint:errcheck
			return
		}
		writeAPIError(w, http.StatusUnauthorized, CodeTokenExpired, "access token has expired")
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	tokens := tokenstore.NewMemStore()
	c := New(srv.URL, tokens)

	if _, err := c.Login(context.Background(), LoginRequest{Email: "ada@example.com", Password: "pw"}); err != nil {
		t.Fatalf("Login() error: %v", err)
	}
	if _, err := c.GetProfile(context.Background()); err != nil {
		t.Fatalf("GetProfile() error: %v", err)
	}
	if !sawRefreshCookie.Load() {
		t.Error("refresh request did not carry the cookie set at login")
	}
}
