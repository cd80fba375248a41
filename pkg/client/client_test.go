package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/velocards/velocards-cli/pkg/domain"
	"github.com/velocards/velocards-cli/pkg/tokenstore"
)

func writeAPIError(w http.ResponseWriter, status int, code, message string) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
		"success": false,
		"error":   map[string]string{"code": code, "message": message},
	})
}

func TestGetProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/profile" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("Authorization") != "Bearer test-token" {
			writeAPIError(w, http.StatusUnauthorized, "UNAUTHORIZED", "not authenticated")
			return
		}
		json.NewEncoder(w).Encode(domain.User{ //nolint:errcheck
			Email:     "ada@example.com",
			FirstName: "Ada",
			KYCStatus: domain.KYCApproved,
		})
	}))
	defer srv.Close()

	tokens := tokenstore.NewMemStore()
	tokens.SetToken("test-token") //nolint:errcheck
	c := New(srv.URL, tokens)

	u, err := c.GetProfile(context.Background())
	if err != nil {
		t.Fatalf("GetProfile() error: %v", err)
	}
	if u.Email != "ada@example.com" {
		t.Errorf("Email = %q, want %q", u.Email, "ada@example.com")
	}
	if u.KYCStatus != domain.KYCApproved {
		t.Errorf("KYCStatus = %q, want %q", u.KYCStatus, domain.KYCApproved)
	}
}

func TestNoAuthorizationHeaderWithoutToken(t *testing.T) {
	var sawHeader string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawHeader = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(RegisterResult{Message: "check your inbox"}) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL, tokenstore.NewMemStore())
	res, err := c.Register(context.Background(), RegisterRequest{Email: "a@b.com", Password: "pw", FirstName: "A", LastName: "B"})
	if err != nil {
		t.Fatalf("Register() error: %v", err)
	}
	if sawHeader != "" {
		t.Errorf("unauthenticated request carried Authorization header %q", sawHeader)
	}
	if res.Message != "check your inbox" {
		t.Errorf("Message = %q", res.Message)
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeAPIError(w, http.StatusUnauthorized, CodeInvalidCredentials, "Invalid email or password")
	}))
	defer srv.Close()

	c := New(srv.URL, tokenstore.NewMemStore())
	_, err := c.Login(context.Background(), LoginRequest{Email: "a@b.com", Password: "wrong"})
	if err == nil {
		t.Fatal("expected error for invalid credentials")
	}
	if !IsStatus(err, http.StatusUnauthorized) {
		t.Errorf("expected 401, got: %v", err)
	}
	if got := Message(err); got != "Invalid email or password" {
		t.Errorf("Message(err) = %q, want server message", got)
	}
	if IsTokenExpired(err) {
		t.Error("INVALID_CREDENTIALS must not read as token expiry")
	}
}

func TestLoginTwoFactorChallenge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(LoginResult{ //nolint:errcheck
			User:              &domain.User{Email: "ada@example.com"},
			RequiresTwoFactor: true,
		})
	}))
	defer srv.Close()

	c := New(srv.URL, tokenstore.NewMemStore())
	res, err := c.Login(context.Background(), LoginRequest{Email: "ada@example.com", Password: "pw"})
	if err != nil {
		t.Fatalf("Login() error: %v", err)
	}
	if !res.RequiresTwoFactor {
		t.Error("RequiresTwoFactor = false, want true")
	}
	if res.AccessToken != "" {
		t.Errorf("challenge response carried an access token %q", res.AccessToken)
	}
}

func TestListCards(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/cards" {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode([]domain.Card{ //nolint:errcheck
			{MaskedPan: "**** **** **** 4821", Status: domain.CardActive},
			{MaskedPan: "**** **** **** 0007", Status: domain.CardFrozen},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, tokenstore.NewMemStore())
	cards, err := c.ListCards(context.Background())
	if err != nil {
		t.Fatalf("ListCards() error: %v", err)
	}
	if len(cards) != 2 {
		t.Fatalf("got %d cards, want 2", len(cards))
	}
	if cards[1].Status != domain.CardFrozen {
		t.Errorf("cards[1].Status = %q, want frozen", cards[1].Status)
	}
}

func TestGetInvoicePDFPassthrough(t *testing.T) {
	pdf := []byte("%PDF-1.7 fake")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/pdf") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Write(pdf) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL, tokenstore.NewMemStore())
	data, err := c.GetInvoicePDF(context.Background(), "inv-1")
	if err != nil {
		t.Fatalf("GetInvoicePDF() error: %v", err)
	}
	if string(data) != string(pdf) {
		t.Errorf("PDF bytes altered in transit")
	}
}

func TestDecodeErrorNonEnvelopeBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream exploded")) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL, tokenstore.NewMemStore())
	_, err := c.GetProfile(context.Background())
	if err == nil {
		t.Fatal("expected error for 502 response")
	}
	if !IsStatus(err, http.StatusBadGateway) {
		t.Errorf("expected 502, got: %v", err)
	}
	if got := Message(err); got != "upstream exploded" {
		t.Errorf("Message(err) = %q, want raw body", got)
	}
}

func TestIsTokenExpiredLegacyMessage(t *testing.T) {
	err := &APIError{StatusCode: http.StatusUnauthorized, Message: "Token expired"}
	if !IsTokenExpired(err) {
		t.Error("legacy message must still read as token expiry")
	}

	structured := &APIError{StatusCode: http.StatusUnauthorized, Code: CodeTokenExpired, Message: "access token has expired"}
	if !IsTokenExpired(structured) {
		t.Error("structured code must read as token expiry")
	}

	other := &APIError{StatusCode: http.StatusForbidden, Code: CodeTokenExpired}
	if IsTokenExpired(other) {
		t.Error("non-401 must never read as token expiry")
	}
}

func TestIsEmailNotVerified(t *testing.T) {
	if !IsEmailNotVerified(&APIError{StatusCode: 403, Code: CodeEmailNotVerified}) {
		t.Error("structured code not recognized")
	}
	if !IsEmailNotVerified(&APIError{StatusCode: 403, Message: "Email not verified"}) {
		t.Error("legacy message not recognized")
	}
	if IsEmailNotVerified(&APIError{StatusCode: 403, Message: "nope"}) {
		t.Error("unrelated error misread as unverified email")
	}
}

func TestDoRequestCancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(5 * time.Second) // slow server
		json.NewEncoder(w).Encode(domain.User{}) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL, tokenstore.NewMemStore())
	ctx, cancel := context.WithCancel(context.Background())
	cancel() // cancel immediately

	_, err := c.GetProfile(ctx)
	if err == nil {
		t.Fatal("expected error for canceled context")
	}
}
