// Package session owns the client-side authentication state: who is
// signed in, whether a sign-in is mid-flight, and whether a second factor
// is still owed. It is the single writer of the token store — the API
// client only reads from it.
//
// The store never navigates. Screen transitions are the application
// shell's job; the store exposes hooks (OnVerificationRequired,
// SessionExpired) and a Subscribe feed, and the shell decides what to do.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"sync/atomic"

	"github.com/velocards/velocards-cli/internal/logging"
	"github.com/velocards/velocards-cli/pkg/client"
	"github.com/velocards/velocards-cli/pkg/domain"
	"github.com/velocards/velocards-cli/pkg/tokenstore"
)

// ErrTwoFactorRequired is returned by Login when the account has 2FA
// enabled and no code was supplied. The store remembers the pending
// credentials; complete with CompleteTwoFactor.
var ErrTwoFactorRequired = errors.New("session: two-factor code required")

// API is the slice of the VeloCards client the session store uses.
// *client.Client satisfies it.
type API interface {
	Login(ctx context.Context, req client.LoginRequest) (*client.LoginResult, error)
	Register(ctx context.Context, req client.RegisterRequest) (*client.RegisterResult, error)
	Logout(ctx context.Context) error
	GetProfile(ctx context.Context) (*domain.User, error)
}

// State is a snapshot of the session. Values handed to subscribers are
// copies; mutating them has no effect on the store.
type State struct {
	User          *domain.User
	Authenticated bool

	// Loading is true while a login, registration, or auth check is in
	// flight. A fresh store starts loading until the first check settles.
	Loading bool

	// TwoFactorPending is true after a password was accepted but a 2FA
	// code is still owed. PendingEmail identifies the half-signed-in user.
	TwoFactorPending bool
	PendingEmail     string

	// Err is the last action's failure, cleared when the next action
	// starts. Never set for the email-not-verified outcome — that routes
	// through OnVerificationRequired instead.
	Err error
}

// Store holds session state and serializes all transitions.
type Store struct {
	api    API
	tokens tokenstore.Store
	log    logging.Logger

	mu       sync.Mutex
	state    State
	subs     map[int]func(State)
	nextSub  int
	onVerify func(verifyURL string)

	// pending password for the second leg of a 2FA login; never exposed
	// through State.
	pendingPassword string

	checking atomic.Bool
}

// Option configures a Store.
type Option func(*Store)

// WithLogger attaches a logger.
func WithLogger(l logging.Logger) Option {
	return func(s *Store) { s.log = l }
}

// New creates a session store over the given API and token store.
func New(api API, tokens tokenstore.Store, opts ...Option) *Store {
	s := &Store{
		api:    api,
		tokens: tokens,
		log:    logging.Nop(),
		// The session is unknown until the first CheckAuth settles, so
		// subscribers must not read the initial snapshot as signed-out.
		state: State{Loading: true},
		subs:  make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OnVerificationRequired registers the callback invoked when a sign-in or
// registration needs email verification first. verifyURL is the relative
// verification page URL carrying the address, e.g.
// "/auth/verify-email?email=ada%40example.com".
func (s *Store) OnVerificationRequired(fn func(verifyURL string)) {
	s.mu.Lock()
	s.onVerify = fn
	s.mu.Unlock()
}

// Current returns a snapshot of the session state.
func (s *Store) Current() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers fn to be called with every state change, starting
// with the current state. The returned function cancels the subscription.
// Callbacks run synchronously on the mutating goroutine and must not call
// back into the store.
func (s *Store) Subscribe(fn func(State)) (cancel func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	st := s.state
	s.mu.Unlock()

	fn(st)
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// update applies mutate under the lock and notifies subscribers with the
// resulting snapshot.
func (s *Store) update(mutate func(*State)) {
	s.mu.Lock()
	mutate(&s.state)
	st := s.state
	fns := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(st)
	}
}

func (s *Store) verificationRequired(email string) {
	s.mu.Lock()
	fn := s.onVerify
	s.mu.Unlock()
	if fn != nil {
		fn("/auth/verify-email?email=" + url.QueryEscape(email))
	}
}

// Login signs in with email and password. On success the access token is
// persisted and the profile lands in State. When the account has 2FA
// enabled, Login returns ErrTwoFactorRequired and the store waits for
// CompleteTwoFactor; the pending flag survives in State so the UI can
// show the code prompt. An unverified email address is not an error:
// State stays signed-out and OnVerificationRequired fires.
func (s *Store) Login(ctx context.Context, email, password string) error {
	s.update(func(st *State) {
		st.Loading = true
		st.Err = nil
	})

	res, err := s.api.Login(ctx, client.LoginRequest{Email: email, Password: password})
	if err != nil {
		if client.IsEmailNotVerified(err) {
			s.log.Info(ctx, "login blocked on unverified email", "email", email)
			s.update(func(st *State) { st.Loading = false })
			s.verificationRequired(email)
			return nil
		}
		s.update(func(st *State) {
			st.Loading = false
			st.Err = err
		})
		return fmt.Errorf("session.Login: %w", err)
	}

	if res.RequiresTwoFactor {
		s.mu.Lock()
		s.pendingPassword = password
		s.mu.Unlock()
		s.update(func(st *State) {
			st.Loading = false
			st.TwoFactorPending = true
			st.PendingEmail = email
		})
		return ErrTwoFactorRequired
	}

	return s.finishLogin(ctx, res)
}

// CompleteTwoFactor finishes a login that stopped at the 2FA challenge.
func (s *Store) CompleteTwoFactor(ctx context.Context, code string) error {
	s.mu.Lock()
	email := s.state.PendingEmail
	password := s.pendingPassword
	pending := s.state.TwoFactorPending
	s.mu.Unlock()
	if !pending {
		return errors.New("session: no two-factor login pending")
	}

	s.update(func(st *State) {
		st.Loading = true
		st.Err = nil
	})

	res, err := s.api.Login(ctx, client.LoginRequest{Email: email, Password: password, TwoFactorCode: code})
	if err != nil {
		// Still pending: the user can retry with another code.
		s.update(func(st *State) {
			st.Loading = false
			st.Err = err
		})
		return fmt.Errorf("session.CompleteTwoFactor: %w", err)
	}
	return s.finishLogin(ctx, res)
}

func (s *Store) finishLogin(ctx context.Context, res *client.LoginResult) error {
	if err := s.tokens.SetToken(res.AccessToken); err != nil {
		s.update(func(st *State) {
			st.Loading = false
			st.Err = err
		})
		return fmt.Errorf("session: persist token: %w", err)
	}

	s.mu.Lock()
	s.pendingPassword = ""
	s.mu.Unlock()
	s.update(func(st *State) {
		*st = State{User: res.User, Authenticated: true}
	})
	email := ""
	if res.User != nil {
		email = res.User.Email
	}
	s.log.Info(ctx, "signed in", "email", email)
	return nil
}

// Register creates an account. Registration never signs the user in — on
// success OnVerificationRequired fires so the shell can send them to the
// verification page for the address they just registered.
func (s *Store) Register(ctx context.Context, req client.RegisterRequest) error {
	s.update(func(st *State) {
		st.Loading = true
		st.Err = nil
	})

	if _, err := s.api.Register(ctx, req); err != nil {
		s.update(func(st *State) {
			st.Loading = false
			st.Err = err
		})
		return fmt.Errorf("session.Register: %w", err)
	}

	s.update(func(st *State) { st.Loading = false })
	s.verificationRequired(req.Email)
	return nil
}

// Logout ends the session. Local state and the stored token are cleared
// even when the server-side revocation fails — the user asked to be
// signed out, and a network error must not pin them in.
func (s *Store) Logout(ctx context.Context) {
	if err := s.api.Logout(ctx); err != nil {
		s.log.Warn(ctx, "server-side logout failed", "err", err)
	}
	if err := s.tokens.Clear(); err != nil {
		s.log.Error(ctx, "clearing token on logout", "err", err)
	}
	s.mu.Lock()
	s.pendingPassword = ""
	s.mu.Unlock()
	s.update(func(st *State) { *st = State{} })
}

// SessionExpired resets the store to signed-out. Wire it to
// client.SetSessionExpiredHook so a failed token refresh lands the UI on
// the sign-in screen.
func (s *Store) SessionExpired() {
	s.mu.Lock()
	s.pendingPassword = ""
	s.mu.Unlock()
	s.update(func(st *State) { *st = State{} })
}

// CheckAuth restores the session from a persisted token, typically at
// startup. Overlapping calls collapse: while one check is in flight,
// further calls return immediately without touching the network or the
// state. Without a stored token it settles to signed-out locally.
func (s *Store) CheckAuth(ctx context.Context) {
	if !s.checking.CompareAndSwap(false, true) {
		return
	}
	defer s.checking.Store(false)

	if s.tokens.Token() == "" {
		s.update(func(st *State) { *st = State{} })
		return
	}

	s.update(func(st *State) {
		st.Loading = true
		st.Err = nil
	})

	u, err := s.api.GetProfile(ctx)
	if err != nil {
		s.log.Debug(ctx, "auth check failed", "err", err)
		if cerr := s.tokens.Clear(); cerr != nil {
			s.log.Error(ctx, "clearing token after failed auth check", "err", cerr)
		}
		s.update(func(st *State) { *st = State{} })
		return
	}

	s.update(func(st *State) {
		*st = State{User: u, Authenticated: true}
	})
	s.log.Debug(ctx, "session restored", "email", u.Email)
}
