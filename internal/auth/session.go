// Package auth wraps the external identity provider behind a small
// session facade: a cached read-only mirror of the signed-in user, local
// credential validation, and re-published sign-in/sign-out events.
package auth

import (
	"context"
	"fmt"
	"sync"

	"docmorph/internal/domain"
	apperrors "docmorph/pkg/errors"
)

const tokenStateKey = "auth_token"

// Listener receives the re-published authentication-state transitions.
type Listener func(domain.AuthEvent, *domain.AuthUser)

// Session mirrors the identity provider's state for the rest of the
// application. The mirror is mutated only by the session's own methods;
// callers read it through CurrentUser.
type Session struct {
	provider domain.IdentityProvider
	store    domain.StateStore
	logger   domain.Logger

	mu                 sync.RWMutex
	user               *domain.AuthUser
	token              string
	ready              bool
	listeners          []Listener
	conversionInFlight func() bool
}

// NewSession creates an auth session over a provider and a state store.
func NewSession(provider domain.IdentityProvider, store domain.StateStore, logger domain.Logger) *Session {
	return &Session{
		provider: provider,
		store:    store,
		logger:   logger,
	}
}

// Init restores a cached provider session within the given context's
// deadline. After Init returns, CurrentUser is synchronous against the
// mirror. A provider that cannot be reached before the deadline yields
// ProviderUnavailable; a stale cached token is discarded silently.
// Init is idempotent: re-initializing keeps registered listeners intact.
func (s *Session) Init(ctx context.Context) error {
	token, ok, err := s.store.Get(tokenStateKey)
	if err != nil {
		return fmt.Errorf("failed to load cached auth token: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !ok || token == "" {
		s.ready = true
		return nil
	}

	user, err := s.provider.GetUser(ctx, token)
	if err != nil {
		if ctx.Err() != nil {
			return apperrors.NewProviderUnavailable(err)
		}
		// Token no longer accepted; drop it and stay signed out.
		s.logger.Warn("Cached auth token rejected, clearing it")
		_ = s.store.Delete(tokenStateKey)
		s.ready = true
		return nil
	}

	s.user = user
	s.token = token
	s.ready = true
	s.logger.Info("Restored auth session", "email", user.Email)
	return nil
}

// CurrentUser returns the mirrored user, nil when unauthenticated.
func (s *Session) CurrentUser() *domain.AuthUser {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	user := *s.user
	return &user
}

// SignIn validates credentials locally, then exchanges them with the
// provider. On success the mirror and the cached token are updated and a
// SignedIn event is published.
func (s *Session) SignIn(ctx context.Context, email, password string) error {
	if err := validateCredentials(email, password); err != nil {
		return err
	}

	user, token, err := s.provider.SignInWithPassword(ctx, email, password)
	if err != nil {
		return err
	}

	if err := s.store.Put(tokenStateKey, token); err != nil {
		s.logger.Warn("Could not cache auth token", "error", err)
	}

	s.mu.Lock()
	s.user = user
	s.token = token
	s.mu.Unlock()

	s.logger.Info("Signed in", "email", user.Email)
	s.publish(domain.AuthEventSignedIn, user)
	return nil
}

// SignUp registers a new account. pending is true when the provider
// requires email confirmation before issuing a session; in that case no
// event is published and the mirror stays unauthenticated.
func (s *Session) SignUp(ctx context.Context, email, password, confirm string) (pending bool, err error) {
	if err := validateSignUp(email, password, confirm); err != nil {
		return false, err
	}

	user, token, pending, err := s.provider.SignUp(ctx, email, password)
	if err != nil {
		return false, err
	}
	if pending {
		s.logger.Info("Sign-up pending email confirmation", "email", email)
		return true, nil
	}

	if err := s.store.Put(tokenStateKey, token); err != nil {
		s.logger.Warn("Could not cache auth token", "error", err)
	}

	s.mu.Lock()
	s.user = user
	s.token = token
	s.mu.Unlock()

	s.logger.Info("Signed up", "email", user.Email)
	s.publish(domain.AuthEventSignedIn, user)
	return false, nil
}

// SignOut ends the provider session. The local mirror is cleared and a
// SignedOut event published even when the provider call fails, so the UI
// never keeps presenting a dead session.
func (s *Session) SignOut(ctx context.Context) error {
	s.mu.Lock()
	token := s.token
	s.user = nil
	s.token = ""
	s.mu.Unlock()

	_ = s.store.Delete(tokenStateKey)
	s.publish(domain.AuthEventSignedOut, nil)

	if token == "" {
		return nil
	}
	if err := s.provider.SignOut(ctx, token); err != nil {
		s.logger.Warn("Provider sign-out failed", "error", err)
		return err
	}
	s.logger.Info("Signed out")
	return nil
}

// SignInWithOAuth returns the provider authorization URL for the given
// OAuth provider. The caller opens it in a browser.
func (s *Session) SignInWithOAuth(ctx context.Context, provider, redirectTo string) (string, error) {
	if provider == "" {
		return "", apperrors.NewValidationError("an OAuth provider name is required")
	}
	return s.provider.AuthorizeURL(ctx, provider, redirectTo)
}

// Subscribe registers a listener for sign-in/sign-out events. The
// subscription lives for the process; there is no unsubscribe.
func (s *Session) Subscribe(l Listener) {
	s.mu.Lock()
	s.listeners = append(s.listeners, l)
	s.mu.Unlock()
}

// BindConversionGate gives the session a view of whether a conversion is
// in flight, so auth gating can step aside during an anonymous trial.
func (s *Session) BindConversionGate(inFlight func() bool) {
	s.mu.Lock()
	s.conversionInFlight = inFlight
	s.mu.Unlock()
}

// RequireAuth reports whether the UI should demand authentication right
// now: the user is absent and no conversion is running.
func (s *Session) RequireAuth() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user != nil {
		return false
	}
	if s.conversionInFlight != nil && s.conversionInFlight() {
		return false
	}
	return true
}

// AllowDismissal reports whether a user-initiated dismissal of the auth
// gate is acceptable. It is the inverse of RequireAuth; a forced
// dismissal on successful sign-in bypasses this check.
func (s *Session) AllowDismissal() bool {
	return !s.RequireAuth()
}

func (s *Session) publish(event domain.AuthEvent, user *domain.AuthUser) {
	s.mu.RLock()
	listeners := make([]Listener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.RUnlock()

	for _, l := range listeners {
		l(event, user)
	}
}
