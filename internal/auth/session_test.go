package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"docmorph/internal/domain"
	apperrors "docmorph/pkg/errors"
)

type nopLogger struct{}

func (nopLogger) Info(msg string, fields ...interface{})             {}
func (nopLogger) Error(msg string, err error, fields ...interface{}) {}
func (nopLogger) Debug(msg string, fields ...interface{})            {}
func (nopLogger) Warn(msg string, fields ...interface{})             {}

type memoryStore struct {
	values map[string]string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{values: make(map[string]string)}
}

func (m *memoryStore) Get(key string) (string, bool, error) {
	value, ok := m.values[key]
	return value, ok, nil
}

func (m *memoryStore) Put(key, value string) error {
	m.values[key] = value
	return nil
}

func (m *memoryStore) Delete(key string) error {
	delete(m.values, key)
	return nil
}

func (m *memoryStore) Close() error { return nil }

// mockProvider records every call so tests can assert that local
// validation failures never reach the provider.
type mockProvider struct {
	signInCalls  int
	signUpCalls  int
	signOutCalls int
	getUserCalls int

	user    *domain.AuthUser
	token   string
	pending bool
	err     error
	slow    bool
}

func (m *mockProvider) SignInWithPassword(ctx context.Context, email, password string) (*domain.AuthUser, string, error) {
	m.signInCalls++
	if m.err != nil {
		return nil, "", m.err
	}
	return m.user, m.token, nil
}

func (m *mockProvider) SignUp(ctx context.Context, email, password string) (*domain.AuthUser, string, bool, error) {
	m.signUpCalls++
	if m.err != nil {
		return nil, "", false, m.err
	}
	if m.pending {
		return nil, "", true, nil
	}
	return m.user, m.token, false, nil
}

func (m *mockProvider) SignOut(ctx context.Context, token string) error {
	m.signOutCalls++
	return m.err
}

func (m *mockProvider) GetUser(ctx context.Context, token string) (*domain.AuthUser, error) {
	m.getUserCalls++
	if m.slow {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if m.err != nil {
		return nil, m.err
	}
	if token != m.token {
		return nil, errors.New("invalid token")
	}
	return m.user, nil
}

func (m *mockProvider) AuthorizeURL(ctx context.Context, provider, redirectTo string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return "https://provider.test/authorize?provider=" + provider, nil
}

func testUser() *domain.AuthUser {
	return &domain.AuthUser{ID: "user-123", Email: "test@example.com"}
}

func TestSignIn_RejectsBadEmailBeforeProviderCall(t *testing.T) {
	provider := &mockProvider{}
	session := NewSession(provider, newMemoryStore(), nopLogger{})

	err := session.SignIn(context.Background(), "bad-email", "secret1")
	if !apperrors.IsKind(err, apperrors.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if provider.signInCalls != 0 {
		t.Fatal("provider must not be called for a malformed email")
	}
}

func TestSignIn_RejectsShortPassword(t *testing.T) {
	provider := &mockProvider{}
	session := NewSession(provider, newMemoryStore(), nopLogger{})

	err := session.SignIn(context.Background(), "user@example.com", "abc")
	if !apperrors.IsKind(err, apperrors.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if provider.signInCalls != 0 {
		t.Fatal("provider must not be called for a short password")
	}
}

func TestSignIn_UpdatesMirrorAndPublishes(t *testing.T) {
	provider := &mockProvider{user: testUser(), token: "tok-1"}
	store := newMemoryStore()
	session := NewSession(provider, store, nopLogger{})

	var events []domain.AuthEvent
	session.Subscribe(func(event domain.AuthEvent, user *domain.AuthUser) {
		events = append(events, event)
		if event == domain.AuthEventSignedIn && user.Email != "test@example.com" {
			t.Fatalf("unexpected user in event: %+v", user)
		}
	})

	if err := session.SignIn(context.Background(), "test@example.com", "secret1"); err != nil {
		t.Fatalf("sign-in failed: %v", err)
	}

	user := session.CurrentUser()
	if user == nil || user.ID != "user-123" {
		t.Fatalf("expected mirrored user, got %+v", user)
	}
	if len(events) != 1 || events[0] != domain.AuthEventSignedIn {
		t.Fatalf("expected one SignedIn event, got %v", events)
	}
	if store.values[tokenStateKey] != "tok-1" {
		t.Fatal("expected token cached in state store")
	}
}

func TestSignUp_ConfirmationMismatch(t *testing.T) {
	provider := &mockProvider{}
	session := NewSession(provider, newMemoryStore(), nopLogger{})

	_, err := session.SignUp(context.Background(), "user@example.com", "secret1", "secret2")
	if !apperrors.IsKind(err, apperrors.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if provider.signUpCalls != 0 {
		t.Fatal("provider must not be called on confirmation mismatch")
	}
}

func TestSignUp_PendingConfirmation(t *testing.T) {
	provider := &mockProvider{pending: true}
	session := NewSession(provider, newMemoryStore(), nopLogger{})

	pending, err := session.SignUp(context.Background(), "user@example.com", "secret1", "secret1")
	if err != nil {
		t.Fatalf("sign-up failed: %v", err)
	}
	if !pending {
		t.Fatal("expected pending confirmation")
	}
	if session.CurrentUser() != nil {
		t.Fatal("expected no mirrored user while confirmation is pending")
	}
}

func TestSignOut_ClearsMirrorAndPublishes(t *testing.T) {
	provider := &mockProvider{user: testUser(), token: "tok-1"}
	store := newMemoryStore()
	session := NewSession(provider, store, nopLogger{})

	if err := session.SignIn(context.Background(), "test@example.com", "secret1"); err != nil {
		t.Fatalf("sign-in failed: %v", err)
	}

	var sawSignedOut bool
	session.Subscribe(func(event domain.AuthEvent, user *domain.AuthUser) {
		if event == domain.AuthEventSignedOut {
			sawSignedOut = true
		}
	})

	if err := session.SignOut(context.Background()); err != nil {
		t.Fatalf("sign-out failed: %v", err)
	}
	if session.CurrentUser() != nil {
		t.Fatal("expected mirror cleared after sign-out")
	}
	if !sawSignedOut {
		t.Fatal("expected SignedOut event")
	}
	if _, ok := store.values[tokenStateKey]; ok {
		t.Fatal("expected cached token removed")
	}
	if provider.signOutCalls != 1 {
		t.Fatalf("expected one provider sign-out, got %d", provider.signOutCalls)
	}
}

func TestInit_RestoresCachedSession(t *testing.T) {
	provider := &mockProvider{user: testUser(), token: "tok-1"}
	store := newMemoryStore()
	store.values[tokenStateKey] = "tok-1"
	session := NewSession(provider, store, nopLogger{})

	if err := session.Init(context.Background()); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	user := session.CurrentUser()
	if user == nil || user.Email != "test@example.com" {
		t.Fatalf("expected restored user, got %+v", user)
	}
}

func TestInit_DiscardsStaleToken(t *testing.T) {
	provider := &mockProvider{user: testUser(), token: "tok-1"}
	store := newMemoryStore()
	store.values[tokenStateKey] = "expired"
	session := NewSession(provider, store, nopLogger{})

	if err := session.Init(context.Background()); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	if session.CurrentUser() != nil {
		t.Fatal("expected no user for a stale token")
	}
	if _, ok := store.values[tokenStateKey]; ok {
		t.Fatal("expected stale token removed")
	}
}

func TestInit_ProviderUnavailable(t *testing.T) {
	provider := &mockProvider{slow: true}
	store := newMemoryStore()
	store.values[tokenStateKey] = "tok-1"
	session := NewSession(provider, store, nopLogger{})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := session.Init(ctx)
	if !apperrors.IsKind(err, apperrors.KindProviderUnavailable) {
		t.Fatalf("expected provider_unavailable, got %v", err)
	}
}

func TestGating(t *testing.T) {
	provider := &mockProvider{user: testUser(), token: "tok-1"}
	session := NewSession(provider, newMemoryStore(), nopLogger{})

	if !session.RequireAuth() {
		t.Fatal("expected auth required while signed out")
	}
	if session.AllowDismissal() {
		t.Fatal("expected dismissal refused while signed out")
	}

	// An in-flight conversion suspends gating for anonymous trials.
	inFlight := false
	session.BindConversionGate(func() bool { return inFlight })
	inFlight = true
	if session.RequireAuth() {
		t.Fatal("expected gating suspended during a conversion")
	}
	if !session.AllowDismissal() {
		t.Fatal("expected dismissal allowed during a conversion")
	}
	inFlight = false

	if err := session.SignIn(context.Background(), "test@example.com", "secret1"); err != nil {
		t.Fatalf("sign-in failed: %v", err)
	}
	if session.RequireAuth() {
		t.Fatal("expected no auth requirement once signed in")
	}
}

func TestSignInWithOAuth(t *testing.T) {
	provider := &mockProvider{}
	session := NewSession(provider, newMemoryStore(), nopLogger{})

	url, err := session.SignInWithOAuth(context.Background(), "google", "http://localhost:8080")
	if err != nil {
		t.Fatalf("oauth failed: %v", err)
	}
	if url == "" {
		t.Fatal("expected authorization URL")
	}

	if _, err := session.SignInWithOAuth(context.Background(), "", ""); !apperrors.IsKind(err, apperrors.KindValidation) {
		t.Fatalf("expected validation error for empty provider, got %v", err)
	}
}
