package domain

import (
	"context"
	"io"
	"time"
)

// Backend defines the client surface of the conversion service.
type Backend interface {
	FetchConfig(ctx context.Context) (*RemoteConfig, error)
	Upload(ctx context.Context, sessionID, name string, size int64, content io.Reader) (*UploadResult, error)
	Convert(ctx context.Context, req ConvertRequest) (*ConvertResult, error)
	SessionInfo(ctx context.Context, sessionID string) (*SessionInfo, error)
	ResetSession(ctx context.Context, sessionID string) (int, error)
}

// IdentityProvider is the capability surface of the external identity
// service. Implementations exist for the real Supabase client and for a
// test double; callers never inspect the concrete shape.
type IdentityProvider interface {
	SignInWithPassword(ctx context.Context, email, password string) (*AuthUser, string, error)
	// SignUp returns pending=true when the provider requires email
	// confirmation before a session is issued.
	SignUp(ctx context.Context, email, password string) (user *AuthUser, token string, pending bool, err error)
	SignOut(ctx context.Context, token string) error
	GetUser(ctx context.Context, token string) (*AuthUser, error)
	AuthorizeURL(ctx context.Context, provider, redirectTo string) (string, error)
}

// StateStore persists small profile-scoped key/value state (the session
// identifier and the cached auth token) across process runs.
type StateStore interface {
	Get(key string) (string, bool, error)
	Put(key, value string) error
	Delete(key string) error
	Close() error
}

// Logger defines the interface for logging operations
type Logger interface {
	Info(msg string, fields ...interface{})
	Error(msg string, err error, fields ...interface{})
	Debug(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
}

// Config defines the interface for configuration management
type Config interface {
	GetServerPort() string
	GetBackendURL() string
	GetStateDir() string
	GetProfile() string
	GetMaxFileSize() int64
	GetLogLevel() string
	GetStartupTimeout() time.Duration
	GetSupabaseURL() string
	GetSupabaseKey() string
}
