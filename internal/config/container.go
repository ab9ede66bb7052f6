package config

import (
	"context"
	"fmt"
	"os"

	"docmorph/internal/auth"
	"docmorph/internal/backend"
	"docmorph/internal/domain"
	"docmorph/internal/orchestrator"
	"docmorph/internal/session"
	"docmorph/internal/state"
	"docmorph/pkg/logger"
)

// Container holds all application dependencies
type Container struct {
	Config       domain.Config
	Logger       domain.Logger
	Store        domain.StateStore
	Identity     *session.Identity
	Backend      domain.Backend
	Orchestrator *orchestrator.Orchestrator
}

// NewContainer creates a new dependency injection container. The state
// store is opened for the configured profile and the orchestrator is
// bound to that profile's session identifier.
func NewContainer() (*Container, error) {
	config := NewConfig()
	appLogger := logger.NewLogger(config.GetLogLevel())

	if err := os.MkdirAll(config.GetStateDir(), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}
	store, err := state.Open(config.GetStateDir(), config.GetProfile())
	if err != nil {
		return nil, fmt.Errorf("failed to open state store: %w", err)
	}

	identity := session.NewIdentity(store, appLogger)
	sessionID, err := identity.GetOrCreate()
	if err != nil {
		store.Close()
		return nil, err
	}

	client := backend.NewClient(config.GetBackendURL(), appLogger)
	orch := orchestrator.New(client, sessionID, appLogger,
		orchestrator.WithMaxFileSize(config.GetMaxFileSize()))

	return &Container{
		Config:       config,
		Logger:       appLogger,
		Store:        store,
		Identity:     identity,
		Backend:      client,
		Orchestrator: orch,
	}, nil
}

// InitAuth builds the identity layer. The provider connection parameters
// come from local configuration when set, otherwise from the service's
// config endpoint; either way the cached session is restored within the
// startup timeout.
func (c *Container) InitAuth(ctx context.Context) (*auth.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, c.Config.GetStartupTimeout())
	defer cancel()

	url := c.Config.GetSupabaseURL()
	key := c.Config.GetSupabaseKey()
	if url == "" || key == "" {
		remote, err := c.Backend.FetchConfig(ctx)
		if err != nil {
			return nil, err
		}
		if url == "" {
			url = remote.SupabaseURL
		}
		if key == "" {
			key = remote.SupabaseAnonKey
		}
	}

	provider, err := auth.NewSupabaseProvider(url, key, c.Logger)
	if err != nil {
		return nil, err
	}

	authSession := auth.NewSession(provider, c.Store, c.Logger)
	if err := authSession.Init(ctx); err != nil {
		return nil, err
	}
	authSession.BindConversionGate(c.Orchestrator.InFlight)
	return authSession, nil
}

// Close releases the container's resources.
func (c *Container) Close() error {
	return c.Store.Close()
}

// GetConfig returns the configuration instance
func (c *Container) GetConfig() domain.Config {
	return c.Config
}

// GetLogger returns the logger instance
func (c *Container) GetLogger() domain.Logger {
	return c.Logger
}
