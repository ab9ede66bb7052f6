package auth

import (
	"context"
	"fmt"

	"github.com/supabase-community/auth-go/types"
	"github.com/supabase-community/supabase-go"

	"docmorph/internal/domain"
)

// supabaseProvider implements domain.IdentityProvider on the Supabase
// client. It is the only place that touches the SDK; everything else in
// the package speaks the capability interface.
type supabaseProvider struct {
	client *supabase.Client
	logger domain.Logger
}

// NewSupabaseProvider creates the real identity provider from the
// connection parameters advertised by the service config endpoint.
func NewSupabaseProvider(url, anonKey string, logger domain.Logger) (domain.IdentityProvider, error) {
	if url == "" || anonKey == "" {
		return nil, fmt.Errorf("supabase URL and key must be provided")
	}

	client, err := supabase.NewClient(url, anonKey, &supabase.ClientOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to create Supabase client: %w", err)
	}

	logger.Info("Supabase client initialized", "url", url)
	return &supabaseProvider{client: client, logger: logger}, nil
}

func (p *supabaseProvider) SignInWithPassword(ctx context.Context, email, password string) (*domain.AuthUser, string, error) {
	resp, err := p.client.Auth.SignInWithEmailPassword(email, password)
	if err != nil {
		p.logger.Error("Supabase sign-in failed", err, "email", email)
		return nil, "", fmt.Errorf("sign-in rejected: %w", err)
	}

	user := &domain.AuthUser{
		ID:    resp.User.ID.String(),
		Email: resp.User.Email,
	}
	return user, resp.AccessToken, nil
}

func (p *supabaseProvider) SignUp(ctx context.Context, email, password string) (*domain.AuthUser, string, bool, error) {
	resp, err := p.client.Auth.Signup(types.SignupRequest{
		Email:    email,
		Password: password,
	})
	if err != nil {
		p.logger.Error("Supabase sign-up failed", err, "email", email)
		return nil, "", false, fmt.Errorf("sign-up rejected: %w", err)
	}

	// Without a session the provider wants the address confirmed first.
	if resp.AccessToken == "" {
		return nil, "", true, nil
	}

	user := &domain.AuthUser{
		ID:    resp.ID.String(),
		Email: resp.Email,
	}
	return user, resp.AccessToken, false, nil
}

func (p *supabaseProvider) SignOut(ctx context.Context, token string) error {
	if err := p.client.Auth.WithToken(token).Logout(); err != nil {
		return fmt.Errorf("sign-out failed: %w", err)
	}
	return nil
}

func (p *supabaseProvider) GetUser(ctx context.Context, token string) (*domain.AuthUser, error) {
	resp, err := p.client.Auth.WithToken(token).GetUser()
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if resp == nil {
		return nil, fmt.Errorf("user not found")
	}

	return &domain.AuthUser{
		ID:    resp.ID.String(),
		Email: resp.Email,
	}, nil
}

func (p *supabaseProvider) AuthorizeURL(ctx context.Context, provider, redirectTo string) (string, error) {
	resp, err := p.client.Auth.Authorize(types.AuthorizeRequest{
		Provider:   types.Provider(provider),
		RedirectTo: redirectTo,
	})
	if err != nil {
		return "", fmt.Errorf("failed to build authorization URL: %w", err)
	}
	return resp.AuthorizationURL, nil
}
