package social

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	secrets "github.com/JulijaJermolajeva/Authentication-Secrets"
	"github.com/goliatone/hashid/pkg/hashid"
)

const defaultExchangeTimeout = 10 * time.Second

// Authenticator orchestrates the provider sign-in flow: it hands out
// authorization URLs with encrypted state, and on callback turns the
// authorization code into a resolved account.
type Authenticator struct {
	providers    map[string]Provider
	stateManager StateManager
	accounts     secrets.Accounts
	logger       secrets.Logger
	config       Config
}

// Config configures the social authenticator.
type Config struct {
	DefaultRedirectURL string
	StateEncryptionKey []byte
	StateHMACKey       []byte
	StateTTL           time.Duration
	// ExchangeTimeout bounds the provider round trips during CompleteAuth so
	// a slow provider cannot hold the callback open indefinitely.
	ExchangeTimeout time.Duration
}

// Option configures the social authenticator.
type Option func(*Authenticator)

// NewAuthenticator creates a new social authenticator.
func NewAuthenticator(accounts secrets.Accounts, config Config, opts ...Option) *Authenticator {
	cfg := config
	if cfg.StateTTL == 0 {
		cfg.StateTTL = 10 * time.Minute
	}
	if cfg.ExchangeTimeout == 0 {
		cfg.ExchangeTimeout = defaultExchangeTimeout
	}

	sa := &Authenticator{
		providers: make(map[string]Provider),
		accounts:  accounts,
		config:    cfg,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(sa)
		}
	}

	if sa.stateManager == nil {
		sa.stateManager = NewEncryptedStateManager(
			cfg.StateEncryptionKey,
			cfg.StateHMACKey,
			cfg.StateTTL,
		)
	}

	return sa
}

// WithProvider registers a provider.
func WithProvider(provider Provider) Option {
	return func(sa *Authenticator) {
		if provider == nil {
			return
		}
		sa.providers[provider.Name()] = provider
	}
}

// WithStateManager sets a custom state manager.
func WithStateManager(sm StateManager) Option {
	return func(sa *Authenticator) {
		sa.stateManager = sm
	}
}

// WithLogger sets the logger.
func WithLogger(logger secrets.Logger) Option {
	return func(sa *Authenticator) {
		sa.logger = logger
	}
}

// BeginAuth starts the OAuth flow for a provider.
func (sa *Authenticator) BeginAuth(ctx context.Context, providerName string, opts ...BeginAuthOption) (*AuthRedirect, error) {
	provider, ok := sa.providers[providerName]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProviderNotFound, providerName)
	}

	if sa.stateManager == nil {
		return nil, ErrInvalidState
	}

	cfg := &beginAuthConfig{
		redirectURL: sa.config.DefaultRedirectURL,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}

	codeVerifier, err := generateCodeVerifier()
	if err != nil {
		return nil, fmt.Errorf("failed to generate code verifier: %w", err)
	}
	codeChallenge := computeCodeChallenge(codeVerifier)

	state := &OAuthState{
		Provider:     providerName,
		CodeVerifier: codeVerifier,
		RedirectURL:  cfg.redirectURL,
	}

	stateToken, err := sa.stateManager.Encode(state)
	if err != nil {
		return nil, fmt.Errorf("failed to encode state: %w", err)
	}

	authURL := provider.AuthCodeURL(stateToken, WithPKCE(codeChallenge, "S256"))

	return &AuthRedirect{
		URL:      authURL,
		State:    stateToken,
		Provider: providerName,
	}, nil
}

// CompleteAuth finishes the OAuth flow after callback: it validates the
// state, exchanges the code, fetches the profile, and resolves it to an
// account, creating one on first sign-in. Nothing is persisted until the
// provider identity is fully verified, so a failed exchange leaves no
// partial account behind.
func (sa *Authenticator) CompleteAuth(ctx context.Context, providerName, code, stateToken string) (*AuthResult, error) {
	if sa.stateManager == nil {
		return nil, ErrInvalidState
	}

	state, err := sa.stateManager.Decode(stateToken)
	if err != nil {
		if errors.Is(err, ErrStateExpired) {
			return nil, ErrStateExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidState, err)
	}

	if state.Provider != providerName {
		return nil, fmt.Errorf("%w: provider mismatch", ErrInvalidState)
	}

	provider, ok := sa.providers[providerName]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProviderNotFound, providerName)
	}

	ctx, cancel := context.WithTimeout(ctx, sa.config.ExchangeTimeout)
	defer cancel()

	token, err := provider.Exchange(ctx, code, WithCodeVerifier(state.CodeVerifier))
	if err != nil {
		return nil, wrapProviderError(ErrTokenExchangeFailed, providerName, "exchange", err)
	}

	profile, err := provider.UserInfo(ctx, token)
	if err != nil {
		return nil, wrapProviderError(ErrUserInfoFailed, providerName, "user_info", err)
	}

	if profile == nil || profile.ProviderUserID == "" {
		return nil, wrapProviderError(ErrUserInfoFailed, providerName, "user_info", nil)
	}

	seed := accountFromProfile(providerName, profile)

	account, err := sa.accounts.GetOrCreateByProvider(ctx, providerName, profile.ProviderUserID, seed)
	if err != nil {
		return nil, err
	}

	if err := sa.accounts.TrackLogin(ctx, account.ID); err != nil && sa.logger != nil {
		sa.logger.Warn("social login: track login failed: %v", err)
	}

	if sa.logger != nil {
		sa.logger.Info("social login via %s for account %s", providerName, account.ID)
	}

	return &AuthResult{
		Account:     account,
		Provider:    providerName,
		Profile:     profile,
		RedirectURL: state.RedirectURL,
	}, nil
}

// ListProviders returns all registered providers.
func (sa *Authenticator) ListProviders() []ProviderInfo {
	var providers []ProviderInfo
	for name, p := range sa.providers {
		providers = append(providers, ProviderInfo{
			Name:    name,
			AuthURL: p.AuthCodeURL(""),
		})
	}
	return providers
}

// accountFromProfile builds the account seed for a first sign-in. The id is
// derived from the provider identity so replayed creations stay idempotent;
// the username prefers the profile display name with a provider scoped
// fallback.
func accountFromProfile(providerName string, profile *Profile) *secrets.Account {
	seed := &secrets.Account{
		Secrets: []string{},
	}

	if id, err := hashid.NewUUID(providerName + ":" + profile.ProviderUserID); err == nil {
		seed.ID = id
	}

	username := strings.TrimSpace(profile.Name)
	if username == "" {
		username = strings.TrimSpace(profile.Username)
	}
	if username == "" && profile.Email != "" {
		username = profile.Email
	}
	if username == "" {
		username = fmt.Sprintf("%s_%s", providerName, profile.ProviderUserID)
	}
	seed.Username = username

	seed.SetProviderID(providerName, profile.ProviderUserID)

	return seed
}

// ProviderInfo describes an available provider.
type ProviderInfo struct {
	Name    string
	AuthURL string
}

// AuthRedirect contains the authorization URL for redirecting users.
type AuthRedirect struct {
	URL      string
	State    string
	Provider string
}

// AuthResult contains the result of a successful authentication.
type AuthResult struct {
	Account     *secrets.Account
	Provider    string
	Profile     *Profile
	RedirectURL string
}

// BeginAuthOption configures the auth initiation.
type BeginAuthOption func(*beginAuthConfig)

type beginAuthConfig struct {
	redirectURL string
}

// WithRedirectURL sets the post-auth redirect URL.
func WithRedirectURL(url string) BeginAuthOption {
	return func(c *beginAuthConfig) {
		c.redirectURL = url
	}
}
