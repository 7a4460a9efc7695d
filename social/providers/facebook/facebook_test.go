package facebook

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/JulijaJermolajeva/Authentication-Secrets/social"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProviderAuthCodeURL(t *testing.T) {
	provider := New(Config{
		AppID:       "app-id",
		CallbackURL: "https://example.com/auth/facebook/secrets",
	})

	authURL := provider.AuthCodeURL("state-token", social.WithPKCE("challenge", "S256"))

	parsed, err := url.Parse(authURL)
	require.NoError(t, err)

	query := parsed.Query()
	assert.Equal(t, "app-id", query.Get("client_id"))
	assert.Equal(t, "https://example.com/auth/facebook/secrets", query.Get("redirect_uri"))
	assert.Equal(t, "state-token", query.Get("state"))
	assert.Equal(t, "code", query.Get("response_type"))
	assert.Equal(t, "public_profile", query.Get("scope"))

	// No PKCE on the Facebook web flow.
	assert.Empty(t, query.Get("code_challenge"))
}

func TestProviderExchangeAndUserInfo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/oauth/access_token":
			query := r.URL.Query()
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "app-id", query.Get("client_id"))
			assert.Equal(t, "app-secret", query.Get("client_secret"))
			assert.Equal(t, "auth-code", query.Get("code"))

			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{
				"access_token": "token",
				"token_type":   "bearer",
				"expires_in":   5183944,
			})
		case "/me":
			assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))
			assert.Contains(t, r.URL.Query().Get("fields"), "id")

			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{
				"id":    "1234567890",
				"name":  "User Example",
				"email": "user@example.com",
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	provider := New(Config{
		AppID:       "app-id",
		AppSecret:   "app-secret",
		CallbackURL: "https://example.com/auth/facebook/secrets",
		TokenURL:    server.URL + "/oauth/access_token",
		UserInfoURL: server.URL + "/me",
	})

	token, err := provider.Exchange(context.Background(), "auth-code")
	require.NoError(t, err)
	assert.Equal(t, "token", token.AccessToken)
	assert.True(t, token.ExpiresAt.After(time.Now()))

	profile, err := provider.UserInfo(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "1234567890", profile.ProviderUserID)
	assert.Equal(t, "facebook", profile.Provider)
	assert.Equal(t, "User Example", profile.Name)
	assert.Equal(t, "user@example.com", profile.Email)
}

func TestProviderExchangeErrorNormalized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{
				"message":    "Invalid verification code format.",
				"type":       "OAuthException",
				"code":       100,
				"fbtrace_id": "trace-id",
			},
		})
	}))
	defer server.Close()

	provider := New(Config{
		AppID:       "app-id",
		AppSecret:   "app-secret",
		CallbackURL: "https://example.com/auth/facebook/secrets",
		TokenURL:    server.URL,
	})

	_, err := provider.Exchange(context.Background(), "bad-code")
	require.Error(t, err)

	var perr *social.ProviderError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "facebook", perr.Provider)
	assert.Equal(t, "exchange", perr.Operation)
	assert.Equal(t, http.StatusBadRequest, perr.Status)
	assert.Equal(t, "OAuthException", perr.Code)
	assert.Equal(t, "Invalid verification code format.", perr.Description)
}

func TestProviderUserInfoErrorNormalized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{
				"message": "Error validating access token",
				"type":    "OAuthException",
				"code":    190,
			},
		})
	}))
	defer server.Close()

	provider := New(Config{
		AppID:       "app-id",
		AppSecret:   "app-secret",
		CallbackURL: "https://example.com/auth/facebook/secrets",
		UserInfoURL: server.URL,
	})

	_, err := provider.UserInfo(context.Background(), &social.Token{AccessToken: "expired"})
	require.Error(t, err)

	var perr *social.ProviderError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "user_info", perr.Operation)
	assert.Equal(t, "OAuthException", perr.Code)
}
