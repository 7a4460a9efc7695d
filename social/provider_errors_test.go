package social

import (
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProviderErrorMessage(t *testing.T) {
	err := &ProviderError{
		Provider:    "google",
		Operation:   "exchange",
		Status:      400,
		Code:        "invalid_grant",
		Description: "Bad Request",
	}
	assert.Equal(t, "google exchange failed: Bad Request", err.Error())

	err = &ProviderError{Provider: "facebook", Operation: "user_info", Code: "OAuthException"}
	assert.Equal(t, "facebook user_info failed: OAuthException", err.Error())

	err = &ProviderError{Provider: "google", Operation: "exchange"}
	assert.Equal(t, "google exchange failed", err.Error())
}

func TestProviderErrorMetadata(t *testing.T) {
	err := &ProviderError{
		Provider:    "facebook",
		Operation:   "exchange",
		Status:      400,
		Code:        "OAuthException",
		Description: "Invalid verification code format.",
		Raw:         map[string]any{"fbtrace_id": "trace-id"},
	}

	meta := err.Metadata()
	assert.Equal(t, "facebook", meta["provider"])
	assert.Equal(t, "exchange", meta["operation"])
	assert.Equal(t, 400, meta["status"])
	assert.Equal(t, "OAuthException", meta["code"])
	assert.Equal(t, map[string]any{"fbtrace_id": "trace-id"}, meta["raw"])
}

func TestWrapProviderErrorCarriesDetail(t *testing.T) {
	source := &ProviderError{
		Provider:    "google",
		Operation:   "exchange",
		Status:      400,
		Code:        "invalid_grant",
		Description: "Bad Request",
	}

	wrapped := wrapProviderError(ErrTokenExchangeFailed, "google", "exchange", source)

	var rich *goerrors.Error
	require.True(t, goerrors.As(wrapped, &rich))
	assert.Equal(t, TextCodeTokenExchangeFail, rich.TextCode)
	assert.Equal(t, "invalid_grant", rich.Metadata["code"])
	assert.Equal(t, 400, rich.Metadata["status"])
	assert.Equal(t, "Bad Request", rich.Metadata["description"])
}

func TestWrapProviderErrorWithoutSource(t *testing.T) {
	wrapped := wrapProviderError(ErrUserInfoFailed, "google", "user_info", nil)

	var rich *goerrors.Error
	require.True(t, goerrors.As(wrapped, &rich))
	assert.Equal(t, TextCodeUserInfoFail, rich.TextCode)
	assert.Equal(t, "google", rich.Metadata["provider"])
	assert.Equal(t, "user_info", rich.Metadata["operation"])
}
