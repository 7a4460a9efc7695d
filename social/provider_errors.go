package social

import (
	"errors"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
)

// ProviderError is the normalized shape of a failed provider round trip.
// Google reports OAuth failures as {error, error_description} and API
// failures as {error: {code, message, status}}; Facebook wraps everything in
// {error: {message, type, code, ...}}. The provider packages flatten both
// into Code and Description and keep the decoded body in Raw.
type ProviderError struct {
	Provider    string
	Operation   string
	Status      int
	Code        string
	Description string
	Err         error
	Raw         map[string]any
}

func (e *ProviderError) Error() string {
	detail := e.Description
	if detail == "" {
		detail = e.Code
	}
	if detail == "" && e.Err != nil {
		detail = e.Err.Error()
	}

	if detail == "" {
		return fmt.Sprintf("%s %s failed", e.Provider, e.Operation)
	}
	return fmt.Sprintf("%s %s failed: %s", e.Provider, e.Operation, detail)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Metadata flattens the error for structured logging.
func (e *ProviderError) Metadata() map[string]any {
	meta := map[string]any{
		"provider":  e.Provider,
		"operation": e.Operation,
	}

	if e.Status != 0 {
		meta["status"] = e.Status
	}
	if e.Code != "" {
		meta["code"] = e.Code
	}
	if e.Description != "" {
		meta["description"] = e.Description
	}
	if len(e.Raw) > 0 {
		meta["raw"] = e.Raw
	}

	return meta
}

// wrapProviderError attaches a provider failure to one of the package
// sentinels, so callers branch on the sentinel's text code while the log
// line keeps the normalized provider detail.
func wrapProviderError(base *goerrors.Error, provider, operation string, err error) error {
	meta := map[string]any{
		"provider":  provider,
		"operation": operation,
	}

	var perr *ProviderError
	if errors.As(err, &perr) {
		for k, v := range perr.Metadata() {
			meta[k] = v
		}
	} else if err != nil {
		meta["error"] = err.Error()
	}

	wrapped := base.Clone().WithMetadata(meta)
	if err != nil {
		wrapped.Source = err
	}

	return wrapped
}
