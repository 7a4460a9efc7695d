package secrets

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Provider names accepted by the social sign-in flow. Each maps to its own
// unique column on the accounts table.
const (
	ProviderGoogle   = "google"
	ProviderFacebook = "facebook"
)

// Account is the single identity record behind every sign-in method. An
// account is reachable through at least one identity attribute: a local
// username, a Google subject id, or a Facebook profile id. Each attribute is
// unique across the table; the nullzero tags keep absent attributes as NULL so
// the unique constraints only bite on real values.
type Account struct {
	bun.BaseModel `bun:"table:accounts,alias:acc"`

	ID           uuid.UUID  `bun:"id,pk,type:uuid" json:"id,omitempty"`
	Username     string     `bun:"username,nullzero,unique" json:"username,omitempty"`
	PasswordHash string     `bun:"password_hash,nullzero" json:"-"`
	GoogleID     string     `bun:"google_id,nullzero,unique" json:"google_id,omitempty"`
	FacebookID   string     `bun:"facebook_id,nullzero,unique" json:"facebook_id,omitempty"`
	Secrets      []string   `bun:"secrets,type:jsonb" json:"secrets"`
	LoggedInAt   *time.Time `bun:"loggedin_at,nullzero" json:"loggedin_at,omitempty"`
	CreatedAt    *time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt    *time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at,omitempty"`
}

// HasSecrets reports whether the account has anything to show on the shared
// secrets wall.
func (a *Account) HasSecrets() bool {
	return a != nil && len(a.Secrets) > 0
}

// AppendSecret adds a secret to the end of the list. Duplicates are allowed.
func (a *Account) AppendSecret(secret string) {
	a.Secrets = append(a.Secrets, secret)
}

// RemoveSecret drops the first exact occurrence of secret. Removing a value
// that is not present leaves the list untouched.
func (a *Account) RemoveSecret(secret string) {
	for i, s := range a.Secrets {
		if s == secret {
			a.Secrets = slices.Delete(a.Secrets, i, i+1)
			return
		}
	}
}

// ProviderID returns the stored identifier for the given provider.
func (a *Account) ProviderID(provider string) string {
	switch provider {
	case ProviderGoogle:
		return a.GoogleID
	case ProviderFacebook:
		return a.FacebookID
	}
	return ""
}

// SetProviderID assigns the provider scoped identifier. Unknown providers are
// ignored; callers validate the name before they get here.
func (a *Account) SetProviderID(provider, id string) {
	switch provider {
	case ProviderGoogle:
		a.GoogleID = id
	case ProviderFacebook:
		a.FacebookID = id
	}
}

// providerColumn maps a provider name to its accounts column.
func providerColumn(provider string) (string, bool) {
	switch provider {
	case ProviderGoogle:
		return "google_id", true
	case ProviderFacebook:
		return "facebook_id", true
	}
	return "", false
}
