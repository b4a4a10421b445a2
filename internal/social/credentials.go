package social

import (
	"github.com/dropDatabas3/socialconnect/internal/providers"
	"github.com/dropDatabas3/socialconnect/internal/settings"
)

// ExplicitCredentials are the per-provider OAuth client settings from the
// service configuration. They take precedence over the grant store.
type ExplicitCredentials struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// MergeCredentials resolves the credentials handed to an adapter. Key and
// Secret always come from the grant.
func MergeCredentials(explicit ExplicitCredentials, grant settings.Grant) providers.Credentials {
	return providers.Credentials{
		ClientID:     firstNonEmpty(explicit.ClientID, grant.Key),
		ClientSecret: firstNonEmpty(explicit.ClientSecret, grant.Secret),
		RedirectURI:  firstNonEmpty(explicit.RedirectURL, grant.Callback),
		Key:          grant.Key,
		Secret:       grant.Secret,
	}
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
