// Package twitter implements the Twitter adapter over OAuth 1.0a. The
// consumer key/secret are the application keys from the grant store; the
// user token is the callback's oauth_token plus access_secret.
package twitter

import (
	"context"
	"net/url"

	"github.com/dghubble/oauth1"

	"github.com/dropDatabas3/socialconnect/internal/providers"
)

const ProviderName = providers.Twitter

const DefaultVerifyURL = "https://api.twitter.com/1.1/account/verify_credentials.json"

type Adapter struct {
	Client    *providers.Client
	VerifyURL string
}

func New(c *providers.Client) *Adapter {
	return &Adapter{Client: c, VerifyURL: DefaultVerifyURL}
}

func (a *Adapter) Name() providers.Name { return ProviderName }

type credentials struct {
	IDStr      string `json:"id_str"`
	ScreenName string `json:"screen_name"`
	Email      string `json:"email"`
}

func (a *Adapter) FetchProfile(ctx context.Context, artifact string, q providers.Query, creds providers.Credentials) (providers.RawProfile, error) {
	cfg := oauth1.NewConfig(creds.Key, creds.Secret)
	base := context.WithValue(ctx, oauth1.HTTPClient, a.Client.HTTP())
	signed := a.Client.WithHTTP(cfg.Client(base, oauth1.NewToken(artifact, q.AccessSecret)))

	var c credentials
	err := signed.GetJSON(ctx, ProviderName, "verify_credentials", a.VerifyURL, &c,
		providers.Params(url.Values{
			"screen_name":   {q.RawValue("screen_name")},
			"include_email": {"true"},
		}))
	if err != nil {
		return providers.RawProfile{}, err
	}
	return providers.RawProfile{Subject: c.IDStr, Username: c.ScreenName, Email: c.Email}, nil
}
