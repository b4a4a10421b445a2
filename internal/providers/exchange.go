package providers

import (
	"context"
	"errors"

	"golang.org/x/oauth2"
)

// Exchange trades an authorization code for a token at endpoint using the
// client credentials of creds. Credentials are always sent in the request
// body so no second, differently authenticated attempt is ever made.
func (c *Client) Exchange(ctx context.Context, provider Name, endpoint oauth2.Endpoint, creds Credentials, code string) (*oauth2.Token, error) {
	endpoint.AuthStyle = oauth2.AuthStyleInParams
	cfg := oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		RedirectURL:  creds.RedirectURI,
		Endpoint:     endpoint,
	}

	var tok *oauth2.Token
	err := c.Call(ctx, provider, "token_exchange", func(ctx context.Context) error {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, c.http)
		t, err := cfg.Exchange(ctx, code)
		if err != nil {
			var re *oauth2.RetrieveError
			if errors.As(err, &re) && re.Response != nil {
				return &StatusError{Code: re.Response.StatusCode, Body: truncate(string(re.Body), maxErrorBody)}
			}
			return err
		}
		if t.AccessToken == "" {
			return ErrMissingToken
		}
		tok = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tok, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
