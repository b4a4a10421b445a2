// Package github implements the GitHub adapter. GitHub has no ID token: the
// profile comes from /user and, when the public email is empty, from the
// primary entry of /user/emails.
package github

import (
	"context"
	"strconv"

	"golang.org/x/oauth2"

	"github.com/dropDatabas3/socialconnect/internal/providers"
)

const ProviderName = providers.GitHub

const (
	DefaultTokenURL  = "https://github.com/login/oauth/access_token"
	DefaultUserURL   = "https://api.github.com/user"
	DefaultEmailsURL = "https://api.github.com/user/emails"
)

type Adapter struct {
	Client    *providers.Client
	TokenURL  string
	UserURL   string
	EmailsURL string
}

func New(c *providers.Client) *Adapter {
	return &Adapter{
		Client:    c,
		TokenURL:  DefaultTokenURL,
		UserURL:   DefaultUserURL,
		EmailsURL: DefaultEmailsURL,
	}
}

func (a *Adapter) Name() providers.Name { return ProviderName }

type userInfo struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
	Email string `json:"email"`
}

type emailInfo struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

func (a *Adapter) FetchProfile(ctx context.Context, artifact string, q providers.Query, creds providers.Credentials) (providers.RawProfile, error) {
	token := artifact
	if q.Code != "" {
		tok, err := a.Client.Exchange(ctx, ProviderName, oauth2.Endpoint{TokenURL: a.TokenURL}, creds, q.Code)
		if err != nil {
			return providers.RawProfile{}, err
		}
		token = tok.AccessToken
	}

	var u userInfo
	if err := a.Client.GetJSON(ctx, ProviderName, "user", a.UserURL, &u, providers.Bearer(token)); err != nil {
		return providers.RawProfile{}, err
	}
	raw := providers.RawProfile{Subject: strconv.FormatInt(u.ID, 10), Username: u.Login, Email: u.Email}
	if raw.Email != "" {
		return raw, nil
	}

	var emails []emailInfo
	if err := a.Client.GetJSON(ctx, ProviderName, "user_emails", a.EmailsURL, &emails, providers.Bearer(token)); err != nil {
		return providers.RawProfile{}, err
	}
	raw.Email = primaryEmail(emails)
	return raw, nil
}

// primaryEmail returns the entry flagged primary, or "" when there is none.
func primaryEmail(emails []emailInfo) string {
	for _, e := range emails {
		if e.Primary {
			return e.Email
		}
	}
	return ""
}
