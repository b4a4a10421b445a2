// Package vk implements the VK adapter. VK returns names only; the email is
// the one VK handed to the OAuth middleware (raw[email]).
package vk

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/dropDatabas3/socialconnect/internal/providers"
)

const ProviderName = providers.VK

const (
	DefaultUsersURL = "https://api.vk.com/method/users.get"
	APIVersion      = "5.013"
)

type Adapter struct {
	Client   *providers.Client
	UsersURL string
}

func New(c *providers.Client) *Adapter {
	return &Adapter{Client: c, UsersURL: DefaultUsersURL}
}

func (a *Adapter) Name() providers.Name { return ProviderName }

type usersGet struct {
	Response []struct {
		ID        int64  `json:"id"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	} `json:"response"`
	Error *struct {
		Code int    `json:"error_code"`
		Msg  string `json:"error_msg"`
	} `json:"error"`
}

func (a *Adapter) FetchProfile(ctx context.Context, artifact string, q providers.Query, _ providers.Credentials) (providers.RawProfile, error) {
	var body usersGet
	err := a.Client.GetJSON(ctx, ProviderName, "users.get", a.UsersURL, &body,
		providers.Params(url.Values{
			"access_token": {artifact},
			"id":           {q.RawValue("user_id")},
			"v":            {APIVersion},
		}))
	if err != nil {
		return providers.RawProfile{}, err
	}
	// VK reports API errors with HTTP 200.
	if body.Error != nil {
		return providers.RawProfile{}, &providers.ProviderError{
			Provider: ProviderName, Op: "users.get",
			Cause: fmt.Errorf("vk error %d: %s", body.Error.Code, body.Error.Msg),
		}
	}
	if len(body.Response) == 0 {
		return providers.RawProfile{}, &providers.ProviderError{Provider: ProviderName, Op: "users.get", Cause: providers.ErrIncompleteProfile}
	}
	u := body.Response[0]
	return providers.RawProfile{
		Subject:  strconv.FormatInt(u.ID, 10),
		Username: u.LastName + " " + u.FirstName,
		Email:    q.RawValue("email"),
	}, nil
}
