package providers

import (
	"context"
	"net/url"
	"strings"
)

// Name identifies an identity provider.
type Name string

const (
	GitHub    Name = "github"
	Google    Name = "google"
	Facebook  Name = "facebook"
	Discord   Name = "discord"
	Twitter   Name = "twitter"
	Instagram Name = "instagram"
	VK        Name = "vk"
	Twitch    Name = "twitch"
	Microsoft Name = "microsoft"
)

// All lists every supported provider.
var All = []Name{GitHub, Google, Facebook, Discord, Twitter, Instagram, VK, Twitch, Microsoft}

func (n Name) String() string { return string(n) }

// Query is the callback payload handed over by the OAuth middleware.
type Query struct {
	AccessToken  string
	Code         string
	OAuthToken   string
	AccessSecret string

	// Raw holds provider specific extras sent as raw[key]=value
	// (raw[user_id], raw[email], raw[screen_name]).
	Raw map[string]string
}

// ParseQuery reads a Query from callback query parameters.
func ParseQuery(v url.Values) Query {
	q := Query{
		AccessToken:  v.Get("access_token"),
		Code:         v.Get("code"),
		OAuthToken:   v.Get("oauth_token"),
		AccessSecret: v.Get("access_secret"),
		Raw:          map[string]string{},
	}
	for k, vals := range v {
		if len(vals) == 0 || !strings.HasPrefix(k, "raw[") || !strings.HasSuffix(k, "]") {
			continue
		}
		q.Raw[k[len("raw["):len(k)-1]] = vals[0]
	}
	return q
}

// Artifact returns access_token, code or oauth_token, in that order.
func (q Query) Artifact() string {
	switch {
	case q.AccessToken != "":
		return q.AccessToken
	case q.Code != "":
		return q.Code
	default:
		return q.OAuthToken
	}
}

func (q Query) HasArtifact() bool { return q.Artifact() != "" }

// RawValue returns q.Raw[key] or "".
func (q Query) RawValue(key string) string {
	if q.Raw == nil {
		return ""
	}
	return q.Raw[key]
}

// Credentials are the resolved OAuth client settings of one provider.
// ClientID/ClientSecret/RedirectURI serve code exchanges; Key/Secret are the
// static application keys some providers need on every call.
type Credentials struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	Key          string
	Secret       string
}

// RawProfile is what an adapter read from its provider, before normalization.
type RawProfile struct {
	Subject  string
	Username string
	Email    string
}

// Profile is the provider independent identity. An empty Email means the
// provider did not disclose one.
type Profile struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

func (p Profile) HasEmail() bool { return p.Email != "" }

// Adapter fetches the profile behind an access artifact for one provider.
// artifact is Query.Artifact(); adapters that exchange codes look at
// Query.Code themselves.
type Adapter interface {
	Name() Name
	FetchProfile(ctx context.Context, artifact string, q Query, creds Credentials) (RawProfile, error)
}
