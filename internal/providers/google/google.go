// Package google implements the Google adapter. The profile is read from the
// OpenID Connect id_token, either returned by the code exchange or passed
// directly as the access artifact.
package google

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"

	"github.com/dropDatabas3/socialconnect/internal/providers"
)

const ProviderName = providers.Google

const (
	DefaultTokenURL = "https://oauth2.googleapis.com/token"
	DefaultJWKSURL  = "https://www.googleapis.com/oauth2/v3/certs"

	jwksTTL = time.Hour
	// jwksMinRefresh acota los refetch provocados por kids desconocidos.
	jwksMinRefresh = time.Minute
	leeway         = 30 * time.Second
)

var DefaultIssuers = []string{"https://accounts.google.com", "accounts.google.com"}

var (
	ErrNoClientID = errors.New("client_id required to verify id_token")
	ErrBadIssuer  = errors.New("unexpected id_token issuer")
	ErrUnknownKid = errors.New("id_token signed with unknown key")
)

type Adapter struct {
	Client   *providers.Client
	TokenURL string
	JWKSURL  string
	Issuers  []string

	// Verify checks the id_token signature against Google's JWKS together
	// with iss, aud and exp. When false the token is only decoded.
	Verify bool

	now func() time.Time

	mu     sync.RWMutex
	keys   map[string]any
	keysAt time.Time
}

func New(c *providers.Client, verify bool) *Adapter {
	return &Adapter{
		Client:   c,
		TokenURL: DefaultTokenURL,
		JWKSURL:  DefaultJWKSURL,
		Issuers:  DefaultIssuers,
		Verify:   verify,
		now:      time.Now,
	}
}

func (a *Adapter) Name() providers.Name { return ProviderName }

func (a *Adapter) FetchProfile(ctx context.Context, artifact string, q providers.Query, creds providers.Credentials) (providers.RawProfile, error) {
	idToken := artifact
	if q.Code != "" {
		tok, err := a.Client.Exchange(ctx, ProviderName, oauth2.Endpoint{TokenURL: a.TokenURL}, creds, q.Code)
		if err != nil {
			return providers.RawProfile{}, err
		}
		idToken, _ = tok.Extra("id_token").(string)
		if idToken == "" {
			return providers.RawProfile{}, &providers.ProviderError{Provider: ProviderName, Op: "token_exchange", Cause: providers.ErrMissingToken}
		}
	}

	claims, err := a.claims(ctx, idToken, creds.ClientID)
	if err != nil {
		return providers.RawProfile{}, providers.Wrap(ProviderName, "id_token", err)
	}
	email := strClaim(claims, "email")
	return providers.RawProfile{Subject: strClaim(claims, "sub"), Username: email, Email: email}, nil
}

func (a *Adapter) claims(ctx context.Context, idToken, clientID string) (jwtv5.MapClaims, error) {
	claims := jwtv5.MapClaims{}
	if !a.Verify {
		if _, _, err := jwtv5.NewParser().ParseUnverified(idToken, claims); err != nil {
			return nil, err
		}
		return claims, nil
	}

	if clientID == "" {
		return nil, ErrNoClientID
	}
	parser := jwtv5.NewParser(
		jwtv5.WithValidMethods([]string{"RS256"}),
		jwtv5.WithAudience(clientID),
		jwtv5.WithExpirationRequired(),
		jwtv5.WithLeeway(leeway),
		jwtv5.WithTimeFunc(a.now),
	)
	_, err := parser.ParseWithClaims(idToken, claims, func(t *jwtv5.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		return a.key(ctx, kid)
	})
	if err != nil {
		return nil, err
	}
	if !slices.Contains(a.Issuers, strClaim(claims, "iss")) {
		return nil, fmt.Errorf("%w: %q", ErrBadIssuer, strClaim(claims, "iss"))
	}
	return claims, nil
}

// key returns the public key for kid, refreshing the JWKS when the cache is
// stale or does not know kid. Unknown kids refetch at most once per
// jwksMinRefresh.
func (a *Adapter) key(ctx context.Context, kid string) (any, error) {
	a.mu.RLock()
	k, ok := a.keys[kid]
	fresh := a.now().Sub(a.keysAt) < jwksTTL
	a.mu.RUnlock()
	if ok && fresh {
		return k, nil
	}
	if !ok && a.now().Sub(a.keysAt) < jwksMinRefresh {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKid, kid)
	}

	var set jwks
	if err := a.Client.GetJSON(ctx, ProviderName, "jwks", a.JWKSURL, &set); err != nil {
		return nil, err
	}
	keys, err := set.rsaKeys()
	if err != nil {
		return nil, err
	}
	a.mu.Lock()
	a.keys = keys
	a.keysAt = a.now()
	a.mu.Unlock()

	if k, ok := keys[kid]; ok {
		return k, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKid, kid)
}

func strClaim(m jwtv5.MapClaims, k string) string {
	s, _ := m[k].(string)
	return s
}
