package providers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestParseQuery(t *testing.T) {
	v := url.Values{}
	v.Set("code", "abc")
	v.Set("access_secret", "s")
	v.Set("raw[user_id]", "42")
	v.Set("raw[email]", "ivan@vk.test")
	v.Set("rawbogus", "x")

	q := ParseQuery(v)
	assert.Equal(t, "abc", q.Code)
	assert.Equal(t, "s", q.AccessSecret)
	assert.Equal(t, map[string]string{"user_id": "42", "email": "ivan@vk.test"}, q.Raw)
	assert.Equal(t, "42", q.RawValue("user_id"))
	assert.Equal(t, "", Query{}.RawValue("user_id"))
}

func TestQuery_ArtifactPrecedence(t *testing.T) {
	assert.Equal(t, "at", Query{AccessToken: "at", Code: "c", OAuthToken: "ot"}.Artifact())
	assert.Equal(t, "c", Query{Code: "c", OAuthToken: "ot"}.Artifact())
	assert.Equal(t, "ot", Query{OAuthToken: "ot"}.Artifact())
	assert.False(t, Query{AccessSecret: "only-secret"}.HasArtifact())
}

func TestNormalize(t *testing.T) {
	p, err := Normalize(GitHub, RawProfile{Username: "  octocat ", Email: " OctoCat@GitHub.com "})
	require.NoError(t, err)
	assert.Equal(t, Profile{Username: "octocat", Email: "octocat@github.com"}, p)

	p, err = Normalize(GitHub, RawProfile{Username: "octocat"})
	require.NoError(t, err)
	assert.False(t, p.HasEmail())

	_, err = Normalize(Discord, RawProfile{Email: "x@y.z"})
	var pe *ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, Discord, pe.Provider)
	assert.ErrorIs(t, err, ErrIncompleteProfile)
}

func TestWrap(t *testing.T) {
	assert.NoError(t, Wrap(GitHub, "op", nil))

	err := Wrap(GitHub, "profile", context.DeadlineExceeded)
	assert.True(t, IsTimeout(err))
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	inner := &ProviderError{Provider: Google, Op: "x", Cause: errors.New("boom")}
	assert.Same(t, inner, Wrap(GitHub, "y", inner).(*ProviderError))
}

type stubAdapter struct{ name Name }

func (s stubAdapter) Name() Name { return s.name }
func (s stubAdapter) FetchProfile(context.Context, string, Query, Credentials) (RawProfile, error) {
	return RawProfile{Username: string(s.name)}, nil
}

func TestRegistry(t *testing.T) {
	r := NewRegistry(stubAdapter{GitHub}, stubAdapter{Discord})
	require.Error(t, r.Register(stubAdapter{GitHub}))
	require.NoError(t, r.Register(stubAdapter{VK}))

	a, err := r.Get(VK)
	require.NoError(t, err)
	assert.Equal(t, VK, a.Name())

	_, err = r.Get("myspace")
	assert.ErrorIs(t, err, ErrUnknownProvider)
	assert.False(t, r.Has("myspace"))
	assert.Equal(t, []Name{Discord, GitHub, VK}, r.Names())
}

func TestClient_GetJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		assert.Equal(t, "name,email", r.URL.Query().Get("fields"))
		_ = json.NewEncoder(w).Encode(map[string]string{"name": "Ann"})
	}))
	defer srv.Close()

	c := NewClient(time.Second, "test-agent")
	var out struct{ Name string }
	err := c.GetJSON(context.Background(), Facebook, "profile", srv.URL, &out,
		Bearer("tok"), Params(url.Values{"fields": {"name,email"}}))
	require.NoError(t, err)
	assert.Equal(t, "Ann", out.Name)
}

func TestClient_GetJSON_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"Bad credentials"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	err := NewClient(time.Second, "").GetJSON(context.Background(), GitHub, "user", srv.URL, &struct{}{})
	var pe *ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "user", pe.Op)
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusUnauthorized, se.Code)
	assert.Contains(t, se.Body, "Bad credentials")
}

func TestClient_GetJSON_TimeoutMapsToErrTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	err := NewClient(30*time.Millisecond, "").GetJSON(context.Background(), Twitch, "users", srv.URL, &struct{}{})
	require.Error(t, err)
	assert.True(t, IsTimeout(err), "got %v", err)
}

func TestClient_GetJSON_DecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>"))
	}))
	defer srv.Close()

	err := NewClient(time.Second, "").GetJSON(context.Background(), VK, "users.get", srv.URL, &struct{}{})
	var pe *ProviderError
	require.ErrorAs(t, err, &pe)
	assert.False(t, IsTimeout(err))
}

func TestClient_Exchange(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))
		assert.Equal(t, "the-code", r.PostForm.Get("code"))
		assert.Equal(t, "cid", r.PostForm.Get("client_id"))
		assert.Equal(t, "csecret", r.PostForm.Get("client_secret"))
		assert.Equal(t, "https://app/cb", r.PostForm.Get("redirect_uri"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"at-1","token_type":"bearer","id_token":"idt"}`))
	}))
	defer srv.Close()

	creds := Credentials{ClientID: "cid", ClientSecret: "csecret", RedirectURI: "https://app/cb"}
	tok, err := NewClient(time.Second, "").Exchange(context.Background(), Google, oauth2.Endpoint{TokenURL: srv.URL}, creds, "the-code")
	require.NoError(t, err)
	assert.Equal(t, "at-1", tok.AccessToken)
	assert.Equal(t, "idt", tok.Extra("id_token"))
}

func TestClient_Exchange_Rejected(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
	}))
	defer srv.Close()

	_, err := NewClient(time.Second, "").Exchange(context.Background(), Facebook, oauth2.Endpoint{TokenURL: srv.URL}, Credentials{ClientID: "x"}, "bad")
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadRequest, se.Code)
	assert.Equal(t, 1, calls)
}
