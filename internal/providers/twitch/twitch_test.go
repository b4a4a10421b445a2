package twitch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/socialconnect/internal/providers"
)

func TestFetchProfile_SendsClientIDFromGrantKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tw-token", r.Header.Get("Authorization"))
		assert.Equal(t, "grant-key", r.Header.Get("Client-ID"))
		_, _ = w.Write([]byte(`{"data":[{"id":"141981764","login":"twitchdev","email":"dev@twitch.test"}]}`))
	}))
	defer srv.Close()

	a := New(providers.NewClient(time.Second, ""))
	a.UsersURL = srv.URL
	raw, err := a.FetchProfile(context.Background(), "tw-token", providers.Query{AccessToken: "tw-token"},
		providers.Credentials{ClientID: "explicit-id", Key: "grant-key"})
	require.NoError(t, err)
	assert.Equal(t, "twitchdev", raw.Username)
	assert.Equal(t, "dev@twitch.test", raw.Email)
}

func TestFetchProfile_EmptyData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	a := New(providers.NewClient(time.Second, ""))
	a.UsersURL = srv.URL
	_, err := a.FetchProfile(context.Background(), "t", providers.Query{}, providers.Credentials{})
	assert.ErrorIs(t, err, providers.ErrIncompleteProfile)
}
