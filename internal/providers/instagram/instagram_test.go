package instagram

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

func TestFetchProfile_SynthesizesEmail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "ig-token", r.URL.Query().Get("access_token"))
		_, _ = w.Write([]byte(`{"data":{"id":"1574083","username":"bob","full_name":"Bob"}}`))
	}))
	defer srv.Close()

	a := New(providers.NewClient(time.Second, ""), "")
	a.ProfileURL = srv.URL
	raw, err := a.FetchProfile(context.Background(), "ig-token", providers.Query{AccessToken: "ig-token"}, providers.Credentials{})
	require.NoError(t, err)
	assert.Equal(t, "bob", raw.Username)
	assert.Equal(t, "bob@strapi.io", raw.Email)
}

func TestFetchProfile_CustomDomain(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"username":"bob"}}`))
	}))
	defer srv.Close()

	a := New(providers.NewClient(time.Second, ""), "users.example.org")
	a.ProfileURL = srv.URL
	raw, err := a.FetchProfile(context.Background(), "t", providers.Query{}, providers.Credentials{})
	require.NoError(t, err)
	assert.Equal(t, "bob@users.example.org", raw.Email)
}

func TestPlaceholderEmail(t *testing.T) {
	assert.Equal(t, "", PlaceholderEmail("", "strapi.io"))
	assert.Equal(t, "x@d", PlaceholderEmail("x", "d"))
}
