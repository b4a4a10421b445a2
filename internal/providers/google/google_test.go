package google

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/socialconnect/internal/providers"
)

const clientID = "google-client"

type fakeGoogle struct {
	key       *rsa.PrivateKey
	kid       string
	jwksCalls atomic.Int32
	idToken   string
}

func newFakeGoogle(t *testing.T) *fakeGoogle {
	k, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return &fakeGoogle{key: k, kid: "kid-1"}
}

func (f *fakeGoogle) sign(t *testing.T, claims jwtv5.MapClaims) string {
	tok := jwtv5.NewWithClaims(jwtv5.SigningMethodRS256, claims)
	tok.Header["kid"] = f.kid
	s, err := tok.SignedString(f.key)
	require.NoError(t, err)
	return s
}

func (f *fakeGoogle) server(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/certs", func(w http.ResponseWriter, r *http.Request) {
		f.jwksCalls.Add(1)
		pub := f.key.PublicKey
		_ = json.NewEncoder(w).Encode(jwks{Keys: []jwk{{
			Kty: "RSA", Alg: "RS256", Kid: f.kid,
			N: base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
			E: base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
		}}})
	})
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))
		assert.Equal(t, "https://app.test/connect/google/callback", r.PostForm.Get("redirect_uri"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "ya29.token", "token_type": "Bearer", "expires_in": 3599, "id_token": f.idToken,
		})
	})
	return httptest.NewServer(mux)
}

func validClaims() jwtv5.MapClaims {
	return jwtv5.MapClaims{
		"iss":   "https://accounts.google.com",
		"aud":   clientID,
		"sub":   "1234567890",
		"email": "Ann@Gmail.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
		"iat":   time.Now().Unix(),
	}
}

func newAdapter(srv *httptest.Server, verify bool) *Adapter {
	a := New(providers.NewClient(time.Second, ""), verify)
	a.TokenURL = srv.URL + "/token"
	a.JWKSURL = srv.URL + "/certs"
	return a
}

var creds = providers.Credentials{ClientID: clientID, ClientSecret: "s", RedirectURI: "https://app.test/connect/google/callback"}

func TestFetchProfile_VerifiedIDToken(t *testing.T) {
	f := newFakeGoogle(t)
	srv := f.server(t)
	defer srv.Close()
	a := newAdapter(srv, true)

	tok := f.sign(t, validClaims())
	raw, err := a.FetchProfile(context.Background(), tok, providers.Query{AccessToken: tok}, creds)
	require.NoError(t, err)
	assert.Equal(t, "Ann@Gmail.com", raw.Username)
	assert.Equal(t, "Ann@Gmail.com", raw.Email)
	assert.Equal(t, "1234567890", raw.Subject)

	_, err = a.FetchProfile(context.Background(), tok, providers.Query{AccessToken: tok}, creds)
	require.NoError(t, err)
	assert.EqualValues(t, 1, f.jwksCalls.Load(), "jwks should be cached")
}

func TestFetchProfile_CodeExchangeUsesIDToken(t *testing.T) {
	f := newFakeGoogle(t)
	f.idToken = f.sign(t, validClaims())
	srv := f.server(t)
	defer srv.Close()

	raw, err := newAdapter(srv, true).FetchProfile(context.Background(), "4/0Ab", providers.Query{Code: "4/0Ab"}, creds)
	require.NoError(t, err)
	assert.Equal(t, "Ann@Gmail.com", raw.Email)
}

func TestFetchProfile_ExchangeWithoutIDToken(t *testing.T) {
	f := newFakeGoogle(t)
	srv := f.server(t)
	defer srv.Close()

	_, err := newAdapter(srv, true).FetchProfile(context.Background(), "c", providers.Query{Code: "c"}, creds)
	assert.ErrorIs(t, err, providers.ErrMissingToken)
}

func TestFetchProfile_RejectsWrongAudience(t *testing.T) {
	f := newFakeGoogle(t)
	srv := f.server(t)
	defer srv.Close()

	claims := validClaims()
	claims["aud"] = "someone-else"
	tok := f.sign(t, claims)
	_, err := newAdapter(srv, true).FetchProfile(context.Background(), tok, providers.Query{AccessToken: tok}, creds)
	var pe *providers.ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "id_token", pe.Op)
}

func TestFetchProfile_RejectsWrongIssuer(t *testing.T) {
	f := newFakeGoogle(t)
	srv := f.server(t)
	defer srv.Close()

	claims := validClaims()
	claims["iss"] = "https://evil.example"
	tok := f.sign(t, claims)
	_, err := newAdapter(srv, true).FetchProfile(context.Background(), tok, providers.Query{AccessToken: tok}, creds)
	assert.ErrorIs(t, err, ErrBadIssuer)
}

func TestFetchProfile_RejectsExpired(t *testing.T) {
	f := newFakeGoogle(t)
	srv := f.server(t)
	defer srv.Close()

	claims := validClaims()
	claims["exp"] = time.Now().Add(-time.Hour).Unix()
	tok := f.sign(t, claims)
	_, err := newAdapter(srv, true).FetchProfile(context.Background(), tok, providers.Query{AccessToken: tok}, creds)
	assert.ErrorIs(t, err, jwtv5.ErrTokenExpired)
}

func TestFetchProfile_RejectsForeignSignature(t *testing.T) {
	f := newFakeGoogle(t)
	srv := f.server(t)
	defer srv.Close()

	other := newFakeGoogle(t)
	tok := other.sign(t, validClaims())
	_, err := newAdapter(srv, true).FetchProfile(context.Background(), tok, providers.Query{AccessToken: tok}, creds)
	assert.ErrorIs(t, err, jwtv5.ErrTokenSignatureInvalid)
}

func TestFetchProfile_VerifyNeedsClientID(t *testing.T) {
	f := newFakeGoogle(t)
	srv := f.server(t)
	defer srv.Close()

	tok := f.sign(t, validClaims())
	_, err := newAdapter(srv, true).FetchProfile(context.Background(), tok, providers.Query{AccessToken: tok}, providers.Credentials{})
	assert.ErrorIs(t, err, ErrNoClientID)
}

func TestFetchProfile_UnverifiedDecode(t *testing.T) {
	f := newFakeGoogle(t)
	srv := f.server(t)
	defer srv.Close()

	other := newFakeGoogle(t)
	claims := validClaims()
	claims["aud"] = "anything"
	tok := other.sign(t, claims)

	raw, err := newAdapter(srv, false).FetchProfile(context.Background(), tok, providers.Query{AccessToken: tok}, providers.Credentials{})
	require.NoError(t, err)
	assert.Equal(t, "Ann@Gmail.com", raw.Email)
	assert.EqualValues(t, 0, f.jwksCalls.Load())

	_, err = newAdapter(srv, false).FetchProfile(context.Background(), "not-a-jwt", providers.Query{AccessToken: "not-a-jwt"}, providers.Credentials{})
	assert.Error(t, err)
}

func TestFetchProfile_UnknownKidRefetchIsThrottled(t *testing.T) {
	f := newFakeGoogle(t)
	srv := f.server(t)
	defer srv.Close()
	a := newAdapter(srv, true)

	clock := time.Now()
	a.now = func() time.Time { return clock }

	tok := f.sign(t, validClaims())
	_, err := a.FetchProfile(context.Background(), tok, providers.Query{AccessToken: tok}, creds)
	require.NoError(t, err)
	require.EqualValues(t, 1, f.jwksCalls.Load())

	forger := newFakeGoogle(t)
	forger.kid = "forged"
	forged := forger.sign(t, validClaims())
	for i := 0; i < 5; i++ {
		_, err = a.FetchProfile(context.Background(), forged, providers.Query{AccessToken: forged}, creds)
		assert.ErrorIs(t, err, ErrUnknownKid)
	}
	assert.EqualValues(t, 1, f.jwksCalls.Load(), "unknown kid must not refetch within the refresh floor")

	clock = clock.Add(jwksMinRefresh + time.Second)
	_, err = a.FetchProfile(context.Background(), forged, providers.Query{AccessToken: forged}, creds)
	assert.ErrorIs(t, err, ErrUnknownKid)
	assert.EqualValues(t, 2, f.jwksCalls.Load())
}
