package social

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/socialconnect/internal/providers"
	"github.com/dropDatabas3/socialconnect/internal/providers/github"
	"github.com/dropDatabas3/socialconnect/internal/settings"
	"github.com/dropDatabas3/socialconnect/internal/store/memory"
)

type fakeAdapter struct {
	name providers.Name
	raw  providers.RawProfile
	err  error

	mu       sync.Mutex
	calls    int
	artifact string
	creds    providers.Credentials
}

func (f *fakeAdapter) Name() providers.Name { return f.name }

func (f *fakeAdapter) FetchProfile(_ context.Context, artifact string, _ providers.Query, creds providers.Credentials) (providers.RawProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.artifact = artifact
	f.creds = creds
	return f.raw, f.err
}

func grants() map[string]settings.Grant {
	return map[string]settings.Grant{
		"github":   {Enabled: true, Key: "gh-key", Secret: "gh-secret", Callback: "https://app.test/gh"},
		"google":   {Enabled: true, Key: "g-key", Secret: "g-secret"},
		"facebook": {Enabled: false},
	}
}

type fixture struct {
	store   *memory.Store
	adapter *fakeAdapter
	svc     *Service
}

func newFixture(t *testing.T, adv settings.Advanced, raw providers.RawProfile) *fixture {
	t.Helper()
	st := memory.New(memory.DefaultRoles()...)
	fa := &fakeAdapter{name: providers.GitHub, raw: raw}
	svc := NewService(Deps{
		Registry: providers.NewRegistry(fa),
		Settings: settings.NewStatic(grants(), adv),
		Users:    st,
		Roles:    st,
	})
	return &fixture{store: st, adapter: fa, svc: svc}
}

var token = providers.Query{AccessToken: "tok"}

func TestConnect_CreatesUserWithDefaultRole(t *testing.T) {
	f := newFixture(t, settings.DefaultAdvanced(), providers.RawProfile{Username: "octocat", Email: "Octo@GitHub.test"})

	out, err := f.svc.Connect(context.Background(), "github", token)
	require.NoError(t, err)
	require.Equal(t, CreatedUser, out.Kind)
	assert.Equal(t, "octocat", out.User.Username)
	assert.Equal(t, "octo@github.test", out.User.Email)
	assert.Equal(t, "github", out.User.Provider)
	assert.Equal(t, "1", out.User.RoleID)
	assert.True(t, out.User.Confirmed)
	assert.Equal(t, "tok", f.adapter.artifact)
}

func TestConnect_IdempotentForRegisteredUser(t *testing.T) {
	f := newFixture(t, settings.DefaultAdvanced(), providers.RawProfile{Username: "octocat", Email: "octo@github.test"})
	ctx := context.Background()

	first, err := f.svc.Connect(ctx, "github", token)
	require.NoError(t, err)
	require.Equal(t, CreatedUser, first.Kind)

	for range 2 {
		out, err := f.svc.Connect(ctx, "github", token)
		require.NoError(t, err)
		assert.Equal(t, ExistingUser, out.Kind)
		assert.Equal(t, first.User.ID, out.User.ID)
	}
	assert.Equal(t, 1, f.store.Count())
}

func TestConnect_DisabledAndUnknownProviders(t *testing.T) {
	f := newFixture(t, settings.DefaultAdvanced(), providers.RawProfile{Username: "u", Email: "u@x.test"})

	for _, name := range []string{"facebook", "myspace"} {
		_, err := f.svc.Connect(context.Background(), name, token)
		require.Error(t, err, name)
		assert.True(t, IsConfigError(err), name)
		assert.ErrorIs(t, err, ErrProviderDisabled, name)
	}
	assert.Zero(t, f.adapter.calls)
}

func TestConnect_EnabledWithoutAdapter(t *testing.T) {
	f := newFixture(t, settings.DefaultAdvanced(), providers.RawProfile{})

	_, err := f.svc.Connect(context.Background(), "google", token)
	assert.True(t, IsConfigError(err))
	assert.ErrorIs(t, err, providers.ErrUnknownProvider)
}

func TestConnect_NoArtifactShortCircuits(t *testing.T) {
	f := newFixture(t, settings.DefaultAdvanced(), providers.RawProfile{Username: "u", Email: "u@x.test"})

	out, err := f.svc.Connect(context.Background(), "github", providers.Query{})
	require.NoError(t, err)
	assert.Equal(t, Rejected, out.Kind)
	assert.Equal(t, RejectNoAccessArtifact, *out.Rejection)
	assert.Zero(t, f.adapter.calls)
}

func TestConnect_ProviderErrorPropagates(t *testing.T) {
	f := newFixture(t, settings.DefaultAdvanced(), providers.RawProfile{})
	f.adapter.err = providers.Wrap(providers.GitHub, "user", &providers.StatusError{Code: 401})

	_, err := f.svc.Connect(context.Background(), "github", token)
	var pe *providers.ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, providers.GitHub, pe.Provider)
	assert.Zero(t, f.store.Count())
}

func TestConnect_MergesCredentials(t *testing.T) {
	st := memory.New(memory.DefaultRoles()...)
	fa := &fakeAdapter{name: providers.GitHub, raw: providers.RawProfile{Username: "u", Email: "u@x.test"}}
	svc := NewService(Deps{
		Registry: providers.NewRegistry(fa),
		Settings: settings.NewStatic(grants(), settings.DefaultAdvanced()),
		Users:    st,
		Roles:    st,
		Explicit: map[string]ExplicitCredentials{"github": {ClientID: "env-id"}},
	})

	_, err := svc.Connect(context.Background(), "github", providers.Query{Code: "c"})
	require.NoError(t, err)
	assert.Equal(t, "c", fa.artifact)
	assert.Equal(t, providers.Credentials{
		ClientID: "env-id", ClientSecret: "gh-secret", RedirectURI: "https://app.test/gh",
		Key: "gh-key", Secret: "gh-secret",
	}, fa.creds)
}

func TestConnect_GitHubWithoutPrimaryEmailIsRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/user":
			_, _ = w.Write([]byte(`{"id":1,"login":"octocat","email":null}`))
		case "/user/emails":
			_, _ = w.Write([]byte(`[{"email":"a@x.test","primary":false,"verified":true}]`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	gh := github.New(providers.NewClient(time.Second, ""))
	gh.UserURL = srv.URL + "/user"
	gh.EmailsURL = srv.URL + "/user/emails"
	st := memory.New(memory.DefaultRoles()...)
	svc := NewService(Deps{
		Registry: providers.NewRegistry(gh),
		Settings: settings.NewStatic(grants(), settings.DefaultAdvanced()),
		Users:    st,
		Roles:    st,
	})

	out, err := svc.Connect(context.Background(), "github", token)
	require.NoError(t, err)
	require.Equal(t, Rejected, out.Kind)
	assert.Equal(t, EmailMissing, out.Rejection.Kind)
}

func TestEnabledProviders_MatchesStore(t *testing.T) {
	f := newFixture(t, settings.DefaultAdvanced(), providers.RawProfile{})

	got, err := f.svc.EnabledProviders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"github": true, "google": true, "facebook": false}, got)

	ok, err := f.svc.Gate().IsEnabled(context.Background(), "twitch")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMergeCredentials(t *testing.T) {
	g := settings.Grant{Key: "k", Secret: "s", Callback: "cb"}

	assert.Equal(t, providers.Credentials{ClientID: "k", ClientSecret: "s", RedirectURI: "cb", Key: "k", Secret: "s"},
		MergeCredentials(ExplicitCredentials{}, g))
	assert.Equal(t, providers.Credentials{ClientID: "id", ClientSecret: "sec", RedirectURI: "r", Key: "k", Secret: "s"},
		MergeCredentials(ExplicitCredentials{ClientID: "id", ClientSecret: "sec", RedirectURL: "r"}, g))
	assert.Equal(t, providers.Credentials{}, MergeCredentials(ExplicitCredentials{}, settings.Grant{}))
}

type erroringSource struct{ settings.Source }

func (erroringSource) Grants(context.Context) (map[string]settings.Grant, error) {
	return nil, errors.New("store down")
}

func TestConnect_SettingsFailureIsNotConfigError(t *testing.T) {
	st := memory.New()
	svc := NewService(Deps{Registry: providers.NewRegistry(), Settings: erroringSource{}, Users: st, Roles: st})

	_, err := svc.Connect(context.Background(), "github", token)
	require.Error(t, err)
	assert.False(t, IsConfigError(err))
}
