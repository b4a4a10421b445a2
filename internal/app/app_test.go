package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/socialconnect/internal/config"
	"github.com/dropDatabas3/socialconnect/internal/settings"
)

func testConfig() *config.Config {
	c := config.Default()
	c.JWT.Secret = "app-test-secret-0123456789"
	c.Rate.Enabled = true
	c.Grant = map[string]settings.Grant{
		"github": {Enabled: true, Key: "k", Secret: "s"},
		"vk":     {Enabled: false},
	}
	return c
}

func newApp(t *testing.T, c *config.Config) *App {
	t.Helper()
	reg := prometheus.NewRegistry()
	a, err := New(context.Background(), c, Options{Registerer: reg, Gatherer: reg})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestNew_WiresMemoryStack(t *testing.T) {
	a := newApp(t, testConfig())

	enabled, err := a.Service.EnabledProviders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"github": true, "vk": false}, enabled)

	for path, want := range map[string]int{
		"/healthz":                  http.StatusOK,
		"/providers":                http.StatusOK,
		"/metrics":                  http.StatusOK,
		"/connect/vk/callback":      http.StatusBadRequest,
		"/connect/github/callback":  http.StatusBadRequest,
		"/connect/unknown/callback": http.StatusBadRequest,
		"/does-not-exist":           http.StatusNotFound,
	} {
		rec := httptest.NewRecorder()
		a.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, want, rec.Code, path)
	}
}

func TestNew_EncryptedSecretWithoutKeyFailsOnRead(t *testing.T) {
	t.Setenv("SECRETBOX_MASTER_KEY", "")
	c := testConfig()
	c.Grant["github"] = settings.Grant{Enabled: true, Secret: "enc:abc|def"}
	a := newApp(t, c)

	_, err := a.Settings.Grants(context.Background())
	assert.Error(t, err)
}

func TestNew_PostgresSettingsNeedPostgresStore(t *testing.T) {
	c := testConfig()
	c.Settings.Source = "postgres"
	_, err := New(context.Background(), c, Options{Registerer: prometheus.NewRegistry()})
	assert.ErrorContains(t, err, "requires storage driver postgres")
}
