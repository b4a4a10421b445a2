// Package config carga la configuración del servicio.
//
// Orden de precedencia: valores por defecto < config.yaml < variables de
// entorno. El resultado se valida antes de devolverse.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/dropDatabas3/socialconnect/internal/cache"
	"github.com/dropDatabas3/socialconnect/internal/observability/logger"
	"github.com/dropDatabas3/socialconnect/internal/observability/tracing"
	"github.com/dropDatabas3/socialconnect/internal/providers"
	"github.com/dropDatabas3/socialconnect/internal/settings"
	"github.com/dropDatabas3/socialconnect/internal/social"
	"github.com/dropDatabas3/socialconnect/internal/store"
	"github.com/dropDatabas3/socialconnect/internal/validation"
)

// EnvPath names the variable holding the config file path.
const EnvPath = "SOCIALCONNECT_CONFIG"

type Config struct {
	App struct {
		// dev | staging | prod | test
		Env     string `yaml:"env" env:"APP_ENV" validate:"oneof=dev staging prod test"`
		Name    string `yaml:"name" env:"APP_NAME" validate:"required"`
		Version string `yaml:"version" env:"APP_VERSION"`
	} `yaml:"app"`

	Server struct {
		Addr            string        `yaml:"addr" env:"SERVER_ADDR" validate:"required"`
		PublicURL       string        `yaml:"public_url" env:"SERVER_PUBLIC_URL" validate:"omitempty,url"`
		ReadTimeout     time.Duration `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT" validate:"gt=0"`
		WriteTimeout    time.Duration `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT" validate:"gt=0"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" validate:"gt=0"`
		// TrustedProxies son CIDRs o IPs cuyo X-Forwarded-For se acepta.
		TrustedProxies []string `yaml:"trusted_proxies" env:"SERVER_TRUSTED_PROXIES" validate:"dive,cidr|ip"`
	} `yaml:"server"`

	Log struct {
		Level string `yaml:"level" env:"LOG_LEVEL" validate:"oneof=debug info warn error"`
	} `yaml:"log"`

	Storage struct {
		Driver   string `yaml:"driver" env:"STORAGE_DRIVER" validate:"oneof=memory postgres"`
		DSN      string `yaml:"dsn" env:"STORAGE_DSN" validate:"required_if=Driver postgres"`
		MaxConns int    `yaml:"max_conns" env:"STORAGE_MAX_CONNS" validate:"gte=0"`
	} `yaml:"storage"`

	Cache struct {
		Kind       string        `yaml:"kind" env:"CACHE_KIND" validate:"oneof=memory redis"`
		DefaultTTL time.Duration `yaml:"default_ttl" env:"CACHE_DEFAULT_TTL"`
		Redis      struct {
			Addr     string `yaml:"addr" env:"REDIS_ADDR"`
			Password string `yaml:"password" env:"REDIS_PASSWORD"`
			DB       int    `yaml:"db" env:"REDIS_DB"`
			Prefix   string `yaml:"prefix" env:"REDIS_PREFIX"`
		} `yaml:"redis"`
	} `yaml:"cache"`

	// Settings elige de dónde se leen grant/advanced en cada request.
	Settings struct {
		Source   string        `yaml:"source" env:"SETTINGS_SOURCE" validate:"oneof=config postgres"`
		CacheTTL time.Duration `yaml:"cache_ttl" env:"SETTINGS_CACHE_TTL" validate:"gte=0"`
	} `yaml:"settings"`

	// Providers son credenciales explícitas; tienen prioridad sobre grant.
	Providers map[string]ProviderCredentials `yaml:"providers"`

	// Grant y Advanced siembran el configuration store.
	Grant    map[string]settings.Grant `yaml:"grant" validate:"dive"`
	Advanced settings.Advanced         `yaml:"advanced"`

	HTTPClient struct {
		Timeout   time.Duration `yaml:"timeout" env:"HTTP_CLIENT_TIMEOUT" validate:"gt=0"`
		UserAgent string        `yaml:"user_agent" env:"HTTP_CLIENT_USER_AGENT"`
	} `yaml:"http_client"`

	Google struct {
		VerifyIDToken bool `yaml:"verify_id_token" env:"GOOGLE_VERIFY_ID_TOKEN"`
	} `yaml:"google"`

	Instagram struct {
		PlaceholderDomain string `yaml:"placeholder_domain" env:"INSTAGRAM_PLACEHOLDER_DOMAIN" validate:"required,hostname"`
	} `yaml:"instagram"`

	Rate struct {
		Enabled bool          `yaml:"enabled" env:"RATE_ENABLED"`
		Max     int           `yaml:"max" env:"RATE_MAX" validate:"required_if=Enabled true,gte=0"`
		Window  time.Duration `yaml:"window" env:"RATE_WINDOW" validate:"gt=0"`
	} `yaml:"rate"`

	JWT struct {
		Secret string        `yaml:"secret" env:"JWT_SECRET" validate:"required,min=16"`
		Issuer string        `yaml:"issuer" env:"JWT_ISSUER"`
		TTL    time.Duration `yaml:"ttl" env:"JWT_TTL" validate:"gt=0"`
	} `yaml:"jwt"`

	Telemetry struct {
		OTLPEndpoint string `yaml:"otlp_endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
		ServiceName  string `yaml:"service_name" env:"OTEL_SERVICE_NAME"`
	} `yaml:"telemetry"`

	Metrics struct {
		Enabled bool   `yaml:"enabled" env:"METRICS_ENABLED"`
		Path    string `yaml:"path" env:"METRICS_PATH" validate:"startswith=/"`
	} `yaml:"metrics"`
}

// ProviderCredentials son los client settings explícitos de un provider.
type ProviderCredentials struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	RedirectURL  string `yaml:"redirect_url"`
}

// Default devuelve la configuración base sobre la que se aplica el YAML.
func Default() *Config {
	var c Config
	c.App.Env = "dev"
	c.App.Name = "socialconnect"
	c.Server.Addr = ":8080"
	c.Server.ReadTimeout = 10 * time.Second
	c.Server.WriteTimeout = 30 * time.Second
	c.Server.ShutdownTimeout = 15 * time.Second
	c.Log.Level = "info"
	c.Storage.Driver = "memory"
	c.Storage.MaxConns = 10
	c.Cache.Kind = "memory"
	c.Cache.DefaultTTL = 2 * time.Minute
	c.Cache.Redis.Prefix = "socialconnect:"
	c.Settings.Source = "config"
	c.Settings.CacheTTL = 30 * time.Second
	c.Providers = map[string]ProviderCredentials{}
	c.Grant = map[string]settings.Grant{}
	c.Advanced = settings.DefaultAdvanced()
	c.HTTPClient.Timeout = 10 * time.Second
	c.HTTPClient.UserAgent = "socialconnect"
	c.Google.VerifyIDToken = true
	c.Instagram.PlaceholderDomain = "strapi.io"
	c.Rate.Max = 30
	c.Rate.Window = time.Minute
	c.JWT.TTL = 30 * 24 * time.Hour
	c.Metrics.Enabled = true
	c.Metrics.Path = "/metrics"
	return &c
}

// Load lee path (si no es vacío), aplica el entorno y valida.
func Load(path string) (*Config, error) {
	c := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, c); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := c.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// applyEnvOverrides pisa el YAML con variables de entorno. Además de los
// campos con tag env, cada provider acepta <NAME>_CLIENT_ID,
// <NAME>_CLIENT_SECRET y <NAME>_CALLBACK_HOST.
func (c *Config) applyEnvOverrides() error {
	if err := env.Parse(c); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	if c.Providers == nil {
		c.Providers = map[string]ProviderCredentials{}
	}
	for _, name := range providers.All {
		prefix := strings.ToUpper(string(name)) + "_"
		pc := c.Providers[string(name)]
		changed := false
		if v, ok := getEnvStr(prefix + "CLIENT_ID"); ok {
			pc.ClientID, changed = v, true
		}
		if v, ok := getEnvStr(prefix + "CLIENT_SECRET"); ok {
			pc.ClientSecret, changed = v, true
		}
		if v, ok := getEnvStr(prefix + "CALLBACK_HOST"); ok {
			pc.RedirectURL, changed = v, true
		}
		if changed {
			c.Providers[string(name)] = pc
		}
	}
	c.App.Env = strings.ToLower(c.App.Env)
	return nil
}

func getEnvStr(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := validation.Register(v); err != nil {
		panic(err)
	}
	return v
}

// Validate checks field constraints and returns every violation at once.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

func (c *Config) Logger() logger.Config {
	return logger.Config{Env: c.App.Env, Level: c.Log.Level, ServiceName: c.App.Name, Version: c.App.Version}
}

func (c *Config) Tracing() tracing.Config {
	name := c.Telemetry.ServiceName
	if name == "" {
		name = c.App.Name
	}
	return tracing.Config{Endpoint: c.Telemetry.OTLPEndpoint, ServiceName: name, ServiceVersion: c.App.Version}
}

func (c *Config) Store() store.Config {
	return store.Config{Driver: c.Storage.Driver, DSN: c.Storage.DSN, MaxConns: c.Storage.MaxConns}
}

func (c *Config) CacheConfig() cache.Config {
	return cache.Config{
		Driver:     c.Cache.Kind,
		Addr:       c.Cache.Redis.Addr,
		Password:   c.Cache.Redis.Password,
		DB:         c.Cache.Redis.DB,
		Prefix:     c.Cache.Redis.Prefix,
		DefaultTTL: c.Cache.DefaultTTL,
	}
}

// Explicit returns the provider credentials in the shape the connect
// service consumes.
func (c *Config) Explicit() map[string]social.ExplicitCredentials {
	out := make(map[string]social.ExplicitCredentials, len(c.Providers))
	for name, pc := range c.Providers {
		out[name] = social.ExplicitCredentials{ClientID: pc.ClientID, ClientSecret: pc.ClientSecret, RedirectURL: pc.RedirectURL}
	}
	return out
}
