// Package app arma el servicio completo a partir de la configuración.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/dropDatabas3/socialconnect/internal/cache"
	"github.com/dropDatabas3/socialconnect/internal/config"
	"github.com/dropDatabas3/socialconnect/internal/http/controllers"
	"github.com/dropDatabas3/socialconnect/internal/http/helpers"
	"github.com/dropDatabas3/socialconnect/internal/http/router"
	"github.com/dropDatabas3/socialconnect/internal/jwt"
	"github.com/dropDatabas3/socialconnect/internal/metrics"
	"github.com/dropDatabas3/socialconnect/internal/observability/logger"
	"github.com/dropDatabas3/socialconnect/internal/providers"
	"github.com/dropDatabas3/socialconnect/internal/providers/builtin"
	"github.com/dropDatabas3/socialconnect/internal/rate"
	"github.com/dropDatabas3/socialconnect/internal/security/secretbox"
	"github.com/dropDatabas3/socialconnect/internal/settings"
	"github.com/dropDatabas3/socialconnect/internal/social"
	"github.com/dropDatabas3/socialconnect/internal/store"
	"github.com/dropDatabas3/socialconnect/internal/store/pg"

	// Adapters se registran vía init().
	_ "github.com/dropDatabas3/socialconnect/internal/store/memory"
)

// App es el servicio cableado.
type App struct {
	Handler  http.Handler
	Service  *social.Service
	Settings settings.Source
	Conn     store.Connection

	closers []func() error
}

// Options permite a los tests reemplazar piezas del wiring.
type Options struct {
	// Registerer recibe los collectors; nil usa el registry default.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

func New(ctx context.Context, cfg *config.Config, opts Options) (_ *App, err error) {
	log := logger.L().With(logger.Component("app"))
	a := &App{}
	defer func() {
		if err != nil {
			_ = a.Close()
		}
	}()

	conn, err := store.Open(ctx, cfg.Store())
	if err != nil {
		return nil, err
	}
	a.Conn = conn
	a.closers = append(a.closers, conn.Close)

	cacheClient, limiter, err := a.cacheAndLimiter(ctx, cfg)
	if err != nil {
		return nil, err
	}

	src, err := settingsSource(cfg, conn)
	if err != nil {
		return nil, err
	}
	// El cache guarda los secretos todavía sellados.
	if cfg.Settings.CacheTTL > 0 {
		src = settings.NewCached(src, cacheClient, cfg.Settings.CacheTTL)
	}
	box, err := secretbox.FromEnv()
	if err != nil && !errors.Is(err, secretbox.ErrNoKey) {
		return nil, err
	}
	src = settings.NewDecrypting(src, box)
	a.Settings = src

	client := providers.NewClient(cfg.HTTPClient.Timeout, cfg.HTTPClient.UserAgent)
	registry := builtin.Registry(client, builtin.Options{
		VerifyGoogleIDToken:        cfg.Google.VerifyIDToken,
		InstagramPlaceholderDomain: cfg.Instagram.PlaceholderDomain,
	})
	if !cfg.Google.VerifyIDToken {
		log.Warn("google id_token signature verification is disabled")
	}

	a.Service = social.NewService(social.Deps{
		Registry: registry,
		Settings: src,
		Users:    conn.Users(),
		Roles:    conn.Roles(),
		Explicit: cfg.Explicit(),
	})

	tokens, err := jwt.NewIssuer(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.TTL)
	if err != nil {
		return nil, err
	}

	proxies, err := helpers.ParseProxies(cfg.Server.TrustedProxies)
	if err != nil {
		return nil, err
	}

	deps := router.Deps{
		Connect: controllers.NewConnectController(a.Service, tokens),
		Health: controllers.NewHealthController(map[string]controllers.Pinger{
			"store": conn,
			"cache": cacheClient,
		}),
		RateLimiter: limiter,
		Proxies:     proxies,
	}
	if cfg.Metrics.Enabled {
		reg, gat := opts.Registerer, opts.Gatherer
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		if gat == nil {
			gat = prometheus.DefaultGatherer
		}
		if err := metrics.Register(reg); err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
		deps.Metrics = metrics.Handler(gat)
		deps.MetricsPath = cfg.Metrics.Path
	}
	a.Handler = router.New(deps)

	log.Info("app wired",
		logger.String("storage", conn.Name()),
		logger.String("settings", cfg.Settings.Source),
		logger.String("cache", cfg.Cache.Kind),
		logger.Bool("rate_limit", limiter != nil),
		logger.Any("providers", registry.Names()),
	)
	return a, nil
}

// cacheAndLimiter comparte un único cliente Redis entre cache y rate limiter.
func (a *App) cacheAndLimiter(ctx context.Context, cfg *config.Config) (cache.Client, rate.Limiter, error) {
	var limiter rate.Limiter
	if cfg.Cache.Kind != "redis" {
		if cfg.Rate.Enabled {
			limiter = rate.NewMemoryLimiter(cfg.Rate.Max, cfg.Rate.Window)
		}
		return cache.NewMemory(cfg.Cache.Redis.Prefix, cfg.Cache.DefaultTTL), limiter, nil
	}

	cc := cfg.CacheConfig()
	rdb := redis.NewClient(&redis.Options{Addr: cc.Addr, Password: cc.Password, DB: cc.DB})
	a.closers = append(a.closers, rdb.Close)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		return nil, nil, fmt.Errorf("redis ping: %w", err)
	}
	if cfg.Rate.Enabled {
		limiter = rate.NewRedisLimiter(rdb, cc.Prefix+"rl:", cfg.Rate.Max, cfg.Rate.Window)
	}
	return cache.NewRedisFromClient(rdb, cc.Prefix), limiter, nil
}

func settingsSource(cfg *config.Config, conn store.Connection) (settings.Source, error) {
	if cfg.Settings.Source != "postgres" {
		return settings.NewStatic(cfg.Grant, cfg.Advanced), nil
	}
	pgConn, ok := conn.(*pg.Connection)
	if !ok {
		return nil, fmt.Errorf("settings source postgres requires storage driver postgres, got %s", conn.Name())
	}
	return pgConn.Settings(), nil
}

// Close libera store y clientes en orden inverso.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}
