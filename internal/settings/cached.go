package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/dropDatabas3/socialconnect/internal/cache"
	"github.com/dropDatabas3/socialconnect/internal/observability/logger"
)

// Cached fronts a Source with a cache.Client. Concurrent misses for the same
// document are collapsed into one load.
type Cached struct {
	src   Source
	cache cache.Client
	ttl   time.Duration
	sf    singleflight.Group
}

func NewCached(src Source, c cache.Client, ttl time.Duration) *Cached {
	return &Cached{src: src, cache: c, ttl: ttl}
}

func (c *Cached) Grants(ctx context.Context) (map[string]Grant, error) {
	var out map[string]Grant
	err := c.load(ctx, GrantKey, &out, func(ctx context.Context) (any, error) {
		return c.src.Grants(ctx)
	})
	return out, err
}

func (c *Cached) Advanced(ctx context.Context) (Advanced, error) {
	var out Advanced
	err := c.load(ctx, AdvancedKey, &out, func(ctx context.Context) (any, error) {
		return c.src.Advanced(ctx)
	})
	return out, err
}

// Invalidate drops both cached documents.
func (c *Cached) Invalidate(ctx context.Context) error {
	if err := c.cache.Delete(ctx, GrantKey); err != nil {
		return err
	}
	return c.cache.Delete(ctx, AdvancedKey)
}

func (c *Cached) load(ctx context.Context, key string, dst any, fetch func(context.Context) (any, error)) error {
	raw, err := c.cache.Get(ctx, key)
	if err == nil {
		if jerr := json.Unmarshal([]byte(raw), dst); jerr == nil {
			return nil
		}
	} else if !cache.IsNotFound(err) {
		logger.From(ctx).Warn("settings cache read failed, using source",
			logger.Component("settings.cached"), logger.Key(key), logger.Err(err))
	}

	v, err, _ := c.sf.Do(key, func() (any, error) {
		val, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		b, err := json.Marshal(val)
		if err != nil {
			return nil, err
		}
		if err := c.cache.Set(ctx, key, string(b), c.ttl); err != nil {
			logger.From(ctx).Warn("settings cache write failed",
				logger.Component("settings.cached"), logger.Key(key), logger.Err(err))
		}
		return b, nil
	})
	if err != nil {
		return fmt.Errorf("settings: load %s: %w", key, err)
	}
	return json.Unmarshal(v.([]byte), dst)
}
