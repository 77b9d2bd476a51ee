// Package cache decorador Redis sobre el catálogo de solo lectura.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/gestion-compras/internal/domain/entity"
	"github.com/jhoicas/gestion-compras/internal/domain/repository"
	"github.com/jhoicas/gestion-compras/pkg/config"
	"github.com/jhoicas/gestion-compras/pkg/logger"
)

var _ repository.CatalogRepository = (*CatalogCache)(nil)

const keyPrefix = "compras:catalogo:"

// store subconjunto de redis.Cmdable que usa el decorador.
type store interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// CatalogCache guarda en Redis los registros encontrados. Los ausentes no se cachean.
// Si Redis falla se consulta directamente el repositorio.
type CatalogCache struct {
	inner repository.CatalogRepository
	rdb   store
	ttl   time.Duration
	log   *logger.Logger
}

// NewClient crea el cliente Redis a partir de la configuración.
func NewClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// NewCatalogCache envuelve inner. ttl <= 0 usa cinco minutos.
func NewCatalogCache(inner repository.CatalogRepository, rdb redis.Cmdable, ttl time.Duration, log *logger.Logger) *CatalogCache {
	return newCatalogCache(inner, rdb, ttl, log)
}

func newCatalogCache(inner repository.CatalogRepository, rdb store, ttl time.Duration, log *logger.Logger) *CatalogCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if log == nil {
		log = logger.Nop()
	}
	return &CatalogCache{inner: inner, rdb: rdb, ttl: ttl, log: log.Component("catalog_cache")}
}

func (c *CatalogCache) GetSupplier(ctx context.Context, id int64) (*entity.Supplier, error) {
	return cached(ctx, c, fmt.Sprintf("%sproveedor:%d", keyPrefix, id), func() (*entity.Supplier, error) {
		return c.inner.GetSupplier(ctx, id)
	})
}

func (c *CatalogCache) GetEmployee(ctx context.Context, id int64) (*entity.Employee, error) {
	return cached(ctx, c, fmt.Sprintf("%sempleado:%d", keyPrefix, id), func() (*entity.Employee, error) {
		return c.inner.GetEmployee(ctx, id)
	})
}

func (c *CatalogCache) GetProduct(ctx context.Context, id int64) (*entity.Product, error) {
	return cached(ctx, c, fmt.Sprintf("%sproducto:%d", keyPrefix, id), func() (*entity.Product, error) {
		return c.inner.GetProduct(ctx, id)
	})
}

func cached[T any](ctx context.Context, c *CatalogCache, key string, load func() (*T, error)) (*T, error) {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var v T
		if jerr := json.Unmarshal(raw, &v); jerr == nil {
			return &v, nil
		}
		c.log.Warn().Str("key", key).Msg("entrada de caché corrupta; se recarga")
	case !errors.Is(err, redis.Nil):
		c.log.Warn().Err(err).Str("key", key).Msg("redis no disponible; se consulta la base")
	}

	v, err := load()
	if err != nil || v == nil {
		return v, err
	}
	if b, jerr := json.Marshal(v); jerr == nil {
		if serr := c.rdb.Set(ctx, key, b, c.ttl).Err(); serr != nil {
			c.log.Debug().Err(serr).Str("key", key).Msg("no se pudo escribir en caché")
		}
	}
	return v, nil
}
