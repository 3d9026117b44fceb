package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/domain/model"
	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/domain/ports/repository"
	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/infra/metrics"
	red "github.com/AlfredoFernandez98/NotionPay-sub000/internal/infra/redis"
)

var _ repository.ProductRepository = (*productRepoCacheDecorator)(nil)

const allProductsKey = "products:all"

type productRepoCacheDecorator struct {
	inner repository.ProductRepository
	cache red.RedisClient
	ttl   time.Duration
	log   *zerolog.Logger
}

func NewProductRepoCacheDecorator(inner repository.ProductRepository, cache red.RedisClient, ttl time.Duration, logger *zerolog.Logger) repository.ProductRepository {
	if ttl <= 0 {
		ttl = 1 * time.Hour
	}
	l := logger.With().Str("component", "productCache").Logger()
	return &productRepoCacheDecorator{inner: inner, cache: cache, ttl: ttl, log: &l}
}

func productKey(id string) string { return fmt.Sprintf("product:%s", id) }

func (d *productRepoCacheDecorator) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Product, error) {
	key := productKey(id)
	val, err := d.cache.Get(ctx, key)
	switch {
	case err == nil:
		var p model.Product
		if json.Unmarshal([]byte(val), &p) == nil {
			metrics.IncCacheRequest("product", metrics.CacheHit)
			return &p, nil
		}
	case !errors.Is(err, red.Nil):
		metrics.IncCacheRequest("product", metrics.CacheError)
		d.log.Warn().Err(err).Str("key", key).Msg("product cache read failed")
	}

	metrics.IncCacheRequest("product", metrics.CacheMiss)
	p, err := d.inner.FindByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(p); err == nil {
		_ = d.cache.Set(ctx, key, b, d.ttl)
	}
	return p, nil
}

func (d *productRepoCacheDecorator) Save(ctx context.Context, tx repository.Tx, p *model.Product) error {
	if err := d.cache.Del(ctx, productKey(p.ID), allProductsKey); err != nil {
		d.log.Warn().Err(err).Str("product_id", p.ID).Msg("product cache invalidation failed")
	}
	return d.inner.Save(ctx, tx, p)
}

func (d *productRepoCacheDecorator) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Product, error) {
	if val, err := d.cache.Get(ctx, allProductsKey); err == nil {
		var products []*model.Product
		if json.Unmarshal([]byte(val), &products) == nil {
			metrics.IncCacheRequest("product_list", metrics.CacheHit)
			return products, nil
		}
	}
	metrics.IncCacheRequest("product_list", metrics.CacheMiss)
	products, err := d.inner.ListAll(ctx, tx)
	if err != nil {
		return nil, err
	}
	if len(products) > 0 {
		if b, err := json.Marshal(products); err == nil {
			_ = d.cache.Set(ctx, allProductsKey, b, d.ttl)
		}
	}
	return products, nil
}
