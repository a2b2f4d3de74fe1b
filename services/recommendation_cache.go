package services

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"myootd/languageutil"
	"myootd/models"

	"github.com/dgraph-io/ristretto"
	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	ristretto_store "github.com/eko/gocache/store/ristretto/v4"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// RecommendationKey groups requests that share a ranked answer: temperature
// rounded half-to-even to the nearest 5°C, formality and lower-cased color.
type RecommendationKey struct {
	Temperature int
	Formality   models.Formality
	Color       string
}

func NewRecommendationKey(tempC float64, formality models.Formality, color string) RecommendationKey {
	return RecommendationKey{
		Temperature: int(math.RoundToEven(tempC/5) * 5),
		Formality:   formality,
		Color:       languageutil.NormalizeColor(color),
	}
}

func (k RecommendationKey) String() string {
	return fmt.Sprintf("%d|%s|%s", k.Temperature, k.Formality, k.Color)
}

type CachedRecommendation struct {
	Outfits  []models.RankedOutfit
	Fallback bool
}

// RecommendationCache stores ranked answers in memory. Concurrent misses on
// the same key share one load. Loads that overlap a Clear are returned to
// their callers but never stored.
type RecommendationCache struct {
	client      *ristretto.Cache
	cache       *cache.Cache[CachedRecommendation]
	group       singleflight.Group
	mu          sync.RWMutex
	generation  atomic.Uint64
	ttl         time.Duration
	fallbackTTL time.Duration
}

func NewRecommendationCache(ttl, fallbackTTL time.Duration) (*RecommendationCache, error) {
	ristrettoCache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e5,
		MaxCost:     1 << 14,
		BufferItems: 64,
		Cost:        func(value interface{}) int64 { return 1 },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create ristretto cache: %w", err)
	}
	ristrettoStore := ristretto_store.NewRistretto(ristrettoCache)

	return &RecommendationCache{
		client:      ristrettoCache,
		cache:       cache.New[CachedRecommendation](ristrettoStore),
		ttl:         ttl,
		fallbackTTL: fallbackTTL,
	}, nil
}

func (c *RecommendationCache) Get(ctx context.Context, key RecommendationKey) (CachedRecommendation, bool) {
	value, err := c.cache.Get(ctx, key.String())
	if err != nil {
		return CachedRecommendation{}, false
	}
	return value, true
}

func (c *RecommendationCache) Set(ctx context.Context, key RecommendationKey, value CachedRecommendation) {
	ttl := c.ttl
	if value.Fallback {
		ttl = c.fallbackTTL
	}
	if err := c.cache.Set(ctx, key.String(), value, store.WithExpiration(ttl), store.WithCost(1)); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("key", key.String()).Msg("recommendation not cached")
		return
	}
	c.client.Wait()
}

// GetOrLoad returns the cached value for key or runs load once for all
// concurrent callers. The boolean reports a cache hit. The shared load does
// not inherit the caller's cancellation: a caller that goes away gets
// ctx.Err() while the load finishes for everyone else.
func (c *RecommendationCache) GetOrLoad(
	ctx context.Context,
	key RecommendationKey,
	load func(ctx context.Context) (CachedRecommendation, error),
) (CachedRecommendation, bool, error) {
	if value, ok := c.Get(ctx, key); ok {
		RecommendationCacheLookups.WithLabelValues("hit").Inc()
		return value, true, nil
	}
	RecommendationCacheLookups.WithLabelValues("miss").Inc()
	if err := ctx.Err(); err != nil {
		return CachedRecommendation{}, false, err
	}

	generation := c.generation.Load()
	loadCtx := context.WithoutCancel(ctx)
	flight := key.String() + "#" + strconv.FormatUint(generation, 10)

	ch := c.group.DoChan(flight, func() (interface{}, error) {
		if value, ok := c.Get(loadCtx, key); ok {
			return value, nil
		}
		value, err := load(loadCtx)
		if err != nil {
			return nil, err
		}
		c.mu.RLock()
		defer c.mu.RUnlock()
		if c.generation.Load() != generation {
			log.Ctx(loadCtx).Debug().Str("key", key.String()).Msg("cache cleared during load, result not stored")
			return value, nil
		}
		c.Set(loadCtx, key, value)
		return value, nil
	})

	select {
	case <-ctx.Done():
		return CachedRecommendation{}, false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return CachedRecommendation{}, false, res.Err
		}
		return res.Val.(CachedRecommendation), false, nil
	}
}

// Clear drops every entry. Loads already running when Clear is called do
// not write their results back.
func (c *RecommendationCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation.Add(1)
	return c.cache.Clear(ctx)
}
