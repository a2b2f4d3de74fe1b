package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"myootd/models"

	"github.com/dgraph-io/ristretto"
	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	ristretto_store "github.com/eko/gocache/store/ristretto/v4"
	"github.com/rs/zerolog/log"
)

// presigned read urls are valid for 15 minutes, keep them a bit less
const cacheCleanupInterval = 12 * time.Minute

type ImageURLResolver interface {
	ResolveImageURL(ctx context.Context, imagePath string) (string, error)
}

// ResolveItemImages fills ImageURL on items in place. Failures are logged
// and leave the url empty.
func ResolveItemImages(ctx context.Context, resolver ImageURLResolver, items []models.ClothingItem) {
	for i := range items {
		url, err := resolver.ResolveImageURL(ctx, items[i].ImagePath)
		if err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("item", items[i].ID).Msg("could not resolve image url")
			continue
		}
		items[i].ImageURL = url
	}
}

// StaticAssetResolver serves images from a public assets folder. Catalog
// paths may carry their own "assets/" prefix, which is dropped.
type StaticAssetResolver struct {
	BaseURL string
}

func (r StaticAssetResolver) ResolveImageURL(ctx context.Context, imagePath string) (string, error) {
	if imagePath == "" {
		return "", nil
	}
	if strings.HasPrefix(imagePath, "http://") || strings.HasPrefix(imagePath, "https://") {
		return imagePath, nil
	}
	return r.BaseURL + strings.ReplaceAll(imagePath, "assets/", ""), nil
}

// URLCacheService hands out presigned R2 read urls, cached until shortly
// before they expire.
type URLCacheService struct {
	cache      *cache.LoadableCache[string]
	bucketName string
}

func NewURLCacheService(awsService AWSServiceProvider, bucketName string) (*URLCacheService, error) {
	ristrettoCache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e6,
		MaxCost:     1 << 24,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create ristretto cache: %w", err)
	}
	ristrettoStore := ristretto_store.NewRistretto(ristrettoCache)

	loadFunction := func(ctx context.Context, key any) (string, []store.Option, error) {
		objectKey, ok := key.(string)
		if !ok {
			return "", nil, fmt.Errorf("invalid key type provided to URL cache: expected string, got %T", key)
		}
		log.Ctx(ctx).Debug().Str("key", objectKey).Msg("presigning image url")
		url, err := awsService.GetPresignedR2FileReadURL(ctx, bucketName, objectKey)
		return url, []store.Option{store.WithExpiration(cacheCleanupInterval), store.WithCost(int64(len(url)))}, err
	}

	return &URLCacheService{
		cache:      cache.NewLoadable[string](loadFunction, cache.New[string](ristrettoStore)),
		bucketName: bucketName,
	}, nil
}

func (s *URLCacheService) GetReadURL(ctx context.Context, objectKey string) (string, error) {
	if objectKey == "" {
		return "", nil
	}
	return s.cache.Get(ctx, objectKey)
}

func (s *URLCacheService) ResolveImageURL(ctx context.Context, imagePath string) (string, error) {
	return s.GetReadURL(ctx, imagePath)
}
