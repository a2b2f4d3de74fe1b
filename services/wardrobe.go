package services

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"myootd/config"
	"myootd/models"

	"github.com/getsentry/sentry-go"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

type WardrobeLoader interface {
	Load(ctx context.Context) ([]models.ClothingItem, error)
}

// RemoteCatalogLoader reads the published catalog, one JSON file per item
// named clothes_item_<n>.json for n in 1..ItemCount.
type RemoteCatalogLoader struct {
	BaseURL   string
	ItemCount int
	Client    *http.Client
}

func NewRemoteCatalogLoader(cfg config.CatalogConfig) *RemoteCatalogLoader {
	return &RemoteCatalogLoader{
		BaseURL:   cfg.BaseURL,
		ItemCount: cfg.ItemCount,
		Client:    newHTTPClient(0),
	}
}

func (l *RemoteCatalogLoader) ItemURL(n int) string {
	return fmt.Sprintf("%sclothes_item_%d.json", l.BaseURL, n)
}

// Load fails as a whole if any single item cannot be fetched or decoded.
func (l *RemoteCatalogLoader) Load(ctx context.Context) ([]models.ClothingItem, error) {
	items := make([]models.ClothingItem, l.ItemCount)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i := 0; i < l.ItemCount; i++ {
		i := i
		g.Go(func() error {
			return getJSON(gctx, l.Client, l.ItemURL(i+1), &items[i])
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load remote catalog: %w", err)
	}
	return items, nil
}

type DBCatalogLoader struct {
	Repo CatalogRepository
}

func (l DBCatalogLoader) Load(ctx context.Context) ([]models.ClothingItem, error) {
	return l.Repo.List(ctx)
}

// StaticLoader serves a fixed list of items.
type StaticLoader []models.ClothingItem

func (l StaticLoader) Load(ctx context.Context) ([]models.ClothingItem, error) {
	items := make([]models.ClothingItem, len(l))
	copy(items, l)
	return items, nil
}

// WardrobeStore owns the current wardrobe snapshot. A published snapshot is
// never modified; Refresh replaces it wholesale.
type WardrobeStore struct {
	loader WardrobeLoader

	mu        sync.RWMutex
	items     []models.ClothingItem
	version   int64
	loadedAt  time.Time
	onRefresh []func(ctx context.Context)
}

func NewWardrobeStore(loader WardrobeLoader) *WardrobeStore {
	return &WardrobeStore{loader: loader}
}

func (s *WardrobeStore) Snapshot() ([]models.ClothingItem, int64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.items, s.version
}

func (s *WardrobeStore) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedAt
}

// OnRefresh registers fn to run after every successful refresh.
func (s *WardrobeStore) OnRefresh(fn func(ctx context.Context)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onRefresh = append(s.onRefresh, fn)
}

// Refresh loads a new snapshot. On failure the previous snapshot stays.
func (s *WardrobeStore) Refresh(ctx context.Context) error {
	items, err := s.loader.Load(ctx)
	if err != nil {
		WardrobeRefreshes.WithLabelValues("error").Inc()
		return fmt.Errorf("refresh wardrobe: %w", err)
	}

	seen := make(map[string]struct{}, len(items))
	snapshot := make([]models.ClothingItem, 0, len(items))
	for _, item := range items {
		item.Normalize()
		if item.ID == "" {
			log.Ctx(ctx).Warn().Str("name", item.Name).Msg("skipping wardrobe item without id")
			continue
		}
		if _, ok := seen[item.ID]; ok {
			log.Ctx(ctx).Warn().Str("id", item.ID).Msg("duplicate wardrobe item id, keeping the first")
			continue
		}
		seen[item.ID] = struct{}{}
		snapshot = append(snapshot, item)
	}

	s.mu.Lock()
	s.items = snapshot
	s.version++
	s.loadedAt = time.Now()
	version := s.version
	hooks := append([]func(ctx context.Context){}, s.onRefresh...)
	s.mu.Unlock()

	WardrobeRefreshes.WithLabelValues("ok").Inc()
	WardrobeItems.Set(float64(len(snapshot)))
	log.Ctx(ctx).Info().Int("items", len(snapshot)).Int64("version", version).Msg("wardrobe refreshed")

	for _, hook := range hooks {
		hook(ctx)
	}
	return nil
}

// Run refreshes the snapshot every interval until ctx is done.
func (s *WardrobeStore) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Refresh(ctx); err != nil {
				log.Ctx(ctx).Error().Err(err).Msg("periodic wardrobe refresh failed")
				sentry.CaptureException(err)
			}
		}
	}
}
