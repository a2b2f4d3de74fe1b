package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"myootd/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingLoader struct{}

func (failingLoader) Load(ctx context.Context) ([]models.ClothingItem, error) {
	return nil, errors.New("catalog offline")
}

func warmth(w int) *int {
	return &w
}

func TestRemoteCatalogLoader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var n int
		_, err := fmt.Sscanf(strings.TrimPrefix(r.URL.Path, "/processed_json/"), "clothes_item_%d.json", &n)
		assert.NoError(t, err)
		fmt.Fprintf(w, `{"id": "item_%03d", "name": "Item %d", "category": "Top", "warmth_rating": %d, "formality": ["Casual"], "image_path": "assets/item_%d.jpg"}`, n, n, n, n)
	}))
	defer server.Close()

	loader := &RemoteCatalogLoader{BaseURL: server.URL + "/processed_json/", ItemCount: 5}
	items, err := loader.Load(context.Background())
	require.NoError(t, err)

	require.Len(t, items, 5)
	for i, item := range items {
		assert.Equal(t, fmt.Sprintf("item_%03d", i+1), item.ID)
		assert.Equal(t, models.TagSet{"Top"}, item.Category)
		assert.Equal(t, i+1, *item.WarmthRating)
	}
	assert.Equal(t, server.URL+"/processed_json/clothes_item_13.json", loader.ItemURL(13))
}

func TestRemoteCatalogLoaderFailsOnMissingItem(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "_3.json") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(`{"id": "x", "name": "x", "category": "Top", "warmth_rating": 1, "formality": "Casual"}`))
	}))
	defer server.Close()

	loader := &RemoteCatalogLoader{BaseURL: server.URL + "/", ItemCount: 4}
	_, err := loader.Load(context.Background())
	assert.Error(t, err)
}

func TestWardrobeStoreRefresh(t *testing.T) {
	store := NewWardrobeStore(StaticLoader{
		{ID: "item_001", Name: " Navy Tee ", Category: models.TagSet{"top"}, WarmthRating: warmth(2), Formality: models.TagSet{"casual"}},
		{ID: "item_001", Name: "Duplicate", Category: models.TagSet{"Top"}, WarmthRating: warmth(2)},
		{ID: "", Name: "No id"},
		{ID: "item_002", Name: "Chinos", Category: models.TagSet{"Bottom"}, WarmthRating: warmth(2), Formality: models.TagSet{"Casual"}},
	})

	items, version := store.Snapshot()
	assert.Empty(t, items)
	assert.Equal(t, int64(0), version)

	refreshed := 0
	store.OnRefresh(func(ctx context.Context) { refreshed++ })

	require.NoError(t, store.Refresh(context.Background()))
	items, version = store.Snapshot()

	require.Len(t, items, 2)
	assert.Equal(t, int64(1), version)
	assert.Equal(t, "Navy Tee", items[0].Name)
	assert.Equal(t, models.TagSet{"Top"}, items[0].Category)
	assert.Equal(t, models.TagSet{"Casual"}, items[0].Formality)
	assert.Equal(t, 1, refreshed)
	assert.False(t, store.LoadedAt().IsZero())
}

func TestWardrobeStoreKeepsSnapshotOnFailure(t *testing.T) {
	store := NewWardrobeStore(StaticLoader{
		{ID: "item_001", Name: "Tee", Category: models.TagSet{"Top"}, WarmthRating: warmth(2), Formality: models.TagSet{"Casual"}},
	})
	require.NoError(t, store.Refresh(context.Background()))

	store.loader = failingLoader{}
	err := store.Refresh(context.Background())
	require.Error(t, err)

	items, version := store.Snapshot()
	assert.Len(t, items, 1)
	assert.Equal(t, int64(1), version)
}

func TestWardrobeStoreRefreshDoesNotTouchOldSnapshot(t *testing.T) {
	store := NewWardrobeStore(StaticLoader{
		{ID: "item_001", Name: "Tee", Category: models.TagSet{"Top"}, WarmthRating: warmth(2), Formality: models.TagSet{"Casual"}},
	})
	require.NoError(t, store.Refresh(context.Background()))
	old, _ := store.Snapshot()

	store.loader = StaticLoader{
		{ID: "item_009", Name: "Coat", Category: models.TagSet{"Outerwear"}, WarmthRating: warmth(5), Formality: models.TagSet{"Formal"}},
	}
	require.NoError(t, store.Refresh(context.Background()))

	assert.Equal(t, "item_001", old[0].ID)
	current, version := store.Snapshot()
	assert.Equal(t, "item_009", current[0].ID)
	assert.Equal(t, int64(2), version)
}
