package dbhelper

import (
	"context"
	"testing"

	"myootd/models"
	"myootd/services"
	"myootd/test"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormCatalogRepository(t *testing.T) {
	db, err := SetupTestDB()
	if err != nil {
		t.Skipf("postgres not available: %v", err)
	}
	cleaner := SetupCleaner(db)
	cleaner()
	defer cleaner()

	repo := services.GormCatalogRepository{DB: db}
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, []models.ClothingItem{
		test.FakeItem("item_002", "Navy Chinos", "Bottom", 2),
		test.FakeItem("item_001", "White Tee", "Top", 1, "Casual", "Semi-Formal"),
	}))

	updated := test.FakeItem("item_002", "Charcoal Chinos", "Bottom", 3)
	require.NoError(t, repo.Upsert(ctx, []models.ClothingItem{updated}))

	items, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "item_001", items[0].ID)
	assert.Equal(t, models.TagSet{"Casual", "Semi-Formal"}, items[0].Formality)
	assert.Equal(t, "Charcoal Chinos", items[1].Name)
	assert.Equal(t, 3, *items[1].WarmthRating)

	loaded, err := services.DBCatalogLoader{Repo: repo}.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, loaded, 2)
}
