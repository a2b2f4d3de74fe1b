package services

import (
	"testing"

	"myootd/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCatalogItem(t *testing.T) {
	reply := "```json\n" + `{
		"id": "item_999",
		"name": " Navy Wool Blazer ",
		"category": ["outerwear", "Top", "Outerwear"],
		"warmth_rating": 4,
		"formality": ["semi-formal", "Formal"],
		"image_path": "assets/guess.jpg"
	}` + "\n```"

	item, err := ParseCatalogItem(reply, "item_014", "catalog/item_014.jpg")
	require.NoError(t, err)

	assert.Equal(t, "item_014", item.ID)
	assert.Equal(t, "Navy Wool Blazer", item.Name)
	assert.Equal(t, models.TagSet{"Outerwear", "Top"}, item.Category)
	assert.Equal(t, models.TagSet{"Semi-Formal", "Formal"}, item.Formality)
	assert.Equal(t, 4, *item.WarmthRating)
	assert.Equal(t, "catalog/item_014.jpg", item.ImagePath)
}

func TestParseCatalogItemKeepsModelIDWhenNoneGiven(t *testing.T) {
	item, err := ParseCatalogItem(`{"id": "item_020", "name": "Tee", "category": "Top", "warmth_rating": 1, "formality": "Casual"}`, "", "")
	require.NoError(t, err)
	assert.Equal(t, "item_020", item.ID)
	assert.Equal(t, models.TagSet{"Top"}, item.Category)
}

func TestParseCatalogItemRejects(t *testing.T) {
	cases := map[string]string{
		"not json":        `a lovely blazer`,
		"no name":         `{"category": ["Top"], "warmth_rating": 2, "formality": ["Casual"]}`,
		"no category":     `{"name": "Tee", "category": [], "warmth_rating": 2, "formality": ["Casual"]}`,
		"no formality":    `{"name": "Tee", "category": ["Top"], "warmth_rating": 2}`,
		"missing warmth":  `{"name": "Tee", "category": ["Top"], "formality": ["Casual"]}`,
		"warmth too high": `{"name": "Tee", "category": ["Top"], "warmth_rating": 11, "formality": ["Casual"]}`,
		"warmth zero":     `{"name": "Tee", "category": ["Top"], "warmth_rating": 0, "formality": ["Casual"]}`,
	}
	for name, reply := range cases {
		_, err := ParseCatalogItem(reply, "item_001", "")
		assert.ErrorIs(t, err, ErrInvalidCatalogItem, name)
	}

	_, err := ParseCatalogItem(`{"name": "Tee", "category": ["Top"], "warmth_rating": 2, "formality": ["Casual"]}`, "", "")
	assert.ErrorIs(t, err, ErrInvalidCatalogItem)
}
