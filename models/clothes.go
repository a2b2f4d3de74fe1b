package models

import (
	"strings"
	"time"
)

type Category string

const (
	CategoryTop       Category = "Top"
	CategoryBottom    Category = "Bottom"
	CategoryOuterwear Category = "Outerwear"
	CategoryFull      Category = "Full"
	CategoryShoes     Category = "Shoes"
	CategoryAccessory Category = "Accessory"
)

var KnownCategories = []string{
	string(CategoryTop),
	string(CategoryBottom),
	string(CategoryOuterwear),
	string(CategoryFull),
	string(CategoryShoes),
	string(CategoryAccessory),
}

// ClothingItem is one wardrobe entry. The same shape is used for the
// published JSON catalog and for the clothing_items table.
type ClothingItem struct {
	ID           string    `gorm:"primaryKey" json:"id"`
	Name         string    `json:"name"`
	Category     TagSet    `gorm:"type:text[]" json:"category"`
	WarmthRating *int      `json:"warmth_rating"`
	Formality    TagSet    `gorm:"type:text[]" json:"formality"`
	ImagePath    string    `json:"image_path"`
	ImageURL     string    `gorm:"-" json:"image_url,omitempty"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}

func (ClothingItem) TableName() string {
	return "clothing_items"
}

// Normalize canonicalises tag spelling and drops duplicate tags.
func (i *ClothingItem) Normalize() {
	i.ID = strings.TrimSpace(i.ID)
	i.Name = strings.TrimSpace(i.Name)
	i.Category = i.Category.Normalize(KnownCategories...)
	i.Formality = i.Formality.Normalize(KnownFormalities...)
}

func (i *ClothingItem) HasCategory(c Category) bool {
	return i.Category.Has(string(c))
}

func (i *ClothingItem) HasFormality(f Formality) bool {
	return i.Formality.Has(string(f))
}

func (i *ClothingItem) Warmth() (int, bool) {
	if i.WarmthRating == nil {
		return 0, false
	}
	return *i.WarmthRating, true
}
