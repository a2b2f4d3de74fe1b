package controllers

import (
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

const catalogUploadGrace = 2 * time.Minute

func NewItemID() string {
	return "item_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// SanitizeItemID keeps letters, digits, '_' and '-' so the id is safe to
// use inside an object key.
func SanitizeItemID(id string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			return r
		}
		return -1
	}, id)
}

// CatalogObjectKey places an upload under catalog/ named after the item,
// keeping only the extension of the client's file name.
func CatalogObjectKey(itemID string, fileName string) string {
	ext := strings.ToLower(path.Ext(path.Base(strings.ReplaceAll(fileName, "\\", "/"))))
	switch ext {
	case ".jpg", ".jpeg", ".png":
	default:
		ext = ".jpg"
	}
	return "catalog/" + itemID + ext
}
