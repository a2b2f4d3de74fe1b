package models

type TopOutfitsQuery struct {
	City      string `query:"city" validate:"max=100"`
	Formality string `query:"formality" validate:"omitempty,formality"`
	Color     string `query:"color" validate:"omitempty,max=30"`
}

type CatalogItemUploadIn struct {
	FileName string `json:"file_name" validate:"required,max=200"`
	ItemID   string `json:"item_id" validate:"omitempty,max=64"`
}

type CatalogItemUploadOut struct {
	ItemID        string `json:"item_id"`
	ObjectKey     string `json:"object_key"`
	FileUploadUrl string `json:"file_upload_url"`
	TaskID        string `json:"task_id"`
}

type WardrobeOut struct {
	Version int64          `json:"version"`
	Items   []ClothingItem `json:"items"`
}
