package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"myootd/models"

	"google.golang.org/genai"
)

// ErrInvalidCatalogItem marks extractions that do not describe a usable item.
var ErrInvalidCatalogItem = errors.New("invalid catalog item")

type CatalogAnalyzer interface {
	AnalyzeClothing(ctx context.Context, image []byte, mimeType string, itemID string, imagePath string) (*models.ClothingItem, *LLMResponse, error)
}

const catalogPrompt = "Act as a professional fashion cataloger. Analyze this image and generate a JSON object: " +
	"{id: 'item_XXX', name: 'string', category: ['Top', 'Bottom', 'Outerwear', 'Full', 'Shoes', 'Accessory'], " +
	"warmth_rating: 1-5, formality: ['Casual', 'Semi-Formal', 'Formal'], image_path: 'assets/filename.jpg'}. " +
	"The name starts with the dominant color of the garment, for example 'Navy Wool Blazer'. " +
	"category and formality list every value that applies. Return ONLY raw JSON."

var catalogSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"id":   {Type: genai.TypeString},
		"name": {Type: genai.TypeString},
		"category": {
			Type:  genai.TypeArray,
			Items: &genai.Schema{Type: genai.TypeString, Enum: models.KnownCategories},
		},
		"warmth_rating": {Type: genai.TypeInteger},
		"formality": {
			Type:  genai.TypeArray,
			Items: &genai.Schema{Type: genai.TypeString, Enum: models.KnownFormalities},
		},
		"image_path": {Type: genai.TypeString},
	},
	Required: []string{"name", "category", "warmth_rating", "formality"},
}

// ParseCatalogItem decodes a cataloging reply. itemID and imagePath, when
// set, override whatever the model guessed.
func ParseCatalogItem(text string, itemID string, imagePath string) (*models.ClothingItem, error) {
	var item models.ClothingItem
	if err := json.Unmarshal([]byte(CleanAIResponseText(text)), &item); err != nil {
		return nil, fmt.Errorf("%w: malformed reply: %v", ErrInvalidCatalogItem, err)
	}
	if itemID != "" {
		item.ID = itemID
	}
	if imagePath != "" {
		item.ImagePath = imagePath
	}
	item.Normalize()

	switch {
	case item.ID == "":
		return nil, fmt.Errorf("%w: missing id", ErrInvalidCatalogItem)
	case item.Name == "":
		return nil, fmt.Errorf("%w: missing name", ErrInvalidCatalogItem)
	case len(item.Category) == 0:
		return nil, fmt.Errorf("%w: no category", ErrInvalidCatalogItem)
	case len(item.Formality) == 0:
		return nil, fmt.Errorf("%w: no formality", ErrInvalidCatalogItem)
	case item.WarmthRating == nil || *item.WarmthRating < 1 || *item.WarmthRating > 10:
		return nil, fmt.Errorf("%w: warmth rating out of range", ErrInvalidCatalogItem)
	}
	return &item, nil
}

type GeminiCatalogAnalyzer struct {
	client *genai.Client
	Model  LLMModelName
}

func NewGeminiCatalogAnalyzer(client *genai.Client, model LLMModelName) *GeminiCatalogAnalyzer {
	return &GeminiCatalogAnalyzer{client: client, Model: model}
}

func (a *GeminiCatalogAnalyzer) AnalyzeClothing(ctx context.Context, image []byte, mimeType string, itemID string, imagePath string) (*models.ClothingItem, *LLMResponse, error) {
	resp, err := generateJSON(ctx, a.client, jsonRequest{
		Model: a.Model,
		Parts: []*genai.Part{
			{InlineData: &genai.Blob{MIMEType: mimeType, Data: image}},
			{Text: catalogPrompt},
		},
		Schema:          catalogSchema,
		Temperature:     0.2,
		MaxOutputTokens: 1024,
	})
	if err != nil {
		return nil, nil, err
	}
	item, err := ParseCatalogItem(resp.Response, itemID, imagePath)
	if err != nil {
		return nil, resp, err
	}
	return item, resp, nil
}
