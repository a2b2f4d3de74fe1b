package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"myootd/models"
	"myootd/services"

	"github.com/getsentry/sentry-go"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"
)

const (
	TypeCatalogItemAnalysis = "catalog:analyze_item"
	TypeCatalogSync         = "catalog:sync_remote"
)

type CatalogItemAnalysisPayload struct {
	ObjectKey string `json:"object_key"`
	ItemID    string `json:"item_id"`
}

func NewClient(address string) *asynq.Client {
	return asynq.NewClient(asynq.RedisClientOpt{Addr: address})
}

// NewCatalogItemAnalysisTask catalogs a photo already uploaded to the bucket.
func NewCatalogItemAnalysisTask(objectKey string, itemID string) (*asynq.Task, error) {
	payload, err := json.Marshal(CatalogItemAnalysisPayload{ObjectKey: objectKey, ItemID: itemID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeCatalogItemAnalysis, payload), nil
}

func NewCatalogSyncTask() (*asynq.Task, error) {
	return asynq.NewTask(TypeCatalogSync, nil), nil
}

// HandleCatalogItemAnalysisTask downloads the uploaded photo, asks the model
// to describe it and stores the resulting item. Photos the model refuses or
// describes unusably are not retried.
func HandleCatalogItemAnalysisTask(
	ctx context.Context,
	t *asynq.Task,
	awsService services.AWSServiceProvider,
	bucketName string,
	analyzer services.CatalogAnalyzer,
	repo services.CatalogRepository,
) error {
	var payload CatalogItemAnalysisPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("decode payload: %v: %w", err, asynq.SkipRetry)
	}
	if payload.ObjectKey == "" || payload.ItemID == "" {
		return fmt.Errorf("payload needs object key and item id: %w", asynq.SkipRetry)
	}
	logger := log.With().
		Str("task", TypeCatalogItemAnalysis).
		Str("item", payload.ItemID).
		Str("object_key", payload.ObjectKey).
		Logger()
	ctx = logger.WithContext(ctx)

	fileURL, err := awsService.GetPresignedR2FileReadURL(ctx, bucketName, payload.ObjectKey)
	if err != nil {
		sentry.CaptureException(fmt.Errorf("[Item: %s] presign read of %s: %w", payload.ItemID, payload.ObjectKey, err))
		return err
	}
	raw, err := services.ReadFileFromUrl(ctx, nil, fileURL)
	if err != nil {
		sentry.CaptureException(fmt.Errorf("[Item: %s] download %s: %w", payload.ItemID, payload.ObjectKey, err))
		return err
	}

	image, mimeType, err := services.PrepareCatalogImage(raw, services.CatalogImageMaxSide)
	if err != nil {
		logger.Warn().Err(err).Msg("uploaded file is not a usable photo")
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	item, usage, err := analyzer.AnalyzeClothing(ctx, image, mimeType, payload.ItemID, payload.ObjectKey)
	if err != nil {
		if errors.Is(err, services.ErrContentViolation) || errors.Is(err, services.ErrInvalidCatalogItem) {
			logger.Warn().Err(err).Msg("photo could not be cataloged")
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		sentry.CaptureException(fmt.Errorf("[Item: %s] analyze: %w", payload.ItemID, err))
		return err
	}

	if err := repo.Upsert(ctx, []models.ClothingItem{*item}); err != nil {
		sentry.CaptureException(err)
		return err
	}

	event := logger.Info().Str("name", item.Name).Strs("category", item.Category)
	if usage != nil {
		event = event.Str("model", usage.Model).Int32("total_tokens", usage.TotalTokenCount)
	}
	event.Msg("catalog item stored")
	return nil
}

// HandleCatalogSyncTask copies the published catalog into the database.
func HandleCatalogSyncTask(ctx context.Context, t *asynq.Task, loader services.WardrobeLoader, repo services.CatalogRepository) error {
	items, err := loader.Load(ctx)
	if err != nil {
		sentry.CaptureException(err)
		return err
	}

	valid := make([]models.ClothingItem, 0, len(items))
	seen := map[string]bool{}
	for _, item := range items {
		item.Normalize()
		if item.ID == "" || seen[item.ID] {
			continue
		}
		seen[item.ID] = true
		valid = append(valid, item)
	}

	if err := repo.Upsert(ctx, valid); err != nil {
		sentry.CaptureException(err)
		return err
	}
	log.Info().Str("task", TypeCatalogSync).Int("items", len(valid)).Msg("catalog synced")
	return nil
}
