package controllers

import (
	"fmt"
	"net/http"

	"myootd/models"
	"myootd/services"
	"myootd/tasks"

	"github.com/getsentry/sentry-go"
	"github.com/hibiken/asynq"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

type WardrobeController struct {
	Wardrobe   *services.WardrobeStore
	Images     services.ImageURLResolver
	AWSService services.AWSServiceProvider
	BucketName string
}

func (controller *WardrobeController) WardrobeRoutes(g *echo.Group) {
	g.GET("", controller.ListWardrobe)
}

func (controller *WardrobeController) AdminRoutes(g *echo.Group) {
	g.POST("/refresh", controller.RefreshWardrobe)
	g.POST("/items", controller.CreateCatalogItem)
}

// ListWardrobe returns the current snapshot with image urls resolved.
func (controller *WardrobeController) ListWardrobe(c echo.Context) error {
	snapshot, version := controller.Wardrobe.Snapshot()
	items := make([]models.ClothingItem, len(snapshot))
	copy(items, snapshot)
	if controller.Images != nil {
		services.ResolveItemImages(c.Request().Context(), controller.Images, items)
	}
	return c.JSON(http.StatusOK, models.WardrobeOut{Version: version, Items: items})
}

func (controller *WardrobeController) RefreshWardrobe(c echo.Context) error {
	ctx := c.Request().Context()
	if err := controller.Wardrobe.Refresh(ctx); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("manual wardrobe refresh failed")
		return c.JSON(http.StatusBadGateway, map[string]string{"error": "Could not load the wardrobe catalog"})
	}
	items, version := controller.Wardrobe.Snapshot()
	return c.JSON(http.StatusOK, echo.Map{"version": version, "items": len(items)})
}

// CreateCatalogItem hands out an upload url for a new garment photo and
// queues its analysis. The worker picks the photo up once it is uploaded.
func (controller *WardrobeController) CreateCatalogItem(c echo.Context) error {
	var req models.CatalogItemUploadIn
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": httpErrorMessage(err)})
	}

	asynqClient, ok := c.Get("__asynqclient").(TaskEnqueuer)
	if !ok || controller.AWSService == nil || controller.BucketName == "" {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "Catalog uploads are not configured"})
	}

	ctx := c.Request().Context()
	itemID := SanitizeItemID(req.ItemID)
	if itemID == "" {
		itemID = NewItemID()
	}
	objectKey := CatalogObjectKey(itemID, req.FileName)

	uploadURL, err := controller.AWSService.PresignLink(ctx, controller.BucketName, objectKey)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("object_key", objectKey).Msg("unable to presign catalog upload")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Error while preparing the upload"})
	}

	task, err := tasks.NewCatalogItemAnalysisTask(objectKey, itemID)
	if err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Sorry, could not queue the item, please try again"})
	}
	// the photo is uploaded after this response, give the client time
	info, err := asynqClient.EnqueueContext(ctx, task,
		asynq.MaxRetry(3),
		asynq.Queue("catalog"),
		asynq.ProcessIn(catalogUploadGrace),
	)
	if err != nil {
		sentry.CaptureException(fmt.Errorf("enqueue analysis of %s: %w", objectKey, err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Sorry, could not queue the item, please try again"})
	}
	log.Ctx(ctx).Info().Str("item", itemID).Str("task", info.ID).Msg("catalog analysis queued")

	return c.JSON(http.StatusCreated, models.CatalogItemUploadOut{
		ItemID:        itemID,
		ObjectKey:     objectKey,
		FileUploadUrl: uploadURL,
		TaskID:        info.ID,
	})
}
