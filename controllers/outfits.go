package controllers

import (
	"context"
	"errors"
	"net/http"

	"myootd/languageutil"
	"myootd/models"
	"myootd/services"

	"github.com/getsentry/sentry-go"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

type OutfitsController struct {
	Recommender      services.OutfitRecommender
	DefaultCity      string
	DefaultFormality string
}

func (controller *OutfitsController) OutfitRoutes(g *echo.Group) {
	g.GET("/top-outfits", controller.TopOutfits)
	g.GET("/outfits/candidates", controller.Candidates)
}

// TopOutfits returns the ranked outfits for the city's current weather.
func (controller *OutfitsController) TopOutfits(c echo.Context) error {
	req, err := controller.bindRecommendationRequest(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": httpErrorMessage(err)})
	}

	result, err := controller.Recommender.Recommend(c.Request().Context(), req)
	if err != nil {
		return recommendationError(c, req, err)
	}
	return c.JSON(http.StatusOK, result)
}

// Candidates returns every generated outfit without ranking.
func (controller *OutfitsController) Candidates(c echo.Context) error {
	req, err := controller.bindRecommendationRequest(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": httpErrorMessage(err)})
	}

	result, err := controller.Recommender.Candidates(c.Request().Context(), req)
	if err != nil {
		return recommendationError(c, req, err)
	}
	return c.JSON(http.StatusOK, result)
}

func (controller *OutfitsController) bindRecommendationRequest(c echo.Context) (services.RecommendationRequest, error) {
	var query models.TopOutfitsQuery
	if err := c.Bind(&query); err != nil {
		return services.RecommendationRequest{}, err
	}
	if err := c.Validate(query); err != nil {
		return services.RecommendationRequest{}, err
	}

	formality, ok := models.ParseFormality(query.Formality)
	if !ok {
		formality, ok = models.ParseFormality(controller.DefaultFormality)
		if !ok {
			formality = models.FormalityCasual
		}
	}
	return services.RecommendationRequest{
		City:      languageutil.NormalizeCity(query.City, controller.DefaultCity),
		Formality: formality,
		Color:     query.Color,
	}, nil
}

func recommendationError(c echo.Context, req services.RecommendationRequest, err error) error {
	if errors.Is(err, services.ErrWeatherUnavailable) {
		log.Ctx(c.Request().Context()).Warn().Err(err).Str("city", req.City).Msg("weather unavailable")
		return c.JSON(http.StatusBadGateway, map[string]string{"error": "Weather service is not available, please try again a bit later"})
	}
	if errors.Is(err, context.Canceled) {
		log.Ctx(c.Request().Context()).Info().Str("city", req.City).Msg("client went away before outfits were ready")
		return c.NoContent(http.StatusRequestTimeout)
	}
	sentry.CaptureException(err)
	log.Ctx(c.Request().Context()).Error().Err(err).Str("city", req.City).Msg("recommendation failed")
	return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Could not build outfits, please try again"})
}
