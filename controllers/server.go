package controllers

import (
	"context"
	"net/http"

	"myootd/config"
	"myootd/models"
	"myootd/services"

	"github.com/go-playground/validator"
	"github.com/hibiken/asynq"
	echojwt "github.com/labstack/echo-jwt"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

// TaskEnqueuer is the part of *asynq.Client the handlers use.
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// SetupServer wires routes and shared middlewares. awsService and
// asynqClient may be nil, in which case catalog uploads are unavailable.
func SetupServer(
	recommender services.OutfitRecommender,
	wardrobe *services.WardrobeStore,
	images services.ImageURLResolver,
	awsService services.AWSServiceProvider,
	asynqClient TaskEnqueuer,
	cfg config.Config,
) *echo.Echo {
	if awsService != nil {
		if err := awsService.InitPresignClient(context.Background()); err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize AWS provider: S3")
		}
	}

	e := echo.New()
	e.HideBanner = true
	v := validator.New()
	v.RegisterValidation("formality", models.ValidateFormality)
	e.Validator = &CustomValidator{validator: v}

	e.Use(RequestLogger)
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if asynqClient != nil {
				c.Set("__asynqclient", asynqClient)
			}
			return next(c)
		}
	})
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	e.GET("/healthz", func(c echo.Context) error {
		_, version := wardrobe.Snapshot()
		return c.JSON(http.StatusOK, echo.Map{"status": "ok", "wardrobe_version": version})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	outfitsController := OutfitsController{
		Recommender:      recommender,
		DefaultCity:      cfg.DefaultCity,
		DefaultFormality: cfg.DefaultFormality,
	}
	outfitsController.OutfitRoutes(e.Group(""))

	wardrobeController := WardrobeController{
		Wardrobe:   wardrobe,
		Images:     images,
		AWSService: awsService,
		BucketName: cfg.R2.BucketName,
	}
	wardrobeController.WardrobeRoutes(e.Group("/wardrobe"))

	adminGroup := e.Group("/admin", echojwt.JWT([]byte(cfg.JWTSecret)), AdminMiddleware)
	wardrobeController.AdminRoutes(adminGroup.Group("/wardrobe"))

	return e
}
