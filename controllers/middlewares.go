package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"myootd/services"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// RequestLogger tags every request with an id, attaches a request scoped
// zerolog logger to its context and counts it by route and status class.
func RequestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		req := c.Request()
		rid := req.Header.Get(echo.HeaderXRequestID)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Response().Header().Set(echo.HeaderXRequestID, rid)

		logger := log.With().
			Str("request_id", rid).
			Str("method", req.Method).
			Str("path", req.URL.Path).
			Str("remote_ip", c.RealIP()).
			Logger()
		c.SetRequest(req.WithContext(logger.WithContext(req.Context())))

		err := next(c)
		if err != nil {
			c.Error(err)
		}

		status := c.Response().Status
		route := c.Path()
		if route == "" {
			route = "unmatched"
		}
		services.HTTPRequests.WithLabelValues(req.Method, route, statusClass(status)).Inc()

		if status >= 500 {
			logger.Error().Err(err).Int("status", status).Dur("duration", time.Since(start)).Msg("http request failed")
		} else {
			logger.Info().Int("status", status).Dur("duration", time.Since(start)).Msg("http request served")
		}
		return err
	}
}

func statusClass(code int) string {
	if code < 100 || code > 599 {
		return "0"
	}
	return strconv.Itoa(code/100) + "xx"
}

// AdminMiddleware requires a token with a subject on top of echo-jwt's
// signature check.
func AdminMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, ok := c.Get("user").(*jwt.Token)
		if !ok {
			return echo.ErrUnauthorized
		}
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return echo.ErrUnauthorized
		}
		subject, _ := claims["sub"].(string)
		if subject == "" {
			log.Ctx(c.Request().Context()).Warn().Msg("admin token without subject")
			return echo.ErrUnauthorized
		}
		c.Set("adminSubject", subject)
		return next(c)
	}
}

func httpErrorMessage(err error) string {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if msg, ok := he.Message.(string); ok {
			return msg
		}
		return http.StatusText(he.Code)
	}
	return err.Error()
}
